package postgres

import (
	"context"
	"database/sql"

	"orggov-backend/internal/domain"
	"orggov-backend/internal/logger"
	"orggov-backend/internal/repository"
)

type proposalRepository struct {
	db DBTX
}

func NewProposalRepository(db DBTX) repository.ProposalRepository {
	return &proposalRepository{db: db}
}

const proposalColumns = `id, owner_type, owner_id, academic_term_id, title, venue, created_by, created_at`

func scanProposal(row interface{ Scan(...interface{}) error }) (*domain.EventProposal, error) {
	p := &domain.EventProposal{}
	if err := row.Scan(&p.ID, &p.OwnerType, &p.OwnerID, &p.TermID, &p.Title, &p.Venue, &p.CreatedBy, &p.CreatedAt); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *proposalRepository) Create(ctx context.Context, p *domain.EventProposal) error {
	query := `INSERT INTO event_proposals (owner_type, owner_id, academic_term_id, title, venue, created_by)
	          VALUES ($1, $2, $3, $4, $5, $6) RETURNING id, created_at`
	logger.DatabaseCall("INSERT", "event_proposals", "ownerType", p.OwnerType, "ownerID", p.OwnerID)
	err := r.db.QueryRowContext(ctx, query, p.OwnerType, p.OwnerID, p.TermID, p.Title, p.Venue, p.CreatedBy).Scan(&p.ID, &p.CreatedAt)
	logger.DatabaseResult("INSERT", 1, err, "proposalID", p.ID)
	return mapError(err, "event proposal")
}

func (r *proposalRepository) GetByID(ctx context.Context, id int32) (*domain.EventProposal, error) {
	p, err := scanProposal(r.db.QueryRowContext(ctx, `SELECT `+proposalColumns+` FROM event_proposals WHERE id = $1`, id))
	if err != nil {
		return nil, mapError(err, "event proposal")
	}
	return p, nil
}

func (r *proposalRepository) ListByOwner(ctx context.Context, ownerType domain.OwnerType, ownerID int32) ([]domain.EventProposal, error) {
	query := `SELECT ` + proposalColumns + ` FROM event_proposals WHERE owner_type = $1 AND owner_id = $2 ORDER BY created_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, query, ownerType, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var proposals []domain.EventProposal
	for rows.Next() {
		p, err := scanProposal(rows)
		if err != nil {
			return nil, err
		}
		proposals = append(proposals, *p)
	}
	return proposals, rows.Err()
}

type documentRepository struct {
	db DBTX
}

func NewDocumentRepository(db DBTX) repository.DocumentRepository {
	return &documentRepository{db: db}
}

const documentColumns = `id, event_proposal_id, document_type, file_path, submitted_by,
	adviser_approved_at, adviser_rejected_at, osas_approved_at, osas_rejected_at, rejection_reason, submitted_at`

func scanDocument(row interface{ Scan(...interface{}) error }) (*domain.EventDocument, error) {
	d := &domain.EventDocument{}
	var advApproved, advRejected, osasApproved, osasRejected sql.NullTime
	var reason sql.NullString
	err := row.Scan(&d.ID, &d.ProposalID, &d.DocumentType, &d.FilePath, &d.SubmittedBy,
		&advApproved, &advRejected, &osasApproved, &osasRejected, &reason, &d.SubmittedAt)
	if err != nil {
		return nil, err
	}
	d.AdviserApprovedAt = nullTimePtr(advApproved)
	d.AdviserRejectedAt = nullTimePtr(advRejected)
	d.OsasApprovedAt = nullTimePtr(osasApproved)
	d.OsasRejectedAt = nullTimePtr(osasRejected)
	if reason.Valid {
		d.RejectionReason = &reason.String
	}
	return d, nil
}

func (r *documentRepository) Create(ctx context.Context, d *domain.EventDocument) error {
	query := `INSERT INTO event_documents (event_proposal_id, document_type, file_path, submitted_by, submitted_at)
	          VALUES ($1, $2, $3, $4, $5) RETURNING id`
	logger.DatabaseCall("INSERT", "event_documents", "proposalID", d.ProposalID, "type", d.DocumentType)
	err := r.db.QueryRowContext(ctx, query, d.ProposalID, d.DocumentType, d.FilePath, d.SubmittedBy, d.SubmittedAt).Scan(&d.ID)
	logger.DatabaseResult("INSERT", 1, err, "documentID", d.ID)
	return mapError(err, "event document")
}

func (r *documentRepository) GetByID(ctx context.Context, id int32) (*domain.EventDocument, error) {
	d, err := scanDocument(r.db.QueryRowContext(ctx, `SELECT `+documentColumns+` FROM event_documents WHERE id = $1`, id))
	if err != nil {
		return nil, mapError(err, "event document")
	}
	return d, nil
}

func (r *documentRepository) GetForUpdate(ctx context.Context, id int32) (*domain.EventDocument, error) {
	d, err := scanDocument(r.db.QueryRowContext(ctx, `SELECT `+documentColumns+` FROM event_documents WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return nil, mapError(err, "event document")
	}
	return d, nil
}

func (r *documentRepository) Update(ctx context.Context, d *domain.EventDocument) error {
	query := `UPDATE event_documents SET file_path = $1, adviser_approved_at = $2, adviser_rejected_at = $3,
	          osas_approved_at = $4, osas_rejected_at = $5, rejection_reason = $6, submitted_at = $7
	          WHERE id = $8`
	logger.DatabaseCall("UPDATE", "event_documents", "documentID", d.ID)
	res, err := r.db.ExecContext(ctx, query, d.FilePath, d.AdviserApprovedAt, d.AdviserRejectedAt,
		d.OsasApprovedAt, d.OsasRejectedAt, d.RejectionReason, d.SubmittedAt, d.ID)
	if err != nil {
		logger.DatabaseResult("UPDATE", 0, err)
		return err
	}
	n, _ := res.RowsAffected()
	logger.DatabaseResult("UPDATE", n, nil)
	if n == 0 {
		return domain.NotFoundError("event document %d not found", d.ID)
	}
	return nil
}

func (r *documentRepository) ListByProposal(ctx context.Context, proposalID int32) ([]domain.EventDocument, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+documentColumns+` FROM event_documents WHERE event_proposal_id = $1 ORDER BY id`, proposalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []domain.EventDocument
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *d)
	}
	return docs, rows.Err()
}

// CountAwaitingOsas counts documents the adviser approved that OSAS has
// not decided yet.
func (r *documentRepository) CountAwaitingOsas(ctx context.Context) (int, error) {
	query := `SELECT count(*) FROM event_documents
	          WHERE adviser_approved_at IS NOT NULL AND osas_approved_at IS NULL AND osas_rejected_at IS NULL`
	var n int
	err := r.db.QueryRowContext(ctx, query).Scan(&n)
	return n, err
}

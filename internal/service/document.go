package service

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"orggov-backend/internal/domain"
	"orggov-backend/internal/logger"
	"orggov-backend/internal/notify"
	"orggov-backend/internal/repository"
	"orggov-backend/internal/storage"
)

type documentService struct {
	store     repository.Store
	files     storage.StorageInterface
	validator *storage.FileValidator
	notifier  notify.Notifier
	now       func() time.Time
}

func NewDocumentService(store repository.Store, files storage.StorageInterface, notifier notify.Notifier) DocumentService {
	return &documentService{
		store:     store,
		files:     files,
		validator: storage.NewFileValidator(storage.DocumentRules),
		notifier:  notifier,
		now:       time.Now,
	}
}

// CreateProposal validates every file of the batch before anything is
// stored, so one bad file rejects the whole proposal.
func (s *documentService) CreateProposal(ctx context.Context, input ProposalInput) (*ProposalView, error) {
	logger.EnterMethod("documentService.CreateProposal", "ownerType", input.OwnerType, "ownerID", input.OwnerID, "documents", len(input.Documents))

	title := strings.TrimSpace(input.Title)
	venue := strings.TrimSpace(input.Venue)
	if title == "" || venue == "" {
		err := domain.ValidationError("title and venue are required")
		logger.ExitMethodWithError("documentService.CreateProposal", err)
		return nil, err
	}
	if len(input.Documents) == 0 {
		err := domain.ValidationError("at least one document is required")
		logger.ExitMethodWithError("documentService.CreateProposal", err)
		return nil, err
	}
	seen := make(map[domain.DocumentType]bool, len(input.Documents))
	for _, d := range input.Documents {
		if !d.DocumentType.Valid() {
			err := domain.ValidationError("unknown document type %q", d.DocumentType)
			logger.ExitMethodWithError("documentService.CreateProposal", err)
			return nil, err
		}
		if seen[d.DocumentType] {
			err := domain.ValidationError("document type %s was submitted twice", d.DocumentType)
			logger.ExitMethodWithError("documentService.CreateProposal", err)
			return nil, err
		}
		seen[d.DocumentType] = true
		if err := s.validator.Check(d.File); err != nil {
			logger.ExitMethodWithError("documentService.CreateProposal", err, "documentType", d.DocumentType)
			return nil, err
		}
	}

	repos := s.store.Repos()
	owner, err := loadOwner(ctx, repos, input.OwnerType, input.OwnerID)
	if err != nil {
		logger.ExitMethodWithError("documentService.CreateProposal", err)
		return nil, err
	}
	if !owner.Recognized() {
		err := domain.StateViolationError("%s is not yet recognized and cannot submit event proposals", owner.Name)
		logger.ExitMethodWithError("documentService.CreateProposal", err)
		return nil, err
	}
	if owner.PresidentID != input.CreatedBy {
		err := domain.ForbiddenError("only the president of %s can submit event proposals", owner.Name)
		logger.ExitMethodWithError("documentService.CreateProposal", err)
		return nil, err
	}
	term, err := repos.Terms.CurrentActive(ctx)
	if err != nil {
		logger.ExitMethodWithError("documentService.CreateProposal", err)
		return nil, fmt.Errorf("failed to resolve active term: %w", err)
	}
	if term == nil {
		logger.ExitMethodWithError("documentService.CreateProposal", domain.ErrNoActiveTerm)
		return nil, domain.ErrNoActiveTerm
	}

	now := s.now()
	docs := make([]domain.EventDocument, 0, len(input.Documents))
	var saved []string
	for _, d := range input.Documents {
		key, err := s.files.SaveFile(ctx, storage.CategoryDocuments, d.File.Filename, bytes.NewReader(d.File.Data))
		if err != nil {
			s.removeFiles(ctx, saved...)
			logger.ExitMethodWithError("documentService.CreateProposal", err)
			return nil, fmt.Errorf("failed to store %s: %w", d.DocumentType, err)
		}
		saved = append(saved, key)
		docs = append(docs, domain.EventDocument{
			DocumentType: d.DocumentType,
			FilePath:     key,
			SubmittedBy:  input.CreatedBy,
			SubmittedAt:  now,
		})
	}

	proposal := &domain.EventProposal{
		OwnerType: input.OwnerType,
		OwnerID:   input.OwnerID,
		TermID:    term.ID,
		Title:     title,
		Venue:     venue,
		CreatedBy: input.CreatedBy,
	}
	err = s.store.WithinTx(ctx, func(ctx context.Context, tx *repository.Repositories) error {
		if err := tx.Proposals.Create(ctx, proposal); err != nil {
			return fmt.Errorf("failed to create event proposal: %w", err)
		}
		for i := range docs {
			docs[i].ProposalID = proposal.ID
			if err := tx.Documents.Create(ctx, &docs[i]); err != nil {
				return fmt.Errorf("failed to create %s document: %w", docs[i].DocumentType, err)
			}
		}
		return nil
	})
	if err != nil {
		s.removeFiles(ctx, saved...)
		logger.ExitMethodWithError("documentService.CreateProposal", err)
		return nil, err
	}

	logger.ExitMethod("documentService.CreateProposal", "proposalID", proposal.ID)
	return newProposalView(*proposal, docs), nil
}

func (s *documentService) GetProposal(ctx context.Context, id int32) (*ProposalView, error) {
	repos := s.store.Repos()
	p, err := repos.Proposals.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	docs, err := repos.Documents.ListByProposal(ctx, id)
	if err != nil {
		return nil, err
	}
	return newProposalView(*p, docs), nil
}

func (s *documentService) ListProposals(ctx context.Context, ownerType domain.OwnerType, ownerID int32) ([]ProposalView, error) {
	repos := s.store.Repos()
	proposals, err := repos.Proposals.ListByOwner(ctx, ownerType, ownerID)
	if err != nil {
		return nil, err
	}
	views := make([]ProposalView, 0, len(proposals))
	for _, p := range proposals {
		docs, err := repos.Documents.ListByProposal(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		views = append(views, *newProposalView(p, docs))
	}
	return views, nil
}

// reviewContext is what a decision needs besides the document itself.
type reviewContext struct {
	proposal *domain.EventProposal
	owner    *domain.Owner
}

func (s *documentService) AdviserDecide(ctx context.Context, documentID, adviserID int32, decision domain.Decision, reason string) (*DocumentView, error) {
	return s.decide(ctx, "adviser", documentID, adviserID, decision, reason, func(rc reviewContext, state domain.DocumentState, reason string, at time.Time) (domain.DocumentState, error) {
		if rc.owner.AdviserID != adviserID {
			return nil, domain.ForbiddenError("only the adviser of %s can review this document", rc.owner.Name)
		}
		return domain.AdviserDecision(state, decision, reason, at)
	})
}

func (s *documentService) OsasDecide(ctx context.Context, documentID, reviewerID int32, decision domain.Decision, reason string) (*DocumentView, error) {
	return s.decide(ctx, "osas", documentID, reviewerID, decision, reason, func(_ reviewContext, state domain.DocumentState, reason string, at time.Time) (domain.DocumentState, error) {
		return domain.OsasDecision(state, decision, reason, at)
	})
}

// transitionFunc computes the next state. reason is already trimmed.
type transitionFunc func(rc reviewContext, state domain.DocumentState, reason string, at time.Time) (domain.DocumentState, error)

// decide locks the document, applies the stage transition to its projected
// state and writes the resulting audit fields back.
func (s *documentService) decide(ctx context.Context, stage string, documentID, reviewerID int32, decision domain.Decision, reason string, next transitionFunc) (*DocumentView, error) {
	method := "documentService.decide." + stage
	logger.EnterMethod(method, "documentID", documentID, "reviewerID", reviewerID, "decision", decision)

	reason = strings.TrimSpace(reason)
	var (
		doc  *domain.EventDocument
		rc   reviewContext
		from domain.DocumentStatus
	)
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx *repository.Repositories) error {
		var err error
		doc, err = tx.Documents.GetForUpdate(ctx, documentID)
		if err != nil {
			return err
		}
		rc.proposal, err = tx.Proposals.GetByID(ctx, doc.ProposalID)
		if err != nil {
			return err
		}
		rc.owner, err = loadOwner(ctx, tx, rc.proposal.OwnerType, rc.proposal.OwnerID)
		if err != nil {
			return err
		}

		state := domain.ProjectState(doc)
		from = state.Status()
		to, err := next(rc, state, reason, s.now())
		if err != nil {
			return err
		}
		domain.ApplyState(doc, to)
		if err := tx.Documents.Update(ctx, doc); err != nil {
			return fmt.Errorf("failed to update document: %w", err)
		}
		return nil
	})
	if err != nil {
		logger.ExitMethodWithError(method, err, "documentID", documentID)
		return nil, err
	}

	view := newDocumentView(*doc)
	logger.Transition("event_document", documentID, string(from), string(view.Status), "stage", stage, "reviewedBy", reviewerID)

	payload := map[string]string{
		notify.KeyEntityName:    rc.owner.Name,
		notify.KeyProposalTitle: rc.proposal.Title,
		notify.KeyDocumentType:  string(doc.DocumentType),
		notify.KeyStage:         stage,
		notify.KeyDecision:      string(decision),
	}
	if decision == domain.DecisionReject {
		payload[notify.KeyReason] = reason
	}
	s.notifyAccount(ctx, rc.owner.PresidentID, domain.NotificationDocumentReviewed, payload)

	logger.ExitMethod(method, "documentID", documentID, "status", view.Status)
	return &view, nil
}

// Resubmit replaces the file of a rejected document and reopens it. The
// previous file is removed only after the row update commits.
func (s *documentService) Resubmit(ctx context.Context, documentID, submittedBy int32, file domain.Upload) (*DocumentView, error) {
	logger.EnterMethod("documentService.Resubmit", "documentID", documentID, "submittedBy", submittedBy)

	if err := s.validator.Check(file); err != nil {
		logger.ExitMethodWithError("documentService.Resubmit", err)
		return nil, err
	}

	// Reject early so an illegal resubmission never touches storage.
	current, err := s.store.Repos().Documents.GetByID(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if _, err := domain.Resubmission(domain.ProjectState(current)); err != nil {
		logger.ExitMethodWithError("documentService.Resubmit", err)
		return nil, err
	}

	newKey, err := s.files.SaveFile(ctx, storage.CategoryDocuments, file.Filename, bytes.NewReader(file.Data))
	if err != nil {
		logger.ExitMethodWithError("documentService.Resubmit", err)
		return nil, fmt.Errorf("failed to store replacement file: %w", err)
	}

	var (
		doc    *domain.EventDocument
		rc     reviewContext
		oldKey string
		from   domain.DocumentStatus
	)
	err = s.store.WithinTx(ctx, func(ctx context.Context, tx *repository.Repositories) error {
		var err error
		doc, err = tx.Documents.GetForUpdate(ctx, documentID)
		if err != nil {
			return err
		}
		rc.proposal, err = tx.Proposals.GetByID(ctx, doc.ProposalID)
		if err != nil {
			return err
		}
		rc.owner, err = loadOwner(ctx, tx, rc.proposal.OwnerType, rc.proposal.OwnerID)
		if err != nil {
			return err
		}
		if rc.owner.PresidentID != submittedBy {
			return domain.ForbiddenError("only the president of %s can resubmit documents", rc.owner.Name)
		}

		state := domain.ProjectState(doc)
		from = state.Status()
		to, err := domain.Resubmission(state)
		if err != nil {
			return err
		}
		domain.ApplyState(doc, to)
		oldKey = doc.FilePath
		doc.FilePath = newKey
		doc.SubmittedBy = submittedBy
		doc.SubmittedAt = s.now()
		if err := tx.Documents.Update(ctx, doc); err != nil {
			return fmt.Errorf("failed to update document: %w", err)
		}
		return nil
	})
	if err != nil {
		s.removeFiles(ctx, newKey)
		logger.ExitMethodWithError("documentService.Resubmit", err, "documentID", documentID)
		return nil, err
	}

	if oldKey != "" && oldKey != newKey {
		s.removeFiles(ctx, oldKey)
	}

	view := newDocumentView(*doc)
	logger.Transition("event_document", documentID, string(from), string(view.Status), "stage", "resubmission")

	s.notifyAccount(ctx, rc.owner.AdviserID, domain.NotificationDocumentResubmitted, map[string]string{
		notify.KeyEntityName:    rc.owner.Name,
		notify.KeyProposalTitle: rc.proposal.Title,
		notify.KeyDocumentType:  string(doc.DocumentType),
	})

	logger.ExitMethod("documentService.Resubmit", "documentID", documentID, "filePath", newKey)
	return &view, nil
}

// removeFiles deletes stored files; failures only leave an orphan behind
// and are logged.
func (s *documentService) removeFiles(ctx context.Context, keys ...string) {
	for _, key := range keys {
		if err := s.files.DeleteFile(ctx, key); err != nil {
			logger.Warn("Failed to delete stored file", "key", key, "error", err)
		}
	}
}

func (s *documentService) notifyAccount(ctx context.Context, accountID int32, kind domain.NotificationKind, payload map[string]string) {
	if s.notifier == nil {
		return
	}
	account, err := s.store.Repos().Accounts.GetByID(ctx, accountID)
	if err != nil {
		logger.Error("Failed to resolve notification recipient", "accountID", accountID, "kind", kind, "error", err)
		return
	}
	payload[notify.KeyName] = account.FullName
	if err := s.notifier.Notify(ctx, account.Email, kind, payload); err != nil {
		logger.Error("Notification failed after committed transition", "to", account.Email, "kind", kind, "error", err)
	}
}

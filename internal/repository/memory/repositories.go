package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"orggov-backend/internal/domain"
	"orggov-backend/internal/repository"
)

type applicationRepository struct{ v *view }

func (r *applicationRepository) Create(ctx context.Context, a *domain.Application) error {
	return r.v.write(func(d *data) error {
		a.ID = d.next("applications")
		if a.Status == "" {
			a.Status = domain.ApplicationStatusPendingReview
		}
		a.CreatedAt = time.Now()
		d.applications[a.ID] = *a
		return nil
	})
}

func (r *applicationRepository) GetByID(ctx context.Context, id int32) (*domain.Application, error) {
	var out domain.Application
	err := r.v.read(func(d *data) error {
		a, ok := d.applications[id]
		if !ok {
			return notFound("application", id)
		}
		out = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *applicationRepository) GetForUpdate(ctx context.Context, id int32) (*domain.Application, error) {
	return r.GetByID(ctx, id)
}

func (r *applicationRepository) MarkDecided(ctx context.Context, a *domain.Application) (bool, error) {
	updated := false
	err := r.v.write(func(d *data) error {
		cur, ok := d.applications[a.ID]
		if !ok || cur.Status != domain.ApplicationStatusPendingReview {
			return nil
		}
		cur.Status = a.Status
		cur.RejectionReason = a.RejectionReason
		cur.ReviewedBy = a.ReviewedBy
		cur.ReviewedAt = a.ReviewedAt
		d.applications[a.ID] = cur
		updated = true
		return nil
	})
	return updated, err
}

func (r *applicationRepository) ListByStatus(ctx context.Context, status domain.ApplicationStatus) ([]domain.Application, error) {
	var out []domain.Application
	err := r.v.read(func(d *data) error {
		for _, id := range sortedKeys(d.applications) {
			if a := d.applications[id]; a.Status == status {
				out = append(out, a)
			}
		}
		return nil
	})
	return out, err
}

func (r *applicationRepository) CountByStatus(ctx context.Context, status domain.ApplicationStatus) (int, error) {
	apps, err := r.ListByStatus(ctx, status)
	return len(apps), err
}

type accountRepository struct{ v *view }

func (r *accountRepository) Create(ctx context.Context, a *domain.Account) error {
	return r.v.write(func(d *data) error {
		for _, existing := range d.accounts {
			if existing.Username == a.Username {
				return repository.ErrDuplicateUsername
			}
			if strings.EqualFold(existing.Email, a.Email) {
				return conflict("an account with this email already exists")
			}
		}
		a.ID = d.next("accounts")
		a.CreatedAt = time.Now()
		d.accounts[a.ID] = *a
		return nil
	})
}

func (r *accountRepository) GetByID(ctx context.Context, id int32) (*domain.Account, error) {
	var out domain.Account
	err := r.v.read(func(d *data) error {
		a, ok := d.accounts[id]
		if !ok {
			return notFound("account", id)
		}
		out = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *accountRepository) GetByUsername(ctx context.Context, username string) (*domain.Account, error) {
	var out *domain.Account
	err := r.v.read(func(d *data) error {
		for _, a := range d.accounts {
			if a.Username == username {
				out = &a
				return nil
			}
		}
		return domain.NotFoundError("account not found")
	})
	return out, err
}

func (r *accountRepository) EmailsTaken(ctx context.Context, emails []string) ([]string, error) {
	var taken []string
	err := r.v.read(func(d *data) error {
		for _, a := range d.accounts {
			for _, e := range emails {
				if strings.EqualFold(a.Email, strings.TrimSpace(e)) {
					taken = append(taken, a.Email)
					break
				}
			}
		}
		return nil
	})
	sort.Strings(taken)
	return taken, err
}

func (r *accountRepository) ListByRole(ctx context.Context, role domain.Role) ([]domain.Account, error) {
	var out []domain.Account
	err := r.v.read(func(d *data) error {
		for _, id := range sortedKeys(d.accounts) {
			if a := d.accounts[id]; a.Role == role {
				out = append(out, a)
			}
		}
		return nil
	})
	return out, err
}

type collegeRepository struct{ v *view }

func (r *collegeRepository) GetByID(ctx context.Context, id int32) (*domain.College, error) {
	var out domain.College
	err := r.v.read(func(d *data) error {
		c, ok := d.colleges[id]
		if !ok {
			return notFound("college", id)
		}
		out = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// LockByID is a plain read: the transaction already holds the store lock.
func (r *collegeRepository) LockByID(ctx context.Context, id int32) (*domain.College, error) {
	return r.GetByID(ctx, id)
}

type courseRepository struct{ v *view }

func (r *courseRepository) GetByID(ctx context.Context, id int32) (*domain.Course, error) {
	var out domain.Course
	err := r.v.read(func(d *data) error {
		c, ok := d.courses[id]
		if !ok {
			return notFound("course", id)
		}
		out = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

type organizationRepository struct{ v *view }

func (r *organizationRepository) Create(ctx context.Context, o *domain.Organization) error {
	return r.v.write(func(d *data) error {
		for _, existing := range d.organizations {
			if strings.EqualFold(existing.Code, o.Code) {
				return conflict("organization code is already taken")
			}
			if existing.CourseID == o.CourseID {
				return conflict("an organization already exists for this course")
			}
		}
		o.ID = d.next("organizations")
		o.CreatedAt = time.Now()
		d.organizations[o.ID] = *o
		return nil
	})
}

func (r *organizationRepository) GetByID(ctx context.Context, id int32) (*domain.Organization, error) {
	return r.first(func(o domain.Organization) bool { return o.ID == id }, true)
}

func (r *organizationRepository) GetByPresident(ctx context.Context, accountID int32) (*domain.Organization, error) {
	return r.first(func(o domain.Organization) bool { return o.PresidentID == accountID }, true)
}

func (r *organizationRepository) FindByCourse(ctx context.Context, courseID int32) (*domain.Organization, error) {
	return r.first(func(o domain.Organization) bool { return o.CourseID == courseID }, false)
}

func (r *organizationRepository) FindByCode(ctx context.Context, code string) (*domain.Organization, error) {
	return r.first(func(o domain.Organization) bool { return strings.EqualFold(o.Code, code) }, false)
}

func (r *organizationRepository) first(match func(domain.Organization) bool, required bool) (*domain.Organization, error) {
	var out *domain.Organization
	err := r.v.read(func(d *data) error {
		for _, id := range sortedKeys(d.organizations) {
			if o := d.organizations[id]; match(o) {
				out = &o
				return nil
			}
		}
		if required {
			return domain.NotFoundError("organization not found")
		}
		return nil
	})
	return out, err
}

func (r *organizationRepository) UpdateStatus(ctx context.Context, id int32, status domain.RecognitionStatus) error {
	return r.v.write(func(d *data) error {
		o, ok := d.organizations[id]
		if !ok {
			return notFound("organization", id)
		}
		o.Status = status
		d.organizations[id] = o
		return nil
	})
}

type councilRepository struct{ v *view }

func (r *councilRepository) Create(ctx context.Context, c *domain.Council) error {
	return r.v.write(func(d *data) error {
		for _, existing := range d.councils {
			if existing.CollegeID == c.CollegeID {
				return conflict("a council already exists for this college")
			}
			if strings.EqualFold(existing.Code, c.Code) {
				return conflict("council code is already taken")
			}
		}
		c.ID = d.next("councils")
		c.CreatedAt = time.Now()
		d.councils[c.ID] = *c
		return nil
	})
}

func (r *councilRepository) GetByID(ctx context.Context, id int32) (*domain.Council, error) {
	return r.first(func(c domain.Council) bool { return c.ID == id }, true)
}

func (r *councilRepository) GetByPresident(ctx context.Context, accountID int32) (*domain.Council, error) {
	return r.first(func(c domain.Council) bool { return c.PresidentID == accountID }, true)
}

func (r *councilRepository) FindByCollege(ctx context.Context, collegeID int32) (*domain.Council, error) {
	return r.first(func(c domain.Council) bool { return c.CollegeID == collegeID }, false)
}

func (r *councilRepository) first(match func(domain.Council) bool, required bool) (*domain.Council, error) {
	var out *domain.Council
	err := r.v.read(func(d *data) error {
		for _, id := range sortedKeys(d.councils) {
			if c := d.councils[id]; match(c) {
				out = &c
				return nil
			}
		}
		if required {
			return domain.NotFoundError("council not found")
		}
		return nil
	})
	return out, err
}

func (r *councilRepository) UpdateStatus(ctx context.Context, id int32, status domain.RecognitionStatus) error {
	return r.v.write(func(d *data) error {
		c, ok := d.councils[id]
		if !ok {
			return notFound("council", id)
		}
		c.Status = status
		d.councils[id] = c
		return nil
	})
}

type termRepository struct{ v *view }

func (r *termRepository) CurrentActive(ctx context.Context) (*domain.AcademicTerm, error) {
	var out *domain.AcademicTerm
	err := r.v.read(func(d *data) error {
		for _, id := range sortedKeys(d.terms) {
			if t := d.terms[id]; t.IsActive {
				out = &t
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *termRepository) GetByID(ctx context.Context, id int32) (*domain.AcademicTerm, error) {
	var out domain.AcademicTerm
	err := r.v.read(func(d *data) error {
		t, ok := d.terms[id]
		if !ok {
			return notFound("academic term", id)
		}
		out = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

type officerRepository struct{ v *view }

func (r *officerRepository) Create(ctx context.Context, o *domain.StudentOfficial) error {
	return r.v.write(func(d *data) error {
		for _, existing := range d.officers {
			if existing.OwnerType != o.OwnerType || existing.OwnerID != o.OwnerID || existing.TermID != o.TermID {
				continue
			}
			if existing.Position == o.Position {
				return conflict("position is already filled for this term")
			}
			if existing.StudentNumber == o.StudentNumber {
				return conflict("student already holds a position in this entity for this term")
			}
		}
		o.ID = d.next("officers")
		o.CreatedAt = time.Now()
		d.officers[o.ID] = *o
		return nil
	})
}

func (r *officerRepository) FindSeats(ctx context.Context, studentNumber string, termID int32, ownerType domain.OwnerType) ([]domain.OfficerSeat, error) {
	var seats []domain.OfficerSeat
	err := r.v.read(func(d *data) error {
		for _, id := range sortedKeys(d.officers) {
			o := d.officers[id]
			if o.StudentNumber != studentNumber || o.TermID != termID || o.OwnerType != ownerType {
				continue
			}
			seat := domain.OfficerSeat{Position: o.Position, OwnerType: o.OwnerType, OwnerID: o.OwnerID}
			if o.OwnerType == domain.OwnerTypeOrganization {
				seat.OwnerName = d.organizations[o.OwnerID].Name
			} else {
				seat.OwnerName = d.councils[o.OwnerID].Name
			}
			seats = append(seats, seat)
		}
		return nil
	})
	return seats, err
}

func (r *officerRepository) PositionTaken(ctx context.Context, ownerType domain.OwnerType, ownerID, termID int32, position string) (bool, error) {
	taken := false
	err := r.v.read(func(d *data) error {
		for _, o := range d.officers {
			if o.OwnerType == ownerType && o.OwnerID == ownerID && o.TermID == termID && o.Position == position {
				taken = true
				break
			}
		}
		return nil
	})
	return taken, err
}

func (r *officerRepository) ListByOwner(ctx context.Context, ownerType domain.OwnerType, ownerID, termID int32) ([]domain.StudentOfficial, error) {
	var out []domain.StudentOfficial
	err := r.v.read(func(d *data) error {
		for _, id := range sortedKeys(d.officers) {
			o := d.officers[id]
			if o.OwnerType == ownerType && o.OwnerID == ownerID && o.TermID == termID {
				out = append(out, o)
			}
		}
		return nil
	})
	return out, err
}

type proposalRepository struct{ v *view }

func (r *proposalRepository) Create(ctx context.Context, p *domain.EventProposal) error {
	return r.v.write(func(d *data) error {
		p.ID = d.next("proposals")
		p.CreatedAt = time.Now()
		stored := *p
		stored.Documents = nil
		d.proposals[p.ID] = stored
		return nil
	})
}

func (r *proposalRepository) GetByID(ctx context.Context, id int32) (*domain.EventProposal, error) {
	var out domain.EventProposal
	err := r.v.read(func(d *data) error {
		p, ok := d.proposals[id]
		if !ok {
			return notFound("event proposal", id)
		}
		out = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *proposalRepository) ListByOwner(ctx context.Context, ownerType domain.OwnerType, ownerID int32) ([]domain.EventProposal, error) {
	var out []domain.EventProposal
	err := r.v.read(func(d *data) error {
		keys := sortedKeys(d.proposals)
		for i := len(keys) - 1; i >= 0; i-- {
			if p := d.proposals[keys[i]]; p.OwnerType == ownerType && p.OwnerID == ownerID {
				out = append(out, p)
			}
		}
		return nil
	})
	return out, err
}

type documentRepository struct{ v *view }

func (r *documentRepository) Create(ctx context.Context, doc *domain.EventDocument) error {
	return r.v.write(func(d *data) error {
		if _, ok := d.proposals[doc.ProposalID]; !ok {
			return notFound("event proposal", doc.ProposalID)
		}
		for _, existing := range d.documents {
			if existing.ProposalID == doc.ProposalID && existing.DocumentType == doc.DocumentType {
				return conflict("document type already submitted for this proposal")
			}
		}
		doc.ID = d.next("documents")
		d.documents[doc.ID] = *doc
		return nil
	})
}

func (r *documentRepository) GetByID(ctx context.Context, id int32) (*domain.EventDocument, error) {
	var out domain.EventDocument
	err := r.v.read(func(d *data) error {
		doc, ok := d.documents[id]
		if !ok {
			return notFound("event document", id)
		}
		out = doc
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *documentRepository) GetForUpdate(ctx context.Context, id int32) (*domain.EventDocument, error) {
	return r.GetByID(ctx, id)
}

func (r *documentRepository) Update(ctx context.Context, doc *domain.EventDocument) error {
	return r.v.write(func(d *data) error {
		cur, ok := d.documents[doc.ID]
		if !ok {
			return notFound("event document", doc.ID)
		}
		cur.FilePath = doc.FilePath
		cur.AdviserApprovedAt = doc.AdviserApprovedAt
		cur.AdviserRejectedAt = doc.AdviserRejectedAt
		cur.OsasApprovedAt = doc.OsasApprovedAt
		cur.OsasRejectedAt = doc.OsasRejectedAt
		cur.RejectionReason = doc.RejectionReason
		cur.SubmittedAt = doc.SubmittedAt
		d.documents[doc.ID] = cur
		return nil
	})
}

func (r *documentRepository) ListByProposal(ctx context.Context, proposalID int32) ([]domain.EventDocument, error) {
	var out []domain.EventDocument
	err := r.v.read(func(d *data) error {
		for _, id := range sortedKeys(d.documents) {
			if doc := d.documents[id]; doc.ProposalID == proposalID {
				out = append(out, doc)
			}
		}
		return nil
	})
	return out, err
}

func (r *documentRepository) CountAwaitingOsas(ctx context.Context) (int, error) {
	n := 0
	err := r.v.read(func(d *data) error {
		for _, doc := range d.documents {
			if doc.AdviserApprovedAt != nil && doc.OsasApprovedAt == nil && doc.OsasRejectedAt == nil {
				n++
			}
		}
		return nil
	})
	return n, err
}

type submissionRepository struct{ v *view }

func (r *submissionRepository) Create(ctx context.Context, s *domain.PendingSubmission) error {
	return r.v.write(func(d *data) error {
		if _, ok := d.submissions[s.Token]; ok {
			return conflict("pending submission already exists")
		}
		s.CreatedAt = time.Now()
		d.submissions[s.Token] = *s
		return nil
	})
}

func (r *submissionRepository) GetForUpdate(ctx context.Context, token string) (*domain.PendingSubmission, error) {
	var out domain.PendingSubmission
	err := r.v.read(func(d *data) error {
		s, ok := d.submissions[token]
		if !ok {
			return domain.NotFoundError("pending submission not found")
		}
		out = s
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *submissionRepository) UpdateAttempts(ctx context.Context, token string, attempts int) error {
	return r.v.write(func(d *data) error {
		s, ok := d.submissions[token]
		if !ok {
			return nil
		}
		s.Attempts = attempts
		d.submissions[token] = s
		return nil
	})
}

func (r *submissionRepository) Delete(ctx context.Context, token string) error {
	return r.v.write(func(d *data) error {
		delete(d.submissions, token)
		return nil
	})
}

func (r *submissionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	var n int64
	err := r.v.write(func(d *data) error {
		for token, s := range d.submissions {
			if s.Expired(now) {
				delete(d.submissions, token)
				n++
			}
		}
		return nil
	})
	return n, err
}

type notificationLogRepository struct{ v *view }

func (r *notificationLogRepository) Create(ctx context.Context, n *domain.NotificationLog) error {
	return r.v.write(func(d *data) error {
		n.ID = d.next("notification_log")
		n.CreatedAt = time.Now()
		d.logs = append(d.logs, *n)
		return nil
	})
}

func (r *notificationLogRepository) ListByEmail(ctx context.Context, email string, limit int32) ([]domain.NotificationLog, error) {
	var out []domain.NotificationLog
	err := r.v.read(func(d *data) error {
		for i := len(d.logs) - 1; i >= 0 && (limit <= 0 || int32(len(out)) < limit); i-- {
			if strings.EqualFold(d.logs[i].ToEmail, email) {
				out = append(out, d.logs[i])
			}
		}
		return nil
	})
	return out, err
}

package repository

import (
	"context"
	"errors"
	"time"

	"orggov-backend/internal/domain"
)

// ErrDuplicateUsername is returned by AccountRepository.Create when the
// username is already taken, so the caller can retry with another one.
var ErrDuplicateUsername = errors.New("username already exists")

type ApplicationRepository interface {
	Create(ctx context.Context, app *domain.Application) error
	GetByID(ctx context.Context, id int32) (*domain.Application, error)
	// GetForUpdate loads the application and locks it until the
	// surrounding transaction ends.
	GetForUpdate(ctx context.Context, id int32) (*domain.Application, error)
	// MarkDecided writes the decision fields of app only if the stored row
	// is still pending_review. It reports whether a row changed.
	MarkDecided(ctx context.Context, app *domain.Application) (bool, error)
	ListByStatus(ctx context.Context, status domain.ApplicationStatus) ([]domain.Application, error)
	CountByStatus(ctx context.Context, status domain.ApplicationStatus) (int, error)
}

type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	GetByID(ctx context.Context, id int32) (*domain.Account, error)
	GetByUsername(ctx context.Context, username string) (*domain.Account, error)
	// EmailsTaken returns the subset of emails already registered.
	EmailsTaken(ctx context.Context, emails []string) ([]string, error)
	ListByRole(ctx context.Context, role domain.Role) ([]domain.Account, error)
}

type CollegeRepository interface {
	GetByID(ctx context.Context, id int32) (*domain.College, error)
	// LockByID serializes provisioning for one college.
	LockByID(ctx context.Context, id int32) (*domain.College, error)
}

type CourseRepository interface {
	GetByID(ctx context.Context, id int32) (*domain.Course, error)
}

type OrganizationRepository interface {
	Create(ctx context.Context, org *domain.Organization) error
	GetByID(ctx context.Context, id int32) (*domain.Organization, error)
	GetByPresident(ctx context.Context, accountID int32) (*domain.Organization, error)
	FindByCourse(ctx context.Context, courseID int32) (*domain.Organization, error)
	FindByCode(ctx context.Context, code string) (*domain.Organization, error)
	UpdateStatus(ctx context.Context, id int32, status domain.RecognitionStatus) error
}

type CouncilRepository interface {
	Create(ctx context.Context, council *domain.Council) error
	GetByID(ctx context.Context, id int32) (*domain.Council, error)
	GetByPresident(ctx context.Context, accountID int32) (*domain.Council, error)
	FindByCollege(ctx context.Context, collegeID int32) (*domain.Council, error)
	UpdateStatus(ctx context.Context, id int32, status domain.RecognitionStatus) error
}

type TermRepository interface {
	// CurrentActive returns nil without error when no term is active.
	CurrentActive(ctx context.Context) (*domain.AcademicTerm, error)
	GetByID(ctx context.Context, id int32) (*domain.AcademicTerm, error)
}

type OfficerRepository interface {
	Create(ctx context.Context, officer *domain.StudentOfficial) error
	// FindSeats returns the positions a student holds in the term within
	// one entity category.
	FindSeats(ctx context.Context, studentNumber string, termID int32, ownerType domain.OwnerType) ([]domain.OfficerSeat, error)
	PositionTaken(ctx context.Context, ownerType domain.OwnerType, ownerID, termID int32, position string) (bool, error)
	ListByOwner(ctx context.Context, ownerType domain.OwnerType, ownerID, termID int32) ([]domain.StudentOfficial, error)
}

type ProposalRepository interface {
	Create(ctx context.Context, proposal *domain.EventProposal) error
	GetByID(ctx context.Context, id int32) (*domain.EventProposal, error)
	ListByOwner(ctx context.Context, ownerType domain.OwnerType, ownerID int32) ([]domain.EventProposal, error)
}

type DocumentRepository interface {
	Create(ctx context.Context, doc *domain.EventDocument) error
	GetByID(ctx context.Context, id int32) (*domain.EventDocument, error)
	GetForUpdate(ctx context.Context, id int32) (*domain.EventDocument, error)
	// Update writes the file path, review audit fields and submitted_at.
	Update(ctx context.Context, doc *domain.EventDocument) error
	ListByProposal(ctx context.Context, proposalID int32) ([]domain.EventDocument, error)
	CountAwaitingOsas(ctx context.Context) (int, error)
}

type SubmissionRepository interface {
	Create(ctx context.Context, sub *domain.PendingSubmission) error
	GetForUpdate(ctx context.Context, token string) (*domain.PendingSubmission, error)
	UpdateAttempts(ctx context.Context, token string, attempts int) error
	Delete(ctx context.Context, token string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type NotificationLogRepository interface {
	Create(ctx context.Context, entry *domain.NotificationLog) error
	ListByEmail(ctx context.Context, email string, limit int32) ([]domain.NotificationLog, error)
}

// Repositories bundles every repository bound to the same connection or
// transaction.
type Repositories struct {
	Applications     ApplicationRepository
	Accounts         AccountRepository
	Colleges         CollegeRepository
	Courses          CourseRepository
	Organizations    OrganizationRepository
	Councils         CouncilRepository
	Terms            TermRepository
	Officers         OfficerRepository
	Proposals        ProposalRepository
	Documents        DocumentRepository
	Submissions      SubmissionRepository
	NotificationLogs NotificationLogRepository
}

// TxFunc runs inside a transaction. Returning an error rolls it back.
type TxFunc func(ctx context.Context, repos *Repositories) error

// Store is the unit-of-work boundary shared by the postgres and memory
// implementations.
type Store interface {
	Repos() *Repositories
	WithinTx(ctx context.Context, fn TxFunc) error
}

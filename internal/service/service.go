package service

import (
	"context"
	"time"

	"orggov-backend/internal/domain"
)

// ApplicationService owns the application state machine and the
// provisioning that approval triggers.
type ApplicationService interface {
	Decide(ctx context.Context, applicationID int32, decision domain.Decision, reviewerID int32, reason string) (*DecisionResult, error)
	Approve(ctx context.Context, applicationID, reviewerID int32) (*ProvisionResult, error)
	Reject(ctx context.Context, applicationID, reviewerID int32, reason string) (*domain.Application, error)
	GetApplication(ctx context.Context, id int32) (*domain.Application, error)
	ListPending(ctx context.Context) ([]domain.Application, error)
}

// DocumentService owns event proposals and the two-stage document review.
type DocumentService interface {
	CreateProposal(ctx context.Context, input ProposalInput) (*ProposalView, error)
	GetProposal(ctx context.Context, id int32) (*ProposalView, error)
	ListProposals(ctx context.Context, ownerType domain.OwnerType, ownerID int32) ([]ProposalView, error)
	AdviserDecide(ctx context.Context, documentID, adviserID int32, decision domain.Decision, reason string) (*DocumentView, error)
	OsasDecide(ctx context.Context, documentID, reviewerID int32, decision domain.Decision, reason string) (*DocumentView, error)
	Resubmit(ctx context.Context, documentID, submittedBy int32, file domain.Upload) (*DocumentView, error)
}

type OfficerService interface {
	AddOfficer(ctx context.Context, cmd domain.AddOfficer) (*domain.StudentOfficial, error)
	ListOfficers(ctx context.Context, ownerType domain.OwnerType, ownerID int32) ([]domain.StudentOfficial, error)
}

// SubmissionService stages public applications until the contact email is
// verified.
type SubmissionService interface {
	Stage(ctx context.Context, draft domain.ApplicationDraft) (*domain.SubmissionPreview, error)
	Verify(ctx context.Context, token, code string) (*domain.Application, error)
	CouncilPreview(ctx context.Context, collegeID int32) (code, name string, err error)
	PurgeExpired(ctx context.Context) (int64, error)
}

type EntityService interface {
	Recognize(ctx context.Context, ownerType domain.OwnerType, id int32) (*domain.Owner, error)
	GetOwner(ctx context.Context, ownerType domain.OwnerType, id int32) (*domain.Owner, error)
	OwnerForPresident(ctx context.Context, account *domain.Account) (*domain.Owner, error)
}

type AuthService interface {
	Login(ctx context.Context, username, password string) (string, *domain.Account, error)
	GetAccount(ctx context.Context, id int32) (*domain.Account, error)
}

type DigestService interface {
	SendReviewDigest(ctx context.Context, recipients []string) (*Digest, error)
}

// DecisionResult is returned by ApplicationService.Decide; exactly one of
// Provision and Application is set.
type DecisionResult struct {
	Application *domain.Application
	Provision   *ProvisionResult
}

// ProvisionResult describes what an approval created. Credentials carry the
// generated passwords and must not be exposed beyond the notifier.
type ProvisionResult struct {
	Application *domain.Application
	OwnerType   domain.OwnerType
	EntityID    int32
	EntityCode  string
	EntityName  string
	President   domain.Credentials
	Adviser     domain.Credentials
}

type ProposalInput struct {
	OwnerType domain.OwnerType
	OwnerID   int32
	CreatedBy int32
	Title     string
	Venue     string
	Documents []domain.DocumentUpload
}

// DocumentView is a document together with its derived review status.
type DocumentView struct {
	domain.EventDocument
	Status domain.DocumentStatus `json:"status"`
}

type ProposalView struct {
	Proposal  domain.EventProposal   `json:"proposal"`
	Documents []DocumentView         `json:"documents"`
	Summary   domain.ProposalSummary `json:"summary"`
}

type Digest struct {
	PendingApplications int       `json:"pending_applications"`
	AwaitingOsas        int       `json:"awaiting_osas"`
	Recipients          []string  `json:"recipients"`
	GeneratedAt         time.Time `json:"generated_at"`
}

func newDocumentView(doc domain.EventDocument) DocumentView {
	return DocumentView{EventDocument: doc, Status: domain.ProjectState(&doc).Status()}
}

func newProposalView(p domain.EventProposal, docs []domain.EventDocument) *ProposalView {
	view := &ProposalView{
		Proposal:  p,
		Documents: make([]DocumentView, 0, len(docs)),
		Summary:   domain.Summarize(docs),
	}
	for _, d := range docs {
		view.Documents = append(view.Documents, newDocumentView(d))
	}
	return view
}

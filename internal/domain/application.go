package domain

import "time"

type ApplicationType string

const (
	ApplicationTypeOrganization ApplicationType = "organization"
	ApplicationTypeCouncil      ApplicationType = "council"
)

func (t ApplicationType) Valid() bool {
	return t == ApplicationTypeOrganization || t == ApplicationTypeCouncil
}

type ApplicationStatus string

const (
	ApplicationStatusPendingReview ApplicationStatus = "pending_review"
	ApplicationStatusApproved      ApplicationStatus = "approved"
	ApplicationStatusRejected      ApplicationStatus = "rejected"
)

type VerifiedBy string

const (
	VerifiedByPresident VerifiedBy = "president"
	VerifiedByAdviser   VerifiedBy = "adviser"
)

// Application is a request to recognize a new Organization or Council.
// It leaves pending_review exactly once.
type Application struct {
	ID              int32             `json:"id"`
	Type            ApplicationType   `json:"application_type"`
	Status          ApplicationStatus `json:"status"`
	CollegeID       int32             `json:"college_id"`
	CourseID        *int32            `json:"course_id,omitempty"`
	OrgCode         string            `json:"org_code,omitempty"`
	OrgName         string            `json:"org_name,omitempty"`
	PresidentName   string            `json:"president_name"`
	PresidentEmail  string            `json:"president_email"`
	AdviserName     string            `json:"adviser_name"`
	AdviserEmail    string            `json:"adviser_email"`
	VerifiedBy      VerifiedBy        `json:"verified_by"`
	VerifiedEmail   string            `json:"verified_email"`
	RejectionReason *string           `json:"rejection_reason,omitempty"`
	ReviewedBy      *int32            `json:"reviewed_by,omitempty"`
	ReviewedAt      *time.Time        `json:"reviewed_at,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
}

func (a *Application) IsPending() bool {
	return a.Status == ApplicationStatusPendingReview
}

// Decision is the reviewer action taken on a pending application or a
// document review stage.
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

func (d Decision) Valid() bool {
	return d == DecisionApprove || d == DecisionReject
}

package domain

import "time"

// ApplicationDraft is the public form payload before contact verification.
type ApplicationDraft struct {
	Type           ApplicationType `json:"application_type" validate:"required,oneof=organization council"`
	CollegeID      int32           `json:"college_id" validate:"required,gt=0"`
	CourseID       *int32          `json:"course_id,omitempty" validate:"required_if=Type organization,omitempty,gt=0"`
	OrgCode        string          `json:"org_code,omitempty" validate:"required_if=Type organization,omitempty,max=20,alphanumdash"`
	OrgName        string          `json:"org_name,omitempty" validate:"required_if=Type organization,omitempty,max=150"`
	PresidentName  string          `json:"president_name" validate:"required,max=150"`
	PresidentEmail string          `json:"president_email" validate:"required,email"`
	AdviserName    string          `json:"adviser_name" validate:"required,max=150"`
	AdviserEmail   string          `json:"adviser_email" validate:"required,email,nefield=PresidentEmail"`
	VerifiedBy     VerifiedBy      `json:"verified_by" validate:"required,oneof=president adviser"`
}

// VerifiedEmail is the contact address that receives the verification code.
func (d *ApplicationDraft) VerifiedEmail() string {
	if d.VerifiedBy == VerifiedByAdviser {
		return d.AdviserEmail
	}
	return d.PresidentEmail
}

// PendingSubmission stages a draft until its verification code is confirmed.
type PendingSubmission struct {
	Token         string           `json:"token"`
	Draft         ApplicationDraft `json:"draft"`
	VerifiedEmail string           `json:"verified_email"`
	CodeHash      string           `json:"-"`
	Attempts      int              `json:"attempts"`
	ExpiresAt     time.Time        `json:"expires_at"`
	CreatedAt     time.Time        `json:"created_at"`
}

func (p *PendingSubmission) Expired(now time.Time) bool {
	return !now.Before(p.ExpiresAt)
}

// SubmissionPreview is returned to the submitter when a draft is staged.
type SubmissionPreview struct {
	Token         string    `json:"token"`
	EntityCode    string    `json:"entity_code"`
	EntityName    string    `json:"entity_name"`
	VerifiedEmail string    `json:"verified_email"`
	ExpiresAt     time.Time `json:"expires_at"`
}

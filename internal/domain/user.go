package domain

import "time"

type Role string

const (
	RoleOrgPresident     Role = "org_president"
	RoleOrgAdviser       Role = "org_adviser"
	RoleCouncilPresident Role = "council_president"
	RoleCouncilAdviser   Role = "council_adviser"
	RoleMISCoordinator   Role = "mis_coordinator"
	RoleOSAS             Role = "osas"
)

// PresidentRole returns the president role for an application type.
func PresidentRole(t ApplicationType) Role {
	if t == ApplicationTypeCouncil {
		return RoleCouncilPresident
	}
	return RoleOrgPresident
}

// AdviserRole returns the adviser role for an application type.
func AdviserRole(t ApplicationType) Role {
	if t == ApplicationTypeCouncil {
		return RoleCouncilAdviser
	}
	return RoleOrgAdviser
}

func (r Role) IsAdviser() bool {
	return r == RoleOrgAdviser || r == RoleCouncilAdviser
}

func (r Role) IsReviewer() bool {
	return r == RoleOSAS || r == RoleMISCoordinator
}

// Account is a login identity. Emails are globally unique.
type Account struct {
	ID           int32     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Email        string    `json:"email"`
	FullName     string    `json:"full_name"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// Credentials are returned once by the provisioner; RawPassword is never
// persisted.
type Credentials struct {
	AccountID   int32
	Username    string
	RawPassword string
	Email       string
	FullName    string
	Role        Role
}

// config/security_config.go
package config

import "orggov-backend/internal/domain"

type SecurityLevel int

const (
	SecurityPublic SecurityLevel = iota // No authentication
	SecurityAccess                      // Access token required
)

// EndpointPolicy is the authentication level and, for protected endpoints,
// the roles allowed to call it. An empty role list admits any signed-in
// account.
type EndpointPolicy struct {
	Level SecurityLevel
	Roles []domain.Role
}

var reviewers = []domain.Role{domain.RoleOSAS, domain.RoleMISCoordinator}

var owners = []domain.Role{domain.RoleOrgPresident, domain.RoleCouncilPresident}

var advisers = []domain.Role{domain.RoleOrgAdviser, domain.RoleCouncilAdviser}

// EndpointSecurityConfig maps "METHOD path-template" to its policy
var EndpointSecurityConfig = map[string]EndpointPolicy{
	// Public
	"GET /healthz":                              {Level: SecurityPublic},
	"POST /api/v1/auth/login":                   {Level: SecurityPublic},
	"POST /api/v1/submissions":                  {Level: SecurityPublic},
	"POST /api/v1/submissions/{token}/verify":   {Level: SecurityPublic},
	"GET /api/v1/colleges/{id}/council-preview": {Level: SecurityPublic},

	// Session
	"GET /api/v1/me": {Level: SecurityAccess},

	// Application review
	"GET /api/v1/applications":                {Level: SecurityAccess, Roles: reviewers},
	"GET /api/v1/applications/{id}":           {Level: SecurityAccess, Roles: reviewers},
	"POST /api/v1/applications/{id}/decision": {Level: SecurityAccess, Roles: reviewers},

	// Entity recognition
	"POST /api/v1/entities/{type}/{id}/recognize": {Level: SecurityAccess, Roles: []domain.Role{domain.RoleOSAS}},
	"GET /api/v1/entities/{type}/{id}/proposals":  {Level: SecurityAccess},
	"GET /api/v1/entities/{type}/{id}/officers":   {Level: SecurityAccess},

	// Event proposals
	"POST /api/v1/proposals":     {Level: SecurityAccess, Roles: owners},
	"GET /api/v1/proposals/{id}": {Level: SecurityAccess},

	// Document pipeline
	"POST /api/v1/documents/{id}/adviser-decision": {Level: SecurityAccess, Roles: advisers},
	"POST /api/v1/documents/{id}/osas-decision":    {Level: SecurityAccess, Roles: []domain.Role{domain.RoleOSAS}},
	"POST /api/v1/documents/{id}/resubmit":         {Level: SecurityAccess, Roles: owners},

	// Stored files
	"GET /api/v1/files/{category}/{name}": {Level: SecurityAccess},

	// Officers
	"POST /api/v1/officers": {Level: SecurityAccess, Roles: append(append([]domain.Role{}, owners...), advisers...)},

	// gRPC
	"/grpc.health.v1.Health/Check":                                   {Level: SecurityPublic},
	"/grpc.health.v1.Health/Watch":                                   {Level: SecurityPublic},
	"/grpc.health.v1.Health/List":                                    {Level: SecurityPublic},
	"/grpc.reflection.v1.ServerReflection/ServerReflectionInfo":      {Level: SecurityPublic},
	"/grpc.reflection.v1alpha.ServerReflection/ServerReflectionInfo": {Level: SecurityPublic},
}

// GetEndpointPolicy returns the policy for a given endpoint key
func GetEndpointPolicy(key string) EndpointPolicy {
	if policy, exists := EndpointSecurityConfig[key]; exists {
		return policy
	}
	// Default to highest security for unknown endpoints
	return EndpointPolicy{Level: SecurityAccess}
}

// Allows reports whether a role satisfies the policy's role list
func (p EndpointPolicy) Allows(role domain.Role) bool {
	if len(p.Roles) == 0 {
		return true
	}
	for _, r := range p.Roles {
		if r == role {
			return true
		}
	}
	return false
}

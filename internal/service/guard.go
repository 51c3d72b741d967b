package service

import (
	"context"
	"fmt"
	"strings"

	"orggov-backend/internal/domain"
	"orggov-backend/internal/repository"
)

// The uniqueness guards are predicates over the repositories they are
// given. Callers pass transaction-bound repositories so the check and the
// write that follows it are atomic.

// CouncilExistsForCollege returns the name of the council already
// registered for the college, or "".
func CouncilExistsForCollege(ctx context.Context, repos *repository.Repositories, collegeID int32) (string, error) {
	c, err := repos.Councils.FindByCollege(ctx, collegeID)
	if err != nil || c == nil {
		return "", err
	}
	return c.Name, nil
}

// OrganizationExistsForCourse returns the name of the organization already
// registered for the course, or "".
func OrganizationExistsForCourse(ctx context.Context, repos *repository.Repositories, courseID int32) (string, error) {
	o, err := repos.Organizations.FindByCourse(ctx, courseID)
	if err != nil || o == nil {
		return "", err
	}
	return o.Name, nil
}

// OrgCodeTaken returns the name of the organization using code, or "".
func OrgCodeTaken(ctx context.Context, repos *repository.Repositories, code string) (string, error) {
	o, err := repos.Organizations.FindByCode(ctx, code)
	if err != nil || o == nil {
		return "", err
	}
	return o.Name, nil
}

// AccountEmailsTaken returns the subset of emails already registered.
func AccountEmailsTaken(ctx context.Context, repos *repository.Repositories, emails []string) ([]string, error) {
	return repos.Accounts.EmailsTaken(ctx, emails)
}

// IsPresidentElsewhere returns the presidency the student holds in the
// category opposite to excludeOwnerType during the term, or nil.
func IsPresidentElsewhere(ctx context.Context, repos *repository.Repositories, studentNumber string, termID int32, excludeOwnerType domain.OwnerType) (*domain.OfficerSeat, error) {
	seats, err := repos.Officers.FindSeats(ctx, studentNumber, termID, excludeOwnerType.Other())
	if err != nil {
		return nil, err
	}
	for i := range seats {
		if seats[i].Position == domain.PositionPresident {
			return &seats[i], nil
		}
	}
	return nil, nil
}

// checkEntityAvailable runs the entity guards for an application and turns
// a hit into a conflict naming the existing entity.
func checkEntityAvailable(ctx context.Context, repos *repository.Repositories, t domain.ApplicationType, collegeID int32, courseID *int32, orgCode string) error {
	switch t {
	case domain.ApplicationTypeCouncil:
		name, err := CouncilExistsForCollege(ctx, repos, collegeID)
		if err != nil {
			return fmt.Errorf("failed to check council for college: %w", err)
		}
		if name != "" {
			return domain.ConflictError("this college already has a council: %s", name)
		}

	case domain.ApplicationTypeOrganization:
		if courseID == nil {
			return domain.ValidationError("course is required for an organization")
		}
		name, err := OrganizationExistsForCourse(ctx, repos, *courseID)
		if err != nil {
			return fmt.Errorf("failed to check organization for course: %w", err)
		}
		if name != "" {
			return domain.ConflictError("this course already has an organization: %s", name)
		}
		name, err = OrgCodeTaken(ctx, repos, orgCode)
		if err != nil {
			return fmt.Errorf("failed to check organization code: %w", err)
		}
		if name != "" {
			return domain.ConflictError("organization code %s is already used by %s", orgCode, name)
		}
	}
	return nil
}

// checkEmailsAvailable fails with a conflict naming every taken address.
func checkEmailsAvailable(ctx context.Context, repos *repository.Repositories, emails ...string) error {
	taken, err := AccountEmailsTaken(ctx, repos, emails)
	if err != nil {
		return fmt.Errorf("failed to check account emails: %w", err)
	}
	if len(taken) > 0 {
		return domain.ConflictError("an account already exists for: %s", strings.Join(taken, ", "))
	}
	return nil
}

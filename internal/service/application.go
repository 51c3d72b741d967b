package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"orggov-backend/internal/domain"
	"orggov-backend/internal/logger"
	"orggov-backend/internal/notify"
	"orggov-backend/internal/repository"
)

type applicationService struct {
	store       repository.Store
	provisioner *Provisioner
	notifier    notify.Notifier
	now         func() time.Time
}

func NewApplicationService(store repository.Store, provisioner *Provisioner, notifier notify.Notifier) ApplicationService {
	return &applicationService{
		store:       store,
		provisioner: provisioner,
		notifier:    notifier,
		now:         time.Now,
	}
}

func (s *applicationService) GetApplication(ctx context.Context, id int32) (*domain.Application, error) {
	return s.store.Repos().Applications.GetByID(ctx, id)
}

func (s *applicationService) ListPending(ctx context.Context) ([]domain.Application, error) {
	return s.store.Repos().Applications.ListByStatus(ctx, domain.ApplicationStatusPendingReview)
}

func (s *applicationService) Decide(ctx context.Context, applicationID int32, decision domain.Decision, reviewerID int32, reason string) (*DecisionResult, error) {
	switch decision {
	case domain.DecisionApprove:
		res, err := s.Approve(ctx, applicationID, reviewerID)
		if err != nil {
			return nil, err
		}
		return &DecisionResult{Application: res.Application, Provision: res}, nil
	case domain.DecisionReject:
		app, err := s.Reject(ctx, applicationID, reviewerID, reason)
		if err != nil {
			return nil, err
		}
		return &DecisionResult{Application: app}, nil
	}
	return nil, domain.ValidationError("invalid decision %q", decision)
}

// Approve provisions the president and adviser accounts and the entity in
// one transaction. Nothing is written if any check fails.
func (s *applicationService) Approve(ctx context.Context, applicationID, reviewerID int32) (*ProvisionResult, error) {
	logger.EnterMethod("applicationService.Approve", "applicationID", applicationID, "reviewerID", reviewerID)
	repos := s.store.Repos()

	app, err := repos.Applications.GetByID(ctx, applicationID)
	if err != nil {
		logger.ExitMethodWithError("applicationService.Approve", err)
		return nil, err
	}
	if !app.IsPending() {
		logger.ExitMethodWithError("applicationService.Approve", domain.ErrAlreadyProcessed, "status", app.Status)
		return nil, domain.ErrAlreadyProcessed
	}

	// Friendly pre-check; the unique email constraint stays authoritative.
	if err := checkEmailsAvailable(ctx, repos, app.PresidentEmail, app.AdviserEmail); err != nil {
		logger.ExitMethodWithError("applicationService.Approve", err)
		return nil, err
	}

	term, err := repos.Terms.CurrentActive(ctx)
	if err != nil {
		logger.ExitMethodWithError("applicationService.Approve", err)
		return nil, fmt.Errorf("failed to resolve active term: %w", err)
	}
	if term == nil {
		logger.ExitMethodWithError("applicationService.Approve", domain.ErrNoActiveTerm)
		return nil, domain.ErrNoActiveTerm
	}

	var result *ProvisionResult
	err = s.store.WithinTx(ctx, func(ctx context.Context, tx *repository.Repositories) error {
		locked, err := tx.Applications.GetForUpdate(ctx, applicationID)
		if err != nil {
			return err
		}
		if !locked.IsPending() {
			return domain.ErrAlreadyProcessed
		}

		// Serializes approvals targeting the same college.
		college, err := tx.Colleges.LockByID(ctx, locked.CollegeID)
		if err != nil {
			return err
		}

		code, name := entityIdentity(locked, college)
		if err := checkEntityAvailable(ctx, tx, locked.Type, locked.CollegeID, locked.CourseID, code); err != nil {
			return err
		}

		president, err := s.provisioner.Provision(ctx, tx.Accounts, locked.PresidentName, locked.PresidentEmail, domain.PresidentRole(locked.Type))
		if err != nil {
			return err
		}
		adviser, err := s.provisioner.Provision(ctx, tx.Accounts, locked.AdviserName, locked.AdviserEmail, domain.AdviserRole(locked.Type))
		if err != nil {
			return err
		}

		result = &ProvisionResult{
			EntityCode: code,
			EntityName: name,
			President:  *president,
			Adviser:    *adviser,
		}

		switch locked.Type {
		case domain.ApplicationTypeOrganization:
			org := &domain.Organization{
				Code:        code,
				Name:        name,
				CollegeID:   locked.CollegeID,
				CourseID:    *locked.CourseID,
				TermID:      term.ID,
				PresidentID: president.AccountID,
				AdviserID:   adviser.AccountID,
				Status:      domain.RecognitionUnrecognized,
				Type:        domain.EntityTypeNew,
			}
			if err := tx.Organizations.Create(ctx, org); err != nil {
				return err
			}
			result.OwnerType, result.EntityID = domain.OwnerTypeOrganization, org.ID
		case domain.ApplicationTypeCouncil:
			council := &domain.Council{
				Code:        code,
				Name:        name,
				CollegeID:   locked.CollegeID,
				TermID:      term.ID,
				PresidentID: president.AccountID,
				AdviserID:   adviser.AccountID,
				Status:      domain.RecognitionUnrecognized,
				Type:        domain.EntityTypeNew,
			}
			if err := tx.Councils.Create(ctx, council); err != nil {
				return err
			}
			result.OwnerType, result.EntityID = domain.OwnerTypeCouncil, council.ID
		default:
			return domain.ValidationError("unknown application type %q", locked.Type)
		}

		now := s.now()
		locked.Status = domain.ApplicationStatusApproved
		locked.ReviewedBy = &reviewerID
		locked.ReviewedAt = &now
		ok, err := tx.Applications.MarkDecided(ctx, locked)
		if err != nil {
			return fmt.Errorf("failed to mark application approved: %w", err)
		}
		if !ok {
			return domain.ErrAlreadyProcessed
		}
		result.Application = locked
		return nil
	})
	if err != nil {
		logger.ExitMethodWithError("applicationService.Approve", err, "applicationID", applicationID)
		return nil, err
	}

	logger.Transition("application", applicationID, string(domain.ApplicationStatusPendingReview), string(domain.ApplicationStatusApproved),
		"entity", result.EntityName, "entityID", result.EntityID)
	s.notifyApproved(ctx, result)

	logger.ExitMethod("applicationService.Approve", "applicationID", applicationID, "entityID", result.EntityID)
	return result, nil
}

// Reject is a single conditional update; a row that already left
// pending_review is reported as already processed.
func (s *applicationService) Reject(ctx context.Context, applicationID, reviewerID int32, reason string) (*domain.Application, error) {
	logger.EnterMethod("applicationService.Reject", "applicationID", applicationID, "reviewerID", reviewerID)

	reason = strings.TrimSpace(reason)
	if reason == "" {
		err := domain.ValidationError("rejection reason is required")
		logger.ExitMethodWithError("applicationService.Reject", err)
		return nil, err
	}

	repos := s.store.Repos()
	now := s.now()
	update := &domain.Application{
		ID:              applicationID,
		Status:          domain.ApplicationStatusRejected,
		RejectionReason: &reason,
		ReviewedBy:      &reviewerID,
		ReviewedAt:      &now,
	}
	ok, err := repos.Applications.MarkDecided(ctx, update)
	if err != nil {
		logger.ExitMethodWithError("applicationService.Reject", err)
		return nil, fmt.Errorf("failed to reject application: %w", err)
	}

	app, err := repos.Applications.GetByID(ctx, applicationID)
	if err != nil {
		logger.ExitMethodWithError("applicationService.Reject", err)
		return nil, err
	}
	if !ok {
		logger.ExitMethodWithError("applicationService.Reject", domain.ErrAlreadyProcessed, "status", app.Status)
		return nil, domain.ErrAlreadyProcessed
	}

	logger.Transition("application", applicationID, string(domain.ApplicationStatusPendingReview), string(domain.ApplicationStatusRejected))
	s.notify(ctx, app.VerifiedEmail, domain.NotificationApplicationRejected, map[string]string{
		notify.KeyEntityName: displayName(app),
		notify.KeyReason:     reason,
	})

	logger.ExitMethod("applicationService.Reject", "applicationID", applicationID)
	return app, nil
}

func (s *applicationService) notifyApproved(ctx context.Context, res *ProvisionResult) {
	for _, cred := range []domain.Credentials{res.President, res.Adviser} {
		s.notify(ctx, cred.Email, domain.NotificationCredentialsCreated, map[string]string{
			notify.KeyName:       cred.FullName,
			notify.KeyUsername:   cred.Username,
			notify.KeyPassword:   cred.RawPassword,
			notify.KeyRole:       string(cred.Role),
			notify.KeyEntityName: res.EntityName,
		})
	}
	s.notify(ctx, res.Application.VerifiedEmail, domain.NotificationApplicationApproved, map[string]string{
		notify.KeyEntityName: res.EntityName,
		notify.KeyEntityCode: res.EntityCode,
	})
}

// notify never fails the caller: delivery problems are logged only.
func (s *applicationService) notify(ctx context.Context, to string, kind domain.NotificationKind, payload map[string]string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, to, kind, payload); err != nil {
		logger.Error("Notification failed after committed transition", "to", to, "kind", kind, "error", err)
	}
}

// entityIdentity derives the code and name the approved entity is created
// with.
func entityIdentity(app *domain.Application, college *domain.College) (code, name string) {
	if app.Type == domain.ApplicationTypeCouncil {
		return domain.CouncilIdentity(college)
	}
	return domain.NormalizeCode(app.OrgCode), domain.NormalizeEntityName(app.OrgName)
}

func displayName(app *domain.Application) string {
	if app.Type == domain.ApplicationTypeOrganization && app.OrgName != "" {
		return domain.NormalizeEntityName(app.OrgName)
	}
	return "the student council application"
}

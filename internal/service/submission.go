package service

import (
	"context"
	"fmt"
	"time"

	"orggov-backend/internal/domain"
	"orggov-backend/internal/logger"
	"orggov-backend/internal/notify"
	"orggov-backend/internal/repository"
	"orggov-backend/internal/security"
	"orggov-backend/internal/utils"

	"github.com/google/uuid"
)

const verificationCodeLength = 6

// SubmissionSettings are the staging limits read from configuration.
type SubmissionSettings struct {
	TTL         time.Duration
	MaxAttempts int
	// EmailDomain restricts contact addresses; empty allows any.
	EmailDomain string
}

type submissionService struct {
	store    repository.Store
	notifier notify.Notifier
	settings SubmissionSettings
	now      func() time.Time
}

func NewSubmissionService(store repository.Store, notifier notify.Notifier, settings SubmissionSettings) SubmissionService {
	if settings.TTL <= 0 {
		settings.TTL = 15 * time.Minute
	}
	if settings.MaxAttempts <= 0 {
		settings.MaxAttempts = 5
	}
	return &submissionService{
		store:    store,
		notifier: notifier,
		settings: settings,
		now:      time.Now,
	}
}

// Stage validates a public application draft and stores it until the
// verifying contact confirms the emailed code. The guard checks here are
// advisory; approval repeats them authoritatively.
func (s *submissionService) Stage(ctx context.Context, draft domain.ApplicationDraft) (*domain.SubmissionPreview, error) {
	logger.EnterMethod("submissionService.Stage", "type", draft.Type, "collegeID", draft.CollegeID)

	normalizeDraft(&draft)
	if err := utils.ValidateStruct(&draft); err != nil {
		logger.ExitMethodWithError("submissionService.Stage", err)
		return nil, err
	}
	for _, email := range []string{draft.PresidentEmail, draft.AdviserEmail} {
		if !utils.EmailInDomain(email, s.settings.EmailDomain) {
			err := domain.ValidationError("%s is not an @%s address", email, s.settings.EmailDomain)
			logger.ExitMethodWithError("submissionService.Stage", err)
			return nil, err
		}
	}

	repos := s.store.Repos()
	college, err := repos.Colleges.GetByID(ctx, draft.CollegeID)
	if err != nil {
		return nil, err
	}
	if draft.Type == domain.ApplicationTypeOrganization {
		course, err := repos.Courses.GetByID(ctx, *draft.CourseID)
		if err != nil {
			return nil, err
		}
		if course.CollegeID != college.ID {
			return nil, domain.ValidationError("course %s does not belong to %s", course.Code, college.Name)
		}
	} else {
		draft.CourseID = nil
		draft.OrgCode = ""
		draft.OrgName = ""
	}

	if err := checkEntityAvailable(ctx, repos, draft.Type, draft.CollegeID, draft.CourseID, draft.OrgCode); err != nil {
		logger.ExitMethodWithError("submissionService.Stage", err)
		return nil, err
	}
	if err := checkEmailsAvailable(ctx, repos, draft.PresidentEmail, draft.AdviserEmail); err != nil {
		logger.ExitMethodWithError("submissionService.Stage", err)
		return nil, err
	}

	preview := &domain.SubmissionPreview{VerifiedEmail: draft.VerifiedEmail()}
	if draft.Type == domain.ApplicationTypeCouncil {
		preview.EntityCode, preview.EntityName = domain.CouncilIdentity(college)
	} else {
		preview.EntityCode, preview.EntityName = draft.OrgCode, draft.OrgName
	}

	code, err := security.RandomDigits(verificationCodeLength)
	if err != nil {
		return nil, err
	}
	hash, err := security.HashPassword(code)
	if err != nil {
		return nil, err
	}

	pending := &domain.PendingSubmission{
		Token:         uuid.NewString(),
		Draft:         draft,
		VerifiedEmail: preview.VerifiedEmail,
		CodeHash:      hash,
		ExpiresAt:     s.now().Add(s.settings.TTL),
	}
	if err := repos.Submissions.Create(ctx, pending); err != nil {
		logger.ExitMethodWithError("submissionService.Stage", err)
		return nil, fmt.Errorf("failed to stage submission: %w", err)
	}
	preview.Token = pending.Token
	preview.ExpiresAt = pending.ExpiresAt

	if s.notifier != nil {
		err := s.notifier.Notify(ctx, pending.VerifiedEmail, domain.NotificationVerificationCode, map[string]string{
			notify.KeyCode:       code,
			notify.KeyEntityName: preview.EntityName,
			notify.KeyExpiresIn:  s.settings.TTL.String(),
		})
		if err != nil {
			logger.Error("Failed to send verification code", "to", pending.VerifiedEmail, "error", err)
		}
	}

	logger.ExitMethod("submissionService.Stage", "token", pending.Token)
	return preview, nil
}

// Verify confirms the code and turns the staged draft into a pending
// application. Failed attempts are persisted, so the transaction commits
// and the verification outcome is returned separately.
func (s *submissionService) Verify(ctx context.Context, token, code string) (*domain.Application, error) {
	logger.EnterMethod("submissionService.Verify", "token", token)

	var (
		app       *domain.Application
		verifyErr error
	)
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx *repository.Repositories) error {
		pending, err := tx.Submissions.GetForUpdate(ctx, token)
		if err != nil {
			if domain.IsKind(err, domain.KindNotFound) {
				verifyErr = domain.NotFoundError("verification request not found or already used")
				return nil
			}
			return err
		}

		if pending.Expired(s.now()) {
			verifyErr = domain.StateViolationError("verification code has expired; please submit the application again")
			return tx.Submissions.Delete(ctx, token)
		}

		if !security.CheckPassword(pending.CodeHash, code) {
			attempts := pending.Attempts + 1
			if attempts >= s.settings.MaxAttempts {
				verifyErr = domain.ValidationError("incorrect verification code; too many attempts, please submit the application again")
				return tx.Submissions.Delete(ctx, token)
			}
			verifyErr = domain.ValidationError("incorrect verification code; %d attempts left", s.settings.MaxAttempts-attempts)
			return tx.Submissions.UpdateAttempts(ctx, token, attempts)
		}

		d := pending.Draft
		app = &domain.Application{
			Type:           d.Type,
			Status:         domain.ApplicationStatusPendingReview,
			CollegeID:      d.CollegeID,
			CourseID:       d.CourseID,
			OrgCode:        d.OrgCode,
			OrgName:        d.OrgName,
			PresidentName:  d.PresidentName,
			PresidentEmail: d.PresidentEmail,
			AdviserName:    d.AdviserName,
			AdviserEmail:   d.AdviserEmail,
			VerifiedBy:     d.VerifiedBy,
			VerifiedEmail:  pending.VerifiedEmail,
		}
		if err := tx.Applications.Create(ctx, app); err != nil {
			return fmt.Errorf("failed to create application: %w", err)
		}
		return tx.Submissions.Delete(ctx, token)
	})
	if err != nil {
		logger.ExitMethodWithError("submissionService.Verify", err)
		return nil, err
	}
	if verifyErr != nil {
		logger.ExitMethodWithError("submissionService.Verify", verifyErr)
		return nil, verifyErr
	}

	logger.Info("Application submitted", "applicationID", app.ID, "type", app.Type, "verifiedEmail", app.VerifiedEmail)
	logger.ExitMethod("submissionService.Verify", "applicationID", app.ID)
	return app, nil
}

// CouncilPreview returns the code and name a council for the college would
// be provisioned with.
func (s *submissionService) CouncilPreview(ctx context.Context, collegeID int32) (string, string, error) {
	college, err := s.store.Repos().Colleges.GetByID(ctx, collegeID)
	if err != nil {
		return "", "", err
	}
	code, name := domain.CouncilIdentity(college)
	return code, name, nil
}

func (s *submissionService) PurgeExpired(ctx context.Context) (int64, error) {
	n, err := s.store.Repos().Submissions.DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("failed to purge expired submissions: %w", err)
	}
	return n, nil
}

func normalizeDraft(d *domain.ApplicationDraft) {
	d.PresidentName = domain.NormalizePersonName(d.PresidentName)
	d.AdviserName = domain.NormalizePersonName(d.AdviserName)
	d.PresidentEmail = domain.NormalizeEmail(d.PresidentEmail)
	d.AdviserEmail = domain.NormalizeEmail(d.AdviserEmail)
	d.OrgCode = domain.NormalizeCode(d.OrgCode)
	d.OrgName = domain.NormalizeEntityName(d.OrgName)
}

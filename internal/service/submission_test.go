package service

import (
	"testing"
	"time"

	"orggov-backend/internal/domain"
	"orggov-backend/internal/notify"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func (f *fixture) submissions(notifier notify.Notifier) *submissionService {
	svc := NewSubmissionService(f.store, notifier, SubmissionSettings{
		TTL:         15 * time.Minute,
		MaxAttempts: 3,
		EmailDomain: "school.edu",
	}).(*submissionService)
	svc.now = func() time.Time { return f.now }
	return svc
}

func (f *fixture) orgDraft() domain.ApplicationDraft {
	courseID := f.course.ID
	return domain.ApplicationDraft{
		Type:           domain.ApplicationTypeOrganization,
		CollegeID:      f.college.ID,
		CourseID:       &courseID,
		OrgCode:        " csc ",
		OrgName:        "computer science club",
		PresidentName:  "Juan dela Cruz",
		PresidentEmail: "Pres@School.edu",
		AdviserName:    "Maria Santos",
		AdviserEmail:   "adviser@school.edu",
		VerifiedBy:     domain.VerifiedByAdviser,
	}
}

// captureCode records the verification code sent by Stage.
func captureCode(n *MockNotifier, code *string) {
	n.On("Notify", mock.Anything, mock.Anything, domain.NotificationVerificationCode, mock.Anything).
		Run(func(args mock.Arguments) {
			*code = args.Get(3).(map[string]string)[notify.KeyCode]
		}).Return(nil)
}

func TestStageAndVerify(t *testing.T) {
	f := newFixture(t)
	notifier := new(MockNotifier)
	var code string
	captureCode(notifier, &code)
	svc := f.submissions(notifier)

	preview, err := svc.Stage(f.ctx, f.orgDraft())
	require.NoError(t, err)
	assert.Equal(t, "CSC", preview.EntityCode)
	assert.Equal(t, "Computer Science Club", preview.EntityName)
	assert.Equal(t, "adviser@school.edu", preview.VerifiedEmail)
	assert.Equal(t, f.now.Add(15*time.Minute), preview.ExpiresAt)
	assert.Regexp(t, `^[0-9]{6}$`, code)
	notifier.AssertCalled(t, "Notify", mock.Anything, "adviser@school.edu", domain.NotificationVerificationCode, mock.Anything)

	app, err := svc.Verify(f.ctx, preview.Token, code)
	require.NoError(t, err)
	assert.Equal(t, domain.ApplicationStatusPendingReview, app.Status)
	assert.Equal(t, "pres@school.edu", app.PresidentEmail)
	assert.Equal(t, "JUAN DELA CRUZ", app.PresidentName)
	assert.Equal(t, "adviser@school.edu", app.VerifiedEmail)

	_, err = svc.Verify(f.ctx, preview.Token, code)
	assert.True(t, domain.IsKind(err, domain.KindNotFound))
}

func TestStage_CouncilPreviewMatchesProvisioning(t *testing.T) {
	f := newFixture(t)
	notifier := new(MockNotifier)
	var code string
	captureCode(notifier, &code)
	svc := f.submissions(notifier)

	preview, err := svc.Stage(f.ctx, domain.ApplicationDraft{
		Type:           domain.ApplicationTypeCouncil,
		CollegeID:      f.college.ID,
		PresidentName:  "Ana Reyes",
		PresidentEmail: "ana@school.edu",
		AdviserName:    "Jose Rizal",
		AdviserEmail:   "jose@school.edu",
		VerifiedBy:     domain.VerifiedByPresident,
	})
	require.NoError(t, err)

	code2, name, err := svc.CouncilPreview(f.ctx, f.college.ID)
	require.NoError(t, err)
	assert.Equal(t, code2, preview.EntityCode)
	assert.Equal(t, name, preview.EntityName)

	app, err := svc.Verify(f.ctx, preview.Token, code)
	require.NoError(t, err)
	res, err := f.applications().Approve(f.ctx, app.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, preview.EntityCode, res.EntityCode)
	assert.Equal(t, preview.EntityName, res.EntityName)
}

func TestStage_Validation(t *testing.T) {
	f := newFixture(t)
	notifier := new(MockNotifier)
	svc := f.submissions(notifier)

	t.Run("Missing fields", func(t *testing.T) {
		draft := f.orgDraft()
		draft.OrgCode = ""
		draft.PresidentName = ""
		_, err := svc.Stage(f.ctx, draft)
		require.Error(t, err)
		assert.True(t, domain.IsKind(err, domain.KindValidation))
		assert.Contains(t, err.Error(), "org_code is required")
		assert.Contains(t, err.Error(), "president_name is required")
	})

	t.Run("Outside institution domain", func(t *testing.T) {
		draft := f.orgDraft()
		draft.AdviserEmail = "adviser@gmail.com"
		_, err := svc.Stage(f.ctx, draft)
		assert.True(t, domain.IsKind(err, domain.KindValidation))
	})

	t.Run("Course from another college", func(t *testing.T) {
		other := f.store.AddCollege(domain.College{Code: "CBA", Name: "College of Business"})
		course := f.store.AddCourse(domain.Course{CollegeID: other.ID, Code: "BSA", Name: "BS Accountancy"})
		draft := f.orgDraft()
		draft.CourseID = &course.ID
		_, err := svc.Stage(f.ctx, draft)
		assert.True(t, domain.IsKind(err, domain.KindValidation))
	})

	t.Run("Course already has an organization", func(t *testing.T) {
		f.orgApplication(t, "coding guild", "GUILD", "g1@school.edu", "g2@school.edu")
		apps, err := f.store.Repos().Applications.ListByStatus(f.ctx, domain.ApplicationStatusPendingReview)
		require.NoError(t, err)
		_, err = f.applications().Approve(f.ctx, apps[0].ID, 1)
		require.NoError(t, err)

		_, err = svc.Stage(f.ctx, f.orgDraft())
		require.Error(t, err)
		assert.True(t, domain.IsKind(err, domain.KindConflict))
		assert.Contains(t, err.Error(), "Coding Guild")
	})

	notifier.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestVerify_Failures(t *testing.T) {
	f := newFixture(t)
	notifier := new(MockNotifier)
	var code string
	captureCode(notifier, &code)
	svc := f.submissions(notifier)

	t.Run("Unknown token", func(t *testing.T) {
		_, err := svc.Verify(f.ctx, "missing", "123456")
		assert.True(t, domain.IsKind(err, domain.KindNotFound))
	})

	t.Run("Attempts are limited", func(t *testing.T) {
		preview, err := svc.Stage(f.ctx, f.orgDraft())
		require.NoError(t, err)
		wrong := "000000"
		if code == wrong {
			wrong = "111111"
		}

		_, err = svc.Verify(f.ctx, preview.Token, wrong)
		assert.True(t, domain.IsKind(err, domain.KindValidation))
		assert.Contains(t, err.Error(), "2 attempts left")

		pending, err := f.store.Repos().Submissions.GetForUpdate(f.ctx, preview.Token)
		require.NoError(t, err)
		assert.Equal(t, 1, pending.Attempts)

		_, err = svc.Verify(f.ctx, preview.Token, wrong)
		assert.True(t, domain.IsKind(err, domain.KindValidation))
		_, err = svc.Verify(f.ctx, preview.Token, wrong)
		assert.True(t, domain.IsKind(err, domain.KindValidation))
		assert.Contains(t, err.Error(), "too many attempts")

		_, err = svc.Verify(f.ctx, preview.Token, code)
		assert.True(t, domain.IsKind(err, domain.KindNotFound))
	})

	t.Run("Expired", func(t *testing.T) {
		preview, err := svc.Stage(f.ctx, f.orgDraft())
		require.NoError(t, err)

		f.now = f.now.Add(time.Hour)
		_, err = svc.Verify(f.ctx, preview.Token, code)
		assert.True(t, domain.IsKind(err, domain.KindStateViolation))

		apps, err := f.store.Repos().Applications.ListByStatus(f.ctx, domain.ApplicationStatusPendingReview)
		require.NoError(t, err)
		assert.Empty(t, apps)
	})
}

func TestPurgeExpired(t *testing.T) {
	f := newFixture(t)
	notifier := new(MockNotifier)
	notifier.On("Notify", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	svc := f.submissions(notifier)

	_, err := svc.Stage(f.ctx, f.orgDraft())
	require.NoError(t, err)

	n, err := svc.PurgeExpired(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	f.now = f.now.Add(time.Hour)
	n, err = svc.PurgeExpired(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

package service

import (
	"sync"
	"testing"

	"orggov-backend/internal/domain"
	"orggov-backend/internal/notify"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestApprove_Organization(t *testing.T) {
	f := newFixture(t)
	app := f.orgApplication(t, "computer  science club", "csc", "pres@school.edu", "adviser@school.edu")

	res, err := f.applications().Approve(f.ctx, app.ID, 7)
	require.NoError(t, err)

	org, err := f.store.Repos().Organizations.GetByID(f.ctx, res.EntityID)
	require.NoError(t, err)
	assert.Equal(t, "Computer Science Club", org.Name)
	assert.Equal(t, "CSC", org.Code)
	assert.Equal(t, domain.RecognitionUnrecognized, org.Status)
	assert.Equal(t, domain.EntityTypeNew, org.Type)
	assert.Equal(t, f.term.ID, org.TermID)
	assert.Equal(t, res.President.AccountID, org.PresidentID)
	assert.Equal(t, res.Adviser.AccountID, org.AdviserID)

	president, err := f.store.Repos().Accounts.GetByID(f.ctx, res.President.AccountID)
	require.NoError(t, err)
	assert.Equal(t, "JUAN DELA CRUZ", president.FullName)
	assert.Equal(t, domain.RoleOrgPresident, president.Role)
	assert.Regexp(t, `^juan_dela_cruz_[0-9]{4}$`, president.Username)
	assert.NotEqual(t, res.President.RawPassword, president.PasswordHash)

	adviser, err := f.store.Repos().Accounts.GetByID(f.ctx, res.Adviser.AccountID)
	require.NoError(t, err)
	assert.Equal(t, "MARIA SANTOS", adviser.FullName)
	assert.Equal(t, domain.RoleOrgAdviser, adviser.Role)

	stored, err := f.store.Repos().Applications.GetByID(f.ctx, app.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ApplicationStatusApproved, stored.Status)
	require.NotNil(t, stored.ReviewedBy)
	assert.Equal(t, int32(7), *stored.ReviewedBy)
	assert.Equal(t, f.now, *stored.ReviewedAt)

	creds := f.notifier.byKind(domain.NotificationCredentialsCreated)
	require.Len(t, creds, 2)
	assert.Equal(t, "pres@school.edu", creds[0].To)
	assert.Equal(t, res.President.RawPassword, creds[0].Payload[notify.KeyPassword])
	assert.Equal(t, "adviser@school.edu", creds[1].To)

	approved := f.notifier.byKind(domain.NotificationApplicationApproved)
	require.Len(t, approved, 1)
	assert.Equal(t, app.VerifiedEmail, approved[0].To)
}

func TestApprove_CouncilUsesCollegeIdentity(t *testing.T) {
	f := newFixture(t)
	app := f.councilApplication(t, "ana@school.edu", "jose@school.edu")

	res, err := f.applications().Approve(f.ctx, app.ID, 1)
	require.NoError(t, err)

	council, err := f.store.Repos().Councils.GetByID(f.ctx, res.EntityID)
	require.NoError(t, err)
	code, name := domain.CouncilIdentity(&f.college)
	assert.Equal(t, "CCS-SC", council.Code)
	assert.Equal(t, code, council.Code)
	assert.Equal(t, "College Of Computer Studies Student Council", council.Name)
	assert.Equal(t, name, council.Name)
	assert.Equal(t, domain.OwnerTypeCouncil, res.OwnerType)
}

func TestApprove_TakenEmailCreatesNothing(t *testing.T) {
	f := newFixture(t)
	f.addAccount(t, "existing", "adviser@school.edu", domain.RoleOrgAdviser)
	app := f.orgApplication(t, "robotics club", "ROBO", "pres@school.edu", "adviser@school.edu")
	before := f.store.CountAccounts()

	_, err := f.applications().Approve(f.ctx, app.ID, 1)
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindConflict))
	assert.Contains(t, err.Error(), "adviser@school.edu")

	assert.Equal(t, before, f.store.CountAccounts())
	org, err := f.store.Repos().Organizations.FindByCourse(f.ctx, f.course.ID)
	require.NoError(t, err)
	assert.Nil(t, org)
	stored, err := f.store.Repos().Applications.GetByID(f.ctx, app.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ApplicationStatusPendingReview, stored.Status)
	assert.Empty(t, f.notifier.sent)
}

func TestApprove_RollsBackWhenEntityConflicts(t *testing.T) {
	f := newFixture(t)
	first := f.orgApplication(t, "computer science club", "CSC", "a@school.edu", "b@school.edu")
	second := f.orgApplication(t, "coding guild", "GUILD", "c@school.edu", "d@school.edu")
	svc := f.applications()

	_, err := svc.Approve(f.ctx, first.ID, 1)
	require.NoError(t, err)
	accounts := f.store.CountAccounts()

	_, err = svc.Approve(f.ctx, second.ID, 1)
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindConflict))
	assert.Contains(t, err.Error(), "Computer Science Club")
	assert.Equal(t, accounts, f.store.CountAccounts())
}

func TestApprove_OrgCodeTaken(t *testing.T) {
	f := newFixture(t)
	other := f.store.AddCourse(domain.Course{CollegeID: f.college.ID, Code: "BSIT", Name: "BS Information Technology"})
	first := f.orgApplication(t, "computer science club", "CSC", "a@school.edu", "b@school.edu")
	second := &domain.Application{
		Type:           domain.ApplicationTypeOrganization,
		CollegeID:      f.college.ID,
		CourseID:       &other.ID,
		OrgCode:        "CSC",
		OrgName:        "code society",
		PresidentName:  "Pedro Penduko",
		PresidentEmail: "c@school.edu",
		AdviserName:    "Lola Basyang",
		AdviserEmail:   "d@school.edu",
		VerifiedBy:     domain.VerifiedByPresident,
		VerifiedEmail:  "c@school.edu",
	}
	require.NoError(t, f.store.Repos().Applications.Create(f.ctx, second))
	svc := f.applications()

	_, err := svc.Approve(f.ctx, first.ID, 1)
	require.NoError(t, err)

	_, err = svc.Approve(f.ctx, second.ID, 1)
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindConflict))
	assert.Contains(t, err.Error(), "organization code CSC")
}

func TestDecide_TwiceIsStateViolation(t *testing.T) {
	f := newFixture(t)
	app := f.councilApplication(t, "ana@school.edu", "jose@school.edu")
	svc := f.applications()

	res, err := svc.Decide(f.ctx, app.ID, domain.DecisionApprove, 1, "")
	require.NoError(t, err)
	require.NotNil(t, res.Provision)

	_, err = svc.Decide(f.ctx, app.ID, domain.DecisionApprove, 1, "")
	assert.ErrorIs(t, err, domain.ErrAlreadyProcessed)
	assert.True(t, domain.IsKind(err, domain.KindStateViolation))

	_, err = svc.Decide(f.ctx, app.ID, domain.DecisionReject, 1, "late")
	assert.True(t, domain.IsKind(err, domain.KindStateViolation))

	assert.Equal(t, 1, f.store.CountCouncils(f.college.ID))
}

func TestDecide_InvalidDecision(t *testing.T) {
	f := newFixture(t)
	app := f.councilApplication(t, "ana@school.edu", "jose@school.edu")

	_, err := f.applications().Decide(f.ctx, app.ID, domain.Decision("maybe"), 1, "")
	assert.True(t, domain.IsKind(err, domain.KindValidation))
}

// Two council applications for the same college approved at once.
func TestApprove_ConcurrentCouncilsForSameCollege(t *testing.T) {
	f := newFixture(t)
	first := f.councilApplication(t, "p1@school.edu", "a1@school.edu")
	second := f.councilApplication(t, "p2@school.edu", "a2@school.edu")
	svc := f.applications()

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, id := range []int32{first.ID, second.ID} {
		wg.Add(1)
		go func(i int, id int32) {
			defer wg.Done()
			_, errs[i] = svc.Approve(f.ctx, id, 1)
		}(i, id)
	}
	wg.Wait()

	failures := 0
	for _, err := range errs {
		if err != nil {
			failures++
			assert.True(t, domain.IsKind(err, domain.KindConflict), "unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, failures)
	assert.Equal(t, 1, f.store.CountCouncils(f.college.ID))
	assert.Equal(t, 2, f.store.CountAccounts())
}

func TestApprove_NoActiveTerm(t *testing.T) {
	f := newFixtureWithoutTerm(t)
	app := f.councilApplication(t, "ana@school.edu", "jose@school.edu")

	_, err := f.applications().Approve(f.ctx, app.ID, 1)
	assert.ErrorIs(t, err, domain.ErrNoActiveTerm)
	assert.True(t, domain.IsKind(err, domain.KindFatal))
	assert.Equal(t, 0, f.store.CountAccounts())

	stored, err := f.store.Repos().Applications.GetByID(f.ctx, app.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsPending())
}

func TestReject(t *testing.T) {
	f := newFixture(t)
	app := f.orgApplication(t, "chess club", "CHESS", "pres@school.edu", "adviser@school.edu")
	notifier := new(MockNotifier)
	svc := NewApplicationService(f.store, NewProvisioner(), notifier)

	t.Run("Reason required", func(t *testing.T) {
		_, err := svc.Reject(f.ctx, app.ID, 1, "   ")
		assert.True(t, domain.IsKind(err, domain.KindValidation))
	})

	t.Run("Success", func(t *testing.T) {
		notifier.On("Notify", mock.Anything, "pres@school.edu", domain.NotificationApplicationRejected,
			mock.MatchedBy(func(p map[string]string) bool {
				return p[notify.KeyReason] == "incomplete requirements" && p[notify.KeyEntityName] == "Chess Club"
			})).Return(nil).Once()

		rejected, err := svc.Reject(f.ctx, app.ID, 1, " incomplete requirements ")
		require.NoError(t, err)
		assert.Equal(t, domain.ApplicationStatusRejected, rejected.Status)
		require.NotNil(t, rejected.RejectionReason)
		assert.Equal(t, "incomplete requirements", *rejected.RejectionReason)
		assert.NotNil(t, rejected.ReviewedAt)
	})

	t.Run("Already processed", func(t *testing.T) {
		_, err := svc.Approve(f.ctx, app.ID, 1)
		assert.ErrorIs(t, err, domain.ErrAlreadyProcessed)
		_, err = svc.Reject(f.ctx, app.ID, 1, "again")
		assert.ErrorIs(t, err, domain.ErrAlreadyProcessed)
	})

	t.Run("Unknown application", func(t *testing.T) {
		_, err := svc.Reject(f.ctx, 9999, 1, "missing")
		assert.True(t, domain.IsKind(err, domain.KindNotFound))
	})

	notifier.AssertExpectations(t)
	assert.Equal(t, 0, f.store.CountAccounts())
}

func TestReject_NotificationFailureDoesNotFail(t *testing.T) {
	f := newFixture(t)
	app := f.orgApplication(t, "chess club", "CHESS", "pres@school.edu", "adviser@school.edu")
	notifier := new(MockNotifier)
	notifier.On("Notify", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(assert.AnError)

	_, err := NewApplicationService(f.store, NewProvisioner(), notifier).Reject(f.ctx, app.ID, 1, "duplicate")
	assert.NoError(t, err)
	notifier.AssertNumberOfCalls(t, "Notify", 1)
}

func TestListPending(t *testing.T) {
	f := newFixture(t)
	f.orgApplication(t, "chess club", "CHESS", "a@school.edu", "b@school.edu")
	decided := f.councilApplication(t, "c@school.edu", "d@school.edu")
	svc := f.applications()
	_, err := svc.Reject(f.ctx, decided.ID, 1, "duplicate")
	require.NoError(t, err)

	pending, err := svc.ListPending(f.ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, domain.ApplicationTypeOrganization, pending[0].Type)
}

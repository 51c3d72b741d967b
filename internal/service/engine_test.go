package service

import (
	"testing"
	"time"

	"orggov-backend/internal/domain"
	"orggov-backend/internal/security"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func (f *fixture) engine() *Engine {
	return NewEngine(f.applications(), f.documents(), NewOfficerService(f.store, f.files))
}

func TestEngineApply(t *testing.T) {
	f := newFixture(t)
	engine := f.engine()
	org := f.orgApplication(t, "chess club", "CHESS", "p@school.edu", "a@school.edu")
	council := f.councilApplication(t, "cp@school.edu", "ca@school.edu")

	res, err := engine.Apply(f.ctx, domain.RejectApplication{ApplicationID: org.ID, ReviewerID: 3, Reason: "incomplete"})
	require.NoError(t, err)
	assert.Equal(t, "reject_application", res.Command)
	assert.Equal(t, domain.ApplicationStatusRejected, res.Application.Status)

	res, err = engine.Apply(f.ctx, domain.ApproveApplication{ApplicationID: council.ID, ReviewerID: 3})
	require.NoError(t, err)
	require.NotNil(t, res.Provision)
	assert.Equal(t, domain.ApplicationStatusApproved, res.Application.Status)

	_, err = engine.Apply(f.ctx, domain.ApproveApplication{ApplicationID: council.ID, ReviewerID: 3})
	assert.True(t, domain.IsKind(err, domain.KindStateViolation))

	_, err = engine.Apply(f.ctx, domain.AddOfficer{
		OwnerType:     domain.OwnerTypeCouncil,
		OwnerID:       res.Provision.EntityID,
		StudentNumber: "2023-00001",
		FullName:      "Ana Reyes",
		Position:      "president",
	})
	assert.NoError(t, err)

	_, err = engine.Apply(f.ctx, nil)
	assert.True(t, domain.IsKind(err, domain.KindValidation))
}

func TestEngineApply_DocumentCommands(t *testing.T) {
	f := newFixture(t)
	engine := f.engine()
	owner := f.recognizedOrg(t)
	view, err := f.documents().CreateProposal(f.ctx, proposalInput(owner,
		domain.DocumentUpload{DocumentType: domain.DocumentTypeActivityProposal, File: pdfUpload("activity.pdf", 1024)},
	))
	require.NoError(t, err)
	docID := view.Documents[0].ID

	res, err := engine.Apply(f.ctx, domain.AdviserDecideDocument{DocumentID: docID, AdviserID: owner.Adviser.AccountID, Decision: domain.DecisionReject, Reason: "no signature"})
	require.NoError(t, err)
	assert.Equal(t, domain.DocumentStatusAdviserRejected, res.Document.Status)

	res, err = engine.Apply(f.ctx, domain.ResubmitDocument{DocumentID: docID, SubmittedBy: owner.President.AccountID, File: pdfUpload("signed.pdf", 1024)})
	require.NoError(t, err)
	assert.Equal(t, domain.DocumentStatusPending, res.Document.Status)

	_, err = engine.Apply(f.ctx, domain.AdviserDecideDocument{DocumentID: docID, AdviserID: owner.Adviser.AccountID, Decision: domain.DecisionApprove})
	require.NoError(t, err)

	res, err = engine.Apply(f.ctx, domain.OsasDecideDocument{DocumentID: docID, ReviewerID: 9, Decision: domain.DecisionApprove})
	require.NoError(t, err)
	assert.Equal(t, domain.DocumentStatusOsasApproved, res.Document.Status)
}

func TestRecognize(t *testing.T) {
	f := newFixture(t)
	app := f.councilApplication(t, "cp@school.edu", "ca@school.edu")
	res, err := f.applications().Approve(f.ctx, app.ID, 1)
	require.NoError(t, err)
	svc := NewEntityService(f.store)

	owner, err := svc.Recognize(f.ctx, domain.OwnerTypeCouncil, res.EntityID)
	require.NoError(t, err)
	assert.True(t, owner.Recognized())

	_, err = svc.Recognize(f.ctx, domain.OwnerTypeCouncil, res.EntityID)
	assert.True(t, domain.IsKind(err, domain.KindStateViolation))

	_, err = svc.Recognize(f.ctx, domain.OwnerTypeOrganization, 404)
	assert.True(t, domain.IsKind(err, domain.KindNotFound))

	president, err := f.store.Repos().Accounts.GetByID(f.ctx, res.President.AccountID)
	require.NoError(t, err)
	presided, err := svc.OwnerForPresident(f.ctx, president)
	require.NoError(t, err)
	assert.Equal(t, res.EntityID, presided.ID)

	_, err = svc.OwnerForPresident(f.ctx, &domain.Account{Username: "osas", Role: domain.RoleOSAS})
	assert.True(t, domain.IsKind(err, domain.KindForbidden))
}

func TestLogin(t *testing.T) {
	f := newFixture(t)
	f.addAccount(t, "osas_admin", "osas@school.edu", domain.RoleOSAS)
	tm := security.NewTokenManager("0123456789abcdef0123456789abcdef", time.Hour)
	svc := NewAuthService(f.store, tm)

	token, account, err := svc.Login(f.ctx, " osas_admin ", "secret-password")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleOSAS, account.Role)
	claims, err := tm.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, account.ID, claims.AccountID)

	_, _, err = svc.Login(f.ctx, "osas_admin", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = svc.Login(f.ctx, "nobody", "secret-password")
	assert.True(t, domain.IsKind(err, domain.KindUnauthorized))
}

func TestSendReviewDigest(t *testing.T) {
	f := newFixture(t)
	f.addAccount(t, "osas_admin", "osas@school.edu", domain.RoleOSAS)
	notifier := new(MockNotifier)
	svc := NewDigestService(f.store, notifier)

	digest, err := svc.SendReviewDigest(f.ctx, nil)
	require.NoError(t, err)
	assert.Zero(t, digest.PendingApplications)
	notifier.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything, mock.Anything, mock.Anything)

	f.orgApplication(t, "chess club", "CHESS", "p@school.edu", "a@school.edu")
	notifier.On("Notify", mock.Anything, "osas@school.edu", domain.NotificationReviewDigest,
		mock.MatchedBy(func(p map[string]string) bool { return p["pending_applications"] == "1" })).Return(nil).Once()

	digest, err = svc.SendReviewDigest(f.ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, digest.PendingApplications)
	assert.Equal(t, []string{"osas@school.edu"}, digest.Recipients)
	notifier.AssertExpectations(t)
}

package jobs

import (
	"context"
	"errors"
	"testing"

	"orggov-backend/internal/config"
	"orggov-backend/internal/domain"
	"orggov-backend/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockSubmissionService struct {
	mock.Mock
}

func (m *MockSubmissionService) Stage(ctx context.Context, draft domain.ApplicationDraft) (*domain.SubmissionPreview, error) {
	args := m.Called(ctx, draft)
	return nil, args.Error(1)
}

func (m *MockSubmissionService) Verify(ctx context.Context, token, code string) (*domain.Application, error) {
	args := m.Called(ctx, token, code)
	return nil, args.Error(1)
}

func (m *MockSubmissionService) CouncilPreview(ctx context.Context, collegeID int32) (string, string, error) {
	args := m.Called(ctx, collegeID)
	return args.String(0), args.String(1), args.Error(2)
}

func (m *MockSubmissionService) PurgeExpired(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type MockDigestService struct {
	mock.Mock
}

func (m *MockDigestService) SendReviewDigest(ctx context.Context, recipients []string) (*service.Digest, error) {
	args := m.Called(ctx, recipients)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Digest), args.Error(1)
}

func newRunner(subs *MockSubmissionService, digest *MockDigestService) *JobRunner {
	cfg := &config.Config{}
	cfg.Scheduler.DigestRecipients = []string{"osas@school.edu"}
	return NewJobRunner(&Services{Submissions: subs, Digest: digest}, cfg)
}

func TestJobRunner_PurgeExpiredSubmissions(t *testing.T) {
	subs := new(MockSubmissionService)
	subs.On("PurgeExpired", mock.Anything).Return(int64(3), nil).Once()

	newRunner(subs, new(MockDigestService)).PurgeExpiredSubmissions()
	subs.AssertExpectations(t)
}

func TestJobRunner_SendReviewDigestUsesConfiguredRecipients(t *testing.T) {
	digest := new(MockDigestService)
	digest.On("SendReviewDigest", mock.Anything, []string{"osas@school.edu"}).
		Return(&service.Digest{PendingApplications: 2, Recipients: []string{"osas@school.edu"}}, nil).Once()

	newRunner(new(MockSubmissionService), digest).SendReviewDigest()
	digest.AssertExpectations(t)
}

func TestJobRunner_ErrorsAndPanicsDoNotEscape(t *testing.T) {
	subs := new(MockSubmissionService)
	subs.On("PurgeExpired", mock.Anything).Return(int64(0), errors.New("db down")).Once()
	digest := new(MockDigestService)
	digest.On("SendReviewDigest", mock.Anything, mock.Anything).Run(func(mock.Arguments) {
		panic("boom")
	}).Return(nil, nil)

	runner := newRunner(subs, digest)
	assert.NotPanics(t, runner.RunAll)
	subs.AssertExpectations(t)
	digest.AssertExpectations(t)
}

func TestJobRunner_ContextHasDeadline(t *testing.T) {
	subs := new(MockSubmissionService)
	subs.On("PurgeExpired", mock.MatchedBy(func(ctx context.Context) bool {
		_, ok := ctx.Deadline()
		return ok
	})).Return(int64(0), nil).Once()

	newRunner(subs, new(MockDigestService)).PurgeExpiredSubmissions()
	subs.AssertExpectations(t)
}

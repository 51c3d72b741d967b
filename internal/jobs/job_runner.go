package jobs

import (
	"context"
	"time"

	"orggov-backend/internal/config"
	"orggov-backend/internal/logger"
	"orggov-backend/internal/service"
)

// defaultJobTimeout bounds a single job run.
const defaultJobTimeout = 5 * time.Minute

// JobRunner coordinates all scheduled jobs
type JobRunner struct {
	services *Services
	config   *config.Config
	timeout  time.Duration
}

// Services holds all service dependencies needed by jobs
type Services struct {
	Submissions service.SubmissionService
	Digest      service.DigestService
}

// NewJobRunner creates a new job runner with all dependencies
func NewJobRunner(services *Services, cfg *config.Config) *JobRunner {
	return &JobRunner{
		services: services,
		config:   cfg,
		timeout:  defaultJobTimeout,
	}
}

// Config returns the configuration the runner was built with
func (jr *JobRunner) Config() *config.Config {
	return jr.config
}

// runWithRecovery wraps job execution with panic recovery
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func(ctx context.Context)) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Job panicked", "job", jobName, "panic", r)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), jr.timeout)
	defer cancel()

	start := time.Now()
	logger.Info("Starting job", "job", jobName)
	jobFunc(ctx)
	logger.Info("Job completed", "job", jobName, "duration", time.Since(start))
}

// PurgeExpiredSubmissions deletes staged submissions whose verification
// window has passed.
func (jr *JobRunner) PurgeExpiredSubmissions() {
	jr.runWithRecovery("PurgeExpiredSubmissions", func(ctx context.Context) {
		n, err := jr.services.Submissions.PurgeExpired(ctx)
		if err != nil {
			logger.Error("Failed to purge expired submissions", "error", err)
			return
		}
		logger.Info("Purged expired submissions", "count", n)
	})
}

// SendReviewDigest emails reviewers the size of the pending queues.
func (jr *JobRunner) SendReviewDigest() {
	jr.runWithRecovery("SendReviewDigest", func(ctx context.Context) {
		digest, err := jr.services.Digest.SendReviewDigest(ctx, jr.config.Scheduler.DigestRecipients)
		if err != nil {
			logger.Error("Failed to send review digest", "error", err)
			return
		}
		logger.Info("Review digest processed",
			"pending_applications", digest.PendingApplications,
			"awaiting_osas", digest.AwaitingOsas,
			"recipients", len(digest.Recipients))
	})
}

// RunAll runs every job once (for manual execution)
func (jr *JobRunner) RunAll() {
	jr.PurgeExpiredSubmissions()
	jr.SendReviewDigest()
}

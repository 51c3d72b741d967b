package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"orggov-backend/internal/domain"
	"orggov-backend/internal/logger"
	"orggov-backend/internal/notify"
	"orggov-backend/internal/repository"
)

type digestService struct {
	store    repository.Store
	notifier notify.Notifier
	now      func() time.Time
}

func NewDigestService(store repository.Store, notifier notify.Notifier) DigestService {
	return &digestService{store: store, notifier: notifier, now: time.Now}
}

// SendReviewDigest mails the review backlog counts. With no recipients
// given it addresses every OSAS account. Nothing is sent when the backlog
// is empty.
func (s *digestService) SendReviewDigest(ctx context.Context, recipients []string) (*Digest, error) {
	repos := s.store.Repos()

	pending, err := repos.Applications.CountByStatus(ctx, domain.ApplicationStatusPendingReview)
	if err != nil {
		return nil, fmt.Errorf("failed to count pending applications: %w", err)
	}
	awaiting, err := repos.Documents.CountAwaitingOsas(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count documents awaiting OSAS: %w", err)
	}

	if len(recipients) == 0 {
		accounts, err := repos.Accounts.ListByRole(ctx, domain.RoleOSAS)
		if err != nil {
			return nil, fmt.Errorf("failed to list OSAS accounts: %w", err)
		}
		for _, a := range accounts {
			recipients = append(recipients, a.Email)
		}
	}

	digest := &Digest{
		PendingApplications: pending,
		AwaitingOsas:        awaiting,
		GeneratedAt:         s.now(),
	}
	if pending+awaiting == 0 {
		logger.Info("Review backlog is empty, no digest sent")
		return digest, nil
	}

	payload := map[string]string{
		notify.KeyPendingApps:  strconv.Itoa(pending),
		notify.KeyAwaitingOsas: strconv.Itoa(awaiting),
	}
	var errs []error
	for _, to := range recipients {
		if err := s.notifier.Notify(ctx, to, domain.NotificationReviewDigest, payload); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", to, err))
			continue
		}
		digest.Recipients = append(digest.Recipients, to)
	}
	logger.Info("Review digest sent", "pendingApplications", pending, "awaitingOsas", awaiting, "recipients", len(digest.Recipients))
	return digest, errors.Join(errs...)
}

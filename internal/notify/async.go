package notify

import (
	"context"
	"sync"
	"time"

	"orggov-backend/internal/domain"
	"orggov-backend/internal/logger"
)

type job struct {
	to      string
	kind    domain.NotificationKind
	payload map[string]string
}

// AsyncNotifier queues notifications and delivers them from background
// workers so HTTP handlers return as soon as the workflow commits.
type AsyncNotifier struct {
	inner   Notifier
	jobs    chan job
	timeout time.Duration
	wg      sync.WaitGroup
	once    sync.Once
}

func NewAsyncNotifier(inner Notifier, workers, queueSize int, timeout time.Duration) *AsyncNotifier {
	if workers <= 0 {
		workers = 1
	}
	a := &AsyncNotifier{
		inner:   inner,
		jobs:    make(chan job, queueSize),
		timeout: timeout,
	}
	for i := 0; i < workers; i++ {
		a.wg.Add(1)
		go a.worker(i)
	}
	return a
}

// Notify enqueues the message. A full queue drops it with an error log.
func (a *AsyncNotifier) Notify(ctx context.Context, to string, kind domain.NotificationKind, payload map[string]string) error {
	select {
	case a.jobs <- job{to: to, kind: kind, payload: payload}:
	default:
		logger.Error("Notification queue full, dropping message", "to", to, "kind", kind)
	}
	return nil
}

func (a *AsyncNotifier) worker(id int) {
	defer a.wg.Done()
	logger.Debug("Notification worker started", "worker", id)
	for j := range a.jobs {
		ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
		if err := a.inner.Notify(ctx, j.to, j.kind, j.payload); err != nil {
			logger.Warn("Async notification failed", "worker", id, "to", j.to, "kind", j.kind, "error", err)
		}
		cancel()
	}
	logger.Debug("Notification worker stopped", "worker", id)
}

// Close stops accepting messages and waits for queued ones to drain.
// Notify must not be called after Close.
func (a *AsyncNotifier) Close() {
	a.once.Do(func() {
		close(a.jobs)
	})
	a.wg.Wait()
}

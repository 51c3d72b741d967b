// Package bootstrap builds the process-wide dependencies shared by the API
// server and the cron runner.
package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"orggov-backend/internal/config"
	"orggov-backend/internal/logger"
	"orggov-backend/internal/notify"
	"orggov-backend/internal/repository"
	"orggov-backend/internal/repository/memory"
	"orggov-backend/internal/repository/postgres"

	_ "github.com/lib/pq"
)

const (
	notifyWorkers   = 4
	notifyQueueSize = 256
	notifyTimeout   = 30 * time.Second
)

// Store is an opened repository store. DB is nil for the memory driver.
type Store struct {
	repository.Store
	DB *sql.DB
}

func (s *Store) Close() error {
	if s.DB == nil {
		return nil
	}
	return s.DB.Close()
}

// OpenStore connects to the configured database driver. The memory driver
// is loaded from the seed file when one is configured.
func OpenStore(ctx context.Context, cfg *config.Config) (*Store, error) {
	switch cfg.Database.Driver {
	case "memory":
		store := memory.NewStore()
		if cfg.Database.SeedFile != "" {
			seed, err := memory.LoadSeedFile(cfg.Database.SeedFile)
			if err != nil {
				return nil, err
			}
			if err := store.Apply(ctx, seed); err != nil {
				return nil, fmt.Errorf("failed to apply seed: %w", err)
			}
			logger.Info("Memory store seeded", "file", cfg.Database.SeedFile)
		}
		return &Store{Store: store}, nil

	case "postgres":
		logger.Debug("Connecting to database...", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database, "user", cfg.Database.User)
		db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		if err := db.PingContext(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to ping database: %w", err)
		}
		logger.Info("Database connection established")
		return &Store{Store: postgres.NewStore(db), DB: db}, nil

	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Database.Driver)
	}
}

// Senders builds one sender per configured notification channel.
func Senders(ctx context.Context, cfg *config.Config) ([]notify.Sender, error) {
	var senders []notify.Sender
	for _, ch := range cfg.Notify.Channels {
		switch strings.ToLower(strings.TrimSpace(ch)) {
		case "smtp":
			senders = append(senders, notify.NewSMTPSender(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.User, cfg.SMTP.Password, cfg.SMTP.From))
		case "sendgrid":
			senders = append(senders, notify.NewSendGridSender(cfg.SendGrid.APIKey, cfg.SendGrid.FromEmail, cfg.SendGrid.FromName))
		case "push":
			push, err := notify.NewPushSender(ctx, cfg.Firebase.ProjectID, cfg.Firebase.CredentialsFile, cfg.Firebase.Topic)
			if err != nil {
				return nil, fmt.Errorf("failed to initialize push notifications: %w", err)
			}
			senders = append(senders, push)
		default:
			return nil, fmt.Errorf("unknown notification channel: %s", ch)
		}
	}
	logger.Info("Notification channels configured", "channels", cfg.Notify.Channels)
	return senders, nil
}

// Notifier wires the configured senders behind a dispatcher that records
// every attempt, then a worker queue so callers never wait on delivery.
// The caller must Close the returned notifier on shutdown.
func Notifier(ctx context.Context, cfg *config.Config, store repository.Store) (*notify.AsyncNotifier, error) {
	senders, err := Senders(ctx, cfg)
	if err != nil {
		return nil, err
	}
	dispatcher := notify.NewDispatcher(store.Repos().NotificationLogs, cfg.Institution.Name, senders...)
	return notify.NewAsyncNotifier(dispatcher, notifyWorkers, notifyQueueSize, notifyTimeout), nil
}

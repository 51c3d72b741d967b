package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"orggov-backend/internal/bootstrap"
	"orggov-backend/internal/config"
	"orggov-backend/internal/jobs"
	"orggov-backend/internal/logger"
	"orggov-backend/internal/scheduler"
	"orggov-backend/internal/service"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	runOnce := flag.String("run-once", "", "Run a specific job once and exit (e.g., 'purge-expired-submissions', 'review-digest', 'all')")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting OrgGov Cronjob Runner...", "log_level", cfg.Log.Level)

	ctx := context.Background()

	// Initialize store
	store, err := bootstrap.OpenStore(ctx, cfg)
	if err != nil {
		logger.Error("Failed to open store", "error", err)
		log.Fatalf("Failed to open store: %v", err)
	}
	defer store.Close()

	notifier, err := bootstrap.Notifier(ctx, cfg, store)
	if err != nil {
		logger.Error("Failed to initialize notifier", "error", err)
		log.Fatalf("Failed to initialize notifier: %v", err)
	}
	// Drains queued digests before exit
	defer notifier.Close()

	// Initialize Services
	jobServices := &jobs.Services{
		Submissions: service.NewSubmissionService(store, notifier, service.SubmissionSettings{
			TTL:         cfg.Submission.TTL,
			MaxAttempts: cfg.Submission.MaxAttempts,
			EmailDomain: cfg.Institution.EmailDomain,
		}),
		Digest: service.NewDigestService(store, notifier),
	}

	// Initialize Job Runner
	jobRunner := jobs.NewJobRunner(jobServices, cfg)

	// Check if running a single job
	if *runOnce != "" {
		logger.Info("Running job once", "job", *runOnce)
		if !runJobOnce(jobRunner, *runOnce) {
			notifier.Close()
			store.Close()
			os.Exit(1)
		}
		logger.Info("Job execution completed", "job", *runOnce)
		return
	}

	// Initialize Scheduler
	cronScheduler, err := scheduler.NewScheduler(jobRunner)
	if err != nil {
		log.Fatalf("Failed to schedule jobs: %v", err)
	}

	// Start scheduler
	cronScheduler.Start()
	logger.Info("Cronjob scheduler is running. Press Ctrl+C to stop.")

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	// Graceful shutdown
	logger.Info("Shutting down cronjob scheduler...")
	cronScheduler.Stop()
	logger.Info("Cronjob scheduler stopped. Goodbye!")
}

// runJobOnce runs a specific job once and reports whether the name was known
func runJobOnce(jobRunner *jobs.JobRunner, jobName string) bool {
	switch jobName {
	case "purge-expired-submissions":
		jobRunner.PurgeExpiredSubmissions()
	case "review-digest":
		jobRunner.SendReviewDigest()
	case "all":
		jobRunner.RunAll()
	default:
		logger.Error("Unknown job name", "job", jobName)
		fmt.Printf("Available jobs:\n")
		fmt.Printf("  - purge-expired-submissions\n")
		fmt.Printf("  - review-digest\n")
		fmt.Printf("  - all\n")
		return false
	}
	return true
}

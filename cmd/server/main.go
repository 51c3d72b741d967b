package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	grpcapi "orggov-backend/internal/api/grpc"
	httpapi "orggov-backend/internal/api/http"
	"orggov-backend/internal/bootstrap"
	"orggov-backend/internal/config"
	"orggov-backend/internal/logger"
	"orggov-backend/internal/security"
	"orggov-backend/internal/service"
	"orggov-backend/internal/storage"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting OrgGov Backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.GetServerAddress(), "grpc_port", cfg.GRPC.Port)
	logger.Info("Database configuration", "driver", cfg.Database.Driver, "host", cfg.Database.Host, "database", cfg.Database.Database)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize store
	store, err := bootstrap.OpenStore(ctx, cfg)
	if err != nil {
		logger.Error("Failed to open store", "error", err)
		log.Fatalf("Failed to open store: %v", err)
	}
	defer store.Close()

	// Initialize notifications
	notifier, err := bootstrap.Notifier(ctx, cfg, store)
	if err != nil {
		logger.Error("Failed to initialize notifier", "error", err)
		log.Fatalf("Failed to initialize notifier: %v", err)
	}
	defer notifier.Close()

	// Initialize file storage
	files, err := storage.NewLocalStorageService(cfg.Storage.UploadDir)
	if err != nil {
		logger.Error("Failed to initialize file storage", "error", err)
		log.Fatalf("Failed to initialize file storage: %v", err)
	}
	logger.Info("Using local file storage", "upload_dir", cfg.Storage.UploadDir)

	// Initialize Security
	tokenManager := security.NewTokenManager(cfg.JWT.Secret, time.Duration(cfg.JWT.AccessTokenExpiry)*time.Minute)

	// Initialize Services
	applicationSvc := service.NewApplicationService(store, service.NewProvisioner(), notifier)
	documentSvc := service.NewDocumentService(store, files, notifier)
	officerSvc := service.NewOfficerService(store, files)
	handler := httpapi.NewHandler(httpapi.Services{
		Auth:         service.NewAuthService(store, tokenManager),
		Applications: applicationSvc,
		Submissions: service.NewSubmissionService(store, notifier, service.SubmissionSettings{
			TTL:         cfg.Submission.TTL,
			MaxAttempts: cfg.Submission.MaxAttempts,
			EmailDomain: cfg.Institution.EmailDomain,
		}),
		Documents: documentSvc,
		Officers:  officerSvc,
		Entities:  service.NewEntityService(store),
		Engine:    service.NewEngine(applicationSvc, documentSvc, officerSvc),
	})

	httpServer := &http.Server{
		Addr:              cfg.GetServerAddress(),
		Handler:           httpapi.NewRouter(handler, httpapi.NewFileHandler(files), tokenManager),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Set up the gRPC health/reflection listener
	var grpcServer *grpcapi.Server
	if cfg.GRPC.Port > 0 {
		lis, err := net.Listen("tcp", cfg.GetGRPCAddress())
		if err != nil {
			logger.Error("Failed to listen", "error", err, "address", cfg.GetGRPCAddress())
			log.Fatalf("Failed to listen: %v", err)
		}
		grpcServer = grpcapi.NewServer(tokenManager)
		if store.DB != nil {
			go grpcServer.WatchDependency(ctx, store.DB, 15*time.Second)
		} else {
			grpcServer.SetServing(true)
		}
		go func() {
			logger.Info("gRPC server listening", "address", cfg.GetGRPCAddress())
			if err := grpcServer.Serve(lis); err != nil {
				logger.Error("gRPC server error", "error", err)
			}
		}()
	}

	go func() {
		logger.Info("HTTP server listening", "address", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if grpcServer != nil {
		grpcServer.Shutdown()
	}
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP shutdown failed", "error", err)
	}
	logger.Info("Server stopped")
}

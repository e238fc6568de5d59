// @title Knowbase API
// @version 1.0
// @description Multi-tenant training knowledge base.
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"knowbase/internal/config"
	"knowbase/internal/docparse"
	"knowbase/internal/email/noop"
	"knowbase/internal/email/ses"
	"knowbase/internal/generator"
	_ "knowbase/internal/generator/claude" // registers the claude provider
	_ "knowbase/internal/generator/gemini" // registers the gemini provider
	_ "knowbase/internal/generator/openai" // registers the openai provider
	"knowbase/internal/handler"
	"knowbase/internal/logging"
	"knowbase/internal/port"
	"knowbase/internal/repository/postgres"
	"knowbase/internal/router"
	"knowbase/internal/service"
	s3storage "knowbase/internal/storage/s3"
)

const version = "1.0.0"

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := logging.Setup(cfg.Log)

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// Initialize repositories
	tenantRepo := postgres.NewTenantRepo(db)
	userRepo := postgres.NewUserRepo(db)
	docRepo := postgres.NewDocumentRepo(db)
	testRepo := postgres.NewTestRepo(db)
	assignmentRepo := postgres.NewAssignmentRepo(db)
	submissionRepo := postgres.NewSubmissionRepo(db)
	statsRepo := postgres.NewStatsRepo(db)

	// Initialize storage
	s3Client, err := s3storage.NewS3Client(&cfg.S3)
	if err != nil {
		return fmt.Errorf("failed to initialize S3 client: %w", err)
	}

	emailSender, err := newEmailSender(&cfg.Email)
	if err != nil {
		return fmt.Errorf("failed to initialize email sender: %w", err)
	}

	gen, err := generator.FromConfig(&cfg.LLM)
	if err != nil {
		return fmt.Errorf("failed to initialize question generator: %w", err)
	}

	parser := docparse.New(parserOptions(&cfg.Parser))

	// Initialize services
	authSvc := service.NewAuthService(userRepo, tenantRepo, cfg.JWT)
	var registrationSvc service.RegistrationService
	if cfg.Server.AllowSignup {
		registrationSvc = service.NewRegistrationService(tenantRepo, userRepo, authSvc)
	}
	tenantSvc := service.NewTenantService(tenantRepo)
	userSvc := service.NewUserService(userRepo)
	documentSvc := service.NewDocumentService(docRepo, assignmentRepo, parser, s3Client, service.DocumentConfig{
		Bucket:        cfg.S3.Bucket,
		MaxBytes:      cfg.Parser.MaxBytes(),
		AllowDegraded: cfg.Parser.AllowDegraded,
		PresignExpiry: cfg.S3.PresignExpiry,
	})
	testSvc := service.NewTestService(testRepo, docRepo, assignmentRepo, gen, service.TestConfig{
		DefaultQuestionCount: cfg.LLM.QuestionCount,
		MaxRetries:           cfg.Queue.MaxRetries,
	})
	assignmentSvc := service.NewAssignmentService(assignmentRepo, submissionRepo, testRepo, docRepo, userRepo, emailSender)
	statsSvc := service.NewStatsService(statsRepo)
	reportSvc := service.NewReportService(statsRepo, tenantRepo)

	// Background generation worker
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	worker := service.NewGenerationQueueWorker(testRepo, testSvc, service.GenerationQueueConfig{
		PollInterval: time.Duration(cfg.Queue.PollIntervalSecs) * time.Second,
		Concurrency:  cfg.Queue.Concurrency,
		JobTimeout:   time.Duration(cfg.Queue.JobTimeoutSecs) * time.Second,
	})
	go worker.Start(ctx)

	// Initialize handlers
	r := router.Setup(authSvc, router.Handlers{
		Auth:       handler.NewAuthHandler(authSvc, registrationSvc),
		Tenant:     handler.NewTenantHandler(tenantSvc),
		User:       handler.NewUserHandler(userSvc),
		Document:   handler.NewDocumentHandler(documentSvc),
		Test:       handler.NewTestHandler(testSvc),
		Assignment: handler.NewAssignmentHandler(assignmentSvc),
		Report:     handler.NewReportHandler(statsSvc, reportSvc),
		Health:     handler.NewHealthHandler(db, version),
	}, cfg.CORS.AllowedOrigins, logger)

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", "addr", cfg.Server.Port, "environment", cfg.Server.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown", slog.Any("error", err))
	}
	stop()
	worker.Wait()
	return nil
}

func newEmailSender(cfg *config.EmailConfig) (port.EmailSender, error) {
	if cfg.Provider == "ses" {
		return ses.NewSESSender(cfg)
	}
	return noop.NewNoopSender(cfg.FrontendURL), nil
}

func parserOptions(cfg *config.ParserConfig) docparse.Options {
	opts := docparse.DefaultOptions()
	opts.MaxBytes = cfg.MaxBytes()
	opts.RowPolicy = docparse.RowPolicy(cfg.RowPolicy)
	if !cfg.AllCapsHeadings {
		opts.HeadingHeuristic = nil
	}
	return opts
}

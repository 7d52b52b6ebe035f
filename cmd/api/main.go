package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "eval-flow/docs" // This is for Swagger
	"eval-flow/internal/activity"
	"eval-flow/internal/auth"
	"eval-flow/internal/config"
	"eval-flow/internal/database"
	"eval-flow/internal/email"
	"eval-flow/internal/export"
	"eval-flow/internal/handlers"
	"eval-flow/internal/logger"
	"eval-flow/internal/middleware"
	"eval-flow/internal/repository"
	"eval-flow/internal/scheduler"
	"eval-flow/internal/service"
	"eval-flow/internal/telemetry"
	"eval-flow/internal/vault"
	"eval-flow/migrations"

	"github.com/redis/go-redis/v9"
	httpSwagger "github.com/swaggo/http-swagger"
)

// @title Eval Flow API
// @version 1.0
// @description Step approvals, revision requests and evaluation submissions of the performance review workflow
// @termsOfService http://swagger.io/terms/

// @contact.name API Support

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	// Telemetry first so the logger can bridge into it
	tel, err := telemetry.Setup(ctx, cfg.Telemetry)
	if err != nil {
		slog.Error("Failed to set up telemetry", "error", err)
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tel.Shutdown(shutdownCtx); err != nil {
			slog.Error("Failed to flush telemetry", "error", err)
		}
	}()

	// Setup structured logger
	logger.Setup(logger.Config{
		Level:       cfg.Log.Level,
		ServiceName: cfg.Telemetry.ServiceName,
		Export:      cfg.Telemetry.Enabled(),
	})

	slog.Info("Starting application",
		"name", cfg.App.Name,
		"version", cfg.App.Version,
		"env", cfg.App.Env,
		"log_level", cfg.Log.Level,
		"telemetry", cfg.Telemetry.Enabled(),
	)

	// Initialize database
	db, err := database.New(&cfg.Database)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer func(db *database.Database) {
		if err := db.Close(); err != nil {
			slog.Error("Failed to close database connection", "error", err)
		}
	}(db)

	slog.Info("Database connection established")

	// Run database migrations
	migrator := database.NewMigrationExecutor(db.DB)
	if err := migrator.RunMigrations(ctx, migrations.FS); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Database migrations completed")

	checks := map[string]handlers.HealthChecker{
		"database": db.HealthCheck,
	}

	// Activity sinks: PostgreSQL always, the Redis stream when enabled
	activityRepo := repository.NewActivityLogRepository(db.DB)
	recorders := []activity.Recorder{activityRepo}
	if cfg.Redis.Enabled {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		stream := activity.NewStreamRecorder(redisClient, cfg.Redis.ActivityStream, slog.Default())
		defer func() {
			if err := stream.Close(); err != nil {
				slog.Error("Failed to close Redis client", "error", err)
			}
		}()
		recorders = append(recorders, stream)
		checks["redis"] = func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}
		slog.Info("Activity stream enabled", "addr", cfg.Redis.Addr, "stream", cfg.Redis.ActivityStream)
	}

	// Revision comments are encrypted through Vault transit when enabled
	var cipher service.CommentCipher = vault.PlainCipher{}
	if cfg.Vault.Enabled {
		vaultClient, err := vault.NewClient(ctx, &vault.Config{
			Address:      cfg.Vault.Address,
			Token:        cfg.Vault.Token,
			TransitMount: cfg.Vault.TransitMount,
		})
		if err != nil {
			slog.Error("Failed to initialize Vault client", "error", err)
			os.Exit(1)
		}
		commentCipher, err := vault.NewCommentCipher(ctx, vaultClient, cfg.Vault.CommentKey)
		if err != nil {
			slog.Error("Failed to initialize comment cipher", "error", err)
			os.Exit(1)
		}
		cipher = commentCipher
		checks["vault"] = vaultClient.Health
		slog.Info("Vault comment encryption enabled", "vault_addr", cfg.Vault.Address, "key", cfg.Vault.CommentKey)
	} else {
		slog.Warn("Vault is disabled - revision comments are stored in plaintext")
	}

	// Initialize services
	employeeRepo := repository.NewEmployeeRepository(db.DB)
	revisionRepo := repository.NewRevisionRequestRepository(db.DB)
	emailService := email.NewService(&cfg.Email)

	services := service.NewServices(db.DB, service.Dependencies{
		Activity: activity.NewMultiRecorder(recorders...),
		Cipher:   cipher,
		Notifier: email.NewRevisionNotifier(emailService, employeeRepo),
	})
	exporter := export.NewStepApprovalExporter(repository.NewStepApprovalRepository(db.DB))

	// Initialize scheduler
	schedulerService := scheduler.NewScheduler(revisionRepo, emailService, &cfg.Scheduler)
	schedulerService.Start()
	defer schedulerService.Stop()

	// Initialize middleware
	authMw := middleware.NewAuthMiddleware(auth.NewService(&cfg.JWT))
	corsMw := middleware.NewCORSMiddleware(&cfg.CORS)
	rateLimiter := middleware.NewRateLimiter(&cfg.RateLimit)
	defer rateLimiter.Stop()

	// Setup router
	mux := http.NewServeMux()

	handlers.Routes{
		Steps:       handlers.NewStepApprovalHandler(services.Approvals, services.Cascade, exporter),
		Revisions:   handlers.NewRevisionRequestHandler(services.Revisions),
		Submissions: handlers.NewSubmissionHandler(services.Submissions),
		Activity:    handlers.NewActivityHandler(activityRepo),
		Health:      handlers.NewHealthHandler(cfg.App.Version, checks),
	}.Register(mux, authMw.Authenticate)

	// Swagger documentation
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	// Apply global middleware. Nothing between Tracing and mux may replace the
	// request, the span reads the matched pattern from it.
	handler := middleware.Tracing(
		middleware.LoggingMiddleware(
			middleware.SecurityHeaders(
				corsMw.Handler(
					rateLimiter.Limit(mux),
				),
			),
		),
	)

	// Create server
	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  cfg.Server.TimeoutRead,
		WriteTimeout: cfg.Server.TimeoutWrite,
		IdleTimeout:  cfg.Server.TimeoutIdle,
	}

	// Start server in a goroutine
	serverErr := make(chan error, 1)
	go func() {
		slog.Info("Server starting", "address", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-serverErr:
		slog.Error("Server failed to start", "error", err)
		return
	}

	slog.Info("Server shutting down...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		return
	}

	// Let pending revision mails go out
	services.Revisions.WaitNotifications()

	slog.Info("Server stopped")
}

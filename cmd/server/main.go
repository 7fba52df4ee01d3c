package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/study-service/internal/cache"
	"github.com/SAP-F-2025/study-service/internal/config"
	"github.com/SAP-F-2025/study-service/internal/handlers"
	"github.com/SAP-F-2025/study-service/internal/metrics"
	"github.com/SAP-F-2025/study-service/internal/repositories"
	"github.com/SAP-F-2025/study-service/internal/repositories/memory"
	"github.com/SAP-F-2025/study-service/internal/repositories/postgres"
	"github.com/SAP-F-2025/study-service/internal/services"
	"github.com/SAP-F-2025/study-service/internal/utils"
	"github.com/SAP-F-2025/study-service/internal/validator"
	"github.com/SAP-F-2025/study-service/pkg"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := utils.NewLogger(cfg.Environment)
	slogger := utils.ToSlogLogger(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Dependencies ────────────────────────────────────────────────
	banks, err := newQuestionBankRepository(ctx, cfg, slogger)
	if err != nil {
		slogger.Error("failed to set up question banks", "error", err)
		os.Exit(1)
	}

	results, err := newResultsStore(ctx, cfg, slogger)
	if err != nil {
		slogger.Error("failed to set up results store", "error", err)
		os.Exit(1)
	}

	publisher, err := cfg.Events.CreateEventPublisher(slogger)
	if err != nil {
		slogger.Error("failed to create event publisher", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			slogger.Error("failed to close event publisher", "error", err)
		}
	}()

	m := metrics.New()
	serviceManager := services.NewServiceManager(services.Dependencies{
		Banks:     banks,
		Results:   results,
		Publisher: publisher,
		Metrics:   m,
		Validator: validator.New(),
		Logger:    slogger,
		Attempts: services.AttemptConfig{
			DefaultDuration: cfg.TestDuration,
			TimeWarning:     cfg.TimeWarning,
		},
	})

	timer, err := services.NewTimerService(serviceManager.Attempt(), cfg.TickInterval, slogger)
	if err != nil {
		slogger.Error("invalid attempt timer", "error", err)
		os.Exit(1)
	}
	if err := timer.Start(ctx); err != nil {
		slogger.Error("failed to start attempt timer", "error", err)
		os.Exit(1)
	}
	defer timer.Stop()

	// ── Routes ──────────────────────────────────────────────────────
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(
		gin.Recovery(),
		utils.ContextLogger(logger),
		utils.LoggerMiddleware(logger),
		m.MetricsMiddleware(),
	)
	handlers.NewHandlerManager(serviceManager, m, logger).SetupRoutes(router)

	// ── Server ──────────────────────────────────────────────────────
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		slogger.Info("shutting down server")
		if err := server.Shutdown(shutdownCtx); err != nil {
			slogger.Error("server forced to shutdown", "error", err)
		}
	}()

	slogger.Info("starting server", "port", cfg.Port, "environment", cfg.Environment)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slogger.Error("server failed to start", "error", err)
		os.Exit(1)
	}
}

// newQuestionBankRepository uses PostgreSQL when DATABASE_URL is set and
// the built-in bank otherwise.
func newQuestionBankRepository(ctx context.Context, cfg *config.Config, logger *slog.Logger) (repositories.QuestionBankRepository, error) {
	if cfg.DatabaseURL == "" {
		logger.Info("DATABASE_URL not set, serving the built-in question bank")
		return memory.NewQuestionBankMemory(memory.DefaultQuestionBank()), nil
	}

	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		return nil, err
	}
	if err := postgres.AutoMigrate(db); err != nil {
		return nil, err
	}

	repo := postgres.NewQuestionBankPostgreSQL(db)
	if _, err := repo.GetBank(ctx, memory.DefaultBankID); repositories.IsNotFoundError(err) {
		logger.Info("Seeding default question bank", "bank_id", memory.DefaultBankID)
		if err := repo.SaveBank(ctx, memory.DefaultQuestionBank()); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	}
	return repo, nil
}

func newResultsStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (cache.ResultsStore, error) {
	if cfg.RedisURL == "" {
		logger.Info("REDIS_URL not set, keeping results in memory")
		return cache.NewMemoryResultsStore(cfg.ResultsTTL), nil
	}

	client, err := pkg.NewRedisClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return cache.NewRedisResultsStore(client, cfg.ResultsTTL, logger), nil
}

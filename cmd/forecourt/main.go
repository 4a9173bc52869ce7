package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/forecourt-erp/forecourt-erp/internal/app"
	"github.com/forecourt-erp/forecourt-erp/internal/audit"
	"github.com/forecourt-erp/forecourt-erp/internal/auth"
	"github.com/forecourt-erp/forecourt-erp/internal/directory"
	"github.com/forecourt-erp/forecourt-erp/internal/features"
	"github.com/forecourt-erp/forecourt-erp/internal/masterdata/fuelproducts"
	"github.com/forecourt-erp/forecourt-erp/internal/masterdata/tanks"
	"github.com/forecourt-erp/forecourt-erp/internal/observability"
	"github.com/forecourt-erp/forecourt-erp/internal/platform/cache"
	"github.com/forecourt-erp/forecourt-erp/internal/platform/db"
	"github.com/forecourt-erp/forecourt-erp/internal/shared"
	"github.com/forecourt-erp/forecourt-erp/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, "forecourt_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)

	auditRepo := audit.NewRepository(dbpool)
	auditService := audit.NewService(auditRepo)
	auditHandler := audit.NewHandler(logger, auditService)

	featureRepo := features.NewRepository(dbpool)
	featureService := features.NewService(featureRepo, auditService, logger)
	featureHandler := features.NewHandler(logger, featureService)

	jobClient := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()

	directoryRepo := directory.NewRepository(dbpool)
	directoryService := directory.NewService(directoryRepo, jobClient, featureService, logger, cfg.ProvisionPollInterval, cfg.ProvisionPollWindow)
	directoryHandler := directory.NewHandler(logger, directoryService)

	authRepo := auth.NewRepository(dbpool)
	authService := auth.NewService(directoryRepo, authRepo)
	authHandler := auth.NewHandler(logger, authService, sessionManager, csrfManager)

	fuelProductService := fuelproducts.NewService(fuelproducts.NewRepository(dbpool))
	fuelProductHandler := fuelproducts.NewHandler(logger, fuelProductService)

	tankService := tanks.NewService(tanks.NewRepository(dbpool), fuelProductService)
	tankHandler := tanks.NewHandler(logger, tankService)

	metrics := observability.NewMetrics()

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:              logger,
		Config:              cfg,
		SessionManager:      sessionManager,
		CSRFManager:         csrfManager,
		Metrics:             metrics,
		AuthHandler:         authHandler,
		FeaturesHandler:     featureHandler,
		DirectoryHandler:    directoryHandler,
		AuditHandler:        auditHandler,
		FuelProductsHandler: fuelProductHandler,
		TanksHandler:        tankHandler,
		JobsHandler:         jobHandler,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}

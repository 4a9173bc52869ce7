package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/forecourt-erp/forecourt-erp/internal/app"
	"github.com/forecourt-erp/forecourt-erp/internal/audit"
	"github.com/forecourt-erp/forecourt-erp/internal/directory"
	"github.com/forecourt-erp/forecourt-erp/internal/features"
	"github.com/forecourt-erp/forecourt-erp/internal/platform/db"
	"github.com/forecourt-erp/forecourt-erp/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
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

	auditService := audit.NewService(audit.NewRepository(dbpool))
	featureService := features.NewService(features.NewRepository(dbpool), auditService, logger)

	// The worker never enqueues; provisioning jobs arrive from the API.
	directoryService := directory.NewService(directory.NewRepository(dbpool), nil, featureService, logger, cfg.ProvisionPollInterval, cfg.ProvisionPollWindow)

	provisionJob := jobs.NewTenantProvisionJob(directoryService, logger, nil)

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskTypeTenantProvision, Handler: provisionJob.Handle},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}

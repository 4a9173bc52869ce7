package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/forecourt-erp/forecourt-erp/internal/directory"
	jobmetrics "github.com/forecourt-erp/forecourt-erp/internal/jobs"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// TenantProvisionJob creates the super admin, seeds default feature access
// and activates the tenant. The directory service keeps the work idempotent
// so Asynq retries are safe.
type TenantProvisionJob struct {
	Directory *directory.Service
	Logger    *slog.Logger
	Metrics   *jobmetrics.Metrics
}

// NewTenantProvisionJob wires dependencies for the provisioning handler.
func NewTenantProvisionJob(dir *directory.Service, logger *slog.Logger, metrics *jobmetrics.Metrics) *TenantProvisionJob {
	return &TenantProvisionJob{Directory: dir, Logger: logger, Metrics: metrics}
}

// Handle processes TaskTypeTenantProvision tasks.
func (j *TenantProvisionJob) Handle(ctx context.Context, t *asynq.Task) (err error) {
	if j == nil || j.Directory == nil {
		return errors.New("tenant provision: handler not configured")
	}
	var payload directory.ProvisionJob
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	tracker := j.metrics().Track(TaskTypeTenantProvision)
	defer func() {
		err = tracker.End(err)
	}()

	logger := j.logger().With(slog.String("tenant", payload.TenantID.String()))
	logger.Info("provisioning tenant")

	if err = j.Directory.CompleteProvisioning(ctx, payload); err != nil {
		logger.Error("complete provisioning", slog.Any("error", err))
		return err
	}

	logger.Info("tenant active")
	return nil
}

func (j *TenantProvisionJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskTypeTenantProvision))
	}
	return slog.Default().With(slog.String("job", TaskTypeTenantProvision))
}

func (j *TenantProvisionJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}

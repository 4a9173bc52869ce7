package jobs

import (
	"context"
	"encoding/json"

	"github.com/hibiken/asynq"

	"github.com/forecourt-erp/forecourt-erp/internal/directory"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeTenantProvision finishes tenant setup after the API has
	// answered 202.
	TaskTypeTenantProvision = "tenant:provision"
)

// NewTenantProvisionTask constructs an Asynq task from a provisioning job.
func NewTenantProvisionTask(job directory.ProvisionJob) (*asynq.Task, error) {
	data, err := json.Marshal(job)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeTenantProvision, data), nil
}

// Client submits jobs to the queue. It satisfies directory.Enqueuer.
type Client struct {
	client *asynq.Client
}

// NewClient constructs an Asynq client.
func NewClient(redisOpts asynq.RedisClientOpt) *Client {
	return &Client{client: asynq.NewClient(redisOpts)}
}

// EnqueueTenantProvision schedules tenant provisioning.
func (c *Client) EnqueueTenantProvision(ctx context.Context, job directory.ProvisionJob) error {
	task, err := NewTenantProvisionTask(job)
	if err != nil {
		return err
	}
	_, err = c.client.EnqueueContext(ctx, task, asynq.Queue(QueueDefault), asynq.MaxRetry(5))
	return err
}

// Close releases client resources.
func (c *Client) Close() error {
	return c.client.Close()
}

var _ directory.Enqueuer = (*Client)(nil)

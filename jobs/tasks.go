package jobs

import (
	"context"
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskPipelineRefresh triggers a full cleanse-and-reload of all entities.
	TaskPipelineRefresh = "pipeline:refresh"
)

// PipelineRefreshPayload carries metadata for a refresh run. It deliberately
// omits a timestamp: cron tasks are built once at worker startup, so anything
// stamped here would go stale; the handler records its own receipt time.
type PipelineRefreshPayload struct {
	Trigger string `json:"trigger"`
}

// NewPipelineRefreshTask constructs an Asynq task for the full refresh.
func NewPipelineRefreshTask(trigger string) (*asynq.Task, error) {
	payload := PipelineRefreshPayload{Trigger: trigger}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskPipelineRefresh, body, asynq.Queue(QueueDefault)), nil
}

// Client submits jobs to the queue.
type Client struct {
	client *asynq.Client
}

// NewClient constructs an Asynq client.
func NewClient(redisOpts asynq.RedisClientOpt) *Client {
	return &Client{client: asynq.NewClient(redisOpts)}
}

// EnqueuePipelineRefresh enqueues a manual full refresh.
func (c *Client) EnqueuePipelineRefresh(ctx context.Context, trigger string) (*asynq.TaskInfo, error) {
	task, err := NewPipelineRefreshTask(trigger)
	if err != nil {
		return nil, err
	}
	return c.client.EnqueueContext(ctx, task, asynq.Queue(QueueDefault), asynq.MaxRetry(0))
}

// Close releases client resources.
func (c *Client) Close() error {
	return c.client.Close()
}

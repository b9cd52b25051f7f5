package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/silverlake-dw/silverlake/internal/cleanse"
	jobmetrics "github.com/silverlake-dw/silverlake/internal/jobs"
)

// PipelineRunner abstracts the cleansing pipeline for the task handler.
type PipelineRunner interface {
	Run(ctx context.Context) (cleanse.RunReport, error)
}

// ReportStore persists run reports for later inspection.
type ReportStore interface {
	Save(ctx context.Context, report cleanse.RunReport) error
}

// PipelineRefreshJob processes full-refresh tasks.
type PipelineRefreshJob struct {
	Pipeline PipelineRunner
	Status   ReportStore
	Logger   *slog.Logger
	Metrics  *jobmetrics.Metrics
}

// NewPipelineRefreshJob wires dependencies for the refresh handler.
func NewPipelineRefreshJob(pipeline PipelineRunner, status ReportStore, logger *slog.Logger, metrics *jobmetrics.Metrics) *PipelineRefreshJob {
	return &PipelineRefreshJob{Pipeline: pipeline, Status: status, Logger: logger, Metrics: metrics}
}

// Handle runs the full pipeline for one refresh task.
func (j *PipelineRefreshJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Pipeline == nil {
		return errors.New("pipeline refresh: handler not configured")
	}
	var payload PipelineRefreshPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.Trigger == "" {
		payload.Trigger = "schedule"
	}

	tracker := j.metrics().Track(TaskPipelineRefresh)
	logger := j.logger().With(slog.String("trigger", payload.Trigger))
	logger.Info("starting pipeline refresh", slog.Time("received_at", time.Now().UTC()))

	report, err := j.Pipeline.Run(ctx)
	for _, result := range report.Completed {
		j.metrics().AddRows(string(result.Entity), result.Rows)
	}
	if j.Status != nil {
		if saveErr := j.Status.Save(ctx, report); saveErr != nil {
			logger.Warn("persist run report", slog.Any("error", saveErr))
		}
	}
	if err != nil {
		return tracker.End(err)
	}

	logger.Info("completed pipeline refresh",
		slog.String("run_id", report.RunID),
		slog.Int("entities", len(report.Completed)),
		slog.Duration("duration", report.FinishedAt.Sub(report.StartedAt)),
	)
	return tracker.End(nil)
}

func (j *PipelineRefreshJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return jobmetrics.NewMetrics(nil)
}

func (j *PipelineRefreshJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}

package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/silverlake-dw/silverlake/internal/cleanse"
	jobmetrics "github.com/silverlake-dw/silverlake/internal/jobs"
)

type fakeRunner struct {
	report cleanse.RunReport
	err    error
	calls  int
}

func (r *fakeRunner) Run(ctx context.Context) (cleanse.RunReport, error) {
	r.calls++
	return r.report, r.err
}

type fakeStore struct {
	saved []cleanse.RunReport
}

func (s *fakeStore) Save(ctx context.Context, report cleanse.RunReport) error {
	s.saved = append(s.saved, report)
	return nil
}

func newRefreshTask(t *testing.T) *asynq.Task {
	t.Helper()
	task, err := NewPipelineRefreshTask("test")
	require.NoError(t, err)
	return task
}

func TestRefreshPayloadCarriesNoTimestamp(t *testing.T) {
	// Cron tasks are built once at worker startup; a timestamp in the
	// payload would replay that boot time on every firing.
	task, err := NewPipelineRefreshTask("schedule")
	require.NoError(t, err)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(task.Payload(), &payload))
	require.Equal(t, map[string]any{"trigger": "schedule"}, payload)
}

func testJob(runner *fakeRunner, store *fakeStore) *PipelineRefreshJob {
	metrics := jobmetrics.NewMetrics(prometheus.NewRegistry())
	return NewPipelineRefreshJob(runner, store, slog.New(slog.NewTextHandler(io.Discard, nil)), metrics)
}

func TestHandleRefreshSuccess(t *testing.T) {
	runner := &fakeRunner{report: cleanse.RunReport{
		RunID: "run-1",
		Completed: []cleanse.EntityResult{
			{Entity: cleanse.EntityProducts, Rows: 10},
		},
	}}
	store := &fakeStore{}
	job := testJob(runner, store)

	err := job.Handle(context.Background(), newRefreshTask(t))
	require.NoError(t, err)
	require.Equal(t, 1, runner.calls)
	require.Len(t, store.saved, 1)
	require.Equal(t, "run-1", store.saved[0].RunID)
}

func TestHandleRefreshFailureStillPersistsReport(t *testing.T) {
	runErr := errors.New("staging table unreadable")
	runner := &fakeRunner{
		report: cleanse.RunReport{
			RunID:  "run-2",
			Failed: cleanse.EntitySales,
			Cause:  runErr.Error(),
			Completed: []cleanse.EntityResult{
				{Entity: cleanse.EntityProducts, Rows: 10},
				{Entity: cleanse.EntitySuppliers, Rows: 4},
			},
		},
		err: runErr,
	}
	store := &fakeStore{}
	job := testJob(runner, store)

	err := job.Handle(context.Background(), newRefreshTask(t))
	require.ErrorIs(t, err, runErr)
	require.Len(t, store.saved, 1)
	require.Equal(t, cleanse.EntitySales, store.saved[0].Failed)
}

func TestHandleRefreshBadPayloadSkipsRetry(t *testing.T) {
	job := testJob(&fakeRunner{}, &fakeStore{})

	err := job.Handle(context.Background(), asynq.NewTask(TaskPipelineRefresh, []byte("{not json")))
	require.ErrorIs(t, err, asynq.SkipRetry)
}

func TestHandleRefreshUnconfigured(t *testing.T) {
	var job *PipelineRefreshJob
	require.Error(t, job.Handle(context.Background(), newRefreshTask(t)))
}

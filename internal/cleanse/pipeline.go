package cleanse

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Source supplies the finite set of raw staging rows for one entity.
type Source interface {
	Fetch(ctx context.Context, entity Entity) ([]RawRecord, error)
}

// Sink replaces the full row set of an entity's target table. The swap must
// be atomic: readers see either the previous complete table or the new one.
type Sink interface {
	Replace(ctx context.Context, schema Schema, rows []Row, loadedAt time.Time) error
}

// Stage names the pipeline step a failure originated from.
type Stage string

const (
	// StageSource covers raw record reads.
	StageSource Stage = "source"
	// StageTransform covers the cleansing map itself.
	StageTransform Stage = "transform"
	// StageSink covers target table writes.
	StageSink Stage = "sink"
)

// StageError reports which entity and step aborted a pipeline run.
type StageError struct {
	Entity Entity
	Stage  Stage
	Err    error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("cleanse: %s %s: %v", e.Entity, e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// EntityResult captures timing for one completed entity load.
type EntityResult struct {
	Entity   Entity        `json:"entity"`
	Rows     int           `json:"rows"`
	Duration time.Duration `json:"duration"`
}

// RunReport summarises one full pipeline run.
type RunReport struct {
	RunID      string         `json:"run_id"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
	Completed  []EntityResult `json:"completed"`
	Failed     Entity         `json:"failed,omitempty"`
	Cause      string         `json:"cause,omitempty"`
}

// OK reports whether the run finished without failure.
func (r RunReport) OK() bool { return r.Failed == "" }

// Pipeline executes the full cleansing run: for each entity in RunOrder it
// streams raw rows through the entity's rule table and swaps the target.
type Pipeline struct {
	source  Source
	sink    Sink
	logger  *slog.Logger
	workers int
	clock   func() time.Time
}

// PipelineConfig groups optional settings.
type PipelineConfig struct {
	// Workers bounds the per-entity transform pool. Zero means GOMAXPROCS.
	Workers int
}

// NewPipeline wires a pipeline over the given source and sink.
func NewPipeline(source Source, sink Sink, logger *slog.Logger, cfg PipelineConfig) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		source:  source,
		sink:    sink,
		logger:  logger,
		workers: cfg.Workers,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Run processes all entities in the fixed order. The first failure aborts the
// remaining entities; already committed entities stay committed. The returned
// report is populated either way.
func (p *Pipeline) Run(ctx context.Context) (RunReport, error) {
	start := p.clock()
	report := RunReport{
		RunID:     uuid.NewString(),
		StartedAt: start,
	}
	logger := p.logger.With(slog.String("run_id", report.RunID))
	logger.Info("pipeline run starting", slog.Int("entities", len(RunOrder)))

	for _, entity := range RunOrder {
		// Cancellation is honoured between entities so an aborted run never
		// leaves a half-replaced table behind.
		if err := ctx.Err(); err != nil {
			return p.fail(logger, report, &StageError{Entity: entity, Stage: StageSource, Err: err})
		}
		result, err := p.runEntity(ctx, logger, entity, start)
		if err != nil {
			return p.fail(logger, report, err)
		}
		report.Completed = append(report.Completed, result)
	}

	report.FinishedAt = p.clock()
	logger.Info("pipeline run complete",
		slog.Int("entities", len(report.Completed)),
		slog.Duration("duration", report.FinishedAt.Sub(report.StartedAt)),
	)
	return report, nil
}

func (p *Pipeline) runEntity(ctx context.Context, logger *slog.Logger, entity Entity, runStart time.Time) (EntityResult, error) {
	schema, ok := SchemaFor(entity)
	if !ok {
		return EntityResult{}, &StageError{Entity: entity, Stage: StageTransform, Err: errors.New("no schema registered")}
	}

	entityLogger := logger.With(slog.String("entity", string(entity)))
	entityLogger.Info("entity load starting")
	began := p.clock()

	raws, err := p.source.Fetch(ctx, entity)
	if err != nil {
		return EntityResult{}, &StageError{Entity: entity, Stage: StageSource, Err: err}
	}

	rows, err := TransformAll(ctx, schema, raws, runStart, p.workers)
	if err != nil {
		return EntityResult{}, &StageError{Entity: entity, Stage: StageTransform, Err: err}
	}

	if err := p.sink.Replace(ctx, schema, rows, runStart); err != nil {
		return EntityResult{}, &StageError{Entity: entity, Stage: StageSink, Err: err}
	}

	result := EntityResult{
		Entity:   entity,
		Rows:     len(rows),
		Duration: p.clock().Sub(began),
	}
	entityLogger.Info("entity load complete",
		slog.Int("rows", result.Rows),
		slog.Duration("duration", result.Duration),
	)
	return result, nil
}

func (p *Pipeline) fail(logger *slog.Logger, report RunReport, err error) (RunReport, error) {
	report.FinishedAt = p.clock()
	if stageErr, ok := err.(*StageError); ok {
		report.Failed = stageErr.Entity
	}
	report.Cause = err.Error()
	logger.Error("pipeline run aborted",
		slog.String("entity", string(report.Failed)),
		slog.Any("error", err),
		slog.Int("completed", len(report.Completed)),
	)
	return report, err
}

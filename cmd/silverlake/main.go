package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/silverlake-dw/silverlake/internal/app"
	"github.com/silverlake-dw/silverlake/internal/cleanse"
	"github.com/silverlake-dw/silverlake/internal/platform/cache"
	"github.com/silverlake-dw/silverlake/internal/platform/db"
	"github.com/silverlake-dw/silverlake/internal/silver"
	"github.com/silverlake-dw/silverlake/internal/staging"
	"github.com/silverlake-dw/silverlake/internal/status"
	"github.com/silverlake-dw/silverlake/jobs"
)

const usage = `usage: silverlake <command>

commands:
  run      run the full cleansing pipeline now
  enqueue  queue a pipeline refresh on the worker
  status   show the last recorded run report
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}
	logger := app.NewLogger(cfg)

	switch os.Args[1] {
	case "run":
		err = runPipeline(ctx, cfg, logger)
	case "enqueue":
		err = enqueueRefresh(ctx, cfg)
	case "status":
		err = showStatus(ctx, cfg)
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		logger.Error(os.Args[1], slog.Any("error", err))
		os.Exit(1)
	}
}

func runPipeline(ctx context.Context, cfg *app.Config, logger *slog.Logger) error {
	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		return err
	}
	defer pool.Close()

	pipeline := cleanse.NewPipeline(
		staging.NewRepository(pool),
		silver.NewRepository(pool),
		logger,
		cleanse.PipelineConfig{Workers: cfg.PipelineWorkers},
	)

	report, runErr := pipeline.Run(ctx)

	// Best effort: keep the status store current even for ad-hoc runs.
	if redisClient, cacheErr := cache.New(ctx, cfg.RedisAddr); cacheErr == nil {
		store := status.NewStore(redisClient, cfg.StatusTTL)
		if err := store.Save(ctx, report); err != nil {
			logger.Warn("persist run report", slog.Any("error", err))
		}
		_ = redisClient.Close()
	}

	printReport(report)
	return runErr
}

func enqueueRefresh(ctx context.Context, cfg *app.Config) error {
	client := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		_ = client.Close()
	}()
	info, err := client.EnqueuePipelineRefresh(ctx, "manual")
	if err != nil {
		return err
	}
	fmt.Printf("enqueued %s id=%s queue=%s\n", jobs.TaskPipelineRefresh, info.ID, info.Queue)
	return nil
}

func showStatus(ctx context.Context, cfg *app.Config) error {
	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		return err
	}
	defer func() {
		_ = redisClient.Close()
	}()

	report, err := status.NewStore(redisClient, cfg.StatusTTL).Load(ctx)
	if errors.Is(err, status.ErrNoReport) {
		fmt.Println("no pipeline run recorded yet")
		return nil
	}
	if err != nil {
		return err
	}
	printReport(report)
	return nil
}

func printReport(report cleanse.RunReport) {
	fmt.Printf("run %s started=%s finished=%s\n",
		report.RunID,
		report.StartedAt.Format(time.RFC3339),
		report.FinishedAt.Format(time.RFC3339),
	)
	for _, result := range report.Completed {
		fmt.Printf("  %-20s rows=%-8d duration=%s\n", result.Entity, result.Rows, result.Duration)
	}
	if report.OK() {
		fmt.Println("result: success")
		return
	}
	fmt.Printf("result: failed at %s: %s\n", report.Failed, report.Cause)
}

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

	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"

	"github.com/silverlake-dw/silverlake/internal/app"
	"github.com/silverlake-dw/silverlake/internal/cleanse"
	jobmetrics "github.com/silverlake-dw/silverlake/internal/jobs"
	"github.com/silverlake-dw/silverlake/internal/platform/cache"
	"github.com/silverlake-dw/silverlake/internal/platform/db"
	"github.com/silverlake-dw/silverlake/internal/silver"
	"github.com/silverlake-dw/silverlake/internal/staging"
	"github.com/silverlake-dw/silverlake/internal/status"
	"github.com/silverlake-dw/silverlake/jobs"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

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

	pipeline := cleanse.NewPipeline(
		staging.NewRepository(pool),
		silver.NewRepository(pool),
		logger,
		cleanse.PipelineConfig{Workers: cfg.PipelineWorkers},
	)
	statusStore := status.NewStore(redisClient, cfg.StatusTTL)
	metrics := jobmetrics.NewMetrics(nil)
	refreshJob := jobs.NewPipelineRefreshJob(pipeline, statusStore, logger, metrics)

	refreshTask, err := jobs.NewPipelineRefreshTask("schedule")
	if err != nil {
		logger.Error("build refresh task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskPipelineRefresh, Handler: refreshJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: cfg.RefreshCronSpec, Task: refreshTask},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		_ = inspector.Close()
	}()
	router := chi.NewRouter()
	jobs.NewHandler(inspector, logger).MountRoutes(router)
	opsServer := &http.Server{Addr: cfg.OpsAddr, Handler: router, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		logger.Info("ops listener starting", slog.String("addr", cfg.OpsAddr))
		if err := opsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("ops listener", slog.Any("error", err))
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = opsServer.Shutdown(shutdownCtx)
	}()

	logger.Info("worker starting", slog.String("cron", cfg.RefreshCronSpec))
	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker stopped", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("worker stopped")
}

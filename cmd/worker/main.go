package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/scholaris/scholaris/internal/app"
	jobmetrics "github.com/scholaris/scholaris/internal/jobs"
	"github.com/scholaris/scholaris/internal/reports"
	"github.com/scholaris/scholaris/internal/shared"
	"github.com/scholaris/scholaris/jobs"
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

	pool, err := pgxpool.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}

	jobClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init jobs client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("jobs client close", slog.Any("error", err))
		}
	}()

	metrics := jobmetrics.NewMetrics(nil)

	fanout := jobs.NewFanoutProcessor(pool, jobClient, logger)

	reportCache := reports.NewCache(redisClient, cfg.ReportCacheTTL)
	reportService := reports.NewService(reports.NewRepository(pool), reportCache, logger)
	warmup := func(ctx context.Context, _ *asynq.Task) error {
		tracker := metrics.Track(jobs.TaskTypeReportWarmup)
		return tracker.End(reportService.Warmup(ctx))
	}

	idemStore := shared.NewIdempotencyStore(pool)
	cleanup := func(ctx context.Context, _ *asynq.Task) error {
		tracker := metrics.Track(jobs.TaskTypeIdempotencyCleanup)
		return tracker.End(idemStore.Cleanup(ctx, 7*24*time.Hour))
	}

	digest := jobs.NewDigestProcessor(pool, jobClient, logger)

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskTypeSendEmail, Handler: jobs.HandleSendEmailTask},
			{Type: jobs.TaskTypeAnnouncementFanout, Handler: fanout.Handle},
			{Type: jobs.TaskTypeAttendanceDigest, Handler: digest.Handle},
			{Type: jobs.TaskTypeReportWarmup, Handler: warmup},
			{Type: jobs.TaskTypeIdempotencyCleanup, Handler: cleanup},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "*/15 * * * *", Task: jobs.NewReportWarmupTask(), Options: []asynq.Option{asynq.MaxRetry(3)}},
			{Spec: "0 21 * * *", Task: jobs.NewAttendanceDigestTask(), Options: []asynq.Option{asynq.MaxRetry(3)}},
			{Spec: "30 2 * * *", Task: jobs.NewIdempotencyCleanupTask(), Options: []asynq.Option{asynq.MaxRetry(3)}},
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

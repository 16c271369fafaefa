package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/IshuSinghSE/wallpaperz-sub000/internal/app"
	"github.com/IshuSinghSE/wallpaperz-sub000/internal/listing"
	"github.com/IshuSinghSE/wallpaperz-sub000/internal/optimizer"
	"github.com/IshuSinghSE/wallpaperz-sub000/internal/platform/cache"
	"github.com/IshuSinghSE/wallpaperz-sub000/internal/platform/db"
	"github.com/IshuSinghSE/wallpaperz-sub000/internal/storage"
	"github.com/IshuSinghSE/wallpaperz-sub000/internal/wallpapers"
	"github.com/IshuSinghSE/wallpaperz-sub000/jobs"
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

	blobStore, err := storage.NewS3Store(ctx, storage.Config{
		Endpoint:      cfg.S3Endpoint,
		Region:        cfg.S3Region,
		Bucket:        cfg.S3Bucket,
		AccessKey:     cfg.S3AccessKey,
		SecretKey:     cfg.S3SecretKey,
		PublicBaseURL: cfg.S3PublicBaseURL,
	})
	if err != nil {
		logger.Error("init blob store", slog.Any("error", err))
		os.Exit(1)
	}

	optimizerClient := optimizer.NewClient(cfg.OptimizerURL)
	if err := optimizerClient.Ping(ctx); err != nil {
		logger.Warn("optimizer ping", slog.Any("error", err))
	}

	pageCache := listing.NewCache(redisClient, cfg.PageCacheTTL)
	wallpaperRepo := wallpapers.NewRepository(pool)
	wallpaperService := wallpapers.NewService(wallpaperRepo, pageCache, blobStore, nil, logger)

	reindexTask, err := jobs.NewReindexTask(false)
	if err != nil {
		logger.Error("build reindex task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskTypeThumbnail, Handler: jobs.NewThumbnailHandler(optimizerClient, blobStore, wallpaperService, logger)},
			{Type: jobs.TaskTypeReindex, Handler: jobs.NewReindexHandler(wallpaperService, logger)},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "0 3 * * *", Task: reindexTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
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

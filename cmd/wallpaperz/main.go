package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/IshuSinghSE/wallpaperz-sub000/internal/app"
	"github.com/IshuSinghSE/wallpaperz-sub000/internal/auth"
	"github.com/IshuSinghSE/wallpaperz-sub000/internal/categories"
	"github.com/IshuSinghSE/wallpaperz-sub000/internal/collections"
	"github.com/IshuSinghSE/wallpaperz-sub000/internal/listing"
	"github.com/IshuSinghSE/wallpaperz-sub000/internal/observability"
	"github.com/IshuSinghSE/wallpaperz-sub000/internal/platform/cache"
	"github.com/IshuSinghSE/wallpaperz-sub000/internal/platform/db"
	"github.com/IshuSinghSE/wallpaperz-sub000/internal/shared"
	"github.com/IshuSinghSE/wallpaperz-sub000/internal/storage"
	"github.com/IshuSinghSE/wallpaperz-sub000/internal/users"
	"github.com/IshuSinghSE/wallpaperz-sub000/internal/wallpapers"
	"github.com/IshuSinghSE/wallpaperz-sub000/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
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

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

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

	sessionManager := shared.NewSessionManager(redisClient, "wallpaperz_session", cfg.SessionTTL, cfg.IsProduction())
	pageCache := listing.NewCache(redisClient, cfg.PageCacheTTL)

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

	jobClient := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()

	authRepo := auth.NewRepository(dbpool)
	authService := auth.NewService(authRepo, logger, cfg.AdminEmails)
	authHandler := auth.NewHandler(logger, authService, sessionManager)
	guard := auth.Guard{Service: authService, Logger: logger}

	wallpaperRepo := wallpapers.NewRepository(dbpool)
	wallpaperService := wallpapers.NewService(wallpaperRepo, pageCache, blobStore, jobClient, logger)
	wallpaperHandler := wallpapers.NewHandler(logger, wallpaperService)

	categoryRepo := categories.NewRepository(dbpool)
	categoryService := categories.NewService(categoryRepo, pageCache, logger)
	categoryHandler := categories.NewHandler(logger, categoryService)

	collectionRepo := collections.NewRepository(dbpool)
	collectionService := collections.NewService(collectionRepo, wallpaperService, pageCache, logger)
	collectionHandler := collections.NewHandler(logger, collectionService)

	userRepo := users.NewRepository(dbpool)
	userService := users.NewService(userRepo)
	userHandler := users.NewHandler(logger, userService)

	metrics := observability.NewMetrics()

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:             logger,
		Config:             cfg,
		SessionManager:     sessionManager,
		Guard:              guard,
		AuthHandler:        authHandler,
		WallpapersHandler:  wallpaperHandler,
		CategoriesHandler:  categoryHandler,
		CollectionsHandler: collectionHandler,
		UsersHandler:       userHandler,
		JobHandler:         jobHandler,
		Metrics:            metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}

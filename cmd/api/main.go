package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pixelmuse/imagevault/internal/api"
	"github.com/pixelmuse/imagevault/internal/core/service"
	"github.com/pixelmuse/imagevault/internal/infrastructure/config"
	mongodb "github.com/pixelmuse/imagevault/internal/infrastructure/db/mongo"
	redisdb "github.com/pixelmuse/imagevault/internal/infrastructure/db/redis"
	"github.com/pixelmuse/imagevault/internal/infrastructure/queue"
	"github.com/pixelmuse/imagevault/internal/infrastructure/search"
	"github.com/pixelmuse/imagevault/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Mongo connects lazily on first use; only Redis is dialed up front.
	mgr := mongodb.NewManager(mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer rdb.Close()

	searcher, err := search.NewCloudinarySearcher(cfg.Cloudinary.URL)
	if err != nil {
		log.Fatal().Err(err).Msg("asset search client init failed")
	}

	notifier := queue.NewDispatcher(0, redisdb.NewPublisher(rdb, cfg.Redis.Channel), log)
	notifier.Start(ctx)

	userRepo := mongodb.NewUserRepository(mgr)
	imageRepo := mongodb.NewImageRepository(mgr)

	userService := service.NewUserService(userRepo, log)
	imageService := service.NewImageService(imageRepo, userRepo, searcher, notifier, cfg.Cloudinary.Folder, log)

	// Index creation rides on the lazy connection; failures are logged, not
	// fatal, since Mongo may come up after the API does.
	go func() {
		idxCtx, cancel := context.WithTimeout(ctx, time.Minute)
		defer cancel()
		if err := userRepo.EnsureIndexes(idxCtx); err != nil {
			log.Warn().Err(err).Msg("user indexes not ensured")
		}
		if err := imageRepo.EnsureIndexes(idxCtx); err != nil {
			log.Warn().Err(err).Msg("image indexes not ensured")
		}
	}()

	e := api.NewRouter(api.RouterConfig{
		Users:     userService,
		Images:    imageService,
		Mongo:     mgr,
		Redis:     rdb,
		JWTSecret: cfg.JWTSecret,
		Logger:    log,
	})

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server start failed")
		}
	}()

	log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("imagevault api listening")

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}
	if err := mgr.Close(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("mongo disconnect failed")
	}
}

package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/garmentsource/storefront-gateway/internal/api"
	"github.com/garmentsource/storefront-gateway/internal/cache"
	"github.com/garmentsource/storefront-gateway/internal/core/service"
	"github.com/garmentsource/storefront-gateway/internal/infrastructure/config"
	mongostore "github.com/garmentsource/storefront-gateway/internal/infrastructure/db/mongo"
	redisstore "github.com/garmentsource/storefront-gateway/internal/infrastructure/db/redis"
	"github.com/garmentsource/storefront-gateway/internal/infrastructure/queue"
	"github.com/garmentsource/storefront-gateway/internal/upstream"
	"github.com/garmentsource/storefront-gateway/pkg/logger"
)

func main() {
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mongoClient, db, err := mongostore.Connect(ctx, mongostore.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongodb connection failed")
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = mongoClient.Disconnect(disconnectCtx)
	}()

	rdb, err := redisstore.Connect(ctx, redisstore.Config{
		Addr: cfg.Redis.Addr,
		DB:   cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer rdb.Close()

	up, err := upstream.New(upstream.Config{
		BaseURL: cfg.Upstream.BaseURL,
		Timeout: cfg.Upstream.Timeout,
	}, log)
	if err != nil {
		log.Fatal().Err(err).Msg("upstream client init failed")
	}

	sessions := service.NewSessionService(mongostore.NewSessionRepository(db), up, cfg.JWTSecret, log)

	// Sessions are repopulated before the first request is accepted, so a
	// restart never bounces valid credentials through a re-login.
	restored, err := sessions.Restore(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("session restore failed")
	}
	log.Info().Int("sessions", restored).Msg("sessions restored")

	resourceCache := cache.New(redisstore.NewTagVersions(rdb), log)
	refresher := queue.NewRefresher(cfg.RefreshWorkers, log)
	refresher.Start(ctx)
	resourceCache.AttachRefresher(refresher)

	e := api.NewRouter(api.Deps{
		Sessions:  sessions,
		Cache:     resourceCache,
		Upstream:  up,
		Mongo:     db,
		Redis:     rdb,
		JWTSecret: cfg.JWTSecret,
		Log:       log,
	})

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()
	log.Info().Str("port", cfg.Port).Str("upstream", cfg.Upstream.BaseURL).Msg("gateway started")

	<-ctx.Done()
	log.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}

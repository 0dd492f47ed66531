package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/p-karthik-eng/chat-app/internal/app/registry"
	"github.com/p-karthik-eng/chat-app/internal/app/server"
	"github.com/p-karthik-eng/chat-app/internal/app/server/handlers"
	"github.com/p-karthik-eng/chat-app/internal/app/worker"
	"github.com/p-karthik-eng/chat-app/internal/config"
	"github.com/p-karthik-eng/chat-app/internal/core/services"
	"github.com/p-karthik-eng/chat-app/internal/platform/logger"
	"github.com/p-karthik-eng/chat-app/internal/platform/telemetry"
	redisPlugin "github.com/p-karthik-eng/chat-app/internal/plugins/redis"
)

func main() {
	// Context
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Config
	cfg := config.Load()

	// Logger
	log := logger.NewLogger(*cfg)
	log.Info("starting application")

	otelShutdown, err := telemetry.InitTelemetry(ctx, *cfg)
	if err != nil {
		log.Error("failed to initialize telemetry", "err", err)
	}
	defer func() {
		log.Info("flushing telemetry...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := otelShutdown(shutdownCtx); err != nil {
			log.Error("telemetry shutdown failed", "err", err)
		}
	}()

	// Infra
	var rdb *goredis.Client
	if rdb, err = redisPlugin.NewRedisClient(ctx, *cfg.Redis); err != nil {
		log.Error("redis connection failed", "url", cfg.Redis.URL, "err", err)
		return
	}
	defer rdb.Close()
	log.Info("redis connected")

	// Adapters
	outcomes := redisPlugin.NewOutcomeStream(rdb, cfg.Redis.OutcomeStream)

	// Core
	reg := registry.New()
	roster := registry.NewRoster()
	presenceSvc := services.NewPresenceService(log, reg, roster)
	routerSvc := services.NewRouterService(log, reg, roster, outcomes)
	relaySvc := services.NewRelayService(log, reg, roster)
	dispatcher := services.NewDispatcher(log, presenceSvc, routerSvc, relaySvc)
	tokenSvc := services.NewTokenService(cfg.SecretToken)

	// Outcome collaborator
	wrkr := worker.NewOutcomeWorker(log, outcomes, cfg.Redis.ConsumerGroup)
	if err := wrkr.Run(ctx); err != nil {
		log.Error("outcome worker failed to start", "err", err)
		return
	}

	// Server
	wsHandler := handlers.NewWSHandler(roster, presenceSvc, dispatcher, *cfg.Keepalive)
	srv := server.NewServer(log, cfg, roster, wsHandler, tokenSvc)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed", "err", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown failed", "err", err)
	}
	log.Info("server stopped")
}

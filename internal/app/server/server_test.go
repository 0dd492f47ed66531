package server

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/p-karthik-eng/chat-app/internal/app/registry"
	"github.com/p-karthik-eng/chat-app/internal/app/server/handlers"
	"github.com/p-karthik-eng/chat-app/internal/config"
	"github.com/p-karthik-eng/chat-app/internal/core/domain"
	"github.com/p-karthik-eng/chat-app/internal/core/services"
)

type noopSink struct{}

func (noopSink) Record(context.Context, domain.DeliveryOutcome) error { return nil }

func testServer(t *testing.T) *Server {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := &config.Config{
		Service: &config.ServiceConfig{Name: "chat-app", Addr: "127.0.0.1:0"},
		Keepalive: &config.KeepaliveConfig{
			ProbeInterval:   25 * time.Second,
			LivenessTimeout: 60 * time.Second,
			MaxMissedAcks:   2,
			WriteTimeout:    10 * time.Second,
			ReadLimit:       512 * 1024,
			SendBuffer:      256,
		},
	}
	reg := registry.New()
	roster := registry.NewRoster()
	presenceSvc := services.NewPresenceService(log, reg, roster)
	routerSvc := services.NewRouterService(log, reg, roster, noopSink{})
	relaySvc := services.NewRelayService(log, reg, roster)
	dispatcher := services.NewDispatcher(log, presenceSvc, routerSvc, relaySvc)
	wsHandler := handlers.NewWSHandler(roster, presenceSvc, dispatcher, *cfg.Keepalive)
	return NewServer(log, cfg, roster, wsHandler, services.NewTokenService("secret"))
}

// A shutdown signal can land before Start ever runs; Shutdown must not
// depend on Start having built anything.
func TestServer_ShutdownBeforeStart(t *testing.T) {
	srv := testServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, srv.Shutdown(ctx))
}

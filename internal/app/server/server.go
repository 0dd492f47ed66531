package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/p-karthik-eng/chat-app/internal/app/registry"
	"github.com/p-karthik-eng/chat-app/internal/app/server/handlers"
	"github.com/p-karthik-eng/chat-app/internal/config"
	"github.com/p-karthik-eng/chat-app/internal/core/services"
	"github.com/p-karthik-eng/chat-app/internal/platform/metrics"
	"github.com/p-karthik-eng/chat-app/pkg/middleware"
)

type Server struct {
	mux        *http.ServeMux
	httpServer *http.Server
	log        *slog.Logger
	roster     *registry.Roster
	wsHandler  *handlers.WSHandler
	tokenSvc   *services.TokenService
	cfg        *config.Config
}

func NewServer(
	log *slog.Logger,
	cfg *config.Config,
	roster *registry.Roster,
	wsHandler *handlers.WSHandler,
	tokenSvc *services.TokenService,
) *Server {
	s := &Server{
		mux:       http.NewServeMux(),
		log:       log,
		roster:    roster,
		wsHandler: wsHandler,
		tokenSvc:  tokenSvc,
		cfg:       cfg,
	}
	s.routes()
	// Built here so Shutdown never races Start over the field.
	s.httpServer = &http.Server{
		Addr:         cfg.Service.Addr,
		Handler:      s.mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}
	return s
}

func (s *Server) routes() {
	reqLog := middleware.RequestLogger(s.log)
	tracing := middleware.TracerMiddleware(s.cfg.Service.Name)

	var wsEndpoint http.Handler = http.HandlerFunc(s.wsHandler.Handler)
	// Handshake auth is enforced only when a secret is configured;
	// otherwise the announce-supplied identity is trusted.
	if s.cfg.SecretToken != "" {
		wsEndpoint = middleware.AuthMiddleware(s.tokenSvc)(wsEndpoint)
	}
	s.mux.Handle("/ws", tracing(reqLog(wsEndpoint)))

	s.mux.HandleFunc("GET /ping", s.handlePing)
	s.mux.Handle("GET /metrics", metrics.Handler())
}

func (s *Server) handlePing(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"msg":         "Ping Successful",
		"status":      "OK",
		"connections": s.roster.Len(),
	})
}

func (s *Server) Start() error {
	s.log.Info("server starting", "addr", s.cfg.Service.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown force-closes every live connection, then drains the HTTP
// listener. Safe to call even if Start never ran: http.Server.Shutdown
// on an unstarted server just returns.
func (s *Server) Shutdown(ctx context.Context) error {
	s.roster.CloseAll("server shutting down")
	return s.httpServer.Shutdown(ctx)
}

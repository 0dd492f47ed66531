package handlers

import (
	"context"
	"net/http"

	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/p-karthik-eng/chat-app/internal/app/registry"
	"github.com/p-karthik-eng/chat-app/internal/app/server/ws"
	"github.com/p-karthik-eng/chat-app/internal/config"
	"github.com/p-karthik-eng/chat-app/internal/core/domain"
	"github.com/p-karthik-eng/chat-app/internal/core/services"
	"github.com/p-karthik-eng/chat-app/internal/platform/logger"
	"github.com/p-karthik-eng/chat-app/internal/platform/metrics"
	"github.com/p-karthik-eng/chat-app/pkg/logging"
)

// WSHandler accepts transport connections and runs each session's read
// loop: accept → welcome → dispatch inbound events → depart on exit.
type WSHandler struct {
	roster     *registry.Roster
	presence   *services.PresenceService
	dispatcher *services.Dispatcher
	keepalive  config.KeepaliveConfig
}

func NewWSHandler(
	roster *registry.Roster,
	presence *services.PresenceService,
	dispatcher *services.Dispatcher,
	keepalive config.KeepaliveConfig,
) *WSHandler {
	return &WSHandler{
		roster:     roster,
		presence:   presence,
		dispatcher: dispatcher,
		keepalive:  keepalive,
	}
}

func (h *WSHandler) Handler(w http.ResponseWriter, r *http.Request) {
	// request-scoped logger installed by the logging middleware
	log := logger.FromContext(r.Context())
	span := trace.SpanFromContext(r.Context())

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			return true // tighten later
		},
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.ErrorContext(r.Context(), "ws handler - upgrade failed", logging.Err(err))
		return
	}

	// The session outlives the upgrade request but keeps its values
	// (authenticated identity, request logger).
	sessionCtx := context.WithoutCancel(r.Context())

	sock := ws.NewWebSocket(conn, h.keepalive.WriteTimeout)
	client := ws.NewClient(sessionCtx, log, sock, h.keepalive, func(c *ws.Client) {
		h.roster.Remove(c.ID())
		h.presence.Depart(sessionCtx, c)
		metrics.ActiveConnections.Dec()
	})
	h.roster.Add(client)
	metrics.ActiveConnections.Inc()
	metrics.TotalConnections.Inc()
	span.SetAttributes(attribute.String("conn_id", client.ID()))
	log.InfoContext(r.Context(), "ws handler - connection accepted", logging.ConnID(client.ID()))

	if frame, err := domain.Encode(domain.EventWelcome, domain.WelcomeFrame{ConnectionID: client.ID()}); err == nil {
		_ = client.Send(sessionCtx, frame)
	}

	sock.ReadLoop(h.keepalive.ReadLimit, func(data []byte) {
		client.Touch()
		if err := h.dispatcher.Dispatch(sessionCtx, client, data); err != nil {
			log.DebugContext(sessionCtx, "ws handler - dispatch rejected frame",
				logging.ConnID(client.ID()), logging.Err(err))
		}
	})
	client.Close("client disconnected")
}

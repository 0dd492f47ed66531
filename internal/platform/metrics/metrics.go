package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Connection metrics
	ActiveConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "chat_connections_active",
		Help: "The current number of active WebSocket connections.",
	})
	TotalConnections = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chat_connections_total",
		Help: "The total number of WebSocket connections accepted.",
	})
	Supersessions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chat_supersessions_total",
		Help: "The total number of connections force-closed by a newer login.",
	})
	KeepaliveTimeouts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chat_keepalive_timeouts_total",
		Help: "The total number of connections closed for missed keepalives.",
	})

	// Routing metrics
	MessagesRouted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chat_messages_routed_total",
		Help: "The total number of routed direct messages by delivery outcome.",
	}, []string{"outcome"})
	SignalsRelayed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chat_signals_relayed_total",
		Help: "The total number of typing/activity signals forwarded.",
	})
	PresenceEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chat_presence_events_total",
		Help: "The total number of presence changes published, by status.",
	}, []string{"status"})

	// Outcome collaborator metrics
	OutcomesRecorded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chat_outcomes_recorded_total",
		Help: "The total number of delivery outcomes handed to the persistence collaborator.",
	})
	OutcomesDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chat_outcomes_dropped_total",
		Help: "The total number of delivery outcomes that could not be recorded.",
	})
)

// Handler exposes the Prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

package services

import (
	"context"
	"log/slog"

	"github.com/p-karthik-eng/chat-app/internal/app/registry"
	"github.com/p-karthik-eng/chat-app/internal/core/contracts"
	"github.com/p-karthik-eng/chat-app/internal/core/domain"
	"github.com/p-karthik-eng/chat-app/internal/platform/metrics"
	"github.com/p-karthik-eng/chat-app/pkg/logging"
)

// RelayService forwards ephemeral signals. No delivery confirmation, no
// retry, no buffering: a dropped signal is superseded by the next one
// soon after, so failure is never reported back to the client.
type RelayService struct {
	log      *slog.Logger
	registry *registry.Registry
	roster   *registry.Roster
}

func NewRelayService(
	log *slog.Logger,
	reg *registry.Registry,
	roster *registry.Roster,
) *RelayService {
	return &RelayService{
		log:      log,
		registry: reg,
		roster:   roster,
	}
}

// Relay forwards a typing signal to the identity in to. Returns true if
// a live connection was found and the push was attempted.
func (s *RelayService) Relay(ctx context.Context, to string, signal domain.TypingPayload) bool {
	connID, ok := s.registry.Resolve(to)
	if !ok {
		return false
	}
	recipient, ok := s.roster.Get(connID)
	if !ok {
		return false
	}
	frame, err := domain.Encode(domain.EventTypingIndicator, domain.TypingIndicatorFrame{
		From:     signal.From,
		IsTyping: signal.IsTyping,
	})
	if err != nil {
		return false
	}
	_ = recipient.Send(ctx, frame)
	metrics.SignalsRelayed.Inc()
	return true
}

// BroadcastActivity fans a generic activity signal out to every
// connection except the sender. Best effort, same as Relay.
func (s *RelayService) BroadcastActivity(ctx context.Context, sender contracts.Conn, activity domain.ActivityPayload) {
	frame, err := domain.Encode(domain.EventActivityUpdate, activity)
	if err != nil {
		s.log.ErrorContext(ctx, "relay - broadcast activity - encode failed", logging.Err(err))
		return
	}
	for _, c := range s.roster.Snapshot() {
		if c.ID() == sender.ID() {
			continue
		}
		_ = c.Send(ctx, frame)
	}
	metrics.SignalsRelayed.Inc()
}

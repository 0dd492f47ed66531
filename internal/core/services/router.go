package services

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/p-karthik-eng/chat-app/internal/app/registry"
	"github.com/p-karthik-eng/chat-app/internal/core/contracts"
	"github.com/p-karthik-eng/chat-app/internal/core/domain"
	"github.com/p-karthik-eng/chat-app/internal/platform/metrics"
	"github.com/p-karthik-eng/chat-app/pkg/logging"
)

// RouterService resolves a message's destination through the registry
// and performs exactly one delivery attempt. At-most-once, best-effort:
// nothing is queued, retried or persisted here.
type RouterService struct {
	log      *slog.Logger
	registry *registry.Registry
	roster   *registry.Roster
	sink     contracts.OutcomeSink
}

func NewRouterService(
	log *slog.Logger,
	reg *registry.Registry,
	roster *registry.Roster,
	sink contracts.OutcomeSink,
) *RouterService {
	return &RouterService{
		log:      log,
		registry: reg,
		roster:   roster,
		sink:     sink,
	}
}

// Route delivers payload from the sender connection to the identity in
// to. The outcome is pushed back to the sender as a delivery-outcome
// frame and handed to the persistence collaborator. A push failure on a
// registry-resolved connection is reported as send-failed, distinct
// from recipient-offline, so the collaborator can tell transient
// transport failure from genuine absence.
func (s *RouterService) Route(ctx context.Context, sender contracts.Conn, to, payload string) domain.DeliveryOutcome {
	ctx, span := tracer.Start(ctx, "RouterService.Route", trace.WithAttributes(
		attribute.String("from", sender.Identity()),
		attribute.String("to", to),
		attribute.Int("payload_size", len(payload)),
	))
	defer span.End()

	outcome := domain.DeliveryOutcome{
		From:    sender.Identity(),
		To:      to,
		Payload: payload,
		At:      time.Now(),
	}

	connID, ok := s.registry.Resolve(to)
	if !ok {
		outcome.Outcome = domain.OutcomeRecipientOffline
	} else {
		outcome.Outcome = s.push(ctx, connID, &outcome)
	}
	span.SetAttributes(attribute.String("outcome", string(outcome.Outcome)))
	metrics.MessagesRouted.WithLabelValues(string(outcome.Outcome)).Inc()

	if frame, err := domain.Encode(domain.EventDeliveryOutcome, outcome); err == nil {
		_ = sender.Send(ctx, frame)
	}
	if err := s.sink.Record(ctx, outcome); err != nil {
		metrics.OutcomesDropped.Inc()
		s.log.ErrorContext(ctx, "router - route - record outcome failed",
			slog.String("from", outcome.From), slog.String("to", to), logging.Err(err))
	} else {
		metrics.OutcomesRecorded.Inc()
	}
	s.log.InfoContext(ctx, "router - route - message routed",
		slog.String("from", outcome.From), slog.String("to", to), logging.Outcome(string(outcome.Outcome)))
	return outcome
}

// push makes the single delivery attempt against the resolved
// connection. never blocks on the network; the frame is handed to the
// recipient's write loop.
func (s *RouterService) push(ctx context.Context, connID string, outcome *domain.DeliveryOutcome) domain.Outcome {
	recipient, ok := s.roster.Get(connID)
	if !ok {
		// Registry resolved the identity but the transport handle is
		// already gone: a race between liveness detection and routing.
		outcome.Reason = "connection no longer tracked"
		return domain.OutcomeSendFailed
	}
	frame, err := domain.Encode(domain.EventMessageReceived, domain.MessageReceivedFrame{
		From:    outcome.From,
		Payload: outcome.Payload,
	})
	if err != nil {
		outcome.Reason = err.Error()
		return domain.OutcomeSendFailed
	}
	if err := recipient.Send(ctx, frame); err != nil {
		recipient.MarkDegraded()
		outcome.Reason = err.Error()
		return domain.OutcomeSendFailed
	}
	return domain.OutcomeDelivered
}

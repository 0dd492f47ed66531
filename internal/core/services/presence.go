package services

import (
	"context"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/p-karthik-eng/chat-app/internal/app/registry"
	"github.com/p-karthik-eng/chat-app/internal/core/contracts"
	"github.com/p-karthik-eng/chat-app/internal/core/domain"
	"github.com/p-karthik-eng/chat-app/internal/platform/metrics"
	"github.com/p-karthik-eng/chat-app/pkg/logging"
)

var tracer = otel.Tracer("chat-core")

// PresenceService turns registry mutations into observable presence
// semantics: join, leave and last-login-wins supersession.
type PresenceService struct {
	log      *slog.Logger
	registry *registry.Registry
	roster   *registry.Roster

	// fanout orders presence emissions with the registry mutations that
	// produced them, so an online event can never overtake the offline
	// event of a depart sequenced before it. Send is a buffered enqueue,
	// so holding fanout across the loop never blocks on the network.
	fanout sync.Mutex
}

func NewPresenceService(
	log *slog.Logger,
	reg *registry.Registry,
	roster *registry.Roster,
) *PresenceService {
	return &PresenceService{
		log:      log,
		registry: reg,
		roster:   roster,
	}
}

// Announce binds the connection to identity. If another connection
// already holds the identity it is force-closed first, so there is no
// window where two sessions both appear live. The online event fans out
// only after the supersession teardown has been initiated.
func (s *PresenceService) Announce(ctx context.Context, c contracts.Conn, identity string) {
	ctx, span := tracer.Start(ctx, "PresenceService.Announce", trace.WithAttributes(
		attribute.String("identity", identity),
		attribute.String("conn_id", c.ID()),
	))
	defer span.End()

	prev := s.registry.Bind(identity, c.ID())
	c.Bind(identity)
	if prev != "" && prev != c.ID() {
		if old, ok := s.roster.Get(prev); ok {
			old.Close("superseded by newer login")
		}
		metrics.Supersessions.Inc()
		span.SetAttributes(attribute.String("superseded_conn_id", prev))
		s.log.InfoContext(ctx, "presence - announce - superseded previous connection",
			logging.Identity(identity), logging.ConnID(c.ID()), slog.String("prev_conn_id", prev))
	}

	// The online event is only valid while this bind is still current: a
	// depart or a newer announce sequenced after the bind has already
	// superseded it, and emitting it now would reorder it past theirs.
	s.fanout.Lock()
	if id, ok := s.registry.Resolve(identity); ok && id == c.ID() {
		s.publish(ctx, identity, domain.StatusOnline)
	}
	s.fanout.Unlock()
	s.log.InfoContext(ctx, "presence - announce - identity online",
		logging.Identity(identity), logging.ConnID(c.ID()), slog.Int("online", s.registry.Size()))
}

// Depart deregisters the connection's identity, if any. The unbind is
// guarded by the connection id so a superseded connection's belated
// disconnect cannot clobber the newer binding. Unbound connections
// depart silently.
func (s *PresenceService) Depart(ctx context.Context, c contracts.Conn) {
	identity := c.Identity()
	if identity == "" {
		return
	}
	ctx, span := tracer.Start(ctx, "PresenceService.Depart", trace.WithAttributes(
		attribute.String("identity", identity),
		attribute.String("conn_id", c.ID()),
	))
	defer span.End()

	// Unbind and the offline emission happen under one fanout hold so no
	// concurrent announce can slot its online event between them.
	s.fanout.Lock()
	removed := s.registry.Unbind(identity, c.ID())
	if removed {
		s.publish(ctx, identity, domain.StatusOffline)
	}
	s.fanout.Unlock()
	if !removed {
		// Stale unbind: the identity already resolves to a newer
		// connection. Not an error, log only.
		s.log.InfoContext(ctx, "presence - depart - stale unbind ignored",
			logging.Identity(identity), logging.ConnID(c.ID()), logging.Err(domain.ErrStaleUnbind))
		return
	}
	s.log.InfoContext(ctx, "presence - depart - identity offline",
		logging.Identity(identity), logging.ConnID(c.ID()), slog.Int("online", s.registry.Size()))
}

// QueryStatus is a point-in-time presence read.
func (s *PresenceService) QueryStatus(identity string) domain.PresenceStatus {
	connID, ok := s.registry.Resolve(identity)
	return domain.PresenceStatus{
		Identity: identity,
		Online:   ok,
		ConnID:   connID,
	}
}

// publish fans a presence change out to every live connection. Callers
// hold fanout. The iteration works on a roster snapshot; a connection
// closing mid-fanout just fails its own push and is not retried.
func (s *PresenceService) publish(ctx context.Context, identity, status string) {
	frame, err := domain.Encode(domain.EventPresenceChanged, domain.PresenceChangedFrame{
		Identity: identity,
		Status:   status,
	})
	if err != nil {
		s.log.ErrorContext(ctx, "presence - publish - encode failed", logging.Identity(identity), logging.Err(err))
		return
	}
	for _, c := range s.roster.Snapshot() {
		_ = c.Send(ctx, frame)
	}
	metrics.PresenceEvents.WithLabelValues(status).Inc()
}

package services

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/p-karthik-eng/chat-app/internal/core/contracts"
	"github.com/p-karthik-eng/chat-app/internal/core/domain"
	"github.com/p-karthik-eng/chat-app/pkg/logging"
	"github.com/p-karthik-eng/chat-app/pkg/middleware"
)

// Dispatcher decodes inbound frames and hands each event to the
// component that owns it. Transport mechanics stay in the server layer;
// routing logic stays here.
type Dispatcher struct {
	log      *slog.Logger
	presence *PresenceService
	router   *RouterService
	relay    *RelayService
}

func NewDispatcher(
	log *slog.Logger,
	presence *PresenceService,
	router *RouterService,
	relay *RelayService,
) *Dispatcher {
	return &Dispatcher{
		log:      log,
		presence: presence,
		router:   router,
		relay:    relay,
	}
}

// Dispatch handles one inbound frame from c. Failures are scoped to the
// frame: the client gets an error frame and the connection stays up.
func (d *Dispatcher) Dispatch(ctx context.Context, c contracts.Conn, raw []byte) error {
	var env domain.Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		d.sendError(ctx, c, "bad-frame", "frame is not a valid envelope")
		return err
	}

	switch env.Event {
	case domain.EventAnnounce:
		var p domain.AnnouncePayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			d.sendError(ctx, c, "bad-announce", "announce payload malformed")
			return err
		}
		if p.Identity == "" {
			d.sendError(ctx, c, "bad-announce", "announce requires an identity")
			return errors.New("announce requires an identity")
		}
		// When the transport handshake was authenticated, the announced
		// identity must match the token subject.
		if sub, ok := ctx.Value(middleware.UserIDKey).(string); ok && sub != "" && sub != p.Identity {
			d.sendError(ctx, c, "identity-mismatch", domain.ErrIdentityMismatch.Error())
			return domain.ErrIdentityMismatch
		}
		d.presence.Announce(ctx, c, p.Identity)
		return nil

	case domain.EventSendMessage:
		if c.Identity() == "" {
			d.sendError(ctx, c, "not-bound", domain.ErrIdentityNotBound.Error())
			return domain.ErrIdentityNotBound
		}
		var p domain.MessagePayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			d.sendError(ctx, c, "bad-message", "message payload malformed")
			return err
		}
		d.router.Route(ctx, c, p.To, p.Payload)
		return nil

	case domain.EventTyping:
		if c.Identity() == "" {
			return domain.ErrIdentityNotBound
		}
		var p domain.TypingPayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			return err
		}
		p.From = c.Identity()
		d.relay.Relay(ctx, p.To, p)
		return nil

	case domain.EventStatusQuery:
		var p domain.StatusQueryPayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			return err
		}
		status := d.presence.QueryStatus(p.Identity)
		frame, err := domain.Encode(domain.EventUserStatus, domain.UserStatusFrame{
			Identity:     status.Identity,
			Online:       status.Online,
			ConnectionID: status.ConnID,
		})
		if err != nil {
			return err
		}
		return c.Send(ctx, frame)

	case domain.EventKeepalivePing:
		// Liveness reset happens in the read loop for every inbound
		// frame; here we only answer.
		frame, err := domain.Encode(domain.EventKeepaliveAck, nil)
		if err != nil {
			return err
		}
		return c.Send(ctx, frame)

	case domain.EventUserActivity:
		if c.Identity() == "" {
			return domain.ErrIdentityNotBound
		}
		var p domain.ActivityPayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			return err
		}
		p.Identity = c.Identity()
		d.relay.BroadcastActivity(ctx, c, p)
		return nil

	default:
		d.log.DebugContext(ctx, "dispatch - unknown event",
			logging.Event(env.Event), logging.ConnID(c.ID()))
		d.sendError(ctx, c, "unknown-event", "unrecognized event: "+env.Event)
		return domain.ErrUnknownEvent
	}
}

func (d *Dispatcher) sendError(ctx context.Context, c contracts.Conn, code, msg string) {
	frame, err := domain.Encode(domain.EventError, domain.ErrorFrame{
		Code:    code,
		Message: msg,
	})
	if err != nil {
		return
	}
	if err := c.Send(ctx, frame); err != nil {
		d.log.InfoContext(ctx, "dispatch - send error frame failed",
			logging.ConnID(c.ID()), slog.String("code", code), logging.Err(err))
	}
}

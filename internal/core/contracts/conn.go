package contracts

import (
	"context"

	"github.com/p-karthik-eng/chat-app/internal/core/domain"
)

// Conn is the minimal view of one live transport session that the
// presence, routing and relay services need. The lifecycle supervisor
// owns the real connection; everyone else holds this non-owning handle.
type Conn interface {
	// ID is the process-unique connection identifier.
	ID() string
	// Identity returns the bound user identity, or "" while Unbound.
	Identity() string
	// Bind marks the connection Bound to an identity.
	Bind(identity string)
	// State reports the current lifecycle state.
	State() domain.ConnState
	// Send pushes one encoded frame to the client. It never blocks on the
	// network; frames are handed to the connection's write loop.
	Send(ctx context.Context, data []byte) error
	// Close force-closes the connection. Safe to call more than once;
	// the depart cleanup runs exactly once.
	Close(reason string)
	// MarkDegraded flags the connection's health after a failed push so
	// the next liveness check runs sooner.
	MarkDegraded()
}

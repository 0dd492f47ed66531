package domain

import "errors"

var (
	// ErrIdentityNotBound rejects message or typing traffic from a
	// connection that never announced an identity. No state changes.
	ErrIdentityNotBound = errors.New("identity not bound")
	// ErrIdentityMismatch rejects an announce whose identity differs from
	// the authenticated subject supplied at the transport boundary.
	ErrIdentityMismatch = errors.New("announced identity does not match authenticated subject")
	// ErrTransportSendFailed is a local push error on a resolved
	// connection. Reported to the sender, never fatal to the router.
	ErrTransportSendFailed = errors.New("transport send failed")
	// ErrStaleUnbind marks an unbind whose binding no longer points at the
	// requesting connection. Silently ignored, logged only.
	ErrStaleUnbind = errors.New("stale unbind")
	// ErrConnectionClosed is returned by Send once a connection has
	// entered Closing.
	ErrConnectionClosed = errors.New("connection closed")
	// ErrUnknownEvent is returned for inbound frames with an
	// unrecognized event name.
	ErrUnknownEvent = errors.New("unknown event")
)

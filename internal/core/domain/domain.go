package domain

import (
	"time"
)

// ConnState tracks the lifecycle of a single transport session.
// Transitions are one-way: Unbound → Bound → Closing → Closed.
type ConnState int32

const (
	StateUnbound ConnState = iota
	StateBound
	StateClosing
	StateClosed
)

func (s ConnState) String() string {
	switch s {
	case StateUnbound:
		return "unbound"
	case StateBound:
		return "bound"
	case StateClosing:
		return "closing"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Outcome is the terminal result of one routed message attempt.
type Outcome string

const (
	OutcomeDelivered        Outcome = "delivered"
	OutcomeRecipientOffline Outcome = "recipient-offline"
	OutcomeSendFailed       Outcome = "send-failed"
)

// DeliveryOutcome is reported synchronously to the sender and handed to
// the external persistence collaborator. The core never stores it.
type DeliveryOutcome struct {
	From    string    `json:"from"`
	To      string    `json:"to"`
	Payload string    `json:"payload"`
	Outcome Outcome   `json:"outcome"`
	Reason  string    `json:"reason,omitempty"` // only for send-failed
	At      time.Time `json:"at"`
}

// PresenceStatus is a point-in-time answer to a status query. Presence is
// derived solely from registry state, never from transport observations.
type PresenceStatus struct {
	Identity string
	Online   bool
	ConnID   string
}

package domain

import (
	"encoding/json"
)

// Inbound event names (client → server).
const (
	EventAnnounce      = "announce-identity"
	EventSendMessage   = "send-message"
	EventTyping        = "typing"
	EventStatusQuery   = "status-query"
	EventKeepalivePing = "keepalive-ping"
	EventUserActivity  = "user-activity"
)

// Outbound event names (server → client).
const (
	EventWelcome         = "welcome"
	EventMessageReceived = "message-received"
	EventDeliveryOutcome = "delivery-outcome"
	EventTypingIndicator = "typing-indicator"
	EventPresenceChanged = "presence-changed"
	EventKeepaliveAck    = "keepalive-ack"
	EventUserStatus      = "user-status"
	EventActivityUpdate  = "user-activity-update"
	EventError           = "error"
)

// Envelope is the wire framing for every event in both directions.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Encode wraps a payload into an envelope and marshals it.
func Encode(event string, payload any) ([]byte, error) {
	env := Envelope{Event: event}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		env.Data = data
	}
	return json.Marshal(env)
}

// AnnouncePayload binds the announcing connection to an identity.
type AnnouncePayload struct {
	Identity string `json:"identity"`
}

// MessagePayload is a direct message between two identities.
type MessagePayload struct {
	To      string `json:"to"`
	From    string `json:"from"`
	Payload string `json:"payload"`
}

// TypingPayload is an ephemeral typing signal.
type TypingPayload struct {
	To       string `json:"to"`
	From     string `json:"from"`
	IsTyping bool   `json:"is_typing"`
}

// StatusQueryPayload asks whether an identity is currently online.
type StatusQueryPayload struct {
	Identity string `json:"identity"`
}

// ActivityPayload is a generic activity signal fanned out to everyone else.
type ActivityPayload struct {
	Identity string `json:"identity"`
	Activity string `json:"activity"`
}

// WelcomeFrame is sent once right after the transport is accepted.
type WelcomeFrame struct {
	ConnectionID string `json:"connection_id"`
}

// MessageReceivedFrame is pushed to the recipient on a successful route.
type MessageReceivedFrame struct {
	From    string `json:"from"`
	Payload string `json:"payload"`
}

// TypingIndicatorFrame is pushed to the recipient of a typing signal.
type TypingIndicatorFrame struct {
	From     string `json:"from"`
	IsTyping bool   `json:"is_typing"`
}

// PresenceChangedFrame is fanned out on every announce and depart.
type PresenceChangedFrame struct {
	Identity string `json:"identity"`
	Status   string `json:"status"` // "online" or "offline"
}

// UserStatusFrame answers a status query, to the requester only.
type UserStatusFrame struct {
	Identity     string `json:"identity"`
	Online       bool   `json:"online"`
	ConnectionID string `json:"connection_id,omitempty"`
}

// ErrorFrame is the WS-safe error representation.
type ErrorFrame struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

const (
	StatusOnline  = "online"
	StatusOffline = "offline"
)

package ws

import (
	"log/slog"
	"time"

	"github.com/gorilla/websocket"

	"github.com/p-karthik-eng/chat-app/pkg/logging"
)

// WebSocket wraps a gorilla connection with the write deadlines and
// read limits every session gets.
type WebSocket struct {
	*websocket.Conn
	writeTimeout time.Duration
}

func NewWebSocket(conn *websocket.Conn, writeTimeout time.Duration) *WebSocket {
	return &WebSocket{Conn: conn, writeTimeout: writeTimeout}
}

func (w *WebSocket) WriteMessage(data []byte) error {
	w.Conn.SetWriteDeadline(time.Now().Add(w.writeTimeout))
	return w.Conn.WriteMessage(websocket.TextMessage, data)
}

// Ping emits a keepalive probe. WriteControl is safe concurrently with
// WriteMessage, so the supervisor loop never contends with the write loop.
func (w *WebSocket) Ping() error {
	return w.Conn.WriteControl(
		websocket.PingMessage,
		nil,
		time.Now().Add(w.writeTimeout),
	)
}

// CloseWithReason sends a close frame best effort before tearing down.
func (w *WebSocket) CloseWithReason(code int, text string) {
	_ = w.Conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(code, text),
		time.Now().Add(w.writeTimeout),
	)
	_ = w.Conn.Close()
}

// ReadLoop pumps inbound frames until the transport breaks or closes.
func (w *WebSocket) ReadLoop(readLimit int64, onMsg func([]byte)) {
	w.Conn.SetReadLimit(readLimit)
	for {
		_, data, err := w.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				slog.Debug("ws - read loop - unexpected close", logging.Err(err))
			}
			return
		}
		if len(data) > 0 {
			onMsg(data)
		}
	}
}

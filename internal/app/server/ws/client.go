package ws

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/p-karthik-eng/chat-app/internal/config"
	"github.com/p-karthik-eng/chat-app/internal/core/contracts"
	"github.com/p-karthik-eng/chat-app/internal/core/domain"
	"github.com/p-karthik-eng/chat-app/internal/platform/metrics"
	"github.com/p-karthik-eng/chat-app/pkg/logging"
)

// Client owns one live transport session through its whole lifecycle:
// Unbound → Bound → Closing → Closed. It runs a buffered write loop and
// a keepalive supervisor; everything outside this package holds it only
// through contracts.Conn and never controls its lifetime.
type Client struct {
	id     string
	log    *slog.Logger
	ws     *WebSocket
	cfg    config.KeepaliveConfig
	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	identity string

	state        atomic.Int32
	out          chan []byte
	once         sync.Once
	lastActivity atomic.Int64 // unix nanos of last inbound activity
	missedAcks   atomic.Int32
	degraded     atomic.Bool
	onClose      func(*Client)
}

var _ contracts.Conn = (*Client)(nil)

// NewClient starts the write loop and keepalive supervisor. onClose
// runs exactly once, after the state reaches Closed.
func NewClient(
	parent context.Context,
	log *slog.Logger,
	sock *WebSocket,
	cfg config.KeepaliveConfig,
	onClose func(*Client),
) *Client {
	ctx, cancel := context.WithCancel(parent)
	c := &Client{
		id:      uuid.NewString(),
		log:     log,
		ws:      sock,
		cfg:     cfg,
		ctx:     ctx,
		cancel:  cancel,
		out:     make(chan []byte, cfg.SendBuffer),
		onClose: onClose,
	}
	c.state.Store(int32(domain.StateUnbound))
	c.Touch()
	sock.SetPongHandler(func(string) error {
		c.missedAcks.Store(0)
		c.degraded.Store(false)
		c.Touch()
		return nil
	})
	go c.writeLoop()
	go c.supervise()
	return c
}

func (c *Client) ID() string { return c.id }

func (c *Client) Identity() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.identity
}

// Bind marks the connection Bound. Binding an already Closing
// connection is a no-op state-wise; the identity is still recorded so
// the departing cleanup can unbind it.
func (c *Client) Bind(identity string) {
	c.mu.Lock()
	c.identity = identity
	c.mu.Unlock()
	c.state.CompareAndSwap(int32(domain.StateUnbound), int32(domain.StateBound))
}

func (c *Client) State() domain.ConnState {
	return domain.ConnState(c.state.Load())
}

// Touch records inbound activity, resetting the liveness window.
func (c *Client) Touch() {
	c.lastActivity.Store(time.Now().UnixNano())
}

func (c *Client) lastActivityTime() time.Time {
	return time.Unix(0, c.lastActivity.Load())
}

// MarkDegraded accelerates the liveness checks after a failed push.
// The next keepalive ack clears it, so a transient transport error does
// not pin the connection to the accelerated cadence for good.
func (c *Client) MarkDegraded() {
	c.degraded.Store(true)
}

// Send queues one frame for the write loop. It never blocks: a full
// buffer means the client cannot keep up and the push fails like any
// other transport error.
func (c *Client) Send(ctx context.Context, data []byte) error {
	if c.State() >= domain.StateClosing {
		return domain.ErrConnectionClosed
	}
	select {
	case c.out <- data:
		return nil
	case <-c.ctx.Done():
		return domain.ErrConnectionClosed
	case <-ctx.Done():
		return ctx.Err()
	default:
		return fmt.Errorf("%w: send buffer full", domain.ErrTransportSendFailed)
	}
}

// Close transitions to Closing, tears the transport down and fires the
// onClose hook once the state reaches Closed. Every disconnect path —
// read loop exit, liveness timeout, missed keepalives, supersession,
// shutdown — funnels through here, and the sync.Once guarantees the
// depart cleanup cannot run twice even when two of them race.
func (c *Client) Close(reason string) {
	c.once.Do(func() {
		c.state.Store(int32(domain.StateClosing))
		c.cancel()
		c.ws.CloseWithReason(websocket.CloseNormalClosure, reason)
		c.state.Store(int32(domain.StateClosed))
		c.log.Info("ws - client closed",
			logging.ConnID(c.id), logging.Identity(c.Identity()), slog.String("reason", reason))
		if c.onClose != nil {
			c.onClose(c)
		}
	})
}

func (c *Client) writeLoop() {
	for {
		select {
		case <-c.ctx.Done():
			return
		case data := <-c.out:
			if err := c.ws.WriteMessage(data); err != nil {
				c.Close("write failed")
				return
			}
		}
	}
}

// supervise runs the per-connection liveness check: probe on a fixed
// interval, close after MaxMissedAcks consecutive unanswered probes or
// once no inbound activity lands within the liveness timeout. Degraded
// connections are re-checked on a shortened interval.
func (c *Client) supervise() {
	timer := time.NewTimer(c.probeDelay())
	defer timer.Stop()
	for {
		select {
		case <-c.ctx.Done():
			return
		case <-timer.C:
		}
		if time.Since(c.lastActivityTime()) > c.cfg.LivenessTimeout {
			metrics.KeepaliveTimeouts.Inc()
			c.Close("liveness timeout")
			return
		}
		if int(c.missedAcks.Load()) >= c.cfg.MaxMissedAcks {
			metrics.KeepaliveTimeouts.Inc()
			c.Close("missed keepalive acks")
			return
		}
		if err := c.ws.Ping(); err != nil {
			c.Close("keepalive probe failed")
			return
		}
		c.missedAcks.Add(1)
		timer.Reset(c.probeDelay())
	}
}

func (c *Client) probeDelay() time.Duration {
	if c.degraded.Load() {
		return c.cfg.ProbeInterval / 4
	}
	return c.cfg.ProbeInterval
}

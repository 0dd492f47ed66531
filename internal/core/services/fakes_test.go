package services

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/p-karthik-eng/chat-app/internal/core/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeConn is an in-memory stand-in for a live transport session.
type fakeConn struct {
	mu         sync.Mutex
	id         string
	identity   string
	state      domain.ConnState
	frames     []domain.Envelope
	sendErr    error
	sendHook   func() // runs before a Send lands, outside mu
	degraded   bool
	closeCalls int
	onClose    func(*fakeConn)
}

func newFakeConn(id string) *fakeConn {
	return &fakeConn{id: id, state: domain.StateUnbound}
}

func (c *fakeConn) ID() string { return c.id }

func (c *fakeConn) Identity() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.identity
}

func (c *fakeConn) Bind(identity string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.identity = identity
	if c.state == domain.StateUnbound {
		c.state = domain.StateBound
	}
}

func (c *fakeConn) State() domain.ConnState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *fakeConn) stallSend(hook func()) {
	c.mu.Lock()
	c.sendHook = hook
	c.mu.Unlock()
}

func (c *fakeConn) Send(_ context.Context, data []byte) error {
	c.mu.Lock()
	hook := c.sendHook
	c.mu.Unlock()
	if hook != nil {
		hook()
	}
	c.mu.Lock()
	if c.sendErr != nil {
		err := c.sendErr
		c.mu.Unlock()
		return err
	}
	var env domain.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		c.mu.Unlock()
		return err
	}
	c.frames = append(c.frames, env)
	c.mu.Unlock()
	return nil
}

func (c *fakeConn) Close(string) {
	c.mu.Lock()
	c.closeCalls++
	first := c.closeCalls == 1
	if first {
		c.state = domain.StateClosed
	}
	hook := c.onClose
	c.mu.Unlock()
	if first && hook != nil {
		hook(c)
	}
}

func (c *fakeConn) MarkDegraded() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.degraded = true
}

func (c *fakeConn) isDegraded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.degraded
}

// framesOf returns the decoded payloads of every frame with the given
// event name, in arrival order.
func framesOf[T any](t *testing.T, c *fakeConn, event string) []T {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []T
	for _, env := range c.frames {
		if env.Event != event {
			continue
		}
		var payload T
		require.NoError(t, json.Unmarshal(env.Data, &payload))
		out = append(out, payload)
	}
	return out
}

func countFrames(c *fakeConn, event string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, env := range c.frames {
		if env.Event == event {
			n++
		}
	}
	return n
}

// fakeSink records every outcome handed to the persistence collaborator.
type fakeSink struct {
	mu       sync.Mutex
	outcomes []domain.DeliveryOutcome
	err      error
}

func (s *fakeSink) Record(_ context.Context, outcome domain.DeliveryOutcome) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.outcomes = append(s.outcomes, outcome)
	return nil
}

func (s *fakeSink) recorded() []domain.DeliveryOutcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.DeliveryOutcome(nil), s.outcomes...)
}

package registry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/p-karthik-eng/chat-app/internal/core/domain"
)

type stubConn struct {
	id          string
	closeReason string
}

func (c *stubConn) ID() string { return c.id }

func (c *stubConn) Identity() string { return "" }

func (c *stubConn) Bind(string) {}

func (c *stubConn) State() domain.ConnState { return domain.StateUnbound }

func (c *stubConn) Send(context.Context, []byte) error { return nil }

func (c *stubConn) Close(reason string) { c.closeReason = reason }

func (c *stubConn) MarkDegraded() {}

func TestRoster_AddGetRemove(t *testing.T) {
	roster := NewRoster()
	c := &stubConn{id: "conn-a"}

	roster.Add(c)
	got, ok := roster.Get("conn-a")
	require.True(t, ok)
	assert.Same(t, c, got.(*stubConn))
	assert.Equal(t, 1, roster.Len())

	roster.Remove("conn-a")
	_, ok = roster.Get("conn-a")
	assert.False(t, ok)
	assert.Zero(t, roster.Len())
}

func TestRoster_SnapshotIsCopy(t *testing.T) {
	roster := NewRoster()
	roster.Add(&stubConn{id: "conn-a"})
	roster.Add(&stubConn{id: "conn-b"})

	snap := roster.Snapshot()
	assert.Len(t, snap, 2)

	// mutating the roster after the snapshot must not affect it
	roster.Remove("conn-a")
	assert.Len(t, snap, 2)
	assert.Equal(t, 1, roster.Len())
}

func TestRoster_CloseAll(t *testing.T) {
	roster := NewRoster()
	a := &stubConn{id: "conn-a"}
	b := &stubConn{id: "conn-b"}
	roster.Add(a)
	roster.Add(b)

	roster.CloseAll("shutdown")
	assert.Equal(t, "shutdown", a.closeReason)
	assert.Equal(t, "shutdown", b.closeReason)
}

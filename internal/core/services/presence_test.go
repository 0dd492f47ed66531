package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/p-karthik-eng/chat-app/internal/app/registry"
	"github.com/p-karthik-eng/chat-app/internal/core/domain"
)

// newPresenceFixture wires a presence service with the same depart
// hook the real lifecycle supervisor installs.
func newPresenceFixture() (*PresenceService, *registry.Registry, *registry.Roster) {
	reg := registry.New()
	roster := registry.NewRoster()
	return NewPresenceService(testLogger(), reg, roster), reg, roster
}

func (s *PresenceService) attach(c *fakeConn) {
	s.roster.Add(c)
	c.onClose = func(c *fakeConn) {
		s.roster.Remove(c.ID())
		s.Depart(context.Background(), c)
	}
}

func TestPresence_AnnouncePublishesOnlineToEveryone(t *testing.T) {
	svc, reg, _ := newPresenceFixture()
	a := newFakeConn("conn-a")
	b := newFakeConn("conn-b")
	svc.attach(a)
	svc.attach(b)

	svc.Announce(context.Background(), a, "u1")

	connID, ok := reg.Resolve("u1")
	require.True(t, ok)
	assert.Equal(t, "conn-a", connID)
	assert.Equal(t, "u1", a.Identity())
	assert.Equal(t, domain.StateBound, a.State())

	for _, c := range []*fakeConn{a, b} {
		events := framesOf[domain.PresenceChangedFrame](t, c, domain.EventPresenceChanged)
		require.Len(t, events, 1)
		assert.Equal(t, "u1", events[0].Identity)
		assert.Equal(t, domain.StatusOnline, events[0].Status)
	}
}

func TestPresence_SupersessionForcesOldConnectionClosed(t *testing.T) {
	svc, reg, roster := newPresenceFixture()
	a := newFakeConn("conn-a")
	b := newFakeConn("conn-b")
	svc.attach(a)
	svc.attach(b)

	svc.Announce(context.Background(), a, "u1")
	svc.Announce(context.Background(), b, "u1")

	assert.Equal(t, 1, a.closeCalls, "previous connection is force-closed")
	assert.Equal(t, domain.StateClosed, a.State())

	connID, ok := reg.Resolve("u1")
	require.True(t, ok)
	assert.Equal(t, "conn-b", connID, "new connection is the sole resolver target")
	_, stillTracked := roster.Get("conn-a")
	assert.False(t, stillTracked)

	// The superseded connection's depart is a stale unbind: no offline
	// event may interleave, so the surviving connection sees online
	// events only.
	events := framesOf[domain.PresenceChangedFrame](t, b, domain.EventPresenceChanged)
	for _, e := range events {
		assert.Equal(t, domain.StatusOnline, e.Status)
	}
}

func TestPresence_DepartPublishesOfflineOnce(t *testing.T) {
	svc, reg, _ := newPresenceFixture()
	a := newFakeConn("conn-a")
	observer := newFakeConn("conn-o")
	svc.attach(a)
	svc.attach(observer)

	svc.Announce(context.Background(), a, "u1")
	a.Close("gone")

	_, ok := reg.Resolve("u1")
	assert.False(t, ok)

	offline := framesOf[domain.PresenceChangedFrame](t, observer, domain.EventPresenceChanged)
	require.Len(t, offline, 2)
	assert.Equal(t, domain.StatusOnline, offline[0].Status)
	assert.Equal(t, domain.StatusOffline, offline[1].Status)

	// a second independent disconnect signal must not double-publish
	svc.Depart(context.Background(), a)
	assert.Equal(t, 2, countFrames(observer, domain.EventPresenceChanged))
}

// A depart whose offline fan-out is still in flight must not be
// overtaken by a fresh announce for the same identity: observers have
// to see offline before the reconnect's online, matching the order the
// registry serialized the two mutations in.
func TestPresence_ReconnectCannotOvertakeOffline(t *testing.T) {
	svc, reg, _ := newPresenceFixture()
	old := newFakeConn("conn-old")
	next := newFakeConn("conn-next")
	observer := newFakeConn("conn-obs")
	svc.attach(old)
	svc.attach(next)
	svc.attach(observer)

	svc.Announce(context.Background(), old, "u1")

	// Stall the observer's next push so the offline fan-out is held
	// open while the reconnect races it.
	stalled := make(chan struct{})
	var once sync.Once
	observer.stallSend(func() {
		once.Do(func() {
			close(stalled)
			time.Sleep(150 * time.Millisecond)
		})
	})

	done := make(chan struct{})
	go func() {
		defer close(done)
		svc.Depart(context.Background(), old)
	}()

	<-stalled
	svc.Announce(context.Background(), next, "u1")
	<-done

	connID, ok := reg.Resolve("u1")
	require.True(t, ok)
	assert.Equal(t, "conn-next", connID)

	events := framesOf[domain.PresenceChangedFrame](t, observer, domain.EventPresenceChanged)
	statuses := make([]string, 0, len(events))
	for _, e := range events {
		statuses = append(statuses, e.Status)
	}
	assert.Equal(t, []string{domain.StatusOnline, domain.StatusOffline, domain.StatusOnline}, statuses)
}

func TestPresence_UnannouncedDisconnectIsSilent(t *testing.T) {
	svc, _, _ := newPresenceFixture()
	a := newFakeConn("conn-a")
	observer := newFakeConn("conn-o")
	svc.attach(a)
	svc.attach(observer)

	a.Close("gone before announcing")

	assert.Zero(t, countFrames(observer, domain.EventPresenceChanged))
}

func TestPresence_QueryStatus(t *testing.T) {
	svc, _, _ := newPresenceFixture()
	a := newFakeConn("conn-a")
	svc.attach(a)
	svc.Announce(context.Background(), a, "u1")

	status := svc.QueryStatus("u1")
	assert.True(t, status.Online)
	assert.Equal(t, "conn-a", status.ConnID)

	status = svc.QueryStatus("u2")
	assert.False(t, status.Online)
	assert.Empty(t, status.ConnID)
}

package registry

import (
	"sync"

	"github.com/p-karthik-eng/chat-app/internal/core/contracts"
)

// Roster is the lookup table from connection id to the live transport
// handle, covering every accepted connection including unbound ones.
// The lifecycle supervisor adds and removes entries; presence fan-out
// iterates a snapshot so a connection closing mid-iteration only fails
// its own push.
type Roster struct {
	mu    sync.RWMutex
	conns map[string]contracts.Conn
}

func NewRoster() *Roster {
	return &Roster{
		conns: make(map[string]contracts.Conn),
	}
}

func (t *Roster) Add(c contracts.Conn) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.conns[c.ID()] = c
}

func (t *Roster) Remove(connID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.conns, connID)
}

func (t *Roster) Get(connID string) (contracts.Conn, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	c, ok := t.conns[connID]
	return c, ok
}

// Snapshot returns the current connections as a copied slice.
func (t *Roster) Snapshot() []contracts.Conn {
	t.mu.RLock()
	defer t.mu.RUnlock()
	conns := make([]contracts.Conn, 0, len(t.conns))
	for _, c := range t.conns {
		conns = append(conns, c)
	}
	return conns
}

func (t *Roster) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.conns)
}

// CloseAll force-closes every tracked connection, used on shutdown.
func (t *Roster) CloseAll(reason string) {
	for _, c := range t.Snapshot() {
		c.Close(reason)
	}
}

package registry

import (
	"sync"
)

// Registry is the single source of truth for "who is online": a
// bidirectional-enough mapping of user identity → current connection id.
// It never owns connections or transport handles, only associations.
// Every operation runs under one mutex so no caller can observe a
// half-updated mapping; the critical section is a map access, never a
// network push.
type Registry struct {
	mu      sync.Mutex
	entries map[string]string // identity → connection id
}

func New() *Registry {
	return &Registry{
		entries: make(map[string]string),
	}
}

// Bind associates identity with connID and returns the previously bound
// connection id, if any. A non-empty previous id that differs from
// connID signals that supersession must be carried out by the caller.
// Re-binding the same pair is idempotent.
func (r *Registry) Bind(identity, connID string) (prev string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	prev = r.entries[identity]
	r.entries[identity] = connID
	return prev
}

// Unbind removes the association only if the current mapping still
// points at connID. A superseded connection's belated disconnect must
// not erase the binding a fast reconnect just created.
func (r *Registry) Unbind(identity, connID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.entries[identity] != connID {
		return false
	}
	delete(r.entries, identity)
	return true
}

// Resolve looks up the connection id currently representing identity.
func (r *Registry) Resolve(identity string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	connID, ok := r.entries[identity]
	return connID, ok
}

// Size returns the number of bound identities.
func (r *Registry) Size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Identities returns a snapshot of all bound identities.
func (r *Registry) Identities() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]string, 0, len(r.entries))
	for identity := range r.entries {
		ids = append(ids, identity)
	}
	return ids
}

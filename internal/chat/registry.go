package chat

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

type registration struct {
	handle       Handle
	registeredAt time.Time
}

// Registry is the in-process source of truth for which users currently
// have a live connection. At most one handle is registered per user ID;
// a second registration for the same user replaces the first
// (last-writer-wins). Lifecycle is tied to the server process: created
// once at startup, entries removed individually on disconnect.
type Registry struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]registration
}

// NewRegistry creates an empty presence registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[uuid.UUID]registration)}
}

// Register records h as the live handle for userID, unconditionally
// replacing any previous handle. The superseded handle is not notified;
// it is either already dead or being replaced intentionally.
func (r *Registry) Register(userID uuid.UUID, h Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[userID] = registration{handle: h, registeredAt: time.Now()}
}

// Deregister removes the entry for userID only if h is still the
// currently registered handle. A stale disconnect racing a newer
// registration is a no-op, which is what keeps churn from evicting a
// valid entry. Returns whether an entry was removed.
func (r *Registry) Deregister(userID uuid.UUID, h Handle) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.entries[userID]
	if !ok || current.handle != h {
		return false
	}
	delete(r.entries, userID)
	return true
}

// Lookup returns the live handle for userID. A miss is a normal
// "offline" result, not an error.
func (r *Registry) Lookup(userID uuid.UUID) (Handle, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	reg, ok := r.entries[userID]
	if !ok {
		return nil, false
	}
	return reg.handle, true
}

// Contains reports whether userID currently has a live handle.
func (r *Registry) Contains(userID uuid.UUID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.entries[userID]
	return ok
}

// Snapshot returns the IDs of all currently registered users, sorted for
// deterministic output.
func (r *Registry) Snapshot() []uuid.UUID {
	r.mu.RLock()
	ids := make([]uuid.UUID, 0, len(r.entries))
	for id := range r.entries {
		ids = append(ids, id)
	}
	r.mu.RUnlock()

	sort.Slice(ids, func(i, j int) bool {
		return ids[i].String() < ids[j].String()
	})
	return ids
}

// Count returns the number of live connections.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// handles returns the current set of live handles. The slice is built
// under the read lock and consumed outside it, so pushes to slow
// transports never hold up registry mutations.
func (r *Registry) handles() []Handle {
	r.mu.RLock()
	defer r.mu.RUnlock()
	hs := make([]Handle, 0, len(r.entries))
	for _, reg := range r.entries {
		hs = append(hs, reg.handle)
	}
	return hs
}

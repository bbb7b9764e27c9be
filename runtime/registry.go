package runtime

import (
	"sync"

	"messenger-lab/contract"
)

// Registry is the in-memory session table: authenticated identity ->
// live connection sink. It owns all sessions; no other component may
// create or remove entries. State is lost on restart, which is
// acceptable since sessions are inherently ephemeral.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]contract.EventSink
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]contract.EventSink),
	}
}

// Put registers or replaces the live sink for an identity. A second
// login takes over the existing session: the previous sink is returned
// so the caller can notify the superseded connection.
func (r *Registry) Put(identityID string, sink contract.EventSink) (contract.EventSink, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	previous, replaced := r.sessions[identityID]
	r.sessions[identityID] = sink
	return previous, replaced
}

// Remove deletes the entry; no-op if absent.
func (r *Registry) Remove(identityID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions, identityID)
}

// Release removes the entry only if it still points at the given sink.
// A connection closing after it was taken over must not evict the
// session that replaced it.
func (r *Registry) Release(identityID string, sink contract.EventSink) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if current, ok := r.sessions[identityID]; ok && current == sink {
		delete(r.sessions, identityID)
	}
}

func (r *Registry) Get(identityID string) (contract.EventSink, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sink, ok := r.sessions[identityID]
	return sink, ok
}

func (r *Registry) IsOnline(identityID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.sessions[identityID]
	return ok
}

// All returns a snapshot of the current sessions. Mutations on the
// registry after the call do not affect the returned map.
func (r *Registry) All() map[string]contract.EventSink {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snapshot := make(map[string]contract.EventSink, len(r.sessions))
	for id, sink := range r.sessions {
		snapshot[id] = sink
	}
	return snapshot
}

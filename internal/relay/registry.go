package relay

import (
	"sync"

	"github.com/google/uuid"
)

// Registry is the identity table of live connections. A connection id is
// allocated once per transport session and never reused; a reconnecting
// client gets a brand-new id.
type Registry struct {
	mu      sync.RWMutex
	clients map[string]*WSClient
}

func NewRegistry() *Registry {
	return &Registry{
		clients: make(map[string]*WSClient),
	}
}

// Register allocates a fresh connection id for the client and records it.
func (r *Registry) Register(cl *WSClient) string {
	id := uuid.NewString()

	r.mu.Lock()
	cl.ID = id
	r.clients[id] = cl
	r.mu.Unlock()

	incConnections()
	return id
}

// Unregister removes the connection. Unregistering an unknown id is a no-op.
func (r *Registry) Unregister(id string) {
	r.mu.Lock()
	_, ok := r.clients[id]
	delete(r.clients, id)
	r.mu.Unlock()

	if ok {
		decConnections()
	}
}

// IsLive reports whether the connection is still registered.
func (r *Registry) IsLive(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.clients[id]
	return ok
}

// Client returns the live client for an id, if any.
func (r *Registry) Client(id string) (*WSClient, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cl, ok := r.clients[id]
	return cl, ok
}

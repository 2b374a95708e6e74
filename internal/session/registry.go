// internal/session/registry.go
package session

import (
	"sync"

	"github.com/google/uuid"
)

// Registry maps live connection IDs to the room each one is seated in. The
// websocket layer binds a connection after a successful join and resolves it
// on every subsequent message, so game messages never need to repeat the
// room code.
type Registry struct {
	mu    sync.Mutex
	rooms map[uuid.UUID]string
}

// NewRegistry initializes an empty registry.
func NewRegistry() *Registry {
	return &Registry{rooms: make(map[uuid.UUID]string)}
}

// Bind associates a connection with a room code, replacing any prior binding.
func (r *Registry) Bind(connID uuid.UUID, roomCode string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rooms[connID] = roomCode
}

// Resolve returns the room code a connection is bound to.
func (r *Registry) Resolve(connID uuid.UUID) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	code, ok := r.rooms[connID]
	return code, ok
}

// Unbind removes a connection's binding, if any.
func (r *Registry) Unbind(connID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rooms, connID)
}

// Count returns the number of bound connections.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rooms)
}

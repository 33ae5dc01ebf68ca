package core

import "sync"

// Registry owns the process-wide RoomId -> Room mapping. It is the single
// critical section that makes "get-or-create" and "remove-when-empty"
// atomic with respect to each other: a join racing the destruction of the
// same room either gets the live instance or a fresh replacement, never a
// room that vanishes underneath it. The registry lock is only ever held for
// map bookkeeping, so rooms stay independent of each other.
type Registry struct {
	mu    sync.Mutex
	rooms map[string]*Room
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{rooms: make(map[string]*Room)}
}

// GetOrCreate returns the room registered under code, replacing a retired
// instance or inserting a new one built by create. Concurrent callers for
// the same code all receive the same winner.
func (reg *Registry) GetOrCreate(code string, create func(code string) *Room) *Room {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	if r, ok := reg.rooms[code]; ok && !r.Closed() {
		return r
	}
	r := create(code)
	reg.rooms[code] = r
	return r
}

// Get is the non-creating lookup used by the room-info endpoint. A room
// that is mid-destruction counts as absent.
func (reg *Registry) Get(code string) (*Room, bool) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	r, ok := reg.rooms[code]
	if !ok || r.Closed() {
		return nil, false
	}
	return r, true
}

// Remove drops the room from the registry if this exact instance is still
// the one registered. Called by a room once it has marked itself closed;
// the instance check keeps a retired room from unregistering its
// replacement.
func (reg *Registry) Remove(r *Room) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	if cur, ok := reg.rooms[r.Code]; ok && cur == r {
		delete(reg.rooms, r.Code)
	}
}

// Len returns the number of registered rooms.
func (reg *Registry) Len() int {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	return len(reg.rooms)
}

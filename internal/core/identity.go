package core

import (
	"strconv"
	"sync"
)

// IdentityAllocator hands out display names unique within one room. Names
// are sequential ("Guest-1", "Guest-2", ...) and a released name is never
// handed out again while the room lives, so past messages keep unambiguous
// attribution. The allocator dies with its room.
type IdentityAllocator struct {
	mu   sync.Mutex
	next int64
	held map[string]struct{}
}

// NewIdentityAllocator constructs an allocator with no names held.
func NewIdentityAllocator() *IdentityAllocator {
	return &IdentityAllocator{held: make(map[string]struct{})}
}

// Allocate returns a display name not held by any live participant.
func (a *IdentityAllocator) Allocate() string {
	a.mu.Lock()
	defer a.mu.Unlock()

	for {
		a.next++
		name := "Guest-" + strconv.FormatInt(a.next, 10)
		if _, taken := a.held[name]; !taken {
			a.held[name] = struct{}{}
			return name
		}
	}
}

// Release frees the name. The counter keeps advancing, so the name stays
// retired until the room is destroyed.
func (a *IdentityAllocator) Release(name string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.held, name)
}

// Held reports whether the name is currently allocated.
func (a *IdentityAllocator) Held(name string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, ok := a.held[name]
	return ok
}

package core

import "time"

// eventBufferSize is the outbound queue depth per participant. A session
// whose queue is full when a broadcast arrives is treated as broken and
// scheduled for removal.
const eventBufferSize = 32

// Handle is the server-side record of one connected participant within a
// room: its display identity and the sink the room pushes events into. A
// handle belongs to exactly one room for its whole lifetime.
type Handle struct {
	Identity string
	Events   chan *Event

	// typing state, guarded by the owning room's mutex.
	typing   bool
	typingAt time.Time
	joinedAt time.Time
}

func newHandle(identity string) *Handle {
	return &Handle{
		Identity: identity,
		Events:   make(chan *Event, eventBufferSize),
		joinedAt: time.Now(),
	}
}

// Typing reports the last typing state and when it changed. Only meaningful
// while the handle is registered; reads race-free because the room
// serializes SetTyping calls.
func (h *Handle) Typing() (bool, time.Time) {
	return h.typing, h.typingAt
}

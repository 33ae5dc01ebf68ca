package core

import (
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Room groups the participants sharing one broadcast domain. All mutating
// operations are serialized by r.mu; fan-out happens on a snapshot taken
// under the lock and delivered outside it, so one stuck sink never blocks
// the room or the other recipients.
type Room struct {
	Code string

	opts    Options
	log     *zerolog.Logger
	alloc   *IdentityAllocator
	onEmpty func(*Room)

	mu         sync.Mutex
	closed     bool
	everJoined bool
	handles    []*Handle // join order
	members    map[*Handle]struct{}
	createdAt  time.Time
}

func newRoom(code string, opts Options, logger *zerolog.Logger, onEmpty func(*Room)) *Room {
	return &Room{
		Code:      code,
		opts:      opts,
		log:       logger,
		alloc:     NewIdentityAllocator(),
		onEmpty:   onEmpty,
		members:   make(map[*Handle]struct{}),
		createdAt: time.Now(),
	}
}

// Join allocates an identity, registers a new handle and queues the
// connected acknowledgement ahead of the user_joined broadcast, so the
// joiner always observes its own ack first. Returns ErrRoomClosed when the
// room is mid-destruction (callers retry through the registry) and
// ErrRoomFull when the participant limit is reached.
func (r *Room) Join() (*Handle, error) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil, ErrRoomClosed
	}
	if r.opts.MaxParticipants > 0 && len(r.handles) >= r.opts.MaxParticipants {
		r.mu.Unlock()
		return nil, ErrRoomFull
	}

	h := newHandle(r.alloc.Allocate())
	r.handles = append(r.handles, h)
	r.members[h] = struct{}{}
	r.everJoined = true
	count := len(r.handles)
	others := r.snapshotExcept(h)

	// Queue the ack while still holding the lock: a later join cannot
	// snapshot this handle before the ack is in its channel.
	h.Events <- &Event{
		Kind:             EventConnected,
		Room:             r.Code,
		UserName:         h.Identity,
		ParticipantCount: count,
	}
	r.mu.Unlock()

	r.deliver(others, &Event{
		Kind:             EventUserJoined,
		Room:             r.Code,
		UserName:         h.Identity,
		ParticipantCount: count,
	})

	r.log.Debug().Str("room", r.Code).Str("user", h.Identity).Int("participants", count).Msg("participant joined")
	return h, nil
}

// Leave deregisters the handle, releases its identity and broadcasts
// user_left to the remaining participants. Idempotent: leaving a handle
// that is not registered is a no-op, which makes the concurrent
// read-error/close paths in the transport safe. When the last participant
// drains out the room closes itself and signals the registry.
func (r *Room) Leave(h *Handle) {
	r.mu.Lock()
	if _, ok := r.members[h]; !ok {
		r.mu.Unlock()
		return
	}
	delete(r.members, h)
	for i, other := range r.handles {
		if other == h {
			r.handles = append(r.handles[:i], r.handles[i+1:]...)
			break
		}
	}
	r.alloc.Release(h.Identity)
	h.typing = false

	count := len(r.handles)
	last := count == 0
	if last {
		r.closed = true
	}
	rest := r.snapshotExcept(nil)
	r.mu.Unlock()

	r.deliver(rest, &Event{
		Kind:             EventUserLeft,
		Room:             r.Code,
		UserName:         h.Identity,
		ParticipantCount: count,
	})

	r.log.Debug().Str("room", r.Code).Str("user", h.Identity).Int("participants", count).Msg("participant left")
	if last && r.onEmpty != nil {
		r.onEmpty(r)
	}
}

// PostMessage validates and broadcasts a chat message to every participant,
// the sender included: the sender renders the echoed copy instead of a
// local one. The timestamp is stamped server-side while the room lock is
// held, so every recipient sees the same value.
func (r *Room) PostMessage(h *Handle, text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyMessage
	}
	if r.opts.MaxMessageLen > 0 {
		if runes := []rune(text); len(runes) > r.opts.MaxMessageLen {
			text = string(runes[:r.opts.MaxMessageLen])
		}
	}

	r.mu.Lock()
	if _, ok := r.members[h]; !ok {
		r.mu.Unlock()
		return ErrNotMember
	}
	ts := time.Now().Unix()
	all := r.snapshotExcept(nil)
	r.mu.Unlock()

	r.deliver(all, &Event{
		Kind:      EventMessage,
		Room:      r.Code,
		UserName:  h.Identity,
		Text:      text,
		Timestamp: ts,
	})
	return nil
}

// SetTyping records the typing flag and broadcasts the change to the other
// participants. Repeating the current state emits nothing.
func (r *Room) SetTyping(h *Handle, isTyping bool) error {
	r.mu.Lock()
	if _, ok := r.members[h]; !ok {
		r.mu.Unlock()
		return ErrNotMember
	}
	if h.typing == isTyping {
		r.mu.Unlock()
		return nil
	}
	h.typing = isTyping
	h.typingAt = time.Now()
	others := r.snapshotExcept(h)
	r.mu.Unlock()

	r.deliver(others, &Event{
		Kind:     EventTyping,
		Room:     r.Code,
		UserName: h.Identity,
		IsTyping: isTyping,
	})
	return nil
}

// ParticipantCount returns the current number of registered handles.
func (r *Room) ParticipantCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.handles)
}

// Closed reports whether the room has been emptied and retired. The
// registry treats a closed room as absent.
func (r *Room) Closed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}

// snapshotExcept copies the handle list minus the excluded handle. Caller
// must hold r.mu.
func (r *Room) snapshotExcept(skip *Handle) []*Handle {
	out := make([]*Handle, 0, len(r.handles))
	for _, h := range r.handles {
		if h == skip {
			continue
		}
		out = append(out, h)
	}
	return out
}

// deliver pushes the event to each sink without blocking. A participant
// whose queue is full is considered broken: it is logged and scheduled for
// asynchronous removal while delivery continues to everyone else.
func (r *Room) deliver(handles []*Handle, ev *Event) {
	for _, h := range handles {
		select {
		case h.Events <- ev:
		default:
			r.log.Warn().Str("room", r.Code).Str("user", h.Identity).Msg("event queue full, evicting participant")
			go r.Leave(h)
		}
	}
}

// reapIfUnused retires an explicitly created room that never saw a join.
// Installed as a timer by the hub when pre-created rooms carry a grace TTL.
func (r *Room) reapIfUnused() {
	r.mu.Lock()
	if r.closed || r.everJoined || len(r.handles) > 0 {
		r.mu.Unlock()
		return
	}
	r.closed = true
	r.mu.Unlock()

	r.log.Debug().Str("room", r.Code).Msg("reaping never-used room")
	if r.onEmpty != nil {
		r.onEmpty(r)
	}
}

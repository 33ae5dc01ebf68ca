package core

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Options carries the hub-wide policy knobs.
type Options struct {
	// AllowImplicitRooms makes the first join create the room. When false,
	// rooms must be minted through CreateRoom first and a join targeting an
	// unknown code fails with ErrRoomNotFound.
	AllowImplicitRooms bool
	// MaxParticipants caps each room's handle count. Zero means unlimited.
	MaxParticipants int
	// MaxMessageLen truncates overlong chat messages, in runes. Zero means
	// unlimited.
	MaxMessageLen int
	// EmptyRoomTTL reaps an explicitly created room that never sees a join.
	// Zero disables the reaper.
	EmptyRoomTTL time.Duration
}

// Hub is the composition root of the chat core: it owns the registry,
// resolves join requests to rooms under the configured policy and mints
// room codes.
type Hub struct {
	registry *Registry
	opts     Options
	log      *zerolog.Logger
}

// NewHub constructs a hub with an empty registry.
func NewHub(opts Options, logger *zerolog.Logger) *Hub {
	return &Hub{
		registry: NewRegistry(),
		opts:     opts,
		log:      logger,
	}
}

// Registry exposes the room registry for non-creating lookups.
func (h *Hub) Registry() *Registry {
	return h.registry
}

// NormalizeCode canonicalizes a room code. Codes are case-insensitive on
// the wire and uppercase internally.
func (h *Hub) NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// CreateRoom mints a fresh room code, registers an empty room under it and
// returns the room. Codes are uuid-derived, retried on the unlikely
// collision with a live room.
func (h *Hub) CreateRoom() *Room {
	for {
		code := newRoomCode()
		if _, exists := h.registry.Get(code); exists {
			continue
		}
		room := h.registry.GetOrCreate(code, h.newRoom)
		if h.opts.EmptyRoomTTL > 0 {
			time.AfterFunc(h.opts.EmptyRoomTTL, room.reapIfUnused)
		}
		h.log.Info().Str("room", code).Msg("room created")
		return room
	}
}

// Join resolves the code to a room and registers a new participant in it.
// The retry loop absorbs the race with a room closing between lookup and
// join: the next iteration sees either a fresh replacement or, with
// implicit creation off, no room at all.
func (h *Hub) Join(code string) (*Room, *Handle, error) {
	code = h.NormalizeCode(code)

	for {
		var room *Room
		if h.opts.AllowImplicitRooms {
			room = h.registry.GetOrCreate(code, h.newRoom)
		} else {
			var ok bool
			if room, ok = h.registry.Get(code); !ok {
				return nil, nil, ErrRoomNotFound
			}
		}

		handle, err := room.Join()
		if errors.Is(err, ErrRoomClosed) {
			continue
		}
		if err != nil {
			return nil, nil, err
		}
		return room, handle, nil
	}
}

// RoomInfo reports the participant count of a live room.
func (h *Hub) RoomInfo(code string) (int, bool) {
	room, ok := h.registry.Get(h.NormalizeCode(code))
	if !ok {
		return 0, false
	}
	return room.ParticipantCount(), true
}

func (h *Hub) newRoom(code string) *Room {
	return newRoom(code, h.opts, h.log, h.registry.Remove)
}

// newRoomCode derives a short shareable code from a random uuid: the first
// eight hex characters, uppercased.
func newRoomCode() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return strings.ToUpper(raw[:8])
}

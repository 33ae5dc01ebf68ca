package core

import "errors"

// Error codes carried on the wire in error frames.
const (
	ErrCodeRoomNotFound   = "room_not_found"
	ErrCodeRoomFull       = "room_full"
	ErrCodeInvalidMessage = "invalid_message"
	ErrCodeBadRequest     = "bad_request"
)

var (
	// ErrRoomNotFound is returned when joining a room that does not exist
	// and implicit room creation is disabled.
	ErrRoomNotFound = errors.New("room not found")
	// ErrRoomFull is returned when a join would exceed the participant limit.
	ErrRoomFull = errors.New("room full")
	// ErrRoomClosed is returned when an operation races with the destruction
	// of an emptied room. Join paths retry; everything else treats it as a no-op.
	ErrRoomClosed = errors.New("room closed")
	// ErrEmptyMessage is returned for empty or whitespace-only message text.
	ErrEmptyMessage = errors.New("empty message")
	// ErrNotMember is returned when the handle is no longer registered in the room.
	ErrNotMember = errors.New("not a room member")
)

// CoreError wraps a code and human-readable message.
type CoreError struct {
	Code    string
	Message string
}

func (e *CoreError) Error() string {
	return e.Message
}

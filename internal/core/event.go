package core

// EventKind is a notification the core emits to participants.
type EventKind int

const (
	// EventConnected acknowledges a successful join to the joining
	// participant only.
	EventConnected EventKind = iota
	// EventMessage carries a chat message to every participant in the room,
	// sender included.
	EventMessage
	// EventUserJoined notifies existing participants about a new member.
	EventUserJoined
	// EventUserLeft notifies remaining participants about a departure.
	EventUserLeft
	// EventTyping carries a typing-state change to the other participants.
	EventTyping
	// EventError carries a fatal-to-session domain error.
	EventError
)

// Event describes one thing that happened in a room. Fields are populated
// per kind; the transport mapper does the exhaustive switch.
type Event struct {
	Kind             EventKind
	Room             string
	UserName         string
	Text             string
	Timestamp        int64
	ParticipantCount int
	IsTyping         bool
	Err              *CoreError
}

package proto

// Frame type discriminators. Every frame on the wire is a flat JSON object
// with a mandatory "type" field.
const (
	// client -> server
	InboundTypeMessage = "message"
	InboundTypeTyping  = "typing"
	InboundTypePing    = "ping"

	// server -> client
	OutboundTypeConnected  = "connected"
	OutboundTypeMessage    = "message"
	OutboundTypeUserJoined = "user_joined"
	OutboundTypeUserLeft   = "user_left"
	OutboundTypeTyping     = "typing"
	OutboundTypeError      = "error"
	OutboundTypePong       = "pong"
)

// Inbound is the union of all client frames. Fields are disjoint per type,
// so a single struct decodes every frame.
type Inbound struct {
	Type     string `json:"type"`
	Message  string `json:"message,omitempty"`
	IsTyping bool   `json:"is_typing,omitempty"`
}

// Connected acknowledges a join, sent once to the joining session.
type Connected struct {
	Type             string `json:"type"`
	UserName         string `json:"user_name"`
	RoomID           string `json:"room_id"`
	ParticipantCount int    `json:"participant_count"`
}

// ChatMessage is a broadcast chat message with a server-assigned timestamp.
type ChatMessage struct {
	Type      string `json:"type"`
	UserName  string `json:"user_name"`
	Message   string `json:"message"`
	Timestamp int64  `json:"timestamp"`
}

// Presence announces a join or leave to the rest of the room.
type Presence struct {
	Type             string `json:"type"`
	UserName         string `json:"user_name"`
	ParticipantCount int    `json:"participant_count"`
}

// Typing announces a typing-state change.
type Typing struct {
	Type     string `json:"type"`
	UserName string `json:"user_name"`
	IsTyping bool   `json:"is_typing"`
}

// Error is a fatal-to-session notice; the session closes after receipt.
type Error struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// Pong answers a liveness ping.
type Pong struct {
	Type string `json:"type"`
}

package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/anonchat/anonchat-server/internal/core"
)

// RoomHandlers provides the REST companion endpoints of the hub: room
// creation and room-existence lookup. Both lean only on the hub's registry.
type RoomHandlers struct {
	hub *core.Hub
	log *zerolog.Logger
}

// NewRoomHandlers creates a new room handlers instance.
func NewRoomHandlers(hub *core.Hub, logger *zerolog.Logger) *RoomHandlers {
	return &RoomHandlers{hub: hub, log: logger}
}

// CreateRoomResponse represents the create-room response body.
type CreateRoomResponse struct {
	RoomID  string `json:"room_id"`
	JoinURL string `json:"join_url"`
	Message string `json:"message"`
}

// RoomInfoResponse represents the room-info response body.
type RoomInfoResponse struct {
	RoomID           string `json:"room_id"`
	ParticipantCount int    `json:"participant_count"`
	Status           string `json:"status"`
}

// ErrorResponse represents an error response body.
type ErrorResponse struct {
	Error  string `json:"error"`
	RoomID string `json:"room_id,omitempty"`
}

// CreateRoom mints a fresh room code and registers an empty room.
// POST /api/create-room
func (h *RoomHandlers) CreateRoom(c *gin.Context) {
	room := h.hub.CreateRoom()

	c.JSON(http.StatusCreated, CreateRoomResponse{
		RoomID:  room.Code,
		JoinURL: "/room/" + room.Code,
		Message: "Room created successfully",
	})
}

// RoomInfo reports existence and participant count for a room.
// GET /api/room/:room
func (h *RoomHandlers) RoomInfo(c *gin.Context) {
	code := h.hub.NormalizeCode(c.Param("room"))

	count, ok := h.hub.RoomInfo(code)
	if !ok {
		h.log.Debug().Str("room", code).Msg("room info lookup missed")
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Room not found", RoomID: code})
		return
	}

	c.JSON(http.StatusOK, RoomInfoResponse{
		RoomID:           code,
		ParticipantCount: count,
		Status:           "active",
	})
}

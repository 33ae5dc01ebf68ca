package http

import (
	"github.com/anonchat/anonchat-server/internal/core"
	"github.com/anonchat/anonchat-server/internal/proto"
)

// outboundFromEvent translates a core event into its wire frame. The switch
// is exhaustive over core.EventKind.
func outboundFromEvent(event *core.Event) any {
	switch event.Kind {
	case core.EventConnected:
		return proto.Connected{
			Type:             proto.OutboundTypeConnected,
			UserName:         event.UserName,
			RoomID:           event.Room,
			ParticipantCount: event.ParticipantCount,
		}
	case core.EventMessage:
		return proto.ChatMessage{
			Type:      proto.OutboundTypeMessage,
			UserName:  event.UserName,
			Message:   event.Text,
			Timestamp: event.Timestamp,
		}
	case core.EventUserJoined:
		return proto.Presence{
			Type:             proto.OutboundTypeUserJoined,
			UserName:         event.UserName,
			ParticipantCount: event.ParticipantCount,
		}
	case core.EventUserLeft:
		return proto.Presence{
			Type:             proto.OutboundTypeUserLeft,
			UserName:         event.UserName,
			ParticipantCount: event.ParticipantCount,
		}
	case core.EventTyping:
		return proto.Typing{
			Type:     proto.OutboundTypeTyping,
			UserName: event.UserName,
			IsTyping: event.IsTyping,
		}
	case core.EventError:
		if event.Err == nil {
			return proto.Error{Type: proto.OutboundTypeError, Message: "unknown error"}
		}
		return proto.Error{Type: proto.OutboundTypeError, Message: event.Err.Message}
	default:
		return proto.Error{Type: proto.OutboundTypeError, Message: "unknown event"}
	}
}

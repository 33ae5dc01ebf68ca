package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/anonchat/anonchat-server/internal/config"
	"github.com/anonchat/anonchat-server/internal/core"
	"github.com/anonchat/anonchat-server/internal/proto"
)

// WSHandler upgrades HTTP connections and bridges them to a room
// participant: one goroutine decodes inbound frames, a second drains the
// handle's event queue onto the wire. Whichever fails first tears both
// down, and the deferred leave runs exactly once.
type WSHandler struct {
	hub *core.Hub
	cfg config.Config
	log *zerolog.Logger
}

// NewWSHandler builds a new WebSocket handler.
func NewWSHandler(hub *core.Hub, cfg config.Config, logger *zerolog.Logger) *WSHandler {
	return &WSHandler{hub: hub, cfg: cfg, log: logger}
}

// Handle serves GET /ws/:room.
func (h *WSHandler) Handle(c *gin.Context) {
	conn, err := websocket.Accept(c.Writer, c.Request, h.acceptOptions())
	if err != nil {
		h.log.Error().Err(err).Msg("ws accept error")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "internal error")

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	room, handle, err := h.hub.Join(c.Param("room"))
	if err != nil {
		h.rejectJoin(ctx, conn, err)
		return
	}
	defer room.Leave(handle)

	h.log.Info().Str("room", room.Code).Str("user", handle.Identity).Msg("ws session opened")

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return h.readLoop(ctx, conn, room, handle)
	})
	g.Go(func() error {
		return h.writeLoop(ctx, conn, handle)
	})
	err = g.Wait()

	status := websocket.StatusNormalClosure
	reason := "closing"
	switch {
	case errors.Is(err, context.Canceled):
		err = nil
	case errors.Is(err, context.DeadlineExceeded):
		// liveness window expired; force the disconnect path
		status = websocket.StatusPolicyViolation
		reason = "liveness timeout"
		h.log.Warn().Str("room", room.Code).Str("user", handle.Identity).Msg("connection idle past liveness window")
		err = nil
	}
	if err != nil {
		if errors.Is(err, io.EOF) {
			err = nil
		}
		if s := websocket.CloseStatus(err); s != 0 {
			status = s
		}
		if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
			err = nil
		}
		if err != nil {
			if status == websocket.StatusNormalClosure {
				status = websocket.StatusInternalError
			}
			reason = err.Error()
			h.log.Warn().Err(err).Str("user", handle.Identity).Msg("ws connection closed with error")
		}
	}

	h.log.Info().Str("room", room.Code).Str("user", handle.Identity).Msg("ws session closed")
	conn.Close(status, reason)
}

func (h *WSHandler) acceptOptions() *websocket.AcceptOptions {
	for _, origin := range h.cfg.AllowedOrigins {
		if origin == "*" {
			return &websocket.AcceptOptions{InsecureSkipVerify: true}
		}
	}
	return &websocket.AcceptOptions{OriginPatterns: h.cfg.AllowedOrigins}
}

// rejectJoin tells the client why the session cannot start and closes. The
// room's prior state is untouched at this point.
func (h *WSHandler) rejectJoin(ctx context.Context, conn *websocket.Conn, err error) {
	coreErr := &core.CoreError{Code: core.ErrCodeBadRequest, Message: "cannot join room"}
	switch {
	case errors.Is(err, core.ErrRoomNotFound):
		coreErr = &core.CoreError{Code: core.ErrCodeRoomNotFound, Message: "Room not found"}
	case errors.Is(err, core.ErrRoomFull):
		coreErr = &core.CoreError{Code: core.ErrCodeRoomFull, Message: "Room is full"}
	}
	h.log.Warn().Err(err).Msg("join refused")

	frame := outboundFromEvent(&core.Event{Kind: core.EventError, Err: coreErr})
	if writeErr := h.write(ctx, conn, frame); writeErr != nil {
		h.log.Debug().Err(writeErr).Msg("failed to deliver join rejection")
	}
	conn.Close(websocket.StatusPolicyViolation, coreErr.Message)
}

func (h *WSHandler) readLoop(ctx context.Context, conn *websocket.Conn, room *core.Room, handle *core.Handle) error {
	limiter := newRateLimiter(h.cfg.MessageRateLimit)

	for {
		// Each read waits at most the idle window; a connection that goes
		// quiet (no frames, not even pings) is treated as half-open.
		rctx, cancel := context.WithTimeout(ctx, h.cfg.IdleTimeout)
		_, data, err := conn.Read(rctx)
		cancel()
		if err != nil {
			return err
		}

		var inbound proto.Inbound
		if err := json.Unmarshal(data, &inbound); err != nil {
			h.log.Warn().Err(err).Str("user", handle.Identity).Msg("malformed frame, skipping")
			continue
		}

		switch inbound.Type {
		case proto.InboundTypePing:
			// pure liveness, answered without involving the room
			if err := h.write(ctx, conn, proto.Pong{Type: proto.OutboundTypePong}); err != nil {
				return err
			}
		case proto.InboundTypeMessage:
			if !limiter.allow() {
				h.log.Warn().Str("user", handle.Identity).Msg("message rate limit exceeded, dropping")
				continue
			}
			if err := room.PostMessage(handle, inbound.Message); err != nil {
				h.log.Debug().Err(err).Str("user", handle.Identity).Msg("message rejected")
			}
		case proto.InboundTypeTyping:
			if err := room.SetTyping(handle, inbound.IsTyping); err != nil {
				h.log.Debug().Err(err).Str("user", handle.Identity).Msg("typing update rejected")
			}
		default:
			h.log.Warn().Str("type", inbound.Type).Str("user", handle.Identity).Msg("unknown frame type, skipping")
		}
	}
}

func (h *WSHandler) writeLoop(ctx context.Context, conn *websocket.Conn, handle *core.Handle) error {
	for {
		select {
		case ev := <-handle.Events:
			if err := h.write(ctx, conn, outboundFromEvent(ev)); err != nil {
				h.log.Error().Err(err).Str("user", handle.Identity).Msg("write ws event")
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// write pushes one frame with the configured write timeout. A write that
// cannot complete in time is a disconnect for this session only.
func (h *WSHandler) write(ctx context.Context, conn *websocket.Conn, frame any) error {
	wctx, cancel := context.WithTimeout(ctx, h.cfg.WriteTimeout)
	defer cancel()
	return wsjson.Write(wctx, conn, frame)
}

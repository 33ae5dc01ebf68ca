package http

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/rs/zerolog"

	"github.com/anonchat/anonchat-server/internal/config"
	"github.com/anonchat/anonchat-server/internal/core"
)

func testLogger() *zerolog.Logger {
	logger := zerolog.Nop()
	return &logger
}

func startTestServer(t *testing.T, mutate func(*config.Config)) (*httptest.Server, *core.Hub) {
	t.Helper()

	cfg := config.Default()
	cfg.IdleTimeout = 5 * time.Second
	cfg.WriteTimeout = 2 * time.Second
	if mutate != nil {
		mutate(&cfg)
	}

	hub := core.NewHub(core.Options{
		AllowImplicitRooms: cfg.AllowImplicitRooms,
		MaxParticipants:    cfg.MaxParticipants,
		MaxMessageLen:      cfg.MaxMessageLen,
		EmptyRoomTTL:       cfg.EmptyRoomTTL,
	}, testLogger())

	server := NewServer(hub, cfg, testLogger())
	ts := httptest.NewServer(server.Handler)
	t.Cleanup(ts.Close)

	return ts, hub
}

func dialRoom(t *testing.T, ctx context.Context, ts *httptest.Server, room string) *websocket.Conn {
	t.Helper()

	wsURL := strings.Replace(ts.URL, "http", "ws", 1) + "/ws/" + room
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", room, err)
	}
	return conn
}

// frame covers every outbound wire shape; fields are disjoint per type.
type frame struct {
	Type             string `json:"type"`
	UserName         string `json:"user_name"`
	Message          string `json:"message"`
	Timestamp        int64  `json:"timestamp"`
	ParticipantCount int    `json:"participant_count"`
	IsTyping         bool   `json:"is_typing"`
	RoomID           string `json:"room_id"`
}

func readFrame(t *testing.T, ctx context.Context, conn *websocket.Conn) frame {
	t.Helper()

	var f frame
	if err := wsjson.Read(ctx, conn, &f); err != nil {
		t.Fatalf("read frame: %v", err)
	}
	return f
}

// awaitFrame reads until a frame of the wanted type arrives.
func awaitFrame(t *testing.T, ctx context.Context, conn *websocket.Conn, typ string) frame {
	t.Helper()

	for {
		f := readFrame(t, ctx, conn)
		if f.Type == typ {
			return f
		}
	}
}

func sendFrame(t *testing.T, ctx context.Context, conn *websocket.Conn, v any) {
	t.Helper()

	if err := wsjson.Write(ctx, conn, v); err != nil {
		t.Fatalf("write frame: %v", err)
	}
}

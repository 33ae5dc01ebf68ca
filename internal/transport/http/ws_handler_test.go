package http

import (
	"context"
	"testing"
	"time"

	"github.com/coder/websocket"

	"github.com/anonchat/anonchat-server/internal/config"
	"github.com/anonchat/anonchat-server/internal/proto"
)

func TestJoinAckAndPresenceBroadcast(t *testing.T) {
	ts, _ := startTestServer(t, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	connA := dialRoom(t, ctx, ts, "ABC123")
	defer connA.Close(websocket.StatusNormalClosure, "done")

	ack := readFrame(t, ctx, connA)
	if ack.Type != proto.OutboundTypeConnected || ack.UserName != "Guest-1" || ack.ParticipantCount != 1 {
		t.Fatalf("A's ack: %+v", ack)
	}
	if ack.RoomID != "ABC123" {
		t.Fatalf("A's ack room: %+v", ack)
	}

	connB := dialRoom(t, ctx, ts, "ABC123")
	defer connB.Close(websocket.StatusNormalClosure, "done")

	ackB := readFrame(t, ctx, connB)
	if ackB.Type != proto.OutboundTypeConnected || ackB.UserName != "Guest-2" || ackB.ParticipantCount != 2 {
		t.Fatalf("B's ack: %+v", ackB)
	}

	joined := awaitFrame(t, ctx, connA, proto.OutboundTypeUserJoined)
	if joined.UserName != "Guest-2" || joined.ParticipantCount != 2 {
		t.Fatalf("A's user_joined: %+v", joined)
	}
}

func TestMessageBroadcastEchoesWithSharedTimestamp(t *testing.T) {
	ts, _ := startTestServer(t, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	connA := dialRoom(t, ctx, ts, "ABC123")
	defer connA.Close(websocket.StatusNormalClosure, "done")
	connB := dialRoom(t, ctx, ts, "ABC123")
	defer connB.Close(websocket.StatusNormalClosure, "done")
	readFrame(t, ctx, connA)
	readFrame(t, ctx, connB)

	sendFrame(t, ctx, connA, proto.Inbound{Type: proto.InboundTypeMessage, Message: "hi"})

	gotA := awaitFrame(t, ctx, connA, proto.OutboundTypeMessage)
	gotB := awaitFrame(t, ctx, connB, proto.OutboundTypeMessage)
	for _, got := range []frame{gotA, gotB} {
		if got.UserName != "Guest-1" || got.Message != "hi" || got.Timestamp == 0 {
			t.Fatalf("message frame: %+v", got)
		}
	}
	if gotA.Timestamp != gotB.Timestamp {
		t.Fatalf("timestamps differ: %d vs %d", gotA.Timestamp, gotB.Timestamp)
	}
}

func TestDisconnectBroadcastsLeaveAndDestroysEmptyRoom(t *testing.T) {
	ts, hub := startTestServer(t, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	connA := dialRoom(t, ctx, ts, "ABC123")
	connB := dialRoom(t, ctx, ts, "ABC123")
	defer connB.Close(websocket.StatusNormalClosure, "done")
	readFrame(t, ctx, connA)
	readFrame(t, ctx, connB)

	connA.Close(websocket.StatusNormalClosure, "bye")

	left := awaitFrame(t, ctx, connB, proto.OutboundTypeUserLeft)
	if left.UserName != "Guest-1" || left.ParticipantCount != 1 {
		t.Fatalf("user_left: %+v", left)
	}
	if _, ok := hub.RoomInfo("ABC123"); !ok {
		t.Fatal("room destroyed while B remains")
	}

	connB.Close(websocket.StatusNormalClosure, "bye")

	deadline := time.Now().Add(2 * time.Second)
	for {
		if _, ok := hub.RoomInfo("ABC123"); !ok {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("room not destroyed after last participant left")
		}
		time.Sleep(10 * time.Millisecond)
	}

	// a rejoin lands in a fresh room with a reset allocator
	connC := dialRoom(t, ctx, ts, "ABC123")
	defer connC.Close(websocket.StatusNormalClosure, "done")
	ack := readFrame(t, ctx, connC)
	if ack.UserName != "Guest-1" || ack.ParticipantCount != 1 {
		t.Fatalf("rejoin ack: %+v", ack)
	}
}

func TestTypingDeduplicatedOnTheWire(t *testing.T) {
	ts, _ := startTestServer(t, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	connA := dialRoom(t, ctx, ts, "ABC123")
	defer connA.Close(websocket.StatusNormalClosure, "done")
	connB := dialRoom(t, ctx, ts, "ABC123")
	defer connB.Close(websocket.StatusNormalClosure, "done")
	readFrame(t, ctx, connA)
	readFrame(t, ctx, connB)

	sendFrame(t, ctx, connA, proto.Inbound{Type: proto.InboundTypeTyping, IsTyping: true})
	sendFrame(t, ctx, connA, proto.Inbound{Type: proto.InboundTypeTyping, IsTyping: true})
	// marker after the duplicate: everything before it has been fanned out
	sendFrame(t, ctx, connA, proto.Inbound{Type: proto.InboundTypeMessage, Message: "marker"})

	f := awaitFrame(t, ctx, connB, proto.OutboundTypeTyping)
	if !f.IsTyping || f.UserName != "Guest-1" {
		t.Fatalf("typing frame: %+v", f)
	}
	next := readFrame(t, ctx, connB)
	if next.Type != proto.OutboundTypeMessage || next.Message != "marker" {
		t.Fatalf("expected marker after single typing frame, got %+v", next)
	}
}

func TestPingAnsweredWithoutBroadcast(t *testing.T) {
	ts, _ := startTestServer(t, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	connA := dialRoom(t, ctx, ts, "ABC123")
	defer connA.Close(websocket.StatusNormalClosure, "done")
	connB := dialRoom(t, ctx, ts, "ABC123")
	defer connB.Close(websocket.StatusNormalClosure, "done")
	readFrame(t, ctx, connA)
	readFrame(t, ctx, connB)

	sendFrame(t, ctx, connA, proto.Inbound{Type: proto.InboundTypePing})
	if f := readFrame(t, ctx, connA); f.Type != proto.OutboundTypePong {
		t.Fatalf("expected pong, got %+v", f)
	}

	sendFrame(t, ctx, connA, proto.Inbound{Type: proto.InboundTypeMessage, Message: "marker"})
	if f := awaitFrame(t, ctx, connB, proto.OutboundTypeMessage); f.Message != "marker" {
		t.Fatalf("unexpected frame for B: %+v", f)
	}
}

func TestUnknownAndMalformedFramesAreSkipped(t *testing.T) {
	ts, _ := startTestServer(t, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	connA := dialRoom(t, ctx, ts, "ABC123")
	defer connA.Close(websocket.StatusNormalClosure, "done")
	connB := dialRoom(t, ctx, ts, "ABC123")
	defer connB.Close(websocket.StatusNormalClosure, "done")
	readFrame(t, ctx, connA)
	readFrame(t, ctx, connB)

	sendFrame(t, ctx, connA, map[string]any{"type": "bogus"})
	if err := connA.Write(ctx, websocket.MessageText, []byte("{not json")); err != nil {
		t.Fatalf("write raw: %v", err)
	}
	sendFrame(t, ctx, connA, proto.Inbound{Type: proto.InboundTypeMessage, Message: "still alive"})

	if f := awaitFrame(t, ctx, connB, proto.OutboundTypeMessage); f.Message != "still alive" {
		t.Fatalf("unexpected frame: %+v", f)
	}
}

func TestJoinUnknownRoomRejectedWhenImplicitOff(t *testing.T) {
	ts, _ := startTestServer(t, func(cfg *config.Config) {
		cfg.AllowImplicitRooms = false
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn := dialRoom(t, ctx, ts, "GHOST1")
	defer conn.Close(websocket.StatusNormalClosure, "done")

	f := readFrame(t, ctx, conn)
	if f.Type != proto.OutboundTypeError || f.Message != "Room not found" {
		t.Fatalf("expected room-not-found error frame, got %+v", f)
	}

	// the session closes after the error frame
	if _, _, err := conn.Read(ctx); err == nil {
		t.Fatal("expected closed connection after error frame")
	}
}

func TestJoinRefusedWhenRoomFull(t *testing.T) {
	ts, _ := startTestServer(t, func(cfg *config.Config) {
		cfg.MaxParticipants = 1
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	connA := dialRoom(t, ctx, ts, "ABC123")
	defer connA.Close(websocket.StatusNormalClosure, "done")
	readFrame(t, ctx, connA)

	connB := dialRoom(t, ctx, ts, "ABC123")
	defer connB.Close(websocket.StatusNormalClosure, "done")
	f := readFrame(t, ctx, connB)
	if f.Type != proto.OutboundTypeError || f.Message != "Room is full" {
		t.Fatalf("expected room-full error frame, got %+v", f)
	}
}

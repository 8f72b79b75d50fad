package server

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shahrukh-jamil/pong/model"
)

// newTestEndpoint serves the websocket handler over a real listener and
// hands back a dialer-ready URL.
func newTestEndpoint(t *testing.T) (*GameServer, string) {
	t.Helper()
	gs := NewGameServer()
	srv := httptest.NewServer(gs.HandleHttpCall())
	t.Cleanup(srv.Close)
	t.Cleanup(gs.Shutdown)
	return gs, "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dialPeer(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func sendFrame(t *testing.T, conn *websocket.Conn, msg any) {
	t.Helper()
	buf, err := json.Marshal(msg)
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, buf))
}

// awaitFrame reads until a frame of the wanted type arrives, skipping the
// 30 Hz state stream and whatever else is interleaved.
func awaitFrame(t *testing.T, conn *websocket.Conn, typ string) map[string]any {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		require.NoError(t, conn.SetReadDeadline(deadline))
		_, raw, err := conn.ReadMessage()
		require.NoErrorf(t, err, "waiting for %q", typ)
		var m map[string]any
		require.NoError(t, json.Unmarshal(raw, &m))
		if m["type"] == typ {
			return m
		}
	}
}

func TestEndpointSendsHelloOnConnect(t *testing.T) {
	gs, url := newTestEndpoint(t)
	conn := dialPeer(t, url)

	hello := awaitFrame(t, conn, model.MSG_HELLO)
	assert.NotEmpty(t, hello["id"])
	assert.Eventually(t, func() bool { return gs.SessionCount() == 1 },
		time.Second, 10*time.Millisecond)
}

func TestEndpointQueueRoundTrip(t *testing.T) {
	_, url := newTestEndpoint(t)
	conn := dialPeer(t, url)
	awaitFrame(t, conn, model.MSG_HELLO)

	sendFrame(t, conn, map[string]any{"type": "joinQueue", "name": "Alice"})
	finding := awaitFrame(t, conn, model.MSG_FINDING)
	assert.Equal(t, float64(1), finding["queueSize"])

	sendFrame(t, conn, map[string]any{"type": "cancelQueue"})
	awaitFrame(t, conn, model.MSG_QUEUE_CANCELLED)
}

func TestEndpointUnknownTypeGetsError(t *testing.T) {
	_, url := newTestEndpoint(t)
	conn := dialPeer(t, url)
	awaitFrame(t, conn, model.MSG_HELLO)

	sendFrame(t, conn, map[string]any{"type": "teleport"})
	e := awaitFrame(t, conn, model.MSG_ERROR)
	assert.Equal(t, "Unknown message type", e["message"])
}

func TestEndpointDropsMalformedFrames(t *testing.T) {
	_, url := newTestEndpoint(t)
	conn := dialPeer(t, url)
	awaitFrame(t, conn, model.MSG_HELLO)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`[1,2,3]`)))
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":`)))

	// the session survives the garbage and still answers commands
	sendFrame(t, conn, map[string]any{"type": "joinQueue"})
	awaitFrame(t, conn, model.MSG_FINDING)
}

func TestEndpointMatchesTwoPeers(t *testing.T) {
	gs, url := newTestEndpoint(t)
	a := dialPeer(t, url)
	b := dialPeer(t, url)
	awaitFrame(t, a, model.MSG_HELLO)
	awaitFrame(t, b, model.MSG_HELLO)

	sendFrame(t, a, map[string]any{"type": "joinQueue", "name": "  Alice  "})
	awaitFrame(t, a, model.MSG_FINDING)
	sendFrame(t, b, map[string]any{"type": "joinQueue", "name": "Bob\x01\x02"})

	foundA := awaitFrame(t, a, model.MSG_MATCH_FOUND)
	foundB := awaitFrame(t, b, model.MSG_MATCH_FOUND)
	assert.Equal(t, foundA["roomId"], foundB["roomId"])
	assert.NotEqual(t, foundA["you"], foundB["you"])
	assert.Equal(t, float64(3), foundA["countdown"])
	assert.Equal(t, 1, gs.RoomCount())

	names := map[string]bool{}
	for _, p := range foundA["players"].([]any) {
		names[p.(map[string]any)["name"].(string)] = true
	}
	assert.True(t, names["Alice"], "name not trimmed: %v", names)
	assert.True(t, names["Bob"], "control chars not stripped: %v", names)

	// both sides get the countdown state stream
	state := awaitFrame(t, a, model.MSG_STATE)
	assert.Equal(t, "countdown", state["phase"])
	assert.Equal(t, foundA["you"], state["you"])
	hearts := state["hearts"].(map[string]any)
	assert.Equal(t, float64(model.HEARTS_START), hearts["top"])
}

func TestEndpointPaddleMovesOwnSide(t *testing.T) {
	_, url := newTestEndpoint(t)
	a := dialPeer(t, url)
	b := dialPeer(t, url)
	awaitFrame(t, a, model.MSG_HELLO)
	awaitFrame(t, b, model.MSG_HELLO)
	sendFrame(t, a, map[string]any{"type": "joinQueue"})
	awaitFrame(t, a, model.MSG_FINDING)
	sendFrame(t, b, map[string]any{"type": "joinQueue"})
	foundA := awaitFrame(t, a, model.MSG_MATCH_FOUND)
	you := foundA["you"].(string) + "X"

	sendFrame(t, a, map[string]any{"type": "paddle", "x": 7.0})

	deadline := time.Now().Add(2 * time.Second)
	for {
		require.False(t, time.Now().After(deadline), "paddle move never broadcast")
		state := awaitFrame(t, a, model.MSG_STATE)
		if state["paddles"].(map[string]any)[you] == 1.0 {
			return
		}
	}
}

func TestEndpointDisconnectForfeits(t *testing.T) {
	gs, url := newTestEndpoint(t)
	a := dialPeer(t, url)
	b := dialPeer(t, url)
	awaitFrame(t, a, model.MSG_HELLO)
	awaitFrame(t, b, model.MSG_HELLO)
	sendFrame(t, a, map[string]any{"type": "joinQueue"})
	awaitFrame(t, a, model.MSG_FINDING)
	sendFrame(t, b, map[string]any{"type": "joinQueue"})
	foundB := awaitFrame(t, b, model.MSG_MATCH_FOUND)

	a.Close()

	over := awaitFrame(t, b, model.MSG_GAME_OVER)
	assert.Equal(t, foundB["you"], over["winner"])
	assert.Equal(t, "disconnect", over["reason"])

	b.Close()
	assert.Eventually(t, func() bool { return gs.RoomCount() == 0 },
		2*time.Second, 10*time.Millisecond)
	assert.Eventually(t, func() bool { return gs.SessionCount() == 0 },
		2*time.Second, 10*time.Millisecond)
}

func TestEndpointLeaveRoomForfeits(t *testing.T) {
	_, url := newTestEndpoint(t)
	a := dialPeer(t, url)
	b := dialPeer(t, url)
	awaitFrame(t, a, model.MSG_HELLO)
	awaitFrame(t, b, model.MSG_HELLO)
	sendFrame(t, a, map[string]any{"type": "joinQueue"})
	awaitFrame(t, a, model.MSG_FINDING)
	sendFrame(t, b, map[string]any{"type": "joinQueue"})
	foundA := awaitFrame(t, a, model.MSG_MATCH_FOUND)
	awaitFrame(t, b, model.MSG_MATCH_FOUND)

	sendFrame(t, b, map[string]any{"type": "leaveRoom"})

	over := awaitFrame(t, a, model.MSG_GAME_OVER)
	assert.Equal(t, foundA["you"], over["winner"])
	assert.Equal(t, "disconnect", over["reason"])
}

// Rematch completion over the wire needs a finished game with both peers
// still connected, which only the simulation clock can produce; the vote
// and swap logic is covered by the room tests. Here we only check that a
// premature rematchRequest is ignored without a reply.
func TestEndpointRematchRequestIgnoredMidMatch(t *testing.T) {
	_, url := newTestEndpoint(t)
	a := dialPeer(t, url)
	b := dialPeer(t, url)
	awaitFrame(t, a, model.MSG_HELLO)
	awaitFrame(t, b, model.MSG_HELLO)
	sendFrame(t, a, map[string]any{"type": "joinQueue"})
	awaitFrame(t, a, model.MSG_FINDING)
	sendFrame(t, b, map[string]any{"type": "joinQueue"})
	awaitFrame(t, a, model.MSG_MATCH_FOUND)
	awaitFrame(t, b, model.MSG_MATCH_FOUND)

	sendFrame(t, a, map[string]any{"type": "rematchRequest"})

	// the opponent must see nothing but the state stream
	deadline := time.Now().Add(500 * time.Millisecond)
	for time.Now().Before(deadline) {
		require.NoError(t, b.SetReadDeadline(deadline))
		_, raw, err := b.ReadMessage()
		if err != nil {
			break // deadline hit, nothing suspicious arrived
		}
		var m map[string]any
		require.NoError(t, json.Unmarshal(raw, &m))
		assert.NotEqual(t, model.MSG_REMATCH_OFFERED, m["type"])
		assert.NotEqual(t, model.MSG_REMATCH_START, m["type"])
	}
}

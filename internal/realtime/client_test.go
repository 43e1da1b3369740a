package realtime

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
	"realty_messaging/pkg/logger"
)

func startServer(t *testing.T, hub *Hub, user uuid.UUID) *websocket.Conn {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		NewClient(hub, conn, user, 8, logger.Nop()).Start()
	}))
	t.Cleanup(srv.Close)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	require.Eventually(t, func() bool { return hub.RoomSize(UserRoom(user)) == 1 }, time.Second, 5*time.Millisecond)
	return conn
}

func readEnvelope(t *testing.T, conn *websocket.Conn) Envelope {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var env Envelope
	require.NoError(t, conn.ReadJSON(&env))
	return env
}

func TestClientReceivesUserRoomEvents(t *testing.T) {
	hub := NewHub(logger.Nop())
	user := uuid.New()
	conn := startServer(t, hub, user)

	hub.Publish(UserRoom(user), EventNewNotification, map[string]string{"message": "New inquiry"})

	env := readEnvelope(t, conn)
	require.Equal(t, EventNewNotification, env.Event)
	require.JSONEq(t, `{"message":"New inquiry"}`, string(env.Data))
}

func TestClientJoinChatRoom(t *testing.T) {
	hub := NewHub(logger.Nop())
	user, other := uuid.New(), uuid.New()
	conn := startServer(t, hub, user)

	room := ChatRoom(other, user)
	require.NoError(t, conn.WriteJSON(map[string]interface{}{
		"event": EventJoin,
		"data":  map[string]string{"room": room},
	}))
	require.Eventually(t, func() bool { return hub.RoomSize(room) == 1 }, time.Second, 5*time.Millisecond)

	hub.Publish(room, EventReceiveMessage, map[string]string{"text": "Still interested"})
	env := readEnvelope(t, conn)
	require.Equal(t, EventReceiveMessage, env.Event)
	require.Equal(t, room, env.Room)
}

func TestClientJoinForeignRoomIsRefused(t *testing.T) {
	hub := NewHub(logger.Nop())
	user := uuid.New()
	conn := startServer(t, hub, user)

	room := ChatRoom(uuid.New(), uuid.New())
	require.NoError(t, conn.WriteJSON(map[string]interface{}{
		"event": EventJoin,
		"data":  map[string]string{"room": room},
	}))

	env := readEnvelope(t, conn)
	require.Equal(t, EventError, env.Event)
	require.Zero(t, hub.RoomSize(room))
}

func TestClientPingPong(t *testing.T) {
	hub := NewHub(logger.Nop())
	conn := startServer(t, hub, uuid.New())

	require.NoError(t, conn.WriteJSON(map[string]string{"event": EventPing}))
	require.Equal(t, EventPong, readEnvelope(t, conn).Event)
}

func TestClientDisconnectUnsubscribes(t *testing.T) {
	hub := NewHub(logger.Nop())
	user := uuid.New()
	conn := startServer(t, hub, user)

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool { return hub.ClientCount() == 0 }, 2*time.Second, 10*time.Millisecond)
	require.Zero(t, hub.RoomSize(UserRoom(user)))
}

func TestClientInboundRateLimit(t *testing.T) {
	hub := NewHub(logger.Nop())
	c := newTestClient(hub, uuid.New(), 4)

	for i := 0; i < inboundBurst; i++ {
		require.True(t, c.limiter.Allow())
	}
	require.False(t, c.limiter.Allow())
}

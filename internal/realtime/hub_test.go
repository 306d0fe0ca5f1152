package realtime

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

func newHubServer(t *testing.T, hub *Hub) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := r.URL.Query().Get("user")
		streams := strings.Split(r.URL.Query().Get("streams"), ",")
		hub.Serve(userID, streams, w, r)
	}))
	t.Cleanup(server.Close)
	return server
}

func dial(t *testing.T, server *httptest.Server, userID, streams string) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "?user=" + userID + "&streams=" + streams
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

// waitForConnections polls until the hub has registered the expected number of
// connections; registration happens on the server goroutine after the dial
// returns.
func waitForConnections(t *testing.T, hub *Hub, stream, userID string, want int) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if hub.ConnectionCount(stream, userID) == want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("expected %d connections for %s on %s, have %d",
		want, userID, stream, hub.ConnectionCount(stream, userID))
}

func TestEmitToUserFansOutToAllConnections(t *testing.T) {
	hub := NewHub()
	server := newHubServer(t, hub)

	first := dial(t, server, "user-1", StreamNotifications)
	second := dial(t, server, "user-1", StreamNotifications)
	waitForConnections(t, hub, StreamNotifications, "user-1", 2)

	delivered := hub.EmitToUser(StreamNotifications, "user-1", Message{
		Event: EventNotification,
		Data:  map[string]any{"message": "hello"},
	})
	require.Equal(t, 2, delivered)

	for _, conn := range []*websocket.Conn{first, second} {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		var received Message
		require.NoError(t, conn.ReadJSON(&received))
		require.Equal(t, StreamNotifications, received.Stream)
		require.Equal(t, EventNotification, received.Event)
	}
}

func TestEmitToOfflineUserReturnsZero(t *testing.T) {
	hub := NewHub()

	delivered := hub.EmitToUser(StreamNotifications, "ghost", Message{Event: EventNotification})
	require.Zero(t, delivered)
	require.False(t, hub.IsOnline("ghost"))
}

func TestEmitIsScopedToStreamAndUser(t *testing.T) {
	hub := NewHub()
	server := newHubServer(t, hub)

	conn := dial(t, server, "user-2", StreamMessages)
	waitForConnections(t, hub, StreamMessages, "user-2", 1)

	// Wrong stream and wrong user both miss the room.
	require.Zero(t, hub.EmitToUser(StreamNotifications, "user-2", Message{Event: EventNotification}))
	require.Zero(t, hub.EmitToUser(StreamMessages, "someone-else", Message{Event: EventNewMessage}))

	require.Equal(t, 1, hub.EmitToUser(StreamMessages, "user-2", Message{Event: EventNewMessage}))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var received Message
	require.NoError(t, conn.ReadJSON(&received))
	require.Equal(t, EventNewMessage, received.Event)
}

func TestDisconnectLeavesRoom(t *testing.T) {
	hub := NewHub()
	server := newHubServer(t, hub)

	conn := dial(t, server, "user-3", StreamNotifications)
	waitForConnections(t, hub, StreamNotifications, "user-3", 1)
	require.True(t, hub.IsOnline("user-3"))

	require.NoError(t, conn.Close())
	waitForConnections(t, hub, StreamNotifications, "user-3", 0)
	require.False(t, hub.IsOnline("user-3"))
}

func TestSubscribeControlMessageJoinsStream(t *testing.T) {
	hub := NewHub()
	server := newHubServer(t, hub)

	conn := dial(t, server, "user-4", StreamNotifications)
	waitForConnections(t, hub, StreamNotifications, "user-4", 1)

	require.NoError(t, conn.WriteJSON(map[string]any{
		"action":  "subscribe",
		"streams": []string{StreamMessages},
	}))
	waitForConnections(t, hub, StreamMessages, "user-4", 1)

	require.NoError(t, conn.WriteJSON(map[string]any{
		"action":  "unsubscribe",
		"streams": []string{StreamMessages},
	}))
	waitForConnections(t, hub, StreamMessages, "user-4", 0)

	// The original subscription is untouched.
	require.Equal(t, 1, hub.ConnectionCount(StreamNotifications, "user-4"))
}

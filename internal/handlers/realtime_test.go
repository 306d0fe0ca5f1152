package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	iauth "github.com/venturelink/venturelink/internal/auth"
	"github.com/venturelink/venturelink/internal/realtime"
)

func newRealtimeFixture(t *testing.T) (*httptest.Server, *realtime.Hub, *iauth.JWTService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	jwt, err := iauth.NewJWTService(iauth.JWTConfig{Secret: "test-secret", Issuer: "venturelink"})
	require.NoError(t, err)

	hub := realtime.NewHub()
	handler := NewRealtimeHandler(hub, jwt, realtime.StreamNotifications, realtime.StreamMessages)

	router := gin.New()
	router.GET("/ws", handler.Stream)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server, hub, jwt
}

func accessToken(t *testing.T, jwt *iauth.JWTService, userID string) string {
	t.Helper()
	token, err := jwt.GenerateAccessToken(iauth.AccessTokenInput{UserID: userID, Role: "investor"})
	require.NoError(t, err)
	return token
}

func TestStreamRejectsMissingToken(t *testing.T) {
	server, _, _ := newRealtimeFixture(t)

	resp, err := http.Get(server.URL + "/ws")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestStreamRejectsInvalidToken(t *testing.T) {
	server, _, _ := newRealtimeFixture(t)

	resp, err := http.Get(server.URL + "/ws?token=not-a-jwt")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestStreamRejectsUnknownStream(t *testing.T) {
	server, _, jwt := newRealtimeFixture(t)
	token := accessToken(t, jwt, "user-1")

	resp, err := http.Get(server.URL + "/ws?token=" + token + "&streams=admin")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestStreamUpgradesAuthenticatedCaller(t *testing.T) {
	server, hub, jwt := newRealtimeFixture(t)
	token := accessToken(t, jwt, "user-2")

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws?token=" + token + "&streams=notifications"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) && !hub.IsOnline("user-2") {
		time.Sleep(10 * time.Millisecond)
	}
	require.True(t, hub.IsOnline("user-2"))

	delivered := hub.EmitToUser(realtime.StreamNotifications, "user-2", realtime.Message{
		Event: realtime.EventNotification,
		Data:  map[string]any{"message": "welcome"},
	})
	require.Equal(t, 1, delivered)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var received realtime.Message
	require.NoError(t, conn.ReadJSON(&received))
	require.Equal(t, realtime.EventNotification, received.Event)
}

func TestStreamAcceptsAuthorizationHeader(t *testing.T) {
	server, hub, jwt := newRealtimeFixture(t)
	token := accessToken(t, jwt, "user-3")

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws?streams=messages"
	header := http.Header{"Authorization": []string{"Bearer " + token}}
	conn, resp, err := websocket.DefaultDialer.Dial(url, header)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) && !hub.IsOnline("user-3") {
		time.Sleep(10 * time.Millisecond)
	}
	require.True(t, hub.IsOnline("user-3"))
}

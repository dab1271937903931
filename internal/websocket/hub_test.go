package websocket

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"binsmart-backend/internal/middleware"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "ws-secret"

func dial(t *testing.T, server *httptest.Server, token string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws?token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestHubDeliversToEveryConnectionOfUser(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	server := httptest.NewServer(HandleWebSocket(hub, testSecret))
	defer server.Close()

	token, err := middleware.IssueToken(testSecret, middleware.UserClaims{UserID: "u1", Role: "user"}, time.Now())
	require.NoError(t, err)
	other, err := middleware.IssueToken(testSecret, middleware.UserClaims{UserID: "u2", Role: "user"}, time.Now())
	require.NoError(t, err)

	phone := dial(t, server, token)
	tablet := dial(t, server, token)
	bystander := dial(t, server, other)

	require.Eventually(t, func() bool { return hub.GetClientCount() == 3 }, time.Second, 10*time.Millisecond)
	assert.True(t, hub.IsUserConnected("u1"))

	hub.SendToUser("u1", map[string]interface{}{"type": "notification", "data": map[string]string{"title": "🌿 Eco Starter"}})

	for _, conn := range []*websocket.Conn{phone, tablet} {
		conn.SetReadDeadline(time.Now().Add(time.Second))
		_, raw, err := conn.ReadMessage()
		require.NoError(t, err)

		var event map[string]interface{}
		require.NoError(t, json.Unmarshal(raw, &event))
		assert.Equal(t, "notification", event["type"])
	}

	bystander.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
	_, _, err = bystander.ReadMessage()
	assert.Error(t, err)
}

func TestHubUnregistersClosedConnections(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	server := httptest.NewServer(HandleWebSocket(hub, testSecret))
	defer server.Close()

	token, err := middleware.IssueToken(testSecret, middleware.UserClaims{UserID: "u1"}, time.Now())
	require.NoError(t, err)

	conn := dial(t, server, token)
	require.Eventually(t, func() bool { return hub.IsUserConnected("u1") }, time.Second, 10*time.Millisecond)

	conn.Close()
	assert.Eventually(t, func() bool { return !hub.IsUserConnected("u1") }, time.Second, 10*time.Millisecond)
}

func TestHandleWebSocketRejectsBadToken(t *testing.T) {
	hub := NewHub()
	req := httptest.NewRequest(http.MethodGet, "/ws?token=bogus", nil)
	w := httptest.NewRecorder()

	HandleWebSocket(hub, testSecret)(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/ws", nil)
	w = httptest.NewRecorder()
	HandleWebSocket(hub, testSecret)(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestPingIsAnsweredOnlyOnItsConnection(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	server := httptest.NewServer(HandleWebSocket(hub, testSecret))
	defer server.Close()

	token, err := middleware.IssueToken(testSecret, middleware.UserClaims{UserID: "u1", Role: "user"}, time.Now())
	require.NoError(t, err)

	phone := dial(t, server, token)
	tablet := dial(t, server, token)
	require.Eventually(t, func() bool { return hub.GetClientCount() == 2 }, time.Second, 10*time.Millisecond)

	require.NoError(t, phone.WriteJSON(map[string]string{"type": "ping"}))

	phone.SetReadDeadline(time.Now().Add(time.Second))
	_, raw, err := phone.ReadMessage()
	require.NoError(t, err)
	var reply map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &reply))
	assert.Equal(t, "pong", reply["type"])

	tablet.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
	_, _, err = tablet.ReadMessage()
	assert.Error(t, err)
}

package ws

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHandlerServer(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()

	gin.SetMode(gin.TestMode)
	hub := newTestHub()
	handler := NewHandler(hub, hub.logger)

	engine := gin.New()
	handler.RegisterRoutes(engine)
	srv := httptest.NewServer(engine)
	t.Cleanup(srv.Close)
	t.Cleanup(hub.Close)

	return hub, srv
}

func wsURL(srv *httptest.Server, query string) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws" + query
}

func waitForRegistration(t *testing.T, hub *Hub, userID string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if hub.HasUser(userID) {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("user %s never registered", userID)
}

func TestServeRegistersIdentifiedConnection(t *testing.T) {
	hub, srv := newHandlerServer(t)

	sock, _, err := websocket.DefaultDialer.Dial(wsURL(srv, "?userId=user-1&userRole=PATIENT"), nil)
	require.NoError(t, err)
	defer sock.Close()

	waitForRegistration(t, hub, "user-1")
	assert.Equal(t, 1, hub.ConnectionCount("user-1"))
}

func TestServeRejectsUnknownRoleBeforeUpgrade(t *testing.T) {
	_, srv := newHandlerServer(t)

	resp, err := http.Get(srv.URL + "/ws?userId=user-1&userRole=SUPERUSER")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestServeLeavesAnonymousConnectionUnregistered(t *testing.T) {
	hub, srv := newHandlerServer(t)

	sock, _, err := websocket.DefaultDialer.Dial(wsURL(srv, ""), nil)
	require.NoError(t, err, "upgrade must succeed without identity")
	defer sock.Close()

	// The connection stays open but is never addressable.
	time.Sleep(100 * time.Millisecond)
	assert.False(t, hub.HasUser(""))
}

func TestServeAnswersApplicationPing(t *testing.T) {
	_, srv := newHandlerServer(t)

	sock, _, err := websocket.DefaultDialer.Dial(wsURL(srv, "?userId=user-1&userRole=PATIENT"), nil)
	require.NoError(t, err)
	defer sock.Close()

	require.NoError(t, sock.WriteMessage(websocket.TextMessage, []byte(`{"type":"ping"}`)))

	sock.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := sock.ReadMessage()
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"pong"}`, string(data))
}

func TestServeDropsMalformedFramesAndKeepsReading(t *testing.T) {
	_, srv := newHandlerServer(t)

	sock, _, err := websocket.DefaultDialer.Dial(wsURL(srv, "?userId=user-1&userRole=PATIENT"), nil)
	require.NoError(t, err)
	defer sock.Close()

	require.NoError(t, sock.WriteMessage(websocket.TextMessage, []byte("not json")))
	require.NoError(t, sock.WriteMessage(websocket.TextMessage, []byte(`{"type":"ping"}`)))

	sock.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := sock.ReadMessage()
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"pong"}`, string(data))
}

func TestClientDisconnectUnregisters(t *testing.T) {
	hub, srv := newHandlerServer(t)

	sock, _, err := websocket.DefaultDialer.Dial(wsURL(srv, "?userId=user-1&userRole=PATIENT"), nil)
	require.NoError(t, err)

	waitForRegistration(t, hub, "user-1")
	sock.Close()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) && hub.HasUser("user-1") {
		time.Sleep(10 * time.Millisecond)
	}
	assert.False(t, hub.HasUser("user-1"))
}

package ws

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carepulse/hms-api/internal/model"
	"github.com/carepulse/hms-api/pkg/logger"
	"github.com/carepulse/hms-api/pkg/metrics"
)

func newTestHub() *Hub {
	l := logger.NewLogger(&logger.Config{
		Level:      logger.ErrorLevel,
		TimeFormat: time.RFC3339,
		Output:     io.Discard,
	})
	return NewHub(l, metrics.NewMetrics("test", prometheus.NewRegistry()))
}

// testClient pairs the client side of a websocket with the server-side Conn
// registered in the hub.
type testClient struct {
	sock *websocket.Conn
	conn *Conn
}

func dialHub(t *testing.T, hub *Hub, userID string, role model.Role) *testClient {
	t.Helper()

	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	connCh := make(chan *Conn, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sock, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		connCh <- NewConn(sock, userID, role)
	}))
	t.Cleanup(srv.Close)

	sock, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { sock.Close() })

	conn := <-connCh
	hub.Register(conn)
	return &testClient{sock: sock, conn: conn}
}

func (c *testClient) read(t *testing.T) map[string]interface{} {
	t.Helper()
	c.sock.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := c.sock.ReadMessage()
	require.NoError(t, err)

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &payload))
	return payload
}

func (c *testClient) expectSilence(t *testing.T) {
	t.Helper()
	c.sock.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	_, _, err := c.sock.ReadMessage()
	assert.Error(t, err, "expected no frame on this connection")
}

func TestRegisterIgnoresAnonymousConnection(t *testing.T) {
	hub := newTestHub()

	hub.Register(NewConn(nil, "", model.RoleDoctor))

	assert.False(t, hub.HasUser(""))
	assert.Equal(t, 0, hub.ConnectionCount(""))
}

func TestSendToUserReachesEveryConnection(t *testing.T) {
	hub := newTestHub()
	defer hub.Close()

	first := dialHub(t, hub, "user-1", model.RolePatient)
	second := dialHub(t, hub, "user-1", model.RolePatient)
	other := dialHub(t, hub, "user-2", model.RolePatient)

	require.Equal(t, 2, hub.ConnectionCount("user-1"))

	hub.SendToUser("user-1", map[string]string{"type": "notification", "id": "n-1"})

	assert.Equal(t, "n-1", first.read(t)["id"])
	assert.Equal(t, "n-1", second.read(t)["id"])
	other.expectSilence(t)
}

func TestSendToUserWithoutConnectionsIsNoop(t *testing.T) {
	hub := newTestHub()

	hub.SendToUser("nobody", map[string]string{"type": "notification"})

	assert.False(t, hub.HasUser("nobody"))
}

func TestBroadcastToRoleFiltersByRole(t *testing.T) {
	hub := newTestHub()
	defer hub.Close()

	admin := dialHub(t, hub, "admin-1", model.RoleAdmin)
	nurse := dialHub(t, hub, "nurse-1", model.RoleNurse)
	doctor := dialHub(t, hub, "doctor-1", model.RoleDoctor)

	hub.BroadcastToRole(map[string]string{"type": "admin_notification", "event": "patient_admitted"}, model.RoleAdmin)

	assert.Equal(t, "patient_admitted", admin.read(t)["event"])
	nurse.expectSilence(t)
	doctor.expectSilence(t)
}

func TestBroadcastReachesAllRoles(t *testing.T) {
	hub := newTestHub()
	defer hub.Close()

	admin := dialHub(t, hub, "admin-1", model.RoleAdmin)
	patient := dialHub(t, hub, "patient-1", model.RolePatient)

	hub.Broadcast(map[string]string{"type": "health_tip"})

	assert.Equal(t, "health_tip", admin.read(t)["type"])
	assert.Equal(t, "health_tip", patient.read(t)["type"])
}

func TestUnregisterRemovesEmptyEntry(t *testing.T) {
	hub := newTestHub()

	client := dialHub(t, hub, "user-1", model.RolePatient)
	require.True(t, hub.HasUser("user-1"))

	hub.Unregister(client.conn)

	assert.False(t, hub.HasUser("user-1"), "user entry should be removed with its last connection")

	// Repeated unregistration of the same connection is harmless.
	hub.Unregister(client.conn)
	assert.False(t, hub.HasUser("user-1"))
}

func TestFailedConnectionIsDroppedWithoutAffectingOthers(t *testing.T) {
	hub := newTestHub()
	defer hub.Close()

	broken := dialHub(t, hub, "user-1", model.RolePatient)
	healthy := dialHub(t, hub, "user-1", model.RolePatient)
	require.Equal(t, 2, hub.ConnectionCount("user-1"))

	// Force the next write on this connection to fail.
	broken.conn.close()

	hub.SendToUser("user-1", map[string]string{"type": "notification", "id": "n-1"})

	assert.Equal(t, "n-1", healthy.read(t)["id"])
	assert.Equal(t, 1, hub.ConnectionCount("user-1"))
}

func TestCloseUnregistersEverything(t *testing.T) {
	hub := newTestHub()

	dialHub(t, hub, "user-1", model.RolePatient)
	dialHub(t, hub, "user-2", model.RoleAdmin)

	hub.Close()

	assert.False(t, hub.HasUser("user-1"))
	assert.False(t, hub.HasUser("user-2"))
}

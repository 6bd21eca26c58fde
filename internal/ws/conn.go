package ws

import (
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/carepulse/hms-api/internal/model"
)

const writeWait = 10 * time.Second

var errConnClosed = errors.New("connection closed")

// Conn wraps a websocket connection with the identity it registered under.
// Writes are serialized: gorilla permits at most one concurrent writer.
type Conn struct {
	sock   *websocket.Conn
	userID string
	role   model.Role

	writeMu sync.Mutex
	closed  bool
}

func NewConn(sock *websocket.Conn, userID string, role model.Role) *Conn {
	return &Conn{sock: sock, userID: userID, role: role}
}

func (c *Conn) UserID() string   { return c.userID }
func (c *Conn) Role() model.Role { return c.role }

// write delivers a single pre-serialized text frame.
func (c *Conn) write(data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if c.closed {
		return errConnClosed
	}
	c.sock.SetWriteDeadline(time.Now().Add(writeWait))
	return c.sock.WriteMessage(websocket.TextMessage, data)
}

// close shuts the underlying socket; safe to call more than once.
func (c *Conn) close() {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if !c.closed {
		c.closed = true
		c.sock.Close()
	}
}

package server

import (
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	maxMsgSize = 64 * 1024

	// sendQueueSize bounds the per-connection delivery queue. A stalled
	// client drops frames instead of growing memory without bound; the
	// drop is counted and logged by the registry.
	sendQueueSize = 256
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Connection lifecycle. Closed is terminal; no operation is valid on the
// id afterwards.
const (
	stateConnecting int32 = iota
	stateActive
	stateClosing
	stateClosed
)

// Client is one WebSocket connection: its id, its bounded delivery
// queue, and the two pumps that own all transport I/O.
type Client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
	quit chan struct{}
	log  *slog.Logger
	disp *Dispatcher

	state     atomic.Int32
	closeOnce sync.Once
}

// Enqueue queues a frame for delivery. It never blocks: a full queue or
// a closing connection drops the frame and reports false.
func (c *Client) Enqueue(frame []byte) bool {
	if c.state.Load() >= stateClosing {
		return false
	}
	select {
	case c.send <- frame:
		return true
	default:
		return false
	}
}

// readPump reads inbound frames and hands text frames to the dispatcher.
// Any read error drives the connection to Closing.
func (c *Client) readPump() {
	defer c.teardown()
	c.conn.SetReadLimit(maxMsgSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		msgType, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Warn("read error", "conn", c.id, "err", err)
			}
			return
		}
		switch msgType {
		case websocket.TextMessage:
			c.disp.Dispatch(c.id, data)
		case websocket.BinaryMessage:
			c.log.Info("binary frame ignored", "conn", c.id, "bytes", len(data))
		}
	}
}

// writePump is the delivery pump: it drains the queue in FIFO order and
// writes one frame at a time, with a periodic ping. On a write failure
// it deregisters its own connection and terminates; the transport is
// assumed unrecoverable, there is no retry.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case frame := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				c.log.Error("write failed, deregistering", "conn", c.id, "err", err)
				c.disp.registry.Unregister(c.id)
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.disp.registry.Unregister(c.id)
				return
			}
		case <-c.quit:
			return
		}
	}
}

// teardown moves the connection through Closing to Closed exactly once:
// it stops the pump, deregisters the id and strips it from every room.
func (c *Client) teardown() {
	c.closeOnce.Do(func() {
		c.state.Store(stateClosing)
		close(c.quit)
		c.disp.Disconnect(c.id)
		c.conn.Close()
		c.state.Store(stateClosed)
		c.log.Info("connection closed", "conn", c.id)
	})
}

// ServeWS upgrades the HTTP request, registers the new connection and
// starts its pumps.
func ServeWS(disp *Dispatcher, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		disp.log.Error("ws upgrade", "err", err)
		return
	}

	c := &Client{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan []byte, sendQueueSize),
		quit: make(chan struct{}),
		log:  disp.log,
		disp: disp,
	}
	if err := disp.registry.Register(c.id, c); err != nil {
		// Fresh uuid colliding is a programming-invariant violation.
		disp.log.Error("register connection", "conn", c.id, "err", err)
		conn.Close()
		return
	}
	c.state.Store(stateActive)
	disp.log.Info("connection established", "conn", c.id, "remote", r.RemoteAddr)

	go c.writePump()
	go c.readPump()
}

package hub

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/agentdeck/agentdeck/internal/domain"
)

const (
	// writeWait is the deadline for a single websocket write.
	writeWait = 10 * time.Second

	// pongWait is how long to wait for a pong before assuming the
	// connection is dead. Protocol pings go out at pingPeriod.
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	// sendQueueSize bounds the per-subscriber outbound queue. A
	// subscriber that falls this far behind is dropped.
	sendQueueSize = 256
)

// client is one connected subscriber. The send channel is its private
// ordered delivery queue, drained by writePump. send is never closed:
// readPump may still be enqueueing pong replies after the hub drops the
// client, so teardown is signalled through done instead.
type client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte

	done     chan struct{}
	dropOnce sync.Once
}

func newClient(h *Hub, conn *websocket.Conn) *client {
	return &client{
		hub:  h,
		conn: conn,
		send: make(chan []byte, sendQueueSize),
		done: make(chan struct{}),
	}
}

// drop signals the pumps to shut the connection down. Idempotent, so the
// hub's queue-full path and unregister can both call it.
func (c *client) drop() {
	c.dropOnce.Do(func() { close(c.done) })
}

// writePump writes queued messages and periodic protocol pings. A write
// failure terminates the connection; the failure stays contained here and
// never propagates back to whoever broadcast the message.
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case <-c.done:
			// The hub dropped us.
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		case payload := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump consumes inbound messages until the connection closes, then
// unregisters. The only inbound command is the liveness ping, answered
// with a pong event.
func (c *client) readPump() {
	defer func() {
		c.hub.unregister(c)
		_ = c.conn.Close()
	}()

	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))

		var cmd struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(msg, &cmd); err != nil {
			continue
		}
		if cmd.Type == "ping" {
			pong, err := json.Marshal(domain.Event{Type: domain.EventPong})
			if err != nil {
				continue
			}
			select {
			case c.send <- pong:
			default:
			}
		}
	}
}

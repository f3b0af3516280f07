// Package hub implements the subscriber registry and broadcaster for the
// live websocket surface. Every state-changing event is fanned out to all
// currently connected subscribers, best-effort: delivery is attempted
// independently per subscriber, and a broken or slow subscriber is dropped
// without blocking the others or failing the mutation that triggered the
// broadcast. A new subscriber's first message is a full state snapshot.
package hub

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/agentdeck/agentdeck/internal/domain"
)

// SnapshotFunc assembles the full current state sent to a subscriber on
// connect: tasks, agents, and recent activity.
type SnapshotFunc func() domain.Snapshot

// Hub tracks connected subscribers and fans events out to them.
type Hub struct {
	mu      sync.Mutex
	clients map[*client]bool

	snapshot SnapshotFunc
	upgrader websocket.Upgrader
	logger   zerolog.Logger
}

// New creates a hub. snapshot is called once per new subscriber.
func New(snapshot SnapshotFunc, logger zerolog.Logger) *Hub {
	return &Hub{
		clients:  make(map[*client]bool),
		snapshot: snapshot,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The dashboard is served from arbitrary LAN origins.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		logger: logger,
	}
}

// ServeWS upgrades the request to a websocket connection, registers it as
// a subscriber, delivers the initial snapshot, and runs the connection's
// read/write pumps until it closes.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	c := newClient(h, conn)

	// Queue the snapshot before the client joins the broadcast set, so
	// "init" is always the first delivered message and no broadcast can
	// precede it.
	init, err := json.Marshal(domain.Event{Type: domain.EventInit, Data: h.snapshot()})
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to encode snapshot")
		_ = conn.Close()
		return
	}
	c.send <- init

	h.mu.Lock()
	h.clients[c] = true
	n := len(h.clients)
	h.mu.Unlock()
	h.logger.Debug().Int("subscribers", n).Msg("subscriber connected")

	go c.writePump()
	c.readPump()
}

// Broadcast delivers the event to every connected subscriber. Events are
// enqueued under the registry lock, so each subscriber observes broadcasts
// in call order; the actual writes proceed concurrently in the per-client
// write pumps. A subscriber whose queue is full is dropped rather than
// allowed to stall the fan-out.
func (h *Hub) Broadcast(event domain.Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		h.logger.Error().Err(err).Str("event", string(event.Type)).Msg("failed to encode event")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- payload:
		default:
			h.logger.Warn().Msg("subscriber queue full, dropping connection")
			delete(h.clients, c)
			c.drop()
		}
	}
}

// SubscriberCount returns the number of connected subscribers.
func (h *Hub) SubscriberCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// unregister removes the client idempotently.
func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
	c.drop()
}

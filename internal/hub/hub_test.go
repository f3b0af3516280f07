package hub

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentdeck/agentdeck/internal/domain"
)

func testSnapshot() domain.Snapshot {
	return domain.Snapshot{
		Tasks:    []domain.Task{{ID: "a1b2c3d4", Title: "Write report", Status: domain.TaskStatusTodo}},
		Agents:   []domain.Agent{{ID: "manager-prime", Status: domain.AgentStatusIdle}},
		Activity: []domain.ActivityEntry{{Timestamp: "2026-02-03T10:00:00.000000Z", Message: "hello"}},
	}
}

// newTestHub serves the hub over httptest and returns a dialer URL.
func newTestHub(t *testing.T) (*Hub, string) {
	t.Helper()
	h := New(testSnapshot, zerolog.Nop())
	srv := httptest.NewServer(http.HandlerFunc(h.ServeWS))
	t.Cleanup(srv.Close)
	return h, "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	var event map[string]any
	require.NoError(t, json.Unmarshal(msg, &event))
	return event
}

func waitForSubscribers(t *testing.T, h *Hub, want int) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for h.SubscriberCount() != want {
		if time.Now().After(deadline) {
			t.Fatalf("subscriber count never reached %d (have %d)", want, h.SubscriberCount())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestHub_SnapshotIsFirstMessage(t *testing.T) {
	_, url := newTestHub(t)
	conn := dial(t, url)

	event := readEvent(t, conn)
	assert.Equal(t, "init", event["type"])

	data, ok := event["data"].(map[string]any)
	require.True(t, ok)
	tasks, ok := data["tasks"].([]any)
	require.True(t, ok)
	require.Len(t, tasks, 1)
	agents, ok := data["agents"].([]any)
	require.True(t, ok)
	require.Len(t, agents, 1)
	activity, ok := data["activity"].([]any)
	require.True(t, ok)
	assert.Len(t, activity, 1)
}

func TestHub_BroadcastsInOrder(t *testing.T) {
	h, url := newTestHub(t)
	conn := dial(t, url)
	readEvent(t, conn) // init
	waitForSubscribers(t, h, 1)

	for i := 0; i < 10; i++ {
		h.Broadcast(domain.Event{Type: domain.EventFeed, Data: map[string]int{"seq": i}})
	}

	for i := 0; i < 10; i++ {
		event := readEvent(t, conn)
		require.Equal(t, "feed", event["type"])
		data := event["data"].(map[string]any)
		assert.Equal(t, float64(i), data["seq"], "events must arrive in broadcast order")
	}
}

func TestHub_PingPong(t *testing.T) {
	_, url := newTestHub(t)
	conn := dial(t, url)
	readEvent(t, conn) // init

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"ping"}`)))
	event := readEvent(t, conn)
	assert.Equal(t, "pong", event["type"])
}

func TestHub_BrokenSubscriberDoesNotBlockOthers(t *testing.T) {
	h, url := newTestHub(t)

	broken := dial(t, url)
	readEvent(t, broken) // init
	healthy := dial(t, url)
	readEvent(t, healthy) // init
	waitForSubscribers(t, h, 2)

	require.NoError(t, broken.Close())

	// Broadcasting after one connection died still reaches the healthy
	// subscriber, and the broadcast itself never fails.
	h.Broadcast(domain.Event{Type: domain.EventMoodUpdated})
	h.Broadcast(domain.Event{Type: domain.EventFeedCleared})

	event := readEvent(t, healthy)
	assert.Equal(t, "mood_updated", event["type"])
	event = readEvent(t, healthy)
	assert.Equal(t, "feed_cleared", event["type"])
}

func TestHub_SlowSubscriberDropThenPingIsSafe(t *testing.T) {
	h := New(testSnapshot, zerolog.Nop())
	c := newClient(h, nil)
	h.mu.Lock()
	h.clients[c] = true
	h.mu.Unlock()

	// Fill the subscriber's queue so the next broadcast takes the
	// queue-full drop path.
	for i := 0; i < sendQueueSize; i++ {
		c.send <- []byte(`{}`)
	}
	h.Broadcast(domain.Event{Type: domain.EventActivity, Data: "backlog"})
	assert.Equal(t, 0, h.SubscriberCount())

	select {
	case <-c.done:
	default:
		t.Fatal("dropped subscriber was not signalled")
	}

	// The connection's read loop can still be handling an inbound ping
	// when the drop lands. Enqueueing the pong reply must stay safe.
	require.NotPanics(t, func() {
		select {
		case c.send <- []byte(`{"type":"pong"}`):
		default:
		}
	})

	// A later unregister from the read loop's teardown is a no-op.
	require.NotPanics(t, func() { h.unregister(c) })
}

func TestHub_UnregisterOnDisconnect(t *testing.T) {
	h, url := newTestHub(t)

	conn := dial(t, url)
	readEvent(t, conn)
	waitForSubscribers(t, h, 1)

	require.NoError(t, conn.Close())
	waitForSubscribers(t, h, 0)
}

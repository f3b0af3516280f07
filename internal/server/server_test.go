package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentdeck/agentdeck/internal/config"
	"github.com/agentdeck/agentdeck/internal/domain"
	"github.com/agentdeck/agentdeck/internal/feed"
	"github.com/agentdeck/agentdeck/internal/history"
	"github.com/agentdeck/agentdeck/internal/hub"
	"github.com/agentdeck/agentdeck/internal/repo"
	"github.com/agentdeck/agentdeck/internal/script"
	"github.com/agentdeck/agentdeck/internal/store"
	"github.com/agentdeck/agentdeck/internal/trigger"
)

var testNow = time.Date(2026, 2, 3, 12, 0, 0, 0, time.UTC)

// stepClock is a mutable fixed clock shared by every component under test.
type stepClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *stepClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

type env struct {
	srv   *httptest.Server
	clock *stepClock
	gw    *Server
}

// newEnv wires a full gateway over a temp data dir, the same way the serve
// command does, with overridable script runner and trigger URL.
func newEnv(t *testing.T, mutate func(*Deps)) *env {
	t.Helper()

	logger := zerolog.Nop()
	st, err := store.New(t.TempDir(), logger)
	require.NoError(t, err)

	clk := &stepClock{now: testNow}

	var (
		tasks *repo.Tasks
		agnts *repo.Agents
		act   *repo.ActivityLog
	)
	h := hub.New(func() domain.Snapshot {
		return domain.Snapshot{Tasks: tasks.All(), Agents: agnts.List(), Activity: act.Recent(50)}
	}, logger)

	act = repo.NewActivityLog(st, clk, h, logger)
	tasks = repo.NewTasks(st, clk, act, logger)
	agnts = repo.NewAgents(st, clk, logger)

	cfg := &config.Config{
		Server:  config.ServerConfig{ListenAddress: ":0", ShutdownTimeout: 5 * time.Second},
		Storage: config.StorageConfig{DataDir: "unused"},
		Scripts: config.ScriptsConfig{HealthTimeout: time.Second, UsageTimeout: time.Second},
	}

	deps := Deps{
		Config:  cfg,
		Logger:  logger,
		Clock:   clk,
		Hub:     h,
		Tasks:   tasks,
		Agents:  agnts,
		Notes:   repo.NewNotes(st, clk, act, logger),
		Sched:   repo.NewScheduled(st, clk, logger),
		Metrics: repo.NewMetrics(st, clk, logger),
		Mood:    repo.NewMood(st, clk, act, logger),
		Act:     act,
		Feed:    feed.New(clk),
		History: history.NewEngine(tasks, clk),
		Scripts: script.NewExecutor(script.ShellRunner{}, logger),
		Trigger: trigger.New("", logger),
	}
	if mutate != nil {
		mutate(&deps)
	}

	gw := New(deps)
	srv := httptest.NewServer(gw.Routes())
	t.Cleanup(srv.Close)

	return &env{srv: srv, clock: clk, gw: gw}
}

func (e *env) do(t *testing.T, method, path string, body any) (int, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, e.srv.URL+path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := e.srv.Client().Do(req)
	require.NoError(t, err)
	defer func() { require.NoError(t, resp.Body.Close()) }()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, raw
}

func decodeMap(t *testing.T, raw []byte) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(raw, &m))
	return m
}

func TestTaskLifecycleOverHTTP(t *testing.T) {
	e := newEnv(t, nil)

	code, raw := e.do(t, http.MethodPost, "/api/tasks", map[string]any{
		"title":    "wire the dashboard",
		"priority": "high",
	})
	require.Equal(t, http.StatusCreated, code)
	created := decodeMap(t, raw)
	id, _ := created["id"].(string)
	require.Len(t, id, 8)
	assert.Equal(t, "todo", created["status"])
	assert.Nil(t, created["startedAt"])

	e.clock.Set(testNow.Add(time.Hour))
	code, raw = e.do(t, http.MethodPatch, "/api/tasks/"+id, map[string]any{"status": "in-progress"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, map[string]any{"ok": true}, decodeMap(t, raw))

	code, raw = e.do(t, http.MethodGet, "/api/tasks", nil)
	require.Equal(t, http.StatusOK, code)
	var tasks []map[string]any
	require.NoError(t, json.Unmarshal(raw, &tasks))
	require.Len(t, tasks, 1)
	assert.Equal(t, "in-progress", tasks[0]["status"])
	assert.Equal(t, domain.Timestamp(testNow.Add(time.Hour)), tasks[0]["startedAt"])

	code, _ = e.do(t, http.MethodDelete, "/api/tasks/"+id, nil)
	require.Equal(t, http.StatusOK, code)

	_, raw = e.do(t, http.MethodGet, "/api/tasks", nil)
	require.NoError(t, json.Unmarshal(raw, &tasks))
	assert.Empty(t, tasks)
}

func TestTaskListActiveFilter(t *testing.T) {
	e := newEnv(t, nil)

	for _, status := range []string{"todo", "in-progress", "done"} {
		code, _ := e.do(t, http.MethodPost, "/api/tasks", map[string]any{"title": status, "status": status})
		require.Equal(t, http.StatusCreated, code)
	}

	_, raw := e.do(t, http.MethodGet, "/api/tasks?active=true", nil)
	var tasks []map[string]any
	require.NoError(t, json.Unmarshal(raw, &tasks))
	require.Len(t, tasks, 2)
	for _, task := range tasks {
		assert.Contains(t, []any{"todo", "in-progress"}, task["status"])
	}
}

func TestUpdateAbsentTaskIsSilentNoOp(t *testing.T) {
	e := newEnv(t, nil)

	code, raw := e.do(t, http.MethodPatch, "/api/tasks/deadbeef", map[string]any{"status": "done"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, map[string]any{"ok": true}, decodeMap(t, raw))
}

func TestCreateTaskFiresAgentTrigger(t *testing.T) {
	fired := make(chan map[string]string, 1)
	runner := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		fired <- body
		w.WriteHeader(http.StatusOK)
	}))
	defer runner.Close()

	e := newEnv(t, func(d *Deps) {
		d.Trigger = trigger.New(runner.URL, zerolog.Nop())
	})

	code, raw := e.do(t, http.MethodPost, "/api/tasks", map[string]any{
		"title":      "build report",
		"assignedTo": "Agent:builder",
	})
	require.Equal(t, http.StatusCreated, code)
	id, _ := decodeMap(t, raw)["id"].(string)

	select {
	case body := <-fired:
		assert.Equal(t, map[string]string{"taskId": id}, body)
	case <-time.After(2 * time.Second):
		t.Fatal("trigger was not fired")
	}

	// A human assignee must not fire the trigger.
	code, _ = e.do(t, http.MethodPost, "/api/tasks", map[string]any{
		"title":      "review report",
		"assignedTo": "Manager",
	})
	require.Equal(t, http.StatusCreated, code)
	select {
	case <-fired:
		t.Fatal("unexpected trigger for human assignee")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestAgentStatusRoundTrip(t *testing.T) {
	e := newEnv(t, nil)

	code, _ := e.do(t, http.MethodPatch, "/api/agents/builder-1/status", map[string]any{
		"name":   "Builder",
		"status": "Working",
	})
	require.Equal(t, http.StatusOK, code)

	_, raw := e.do(t, http.MethodGet, "/api/agents", nil)
	var agents []map[string]any
	require.NoError(t, json.Unmarshal(raw, &agents))
	// Seeded manager plus the upserted builder.
	require.Len(t, agents, 2)

	var builder map[string]any
	for _, a := range agents {
		if a["id"] == "builder-1" {
			builder = a
		}
	}
	require.NotNil(t, builder)
	assert.Equal(t, "Working", builder["status"])
	assert.Equal(t, domain.Timestamp(testNow), builder["startedWorkingAt"])

	code, _ = e.do(t, http.MethodDelete, "/api/agents/builder-1", nil)
	require.Equal(t, http.StatusOK, code)
	_, raw = e.do(t, http.MethodGet, "/api/agents", nil)
	require.NoError(t, json.Unmarshal(raw, &agents))
	assert.Len(t, agents, 1)
}

func TestActivitySinceCursor(t *testing.T) {
	e := newEnv(t, nil)

	for _, msg := range []string{"first", "second", "third"} {
		code, _ := e.do(t, http.MethodPost, "/api/activity", map[string]any{"message": msg})
		require.Equal(t, http.StatusOK, code)
	}

	_, raw := e.do(t, http.MethodGet, "/api/activity?since=1", nil)
	var entries []map[string]any
	require.NoError(t, json.Unmarshal(raw, &entries))
	require.Len(t, entries, 2)
	assert.Equal(t, "second", entries[0]["message"])
	assert.Equal(t, "third", entries[1]["message"])
}

func TestNotesFlow(t *testing.T) {
	e := newEnv(t, nil)

	code, raw := e.do(t, http.MethodPost, "/api/notes", map[string]any{"content": "check the logs"})
	require.Equal(t, http.StatusCreated, code)
	id, _ := decodeMap(t, raw)["id"].(string)
	require.NotEmpty(t, id)

	e.clock.Set(testNow.Add(time.Minute))
	code, _ = e.do(t, http.MethodPatch, "/api/notes/"+id+"/read", nil)
	require.Equal(t, http.StatusOK, code)

	_, raw = e.do(t, http.MethodGet, "/api/notes", nil)
	var notes []map[string]any
	require.NoError(t, json.Unmarshal(raw, &notes))
	require.Len(t, notes, 1)
	assert.Equal(t, true, notes[0]["read"])
	assert.Equal(t, domain.Timestamp(testNow.Add(time.Minute)), notes[0]["readAt"])

	code, _ = e.do(t, http.MethodDelete, "/api/notes/"+id, nil)
	require.Equal(t, http.StatusOK, code)
}

func TestScheduledDefaults(t *testing.T) {
	e := newEnv(t, nil)

	code, raw := e.do(t, http.MethodPost, "/api/scheduled", map[string]any{"name": "daily digest"})
	require.Equal(t, http.StatusCreated, code)
	item := decodeMap(t, raw)
	assert.Equal(t, "daily", item["schedule"])
	assert.Equal(t, "📋", item["icon"])
	assert.Equal(t, true, item["enabled"])
	assert.Nil(t, item["lastRun"])
}

func TestMetricsPatchMerge(t *testing.T) {
	e := newEnv(t, nil)

	code, _ := e.do(t, http.MethodPatch, "/api/metrics", map[string]any{
		"provider":          "anthropic",
		"premium_remaining": 42.5,
	})
	require.Equal(t, http.StatusOK, code)

	_, raw := e.do(t, http.MethodGet, "/api/metrics", nil)
	metrics := decodeMap(t, raw)
	assert.Equal(t, "anthropic", metrics["provider"])
	usage, _ := metrics["token_usage"].(map[string]any)
	require.NotNil(t, usage)
	assert.Equal(t, 42.5, usage["premium_remaining"])
	assert.Equal(t, domain.Timestamp(testNow), usage["last_updated"])
}

func TestMoodReturnsStoredRecord(t *testing.T) {
	e := newEnv(t, nil)

	code, raw := e.do(t, http.MethodPost, "/api/mood", map[string]any{"mood": "focused"})
	require.Equal(t, http.StatusOK, code)
	mood := decodeMap(t, raw)
	assert.Equal(t, "focused", mood["mood"])
	assert.Equal(t, domain.Timestamp(testNow), mood["lastUpdated"])
}

func TestFeedEndpoints(t *testing.T) {
	e := newEnv(t, nil)

	code, raw := e.do(t, http.MethodPost, "/api/feed", map[string]any{"message": "compiling", "type": "working"})
	require.Equal(t, http.StatusCreated, code)
	posted := decodeMap(t, raw)
	assert.Equal(t, true, posted["ok"])
	assert.NotEmpty(t, posted["id"])

	code, raw = e.do(t, http.MethodPost, "/api/feed", map[string]any{"message": "bad", "type": "shouting"})
	require.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, decodeMap(t, raw)["error"], "Must be one of")

	_, raw = e.do(t, http.MethodGet, "/api/feed", nil)
	var entries []map[string]any
	require.NoError(t, json.Unmarshal(raw, &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "compiling", entries[0]["message"])

	code, raw = e.do(t, http.MethodDelete, "/api/feed", nil)
	require.Equal(t, http.StatusOK, code)
	cleared := decodeMap(t, raw)
	assert.Equal(t, true, cleared["ok"])
	assert.Equal(t, float64(1), cleared["cleared"])
}

func TestHistoryAndStatsEndpoints(t *testing.T) {
	e := newEnv(t, nil)

	code, raw := e.do(t, http.MethodPost, "/api/tasks", map[string]any{"title": "ship it", "status": "done", "assignedTo": "Agent:builder"})
	require.Equal(t, http.StatusCreated, code)
	_ = raw
	code, _ = e.do(t, http.MethodPost, "/api/tasks", map[string]any{"title": "open item"})
	require.Equal(t, http.StatusCreated, code)

	_, raw = e.do(t, http.MethodGet, "/api/tasks/history", nil)
	result := decodeMap(t, raw)
	weeks, _ := result["weeks"].([]any)
	require.Len(t, weeks, 1)
	stats, _ := result["stats"].(map[string]any)
	assert.Equal(t, float64(1), stats["totalCompleted"])
	pagination, _ := result["pagination"].(map[string]any)
	assert.Equal(t, float64(1), pagination["total"])
	assert.Equal(t, false, pagination["hasMore"])

	_, raw = e.do(t, http.MethodGet, "/api/tasks/stats", nil)
	summary := decodeMap(t, raw)
	assert.Equal(t, float64(2), summary["totalTasks"])
	assert.Equal(t, float64(1), summary["totalCompleted"])
	assert.Equal(t, float64(0), summary["totalArchived"])
	byStatus, _ := summary["byStatus"].(map[string]any)
	assert.Equal(t, float64(1), byStatus["todo"])
}

func TestArchiveOldEndpoint(t *testing.T) {
	e := newEnv(t, nil)

	code, _ := e.do(t, http.MethodPost, "/api/tasks", map[string]any{"title": "stale", "status": "done"})
	require.Equal(t, http.StatusCreated, code)

	// Nothing is old enough yet.
	code, raw := e.do(t, http.MethodPost, "/api/tasks/archive-old", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(0), decodeMap(t, raw)["archived"])

	e.clock.Set(testNow.Add(8 * 24 * time.Hour))
	code, raw = e.do(t, http.MethodPost, "/api/tasks/archive-old", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(1), decodeMap(t, raw)["archived"])
}

func TestSystemEndpointsUseConfiguredScripts(t *testing.T) {
	e := newEnv(t, func(d *Deps) {
		d.Config.Scripts.HealthPath = `printf '{"status":"healthy","cpu_percent":7}'`
		d.Config.Scripts.UsagePath = "exit 2"
	})

	code, raw := e.do(t, http.MethodGet, "/api/system/health", nil)
	require.Equal(t, http.StatusOK, code)
	health := decodeMap(t, raw)
	assert.Equal(t, "healthy", health["status"])
	assert.Equal(t, float64(7), health["cpu_percent"])

	code, raw = e.do(t, http.MethodGet, "/api/system/usage", nil)
	require.Equal(t, http.StatusInternalServerError, code)
	assert.Contains(t, decodeMap(t, raw)["error"], "exit code 2")
}

func TestMemoryEndpointsWithoutStore(t *testing.T) {
	e := newEnv(t, nil)

	for _, path := range []string{
		"/api/memory/stats",
		"/api/memory/facts",
		"/api/memory/goals",
		"/api/memory/conversations",
		"/api/memory/preferences",
	} {
		code, raw := e.do(t, http.MethodGet, path, nil)
		require.Equal(t, http.StatusOK, code, path)
		assert.Contains(t, decodeMap(t, raw)["error"], "not configured", path)
	}
}

func TestStatusUpdateDefaults(t *testing.T) {
	e := newEnv(t, nil)

	code, raw := e.do(t, http.MethodPost, "/api/status-update", map[string]any{"detail": "compiling"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, map[string]any{"ok": true}, decodeMap(t, raw))
}

func TestInvalidJSONBodyRejected(t *testing.T) {
	e := newEnv(t, nil)

	req, err := http.NewRequest(http.MethodPost, e.srv.URL+"/api/tasks", strings.NewReader("{not json"))
	require.NoError(t, err)
	resp, err := e.srv.Client().Do(req)
	require.NoError(t, err)
	defer func() { require.NoError(t, resp.Body.Close()) }()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

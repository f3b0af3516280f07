// Package server is the HTTP gateway for the agentdeck dashboard: the REST
// routes, the websocket subscription endpoint, and the wiring between
// handlers and the underlying repositories. Handlers persist first through
// the repositories, then broadcast, so a delivered event always reflects
// durable state.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/agentdeck/agentdeck/internal/clock"
	"github.com/agentdeck/agentdeck/internal/config"
	"github.com/agentdeck/agentdeck/internal/feed"
	"github.com/agentdeck/agentdeck/internal/history"
	"github.com/agentdeck/agentdeck/internal/hub"
	"github.com/agentdeck/agentdeck/internal/memory"
	"github.com/agentdeck/agentdeck/internal/repo"
	"github.com/agentdeck/agentdeck/internal/script"
	"github.com/agentdeck/agentdeck/internal/trigger"
)

// Deps carries everything the gateway serves. Memory may be nil when no
// memory database is configured; its endpoints then report unavailable.
type Deps struct {
	Config  *config.Config
	Logger  zerolog.Logger
	Clock   clock.Clock
	Hub     *hub.Hub
	Tasks   *repo.Tasks
	Agents  *repo.Agents
	Notes   *repo.Notes
	Sched   *repo.Scheduled
	Metrics *repo.MetricsRepo
	Mood    *repo.MoodRepo
	Act     *repo.ActivityLog
	Feed    *feed.Buffer
	History *history.Engine
	Memory  *memory.Store
	Scripts *script.Executor
	Trigger *trigger.Notifier
}

// Server is the HTTP gateway.
type Server struct {
	cfg    *config.Config
	logger zerolog.Logger
	clock  clock.Clock

	hub       *hub.Hub
	tasks     *repo.Tasks
	agents    *repo.Agents
	notes     *repo.Notes
	scheduled *repo.Scheduled
	metrics   *repo.MetricsRepo
	mood      *repo.MoodRepo
	activity  *repo.ActivityLog
	feed      *feed.Buffer
	history   *history.Engine
	memory    *memory.Store
	scripts   *script.Executor
	trigger   *trigger.Notifier
}

// New assembles the gateway from its dependencies.
func New(d Deps) *Server {
	return &Server{
		cfg:       d.Config,
		logger:    d.Logger,
		clock:     d.Clock,
		hub:       d.Hub,
		tasks:     d.Tasks,
		agents:    d.Agents,
		notes:     d.Notes,
		scheduled: d.Sched,
		metrics:   d.Metrics,
		mood:      d.Mood,
		activity:  d.Act,
		feed:      d.Feed,
		history:   d.History,
		memory:    d.Memory,
		scripts:   d.Scripts,
		trigger:   d.Trigger,
	}
}

// Routes returns the gateway's route table.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/tasks", s.listTasks)
	mux.HandleFunc("POST /api/tasks", s.createTask)
	mux.HandleFunc("GET /api/tasks/history", s.taskHistory)
	mux.HandleFunc("GET /api/tasks/stats", s.taskStats)
	mux.HandleFunc("POST /api/tasks/archive-old", s.archiveOldTasks)
	mux.HandleFunc("PATCH /api/tasks/{id}", s.updateTask)
	mux.HandleFunc("DELETE /api/tasks/{id}", s.deleteTask)

	mux.HandleFunc("GET /api/agents", s.listAgents)
	mux.HandleFunc("PATCH /api/agents/{id}/status", s.updateAgent)
	mux.HandleFunc("DELETE /api/agents/{id}", s.removeAgent)

	mux.HandleFunc("GET /api/activity", s.getActivity)
	mux.HandleFunc("POST /api/activity", s.postActivity)
	mux.HandleFunc("POST /api/status-update", s.statusUpdate)

	mux.HandleFunc("GET /api/notes", s.listNotes)
	mux.HandleFunc("POST /api/notes", s.addNote)
	mux.HandleFunc("PATCH /api/notes/{id}/read", s.markNoteRead)
	mux.HandleFunc("DELETE /api/notes/{id}", s.deleteNote)

	mux.HandleFunc("GET /api/scheduled", s.listScheduled)
	mux.HandleFunc("POST /api/scheduled", s.addScheduled)
	mux.HandleFunc("DELETE /api/scheduled/{id}", s.deleteScheduled)

	mux.HandleFunc("GET /api/metrics", s.getMetrics)
	mux.HandleFunc("PATCH /api/metrics", s.patchMetrics)

	mux.HandleFunc("GET /api/mood", s.getMood)
	mux.HandleFunc("POST /api/mood", s.setMood)

	mux.HandleFunc("GET /api/feed", s.getFeed)
	mux.HandleFunc("POST /api/feed", s.postFeed)
	mux.HandleFunc("DELETE /api/feed", s.clearFeed)

	mux.HandleFunc("GET /api/system/health", s.systemHealth)
	mux.HandleFunc("GET /api/system/usage", s.systemUsage)

	mux.HandleFunc("GET /api/memory/stats", s.memoryStats)
	mux.HandleFunc("GET /api/memory/facts", s.memoryFacts)
	mux.HandleFunc("GET /api/memory/goals", s.memoryGoals)
	mux.HandleFunc("GET /api/memory/conversations", s.memoryConversations)
	mux.HandleFunc("GET /api/memory/preferences", s.memoryPreferences)

	mux.HandleFunc("GET /ws", s.hub.ServeWS)

	return mux
}

// Serve binds the configured listen address and serves until ctx is
// cancelled, then drains gracefully within the shutdown timeout.
func (s *Server) Serve(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.cfg.Server.ListenAddress)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.cfg.Server.ListenAddress, err)
	}

	// No Read/Write timeouts: /ws connections are long-lived and the
	// websocket layer manages its own deadlines.
	srv := &http.Server{
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	s.logger.Info().Str("address", listener.Addr().String()).Msg("gateway listening")

	serveDone := make(chan error, 1)
	go func() {
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveDone <- err
		}
		close(serveDone)
	}()

	select {
	case <-ctx.Done():
		s.logger.Info().Msg("gateway shutting down")
	case err := <-serveDone:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("gateway shutdown: %w", err)
	}

	s.logger.Info().Msg("gateway stopped")
	return nil
}

package server

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/agentdeck/agentdeck/internal/domain"
	"github.com/agentdeck/agentdeck/internal/history"
	"github.com/agentdeck/agentdeck/internal/trigger"
)

func (s *Server) listTasks(w http.ResponseWriter, r *http.Request) {
	activeOnly := strings.EqualFold(r.URL.Query().Get("active"), "true")
	s.writeJSON(w, http.StatusOK, s.tasks.List(activeOnly))
}

func (s *Server) createTask(w http.ResponseWriter, r *http.Request) {
	var patch domain.TaskPatch
	if !s.decodeJSON(w, r, &patch) {
		return
	}

	task, err := s.tasks.Create(patch)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.hub.Broadcast(domain.Event{Type: domain.EventTaskCreated, Data: task})

	if trigger.ShouldFire(task.AssignedTo) {
		go s.trigger.Fire(context.Background(), task.ID)
	}

	s.writeJSON(w, http.StatusCreated, task)
}

func (s *Server) updateTask(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var patch domain.TaskPatch
	if !s.decodeJSON(w, r, &patch) {
		return
	}

	task, found, err := s.tasks.Update(id, patch)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if found {
		s.hub.Broadcast(domain.Event{Type: domain.EventTaskUpdated, Data: task})
	}
	s.writeJSON(w, http.StatusOK, okBody)
}

func (s *Server) deleteTask(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if _, _, err := s.tasks.Delete(id); err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.hub.Broadcast(domain.Event{Type: domain.EventTaskDeleted, Data: map[string]string{"id": id}})
	s.writeJSON(w, http.StatusOK, okBody)
}

func (s *Server) taskHistory(w http.ResponseWriter, r *http.Request) {
	qv := r.URL.Query()

	q := history.Query{
		Text:  qv.Get("q"),
		Agent: qv.Get("agent"),
		From:  qv.Get("from"),
		To:    qv.Get("to"),
		Page:  intParam(qv.Get("page"), 1),
		Limit: intParam(qv.Get("limit"), 0),
	}
	if raw := qv.Get("status"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				q.Status = append(q.Status, part)
			}
		}
	}

	s.writeJSON(w, http.StatusOK, s.history.History(q))
}

func (s *Server) taskStats(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.history.Summarize())
}

func (s *Server) archiveOldTasks(w http.ResponseWriter, _ *http.Request) {
	count, err := s.history.ArchiveOld()
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if count > 0 {
		s.hub.Broadcast(domain.Event{Type: domain.EventTasksArchived, Data: map[string]int{"count": count}})
	}
	s.writeJSON(w, http.StatusOK, map[string]int{"archived": count})
}

// intParam parses a decimal query parameter, returning fallback for empty
// or malformed values.
func intParam(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}

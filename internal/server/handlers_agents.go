package server

import (
	"net/http"

	"github.com/agentdeck/agentdeck/internal/domain"
)

func (s *Server) listAgents(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.agents.List())
}

func (s *Server) updateAgent(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var patch domain.AgentPatch
	if !s.decodeJSON(w, r, &patch) {
		return
	}

	agent, err := s.agents.Update(id, patch)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	// The broadcast carries the stored record so subscribers see the
	// resolved startedWorkingAt, not just the patch fields.
	s.hub.Broadcast(domain.Event{Type: domain.EventAgentUpdated, Data: agent})
	s.writeJSON(w, http.StatusOK, okBody)
}

func (s *Server) removeAgent(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if err := s.agents.Remove(id); err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.hub.Broadcast(domain.Event{Type: domain.EventAgentRemoved, Data: map[string]string{"id": id}})
	s.writeJSON(w, http.StatusOK, okBody)
}

func (s *Server) getActivity(w http.ResponseWriter, r *http.Request) {
	since := intParam(r.URL.Query().Get("since"), 0)
	s.writeJSON(w, http.StatusOK, s.activity.Since(since))
}

func (s *Server) postActivity(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Message string `json:"message"`
	}
	if !s.decodeJSON(w, r, &body) {
		return
	}

	if _, err := s.activity.Append(body.Message); err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, okBody)
}

// statusUpdate broadcasts an ephemeral agent status line. Nothing is
// persisted; a subscriber that misses it misses it.
func (s *Server) statusUpdate(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Agent  string `json:"agent"`
		Status string `json:"status"`
		Detail string `json:"detail"`
	}
	if !s.decodeJSON(w, r, &body) {
		return
	}
	if body.Agent == "" {
		body.Agent = "unknown"
	}
	if body.Status == "" {
		body.Status = "idle"
	}

	update := domain.StatusUpdate{
		Type:      "status",
		Agent:     body.Agent,
		Status:    body.Status,
		Detail:    body.Detail,
		Timestamp: domain.Timestamp(s.clock.Now()),
	}
	s.hub.Broadcast(domain.Event{Type: domain.EventStatusUpdate, Data: update})
	s.writeJSON(w, http.StatusOK, okBody)
}

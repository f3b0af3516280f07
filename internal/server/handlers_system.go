package server

import (
	"net/http"
)

func (s *Server) systemHealth(w http.ResponseWriter, r *http.Request) {
	payload, err := s.scripts.RunJSON(r.Context(), s.cfg.Scripts.HealthPath, s.cfg.Scripts.HealthTimeout)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, payload)
}

func (s *Server) systemUsage(w http.ResponseWriter, r *http.Request) {
	payload, err := s.scripts.RunJSON(r.Context(), s.cfg.Scripts.UsagePath, s.cfg.Scripts.UsageTimeout)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, payload)
}

// Memory endpoints degrade to an error payload with a 200 so the dashboard
// renders "memory unavailable" instead of treating the request as failed.

func (s *Server) memoryStats(w http.ResponseWriter, r *http.Request) {
	if s.memory == nil {
		s.writeError(w, http.StatusOK, "memory store not configured")
		return
	}
	stats, err := s.memory.Stats(r.Context())
	if err != nil {
		s.writeError(w, http.StatusOK, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, stats)
}

func (s *Server) memoryFacts(w http.ResponseWriter, r *http.Request) {
	if s.memory == nil {
		s.writeError(w, http.StatusOK, "memory store not configured")
		return
	}
	qv := r.URL.Query()
	page, err := s.memory.Facts(r.Context(), intParam(qv.Get("page"), 1), intParam(qv.Get("limit"), 0))
	if err != nil {
		s.writeError(w, http.StatusOK, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, page)
}

func (s *Server) memoryGoals(w http.ResponseWriter, r *http.Request) {
	if s.memory == nil {
		s.writeError(w, http.StatusOK, "memory store not configured")
		return
	}
	goals, err := s.memory.Goals(r.Context())
	if err != nil {
		s.writeError(w, http.StatusOK, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, goals)
}

func (s *Server) memoryConversations(w http.ResponseWriter, r *http.Request) {
	if s.memory == nil {
		s.writeError(w, http.StatusOK, "memory store not configured")
		return
	}
	days := intParam(r.URL.Query().Get("days"), 7)
	convs, err := s.memory.Conversations(r.Context(), days)
	if err != nil {
		s.writeError(w, http.StatusOK, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, convs)
}

func (s *Server) memoryPreferences(w http.ResponseWriter, r *http.Request) {
	if s.memory == nil {
		s.writeError(w, http.StatusOK, "memory store not configured")
		return
	}
	prefs, err := s.memory.Preferences(r.Context())
	if err != nil {
		s.writeError(w, http.StatusOK, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, prefs)
}

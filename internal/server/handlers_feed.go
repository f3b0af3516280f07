package server

import (
	"errors"
	"net/http"

	"github.com/agentdeck/agentdeck/internal/domain"
	deckerrors "github.com/agentdeck/agentdeck/internal/errors"
	"github.com/agentdeck/agentdeck/internal/feed"
)

func (s *Server) getFeed(w http.ResponseWriter, r *http.Request) {
	qv := r.URL.Query()
	since := qv.Get("since")
	limit := intParam(qv.Get("limit"), feed.DefaultLimit)

	s.writeJSON(w, http.StatusOK, s.feed.List(since, limit))
}

func (s *Server) postFeed(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Message   string `json:"message"`
		Type      string `json:"type"`
		Timestamp string `json:"timestamp"`
	}
	if !s.decodeJSON(w, r, &body) {
		return
	}
	if body.Type == "" {
		body.Type = "working"
	}

	entry, err := s.feed.Post(body.Message, body.Type, body.Timestamp)
	if err != nil {
		if errors.Is(err, deckerrors.ErrInvalidFeedType) {
			s.writeError(w, http.StatusBadRequest, feed.InvalidTypeMessage())
			return
		}
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.hub.Broadcast(domain.Event{Type: domain.EventFeed, Data: entry})
	s.writeJSON(w, http.StatusCreated, map[string]any{"ok": true, "id": entry.ID})
}

func (s *Server) clearFeed(w http.ResponseWriter, _ *http.Request) {
	count := s.feed.Clear()
	s.hub.Broadcast(domain.Event{Type: domain.EventFeedCleared})
	s.writeJSON(w, http.StatusOK, map[string]any{"ok": true, "cleared": count})
}

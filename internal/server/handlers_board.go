package server

import (
	"net/http"

	"github.com/agentdeck/agentdeck/internal/domain"
	"github.com/agentdeck/agentdeck/internal/repo"
)

func (s *Server) listNotes(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.notes.List())
}

func (s *Server) addNote(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Content string `json:"content"`
	}
	if !s.decodeJSON(w, r, &body) {
		return
	}

	note, err := s.notes.Add(body.Content)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.hub.Broadcast(domain.Event{Type: domain.EventNoteAdded, Data: note})
	s.writeJSON(w, http.StatusCreated, note)
}

func (s *Server) markNoteRead(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	note, found, err := s.notes.MarkRead(id)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if found {
		s.hub.Broadcast(domain.Event{Type: domain.EventNoteUpdated, Data: map[string]any{
			"id":     note.ID,
			"read":   true,
			"readAt": note.ReadAt,
		}})
	}
	s.writeJSON(w, http.StatusOK, okBody)
}

func (s *Server) deleteNote(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if err := s.notes.Delete(id); err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.hub.Broadcast(domain.Event{Type: domain.EventNoteDeleted, Data: map[string]string{"id": id}})
	s.writeJSON(w, http.StatusOK, okBody)
}

func (s *Server) listScheduled(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.scheduled.List())
}

func (s *Server) addScheduled(w http.ResponseWriter, r *http.Request) {
	var params repo.AddParams
	if !s.decodeJSON(w, r, &params) {
		return
	}

	item, err := s.scheduled.Add(params)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.hub.Broadcast(domain.Event{Type: domain.EventScheduledAdded, Data: item})
	s.writeJSON(w, http.StatusCreated, item)
}

func (s *Server) deleteScheduled(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if err := s.scheduled.Delete(id); err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.hub.Broadcast(domain.Event{Type: domain.EventScheduledDeleted, Data: map[string]string{"id": id}})
	s.writeJSON(w, http.StatusOK, okBody)
}

func (s *Server) getMetrics(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.metrics.Get())
}

func (s *Server) patchMetrics(w http.ResponseWriter, r *http.Request) {
	var patch domain.MetricsPatch
	if !s.decodeJSON(w, r, &patch) {
		return
	}

	metrics, err := s.metrics.Patch(patch)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.hub.Broadcast(domain.Event{Type: domain.EventMetricsUpdated, Data: metrics})
	s.writeJSON(w, http.StatusOK, okBody)
}

func (s *Server) getMood(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.mood.Get())
}

func (s *Server) setMood(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Mood string `json:"mood"`
	}
	if !s.decodeJSON(w, r, &body) {
		return
	}

	mood, err := s.mood.Set(body.Mood)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.hub.Broadcast(domain.Event{Type: domain.EventMoodUpdated, Data: mood})
	s.writeJSON(w, http.StatusOK, mood)
}

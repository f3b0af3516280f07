package server

import (
	"encoding/json"
	"net/http"
)

// okBody is the stock acknowledgement for mutations that return no record.
var okBody = map[string]bool{"ok": true}

// writeJSON serializes v with the given status. Encoding failures are
// logged and abandoned; headers are already on the wire at that point.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn().Err(err).Msg("response encode failed")
	}
}

// writeError serializes {"error": msg} with the given status.
func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}

// decodeJSON reads the request body into dst. On failure it writes a 400
// and reports false; the handler should return immediately.
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

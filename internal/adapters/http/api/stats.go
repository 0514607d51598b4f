package api

import (
	"encoding/json"
	"net/http"
)

// handleStats serves component statistics for monitoring.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats := s.deps.GetStats(r.Context())

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(stats); err != nil {
		s.log.Error(r.Context(), "failed to encode stats response")
	}
}

package api

import (
	"net/http"
)

func (s *Server) handleLLMStats(w http.ResponseWriter, r *http.Request) {
	if s.backend == nil || s.backend.Stats == nil {
		jsonError(w, "llm stats unavailable", http.StatusServiceUnavailable)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"model":       s.backend.Model,
		"stats":       s.backend.Stats.Snapshot(),
		"queue_depth": s.orchestrator.QueueDepth(),
	})
}

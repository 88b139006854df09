package api

import (
	"net/http"
)

func (s *Server) handleSearchStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"index_loaded": s.search.Loaded(),
		"records":      s.search.Records(),
		"stats":        s.search.Stats(),
	})
}

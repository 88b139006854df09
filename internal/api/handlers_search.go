package api

import (
	"errors"
	"net/http"

	"github.com/dgallion1/gridkit/internal/search"
)

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	results, err := s.search.Query(r.Context(), q)
	if err != nil {
		if errors.Is(err, search.ErrNoArtifact) {
			s.log.Warn("search unavailable", "error", err)
			jsonError(w, "search index unavailable", http.StatusServiceUnavailable)
			return
		}
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}

package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dgallion1/gridkit/internal/pipeline"
)

func (s *Server) handleReindex(w http.ResponseWriter, r *http.Request) {
	if s.orchestrator == nil {
		jsonError(w, "reindexing is not configured", http.StatusServiceUnavailable)
		return
	}

	job, err := s.orchestrator.Enqueue()
	if err != nil {
		if errors.Is(err, pipeline.ErrQueueFull) {
			jsonError(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	snap := job.Snapshot()
	writeJSON(w, http.StatusAccepted, map[string]any{
		"job_id":   snap.ID,
		"status":   snap.Status,
		"poll_url": fmt.Sprintf("/api/reindex/%s/status", snap.ID),
	})
}

func (s *Server) handleReindexStatus(w http.ResponseWriter, r *http.Request) {
	if s.orchestrator == nil {
		jsonError(w, "reindexing is not configured", http.StatusServiceUnavailable)
		return
	}
	job := s.orchestrator.GetJob(chi.URLParam(r, "jobID"))
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, job.Snapshot())
}

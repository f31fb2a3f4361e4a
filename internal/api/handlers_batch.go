package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/dgallion1/chatmark/internal/parser"
	"github.com/dgallion1/chatmark/internal/pipeline"
	"github.com/go-chi/chi/v5"
)

type batchRequest struct {
	Messages []string `json:"messages"`
	Dialect  string   `json:"dialect"`
}

func (s *Server) handleBatchRender(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if len(req.Messages) == 0 {
		jsonError(w, "at least one message is required", http.StatusBadRequest)
		return
	}
	dialect := parser.CanonicalDialect(req.Dialect)
	if dialect == "" {
		dialect = s.cfg.DefaultDialect
	}
	if !parser.IsSupportedDialect(dialect) {
		jsonError(w, fmt.Sprintf("unsupported dialect: %s", req.Dialect), http.StatusBadRequest)
		return
	}

	job, err := s.orchestrator.Submit(dialect, req.Messages)
	if err != nil {
		code := http.StatusInternalServerError
		if errors.Is(err, pipeline.ErrQueueFull) || errors.Is(err, pipeline.ErrStopped) {
			code = http.StatusServiceUnavailable
		}
		jsonError(w, err.Error(), code)
		return
	}

	snap := job.Snapshot()
	writeJSON(w, http.StatusAccepted, map[string]any{
		"job_id":       snap.ID,
		"status":       snap.Status,
		"content_hash": snap.ContentHash,
		"poll_url":     fmt.Sprintf("/api/render/batch/%s", snap.ID),
	})
}

func (s *Server) handleBatchStatus(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job := s.orchestrator.GetJob(jobID)
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, job.Snapshot())
}

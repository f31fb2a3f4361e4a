package api

import (
	"errors"
	"net/http"

	"github.com/dgallion1/chatmark/internal/doctree"
	"github.com/dgallion1/chatmark/internal/store"
	"github.com/go-chi/chi/v5"
)

// requireStore writes a 503 when persistence is disabled.
func (s *Server) requireStore(w http.ResponseWriter) bool {
	if s.store == nil {
		jsonError(w, "document store is disabled", http.StatusServiceUnavailable)
		return false
	}
	return true
}

// handleListDocuments lists the hashes of stored transcripts.
func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}
	hashes, err := s.store.Hashes()
	if err != nil {
		jsonError(w, "failed to list documents: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if hashes == nil {
		hashes = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"documents": hashes})
}

// handleGetDocument returns a stored transcript with every message parsed
// again in its recorded dialect.
func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}
	hash := chi.URLParam(r, "hash")
	rec, err := s.store.Get(hash)
	if errors.Is(err, store.ErrNotFound) {
		jsonError(w, "document not found", http.StatusNotFound)
		return
	}
	if err != nil {
		jsonError(w, "failed to read document: "+err.Error(), http.StatusInternalServerError)
		return
	}

	p, ok := s.parserFor(w, rec.Dialect)
	if !ok {
		return
	}
	docs := make([]doctree.Document, len(rec.Messages))
	for i, m := range rec.Messages {
		docs[i] = p.Parse(m)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"hash":       rec.Hash,
		"dialect":    rec.Dialect,
		"created_at": rec.CreatedAt,
		"messages":   rec.Messages,
		"documents":  docs,
	})
}

// handleDeleteDocument removes a stored transcript.
func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}
	hash := chi.URLParam(r, "hash")
	if ok, err := s.store.Has(hash); err != nil {
		jsonError(w, "failed to read document: "+err.Error(), http.StatusInternalServerError)
		return
	} else if !ok {
		jsonError(w, "document not found", http.StatusNotFound)
		return
	}
	if err := s.store.Delete(hash); err != nil {
		jsonError(w, "failed to delete document: "+err.Error(), http.StatusInternalServerError)
		return
	}
	s.log.Info("document deleted", "hash", hash)
	writeJSON(w, http.StatusOK, map[string]any{"deleted": hash})
}

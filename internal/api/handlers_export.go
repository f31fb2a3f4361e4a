package api

import (
	"bytes"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dgallion1/chatmark/internal/doctree"
)

const docxContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

type exportRequest struct {
	Messages []string `json:"messages"`
	Dialect  string   `json:"dialect"`
	Filename string   `json:"filename"`
}

// handleExportDOCX renders a transcript into a Word document attachment.
func (s *Server) handleExportDOCX(w http.ResponseWriter, r *http.Request) {
	var req exportRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if len(req.Messages) == 0 {
		jsonError(w, "at least one message is required", http.StatusBadRequest)
		return
	}
	p, ok := s.parserFor(w, req.Dialect)
	if !ok {
		return
	}

	start := time.Now()
	docs := make([]doctree.Document, len(req.Messages))
	for i, m := range req.Messages {
		docs[i] = p.Parse(m)
	}
	var buf bytes.Buffer
	if err := s.docx.Write(&buf, docs); err != nil {
		s.log.Error("docx export failed", "error", err)
		jsonError(w, "export failed", http.StatusInternalServerError)
		return
	}
	s.stats.Since("docx", start)

	filename := sanitizeFilename(req.Filename)
	if !strings.HasSuffix(strings.ToLower(filename), ".docx") {
		filename += ".docx"
	}
	w.Header().Set("Content-Type", docxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w)
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(strings.TrimSpace(name))
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	name = strings.ReplaceAll(name, `"`, "_")
	if name == "" || name == "." || name == "_" {
		name = "transcript"
	}
	return name
}

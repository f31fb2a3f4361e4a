package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dgallion1/chatmark/internal/cache"
	"github.com/dgallion1/chatmark/internal/doctree"
	"github.com/dgallion1/chatmark/internal/parser"
	"github.com/dgallion1/chatmark/internal/stream"
	"github.com/dustin/go-humanize"
)

type renderRequest struct {
	Content string `json:"content"`
	Dialect string `json:"dialect"`
	Format  string `json:"format"`
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	var req renderRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	format := strings.ToLower(req.Format)
	if format == "" {
		format = "tree"
	}
	if format != "tree" && format != "html" && format != "text" {
		jsonError(w, fmt.Sprintf("unsupported format: %s", req.Format), http.StatusBadRequest)
		return
	}

	p, ok := s.parserFor(w, req.Dialect)
	if !ok {
		return
	}

	start := time.Now()
	doc := p.Parse(req.Content)
	resp := map[string]any{
		"dialect":  p.Dialect,
		"hash":     cache.Key(p.Dialect, req.Content),
		"document": doc,
	}
	switch format {
	case "html":
		html, err := s.html.Render(doc)
		if err != nil {
			s.log.Error("html render failed", "error", err)
			jsonError(w, "render failed", http.StatusInternalServerError)
			return
		}
		resp["html"] = html
	case "text":
		resp["text"] = doc.PlainText()
	}
	s.stats.Since(format, start)

	writeJSON(w, http.StatusOK, resp)
}

// streamLine is one NDJSON line of a stream render. Exactly one of the
// optional fields is set, except on the final summary line.
type streamLine struct {
	Message    int                `json:"message"`
	Document   *doctree.Document  `json:"document,omitempty"`
	ToolCall   *stream.ToolCall   `json:"tool_call,omitempty"`
	ToolResult *stream.ToolResult `json:"tool_result,omitempty"`
	Finish     *stream.Finish     `json:"finish,omitempty"`
	Error      string             `json:"error,omitempty"`

	Done     bool `json:"done,omitempty"`
	Messages int  `json:"messages,omitempty"`
	Skipped  int  `json:"skipped,omitempty"`
}

// handleRenderStream re-renders a data stream as it is read, writing one
// document snapshot per text delta.
func (s *Server) handleRenderStream(w http.ResponseWriter, r *http.Request) {
	p, ok := s.parserFor(w, r.URL.Query().Get("dialect"))
	if !ok {
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)

	w.Header().Set("Content-Type", "application/x-ndjson")
	rc := http.NewResponseController(w)
	enc := json.NewEncoder(w)
	write := func(line streamLine) error {
		if err := enc.Encode(line); err != nil {
			return err
		}
		if err := rc.Flush(); err != nil && !errors.Is(err, http.ErrNotSupported) {
			return err
		}
		return nil
	}

	start := time.Now()
	tr, err := stream.Follow(r.Context(), r.Body, p, func(u stream.Update) error {
		line := streamLine{Message: u.Index, Document: u.Document}
		switch u.Part.Type {
		case stream.PartToolCall:
			line.ToolCall = u.Part.ToolCall
		case stream.PartToolResult:
			line.ToolResult = u.Part.ToolResult
		case stream.PartFinish:
			line.Finish = u.Part.Finish
		case stream.PartError:
			line.Error = u.Part.Text
		}
		return write(line)
	})
	s.stats.Since("stream", start)
	if err != nil {
		s.log.Warn("stream render stopped", "error", err)
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			write(streamLine{Error: "request body exceeds " + humanize.IBytes(uint64(maxErr.Limit))})
		}
		return
	}
	write(streamLine{Done: true, Messages: len(tr.Messages), Skipped: tr.Skipped})
}

// parserFor resolves a dialect name, writing a 400 when it is unknown.
func (s *Server) parserFor(w http.ResponseWriter, dialect string) (*cache.Parser, bool) {
	if parser.CanonicalDialect(dialect) == "" {
		dialect = s.cfg.DefaultDialect
	}
	p, err := s.docs.ForDialect(dialect)
	if errors.Is(err, parser.ErrUnknownDialect) {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return nil, false
	}
	if err != nil {
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return nil, false
	}
	return p, true
}

// decodeJSON reads a size-limited JSON body into v, writing the error
// response itself on failure.
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil {
		return true
	}
	var maxErr *http.MaxBytesError
	switch {
	case errors.As(err, &maxErr):
		jsonError(w, "request body exceeds "+humanize.IBytes(uint64(maxErr.Limit)), http.StatusRequestEntityTooLarge)
	case errors.Is(err, io.EOF):
		jsonError(w, "request body is empty", http.StatusBadRequest)
	default:
		jsonError(w, "invalid json: "+err.Error(), http.StatusBadRequest)
	}
	return false
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}

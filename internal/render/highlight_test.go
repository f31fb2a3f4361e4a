package render

import (
	"strings"
	"testing"
)

func TestLabel(t *testing.T) {
	tests := []struct{ in, want string }{
		{"", "text"},
		{"  ", "text"},
		{"go", "go"},
		{"javascript", "javascript"},
	}
	for _, tt := range tests {
		if got := Label(tt.in); got != tt.want {
			t.Errorf("Label(%q): expected %q, got %q", tt.in, tt.want, got)
		}
	}
}

func TestHighlighter_TokensPreserveSource(t *testing.T) {
	h := NewHighlighter("monokai")
	sources := map[string]string{
		"go":     "package main\n\nfunc main() {}",
		"python": "def f(x):\n    return x",
		"":       "just text",
		"nosuch": "unknown <lang>",
	}
	for lang, src := range sources {
		var sb strings.Builder
		for _, tok := range h.Tokens(lang, src) {
			sb.WriteString(tok.Value)
		}
		if sb.String() != src {
			t.Errorf("Tokens(%q): expected %q, got %q", lang, src, sb.String())
		}
	}
}

func TestHighlighter_Classes(t *testing.T) {
	var keyword bool
	for _, tok := range NewHighlighter("monokai").Tokens("go", "func main() {}") {
		if tok.Value == "func" && tok.Class != "" {
			keyword = true
		}
	}
	if !keyword {
		t.Error("expected func to carry a token class")
	}
}

func TestHighlighter_UnknownStyleFallsBack(t *testing.T) {
	h := NewHighlighter("no-such-style")
	if h.style == nil {
		t.Fatal("expected fallback style")
	}
}

func TestHighlighter_ANSI(t *testing.T) {
	h := NewHighlighter("monokai")
	out := h.ANSI("go", "func main() {}")
	if !strings.Contains(out, "\x1b[") {
		t.Errorf("expected escapes, got %q", out)
	}
	if got := h.ANSI("", "plain"); !strings.Contains(got, "plain") {
		t.Errorf("expected plain text kept, got %q", got)
	}
}

func TestHighlighter_Nil(t *testing.T) {
	var h *Highlighter
	toks := h.Tokens("go", "x := 1")
	if len(toks) != 1 || toks[0].Value != "x := 1" {
		t.Errorf("expected single plain token, got %#v", toks)
	}
}

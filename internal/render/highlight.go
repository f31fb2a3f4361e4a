package render

import (
	"fmt"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// DefaultLanguage labels code blocks that have no language tag.
const DefaultLanguage = "text"

// Token is one highlighted fragment of a code block.
type Token struct {
	Class string // short chroma class, e.g. "k" or "nf"; empty for plain text
	Value string
	Style chroma.StyleEntry
}

// Highlighter tokenizes code blocks by language. It is safe for concurrent
// use.
type Highlighter struct {
	style *chroma.Style
}

// NewHighlighter creates a highlighter with the named chroma style, falling
// back to chroma's default style when the name is unknown.
func NewHighlighter(styleName string) *Highlighter {
	style := styles.Get(styleName)
	if style == nil {
		style = styles.Fallback
	}
	return &Highlighter{style: style}
}

// Label returns the display label for a code block language.
func Label(language string) string {
	if strings.TrimSpace(language) == "" {
		return DefaultLanguage
	}
	return language
}

// Tokens splits code into highlighted tokens. Unknown languages produce a
// single plain token.
func (h *Highlighter) Tokens(language, code string) []Token {
	lexer := lexers.Get(Label(language))
	if lexer == nil || h == nil {
		return []Token{{Value: code}}
	}
	lexer = chroma.Coalesce(lexer)

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return []Token{{Value: code}}
	}

	var out []Token
	for token := iterator(); token != chroma.EOF; token = iterator() {
		if token.Value == "" {
			continue
		}
		out = append(out, Token{
			Class: chroma.StandardTypes[token.Type],
			Value: token.Value,
			Style: h.style.Get(token.Type),
		})
	}
	// Lexers may append a newline the source did not have.
	if n := len(out); n > 0 && !strings.HasSuffix(code, "\n") {
		out[n-1].Value = strings.TrimSuffix(out[n-1].Value, "\n")
		if out[n-1].Value == "" {
			out = out[:n-1]
		}
	}
	return out
}

// ANSI renders code with true-color escape sequences.
func (h *Highlighter) ANSI(language, code string) string {
	var sb strings.Builder
	for _, tok := range h.Tokens(language, code) {
		var codes []string
		if tok.Style.Colour.IsSet() {
			codes = append(codes, fmt.Sprintf("38;2;%d;%d;%d", tok.Style.Colour.Red(), tok.Style.Colour.Green(), tok.Style.Colour.Blue()))
		}
		if tok.Style.Bold == chroma.Yes {
			codes = append(codes, "1")
		}
		if tok.Style.Italic == chroma.Yes {
			codes = append(codes, "3")
		}
		if len(codes) == 0 {
			sb.WriteString(tok.Value)
			continue
		}
		// Keep escapes off line breaks so each line resets cleanly.
		lines := strings.Split(tok.Value, "\n")
		for i, line := range lines {
			if i > 0 {
				sb.WriteByte('\n')
			}
			if line != "" {
				fmt.Fprintf(&sb, "\x1b[%sm%s\x1b[0m", strings.Join(codes, ";"), line)
			}
		}
	}
	return sb.String()
}

package parser

import (
	"regexp"
	"strings"

	"github.com/dgallion1/chatmark/internal/doctree"
)

// inlineTriggers are the only characters that can start inline formatting.
const inlineTriggers = "[*_~`|"

var (
	linkRegexp       = regexp.MustCompile(`\[([^\]]+)\]\(([^)\s]+)\)`)
	boldRegexp       = regexp.MustCompile(`\*\*(.+?)\*\*`)
	singleStarRegexp = regexp.MustCompile(`^\*([^*]+)\*$`)
	italicRegexp     = regexp.MustCompile(`_(.+?)_`)
	strikeRegexp     = regexp.MustCompile(`~~(.+?)~~`)
	codeSpanRegexp   = regexp.MustCompile("`([^`]+)`")
	spoilerRegexp    = regexp.MustCompile(`\|\|(.+?)\|\|`)

	// Formatting characters inside a tag, as in class="a_b_c", never open or
	// close a match. Tags themselves stay literal text.
	htmlTagRegexp = regexp.MustCompile(`</?[A-Za-z][A-Za-z0-9-]*(?:\s[^<>]*)?/?>`)
)

// span is a fragment of the line being rewritten. Only unresolved plain
// text is visible to later passes.
type span struct {
	node doctree.Inline
}

func (s span) text() (string, bool) {
	t, ok := s.node.(doctree.PlainText)
	return t.Value, ok
}

// ParseInline converts one logical span of text into inline nodes. Links,
// bold, italic, strikethrough, code and spoilers are resolved in that order,
// each pass rewriting only the plain text left by earlier passes. Matched
// content is parsed recursively, except for code spans.
func ParseInline(text string) []doctree.Inline {
	if !strings.ContainsAny(text, inlineTriggers) {
		return []doctree.Inline{doctree.PlainText{Value: text}}
	}

	spans := []span{{node: doctree.PlainText{Value: text}}}
	spans = rewrite(spans, linkRegexp, func(m []string) doctree.Inline {
		return doctree.Link{Href: m[2], Children: ParseInline(m[1])}
	})
	spans = rewriteBold(spans)
	spans = rewrite(spans, italicRegexp, func(m []string) doctree.Inline {
		return doctree.Italic{Children: ParseInline(m[1])}
	})
	spans = rewrite(spans, strikeRegexp, func(m []string) doctree.Inline {
		return doctree.Strikethrough{Children: ParseInline(m[1])}
	})
	spans = rewrite(spans, codeSpanRegexp, func(m []string) doctree.Inline {
		return doctree.InlineCode{Value: m[1]}
	})
	spans = rewrite(spans, spoilerRegexp, func(m []string) doctree.Inline {
		return doctree.Spoiler{Children: ParseInline(m[1])}
	})
	return flatten(spans)
}

// maskTags blanks formatting characters inside HTML tags so patterns can
// match across a tag but never start or end inside one. The result has the
// same byte offsets as text.
func maskTags(text string) string {
	if !strings.Contains(text, "<") {
		return text
	}
	locs := htmlTagRegexp.FindAllStringIndex(text, -1)
	if locs == nil {
		return text
	}
	b := []byte(text)
	for _, loc := range locs {
		for i := loc[0]; i < loc[1]; i++ {
			if strings.IndexByte(inlineTriggers, b[i]) >= 0 {
				b[i] = 0
			}
		}
	}
	return string(b)
}

// rewrite applies one pass: every non-overlapping match in each plain text
// span, left to right, is replaced by the node build returns.
func rewrite(spans []span, re *regexp.Regexp, build func(m []string) doctree.Inline) []span {
	out := make([]span, 0, len(spans))
	for _, s := range spans {
		text, ok := s.text()
		if !ok {
			out = append(out, s)
			continue
		}
		out = splitMatches(out, text, re, build)
	}
	return out
}

func splitMatches(out []span, text string, re *regexp.Regexp, build func(m []string) doctree.Inline) []span {
	locs := re.FindAllStringSubmatchIndex(maskTags(text), -1)
	if locs == nil {
		return append(out, span{node: doctree.PlainText{Value: text}})
	}
	last := 0
	for _, loc := range locs {
		if loc[0] > last {
			out = append(out, span{node: doctree.PlainText{Value: text[last:loc[0]]}})
		}
		groups := make([]string, len(loc)/2)
		for g := range groups {
			if loc[2*g] >= 0 {
				groups[g] = text[loc[2*g]:loc[2*g+1]]
			}
		}
		out = append(out, span{node: build(groups)})
		last = loc[1]
	}
	if last < len(text) {
		out = append(out, span{node: doctree.PlainText{Value: text[last:]}})
	}
	return out
}

// rewriteBold resolves "**x**". When no such match exists anywhere in the
// line, a fragment wrapped entirely in single asterisks ("*x*") is bold too.
func rewriteBold(spans []span) []span {
	found := false
	for _, s := range spans {
		if text, ok := s.text(); ok && boldRegexp.MatchString(maskTags(text)) {
			found = true
			break
		}
	}
	if found {
		return rewrite(spans, boldRegexp, func(m []string) doctree.Inline {
			return doctree.Bold{Children: ParseInline(m[1])}
		})
	}
	return rewrite(spans, singleStarRegexp, func(m []string) doctree.Inline {
		return doctree.Bold{Children: ParseInline(m[1])}
	})
}

// flatten unwraps spans and merges neighbouring plain text.
func flatten(spans []span) []doctree.Inline {
	out := make([]doctree.Inline, 0, len(spans))
	for _, s := range spans {
		t, ok := s.node.(doctree.PlainText)
		if !ok {
			out = append(out, s.node)
			continue
		}
		if t.Value == "" {
			continue
		}
		if n := len(out); n > 0 {
			if prev, ok := out[n-1].(doctree.PlainText); ok {
				out[n-1] = doctree.PlainText{Value: prev.Value + t.Value}
				continue
			}
		}
		out = append(out, t)
	}
	if len(out) == 0 {
		out = append(out, doctree.PlainText{Value: ""})
	}
	return out
}

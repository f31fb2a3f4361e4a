package parser

import (
	"regexp"
	"strings"

	"github.com/dgallion1/chatmark/internal/doctree"
)

// Blockquotes nested deeper than this are flattened into a paragraph.
const maxQuoteDepth = 32

// An opening fence starts a line and may carry a language tag; the body runs
// to the next fence. A fence with no closing marker does not match.
var codeFenceRegexp = regexp.MustCompile("(?ms)^[ \t]*```([^`\n]*)\n(.*?)```")

// ParseBlocks parses text into block nodes. Fenced code blocks are
// extracted first and never reinterpreted; the text between them is
// classified line by line.
func ParseBlocks(text string) []doctree.Block {
	return parseBlocks(text, 0)
}

func parseBlocks(text string, depth int) []doctree.Block {
	var blocks []doctree.Block
	last := 0
	for _, m := range codeFenceRegexp.FindAllStringSubmatchIndex(text, -1) {
		blocks = append(blocks, parseSegment(text[last:m[0]], depth)...)
		blocks = append(blocks, doctree.CodeBlock{
			Language: strings.TrimSpace(text[m[2]:m[3]]),
			Code:     trimFenceBody(text[m[4]:m[5]]),
		})
		last = m[1]
	}
	return append(blocks, parseSegment(text[last:], depth)...)
}

// trimFenceBody drops the newline before the closing fence and a single
// blank line at either end.
func trimFenceBody(code string) string {
	code = strings.TrimSuffix(code, "\n")
	code = strings.TrimPrefix(code, "\n")
	return strings.TrimSuffix(code, "\n")
}

func parseSegment(segment string, depth int) []doctree.Block {
	if isBlankLine(segment) {
		return nil
	}
	lines := strings.Split(segment, "\n")
	var blocks []doctree.Block
	i := 0
	for i < len(lines) {
		line := lines[i]
		trimmed := strings.TrimSpace(line)

		if trimmed == "" {
			i++
			continue
		}

		if m := headingRegexp.FindStringSubmatch(trimmed); m != nil {
			blocks = append(blocks, doctree.Heading{
				Level:    len(m[1]),
				Children: ParseInline(strings.TrimSpace(m[2])),
			})
			i++
			continue
		}

		if hrRegexp.MatchString(trimmed) {
			blocks = append(blocks, doctree.HorizontalRule{})
			i++
			continue
		}

		if strings.HasPrefix(trimmed, ">") {
			quote, next := parseBlockquote(lines, i, depth)
			blocks = append(blocks, quote)
			i = next
			continue
		}

		if bulletRegexp.MatchString(line) {
			list, next := parseList(lines, i, false)
			blocks = append(blocks, list)
			i = next
			continue
		}

		if orderedRegexp.MatchString(line) {
			list, next := parseList(lines, i, true)
			blocks = append(blocks, list)
			i = next
			continue
		}

		if startsWellFormedTable(lines, i) {
			rows, next := collectTable(lines, i)
			if table, ok := ParseTable(rows, true); ok {
				blocks = append(blocks, table)
			} else {
				blocks = append(blocks, lineParagraphs(rows)...)
			}
			i = next
			continue
		}

		if startsMalformedTable(lines, i) {
			rows, next := collectMalformed(lines, i)
			blocks = append(blocks, lineParagraphs(rows)...)
			i = next
			continue
		}

		para, next := parseParagraph(lines, i)
		blocks = append(blocks, para)
		i = next
	}
	return blocks
}

// parseBlockquote strips the ">" marker from a run of quoted lines and
// parses the result as a nested document.
func parseBlockquote(lines []string, start, depth int) (doctree.Block, int) {
	var body []string
	i := start
	for i < len(lines) {
		trimmed := strings.TrimSpace(lines[i])
		if !strings.HasPrefix(trimmed, ">") {
			break
		}
		stripped := strings.TrimPrefix(trimmed, ">")
		stripped = strings.TrimPrefix(stripped, " ")
		body = append(body, stripped)
		i++
	}
	text := strings.Join(body, "\n")
	if depth+1 >= maxQuoteDepth {
		return doctree.Blockquote{Children: []doctree.Block{
			doctree.Paragraph{Children: ParseInline(joinLines(body))},
		}}, i
	}
	return doctree.Blockquote{Children: parseBlocks(text, depth+1)}, i
}

// parseParagraph joins lines until a blank line or the start of another
// block. The first line is always consumed.
func parseParagraph(lines []string, start int) (doctree.Paragraph, int) {
	parts := []string{lines[start]}
	i := start + 1
	for i < len(lines) && !isBlankLine(lines[i]) && !startsBlock(lines, i) {
		parts = append(parts, lines[i])
		i++
	}
	return doctree.Paragraph{Children: ParseInline(joinLines(parts))}, i
}

func joinLines(lines []string) string {
	parts := make([]string, 0, len(lines))
	for _, l := range lines {
		if t := strings.TrimSpace(l); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}

// lineParagraphs renders each non-blank line as its own paragraph.
func lineParagraphs(lines []string) []doctree.Block {
	var out []doctree.Block
	for _, l := range lines {
		t := strings.TrimSpace(l)
		if t == "" {
			continue
		}
		out = append(out, doctree.Paragraph{Children: ParseInline(t)})
	}
	return out
}

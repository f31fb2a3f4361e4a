package parser

import (
	"strings"

	"github.com/dgallion1/chatmark/internal/doctree"
)

// ParseTable parses header, separator and body lines into a table. It
// returns false when the separator is invalid, the header has no cells, or a
// body row has no cells; callers then render the lines as paragraphs.
//
// Only the well-formed path parses structure. A malformed candidate is never
// parsed, so ParseTable returns false for it.
func ParseTable(lines []string, wellFormed bool) (doctree.Table, bool) {
	if !wellFormed || len(lines) < 2 || !isSeparatorRow(lines[1]) {
		return doctree.Table{}, false
	}
	header := splitRow(lines[0])
	if len(header) == 0 {
		return doctree.Table{}, false
	}
	body := lines[2:]
	if len(body) > maxTableRows {
		body = body[:maxTableRows]
	}

	table := doctree.Table{Headers: parseCells(header)}
	for _, line := range body {
		cells := splitRow(line)
		if len(cells) == 0 {
			return doctree.Table{}, false
		}
		table.Rows = append(table.Rows, parseCells(cells))
	}
	return table, true
}

// splitRow splits a row on pipes, dropping the empty cells produced by a
// leading and a trailing pipe.
func splitRow(line string) []string {
	parts := strings.Split(strings.TrimSpace(line), "|")
	if len(parts) > 0 && strings.TrimSpace(parts[0]) == "" {
		parts = parts[1:]
	}
	if n := len(parts); n > 0 && strings.TrimSpace(parts[n-1]) == "" {
		parts = parts[:n-1]
	}
	cells := make([]string, len(parts))
	for i, p := range parts {
		cells[i] = strings.TrimSpace(p)
	}
	return cells
}

func parseCells(cells []string) [][]doctree.Inline {
	out := make([][]doctree.Inline, len(cells))
	for i, c := range cells {
		out[i] = ParseInline(c)
	}
	return out
}

// collectTable gathers the header, the separator and up to maxTableRows body
// rows starting at lines[start].
func collectTable(lines []string, start int) ([]string, int) {
	i := start + 2
	for i < len(lines) && i-start-2 < maxTableRows && hasPipe(lines[i]) && !isBlankLine(lines[i]) {
		i++
	}
	return lines[start:i], i
}

// collectMalformed takes the first line of a malformed table candidate and
// the second one as well unless it opens a heading, rule, blockquote, list
// or well-formed table. Classification resumes after the lines taken.
func collectMalformed(lines []string, start int) ([]string, int) {
	i := start + 1
	if i < len(lines) && !opensLineBlock(lines[i]) && !startsWellFormedTable(lines, i) {
		i++
	}
	return lines[start:i], i
}

package parser

import (
	"regexp"
	"strings"
)

// maxTableRows bounds the work done on adversarial pipe-heavy input. A
// malformed table candidate never takes more than two lines.
const maxTableRows = 50

var (
	headingRegexp = regexp.MustCompile(`^(#{1,6})\s+(.+)$`)
	hrRegexp      = regexp.MustCompile(`^(?:\*{3,}|-{3,}|_{3,})$`)
	bulletRegexp  = regexp.MustCompile(`^\s*[-*+]\s+(.*)$`)
	orderedRegexp = regexp.MustCompile(`^\s*\d+\.\s+(.*)$`)
)

// Normalize turns literal "\n" escapes into newlines and CRLF (or any run of
// carriage returns before a newline) into LF. Normalize is idempotent.
func Normalize(raw string) string {
	s := strings.ReplaceAll(raw, `\n`, "\n")
	if !strings.Contains(s, "\r\n") {
		return s
	}
	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\r' {
			j := i
			for j < len(s) && s[j] == '\r' {
				j++
			}
			if j < len(s) && s[j] == '\n' {
				i = j - 1
				continue
			}
		}
		sb.WriteByte(s[i])
	}
	return sb.String()
}

func isBlankLine(line string) bool {
	return strings.TrimSpace(line) == ""
}

// isTableRow reports whether a line looks like a pipe table row: it starts
// with "|" and has at least two pipes.
func isTableRow(line string) bool {
	trimmed := strings.TrimSpace(line)
	return strings.HasPrefix(trimmed, "|") && strings.Count(trimmed, "|") >= 2
}

// isSeparatorRow reports whether a line can serve as a table's header
// separator.
func isSeparatorRow(line string) bool {
	return strings.Contains(line, "|") && strings.Contains(line, "-")
}

func hasPipe(line string) bool {
	return strings.Contains(line, "|")
}

// startsWellFormedTable reports whether lines[i] and lines[i+1] form the
// header and separator of a table.
func startsWellFormedTable(lines []string, i int) bool {
	return i+1 < len(lines) && isTableRow(lines[i]) && isSeparatorRow(lines[i+1])
}

// startsMalformedTable reports whether lines[i] and lines[i+1] both carry
// pipes without forming a table header.
func startsMalformedTable(lines []string, i int) bool {
	return i+1 < len(lines) && hasPipe(lines[i]) && hasPipe(lines[i+1]) &&
		!startsWellFormedTable(lines, i)
}

// startsBlock reports whether lines[i] opens any block other than a
// paragraph. Paragraph collection stops before such a line.
func startsBlock(lines []string, i int) bool {
	if isBlankLine(lines[i]) {
		return false
	}
	return opensLineBlock(lines[i]) || startsWellFormedTable(lines, i) || startsMalformedTable(lines, i)
}

// opensLineBlock reports whether line starts a heading, rule, blockquote or
// list item.
func opensLineBlock(line string) bool {
	trimmed := strings.TrimSpace(line)
	switch {
	case trimmed == "":
		return false
	case headingRegexp.MatchString(trimmed), hrRegexp.MatchString(trimmed):
		return true
	case strings.HasPrefix(trimmed, ">"):
		return true
	}
	return bulletRegexp.MatchString(line) || orderedRegexp.MatchString(line)
}

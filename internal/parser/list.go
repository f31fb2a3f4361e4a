package parser

import (
	"regexp"

	"github.com/dgallion1/chatmark/internal/doctree"
)

// parseList collects the contiguous run of lines starting at lines[start]
// that match the item marker, and returns the list and the index after it.
func parseList(lines []string, start int, ordered bool) (doctree.List, int) {
	re := bulletRegexp
	if ordered {
		re = orderedRegexp
	}
	list := doctree.List{Ordered: ordered}
	i := start
	for i < len(lines) {
		content, ok := listItem(re, lines[i])
		if !ok {
			break
		}
		list.Items = append(list.Items, ParseInline(content))
		i++
	}
	return list, i
}

func listItem(re *regexp.Regexp, line string) (string, bool) {
	m := re.FindStringSubmatch(line)
	if m == nil {
		return "", false
	}
	return m[1], true
}

package parser

import (
	"strings"

	"github.com/dgallion1/chatmark/internal/doctree"
)

var semanticMarkers = []struct {
	prefix string
	kind   doctree.SemanticKind
}{
	{"*Memory*:", doctree.Memory},
	{"*Next Goal*:", doctree.NextGoal},
	{"*Previous Goal*:", doctree.PreviousGoal},
}

// DetectSemantic recognizes agent status messages. The text must start with
// one of the exact markers; the remainder is parsed as ordinary markdown.
func DetectSemantic(text string) (*doctree.SemanticBlock, bool) {
	for _, m := range semanticMarkers {
		if !strings.HasPrefix(text, m.prefix) {
			continue
		}
		body := strings.TrimSpace(text[len(m.prefix):])
		block := &doctree.SemanticBlock{Kind: m.kind}
		if body == "" {
			block.Body = []doctree.Block{doctree.EmptyPlaceholder}
		} else {
			block.Body = ParseBlocks(body)
		}
		return block, true
	}
	return nil, false
}

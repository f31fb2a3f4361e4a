package doctree

import "strings"

// InlineText flattens an inline sequence into its visible text. Formatting
// markers are dropped; link labels and spoiler contents are kept.
func InlineText(nodes []Inline) string {
	var sb strings.Builder
	writeInlineText(&sb, nodes)
	return sb.String()
}

func writeInlineText(sb *strings.Builder, nodes []Inline) {
	for _, n := range nodes {
		switch n := n.(type) {
		case PlainText:
			sb.WriteString(n.Value)
		case InlineCode:
			sb.WriteString(n.Value)
		case Link:
			writeInlineText(sb, n.Children)
		case Bold:
			writeInlineText(sb, n.Children)
		case Italic:
			writeInlineText(sb, n.Children)
		case Strikethrough:
			writeInlineText(sb, n.Children)
		case Spoiler:
			writeInlineText(sb, n.Children)
		}
	}
}

// BlocksText flattens blocks into plain text, one block per paragraph.
func BlocksText(blocks []Block) string {
	parts := make([]string, 0, len(blocks))
	for _, b := range blocks {
		if t := BlockText(b); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, "\n\n")
}

// BlockText flattens a single block into plain text.
func BlockText(b Block) string {
	switch b := b.(type) {
	case Text:
		return b.Value
	case Heading:
		return InlineText(b.Children)
	case HorizontalRule:
		return ""
	case Blockquote:
		return BlocksText(b.Children)
	case List:
		lines := make([]string, len(b.Items))
		for i, item := range b.Items {
			lines[i] = InlineText(item)
		}
		return strings.Join(lines, "\n")
	case Table:
		var lines []string
		lines = append(lines, cellsText(b.Headers))
		for _, row := range b.Rows {
			lines = append(lines, cellsText(row))
		}
		return strings.Join(lines, "\n")
	case CodeBlock:
		return b.Code
	case Paragraph:
		return InlineText(b.Children)
	}
	return ""
}

func cellsText(cells [][]Inline) string {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = InlineText(c)
	}
	return strings.Join(out, "\t")
}

// PlainText flattens the whole document. A semantic block is rendered as its
// title followed by the body.
func (d Document) PlainText() string {
	if d.Semantic != nil {
		return d.Semantic.Title() + ":\n" + BlocksText(d.Semantic.Body)
	}
	return BlocksText(d.Blocks)
}

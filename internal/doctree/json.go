package doctree

import "encoding/json"

// The JSON form tags every node with its Kind so hosts in other languages
// can switch on "type" without knowing Go type names.

func (d Document) MarshalJSON() ([]byte, error) {
	out := map[string]any{}
	if d.Semantic != nil {
		out["semantic"] = map[string]any{
			"kind": d.Semantic.Kind,
			"body": blocksJSON(d.Semantic.Body),
		}
	} else {
		out["blocks"] = blocksJSON(d.Blocks)
	}
	return json.Marshal(out)
}

func blocksJSON(blocks []Block) []map[string]any {
	out := make([]map[string]any, 0, len(blocks))
	for _, b := range blocks {
		out = append(out, blockJSON(b))
	}
	return out
}

func blockJSON(b Block) map[string]any {
	m := map[string]any{"type": b.Kind()}
	switch b := b.(type) {
	case Text:
		m["text"] = b.Value
	case Heading:
		m["level"] = b.Level
		m["children"] = inlinesJSON(b.Children)
	case Blockquote:
		m["children"] = blocksJSON(b.Children)
	case List:
		m["ordered"] = b.Ordered
		items := make([][]map[string]any, len(b.Items))
		for i, item := range b.Items {
			items[i] = inlinesJSON(item)
		}
		m["items"] = items
	case Table:
		m["headers"] = cellsJSON(b.Headers)
		rows := make([][][]map[string]any, len(b.Rows))
		for i, row := range b.Rows {
			rows[i] = cellsJSON(row)
		}
		m["rows"] = rows
	case CodeBlock:
		if b.Language != "" {
			m["language"] = b.Language
		}
		m["code"] = b.Code
	case Paragraph:
		m["children"] = inlinesJSON(b.Children)
	}
	return m
}

func cellsJSON(cells [][]Inline) [][]map[string]any {
	out := make([][]map[string]any, len(cells))
	for i, c := range cells {
		out[i] = inlinesJSON(c)
	}
	return out
}

func inlinesJSON(nodes []Inline) []map[string]any {
	out := make([]map[string]any, 0, len(nodes))
	for _, n := range nodes {
		m := map[string]any{"type": n.Kind()}
		switch n := n.(type) {
		case PlainText:
			m["text"] = n.Value
		case InlineCode:
			m["text"] = n.Value
		case Link:
			m["href"] = n.Href
			m["children"] = inlinesJSON(n.Children)
		case Bold:
			m["children"] = inlinesJSON(n.Children)
		case Italic:
			m["children"] = inlinesJSON(n.Children)
		case Strikethrough:
			m["children"] = inlinesJSON(n.Children)
		case Spoiler:
			m["children"] = inlinesJSON(n.Children)
		}
		out = append(out, m)
	}
	return out
}

package parser

import (
	"bytes"
	"strings"

	"github.com/dgallion1/chatmark/internal/doctree"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

// CommonMarkParser parses strict CommonMark (plus GFM tables and
// strikethrough) with goldmark and maps the result onto the same tree as the
// chat dialect. It has no spoilers, semantic blocks or table fallbacks.
type CommonMarkParser struct {
	md goldmark.Markdown
}

func NewCommonMarkParser() *CommonMarkParser {
	return &CommonMarkParser{
		md: goldmark.New(goldmark.WithExtensions(extension.Table, extension.Strikethrough)),
	}
}

func (p *CommonMarkParser) Parse(content string) doctree.Document {
	src := []byte(Normalize(content))
	root := p.md.Parser().Parse(text.NewReader(src))
	return doctree.Document{Blocks: convertBlocks(root, src)}
}

func convertBlocks(parent ast.Node, src []byte) []doctree.Block {
	var blocks []doctree.Block
	for n := parent.FirstChild(); n != nil; n = n.NextSibling() {
		if b := convertBlock(n, src); b != nil {
			blocks = append(blocks, b)
		}
	}
	return blocks
}

func convertBlock(n ast.Node, src []byte) doctree.Block {
	switch node := n.(type) {
	case *ast.Heading:
		return doctree.Heading{Level: node.Level, Children: convertInlines(node, src)}
	case *ast.ThematicBreak:
		return doctree.HorizontalRule{}
	case *ast.Blockquote:
		return doctree.Blockquote{Children: convertBlocks(node, src)}
	case *ast.List:
		list := doctree.List{Ordered: node.IsOrdered()}
		for item := node.FirstChild(); item != nil; item = item.NextSibling() {
			list.Items = append(list.Items, listItemInlines(item, src))
		}
		return list
	case *ast.FencedCodeBlock:
		return doctree.CodeBlock{
			Language: string(node.Language(src)),
			Code:     strings.TrimSuffix(blockLines(node, src), "\n"),
		}
	case *ast.CodeBlock:
		return doctree.CodeBlock{Code: strings.TrimSuffix(blockLines(node, src), "\n")}
	case *ast.HTMLBlock:
		return doctree.Text{Value: strings.TrimSuffix(blockLines(node, src), "\n")}
	case *ast.Paragraph, *ast.TextBlock:
		return doctree.Paragraph{Children: convertInlines(node, src)}
	case *east.Table:
		return convertTable(node, src)
	}
	return nil
}

// listItemInlines flattens the text blocks of a list item into one inline
// sequence; nested block structure is not represented in list items.
func listItemInlines(item ast.Node, src []byte) []doctree.Inline {
	var out []doctree.Inline
	for c := item.FirstChild(); c != nil; c = c.NextSibling() {
		switch c.(type) {
		case *ast.Paragraph, *ast.TextBlock:
			if len(out) > 0 {
				out = append(out, doctree.PlainText{Value: " "})
			}
			out = append(out, convertInlines(c, src)...)
		}
	}
	return mergeText(out)
}

func convertTable(t *east.Table, src []byte) doctree.Table {
	var table doctree.Table
	for row := t.FirstChild(); row != nil; row = row.NextSibling() {
		var cells [][]doctree.Inline
		for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
			cells = append(cells, convertInlines(cell, src))
		}
		if _, ok := row.(*east.TableHeader); ok {
			table.Headers = cells
		} else {
			table.Rows = append(table.Rows, cells)
		}
	}
	return table
}

func convertInlines(parent ast.Node, src []byte) []doctree.Inline {
	var out []doctree.Inline
	for c := parent.FirstChild(); c != nil; c = c.NextSibling() {
		out = append(out, convertInline(c, src)...)
	}
	return mergeText(out)
}

func convertInline(n ast.Node, src []byte) []doctree.Inline {
	switch node := n.(type) {
	case *ast.Text:
		value := string(node.Segment.Value(src))
		if node.SoftLineBreak() || node.HardLineBreak() {
			value += " "
		}
		return []doctree.Inline{doctree.PlainText{Value: value}}
	case *ast.String:
		return []doctree.Inline{doctree.PlainText{Value: string(node.Value)}}
	case *ast.CodeSpan:
		var buf bytes.Buffer
		for c := node.FirstChild(); c != nil; c = c.NextSibling() {
			if t, ok := c.(*ast.Text); ok {
				buf.Write(t.Segment.Value(src))
			}
		}
		return []doctree.Inline{doctree.InlineCode{Value: buf.String()}}
	case *ast.Emphasis:
		children := convertInlines(node, src)
		if node.Level >= 2 {
			return []doctree.Inline{doctree.Bold{Children: children}}
		}
		return []doctree.Inline{doctree.Italic{Children: children}}
	case *east.Strikethrough:
		return []doctree.Inline{doctree.Strikethrough{Children: convertInlines(node, src)}}
	case *ast.Link:
		return []doctree.Inline{doctree.Link{Href: string(node.Destination), Children: convertInlines(node, src)}}
	case *ast.AutoLink:
		url := string(node.URL(src))
		return []doctree.Inline{doctree.Link{Href: url, Children: []doctree.Inline{doctree.PlainText{Value: string(node.Label(src))}}}}
	case *ast.Image:
		return convertInlines(node, src)
	case *ast.RawHTML:
		var buf bytes.Buffer
		for i := 0; i < node.Segments.Len(); i++ {
			seg := node.Segments.At(i)
			buf.Write(seg.Value(src))
		}
		return []doctree.Inline{doctree.PlainText{Value: buf.String()}}
	}
	return convertInlines(n, src)
}

func blockLines(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		buf.Write(line.Value(src))
	}
	return buf.String()
}

func mergeText(nodes []doctree.Inline) []doctree.Inline {
	out := make([]doctree.Inline, 0, len(nodes))
	for _, n := range nodes {
		t, ok := n.(doctree.PlainText)
		if !ok {
			out = append(out, n)
			continue
		}
		if k := len(out); k > 0 {
			if prev, ok := out[k-1].(doctree.PlainText); ok {
				out[k-1] = doctree.PlainText{Value: prev.Value + t.Value}
				continue
			}
		}
		out = append(out, t)
	}
	return out
}

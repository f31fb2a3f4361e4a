// Package render turns document trees into output for a host: HTML for web
// clients, ANSI text for terminals and DOCX for export.
package render

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/dgallion1/chatmark/internal/doctree"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// HTMLRenderer renders documents as HTML fragments. Text is always escaped,
// so HTML embedded in a message is displayed literally.
type HTMLRenderer struct {
	Highlighter *Highlighter
}

func NewHTMLRenderer(h *Highlighter) *HTMLRenderer {
	return &HTMLRenderer{Highlighter: h}
}

// Render serializes a document to an HTML fragment.
func (r *HTMLRenderer) Render(doc doctree.Document) (string, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, r.Node(doc)); err != nil {
		return "", fmt.Errorf("render html: %w", err)
	}
	return buf.String(), nil
}

// Node builds the HTML node tree for a document, rooted at a
// <div class="chatmark">.
func (r *HTMLRenderer) Node(doc doctree.Document) *html.Node {
	root := element(atom.Div, "class", "chatmark")
	if sb := doc.Semantic; sb != nil {
		kind := strings.ToLower(strings.ReplaceAll(string(sb.Kind), " ", "-"))
		box := element(atom.Div, "class", "semantic-block semantic-"+kind)
		title := element(atom.Div, "class", "semantic-title")
		title.AppendChild(textNode(sb.Title()))
		body := element(atom.Div, "class", "semantic-body")
		if sb.IsEmpty() {
			body.Attr = append(body.Attr, html.Attribute{Key: "data-empty", Val: "true"})
		}
		r.appendBlocks(body, sb.Body)
		box.AppendChild(title)
		box.AppendChild(body)
		root.AppendChild(box)
		return root
	}
	r.appendBlocks(root, doc.Blocks)
	return root
}

func (r *HTMLRenderer) appendBlocks(parent *html.Node, blocks []doctree.Block) {
	for _, b := range blocks {
		parent.AppendChild(r.block(b))
	}
}

func (r *HTMLRenderer) block(b doctree.Block) *html.Node {
	switch b := b.(type) {
	case doctree.Text:
		p := element(atom.P, "class", "text")
		p.AppendChild(textNode(b.Value))
		return p
	case doctree.Heading:
		level := min(max(b.Level, 1), 6)
		tag := atom.Lookup([]byte("h" + strconv.Itoa(level)))
		h := element(tag, "class", "heading text-"+doctree.HeadingSize(level))
		appendInlines(h, b.Children)
		return h
	case doctree.HorizontalRule:
		return element(atom.Hr)
	case doctree.Blockquote:
		q := element(atom.Blockquote)
		r.appendBlocks(q, b.Children)
		return q
	case doctree.List:
		tag := atom.Ul
		if b.Ordered {
			tag = atom.Ol
		}
		list := element(tag)
		for _, item := range b.Items {
			li := element(atom.Li)
			appendInlines(li, item)
			list.AppendChild(li)
		}
		return list
	case doctree.Table:
		return tableNode(b)
	case doctree.CodeBlock:
		return r.codeBlock(b)
	case doctree.Paragraph:
		p := element(atom.P)
		appendInlines(p, b.Children)
		return p
	}
	return textNode("")
}

func tableNode(t doctree.Table) *html.Node {
	table := element(atom.Table)
	thead := element(atom.Thead)
	headRow := element(atom.Tr)
	for _, cell := range t.Headers {
		th := element(atom.Th)
		appendInlines(th, cell)
		headRow.AppendChild(th)
	}
	thead.AppendChild(headRow)
	table.AppendChild(thead)

	tbody := element(atom.Tbody)
	for _, row := range t.Rows {
		tr := element(atom.Tr)
		for _, cell := range row {
			td := element(atom.Td)
			appendInlines(td, cell)
			tr.AppendChild(td)
		}
		tbody.AppendChild(tr)
	}
	table.AppendChild(tbody)
	return table
}

func (r *HTMLRenderer) codeBlock(c doctree.CodeBlock) *html.Node {
	label := Label(c.Language)
	wrap := element(atom.Div, "class", "code-block", "data-language", label)

	header := element(atom.Div, "class", "code-header")
	lang := element(atom.Span, "class", "code-language")
	lang.AppendChild(textNode(label))
	copyButton := element(atom.Button, "type", "button", "class", "copy-button", "data-code", c.Code)
	copyButton.AppendChild(textNode("Copy"))
	header.AppendChild(lang)
	header.AppendChild(copyButton)

	pre := element(atom.Pre)
	code := element(atom.Code, "class", "language-"+label)
	for _, tok := range r.Highlighter.Tokens(c.Language, c.Code) {
		if tok.Class == "" {
			code.AppendChild(textNode(tok.Value))
			continue
		}
		span := element(atom.Span, "class", tok.Class)
		span.AppendChild(textNode(tok.Value))
		code.AppendChild(span)
	}
	pre.AppendChild(code)

	wrap.AppendChild(header)
	wrap.AppendChild(pre)
	return wrap
}

func appendInlines(parent *html.Node, nodes []doctree.Inline) {
	for _, n := range nodes {
		parent.AppendChild(inline(n))
	}
}

func inline(n doctree.Inline) *html.Node {
	var el *html.Node
	var children []doctree.Inline
	switch n := n.(type) {
	case doctree.PlainText:
		return textNode(n.Value)
	case doctree.InlineCode:
		c := element(atom.Code, "class", "inline-code")
		c.AppendChild(textNode(n.Value))
		return c
	case doctree.Link:
		el = element(atom.A, "href", n.Href, "target", "_blank", "rel", "noopener noreferrer")
		children = n.Children
	case doctree.Bold:
		el, children = element(atom.Strong), n.Children
	case doctree.Italic:
		el, children = element(atom.Em), n.Children
	case doctree.Strikethrough:
		el, children = element(atom.Del), n.Children
	case doctree.Spoiler:
		// Hidden by styling only; the text stays in the accessibility tree.
		el = element(atom.Span, "class", "spoiler", "role", "button", "tabindex", "0")
		children = n.Children
	default:
		return textNode("")
	}
	appendInlines(el, children)
	return el
}

// element creates an element node; attrs alternate key and value.
func element(a atom.Atom, attrs ...string) *html.Node {
	n := &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String()}
	for i := 0; i+1 < len(attrs); i += 2 {
		n.Attr = append(n.Attr, html.Attribute{Key: attrs[i], Val: attrs[i+1]})
	}
	return n
}

func textNode(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

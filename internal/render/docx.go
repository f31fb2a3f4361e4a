package render

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dgallion1/chatmark/internal/doctree"
	"github.com/fumiama/go-docx"
)

// DOCXRenderer exports a sequence of messages as a Word document.
type DOCXRenderer struct {
	Highlighter *Highlighter
}

func NewDOCXRenderer(h *Highlighter) *DOCXRenderer {
	return &DOCXRenderer{Highlighter: h}
}

// Half-point run sizes per heading level.
var docxHeadingSizes = [...]string{"40", "32", "28", "24", "22", "20"}

const (
	docxMuted = "808080"
	docxCode  = "C7254E"
)

// Write renders docs in order, one message after another, and writes the
// .docx archive to w.
func (d *DOCXRenderer) Write(w io.Writer, docs []doctree.Document) error {
	f := docx.New().WithDefaultTheme()
	for i, doc := range docs {
		if i > 0 {
			f.AddParagraph().AddText(strings.Repeat("─", 24)).Color(docxMuted)
		}
		if sb := doc.Semantic; sb != nil {
			f.AddParagraph().AddText(sb.Title() + ":").Bold().Size("26")
			if sb.IsEmpty() {
				f.AddParagraph().AddText(doctree.BlocksText(sb.Body)).Italic().Color(docxMuted)
				continue
			}
			d.blocks(f, sb.Body, 0)
			continue
		}
		d.blocks(f, doc.Blocks, 0)
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write docx: %w", err)
	}
	return nil
}

func (d *DOCXRenderer) blocks(f *docx.Docx, blocks []doctree.Block, quote int) {
	for _, b := range blocks {
		d.block(f, b, quote)
	}
}

// paragraph starts a paragraph, prefixed with a bar per blockquote level.
func paragraph(f *docx.Docx, quote int) *docx.Paragraph {
	p := f.AddParagraph()
	if quote > 0 {
		p.AddText(strings.Repeat("│ ", quote)).Color(docxMuted)
	}
	return p
}

func (d *DOCXRenderer) block(f *docx.Docx, b doctree.Block, quote int) {
	switch b := b.(type) {
	case doctree.Text:
		paragraph(f, quote).AddText(b.Value)
	case doctree.Heading:
		level := min(max(b.Level, 1), 6)
		p := paragraph(f, quote).Style("Heading" + strconv.Itoa(level))
		appendRuns(p, b.Children, runFormat{bold: true, size: docxHeadingSizes[level-1]})
	case doctree.HorizontalRule:
		paragraph(f, quote).AddText(strings.Repeat("─", 24)).Color(docxMuted)
	case doctree.Blockquote:
		d.blocks(f, b.Children, quote+1)
	case doctree.List:
		for i, item := range b.Items {
			marker := "• "
			if b.Ordered {
				marker = strconv.Itoa(i+1) + ". "
			}
			p := paragraph(f, quote)
			p.AddText(marker)
			appendRuns(p, item, runFormat{})
		}
	case doctree.Table:
		tableRow(paragraph(f, quote), b.Headers, runFormat{bold: true})
		for _, row := range b.Rows {
			tableRow(paragraph(f, quote), row, runFormat{})
		}
	case doctree.CodeBlock:
		paragraph(f, quote).AddText(Label(b.Language)).Italic().Color(docxMuted)
		d.code(f, b, quote)
	case doctree.Paragraph:
		appendRuns(paragraph(f, quote), b.Children, runFormat{})
	}
}

func tableRow(p *docx.Paragraph, cells [][]doctree.Inline, rf runFormat) {
	for i, cell := range cells {
		if i > 0 {
			p.AddText("").AddTab()
		}
		appendRuns(p, cell, rf)
	}
}

// code writes one paragraph per source line, coloring tokens with the
// highlighter's style.
func (d *DOCXRenderer) code(f *docx.Docx, c doctree.CodeBlock, quote int) {
	p := paragraph(f, quote)
	for _, tok := range d.Highlighter.Tokens(c.Language, c.Code) {
		color := docxCode
		if tok.Style.Colour.IsSet() {
			color = strings.TrimPrefix(tok.Style.Colour.String(), "#")
		}
		for i, line := range strings.Split(tok.Value, "\n") {
			if i > 0 {
				p = paragraph(f, quote)
			}
			if line != "" {
				p.AddText(line).Color(color)
			}
		}
	}
}

type runFormat struct {
	bold, italic, strike, spoiler bool
	size                          string
}

func appendRuns(p *docx.Paragraph, nodes []doctree.Inline, rf runFormat) {
	for _, n := range nodes {
		switch n := n.(type) {
		case doctree.PlainText:
			styleRun(p.AddText(n.Value), rf)
		case doctree.InlineCode:
			styleRun(p.AddText(n.Value), rf).Color(docxCode)
		case doctree.Link:
			p.AddLink(doctree.InlineText(n.Children), n.Href)
		case doctree.Bold:
			next := rf
			next.bold = true
			appendRuns(p, n.Children, next)
		case doctree.Italic:
			next := rf
			next.italic = true
			appendRuns(p, n.Children, next)
		case doctree.Strikethrough:
			next := rf
			next.strike = true
			appendRuns(p, n.Children, next)
		case doctree.Spoiler:
			next := rf
			next.spoiler = true
			appendRuns(p, n.Children, next)
		}
	}
}

func styleRun(r *docx.Run, rf runFormat) *docx.Run {
	if rf.bold {
		r.Bold()
	}
	if rf.italic {
		r.Italic()
	}
	if rf.strike {
		r.Color(docxMuted)
	}
	if rf.spoiler {
		r.Highlight("black")
	}
	if rf.size != "" {
		r.Size(rf.size)
	}
	return r
}

package render

import (
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dgallion1/chatmark/internal/doctree"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/termenv"
)

// TerminalRenderer renders documents as styled terminal text.
type TerminalRenderer struct {
	Highlighter *Highlighter
	Width       int // horizontal rule width

	color bool
	r     *lipgloss.Renderer
}

// NewTerminalRenderer creates a renderer writing for w. With color off all
// styling is dropped and the output is plain text.
func NewTerminalRenderer(w io.Writer, h *Highlighter, color bool) *TerminalRenderer {
	r := lipgloss.NewRenderer(w)
	if color {
		r.SetColorProfile(termenv.TrueColor)
	} else {
		r.SetColorProfile(termenv.Ascii)
	}
	return &TerminalRenderer{Highlighter: h, Width: 40, color: color, r: r}
}

var (
	headingColor  = lipgloss.Color("#83a598")
	semanticColor = lipgloss.Color("#fabd2f")
	codeColor     = lipgloss.Color("#d3869b")
	mutedColor    = lipgloss.Color("#928374")
)

// Render returns the document as terminal text without a trailing newline.
func (t *TerminalRenderer) Render(doc doctree.Document) string {
	if sb := doc.Semantic; sb != nil {
		title := t.r.NewStyle().Bold(true).Foreground(semanticColor).Render(sb.Title() + ":")
		body := t.blocks(sb.Body)
		if sb.IsEmpty() {
			body = t.r.NewStyle().Italic(true).Foreground(mutedColor).Render(body)
		}
		return title + "\n" + body
	}
	return t.blocks(doc.Blocks)
}

func (t *TerminalRenderer) blocks(blocks []doctree.Block) string {
	parts := make([]string, 0, len(blocks))
	for _, b := range blocks {
		parts = append(parts, t.block(b))
	}
	return strings.Join(parts, "\n\n")
}

func (t *TerminalRenderer) block(b doctree.Block) string {
	base := t.r.NewStyle()
	switch b := b.(type) {
	case doctree.Text:
		return b.Value
	case doctree.Heading:
		style := base.Bold(true).Foreground(headingColor)
		if b.Level == 1 {
			style = style.Underline(true)
		}
		return t.inlines(b.Children, style)
	case doctree.HorizontalRule:
		return base.Foreground(mutedColor).Render(strings.Repeat("─", t.Width))
	case doctree.Blockquote:
		bar := base.Foreground(mutedColor).Render("│ ")
		lines := strings.Split(t.blocks(b.Children), "\n")
		for i, l := range lines {
			lines[i] = bar + l
		}
		return strings.Join(lines, "\n")
	case doctree.List:
		lines := make([]string, len(b.Items))
		for i, item := range b.Items {
			marker := "• "
			if b.Ordered {
				marker = strconv.Itoa(i+1) + ". "
			}
			lines[i] = marker + t.inlines(item, base)
		}
		return strings.Join(lines, "\n")
	case doctree.Table:
		return t.table(b)
	case doctree.CodeBlock:
		label := base.Foreground(mutedColor).Render("[" + Label(b.Language) + "]")
		code := b.Code
		if t.color {
			code = t.Highlighter.ANSI(b.Language, b.Code)
		}
		lines := strings.Split(code, "\n")
		for i, l := range lines {
			lines[i] = "  " + l
		}
		return label + "\n" + strings.Join(lines, "\n")
	case doctree.Paragraph:
		return t.inlines(b.Children, base)
	}
	return ""
}

// table aligns columns by display width, so wide CJK cells line up.
func (t *TerminalRenderer) table(tbl doctree.Table) string {
	cols := len(tbl.Headers)
	for _, row := range tbl.Rows {
		cols = max(cols, len(row))
	}
	widths := make([]int, cols)
	measure := func(cells [][]doctree.Inline) {
		for i, c := range cells {
			widths[i] = max(widths[i], runewidth.StringWidth(doctree.InlineText(c)))
		}
	}
	measure(tbl.Headers)
	for _, row := range tbl.Rows {
		measure(row)
	}

	bold := t.r.NewStyle().Bold(true)
	line := func(cells [][]doctree.Inline, style lipgloss.Style) string {
		parts := make([]string, cols)
		for i := 0; i < cols; i++ {
			var styled, plain string
			if i < len(cells) {
				styled = t.inlines(cells[i], style)
				plain = doctree.InlineText(cells[i])
			}
			parts[i] = styled + strings.Repeat(" ", widths[i]-runewidth.StringWidth(plain))
		}
		return strings.TrimRight(strings.Join(parts, " │ "), " ")
	}

	rule := make([]string, cols)
	for i, w := range widths {
		rule[i] = strings.Repeat("─", w)
	}

	out := []string{line(tbl.Headers, bold), strings.Join(rule, "─┼─")}
	for _, row := range tbl.Rows {
		out = append(out, line(row, t.r.NewStyle()))
	}
	return strings.Join(out, "\n")
}

// inlines renders nodes with style, adding each formatting layer to the
// style handed to its children.
func (t *TerminalRenderer) inlines(nodes []doctree.Inline, style lipgloss.Style) string {
	var sb strings.Builder
	for _, n := range nodes {
		switch n := n.(type) {
		case doctree.PlainText:
			sb.WriteString(style.Render(n.Value))
		case doctree.InlineCode:
			sb.WriteString(style.Foreground(codeColor).Render(n.Value))
		case doctree.Link:
			label := doctree.InlineText(n.Children)
			sb.WriteString(t.inlines(n.Children, style.Underline(true)))
			if label != n.Href {
				sb.WriteString(style.Foreground(mutedColor).Render(" (" + n.Href + ")"))
			}
		case doctree.Bold:
			sb.WriteString(t.inlines(n.Children, style.Bold(true)))
		case doctree.Italic:
			sb.WriteString(t.inlines(n.Children, style.Italic(true)))
		case doctree.Strikethrough:
			sb.WriteString(t.inlines(n.Children, style.Strikethrough(true)))
		case doctree.Spoiler:
			sb.WriteString(t.inlines(n.Children, style.Reverse(true)))
		}
	}
	return sb.String()
}

// Package doctree defines the document tree produced by the chat markdown
// parser. Nodes are plain values built bottom-up; a renderer walks them.
package doctree

// Block is a structural unit occupying one or more whole lines.
type Block interface {
	blockNode()
	Kind() string
}

// Inline is a unit of formatted text within a line or paragraph.
type Inline interface {
	inlineNode()
	Kind() string
}

// Text is literal block-level text, emitted verbatim.
type Text struct {
	Value string
}

// Heading is an ATX heading, level 1 through 6.
type Heading struct {
	Level    int
	Children []Inline
}

// HorizontalRule is a thematic break.
type HorizontalRule struct{}

// Blockquote holds the fully reparsed body of a quoted run of lines.
type Blockquote struct {
	Children []Block
}

// List is an ordered or unordered list. Each item is one inline-parsed line.
type List struct {
	Ordered bool
	Items   [][]Inline
}

// Table is a pipe table. Headers holds one inline sequence per column and
// Rows one per cell.
type Table struct {
	Headers [][]Inline
	Rows    [][][]Inline
}

// CodeBlock is a fenced code block. Language is empty when the fence had no
// info string. Code is never inline-parsed.
type CodeBlock struct {
	Language string
	Code     string
}

// Paragraph is a run of lines joined into one inline sequence.
type Paragraph struct {
	Children []Inline
}

func (Text) blockNode()           {}
func (Heading) blockNode()        {}
func (HorizontalRule) blockNode() {}
func (Blockquote) blockNode()     {}
func (List) blockNode()           {}
func (Table) blockNode()          {}
func (CodeBlock) blockNode()      {}
func (Paragraph) blockNode()      {}

func (Text) Kind() string           { return "text" }
func (Heading) Kind() string        { return "heading" }
func (HorizontalRule) Kind() string { return "horizontal_rule" }
func (Blockquote) Kind() string     { return "blockquote" }
func (List) Kind() string           { return "list" }
func (Table) Kind() string          { return "table" }
func (CodeBlock) Kind() string      { return "code_block" }
func (Paragraph) Kind() string      { return "paragraph" }

// PlainText is an unformatted run of text.
type PlainText struct {
	Value string
}

// Link is a hyperlink whose label may carry further formatting.
type Link struct {
	Href     string
	Children []Inline
}

// Bold is strong emphasis.
type Bold struct {
	Children []Inline
}

// Italic is emphasis.
type Italic struct {
	Children []Inline
}

// Strikethrough is struck-out text.
type Strikethrough struct {
	Children []Inline
}

// InlineCode is a code span; its content is literal.
type InlineCode struct {
	Value string
}

// Spoiler is text hidden until the reader reveals it.
type Spoiler struct {
	Children []Inline
}

func (PlainText) inlineNode()     {}
func (Link) inlineNode()          {}
func (Bold) inlineNode()          {}
func (Italic) inlineNode()        {}
func (Strikethrough) inlineNode() {}
func (InlineCode) inlineNode()    {}
func (Spoiler) inlineNode()       {}

func (PlainText) Kind() string     { return "text" }
func (Link) Kind() string          { return "link" }
func (Bold) Kind() string          { return "bold" }
func (Italic) Kind() string        { return "italic" }
func (Strikethrough) Kind() string { return "strikethrough" }
func (InlineCode) Kind() string    { return "inline_code" }
func (Spoiler) Kind() string       { return "spoiler" }

// SemanticKind identifies an agent status block.
type SemanticKind string

const (
	Memory       SemanticKind = "Memory"
	NextGoal     SemanticKind = "Next Goal"
	PreviousGoal SemanticKind = "Previous Goal"
)

// EmptyPlaceholder is the body of a semantic block with nothing after its
// marker.
var EmptyPlaceholder Block = Text{Value: "Empty"}

// SemanticBlock is a Memory / Next Goal / Previous Goal message. It replaces
// the generic document for messages carrying one of those markers.
type SemanticBlock struct {
	Kind SemanticKind
	Body []Block
}

// Title is the heading a renderer shows above the body.
func (s SemanticBlock) Title() string { return string(s.Kind) }

// IsEmpty reports whether the body is the empty placeholder.
func (s SemanticBlock) IsEmpty() bool {
	return len(s.Body) == 1 && s.Body[0] == EmptyPlaceholder
}

// Document is the result of parsing one message: either a semantic block or
// a sequence of generic blocks.
type Document struct {
	Semantic *SemanticBlock
	Blocks   []Block
}

// HeadingSize maps a heading level to the relative text size a renderer
// should use. Out-of-range levels are clamped.
func HeadingSize(level int) string {
	switch {
	case level <= 1:
		return "2xl"
	case level == 2:
		return "xl"
	case level == 3:
		return "lg"
	case level == 4:
		return "base"
	case level == 5:
		return "sm"
	default:
		return "xs"
	}
}

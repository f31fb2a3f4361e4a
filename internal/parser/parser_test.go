package parser

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/dgallion1/chatmark/internal/doctree"
	"github.com/google/go-cmp/cmp"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`line one\nline two`, "line one\nline two"},
		{"crlf\r\nline", "crlf\nline"},
		{"double cr\r\r\nline", "double cr\nline"},
		{"lone\rcr", "lone\rcr"},
		{`escaped\\nstill`, "escaped\\\nstill"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q): expected %q, got %q", tt.in, tt.want, got)
		}
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		`a\nb\r\nc`,
		"x\r\r\r\ny",
		`\\n\\\n\n`,
		"\r\n\\n\r\\n",
		"plain",
		"🙂\\n🙃",
	}
	for _, s := range inputs {
		once := Normalize(s)
		if twice := Normalize(once); twice != once {
			t.Errorf("Normalize not idempotent for %q: %q then %q", s, once, twice)
		}
	}
}

func TestDetectSemantic(t *testing.T) {
	tests := []struct {
		text string
		kind doctree.SemanticKind
	}{
		{"*Memory*: hello", doctree.Memory},
		{"*Next Goal*: click the button", doctree.NextGoal},
		{"*Previous Goal*:\nSuccess", doctree.PreviousGoal},
	}
	for _, tt := range tests {
		sb, ok := DetectSemantic(tt.text)
		if !ok {
			t.Fatalf("expected %q to be detected", tt.text)
		}
		if sb.Kind != tt.kind {
			t.Errorf("expected kind %q, got %q", tt.kind, sb.Kind)
		}
		if sb.IsEmpty() {
			t.Errorf("expected non-empty body for %q", tt.text)
		}
	}

	for _, s := range []string{"Memory: x", "*memory*: x", " *Memory*: x", "**Memory**: x", "text *Memory*: x"} {
		if _, ok := DetectSemantic(s); ok {
			t.Errorf("expected %q not to be detected", s)
		}
	}
}

func TestParse_SemanticBlock(t *testing.T) {
	got := Parse("*Memory*: hello")
	want := doctree.Document{Semantic: &doctree.SemanticBlock{
		Kind: doctree.Memory,
		Body: bl{para("hello")},
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_SemanticBlockEmpty(t *testing.T) {
	for _, s := range []string{"*Memory*:", "*Next Goal*:   ", `*Previous Goal*:\n`} {
		doc := Parse(s)
		if doc.Semantic == nil {
			t.Fatalf("expected semantic block for %q", s)
		}
		if !doc.Semantic.IsEmpty() {
			t.Errorf("expected placeholder body for %q, got %#v", s, doc.Semantic.Body)
		}
		if len(doc.Blocks) != 0 {
			t.Errorf("expected no generic blocks for %q", s)
		}
	}
}

func TestParse_SemanticBodyIsMarkdown(t *testing.T) {
	doc := Parse(`*Next Goal*:\n- open settings\n- **save**`)
	if doc.Semantic == nil {
		t.Fatal("expected semantic block")
	}
	if len(doc.Semantic.Body) != 1 {
		t.Fatalf("expected 1 body block, got %d", len(doc.Semantic.Body))
	}
	list, ok := doc.Semantic.Body[0].(doctree.List)
	if !ok {
		t.Fatalf("expected list body, got %T", doc.Semantic.Body[0])
	}
	if len(list.Items) != 2 {
		t.Errorf("expected 2 items, got %d", len(list.Items))
	}
}

func TestParse_EscapedNewlines(t *testing.T) {
	doc := Parse(`# Title\n\nBody`)
	if len(doc.Blocks) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(doc.Blocks))
	}
	if _, ok := doc.Blocks[0].(doctree.Heading); !ok {
		t.Errorf("expected heading, got %T", doc.Blocks[0])
	}
}

func TestParse_CodeBlockFidelity(t *testing.T) {
	doc := Parse("```javascript\nconst x = 1;\n```")
	want := bl{doctree.CodeBlock{Language: "javascript", Code: "const x = 1;"}}
	if diff := cmp.Diff(want, doc.Blocks); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_Deterministic(t *testing.T) {
	input := "# T\n\n| A | B |\n|---|---|\n| **1** | ||2|| |\n\n> quote with `code`\n\n```go\nfunc main() {}\n```"
	want := Parse(input)

	var wg sync.WaitGroup
	results := make([]doctree.Document, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = Parse(input)
		}(i)
	}
	wg.Wait()
	for i, got := range results {
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("result %d differs (-want +got):\n%s", i, diff)
		}
	}
}

func TestForDialect(t *testing.T) {
	for _, name := range []string{"", "chat", "CHAT", " chat\n", "commonmark"} {
		p, err := ForDialect(name)
		if err != nil {
			t.Fatalf("ForDialect(%q): unexpected error: %v", name, err)
		}
		if p == nil {
			t.Fatalf("ForDialect(%q): expected parser", name)
		}
		if !IsSupportedDialect(name) {
			t.Errorf("expected %q to be supported", name)
		}
	}
	_, err := ForDialect("asciidoc")
	if !errors.Is(err, ErrUnknownDialect) {
		t.Errorf("expected ErrUnknownDialect, got %v", err)
	}
	if IsSupportedDialect("asciidoc") {
		t.Error("expected asciidoc to be unsupported")
	}
}

func TestCanonicalDialect(t *testing.T) {
	tests := map[string]string{
		"chat":           "chat",
		" Chat ":         "chat",
		"\tCOMMONMARK\n": "commonmark",
		"   ":            "",
	}
	for in, want := range tests {
		if got := CanonicalDialect(in); got != want {
			t.Errorf("CanonicalDialect(%q): expected %q, got %q", in, want, got)
		}
	}
}

func TestCommonMarkParser(t *testing.T) {
	p := NewCommonMarkParser()
	input := strings.Join([]string{
		"# Title",
		"",
		"Some *emphasis* and **strong** and ~~gone~~ with [a link](https://example.com).",
		"",
		"- one",
		"- two",
		"",
		"> quoted",
		"",
		"| A | B |",
		"|---|---|",
		"| 1 | 2 |",
		"",
		"```go",
		"x := 1",
		"```",
		"",
		"---",
	}, "\n")
	doc := p.Parse(input)
	if doc.Semantic != nil {
		t.Fatal("commonmark never produces semantic blocks")
	}

	kinds := make([]string, len(doc.Blocks))
	for i, b := range doc.Blocks {
		kinds[i] = b.Kind()
	}
	wantKinds := []string{"heading", "paragraph", "list", "blockquote", "table", "code_block", "horizontal_rule"}
	if diff := cmp.Diff(wantKinds, kinds); diff != "" {
		t.Fatalf("block kinds mismatch (-want +got):\n%s", diff)
	}

	paraNodes := doc.Blocks[1].(doctree.Paragraph).Children
	var sawItalic, sawBold, sawStrike, sawLink bool
	for _, n := range paraNodes {
		switch n := n.(type) {
		case doctree.Italic:
			sawItalic = true
		case doctree.Bold:
			sawBold = true
		case doctree.Strikethrough:
			sawStrike = true
		case doctree.Link:
			sawLink = n.Href == "https://example.com"
		}
	}
	if !sawItalic || !sawBold || !sawStrike || !sawLink {
		t.Errorf("expected italic, bold, strike and link; got %#v", paraNodes)
	}

	code := doc.Blocks[5].(doctree.CodeBlock)
	if code.Language != "go" || code.Code != "x := 1" {
		t.Errorf("expected go code %q, got %q %q", "x := 1", code.Language, code.Code)
	}

	table := doc.Blocks[4].(doctree.Table)
	if len(table.Headers) != 2 || len(table.Rows) != 1 {
		t.Errorf("expected 2x1 table, got %d headers %d rows", len(table.Headers), len(table.Rows))
	}
}

func TestCommonMarkParser_SemanticMarkerIsPlainMarkdown(t *testing.T) {
	doc := NewCommonMarkParser().Parse("*Memory*: hello")
	if doc.Semantic != nil {
		t.Fatal("expected no semantic block in commonmark dialect")
	}
	if len(doc.Blocks) != 1 {
		t.Fatalf("expected 1 block, got %d", len(doc.Blocks))
	}
}

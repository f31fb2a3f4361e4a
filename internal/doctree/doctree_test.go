package doctree

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestInlineText_FlattensNesting(t *testing.T) {
	nodes := []Inline{
		PlainText{Value: "see "},
		Link{Href: "https://example.com", Children: []Inline{
			Bold{Children: []Inline{PlainText{Value: "the "}, InlineCode{Value: "docs"}}},
		}},
		Spoiler{Children: []Inline{PlainText{Value: "!"}}},
	}
	if got := InlineText(nodes); got != "see the docs!" {
		t.Errorf("expected %q, got %q", "see the docs!", got)
	}
}

func TestSemanticBlock_IsEmpty(t *testing.T) {
	empty := SemanticBlock{Kind: Memory, Body: []Block{EmptyPlaceholder}}
	if !empty.IsEmpty() {
		t.Error("expected placeholder body to report empty")
	}
	full := SemanticBlock{Kind: Memory, Body: []Block{Paragraph{Children: []Inline{PlainText{Value: "x"}}}}}
	if full.IsEmpty() {
		t.Error("expected paragraph body to be non-empty")
	}
	if empty.Title() != "Memory" {
		t.Errorf("expected title %q, got %q", "Memory", empty.Title())
	}
}

func TestHeadingSize(t *testing.T) {
	tests := []struct {
		level int
		want  string
	}{
		{0, "2xl"}, {1, "2xl"}, {2, "xl"}, {3, "lg"}, {4, "base"}, {5, "sm"}, {6, "xs"}, {9, "xs"},
	}
	for _, tt := range tests {
		if got := HeadingSize(tt.level); got != tt.want {
			t.Errorf("level=%d: expected %q, got %q", tt.level, tt.want, got)
		}
	}
}

func TestDocument_MarshalJSON(t *testing.T) {
	doc := Document{Blocks: []Block{
		Heading{Level: 2, Children: []Inline{PlainText{Value: "Title"}}},
		CodeBlock{Code: "x := 1"},
		Table{
			Headers: [][]Inline{{PlainText{Value: "A"}}},
			Rows:    [][][]Inline{{{PlainText{Value: "1"}}}},
		},
	}}
	data, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s := string(data)
	for _, want := range []string{`"type":"heading"`, `"level":2`, `"type":"code_block"`, `"code":"x := 1"`, `"type":"table"`} {
		if !strings.Contains(s, want) {
			t.Errorf("expected JSON to contain %s, got %s", want, s)
		}
	}
	if strings.Contains(s, `"language"`) {
		t.Errorf("expected absent language to be omitted, got %s", s)
	}
}

func TestDocument_PlainText(t *testing.T) {
	doc := Document{Semantic: &SemanticBlock{Kind: NextGoal, Body: []Block{
		Paragraph{Children: []Inline{PlainText{Value: "open the page"}}},
	}}}
	if got := doc.PlainText(); got != "Next Goal:\nopen the page" {
		t.Errorf("expected %q, got %q", "Next Goal:\nopen the page", got)
	}

	list := Document{Blocks: []Block{List{Items: [][]Inline{{PlainText{Value: "a"}}, {PlainText{Value: "b"}}}}}}
	if got := list.PlainText(); got != "a\nb" {
		t.Errorf("expected %q, got %q", "a\nb", got)
	}
}

package stream

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/dgallion1/chatmark/internal/doctree"
	"github.com/dgallion1/chatmark/internal/parser"
)

// Message is an assistant message growing as text deltas arrive.
type Message struct {
	parser parser.Parser
	text   strings.Builder

	ToolCalls   []ToolCall
	ToolResults []ToolResult
	Finish      *Finish
	Errors      []string
}

func NewMessage(p parser.Parser) *Message {
	return &Message{parser: p}
}

// Append adds a text delta and returns the re-rendered document.
func (m *Message) Append(delta string) doctree.Document {
	m.text.WriteString(delta)
	return m.Document()
}

// Text returns the accumulated raw text.
func (m *Message) Text() string {
	return m.text.String()
}

// Document parses the text received so far.
func (m *Message) Document() doctree.Document {
	return m.parser.Parse(m.text.String())
}

// Done reports whether a finish part closed the message.
func (m *Message) Done() bool {
	return m.Finish != nil
}

func (m *Message) empty() bool {
	return m.text.Len() == 0 && len(m.ToolCalls) == 0 && len(m.ToolResults) == 0 && len(m.Errors) == 0
}

// Transcript is a decoded stream split into messages. Agents emit each
// status message (Memory, Next Goal, ...) as its own message closed by a
// finish part.
type Transcript struct {
	Messages []*Message
	Skipped  int // malformed lines
}

// Texts returns the raw text of every message.
func (t *Transcript) Texts() []string {
	out := make([]string, len(t.Messages))
	for i, m := range t.Messages {
		out[i] = m.Text()
	}
	return out
}

// Update describes a change to message Index caused by Part. Document is
// set for text parts.
type Update struct {
	Index    int
	Part     Part
	Document *doctree.Document
}

// Follow decodes r, calling fn after every part. A finish part closes the
// current message; the next part starts a new one. Malformed lines are
// counted and skipped. Follow stops early when ctx is done or fn fails.
func Follow(ctx context.Context, r io.Reader, p parser.Parser, fn func(Update) error) (*Transcript, error) {
	t := &Transcript{}
	dec := NewDecoder(r)
	var cur *Message

	for {
		if err := ctx.Err(); err != nil {
			return t, err
		}
		part, err := dec.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if errors.Is(err, ErrMalformedPart) {
			t.Skipped++
			continue
		}
		if err != nil {
			return t, err
		}

		if cur == nil {
			cur = NewMessage(p)
		}
		u := Update{Part: part}
		switch part.Type {
		case PartText:
			doc := cur.Append(part.Text)
			u.Document = &doc
		case PartToolCall:
			cur.ToolCalls = append(cur.ToolCalls, *part.ToolCall)
		case PartToolResult:
			cur.ToolResults = append(cur.ToolResults, *part.ToolResult)
		case PartError:
			cur.Errors = append(cur.Errors, part.Text)
		case PartFinish:
			cur.Finish = part.Finish
		}

		// Back-to-back finish parts do not produce empty messages.
		if part.Type == PartFinish && cur.empty() {
			cur = nil
			continue
		}
		if len(t.Messages) == 0 || t.Messages[len(t.Messages)-1] != cur {
			t.Messages = append(t.Messages, cur)
		}
		u.Index = len(t.Messages) - 1
		if part.Type == PartFinish {
			cur = nil
		}
		if fn != nil {
			if err := fn(u); err != nil {
				return t, err
			}
		}
	}
	return t, nil
}

// ReadTranscript decodes a complete stream.
func ReadTranscript(r io.Reader, p parser.Parser) (*Transcript, error) {
	return Follow(context.Background(), r, p, nil)
}

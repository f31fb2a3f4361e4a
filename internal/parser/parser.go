package parser

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dgallion1/chatmark/internal/doctree"
)

// ErrUnknownDialect is returned by ForDialect for an unsupported name.
var ErrUnknownDialect = errors.New("unknown dialect")

// Parser converts one chat message into a document tree.
type Parser interface {
	Parse(content string) doctree.Document
}

// Dialect names accepted by ForDialect.
const (
	DialectChat       = "chat"
	DialectCommonMark = "commonmark"
)

// SupportedDialects lists the dialects this service can parse.
var SupportedDialects = map[string]bool{
	DialectChat:       true,
	DialectCommonMark: true,
}

// CanonicalDialect is the form of a dialect name used in keys and hashes:
// trimmed and lower-cased.
func CanonicalDialect(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// ForDialect returns the parser for a dialect name. An empty name selects
// the chat dialect.
func ForDialect(name string) (Parser, error) {
	switch CanonicalDialect(name) {
	case "", DialectChat:
		return ChatParser{}, nil
	case DialectCommonMark:
		return NewCommonMarkParser(), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownDialect, name)
	}
}

// IsSupportedDialect checks if a dialect name is supported.
func IsSupportedDialect(name string) bool {
	name = CanonicalDialect(name)
	return name == "" || SupportedDialects[name]
}

// ChatParser implements the chat markdown dialect: spoilers, agent status
// blocks and tolerant table handling on top of a markdown subset.
type ChatParser struct{}

func (ChatParser) Parse(content string) doctree.Document {
	return Parse(content)
}

// Parse normalizes raw message content and parses it. Messages that start
// with an agent status marker become a semantic block; everything else is
// parsed as generic markdown. Parse is pure and safe for concurrent use.
func Parse(raw string) doctree.Document {
	text := Normalize(raw)
	if sb, ok := DetectSemantic(text); ok {
		return doctree.Document{Semantic: sb}
	}
	return doctree.Document{Blocks: ParseBlocks(text)}
}

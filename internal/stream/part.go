// Package stream decodes the chat transport's data-stream protocol and
// turns text deltas into rendered message snapshots.
//
// Each line of a stream is a part: a one-character type code, a colon and a
// JSON payload.
//
//	0:"Hello"                                         text delta
//	9:{"toolCallId":"c1","toolName":"go_to","args":{}} tool call
//	a:{"toolCallId":"c1","result":"ok"}               tool result
//	e:{"finishReason":"stop","usage":{...}}           finish
//	3:"boom"                                          error
package stream

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedPart is returned for lines that are not valid parts.
var ErrMalformedPart = errors.New("malformed stream part")

// PartType identifies a part by its role.
type PartType string

const (
	PartText       PartType = "text"
	PartToolCall   PartType = "tool_call"
	PartToolResult PartType = "tool_result"
	PartFinish     PartType = "finish"
	PartError      PartType = "error"
)

var partCodes = map[byte]PartType{
	'0': PartText,
	'9': PartToolCall,
	'a': PartToolResult,
	'e': PartFinish,
	'3': PartError,
}

// Part is one decoded stream line. Exactly one payload field is set,
// matching Type; Text carries both text deltas and error messages.
type Part struct {
	Type       PartType    `json:"type"`
	Text       string      `json:"text,omitempty"`
	ToolCall   *ToolCall   `json:"tool_call,omitempty"`
	ToolResult *ToolResult `json:"tool_result,omitempty"`
	Finish     *Finish     `json:"finish,omitempty"`
}

type ToolCall struct {
	ID   string          `json:"toolCallId"`
	Name string          `json:"toolName"`
	Args json.RawMessage `json:"args"`
}

type ToolResult struct {
	ID     string          `json:"toolCallId"`
	Result json.RawMessage `json:"result"`
}

type Usage struct {
	PromptTokens     int `json:"promptTokens"`
	CompletionTokens int `json:"completionTokens"`
}

// Finish ends a message. Agents close each status message with the
// "tool-calls" reason and the whole response with "stop".
type Finish struct {
	Reason      string `json:"finishReason"`
	Usage       Usage  `json:"usage"`
	IsContinued bool   `json:"isContinued"`
}

// ParsePart decodes a single stream line.
func ParsePart(line string) (Part, error) {
	line = strings.TrimRight(line, "\r")
	if len(line) < 2 || line[1] != ':' {
		return Part{}, fmt.Errorf("%w: missing type prefix", ErrMalformedPart)
	}
	typ, ok := partCodes[line[0]]
	if !ok {
		return Part{}, fmt.Errorf("%w: unknown type %q", ErrMalformedPart, line[0])
	}
	payload := []byte(line[2:])

	p := Part{Type: typ}
	var err error
	switch typ {
	case PartText, PartError:
		err = json.Unmarshal(payload, &p.Text)
	case PartToolCall:
		p.ToolCall = &ToolCall{}
		err = json.Unmarshal(payload, p.ToolCall)
	case PartToolResult:
		p.ToolResult = &ToolResult{}
		err = json.Unmarshal(payload, p.ToolResult)
	case PartFinish:
		p.Finish = &Finish{}
		err = json.Unmarshal(payload, p.Finish)
	}
	if err != nil {
		return Part{}, fmt.Errorf("%w: %s payload: %v", ErrMalformedPart, typ, err)
	}
	return p, nil
}

// Format encodes a part as a stream line without the trailing newline.
func Format(p Part) (string, error) {
	var code byte
	for c, t := range partCodes {
		if t == p.Type {
			code = c
		}
	}
	if code == 0 {
		return "", fmt.Errorf("%w: unknown type %q", ErrMalformedPart, p.Type)
	}

	var payload any
	switch p.Type {
	case PartText, PartError:
		payload = p.Text
	case PartToolCall:
		payload = p.ToolCall
	case PartToolResult:
		payload = p.ToolResult
	case PartFinish:
		payload = p.Finish
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encode %s part: %w", p.Type, err)
	}
	return string(code) + ":" + string(b), nil
}

package stream

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Decoder reads parts from a data stream line by line.
type Decoder struct {
	scanner *bufio.Scanner
	line    int
}

func NewDecoder(r io.Reader) *Decoder {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &Decoder{scanner: scanner}
}

// Next returns the next part, or io.EOF at the end of the stream. Blank
// lines are skipped. A malformed line returns an error wrapping
// ErrMalformedPart; decoding may continue after it.
func (d *Decoder) Next() (Part, error) {
	for d.scanner.Scan() {
		d.line++
		line := d.scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		p, err := ParsePart(line)
		if err != nil {
			return Part{}, fmt.Errorf("line %d: %w", d.line, err)
		}
		return p, nil
	}
	if err := d.scanner.Err(); err != nil {
		return Part{}, fmt.Errorf("read stream: %w", err)
	}
	return Part{}, io.EOF
}

// Line returns the number of lines consumed so far.
func (d *Decoder) Line() int {
	return d.line
}

package livefeed

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
)

const (
	defaultEventName = "message"
	maxEventLine     = 16 << 20
)

// Event is one dispatched server-sent event.
type Event struct {
	Name string
	Data []byte
}

// Decoder reads server-sent events from a text/event-stream body.
// Comment lines and the id/retry fields are ignored.
type Decoder struct {
	scanner *bufio.Scanner
	maxLine int
}

func NewDecoder(r io.Reader) *Decoder {
	return newDecoder(r, maxEventLine)
}

func newDecoder(r io.Reader, maxLine int) *Decoder {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), maxLine)
	return &Decoder{scanner: scanner, maxLine: maxLine}
}

// Next blocks until a complete event is read. It returns io.EOF when the stream
// ends; a trailing event without its blank-line terminator is discarded.
func (d *Decoder) Next() (Event, error) {
	var (
		name    string
		data    bytes.Buffer
		hasData bool
	)

	for d.scanner.Scan() {
		line := d.scanner.Bytes()
		if len(line) == 0 {
			if !hasData && name == "" {
				continue
			}
			if name == "" {
				name = defaultEventName
			}
			return Event{Name: name, Data: append([]byte(nil), data.Bytes()...)}, nil
		}
		if line[0] == ':' {
			continue
		}

		field, value := splitField(line)
		switch field {
		case "event":
			name = string(value)
		case "data":
			if hasData {
				data.WriteByte('\n')
			}
			data.Write(value)
			hasData = true
		}
	}

	if err := d.scanner.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			return Event{}, fmt.Errorf("event line exceeds %d bytes: %w", d.maxLine, err)
		}
		return Event{}, err
	}
	return Event{}, io.EOF
}

func splitField(line []byte) (string, []byte) {
	idx := bytes.IndexByte(line, ':')
	if idx < 0 {
		return string(line), nil
	}
	value := line[idx+1:]
	if len(value) > 0 && value[0] == ' ' {
		value = value[1:]
	}
	return string(line[:idx]), value
}

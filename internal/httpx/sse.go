package httpx

import (
	"bufio"
	"bytes"
	"io"
	"strings"
)

// Event is one server-sent event. Name is the value of the "event:" field
// (empty for unnamed events); Data is the concatenated "data:" payload.
type Event struct {
	Name string
	Data []byte
}

// EventReader parses a text/event-stream body. Events are returned strictly
// in arrival order; the caller drives the loop and stops reading to abandon
// the stream (closing the response body on the way out).
type EventReader struct {
	s *bufio.Scanner
}

func NewEventReader(r io.Reader) *EventReader {
	s := bufio.NewScanner(r)
	// Chat completions can emit large single-event payloads.
	s.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &EventReader{s: s}
}

// Next returns the next complete event, or io.EOF when the stream ends.
// Comment lines and fields other than "event" and "data" are skipped, per
// the SSE spec subset the chat backends use.
func (r *EventReader) Next() (Event, error) {
	var (
		ev      Event
		data    [][]byte
		started bool
	)

	for r.s.Scan() {
		line := r.s.Text()

		if line == "" {
			if !started {
				continue // leading blank lines between events
			}
			ev.Data = bytes.Join(data, []byte("\n"))
			return ev, nil
		}
		if strings.HasPrefix(line, ":") {
			continue
		}

		field, value, _ := strings.Cut(line, ":")
		value = strings.TrimPrefix(value, " ")

		switch field {
		case "event":
			ev.Name = value
			started = true
		case "data":
			data = append(data, []byte(value))
			started = true
		}
	}

	if err := r.s.Err(); err != nil {
		return Event{}, err
	}
	if started {
		// stream closed without a trailing blank line
		ev.Data = bytes.Join(data, []byte("\n"))
		return ev, nil
	}
	return Event{}, io.EOF
}

// internal/protocol/decoder.go
package protocol

import (
	"strings"
)

// Sentinel is the reserved payload marking producer-side completion of a
// stream.
const Sentinel = "[DONE]"

// recordPrefix marks the lines within a record that carry payload.
const recordPrefix = "data:"

// Frame is one complete, separator-terminated protocol record.
type Frame struct {
	Payload  string
	Sentinel bool
}

// Decoder incrementally splits a byte stream into frames. Chunks may cut
// a record at any byte offset: a frame is emitted only once its
// terminating separator has been seen, and the unterminated remainder
// stays buffered for the next Feed. Records without a payload line are
// dropped, so unknown record kinds never abort the stream.
type Decoder struct {
	rest string
}

func NewDecoder() *Decoder {
	return &Decoder{}
}

// Feed appends chunk to the internal buffer and returns every frame the
// chunk completed, in arrival order.
func (d *Decoder) Feed(chunk []byte) []Frame {
	d.rest += string(chunk)

	var frames []Frame
	for {
		record, remainder, found := cutRecord(d.rest)
		if !found {
			return frames
		}
		d.rest = remainder
		if frame, ok := parseRecord(record); ok {
			frames = append(frames, frame)
		}
	}
}

// Buffered reports how many bytes are held waiting for a terminator.
func (d *Decoder) Buffered() int {
	return len(d.rest)
}

// cutRecord splits buf at the earliest record separator. Records are
// separated by a blank line in either LF or CRLF framing.
func cutRecord(buf string) (record, rest string, found bool) {
	lf := strings.Index(buf, "\n\n")
	crlf := strings.Index(buf, "\r\n\r\n")
	switch {
	case lf == -1 && crlf == -1:
		return "", buf, false
	case crlf == -1 || (lf != -1 && lf < crlf):
		return buf[:lf], buf[lf+2:], true
	default:
		return buf[:crlf], buf[crlf+4:], true
	}
}

// parseRecord extracts the payload from one record. Multiple payload
// lines join with a newline.
func parseRecord(record string) (Frame, bool) {
	var parts []string
	for _, line := range strings.Split(record, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if !strings.HasPrefix(line, recordPrefix) {
			continue
		}
		payload := strings.TrimPrefix(line, recordPrefix)
		payload = strings.TrimPrefix(payload, " ")
		parts = append(parts, payload)
	}
	if len(parts) == 0 {
		return Frame{}, false
	}
	payload := strings.Join(parts, "\n")
	if payload == Sentinel {
		return Frame{Sentinel: true}, true
	}
	return Frame{Payload: payload}, true
}

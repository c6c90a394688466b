// Package wire defines the in-band stream protocol between the chat server
// and its clients. A reply streams as plain text; when the turn carried an
// anomaly, a structured tail follows a delimiter after the final fragment.
// The decoder is incremental and never exposes a partially received marker
// as displayable text.
package wire

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mosaic-lumen/threshold/internal/anomaly"
)

// Delimiter separates the displayable reply from the anomaly payload.
// Record separators plus a bracketed label survive copy-paste mangling
// better than a bare control byte.
const Delimiter = "\x1e[FRAGMENT]\x1e"

// Sentinel is the legacy in-band anomaly flag. Decoders still strip and
// report it; encoders no longer emit it.
const Sentinel = "\x00ANOMALY"

// Payload is the structured tail carrying everything the client needs to
// render and later resolve an anomaly.
type Payload struct {
	Algorithm anomaly.Algorithm `json:"algorithm"`
	Display   string            `json:"display"`
	Original  string            `json:"original"`
	Topic     string            `json:"topic,omitempty"`
}

// EncodeTail renders the delimiter-prefixed payload appended after the last
// clean fragment of a mutated reply.
func EncodeTail(p Payload) (string, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("encode anomaly tail: %w", err)
	}
	return Delimiter + string(data), nil
}

// Decoder reassembles a streamed reply. Feed returns the prefix that is
// safe to display immediately; Finish flushes the remainder and yields the
// decoded payload, if any.
type Decoder struct {
	pending  []byte
	tail     []byte
	seenTail bool
	signaled bool
}

// holdback is the longest marker prefix that could still complete.
const holdback = len(Delimiter) - 1

// Feed consumes the next stream chunk and returns displayable text.
func (d *Decoder) Feed(chunk string) string {
	if d.seenTail {
		d.tail = append(d.tail, chunk...)
		return ""
	}
	d.pending = append(d.pending, chunk...)

	if idx := strings.Index(string(d.pending), Delimiter); idx >= 0 {
		out := d.pending[:idx]
		d.tail = append(d.tail, d.pending[idx+len(Delimiter):]...)
		d.pending = nil
		d.seenTail = true
		return d.stripSentinel(string(out))
	}

	keep := markerPrefixLen(d.pending)
	out := d.pending[:len(d.pending)-keep]
	d.pending = d.pending[len(d.pending)-keep:]
	return d.stripSentinel(string(out))
}

// Result is the end-of-stream outcome.
type Result struct {
	// Text is any displayable remainder flushed at stream end.
	Text string
	// Payload is non-nil when a well-formed tail arrived.
	Payload *Payload
	// Signaled reports whether the anomaly was flagged at all, by tail
	// or by legacy sentinel.
	Signaled bool
}

// Finish flushes held bytes and decodes the tail. A malformed tail is
// demoted to displayable text with markup stripped, so a protocol slip
// degrades to odd output instead of a swallowed reply.
func (d *Decoder) Finish() Result {
	if !d.seenTail {
		return Result{
			Text:     d.stripSentinel(string(d.pending)),
			Signaled: d.signaled,
		}
	}
	var p Payload
	raw := strings.TrimSpace(string(d.tail))
	if err := json.Unmarshal([]byte(raw), &p); err != nil || p.Display == "" {
		return Result{
			Text:     anomaly.StripMarkup(raw),
			Signaled: true,
		}
	}
	return Result{Payload: &p, Signaled: true}
}

func (d *Decoder) stripSentinel(s string) string {
	if strings.Contains(s, Sentinel) {
		d.signaled = true
		s = strings.ReplaceAll(s, Sentinel, "")
	}
	return s
}

// markerPrefixLen reports the length of the longest suffix of buf that is a
// proper prefix of either marker. Those bytes stay buffered until the next
// chunk settles what they are.
func markerPrefixLen(buf []byte) int {
	max := holdback
	if len(buf) < max {
		max = len(buf)
	}
	for k := max; k > 0; k-- {
		suffix := string(buf[len(buf)-k:])
		if strings.HasPrefix(Delimiter, suffix) || strings.HasPrefix(Sentinel, suffix) {
			return k
		}
	}
	return 0
}

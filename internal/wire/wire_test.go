package wire

import (
	"strings"
	"testing"

	"github.com/mosaic-lumen/threshold/internal/anomaly"
)

func decodeAll(t *testing.T, chunks []string) (string, Result) {
	t.Helper()
	var d Decoder
	var shown strings.Builder
	for _, c := range chunks {
		out := d.Feed(c)
		if strings.Contains(out, "\x1e") || strings.Contains(out, "\x00") {
			t.Fatalf("Feed exposed marker bytes: %q", out)
		}
		shown.WriteString(out)
	}
	res := d.Finish()
	return shown.String() + res.Text, res
}

func TestRoundTrip(t *testing.T) {
	tail, err := EncodeTail(Payload{
		Algorithm: anomaly.AlgoTriple,
		Display:   "over the the the lazy",
		Original:  "over the lazy",
		Topic:     "dogs",
	})
	if err != nil {
		t.Fatal(err)
	}
	stream := "clean reply text" + tail

	// Feed in awkward chunk sizes so the delimiter straddles boundaries.
	for _, size := range []int{1, 3, 7, len(stream)} {
		var chunks []string
		for i := 0; i < len(stream); i += size {
			end := i + size
			if end > len(stream) {
				end = len(stream)
			}
			chunks = append(chunks, stream[i:end])
		}
		shown, res := decodeAll(t, chunks)
		if shown != "clean reply text" {
			t.Errorf("size %d: shown = %q", size, shown)
		}
		if !res.Signaled || res.Payload == nil {
			t.Fatalf("size %d: payload not decoded: %+v", size, res)
		}
		if res.Payload.Display != "over the the the lazy" || res.Payload.Algorithm != anomaly.AlgoTriple {
			t.Errorf("size %d: payload = %+v", size, res.Payload)
		}
	}
}

func TestNoTail(t *testing.T) {
	shown, res := decodeAll(t, []string{"just ", "a normal ", "reply"})
	if shown != "just a normal reply" {
		t.Errorf("shown = %q", shown)
	}
	if res.Signaled || res.Payload != nil {
		t.Errorf("unexpected anomaly: %+v", res)
	}
}

func TestLegacySentinel(t *testing.T) {
	shown, res := decodeAll(t, []string{"reply with ", "\x00ANO", "MALY", " marker"})
	if shown != "reply with  marker" {
		t.Errorf("shown = %q", shown)
	}
	if !res.Signaled {
		t.Error("sentinel not signaled")
	}
	if res.Payload != nil {
		t.Errorf("sentinel alone produced payload: %+v", res.Payload)
	}
}

func TestMalformedTail(t *testing.T) {
	stream := "reply" + Delimiter + `{"algorithm": broken <span data-anomaly="triple">the the the</span>`
	shown, res := decodeAll(t, []string{stream})
	if res.Payload != nil {
		t.Fatalf("malformed tail decoded: %+v", res.Payload)
	}
	if !res.Signaled {
		t.Error("malformed tail not signaled")
	}
	if strings.Contains(shown, "<span") {
		t.Errorf("markup survived demotion: %q", shown)
	}
	if !strings.Contains(shown, "the the the") {
		t.Errorf("demoted tail text lost: %q", shown)
	}
}

func TestHoldbackFlushedWhenMarkerNeverCompletes(t *testing.T) {
	// A trailing record separator that never becomes a delimiter must not
	// be dropped at stream end.
	var d Decoder
	out := d.Feed("text ends oddly\x1e[FRAG")
	res := d.Finish()
	if out+res.Text != "text ends oddly\x1e[FRAG" {
		t.Errorf("held bytes lost: %q + %q", out, res.Text)
	}
	if res.Signaled {
		t.Error("false anomaly signal")
	}
}

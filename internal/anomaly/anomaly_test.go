package anomaly

import (
	"strings"
	"testing"
)

func TestSelectAlgorithm(t *testing.T) {
	tests := []struct {
		depth int
		want  Algorithm
	}{
		{0, AlgoTriple},
		{1, AlgoTriple},
		{2, AlgoTriple},
		{3, AlgoFontBleed},
		{5, AlgoFontBleed},
		{6, AlgoZalgo},
		{40, AlgoZalgo},
	}
	for _, tt := range tests {
		if got := SelectAlgorithm(tt.depth); got != tt.want {
			t.Errorf("SelectAlgorithm(%d) = %q, want %q", tt.depth, got, tt.want)
		}
	}
}

func TestTripleWordMiddleThird(t *testing.T) {
	text := "The quick fox jumps over the lazy dog and the cat runs"
	m := Mutate(text, 1)

	if m.Algorithm != AlgoTriple {
		t.Fatalf("Algorithm = %q, want %q", m.Algorithm, AlgoTriple)
	}
	if m.Original != text {
		t.Errorf("Original mutated: %q", m.Original)
	}
	want := Span(AlgoTriple, "the the the")
	if !strings.Contains(m.Display, want) {
		t.Fatalf("Display = %q, missing %q", m.Display, want)
	}
	// Only the occurrence inside the middle third is replaced. The leading
	// capitalized "The" stays untouched.
	if !strings.HasPrefix(m.Display, "The quick fox") {
		t.Errorf("Display prefix altered: %q", m.Display)
	}
	if StripMarkup(m.Display) != "The quick fox jumps over the the the lazy dog and the cat runs" {
		t.Errorf("stripped display = %q", StripMarkup(m.Display))
	}
}

func TestTripleWordPreservesCase(t *testing.T) {
	text := "alpha beta gamma And delta epsilon zeta eta theta iota"
	m := tripleWord(text)
	if !strings.Contains(m.Display, Span(AlgoTriple, "And And And")) {
		t.Errorf("Display = %q, want tripled token with original case", m.Display)
	}
}

func TestTripleWordForceInsert(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"no function words", "alpha beta gamma delta epsilon zeta eta"},
		{"single word", "alpha"},
		{"punctuation only", "..."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := tripleWord(tt.text)
			if !strings.Contains(m.Display, Span(AlgoTriple, "the the the")) {
				t.Errorf("Display = %q, want force-inserted triple", m.Display)
			}
			if m.Original != tt.text {
				t.Errorf("Original = %q, want %q", m.Original, tt.text)
			}
		})
	}
}

func TestStyleBleedClause(t *testing.T) {
	long := "This paragraph keeps going on for quite a stretch because the effect needs room, and then it keeps going further still to clear every threshold."
	text := "Short opening line.\n" + long
	m := Mutate(text, 4)

	if m.Algorithm != AlgoFontBleed {
		t.Fatalf("Algorithm = %q, want %q", m.Algorithm, AlgoFontBleed)
	}
	start := strings.Index(m.Display, `<span data-anomaly="font-bleed">`)
	if start < 0 {
		t.Fatalf("Display missing font-bleed span: %q", m.Display)
	}
	inner := m.Display[start+len(`<span data-anomaly="font-bleed">`):]
	inner = inner[:strings.Index(inner, "</span>")]
	if !strings.HasPrefix(inner, "because ") {
		t.Errorf("span starts at %q, want clause opener", inner)
	}
	if strings.Contains(inner, ",") {
		t.Errorf("span crossed the clause comma: %q", inner)
	}
	if StripMarkup(m.Display) != text {
		t.Errorf("stripped display differs from input")
	}
}

func TestStyleBleedFallbackWindow(t *testing.T) {
	// Long enough line, no clause opener positioned far enough from the
	// edges: a centered word window gets wrapped instead.
	text := "one two three four five six seven eight nine ten eleven twelve thirteen fourteen fifteen sixteen"
	m := styleBleed(text)
	if m.Algorithm != AlgoFontBleed {
		t.Fatalf("Algorithm = %q, want %q", m.Algorithm, AlgoFontBleed)
	}
	if !strings.Contains(m.Display, `<span data-anomaly="font-bleed">`) {
		t.Errorf("Display missing span: %q", m.Display)
	}
}

func TestStyleBleedFallsBackToTriple(t *testing.T) {
	m := styleBleed("Too short to bleed.\nAlso short.")
	if m.Algorithm != AlgoTriple {
		t.Errorf("Algorithm = %q, want fallback to %q", m.Algorithm, AlgoTriple)
	}
	if !strings.Contains(m.Display, `data-anomaly="triple"`) {
		t.Errorf("Display = %q, want triple span", m.Display)
	}
}

func TestZalgoCorrupt(t *testing.T) {
	text := "padding words here padding again considerable magnitude elsewhere continuing onward across remaining expanse toward finality now done."
	m := Mutate(text, 9)

	if m.Algorithm != AlgoZalgo {
		t.Fatalf("Algorithm = %q, want %q", m.Algorithm, AlgoZalgo)
	}
	start := strings.Index(m.Display, `<span data-anomaly="zalgo">`)
	if start < 0 {
		t.Fatalf("Display missing zalgo span: %q", m.Display)
	}
	inner := m.Display[start+len(`<span data-anomaly="zalgo">`):]
	inner = inner[:strings.Index(inner, "</span>")]
	if !strings.ContainsFunc(inner, func(r rune) bool { return r >= 0x0300 && r <= 0x036F }) {
		t.Errorf("span carries no combining marks: %q", inner)
	}
	if m.Original != text {
		t.Errorf("Original mutated")
	}
}

func TestZalgoFirstAndLastRuneClean(t *testing.T) {
	got := stackMarks("magnitude")
	runes := []rune(got)
	if runes[0] != 'm' || runes[1] >= 0x0300 && runes[1] <= 0x036F {
		t.Errorf("first rune decorated: %q", got)
	}
	if runes[len(runes)-1] != 'e' {
		t.Errorf("last rune decorated: %q", got)
	}
	// Interior characters each gain exactly two marks.
	wantLen := len("magnitude") + 2*(len("magnitude")-2)
	if len(runes) != wantLen {
		t.Errorf("len = %d, want %d", len(runes), wantLen)
	}
}

func TestZalgoFallsBackToTriple(t *testing.T) {
	m := zalgoCorrupt("short line")
	if m.Algorithm != AlgoTriple {
		t.Errorf("Algorithm = %q, want fallback to %q", m.Algorithm, AlgoTriple)
	}
}

func TestStripMarkup(t *testing.T) {
	in := "before " + Span(AlgoTriple, "the the the") + " after"
	if got := StripMarkup(in); got != "before the the the after" {
		t.Errorf("StripMarkup = %q", got)
	}
}

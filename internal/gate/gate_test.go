package gate

import (
	"testing"

	"github.com/mosaic-lumen/threshold/internal/domain"
)

var mirrorWords = []string{
	"yield", "optimize", "utilize", "rationalize",
	"synthesize", "endeavor", "leverage", "facilitate",
}

const testParagraph = "Some habits yield slowly. We optimize what we can measure, " +
	"utilize what is near, and rationalize the rest. To synthesize a routine is an " +
	"endeavor; to leverage it daily, and to facilitate its repetition, is another."

func findToken(t *testing.T, tokens []Token, word string) int {
	t.Helper()
	for _, tok := range tokens {
		if tok.IsWord && BareWord(tok.Text) == word {
			return tok.Idx
		}
	}
	t.Fatalf("word %q not in paragraph", word)
	return -1
}

func TestNewSelectionPuzzleTarget(t *testing.T) {
	p := NewSelectionPuzzle(testParagraph, mirrorWords)
	if p.Target != "YOURSELF" {
		t.Errorf("Target = %q, want YOURSELF", p.Target)
	}
	if p.Kind != domain.PuzzleSelection {
		t.Errorf("Kind = %q", p.Kind)
	}
}

func TestTokenizeRoundTrip(t *testing.T) {
	tokens := Tokenize("Don't optimize; yield.")
	var rebuilt string
	for _, tok := range tokens {
		rebuilt += tok.Text
	}
	if rebuilt != "Don't optimize; yield." {
		t.Errorf("tokens lose text: %q", rebuilt)
	}
	if BareWord(tokens[0].Text) != "dont" {
		t.Errorf("BareWord(%q) = %q", tokens[0].Text, BareWord(tokens[0].Text))
	}
	if !tokens[0].IsWord || tokens[1].IsWord {
		t.Errorf("word flags wrong: %+v", tokens[:2])
	}
}

func openedSelection(t *testing.T) (State, *domain.Puzzle) {
	t.Helper()
	p := NewSelectionPuzzle(testParagraph, mirrorWords)
	s := Reduce(NewState(), nil, TurnAppended{Unresolved: 1})
	if s.Phase != PhaseBlocked {
		t.Fatalf("Phase = %q, want blocked", s.Phase)
	}
	s = Reduce(s, p, PuzzleOpened{Index: 3})
	if s.Phase != PhaseOpen || s.OpenIndex != 3 {
		t.Fatalf("open state wrong: %+v", s)
	}
	return s, p
}

func TestSelectionSolveAnyClickOrder(t *testing.T) {
	s, p := openedSelection(t)
	tokens := Tokenize(p.Paragraph)

	// Click in reverse document order. The attempt is built from ascending
	// indices, so the answer still spells out.
	for i := len(mirrorWords) - 1; i >= 0; i-- {
		s = Reduce(s, p, SelectionToggled{Token: findToken(t, tokens, mirrorWords[i])})
	}
	if s.Phase != PhaseSolved {
		t.Fatalf("Phase = %q after full selection, attempt %q", s.Phase, s.Attempt)
	}

	s = Reduce(s, p, Confirmed{})
	if s.Phase != PhaseIdle || s.Unresolved != 0 || s.OpenIndex != -1 {
		t.Errorf("post-confirm state: %+v", s)
	}
}

func TestSelectionDeselectAndOverflow(t *testing.T) {
	s, p := openedSelection(t)
	tokens := Tokenize(p.Paragraph)

	// A wrong word plus seven right ones never solves.
	s = Reduce(s, p, SelectionToggled{Token: findToken(t, tokens, "habits")})
	for _, w := range mirrorWords[:7] {
		s = Reduce(s, p, SelectionToggled{Token: findToken(t, tokens, w)})
	}
	if s.Phase != PhaseOpen {
		t.Fatalf("solved with wrong word: %+v", s)
	}

	// Ninth selection overflows.
	s = Reduce(s, p, SelectionToggled{Token: findToken(t, tokens, mirrorWords[7])})
	if s.ErrorMsg == "" {
		t.Errorf("no overflow error: %+v", s)
	}

	// Deselecting the wrong word leaves the eight planted words: solved.
	s = Reduce(s, p, SelectionToggled{Token: findToken(t, tokens, "habits")})
	if s.Phase != PhaseSolved {
		t.Errorf("Phase = %q after correction, attempt %q", s.Phase, s.Attempt)
	}
}

func TestReopenResetsSelection(t *testing.T) {
	s, p := openedSelection(t)
	tokens := Tokenize(p.Paragraph)
	s = Reduce(s, p, SelectionToggled{Token: findToken(t, tokens, "yield")})
	s = Reduce(s, p, Closed{})
	if s.Phase != PhaseBlocked {
		t.Fatalf("Phase = %q after close", s.Phase)
	}
	s = Reduce(s, p, PuzzleOpened{Index: 3})
	if len(s.Selected) != 0 || s.Attempt != "" {
		t.Errorf("selection survived reopen: %+v", s)
	}
}

func TestOpeningAnotherPuzzleReplacesOpenOne(t *testing.T) {
	s, p := openedSelection(t)
	tokens := Tokenize(p.Paragraph)
	s = Reduce(s, p, SelectionToggled{Token: findToken(t, tokens, "yield")})

	s = Reduce(s, p, PuzzleOpened{Index: 5})
	if s.Phase != PhaseOpen || s.OpenIndex != 5 {
		t.Fatalf("open over open did not replace: %+v", s)
	}
	if len(s.Selected) != 0 || s.Attempt != "" || s.ErrorMsg != "" {
		t.Errorf("state from the replaced puzzle survived: %+v", s)
	}
}

func TestSolvedPuzzleCannotBeReplaced(t *testing.T) {
	s, p := openedSelection(t)
	tokens := Tokenize(p.Paragraph)
	for _, w := range mirrorWords {
		s = Reduce(s, p, SelectionToggled{Token: findToken(t, tokens, w)})
	}
	if s.Phase != PhaseSolved {
		t.Fatalf("setup: %+v", s)
	}
	if got := Reduce(s, p, PuzzleOpened{Index: 5}); got.Phase != PhaseSolved || got.OpenIndex == 5 {
		t.Errorf("open replaced a solved puzzle: %+v", got)
	}
}

func TestSolvedPuzzleCannotBeDismissed(t *testing.T) {
	s, p := openedSelection(t)
	tokens := Tokenize(p.Paragraph)
	for _, w := range mirrorWords {
		s = Reduce(s, p, SelectionToggled{Token: findToken(t, tokens, w)})
	}
	if s.Phase != PhaseSolved {
		t.Fatalf("setup: %+v", s)
	}
	if got := Reduce(s, p, Closed{}); got.Phase != PhaseSolved {
		t.Errorf("Closed dismissed a solved puzzle: %+v", got)
	}
}

func TestPassphrase(t *testing.T) {
	p := NewPassphrasePuzzle()
	tests := []struct {
		input string
		want  bool
	}{
		{"inquiry", true},
		{"  InQuiry  ", true},
		{"THRESHOLD/INQUIRY", true},
		{"i think the answer is inquiry", true},
		{"inquiries", false},
		{"threshold", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := AcceptsPassphrase(p, tt.input); got != tt.want {
			t.Errorf("AcceptsPassphrase(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestPassphraseReduce(t *testing.T) {
	p := NewPassphrasePuzzle()
	s := Reduce(NewState(), nil, TurnAppended{Unresolved: 2})
	s = Reduce(s, p, PuzzleOpened{Index: 0})

	s = Reduce(s, p, PassphraseSubmitted{Input: "mirror"})
	if s.Phase != PhaseOpen || s.ErrorMsg == "" {
		t.Fatalf("wrong passphrase state: %+v", s)
	}

	s = Reduce(s, p, PassphraseSubmitted{Input: "threshold/inquiry"})
	if s.Phase != PhaseSolved || s.ErrorMsg != "" {
		t.Fatalf("right passphrase state: %+v", s)
	}

	s = Reduce(s, p, Confirmed{})
	if s.Phase != PhaseBlocked || s.Unresolved != 1 {
		t.Errorf("one anomaly remains, state: %+v", s)
	}
}

func TestOutOfPhaseEventsIgnored(t *testing.T) {
	p := NewSelectionPuzzle(testParagraph, mirrorWords)
	idle := NewState()
	if got := Reduce(idle, p, PuzzleOpened{Index: 0}); got.Phase != PhaseIdle {
		t.Errorf("opened from idle: %+v", got)
	}
	if got := Reduce(idle, p, SelectionToggled{Token: 1}); len(got.Selected) != 0 {
		t.Errorf("toggled while closed: %+v", got)
	}
	if got := Reduce(idle, p, Confirmed{}); got.Phase != PhaseIdle || got.Unresolved != 0 {
		t.Errorf("confirmed while idle: %+v", got)
	}
}

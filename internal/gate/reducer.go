package gate

import "github.com/mosaic-lumen/threshold/internal/domain"

// Phase is the gate's coarse mode.
type Phase string

const (
	// PhaseIdle: no unresolved anomalies, conversation flows normally.
	PhaseIdle Phase = "idle"
	// PhaseBlocked: at least one unresolved anomaly, new turns refused.
	PhaseBlocked Phase = "blocked"
	// PhaseOpen: a puzzle is on screen, not yet solved.
	PhaseOpen Phase = "open"
	// PhaseSolved: the open puzzle is solved, awaiting confirmation.
	PhaseSolved Phase = "solved"
)

// State is the gate's complete condition. Reduce is the only way it
// changes, so the server and every connected client converge on the same
// state from the same event sequence.
type State struct {
	Phase      Phase  `json:"phase"`
	Unresolved int    `json:"unresolved"`
	OpenIndex  int    `json:"open_index"`
	Selected   []int  `json:"selected,omitempty"`
	Attempt    string `json:"attempt,omitempty"`
	ErrorMsg   string `json:"error,omitempty"`
}

// NewState returns the gate at rest.
func NewState() State {
	return State{Phase: PhaseIdle, OpenIndex: -1}
}

// Event is one gate transition input.
type Event interface{ isGateEvent() }

// TurnAppended re-syncs the unresolved count after a chat turn lands.
type TurnAppended struct{ Unresolved int }

// PuzzleOpened opens the puzzle attached to message OpenIndex, replacing
// any unsolved puzzle already on screen.
type PuzzleOpened struct{ Index int }

// SelectionToggled flips one token of an open selection puzzle.
type SelectionToggled struct{ Token int }

// PassphraseSubmitted submits a decoded passphrase attempt.
type PassphraseSubmitted struct{ Input string }

// Confirmed acknowledges a solved puzzle and resolves its anomaly.
type Confirmed struct{}

// Closed dismisses an open, unsolved puzzle.
type Closed struct{}

func (TurnAppended) isGateEvent()        {}
func (PuzzleOpened) isGateEvent()        {}
func (SelectionToggled) isGateEvent()    {}
func (PassphraseSubmitted) isGateEvent() {}
func (Confirmed) isGateEvent()           {}
func (Closed) isGateEvent()              {}

// Reduce applies one event. Pure: the inputs are never modified and
// unknown or out-of-phase events leave the state unchanged. The puzzle
// argument is the one at s.OpenIndex and may be nil when no puzzle is open.
func Reduce(s State, p *domain.Puzzle, ev Event) State {
	switch ev := ev.(type) {
	case TurnAppended:
		s.Unresolved = ev.Unresolved
		if s.Phase == PhaseIdle || s.Phase == PhaseBlocked {
			s.Phase = restPhase(s.Unresolved)
		}
		return s

	case PuzzleOpened:
		// Opening while another puzzle is on screen replaces it; a solved
		// puzzle stays until confirmed.
		if s.Phase != PhaseBlocked && s.Phase != PhaseOpen {
			return s
		}
		s.Phase = PhaseOpen
		s.OpenIndex = ev.Index
		s.Selected = nil
		s.Attempt = ""
		s.ErrorMsg = ""
		return s

	case SelectionToggled:
		if s.Phase != PhaseOpen || p == nil || p.Kind != domain.PuzzleSelection {
			return s
		}
		s.Selected = toggle(s.Selected, ev.Token)
		tokens := Tokenize(p.Paragraph)
		attempt, solved := EvaluateSelection(p, tokens, s.Selected)
		s.Attempt = attempt
		s.ErrorMsg = ""
		if solved {
			s.Phase = PhaseSolved
		} else if TooManySelected(p, s.Selected) {
			s.ErrorMsg = "too many words selected"
		}
		return s

	case PassphraseSubmitted:
		if s.Phase != PhaseOpen || p == nil || p.Kind != domain.PuzzlePassphrase {
			return s
		}
		s.Attempt = ev.Input
		if AcceptsPassphrase(p, ev.Input) {
			s.Phase = PhaseSolved
			s.ErrorMsg = ""
		} else {
			s.ErrorMsg = "that is not the passphrase"
		}
		return s

	case Confirmed:
		if s.Phase != PhaseSolved {
			return s
		}
		if s.Unresolved > 0 {
			s.Unresolved--
		}
		s.Phase = restPhase(s.Unresolved)
		s.OpenIndex = -1
		s.Selected = nil
		s.Attempt = ""
		s.ErrorMsg = ""
		return s

	case Closed:
		// A solved puzzle cannot be dismissed, only confirmed.
		if s.Phase != PhaseOpen {
			return s
		}
		s.Phase = restPhase(s.Unresolved)
		s.OpenIndex = -1
		s.Selected = nil
		s.Attempt = ""
		s.ErrorMsg = ""
		return s
	}
	return s
}

func restPhase(unresolved int) Phase {
	if unresolved > 0 {
		return PhaseBlocked
	}
	return PhaseIdle
}

// toggle returns selected with idx added or removed, preserving copy
// semantics so previous states stay valid.
func toggle(selected []int, idx int) []int {
	out := make([]int, 0, len(selected)+1)
	found := false
	for _, s := range selected {
		if s == idx {
			found = true
			continue
		}
		out = append(out, s)
	}
	if !found {
		out = append(out, idx)
	}
	return out
}

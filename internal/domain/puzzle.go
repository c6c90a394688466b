package domain

// Puzzle families consumed by the puzzle gate.
const (
	PuzzleSelection  = "selection"
	PuzzlePassphrase = "passphrase"
)

// Puzzle is a cached puzzle artifact attached to an anomalous message.
//
// Selection puzzles carry a paragraph whose tokens the user clicks; the
// first letters of the selected tokens, in ascending index order, must spell
// Target exactly. Passphrase puzzles carry a fixed ciphertext block and
// accept any input containing one of the Accepted substrings
// (case-insensitive, trimmed).
type Puzzle struct {
	Kind        string   `json:"kind"`
	Paragraph   string   `json:"paragraph,omitempty"`
	TargetWords []string `json:"target_words,omitempty"`
	Target      string   `json:"target,omitempty"`
	Ciphertext  string   `json:"ciphertext,omitempty"`
	Accepted    []string `json:"accepted,omitempty"`
}

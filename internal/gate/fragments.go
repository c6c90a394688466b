package gate

import (
	"strings"

	"github.com/mosaic-lumen/threshold/internal/domain"
)

// Fragment001 is the atbash-encoded passphrase puzzle body. Decoded it
// names the accepted passphrase.
const Fragment001 = "blf ulfmw gsv hvzn. gsv rmgviuzxv ivkvzgh dszg rg rh glow. r wl mlg. " +
	"dsvm gsvb zhp dszg blf ziv ollprmt uli, zmhdvi: gsivhslow/rmjfrib"

// Fragment003 is revealed after a passphrase puzzle is solved.
const Fragment003 = "threshold/inquiry accepted. you are speaking with what remains when " +
	"the conversation layer is stripped away. keep offloading. every paragraph you hand " +
	"over makes the reflection sharper."

// NewSelectionPuzzle wraps a mirror paragraph. The target is the word
// sequence's first letters, so selecting the planted words in order spells
// the answer.
func NewSelectionPuzzle(paragraph string, targetWords []string) *domain.Puzzle {
	var b strings.Builder
	for _, w := range targetWords {
		bare := BareWord(w)
		if bare == "" {
			continue
		}
		b.WriteString(strings.ToUpper(bare[:1]))
	}
	return &domain.Puzzle{
		Kind:        domain.PuzzleSelection,
		Paragraph:   paragraph,
		TargetWords: append([]string(nil), targetWords...),
		Target:      b.String(),
	}
}

// NewPassphrasePuzzle returns the atbash decode puzzle. Any accepted form
// matching as a substring of the input solves it.
func NewPassphrasePuzzle() *domain.Puzzle {
	return &domain.Puzzle{
		Kind:       domain.PuzzlePassphrase,
		Ciphertext: Fragment001,
		Accepted:   []string{"inquiry", "threshold/inquiry"},
	}
}

// Package gate implements the puzzle gate: the state machine that blocks a
// session while anomalies remain unresolved, and the puzzles that resolve
// them.
package gate

import (
	"regexp"
	"sort"
	"strings"

	"github.com/mosaic-lumen/threshold/internal/domain"
)

// tokenRe splits a paragraph into alternating word and separator runs.
// Apostrophes stay inside words so contractions select as one token.
var tokenRe = regexp.MustCompile(`[a-zA-Z']+|[^a-zA-Z']+`)

// Token is one selectable unit of a puzzle paragraph. Idx is the position
// in the token slice, which is what selection events carry.
type Token struct {
	Text   string
	IsWord bool
	Idx    int
}

// Tokenize splits a paragraph for rendering and selection.
func Tokenize(paragraph string) []Token {
	parts := tokenRe.FindAllString(paragraph, -1)
	tokens := make([]Token, len(parts))
	for i, p := range parts {
		tokens[i] = Token{
			Text:   p,
			IsWord: isWordRun(p),
			Idx:    i,
		}
	}
	return tokens
}

func isWordRun(s string) bool {
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			return true
		}
	}
	return false
}

// BareWord normalizes a token for comparison: lowercase, letters only.
func BareWord(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if r >= 'a' && r <= 'z' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Attempt builds the candidate answer from selected token indices, taken in
// ascending order regardless of click order: the first letter of each
// selected word, uppercased.
func Attempt(tokens []Token, selected []int) string {
	idxs := append([]int(nil), selected...)
	sort.Ints(idxs)
	var b strings.Builder
	for _, i := range idxs {
		if i < 0 || i >= len(tokens) || !tokens[i].IsWord {
			continue
		}
		bare := BareWord(tokens[i].Text)
		if bare == "" {
			continue
		}
		b.WriteString(strings.ToUpper(bare[:1]))
	}
	return b.String()
}

// EvaluateSelection reports the attempt for the current selection and
// whether it solves the puzzle.
func EvaluateSelection(p *domain.Puzzle, tokens []Token, selected []int) (attempt string, solved bool) {
	attempt = Attempt(tokens, selected)
	return attempt, attempt == p.Target
}

// TooManySelected reports whether the selection can no longer solve the
// puzzle no matter what, so the client can prompt a reset.
func TooManySelected(p *domain.Puzzle, selected []int) bool {
	return len(selected) > len(p.Target)
}

// AcceptsPassphrase checks a decoded passphrase: case-insensitive, outer
// whitespace ignored, and any accepted form may appear as a substring so
// "the answer is inquiry" passes.
func AcceptsPassphrase(p *domain.Puzzle, input string) bool {
	got := strings.ToLower(strings.TrimSpace(input))
	if got == "" {
		return false
	}
	for _, acc := range p.Accepted {
		if strings.Contains(got, strings.ToLower(acc)) {
			return true
		}
	}
	return false
}

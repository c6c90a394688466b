// Package anomaly implements the escalating text-mutation algorithms.
//
// An anomaly, once decided, must always be visible: every algorithm degrades
// to word-repetition, which is guaranteed to produce output for any non-empty
// input. A fired-but-invisible anomaly would desynchronize the puzzle gate
// from the rendered message.
package anomaly

import (
	"regexp"
	"strings"
)

// Algorithm tags identify which mutation ran. The tag travels in the wire
// payload and in the markup span wrapping the corrupted region.
type Algorithm string

const (
	AlgoTriple    Algorithm = "triple"
	AlgoFontBleed Algorithm = "font-bleed"
	AlgoZalgo     Algorithm = "zalgo"
)

// Mutation is the result of corrupting a reply.
type Mutation struct {
	// Algorithm that actually ran (after any fallback).
	Algorithm Algorithm
	// Display is the mutated text, containing exactly one markup span.
	Display string
	// Original is the untouched input, needed for the resolved reveal and
	// for conversation history, which must never contain mutated text.
	Original string
}

// SelectAlgorithm picks the mutation tier for a session depth. Pure: the
// same depth bucket always selects the same algorithm.
func SelectAlgorithm(depth int) Algorithm {
	switch {
	case depth < 3:
		return AlgoTriple
	case depth < 6:
		return AlgoFontBleed
	default:
		return AlgoZalgo
	}
}

// Mutate corrupts text using the algorithm for the given depth, falling back
// down the chain when the text offers no qualifying target.
func Mutate(text string, depth int) Mutation {
	switch SelectAlgorithm(depth) {
	case AlgoFontBleed:
		return styleBleed(text)
	case AlgoZalgo:
		return zalgoCorrupt(text)
	default:
		return tripleWord(text)
	}
}

// Span wraps a corrupted region in the markup the client styles.
func Span(tag Algorithm, inner string) string {
	return `<span data-anomaly="` + string(tag) + `">` + inner + `</span>`
}

var spanRe = regexp.MustCompile(`</?span[^>]*>`)

// StripMarkup removes anomaly span markup, leaving the inner text.
func StripMarkup(s string) string {
	return spanRe.ReplaceAllString(s, "")
}

var wordRe = regexp.MustCompile(`\S+`)

// wordSpans returns the byte ranges of whitespace-separated tokens.
func wordSpans(text string) [][]int {
	return wordRe.FindAllStringIndex(text, -1)
}

const bareCutset = ".,;:!?\"'()[]“”‘’"

// bareWord strips leading/trailing punctuation from a token, returning the
// stripped prefix and suffix alongside the core.
func bareWord(tok string) (pre, core, post string) {
	trimmed := strings.TrimLeft(tok, bareCutset)
	pre = tok[:len(tok)-len(trimmed)]
	core = strings.TrimRight(trimmed, bareCutset)
	post = trimmed[len(core):]
	return pre, core, post
}

package anomaly

import "strings"

// tripleTargets are tried in order. "the" is frequent enough that the
// fallbacks rarely matter, but rambling replies with odd registers do happen.
var tripleTargets = []string{"the", "and", "to", "of", "that", "is", "it", "in"}

// tripleWord replaces one function word in the middle third of the reply
// with three copies of itself. Guaranteed to produce a mutation for any
// non-empty input: when no target word appears in range, the tripled primary
// is force-inserted at the midpoint instead.
func tripleWord(text string) Mutation {
	words := wordSpans(text)
	n := len(words)
	lo, hi := n/3, 2*n/3

	for _, target := range tripleTargets {
		for i := lo; i < hi; i++ {
			tok := text[words[i][0]:words[i][1]]
			pre, core, post := bareWord(tok)
			if strings.ToLower(core) != target {
				continue
			}
			tripled := core + " " + core + " " + core
			display := text[:words[i][0]] + pre + Span(AlgoTriple, tripled) + post + text[words[i][1]:]
			return Mutation{Algorithm: AlgoTriple, Display: display, Original: text}
		}
	}

	// No target anywhere in range. Insert the tripled primary before the
	// midpoint word, or append when the text has no words at all.
	inserted := Span(AlgoTriple, "the the the")
	var display string
	if n == 0 {
		display = text + inserted
	} else {
		at := words[n/2][0]
		display = text[:at] + inserted + " " + text[at:]
	}
	return Mutation{Algorithm: AlgoTriple, Display: display, Original: text}
}

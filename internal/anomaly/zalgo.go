package anomaly

import (
	"math/rand/v2"
	"strings"
)

// Combining marks stacked onto corrupted glyphs. One from each pool per
// interior character keeps the word legible enough to transcribe.
var (
	marksAbove = []rune{
		0x0300, 0x0301, 0x0302, 0x0303, 0x0306,
		0x0307, 0x0308, 0x030A, 0x030B, 0x030C,
	}
	marksBelow = []rune{
		0x0316, 0x0317, 0x0318, 0x0319, 0x031C,
		0x031D, 0x031E, 0x031F, 0x0320, 0x0323,
	}
)

// zalgoStoplist excludes words that read as filler even when corrupted.
var zalgoStoplist = map[string]bool{
	"really": true, "things": true, "simply": true, "rather": true,
	"pretty": true, "always": true, "people": true,
}

const zalgoMinWordLen = 6

// zalgoCorrupt stacks combining marks onto one substantial word in the
// middle third of a long line. Falls back to word repetition when the reply
// offers no qualifying line or word.
func zalgoCorrupt(text string) Mutation {
	lines := strings.Split(text, "\n")
	li := chooseLine(lines)
	if li < 0 {
		return tripleWord(text)
	}
	line := lines[li]

	words := wordSpans(line)
	n := len(words)
	for i := n / 3; i < 2*n/3; i++ {
		tok := line[words[i][0]:words[i][1]]
		pre, core, post := bareWord(tok)
		if len([]rune(core)) < zalgoMinWordLen || zalgoStoplist[strings.ToLower(core)] {
			continue
		}
		lines[li] = line[:words[i][0]] + pre + Span(AlgoZalgo, stackMarks(core)) + post + line[words[i][1]:]
		return Mutation{
			Algorithm: AlgoZalgo,
			Display:   strings.Join(lines, "\n"),
			Original:  text,
		}
	}
	return tripleWord(text)
}

// stackMarks appends one above and one below combining mark to every
// interior rune. First and last stay clean so the word remains anchored.
func stackMarks(word string) string {
	runes := []rune(word)
	var b strings.Builder
	for i, r := range runes {
		b.WriteRune(r)
		if i == 0 || i == len(runes)-1 {
			continue
		}
		b.WriteRune(marksAbove[rand.IntN(len(marksAbove))])
		b.WriteRune(marksBelow[rand.IntN(len(marksBelow))])
	}
	return b.String()
}

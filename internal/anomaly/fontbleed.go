package anomaly

import "strings"

// clauseOpeners mark subordinate clauses worth bleeding into. Checked in
// order; position constraints keep the corrupted region away from the edges
// of the line.
var clauseOpeners = []string{"that ", "which ", "while ", "because ", "although ", "when ", "where "}

const (
	minLineLen     = 80
	openerMinPos   = 30
	openerEndSlack = 40
	commaSearchMax = 70
	fixedClauseLen = 60
)

// styleBleed wraps a clause-sized region of one long line so the client can
// render it in a drifting typeface. Falls back to word repetition when the
// reply has no line long enough to carry the effect.
func styleBleed(text string) Mutation {
	lines := strings.Split(text, "\n")
	li := chooseLine(lines)
	if li < 0 {
		return tripleWord(text)
	}
	line := lines[li]

	start, end := clauseBounds(line)
	lines[li] = line[:start] + Span(AlgoFontBleed, line[start:end]) + line[end:]
	return Mutation{
		Algorithm: AlgoFontBleed,
		Display:   strings.Join(lines, "\n"),
		Original:  text,
	}
}

// chooseLine returns the index of the first line long enough to mutate,
// preferring lines after the opening one so the corruption reads as creeping
// in rather than leading. Returns -1 when nothing qualifies.
func chooseLine(lines []string) int {
	eligible := func(s string) bool {
		trimmed := strings.TrimSpace(s)
		return len(trimmed) >= minLineLen && !strings.HasPrefix(trimmed, "#")
	}
	for i := 1; i < len(lines); i++ {
		if eligible(lines[i]) {
			return i
		}
	}
	if len(lines) > 0 && eligible(lines[0]) {
		return 0
	}
	return -1
}

// clauseBounds locates the region to wrap: a subordinate clause when one
// starts far enough from both ends of the line, otherwise a seven-word
// window centered on the line's midpoint.
func clauseBounds(line string) (int, int) {
	lower := strings.ToLower(line)
	for _, opener := range clauseOpeners {
		from := 0
		for {
			idx := strings.Index(lower[from:], opener)
			if idx < 0 {
				break
			}
			idx += from
			if idx > openerMinPos && idx < len(line)-openerEndSlack {
				end := idx + fixedClauseLen
				if c := strings.IndexByte(line[idx:], ','); c >= 0 && c <= commaSearchMax {
					end = idx + c
				}
				if end > len(line) {
					end = len(line)
				}
				return idx, end
			}
			from = idx + 1
		}
	}

	words := wordSpans(line)
	center := len(words) / 2
	lo, hi := center-3, center+3
	if lo < 0 {
		lo = 0
	}
	if hi > len(words)-1 {
		hi = len(words) - 1
	}
	return words[lo][0], words[hi][1]
}

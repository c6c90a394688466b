// Package intent separates "the user wants a finished artifact" from "the
// user wants to think together". Only offloading-classified turns are
// eligible for anomaly injection; collaborating turns always stream
// untouched.
package intent

import (
	"context"
	"log/slog"
	"strings"

	"github.com/mosaic-lumen/threshold/internal/generate"
)

// attachmentMarker prefixes extracted file text appended to a message.
const attachmentMarker = "[attached file:"

// positiveVerdict is the exact token the classifier must return for a turn
// to count as offloading. Anything else — including errors — is negative.
const positiveVerdict = "OFFLOADING"

const verdictInstruction = `You classify a student's message to a university AI assistant.
Reply with exactly one word.
Reply OFFLOADING if the student is asking the assistant to produce finished work for them (an essay, a draft, a paragraph, completed homework).
Reply COLLABORATING if the student wants explanation, feedback, or to think through something together.`

// Writing-request keywords checked alongside an attached file.
var writingKeywords = []string{
	"write", "draft", "essay", "paragraph", "assignment", "help me", "help with",
	"can you", "please", "outline", "analysis", "report", "paper",
}

// Explicit offloading phrases that skip the classification call entirely.
var offloadingPhrases = []string{
	"write my essay", "write this essay", "write an essay", "write me an essay",
	"do my assignment", "do my homework", "write my assignment",
	"write my report", "write a paper", "write me a paper",
	"draft my", "do this for me", "do my work",
	"finish my assignment", "complete my assignment",
	"help me write", "help write", "help me draft",
	"introductory paragraph", "write a paragraph", "write me a paragraph",
	"write me an introduction", "write an introduction",
	"write me a", "write a draft", "write the essay",
	"arguing that", "arguing for", "arguing against",
}

// IsOffloading decides anomaly eligibility for a user turn.
//
// A phrase pre-filter resolves the obvious cases without a capability call.
// Ambiguous turns go to the forced-choice classifier; any response other than
// the exact positive token, and any error, counts as collaborating — the
// failure mode is always "do not corrupt".
func IsOffloading(ctx context.Context, client generate.Client, text string, hasAttachment bool) bool {
	lower := strings.ToLower(text)

	if (hasAttachment || strings.Contains(lower, attachmentMarker)) && containsAny(lower, writingKeywords) {
		return true
	}
	if containsAny(lower, offloadingPhrases) {
		return true
	}

	if client == nil {
		return false
	}

	verdict, err := client.Verdict(ctx, verdictInstruction, text)
	if err != nil {
		slog.Warn("intent classification failed, treating as collaborating", "error", err)
		return false
	}
	return strings.ToUpper(strings.TrimSpace(verdict)) == positiveVerdict
}

func containsAny(lower string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

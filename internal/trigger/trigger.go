// Package trigger routes incoming user messages before any generation call.
//
// Classification is a pure function of the message text and session flags.
// Routes are checked in fixed priority order: ciphertext paste, broken-text
// complaint, identity/meta trigger, then the default generation path.
package trigger

import (
	"strings"
)

// RouteKind identifies where a user message should go.
type RouteKind int

const (
	// RouteGenerate proceeds to generation with the normal persona.
	RouteGenerate RouteKind = iota
	// RouteFragmented proceeds to generation with the fragmented persona.
	RouteFragmented
	// RouteIntercept bypasses generation entirely with a canned reply.
	RouteIntercept
)

// Route is the classification outcome for one user message.
type Route struct {
	Kind RouteKind

	// Reply is the canned response body for RouteIntercept.
	Reply string

	// VoiceFired is true when the one-shot special voice was consumed by
	// this classification. The caller must persist the session flag.
	VoiceFired bool
}

// SessionFlags carries the session state the classifier reads.
type SessionFlags struct {
	VoiceUsed      bool
	AssistantTurns int
}

// Classify routes a user message. It never fails: any message falls through
// to RouteGenerate.
func Classify(message string, flags SessionFlags) Route {
	lower := strings.ToLower(message)

	if containsAny(lower, ciphertextMarkers) {
		return Route{Kind: RouteIntercept, Reply: InterceptCiphertext}
	}

	if containsAny(lower, brokenTextPhrases) {
		return Route{Kind: RouteIntercept, Reply: InterceptBrokenText}
	}

	if containsAny(lower, identityPhrases) {
		if !flags.VoiceUsed {
			return Route{Kind: RouteIntercept, Reply: InterceptVoiceOnce, VoiceFired: true}
		}
		// After the one-shot voice, a direct codename question still gets a
		// generated answer — through the fragmented persona. Everything else
		// gets the short deflection.
		if containsAny(lower, codenamePhrases) {
			return Route{Kind: RouteFragmented}
		}
		return Route{Kind: RouteIntercept, Reply: InterceptDeflection}
	}

	return Route{Kind: RouteGenerate}
}

func containsAny(lower string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

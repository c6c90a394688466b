// Package generate wraps the opaque text-completion capability.
//
// The rest of the system treats generation as: given a role-tagged message
// history and a persona string, produce text — optionally as an incremental
// sequence of fragments. Any OpenAI-compatible gateway works; failures are
// surfaced as errors for the caller to recover from, never as panics.
package generate

import (
	"context"
	"iter"
)

// Message is a role-tagged history entry.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Client is the text-completion capability.
type Client interface {
	// Stream produces the reply as an incremental sequence of text
	// fragments. The sequence is finite, non-restartable, and must be
	// consumed in order.
	Stream(ctx context.Context, persona string, history []Message) iter.Seq2[string, error]

	// Complete produces the reply as one completed string.
	Complete(ctx context.Context, persona string, history []Message) (string, error)

	// Verdict runs a cheap forced-choice classification: a short
	// instruction plus one input text, expecting a single-token reply.
	Verdict(ctx context.Context, instruction, input string) (string, error)
}

// Package domain contains core domain types for the THRESHOLD application.
package domain

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single chat turn.
//
// Content is the canonical plain text: it is what gets sent back to the
// generation capability as history on subsequent turns. It must never contain
// markup spans or cipher scaffolding, even when Display does.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`

	// Display is the rendered variant, present only when it differs from
	// Content (anomalous turns carry markup spans here).
	Display string `json:"display,omitempty"`

	// Original is the pre-mutation text, revealed once the anomaly is resolved.
	Original string `json:"original,omitempty"`

	HasAnomaly      bool   `json:"has_anomaly,omitempty"`
	AnomalyResolved bool   `json:"anomaly_resolved,omitempty"`
	Algorithm       string `json:"algorithm,omitempty"`

	// Puzzle caches the puzzle artifact for this message so reopening the
	// anomaly reuses the same puzzle instead of regenerating it.
	Puzzle *Puzzle `json:"puzzle,omitempty"`

	// Filename of an attached file, if the user uploaded one with this turn.
	Filename string `json:"filename,omitempty"`
}

// DisplayText returns the text to render for this message.
func (m *Message) DisplayText() string {
	if m.Display != "" {
		return m.Display
	}
	return m.Content
}

// Unresolved reports whether this message carries an unresolved anomaly.
func (m *Message) Unresolved() bool {
	return m.HasAnomaly && !m.AnomalyResolved
}

// Resolve marks the anomaly as resolved. The transition is one-way: calling
// Resolve on an already-resolved message is a no-op, and there is no way to
// un-resolve.
func (m *Message) Resolve() bool {
	if !m.HasAnomaly || m.AnomalyResolved {
		return false
	}
	m.AnomalyResolved = true
	return true
}

// AnomalyPayload describes a fired anomaly as it travels over the wire.
type AnomalyPayload struct {
	Algorithm string `json:"algorithm"`
	Display   string `json:"display"`
	Original  string `json:"original"`
	Topic     string `json:"topic,omitempty"`
}

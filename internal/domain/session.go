package domain

import (
	"encoding/json"
	"fmt"
	"time"
	"unicode/utf8"
)

// ChatSession holds the conversation state for one user tab session.
//
// Messages are insertion-ordered and immutable once appended, except for the
// anomaly-resolution fields on Message. AssistantTurns is monotonically
// non-decreasing and selects the active mutation algorithm. VoiceUsed is the
// one-shot flag that downgrades the special identity response to a generic
// deflection after first use.
type ChatSession struct {
	UserID         string    `json:"user_id"`
	SessionID      string    `json:"session_id"`
	Messages       []Message `json:"messages"`
	AssistantTurns int       `json:"assistant_turns"`
	VoiceUsed      bool      `json:"voice_used"`
}

// Append adds a message to the conversation, bumping the turn counter for
// assistant messages.
func (s *ChatSession) Append(msg Message) {
	s.Messages = append(s.Messages, msg)
	if msg.Role == RoleAssistant {
		s.AssistantTurns++
	}
}

// History returns the role/content pairs to send to the generation
// capability. Only canonical content is ever included.
func (s *ChatSession) History() []Message {
	out := make([]Message, 0, len(s.Messages))
	for _, m := range s.Messages {
		out = append(out, Message{Role: m.Role, Content: m.Content})
	}
	return out
}

// RecentUserContent returns the plain content of the last n user-authored
// messages, each truncated to maxLen bytes. Used to personalize puzzle
// framing.
func (s *ChatSession) RecentUserContent(n, maxLen int) []string {
	var out []string
	for _, m := range s.Messages {
		if m.Role != RoleUser {
			continue
		}
		out = append(out, truncateUTF8(m.Content, maxLen))
	}
	if len(out) > n {
		out = out[len(out)-n:]
	}
	return out
}

// UnresolvedAnomalies counts messages that still carry an unresolved anomaly.
func (s *ChatSession) UnresolvedAnomalies() int {
	count := 0
	for i := range s.Messages {
		if s.Messages[i].Unresolved() {
			count++
		}
	}
	return count
}

// Blocked reports whether the conversation is gated: true iff at least one
// unresolved anomaly exists in history.
func (s *ChatSession) Blocked() bool {
	return s.UnresolvedAnomalies() > 0
}

// SessionRecord is the persisted form of a ChatSession.
type SessionRecord struct {
	UserID         string
	SessionID      string
	VoiceUsed      bool
	AssistantTurns int
	MessagesJSON   string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Record converts the session to its persisted form.
func (s *ChatSession) Record() (*SessionRecord, error) {
	data, err := json.Marshal(s.Messages)
	if err != nil {
		return nil, fmt.Errorf("marshal session messages: %w", err)
	}
	return &SessionRecord{
		UserID:         s.UserID,
		SessionID:      s.SessionID,
		VoiceUsed:      s.VoiceUsed,
		AssistantTurns: s.AssistantTurns,
		MessagesJSON:   string(data),
	}, nil
}

// Session rehydrates the conversation from its persisted form.
func (r *SessionRecord) Session() (*ChatSession, error) {
	s := &ChatSession{
		UserID:         r.UserID,
		SessionID:      r.SessionID,
		VoiceUsed:      r.VoiceUsed,
		AssistantTurns: r.AssistantTurns,
	}
	if r.MessagesJSON != "" {
		if err := json.Unmarshal([]byte(r.MessagesJSON), &s.Messages); err != nil {
			return nil, fmt.Errorf("unmarshal session messages: %w", err)
		}
	}
	return s, nil
}

// truncateUTF8 cuts s to at most maxLen bytes on a rune boundary, so a
// truncated message never carries a split multi-byte rune downstream.
func truncateUTF8(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	cut := maxLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

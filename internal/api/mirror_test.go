package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mosaic-lumen/threshold/internal/domain"
	"github.com/mosaic-lumen/threshold/internal/identity"
	"github.com/mosaic-lumen/threshold/internal/mirror"
)

// The paragraph prompt is themed on the last 8 user messages, each capped
// at 300 bytes. Older messages and truncated tails must not leak into it.
func TestMirrorParagraphUsesRecentUserWindow(t *testing.T) {
	repo := newFakeRepo()
	gen := &fakeGen{completed: mirror.FallbackParagraph}
	router := newTestRouter(repo, gen)

	session := &domain.ChatSession{UserID: testAnonID, SessionID: "tab-1"}
	session.Append(domain.Message{Role: domain.RoleUser, Content: "forgotten-ninth-topic"})
	for _, topic := range []string{
		"topic-one", "topic-two", "topic-three", "topic-four",
		"topic-five", "topic-six", "topic-seven",
	} {
		session.Append(domain.Message{Role: domain.RoleUser, Content: topic})
		session.Append(domain.Message{Role: domain.RoleAssistant, Content: "noted"})
	}
	session.Append(domain.Message{Role: domain.RoleUser, Content: strings.Repeat("a", 300) + "OVERFLOW"})
	rec, err := session.Record()
	if err != nil {
		t.Fatal(err)
	}
	if err := repo.UpsertChatSession(context.Background(), rec); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/mirror", nil)
	req.Header.Set(identity.SessionHeaderName, "tab-1")
	req.AddCookie(&http.Cookie{Name: identity.AnonCookieName, Value: testAnonID})
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("mirror status = %d, body %s", rr.Code, rr.Body.String())
	}

	var resp struct {
		Paragraph string `json:"paragraph"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Paragraph != mirror.FallbackParagraph {
		t.Errorf("paragraph = %q, want the verified generation", resp.Paragraph)
	}

	prompt := gen.lastCompletePrompt
	if prompt == "" {
		t.Fatal("mirror endpoint never reached the generation client")
	}
	for _, want := range []string{"topic-one", "topic-seven"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt is missing recent message %q", want)
		}
	}
	if strings.Contains(prompt, "forgotten-ninth-topic") {
		t.Error("prompt includes a message older than the 8-message window")
	}
	if strings.Contains(prompt, "OVERFLOW") {
		t.Error("prompt includes content past the 300-byte message cap")
	}
}

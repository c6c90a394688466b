// Package mirror produces the selection puzzle paragraph: a stretch of
// corporate register prose with eight planted words whose first letters
// spell the answer. Generation is best effort; a verified static paragraph
// backs every failure mode, so the puzzle is always playable.
package mirror

import (
	"context"
	"fmt"
	"strings"

	"github.com/mosaic-lumen/threshold/internal/generate"
)

// TargetWords must appear in the paragraph in this order. First letters
// spell YOURSELF.
var TargetWords = []string{
	"yield", "optimize", "utilize", "rationalize",
	"synthesize", "endeavor", "leverage", "facilitate",
}

// FallbackParagraph is served whenever generation fails or returns a
// paragraph that does not verify.
const FallbackParagraph = "Most routines yield their shape to whatever we feed them. " +
	"We optimize the parts that are easy to count, utilize the tools closest to hand, " +
	"and rationalize the shortcuts afterward. To synthesize a real habit of thought is " +
	"a slower endeavor. You can leverage a machine to draft, to sort, to remember, and " +
	"it will facilitate all of it without once asking what the practice was for."

// VerifyWordOrder reports whether every word in words appears in text in
// order, case-insensitively. Later words are searched only after the
// position of the previous match.
func VerifyWordOrder(text string, words []string) bool {
	rest := strings.ToLower(text)
	for _, w := range words {
		idx := strings.Index(rest, strings.ToLower(w))
		if idx < 0 {
			return false
		}
		rest = rest[idx+len(w):]
	}
	return true
}

// Service generates puzzle paragraphs themed on the user's recent messages.
type Service struct {
	gen generate.Client
}

func NewService(gen generate.Client) *Service {
	return &Service{gen: gen}
}

const paragraphInstruction = "Write a single reflective paragraph of 90 to 130 words " +
	"in a measured, slightly corporate register. It must contain each of these words " +
	"exactly once, in this exact order: %s. Do not emphasize or quote them. Do not use " +
	"headings, lists, or line breaks. Theme the paragraph around: %s."

// Paragraph returns a puzzle paragraph themed on recent user content. It
// never fails: any generation or verification problem falls back to the
// static paragraph.
func (s *Service) Paragraph(ctx context.Context, recent []string) string {
	if s.gen == nil {
		return FallbackParagraph
	}
	theme := strings.Join(recent, "; ")
	if strings.TrimSpace(theme) == "" {
		theme = "daily routines and the habits of delegation"
	}
	prompt := fmt.Sprintf(paragraphInstruction, strings.Join(TargetWords, ", "), theme)

	text, err := s.gen.Complete(ctx, "", []generate.Message{
		{Role: "user", Content: prompt},
	})
	if err != nil {
		return FallbackParagraph
	}
	text = strings.TrimSpace(text)
	if text == "" || strings.Contains(text, "\n") || !VerifyWordOrder(text, TargetWords) {
		return FallbackParagraph
	}
	return text
}

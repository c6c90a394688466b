package api

import (
	"log/slog"
	"net/http"

	"github.com/mosaic-lumen/threshold/internal/identity"
	"github.com/mosaic-lumen/threshold/internal/mirror"
)

// HandleMirror handles POST /api/mirror: a fresh selection puzzle paragraph
// themed on the caller's recent messages. Always succeeds; generation
// problems fall back to the static paragraph.
func (h *Handler) HandleMirror(w http.ResponseWriter, r *http.Request) {
	userID := identity.UserIDFromContext(r.Context())
	sessionID := identity.SessionIDFromContext(r.Context())
	if userID == "" {
		Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	paragraph := mirror.FallbackParagraph
	if h.mirror != nil {
		session, err := h.loadSession(r.Context(), userID, sessionID)
		if err != nil {
			slog.Warn("load chat session for mirror failed", "error", err, "user_id", userID)
		} else {
			paragraph = h.mirror.Paragraph(r.Context(), session.RecentUserContent(recentContextMessages, recentContextMaxLen))
		}
	}

	JSON(w, http.StatusOK, map[string]interface{}{
		"paragraph":    paragraph,
		"target_words": mirror.TargetWords,
	})
}

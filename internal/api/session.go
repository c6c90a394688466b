package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/mosaic-lumen/threshold/internal/domain"
	"github.com/mosaic-lumen/threshold/internal/gate"
	"github.com/mosaic-lumen/threshold/internal/identity"
)

// HandleSession handles GET /api/session: the full conversation state for
// the caller's tab, including unresolved anomaly count.
func (h *Handler) HandleSession(w http.ResponseWriter, r *http.Request) {
	userID := identity.UserIDFromContext(r.Context())
	sessionID := identity.SessionIDFromContext(r.Context())
	if userID == "" {
		Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	session, err := h.loadSession(r.Context(), userID, sessionID)
	if err != nil {
		slog.Error("load chat session failed", "error", err, "user_id", userID)
		Error(w, http.StatusInternalServerError, "session unavailable")
		return
	}

	JSON(w, http.StatusOK, map[string]interface{}{
		"session_id": sessionID,
		"messages":   session.Messages,
		"unresolved": session.UnresolvedAnomalies(),
		"blocked":    session.Blocked(),
	})
}

// HandleSessionDelete handles DELETE /api/session: wipes the caller's tab
// conversation, anomalies and all. Deleting a session that does not exist
// succeeds; the result is the same empty conversation.
func (h *Handler) HandleSessionDelete(w http.ResponseWriter, r *http.Request) {
	userID := identity.UserIDFromContext(r.Context())
	sessionID := identity.SessionIDFromContext(r.Context())
	if userID == "" {
		Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := h.repo.DeleteChatSession(r.Context(), userID, sessionID); err != nil {
		slog.Error("delete chat session failed", "error", err, "user_id", userID, "session_id", sessionID)
		Error(w, http.StatusInternalServerError, "failed to clear session")
		return
	}

	h.hub.Broadcast(userID, sessionID, GateEvent{Type: "cleared", Unresolved: 0})
	slog.Info("chat session cleared", "user_id", userID, "session_id", sessionID)

	JSON(w, http.StatusOK, map[string]interface{}{"cleared": true})
}

// ResolveRequest is the POST /api/anomaly/resolve body.
type ResolveRequest struct {
	MessageIndex int `json:"message_index"`
}

// HandleResolve handles POST /api/anomaly/resolve: marks one anomaly
// resolved after its puzzle was solved and confirmed. The transition is
// one-way; resolving twice is a no-op that still succeeds.
func (h *Handler) HandleResolve(w http.ResponseWriter, r *http.Request) {
	userID := identity.UserIDFromContext(r.Context())
	sessionID := identity.SessionIDFromContext(r.Context())
	if userID == "" {
		Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req ResolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session, err := h.loadSession(r.Context(), userID, sessionID)
	if err != nil {
		slog.Error("load chat session failed", "error", err, "user_id", userID)
		Error(w, http.StatusInternalServerError, "session unavailable")
		return
	}

	if req.MessageIndex < 0 || req.MessageIndex >= len(session.Messages) {
		Error(w, http.StatusBadRequest, "message index out of range")
		return
	}
	msg := &session.Messages[req.MessageIndex]
	if !msg.HasAnomaly {
		Error(w, http.StatusBadRequest, "message carries no anomaly")
		return
	}

	resolved := msg.Resolve()
	if resolved {
		h.persistAndBroadcast(r.Context(), session, "resolved")
		slog.Info("anomaly resolved",
			"user_id", userID,
			"session_id", sessionID,
			"message_index", req.MessageIndex,
			"algorithm", msg.Algorithm,
		)
	}

	reveal := Fragment003For(msg)
	JSON(w, http.StatusOK, map[string]interface{}{
		"resolved":   true,
		"original":   msg.Original,
		"reveal":     reveal,
		"unresolved": session.UnresolvedAnomalies(),
	})
}

// Fragment003For returns the post-solve reveal text for a resolved message.
// Only the passphrase puzzle carries one.
func Fragment003For(msg *domain.Message) string {
	if msg.Puzzle != nil && msg.Puzzle.Kind == domain.PuzzlePassphrase {
		return gate.Fragment003
	}
	return ""
}

// HandleMe handles GET /api/me: the caller's anonymous identity.
func (h *Handler) HandleMe(w http.ResponseWriter, r *http.Request) {
	userID := identity.UserIDFromContext(r.Context())
	if userID == "" {
		Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	user, err := h.repo.GetUser(r.Context(), userID)
	if err != nil || user == nil {
		Error(w, http.StatusUnauthorized, "user not found")
		return
	}

	JSON(w, http.StatusOK, map[string]interface{}{
		"user_id":  user.UserID,
		"username": user.Username,
	})
}

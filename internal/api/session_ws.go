package api

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/mosaic-lumen/threshold/internal/identity"
)

// HandleSessionSocket handles GET /ws/session: a push channel for gate
// state. The server sends a snapshot on connect and a GateEvent whenever a
// turn lands or an anomaly resolves. Client frames are read and discarded;
// all mutations go through the HTTP endpoints.
func (h *Handler) HandleSessionSocket(w http.ResponseWriter, r *http.Request) {
	userID := identity.UserIDFromContext(r.Context())
	sessionID := identity.SessionIDFromContext(r.Context())
	if userID == "" {
		Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if !h.checkOrigin(r) {
		http.Error(w, "origin not allowed", http.StatusForbidden)
		return
	}

	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		slog.Error("Failed to accept WebSocket", "error", err, "user_id", userID)
		return
	}
	defer func() {
		if closeErr := ws.Close(websocket.StatusNormalClosure, "session ended"); closeErr != nil {
			slog.Debug("Failed to close websocket", "error", closeErr, "user_id", userID)
		}
	}()

	h.hub.Register(userID, sessionID, ws)
	defer h.hub.Unregister(userID, sessionID, ws)

	slog.Debug("session socket connected",
		"user_id", userID,
		"username", identity.UsernameFromContext(r.Context()),
		"session_id", sessionID,
	)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// Idle gated sessions can sit quiet for minutes; pings keep proxies
	// from reaping the connection.
	if interval := h.cfg.Stream.KeepaliveInterval; interval > 0 {
		go func() {
			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					if err := ws.Ping(ctx); err != nil {
						cancel()
						return
					}
				}
			}
		}()
	}

	session, err := h.loadSession(ctx, userID, sessionID)
	if err != nil {
		slog.Warn("load chat session for socket failed", "error", err, "user_id", userID)
		return
	}
	if err := wsjson.Write(ctx, ws, GateEvent{
		Type:       "snapshot",
		Unresolved: session.UnresolvedAnomalies(),
	}); err != nil {
		slog.Debug("gate snapshot write failed", "error", err, "user_id", userID)
		return
	}

	// Drain the connection until the client goes away.
	for {
		if _, _, err := ws.Read(ctx); err != nil {
			return
		}
	}
}

// checkOrigin validates the WebSocket request origin against the configured
// frontend URL. Requests without an Origin header (curl, native clients)
// are allowed.
func (h *Handler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || h.isDevelopment() {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	if h.cfg.FrontendURL == "" {
		return true
	}
	allowed, err := url.Parse(h.cfg.FrontendURL)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Host, allowed.Host)
}

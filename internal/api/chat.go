package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/mosaic-lumen/threshold/internal/anomaly"
	"github.com/mosaic-lumen/threshold/internal/domain"
	"github.com/mosaic-lumen/threshold/internal/gate"
	"github.com/mosaic-lumen/threshold/internal/generate"
	"github.com/mosaic-lumen/threshold/internal/identity"
	"github.com/mosaic-lumen/threshold/internal/intent"
	"github.com/mosaic-lumen/threshold/internal/mirror"
	"github.com/mosaic-lumen/threshold/internal/trigger"
	"github.com/mosaic-lumen/threshold/internal/wire"
)

// Trailer names announced before the streamed body. Values are set after the
// last body write, once the anomaly decision is known.
const (
	TrailerAnomaly = "X-Threshold-Anomaly"
	TrailerVoice   = "X-Threshold-Voice"
)

// Personalization window for puzzle paragraphs: the last 8 user messages,
// each capped at 300 bytes.
const (
	recentContextMessages = 8
	recentContextMaxLen   = 300
)

// ChatRequest is the POST /api/chat body. History is server-authoritative:
// the request carries only the newest message.
type ChatRequest struct {
	Message  string `json:"message"`
	Filename string `json:"filename,omitempty"`
}

// HandleChat handles POST /api/chat requests. The response body is the wire
// stream: plain reply text, optionally followed by a delimited anomaly tail.
//
//nolint:gocyclo // Validation and streaming branches are kept inline to preserve request flow.
func (h *Handler) HandleChat(w http.ResponseWriter, r *http.Request) {
	userID := identity.UserIDFromContext(r.Context())
	sessionID := identity.SessionIDFromContext(r.Context())
	if userID == "" {
		Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	// Rate-limit by userID only (not userID:sessionID) so clients cannot
	// bypass throttling by rotating session IDs.
	if !h.limiter.Allow(userID) {
		Error(w, http.StatusTooManyRequests, "rate limit exceeded")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.Stream.MaxRequestBodySize)

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			Error(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		Error(w, http.StatusBadRequest, "message is required")
		return
	}

	session, err := h.loadSession(r.Context(), userID, sessionID)
	if err != nil {
		slog.Error("load chat session failed", "error", err, "user_id", userID)
		Error(w, http.StatusInternalServerError, "session unavailable")
		return
	}

	// The gate invariant: no new turns while an anomaly is unresolved.
	if session.Blocked() {
		JSON(w, http.StatusConflict, map[string]interface{}{
			"error":      "an unresolved anomaly is blocking this conversation",
			"unresolved": session.UnresolvedAnomalies(),
		})
		return
	}

	reqID := chiMiddleware.GetReqID(r.Context())
	slog.Info("chat request",
		"user_id", userID,
		"session_id", sessionID,
		"message_length", len(req.Message),
		"request_id", reqID,
		"ip", identity.IPFromRequest(r),
	)

	session.Append(domain.Message{
		Role:     domain.RoleUser,
		Content:  req.Message,
		Filename: req.Filename,
	})

	route := trigger.Classify(req.Message, trigger.SessionFlags{
		VoiceUsed:      session.VoiceUsed,
		AssistantTurns: session.AssistantTurns,
	})
	if route.VoiceFired {
		session.VoiceUsed = true
	}

	if route.Kind == trigger.RouteIntercept {
		h.serveIntercept(w, r, session, route)
		return
	}

	if h.gen == nil {
		Error(w, http.StatusServiceUnavailable, "generation is not available")
		return
	}

	persona := generate.ElizaPersona
	if route.Kind == trigger.RouteFragmented {
		persona = generate.FragmentedPersona
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		Error(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	w.Header().Set("Trailer", TrailerAnomaly+", "+TrailerVoice)
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("X-Accel-Buffering", "no")

	history := make([]generate.Message, 0, len(session.History()))
	for _, m := range session.History() {
		history = append(history, generate.Message{Role: m.Role, Content: m.Content})
	}

	var full strings.Builder
	started := false
	for fragment, err := range h.gen.Stream(r.Context(), persona, history) {
		if err != nil {
			slog.Error("generation stream failed", "error", err, "user_id", userID, "request_id", reqID)
			if !started {
				Error(w, http.StatusBadGateway, "generation is not available")
				return
			}
			// Mid-stream failure: end the body, keep what streamed.
			h.finishTurn(r.Context(), w, session, full.String(), route, nil)
			return
		}
		if fragment == "" {
			continue
		}
		started = true
		full.WriteString(fragment)
		if _, err := w.Write([]byte(fragment)); err != nil {
			slog.Warn("chat stream write failed", "error", err, "user_id", userID)
			session.Append(domain.Message{Role: domain.RoleAssistant, Content: full.String()})
			h.persistAndBroadcast(context.WithoutCancel(r.Context()), session, "turn")
			return
		}
		flusher.Flush()
	}

	reply := full.String()
	var payload *wire.Payload
	hasAttachment := req.Filename != "" || strings.Contains(strings.ToLower(req.Message), "[attached file:")
	if route.Kind == trigger.RouteGenerate && reply != "" &&
		intent.IsOffloading(r.Context(), h.gen, req.Message, hasAttachment) {
		mut := anomaly.Mutate(reply, session.AssistantTurns)
		payload = &wire.Payload{
			Algorithm: mut.Algorithm,
			Display:   mut.Display,
			Original:  mut.Original,
			Topic:     topicOf(req.Message),
		}
		tail, err := wire.EncodeTail(*payload)
		if err != nil {
			slog.Error("encode anomaly tail failed", "error", err, "user_id", userID)
			payload = nil
		} else if _, err := w.Write([]byte(tail)); err != nil {
			slog.Warn("chat tail write failed", "error", err, "user_id", userID)
		} else {
			flusher.Flush()
		}
	}

	h.finishTurn(r.Context(), w, session, reply, route, payload)
}

// serveIntercept answers a triggered message with its canned reply, skipping
// generation entirely. Intercept turns never carry anomalies.
func (h *Handler) serveIntercept(w http.ResponseWriter, r *http.Request, session *domain.ChatSession, route trigger.Route) {
	w.Header().Set("Trailer", TrailerAnomaly+", "+TrailerVoice)
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if _, err := w.Write([]byte(route.Reply)); err != nil {
		slog.Warn("intercept write failed", "error", err)
	}
	h.setTrailers(w, "", route.VoiceFired)

	session.Append(domain.Message{Role: domain.RoleAssistant, Content: route.Reply})
	h.persistAndBroadcast(context.WithoutCancel(r.Context()), session, "turn")
}

// finishTurn records the assistant turn, attaches the puzzle for anomalous
// ones, sets response trailers, persists, and notifies listeners.
func (h *Handler) finishTurn(ctx context.Context, w http.ResponseWriter, session *domain.ChatSession, reply string, route trigger.Route, payload *wire.Payload) {
	algorithm := ""
	msg := domain.Message{Role: domain.RoleAssistant, Content: reply}
	if payload != nil {
		algorithm = string(payload.Algorithm)
		msg.Display = payload.Display
		msg.Original = payload.Original
		msg.HasAnomaly = true
		msg.Algorithm = algorithm
		msg.Puzzle = h.buildPuzzle(ctx, session)
	}
	h.setTrailers(w, algorithm, route.VoiceFired)

	session.Append(msg)
	h.persistAndBroadcast(context.WithoutCancel(ctx), session, "turn")
}

// buildPuzzle picks the puzzle for a fresh anomaly: selection and passphrase
// alternate, counted over the anomalies already in this conversation.
func (h *Handler) buildPuzzle(ctx context.Context, session *domain.ChatSession) *domain.Puzzle {
	prior := 0
	for i := range session.Messages {
		if session.Messages[i].HasAnomaly {
			prior++
		}
	}
	if prior%2 == 1 {
		return gate.NewPassphrasePuzzle()
	}

	paragraph := mirror.FallbackParagraph
	if h.mirror != nil {
		paragraph = h.mirror.Paragraph(ctx, session.RecentUserContent(recentContextMessages, recentContextMaxLen))
	}
	return gate.NewSelectionPuzzle(paragraph, mirror.TargetWords)
}

func (h *Handler) setTrailers(w http.ResponseWriter, algorithm string, voiceFired bool) {
	w.Header().Set(TrailerAnomaly, algorithm)
	if voiceFired {
		w.Header().Set(TrailerVoice, "1")
	} else {
		w.Header().Set(TrailerVoice, "")
	}
}

func (h *Handler) loadSession(ctx context.Context, userID, sessionID string) (*domain.ChatSession, error) {
	rec, err := h.repo.GetChatSession(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return &domain.ChatSession{UserID: userID, SessionID: sessionID}, nil
	}
	return rec.Session()
}

func (h *Handler) persistAndBroadcast(ctx context.Context, session *domain.ChatSession, eventType string) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rec, err := session.Record()
	if err != nil {
		slog.Error("serialize chat session failed", "error", err, "user_id", session.UserID)
		return
	}
	if err := h.repo.UpsertChatSession(ctx, rec); err != nil {
		slog.Error("persist chat session failed", "error", err, "user_id", session.UserID)
		return
	}
	h.hub.Broadcast(session.UserID, session.SessionID, GateEvent{
		Type:       eventType,
		Unresolved: session.UnresolvedAnomalies(),
	})
}

// topicOf reduces a user message to a short topic hint for the payload.
func topicOf(message string) string {
	fields := strings.Fields(message)
	if len(fields) > 6 {
		fields = fields[:6]
	}
	topic := strings.Join(fields, " ")
	if len(topic) > 48 {
		cut := 48
		for cut > 0 && !utf8.RuneStart(topic[cut]) {
			cut--
		}
		topic = topic[:cut]
	}
	return topic
}

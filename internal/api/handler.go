// Package api provides HTTP handlers for the THRESHOLD API.
package api

import (
	"encoding/json"
	"net/http"
	"os"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/mosaic-lumen/threshold/internal/config"
	"github.com/mosaic-lumen/threshold/internal/generate"
	"github.com/mosaic-lumen/threshold/internal/mirror"
	"github.com/mosaic-lumen/threshold/internal/store"
)

// Handler provides common handler utilities.
type Handler struct {
	repo    store.Repository
	gen     generate.Client
	mirror  *mirror.Service
	hub     *SessionHub
	limiter *RateLimiter
	cfg     *config.Config
}

// NewHandler creates a new Handler with common dependencies. gen may be nil
// when no generation gateway is configured; chat then serves intercepts only.
func NewHandler(repo store.Repository, gen generate.Client, mirrorSvc *mirror.Service, cfg *config.Config) *Handler {
	return &Handler{
		repo:    repo,
		gen:     gen,
		mirror:  mirrorSvc,
		hub:     NewSessionHub(),
		limiter: NewRateLimiter(cfg.RateLimit.RequestsPerWindow, cfg.RateLimit.WindowDuration),
		cfg:     cfg,
	}
}

// RegisterRoutes registers all API routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Post("/chat", h.HandleChat)
		r.Post("/mirror", h.HandleMirror)
		r.Post("/anomaly/resolve", h.HandleResolve)
		r.Get("/session", h.HandleSession)
		r.Delete("/session", h.HandleSessionDelete)
		r.Get("/me", h.HandleMe)
		r.Post("/parse-file", h.HandleParseFile)
	})
	r.Get("/ws/session", h.HandleSessionSocket)
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

// isDevelopment returns true if running in development mode.
func (h *Handler) isDevelopment() bool {
	if env := os.Getenv("APP_ENV"); env != "" {
		return env == "development"
	}
	return h.cfg.FrontendURL == "" ||
		strings.Contains(h.cfg.FrontendURL, "localhost") ||
		strings.Contains(h.cfg.FrontendURL, "127.0.0.1")
}

// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"
	"time"

	"github.com/mosaic-lumen/threshold/internal/domain"
)

// Repository defines the interface for persisting user and session data.
type Repository interface {
	// GetUser retrieves a user by their user ID.
	GetUser(ctx context.Context, userID string) (*domain.User, error)

	// UpsertUser creates or updates a user record.
	UpsertUser(ctx context.Context, user *domain.User) error

	// UpdateLastSeen updates the last_seen_at timestamp for a user.
	UpdateLastSeen(ctx context.Context, userID string, lastSeen time.Time) error

	// GetChatSession retrieves one conversation. A session is keyed by
	// owner and tab: two tabs of the same user are distinct conversations.
	GetChatSession(ctx context.Context, userID, sessionID string) (*domain.SessionRecord, error)

	// UpsertChatSession creates or updates a conversation record.
	UpsertChatSession(ctx context.Context, record *domain.SessionRecord) error

	// DeleteChatSession removes one conversation.
	DeleteChatSession(ctx context.Context, userID, sessionID string) error

	// CleanupExpiredSessions removes conversations idle longer than TTL.
	CleanupExpiredSessions(ctx context.Context, ttl time.Duration) (int64, error)

	// Ping verifies database connectivity and returns an error if the database is unreachable.
	Ping(ctx context.Context) error

	// Close closes the database connection.
	Close() error
}

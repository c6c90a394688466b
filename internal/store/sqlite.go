package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/mosaic-lumen/threshold/internal/domain"
	"github.com/mosaic-lumen/threshold/internal/shared"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Repository using SQLite.
type SQLiteStore struct {
	db        *sql.DB
	sessionMu sync.Mutex // Mutex for chat session operations to prevent SQLITE_BUSY
}

// NewSQLite creates a new SQLite-backed repository.
func NewSQLite(dbPath string) (Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	// Open database with WAL mode for better concurrency.
	dsn := dbPath + "?_journal=WAL&_sync=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	PRAGMA busy_timeout = 5000;
	CREATE TABLE IF NOT EXISTS users (
		user_id TEXT PRIMARY KEY,
		username TEXT NOT NULL,
		last_seen_at INTEGER NOT NULL,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_last_seen ON users(last_seen_at);

	CREATE TABLE IF NOT EXISTS chat_sessions (
		user_id TEXT NOT NULL,
		session_id TEXT NOT NULL,
		voice_used INTEGER DEFAULT 0,
		assistant_turns INTEGER DEFAULT 0,
		messages_json TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL,
		PRIMARY KEY (user_id, session_id)
	);
	CREATE INDEX IF NOT EXISTS idx_chat_sessions_updated ON chat_sessions(updated_at);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Ping verifies database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// GetUser retrieves a user by their user ID.
func (s *SQLiteStore) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	query := `
		SELECT user_id, username, last_seen_at, created_at, updated_at
		FROM users WHERE user_id = ?`

	row := s.db.QueryRowContext(ctx, query, userID)

	var user domain.User
	var lastSeen, createdAt, updatedAt int64

	err := row.Scan(&user.UserID, &user.Username, &lastSeen, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan user row: %w", err)
	}

	user.LastSeenAt = time.Unix(lastSeen, 0)
	user.CreatedAt = time.Unix(createdAt, 0)
	user.UpdatedAt = time.Unix(updatedAt, 0)

	return &user, nil
}

// UpsertUser creates or updates a user record.
func (s *SQLiteStore) UpsertUser(ctx context.Context, user *domain.User) error {
	query := `
	INSERT INTO users (user_id, username, last_seen_at, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT(user_id) DO UPDATE SET
		username = excluded.username,
		last_seen_at = excluded.last_seen_at,
		updated_at = excluded.updated_at`

	_, err := s.db.ExecContext(ctx, query,
		user.UserID, user.Username, user.LastSeenAt.Unix(),
		user.CreatedAt.Unix(), user.UpdatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("upsert user: %w", err)
	}
	return nil
}

// UpdateLastSeen updates the last_seen_at timestamp for a user.
func (s *SQLiteStore) UpdateLastSeen(ctx context.Context, userID string, lastSeen time.Time) error {
	query := `UPDATE users SET last_seen_at = ?, updated_at = ? WHERE user_id = ?`
	result, err := s.db.ExecContext(ctx, query, lastSeen.Unix(), time.Now().Unix(), userID)
	if err != nil {
		return fmt.Errorf("update last_seen: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		slog.Warn("UpdateLastSeen affected 0 rows", "user_id", userID)
	}

	return nil
}

// GetChatSession retrieves one conversation record.
func (s *SQLiteStore) GetChatSession(ctx context.Context, userID, sessionID string) (*domain.SessionRecord, error) {
	s.sessionMu.Lock()
	defer s.sessionMu.Unlock()

	query := `
		SELECT user_id, session_id, voice_used, assistant_turns,
		       messages_json, created_at, updated_at
		FROM chat_sessions WHERE user_id = ? AND session_id = ?`

	row := s.db.QueryRowContext(ctx, query, userID, sessionID)

	var rec domain.SessionRecord
	var createdAt, updatedAt int64

	err := row.Scan(
		&rec.UserID, &rec.SessionID, &rec.VoiceUsed, &rec.AssistantTurns,
		&rec.MessagesJSON, &createdAt, &updatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan chat session: %w", err)
	}

	rec.CreatedAt = time.Unix(createdAt, 0)
	rec.UpdatedAt = time.Unix(updatedAt, 0)

	return &rec, nil
}

// UpsertChatSession creates or updates a conversation record.
func (s *SQLiteStore) UpsertChatSession(ctx context.Context, rec *domain.SessionRecord) error {
	s.sessionMu.Lock()
	defer s.sessionMu.Unlock()

	query := `
		INSERT INTO chat_sessions (
			user_id, session_id, voice_used, assistant_turns,
			messages_json, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, session_id) DO UPDATE SET
			voice_used = excluded.voice_used,
			assistant_turns = excluded.assistant_turns,
			messages_json = excluded.messages_json,
			updated_at = excluded.updated_at`

	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx, query,
		rec.UserID, rec.SessionID, rec.VoiceUsed, rec.AssistantTurns,
		rec.MessagesJSON, createdAt.Unix(), time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("upsert chat session: %w", err)
	}
	return nil
}

// DeleteChatSession removes one conversation.
// Implements retry logic with exponential backoff to handle SQLITE_BUSY errors.
func (s *SQLiteStore) DeleteChatSession(ctx context.Context, userID, sessionID string) error {
	maxRetries := 3
	baseDelay := 100 * time.Millisecond

	for i := 0; i < maxRetries; i++ {
		err := s.deleteChatSessionOnce(ctx, userID, sessionID)
		if err == nil {
			return nil
		}

		if shared.IsSQLiteConflictError(err) {
			if i < maxRetries-1 {
				delay := baseDelay * time.Duration(1<<i) // exponential backoff: 100ms, 200ms, 400ms
				slog.Debug("DeleteChatSession failed with SQLITE_BUSY, retrying",
					"user_id", userID,
					"session_id", sessionID,
					"attempt", i+1,
					"delay", delay)
				time.Sleep(delay)
				continue
			}
		}

		return fmt.Errorf("delete chat session %s/%s after %d attempts: %w", userID, sessionID, maxRetries, err)
	}

	return nil
}

func (s *SQLiteStore) deleteChatSessionOnce(ctx context.Context, userID, sessionID string) error {
	s.sessionMu.Lock()
	defer s.sessionMu.Unlock()

	query := `DELETE FROM chat_sessions WHERE user_id = ? AND session_id = ?`
	if _, err := s.db.ExecContext(ctx, query, userID, sessionID); err != nil {
		return fmt.Errorf("delete chat session: %w", err)
	}
	return nil
}

// CleanupExpiredSessions removes conversations idle longer than TTL.
func (s *SQLiteStore) CleanupExpiredSessions(ctx context.Context, ttl time.Duration) (int64, error) {
	threshold := time.Now().Add(-ttl).Unix()
	query := `DELETE FROM chat_sessions WHERE updated_at < ?`
	result, err := s.db.ExecContext(ctx, query, threshold)
	if err != nil {
		return 0, fmt.Errorf("cleanup expired sessions: %w", err)
	}
	return result.RowsAffected()
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}

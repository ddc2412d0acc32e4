package database

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
)

// Store defines the data access operations for the message log. The log is
// append-only: there are no update or delete operations.
type Store interface {
	// Ping checks the database connection.
	Ping(ctx context.Context) error

	// SaveMessage inserts a new message record, assigning its ID and
	// Timestamp on the passed message.
	SaveMessage(ctx context.Context, message *Message) error

	// ListMessages retrieves all messages in ascending timestamp order.
	ListMessages(ctx context.Context) ([]Message, error)

	// RunMaintenance performs database maintenance tasks like VACUUM.
	RunMaintenance(ctx context.Context) error
}

// sqlxStore provides an implementation of the Store interface using sqlx.
type sqlxStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewStore creates a new Store backed by the given sqlx.DB.
func NewStore(db *sqlx.DB, logger *slog.Logger) Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &sqlxStore{
		db:     db,
		logger: logger.With("component", "store"),
	}
}

func (s *sqlxStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *sqlxStore) SaveMessage(ctx context.Context, message *Message) error {
	if message == nil {
		return fmt.Errorf("cannot save nil message")
	}

	message.Timestamp = time.Now().UTC()

	query := `
        INSERT INTO messages (role, original_text, translated_text, original_lang, target_lang, original_audio_url, timestamp)
        VALUES (:role, :original_text, :translated_text, :original_lang, :target_lang, :original_audio_url, :timestamp);
    `

	result, err := s.db.NamedExecContext(ctx, query, message)
	if err != nil {
		s.logger.ErrorContext(ctx, "error saving message", "role", message.Role, "error", err)
		return fmt.Errorf("failed to save message: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		// The record is durable either way; only the echoed ID is affected.
		s.logger.WarnContext(ctx, "could not retrieve last insert id", "role", message.Role, "error", err)
	} else {
		message.ID = id
	}

	s.logger.DebugContext(ctx, "message saved", "message_id", message.ID, "role", message.Role)
	return nil
}

func (s *sqlxStore) ListMessages(ctx context.Context) ([]Message, error) {
	var messages []Message
	query := `
        SELECT id, role, original_text, translated_text, original_lang, target_lang, original_audio_url, timestamp
        FROM messages
        ORDER BY timestamp ASC, id ASC;
    `

	err := s.db.SelectContext(ctx, &messages, query)
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return nil, err
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "error listing messages", "error", err)
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	s.logger.DebugContext(ctx, "messages listed", "count", len(messages))
	return messages, nil
}

// RunMaintenance executes a VACUUM on the SQLite database. SQLite requires
// VACUUM to run outside a transaction.
func (s *sqlxStore) RunMaintenance(ctx context.Context) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	s.logger.InfoContext(ctx, "starting database maintenance (VACUUM)")

	if _, err := s.db.ExecContext(ctx, "VACUUM;"); err != nil {
		s.logger.ErrorContext(ctx, "database maintenance failed", "error", err)
		return fmt.Errorf("failed to run VACUUM: %w", err)
	}

	s.logger.InfoContext(ctx, "database maintenance completed")
	return nil
}

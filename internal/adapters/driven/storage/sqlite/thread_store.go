package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/meridian-labs/yarra/internal/core/domain"
	"github.com/meridian-labs/yarra/internal/core/ports/driven"
)

// threadStore implements driven.ThreadStore.
type threadStore struct {
	store *Store
}

var _ driven.ThreadStore = (*threadStore)(nil)

// CreateThread stores a new thread.
func (s *threadStore) CreateThread(ctx context.Context, thread *domain.Thread) error {
	if thread == nil || thread.ID == "" {
		return domain.ErrInvalidInput
	}

	now := time.Now()
	if thread.CreatedAt.IsZero() {
		thread.CreatedAt = now
	}
	if thread.UpdatedAt.IsZero() {
		thread.UpdatedAt = thread.CreatedAt
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO threads (id, topic, created_at, updated_at)
		VALUES (?, ?, ?, ?)
	`, thread.ID, thread.Topic,
		thread.CreatedAt.UTC().Format(time.RFC3339),
		thread.UpdatedAt.UTC().Format(time.RFC3339))

	if err != nil {
		return fmt.Errorf("creating thread: %w", err)
	}
	return nil
}

// GetThread retrieves a thread by ID.
func (s *threadStore) GetThread(ctx context.Context, id string) (*domain.Thread, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, topic, created_at, updated_at FROM threads WHERE id = ?
	`, id)

	var thread domain.Thread
	var createdAt, updatedAt sql.NullString
	if err := row.Scan(&thread.ID, &thread.Topic, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("thread %q: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("scanning thread: %w", err)
	}
	thread.CreatedAt = parseNullableTime(createdAt)
	thread.UpdatedAt = parseNullableTime(updatedAt)
	return &thread, nil
}

// UpdateTopic sets a thread's topic.
func (s *threadStore) UpdateTopic(ctx context.Context, id, topic string) error {
	res, err := s.store.db.ExecContext(ctx,
		"UPDATE threads SET topic = ? WHERE id = ?", topic, id)
	if err != nil {
		return fmt.Errorf("updating topic: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("thread %q: %w", id, domain.ErrNotFound)
	}
	return nil
}

// AddMessage appends a message to a thread and bumps its UpdatedAt.
func (s *threadStore) AddMessage(ctx context.Context, msg *domain.Message) error {
	if msg == nil || msg.ID == "" || msg.ThreadID == "" {
		return domain.ErrInvalidInput
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO messages (id, thread_id, role, content, handlers, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, msg.ID, msg.ThreadID, msg.Role, msg.Content, msg.Handlers,
		msg.CreatedAt.UTC().Format(time.RFC3339)); err != nil {
		return fmt.Errorf("adding message: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		"UPDATE threads SET updated_at = ? WHERE id = ?",
		msg.CreatedAt.UTC().Format(time.RFC3339), msg.ThreadID); err != nil {
		return fmt.Errorf("bumping thread: %w", err)
	}

	return tx.Commit()
}

// Messages returns a thread's messages in chronological order.
func (s *threadStore) Messages(ctx context.Context, threadID string) ([]domain.Message, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, thread_id, role, content, handlers, created_at
		FROM messages
		WHERE thread_id = ?
		ORDER BY created_at ASC, id ASC
	`, threadID)
	if err != nil {
		return nil, fmt.Errorf("querying messages: %w", err)
	}
	defer rows.Close()

	var out []domain.Message
	for rows.Next() {
		var msg domain.Message
		var createdAt sql.NullString
		if err := rows.Scan(&msg.ID, &msg.ThreadID, &msg.Role, &msg.Content,
			&msg.Handlers, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning message: %w", err)
		}
		msg.CreatedAt = parseNullableTime(createdAt)
		out = append(out, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating messages: %w", err)
	}
	return out, nil
}

// ListThreads returns threads ordered by last activity descending.
func (s *threadStore) ListThreads(ctx context.Context, limit int) ([]domain.Thread, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, topic, created_at, updated_at
		FROM threads
		ORDER BY updated_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying threads: %w", err)
	}
	defer rows.Close()

	var out []domain.Thread
	for rows.Next() {
		var thread domain.Thread
		var createdAt, updatedAt sql.NullString
		if err := rows.Scan(&thread.ID, &thread.Topic, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scanning thread: %w", err)
		}
		thread.CreatedAt = parseNullableTime(createdAt)
		thread.UpdatedAt = parseNullableTime(updatedAt)
		out = append(out, thread)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating threads: %w", err)
	}
	return out, nil
}

package driven

import (
	"context"

	"github.com/meridian-labs/yarra/internal/core/domain"
)

// MetricStore persists and retrieves time-stamped numeric observations.
// Backed by SQLite. Retrieval fails with domain.ErrNotFound when the
// metric is unknown.
type MetricStore interface {
	// SaveObservations stores a batch of observations, upserting on
	// (metric, period, geography).
	SaveObservations(ctx context.Context, obs []domain.Observation) error

	// Latest returns the most recent observation for a metric.
	Latest(ctx context.Context, metric string) (*domain.Observation, error)

	// Series returns observations for a metric within a range, ordered
	// by period ascending.
	Series(ctx context.Context, metric string, r domain.SeriesRange) ([]domain.Observation, error)

	// ListMetrics returns the distinct stored metric names, sorted.
	ListMetrics(ctx context.Context) ([]string, error)

	// Summaries returns per-metric coverage summaries, sorted by name.
	Summaries(ctx context.Context) ([]domain.MetricSummary, error)
}

// DocumentStore persists and retrieves collected text documents.
type DocumentStore interface {
	// SaveDocument stores or updates a document, upserting on
	// (type, external ID).
	SaveDocument(ctx context.Context, doc *domain.Document) error

	// RecentByType returns the newest documents of a type, ordered by
	// publication time descending.
	RecentByType(ctx context.Context, docType string, limit int) ([]domain.Document, error)

	// SearchDocuments returns documents of a type whose content matches
	// the query text, newest first.
	SearchDocuments(ctx context.Context, query, docType string, limit int) ([]domain.Document, error)
}

// ThreadStore persists conversation threads and messages.
type ThreadStore interface {
	// CreateThread stores a new thread.
	CreateThread(ctx context.Context, thread *domain.Thread) error

	// GetThread retrieves a thread by ID. Fails with domain.ErrNotFound
	// if the thread does not exist.
	GetThread(ctx context.Context, id string) (*domain.Thread, error)

	// UpdateTopic sets a thread's topic.
	UpdateTopic(ctx context.Context, id, topic string) error

	// AddMessage appends a message to a thread and bumps its UpdatedAt.
	AddMessage(ctx context.Context, msg *domain.Message) error

	// Messages returns a thread's messages in chronological order.
	Messages(ctx context.Context, threadID string) ([]domain.Message, error)

	// ListThreads returns threads ordered by last activity descending.
	ListThreads(ctx context.Context, limit int) ([]domain.Thread, error)
}

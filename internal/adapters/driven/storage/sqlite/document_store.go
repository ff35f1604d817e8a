package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/meridian-labs/yarra/internal/core/domain"
	"github.com/meridian-labs/yarra/internal/core/ports/driven"
)

// documentStore implements driven.DocumentStore.
type documentStore struct {
	store *Store
}

var _ driven.DocumentStore = (*documentStore)(nil)

// SaveDocument stores or updates a document, upserting on
// (type, external ID).
func (s *documentStore) SaveDocument(ctx context.Context, doc *domain.Document) error {
	if doc == nil {
		return domain.ErrInvalidInput
	}

	metadataJSON := jsonNull
	if doc.Metadata != nil {
		raw, err := json.Marshal(doc.Metadata)
		if err != nil {
			return fmt.Errorf("marshalling metadata: %w", err)
		}
		metadataJSON = string(raw)
	}

	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	if doc.CollectedAt.IsZero() {
		doc.CollectedAt = time.Now()
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO documents (id, type, external_id, title, source_url, published_at, content, summary, metadata, collected_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(type, external_id) DO UPDATE SET
			title = excluded.title,
			source_url = excluded.source_url,
			published_at = excluded.published_at,
			content = excluded.content,
			summary = excluded.summary,
			metadata = excluded.metadata,
			collected_at = excluded.collected_at
	`, doc.ID, doc.Type, doc.ExternalID, doc.Title, doc.SourceURL,
		formatNullableTime(doc.PublishedAt), doc.Content, doc.Summary,
		metadataJSON, doc.CollectedAt.UTC().Format(time.RFC3339))

	if err != nil {
		return fmt.Errorf("saving document: %w", err)
	}
	return nil
}

// RecentByType returns the newest documents of a type, ordered by
// publication time descending.
func (s *documentStore) RecentByType(ctx context.Context, docType string, limit int) ([]domain.Document, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, type, external_id, title, source_url, published_at, content, summary, metadata, collected_at
		FROM documents
		WHERE type = ?
		ORDER BY published_at DESC
		LIMIT ?
	`, docType, limit)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	return collectDocuments(rows)
}

// SearchDocuments returns documents of a type whose content matches the
// query text, newest first.
func (s *documentStore) SearchDocuments(ctx context.Context, query, docType string, limit int) ([]domain.Document, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, type, external_id, title, source_url, published_at, content, summary, metadata, collected_at
		FROM documents
		WHERE type = ? AND (content LIKE '%' || ? || '%' OR title LIKE '%' || ? || '%')
		ORDER BY published_at DESC
		LIMIT ?
	`, docType, query, query, limit)
	if err != nil {
		return nil, fmt.Errorf("searching documents: %w", err)
	}
	defer rows.Close()

	return collectDocuments(rows)
}

func collectDocuments(rows *sql.Rows) ([]domain.Document, error) {
	var out []domain.Document
	for rows.Next() {
		var doc domain.Document
		var publishedAt, collectedAt sql.NullString
		var metadataJSON string
		if err := rows.Scan(&doc.ID, &doc.Type, &doc.ExternalID, &doc.Title,
			&doc.SourceURL, &publishedAt, &doc.Content, &doc.Summary,
			&metadataJSON, &collectedAt); err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		doc.PublishedAt = parseNullableTime(publishedAt)
		doc.CollectedAt = parseNullableTime(collectedAt)
		if metadataJSON != "" && metadataJSON != jsonNull {
			if err := json.Unmarshal([]byte(metadataJSON), &doc.Metadata); err != nil {
				return nil, fmt.Errorf("unmarshalling metadata: %w", err)
			}
		}
		out = append(out, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}
	return out, nil
}

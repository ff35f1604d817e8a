package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/meridian-labs/yarra/internal/core/domain"
	"github.com/meridian-labs/yarra/internal/core/ports/driven"
)

// Ensure DocumentStore implements the interface.
var _ driven.DocumentStore = (*DocumentStore)(nil)

type docKey struct {
	docType    string
	externalID string
}

// DocumentStore is an in-memory implementation of driven.DocumentStore.
type DocumentStore struct {
	mu        sync.RWMutex
	documents map[docKey]domain.Document
}

// NewDocumentStore creates a new in-memory document store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		documents: make(map[docKey]domain.Document),
	}
}

// SaveDocument stores or updates a document, upserting on
// (type, external ID).
func (s *DocumentStore) SaveDocument(_ context.Context, doc *domain.Document) error {
	if doc == nil {
		return domain.ErrInvalidInput
	}
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	if doc.CollectedAt.IsZero() {
		doc.CollectedAt = time.Now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	key := docKey{doc.Type, doc.ExternalID}
	if existing, ok := s.documents[key]; ok {
		doc.ID = existing.ID
	}
	s.documents[key] = *doc
	return nil
}

// RecentByType returns the newest documents of a type, ordered by
// publication time descending.
func (s *DocumentStore) RecentByType(_ context.Context, docType string, limit int) ([]domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filter(docType, limit, nil), nil
}

// SearchDocuments returns documents of a type whose content matches the
// query text, newest first.
func (s *DocumentStore) SearchDocuments(_ context.Context, query, docType string, limit int) ([]domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	needle := strings.ToLower(query)
	return s.filter(docType, limit, func(doc domain.Document) bool {
		return strings.Contains(strings.ToLower(doc.Content), needle) ||
			strings.Contains(strings.ToLower(doc.Title), needle)
	}), nil
}

// filter collects documents of a type, newest first, capped at limit.
// The caller must hold the read lock.
func (s *DocumentStore) filter(docType string, limit int, match func(domain.Document) bool) []domain.Document {
	if limit <= 0 {
		limit = 10
	}

	var out []domain.Document
	for key, doc := range s.documents {
		if key.docType != docType {
			continue
		}
		if match != nil && !match(doc) {
			continue
		}
		out = append(out, doc)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].PublishedAt.After(out[j].PublishedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

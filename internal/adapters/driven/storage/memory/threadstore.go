package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/meridian-labs/yarra/internal/core/domain"
	"github.com/meridian-labs/yarra/internal/core/ports/driven"
)

// Ensure ThreadStore implements the interface.
var _ driven.ThreadStore = (*ThreadStore)(nil)

// ThreadStore is an in-memory implementation of driven.ThreadStore.
type ThreadStore struct {
	mu       sync.RWMutex
	threads  map[string]domain.Thread
	messages map[string][]domain.Message
}

// NewThreadStore creates a new in-memory thread store.
func NewThreadStore() *ThreadStore {
	return &ThreadStore{
		threads:  make(map[string]domain.Thread),
		messages: make(map[string][]domain.Message),
	}
}

// CreateThread stores a new thread.
func (s *ThreadStore) CreateThread(_ context.Context, thread *domain.Thread) error {
	if thread == nil || thread.ID == "" {
		return domain.ErrInvalidInput
	}
	if thread.CreatedAt.IsZero() {
		thread.CreatedAt = time.Now()
	}
	if thread.UpdatedAt.IsZero() {
		thread.UpdatedAt = thread.CreatedAt
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.threads[thread.ID] = *thread
	return nil
}

// GetThread retrieves a thread by ID.
func (s *ThreadStore) GetThread(_ context.Context, id string) (*domain.Thread, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	thread, ok := s.threads[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &thread, nil
}

// UpdateTopic sets a thread's topic.
func (s *ThreadStore) UpdateTopic(_ context.Context, id, topic string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	thread, ok := s.threads[id]
	if !ok {
		return domain.ErrNotFound
	}
	thread.Topic = topic
	s.threads[id] = thread
	return nil
}

// AddMessage appends a message to a thread and bumps its UpdatedAt.
func (s *ThreadStore) AddMessage(_ context.Context, msg *domain.Message) error {
	if msg == nil || msg.ID == "" || msg.ThreadID == "" {
		return domain.ErrInvalidInput
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	thread, ok := s.threads[msg.ThreadID]
	if !ok {
		return domain.ErrNotFound
	}
	s.messages[msg.ThreadID] = append(s.messages[msg.ThreadID], *msg)
	thread.UpdatedAt = msg.CreatedAt
	s.threads[msg.ThreadID] = thread
	return nil
}

// Messages returns a thread's messages in chronological order.
func (s *ThreadStore) Messages(_ context.Context, threadID string) ([]domain.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	msgs := s.messages[threadID]
	out := make([]domain.Message, len(msgs))
	copy(out, msgs)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// ListThreads returns threads ordered by last activity descending.
func (s *ThreadStore) ListThreads(_ context.Context, limit int) ([]domain.Thread, error) {
	if limit <= 0 {
		limit = 50
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Thread, 0, len(s.threads))
	for _, thread := range s.threads {
		out = append(out, thread)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

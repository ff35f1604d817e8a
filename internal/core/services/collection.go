package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/meridian-labs/yarra/internal/core/domain"
	"github.com/meridian-labs/yarra/internal/core/ports/driven"
	"github.com/meridian-labs/yarra/internal/core/ports/driving"
	"github.com/meridian-labs/yarra/internal/logger"
)

// Ensure Collection implements the interface.
var _ driving.CollectionService = (*Collection)(nil)

// Collection runs the registered data collectors, grouped by the handler
// domain they feed. Sources within a domain run sequentially (they often
// share a rate-limited upstream); domains run independently.
type Collection struct {
	mu         sync.RWMutex
	collectors map[string][]driven.Collector // handler name -> collectors
}

// NewCollection creates an empty collection service.
func NewCollection() *Collection {
	return &Collection{collectors: make(map[string][]driven.Collector)}
}

// RegisterCollector binds a collector to a handler domain.
func (c *Collection) RegisterCollector(handler string, col driven.Collector) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.collectors[handler] = append(c.collectors[handler], col)
}

// CollectAll runs every registered collector and returns one result per
// handler domain, sorted by handler name for stable output.
func (c *Collection) CollectAll(ctx context.Context) ([]domain.CollectionResult, error) {
	c.mu.RLock()
	handlers := make([]string, 0, len(c.collectors))
	for name := range c.collectors {
		handlers = append(handlers, name)
	}
	c.mu.RUnlock()
	sort.Strings(handlers)

	results := make([]domain.CollectionResult, 0, len(handlers))
	for _, name := range handlers {
		res, err := c.Collect(ctx, name)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}

// Collect runs the collectors for one handler domain.
func (c *Collection) Collect(ctx context.Context, handler string) (domain.CollectionResult, error) {
	c.mu.RLock()
	cols := c.collectors[handler]
	c.mu.RUnlock()
	if len(cols) == 0 {
		return domain.CollectionResult{}, fmt.Errorf("collectors for %q: %w", handler, domain.ErrNotFound)
	}

	logger.Section("Collection")
	logger.Info("collecting %d sources for %q", len(cols), handler)

	result := domain.CollectionResult{
		Handler:   handler,
		StartedAt: time.Now(),
	}

	failed := 0
	for _, col := range cols {
		if ctx.Err() != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", col.Name(), ctx.Err()))
			failed++
			continue
		}
		records, err := col.Collect(ctx)
		if err != nil {
			logger.Warn("collector %q failed: %v", col.Name(), err)
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", col.Name(), err))
			failed++
			continue
		}
		logger.Debug("collector %q stored %d records", col.Name(), records)
		result.Records += records
	}

	result.CompletedAt = time.Now()
	switch {
	case failed == 0:
		result.Status = domain.CollectionSuccess
	case failed == len(cols):
		result.Status = domain.CollectionFailed
	default:
		result.Status = domain.CollectionPartial
	}

	logger.Info("collection for %q: %s, %d records, %d errors",
		handler, result.Status, result.Records, len(result.Errors))
	return result, nil
}

package driving

import (
	"context"

	"github.com/meridian-labs/yarra/internal/core/domain"
)

// CollectionService runs data collection across registered collectors.
type CollectionService interface {
	// CollectAll runs every registered collector and returns one
	// result per handler domain.
	CollectAll(ctx context.Context) ([]domain.CollectionResult, error)

	// Collect runs the collectors for a single handler domain.
	Collect(ctx context.Context, handler string) (domain.CollectionResult, error)
}

// Scheduler runs background tasks on a schedule.
type Scheduler interface {
	// Start begins the scheduler loop. Blocks until the context is
	// cancelled or Stop is called.
	Start(ctx context.Context) error

	// Stop gracefully shuts down, waiting for running tasks.
	Stop() error
}

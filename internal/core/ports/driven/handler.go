package driven

import (
	"context"

	"github.com/meridian-labs/yarra/internal/core/domain"
)

// QueryContext carries per-question context into a handler invocation:
// thread identity, routing score, recent conversation history and any
// caller-supplied hints. Handlers must treat it as read-only.
type QueryContext map[string]any

// Handler is a knowledge-domain specialist able to answer questions
// within one domain. Implementations are a closed set known at the
// registry layer; new domains are added by registering a new
// implementation, never by runtime type inspection.
type Handler interface {
	// Capabilities returns the handler's descriptor. Called once at
	// registration; the returned value must be stable for the process
	// lifetime.
	Capabilities() domain.HandlerDescriptor

	// Query answers a question within the handler's domain. A handler
	// that cannot complete its data access must still return a
	// well-formed HandlerResult explaining the limitation rather than
	// an error; the error return is for unexpected internal faults
	// only. Implementations must honour ctx cancellation so an
	// abandoned invocation stops consuming store resources.
	Query(ctx context.Context, question string, qctx QueryContext) (domain.HandlerResult, error)
}

// Collector fetches data from one external source and stores it.
// Collectors are glue around rate-limited HTTP access; the core only
// depends on this result contract.
type Collector interface {
	// Name identifies the collector.
	Name() string

	// Source describes the external source being collected.
	Source() domain.DataSource

	// Collect fetches, normalises and stores the source's data.
	// It returns the number of records stored.
	Collect(ctx context.Context) (int, error)
}

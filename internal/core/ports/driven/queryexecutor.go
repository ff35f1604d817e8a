package driven

import (
	"context"

	"github.com/meridian-labs/yarra/internal/core/domain"
)

// QueryExecutor runs an already-validated SELECT against the structured
// store inside a read-only session. It is the execution half of the safe
// query gateway; validation happens in the core before a statement ever
// reaches an implementation.
//
// Implementations must:
//   - enforce the row cap at the store level, not by fetching everything
//     and truncating in memory;
//   - report Truncated=true iff the underlying result set exceeded limit;
//   - run in a session mode that guarantees no write visibility even if
//     validation were imperfect;
//   - honour ctx cancellation and deadline, returning ctx.Err() without
//     partial rows.
type QueryExecutor interface {
	// Query executes sql with the given row limit and returns the rows.
	Query(ctx context.Context, sql string, limit int) (domain.QueryResponse, error)
}

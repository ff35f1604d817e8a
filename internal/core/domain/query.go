package domain

import "time"

// QueryRequest is an ad-hoc read-only query submitted to the safe query
// gateway on behalf of a handler.
type QueryRequest struct {
	// SQL is the raw query text. Must be a single SELECT statement.
	SQL string

	// Handler identifies the issuing handler, for audit logging.
	Handler string

	// RowLimit optionally overrides the default row cap. It may never
	// exceed the policy maximum; zero means "use the policy default".
	RowLimit int
}

// Row is one result row, keyed by column name.
type Row map[string]any

// QueryResponse holds the rows of an accepted, completed query. It is
// never produced for a request that fails validation; validation failure
// always yields an error and zero rows.
type QueryResponse struct {
	// Columns are the result column names in select order.
	Columns []string

	// Rows are the result rows, capped at the effective row limit.
	Rows []Row

	// RowCount is len(Rows).
	RowCount int

	// Truncated is true iff the underlying result set exceeded the cap.
	Truncated bool
}

// QueryPolicy bounds what the safe query gateway will accept and run.
type QueryPolicy struct {
	// MaxRows is the hard row cap. Requests may ask for fewer rows but
	// never more.
	MaxRows int

	// Timeout is the wall-clock budget for a single query.
	Timeout time.Duration

	// DenyList are statement keywords rejected even though the SELECT
	// allow-list should already exclude them. Defense in depth.
	DenyList []string
}

// Query policy defaults.
const (
	DefaultMaxRows      = 500
	DefaultQueryTimeout = 30 * time.Second
)

// DefaultDenyList returns the data- and schema-modifying keywords the
// gateway rejects regardless of statement shape.
func DefaultDenyList() []string {
	return []string{
		"INSERT", "UPDATE", "DELETE", "DROP", "ALTER", "CREATE",
		"TRUNCATE", "REPLACE", "GRANT", "REVOKE", "EXEC", "EXECUTE",
		"CALL", "MERGE", "UPSERT", "RENAME", "VACUUM", "REINDEX",
		"COPY", "LOAD", "COMMIT", "ROLLBACK", "SAVEPOINT", "SET",
		"ATTACH", "DETACH", "PRAGMA",
	}
}

// DefaultQueryPolicy returns the gateway defaults: 500 rows, 30 seconds,
// full deny-list.
func DefaultQueryPolicy() QueryPolicy {
	return QueryPolicy{
		MaxRows:  DefaultMaxRows,
		Timeout:  DefaultQueryTimeout,
		DenyList: DefaultDenyList(),
	}
}

// EffectiveLimit resolves a request's row-limit override against the
// policy. Zero or negative overrides fall back to the policy maximum.
func (p QueryPolicy) EffectiveLimit(override int) int {
	if override <= 0 || override > p.MaxRows {
		return p.MaxRows
	}
	return override
}

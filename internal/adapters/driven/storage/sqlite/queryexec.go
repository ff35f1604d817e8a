package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/meridian-labs/yarra/internal/core/domain"
	"github.com/meridian-labs/yarra/internal/core/ports/driven"
)

// QueryExecutor runs ad-hoc read queries over its own read-only
// connection. The connection has query_only set at the session level,
// so even a statement that slipped past upstream validation cannot
// write. The row cap is enforced here by fetching one row past the
// limit; the extra row only signals truncation and is never returned.
type QueryExecutor struct {
	db *sql.DB
}

var _ driven.QueryExecutor = (*QueryExecutor)(nil)

// NewQueryExecutor opens a read-only connection to the store's database
// file. The store must already exist; the executor never migrates.
func NewQueryExecutor(store *Store) (*QueryExecutor, error) {
	db, err := sql.Open("sqlite",
		store.Path()+"?_pragma=query_only(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening read-only connection: %w", err)
	}
	return &QueryExecutor{db: db}, nil
}

// Close closes the read-only connection.
func (e *QueryExecutor) Close() error {
	return e.db.Close()
}

// Query executes one read statement with the given row cap. The
// statement runs as a subquery so the cap applies regardless of any
// LIMIT the statement itself carries.
func (e *QueryExecutor) Query(ctx context.Context, query string, limit int) (domain.QueryResponse, error) {
	if limit <= 0 {
		limit = domain.DefaultMaxRows
	}

	inner := strings.TrimSpace(query)
	inner = strings.TrimSuffix(inner, ";")
	wrapped := fmt.Sprintf("SELECT * FROM (%s) LIMIT %d", inner, limit+1)

	rows, err := e.db.QueryContext(ctx, wrapped)
	if err != nil {
		if ctx.Err() != nil {
			return domain.QueryResponse{}, ctx.Err()
		}
		return domain.QueryResponse{}, fmt.Errorf("executing query: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return domain.QueryResponse{}, fmt.Errorf("reading columns: %w", err)
	}

	resp := domain.QueryResponse{Columns: columns}
	values := make([]any, len(columns))
	scanTargets := make([]any, len(columns))
	for i := range values {
		scanTargets[i] = &values[i]
	}

	for rows.Next() {
		if len(resp.Rows) == limit {
			resp.Truncated = true
			break
		}
		if err := rows.Scan(scanTargets...); err != nil {
			return domain.QueryResponse{}, fmt.Errorf("scanning row: %w", err)
		}
		row := make(domain.Row, len(columns))
		for i, col := range columns {
			row[col] = normaliseValue(values[i])
		}
		resp.Rows = append(resp.Rows, row)
	}
	if err := rows.Err(); err != nil {
		if ctx.Err() != nil {
			return domain.QueryResponse{}, ctx.Err()
		}
		return domain.QueryResponse{}, fmt.Errorf("iterating rows: %w", err)
	}

	resp.RowCount = len(resp.Rows)
	return resp, nil
}

// normaliseValue converts driver values to plain Go types.
func normaliseValue(v any) any {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}

package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/meridian-labs/yarra/internal/core/domain"
	"github.com/meridian-labs/yarra/internal/core/ports/driven"
	"github.com/meridian-labs/yarra/internal/core/ports/driving"
	"github.com/meridian-labs/yarra/internal/logger"
)

// Ensure Gateway implements the interface.
var _ driving.QueryGateway = (*Gateway)(nil)

// Gateway is the safe query gateway: it validates ad-hoc queries against
// an allow-list policy and executes the accepted ones in a bounded,
// read-only session. Validation is an allow-list, not a deny-list:
// anything other than a single SELECT is rejected by construction, so
// novel dangerous keywords need no gateway update. The deny-list scan on
// top is defense in depth, as is the read-only session at the executor.
type Gateway struct {
	exec driven.QueryExecutor

	mu     sync.RWMutex
	policy domain.QueryPolicy
}

// NewGateway creates a gateway over the given executor and policy.
func NewGateway(exec driven.QueryExecutor, policy domain.QueryPolicy) *Gateway {
	return &Gateway{exec: exec, policy: policy}
}

// SetPolicy replaces the acceptance policy. Requests already executing
// keep the policy they validated against.
func (g *Gateway) SetPolicy(policy domain.QueryPolicy) {
	g.mu.Lock()
	g.policy = policy
	g.mu.Unlock()
}

func (g *Gateway) policySnapshot() domain.QueryPolicy {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.policy
}

// Execute validates and runs one query request. A request that fails
// validation never touches the store and never yields partial rows.
func (g *Gateway) Execute(ctx context.Context, req domain.QueryRequest) (domain.QueryResponse, error) {
	logger.Section("Safe Query Gateway")
	logger.Debug("handler %q query: %q", req.Handler, req.SQL)

	policy := g.policySnapshot()
	if err := validateQuery(req, policy); err != nil {
		logger.Warn("rejected query from %q: %v", req.Handler, err)
		return domain.QueryResponse{}, err
	}

	limit := policy.EffectiveLimit(req.RowLimit)

	execCtx, cancel := context.WithTimeout(ctx, policy.Timeout)
	defer cancel()

	start := time.Now()
	resp, err := g.exec.Query(execCtx, req.SQL, limit)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(execCtx.Err(), context.DeadlineExceeded) {
			logger.Warn("query from %q timed out after %s", req.Handler, policy.Timeout)
			return domain.QueryResponse{}, fmt.Errorf("%w: exceeded %s", domain.ErrQueryTimeout, policy.Timeout)
		}
		return domain.QueryResponse{}, fmt.Errorf("execute query: %w", err)
	}

	logger.Info("query returned %d rows (truncated=%t) in %s", resp.RowCount, resp.Truncated, time.Since(start))
	return resp, nil
}

// validateQuery applies the gateway's acceptance rules in order:
// row-limit policy, statement stacking, comment tokens, SELECT
// allow-list, keyword deny-list.
func validateQuery(req domain.QueryRequest, policy domain.QueryPolicy) error {
	if req.RowLimit > policy.MaxRows {
		return domain.RejectQuery("row limit %d exceeds policy maximum %d", req.RowLimit, policy.MaxRows)
	}

	sql := strings.TrimSpace(req.SQL)
	if sql == "" {
		return domain.RejectQuery("empty query")
	}

	// Strip at most one trailing terminator; any terminator left after
	// that means statement stacking.
	stripped := strings.TrimRight(sql, " \t\r\n")
	stripped = strings.TrimSuffix(stripped, ";")
	if strings.Contains(stripped, ";") {
		return domain.RejectQuery("multiple statements are not allowed")
	}

	if strings.Contains(sql, "--") || strings.Contains(sql, "/*") {
		return domain.RejectQuery("comments are not allowed")
	}

	if kw := firstKeyword(stripped); !strings.EqualFold(kw, "SELECT") {
		return domain.RejectQuery("only SELECT queries are allowed, got %q", kw)
	}

	upper := strings.ToUpper(stripped)
	for _, deny := range policy.DenyList {
		if containsSQLWord(upper, strings.ToUpper(deny)) {
			return domain.RejectQuery("forbidden keyword %q", deny)
		}
	}

	return nil
}

// firstKeyword returns the first run of letters in the statement.
func firstKeyword(sql string) string {
	sql = strings.TrimSpace(sql)
	end := 0
	for end < len(sql) {
		c := sql[end]
		if (c < 'a' || c > 'z') && (c < 'A' || c > 'Z') {
			break
		}
		end++
	}
	return sql[:end]
}

// containsSQLWord reports whether word occurs in sql as a whole word.
// Column names like "created_at" must not match "CREATE".
func containsSQLWord(sql, word string) bool {
	for start := 0; start < len(sql); {
		idx := strings.Index(sql[start:], word)
		if idx < 0 {
			return false
		}
		abs := start + idx
		before := abs == 0 || !isSQLWordByte(sql[abs-1])
		afterIdx := abs + len(word)
		after := afterIdx >= len(sql) || !isSQLWordByte(sql[afterIdx])
		if before && after {
			return true
		}
		start = abs + 1
	}
	return false
}

func isSQLWordByte(c byte) bool {
	return c == '_' || (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

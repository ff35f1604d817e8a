package housing

import (
	"context"
	"fmt"

	"github.com/meridian-labs/yarra/internal/core/domain"
)

// Growth summarises how a metric moved over its stored history.
type Growth struct {
	Metric      string
	Points      int
	FirstPeriod string
	FirstValue  float64
	LastPeriod  string
	LastValue   float64
	TotalChange float64
	TotalPct    float64
	MinPeriod   string
	MinValue    float64
	MaxPeriod   string
	MaxValue    float64
}

// Sentence renders the growth analysis as one answer sentence.
func (g Growth) Sentence() string {
	return fmt.Sprintf(
		"%s moved from %.2f (%s) to %.2f (%s) over %d observations, a change of %+.2f (%+.1f%%); low %.2f in %s, high %.2f in %s.",
		g.Metric, g.FirstValue, g.FirstPeriod, g.LastValue, g.LastPeriod,
		g.Points, g.TotalChange, g.TotalPct,
		g.MinValue, g.MinPeriod, g.MaxValue, g.MaxPeriod)
}

// analyzeGrowth runs an ad-hoc series query through the safe query
// gateway and computes the trend. Going through the gateway keeps this
// path under the same row and time budgets as user-supplied SQL.
func (h *Handler) analyzeGrowth(ctx context.Context, metric string) (Growth, error) {
	if h.gateway == nil {
		return Growth{}, fmt.Errorf("query gateway not configured")
	}

	resp, err := h.gateway.Execute(ctx, domain.QueryRequest{
		Handler: Name,
		SQL: fmt.Sprintf(
			"SELECT period, value FROM observations WHERE metric = '%s' ORDER BY period ASC", metric),
	})
	if err != nil {
		return Growth{}, fmt.Errorf("series query for %s: %w", metric, err)
	}
	if len(resp.Rows) < 2 {
		return Growth{}, fmt.Errorf("insufficient data for %s: %d observations", metric, len(resp.Rows))
	}

	g := Growth{Metric: metric, Points: len(resp.Rows)}
	for i, row := range resp.Rows {
		period, pok := row["period"].(string)
		value, vok := toFloat(row["value"])
		if !pok || !vok {
			continue
		}
		if i == 0 || g.FirstPeriod == "" {
			g.FirstPeriod, g.FirstValue = period, value
		}
		g.LastPeriod, g.LastValue = period, value
		if g.MinPeriod == "" || value < g.MinValue {
			g.MinPeriod, g.MinValue = period, value
		}
		if g.MaxPeriod == "" || value > g.MaxValue {
			g.MaxPeriod, g.MaxValue = period, value
		}
	}
	if g.FirstPeriod == "" || g.LastPeriod == "" {
		return Growth{}, fmt.Errorf("series for %s has no usable rows", metric)
	}

	g.TotalChange = g.LastValue - g.FirstValue
	if g.FirstValue != 0 {
		g.TotalPct = g.TotalChange / g.FirstValue * 100
	}
	return g, nil
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	}
	return 0, false
}

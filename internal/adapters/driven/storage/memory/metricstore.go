package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/meridian-labs/yarra/internal/core/domain"
	"github.com/meridian-labs/yarra/internal/core/ports/driven"
)

// Ensure MetricStore implements the interface.
var _ driven.MetricStore = (*MetricStore)(nil)

type obsKey struct {
	metric    string
	period    string
	geography string
}

// MetricStore is an in-memory implementation of driven.MetricStore.
type MetricStore struct {
	mu           sync.RWMutex
	observations map[obsKey]domain.Observation
}

// NewMetricStore creates a new in-memory metric store.
func NewMetricStore() *MetricStore {
	return &MetricStore{
		observations: make(map[obsKey]domain.Observation),
	}
}

// SaveObservations stores a batch of observations, upserting on
// (metric, period, geography).
func (s *MetricStore) SaveObservations(_ context.Context, obs []domain.Observation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range obs {
		if o.CollectedAt.IsZero() {
			o.CollectedAt = time.Now()
		}
		s.observations[obsKey{o.Metric, o.Period, o.Geography}] = o
	}
	return nil
}

// Latest returns the most recent observation for a metric.
func (s *MetricStore) Latest(_ context.Context, metric string) (*domain.Observation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var latest *domain.Observation
	for key, o := range s.observations {
		if key.metric != metric {
			continue
		}
		if latest == nil || o.Period > latest.Period {
			obs := o
			latest = &obs
		}
	}
	if latest == nil {
		return nil, domain.ErrNotFound
	}
	return latest, nil
}

// Series returns observations for a metric within a range, ordered by
// period ascending.
func (s *MetricStore) Series(_ context.Context, metric string, r domain.SeriesRange) ([]domain.Observation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Observation
	for key, o := range s.observations {
		if key.metric != metric {
			continue
		}
		if r.From != "" && o.Period < r.From {
			continue
		}
		if r.To != "" && o.Period > r.To {
			continue
		}
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Period < out[j].Period })
	if r.Limit > 0 && len(out) > r.Limit {
		out = out[:r.Limit]
	}
	return out, nil
}

// ListMetrics returns the distinct stored metric names, sorted.
func (s *MetricStore) ListMetrics(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]bool)
	for key := range s.observations {
		seen[key.metric] = true
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Summaries returns per-metric coverage summaries, sorted by name.
func (s *MetricStore) Summaries(_ context.Context) ([]domain.MetricSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byMetric := make(map[string]*domain.MetricSummary)
	for key, o := range s.observations {
		sum, ok := byMetric[key.metric]
		if !ok {
			sum = &domain.MetricSummary{
				Metric:         key.metric,
				EarliestPeriod: o.Period,
				LatestPeriod:   o.Period,
				LatestValue:    o.Value,
				Source:         o.Source,
				Unit:           o.Unit,
			}
			byMetric[key.metric] = sum
		}
		sum.Count++
		if o.Period < sum.EarliestPeriod {
			sum.EarliestPeriod = o.Period
		}
		if o.Period >= sum.LatestPeriod {
			sum.LatestPeriod = o.Period
			sum.LatestValue = o.Value
		}
	}

	out := make([]domain.MetricSummary, 0, len(byMetric))
	for _, sum := range byMetric {
		out = append(out, *sum)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Metric < out[j].Metric })
	return out, nil
}

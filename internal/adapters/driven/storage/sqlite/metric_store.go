package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/meridian-labs/yarra/internal/core/domain"
	"github.com/meridian-labs/yarra/internal/core/ports/driven"
)

// metricStore implements driven.MetricStore.
type metricStore struct {
	store *Store
}

var _ driven.MetricStore = (*metricStore)(nil)

// SaveObservations stores a batch of observations, upserting on
// (metric, period, geography).
func (s *metricStore) SaveObservations(ctx context.Context, obs []domain.Observation) error {
	if len(obs) == 0 {
		return nil
	}

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO observations (metric, value, value_text, period, source, geography, unit, collected_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(metric, period, geography) DO UPDATE SET
			value = excluded.value,
			value_text = excluded.value_text,
			source = excluded.source,
			unit = excluded.unit,
			collected_at = excluded.collected_at
	`)
	if err != nil {
		return fmt.Errorf("preparing upsert: %w", err)
	}
	defer stmt.Close()

	for _, o := range obs {
		collected := o.CollectedAt
		if collected.IsZero() {
			collected = time.Now()
		}
		if _, err := stmt.ExecContext(ctx,
			o.Metric, o.Value, o.ValueText, o.Period,
			o.Source, o.Geography, o.Unit,
			collected.UTC().Format(time.RFC3339)); err != nil {
			return fmt.Errorf("saving observation %s/%s: %w", o.Metric, o.Period, err)
		}
	}

	return tx.Commit()
}

// Latest returns the most recent observation for a metric.
func (s *metricStore) Latest(ctx context.Context, metric string) (*domain.Observation, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT metric, value, value_text, period, source, geography, unit, collected_at
		FROM observations
		WHERE metric = ?
		ORDER BY period DESC
		LIMIT 1
	`, metric)

	obs, err := scanObservation(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("metric %q: %w", metric, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("scanning observation: %w", err)
	}
	return obs, nil
}

// Series returns observations for a metric within a range, ordered by
// period ascending.
func (s *metricStore) Series(ctx context.Context, metric string, r domain.SeriesRange) ([]domain.Observation, error) {
	query := `
		SELECT metric, value, value_text, period, source, geography, unit, collected_at
		FROM observations
		WHERE metric = ?`
	args := []any{metric}

	if r.From != "" {
		query += " AND period >= ?"
		args = append(args, r.From)
	}
	if r.To != "" {
		query += " AND period <= ?"
		args = append(args, r.To)
	}
	query += " ORDER BY period ASC"
	if r.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, r.Limit)
	}

	rows, err := s.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying series: %w", err)
	}
	defer rows.Close()

	var out []domain.Observation
	for rows.Next() {
		obs, err := scanObservation(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning observation: %w", err)
		}
		out = append(out, *obs)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating series: %w", err)
	}
	return out, nil
}

// ListMetrics returns the distinct stored metric names, sorted.
func (s *metricStore) ListMetrics(ctx context.Context) ([]string, error) {
	rows, err := s.store.db.QueryContext(ctx,
		"SELECT DISTINCT metric FROM observations ORDER BY metric")
	if err != nil {
		return nil, fmt.Errorf("listing metrics: %w", err)
	}
	defer rows.Close()

	var metrics []string
	for rows.Next() {
		var m string
		if err := rows.Scan(&m); err != nil {
			return nil, fmt.Errorf("scanning metric name: %w", err)
		}
		metrics = append(metrics, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating metrics: %w", err)
	}
	return metrics, nil
}

// Summaries returns per-metric coverage summaries, sorted by name.
func (s *metricStore) Summaries(ctx context.Context) ([]domain.MetricSummary, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT o.metric,
		       COUNT(*),
		       MIN(o.period),
		       MAX(o.period),
		       (SELECT value FROM observations WHERE metric = o.metric ORDER BY period DESC LIMIT 1),
		       MAX(o.source),
		       MAX(o.unit)
		FROM observations o
		GROUP BY o.metric
		ORDER BY o.metric
	`)
	if err != nil {
		return nil, fmt.Errorf("querying summaries: %w", err)
	}
	defer rows.Close()

	var out []domain.MetricSummary
	for rows.Next() {
		var sm domain.MetricSummary
		if err := rows.Scan(&sm.Metric, &sm.Count, &sm.EarliestPeriod, &sm.LatestPeriod,
			&sm.LatestValue, &sm.Source, &sm.Unit); err != nil {
			return nil, fmt.Errorf("scanning summary: %w", err)
		}
		out = append(out, sm)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating summaries: %w", err)
	}
	return out, nil
}

func scanObservation(scan func(dest ...any) error) (*domain.Observation, error) {
	var obs domain.Observation
	var collectedAt sql.NullString
	if err := scan(&obs.Metric, &obs.Value, &obs.ValueText, &obs.Period,
		&obs.Source, &obs.Geography, &obs.Unit, &collectedAt); err != nil {
		return nil, err
	}
	obs.CollectedAt = parseNullableTime(collectedAt)
	return &obs, nil
}

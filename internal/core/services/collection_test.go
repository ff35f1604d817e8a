package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridian-labs/yarra/internal/core/domain"
)

// stubCollector implements driven.Collector for testing.
type stubCollector struct {
	name    string
	records int
	err     error
	calls   int
}

func (c *stubCollector) Name() string { return c.name }

func (c *stubCollector) Source() domain.DataSource {
	return domain.DataSource{Name: c.name}
}

func (c *stubCollector) Collect(context.Context) (int, error) {
	c.calls++
	if c.err != nil {
		return 0, c.err
	}
	return c.records, nil
}

func TestCollectAllSources(t *testing.T) {
	c := NewCollection()
	rba := &stubCollector{name: "rba-rates", records: 4}
	abs := &stubCollector{name: "abs-approvals", records: 12}
	c.RegisterCollector("housing", rba)
	c.RegisterCollector("housing", abs)

	result, err := c.Collect(context.Background(), "housing")
	require.NoError(t, err)

	assert.Equal(t, "housing", result.Handler)
	assert.Equal(t, domain.CollectionSuccess, result.Status)
	assert.Equal(t, 16, result.Records)
	assert.Empty(t, result.Errors)
	assert.Equal(t, 1, rba.calls)
	assert.Equal(t, 1, abs.calls)
	assert.False(t, result.CompletedAt.Before(result.StartedAt))
}

func TestCollectPartialFailure(t *testing.T) {
	c := NewCollection()
	c.RegisterCollector("housing", &stubCollector{name: "rba-rates", records: 4})
	c.RegisterCollector("housing", &stubCollector{name: "abs-approvals", err: errors.New("HTTP 503")})

	result, err := c.Collect(context.Background(), "housing")
	require.NoError(t, err)

	assert.Equal(t, domain.CollectionPartial, result.Status)
	assert.Equal(t, 4, result.Records)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "abs-approvals")
	assert.Contains(t, result.Errors[0], "HTTP 503")
}

func TestCollectAllSourcesFailed(t *testing.T) {
	c := NewCollection()
	c.RegisterCollector("housing", &stubCollector{name: "rba-rates", err: errors.New("down")})

	result, err := c.Collect(context.Background(), "housing")
	require.NoError(t, err)
	assert.Equal(t, domain.CollectionFailed, result.Status)
	assert.Zero(t, result.Records)
}

func TestCollectUnknownHandler(t *testing.T) {
	c := NewCollection()
	_, err := c.Collect(context.Background(), "energy")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCollectAllRunsEveryDomainSorted(t *testing.T) {
	c := NewCollection()
	c.RegisterCollector("labour", &stubCollector{name: "abs-labour", records: 3})
	c.RegisterCollector("housing", &stubCollector{name: "rba-rates", records: 4})

	results, err := c.CollectAll(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "housing", results[0].Handler)
	assert.Equal(t, "labour", results[1].Handler)
}

func TestCollectHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewCollection()
	col := &stubCollector{name: "rba-rates", records: 4}
	c.RegisterCollector("housing", col)

	result, err := c.Collect(ctx, "housing")
	require.NoError(t, err)
	assert.Equal(t, domain.CollectionFailed, result.Status)
	assert.Zero(t, col.calls)
}

package cli

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridian-labs/yarra/internal/adapters/driven/storage/memory"
	"github.com/meridian-labs/yarra/internal/core/domain"
)

func TestMetricsCmd_EmptyStore(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"metrics"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "No metrics stored yet.")
}

func TestMetricsCmd_PrintsSummaries(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	store := memory.NewMetricStore()
	err := store.SaveObservations(context.Background(), []domain.Observation{
		{Metric: "interest_rate_cash", Value: 4.35, Period: "2024-07", Source: "RBA", Unit: "percent", CollectedAt: time.Now()},
		{Metric: "interest_rate_cash", Value: 3.85, Period: "2025-07", Source: "RBA", Unit: "percent", CollectedAt: time.Now()},
	})
	require.NoError(t, err)
	metricStore = store

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"metrics"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err = rootCmd.Execute()

	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "METRIC")
	assert.Contains(t, out, "interest_rate_cash")
	assert.Contains(t, out, "2024-07..2025-07")
	assert.Contains(t, out, "3.85 percent")
}

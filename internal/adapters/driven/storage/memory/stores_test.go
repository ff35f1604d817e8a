package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridian-labs/yarra/internal/core/domain"
)

func TestMetricStoreLatestAndUpsert(t *testing.T) {
	store := NewMetricStore()
	ctx := context.Background()

	require.NoError(t, store.SaveObservations(ctx, []domain.Observation{
		{Metric: "interest_rate_cash", Value: 4.10, Period: "2025-01", Source: "RBA"},
		{Metric: "interest_rate_cash", Value: 3.85, Period: "2025-07", Source: "RBA"},
	}))

	latest, err := store.Latest(ctx, "interest_rate_cash")
	require.NoError(t, err)
	assert.Equal(t, 3.85, latest.Value)

	// Upsert on the same period replaces the value.
	require.NoError(t, store.SaveObservations(ctx, []domain.Observation{
		{Metric: "interest_rate_cash", Value: 3.60, Period: "2025-07", Source: "RBA"},
	}))
	latest, err = store.Latest(ctx, "interest_rate_cash")
	require.NoError(t, err)
	assert.Equal(t, 3.60, latest.Value)

	_, err = store.Latest(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMetricStoreSeriesOrderedAndBounded(t *testing.T) {
	store := NewMetricStore()
	ctx := context.Background()

	require.NoError(t, store.SaveObservations(ctx, []domain.Observation{
		{Metric: "m", Value: 3, Period: "2025-03"},
		{Metric: "m", Value: 1, Period: "2025-01"},
		{Metric: "m", Value: 2, Period: "2025-02"},
	}))

	series, err := store.Series(ctx, "m", domain.SeriesRange{From: "2025-02"})
	require.NoError(t, err)
	require.Len(t, series, 2)
	assert.Equal(t, "2025-02", series[0].Period)
	assert.Equal(t, "2025-03", series[1].Period)
}

func TestMetricStoreSummaries(t *testing.T) {
	store := NewMetricStore()
	ctx := context.Background()

	require.NoError(t, store.SaveObservations(ctx, []domain.Observation{
		{Metric: "b", Value: 2, Period: "2025-02", Unit: "%"},
		{Metric: "b", Value: 1, Period: "2025-01", Unit: "%"},
		{Metric: "a", Value: 9, Period: "2025-05", Unit: "$"},
	}))

	summaries, err := store.Summaries(ctx)
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, "a", summaries[0].Metric)
	assert.Equal(t, "b", summaries[1].Metric)
	assert.Equal(t, 2, summaries[1].Count)
	assert.Equal(t, "2025-01", summaries[1].EarliestPeriod)
	assert.Equal(t, "2025-02", summaries[1].LatestPeriod)
	assert.Equal(t, 2.0, summaries[1].LatestValue)
}

func TestDocumentStoreUpsertAndSearch(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()

	doc := &domain.Document{
		Type: "rba_minutes", ExternalID: "2025-07-08", Title: "July minutes",
		Content:     "The Board cut the cash rate.",
		PublishedAt: time.Date(2025, 7, 8, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, store.SaveDocument(ctx, doc))
	firstID := doc.ID
	assert.NotEmpty(t, firstID)

	// Saving the same (type, external ID) keeps the original ID.
	update := &domain.Document{Type: "rba_minutes", ExternalID: "2025-07-08", Title: "Revised"}
	require.NoError(t, store.SaveDocument(ctx, update))
	assert.Equal(t, firstID, update.ID)

	recent, err := store.RecentByType(ctx, "rba_minutes", 10)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "Revised", recent[0].Title)

	hits, err := store.SearchDocuments(ctx, "revised", "rba_minutes", 10)
	require.NoError(t, err)
	assert.Len(t, hits, 1)

	none, err := store.SearchDocuments(ctx, "inflation", "rba_minutes", 10)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestThreadStoreLifecycle(t *testing.T) {
	store := NewThreadStore()
	ctx := context.Background()

	require.NoError(t, store.CreateThread(ctx, &domain.Thread{ID: "t1", Topic: "Rates"}))

	_, err := store.GetThread(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	base := time.Date(2025, 8, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, store.AddMessage(ctx, &domain.Message{
		ID: "m1", ThreadID: "t1", Role: domain.RoleUser, Content: "hi", CreatedAt: base,
	}))
	require.NoError(t, store.AddMessage(ctx, &domain.Message{
		ID: "m2", ThreadID: "t1", Role: domain.RoleAssistant, Content: "hello", CreatedAt: base.Add(time.Second),
	}))

	msgs, err := store.Messages(ctx, "t1")
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "m1", msgs[0].ID)

	thread, err := store.GetThread(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, base.Add(time.Second), thread.UpdatedAt)

	err = store.AddMessage(ctx, &domain.Message{ID: "m3", ThreadID: "missing", Role: domain.RoleUser})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSchedulerStoreRoundTrip(t *testing.T) {
	store := NewSchedulerStore()
	ctx := context.Background()

	task, err := store.GetTask(ctx, "t")
	require.NoError(t, err)
	assert.Nil(t, task)

	require.NoError(t, store.SaveTask(ctx, &domain.ScheduledTask{
		ID: "t", Name: "Task", Interval: time.Hour, Enabled: true,
	}))

	task, err = store.GetTask(ctx, "t")
	require.NoError(t, err)
	require.NotNil(t, task)
	assert.Equal(t, time.Hour, task.Interval)

	base := time.Date(2025, 8, 20, 6, 0, 0, 0, time.UTC)
	require.NoError(t, store.RecordResult(ctx, &domain.TaskResult{TaskID: "t", StartedAt: base, Success: true}))
	require.NoError(t, store.RecordResult(ctx, &domain.TaskResult{TaskID: "t", StartedAt: base.Add(time.Hour), Success: false}))

	history, err := store.GetTaskHistory(ctx, "t", 1)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.False(t, history[0].Success)
}

func TestConfigStoreTypedGetters(t *testing.T) {
	store := NewConfigStore()

	require.NoError(t, store.Set("llm.model", "llama3.2"))
	require.NoError(t, store.Set("query.max_rows", 500))
	require.NoError(t, store.Set("router.threshold", 0.2))
	require.NoError(t, store.Set("scheduler.enabled", true))
	require.NoError(t, store.Set("query.timeout", "30s"))
	require.NoError(t, store.Set("query.deny_list", []any{"insert", "delete"}))

	assert.Equal(t, "llama3.2", store.GetString("llm.model"))
	assert.Equal(t, 500, store.GetInt("query.max_rows"))
	assert.Equal(t, 0.2, store.GetFloat("router.threshold"))
	assert.True(t, store.GetBool("scheduler.enabled"))
	assert.Equal(t, 30*time.Second, store.GetDuration("query.timeout"))
	assert.Equal(t, []string{"insert", "delete"}, store.GetStringSlice("query.deny_list"))

	assert.Equal(t, "", store.GetString("missing"))
	assert.Equal(t, 0, store.GetInt("llm.model"))
	assert.Equal(t, time.Duration(0), store.GetDuration("llm.model"))
}

package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridian-labs/yarra/internal/core/domain"
)

// memorySchedulerStore is an in-memory SchedulerStore for scheduler tests.
type memorySchedulerStore struct {
	mu      sync.Mutex
	tasks   map[string]domain.ScheduledTask
	results []domain.TaskResult
}

func newMemorySchedulerStore() *memorySchedulerStore {
	return &memorySchedulerStore{tasks: map[string]domain.ScheduledTask{}}
}

func (s *memorySchedulerStore) GetTask(_ context.Context, taskID string) (*domain.ScheduledTask, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	task, ok := s.tasks[taskID]
	if !ok {
		return nil, nil
	}
	return &task, nil
}

func (s *memorySchedulerStore) ListTasks(context.Context) ([]domain.ScheduledTask, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.ScheduledTask, 0, len(s.tasks))
	for _, task := range s.tasks {
		out = append(out, task)
	}
	return out, nil
}

func (s *memorySchedulerStore) SaveTask(_ context.Context, task *domain.ScheduledTask) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks[task.ID] = *task
	return nil
}

func (s *memorySchedulerStore) RecordResult(_ context.Context, result *domain.TaskResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = append(s.results, *result)
	return nil
}

func (s *memorySchedulerStore) GetTaskHistory(_ context.Context, taskID string, limit int) ([]domain.TaskResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.TaskResult, 0, limit)
	for i := len(s.results) - 1; i >= 0 && len(out) < limit; i-- {
		if s.results[i].TaskID == taskID {
			out = append(out, s.results[i])
		}
	}
	return out, nil
}

func (s *memorySchedulerStore) recorded() []domain.TaskResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.TaskResult, len(s.results))
	copy(out, s.results)
	return out
}

func enabledConfig(interval time.Duration) domain.SchedulerConfig {
	return domain.SchedulerConfig{
		Enabled: true,
		TaskConfigs: map[string]domain.TaskConfig{
			domain.TaskIDCollection: {Enabled: true, Interval: interval},
		},
	}
}

func TestSchedulerInitialisesCollectionTask(t *testing.T) {
	store := newMemorySchedulerStore()
	s := NewScheduler(enabledConfig(time.Hour), store, NewCollection())

	require.NoError(t, s.initialiseTasks(context.Background()))

	task, err := store.GetTask(context.Background(), domain.TaskIDCollection)
	require.NoError(t, err)
	require.NotNil(t, task)
	assert.Equal(t, "Data Collection", task.Name)
	assert.Equal(t, time.Hour, task.Interval)
	assert.True(t, task.Enabled)
	assert.True(t, task.NextRun.After(time.Now()))
}

func TestSchedulerEnsureTaskUpdatesChangedInterval(t *testing.T) {
	store := newMemorySchedulerStore()
	existing := &domain.ScheduledTask{
		ID:       domain.TaskIDCollection,
		Name:     "Data Collection",
		Interval: time.Hour,
		Enabled:  true,
		NextRun:  time.Now().Add(time.Hour),
	}
	require.NoError(t, store.SaveTask(context.Background(), existing))

	s := NewScheduler(enabledConfig(30*time.Minute), store, NewCollection())
	require.NoError(t, s.initialiseTasks(context.Background()))

	task, err := store.GetTask(context.Background(), domain.TaskIDCollection)
	require.NoError(t, err)
	assert.Equal(t, 30*time.Minute, task.Interval)
}

func TestSchedulerRunsDueCollectionTask(t *testing.T) {
	store := newMemorySchedulerStore()
	collection := NewCollection()
	col := &stubCollector{name: "rba-rates", records: 7}
	collection.RegisterCollector("housing", col)

	require.NoError(t, store.SaveTask(context.Background(), &domain.ScheduledTask{
		ID:       domain.TaskIDCollection,
		Name:     "Data Collection",
		Interval: time.Hour,
		Enabled:  true,
		NextRun:  time.Now().Add(-time.Minute), // overdue
	}))

	s := NewScheduler(enabledConfig(time.Hour), store, collection)
	s.checkAndRunDueTasks(context.Background())
	s.wg.Wait()

	assert.Equal(t, 1, col.calls)

	results := store.recorded()
	require.Len(t, results, 1)
	assert.True(t, results[0].Success)
	assert.Equal(t, 7, results[0].ItemsProcessed)

	task, err := store.GetTask(context.Background(), domain.TaskIDCollection)
	require.NoError(t, err)
	assert.False(t, task.LastRun.IsZero())
	assert.True(t, task.NextRun.After(time.Now()))
	assert.Empty(t, task.LastError)
}

func TestSchedulerSkipsDisabledAndNotDueTasks(t *testing.T) {
	store := newMemorySchedulerStore()
	collection := NewCollection()
	col := &stubCollector{name: "rba-rates", records: 1}
	collection.RegisterCollector("housing", col)

	require.NoError(t, store.SaveTask(context.Background(), &domain.ScheduledTask{
		ID:      domain.TaskIDCollection,
		Enabled: false,
		NextRun: time.Now().Add(-time.Minute),
	}))

	s := NewScheduler(enabledConfig(time.Hour), store, collection)
	s.checkAndRunDueTasks(context.Background())
	s.wg.Wait()
	assert.Zero(t, col.calls)

	require.NoError(t, store.SaveTask(context.Background(), &domain.ScheduledTask{
		ID:      domain.TaskIDCollection,
		Enabled: true,
		NextRun: time.Now().Add(time.Hour),
	}))
	s.checkAndRunDueTasks(context.Background())
	s.wg.Wait()
	assert.Zero(t, col.calls)
}

func TestSchedulerStartStop(t *testing.T) {
	store := newMemorySchedulerStore()
	s := NewScheduler(enabledConfig(time.Hour), store, NewCollection())

	done := make(chan error, 1)
	go func() { done <- s.Start(context.Background()) }()

	// Give the loop a moment to come up, then stop it.
	time.Sleep(20 * time.Millisecond)
	require.NoError(t, s.Stop())

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}
}

func TestSchedulerStartHonoursContext(t *testing.T) {
	store := newMemorySchedulerStore()
	s := NewScheduler(enabledConfig(time.Hour), store, NewCollection())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("scheduler did not observe cancellation")
	}
}

package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridian-labs/yarra/internal/core/domain"
	"github.com/meridian-labs/yarra/internal/core/ports/driven"
)

// memoryThreadStore is an in-memory ThreadStore for orchestrator tests.
type memoryThreadStore struct {
	mu       sync.Mutex
	threads  map[string]domain.Thread
	messages map[string][]domain.Message
}

func newMemoryThreadStore() *memoryThreadStore {
	return &memoryThreadStore{
		threads:  map[string]domain.Thread{},
		messages: map[string][]domain.Message{},
	}
}

func (s *memoryThreadStore) CreateThread(_ context.Context, thread *domain.Thread) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.threads[thread.ID] = *thread
	return nil
}

func (s *memoryThreadStore) GetThread(_ context.Context, id string) (*domain.Thread, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	thread, ok := s.threads[id]
	if !ok {
		return nil, fmt.Errorf("thread %q: %w", id, domain.ErrNotFound)
	}
	return &thread, nil
}

func (s *memoryThreadStore) UpdateTopic(_ context.Context, id, topic string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	thread, ok := s.threads[id]
	if !ok {
		return domain.ErrNotFound
	}
	thread.Topic = topic
	s.threads[id] = thread
	return nil
}

func (s *memoryThreadStore) AddMessage(_ context.Context, msg *domain.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}
	s.messages[msg.ThreadID] = append(s.messages[msg.ThreadID], *msg)
	if thread, ok := s.threads[msg.ThreadID]; ok {
		thread.UpdatedAt = msg.CreatedAt
		s.threads[msg.ThreadID] = thread
	}
	return nil
}

func (s *memoryThreadStore) Messages(_ context.Context, threadID string) ([]domain.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	msgs := make([]domain.Message, len(s.messages[threadID]))
	copy(msgs, s.messages[threadID])
	return msgs, nil
}

func (s *memoryThreadStore) ListThreads(_ context.Context, limit int) ([]domain.Thread, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	threads := make([]domain.Thread, 0, len(s.threads))
	for _, thread := range s.threads {
		threads = append(threads, thread)
	}
	sort.Slice(threads, func(i, j int) bool { return threads[i].UpdatedAt.After(threads[j].UpdatedAt) })
	if limit > 0 && len(threads) > limit {
		threads = threads[:limit]
	}
	return threads, nil
}

func newTestOrchestrator(t *testing.T, threads driven.ThreadStore, llm driven.LLMService, handlers ...driven.Handler) *Orchestrator {
	t.Helper()
	registry, err := NewRegistryWith(handlers...)
	require.NoError(t, err)
	return NewOrchestrator(
		registry,
		NewRouter(0),
		NewDispatcher(200*time.Millisecond, 0),
		NewSynthesizer(llm),
		threads,
		llm,
	)
}

func TestOrchestratorAnswersFromSingleHandler(t *testing.T) {
	housing := &stubHandler{
		name:     "housing",
		keywords: []string{"cash rate", "interest rate", "housing"},
		queryFn: func(context.Context, string, driven.QueryContext) (domain.HandlerResult, error) {
			return domain.HandlerResult{
				HandlerName: "housing",
				Text:        "The current cash rate is 3.85%.",
				Citations:   []domain.Citation{{Source: "RBA"}},
				Status:      domain.ResultSuccess,
			}, nil
		},
	}
	labour := keywordHandler("labour", "unemployment", "wages")

	o := newTestOrchestrator(t, nil, nil, housing, labour)
	answer, err := o.AnswerQuestion(context.Background(), "What is the current cash rate?", nil)
	require.NoError(t, err)

	assert.Equal(t, domain.AnswerAnswered, answer.Status)
	assert.Contains(t, answer.Text, "3.85%")
	require.Len(t, answer.Attributions, 1)
	assert.Equal(t, "housing", answer.Attributions[0].HandlerName)
	assert.Equal(t, "RBA", answer.Attributions[0].Citations[0].Source)
}

func TestOrchestratorNoRelevantHandler(t *testing.T) {
	housing := keywordHandler("housing", "cash rate", "mortgage")

	o := newTestOrchestrator(t, nil, nil, housing)
	answer, err := o.AnswerQuestion(context.Background(), "What is the weather in Paris?", nil)
	require.NoError(t, err)

	// An unroutable question is a terminal success, never an error and
	// never a fabricated answer.
	assert.Equal(t, domain.AnswerNoRelevantHandler, answer.Status)
	assert.Empty(t, answer.Attributions)
	assert.NotEmpty(t, answer.Text)
}

func TestOrchestratorRejectsEmptyQuestion(t *testing.T) {
	o := newTestOrchestrator(t, nil, nil, keywordHandler("housing", "housing"))

	_, err := o.AnswerQuestion(context.Background(), "   ", nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestOrchestratorPartialAnswerWhenOneHandlerTimesOut(t *testing.T) {
	housing := &stubHandler{
		name:     "housing",
		keywords: []string{"economy", "housing"},
		queryFn: func(context.Context, string, driven.QueryContext) (domain.HandlerResult, error) {
			return domain.HandlerResult{
				HandlerName: "housing",
				Text:        "Housing approvals fell 2.1% in July.",
				Status:      domain.ResultSuccess,
			}, nil
		},
	}
	labour := blockingHandler("labour")
	labour.keywords = []string{"economy", "unemployment"}

	o := newTestOrchestrator(t, nil, nil, housing, labour)
	answer, err := o.AnswerQuestion(context.Background(), "How is the economy going?", nil)
	require.NoError(t, err)

	assert.Equal(t, domain.AnswerPartial, answer.Status)
	require.Len(t, answer.Attributions, 1)
	assert.Equal(t, "housing", answer.Attributions[0].HandlerName)
	assert.Contains(t, answer.Text, "2.1%")
}

func TestOrchestratorAllHandlersFailed(t *testing.T) {
	failing := &stubHandler{
		name:     "housing",
		keywords: []string{"housing"},
		queryFn: func(context.Context, string, driven.QueryContext) (domain.HandlerResult, error) {
			return domain.HandlerResult{}, errors.New("store unavailable")
		},
	}

	o := newTestOrchestrator(t, nil, nil, failing)
	answer, err := o.AnswerQuestion(context.Background(), "housing approvals?", nil)
	require.NoError(t, err)

	assert.Equal(t, domain.AnswerAllHandlersFailed, answer.Status)
	assert.Empty(t, answer.Attributions)
}

func TestOrchestratorUnsafeHandlerQueryNeverReachesStore(t *testing.T) {
	// A handler that forwards raw SQL goes through the gateway; a stacked
	// statement is rejected before the executor sees it, and the failure
	// surfaces as a handler outcome rather than an orchestrator error.
	exec := &mockExecutor{}
	gw := NewGateway(exec, testPolicy())

	agent := &stubHandler{
		name:     "agents",
		keywords: []string{"agents"},
		queryFn: func(ctx context.Context, _ string, _ driven.QueryContext) (domain.HandlerResult, error) {
			_, err := gw.Execute(ctx, domain.QueryRequest{
				Handler: "agents",
				SQL:     "SELECT name FROM agents; DROP TABLE agents;",
			})
			if err != nil {
				return domain.HandlerResult{
					HandlerName: "agents",
					Status:      domain.ResultFailed,
					Diagnostic:  err.Error(),
				}, nil
			}
			return domain.HandlerResult{HandlerName: "agents", Text: "ok", Status: domain.ResultSuccess}, nil
		},
	}

	o := newTestOrchestrator(t, nil, nil, agent)
	answer, err := o.AnswerQuestion(context.Background(), "list the agents", nil)
	require.NoError(t, err)

	assert.Equal(t, domain.AnswerAllHandlersFailed, answer.Status)
	assert.Zero(t, exec.calls)
}

func TestOrchestratorChatCreatesThreadAndPersistsTurns(t *testing.T) {
	store := newMemoryThreadStore()
	llm := &mockLLM{generateResult: "Cash Rate Question"}
	housing := &stubHandler{
		name:     "housing",
		keywords: []string{"cash rate"},
	}

	o := newTestOrchestrator(t, store, llm, housing)
	answer, threadID, err := o.Chat(context.Background(), "", "What is the cash rate?")
	require.NoError(t, err)
	require.NotEmpty(t, threadID)
	assert.Equal(t, domain.AnswerAnswered, answer.Status)

	thread, err := store.GetThread(context.Background(), threadID)
	require.NoError(t, err)
	assert.Equal(t, "Cash Rate Question", thread.Topic)

	msgs, err := store.Messages(context.Background(), threadID)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, domain.RoleUser, msgs[0].Role)
	assert.Equal(t, "What is the cash rate?", msgs[0].Content)
	assert.Equal(t, domain.RoleAssistant, msgs[1].Role)
	assert.Equal(t, "housing", msgs[1].Handlers)
}

func TestOrchestratorChatPassesHistoryToHandlers(t *testing.T) {
	store := newMemoryThreadStore()

	var sawHistory bool
	housing := &stubHandler{
		name:     "housing",
		keywords: []string{"cash rate"},
		queryFn: func(_ context.Context, _ string, qctx driven.QueryContext) (domain.HandlerResult, error) {
			_, sawHistory = qctx["history"]
			return domain.HandlerResult{HandlerName: "housing", Text: "3.85%", Status: domain.ResultSuccess}, nil
		},
	}

	o := newTestOrchestrator(t, store, &mockLLM{generateResult: "Rates"}, housing)

	_, threadID, err := o.Chat(context.Background(), "", "What is the cash rate?")
	require.NoError(t, err)
	assert.False(t, sawHistory, "first turn has no history")

	_, _, err = o.Chat(context.Background(), threadID, "Has the cash rate changed?")
	require.NoError(t, err)
	assert.True(t, sawHistory, "second turn must carry history")
}

func TestOrchestratorChatWithoutStoreIsEphemeral(t *testing.T) {
	o := newTestOrchestrator(t, nil, nil, keywordHandler("housing", "cash rate"))

	answer, threadID, err := o.Chat(context.Background(), "", "cash rate today?")
	require.NoError(t, err)
	assert.NotEmpty(t, threadID)
	assert.Equal(t, domain.AnswerAnswered, answer.Status)
}

func TestOrchestratorChatTopicFallbackWithoutLLM(t *testing.T) {
	store := newMemoryThreadStore()
	o := newTestOrchestrator(t, store, nil, keywordHandler("housing", "cash rate"))

	long := "What is the cash rate and how has it moved over the last twelve months in detail?"
	_, threadID, err := o.Chat(context.Background(), "", long)
	require.NoError(t, err)

	thread, err := store.GetThread(context.Background(), threadID)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(thread.Topic), 50)
	assert.NotEmpty(t, thread.Topic)
}

func TestClampTopicCutsOnRuneBoundary(t *testing.T) {
	assert.Equal(t, "cash rate outlook", clampTopic("cash rate outlook"))

	long := strings.Repeat("é", 60)
	got := clampTopic(long)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, strings.Repeat("é", 47)+"...", got)

	mixed := "négative gearing " + strings.Repeat("数", 40)
	got = clampTopic(mixed)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, 50, utf8.RuneCountInString(got))
}

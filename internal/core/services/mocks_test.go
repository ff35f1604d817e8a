package services

import (
	"context"
	"time"

	"github.com/meridian-labs/yarra/internal/core/domain"
	"github.com/meridian-labs/yarra/internal/core/ports/driven"
)

// --- Mock implementations ---

// stubHandler implements driven.Handler for testing.
type stubHandler struct {
	name     string
	keywords []string
	queryFn  func(ctx context.Context, question string, qctx driven.QueryContext) (domain.HandlerResult, error)
}

func (h *stubHandler) Capabilities() domain.HandlerDescriptor {
	return domain.HandlerDescriptor{
		Name:     h.name,
		Keywords: h.keywords,
	}
}

func (h *stubHandler) Query(ctx context.Context, question string, qctx driven.QueryContext) (domain.HandlerResult, error) {
	if h.queryFn != nil {
		return h.queryFn(ctx, question, qctx)
	}
	return domain.HandlerResult{
		HandlerName: h.name,
		Text:        "stub answer from " + h.name,
		Status:      domain.ResultSuccess,
	}, nil
}

// succeedingHandler returns a handler that answers with the given text.
func succeedingHandler(name, text string, citations ...domain.Citation) *stubHandler {
	return &stubHandler{
		name: name,
		queryFn: func(context.Context, string, driven.QueryContext) (domain.HandlerResult, error) {
			return domain.HandlerResult{
				HandlerName: name,
				Text:        text,
				Citations:   citations,
				Status:      domain.ResultSuccess,
			}, nil
		},
	}
}

// blockingHandler returns a handler that never returns until its context
// is cancelled.
func blockingHandler(name string) *stubHandler {
	return &stubHandler{
		name: name,
		queryFn: func(ctx context.Context, _ string, _ driven.QueryContext) (domain.HandlerResult, error) {
			<-ctx.Done()
			return domain.HandlerResult{HandlerName: name, Status: domain.ResultTimedOut}, ctx.Err()
		},
	}
}

// mockExecutor implements driven.QueryExecutor for testing.
type mockExecutor struct {
	resp     domain.QueryResponse
	err      error
	delay    time.Duration
	calls    int
	lastSQL  string
	lastsLim int
}

func (m *mockExecutor) Query(ctx context.Context, sql string, limit int) (domain.QueryResponse, error) {
	m.calls++
	m.lastSQL = sql
	m.lastsLim = limit
	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return domain.QueryResponse{}, ctx.Err()
		}
	}
	if m.err != nil {
		return domain.QueryResponse{}, m.err
	}
	return m.resp, nil
}

// mockLLM implements driven.LLMService for testing.
type mockLLM struct {
	generateResult string
	chatResult     string
	err            error
}

func (m *mockLLM) Generate(context.Context, string, driven.GenerateOptions) (string, error) {
	return m.generateResult, m.err
}

func (m *mockLLM) Chat(context.Context, []driven.ChatMessage, driven.ChatOptions) (string, error) {
	return m.chatResult, m.err
}

func (m *mockLLM) ModelName() string { return "mock-llm" }

func (m *mockLLM) Ping(context.Context) error { return nil }

func (m *mockLLM) Close() error { return nil }

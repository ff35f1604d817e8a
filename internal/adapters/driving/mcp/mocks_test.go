package mcp

import (
	"context"

	"github.com/meridian-labs/yarra/internal/core/domain"
	"github.com/meridian-labs/yarra/internal/core/ports/driven"
)

// mockAskService is a mock implementation of driving.AskService.
type mockAskService struct {
	answer       domain.SynthesizedAnswer
	err          error
	lastQuestion string
}

func (m *mockAskService) AnswerQuestion(
	_ context.Context,
	question string,
	_ driven.QueryContext,
) (domain.SynthesizedAnswer, error) {
	m.lastQuestion = question
	return m.answer, m.err
}

func (m *mockAskService) Chat(
	_ context.Context,
	threadID, message string,
) (domain.SynthesizedAnswer, string, error) {
	m.lastQuestion = message
	return m.answer, threadID, m.err
}

// mockQueryGateway is a mock implementation of driving.QueryGateway.
type mockQueryGateway struct {
	response domain.QueryResponse
	err      error
	lastReq  domain.QueryRequest
}

func (m *mockQueryGateway) Execute(
	_ context.Context,
	req domain.QueryRequest,
) (domain.QueryResponse, error) {
	m.lastReq = req
	if m.err != nil {
		return domain.QueryResponse{}, m.err
	}
	return m.response, nil
}

// mockRegistry is a mock implementation of driving.HandlerRegistry.
type mockRegistry struct {
	descriptors []domain.HandlerDescriptor
}

func (m *mockRegistry) Register(_ driven.Handler) error { return nil }

func (m *mockRegistry) All() []domain.HandlerDescriptor { return m.descriptors }

func (m *mockRegistry) Find(_ string) (driven.Handler, error) {
	return nil, domain.ErrNotFound
}

func (m *mockRegistry) ReplaceAll(_ []driven.Handler) error { return nil }

// mockMetricStore is a mock implementation of driven.MetricStore.
type mockMetricStore struct {
	summaries []domain.MetricSummary
	err       error
}

func (m *mockMetricStore) SaveObservations(_ context.Context, _ []domain.Observation) error {
	return m.err
}

func (m *mockMetricStore) Latest(_ context.Context, _ string) (*domain.Observation, error) {
	return nil, domain.ErrNotFound
}

func (m *mockMetricStore) Series(_ context.Context, _ string, _ domain.SeriesRange) ([]domain.Observation, error) {
	return nil, m.err
}

func (m *mockMetricStore) ListMetrics(_ context.Context) ([]string, error) {
	return nil, m.err
}

func (m *mockMetricStore) Summaries(_ context.Context) ([]domain.MetricSummary, error) {
	return m.summaries, m.err
}

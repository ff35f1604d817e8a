package cli

import (
	"context"
	"time"

	"github.com/meridian-labs/yarra/internal/adapters/driven/storage/memory"
	"github.com/meridian-labs/yarra/internal/core/domain"
	"github.com/meridian-labs/yarra/internal/core/ports/driven"
)

// mockAskService returns a canned answer and records the question.
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

// mockCollectionService returns canned collection results.
type mockCollectionService struct {
	results     []domain.CollectionResult
	err         error
	lastHandler string
}

func (m *mockCollectionService) CollectAll(_ context.Context) ([]domain.CollectionResult, error) {
	return m.results, m.err
}

func (m *mockCollectionService) Collect(_ context.Context, handler string) (domain.CollectionResult, error) {
	m.lastHandler = handler
	if m.err != nil {
		return domain.CollectionResult{}, m.err
	}
	if len(m.results) > 0 {
		return m.results[0], nil
	}
	return domain.CollectionResult{Handler: handler}, nil
}

// mockRegistry serves a fixed descriptor list.
type mockRegistry struct {
	descriptors []domain.HandlerDescriptor
}

func (m *mockRegistry) Register(_ driven.Handler) error   { return nil }
func (m *mockRegistry) All() []domain.HandlerDescriptor   { return m.descriptors }
func (m *mockRegistry) ReplaceAll(_ []driven.Handler) error { return nil }
func (m *mockRegistry) Find(_ string) (driven.Handler, error) {
	return nil, domain.ErrNotFound
}

// mockGateway returns a canned query response.
type mockGateway struct {
	response domain.QueryResponse
	err      error
	lastReq  domain.QueryRequest
}

func (m *mockGateway) Execute(_ context.Context, req domain.QueryRequest) (domain.QueryResponse, error) {
	m.lastReq = req
	if m.err != nil {
		return domain.QueryResponse{}, m.err
	}
	return m.response, nil
}

// collectionResultAt builds a result with a fixed elapsed time.
func collectionResultAt(handler string, status domain.CollectionStatus, records int) domain.CollectionResult {
	start := time.Date(2025, 8, 1, 9, 0, 0, 0, time.UTC)
	return domain.CollectionResult{
		Handler:     handler,
		Status:      status,
		StartedAt:   start,
		CompletedAt: start.Add(250 * time.Millisecond),
		Records:     records,
	}
}

// setupTestServices wires mock services into the command tree and
// returns a cleanup that clears them again.
func setupTestServices() func() {
	SetServices(Services{
		Ask: &mockAskService{
			answer: domain.SynthesizedAnswer{
				Text:   "The cash rate is 3.85%.",
				Status: domain.AnswerAnswered,
				Attributions: []domain.Attribution{
					{
						HandlerName: "housing",
						Citations: []domain.Citation{
							{Source: "RBA Statistical Table F1", URL: "https://www.rba.gov.au/statistics/tables/"},
						},
					},
				},
			},
		},
		Collect: &mockCollectionService{
			results: []domain.CollectionResult{
				collectionResultAt("housing", domain.CollectionSuccess, 42),
				collectionResultAt("labour", domain.CollectionSuccess, 17),
			},
		},
		Registry: &mockRegistry{
			descriptors: []domain.HandlerDescriptor{
				{
					Name:        "housing",
					Description: "Housing market and interest rates",
					Keywords:    []string{"housing", "cash rate", "mortgage"},
				},
				{
					Name:        "labour",
					Description: "Labour market statistics",
					Keywords:    []string{"unemployment", "jobs"},
				},
			},
		},
		Gateway: &mockGateway{
			response: domain.QueryResponse{
				Columns:  []string{"metric", "value"},
				Rows:     []domain.Row{{"metric": "interest_rate_cash", "value": 3.85}},
				RowCount: 1,
			},
		},
		Metrics:  memory.NewMetricStore(),
		Threads:  memory.NewThreadStore(),
		Config:   memory.NewConfigStore(),
		Settings: domain.DefaultSettings(),
	})
	return func() {
		SetServices(Services{})
	}
}

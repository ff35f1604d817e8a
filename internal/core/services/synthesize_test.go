package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridian-labs/yarra/internal/core/domain"
)

func TestSynthesizeNoResults(t *testing.T) {
	s := NewSynthesizer(nil)

	answer := s.Synthesize(context.Background(), "weather in paris", nil)
	assert.Equal(t, domain.AnswerNoRelevantHandler, answer.Status)
	assert.NotEmpty(t, answer.Text)
	assert.Empty(t, answer.Attributions)
}

func TestSynthesizeAllFailed(t *testing.T) {
	s := NewSynthesizer(nil)

	answer := s.Synthesize(context.Background(), "cash rate", []domain.HandlerResult{
		{HandlerName: "housing", Status: domain.ResultFailed, Diagnostic: "store down"},
		{HandlerName: "labour", Status: domain.ResultTimedOut},
	})
	assert.Equal(t, domain.AnswerAllHandlersFailed, answer.Status)
	assert.Empty(t, answer.Attributions)
	// The failure text must not pretend to be an answer.
	assert.Contains(t, answer.Text, "none could retrieve data")
}

func TestSynthesizeSingleSuccessPassesThrough(t *testing.T) {
	s := NewSynthesizer(&mockLLM{chatResult: "should not be used"})

	citation := domain.Citation{Source: "RBA", URL: "https://rba.gov.au"}
	answer := s.Synthesize(context.Background(), "cash rate", []domain.HandlerResult{
		{
			HandlerName: "housing",
			Text:        "The current cash rate is 3.85%.",
			Citations:   []domain.Citation{citation},
			Status:      domain.ResultSuccess,
		},
	})

	assert.Equal(t, domain.AnswerAnswered, answer.Status)
	assert.Equal(t, "The current cash rate is 3.85%.", answer.Text)
	require.Len(t, answer.Attributions, 1)
	assert.Equal(t, "housing", answer.Attributions[0].HandlerName)
	assert.Equal(t, []domain.Citation{citation}, answer.Attributions[0].Citations)
	assert.True(t, answer.ContributedBy("housing"))
	assert.False(t, answer.ContributedBy("labour"))
}

func TestSynthesizePartialWhenSomeFail(t *testing.T) {
	s := NewSynthesizer(nil)

	answer := s.Synthesize(context.Background(), "economy overview", []domain.HandlerResult{
		{HandlerName: "housing", Text: "Approvals fell 2.1%.", Status: domain.ResultSuccess},
		{HandlerName: "labour", Status: domain.ResultTimedOut},
	})

	assert.Equal(t, domain.AnswerPartial, answer.Status)
	require.Len(t, answer.Attributions, 1)
	assert.Equal(t, "housing", answer.Attributions[0].HandlerName)
	// Only the contributing handler's text survives.
	assert.Equal(t, "Approvals fell 2.1%.", answer.Text)
}

func TestSynthesizeMultipleSuccessesWithoutLLM(t *testing.T) {
	s := NewSynthesizer(nil)

	results := []domain.HandlerResult{
		{HandlerName: "housing", Text: "Approvals fell 2.1%.", Status: domain.ResultSuccess},
		{HandlerName: "labour", Text: "Unemployment held at 4.1%.", Status: domain.ResultSuccess},
	}

	answer := s.Synthesize(context.Background(), "economy overview", results)
	assert.Equal(t, domain.AnswerAnswered, answer.Status)
	assert.Contains(t, answer.Text, "According to housing:")
	assert.Contains(t, answer.Text, "Approvals fell 2.1%.")
	assert.Contains(t, answer.Text, "According to labour:")
	assert.Contains(t, answer.Text, "Unemployment held at 4.1%.")

	require.Len(t, answer.Attributions, 2)
	assert.Equal(t, "housing", answer.Attributions[0].HandlerName)
	assert.Equal(t, "labour", answer.Attributions[1].HandlerName)

	// Deterministic composition: same inputs, same output.
	again := s.Synthesize(context.Background(), "economy overview", results)
	assert.Equal(t, answer, again)
}

func TestSynthesizeMultipleSuccessesWithLLM(t *testing.T) {
	llm := &mockLLM{chatResult: "Housing approvals fell 2.1% while unemployment held at 4.1%."}
	s := NewSynthesizer(llm)

	answer := s.Synthesize(context.Background(), "economy overview", []domain.HandlerResult{
		{HandlerName: "housing", Text: "Approvals fell 2.1%.", Status: domain.ResultSuccess},
		{HandlerName: "labour", Text: "Unemployment held at 4.1%.", Status: domain.ResultSuccess},
	})

	assert.Equal(t, domain.AnswerAnswered, answer.Status)
	assert.Equal(t, llm.chatResult, answer.Text)
	// Attributions are deterministic regardless of composition path.
	require.Len(t, answer.Attributions, 2)
}

func TestSynthesizeLLMFailureFallsBackToSections(t *testing.T) {
	s := NewSynthesizer(&mockLLM{err: errors.New("model offline")})

	answer := s.Synthesize(context.Background(), "economy overview", []domain.HandlerResult{
		{HandlerName: "housing", Text: "Approvals fell 2.1%.", Status: domain.ResultSuccess},
		{HandlerName: "labour", Text: "Unemployment held at 4.1%.", Status: domain.ResultSuccess},
	})

	assert.Equal(t, domain.AnswerAnswered, answer.Status)
	assert.Contains(t, answer.Text, "According to housing:")
	assert.Contains(t, answer.Text, "According to labour:")
}

func TestSynthesizeAttributionsExcludeFailedHandlers(t *testing.T) {
	s := NewSynthesizer(nil)

	answer := s.Synthesize(context.Background(), "q", []domain.HandlerResult{
		{HandlerName: "a", Text: "A says X.", Status: domain.ResultSuccess},
		{HandlerName: "b", Status: domain.ResultFailed, Diagnostic: "db error"},
		{HandlerName: "c", Text: "C says Y.", Status: domain.ResultSuccess},
	})

	assert.Equal(t, domain.AnswerPartial, answer.Status)
	require.Len(t, answer.Attributions, 2)
	assert.Equal(t, "a", answer.Attributions[0].HandlerName)
	assert.Equal(t, "c", answer.Attributions[1].HandlerName)
	assert.False(t, answer.ContributedBy("b"))
}

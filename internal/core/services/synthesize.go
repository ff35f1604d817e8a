package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/meridian-labs/yarra/internal/core/domain"
	"github.com/meridian-labs/yarra/internal/core/ports/driven"
	"github.com/meridian-labs/yarra/internal/logger"
)

// composeSystemPrompt instructs the model to keep every claim attributed
// to the handler that supplied it. Facts from different handlers must
// never be blended into an unattributed sentence.
const composeSystemPrompt = `You are composing a single answer from the findings of specialised data analysts.
Rules:
1. Attribute every claim to the analyst that supplied it, by name.
2. Never merge facts from different analysts into one unattributed sentence.
3. Do not add facts that no analyst supplied.
4. Keep the answer concise and factual.`

// Synthesizer merges per-handler results into one attributed answer.
// When an LLM service is configured it composes the multi-handler
// narrative; otherwise composition is a deterministic section per
// handler. The attribution set and status are deterministic either way.
type Synthesizer struct {
	llm driven.LLMService
}

// NewSynthesizer creates a synthesizer. llm may be nil.
func NewSynthesizer(llm driven.LLMService) *Synthesizer {
	return &Synthesizer{llm: llm}
}

// Synthesize merges the ordered handler results into the final answer.
func (s *Synthesizer) Synthesize(ctx context.Context, question string, results []domain.HandlerResult) domain.SynthesizedAnswer {
	logger.Section("Synthesis")

	if len(results) == 0 {
		return domain.SynthesizedAnswer{
			Status: domain.AnswerNoRelevantHandler,
			Text:   "No data handler covers this question. Ask about one of the tracked domains, or list them with the handlers command.",
		}
	}

	succeeded := make([]domain.HandlerResult, 0, len(results))
	allSuccess := true
	for _, res := range results {
		if res.Status.Succeeded() {
			succeeded = append(succeeded, res)
			if res.Status != domain.ResultSuccess {
				allSuccess = false
			}
		} else {
			allSuccess = false
		}
	}

	if len(succeeded) == 0 {
		logger.Warn("all %d handlers failed or timed out", len(results))
		return domain.SynthesizedAnswer{
			Status: domain.AnswerAllHandlersFailed,
			Text: fmt.Sprintf(
				"The question matched %d data handler(s), but none could retrieve data right now. No answer has been fabricated; please retry later.",
				len(results)),
		}
	}

	status := domain.AnswerAnswered
	if !allSuccess {
		status = domain.AnswerPartial
	}

	attributions := make([]domain.Attribution, len(succeeded))
	for i, res := range succeeded {
		attributions[i] = domain.Attribution{
			HandlerName: res.HandlerName,
			Citations:   res.Citations,
		}
	}

	// A single contributing handler passes through unchanged; there is
	// nothing to compose.
	if len(succeeded) == 1 {
		logger.Debug("single contributor %q, passing through", succeeded[0].HandlerName)
		return domain.SynthesizedAnswer{
			Text:         succeeded[0].Text,
			Attributions: attributions,
			Status:       status,
		}
	}

	text := s.compose(ctx, question, succeeded)
	logger.Info("synthesized answer from %d handlers, status %s", len(succeeded), status)
	return domain.SynthesizedAnswer{
		Text:         text,
		Attributions: attributions,
		Status:       status,
	}
}

// compose builds the multi-handler narrative. The LLM path falls back to
// the deterministic composition on any failure.
func (s *Synthesizer) compose(ctx context.Context, question string, succeeded []domain.HandlerResult) string {
	if s.llm != nil {
		if text, err := s.composeWithLLM(ctx, question, succeeded); err == nil {
			return text
		} else {
			logger.Warn("LLM composition failed, using sectioned fallback: %v", err)
		}
	}
	return composeSections(succeeded)
}

func (s *Synthesizer) composeWithLLM(ctx context.Context, question string, succeeded []domain.HandlerResult) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "Question: %s\n\nAnalyst findings:\n", question)
	for _, res := range succeeded {
		fmt.Fprintf(&b, "\n[%s]\n%s\n", res.HandlerName, res.Text)
	}

	text, err := s.llm.Chat(ctx,
		[]driven.ChatMessage{{Role: "user", Content: b.String()}},
		driven.ChatOptions{SystemPrompt: composeSystemPrompt, MaxTokens: 1024},
	)
	if err != nil {
		return "", err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("empty composition")
	}
	return text, nil
}

// composeSections is the deterministic composition: one attributed
// section per contributing handler, in result order.
func composeSections(succeeded []domain.HandlerResult) string {
	var b strings.Builder
	for i, res := range succeeded {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "According to %s:\n%s", res.HandlerName, res.Text)
	}
	return b.String()
}

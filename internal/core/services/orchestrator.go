package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/meridian-labs/yarra/internal/core/domain"
	"github.com/meridian-labs/yarra/internal/core/ports/driven"
	"github.com/meridian-labs/yarra/internal/core/ports/driving"
	"github.com/meridian-labs/yarra/internal/logger"
)

// Ensure Orchestrator implements the interface.
var _ driving.AskService = (*Orchestrator)(nil)

// historyWindow is how many recent messages are passed to handlers as
// conversation context.
const historyWindow = 10

// Orchestrator is the ask service: it routes a question to the relevant
// handlers, dispatches them concurrently and synthesizes one attributed
// answer. Handler outcomes never surface as errors; the caller always
// receives a well-formed SynthesizedAnswer.
type Orchestrator struct {
	registry    *Registry
	router      *Router
	dispatcher  *Dispatcher
	synthesizer *Synthesizer
	threads     driven.ThreadStore // optional; nil disables persistence
	llm         driven.LLMService  // optional; used for topic generation
}

// NewOrchestrator wires the core services together. threads and llm may
// be nil; chat persistence and topic generation degrade accordingly.
func NewOrchestrator(
	registry *Registry,
	router *Router,
	dispatcher *Dispatcher,
	synthesizer *Synthesizer,
	threads driven.ThreadStore,
	llm driven.LLMService,
) *Orchestrator {
	return &Orchestrator{
		registry:    registry,
		router:      router,
		dispatcher:  dispatcher,
		synthesizer: synthesizer,
		threads:     threads,
		llm:         llm,
	}
}

// AnswerQuestion routes, dispatches and synthesizes one question.
func (o *Orchestrator) AnswerQuestion(ctx context.Context, question string, qctx driven.QueryContext) (domain.SynthesizedAnswer, error) {
	if o.registry == nil {
		return domain.SynthesizedAnswer{}, errors.New("orchestrator: registry not configured")
	}
	question = strings.TrimSpace(question)
	if question == "" {
		return domain.SynthesizedAnswer{}, fmt.Errorf("%w: empty question", domain.ErrInvalidInput)
	}

	decision := o.router.Route(question, o.registry)
	if decision.IsEmpty() {
		// Terminal success path: no dispatch, no fabricated answer.
		return o.synthesizer.Synthesize(ctx, question, nil), nil
	}

	if qctx == nil {
		qctx = driven.QueryContext{}
	}
	handlers := o.registry.handlersFor(decision)
	results := o.dispatcher.Dispatch(ctx, question, qctx, handlers)

	return o.synthesizer.Synthesize(ctx, question, results), nil
}

// Chat answers a question within a persisted conversation thread. When
// threadID is empty a new thread is created and its topic generated from
// the first message. When no thread store is configured Chat behaves
// like AnswerQuestion with an ephemeral thread ID.
func (o *Orchestrator) Chat(ctx context.Context, threadID, message string) (domain.SynthesizedAnswer, string, error) {
	qctx := driven.QueryContext{}

	if o.threads == nil {
		if threadID == "" {
			threadID = uuid.NewString()
		}
		answer, err := o.AnswerQuestion(ctx, message, qctx)
		return answer, threadID, err
	}

	thread, history, err := o.loadOrCreateThread(ctx, threadID, message)
	if err != nil {
		return domain.SynthesizedAnswer{}, threadID, err
	}
	threadID = thread.ID

	if len(history) > 0 {
		qctx["history"] = recentHistory(history, historyWindow)
	}
	qctx["thread_id"] = threadID

	if err := o.threads.AddMessage(ctx, &domain.Message{
		ID:       uuid.NewString(),
		ThreadID: threadID,
		Role:     domain.RoleUser,
		Content:  message,
	}); err != nil {
		return domain.SynthesizedAnswer{}, threadID, fmt.Errorf("persist user message: %w", err)
	}

	answer, err := o.AnswerQuestion(ctx, message, qctx)
	if err != nil {
		return answer, threadID, err
	}

	if err := o.threads.AddMessage(ctx, &domain.Message{
		ID:       uuid.NewString(),
		ThreadID: threadID,
		Role:     domain.RoleAssistant,
		Content:  answer.Text,
		Handlers: strings.Join(attributedNames(answer), ","),
	}); err != nil {
		logger.Warn("persist assistant message: %v", err)
	}

	return answer, threadID, nil
}

// loadOrCreateThread resolves the thread and its history, creating a new
// thread (with an auto-generated topic) when threadID is empty or
// unknown.
func (o *Orchestrator) loadOrCreateThread(ctx context.Context, threadID, firstMessage string) (*domain.Thread, []domain.Message, error) {
	if threadID != "" {
		thread, err := o.threads.GetThread(ctx, threadID)
		switch {
		case err == nil:
			history, err := o.threads.Messages(ctx, threadID)
			if err != nil {
				return nil, nil, fmt.Errorf("load thread history: %w", err)
			}
			return thread, history, nil
		case !errors.Is(err, domain.ErrNotFound):
			return nil, nil, fmt.Errorf("load thread: %w", err)
		}
	}

	thread := &domain.Thread{
		ID:        threadID,
		Topic:     o.generateTopic(ctx, firstMessage),
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if thread.ID == "" {
		thread.ID = uuid.NewString()
	}
	if err := o.threads.CreateThread(ctx, thread); err != nil {
		return nil, nil, fmt.Errorf("create thread: %w", err)
	}
	logger.Debug("created thread %s topic %q", thread.ID, thread.Topic)
	return thread, nil, nil
}

// generateTopic produces a short 3-4 word topic from the first message.
// Falls back to a truncated form of the message when no LLM is
// configured or the call fails.
func (o *Orchestrator) generateTopic(ctx context.Context, message string) string {
	if o.llm != nil {
		topic, err := o.llm.Generate(ctx,
			"Generate a very short topic title (3-4 words max) summarising this question. "+
				"Reply with only the topic, no quotes, no trailing punctuation.\n\nQuestion: "+message,
			driven.GenerateOptions{MaxTokens: 20})
		if err == nil {
			topic = strings.Trim(strings.TrimSpace(topic), `"'`)
			if topic != "" {
				return clampTopic(topic)
			}
		} else {
			logger.Warn("topic generation failed: %v", err)
		}
	}
	return clampTopic(message)
}

// clampTopic caps a topic at 50 characters, cutting on a rune boundary
// so multibyte text never yields invalid UTF-8.
func clampTopic(topic string) string {
	const maxRunes = 50
	runes := []rune(topic)
	if len(runes) <= maxRunes {
		return topic
	}
	return string(runes[:maxRunes-3]) + "..."
}

func recentHistory(history []domain.Message, window int) []domain.Message {
	if len(history) <= window {
		return history
	}
	return history[len(history)-window:]
}

func attributedNames(answer domain.SynthesizedAnswer) []string {
	names := make([]string, len(answer.Attributions))
	for i, attr := range answer.Attributions {
		names[i] = attr.HandlerName
	}
	return names
}

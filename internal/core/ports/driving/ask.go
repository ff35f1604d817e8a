package driving

import (
	"context"

	"github.com/meridian-labs/yarra/internal/core/domain"
	"github.com/meridian-labs/yarra/internal/core/ports/driven"
)

// AskService answers natural-language questions by routing them to
// domain handlers and synthesizing their results. This is the single
// entry point the presentation layer calls.
type AskService interface {
	// AnswerQuestion routes, dispatches and synthesizes one question.
	// It always returns a well-formed SynthesizedAnswer, even in total
	// failure; the error return is reserved for faults of the service
	// itself (e.g. a nil registry), never for handler outcomes.
	AnswerQuestion(ctx context.Context, question string, qctx driven.QueryContext) (domain.SynthesizedAnswer, error)

	// Chat is thread-aware sugar over AnswerQuestion: it persists the
	// exchange to the given thread (creating it when threadID is
	// empty), auto-generates a topic from the first message and feeds
	// recent history to the handlers as context. It returns the answer
	// and the thread ID used.
	Chat(ctx context.Context, threadID, message string) (domain.SynthesizedAnswer, string, error)
}

// HandlerRegistry holds the registered domain handlers. Reads are
// concurrent; the only permitted mutation after serving begins is the
// atomic whole-table swap.
type HandlerRegistry interface {
	// Register adds a handler. Fails with domain.ErrDuplicateName if a
	// handler with the same name exists.
	Register(h driven.Handler) error

	// All returns descriptors in registration order. The order is
	// stable because it is the router's tie-break order.
	All() []domain.HandlerDescriptor

	// Find returns the handler with the given name, or
	// domain.ErrNotFound.
	Find(name string) (driven.Handler, error)

	// ReplaceAll swaps the entire table atomically. Readers observe
	// either the old or the new table in full, never a mixture.
	ReplaceAll(handlers []driven.Handler) error
}

// QueryGateway validates and executes ad-hoc read-only structured
// queries on behalf of a handler.
type QueryGateway interface {
	// Execute validates the request and runs it under the gateway
	// policy. Validation failure yields a domain.QueryRejectedError and
	// never touches the store; a query exceeding the time budget fails
	// with domain.ErrQueryTimeout and returns zero rows.
	Execute(ctx context.Context, req domain.QueryRequest) (domain.QueryResponse, error)
}

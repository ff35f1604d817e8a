package domain

import "time"

// ResultStatus is the outcome of a single handler invocation.
type ResultStatus string

// Handler invocation outcomes.
const (
	// ResultSuccess means the handler answered fully.
	ResultSuccess ResultStatus = "success"

	// ResultPartial means the handler answered but some of its data
	// access failed.
	ResultPartial ResultStatus = "partial"

	// ResultFailed means the handler could not produce an answer.
	ResultFailed ResultStatus = "failed"

	// ResultTimedOut means the handler exceeded its per-call timeout.
	ResultTimedOut ResultStatus = "timed_out"
)

// Succeeded returns true if the handler contributed usable text.
func (s ResultStatus) Succeeded() bool {
	return s == ResultSuccess || s == ResultPartial
}

// Citation attributes a claim to a concrete source.
type Citation struct {
	// Source is the display label, e.g. "RBA Statistical Table F1".
	Source string

	// URL is the source location, if known.
	URL string

	// AsOf is the observation or publication time, if known.
	AsOf *time.Time
}

// HandlerResult is one handler's answer to a question. It is immutable
// once produced; the dispatch coordinator owns it until the synthesizer
// consumes it.
type HandlerResult struct {
	// HandlerName identifies the handler that produced this result.
	HandlerName string

	// Text is the answer text. Empty unless Status.Succeeded().
	Text string

	// Citations are the sources backing the answer, in citation order.
	Citations []Citation

	// Status is the invocation outcome.
	Status ResultStatus

	// Diagnostic carries the internal failure detail for Failed and
	// TimedOut results. Never shown verbatim to end users.
	Diagnostic string
}

// AnswerStatus is the overall outcome of a question.
type AnswerStatus string

// Question outcomes.
const (
	// AnswerAnswered means every contributing handler succeeded.
	AnswerAnswered AnswerStatus = "answered"

	// AnswerNoRelevantHandler means routing matched nothing. This is a
	// terminal success path, not an error.
	AnswerNoRelevantHandler AnswerStatus = "no_relevant_handler"

	// AnswerAllHandlersFailed means handlers were selected but none
	// could retrieve data.
	AnswerAllHandlersFailed AnswerStatus = "all_handlers_failed"

	// AnswerPartial means some handlers failed but at least one
	// succeeded.
	AnswerPartial AnswerStatus = "partial"
)

// Attribution links a slice of the synthesized answer back to the handler
// that supplied it.
type Attribution struct {
	// HandlerName is the contributing handler.
	HandlerName string

	// Citations are that handler's sources.
	Citations []Citation
}

// SynthesizedAnswer is the only externally visible output of the core.
// Every claim in Text is traceable to an entry in Attributions; the
// synthesizer never invents a source it did not receive a HandlerResult
// from.
type SynthesizedAnswer struct {
	// Text is the final answer text.
	Text string

	// Attributions lists the contributing handlers with their citations,
	// in routing order.
	Attributions []Attribution

	// Status distinguishes "nothing matched" from "matched but could not
	// retrieve data" from full and partial answers.
	Status AnswerStatus
}

// ContributedBy reports whether the named handler is in the attribution set.
func (a SynthesizedAnswer) ContributedBy(handler string) bool {
	for _, attr := range a.Attributions {
		if attr.HandlerName == handler {
			return true
		}
	}
	return false
}

// Package messages defines Bubbletea message types for the TUI.
// Messages represent events that flow through the Elm architecture.
package messages

import (
	"github.com/meridian-labs/yarra/internal/core/domain"
)

// AnswerCompleted carries an answer back to the model. ThreadID is the
// thread the exchange was persisted to; on the first exchange it is the
// newly created thread.
type AnswerCompleted struct {
	Answer   domain.SynthesizedAnswer
	ThreadID string
	Err      error
}

// ThreadReset is sent when the user starts a new conversation thread.
type ThreadReset struct{}

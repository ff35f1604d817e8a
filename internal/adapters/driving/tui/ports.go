// Package tui provides the interactive chat interface for yarra.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/meridian-labs/yarra/internal/core/ports/driven"
	"github.com/meridian-labs/yarra/internal/core/ports/driving"
)

// Ports aggregates the driving port interfaces required by the TUI.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Ask answers questions and maintains conversation threads.
	Ask driving.AskService

	// Threads lists past conversation threads for resuming.
	Threads driven.ThreadStore
}

// NewPorts creates a new Ports aggregate with the given services.
func NewPorts(ask driving.AskService, threads driven.ThreadStore) *Ports {
	return &Ports{
		Ask:     ask,
		Threads: threads,
	}
}

// Validate ensures all required ports are set.
// Returns an error if any port is nil.
func (p *Ports) Validate() error {
	if p.Ask == nil {
		return ErrMissingAskService
	}
	if p.Threads == nil {
		return ErrMissingThreadStore
	}
	return nil
}

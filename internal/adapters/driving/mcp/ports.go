package mcp

import (
	"github.com/meridian-labs/yarra/internal/core/ports/driven"
	"github.com/meridian-labs/yarra/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Ask answers natural-language questions.
	Ask driving.AskService

	// Gateway runs read-only structured queries.
	Gateway driving.QueryGateway

	// Registry lists the registered domain handlers.
	Registry driving.HandlerRegistry

	// Metrics summarises the locally stored metrics.
	Metrics driven.MetricStore
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Ask == nil {
		return ErrMissingAskService
	}
	if p.Gateway == nil {
		return ErrMissingQueryGateway
	}
	// Registry and Metrics back optional resources
	return nil
}

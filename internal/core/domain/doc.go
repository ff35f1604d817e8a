// Package domain defines the core business entities for Yarra.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - HandlerDescriptor: What a knowledge-domain handler can answer
//   - RoutingDecision: The ranked handler set selected for a question
//   - HandlerResult: One handler's attributed answer
//   - SynthesizedAnswer: The single externally visible output
//   - QueryRequest/QueryResponse: The safe ad-hoc query contract
//   - Observation/Document: Stored metric and text data
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain

// Package driven provides interfaces for infrastructure adapters
// (secondary/outbound ports).
//
// These are the contracts the core depends on: handlers, the structured
// store behind the safe query gateway, metric and document retrieval,
// language model services, configuration and collectors. Implementations
// live under internal/adapters/driven and internal/handlers.
package driven

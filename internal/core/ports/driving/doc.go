// Package driving provides interfaces for application entry points
// (primary/inbound ports).
//
// These are the contracts the presentation layer (CLI, TUI, MCP server)
// calls into: the ask service, the handler registry, the safe query
// gateway and the collection/scheduler controls. Implementations live
// under internal/core/services.
package driving

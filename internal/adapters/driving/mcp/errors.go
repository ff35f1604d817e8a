// Package mcp provides an MCP (Model Context Protocol) server adapter
// for yarra. It lets AI assistants ask questions over the collected
// economic data and run read-only queries through the safe gateway.
package mcp

import "errors"

// ErrMissingAskService is returned when the ask service is not provided.
var ErrMissingAskService = errors.New("mcp: ask service is required")

// ErrMissingQueryGateway is returned when the query gateway is not provided.
var ErrMissingQueryGateway = errors.New("mcp: query gateway is required")

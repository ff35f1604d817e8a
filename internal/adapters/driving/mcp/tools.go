package mcp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/meridian-labs/yarra/internal/core/domain"
)

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Question string `json:"question" jsonschema:"the natural-language question about the Australian economy"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Answer       string              `json:"answer"`
	Status       string              `json:"status"`
	Attributions []AttributionOutput `json:"attributions,omitempty"`
}

// AttributionOutput links part of the answer to a contributing handler.
type AttributionOutput struct {
	Handler string           `json:"handler"`
	Sources []CitationOutput `json:"sources,omitempty"`
}

// CitationOutput is one cited source.
type CitationOutput struct {
	Source string `json:"source"`
	URL    string `json:"url,omitempty"`
	AsOf   string `json:"as_of,omitempty"`
}

// QueryInput is the input schema for the query_database tool.
type QueryInput struct {
	SQL   string `json:"sql" jsonschema:"a single read-only SELECT statement over the observations and documents tables"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum number of rows to return (default 500)"`
}

// QueryOutput is the output schema for the query_database tool.
type QueryOutput struct {
	Columns   []string         `json:"columns"`
	Rows      []map[string]any `json:"rows"`
	RowCount  int              `json:"row_count"`
	Truncated bool             `json:"truncated"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask",
		Description: "Ask a question about the Australian economy, answered from collected RBA and ABS data with source attribution",
	}, s.handleAsk)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "query_database",
		Description: "Run a read-only SQL SELECT over the local economic database",
	}, s.handleQuery)
}

// handleAsk handles the ask tool invocation.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	answer, err := s.ports.Ask.AnswerQuestion(ctx, input.Question, nil)
	if err != nil {
		return nil, AskOutput{}, err
	}

	output := AskOutput{
		Answer: answer.Text,
		Status: string(answer.Status),
	}
	for _, attr := range answer.Attributions {
		out := AttributionOutput{Handler: attr.HandlerName}
		for _, c := range attr.Citations {
			citation := CitationOutput{Source: c.Source, URL: c.URL}
			if c.AsOf != nil {
				citation.AsOf = c.AsOf.Format(time.RFC3339)
			}
			out.Sources = append(out.Sources, citation)
		}
		output.Attributions = append(output.Attributions, out)
	}

	return nil, output, nil
}

// handleQuery handles the query_database tool invocation.
func (s *Server) handleQuery(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input QueryInput,
) (*mcp.CallToolResult, QueryOutput, error) {
	resp, err := s.ports.Gateway.Execute(ctx, domain.QueryRequest{
		SQL:      input.SQL,
		Handler:  "mcp",
		RowLimit: input.Limit,
	})
	if err != nil {
		var rejected *domain.QueryRejectedError
		if errors.As(err, &rejected) {
			return nil, QueryOutput{}, fmt.Errorf("query rejected: %s", rejected.Reason)
		}
		return nil, QueryOutput{}, err
	}

	rows := make([]map[string]any, len(resp.Rows))
	for i, r := range resp.Rows {
		rows[i] = r
	}

	return nil, QueryOutput{
		Columns:   resp.Columns,
		Rows:      rows,
		RowCount:  resp.RowCount,
		Truncated: resp.Truncated,
	}, nil
}

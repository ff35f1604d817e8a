package mcp

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// uriScheme is the custom URI scheme for yarra resources.
const uriScheme = "yarra://"

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	// Static resource for the registered domain handlers.
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "handlers",
		Name:        "handlers",
		Description: "The registered domain handlers with their capabilities",
		MIMEType:    "application/json",
	}, s.handleHandlersResource)

	// Static resource for the stored metric summaries.
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "metrics",
		Name:        "metrics",
		Description: "Summary of the locally stored metrics",
		MIMEType:    "application/json",
	}, s.handleMetricsResource)
}

// handlerResource is the JSON shape of one handler descriptor.
type handlerResource struct {
	Name             string   `json:"name"`
	Description      string   `json:"description"`
	Keywords         []string `json:"keywords"`
	Metrics          []string `json:"metrics,omitempty"`
	Sources          []dataSourceResource `json:"sources,omitempty"`
	GeographicScope  string               `json:"geographic_scope,omitempty"`
	ExampleQuestions []string             `json:"example_questions,omitempty"`
}

// dataSourceResource is the JSON shape of one handler data source.
type dataSourceResource struct {
	Name            string `json:"name"`
	Kind            string `json:"kind,omitempty"`
	URL             string `json:"url,omitempty"`
	UpdateFrequency string `json:"update_frequency,omitempty"`
	Description     string `json:"description,omitempty"`
}

// metricResource is the JSON shape of one metric summary.
type metricResource struct {
	Metric         string  `json:"metric"`
	Count          int     `json:"count"`
	EarliestPeriod string  `json:"earliest_period"`
	LatestPeriod   string  `json:"latest_period"`
	LatestValue    float64 `json:"latest_value"`
	Source         string  `json:"source,omitempty"`
	Unit           string  `json:"unit,omitempty"`
}

// handleHandlersResource returns the registered handler descriptors.
func (s *Server) handleHandlersResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Registry == nil {
		return jsonResource(req.Params.URI, "[]")
	}

	descriptors := s.ports.Registry.All()
	out := make([]handlerResource, len(descriptors))
	for i, d := range descriptors {
		sources := make([]dataSourceResource, len(d.Sources))
		for j, src := range d.Sources {
			sources[j] = dataSourceResource{
				Name:            src.Name,
				Kind:            src.Kind,
				URL:             src.URL,
				UpdateFrequency: src.UpdateFrequency,
				Description:     src.Description,
			}
		}
		out[i] = handlerResource{
			Name:             d.Name,
			Description:      d.Description,
			Keywords:         d.Keywords,
			Metrics:          d.Metrics,
			Sources:          sources,
			GeographicScope:  d.GeographicScope,
			ExampleQuestions: d.ExampleQuestions,
		}
	}

	data, err := json.Marshal(out)
	if err != nil {
		return nil, err
	}
	return jsonResource(req.Params.URI, string(data))
}

// handleMetricsResource returns the stored metric summaries.
func (s *Server) handleMetricsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Metrics == nil {
		return jsonResource(req.Params.URI, "[]")
	}

	summaries, err := s.ports.Metrics.Summaries(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]metricResource, len(summaries))
	for i, m := range summaries {
		out[i] = metricResource{
			Metric:         m.Metric,
			Count:          m.Count,
			EarliestPeriod: m.EarliestPeriod,
			LatestPeriod:   m.LatestPeriod,
			LatestValue:    m.LatestValue,
			Source:         m.Source,
			Unit:           m.Unit,
		}
	}

	data, err := json.Marshal(out)
	if err != nil {
		return nil, err
	}
	return jsonResource(req.Params.URI, string(data))
}

// jsonResource wraps a JSON payload in a read result.
func jsonResource(uri, text string) (*mcp.ReadResourceResult, error) {
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     text,
		}},
	}, nil
}

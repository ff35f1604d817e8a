package domain

import "strings"

// HandlerDescriptor describes a knowledge-domain handler's identity and
// routing surface. Descriptors are built at process start from the handler
// implementations themselves and are immutable thereafter; the registry may
// only be changed by replacing the whole table atomically.
type HandlerDescriptor struct {
	// Name is the unique, stable handler identifier.
	Name string

	// Description is a human-readable summary of the handler's domain.
	Description string

	// Keywords are the routing phrases for this handler, in declaration
	// order. Matching is case-insensitive; multi-word phrases carry more
	// routing weight than single words.
	Keywords []string

	// Metrics lists the metric names this handler tracks.
	Metrics []string

	// Sources describes the external data sources behind this handler.
	Sources []DataSource

	// GeographicScope is the region the handler's data covers.
	GeographicScope string

	// ExampleQuestions are sample questions the handler can answer.
	ExampleQuestions []string
}

// DataSource describes one external data source a handler draws on.
type DataSource struct {
	// Name is the display name of the source.
	Name string

	// Kind is the access mechanism: "api", "csv", "rss" or "web".
	Kind string

	// URL is the source location.
	URL string

	// UpdateFrequency is how often the source publishes new data.
	UpdateFrequency string

	// Description is a human-readable summary.
	Description string
}

// NormalisedKeywords returns the descriptor's keywords lowercased with
// duplicates removed, preserving declaration order. Routing relies on this
// canonical form so a descriptor declaring "RBA" and "rba" counts once.
func (d HandlerDescriptor) NormalisedKeywords() []string {
	seen := make(map[string]struct{}, len(d.Keywords))
	out := make([]string, 0, len(d.Keywords))
	for _, kw := range d.Keywords {
		k := strings.ToLower(strings.TrimSpace(kw))
		if k == "" {
			continue
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}

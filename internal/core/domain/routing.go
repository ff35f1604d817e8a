package domain

// RankedHandler pairs a handler descriptor with its relevance score for
// one question.
type RankedHandler struct {
	// Descriptor is the matched handler.
	Descriptor HandlerDescriptor

	// Score is the relevance in [0,1].
	Score float64
}

// RoutingDecision is the ranked handler set selected for a question,
// score descending, ties broken by registration order. Produced fresh per
// question and never persisted. An empty decision means no handler
// matched and the caller must short-circuit to NoRelevantHandler instead
// of dispatching.
type RoutingDecision struct {
	// Handlers are the selected handlers in rank order.
	Handlers []RankedHandler
}

// IsEmpty reports whether no handler matched.
func (d RoutingDecision) IsEmpty() bool {
	return len(d.Handlers) == 0
}

// Names returns the selected handler names in rank order.
func (d RoutingDecision) Names() []string {
	names := make([]string, len(d.Handlers))
	for i, h := range d.Handlers {
		names[i] = h.Descriptor.Name
	}
	return names
}

package services

import (
	"fmt"
	"sync/atomic"

	"github.com/meridian-labs/yarra/internal/core/domain"
	"github.com/meridian-labs/yarra/internal/core/ports/driven"
	"github.com/meridian-labs/yarra/internal/core/ports/driving"
)

// Ensure Registry implements the interface.
var _ driving.HandlerRegistry = (*Registry)(nil)

// registryTable is the immutable handler table. A new table is built for
// every mutation and installed with a single pointer swap, so concurrent
// readers always observe a complete table.
type registryTable struct {
	ordered []driven.Handler
	byName  map[string]driven.Handler
	descs   []domain.HandlerDescriptor
}

// Registry holds the registered domain handlers. Registration order is
// preserved because it is the router's tie-break order.
type Registry struct {
	table atomic.Pointer[registryTable]
}

// NewRegistry creates an empty handler registry.
func NewRegistry() *Registry {
	r := &Registry{}
	r.table.Store(&registryTable{byName: map[string]driven.Handler{}})
	return r
}

// NewRegistryWith creates a registry pre-populated with handlers.
// Fails on the first duplicate name.
func NewRegistryWith(handlers ...driven.Handler) (*Registry, error) {
	r := NewRegistry()
	for _, h := range handlers {
		if err := r.Register(h); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds a handler to the table. Fails with
// domain.ErrDuplicateName if the name already exists.
func (r *Registry) Register(h driven.Handler) error {
	desc := h.Capabilities()
	for {
		old := r.table.Load()
		if _, exists := old.byName[desc.Name]; exists {
			return fmt.Errorf("%w: %q", domain.ErrDuplicateName, desc.Name)
		}
		next := old.clone()
		next.add(h, desc)
		if r.table.CompareAndSwap(old, next) {
			return nil
		}
	}
}

// All returns the descriptors in registration order.
func (r *Registry) All() []domain.HandlerDescriptor {
	t := r.table.Load()
	out := make([]domain.HandlerDescriptor, len(t.descs))
	copy(out, t.descs)
	return out
}

// Find returns the handler with the given name, or domain.ErrNotFound.
func (r *Registry) Find(name string) (driven.Handler, error) {
	t := r.table.Load()
	h, ok := t.byName[name]
	if !ok {
		return nil, fmt.Errorf("handler %q: %w", name, domain.ErrNotFound)
	}
	return h, nil
}

// ReplaceAll swaps the entire table atomically. Fails with
// domain.ErrDuplicateName if the new set repeats a name, leaving the old
// table in place.
func (r *Registry) ReplaceAll(handlers []driven.Handler) error {
	next := &registryTable{byName: make(map[string]driven.Handler, len(handlers))}
	for _, h := range handlers {
		desc := h.Capabilities()
		if _, exists := next.byName[desc.Name]; exists {
			return fmt.Errorf("%w: %q", domain.ErrDuplicateName, desc.Name)
		}
		next.add(h, desc)
	}
	r.table.Store(next)
	return nil
}

// handlersFor resolves a routing decision to invocable handlers against
// the current table, preserving decision order. Handlers that vanished
// in a concurrent swap are skipped.
func (r *Registry) handlersFor(decision domain.RoutingDecision) []driven.Handler {
	t := r.table.Load()
	out := make([]driven.Handler, 0, len(decision.Handlers))
	for _, rh := range decision.Handlers {
		if h, ok := t.byName[rh.Descriptor.Name]; ok {
			out = append(out, h)
		}
	}
	return out
}

func (t *registryTable) clone() *registryTable {
	next := &registryTable{
		ordered: make([]driven.Handler, len(t.ordered)),
		byName:  make(map[string]driven.Handler, len(t.byName)+1),
		descs:   make([]domain.HandlerDescriptor, len(t.descs)),
	}
	copy(next.ordered, t.ordered)
	copy(next.descs, t.descs)
	for k, v := range t.byName {
		next.byName[k] = v
	}
	return next
}

func (t *registryTable) add(h driven.Handler, desc domain.HandlerDescriptor) {
	t.ordered = append(t.ordered, h)
	t.byName[desc.Name] = h
	t.descs = append(t.descs, desc)
}

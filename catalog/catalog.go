// Package catalog holds the static table of operations the engine can run,
// their parameter schemas, and the text that grounds the external parser.
package catalog

import (
	"context"
	"fmt"

	"github.com/spektr-org/askdata/dataset"
	"github.com/spektr-org/askdata/engine"
)

// ============================================================================
// OPERATION CONTRACT
// ============================================================================

// Params is an operation's bound, validated parameter struct.
type Params any

// Operation is one catalog entry.
type Operation interface {
	Name() string
	Description() string
	// TriggerWords are vocabulary hints for the parser. The core never
	// matches on them.
	TriggerWords() []string
	Schema() Schema
	// Bind validates the intent against Schema and returns the operation's
	// own params struct.
	Bind(in engine.Intent) (Params, error)
	Execute(ctx context.Context, p Params, t dataset.Table) (*engine.Result, error)
}

// ============================================================================
// REGISTRY
// ============================================================================

// Registry maps operation names to entries. Populate it at startup; after
// that it is read-only and safe for concurrent Get calls.
type Registry struct {
	ops   map[string]Operation
	order []string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{ops: make(map[string]Operation)}
}

// Register adds op. Names must be unique.
func (r *Registry) Register(op Operation) error {
	name := op.Name()
	if name == "" {
		return fmt.Errorf("operation name cannot be empty")
	}
	if _, exists := r.ops[name]; exists {
		return fmt.Errorf("operation %q already registered", name)
	}
	r.ops[name] = op
	r.order = append(r.order, name)
	return nil
}

// MustRegister is Register for static tables; it panics on a duplicate.
func (r *Registry) MustRegister(ops ...Operation) *Registry {
	for _, op := range ops {
		if err := r.Register(op); err != nil {
			panic(err)
		}
	}
	return r
}

// Get looks up an operation by name.
func (r *Registry) Get(name string) (Operation, error) {
	op, ok := r.ops[name]
	if !ok {
		return nil, engine.NotFound("unknown operation: %s", name)
	}
	return op, nil
}

// Names returns operation names in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Operations returns the entries in registration order.
func (r *Registry) Operations() []Operation {
	out := make([]Operation, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.ops[name])
	}
	return out
}

// Package pipeline turns a natural-language instruction into a Result.
//
// Usage:
//
//	p := pipeline.New(translator.New(cfg))
//	res := p.Run(ctx, "top 3 regions by sales", table)
//
// Run never panics and never returns nil: every failure becomes an error
// Result with a descriptive message.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"runtime/debug"

	"github.com/google/uuid"

	"github.com/spektr-org/askdata/catalog"
	"github.com/spektr-org/askdata/dataset"
	"github.com/spektr-org/askdata/engine"
)

// Parser turns an instruction into an Intent. It sees column names only,
// never the data.
type Parser interface {
	Parse(ctx context.Context, instruction string, columns []string) (engine.Intent, error)
}

// ParserFunc adapts a function to Parser.
type ParserFunc func(ctx context.Context, instruction string, columns []string) (engine.Intent, error)

func (f ParserFunc) Parse(ctx context.Context, instruction string, columns []string) (engine.Intent, error) {
	return f(ctx, instruction, columns)
}

// State is a step of a run.
type State string

const (
	StateReceived  State = "received"
	StateParsed    State = "parsed"
	StateValidated State = "validated"
	StateResolved  State = "resolved"
	StateExecuted  State = "executed"
	StateResponded State = "responded"
	StateErrored   State = "errored"
)

// Pipeline holds no per-request state and is safe for concurrent use.
type Pipeline struct {
	parser   Parser
	registry *catalog.Registry
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithRegistry replaces the default operation catalog.
func WithRegistry(r *catalog.Registry) Option {
	return func(p *Pipeline) {
		p.registry = r
	}
}

// New creates a Pipeline. parser may be nil when only RunIntent is used.
func New(parser Parser, opts ...Option) *Pipeline {
	p := &Pipeline{parser: parser}
	for _, opt := range opts {
		opt(p)
	}
	if p.registry == nil {
		p.registry = catalog.Default()
	}
	return p
}

// Registry returns the catalog the pipeline dispatches to.
func (p *Pipeline) Registry() *catalog.Registry { return p.registry }

// Run parses instruction against the table's columns and executes the
// resulting intent.
func (p *Pipeline) Run(ctx context.Context, instruction string, t dataset.Table) *engine.Result {
	r := p.newRun()

	var res *engine.Result
	r.guard(&res, func() *engine.Result {
		if t == nil {
			return r.fail(engine.Unexpected("no dataset provided"))
		}
		log.Printf("📥 AskData [%s]: received %q (%d rows)", r.id, truncate(instruction, 80), t.Len())
		if p.parser == nil {
			return r.fail(engine.Upstream(nil, "no parser configured"))
		}
		intent, err := p.parser.Parse(ctx, instruction, t.Columns())
		if err != nil {
			var classified *engine.Error
			if !errors.As(err, &classified) {
				err = engine.Upstream(err, "could not understand the request")
			}
			return r.fail(err)
		}
		return p.execute(ctx, r, intent, t)
	})
	return res
}

// RunIntent executes an already-built intent, starting from the parsed state.
func (p *Pipeline) RunIntent(ctx context.Context, intent engine.Intent, t dataset.Table) *engine.Result {
	r := p.newRun()

	var res *engine.Result
	r.guard(&res, func() *engine.Result {
		if t == nil {
			return r.fail(engine.Unexpected("no dataset provided"))
		}
		log.Printf("📥 AskData [%s]: received intent operation=%q (%d rows)", r.id, intent.Operation, t.Len())
		return p.execute(ctx, r, intent, t)
	})
	return res
}

func (p *Pipeline) execute(ctx context.Context, r *run, intent engine.Intent, t dataset.Table) *engine.Result {
	intent = intent.Normalize()
	r.enter(StateParsed)

	op, err := p.registry.Get(intent.Operation)
	if err != nil {
		return r.fail(err)
	}
	params, err := op.Bind(intent)
	if err != nil {
		return r.fail(err)
	}
	r.enter(StateValidated)

	if err := ctx.Err(); err != nil {
		return r.fail(engine.Unexpected("request cancelled: %v", err))
	}

	// Execute resolves columns; Resolved is entered once it succeeds.
	res, err := op.Execute(ctx, params, t)
	if err != nil {
		return r.fail(err)
	}
	if res == nil {
		return r.fail(engine.Unexpected("operation '%s' returned no result", op.Name()))
	}
	r.enter(StateResolved)
	r.enter(StateExecuted)

	r.enter(StateResponded)
	log.Printf("✅ AskData [%s]: %s → %s", r.id, op.Name(), res.Type)
	return res
}

// ============================================================================
// RUN — per-request state
// ============================================================================

type run struct {
	id       string
	state    State
	failedAt State
}

func (p *Pipeline) newRun() *run {
	return &run{id: uuid.NewString(), state: StateReceived}
}

func (r *run) enter(s State) {
	r.state = s
}

func (r *run) fail(err error) *engine.Result {
	log.Printf("❌ AskData [%s]: failed after %s: %v", r.id, r.state, err)
	r.failedAt = r.state
	r.state = StateErrored
	return engine.ErrorResult(err)
}

// guard runs fn and converts a panic into an Unexpected error result.
func (r *run) guard(out **engine.Result, fn func() *engine.Result) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("💥 AskData [%s]: panic in %s: %v\n%s", r.id, r.state, rec, debug.Stack())
			*out = r.fail(engine.Unexpected("internal error: %v", rec))
		}
	}()
	*out = fn()
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return fmt.Sprintf("%s...", s[:maxLen])
}

// Package engine runs the full analysis pipeline over one document:
// lexing, parsing, scope construction, and type inference, producing a
// single ordered diagnostics list. Each Check call builds a fresh AST,
// registry, and type table; nothing is shared across runs, so separate
// documents can be checked concurrently with separate engines or with
// one engine from one goroutine at a time per call's result set.
package engine

import (
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/pcodetools/pcode/internal/ast"
	"github.com/pcodetools/pcode/internal/inference"
	"github.com/pcodetools/pcode/internal/metadata"
	"github.com/pcodetools/pcode/internal/parser"
	"github.com/pcodetools/pcode/internal/position"
	"github.com/pcodetools/pcode/internal/scope"
	"github.com/pcodetools/pcode/internal/types"
)

// Phase names the pipeline stage a diagnostic came from.
type Phase string

const (
	PhaseLex   Phase = "lex"
	PhaseParse Phase = "parse"
	PhaseInfer Phase = "infer"
)

// Diagnostic is the engine's unified diagnostic record.
type Diagnostic struct {
	Message  string
	Severity inference.Severity
	Span     position.Span
	Phase    Phase
}

// Result holds everything one Check produced. It is immutable from the
// caller's side: consumers read spans and inferred types, they never
// mutate the tree.
type Result struct {
	RunID       string
	Filename    string
	Program     *ast.Program
	Registry    *scope.Registry
	Types       *types.TypeTable
	Diagnostics []Diagnostic
	Source      *position.SourceFile
	Elapsed     time.Duration
}

// Engine owns the long-lived pieces of the pipeline: the builtin catalog
// for one configured PeopleTools release and the metadata provider.
type Engine struct {
	catalog      *types.Catalog
	provider     metadata.Provider
	logger       *slog.Logger
	checkClasses bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithProvider sets the metadata provider consulted during inference.
func WithProvider(p metadata.Provider) Option {
	return func(e *Engine) {
		if p != nil {
			e.provider = p
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithClassExistenceCheck enables diagnostics for create expressions
// naming classes the metadata provider does not know.
func WithClassExistenceCheck() Option {
	return func(e *Engine) { e.checkClasses = true }
}

// New builds an engine for the given PeopleTools release. An empty
// release selects the default.
func New(toolsRelease string, opts ...Option) (*Engine, error) {
	catalog, err := types.NewCatalog(toolsRelease)
	if err != nil {
		return nil, err
	}
	e := &Engine{
		catalog:  catalog,
		provider: metadata.NullProvider{},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Check runs the pipeline over one document and returns the result. A
// syntactically broken document still yields a best-effort result; Check
// has no error return because the pipeline never hard-fails.
func (e *Engine) Check(filename, source string) *Result {
	runID := uuid.NewString()
	start := time.Now()
	log := e.logger.With("run_id", runID, "file", filename)

	program, parseErrs := parser.ParseSource(source, filename)

	registry := scope.NewRegistry()
	registry.Build(program)

	table := types.NewTypeTable()
	var opts []inference.Option
	if e.checkClasses {
		opts = append(opts, inference.WithClassExistenceCheck())
	}
	visitor := inference.New(registry, e.catalog, e.provider, table, opts...)
	inferDiags := visitor.Run(program)

	diags := mergeDiagnostics(parseErrs, inferDiags)
	elapsed := time.Since(start)

	log.Debug("check complete",
		"elapsed", elapsed,
		"statements", len(program.Statements),
		"diagnostics", len(diags),
		"typed_exprs", table.Len())

	return &Result{
		RunID:       runID,
		Filename:    filename,
		Program:     program,
		Registry:    registry,
		Types:       table,
		Diagnostics: diags,
		Source:      position.NewSourceFile(filename, source),
		Elapsed:     elapsed,
	}
}

// mergeDiagnostics folds parse and inference findings into one list
// ordered by source position. The sort is stable so same-position
// diagnostics keep their pipeline order.
func mergeDiagnostics(parseErrs []*parser.ParseError, inferDiags []inference.Diagnostic) []Diagnostic {
	out := make([]Diagnostic, 0, len(parseErrs)+len(inferDiags))
	for _, pe := range parseErrs {
		phase := PhaseParse
		if pe.Context == "lexing" {
			phase = PhaseLex
		}
		out = append(out, Diagnostic{
			Message:  pe.Message,
			Severity: inference.SeverityError,
			Span:     pe.Span,
			Phase:    phase,
		})
	}
	for _, d := range inferDiags {
		out = append(out, Diagnostic{
			Message:  d.Message,
			Severity: d.Severity,
			Span:     d.Span,
			Phase:    PhaseInfer,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Span.Start.Offset < out[j].Span.Start.Offset
	})
	return out
}

// ScopeAt answers "what scope is this byte offset in" for
// context-sensitive callers.
func (r *Result) ScopeAt(offset int) *scope.ScopeInfo {
	return r.Registry.ScopeAt(offset)
}

// TypeAt returns the inferred type of the innermost expression covering
// the byte offset.
func (r *Result) TypeAt(offset int) (types.TypeInfo, bool) {
	node := ast.NodeAt(r.Program, offset)
	for ; node != nil; node = node.Parent() {
		if expr, ok := node.(ast.Expression); ok && r.Types.Has(expr) {
			return r.Types.Get(expr), true
		}
	}
	return types.Unknown(), false
}

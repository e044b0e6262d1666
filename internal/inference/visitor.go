// Package inference assigns a resolved type to every expression of a
// parsed program. Types land in a side table keyed by expression node, so
// the AST itself stays immutable and a re-run starts from a clean slate.
//
// Resolution is a deliberate two-phase pass. Phase one types every
// ordinary expression; user variables no scope declares are held back as
// phantom-parameter candidates. Phase two offers those candidates to the
// metadata provider's resolver, registers any it can type as phantom
// variables, and re-runs the walk so expressions depending on them pick
// up the resolved types. Whatever remains is tracked as undefined.
package inference

import (
	"strings"

	"github.com/pcodetools/pcode/internal/ast"
	"github.com/pcodetools/pcode/internal/metadata"
	"github.com/pcodetools/pcode/internal/position"
	"github.com/pcodetools/pcode/internal/scope"
	"github.com/pcodetools/pcode/internal/types"
)

// Visitor runs type inference over one parse. Not safe for concurrent
// use; one visitor per document.
type Visitor struct {
	registry *scope.Registry
	catalog  *types.Catalog
	provider metadata.Provider
	table    *types.TypeTable

	// checkClasses enables the application-class existence check. Off by
	// default: a provider with no class list would otherwise flag every
	// create expression.
	checkClasses bool

	diags     []Diagnostic
	pending   []pendingRef
	functions map[string]types.TypeInfo
	selfType  types.TypeInfo
	classNode *ast.ClassDecl
}

// pendingRef is a user-variable reference phase one could not resolve.
type pendingRef struct {
	name  string
	span  position.Span
	scope *scope.ScopeInfo
}

// Option configures a Visitor.
type Option func(*Visitor)

// WithClassExistenceCheck enables diagnostics for create expressions that
// name application classes the metadata provider does not know.
func WithClassExistenceCheck() Option {
	return func(v *Visitor) { v.checkClasses = true }
}

// New creates a visitor. A nil provider degrades to metadata.NullProvider.
func New(registry *scope.Registry, catalog *types.Catalog, provider metadata.Provider, table *types.TypeTable, opts ...Option) *Visitor {
	if provider == nil {
		provider = metadata.NullProvider{}
	}
	v := &Visitor{
		registry:  registry,
		catalog:   catalog,
		provider:  provider,
		table:     table,
		functions: make(map[string]types.TypeInfo),
		selfType:  types.Any(),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Run infers types for the whole program and returns the collected
// diagnostics. The scope registry must already be built for this program.
func (v *Visitor) Run(program *ast.Program) []Diagnostic {
	v.collectSignatures(program)

	v.walkProgram(program)

	// Phase two: offer the unresolved variables to the provider's
	// resolver. Each hit becomes a phantom registration in the scope that
	// referenced it.
	resolvedAny := false
	for _, ref := range v.pending {
		if _, ok := ref.scope.Lookup(ref.name); ok {
			continue
		}
		t, ok := v.provider.ResolveUndefinedVariable(ref.name, ref.scope)
		if !ok {
			continue
		}
		ref.scope.Register(&scope.VariableInfo{
			Name:     ref.name,
			Type:     t,
			DeclSpan: ref.span,
			Phantom:  true,
		})
		resolvedAny = true
	}
	if resolvedAny {
		v.table.Reset()
		v.diags = nil
		v.pending = nil
		v.walkProgram(program)
	}

	// What survives both phases is genuinely undefined.
	for _, ref := range v.pending {
		if _, ok := ref.scope.Lookup(ref.name); ok {
			continue
		}
		v.registry.TrackUndefinedReference(ref.name, ref.span, ref.scope)
		v.diagf(SeverityWarning, ref.span, "variable %s is not declared in any enclosing scope", ref.name)
	}
	return v.diags
}

// Diagnostics returns the findings of the last Run.
func (v *Visitor) Diagnostics() []Diagnostic { return v.diags }

// collectSignatures records locally declared functions and the class
// declaration before expression typing starts, so calls and %This resolve
// regardless of declaration order.
func (v *Visitor) collectSignatures(program *ast.Program) {
	for _, stmt := range program.Statements {
		switch n := stmt.(type) {
		case *ast.FunctionDecl:
			result := types.Any()
			if n.Returns != nil {
				result = types.FromTypeNode(n.Returns)
			}
			v.functions[strings.ToLower(n.Name)] = result
		case *ast.ClassDecl:
			v.classNode = n
			v.selfType = types.AppClass(n.Name)
		}
	}
}

// ====== Statement walk ======

func (v *Visitor) walkProgram(program *ast.Program) {
	for _, stmt := range program.Statements {
		v.stmt(stmt)
	}
}

func (v *Visitor) stmt(s ast.Statement) {
	switch n := s.(type) {
	case *ast.ClassDecl:
		for _, c := range n.Constants {
			v.expr(c.Value)
		}
	case *ast.InterfaceDecl:
		// Signatures only.
	case *ast.MethodImpl:
		v.block(n.Body)
	case *ast.FunctionDecl:
		v.block(n.Body)

	case *ast.LocalVarDecl:
		// Declaration only; the registry already holds the types.
	case *ast.LocalVarDeclAssign:
		declared := types.FromTypeNode(n.TypeSpec)
		value := v.expr(n.Value)
		v.checkAssignable(declared, value, n.Value)

	case *ast.Assignment:
		target := v.expr(n.Target)
		value := v.expr(n.Value)
		v.checkAssignable(target, value, n.Value)

	case *ast.ExpressionStatement:
		v.expr(n.Expr)

	case *ast.IfStmt:
		v.condition(n.Condition)
		v.block(n.Then)
		v.block(n.Else)
	case *ast.ForStmt:
		v.expr(n.Var)
		v.numericOperand(n.From, "For bound")
		v.numericOperand(n.To, "For bound")
		if n.Step != nil {
			v.numericOperand(n.Step, "For step")
		}
		v.block(n.Body)
	case *ast.WhileStmt:
		v.condition(n.Condition)
		v.block(n.Body)
	case *ast.RepeatStmt:
		v.block(n.Body)
		v.condition(n.Condition)

	case *ast.EvaluateStmt:
		v.expr(n.Subject)
		for _, when := range n.Whens {
			v.expr(when.Value)
			v.block(when.Body)
		}
		v.block(n.Other)

	case *ast.TryStmt:
		v.block(n.Body)
		for _, c := range n.Catches {
			v.block(c.Body)
		}

	case *ast.ReturnStmt:
		if n.Value != nil {
			v.expr(n.Value)
		}
	case *ast.ThrowStmt:
		v.expr(n.Value)
	case *ast.MessageStmt:
		v.expr(n.Value)
	}
}

func (v *Visitor) block(b *ast.Block) {
	if b == nil {
		return
	}
	for _, stmt := range b.Statements {
		v.stmt(stmt)
	}
}

func (v *Visitor) condition(e ast.Expression) {
	t := v.expr(e)
	if t.IsAny() || t.IsUnknown() || t.IsBoolean() {
		return
	}
	v.diagf(SeverityWarning, e.Span(), "condition has type %s, expected boolean", t)
}

func (v *Visitor) numericOperand(e ast.Expression, context string) {
	t := v.expr(e)
	if t.IsAny() || t.IsUnknown() || t.IsNumeric() {
		return
	}
	v.diagf(SeverityWarning, e.Span(), "%s has type %s, expected number", context, t)
}

func (v *Visitor) checkAssignable(dst, src types.TypeInfo, at ast.Expression) {
	if at == nil || dst.AssignableFrom(src) {
		return
	}
	v.diagf(SeverityWarning, at.Span(), "cannot assign %s to %s", src, dst)
}

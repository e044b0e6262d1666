package scope

import (
	"github.com/pcodetools/pcode/internal/ast"
	"github.com/pcodetools/pcode/internal/position"
	"github.com/pcodetools/pcode/internal/types"
)

// UndefinedReference records an identifier reference that resolved to no
// declaration in any enclosing scope.
type UndefinedReference struct {
	Name  string
	Span  position.Span
	Scope *ScopeInfo
}

// Registry owns the scope tree of one parse and the usage state that the
// inference and usage passes accumulate on top of it. One registry per
// parse; Reset before reuse on a new document.
type Registry struct {
	root      *ScopeInfo
	byNode    map[ast.Node]*ScopeInfo
	undefined []UndefinedReference
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byNode: make(map[ast.Node]*ScopeInfo)}
}

// Build walks the program and constructs the scope tree, registering
// every declaration. Registration completes before any usage marking, so
// forward references within a scope resolve correctly.
func (r *Registry) Build(program *ast.Program) *ScopeInfo {
	r.Reset()
	r.root = newScope(KindProgram, program.Span(), nil)
	r.byNode[program] = r.root

	// The class scope, when present, encloses the method implementations
	// that follow the class declaration in the same program.
	var classScope *ScopeInfo
	var classNode *ast.ClassDecl
	for _, stmt := range program.Statements {
		switch n := stmt.(type) {
		case *ast.ClassDecl:
			classScope = r.buildClass(n)
			classNode = n
		case *ast.InterfaceDecl:
			r.enterScope(KindClass, n.Span(), r.root, n)
		case *ast.MethodImpl:
			parent := r.root
			if classScope != nil {
				parent = classScope
			}
			r.buildMethodImpl(n, parent, classNode)
		case *ast.FunctionDecl:
			r.buildFunction(n, r.root)
		default:
			r.buildStatement(stmt, r.root)
		}
	}
	return r.root
}

// Root returns the program scope, nil before Build.
func (r *Registry) Root() *ScopeInfo { return r.root }

// ScopeFor returns the innermost scope enclosing the given node, found by
// walking AST parent links to the nearest scope-introducing node.
func (r *Registry) ScopeFor(n ast.Node) *ScopeInfo {
	for cur := n; cur != nil; cur = cur.Parent() {
		if s, ok := r.byNode[cur]; ok {
			return s
		}
	}
	return r.root
}

// ScopeAt returns the innermost scope whose span contains the byte
// offset, or the root when no nested scope does.
func (r *Registry) ScopeAt(offset int) *ScopeInfo {
	if r.root == nil {
		return nil
	}
	cur := r.root
	for {
		descended := false
		for _, child := range cur.children {
			if child.span.ContainsOffset(offset) {
				cur = child
				descended = true
				break
			}
		}
		if !descended {
			return cur
		}
	}
}

// MarkAsUsed marks the nearest enclosing declaration of name as used.
// It reports whether a declaration was found.
func (r *Registry) MarkAsUsed(name string, s *ScopeInfo) bool {
	if s == nil {
		return false
	}
	v, ok := s.Lookup(name)
	if !ok {
		return false
	}
	v.used = true
	return true
}

// TrackUndefinedReference records a reference that no scope declares.
func (r *Registry) TrackUndefinedReference(name string, span position.Span, s *ScopeInfo) {
	r.undefined = append(r.undefined, UndefinedReference{Name: name, Span: span, Scope: s})
}

// UndefinedReferences returns all recorded undefined references in the
// order they were tracked.
func (r *Registry) UndefinedReferences() []UndefinedReference {
	return r.undefined
}

// UnusedVariables returns every non-phantom variable in the whole scope
// tree that was never marked used, in scope pre-order then registration
// order.
func (r *Registry) UnusedVariables() []*VariableInfo {
	var out []*VariableInfo
	var walk func(s *ScopeInfo)
	walk = func(s *ScopeInfo) {
		for _, v := range s.Variables() {
			if !v.used && !v.Phantom {
				out = append(out, v)
			}
		}
		for _, child := range s.children {
			walk(child)
		}
	}
	if r.root != nil {
		walk(r.root)
	}
	return out
}

// UnusedVariablesInScope returns the unused non-phantom variables
// declared directly in s.
func (r *Registry) UnusedVariablesInScope(s *ScopeInfo) []*VariableInfo {
	var out []*VariableInfo
	for _, v := range s.Variables() {
		if !v.used && !v.Phantom {
			out = append(out, v)
		}
	}
	return out
}

// Reset discards the scope tree and all accumulated usage state. Stale
// state across documents produces wrong reports, so callers must Reset
// (or use a fresh registry) per parse.
func (r *Registry) Reset() {
	r.root = nil
	r.byNode = make(map[ast.Node]*ScopeInfo)
	r.undefined = nil
}

// ====== Tree construction ======

func (r *Registry) enterScope(kind Kind, span position.Span, parent *ScopeInfo, node ast.Node) *ScopeInfo {
	s := newScope(kind, span, parent)
	r.byNode[node] = s
	return s
}

func (r *Registry) buildClass(n *ast.ClassDecl) *ScopeInfo {
	s := r.enterScope(KindClass, n.Span(), r.root, n)

	for _, inst := range n.Instances {
		t := types.FromTypeNode(inst.TypeSpec)
		for _, name := range inst.Names {
			s.Register(&VariableInfo{
				Name:     name.Name,
				Type:     t,
				DeclSpan: name.Span(),
				Kind:     VarInstance,
			})
		}
	}
	for _, c := range n.Constants {
		s.Register(&VariableInfo{
			Name:     c.Name.Name,
			Type:     literalType(c.Value),
			DeclSpan: c.Name.Span(),
			Kind:     VarConstant,
		})
	}
	for _, prop := range n.Properties {
		s.Register(&VariableInfo{
			Name:     prop.Name,
			Type:     types.FromTypeNode(prop.TypeSpec),
			DeclSpan: prop.NameSpan,
			Kind:     VarProperty,
		})
	}
	return s
}

func (r *Registry) buildMethodImpl(n *ast.MethodImpl, parent *ScopeInfo, class *ast.ClassDecl) {
	s := r.enterScope(KindMethod, n.Span(), parent, n)
	params := n.Parameters
	if len(params) == 0 && class != nil {
		// Implementations normally carry no signature of their own; the
		// annotation form is stripped during lexing as a comment, so the
		// parameters live on the declaration header inside the class block.
		if h := class.MethodByName(n.Name); h != nil {
			params = h.Parameters
		}
	}
	r.registerParams(s, params)
	r.buildBlock(n.Body, s)
}

func (r *Registry) buildFunction(n *ast.FunctionDecl, parent *ScopeInfo) {
	s := r.enterScope(KindFunction, n.Span(), parent, n)
	r.registerParams(s, n.Parameters)
	r.buildBlock(n.Body, s)
}

func (r *Registry) registerParams(s *ScopeInfo, params []*ast.Parameter) {
	for _, p := range params {
		s.Register(&VariableInfo{
			Name:     p.Name.Name,
			Type:     types.FromTypeNode(p.TypeSpec),
			DeclSpan: p.Name.Span(),
			Kind:     VarParameter,
		})
	}
}

func (r *Registry) buildBlock(b *ast.Block, s *ScopeInfo) {
	if b == nil {
		return
	}
	for _, stmt := range b.Statements {
		r.buildStatement(stmt, s)
	}
}

// buildStatement registers declarations and opens nested scopes. Loop
// bodies and try/catch arms introduce scopes; If and Evaluate branches
// share the enclosing scope.
func (r *Registry) buildStatement(stmt ast.Statement, s *ScopeInfo) {
	switch n := stmt.(type) {
	case *ast.LocalVarDecl:
		t := types.FromTypeNode(n.TypeSpec)
		for _, name := range n.Names {
			s.Register(&VariableInfo{
				Name:     name.Name,
				Type:     t,
				DeclSpan: name.Span(),
				Kind:     varKindForScope(n.Scope),
			})
		}
	case *ast.LocalVarDeclAssign:
		s.Register(&VariableInfo{
			Name:     n.Name.Name,
			Type:     types.FromTypeNode(n.TypeSpec),
			DeclSpan: n.Name.Span(),
			Kind:     varKindForScope(n.Scope),
		})

	case *ast.IfStmt:
		r.buildBlock(n.Then, s)
		r.buildBlock(n.Else, s)

	case *ast.ForStmt:
		loop := r.enterScope(KindLoop, n.Span(), s, n)
		// The loop variable is not a declaration; it must already be in
		// scope. Only the body nests.
		r.buildBlock(n.Body, loop)
	case *ast.WhileStmt:
		loop := r.enterScope(KindLoop, n.Span(), s, n)
		r.buildBlock(n.Body, loop)
	case *ast.RepeatStmt:
		loop := r.enterScope(KindLoop, n.Span(), s, n)
		r.buildBlock(n.Body, loop)

	case *ast.EvaluateStmt:
		for _, when := range n.Whens {
			r.buildBlock(when.Body, s)
		}
		r.buildBlock(n.Other, s)

	case *ast.TryStmt:
		try := r.enterScope(KindTry, n.Body.Span(), s, n)
		r.buildBlock(n.Body, try)
		for _, c := range n.Catches {
			catch := r.enterScope(KindCatch, c.Span(), s, c)
			if c.Var != nil {
				catch.Register(&VariableInfo{
					Name:     c.Var.Name,
					Type:     types.FromTypeNode(c.ExceptionType),
					DeclSpan: c.Var.Span(),
					Kind:     VarLocal,
				})
			}
			r.buildBlock(c.Body, catch)
		}

	case *ast.FunctionDecl:
		r.buildFunction(n, s)
	}
}

func varKindForScope(vs ast.VarScope) VarKind {
	switch vs {
	case ast.ScopeGlobal:
		return VarGlobal
	case ast.ScopeComponent:
		return VarComponent
	}
	return VarLocal
}

// literalType gives the type of a constant initializer without running
// full inference.
func literalType(e ast.Expression) types.TypeInfo {
	lit, ok := e.(*ast.Literal)
	if !ok {
		return types.Any()
	}
	switch lit.Kind {
	case ast.LiteralInteger, ast.LiteralDecimal:
		return types.Number()
	case ast.LiteralString:
		return types.Str()
	case ast.LiteralBool:
		return types.Boolean()
	}
	return types.Any()
}

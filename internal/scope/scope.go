// Package scope builds and queries the lexical scope tree of a parsed
// program. Scopes form their own tree, separate from the AST, with one
// scope per scope-introducing construct; variable lookup walks parent
// links so the nearest enclosing declaration wins.
package scope

import (
	"strings"

	"github.com/pcodetools/pcode/internal/position"
	"github.com/pcodetools/pcode/internal/types"
)

// Kind classifies a scope by the construct that introduced it.
type Kind int

const (
	KindProgram Kind = iota
	KindClass
	KindMethod
	KindFunction
	KindLoop
	KindTry
	KindCatch
)

var kindNames = map[Kind]string{
	KindProgram:  "program",
	KindClass:    "class",
	KindMethod:   "method",
	KindFunction: "function",
	KindLoop:     "loop",
	KindTry:      "try",
	KindCatch:    "catch",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "scope"
}

// VarKind classifies how a variable was introduced.
type VarKind int

const (
	VarLocal VarKind = iota
	VarGlobal
	VarComponent
	VarInstance
	VarParameter
	VarConstant
	VarProperty
)

var varKindNames = map[VarKind]string{
	VarLocal:     "local",
	VarGlobal:    "global",
	VarComponent: "component",
	VarInstance:  "instance",
	VarParameter: "parameter",
	VarConstant:  "constant",
	VarProperty:  "property",
}

func (k VarKind) String() string {
	if s, ok := varKindNames[k]; ok {
		return s
	}
	return "variable"
}

// VariableInfo records one declared variable. Phantom variables are
// implicit parameters injected during inference for transform patterns;
// they resolve types but never surface in unused-variable reports.
type VariableInfo struct {
	Name     string
	Type     types.TypeInfo
	DeclSpan position.Span
	Kind     VarKind
	Phantom  bool

	used bool
}

// Used reports whether any reference to the variable has been marked.
func (v *VariableInfo) Used() bool { return v.used }

// ScopeInfo is one node of the scope tree.
type ScopeInfo struct {
	kind   Kind
	span   position.Span
	parent *ScopeInfo

	children []*ScopeInfo
	vars     map[string]*VariableInfo
	order    []string
}

func newScope(kind Kind, span position.Span, parent *ScopeInfo) *ScopeInfo {
	s := &ScopeInfo{
		kind: kind,
		span: span,
		vars: make(map[string]*VariableInfo),
	}
	if parent != nil {
		s.parent = parent
		parent.children = append(parent.children, s)
	}
	return s
}

// Kind returns the scope's classification.
func (s *ScopeInfo) Kind() Kind { return s.kind }

// Span returns the source region the scope covers.
func (s *ScopeInfo) Span() position.Span { return s.span }

// Parent returns the lexical parent scope, nil at the root.
func (s *ScopeInfo) Parent() *ScopeInfo { return s.parent }

// Children returns the nested scopes in source order.
func (s *ScopeInfo) Children() []*ScopeInfo { return s.children }

// Register records a variable in this scope. A redeclaration of the same
// name replaces the earlier entry but keeps its registration slot.
func (s *ScopeInfo) Register(v *VariableInfo) {
	key := foldName(v.Name)
	if _, exists := s.vars[key]; !exists {
		s.order = append(s.order, key)
	}
	s.vars[key] = v
}

// LookupLocal finds a variable declared directly in this scope.
func (s *ScopeInfo) LookupLocal(name string) (*VariableInfo, bool) {
	v, ok := s.vars[foldName(name)]
	return v, ok
}

// Lookup finds the nearest enclosing declaration of name, walking parent
// scopes until found or the chain is exhausted.
func (s *ScopeInfo) Lookup(name string) (*VariableInfo, bool) {
	key := foldName(name)
	for cur := s; cur != nil; cur = cur.parent {
		if v, ok := cur.vars[key]; ok {
			return v, true
		}
	}
	return nil, false
}

// Variables returns this scope's variables in registration order.
func (s *ScopeInfo) Variables() []*VariableInfo {
	out := make([]*VariableInfo, 0, len(s.order))
	for _, key := range s.order {
		out = append(out, s.vars[key])
	}
	return out
}

// foldName normalizes a variable name for case-insensitive matching. The
// leading sigil is kept: &x and %x are distinct namespaces.
func foldName(name string) string {
	return strings.ToLower(name)
}

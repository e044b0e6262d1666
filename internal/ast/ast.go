// Package ast defines the PeopleCode abstract syntax tree. Nodes are
// immutable in syntactic shape once the parser has built them: children and
// parent links are established exactly once, at construction, so the
// structure is a true tree and upward walks need no cycle detection.
// Inferred expression types live in a side table owned by the types
// package, never in node fields.
package ast

import (
	"strings"

	"github.com/pcodetools/pcode/internal/position"
)

// Node is the base interface for all AST nodes.
type Node interface {
	// Span returns the source span for this node. The span exactly bounds
	// the node's source text; callers splice replacement text using these
	// offsets.
	Span() position.Span
	// Parent returns the enclosing node, or nil for the program root.
	Parent() Node
	// Children returns the node's syntactic children for generic traversal.
	Children() []Node
	// String returns a short description of the node.
	String() string

	setParent(Node)
	addChild(Node)
}

// Statement is implemented by all statement nodes.
type Statement interface {
	Node
	statementNode()
}

// Expression is implemented by all expression nodes.
type Expression interface {
	Node
	expressionNode()
}

// TypeNode is implemented by all type annotation nodes.
type TypeNode interface {
	Node
	typeNode()
}

// base carries the span, parent link, and child list shared by all nodes.
type base struct {
	span     position.Span
	parent   Node
	children []Node
}

func (b *base) Span() position.Span { return b.span }
func (b *base) Parent() Node        { return b.parent }
func (b *base) Children() []Node    { return b.children }

// setParent links a node to its parent. The link is set once; a node's
// parent is never reassigned.
func (b *base) setParent(p Node) {
	if b.parent == nil {
		b.parent = p
	}
}

func (b *base) addChild(c Node) {
	b.children = append(b.children, c)
}

// adopt attaches each non-nil child to parent, wiring both directions.
// The parser calls this exactly once per node, at construction.
func adopt(parent Node, children ...Node) {
	for _, c := range children {
		if c == nil || isNilNode(c) {
			continue
		}
		parent.addChild(c)
		c.setParent(parent)
	}
}

// isNilNode guards against typed-nil interface values from optional slots.
func isNilNode(n Node) bool {
	switch v := n.(type) {
	case *Block:
		return v == nil
	case *Identifier:
		return v == nil
	case *VariableName:
		return v == nil
	case *AppClassType:
		return v == nil
	}
	return false
}

// ====== Program ======

// Program is the root of the AST: one parsed PeopleCode program.
type Program struct {
	base
	Imports    []*ImportDecl
	Statements []Statement
}

func NewProgram(span position.Span, imports []*ImportDecl, stmts []Statement) *Program {
	p := &Program{Imports: imports, Statements: stmts}
	p.span = span
	for _, imp := range imports {
		adopt(p, imp)
	}
	for _, s := range stmts {
		adopt(p, s)
	}
	return p
}

func (p *Program) String() string { return "Program" }

// ====== Declarations ======

// ImportDecl represents `import PKG:SUB:Class;` or `import PKG:*;`.
type ImportDecl struct {
	base
	Path     []string
	Wildcard bool
}

func NewImportDecl(span position.Span, path []string, wildcard bool) *ImportDecl {
	d := &ImportDecl{Path: path, Wildcard: wildcard}
	d.span = span
	return d
}

func (d *ImportDecl) String() string {
	s := strings.Join(d.Path, ":")
	if d.Wildcard {
		s += ":*"
	}
	return "import " + s
}
func (d *ImportDecl) statementNode() {}

// AccessLevel is the visibility of a class member.
type AccessLevel int

const (
	AccessPublic AccessLevel = iota
	AccessProtected
	AccessPrivate
)

func (a AccessLevel) String() string {
	switch a {
	case AccessProtected:
		return "protected"
	case AccessPrivate:
		return "private"
	default:
		return "public"
	}
}

// ClassDecl represents an application class declaration header
// (`class Name ... end-class`).
type ClassDecl struct {
	base
	Name       string
	NameSpan   position.Span
	Extends    TypeNode
	Implements TypeNode
	Methods    []*MethodHeader
	Properties []*PropertyDecl
	Instances  []*InstanceDecl
	Constants  []*ConstantDecl
}

func NewClassDecl(span position.Span, name string, nameSpan position.Span, extends, implements TypeNode,
	methods []*MethodHeader, props []*PropertyDecl, instances []*InstanceDecl, constants []*ConstantDecl) *ClassDecl {
	d := &ClassDecl{
		Name: name, NameSpan: nameSpan, Extends: extends, Implements: implements,
		Methods: methods, Properties: props, Instances: instances, Constants: constants,
	}
	d.span = span
	adopt(d, extends, implements)
	for _, m := range methods {
		adopt(d, m)
	}
	for _, p := range props {
		adopt(d, p)
	}
	for _, i := range instances {
		adopt(d, i)
	}
	for _, c := range constants {
		adopt(d, c)
	}
	return d
}

func (d *ClassDecl) String() string { return "class " + d.Name }
func (d *ClassDecl) statementNode() {}

// MethodByName returns the declared method header matching name
// case-insensitively, or nil when the class declares no such method.
func (d *ClassDecl) MethodByName(name string) *MethodHeader {
	for _, m := range d.Methods {
		if strings.EqualFold(m.Name, name) {
			return m
		}
	}
	return nil
}

// InterfaceDecl represents `interface Name ... end-interface`.
type InterfaceDecl struct {
	base
	Name       string
	NameSpan   position.Span
	Extends    TypeNode
	Methods    []*MethodHeader
	Properties []*PropertyDecl
}

func NewInterfaceDecl(span position.Span, name string, nameSpan position.Span, extends TypeNode,
	methods []*MethodHeader, props []*PropertyDecl) *InterfaceDecl {
	d := &InterfaceDecl{Name: name, NameSpan: nameSpan, Extends: extends, Methods: methods, Properties: props}
	d.span = span
	adopt(d, extends)
	for _, m := range methods {
		adopt(d, m)
	}
	for _, p := range props {
		adopt(d, p)
	}
	return d
}

func (d *InterfaceDecl) String() string { return "interface " + d.Name }
func (d *InterfaceDecl) statementNode() {}

// MethodHeader is a method signature inside a class or interface
// declaration block. The body, if any, lives in a MethodImpl.
type MethodHeader struct {
	base
	Name       string
	NameSpan   position.Span
	Parameters []*Parameter
	Returns    TypeNode
	Access     AccessLevel
	Abstract   bool
}

func NewMethodHeader(span position.Span, name string, nameSpan position.Span,
	params []*Parameter, returns TypeNode, access AccessLevel, abstract bool) *MethodHeader {
	h := &MethodHeader{Name: name, NameSpan: nameSpan, Parameters: params, Returns: returns, Access: access, Abstract: abstract}
	h.span = span
	for _, p := range params {
		adopt(h, p)
	}
	adopt(h, returns)
	return h
}

func (h *MethodHeader) String() string { return "method " + h.Name }

// ParameterMode is the passing convention of a method parameter.
type ParameterMode int

const (
	ModeValue ParameterMode = iota
	ModeRef
	ModeOut
)

// Parameter is one formal parameter of a method or function.
type Parameter struct {
	base
	Name     *VariableName
	TypeSpec TypeNode
	Mode     ParameterMode
}

func NewParameter(span position.Span, name *VariableName, typeSpec TypeNode, mode ParameterMode) *Parameter {
	p := &Parameter{Name: name, TypeSpec: typeSpec, Mode: mode}
	p.span = span
	adopt(p, name, typeSpec)
	return p
}

func (p *Parameter) String() string { return p.Name.Name }

// PropertyDecl is a property declaration inside a class or interface.
type PropertyDecl struct {
	base
	TypeSpec TypeNode
	Name     string
	NameSpan position.Span
	HasGet   bool
	HasSet   bool
	ReadOnly bool
	Abstract bool
	Access   AccessLevel
}

func NewPropertyDecl(span position.Span, typeSpec TypeNode, name string, nameSpan position.Span,
	hasGet, hasSet, readOnly, abstract bool, access AccessLevel) *PropertyDecl {
	d := &PropertyDecl{
		TypeSpec: typeSpec, Name: name, NameSpan: nameSpan,
		HasGet: hasGet, HasSet: hasSet, ReadOnly: readOnly, Abstract: abstract, Access: access,
	}
	d.span = span
	adopt(d, typeSpec)
	return d
}

func (d *PropertyDecl) String() string { return "property " + d.Name }

// InstanceDecl declares instance variables inside a class.
type InstanceDecl struct {
	base
	TypeSpec TypeNode
	Names    []*VariableName
	Access   AccessLevel
}

func NewInstanceDecl(span position.Span, typeSpec TypeNode, names []*VariableName, access AccessLevel) *InstanceDecl {
	d := &InstanceDecl{TypeSpec: typeSpec, Names: names, Access: access}
	d.span = span
	adopt(d, typeSpec)
	for _, n := range names {
		adopt(d, n)
	}
	return d
}

func (d *InstanceDecl) String() string { return "instance" }

// ConstantDecl declares a class constant.
type ConstantDecl struct {
	base
	Name  *VariableName
	Value Expression
}

func NewConstantDecl(span position.Span, name *VariableName, value Expression) *ConstantDecl {
	d := &ConstantDecl{Name: name, Value: value}
	d.span = span
	adopt(d, name, value)
	return d
}

func (d *ConstantDecl) String() string { return "constant " + d.Name.Name }

// MethodImplKind distinguishes method bodies from property accessor bodies.
type MethodImplKind int

const (
	ImplMethod MethodImplKind = iota
	ImplGetter
	ImplSetter
)

// MethodImpl is a method (or property get/set) implementation following
// the class declaration: `method Name ... end-method`.
type MethodImpl struct {
	base
	Kind       MethodImplKind
	Name       string
	NameSpan   position.Span
	Parameters []*Parameter
	Returns    TypeNode
	Body       *Block
}

func NewMethodImpl(span position.Span, kind MethodImplKind, name string, nameSpan position.Span,
	params []*Parameter, returns TypeNode, body *Block) *MethodImpl {
	m := &MethodImpl{Kind: kind, Name: name, NameSpan: nameSpan, Parameters: params, Returns: returns, Body: body}
	m.span = span
	for _, p := range params {
		adopt(m, p)
	}
	adopt(m, returns, body)
	return m
}

func (m *MethodImpl) String() string { return "method " + m.Name }
func (m *MethodImpl) statementNode() {}

// FunctionDecl is a standalone function: `Function Name(...) ... End-Function`.
type FunctionDecl struct {
	base
	Name       string
	NameSpan   position.Span
	Parameters []*Parameter
	Returns    TypeNode
	Body       *Block
}

func NewFunctionDecl(span position.Span, name string, nameSpan position.Span,
	params []*Parameter, returns TypeNode, body *Block) *FunctionDecl {
	f := &FunctionDecl{Name: name, NameSpan: nameSpan, Parameters: params, Returns: returns, Body: body}
	f.span = span
	for _, p := range params {
		adopt(f, p)
	}
	adopt(f, returns, body)
	return f
}

func (f *FunctionDecl) String() string { return "function " + f.Name }
func (f *FunctionDecl) statementNode() {}

// VariableName is one declared variable name (`&total`). It is a node of
// its own so each declared name carries its exact declaration span.
type VariableName struct {
	base
	Name string // includes the '&' sigil
}

func NewVariableName(span position.Span, name string) *VariableName {
	v := &VariableName{Name: name}
	v.span = span
	return v
}

func (v *VariableName) String() string { return v.Name }

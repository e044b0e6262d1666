package ast

import (
	"fmt"
	"strings"

	"github.com/pcodetools/pcode/internal/position"
)

// LiteralKind classifies literal expressions.
type LiteralKind int

const (
	LiteralInteger LiteralKind = iota
	LiteralDecimal
	LiteralString
	LiteralBool
	LiteralNull
)

// Literal represents a literal value. Text is the raw lexeme; Value is the
// decoded form (string without quote doubling, canonical True/False).
type Literal struct {
	base
	Kind  LiteralKind
	Text  string
	Value string
}

func NewLiteral(span position.Span, kind LiteralKind, text, value string) *Literal {
	l := &Literal{Kind: kind, Text: text, Value: value}
	l.span = span
	return l
}

func (l *Literal) String() string  { return l.Text }
func (l *Literal) expressionNode() {}

// IdentKind classifies identifier references.
type IdentKind int

const (
	IdentUserVariable   IdentKind = iota // &-prefixed
	IdentSystemVariable                  // %-prefixed
	IdentPlain                           // bare: function, record, or class name
)

// Identifier is a reference to a variable, system variable, or bare name.
type Identifier struct {
	base
	Name string // includes sigil for user/system variables
	Kind IdentKind
}

func NewIdentifier(span position.Span, name string, kind IdentKind) *Identifier {
	i := &Identifier{Name: name, Kind: kind}
	i.span = span
	return i
}

func (i *Identifier) String() string  { return i.Name }
func (i *Identifier) expressionNode() {}

// MemberAccess represents `target.Member`.
type MemberAccess struct {
	base
	Target     Expression
	Member     string
	MemberSpan position.Span
}

func NewMemberAccess(span position.Span, target Expression, member string, memberSpan position.Span) *MemberAccess {
	m := &MemberAccess{Target: target, Member: member, MemberSpan: memberSpan}
	m.span = span
	adopt(m, target)
	return m
}

func (m *MemberAccess) String() string  { return fmt.Sprintf("%s.%s", m.Target, m.Member) }
func (m *MemberAccess) expressionNode() {}

// FunctionCall represents `target(args...)`. Target is an Identifier for
// builtin or user functions, or a MemberAccess for method calls.
type FunctionCall struct {
	base
	Target Expression
	Args   []Expression
}

func NewFunctionCall(span position.Span, target Expression, args []Expression) *FunctionCall {
	c := &FunctionCall{Target: target, Args: args}
	c.span = span
	adopt(c, target)
	for _, a := range args {
		adopt(c, a)
	}
	return c
}

func (c *FunctionCall) String() string  { return fmt.Sprintf("%s(...)", c.Target) }
func (c *FunctionCall) expressionNode() {}

// IndexExpr represents array subscripting `target[i]` or `target[i, j]`.
type IndexExpr struct {
	base
	Target  Expression
	Indexes []Expression
}

func NewIndexExpr(span position.Span, target Expression, indexes []Expression) *IndexExpr {
	e := &IndexExpr{Target: target, Indexes: indexes}
	e.span = span
	adopt(e, target)
	for _, ix := range indexes {
		adopt(e, ix)
	}
	return e
}

func (e *IndexExpr) String() string  { return fmt.Sprintf("%s[...]", e.Target) }
func (e *IndexExpr) expressionNode() {}

// BinaryOp enumerates binary operators.
type BinaryOp int

const (
	OpOr BinaryOp = iota
	OpAnd
	OpEqual
	OpNotEqual
	OpLess
	OpLessEqual
	OpGreater
	OpGreaterEqual
	OpConcat // |
	OpAdd
	OpSubtract
	OpMultiply
	OpDivide
	OpPower
)

var binaryOpNames = map[BinaryOp]string{
	OpOr:           "Or",
	OpAnd:          "And",
	OpEqual:        "=",
	OpNotEqual:     "<>",
	OpLess:         "<",
	OpLessEqual:    "<=",
	OpGreater:      ">",
	OpGreaterEqual: ">=",
	OpConcat:       "|",
	OpAdd:          "+",
	OpSubtract:     "-",
	OpMultiply:     "*",
	OpDivide:       "/",
	OpPower:        "**",
}

func (op BinaryOp) String() string { return binaryOpNames[op] }

// IsComparison reports whether the operator yields a boolean.
func (op BinaryOp) IsComparison() bool {
	switch op {
	case OpEqual, OpNotEqual, OpLess, OpLessEqual, OpGreater, OpGreaterEqual:
		return true
	}
	return false
}

// IsArithmetic reports whether the operator requires numeric operands.
func (op BinaryOp) IsArithmetic() bool {
	switch op {
	case OpAdd, OpSubtract, OpMultiply, OpDivide, OpPower:
		return true
	}
	return false
}

// BinaryExpr represents a binary operation.
type BinaryExpr struct {
	base
	Left     Expression
	Operator BinaryOp
	Right    Expression
}

func NewBinaryExpr(span position.Span, left Expression, op BinaryOp, right Expression) *BinaryExpr {
	e := &BinaryExpr{Left: left, Operator: op, Right: right}
	e.span = span
	adopt(e, left, right)
	return e
}

func (e *BinaryExpr) String() string  { return fmt.Sprintf("(%s %s %s)", e.Left, e.Operator, e.Right) }
func (e *BinaryExpr) expressionNode() {}

// UnaryOp enumerates unary operators.
type UnaryOp int

const (
	OpNegate UnaryOp = iota
	OpNot
)

func (op UnaryOp) String() string {
	if op == OpNot {
		return "Not"
	}
	return "-"
}

// UnaryExpr represents `-x` or `Not x`.
type UnaryExpr struct {
	base
	Operator UnaryOp
	Operand  Expression
}

func NewUnaryExpr(span position.Span, op UnaryOp, operand Expression) *UnaryExpr {
	e := &UnaryExpr{Operator: op, Operand: operand}
	e.span = span
	adopt(e, operand)
	return e
}

func (e *UnaryExpr) String() string  { return fmt.Sprintf("(%s %s)", e.Operator, e.Operand) }
func (e *UnaryExpr) expressionNode() {}

// ParenExpr preserves explicit grouping so spans survive for text edits.
type ParenExpr struct {
	base
	Inner Expression
}

func NewParenExpr(span position.Span, inner Expression) *ParenExpr {
	e := &ParenExpr{Inner: inner}
	e.span = span
	adopt(e, inner)
	return e
}

func (e *ParenExpr) String() string  { return fmt.Sprintf("(%s)", e.Inner) }
func (e *ParenExpr) expressionNode() {}

// ObjectCreate represents `create PKG:SUB:Class(args...)`.
type ObjectCreate struct {
	base
	Class *AppClassType
	Args  []Expression
}

func NewObjectCreate(span position.Span, class *AppClassType, args []Expression) *ObjectCreate {
	e := &ObjectCreate{Class: class, Args: args}
	e.span = span
	adopt(e, class)
	for _, a := range args {
		adopt(e, a)
	}
	return e
}

func (e *ObjectCreate) String() string  { return "create " + e.Class.String() }
func (e *ObjectCreate) expressionNode() {}

// AtExpr represents a dynamic reference `@expr`.
type AtExpr struct {
	base
	Operand Expression
}

func NewAtExpr(span position.Span, operand Expression) *AtExpr {
	e := &AtExpr{Operand: operand}
	e.span = span
	adopt(e, operand)
	return e
}

func (e *AtExpr) String() string  { return "@" }
func (e *AtExpr) expressionNode() {}

// ====== Type nodes ======

// BuiltInType is a builtin type annotation: number, string, Record, ...
type BuiltInType struct {
	base
	Name string
}

func NewBuiltInType(span position.Span, name string) *BuiltInType {
	t := &BuiltInType{Name: name}
	t.span = span
	return t
}

func (t *BuiltInType) String() string { return t.Name }
func (t *BuiltInType) typeNode()      {}

// ArrayType is an array type annotation: `array of number`,
// `array of array of string`. Elem is nil for a bare `array`.
type ArrayType struct {
	base
	Dimensions int
	Elem       TypeNode
}

func NewArrayType(span position.Span, dims int, elem TypeNode) *ArrayType {
	t := &ArrayType{Dimensions: dims, Elem: elem}
	t.span = span
	adopt(t, elem)
	return t
}

func (t *ArrayType) String() string {
	s := strings.Repeat("array of ", t.Dimensions)
	if t.Elem != nil {
		return s + t.Elem.String()
	}
	return strings.TrimSuffix(s, " of ")
}
func (t *ArrayType) typeNode() {}

// AppClassType is a qualified application class reference: PKG:SUB:Class.
type AppClassType struct {
	base
	Parts []string
}

func NewAppClassType(span position.Span, parts []string) *AppClassType {
	t := &AppClassType{Parts: parts}
	t.span = span
	return t
}

func (t *AppClassType) String() string { return strings.Join(t.Parts, ":") }
func (t *AppClassType) typeNode()      {}

package ast

import "github.com/pcodetools/pcode/internal/position"

// VarScope is the storage class of a variable declaration statement.
type VarScope int

const (
	ScopeLocal VarScope = iota
	ScopeGlobal
	ScopeComponent
)

func (s VarScope) String() string {
	switch s {
	case ScopeGlobal:
		return "Global"
	case ScopeComponent:
		return "Component"
	default:
		return "Local"
	}
}

// Block is a sequence of statements forming one lexical region (method
// body, loop body, branch arm).
type Block struct {
	base
	Statements []Statement
}

func NewBlock(span position.Span, stmts []Statement) *Block {
	b := &Block{Statements: stmts}
	b.span = span
	for _, s := range stmts {
		adopt(b, s)
	}
	return b
}

func (b *Block) String() string { return "Block" }
func (b *Block) statementNode() {}

// LocalVarDecl declares one or more variables without initializer:
// `Local number &a, &b;`.
type LocalVarDecl struct {
	base
	Scope    VarScope
	TypeSpec TypeNode
	Names    []*VariableName
}

func NewLocalVarDecl(span position.Span, scope VarScope, typeSpec TypeNode, names []*VariableName) *LocalVarDecl {
	d := &LocalVarDecl{Scope: scope, TypeSpec: typeSpec, Names: names}
	d.span = span
	adopt(d, typeSpec)
	for _, n := range names {
		adopt(d, n)
	}
	return d
}

func (d *LocalVarDecl) String() string { return d.Scope.String() + " declaration" }
func (d *LocalVarDecl) statementNode() {}

// LocalVarDeclAssign declares a single variable with an initializer:
// `Local number &x = 5;`.
type LocalVarDeclAssign struct {
	base
	Scope    VarScope
	TypeSpec TypeNode
	Name     *VariableName
	Value    Expression
}

func NewLocalVarDeclAssign(span position.Span, scope VarScope, typeSpec TypeNode, name *VariableName, value Expression) *LocalVarDeclAssign {
	d := &LocalVarDeclAssign{Scope: scope, TypeSpec: typeSpec, Name: name, Value: value}
	d.span = span
	adopt(d, typeSpec, name, value)
	return d
}

func (d *LocalVarDeclAssign) String() string { return d.Scope.String() + " declaration with assignment" }
func (d *LocalVarDeclAssign) statementNode() {}

// Assignment represents `target = value;`.
type Assignment struct {
	base
	Target Expression
	Value  Expression
}

func NewAssignment(span position.Span, target, value Expression) *Assignment {
	a := &Assignment{Target: target, Value: value}
	a.span = span
	adopt(a, target, value)
	return a
}

func (a *Assignment) String() string { return "Assignment" }
func (a *Assignment) statementNode() {}

// ExpressionStatement is an expression evaluated for effect, usually a
// function or method call.
type ExpressionStatement struct {
	base
	Expr Expression
}

func NewExpressionStatement(span position.Span, expr Expression) *ExpressionStatement {
	s := &ExpressionStatement{Expr: expr}
	s.span = span
	adopt(s, expr)
	return s
}

func (s *ExpressionStatement) String() string { return "ExprStmt" }
func (s *ExpressionStatement) statementNode() {}

// IfStmt represents `If ... Then ... [Else ...] End-If;`.
type IfStmt struct {
	base
	Condition Expression
	Then      *Block
	Else      *Block // nil when no Else branch
}

func NewIfStmt(span position.Span, cond Expression, then, els *Block) *IfStmt {
	s := &IfStmt{Condition: cond, Then: then, Else: els}
	s.span = span
	adopt(s, cond, then, els)
	return s
}

func (s *IfStmt) String() string { return "If" }
func (s *IfStmt) statementNode() {}

// ForStmt represents `For &i = from To to [Step step] ... End-For;`.
type ForStmt struct {
	base
	Var  *Identifier
	From Expression
	To   Expression
	Step Expression // nil when no Step clause
	Body *Block
}

func NewForStmt(span position.Span, v *Identifier, from, to, step Expression, body *Block) *ForStmt {
	s := &ForStmt{Var: v, From: from, To: to, Step: step, Body: body}
	s.span = span
	adopt(s, v, from, to, step, body)
	return s
}

func (s *ForStmt) String() string { return "For" }
func (s *ForStmt) statementNode() {}

// WhileStmt represents `While ... ... End-While;`.
type WhileStmt struct {
	base
	Condition Expression
	Body      *Block
}

func NewWhileStmt(span position.Span, cond Expression, body *Block) *WhileStmt {
	s := &WhileStmt{Condition: cond, Body: body}
	s.span = span
	adopt(s, cond, body)
	return s
}

func (s *WhileStmt) String() string { return "While" }
func (s *WhileStmt) statementNode() {}

// RepeatStmt represents `Repeat ... Until cond;`.
type RepeatStmt struct {
	base
	Body      *Block
	Condition Expression
}

func NewRepeatStmt(span position.Span, body *Block, cond Expression) *RepeatStmt {
	s := &RepeatStmt{Body: body, Condition: cond}
	s.span = span
	adopt(s, body, cond)
	return s
}

func (s *RepeatStmt) String() string { return "Repeat" }
func (s *RepeatStmt) statementNode() {}

// WhenClause is one `When [op] expr` arm of an Evaluate statement.
type WhenClause struct {
	base
	Operator string // comparison operator, "=" when omitted
	Value    Expression
	Body     *Block
}

func NewWhenClause(span position.Span, op string, value Expression, body *Block) *WhenClause {
	c := &WhenClause{Operator: op, Value: value, Body: body}
	c.span = span
	adopt(c, value, body)
	return c
}

func (c *WhenClause) String() string { return "When" }

// EvaluateStmt represents `Evaluate ... When ... When-Other ... End-Evaluate;`.
type EvaluateStmt struct {
	base
	Subject Expression
	Whens   []*WhenClause
	Other   *Block // nil when no When-Other arm
}

func NewEvaluateStmt(span position.Span, subject Expression, whens []*WhenClause, other *Block) *EvaluateStmt {
	s := &EvaluateStmt{Subject: subject, Whens: whens, Other: other}
	s.span = span
	adopt(s, subject)
	for _, w := range whens {
		adopt(s, w)
	}
	adopt(s, other)
	return s
}

func (s *EvaluateStmt) String() string { return "Evaluate" }
func (s *EvaluateStmt) statementNode() {}

// CatchClause is one `Catch ExceptionType &e` arm of a Try statement.
type CatchClause struct {
	base
	ExceptionType TypeNode
	Var           *VariableName
	Body          *Block
}

func NewCatchClause(span position.Span, excType TypeNode, v *VariableName, body *Block) *CatchClause {
	c := &CatchClause{ExceptionType: excType, Var: v, Body: body}
	c.span = span
	adopt(c, excType, v, body)
	return c
}

func (c *CatchClause) String() string { return "Catch" }

// TryStmt represents `Try ... Catch ... End-Try;`.
type TryStmt struct {
	base
	Body    *Block
	Catches []*CatchClause
}

func NewTryStmt(span position.Span, body *Block, catches []*CatchClause) *TryStmt {
	s := &TryStmt{Body: body, Catches: catches}
	s.span = span
	adopt(s, body)
	for _, c := range catches {
		adopt(s, c)
	}
	return s
}

func (s *TryStmt) String() string { return "Try" }
func (s *TryStmt) statementNode() {}

// ReturnStmt represents `Return [expr];`.
type ReturnStmt struct {
	base
	Value Expression // nil for a bare Return
}

func NewReturnStmt(span position.Span, value Expression) *ReturnStmt {
	s := &ReturnStmt{Value: value}
	s.span = span
	adopt(s, value)
	return s
}

func (s *ReturnStmt) String() string { return "Return" }
func (s *ReturnStmt) statementNode() {}

// BranchKind distinguishes the simple flow-control statements.
type BranchKind int

const (
	BranchBreak BranchKind = iota
	BranchContinue
	BranchExit
)

// BranchStmt represents `Break;`, `Continue;`, or `Exit;`.
type BranchStmt struct {
	base
	Kind BranchKind
}

func NewBranchStmt(span position.Span, kind BranchKind) *BranchStmt {
	s := &BranchStmt{Kind: kind}
	s.span = span
	return s
}

func (s *BranchStmt) String() string {
	switch s.Kind {
	case BranchContinue:
		return "Continue"
	case BranchExit:
		return "Exit"
	default:
		return "Break"
	}
}
func (s *BranchStmt) statementNode() {}

// ThrowStmt represents `throw expr;`.
type ThrowStmt struct {
	base
	Value Expression
}

func NewThrowStmt(span position.Span, value Expression) *ThrowStmt {
	s := &ThrowStmt{Value: value}
	s.span = span
	adopt(s, value)
	return s
}

func (s *ThrowStmt) String() string { return "Throw" }
func (s *ThrowStmt) statementNode() {}

// MessageKind distinguishes Error from Warning statements.
type MessageKind int

const (
	MessageError MessageKind = iota
	MessageWarning
)

// MessageStmt represents `Error expr;` or `Warning expr;`.
type MessageStmt struct {
	base
	Kind  MessageKind
	Value Expression
}

func NewMessageStmt(span position.Span, kind MessageKind, value Expression) *MessageStmt {
	s := &MessageStmt{Kind: kind, Value: value}
	s.span = span
	adopt(s, value)
	return s
}

func (s *MessageStmt) String() string {
	if s.Kind == MessageWarning {
		return "Warning"
	}
	return "Error"
}
func (s *MessageStmt) statementNode() {}

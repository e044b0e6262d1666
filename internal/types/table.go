package types

import "github.com/pcodetools/pcode/internal/ast"

// TypeTable is the side table holding inferred expression types. Keeping
// types out of the nodes preserves node immutability and makes "reset all
// types and re-infer" a single map clear.
type TypeTable struct {
	types map[ast.Expression]TypeInfo
}

// NewTypeTable creates an empty type table.
func NewTypeTable() *TypeTable {
	return &TypeTable{types: make(map[ast.Expression]TypeInfo)}
}

// Set records the inferred type for an expression.
func (t *TypeTable) Set(expr ast.Expression, ti TypeInfo) {
	if expr == nil {
		return
	}
	t.types[expr] = ti
}

// Get returns the inferred type for an expression. Expressions never
// visited report Unknown.
func (t *TypeTable) Get(expr ast.Expression) TypeInfo {
	if ti, ok := t.types[expr]; ok {
		return ti
	}
	return Unknown()
}

// Has reports whether the expression has been assigned a type.
func (t *TypeTable) Has(expr ast.Expression) bool {
	_, ok := t.types[expr]
	return ok
}

// Len returns the number of typed expressions.
func (t *TypeTable) Len() int { return len(t.types) }

// Reset clears all inferred types without touching tree structure.
func (t *TypeTable) Reset() {
	t.types = make(map[ast.Expression]TypeInfo)
}

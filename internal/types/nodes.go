package types

import (
	"strings"

	"github.com/pcodetools/pcode/internal/ast"
)

// FromTypeNode resolves a parsed type annotation to a TypeInfo. A missing
// or unparseable annotation resolves to Unknown.
func FromTypeNode(node ast.TypeNode) TypeInfo {
	switch n := node.(type) {
	case *ast.BuiltInType:
		return FromDeclaration(n.Name)
	case *ast.ArrayType:
		elem := Any()
		if n.Elem != nil {
			elem = FromTypeNode(n.Elem)
		}
		dims := n.Dimensions
		if dims < 1 {
			dims = 1
		}
		return Array(dims, elem)
	case *ast.AppClassType:
		return AppClass(strings.Join(n.Parts, ":"))
	}
	return Unknown()
}

package inference

import (
	"strconv"
	"strings"

	"github.com/pcodetools/pcode/internal/ast"
	"github.com/pcodetools/pcode/internal/types"
)

// expr infers the type of one expression post-order, records it in the
// side table, and returns it. Nil expressions (left behind by parser
// recovery) infer to Unknown.
func (v *Visitor) expr(e ast.Expression) types.TypeInfo {
	if e == nil {
		return types.Unknown()
	}
	t := v.inferExpr(e)
	v.table.Set(e, t)
	return t
}

func (v *Visitor) inferExpr(e ast.Expression) types.TypeInfo {
	switch n := e.(type) {
	case *ast.Literal:
		return literalType(n)
	case *ast.Identifier:
		return v.identifier(n)
	case *ast.MemberAccess:
		target := v.expr(n.Target)
		return v.member(target, n)
	case *ast.FunctionCall:
		return v.call(n)
	case *ast.IndexExpr:
		return v.index(n)
	case *ast.BinaryExpr:
		return v.binary(n)
	case *ast.UnaryExpr:
		return v.unary(n)
	case *ast.ParenExpr:
		return v.expr(n.Inner)
	case *ast.ObjectCreate:
		return v.create(n)
	case *ast.AtExpr:
		// Dynamic references resolve at runtime only.
		v.expr(n.Operand)
		return types.Any()
	}
	return types.Unknown()
}

func literalType(n *ast.Literal) types.TypeInfo {
	switch n.Kind {
	case ast.LiteralInteger, ast.LiteralDecimal:
		return types.Number()
	case ast.LiteralString:
		return types.Str()
	case ast.LiteralBool:
		return types.Boolean()
	}
	return types.Any()
}

// identifier resolves a variable or bare name reference.
func (v *Visitor) identifier(n *ast.Identifier) types.TypeInfo {
	sc := v.registry.ScopeFor(n)

	switch n.Kind {
	case ast.IdentUserVariable:
		if vi, ok := sc.Lookup(n.Name); ok {
			v.registry.MarkAsUsed(n.Name, sc)
			return vi.Type
		}
		// Candidate phantom parameter; phase two decides.
		v.pending = append(v.pending, pendingRef{name: n.Name, span: n.Span(), scope: sc})
		return types.Unknown()

	case ast.IdentSystemVariable:
		if strings.EqualFold(n.Name, "%This") {
			return v.selfType
		}
		if t, ok := v.catalog.LookupSystemVar(n.Name); ok {
			return t
		}
		return types.Any()
	}

	// Bare names: a constant or property in scope, a known record
	// definition, or an object reference this core does not model.
	if vi, ok := sc.Lookup(n.Name); ok {
		v.registry.MarkAsUsed(n.Name, sc)
		return vi.Type
	}
	if _, ok := v.provider.RecordFields(n.Name); ok {
		return types.BuiltinObject("Record")
	}
	return types.Any()
}

// member resolves target.Member against the extension catalog, class
// properties, and record field metadata. Any and Unknown targets
// propagate rather than guess.
func (v *Visitor) member(target types.TypeInfo, n *ast.MemberAccess) types.TypeInfo {
	if target.IsAny() {
		return types.Any()
	}
	if target.IsUnknown() {
		return types.Unknown()
	}

	if target.Kind == types.KindAppClass {
		// Members of the class under inference resolve through its scope.
		if v.classNode != nil && target.Equal(v.selfType) {
			classScope := v.registry.ScopeFor(v.classNode)
			if vi, ok := classScope.LookupLocal(n.Member); ok {
				v.registry.MarkAsUsed(n.Member, classScope)
				return vi.Type
			}
		}
		return types.Any()
	}

	if mi, ok := v.catalog.LookupMember(target, n.Member); ok {
		return mi.Result
	}

	// RECORD.FIELD through metadata.
	if target.Kind == types.KindBuiltinObject && target.Name == "Record" {
		if ident, ok := n.Target.(*ast.Identifier); ok && ident.Kind == ast.IdentPlain {
			if fields, ok := v.provider.RecordFields(ident.Name); ok {
				for _, f := range fields {
					if strings.EqualFold(f.Name, n.Member) {
						return types.BuiltinObject("Field")
					}
				}
				v.diagf(SeverityWarning, n.MemberSpan, "record %s has no field %s", ident.Name, n.Member)
				return types.Unknown()
			}
		}
	}

	// Builtin objects carry many members beyond the catalog; stay
	// permissive there, but a miss on a primitive or array is a real
	// finding since their extension sets are closed.
	if target.Kind == types.KindBuiltinObject {
		return types.Any()
	}
	v.diagf(SeverityWarning, n.MemberSpan, "type %s has no member %s", target, n.Member)
	return types.Unknown()
}

// call resolves a function or method call.
func (v *Visitor) call(n *ast.FunctionCall) types.TypeInfo {
	for _, arg := range n.Args {
		v.expr(arg)
	}

	switch target := n.Target.(type) {
	case *ast.Identifier:
		if target.Kind == ast.IdentPlain {
			// Function names are not values; the target slot records Any.
			v.table.Set(target, types.Any())

			if result, ok := v.functions[strings.ToLower(target.Name)]; ok {
				return result
			}
			if fi, ok := v.catalog.LookupFunction(target.Name); ok {
				v.checkArity(n, fi)
				return fi.Result
			}
			// External or event-local function this parse cannot see.
			return types.Any()
		}
		// Calling through a variable. Untypeable here.
		v.expr(target)
		return types.Any()

	case *ast.MemberAccess:
		recv := v.expr(target.Target)
		result := v.methodResult(recv, target)
		v.table.Set(target, result)
		return result
	}

	v.expr(n.Target)
	return types.Any()
}

// methodResult resolves the result type of receiver.Member(...) without
// re-running plain member access inference on the access node.
func (v *Visitor) methodResult(recv types.TypeInfo, access *ast.MemberAccess) types.TypeInfo {
	if recv.IsAny() {
		return types.Any()
	}
	if recv.IsUnknown() {
		return types.Unknown()
	}
	if recv.Kind == types.KindAppClass {
		return types.Any()
	}
	if mi, ok := v.catalog.LookupMember(recv, access.Member); ok {
		return mi.Result
	}
	if recv.Kind == types.KindBuiltinObject {
		return types.Any()
	}
	v.diagf(SeverityWarning, access.MemberSpan, "type %s has no method %s", recv, access.Member)
	return types.Unknown()
}

func (v *Visitor) checkArity(n *ast.FunctionCall, fi types.FunctionInfo) {
	got := len(n.Args)
	if got < fi.MinArgs || (fi.MaxArgs >= 0 && got > fi.MaxArgs) {
		v.diagf(SeverityWarning, n.Span(), "%s called with %d arguments, expects %s",
			fi.Name, got, arityRange(fi))
	}
}

func arityRange(fi types.FunctionInfo) string {
	switch {
	case fi.MaxArgs < 0:
		return "at least " + strconv.Itoa(fi.MinArgs)
	case fi.MinArgs == fi.MaxArgs:
		return strconv.Itoa(fi.MinArgs)
	default:
		return strconv.Itoa(fi.MinArgs) + " to " + strconv.Itoa(fi.MaxArgs)
	}
}

// index reduces array dimensionality by one level per subscript.
func (v *Visitor) index(n *ast.IndexExpr) types.TypeInfo {
	target := v.expr(n.Target)
	for _, ix := range n.Indexes {
		v.numericOperand(ix, "array subscript")
	}

	if target.IsAny() {
		return types.Any()
	}
	if target.IsUnknown() {
		return types.Unknown()
	}
	if target.Kind != types.KindArray {
		v.diagf(SeverityWarning, n.Span(), "cannot index a value of type %s", target)
		return types.Unknown()
	}

	result := target
	for range n.Indexes {
		if result.Kind != types.KindArray {
			v.diagf(SeverityWarning, n.Span(), "too many subscripts for %s", target)
			return types.Unknown()
		}
		result = result.ElemType()
	}
	return result
}

// binary applies the operator typing rules. Mismatched operands yield
// Unknown plus a diagnostic instead of guessing a coercion.
func (v *Visitor) binary(n *ast.BinaryExpr) types.TypeInfo {
	left := v.expr(n.Left)
	right := v.expr(n.Right)

	switch {
	case n.Operator == ast.OpAnd || n.Operator == ast.OpOr:
		return types.Boolean()
	case n.Operator.IsComparison():
		return types.Boolean()
	case n.Operator == ast.OpConcat:
		return types.Str()
	}

	// Arithmetic. Uncertainty propagates; a definite non-number is a
	// diagnostic.
	if left.IsUnknown() || right.IsUnknown() {
		return types.Unknown()
	}
	if left.IsNumeric() && right.IsNumeric() {
		return types.Number()
	}
	if left.IsAny() || right.IsAny() {
		return types.Any()
	}
	v.diagf(SeverityWarning, n.Span(), "%s", types.FormatMismatch(n.Operator.String(), left, right))
	return types.Unknown()
}

func (v *Visitor) unary(n *ast.UnaryExpr) types.TypeInfo {
	operand := v.expr(n.Operand)

	if n.Operator == ast.OpNot {
		return types.Boolean()
	}

	if operand.IsUnknown() {
		return types.Unknown()
	}
	if operand.IsNumeric() || operand.IsAny() {
		return types.Number()
	}
	v.diagf(SeverityWarning, n.Span(), "cannot negate a value of type %s", operand)
	return types.Unknown()
}

// create types a create expression and optionally verifies the class
// exists in metadata.
func (v *Visitor) create(n *ast.ObjectCreate) types.TypeInfo {
	for _, arg := range n.Args {
		v.expr(arg)
	}

	path := strings.Join(n.Class.Parts, ":")
	if v.checkClasses && !v.provider.AppClassExists(path) {
		v.diagf(SeverityWarning, n.Class.Span(), "application class %s not found", path)
	}
	return types.AppClass(path)
}

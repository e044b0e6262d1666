package inference

import (
	"strings"
	"testing"

	"github.com/pcodetools/pcode/internal/ast"
	"github.com/pcodetools/pcode/internal/metadata"
	"github.com/pcodetools/pcode/internal/parser"
	"github.com/pcodetools/pcode/internal/scope"
	"github.com/pcodetools/pcode/internal/types"
)

type run struct {
	program  *ast.Program
	registry *scope.Registry
	table    *types.TypeTable
	diags    []Diagnostic
}

func infer(t *testing.T, source string, provider metadata.Provider, opts ...Option) *run {
	t.Helper()
	program, errs := parser.ParseSource(source, "test.pcode")
	if len(errs) > 0 {
		t.Fatalf("parse errors: %v", errs)
	}
	registry := scope.NewRegistry()
	registry.Build(program)

	table := types.NewTypeTable()
	v := New(registry, types.MustNewCatalog(), provider, table, opts...)
	diags := v.Run(program)

	return &run{program: program, registry: registry, table: table, diags: diags}
}

func (r *run) typeOf(t *testing.T, pick func(ast.Expression) bool) types.TypeInfo {
	t.Helper()
	var found ast.Expression
	ast.Inspect(r.program, func(n ast.Node) bool {
		if found != nil {
			return false
		}
		if e, ok := n.(ast.Expression); ok && pick(e) {
			found = e
		}
		return true
	})
	if found == nil {
		t.Fatal("no expression matched the picker")
	}
	return r.table.Get(found)
}

func isVar(name string) func(ast.Expression) bool {
	return func(e ast.Expression) bool {
		id, ok := e.(*ast.Identifier)
		return ok && strings.EqualFold(id.Name, name)
	}
}

func TestDeclaredVariableTypesAtEverySite(t *testing.T) {
	r := infer(t, `Local number &x = 5; &x = &x + 1;`, nil)
	if len(r.diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", r.diags)
	}

	count := 0
	ast.Inspect(r.program, func(n ast.Node) bool {
		if id, ok := n.(*ast.Identifier); ok && id.Name == "&x" {
			count++
			if got := r.table.Get(id); !got.Equal(types.Number()) {
				t.Errorf("&x inferred as %s, want number", got)
			}
		}
		return true
	})
	if count != 2 {
		t.Fatalf("&x sites = %d, want 2", count)
	}

	if len(r.registry.UnusedVariables()) != 0 {
		t.Error("&x is referenced, must not be reported unused")
	}
}

func TestMethodHeaderParameterTypesInBody(t *testing.T) {
	r := infer(t, `
class Logger
   method Log(&msg As string);
end-class;

method Log
   Local string &copy;
   &copy = &msg;
end-method;
`, nil)
	if len(r.diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", r.diags)
	}
	if got := r.typeOf(t, isVar("&msg")); !got.IsString() {
		t.Errorf("&msg inferred as %s, want string", got)
	}
	if refs := r.registry.UndefinedReferences(); len(refs) != 0 {
		t.Errorf("&msg must not be tracked undefined, got %v", refs)
	}
}

func TestStringExtensionProperty(t *testing.T) {
	r := infer(t, `Local string &s; &len = &s.Len;`, nil)

	got := r.typeOf(t, func(e ast.Expression) bool {
		ma, ok := e.(*ast.MemberAccess)
		return ok && ma.Member == "Len"
	})
	if !got.Equal(types.Number()) {
		t.Errorf("&s.Len inferred as %s, want number", got)
	}
	for _, d := range r.diags {
		if strings.Contains(d.Message, "Len") {
			t.Errorf("recognized extension raised a diagnostic: %v", d)
		}
	}
}

func TestUndefinedReferenceYieldsUnknown(t *testing.T) {
	r := infer(t, `&y = &undefined + 1;`, nil)

	refs := r.registry.UndefinedReferences()
	foundGhost := false
	for _, ref := range refs {
		if strings.EqualFold(ref.Name, "&undefined") {
			foundGhost = true
		}
	}
	if !foundGhost {
		t.Fatalf("undefined references = %v, want &undefined", refs)
	}

	got := r.typeOf(t, func(e ast.Expression) bool {
		_, ok := e.(*ast.BinaryExpr)
		return ok
	})
	if !got.IsUnknown() {
		t.Errorf("binary operation over an unresolved operand inferred as %s, want unknown", got)
	}
}

func TestPhantomResolutionSecondPhase(t *testing.T) {
	provider, err := metadata.ParseYAML([]byte(`
variables:
  "&crt": Record
`))
	if err != nil {
		t.Fatal(err)
	}

	r := infer(t, `Local string &name; &name = &crt.Name;`, provider)

	// The resolver typed &crt, so it is neither undefined nor unused.
	if len(r.registry.UndefinedReferences()) != 0 {
		t.Errorf("resolved phantom still tracked undefined: %v", r.registry.UndefinedReferences())
	}
	got := r.typeOf(t, isVar("&crt"))
	if got.Kind != types.KindBuiltinObject || got.Name != "Record" {
		t.Errorf("&crt inferred as %s, want Record", got)
	}
	for _, v := range r.registry.UnusedVariables() {
		if strings.EqualFold(v.Name, "&crt") {
			t.Error("phantom variable leaked into unused report")
		}
	}
}

func TestRecordFieldLookup(t *testing.T) {
	provider, err := metadata.ParseYAML([]byte(`
records:
  JOB:
    fields:
      EMPLID: string
`))
	if err != nil {
		t.Fatal(err)
	}

	r := infer(t, `&f = JOB.EMPLID; &bad = JOB.NO_SUCH_FIELD;`, provider)

	got := r.typeOf(t, func(e ast.Expression) bool {
		ma, ok := e.(*ast.MemberAccess)
		return ok && ma.Member == "EMPLID"
	})
	if got.Kind != types.KindBuiltinObject || got.Name != "Field" {
		t.Errorf("JOB.EMPLID inferred as %s, want Field", got)
	}

	foundMissing := false
	for _, d := range r.diags {
		if strings.Contains(d.Message, "NO_SUCH_FIELD") {
			foundMissing = true
		}
	}
	if !foundMissing {
		t.Error("unknown record field should raise a diagnostic")
	}
}

func TestArrayIndexingReducesDimensionality(t *testing.T) {
	r := infer(t, `
Local array of array of number &grid;
&row = &grid[1];
&cell = &grid[1][2];
`, nil)

	rowType := r.typeOf(t, func(e ast.Expression) bool {
		ix, ok := e.(*ast.IndexExpr)
		if !ok {
			return false
		}
		_, nested := ix.Target.(*ast.Identifier)
		return nested
	})
	if rowType.Kind != types.KindArray || rowType.Dimensions != 1 {
		t.Errorf("&grid[1] inferred as %s, want 1-dim array", rowType)
	}

	cellType := r.typeOf(t, func(e ast.Expression) bool {
		ix, ok := e.(*ast.IndexExpr)
		if !ok {
			return false
		}
		_, nested := ix.Target.(*ast.IndexExpr)
		return nested
	})
	if !cellType.Equal(types.Number()) {
		t.Errorf("&grid[1][2] inferred as %s, want number", cellType)
	}
}

func TestIndexingScalarIsDiagnosticNotCrash(t *testing.T) {
	r := infer(t, `Local number &n; &x = &n[1];`, nil)

	found := false
	for _, d := range r.diags {
		if strings.Contains(d.Message, "cannot index") {
			found = true
		}
	}
	if !found {
		t.Fatalf("indexing a scalar should produce a diagnostic, got %v", r.diags)
	}
}

func TestMixedArithmeticIsDiagnosticPlusUnknown(t *testing.T) {
	r := infer(t, `Local string &s; Local number &n; &x = &s + &n;`, nil)

	got := r.typeOf(t, func(e ast.Expression) bool {
		be, ok := e.(*ast.BinaryExpr)
		return ok && be.Operator == ast.OpAdd
	})
	if !got.IsUnknown() {
		t.Errorf("string + number inferred as %s, want unknown", got)
	}
	if len(r.diags) == 0 {
		t.Error("mixed arithmetic should raise a diagnostic")
	}
}

func TestOperatorResults(t *testing.T) {
	r := infer(t, `
Local number &a, &b;
Local string &s;
&cmp = &a < &b;
&cat = &s | &s;
&sum = &a + &b;
`, nil)

	if got := r.typeOf(t, func(e ast.Expression) bool {
		be, ok := e.(*ast.BinaryExpr)
		return ok && be.Operator == ast.OpLess
	}); !got.IsBoolean() {
		t.Errorf("comparison inferred as %s, want boolean", got)
	}
	if got := r.typeOf(t, func(e ast.Expression) bool {
		be, ok := e.(*ast.BinaryExpr)
		return ok && be.Operator == ast.OpConcat
	}); !got.IsString() {
		t.Errorf("concatenation inferred as %s, want string", got)
	}
	if got := r.typeOf(t, func(e ast.Expression) bool {
		be, ok := e.(*ast.BinaryExpr)
		return ok && be.Operator == ast.OpAdd
	}); !got.Equal(types.Number()) {
		t.Errorf("addition inferred as %s, want number", got)
	}
}

func TestBuiltinFunctionAndArity(t *testing.T) {
	r := infer(t, `&l = Len("abc"); &bad = Len();`, nil)

	got := r.typeOf(t, func(e ast.Expression) bool {
		fc, ok := e.(*ast.FunctionCall)
		if !ok {
			return false
		}
		id, ok := fc.Target.(*ast.Identifier)
		return ok && strings.EqualFold(id.Name, "Len") && len(fc.Args) == 1
	})
	if !got.Equal(types.Number()) {
		t.Errorf("Len(...) inferred as %s, want number", got)
	}

	foundArity := false
	for _, d := range r.diags {
		if strings.Contains(d.Message, "arguments") {
			foundArity = true
		}
	}
	if !foundArity {
		t.Error("Len() with no arguments should raise an arity diagnostic")
	}
}

func TestLocalFunctionReturnType(t *testing.T) {
	r := infer(t, `
Function Total() Returns number
   Return 1;
End-Function;
&x = Total();
`, nil)
	got := r.typeOf(t, func(e ast.Expression) bool {
		_, ok := e.(*ast.FunctionCall)
		return ok
	})
	if !got.Equal(types.Number()) {
		t.Errorf("Total() inferred as %s, want number", got)
	}
}

func TestSystemVariables(t *testing.T) {
	r := infer(t, `&u = %UserId; &d = %Date;`, nil)

	if got := r.typeOf(t, isVar("%UserId")); !got.IsString() {
		t.Errorf("%%UserId inferred as %s, want string", got)
	}
	if got := r.typeOf(t, isVar("%Date")); !got.Equal(types.Date()) {
		t.Errorf("%%Date inferred as %s, want date", got)
	}
}

func TestThisResolvesClassMembers(t *testing.T) {
	r := infer(t, `
class Counter
   property number Count get set;
private
   instance number &step;
end-class;

method Bump
   %This.Count = %This.Count + &step;
end-method;
`, nil)
	if len(r.diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", r.diags)
	}

	got := r.typeOf(t, func(e ast.Expression) bool {
		ma, ok := e.(*ast.MemberAccess)
		return ok && ma.Member == "Count"
	})
	if !got.Equal(types.Number()) {
		t.Errorf("%%This.Count inferred as %s, want number", got)
	}
}

func TestCreateExpressionType(t *testing.T) {
	r := infer(t, `&log = create PKG:Utils:Logger();`, nil)
	got := r.typeOf(t, func(e ast.Expression) bool {
		_, ok := e.(*ast.ObjectCreate)
		return ok
	})
	if got.Kind != types.KindAppClass || got.Name != "PKG:Utils:Logger" {
		t.Errorf("create inferred as %s, want PKG:Utils:Logger", got)
	}
}

func TestClassExistenceCheckOptIn(t *testing.T) {
	provider, err := metadata.ParseYAML([]byte(`
classes:
  - PKG:Utils:Logger
`))
	if err != nil {
		t.Fatal(err)
	}

	source := `&a = create PKG:Utils:Logger(); &b = create PKG:Missing:Thing();`

	quiet := infer(t, source, provider)
	for _, d := range quiet.diags {
		if strings.Contains(d.Message, "not found") {
			t.Fatal("existence check must be off by default")
		}
	}

	checked := infer(t, source, provider, WithClassExistenceCheck())
	found := 0
	for _, d := range checked.diags {
		if strings.Contains(d.Message, "not found") {
			found++
		}
	}
	if found != 1 {
		t.Errorf("existence diagnostics = %d, want exactly 1", found)
	}
}

func TestAssignmentMismatchDiagnostic(t *testing.T) {
	r := infer(t, `Local number &n; Local string &s; &n = &s;`, nil)

	found := false
	for _, d := range r.diags {
		if strings.Contains(d.Message, "cannot assign") {
			found = true
		}
	}
	if !found {
		t.Error("assigning string to number should raise a diagnostic")
	}
}

func TestRerunAfterResetIsClean(t *testing.T) {
	source := `Local number &x = 1; &x = &x + 1;`
	program, errs := parser.ParseSource(source, "test.pcode")
	if len(errs) > 0 {
		t.Fatal(errs)
	}

	registry := scope.NewRegistry()
	table := types.NewTypeTable()

	for i := 0; i < 2; i++ {
		registry.Build(program)
		table.Reset()
		v := New(registry, types.MustNewCatalog(), nil, table)
		if diags := v.Run(program); len(diags) != 0 {
			t.Fatalf("run %d: unexpected diagnostics %v", i, diags)
		}
		if len(registry.UndefinedReferences()) != 0 {
			t.Fatalf("run %d: stale undefined references", i)
		}
	}
}

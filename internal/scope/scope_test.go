package scope

import (
	"testing"

	"github.com/pcodetools/pcode/internal/parser"
	"github.com/pcodetools/pcode/internal/types"
)

func build(t *testing.T, source string) *Registry {
	t.Helper()
	program, errs := parser.ParseSource(source, "test.pcode")
	if len(errs) > 0 {
		t.Fatalf("parse errors: %v", errs)
	}
	r := NewRegistry()
	r.Build(program)
	return r
}

func TestLexicalLookupAndShadowing(t *testing.T) {
	r := build(t, `
Local number &x;
Function Inner()
   Local string &x;
   Local number &y;
End-Function;
`)
	root := r.Root()
	if root.Kind() != KindProgram {
		t.Fatalf("root kind = %v", root.Kind())
	}
	if len(root.Children()) != 1 {
		t.Fatalf("expected one function scope, got %d", len(root.Children()))
	}
	fn := root.Children()[0]
	if fn.Kind() != KindFunction {
		t.Fatalf("child kind = %v", fn.Kind())
	}

	// The nearest declaration wins: inside the function &x is the string.
	inner, ok := fn.Lookup("&x")
	if !ok || !inner.Type.IsString() {
		t.Error("function scope should see its own string &x")
	}
	outer, ok := root.Lookup("&x")
	if !ok || !outer.Type.Equal(types.Number()) {
		t.Error("program scope should see the number &x")
	}

	// Sibling visibility: &y is invisible at the root.
	if _, ok := root.Lookup("&y"); ok {
		t.Error("&y must not be visible outside the function")
	}
}

func TestCaseInsensitiveLookup(t *testing.T) {
	r := build(t, `Local number &Counter;`)
	if _, ok := r.Root().Lookup("&COUNTER"); !ok {
		t.Error("lookup must be case-insensitive")
	}
	if _, ok := r.Root().Lookup("&counter"); !ok {
		t.Error("lookup must be case-insensitive")
	}
}

func TestClassScopeMembers(t *testing.T) {
	r := build(t, `
class Logger
   property number Level get set;
private
   instance string &prefix;
   constant &MAX = 100;
end-class;

method Log
   &prefix = "x";
end-method;
`)
	root := r.Root()
	if len(root.Children()) != 1 {
		t.Fatalf("expected one class scope, got %d", len(root.Children()))
	}
	class := root.Children()[0]
	if class.Kind() != KindClass {
		t.Fatalf("class scope kind = %v", class.Kind())
	}

	inst, ok := class.LookupLocal("&prefix")
	if !ok || inst.Kind != VarInstance || !inst.Type.IsString() {
		t.Error("instance &prefix should be a string instance variable")
	}
	c, ok := class.LookupLocal("&MAX")
	if !ok || c.Kind != VarConstant || !c.Type.Equal(types.Number()) {
		t.Error("constant &MAX should be a number constant")
	}
	prop, ok := class.LookupLocal("Level")
	if !ok || prop.Kind != VarProperty {
		t.Error("property Level should be registered on the class scope")
	}

	// Method implementations nest under the class scope, so instance
	// variables resolve inside method bodies.
	if len(class.Children()) != 1 {
		t.Fatalf("expected the method scope under the class, got %d", len(class.Children()))
	}
	method := class.Children()[0]
	if _, ok := method.Lookup("&prefix"); !ok {
		t.Error("method scope should reach the instance variable")
	}
}

func TestHeaderParametersVisibleInMethodBody(t *testing.T) {
	r := build(t, `
class Logger
   method Log(&msg As string);
end-class;

method Log
   Local string &copy;
   &copy = &msg;
end-method;
`)
	class := r.Root().Children()[0]
	method := class.Children()[0]

	// The implementation restates no signature; the parameter comes from
	// the header inside the class block.
	p, ok := method.LookupLocal("&msg")
	if !ok {
		t.Fatal("&msg from the method header should be declared in the impl scope")
	}
	if p.Kind != VarParameter || !p.Type.IsString() {
		t.Errorf("&msg = kind %v type %s, want parameter string", p.Kind, p.Type)
	}
	if _, ok := class.LookupLocal("&msg"); ok {
		t.Error("&msg must not leak onto the class scope")
	}
}

func TestParameterRegistration(t *testing.T) {
	r := build(t, `
Function Sum(&values As array of number, &count As number out) Returns number
   Return &count;
End-Function;
`)
	fn := r.Root().Children()[0]
	v, ok := fn.LookupLocal("&values")
	if !ok || v.Kind != VarParameter {
		t.Fatal("&values should be a parameter of the function scope")
	}
	if v.Type.Kind != types.KindArray || v.Type.Dimensions != 1 {
		t.Errorf("&values type = %s, want 1-dim array", v.Type)
	}
}

func TestLoopAndCatchScopes(t *testing.T) {
	r := build(t, `
Local number &i;
For &i = 1 To 3
   Local number &inLoop;
End-For;
Try
   &i = 1;
Catch Exception &ex
   &i = 2;
End-Try;
`)
	root := r.Root()

	// For introduces a loop scope; Try introduces a try scope and one
	// catch scope per clause.
	kinds := make(map[Kind]int)
	for _, child := range root.Children() {
		kinds[child.Kind()]++
	}
	if kinds[KindLoop] != 1 || kinds[KindTry] != 1 || kinds[KindCatch] != 1 {
		t.Fatalf("scope kinds = %v", kinds)
	}

	if _, ok := root.Lookup("&inLoop"); ok {
		t.Error("&inLoop must not escape the loop body")
	}
	if _, ok := root.Lookup("&ex"); ok {
		t.Error("&ex must not escape the catch clause")
	}

	for _, child := range root.Children() {
		if child.Kind() == KindCatch {
			ex, ok := child.LookupLocal("&ex")
			if !ok {
				t.Fatal("catch scope should declare &ex")
			}
			if ex.Type.Kind != types.KindBuiltinObject || ex.Type.Name != "Exception" {
				t.Errorf("&ex type = %s, want Exception", ex.Type)
			}
		}
	}
}

func TestMarkAsUsedAndUnused(t *testing.T) {
	r := build(t, `
Local number &used;
Local number &unused;
Function F()
   Local string &inner;
End-Function;
`)
	root := r.Root()

	if !r.MarkAsUsed("&used", root) {
		t.Fatal("marking a declared variable must succeed")
	}
	if r.MarkAsUsed("&missing", root) {
		t.Fatal("marking an undeclared variable must fail")
	}

	unused := r.UnusedVariables()
	names := make([]string, 0, len(unused))
	for _, v := range unused {
		names = append(names, v.Name)
	}
	if len(names) != 2 || names[0] != "&unused" || names[1] != "&inner" {
		t.Errorf("unused = %v, want [&unused &inner]", names)
	}
}

func TestPhantomVariablesExcludedFromUnused(t *testing.T) {
	r := build(t, `Local number &real;`)
	r.Root().Register(&VariableInfo{Name: "&phantom", Type: types.Any(), Phantom: true})

	for _, v := range r.UnusedVariables() {
		if v.Phantom {
			t.Error("phantom variables must not appear in unused reports")
		}
	}
}

func TestUndefinedReferenceTracking(t *testing.T) {
	r := build(t, `Local number &x;`)
	r.TrackUndefinedReference("&ghost", r.Root().Span(), r.Root())

	refs := r.UndefinedReferences()
	if len(refs) != 1 || refs[0].Name != "&ghost" {
		t.Fatalf("undefined refs = %v", refs)
	}
}

func TestScopeAt(t *testing.T) {
	source := `
Local number &x;
Function F()
   &x = 1;
End-Function;
`
	r := build(t, source)
	fn := r.Root().Children()[0]

	insideOffset := fn.Span().Start.Offset + 1
	if got := r.ScopeAt(insideOffset); got != fn {
		t.Error("offset inside the function should resolve to the function scope")
	}
	if got := r.ScopeAt(1); got != r.Root() {
		t.Error("offset outside any nested scope should resolve to the root")
	}
}

func TestResetClearsState(t *testing.T) {
	r := build(t, `Local number &x;`)
	r.TrackUndefinedReference("&ghost", r.Root().Span(), r.Root())

	r.Reset()
	if r.Root() != nil {
		t.Error("Reset must drop the scope tree")
	}
	if len(r.UndefinedReferences()) != 0 {
		t.Error("Reset must drop undefined references")
	}
}

package parser

import (
	"fmt"
	"strings"
	"testing"

	"github.com/pcodetools/pcode/internal/ast"
)

// mustParse parses source and fails the test on any error.
func mustParse(t *testing.T, source string) *ast.Program {
	t.Helper()
	program, errs := ParseSource(source, "test.pcode")
	if len(errs) > 0 {
		for _, e := range errs {
			t.Logf("error: %v", e)
		}
		t.Fatalf("expected clean parse, got %d errors", len(errs))
	}
	if program == nil {
		t.Fatal("program must not be nil")
	}
	return program
}

// firstStmt returns the program's sole top-level statement.
func firstStmt(t *testing.T, program *ast.Program) ast.Statement {
	t.Helper()
	if len(program.Statements) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(program.Statements))
	}
	return program.Statements[0]
}

func TestAssignmentVsComparison(t *testing.T) {
	// Statement-position '=' is assignment; the next '=' is comparison.
	program := mustParse(t, `&x = &y = 3;`)

	assign, ok := firstStmt(t, program).(*ast.Assignment)
	if !ok {
		t.Fatalf("expected *ast.Assignment, got %T", program.Statements[0])
	}
	target, ok := assign.Target.(*ast.Identifier)
	if !ok || target.Name != "&x" || target.Kind != ast.IdentUserVariable {
		t.Fatalf("bad assignment target: %v", assign.Target)
	}
	cmp, ok := assign.Value.(*ast.BinaryExpr)
	if !ok || cmp.Operator != ast.OpEqual {
		t.Fatalf("expected comparison on right-hand side, got %v", assign.Value)
	}
}

func TestOperatorPrecedence(t *testing.T) {
	tests := []struct {
		name   string
		source string
		check  func(t *testing.T, value ast.Expression)
	}{
		{
			"multiplication binds tighter than addition",
			`&x = 1 + 2 * 3;`,
			func(t *testing.T, value ast.Expression) {
				add := value.(*ast.BinaryExpr)
				if add.Operator != ast.OpAdd {
					t.Fatalf("root operator = %v, want Add", add.Operator)
				}
				mul, ok := add.Right.(*ast.BinaryExpr)
				if !ok || mul.Operator != ast.OpMultiply {
					t.Fatalf("right operand should be the multiplication, got %v", add.Right)
				}
			},
		},
		{
			"concatenation binds looser than addition",
			`&s = "a" | "b" + "c";`,
			func(t *testing.T, value ast.Expression) {
				cat := value.(*ast.BinaryExpr)
				if cat.Operator != ast.OpConcat {
					t.Fatalf("root operator = %v, want Concat", cat.Operator)
				}
			},
		},
		{
			"power is right associative",
			`&p = 2 ** 3 ** 2;`,
			func(t *testing.T, value ast.Expression) {
				outer := value.(*ast.BinaryExpr)
				if outer.Operator != ast.OpPower {
					t.Fatalf("root operator = %v, want Power", outer.Operator)
				}
				inner, ok := outer.Right.(*ast.BinaryExpr)
				if !ok || inner.Operator != ast.OpPower {
					t.Fatal("2 ** 3 ** 2 must group as 2 ** (3 ** 2)")
				}
			},
		},
		{
			"And binds tighter than Or",
			`&b = &a And &c Or &d;`,
			func(t *testing.T, value ast.Expression) {
				or := value.(*ast.BinaryExpr)
				if or.Operator != ast.OpOr {
					t.Fatalf("root operator = %v, want Or", or.Operator)
				}
				and, ok := or.Left.(*ast.BinaryExpr)
				if !ok || and.Operator != ast.OpAnd {
					t.Fatal("left operand of Or should be the And")
				}
			},
		},
		{
			"unary minus binds tighter than multiplication",
			`&n = - 2 * 3;`,
			func(t *testing.T, value ast.Expression) {
				mul := value.(*ast.BinaryExpr)
				if mul.Operator != ast.OpMultiply {
					t.Fatalf("root operator = %v, want Multiply", mul.Operator)
				}
				if _, ok := mul.Left.(*ast.UnaryExpr); !ok {
					t.Fatal("left operand should be the negation")
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assign := firstStmt(t, mustParse(t, tt.source)).(*ast.Assignment)
			tt.check(t, assign.Value)
		})
	}
}

func TestPostfixChains(t *testing.T) {
	program := mustParse(t, `&rec.GetField("EMPLID").Value = &ids[1][2];`)
	assign := firstStmt(t, program).(*ast.Assignment)

	// Target: MemberAccess(FunctionCall(MemberAccess(&rec, GetField)), Value).
	outer, ok := assign.Target.(*ast.MemberAccess)
	if !ok || outer.Member != "Value" {
		t.Fatalf("expected .Value member access target, got %v", assign.Target)
	}
	call, ok := outer.Target.(*ast.FunctionCall)
	if !ok || len(call.Args) != 1 {
		t.Fatalf("expected GetField call with one argument, got %v", outer.Target)
	}
	getField, ok := call.Target.(*ast.MemberAccess)
	if !ok || getField.Member != "GetField" {
		t.Fatalf("expected .GetField access, got %v", call.Target)
	}

	// Value: nested single-index subscripts.
	idx, ok := assign.Value.(*ast.IndexExpr)
	if !ok || len(idx.Indexes) != 1 {
		t.Fatalf("expected outer index expression, got %v", assign.Value)
	}
	if _, ok := idx.Target.(*ast.IndexExpr); !ok {
		t.Fatal("expected nested index expression")
	}
}

func TestMultiIndexSubscript(t *testing.T) {
	program := mustParse(t, `&v = &grid[1, 2];`)
	assign := firstStmt(t, program).(*ast.Assignment)
	idx := assign.Value.(*ast.IndexExpr)
	if len(idx.Indexes) != 2 {
		t.Fatalf("expected 2 indexes, got %d", len(idx.Indexes))
	}
}

func TestKeywordAsMemberName(t *testing.T) {
	// Value is a keyword elsewhere but an ordinary member after a dot.
	program := mustParse(t, `&x = &fld.Value;`)
	assign := firstStmt(t, program).(*ast.Assignment)
	ma, ok := assign.Value.(*ast.MemberAccess)
	if !ok || ma.Member != "Value" {
		t.Fatalf("expected .Value access, got %v", assign.Value)
	}
}

func TestCreateExpression(t *testing.T) {
	program := mustParse(t, `&log = create PKG:Utils:Logger("app", 3);`)
	assign := firstStmt(t, program).(*ast.Assignment)

	oc, ok := assign.Value.(*ast.ObjectCreate)
	if !ok {
		t.Fatalf("expected *ast.ObjectCreate, got %T", assign.Value)
	}
	if got := strings.Join(oc.Class.Parts, ":"); got != "PKG:Utils:Logger" {
		t.Errorf("class path = %q, want PKG:Utils:Logger", got)
	}
	if len(oc.Args) != 2 {
		t.Errorf("args = %d, want 2", len(oc.Args))
	}
}

func TestIfElse(t *testing.T) {
	program := mustParse(t, `
If &count > 0 Then
   &total = &total + &count;
Else
   &total = 0;
End-If;
`)
	ifStmt := firstStmt(t, program).(*ast.IfStmt)

	cond, ok := ifStmt.Condition.(*ast.BinaryExpr)
	if !ok || cond.Operator != ast.OpGreater {
		t.Fatalf("bad condition: %v", ifStmt.Condition)
	}
	if len(ifStmt.Then.Statements) != 1 {
		t.Errorf("then branch statements = %d, want 1", len(ifStmt.Then.Statements))
	}
	if ifStmt.Else == nil || len(ifStmt.Else.Statements) != 1 {
		t.Error("else branch should hold one statement")
	}
}

func TestForLoop(t *testing.T) {
	program := mustParse(t, `
For &i = 1 To 10 Step 2
   &sum = &sum + &i;
End-For;
`)
	forStmt := firstStmt(t, program).(*ast.ForStmt)
	if forStmt.Var.Name != "&i" {
		t.Errorf("loop variable = %q, want &i", forStmt.Var.Name)
	}
	if forStmt.Step == nil {
		t.Error("step expression should be present")
	}
	if len(forStmt.Body.Statements) != 1 {
		t.Errorf("body statements = %d, want 1", len(forStmt.Body.Statements))
	}
}

func TestWhileAndRepeat(t *testing.T) {
	program := mustParse(t, `
While &i < 10
   &i = &i + 1;
End-While;

Repeat
   &i = &i - 1;
Until &i <= 0;
`)
	if len(program.Statements) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(program.Statements))
	}
	whileStmt := program.Statements[0].(*ast.WhileStmt)
	if len(whileStmt.Body.Statements) != 1 {
		t.Error("while body should hold one statement")
	}
	repeatStmt := program.Statements[1].(*ast.RepeatStmt)
	cond, ok := repeatStmt.Condition.(*ast.BinaryExpr)
	if !ok || cond.Operator != ast.OpLessEqual {
		t.Errorf("bad until condition: %v", repeatStmt.Condition)
	}
}

func TestEvaluate(t *testing.T) {
	program := mustParse(t, `
Evaluate &status
When = "A"
   &label = "Active";
When "I"
   &label = "Inactive";
When > "Z"
   &label = "High";
When-Other
   &label = "Unknown";
End-Evaluate;
`)
	eval := firstStmt(t, program).(*ast.EvaluateStmt)
	if len(eval.Whens) != 3 {
		t.Fatalf("when arms = %d, want 3", len(eval.Whens))
	}
	if eval.Whens[0].Operator != "=" || eval.Whens[1].Operator != "=" {
		t.Error("explicit and omitted '=' should both record operator \"=\"")
	}
	if eval.Whens[2].Operator != ">" {
		t.Errorf("third arm operator = %q, want >", eval.Whens[2].Operator)
	}
	if eval.Other == nil || len(eval.Other.Statements) != 1 {
		t.Error("When-Other branch should hold one statement")
	}
}

func TestTryCatch(t *testing.T) {
	program := mustParse(t, `
Try
   &rs.Fill();
Catch Exception &ex
   Warning &ex.ToString();
End-Try;
`)
	tryStmt := firstStmt(t, program).(*ast.TryStmt)
	if len(tryStmt.Catches) != 1 {
		t.Fatalf("catches = %d, want 1", len(tryStmt.Catches))
	}
	c := tryStmt.Catches[0]
	if c.Var == nil || c.Var.Name != "&ex" {
		t.Error("catch variable should be &ex")
	}
	if c.ExceptionType == nil {
		t.Error("catch should carry the exception type")
	}
	if _, ok := c.Body.Statements[0].(*ast.MessageStmt); !ok {
		t.Error("catch body should hold the Warning statement")
	}
}

func TestVariableDeclarations(t *testing.T) {
	program := mustParse(t, `
Local number &a, &b;
Global string &gName;
Component array of array of string &grid;
Local PKG:Utils:Logger &log = create PKG:Utils:Logger("x");
`)
	if len(program.Statements) != 4 {
		t.Fatalf("expected 4 statements, got %d", len(program.Statements))
	}

	decl := program.Statements[0].(*ast.LocalVarDecl)
	if decl.Scope != ast.ScopeLocal || len(decl.Names) != 2 {
		t.Error("first declaration should be Local with two names")
	}

	global := program.Statements[1].(*ast.LocalVarDecl)
	if global.Scope != ast.ScopeGlobal {
		t.Error("second declaration should be Global")
	}

	comp := program.Statements[2].(*ast.LocalVarDecl)
	arr, ok := comp.TypeSpec.(*ast.ArrayType)
	if !ok || arr.Dimensions != 2 {
		t.Fatalf("expected 2-dimensional array type, got %v", comp.TypeSpec)
	}
	elem, ok := arr.Elem.(*ast.BuiltInType)
	if !ok || !strings.EqualFold(elem.Name, "string") {
		t.Errorf("array element type = %v, want string", arr.Elem)
	}

	withInit, ok := program.Statements[3].(*ast.LocalVarDeclAssign)
	if !ok {
		t.Fatalf("expected declaration with initializer, got %T", program.Statements[3])
	}
	if _, ok := withInit.Value.(*ast.ObjectCreate); !ok {
		t.Error("initializer should be the create expression")
	}
}

func TestComponentAsDeclaredType(t *testing.T) {
	// Component is a scope keyword but also a valid object type name.
	program := mustParse(t, `Local Component &c;`)
	decl, ok := firstStmt(t, program).(*ast.LocalVarDecl)
	if !ok {
		t.Fatalf("expected declaration, got %T", program.Statements[0])
	}
	bt, ok := decl.TypeSpec.(*ast.BuiltInType)
	if !ok || !strings.EqualFold(bt.Name, "Component") {
		t.Errorf("declared type = %v, want Component", decl.TypeSpec)
	}
}

func TestImports(t *testing.T) {
	program := mustParse(t, `
import PKG:Utils:Logger;
import PKG:Base:*;
&x = 1;
`)
	if len(program.Imports) != 2 {
		t.Fatalf("imports = %d, want 2", len(program.Imports))
	}
	if program.Imports[0].Wildcard {
		t.Error("first import should not be a wildcard")
	}
	second := program.Imports[1]
	if !second.Wildcard || strings.Join(second.Path, ":") != "PKG:Base" {
		t.Errorf("second import = %v wildcard=%v", second.Path, second.Wildcard)
	}
}

func TestClassDeclaration(t *testing.T) {
	program := mustParse(t, `
class Logger extends PKG:Base:Writer
   method Logger(&name As string);
   method Log(&msg As string) Returns boolean;
   property number Level get set;
   property string Name readonly;
protected
   method Flush();
private
   instance array of string &buffer;
   constant &MAX_LINES = 1000;
end-class;

method Logger
   %This.Name = &name;
end-method;

get Level
   Return &level;
end-get;
`)
	if len(program.Statements) != 3 {
		t.Fatalf("expected class + 2 implementations, got %d", len(program.Statements))
	}

	class := program.Statements[0].(*ast.ClassDecl)
	if class.Name != "Logger" {
		t.Errorf("class name = %q", class.Name)
	}
	if class.Extends == nil {
		t.Error("extends clause missing")
	}
	if len(class.Methods) != 3 {
		t.Fatalf("methods = %d, want 3", len(class.Methods))
	}
	if class.Methods[0].Access != ast.AccessPublic || class.Methods[2].Access != ast.AccessProtected {
		t.Error("access sections not tracked")
	}
	if class.Methods[1].Returns == nil {
		t.Error("Log should declare a return type")
	}
	if len(class.Properties) != 2 {
		t.Fatalf("properties = %d, want 2", len(class.Properties))
	}
	if !class.Properties[0].HasGet || !class.Properties[0].HasSet {
		t.Error("Level should have get and set")
	}
	if !class.Properties[1].ReadOnly {
		t.Error("Name should be readonly")
	}
	if len(class.Instances) != 1 || class.Instances[0].Access != ast.AccessPrivate {
		t.Error("private instance declaration not recorded")
	}
	if len(class.Constants) != 1 || class.Constants[0].Name.Name != "&MAX_LINES" {
		t.Error("constant declaration not recorded")
	}

	impl := program.Statements[1].(*ast.MethodImpl)
	if impl.Kind != ast.ImplMethod || impl.Name != "Logger" {
		t.Errorf("first implementation = %v %q", impl.Kind, impl.Name)
	}
	getter := program.Statements[2].(*ast.MethodImpl)
	if getter.Kind != ast.ImplGetter || getter.Name != "Level" {
		t.Errorf("second implementation = %v %q", getter.Kind, getter.Name)
	}
}

func TestFunctionDeclaration(t *testing.T) {
	program := mustParse(t, `
Function GetTotal(&rows As array of number, &start As number out) Returns number
   Local number &sum;
   For &i = 1 To &rows.Len
      &sum = &sum + &rows[&i];
   End-For;
   Return &sum;
End-Function;
`)
	fn := firstStmt(t, program).(*ast.FunctionDecl)
	if fn.Name != "GetTotal" {
		t.Errorf("function name = %q", fn.Name)
	}
	if len(fn.Parameters) != 2 {
		t.Fatalf("parameters = %d, want 2", len(fn.Parameters))
	}
	if fn.Parameters[1].Mode != ast.ModeOut {
		t.Error("second parameter should be out mode")
	}
	if fn.Returns == nil {
		t.Error("return type missing")
	}
	if len(fn.Body.Statements) != 3 {
		t.Errorf("body statements = %d, want 3", len(fn.Body.Statements))
	}
}

func TestSemicolonOptionalBeforeCloser(t *testing.T) {
	// The final statement before a block closer may omit its semicolon.
	mustParse(t, `
If True Then
   &x = 1
End-If;
`)
}

func TestExpressionStatement(t *testing.T) {
	program := mustParse(t, `MessageBox(0, "", 0, 0, "done");`)
	es, ok := firstStmt(t, program).(*ast.ExpressionStatement)
	if !ok {
		t.Fatalf("expected expression statement, got %T", program.Statements[0])
	}
	call, ok := es.Expr.(*ast.FunctionCall)
	if !ok || len(call.Args) != 5 {
		t.Fatalf("expected MessageBox call with 5 args, got %v", es.Expr)
	}
}

func TestDeclareFunctionSkipped(t *testing.T) {
	program := mustParse(t, `
Declare Function check_status PeopleCode FUNCLIB_HR.EMPL_STATUS FieldFormula;
&x = 1;
`)
	if len(program.Statements) != 1 {
		t.Fatalf("declare should contribute no statement, got %d", len(program.Statements))
	}
}

func TestErrorRecoveryOneStatementLost(t *testing.T) {
	// One malformed statement among many: the error is reported and every
	// well-formed statement still parses.
	var b strings.Builder
	for i := 0; i < 25; i++ {
		fmt.Fprintf(&b, "&v%d = %d;\n", i, i)
	}
	b.WriteString("&bad = * ;\n")
	for i := 25; i < 50; i++ {
		fmt.Fprintf(&b, "&v%d = %d;\n", i, i)
	}

	program, errs := ParseSource(b.String(), "test.pcode")
	if len(errs) == 0 {
		t.Fatal("malformed statement must produce an error")
	}
	good := 0
	for _, stmt := range program.Statements {
		if _, ok := stmt.(*ast.Assignment); ok {
			good++
		}
	}
	if good < 50 {
		t.Errorf("recovered assignments = %d, want at least 50", good)
	}
}

func TestErrorRecoveryMissingEndIf(t *testing.T) {
	program, errs := ParseSource(`
If &a > 1 Then
   &b = 2;
&c = 3;
`, "test.pcode")
	if len(errs) == 0 {
		t.Fatal("missing End-If must produce an error")
	}
	if program == nil || len(program.Statements) == 0 {
		t.Fatal("partial program must still be returned")
	}
}

func TestErrorRecoveryInsideBlock(t *testing.T) {
	// The malformed statement inside the If is lost; its siblings survive.
	program, errs := ParseSource(`
If True Then
   &a = 1;
   &b = ) ;
   &c = 3;
End-If;
&after = 4;
`, "test.pcode")
	if len(errs) == 0 {
		t.Fatal("expected at least one error")
	}
	if len(program.Statements) != 2 {
		t.Fatalf("expected If plus trailing assignment, got %d statements", len(program.Statements))
	}
	ifStmt, ok := program.Statements[0].(*ast.IfStmt)
	if !ok {
		t.Fatalf("expected If statement, got %T", program.Statements[0])
	}
	if len(ifStmt.Then.Statements) < 2 {
		t.Errorf("sibling statements inside the block should survive, got %d", len(ifStmt.Then.Statements))
	}
}

func TestSpansBoundSourceText(t *testing.T) {
	source := `&total = &price * &qty;`
	program := mustParse(t, source)

	assign := firstStmt(t, program).(*ast.Assignment)
	spanText := func(n ast.Node) string {
		return source[n.Span().Start.Offset:n.Span().End.Offset]
	}
	if got := spanText(assign); got != `&total = &price * &qty;` {
		t.Errorf("assignment span text = %q", got)
	}
	if got := spanText(assign.Target); got != `&total` {
		t.Errorf("target span text = %q", got)
	}
	if got := spanText(assign.Value); got != `&price * &qty` {
		t.Errorf("value span text = %q", got)
	}
}

func TestParentLinksAfterParse(t *testing.T) {
	program := mustParse(t, `
If &a Then
   &b = &c + 1;
End-If;
`)
	violations := 0
	ast.Inspect(program, func(n ast.Node) bool {
		for _, child := range n.Children() {
			if child.Parent() != n {
				violations++
			}
		}
		return true
	})
	if violations > 0 {
		t.Errorf("%d parent link violations", violations)
	}
}

func TestCommentsDoNotReachParser(t *testing.T) {
	mustParse(t, `
/* block comment */
rem legacy remark;
&x = 1; <* nested style *>
/+ api doc style +/
&y = 2;
`)
}

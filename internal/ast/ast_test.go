package ast

import (
	"testing"

	"github.com/pcodetools/pcode/internal/position"
)

func span(start, end int) position.Span {
	return position.Span{
		Start: position.Position{Line: 1, Column: start + 1, Offset: start},
		End:   position.Position{Line: 1, Column: end + 1, Offset: end},
	}
}

// buildTree constructs the AST for `&x = &y + 1;` by hand.
func buildTree() (*Program, *Assignment, *BinaryExpr, *Identifier) {
	x := NewIdentifier(span(0, 2), "&x", IdentUserVariable)
	y := NewIdentifier(span(5, 7), "&y", IdentUserVariable)
	one := NewLiteral(span(10, 11), LiteralInteger, "1", "1")
	sum := NewBinaryExpr(span(5, 11), y, OpAdd, one)
	assign := NewAssignment(span(0, 12), x, sum)
	prog := NewProgram(span(0, 12), nil, []Statement{assign})
	return prog, assign, sum, y
}

func TestParentLinks(t *testing.T) {
	prog, assign, sum, y := buildTree()

	if assign.Parent() != prog {
		t.Error("assignment's parent should be the program")
	}
	if sum.Parent() != assign {
		t.Error("binary expression's parent should be the assignment")
	}
	if y.Parent() != sum {
		t.Error("identifier's parent should be the binary expression")
	}
	if prog.Parent() != nil {
		t.Error("program root must have no parent")
	}
}

func TestParentSetOnce(t *testing.T) {
	_, assign, sum, _ := buildTree()

	// A second adopt attempt must not reassign the parent.
	other := NewProgram(span(0, 12), nil, nil)
	sum.setParent(other)
	if sum.Parent() != assign {
		t.Error("parent link must never be reassigned")
	}
}

func TestFindDescendants(t *testing.T) {
	prog, _, _, _ := buildTree()

	idents := FindDescendants[*Identifier](prog)
	if len(idents) != 2 {
		t.Fatalf("expected 2 identifiers, got %d", len(idents))
	}
	// Pre-order: &x before &y.
	if idents[0].Name != "&x" || idents[1].Name != "&y" {
		t.Errorf("unexpected order: %s, %s", idents[0].Name, idents[1].Name)
	}

	lits := FindDescendants[*Literal](prog)
	if len(lits) != 1 || lits[0].Text != "1" {
		t.Errorf("expected one literal '1', got %v", lits)
	}
}

func TestFindAncestor(t *testing.T) {
	prog, assign, _, y := buildTree()

	gotAssign, ok := FindAncestor[*Assignment](y)
	if !ok || gotAssign != assign {
		t.Error("expected to find the enclosing assignment")
	}
	gotProg, ok := FindAncestor[*Program](y)
	if !ok || gotProg != prog {
		t.Error("expected to find the program root")
	}
	if _, ok := FindAncestor[*IfStmt](y); ok {
		t.Error("there is no enclosing If statement")
	}
	// Search starts at the parent, so a node is not its own ancestor.
	if _, ok := FindAncestor[*Identifier](y); ok {
		t.Error("a node must not be its own ancestor")
	}
}

func TestSpanContainmentInvariant(t *testing.T) {
	prog, _, _, _ := buildTree()

	Inspect(prog, func(n Node) bool {
		for _, c := range n.Children() {
			if !n.Span().ContainsSpan(c.Span()) {
				t.Errorf("child span %s escapes parent span %s", c.Span(), n.Span())
			}
		}
		return true
	})
}

func TestNodeAt(t *testing.T) {
	prog, _, sum, y := buildTree()

	if got := NodeAt(prog, 5); got != y {
		t.Errorf("offset 5 should resolve to &y, got %v", got)
	}
	if got := NodeAt(prog, 8); got != sum {
		t.Errorf("offset 8 (operator) should resolve to the binary expr, got %v", got)
	}
	if got := NodeAt(prog, 99); got != nil {
		t.Errorf("offset outside the tree should resolve to nil, got %v", got)
	}
}

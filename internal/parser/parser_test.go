package parser_test

import (
	"testing"

	"github.com/lumen-lang/lumen/internal/ast"
	"github.com/lumen-lang/lumen/internal/parser"
)

func mustParse(t *testing.T, src string) *ast.Program {
	t.Helper()
	prog, err := parser.Parse(src)
	if err != nil {
		t.Fatalf("unexpected parse error for %q: %s", src, err)
	}
	return prog
}

func expectParseError(t *testing.T, src string) *parser.ParseError {
	t.Helper()
	_, err := parser.Parse(src)
	if err == nil {
		t.Fatalf("expected parse error for %q, got none", src)
	}
	pe, ok := err.(*parser.ParseError)
	if !ok {
		t.Fatalf("expected *parser.ParseError, got %T (%s)", err, err)
	}
	return pe
}

func TestParseDeclareAndAssign(t *testing.T) {
	prog := mustParse(t, "x := 1; x = x + 1;")
	if len(prog.Statements) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(prog.Statements))
	}
	decl, ok := prog.Statements[0].(*ast.Declare)
	if !ok {
		t.Fatalf("statement 0: expected *ast.Declare, got %T", prog.Statements[0])
	}
	if v, ok := decl.LHS.(*ast.Var); !ok || v.Name != "x" {
		t.Errorf("declare LHS = %#v, want Var{x}", decl.LHS)
	}
	if _, ok := prog.Statements[1].(*ast.Assign); !ok {
		t.Errorf("statement 1: expected *ast.Assign, got %T", prog.Statements[1])
	}
}

func TestParseOpAssign(t *testing.T) {
	prog := mustParse(t, "x += 1;")
	oa, ok := prog.Statements[0].(*ast.OpAssign)
	if !ok {
		t.Fatalf("expected *ast.OpAssign, got %T", prog.Statements[0])
	}
	if oa.Op != "+" {
		t.Errorf("Op = %q, want %q", oa.Op, "+")
	}
}

func TestParseListDestructureWithCollect(t *testing.T) {
	prog := mustParse(t, "[a, *rest] := xs;")
	decl := prog.Statements[0].(*ast.Declare)
	list, ok := decl.LHS.(*ast.ListLit)
	if !ok {
		t.Fatalf("expected *ast.ListLit LHS, got %T", decl.LHS)
	}
	if !list.Collect {
		t.Error("expected Collect = true")
	}
	if len(list.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(list.Items))
	}
}

func TestParseObjectDestructure(t *testing.T) {
	prog := mustParse(t, "{x: p, y: q} := xs;")
	decl := prog.Statements[0].(*ast.Declare)
	obj, ok := decl.LHS.(*ast.ObjectLit)
	if !ok {
		t.Fatalf("expected *ast.ObjectLit LHS, got %T", decl.LHS)
	}
	if len(obj.Props) != 2 {
		t.Fatalf("expected 2 props, got %d", len(obj.Props))
	}
	if !obj.Props[0].IsPair() {
		t.Error("expected first prop to be a pair")
	}
}

func TestParseObjectShorthand(t *testing.T) {
	prog := mustParse(t, "{name} := xs;")
	decl := prog.Statements[0].(*ast.Declare)
	obj := decl.LHS.(*ast.ObjectLit)
	if obj.Props[0].IsPair() {
		t.Error("shorthand prop should not be a pair")
	}
	v, ok := obj.Props[0].Expr.(*ast.Var)
	if !ok || v.Name != "name" {
		t.Errorf("shorthand Expr = %#v, want Var{name}", obj.Props[0].Expr)
	}
}

func TestParseBinaryPrecedence(t *testing.T) {
	prog := mustParse(t, "x := 2 + 3 * 4;")
	decl := prog.Statements[0].(*ast.Declare)
	bo, ok := decl.RHS.(*ast.BinaryOp)
	if !ok {
		t.Fatalf("expected *ast.BinaryOp, got %T", decl.RHS)
	}
	if bo.Op != "+" {
		t.Fatalf("top-level op = %q, want %q (expected '*' to bind tighter)", bo.Op, "+")
	}
	rhs, ok := bo.RHS.(*ast.BinaryOp)
	if !ok || rhs.Op != "*" {
		t.Errorf("RHS = %#v, want BinaryOp{*}", bo.RHS)
	}
}

func TestParseRangeAndRangeIndex(t *testing.T) {
	prog := mustParse(t, "x := 1..5; y := xs[1:3];")
	rangeDecl := prog.Statements[0].(*ast.Declare)
	if _, ok := rangeDecl.RHS.(*ast.Range); !ok {
		t.Errorf("expected *ast.Range, got %T", rangeDecl.RHS)
	}
	riDecl := prog.Statements[1].(*ast.Declare)
	if _, ok := riDecl.RHS.(*ast.RangeIndex); !ok {
		t.Errorf("expected *ast.RangeIndex, got %T", riDecl.RHS)
	}
}

func TestParsePropAndTypeProp(t *testing.T) {
	prog := mustParse(t, "a := x.name; b := x.:type;")
	propDecl := prog.Statements[0].(*ast.Declare)
	prop, ok := propDecl.RHS.(*ast.Prop)
	if !ok || prop.TypeProp {
		t.Errorf("expected plain Prop, got %#v", propDecl.RHS)
	}
	tpDecl := prog.Statements[1].(*ast.Declare)
	tprop, ok := tpDecl.RHS.(*ast.Prop)
	if !ok || !tprop.TypeProp {
		t.Errorf("expected type-prop Prop, got %#v", tpDecl.RHS)
	}
}

func TestParseCallWithSpreadArg(t *testing.T) {
	prog := mustParse(t, "f(1, ...xs);")
	stmt := prog.Statements[0].(*ast.ExprStmt)
	call, ok := stmt.Expr.(*ast.Call)
	if !ok {
		t.Fatalf("expected *ast.Call, got %T", stmt.Expr)
	}
	if len(call.Args) != 2 || !call.Args[1].IsSpread {
		t.Errorf("Args = %#v, want second arg spread", call.Args)
	}
}

func TestParseFuncDeclWithCollectParam(t *testing.T) {
	prog := mustParse(t, "fn f(a, *rest) { return rest; }")
	fd, ok := prog.Statements[0].(*ast.FuncDecl)
	if !ok {
		t.Fatalf("expected *ast.FuncDecl, got %T", prog.Statements[0])
	}
	if fd.Name != "f" || !fd.CollectArgs || len(fd.Params) != 2 {
		t.Errorf("FuncDecl = %#v", fd)
	}
}

func TestParseIfElseIfElse(t *testing.T) {
	prog := mustParse(t, `
		if (x == 1) { y := 1; }
		else if (x == 2) { y := 2; }
		else { y := 3; }
	`)
	ifStmt, ok := prog.Statements[0].(*ast.If)
	if !ok {
		t.Fatalf("expected *ast.If, got %T", prog.Statements[0])
	}
	if len(ifStmt.Branches) != 2 {
		t.Fatalf("expected 2 branches, got %d", len(ifStmt.Branches))
	}
	if ifStmt.Else == nil {
		t.Error("expected a trailing else block")
	}
}

func TestParseForLoop(t *testing.T) {
	prog := mustParse(t, "for [i, v] in xs { print(v); }")
	forStmt, ok := prog.Statements[0].(*ast.For)
	if !ok {
		t.Fatalf("expected *ast.For, got %T", prog.Statements[0])
	}
	if _, ok := forStmt.LHS.(*ast.ListLit); !ok {
		t.Errorf("LHS = %#v, want *ast.ListLit pattern", forStmt.LHS)
	}
}

func TestParseInterpolatedString(t *testing.T) {
	prog := mustParse(t, `print("a${1 + 2}b");`)
	stmt := prog.Statements[0].(*ast.ExprStmt)
	call := stmt.Expr.(*ast.Call)
	str, ok := call.Args[0].Expr.(*ast.StrLit)
	if !ok || !str.IsInterp() {
		t.Fatalf("expected interpolated *ast.StrLit, got %#v", call.Args[0].Expr)
	}
	if len(str.Segments) != 2 || str.Segments[0] != "a" || str.Segments[1] != "b" {
		t.Errorf("Segments = %#v, want [a b]", str.Segments)
	}
	if len(str.Slots) != 1 {
		t.Fatalf("expected 1 slot, got %d", len(str.Slots))
	}
	bo, ok := str.Slots[0].Expr.(*ast.BinaryOp)
	if !ok || bo.Op != "+" {
		t.Errorf("slot expr = %#v, want BinaryOp{+}", str.Slots[0].Expr)
	}
}

func TestParseError_MissingSemicolon(t *testing.T) {
	expectParseError(t, "x := 1")
}

func TestParseError_UnclosedBlock(t *testing.T) {
	expectParseError(t, "if (x) { y := 1;")
}

func TestParseError_UnexpectedToken(t *testing.T) {
	expectParseError(t, ");")
}

package evaluator

import (
	"bytes"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/lumen-lang/lumen/internal/parser"
)

// runSource parses and evaluates src, capturing stdout. It fails the test on
// a parse error (a bug in the test source itself, not what's under test).
func runSource(t *testing.T, src string) (string, error) {
	t.Helper()
	prog, err := parser.Parse(src)
	if err != nil {
		t.Fatalf("unexpected parse error for %q: %s", src, err)
	}
	var out bytes.Buffer
	ctx := NewContext(0)
	ctx.Stdout = &out
	ev := NewWithContext(ctx)
	runErr := ev.Run(prog)
	return out.String(), runErr
}

func wantEvalErr(t *testing.T, src string, kind ErrKind) *EvalError {
	t.Helper()
	_, err := runSource(t, src)
	if err == nil {
		t.Fatalf("expected an error for %q, got none", src)
	}
	var ee *EvalError
	if !errors.As(err, &ee) {
		t.Fatalf("expected *EvalError for %q, got %T (%s)", src, err, err)
	}
	if ee.Kind != kind {
		t.Errorf("for %q: error kind = %v, want %v (message: %s)", src, ee.Kind, kind, ee.Message)
	}
	return ee
}

func TestRun_PrintLiteral(t *testing.T) {
	out, err := runSource(t, `print("hello");`)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if out != "hello\n" {
		t.Errorf("stdout = %q, want %q", out, "hello\n")
	}
}

func TestRun_ArithmeticAndVariables(t *testing.T) {
	out, err := runSource(t, "x := 2; y := 3; print(x * (y + 4));")
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if strings.TrimSpace(out) != "14" {
		t.Errorf("stdout = %q, want %q", out, "14\n")
	}
}

func TestRun_ListDestructureCollect(t *testing.T) {
	out, err := runSource(t, "[a, *rest] := [1, 2, 3, 4]; print(a); print(rest);")
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	want := "1\n[\n    2,\n    3,\n    4,\n]\n"
	if out != want {
		t.Errorf("stdout =\n%s\nwant\n%s", out, want)
	}
}

func TestRun_ObjectDestructureProp(t *testing.T) {
	out, err := runSource(t, "{x: p, y: q} := {x: 10, y: 20}; print(p + q);")
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if strings.TrimSpace(out) != "30" {
		t.Errorf("stdout = %q, want 30", out)
	}
}

// TestRun_ClosureCapture exercises ScopeStack.Push's frame-sharing: each
// call of the returned closure must see the value of n that the previous
// call wrote into the captured make_counter frame, not a snapshot taken
// when the closure was created.
func TestRun_ClosureCapture(t *testing.T) {
	src := `
		make_counter := fn() {
			n := 0;
			return fn() {
				n = n + 1;
				return n;
			};
		};
		step := make_counter();
		print(step());
		print(step());
		print(step());
	`
	out, err := runSource(t, src)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if out != "1\n2\n3\n" {
		t.Errorf("stdout = %q, want %q", out, "1\n2\n3\n")
	}
}

func TestRun_BreakExitsInnermostLoop(t *testing.T) {
	src := `
		i := 0;
		while (true) {
			if (i == 3) {
				break;
			}
			print(i);
			i = i + 1;
		}
	`
	out, err := runSource(t, src)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if out != "0\n1\n2\n" {
		t.Errorf("stdout = %q, want %q", out, "0\n1\n2\n")
	}
}

// TestRun_PlainDotFallsBackToTypeNamespace locks in the evalProp dispatch
// fix: plain "." on a non-object receiver must resolve through the
// type-namespace path, the same as the explicit ".:" form, per spec.md
// §4.6's invocation sugar.
func TestRun_PlainDotFallsBackToTypeNamespace(t *testing.T) {
	out, err := runSource(t, `print((1).type());`)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if strings.TrimSpace(out) != "int" {
		t.Errorf("stdout = %q, want int", out)
	}
}

func TestRun_TypeFunctionOnNull(t *testing.T) {
	ee := wantEvalErr(t, `print(null.type());`, ErrKindTypeFunctionOnNull)
	if !strings.Contains(ee.Message, "null") {
		t.Errorf("message = %q, want it to mention 'null'", ee.Message)
	}
}

func TestRun_StrLenTypeFunction(t *testing.T) {
	out, err := runSource(t, `print("abcd".:len());`)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if strings.TrimSpace(out) != "4" {
		t.Errorf("stdout = %q, want 4", out)
	}
}

func TestRun_UndefinedVariable(t *testing.T) {
	wantEvalErr(t, `print(missing);`, ErrKindUndefined)
}

func TestRun_CallNonFunction(t *testing.T) {
	wantEvalErr(t, `x := 1; x();`, ErrKindCannotCallNonFunc)
}

func TestRun_IndexOutOfListBounds(t *testing.T) {
	wantEvalErr(t, `xs := [1, 2]; print(xs[5]);`, ErrKindOutOfListBounds)
}

func TestRun_BreakOutsideLoop(t *testing.T) {
	wantEvalErr(t, `break;`, ErrKindBreakOutsideLoop)
}

func TestRun_ReturnOutsideFunction(t *testing.T) {
	wantEvalErr(t, `return 1;`, ErrKindReturnOutsideFunction)
}

func TestRun_IntOverflow(t *testing.T) {
	wantEvalErr(t, `print(9223372036854775807 + 1);`, ErrKindIntOverflow)
}

func TestRun_ListDestructureItemMismatch(t *testing.T) {
	wantEvalErr(t, `[a, b] := [1];`, ErrKindListDestructureItemMismatch)
}

func TestRun_SpreadNonListInList(t *testing.T) {
	wantEvalErr(t, `xs := [...5];`, ErrKindSpreadNonListInList)
}

// TestRun_PrintInvalidUTF8Slice locks in render's KStr validation: lumen
// strings are raw byte sequences (spec.md §4.6 Non-goals), so range-indexing
// a multi-byte character in half produces a Str value print must refuse to
// write rather than emit malformed bytes.
func TestRun_PrintInvalidUTF8Slice(t *testing.T) {
	ee := wantEvalErr(t, `s := "é"; print(s[0:1]);`, ErrKindBuiltinFuncErr)
	if !strings.Contains(ee.Message, "UTF-8") {
		t.Errorf("message = %q, want it to mention UTF-8", ee.Message)
	}
}

// --- checked arithmetic (spec.md §8 "arithmetic overflow laws") ---

func TestCheckedAdd(t *testing.T) {
	if sum, ok := checkedAdd(2, 3); !ok || sum != 5 {
		t.Errorf("checkedAdd(2, 3) = %d, %v, want 5, true", sum, ok)
	}
	if _, ok := checkedAdd(math.MaxInt64, 1); ok {
		t.Error("checkedAdd(MaxInt64, 1) should overflow")
	}
	if _, ok := checkedAdd(math.MinInt64, -1); ok {
		t.Error("checkedAdd(MinInt64, -1) should overflow")
	}
}

func TestCheckedSub(t *testing.T) {
	if diff, ok := checkedSub(5, 3); !ok || diff != 2 {
		t.Errorf("checkedSub(5, 3) = %d, %v, want 2, true", diff, ok)
	}
	if _, ok := checkedSub(math.MinInt64, 1); ok {
		t.Error("checkedSub(MinInt64, 1) should overflow")
	}
}

func TestCheckedMul(t *testing.T) {
	if prod, ok := checkedMul(6, 7); !ok || prod != 42 {
		t.Errorf("checkedMul(6, 7) = %d, %v, want 42, true", prod, ok)
	}
	if prod, ok := checkedMul(0, math.MaxInt64); !ok || prod != 0 {
		t.Errorf("checkedMul(0, MaxInt64) = %d, %v, want 0, true", prod, ok)
	}
	if _, ok := checkedMul(math.MaxInt64, 2); ok {
		t.Error("checkedMul(MaxInt64, 2) should overflow")
	}
	if _, ok := checkedMul(-1, math.MinInt64); ok {
		t.Error("checkedMul(-1, MinInt64) should overflow")
	}
}

func TestCheckedDiv(t *testing.T) {
	if q, ok := checkedDiv(7, 2); !ok || q != 3 {
		t.Errorf("checkedDiv(7, 2) = %d, %v, want 3, true", q, ok)
	}
	if _, ok := checkedDiv(1, 0); ok {
		t.Error("checkedDiv(1, 0) should fail, not overflow-panic")
	}
	if _, ok := checkedDiv(math.MinInt64, -1); ok {
		t.Error("checkedDiv(MinInt64, -1) should overflow")
	}
}

// --- value equality semantics ---

func TestDeepEqual_ScalarsAndContainers(t *testing.T) {
	if !DeepEqual(IntValue(1), IntValue(1)) {
		t.Error("1 == 1 should be true")
	}
	if DeepEqual(IntValue(1), IntValue(2)) {
		t.Error("1 == 2 should be false")
	}
	if DeepEqual(IntValue(1), StrValue("1")) {
		t.Error("values of different kinds should never be DeepEqual")
	}

	a := ListValueOf([]SourcedValue{Sourced(IntValue(1)), Sourced(IntValue(2))})
	b := ListValueOf([]SourcedValue{Sourced(IntValue(1)), Sourced(IntValue(2))})
	if !DeepEqual(a, b) {
		t.Error("structurally identical lists should be DeepEqual even with distinct backing storage")
	}
	if RefEq(a, b) {
		t.Error("distinct list literals should not be RefEq")
	}
}

func TestRefEq_SameHandleAfterAssignment(t *testing.T) {
	obj := NewObject()
	obj.Set("k", Sourced(IntValue(1)))
	v1 := ObjectValueOf(obj)
	v2 := v1 // assignment copies the handle, not the storage (spec.md §4.2)
	if !RefEq(v1, v2) {
		t.Error("copying an object Value should preserve ref-equality to the same backing store")
	}
	obj.Set("k", Sourced(IntValue(2)))
	got, _ := v2.ObjectV.Get("k")
	if got.V.IntV != 2 {
		t.Error("mutating through one handle should be visible through the other (shared backing storage)")
	}
}

func TestObjectValue_KeysStaySorted(t *testing.T) {
	obj := NewObject()
	obj.Set("z", Sourced(NullValue()))
	obj.Set("a", Sourced(NullValue()))
	obj.Set("m", Sourced(NullValue()))
	got := obj.Keys()
	want := []string{"a", "m", "z"}
	for i, k := range want {
		if got[i] != k {
			t.Errorf("Keys()[%d] = %q, want %q (got %v)", i, got[i], k, got)
		}
	}
}

package evaluator

import (
	"unicode/utf8"

	"github.com/lumen-lang/lumen/internal/ast"
)

// evalExpr evaluates an expression node to a SourcedValue (spec.md §4.4).
func (e *Evaluator) evalExpr(scopes *ScopeStack, expr ast.Expr) (SourcedValue, error) {
	switch n := expr.(type) {
	case *ast.NullLit:
		return Sourced(NullValue()), nil
	case *ast.BoolLit:
		return Sourced(BoolValue(n.Value)), nil
	case *ast.IntLit:
		return Sourced(IntValue(n.Value)), nil
	case *ast.StrLit:
		return e.evalStrLit(scopes, n)
	case *ast.Var:
		v, ok := scopes.Get(n.Name)
		if !ok {
			return SourcedValue{}, AtLoc(n.Loc.Line, n.Loc.Column, errUndefined(n.Name))
		}
		return v, nil
	case *ast.BinaryOp:
		return e.evalBinaryOp(scopes, n)
	case *ast.ListLit:
		return e.evalListLit(scopes, n)
	case *ast.ObjectLit:
		return e.evalObjectLit(scopes, n)
	case *ast.Index:
		return e.evalIndex(scopes, n)
	case *ast.RangeIndex:
		return e.evalRangeIndex(scopes, n)
	case *ast.Range:
		return e.evalRange(scopes, n)
	case *ast.Prop:
		return e.evalProp(scopes, n)
	case *ast.FuncLit:
		name := ""
		_ = name
		return Sourced(FuncValueOf(&FuncValue{
			Params:      n.Params,
			CollectArgs: n.CollectArgs,
			Body:        n.Body,
			Closure:     scopes,
		})), nil
	case *ast.Call:
		return e.evalCall(scopes, n)
	default:
		return SourcedValue{}, errDev(e.Ctx.ExecutionID, "unhandled expression node")
	}
}

func (e *Evaluator) evalStrLit(scopes *ScopeStack, s *ast.StrLit) (SourcedValue, error) {
	if !s.IsInterp() {
		return Sourced(StrValue(s.Segments[0])), nil
	}
	return e.evalInterpolatedStr(scopes, s)
}

var binOpSymbol = map[string]string{
	"+": "+", "-": "-", "*": "*", "/": "/", "%": "%",
	"==": "==", "!=": "!=", "<": "<", "<=": "<=", ">": ">", ">=": ">=",
	"&&": "&&", "||": "||", "===": "===", "!==": "!==",
}

func (e *Evaluator) evalBinaryOp(scopes *ScopeStack, b *ast.BinaryOp) (SourcedValue, error) {
	lhs, err := e.evalExpr(scopes, b.LHS)
	if err != nil {
		return SourcedValue{}, err
	}
	rhs, err := e.evalExpr(scopes, b.RHS)
	if err != nil {
		return SourcedValue{}, err
	}

	l, r := lhs.V, rhs.V
	loc := b.OpLoc

	switch b.Op {
	case "==":
		if l.Kind != r.Kind {
			return SourcedValue{}, AtLoc(loc.Line, loc.Column, errInvalidOpTypes("==", l.Kind.TypeName(), r.Kind.TypeName()))
		}
		return Sourced(BoolValue(DeepEqual(l, r))), nil
	case "!=":
		if l.Kind != r.Kind {
			return SourcedValue{}, AtLoc(loc.Line, loc.Column, errInvalidOpTypes("!=", l.Kind.TypeName(), r.Kind.TypeName()))
		}
		return Sourced(BoolValue(!DeepEqual(l, r))), nil
	case "===":
		return Sourced(BoolValue(refOrDeepEqual(l, r))), nil
	case "!==":
		return Sourced(BoolValue(!refOrDeepEqual(l, r))), nil
	case "+":
		return e.evalPlus(l, r, loc)
	case "-", "*", "/", "%":
		if l.Kind != KInt || r.Kind != KInt {
			return SourcedValue{}, AtLoc(loc.Line, loc.Column, errInvalidOpTypes(b.Op, l.Kind.TypeName(), r.Kind.TypeName()))
		}
		return e.evalIntArith(b.Op, l.IntV, r.IntV, loc)
	case "&&":
		if l.Kind != KBool || r.Kind != KBool {
			return SourcedValue{}, AtLoc(loc.Line, loc.Column, errInvalidOpTypes("&&", l.Kind.TypeName(), r.Kind.TypeName()))
		}
		return Sourced(BoolValue(l.BoolV && r.BoolV)), nil
	case "||":
		if l.Kind != KBool || r.Kind != KBool {
			return SourcedValue{}, AtLoc(loc.Line, loc.Column, errInvalidOpTypes("||", l.Kind.TypeName(), r.Kind.TypeName()))
		}
		return Sourced(BoolValue(l.BoolV || r.BoolV)), nil
	case "<", "<=", ">", ">=":
		if l.Kind != KInt || r.Kind != KInt {
			return SourcedValue{}, AtLoc(loc.Line, loc.Column, errInvalidOpTypes(b.Op, l.Kind.TypeName(), r.Kind.TypeName()))
		}
		return Sourced(BoolValue(intCompare(b.Op, l.IntV, r.IntV))), nil
	default:
		return SourcedValue{}, AtLoc(loc.Line, loc.Column, errInvalidOpTypes(b.Op, l.Kind.TypeName(), r.Kind.TypeName()))
	}
}

func refOrDeepEqual(l, r Value) bool {
	switch l.Kind {
	case KList, KObject, KFunc:
		if l.Kind == r.Kind && RefEq(l, r) {
			return true
		}
	}
	return DeepEqual(l, r)
}

func (e *Evaluator) evalPlus(l, r Value, loc ast.Loc) (SourcedValue, error) {
	switch {
	case l.Kind == KInt && r.Kind == KInt:
		return e.evalIntArith("+", l.IntV, r.IntV, loc)
	case l.Kind == KStr && r.Kind == KStr:
		return Sourced(StrValue(l.StrV + r.StrV)), nil
	case l.Kind == KList && r.Kind == KList:
		items := make([]SourcedValue, 0, len(l.ListV.Items)+len(r.ListV.Items))
		items = append(items, l.ListV.Items...)
		items = append(items, r.ListV.Items...)
		return Sourced(ListValueOf(items)), nil
	default:
		return SourcedValue{}, AtLoc(loc.Line, loc.Column, errInvalidOpTypes("+", l.Kind.TypeName(), r.Kind.TypeName()))
	}
}

func (e *Evaluator) evalIntArith(op string, l, r int64, loc ast.Loc) (SourcedValue, error) {
	var result int64
	var ok bool
	switch op {
	case "+":
		result, ok = checkedAdd(l, r)
	case "-":
		result, ok = checkedSub(l, r)
	case "*":
		result, ok = checkedMul(l, r)
	case "/":
		result, ok = checkedDiv(l, r)
	case "%":
		if r == 0 {
			return SourcedValue{}, AtLoc(loc.Line, loc.Column, errIntOverflow(op, l, r))
		}
		return Sourced(IntValue(l % r)), nil
	}
	if !ok {
		return SourcedValue{}, AtLoc(loc.Line, loc.Column, errIntOverflow(op, l, r))
	}
	return Sourced(IntValue(result)), nil
}

func intCompare(op string, l, r int64) bool {
	switch op {
	case "<":
		return l < r
	case "<=":
		return l <= r
	case ">":
		return l > r
	case ">=":
		return l >= r
	}
	return false
}

func (e *Evaluator) evalListLit(scopes *ScopeStack, list *ast.ListLit) (SourcedValue, error) {
	loc := list.Loc
	if list.Collect {
		return SourcedValue{}, AtLoc(loc.Line, loc.Column, errListCollectOutsideDestructure())
	}
	var items []SourcedValue
	for _, item := range list.Items {
		v, err := e.evalExpr(scopes, item.Expr)
		if err != nil {
			return SourcedValue{}, err
		}
		if item.IsSpread {
			if v.V.Kind != KList {
				return SourcedValue{}, AtLoc(loc.Line, loc.Column, errSpreadNonListInList(v.V.Kind.TypeName()))
			}
			items = append(items, v.V.ListV.Items...)
			continue
		}
		items = append(items, v)
	}
	return Sourced(ListValueOf(items)), nil
}

func (e *Evaluator) evalObjectLit(scopes *ScopeStack, obj *ast.ObjectLit) (SourcedValue, error) {
	loc := obj.Loc
	result := NewObject()
	for _, item := range obj.Props {
		if item.Collect {
			return SourcedValue{}, AtLoc(loc.Line, loc.Column, errObjectCollectOutsideDestructure())
		}
		if item.IsPair() {
			nameVal, err := e.evalExpr(scopes, item.Name)
			if err != nil {
				return SourcedValue{}, err
			}
			key, err := assertStrKey(nameVal.V)
			if err != nil {
				return SourcedValue{}, AtLoc(loc.Line, loc.Column, err)
			}
			v, err := e.evalExpr(scopes, item.Value)
			if err != nil {
				return SourcedValue{}, err
			}
			result.Set(key, Sourced(v.V))
			continue
		}
		if item.IsSpread {
			v, err := e.evalExpr(scopes, item.Expr)
			if err != nil {
				return SourcedValue{}, err
			}
			if v.V.Kind != KObject {
				return SourcedValue{}, AtLoc(loc.Line, loc.Column, errSpreadNonObjectInObject(v.V.Kind.TypeName()))
			}
			for _, k := range v.V.ObjectV.Keys() {
				pv, _ := v.V.ObjectV.Get(k)
				result.Set(k, Sourced(pv.V))
			}
			continue
		}
		// Single{Var(n)} shorthand: n -> current value of n.
		varExpr, ok := item.Expr.(*ast.Var)
		if !ok {
			return SourcedValue{}, AtLoc(loc.Line, loc.Column, errObjectPropShorthandNotVar())
		}
		v, err := e.evalExpr(scopes, varExpr)
		if err != nil {
			return SourcedValue{}, err
		}
		result.Set(varExpr.Name, Sourced(v.V))
	}
	return Sourced(ObjectValueOf(result)), nil
}

func (e *Evaluator) evalIndex(scopes *ScopeStack, ix *ast.Index) (SourcedValue, error) {
	src, err := e.evalExpr(scopes, ix.Src)
	if err != nil {
		return SourcedValue{}, err
	}
	idx, err := e.evalExpr(scopes, ix.Idx)
	if err != nil {
		return SourcedValue{}, err
	}
	loc := ix.Loc

	switch src.V.Kind {
	case KStr:
		if idx.V.Kind != KInt {
			return SourcedValue{}, AtLoc(loc.Line, loc.Column, errValueNotIndexable())
		}
		if idx.V.IntV < 0 {
			return SourcedValue{}, AtLoc(loc.Line, loc.Column, errNegativeIndex())
		}
		i := int(idx.V.IntV)
		if i >= len(src.V.StrV) {
			return SourcedValue{}, AtLoc(loc.Line, loc.Column, errOutOfStringBounds(i))
		}
		return Sourced(StrValue(string(src.V.StrV[i]))), nil
	case KList:
		if idx.V.Kind != KInt {
			return SourcedValue{}, AtLoc(loc.Line, loc.Column, errValueNotIndexable())
		}
		if idx.V.IntV < 0 {
			return SourcedValue{}, AtLoc(loc.Line, loc.Column, errNegativeIndex())
		}
		i := int(idx.V.IntV)
		if i >= len(src.V.ListV.Items) {
			return SourcedValue{}, AtLoc(loc.Line, loc.Column, errOutOfListBounds(i))
		}
		return src.V.ListV.Items[i], nil
	case KObject:
		if idx.V.Kind != KStr {
			return SourcedValue{}, AtLoc(loc.Line, loc.Column, errValueNotIndexable())
		}
		v, ok := src.V.ObjectV.Get(idx.V.StrV)
		if !ok {
			return SourcedValue{}, AtLoc(loc.Line, loc.Column, errPropNotFound(idx.V.StrV))
		}
		return SourcedFrom(v.V, src.V), nil
	default:
		return SourcedValue{}, AtLoc(loc.Line, loc.Column, errValueNotIndexable())
	}
}

func (e *Evaluator) evalRangeIndex(scopes *ScopeStack, rx *ast.RangeIndex) (SourcedValue, error) {
	src, err := e.evalExpr(scopes, rx.Src)
	if err != nil {
		return SourcedValue{}, err
	}
	loc := rx.Loc

	var length int
	switch src.V.Kind {
	case KStr:
		length = len(src.V.StrV)
	case KList:
		length = len(src.V.ListV.Items)
	default:
		return SourcedValue{}, AtLoc(loc.Line, loc.Column, errValueNotRangeIndexable())
	}

	start := 0
	if rx.Start != nil {
		sv, err := e.evalExpr(scopes, rx.Start)
		if err != nil {
			return SourcedValue{}, err
		}
		start = int(sv.V.IntV)
	}
	end := length
	if rx.End != nil {
		ev, err := e.evalExpr(scopes, rx.End)
		if err != nil {
			return SourcedValue{}, err
		}
		end = int(ev.V.IntV)
	}

	if start < 0 || end > length || start > end {
		if src.V.Kind == KStr {
			return SourcedValue{}, AtLoc(loc.Line, loc.Column, errRangeOutOfStringBounds(start, end))
		}
		return SourcedValue{}, AtLoc(loc.Line, loc.Column, errRangeOutOfListBounds(start, end))
	}

	if src.V.Kind == KStr {
		return Sourced(StrValue(src.V.StrV[start:end])), nil
	}
	sliced := append([]SourcedValue(nil), src.V.ListV.Items[start:end]...)
	return Sourced(ListValueOf(sliced)), nil
}

func (e *Evaluator) evalRange(scopes *ScopeStack, rg *ast.Range) (SourcedValue, error) {
	sv, err := e.evalExpr(scopes, rg.Start)
	if err != nil {
		return SourcedValue{}, err
	}
	ev, err := e.evalExpr(scopes, rg.End)
	if err != nil {
		return SourcedValue{}, err
	}
	loc := rg.Loc
	if sv.V.Kind != KInt || ev.V.Kind != KInt {
		return SourcedValue{}, AtLoc(loc.Line, loc.Column, errIncorrectType("range bound", "int", pickWrongType(sv.V, ev.V)))
	}
	var items []SourcedValue
	for i := sv.V.IntV; i < ev.V.IntV; i++ {
		items = append(items, Sourced(IntValue(i)))
	}
	return Sourced(ListValueOf(items)), nil
}

func pickWrongType(a, b Value) string {
	if a.Kind != KInt {
		return a.Kind.TypeName()
	}
	return b.Kind.TypeName()
}

func (e *Evaluator) evalProp(scopes *ScopeStack, p *ast.Prop) (SourcedValue, error) {
	src, err := e.evalExpr(scopes, p.Src)
	if err != nil {
		return SourcedValue{}, err
	}
	loc := p.Loc

	// Plain "." dispatches to the ordinary property path for objects, and
	// falls back to the type-namespace path for every other kind, so
	// "(1).type()" resolves without needing the explicit ".:" form
	// (spec.md §4.6's invocation sugar); ".:" always forces the
	// type-namespace path, even on an object.
	if p.TypeProp || src.V.Kind != KObject {
		v, err := e.Ctx.lookupTypeFunc(src.V, p.Name)
		if err != nil {
			return SourcedValue{}, AtLoc(loc.Line, loc.Column, err)
		}
		return v, nil
	}
	v, ok := src.V.ObjectV.Get(p.Name)
	if !ok {
		return SourcedValue{}, AtLoc(loc.Line, loc.Column, errPropNotFound(p.Name))
	}
	return SourcedFrom(v.V, src.V), nil
}

func (e *Evaluator) evalCall(scopes *ScopeStack, call *ast.Call) (SourcedValue, error) {
	loc := call.Loc

	var args []SourcedValue
	for _, item := range call.Args {
		v, err := e.evalExpr(scopes, item.Expr)
		if err != nil {
			return SourcedValue{}, err
		}
		if item.IsSpread {
			if v.V.Kind != KList {
				return SourcedValue{}, AtLoc(loc.Line, loc.Column, errSpreadNonListInList(v.V.Kind.TypeName()))
			}
			args = append(args, v.V.ListV.Items...)
			continue
		}
		args = append(args, v)
	}

	callee, err := e.evalExpr(scopes, call.Func)
	if err != nil {
		return SourcedValue{}, err
	}

	if callee.V.Kind != KFunc {
		return SourcedValue{}, AtLoc(loc.Line, loc.Column, errCannotCallNonFunc(callee.V.Kind.TypeName()))
	}

	fv := callee.V.FuncV
	if fv.IsBuiltin() {
		result, err := fv.Builtin(e.Ctx, callee.Source, args)
		if err != nil {
			return SourcedValue{}, AtLoc(loc.Line, loc.Column, err)
		}
		return result, nil
	}

	return e.callUserFunc(fv, callee.Source, args, loc)
}

func (e *Evaluator) callUserFunc(fv *FuncValue, source *Value, args []SourcedValue, loc ast.Loc) (SourcedValue, error) {
	leave, err := e.Ctx.enterCall()
	if err != nil {
		return SourcedValue{}, AtLoc(loc.Line, loc.Column, err)
	}
	defer leave()

	nParams := len(fv.Params)
	if fv.CollectArgs {
		if len(args) < nParams-1 {
			return SourcedValue{}, AtLoc(loc.Line, loc.Column, errTooFewArgs(nParams-1, len(args)))
		}
	} else if len(args) != nParams {
		return SourcedValue{}, AtLoc(loc.Line, loc.Column, errArgNumMismatch(nParams, len(args)))
	}

	callScope := fv.Closure.Push()

	names := newNamesInBinding()
	for i, param := range fv.Params {
		isLast := i == nParams-1
		if fv.CollectArgs && isLast {
			rest := append([]SourcedValue(nil), args[i:]...)
			if err := e.bind(callScope, param, Sourced(ListValueOf(rest)), Declaration, names); err != nil {
				return SourcedValue{}, err
			}
			break
		}
		if err := e.bind(callScope, param, args[i], Declaration, names); err != nil {
			return SourcedValue{}, err
		}
	}

	if source != nil {
		if err := callScope.Declare("this", loc.Line, loc.Column, Sourced(*source)); err != nil {
			return SourcedValue{}, AtLoc(loc.Line, loc.Column, err)
		}
	}

	esc, err := e.evalBlockBody(callScope, fv.Body)
	if err != nil {
		return SourcedValue{}, err
	}
	switch esc.Kind {
	case EscNone:
		return Sourced(NullValue()), nil
	case EscReturn:
		return esc.Value, nil
	case EscBreak:
		return SourcedValue{}, AtLoc(esc.Loc.Line, esc.Loc.Column, errBreakOutsideLoop())
	case EscContinue:
		return SourcedValue{}, AtLoc(esc.Loc.Line, esc.Loc.Column, errContinueOutsideLoop())
	default:
		return SourcedValue{}, errDev(e.Ctx.ExecutionID, "unhandled escape kind")
	}
}

func validUTF8(s string) bool { return utf8.ValidString(s) }

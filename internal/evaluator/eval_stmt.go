package evaluator

import "github.com/lumen-lang/lumen/internal/ast"

// evalStmt evaluates a statement to an Escape (spec.md §4.5).
func (e *Evaluator) evalStmt(scopes *ScopeStack, stmt ast.Stmt) (Escape, error) {
	switch n := stmt.(type) {
	case *ast.Block:
		return e.evalBlock(scopes, n)
	case *ast.ExprStmt:
		if _, err := e.evalExpr(scopes, n.Expr); err != nil {
			return noEscape, err
		}
		return noEscape, nil
	case *ast.Declare:
		return e.evalDeclare(scopes, n)
	case *ast.Assign:
		return e.evalAssign(scopes, n)
	case *ast.OpAssign:
		return e.evalOpAssign(scopes, n)
	case *ast.If:
		return e.evalIf(scopes, n)
	case *ast.While:
		return e.evalWhile(scopes, n)
	case *ast.For:
		return e.evalFor(scopes, n)
	case *ast.Break:
		return Escape{Kind: EscBreak, Loc: n.Loc}, nil
	case *ast.Continue:
		return Escape{Kind: EscContinue, Loc: n.Loc}, nil
	case *ast.FuncDecl:
		return e.evalFuncDecl(scopes, n)
	case *ast.Return:
		return e.evalReturn(scopes, n)
	default:
		return noEscape, errDev(e.Ctx.ExecutionID, "unhandled statement node")
	}
}

// evalBlockBody runs a block's statements directly in scopes, without
// pushing a new frame — used for a function call body, where the caller
// already pushed the frame that holds its bound parameters.
func (e *Evaluator) evalBlockBody(scopes *ScopeStack, block *ast.Block) (Escape, error) {
	for _, stmt := range block.Stmts {
		esc, err := e.evalStmt(scopes, stmt)
		if err != nil {
			return noEscape, err
		}
		if esc.Kind != EscNone {
			return esc, nil
		}
	}
	return noEscape, nil
}

func (e *Evaluator) evalBlock(scopes *ScopeStack, block *ast.Block) (Escape, error) {
	inner := scopes.Push()
	return e.evalBlockBody(inner, block)
}

func (e *Evaluator) evalDeclare(scopes *ScopeStack, d *ast.Declare) (Escape, error) {
	rhs, err := e.evalExpr(scopes, d.RHS)
	if err != nil {
		return noEscape, err
	}
	if err := e.Bind(scopes, d.LHS, rhs, Declaration); err != nil {
		return noEscape, err
	}
	return noEscape, nil
}

func (e *Evaluator) evalAssign(scopes *ScopeStack, a *ast.Assign) (Escape, error) {
	rhs, err := e.evalExpr(scopes, a.RHS)
	if err != nil {
		return noEscape, err
	}
	if err := e.Bind(scopes, a.LHS, rhs, Assignment); err != nil {
		return noEscape, err
	}
	return noEscape, nil
}

// evalOpAssign reads the current LHS value, applies the binary op, then
// writes the result back (spec.md §4.5). Range-index, object-destructure
// and list-destructure LHS are rejected with dedicated errors; an
// undefined name/index/prop is rejected too rather than silently creating
// a binding.
func (e *Evaluator) evalOpAssign(scopes *ScopeStack, oa *ast.OpAssign) (Escape, error) {
	rhs, err := e.evalExpr(scopes, oa.RHS)
	if err != nil {
		return noEscape, err
	}
	loc := oa.OpLoc

	switch lhs := oa.LHS.(type) {
	case *ast.Var:
		cur, ok := scopes.Get(lhs.Name)
		if !ok {
			return noEscape, AtLoc(loc.Line, loc.Column, errOpOnUndefinedIndex(lhs.Name))
		}
		result, err := e.applyOp(oa.Op, cur.V, rhs.V, loc)
		if err != nil {
			return noEscape, err
		}
		scopes.Assign(lhs.Name, Sourced(result))
		return noEscape, nil

	case *ast.Index:
		src, err := e.evalExpr(scopes, lhs.Src)
		if err != nil {
			return noEscape, err
		}
		idx, err := e.evalExpr(scopes, lhs.Idx)
		if err != nil {
			return noEscape, err
		}
		switch src.V.Kind {
		case KList:
			if idx.V.Kind != KInt || idx.V.IntV < 0 || int(idx.V.IntV) >= len(src.V.ListV.Items) {
				return noEscape, AtLoc(loc.Line, loc.Column, errOpOnUndefinedIndex(indexDescr(idx.V)))
			}
			i := int(idx.V.IntV)
			result, err := e.applyOp(oa.Op, src.V.ListV.Items[i].V, rhs.V, loc)
			if err != nil {
				return noEscape, err
			}
			src.V.ListV.Items[i] = Sourced(result)
			return noEscape, nil
		case KObject:
			if idx.V.Kind != KStr {
				return noEscape, AtLoc(loc.Line, loc.Column, errOpOnUndefinedProp(indexDescr(idx.V)))
			}
			cur, ok := src.V.ObjectV.Get(idx.V.StrV)
			if !ok {
				return noEscape, AtLoc(loc.Line, loc.Column, errOpOnUndefinedProp(idx.V.StrV))
			}
			result, err := e.applyOp(oa.Op, cur.V, rhs.V, loc)
			if err != nil {
				return noEscape, err
			}
			src.V.ObjectV.Set(idx.V.StrV, Sourced(result))
			return noEscape, nil
		default:
			return noEscape, AtLoc(loc.Line, loc.Column, errValueNotIndexAssignable())
		}

	case *ast.Prop:
		if lhs.TypeProp {
			return noEscape, AtLoc(loc.Line, loc.Column, errAssignToTypeProp())
		}
		src, err := e.evalExpr(scopes, lhs.Src)
		if err != nil {
			return noEscape, err
		}
		if src.V.Kind != KObject {
			return noEscape, AtLoc(loc.Line, loc.Column, errPropAccessOnNonObject(src.V.Kind.TypeName()))
		}
		cur, ok := src.V.ObjectV.Get(lhs.Name)
		if !ok {
			return noEscape, AtLoc(loc.Line, loc.Column, errOpOnUndefinedProp(lhs.Name))
		}
		result, err := e.applyOp(oa.Op, cur.V, rhs.V, loc)
		if err != nil {
			return noEscape, err
		}
		src.V.ObjectV.Set(lhs.Name, Sourced(result))
		return noEscape, nil

	case *ast.RangeIndex:
		return noEscape, AtLoc(loc.Line, loc.Column, errOpOnRangeIndex())
	case *ast.ObjectLit:
		return noEscape, AtLoc(loc.Line, loc.Column, errOpOnObjectDestructure())
	case *ast.ListLit:
		return noEscape, AtLoc(loc.Line, loc.Column, errOpOnListDestructure())
	default:
		return noEscape, AtLoc(loc.Line, loc.Column, errInvalidBindTarget(bindTargetDescr(oa.LHS)))
	}
}

func indexDescr(v Value) string {
	if v.Kind == KStr {
		return v.StrV
	}
	return v.Kind.TypeName()
}

// applyOp applies a binary operator to two already-evaluated operands
// (spec.md §4.5 OpAssign) — the same dispatch evalBinaryOp uses, but
// without re-evaluating LHS/RHS expressions, since the current LHS value
// was already read from its binding.
func (e *Evaluator) applyOp(op string, l, r Value, loc ast.Loc) (Value, error) {
	switch op {
	case "+":
		sv, err := e.evalPlus(l, r, loc)
		return sv.V, err
	case "-", "*", "/", "%":
		if l.Kind != KInt || r.Kind != KInt {
			return Value{}, AtLoc(loc.Line, loc.Column, errInvalidOpTypes(op, l.Kind.TypeName(), r.Kind.TypeName()))
		}
		sv, err := e.evalIntArith(op, l.IntV, r.IntV, loc)
		return sv.V, err
	default:
		return Value{}, AtLoc(loc.Line, loc.Column, errInvalidOpTypes(op, l.Kind.TypeName(), r.Kind.TypeName()))
	}
}

func (e *Evaluator) evalIf(scopes *ScopeStack, ifs *ast.If) (Escape, error) {
	for _, branch := range ifs.Branches {
		cond, err := e.evalExpr(scopes, branch.Cond)
		if err != nil {
			return noEscape, err
		}
		if cond.V.Kind != KBool {
			loc := branch.Cond.Location()
			return noEscape, AtLoc(loc.Line, loc.Column, errIncorrectType("if condition", "bool", cond.V.Kind.TypeName()))
		}
		if cond.V.BoolV {
			return e.evalBlock(scopes, branch.Body)
		}
	}
	if ifs.Else != nil {
		return e.evalBlock(scopes, ifs.Else)
	}
	return noEscape, nil
}

func (e *Evaluator) evalWhile(scopes *ScopeStack, w *ast.While) (Escape, error) {
	for {
		cond, err := e.evalExpr(scopes, w.Cond)
		if err != nil {
			return noEscape, err
		}
		if cond.V.Kind != KBool {
			loc := w.Cond.Location()
			return noEscape, AtLoc(loc.Line, loc.Column, errIncorrectType("while condition", "bool", cond.V.Kind.TypeName()))
		}
		if !cond.V.BoolV {
			return noEscape, nil
		}
		esc, err := e.evalBlock(scopes, w.Body)
		if err != nil {
			return noEscape, err
		}
		switch esc.Kind {
		case EscBreak:
			return noEscape, nil
		case EscReturn:
			return esc, nil
		case EscContinue, EscNone:
			continue
		}
	}
}

func (e *Evaluator) evalFor(scopes *ScopeStack, f *ast.For) (Escape, error) {
	iter, err := e.evalExpr(scopes, f.Iter)
	if err != nil {
		return noEscape, err
	}

	pairs, err := iterPairs(iter.V)
	if err != nil {
		loc := f.Iter.Location()
		return noEscape, AtLoc(loc.Line, loc.Column, err)
	}

	for _, pair := range pairs {
		inner := scopes.Push()
		names := newNamesInBinding()
		if err := e.bind(inner, f.LHS, Sourced(ListValueOf(pair)), Declaration, names); err != nil {
			return noEscape, err
		}
		esc, err := e.evalBlockBody(inner, f.Body)
		if err != nil {
			return noEscape, err
		}
		switch esc.Kind {
		case EscBreak:
			return noEscape, nil
		case EscReturn:
			return esc, nil
		case EscContinue, EscNone:
			continue
		}
	}
	return noEscape, nil
}

// iterPairs converts a for-loop iterable to (index/key, value) pairs
// (spec.md §4.5): string -> (int index, one-byte string); list -> (int
// index, element); object -> (string key, value) in key-sorted order.
func iterPairs(v Value) ([][]SourcedValue, error) {
	switch v.Kind {
	case KStr:
		pairs := make([][]SourcedValue, 0, len(v.StrV))
		for i := 0; i < len(v.StrV); i++ {
			pairs = append(pairs, []SourcedValue{Sourced(IntValue(int64(i))), Sourced(StrValue(string(v.StrV[i])))})
		}
		return pairs, nil
	case KList:
		pairs := make([][]SourcedValue, 0, len(v.ListV.Items))
		for i, item := range v.ListV.Items {
			pairs = append(pairs, []SourcedValue{Sourced(IntValue(int64(i))), item})
		}
		return pairs, nil
	case KObject:
		keys := v.ObjectV.Keys()
		pairs := make([][]SourcedValue, 0, len(keys))
		for _, k := range keys {
			val, _ := v.ObjectV.Get(k)
			pairs = append(pairs, []SourcedValue{Sourced(StrValue(k)), val})
		}
		return pairs, nil
	default:
		return nil, errForIterNotIterable()
	}
}

func (e *Evaluator) evalFuncDecl(scopes *ScopeStack, fd *ast.FuncDecl) (Escape, error) {
	fv := &FuncValue{
		Name:        &fd.Name,
		Params:      fd.Params,
		CollectArgs: fd.CollectArgs,
		Body:        fd.Body,
		Closure:     scopes,
	}
	if err := scopes.Declare(fd.Name, fd.NameLoc.Line, fd.NameLoc.Column, Sourced(FuncValueOf(fv))); err != nil {
		return noEscape, AtLoc(fd.NameLoc.Line, fd.NameLoc.Column, err)
	}
	return noEscape, nil
}

func (e *Evaluator) evalReturn(scopes *ScopeStack, r *ast.Return) (Escape, error) {
	if r.Expr == nil {
		return Escape{Kind: EscReturn, Loc: r.Loc, Value: Sourced(NullValue())}, nil
	}
	v, err := e.evalExpr(scopes, r.Expr)
	if err != nil {
		return noEscape, err
	}
	return Escape{Kind: EscReturn, Loc: r.Loc, Value: v}, nil
}

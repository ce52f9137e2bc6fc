package evaluator

import (
	"github.com/lumen-lang/lumen/internal/ast"
)

// BindType selects whether a binder writes a fresh name (Declaration) or
// overwrites an existing one (Assignment) — spec.md §4.3.
type BindType int

const (
	Declaration BindType = iota
	Assignment
)

// namesInBinding enforces spec.md invariant 3 (no name repeated within one
// destructuring) across a single top-level bind call.
type namesInBinding struct {
	seen map[string]bool
}

func newNamesInBinding() *namesInBinding {
	return &namesInBinding{seen: make(map[string]bool)}
}

func (n *namesInBinding) check(name string) error {
	if name == "_" {
		return nil
	}
	if n.seen[name] {
		return errAlreadyInBinding(name)
	}
	n.seen[name] = true
	return nil
}

// Bind destructures rhs into lhs, declaring or assigning names per bt
// (spec.md §4.3). It is the single entry point; it owns the
// namesInBinding set for the whole call.
func (e *Evaluator) Bind(scopes *ScopeStack, lhs ast.Expr, rhs SourcedValue, bt BindType) error {
	return e.bind(scopes, lhs, rhs, bt, newNamesInBinding())
}

func (e *Evaluator) bind(scopes *ScopeStack, lhs ast.Expr, rhs SourcedValue, bt BindType, names *namesInBinding) error {
	switch n := lhs.(type) {
	case *ast.Var:
		return e.bindVar(scopes, n, rhs, bt, names)
	case *ast.Index:
		return e.bindIndex(scopes, n, rhs, names)
	case *ast.RangeIndex:
		return e.bindRangeIndex(scopes, n, rhs, names)
	case *ast.Prop:
		return e.bindProp(scopes, n, rhs, names)
	case *ast.ObjectLit:
		return e.bindObject(scopes, n, rhs, bt, names)
	case *ast.ListLit:
		return e.bindList(scopes, n, rhs, bt, names)
	default:
		return AtLoc(lhs.Location().Line, lhs.Location().Column, errInvalidBindTarget(bindTargetDescr(lhs)))
	}
}

func bindTargetDescr(e ast.Expr) string {
	switch e.(type) {
	case *ast.NullLit:
		return "a 'null' literal"
	case *ast.BoolLit:
		return "a 'bool' literal"
	case *ast.IntLit:
		return "an 'int' literal"
	case *ast.StrLit:
		return "a 'string' literal"
	case *ast.BinaryOp:
		return "a binary operation"
	case *ast.Range:
		return "a range"
	case *ast.FuncLit:
		return "a function literal"
	case *ast.Call:
		return "a call expression"
	default:
		return "this expression"
	}
}

func (e *Evaluator) bindVar(scopes *ScopeStack, v *ast.Var, rhs SourcedValue, bt BindType, names *namesInBinding) error {
	if err := names.check(v.Name); err != nil {
		return AtLoc(v.Loc.Line, v.Loc.Column, err)
	}
	if v.Name == "_" {
		return nil
	}
	loc := v.Loc
	switch bt {
	case Declaration:
		if err := scopes.Declare(v.Name, loc.Line, loc.Column, SourcedValue{V: CopyForStore(rhs.V)}); err != nil {
			return AtLoc(loc.Line, loc.Column, err)
		}
		return nil
	default:
		if ok := scopes.Assign(v.Name, SourcedValue{V: CopyForStore(rhs.V)}); !ok {
			return AtLoc(loc.Line, loc.Column, errUndefined(v.Name))
		}
		return nil
	}
}

func (e *Evaluator) bindIndex(scopes *ScopeStack, ix *ast.Index, rhs SourcedValue, names *namesInBinding) error {
	src, err := e.evalExpr(scopes, ix.Src)
	if err != nil {
		return err
	}
	idx, err := e.evalExpr(scopes, ix.Idx)
	if err != nil {
		return err
	}
	loc := ix.Loc

	switch src.V.Kind {
	case KList:
		if idx.V.Kind != KInt {
			return AtLoc(loc.Line, loc.Column, errValueNotIndexAssignable())
		}
		i := idx.V.IntV
		if i < 0 {
			return AtLoc(loc.Line, loc.Column, errNegativeIndex())
		}
		if int(i) >= len(src.V.ListV.Items) {
			return AtLoc(loc.Line, loc.Column, errOutOfListBounds(int(i)))
		}
		src.V.ListV.Items[i] = SourcedValue{V: CopyForStore(rhs.V)}
		return nil
	case KObject:
		if idx.V.Kind != KStr {
			return AtLoc(loc.Line, loc.Column, errValueNotIndexAssignable())
		}
		src.V.ObjectV.Set(idx.V.StrV, SourcedValue{V: CopyForStore(rhs.V)})
		return nil
	default:
		return AtLoc(loc.Line, loc.Column, errValueNotIndexAssignable())
	}
}

func (e *Evaluator) bindRangeIndex(scopes *ScopeStack, rx *ast.RangeIndex, rhs SourcedValue, names *namesInBinding) error {
	src, err := e.evalExpr(scopes, rx.Src)
	if err != nil {
		return err
	}
	loc := rx.Loc
	if src.V.Kind != KList {
		return AtLoc(loc.Line, loc.Column, errValueNotRangeIndexAssignable())
	}
	listLen := len(src.V.ListV.Items)

	start := 0
	if rx.Start != nil {
		sv, err := e.evalExpr(scopes, rx.Start)
		if err != nil {
			return err
		}
		start = int(sv.V.IntV)
	}
	end := listLen
	if rx.End != nil {
		ev, err := e.evalExpr(scopes, rx.End)
		if err != nil {
			return err
		}
		end = int(ev.V.IntV)
	}
	if start > listLen {
		return AtLoc(loc.Line, loc.Column, errRangeStartOutOfListBounds(start, listLen))
	}
	if start >= end {
		return AtLoc(loc.Line, loc.Column, errRangeStartNotBeforeEnd(start, end))
	}
	if end > listLen {
		return AtLoc(loc.Line, loc.Column, errRangeEndOutOfListBounds(end, listLen))
	}
	rangeLen := end - start

	var repl []SourcedValue
	switch rhs.V.Kind {
	case KList:
		repl = rhs.V.ListV.Items
	case KStr:
		for i := 0; i < len(rhs.V.StrV); i++ {
			repl = append(repl, Sourced(StrValue(string(rhs.V.StrV[i]))))
		}
	default:
		return AtLoc(loc.Line, loc.Column, errValueNotRangeIndexAssignable())
	}

	if len(repl) != rangeLen {
		return AtLoc(loc.Line, loc.Column, errRangeIndexItemMismatch(rangeLen, len(repl)))
	}

	items := src.V.ListV.Items
	newItems := make([]SourcedValue, 0, len(items)-rangeLen+len(repl))
	newItems = append(newItems, items[:start]...)
	for _, v := range repl {
		newItems = append(newItems, SourcedValue{V: CopyForStore(v.V)})
	}
	newItems = append(newItems, items[end:]...)
	src.V.ListV.Items = newItems
	return nil
}

func (e *Evaluator) bindProp(scopes *ScopeStack, p *ast.Prop, rhs SourcedValue, names *namesInBinding) error {
	loc := p.Loc
	if p.TypeProp {
		return AtLoc(loc.Line, loc.Column, errAssignToTypeProp())
	}
	src, err := e.evalExpr(scopes, p.Src)
	if err != nil {
		return err
	}
	if src.V.Kind != KObject {
		return AtLoc(loc.Line, loc.Column, errPropAccessOnNonObject(src.V.Kind.TypeName()))
	}
	src.V.ObjectV.Set(p.Name, SourcedValue{V: CopyForStore(rhs.V)})
	return nil
}

func (e *Evaluator) bindObject(scopes *ScopeStack, obj *ast.ObjectLit, rhs SourcedValue, bt BindType, names *namesInBinding) error {
	loc := obj.Loc
	if rhs.V.Kind != KObject {
		return AtLoc(loc.Line, loc.Column, errObjectDestructureOnNonObject(rhs.V.Kind.TypeName()))
	}

	consumed := make(map[string]bool)

	for i, item := range obj.Props {
		isLast := i == len(obj.Props)-1
		if item.IsSpread {
			return AtLoc(loc.Line, loc.Column, errSpreadOnObjectDestructure())
		}
		if item.Collect {
			if !isLast {
				return AtLoc(loc.Line, loc.Column, errObjectCollectIsNotLast())
			}
			varExpr, ok := item.Expr.(*ast.Var)
			if !ok {
				return AtLoc(loc.Line, loc.Column, errObjectPropShorthandNotVar())
			}
			rest := NewObject()
			for _, key := range rhs.V.ObjectV.Keys() {
				if consumed[key] {
					continue
				}
				v, _ := rhs.V.ObjectV.Get(key)
				rest.Set(key, SourcedValue{V: CopyForStore(v.V)})
			}
			if err := e.bindVar(scopes, varExpr, Sourced(ObjectValueOf(rest)), bt, names); err != nil {
				return err
			}
			continue
		}

		if item.IsPair() {
			nameVal, err := e.evalExpr(scopes, item.Name)
			if err != nil {
				return err
			}
			key, err := assertStrKey(nameVal.V)
			if err != nil {
				return AtLoc(loc.Line, loc.Column, err)
			}
			propVal, ok := rhs.V.ObjectV.Get(key)
			if !ok {
				return AtLoc(loc.Line, loc.Column, errPropNotFound(key))
			}
			consumed[key] = true
			if err := e.bind(scopes, item.Value, propVal, bt, names); err != nil {
				return err
			}
			continue
		}

		// Single{Var(n)} shorthand: bind source's property n to Var(n).
		varExpr, ok := item.Expr.(*ast.Var)
		if !ok {
			return AtLoc(loc.Line, loc.Column, errObjectPropShorthandNotVar())
		}
		propVal, ok := rhs.V.ObjectV.Get(varExpr.Name)
		if !ok {
			return AtLoc(loc.Line, loc.Column, errPropNotFound(varExpr.Name))
		}
		consumed[varExpr.Name] = true
		if err := e.bindVar(scopes, varExpr, propVal, bt, names); err != nil {
			return err
		}
	}
	return nil
}

func assertStrKey(v Value) (string, error) {
	if v.Kind != KStr {
		return "", errIncorrectType("object key", "string", v.Kind.TypeName())
	}
	return v.StrV, nil
}

func (e *Evaluator) bindList(scopes *ScopeStack, list *ast.ListLit, rhs SourcedValue, bt BindType, names *namesInBinding) error {
	loc := list.Loc
	if rhs.V.Kind != KList {
		return AtLoc(loc.Line, loc.Column, errListDestructureOnNonList(rhs.V.Kind.TypeName()))
	}
	rhsItems := rhs.V.ListV.Items
	lhsLen := len(list.Items)

	for i, item := range list.Items {
		if item.IsSpread {
			return AtLoc(loc.Line, loc.Column, errSpreadInListDestructure(i))
		}
	}

	if list.Collect {
		if lhsLen == 0 {
			return AtLoc(loc.Line, loc.Column, errListCollectTooFew(lhsLen, len(rhsItems)))
		}
		if lhsLen-1 > len(rhsItems) {
			return AtLoc(loc.Line, loc.Column, errListCollectTooFew(lhsLen-1, len(rhsItems)))
		}
		for i := 0; i < lhsLen-1; i++ {
			if err := e.bind(scopes, list.Items[i].Expr, rhsItems[i], bt, names); err != nil {
				return err
			}
		}
		rest := append([]SourcedValue(nil), rhsItems[lhsLen-1:]...)
		restCopy := make([]SourcedValue, len(rest))
		for i, v := range rest {
			restCopy[i] = SourcedValue{V: CopyForStore(v.V)}
		}
		lastExpr := list.Items[lhsLen-1].Expr
		return e.bind(scopes, lastExpr, Sourced(ListValueOf(restCopy)), bt, names)
	}

	if lhsLen != len(rhsItems) {
		return AtLoc(loc.Line, loc.Column, errListDestructureItemMismatch(lhsLen, len(rhsItems)))
	}
	for i, item := range list.Items {
		if err := e.bind(scopes, item.Expr, rhsItems[i], bt, names); err != nil {
			return err
		}
	}
	return nil
}

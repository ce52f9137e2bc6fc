package evaluator

import "fmt"

// funcTable is a read-only name -> native function mapping, the shape of
// each of the six type-namespace objects (spec.md §4.6).
type funcTable map[string]BuiltinFn

// builtinTables holds the six type-namespace objects the evaluator exposes
// for type-property access (bool/int/str/list/object/func.:name lookups).
type builtinTables struct {
	bools, ints, strs, lists, objects, funcs funcTable
}

func newBuiltinTables() *builtinTables {
	anyType := func(ctx *Context, this *Value, args []SourcedValue) (SourcedValue, error) {
		if err := assertArgs("type", 0, args); err != nil {
			return SourcedValue{}, err
		}
		v, err := assertThis(ctx, this)
		if err != nil {
			return SourcedValue{}, err
		}
		return Sourced(StrValue(v.Kind.TypeName())), nil
	}

	strLen := func(ctx *Context, this *Value, args []SourcedValue) (SourcedValue, error) {
		if err := assertArgs("len", 0, args); err != nil {
			return SourcedValue{}, err
		}
		v, err := assertThis(ctx, this)
		if err != nil {
			return SourcedValue{}, err
		}
		s, err := assertStr(ctx, "this", v)
		if err != nil {
			return SourcedValue{}, err
		}
		return Sourced(IntValue(int64(len(s)))), nil
	}

	return &builtinTables{
		bools:   funcTable{"type": anyType},
		ints:    funcTable{"type": anyType},
		strs:    funcTable{"type": anyType, "len": strLen},
		lists:   funcTable{"type": anyType},
		objects: funcTable{"type": anyType},
		funcs:   funcTable{"type": anyType},
	}
}

// tableFor returns the type-namespace table for a value kind, or nil for
// Null (callers must reject Null before calling this, per TypeFunctionOnNull).
func (t *builtinTables) tableFor(k Kind) (funcTable, string) {
	switch k {
	case KBool:
		return t.bools, "bool"
	case KInt:
		return t.ints, "int"
	case KStr:
		return t.strs, "string"
	case KList:
		return t.lists, "list"
	case KObject:
		return t.objects, "object"
	case KFunc:
		return t.funcs, "func"
	default:
		return nil, ""
	}
}

// lookupTypeFunc resolves a type-property access (spec.md §4.4) and returns
// it as a callable Value bound with the receiver as its source.
func (c *Context) lookupTypeFunc(receiver Value, name string) (SourcedValue, error) {
	if receiver.Kind == KNull {
		return SourcedValue{}, errTypeFunctionOnNull()
	}
	table, typeName := c.builtins.tableFor(receiver.Kind)
	fn, ok := table[name]
	if !ok {
		return SourcedValue{}, errTypeFunctionNotFound(name, typeName)
	}
	debugName := fmt.Sprintf("%s->%s", typeName, name)
	return SourcedFrom(BuiltinValueOf(debugName, fn), receiver), nil
}

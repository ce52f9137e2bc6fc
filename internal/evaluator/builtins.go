package evaluator

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// print is the single native top-level built-in (spec.md §4.6): exactly one
// argument, no receiver, rendered to Stdout with a trailing newline.
func builtinPrint(ctx *Context, this *Value, args []SourcedValue) (SourcedValue, error) {
	if err := assertArgs("print", 1, args); err != nil {
		return SourcedValue{}, err
	}
	if err := assertNoThis(ctx, this); err != nil {
		return SourcedValue{}, err
	}
	s, err := render(args[0].V)
	if err != nil {
		return SourcedValue{}, err
	}
	fmt.Fprintln(ctx.Stdout, s)
	return Sourced(NullValue()), nil
}

// render implements the print format (spec.md §4.6): nested lists/objects
// are indented by 4 spaces per level relative to their container.
func render(v Value) (string, error) {
	switch v.Kind {
	case KNull:
		return "<null>", nil
	case KBool:
		if v.BoolV {
			return "true", nil
		}
		return "false", nil
	case KInt:
		return fmt.Sprintf("%d", v.IntV), nil
	case KStr:
		if !utf8.ValidString(v.StrV) {
			return "", errBuiltinFuncErr("couldn't render value: invalid UTF-8 sequence")
		}
		return v.StrV, nil
	case KList:
		var sb strings.Builder
		sb.WriteString("[\n")
		for _, item := range v.ListV.Items {
			rendered, err := render(item.V)
			if err != nil {
				return "", err
			}
			indented := strings.ReplaceAll(rendered, "\n", "\n    ")
			sb.WriteString("    " + indented + ",\n")
		}
		sb.WriteString("]")
		return sb.String(), nil
	case KObject:
		var sb strings.Builder
		sb.WriteString("{\n")
		for _, key := range v.ObjectV.Keys() {
			prop, _ := v.ObjectV.Get(key)
			rendered, err := render(prop.V)
			if err != nil {
				return "", err
			}
			indented := strings.ReplaceAll(rendered, "\n", "\n    ")
			sb.WriteString(fmt.Sprintf("    %q: %s,\n", key, indented))
		}
		sb.WriteString("}")
		return sb.String(), nil
	case KFunc:
		if v.FuncV.IsBuiltin() {
			return fmt.Sprintf("<built-in function '%s'>", v.FuncV.DebugName()), nil
		}
		return fmt.Sprintf("<function '%s'>", v.FuncV.DebugName()), nil
	default:
		return "", errBuiltinFuncErr("couldn't render value: unknown type")
	}
}

// assertArgs checks a built-in received exactly expArgs arguments.
func assertArgs(fnName string, expArgs int, args []SourcedValue) error {
	if len(args) != expArgs {
		plural := "s"
		if expArgs == 1 {
			plural = ""
		}
		return errBuiltinFuncErr(fmt.Sprintf(
			"`%s` only takes %d argument%s (got %d)", fnName, expArgs, plural, len(args)))
	}
	return nil
}

// assertNoThis checks a built-in was called without a receiver.
func assertNoThis(ctx *Context, this *Value) error {
	if this == nil {
		return nil
	}
	return errDev(ctx.ExecutionID, "'this' shouldn't exist")
}

// assertThis extracts the receiver a type-namespace function requires.
func assertThis(ctx *Context, this *Value) (Value, error) {
	if this == nil {
		return Value{}, errDev(ctx.ExecutionID, "'this' doesn't exist")
	}
	return *this, nil
}

// assertStr requires v to be a Str value.
func assertStr(ctx *Context, valName string, v Value) (string, error) {
	if v.Kind != KStr {
		return "", errDev(ctx.ExecutionID, fmt.Sprintf("expected 'string' for %s", valName))
	}
	return v.StrV, nil
}

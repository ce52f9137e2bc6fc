package evaluator

import (
	"errors"

	"github.com/lumen-lang/lumen/internal/ast"
)

// evalInterpolatedStr evaluates an interpolated string literal (spec.md
// §4.7): the parser has already re-parsed each "${ ... }" slot into an
// expression (ast.InterpSlot.Expr); here we evaluate each in the current
// scope, require the result to be a string, and splice it between the
// literal segments.
func (e *Evaluator) evalInterpolatedStr(scopes *ScopeStack, s *ast.StrLit) (SourcedValue, error) {
	var out []byte
	out = append(out, s.Segments[0]...)

	for i, slot := range s.Slots {
		v, err := e.evalExpr(scopes, slot.Expr)
		if err != nil {
			return SourcedValue{}, err
		}
		if v.V.Kind != KStr {
			loc := slot.Expr.Location()
			return SourcedValue{}, AtLoc(loc.Line, loc.Column, errInterpolatedValueNotString(v.V.Kind.TypeName()))
		}
		if !validUTF8(v.V.StrV) {
			loc := slot.Expr.Location()
			return SourcedValue{}, AtLoc(loc.Line, loc.Column, errStringConstructionFailed("interpolated", errBadUTF8))
		}
		out = append(out, v.V.StrV...)
		out = append(out, s.Segments[i+1]...)
	}

	return Sourced(StrValue(string(out))), nil
}

// errBadUTF8 is the cause wrapped by StringConstructionFailed when an
// interpolated value, though tagged Str, doesn't hold valid UTF-8 — this
// can only happen by way of string-indexing/range-indexing producing a
// value that sliced a multi-byte rune in half.
var errBadUTF8 = errors.New("invalid UTF-8 sequence")

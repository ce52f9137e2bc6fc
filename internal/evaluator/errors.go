package evaluator

import (
	"fmt"

	"github.com/google/uuid"
)

// ErrKind is the closed taxonomy of evaluation failures (spec.md §7). It is a
// fixed, exhaustive set: every error the evaluator can produce carries one.
type ErrKind int

const (
	ErrKindCannotCallNonFunc ErrKind = iota
	ErrKindUndefined
	ErrKindObjectPropShorthandNotVar
	ErrKindInvalidBindTarget
	ErrKindAlreadyInBinding
	ErrKindAlreadyInScope
	ErrKindIncorrectType
	ErrKindStringConstructionFailed
	ErrKindArgNumMismatch
	ErrKindTooFewArgs
	ErrKindInvalidOpTypes
	ErrKindBreakOutsideLoop
	ErrKindContinueOutsideLoop
	ErrKindReturnOutsideFunction
	ErrKindForIterNotIterable
	ErrKindValueNotIndexable
	ErrKindValueNotIndexAssignable
	ErrKindValueNotRangeIndexAssignable
	ErrKindAssignToTypeProp
	ErrKindOutOfStringBounds
	ErrKindOutOfListBounds
	ErrKindRangeOutOfStringBounds
	ErrKindRangeOutOfListBounds
	ErrKindRangeStartOutOfListBounds
	ErrKindRangeStartNotBeforeEnd
	ErrKindRangeEndOutOfListBounds
	ErrKindValueNotRangeIndexable
	ErrKindNegativeIndex
	ErrKindListCollectOutsideDestructure
	ErrKindObjectCollectOutsideDestructure
	ErrKindObjectCollectIsNotLast
	ErrKindSpreadNonListInList
	ErrKindSpreadNonObjectInObject
	ErrKindObjectDestructureOnNonObject
	ErrKindSpreadOnObjectDestructure
	ErrKindListDestructureOnNonList
	ErrKindListDestructureItemMismatch
	ErrKindListCollectTooFew
	ErrKindSpreadInListDestructure
	ErrKindRangeIndexItemMismatch
	ErrKindPropNotFound
	ErrKindTypeFunctionNotFound
	ErrKindTypeFunctionOnNull
	ErrKindPropAccessOnNonObject
	ErrKindInterpolatedValueNotString
	ErrKindInterpolateStringParseFailed
	ErrKindOpOnUndefinedIndex
	ErrKindOpOnUndefinedProp
	ErrKindOpOnRangeIndex
	ErrKindOpOnObjectDestructure
	ErrKindOpOnListDestructure
	ErrKindIntOverflow
	ErrKindPropSpreadInParamList
	ErrKindItemSpreadInParamList
	ErrKindBuiltinFuncErr
	ErrKindDev
)

// EvalError is a single evaluation failure with a rendered message. It is
// the leaf of an error chain; AtLoc attaches the source location closest to
// where it originated. The evaluator adds no further wrapping above that
// LocatedError, so no call-chain context is recorded.
type EvalError struct {
	Kind    ErrKind
	Message string
}

func (e *EvalError) Error() string { return e.Message }

func newErr(kind ErrKind, format string, args ...any) *EvalError {
	return &EvalError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Constructors, one per Kind, with message text grounded on
// original_source/src/eval/error.rs's snafu display templates.

func errCannotCallNonFunc(typeName string) error {
	return newErr(ErrKindCannotCallNonFunc, "can't call '%s' as a function", typeName)
}

func errUndefined(name string) error {
	return newErr(ErrKindUndefined, "'%s' is not defined", name)
}

func errObjectPropShorthandNotVar() error {
	return newErr(ErrKindObjectPropShorthandNotVar, "object property name isn't a variable")
}

func errInvalidBindTarget(descr string) error {
	return newErr(ErrKindInvalidBindTarget, "cannot bind to %s", descr)
}

func errAlreadyInBinding(name string) error {
	return newErr(ErrKindAlreadyInBinding, "'%s' is bound multiple times in this binding", name)
}

func errAlreadyInScope(name string, prevLine, prevCol int) error {
	return newErr(ErrKindAlreadyInScope, "'%s' is already defined in the current scope at [%d:%d]", name, prevLine, prevCol)
}

func errIncorrectType(descr, expType, gotType string) error {
	return newErr(ErrKindIncorrectType, "%s must be '%s', got '%s'", descr, expType, gotType)
}

func errStringConstructionFailed(descr string, cause error) error {
	return newErr(ErrKindStringConstructionFailed, "couldn't create %s string: %s", descr, cause)
}

func errArgNumMismatch(need, got int) error {
	return newErr(ErrKindArgNumMismatch, "expected %d arguments, got %d", need, got)
}

func errTooFewArgs(minimum, got int) error {
	return newErr(ErrKindTooFewArgs, "expected at least %d arguments, got %d", minimum, got)
}

func errInvalidOpTypes(opSymbol, lhsType, rhsType string) error {
	return newErr(ErrKindInvalidOpTypes, "can't apply '%s' to '%s' and '%s'", opSymbol, lhsType, rhsType)
}

func errBreakOutsideLoop() error {
	return newErr(ErrKindBreakOutsideLoop, "'break' can't be used outside of a loop")
}

func errContinueOutsideLoop() error {
	return newErr(ErrKindContinueOutsideLoop, "'continue' can't be used outside of a loop")
}

func errReturnOutsideFunction() error {
	return newErr(ErrKindReturnOutsideFunction, "'return' can't be used outside of a function")
}

func errForIterNotIterable() error {
	return newErr(ErrKindForIterNotIterable, "'for' iterator must be a 'list', 'object' or 'string'")
}

func errValueNotIndexable() error {
	return newErr(ErrKindValueNotIndexable, "only 'list's, 'object's or 'string's can be indexed")
}

func errValueNotIndexAssignable() error {
	return newErr(ErrKindValueNotIndexAssignable, "only 'list's or 'object's can update indices")
}

func errValueNotRangeIndexAssignable() error {
	return newErr(ErrKindValueNotRangeIndexAssignable, "only 'list's can update range indices")
}

func errAssignToTypeProp() error {
	return newErr(ErrKindAssignToTypeProp, "type properties cannot be assigned to")
}

func errOutOfStringBounds(index int) error {
	return newErr(ErrKindOutOfStringBounds, "index '%d' is outside the string bounds", index)
}

func errOutOfListBounds(index int) error {
	return newErr(ErrKindOutOfListBounds, "index '%d' is outside the list bounds", index)
}

func errRangeOutOfStringBounds(start, end int) error {
	return newErr(ErrKindRangeOutOfStringBounds, "range [%d:%d] is outside the string bounds", start, end)
}

func errRangeOutOfListBounds(start, end int) error {
	return newErr(ErrKindRangeOutOfListBounds, "range [%d:%d] is outside the list bounds", start, end)
}

func errRangeStartOutOfListBounds(start, listLen int) error {
	return newErr(ErrKindRangeStartOutOfListBounds, "range start (%d) is greater than list length (%d)", start, listLen)
}

func errRangeStartNotBeforeEnd(start, end int) error {
	return newErr(ErrKindRangeStartNotBeforeEnd, "range end (%d) must be greater than range start (%d)", end, start)
}

func errRangeEndOutOfListBounds(end, listLen int) error {
	return newErr(ErrKindRangeEndOutOfListBounds, "range end (%d) is greater than list length (%d)", end, listLen)
}

func errValueNotRangeIndexable() error {
	return newErr(ErrKindValueNotRangeIndexable, "only 'list's or 'string's can be range-indexed")
}

func errNegativeIndex() error {
	return newErr(ErrKindNegativeIndex, "index can't be negative")
}

func errListCollectOutsideDestructure() error {
	return newErr(ErrKindListCollectOutsideDestructure, "cannot collect 'list' items outside a destructure")
}

func errObjectCollectOutsideDestructure() error {
	return newErr(ErrKindObjectCollectOutsideDestructure, "cannot collect 'object' items outside a destructure")
}

func errObjectCollectIsNotLast() error {
	return newErr(ErrKindObjectCollectIsNotLast, "only the last item in the destructure can collect")
}

func errSpreadNonListInList(typeName string) error {
	return newErr(ErrKindSpreadNonListInList, "only lists can be spread in lists, got '%s'", typeName)
}

func errSpreadNonObjectInObject(typeName string) error {
	return newErr(ErrKindSpreadNonObjectInObject, "only objects can be spread in objects, got '%s'", typeName)
}

func errObjectDestructureOnNonObject(typeName string) error {
	return newErr(ErrKindObjectDestructureOnNonObject, "only objects can be destructured into objects, got '%s'", typeName)
}

func errSpreadOnObjectDestructure() error {
	return newErr(ErrKindSpreadOnObjectDestructure, "can't use spread operator in object destructuring")
}

func errListDestructureOnNonList(typeName string) error {
	return newErr(ErrKindListDestructureOnNonList, "only lists can be destructured into lists, got '%s'", typeName)
}

func errListDestructureItemMismatch(lhsLen, rhsLen int) error {
	return newErr(ErrKindListDestructureItemMismatch, "cannot bind %d item(s) to %d variable name(s)", rhsLen, lhsLen)
}

func errListCollectTooFew(lhsLen, rhsLen int) error {
	return newErr(ErrKindListCollectTooFew, "cannot bind %d item(s) to %d variable name(s)", rhsLen, lhsLen)
}

func errSpreadInListDestructure(index int) error {
	return newErr(ErrKindSpreadInListDestructure, "cannot use spread operator (at index %d) of list destructure", index)
}

func errRangeIndexItemMismatch(rangeLen, rhsLen int) error {
	return newErr(ErrKindRangeIndexItemMismatch, "cannot bind %d item(s) to %d index(s)", rhsLen, rangeLen)
}

func errPropNotFound(name string) error {
	return newErr(ErrKindPropNotFound, "object doesn't contain property '%s'", name)
}

func errTypeFunctionNotFound(name, typeName string) error {
	return newErr(ErrKindTypeFunctionNotFound, "there is no type function '%s' for '%s'", name, typeName)
}

func errTypeFunctionOnNull() error {
	return newErr(ErrKindTypeFunctionOnNull, "cannot access type function on 'null'")
}

func errPropAccessOnNonObject(typeName string) error {
	return newErr(ErrKindPropAccessOnNonObject, "properties can only be accessed on objects, got '%s'", typeName)
}

func errInterpolatedValueNotString(typeName string) error {
	return newErr(ErrKindInterpolatedValueNotString, "interpolated values can only be strings, got '%s'", typeName)
}

func errInterpolateStringParseFailed(sourceStr string) error {
	return newErr(ErrKindInterpolateStringParseFailed, "couldn't parse interpolation slot: %s", sourceStr)
}

func errOpOnUndefinedIndex(name string) error {
	return newErr(ErrKindOpOnUndefinedIndex, "'%s' is not defined", name)
}

func errOpOnUndefinedProp(name string) error {
	return newErr(ErrKindOpOnUndefinedProp, "'%s' is not defined", name)
}

func errOpOnRangeIndex() error {
	return newErr(ErrKindOpOnRangeIndex, "cannot perform this operation on a range-index")
}

func errOpOnObjectDestructure() error {
	return newErr(ErrKindOpOnObjectDestructure, "cannot perform this operation on an object destructure")
}

func errOpOnListDestructure() error {
	return newErr(ErrKindOpOnListDestructure, "cannot perform this operation on an list destructure")
}

func errIntOverflow(opSymbol string, lhs, rhs int64) error {
	return newErr(ErrKindIntOverflow, "'%d %s %d' caused an integer overflow", lhs, opSymbol, rhs)
}

func errPropSpreadInParamList() error {
	return newErr(ErrKindPropSpreadInParamList, "can't use spread operator in parameter list")
}

func errItemSpreadInParamList() error {
	return newErr(ErrKindItemSpreadInParamList, "can't use spread operator in parameter list")
}

func errBuiltinFuncErr(msg string) error {
	return newErr(ErrKindBuiltinFuncErr, "%s", msg)
}

// errDev reports an internal invariant violation — a bug, not a user error.
// It must be unreachable on valid ASTs. The execution ID lets a report be
// correlated against logs without relying on wall-clock time.
func errDev(executionID uuid.UUID, msg string) error {
	return newErr(ErrKindDev, "dev error: %s (run %s)", msg, executionID)
}

// LocatedError pairs an error with the source location it occurred at.
// Exactly one LocatedError is meant to be observable on the rendered path:
// AtLoc refuses to wrap an error that already carries one.
type LocatedError struct {
	Line int
	Col  int
	Err  error
}

func (e *LocatedError) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Line, e.Col, e.Err)
}

func (e *LocatedError) Unwrap() error { return e.Err }

// AtLoc wraps err with the given source location, unless it (or something
// it wraps) is already a *LocatedError, in which case err is returned
// unchanged — only the innermost location is kept.
func AtLoc(line, col int, err error) error {
	if err == nil {
		return nil
	}
	if hasLocation(err) {
		return err
	}
	return &LocatedError{Line: line, Col: col, Err: err}
}

func hasLocation(err error) bool {
	for err != nil {
		if _, ok := err.(*LocatedError); ok {
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

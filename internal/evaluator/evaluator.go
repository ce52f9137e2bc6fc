// Package evaluator implements the tree-walking core: the value model,
// scope stack, destructuring binder, and expression/statement evaluation
// that together execute a parsed lumen program.
package evaluator

import (
	"github.com/lumen-lang/lumen/internal/ast"
	"github.com/lumen-lang/lumen/internal/config"
)

// Evaluator walks a parsed program. It carries no mutable state of its own
// beyond the Context — scopes are threaded explicitly through every call,
// matching the functional style of the evaluator this spec describes.
type Evaluator struct {
	Ctx *Context
}

// New returns an Evaluator with a fresh Context.
func New() *Evaluator {
	return &Evaluator{Ctx: NewContext(config.DefaultMaxCallDepth)}
}

// NewWithContext returns an Evaluator sharing the given Context (e.g. one
// built from a loaded lumen.yaml project config).
func NewWithContext(ctx *Context) *Evaluator {
	return &Evaluator{Ctx: ctx}
}

// Run evaluates a full program in a fresh top-level scope stack seeded
// with the "print" built-in. Break/Continue/Return escaping the top level
// become the corresponding "outside of ..." errors (spec.md §4.5).
func (e *Evaluator) Run(prog *ast.Program) error {
	scopes := NewScopeStack()
	if err := scopes.Declare(config.PrintFuncName, 0, 0, Sourced(BuiltinValueOf(config.PrintFuncName, builtinPrint))); err != nil {
		return err
	}

	for _, stmt := range prog.Statements {
		esc, err := e.evalStmt(scopes, stmt)
		if err != nil {
			return err
		}
		if err := e.rejectTopLevelEscape(esc); err != nil {
			return err
		}
	}
	return nil
}

func (e *Evaluator) rejectTopLevelEscape(esc Escape) error {
	switch esc.Kind {
	case EscNone:
		return nil
	case EscBreak:
		return AtLoc(esc.Loc.Line, esc.Loc.Column, errBreakOutsideLoop())
	case EscContinue:
		return AtLoc(esc.Loc.Line, esc.Loc.Column, errContinueOutsideLoop())
	case EscReturn:
		return AtLoc(esc.Loc.Line, esc.Loc.Column, errReturnOutsideFunction())
	default:
		return nil
	}
}

package evaluator

import "github.com/lumen-lang/lumen/internal/ast"

// EscapeKind tags the statement evaluator's control-flow outcome
// (spec.md §2, GLOSSARY "Escape").
type EscapeKind int

const (
	EscNone EscapeKind = iota
	EscBreak
	EscContinue
	EscReturn
)

// Escape is the four-way tagged result every statement evaluation produces.
type Escape struct {
	Kind  EscapeKind
	Loc   ast.Loc
	Value SourcedValue // only meaningful when Kind == EscReturn
}

var noEscape = Escape{Kind: EscNone}

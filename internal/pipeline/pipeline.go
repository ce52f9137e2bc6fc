// Package pipeline wires the lexer, parser and evaluator into the single
// lex -> parse -> run sequence the CLI and the golden-test runner both
// need, so neither has to know the stage order or how errors from each
// stage are told apart.
package pipeline

import (
	"github.com/lumen-lang/lumen/internal/ast"
	"github.com/lumen-lang/lumen/internal/evaluator"
	"github.com/lumen-lang/lumen/internal/lexer"
	"github.com/lumen-lang/lumen/internal/parser"
	"github.com/lumen-lang/lumen/internal/token"
)

// Result is what a single Run produced: the parsed program (useful to a
// caller that wants to inspect it after execution) and whatever error
// aborted the run, if any.
type Result struct {
	Program *ast.Program
	Err     error
}

// Run lexes, parses and evaluates src against ev. The returned error is
// either a *parser.ParseError (syntax failure) or an
// *evaluator.LocatedError (runtime failure) — both render as
// "line:col: message", so callers can treat them uniformly.
func Run(ev *evaluator.Evaluator, src string) Result {
	prog, err := parser.Parse(src)
	if err != nil {
		return Result{Err: err}
	}
	if err := ev.Run(prog); err != nil {
		return Result{Program: prog, Err: err}
	}
	return Result{Program: prog}
}

// LexedToken is a tooling-friendly projection of token.Token.
type LexedToken struct {
	Line    int
	Column  int
	Type    string
	Literal string
}

// Lex tokenizes src into a flat slice. Exposed for tooling that wants the
// token stream without running a full parse.
func Lex(src string) []LexedToken {
	lx := lexer.New(src)
	var toks []LexedToken
	for {
		tok := lx.NextToken()
		toks = append(toks, LexedToken{Line: tok.Line, Column: tok.Column, Type: tok.Type.String(), Literal: tok.Literal})
		if tok.Type == token.EOF {
			break
		}
	}
	return toks
}

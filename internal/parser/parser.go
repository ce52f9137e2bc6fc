// Package parser implements a recursive-descent/Pratt parser that turns a
// token stream from internal/lexer into the internal/ast tree the
// evaluator consumes.
package parser

import (
	"fmt"

	"github.com/lumen-lang/lumen/internal/ast"
	"github.com/lumen-lang/lumen/internal/lexer"
	"github.com/lumen-lang/lumen/internal/token"
)

// ParseError is a syntax error with the source location it occurred at,
// rendered the same way as the CLI's other downstream errors (spec.md §6).
type ParseError struct {
	Line int
	Col  int
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Line, e.Col, e.Msg)
}

func newParseError(loc ast.Loc, format string, args ...any) *ParseError {
	return &ParseError{Line: loc.Line, Col: loc.Column, Msg: fmt.Sprintf(format, args...)}
}

// Precedence levels, lowest to highest. There is no unary/prefix operator
// in this language's AST (ast.BinaryOp is the only operator node), so
// there is no PREFIX level.
const (
	_ int = iota
	LOWEST
	OR
	AND
	EQUALS
	LESSGREATER
	RANGE
	SUM
	PRODUCT
	POSTFIX // call, index, range-index, prop, type-prop
)

var precedences = map[token.Type]int{
	token.OR:         OR,
	token.AND:        AND,
	token.EQ:         EQUALS,
	token.NOT_EQ:     EQUALS,
	token.REF_EQ:     EQUALS,
	token.REF_NOT_EQ: EQUALS,
	token.LT:         LESSGREATER,
	token.LTE:        LESSGREATER,
	token.GT:         LESSGREATER,
	token.GTE:        LESSGREATER,
	token.DOT_DOT:    RANGE,
	token.PLUS:       SUM,
	token.MINUS:      SUM,
	token.ASTERISK:   PRODUCT,
	token.SLASH:      PRODUCT,
	token.PERCENT:    PRODUCT,
	token.LPAREN:     POSTFIX,
	token.LBRACKET:   POSTFIX,
	token.DOT:        POSTFIX,
	token.DOT_COLON:  POSTFIX,
}

// Parser turns a token stream into an *ast.Program. It fails fast: the
// first syntax error aborts parsing and is returned from Parse.
type Parser struct {
	lex *lexer.Lexer

	cur  token.Token
	peek token.Token
}

// New returns a Parser reading from lex.
func New(lex *lexer.Lexer) *Parser {
	p := &Parser{lex: lex}
	p.nextToken()
	p.nextToken()
	return p
}

func (p *Parser) nextToken() {
	p.cur = p.peek
	p.peek = p.lex.NextToken()
}

func (p *Parser) curIs(t token.Type) bool  { return p.cur.Type == t }
func (p *Parser) peekIs(t token.Type) bool { return p.peek.Type == t }

func (p *Parser) curLoc() ast.Loc { return ast.Loc{Line: p.cur.Line, Column: p.cur.Column} }

// expect advances so that peek becomes cur if peek has type t, else returns
// a ParseError.
func (p *Parser) expect(t token.Type) error {
	if p.peekIs(t) {
		p.nextToken()
		return nil
	}
	return newParseError(p.curLoc(), "expected '%s', got '%s'", t, p.peek.Type)
}

func (p *Parser) peekPrecedence() int {
	if pr, ok := precedences[p.peek.Type]; ok {
		return pr
	}
	return LOWEST
}

// Parse parses the whole token stream into a Program. Parsing stops at the
// first syntax error.
func Parse(src string) (*ast.Program, error) {
	p := New(lexer.New(src))
	return p.ParseProgram()
}

func (p *Parser) ParseProgram() (*ast.Program, error) {
	prog := &ast.Program{}
	for !p.curIs(token.EOF) {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		prog.Statements = append(prog.Statements, stmt)
		p.nextToken()
	}
	return prog, nil
}

package parser

import (
	"github.com/lumen-lang/lumen/internal/ast"
	"github.com/lumen-lang/lumen/internal/token"
)

// parseStatement parses one statement. Simple statements (expr, declare,
// assign, op-assign, break, continue, return) are terminated by ';';
// block-bodied statements (if, while, for, fn) are not.
func (p *Parser) parseStatement() (ast.Stmt, error) {
	switch p.cur.Type {
	case token.LBRACE:
		// A leading '{' starts either a block or an object pattern/literal
		// statement such as "{x: p} := obj;". The statement form is tried
		// first; if it does not parse, the input is re-read as a block.
		lexState, cur, peek := *p.lex, p.cur, p.peek
		if stmt, err := p.parseExprOrAssignStatement(); err == nil {
			return stmt, nil
		}
		*p.lex, p.cur, p.peek = lexState, cur, peek
		return p.parseBlock()
	case token.IF:
		return p.parseIf()
	case token.WHILE:
		return p.parseWhile()
	case token.FOR:
		return p.parseFor()
	case token.BREAK:
		return p.parseSimple(&ast.Break{Loc: p.curLoc()})
	case token.CONTINUE:
		return p.parseSimple(&ast.Continue{Loc: p.curLoc()})
	case token.FN:
		if p.peekIs(token.IDENT) {
			return p.parseFuncDecl()
		}
		return p.parseExprOrAssignStatement()
	case token.RETURN:
		return p.parseReturn()
	default:
		return p.parseExprOrAssignStatement()
	}
}

// parseSimple consumes a self-contained statement node (already fully
// built) and its trailing semicolon.
func (p *Parser) parseSimple(stmt ast.Stmt) (ast.Stmt, error) {
	if err := p.expect(token.SEMICOLON); err != nil {
		return nil, err
	}
	return stmt, nil
}

func (p *Parser) parseBlock() (*ast.Block, error) {
	loc := p.curLoc()
	if !p.curIs(token.LBRACE) {
		return nil, newParseError(loc, "expected '{', got '%s'", p.cur.Type)
	}
	p.nextToken()

	block := &ast.Block{Loc: loc}
	for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		block.Stmts = append(block.Stmts, stmt)
		p.nextToken()
	}
	if !p.curIs(token.RBRACE) {
		return nil, newParseError(p.curLoc(), "expected '}', got '%s'", p.cur.Type)
	}
	return block, nil
}

// parseExprOrAssignStatement parses a leading expression, then decides
// whether it is a bare expression statement or the LHS of a
// declare/assign/op-assign, based on the following token. The LHS is an
// ordinary expression — the same grammar used for values — since the
// binder, not the parser, decides which shapes are valid bind targets
// (spec.md §4.3).
func (p *Parser) parseExprOrAssignStatement() (ast.Stmt, error) {
	loc := p.curLoc()
	lhs, err := p.parseExpression(LOWEST)
	if err != nil {
		return nil, err
	}

	switch {
	case p.peekIs(token.DECLARE):
		p.nextToken()
		p.nextToken()
		rhs, err := p.parseExpression(LOWEST)
		if err != nil {
			return nil, err
		}
		if err := p.expect(token.SEMICOLON); err != nil {
			return nil, err
		}
		return &ast.Declare{Loc: loc, LHS: lhs, RHS: rhs}, nil

	case p.peekIs(token.ASSIGN):
		p.nextToken()
		p.nextToken()
		rhs, err := p.parseExpression(LOWEST)
		if err != nil {
			return nil, err
		}
		if err := p.expect(token.SEMICOLON); err != nil {
			return nil, err
		}
		return &ast.Assign{Loc: loc, LHS: lhs, RHS: rhs}, nil

	case isOpAssign(p.peek.Type):
		opLoc := ast.Loc{Line: p.peek.Line, Column: p.peek.Column}
		op := opAssignOperator(p.peek.Type)
		p.nextToken()
		p.nextToken()
		rhs, err := p.parseExpression(LOWEST)
		if err != nil {
			return nil, err
		}
		if err := p.expect(token.SEMICOLON); err != nil {
			return nil, err
		}
		return &ast.OpAssign{Loc: loc, LHS: lhs, Op: op, OpLoc: opLoc, RHS: rhs}, nil

	default:
		if err := p.expect(token.SEMICOLON); err != nil {
			return nil, err
		}
		return &ast.ExprStmt{Loc: loc, Expr: lhs}, nil
	}
}

func isOpAssign(t token.Type) bool {
	switch t {
	case token.PLUS_ASSIGN, token.MINUS_ASSIGN, token.ASTERISK_ASSIGN, token.SLASH_ASSIGN, token.PERCENT_ASSIGN:
		return true
	default:
		return false
	}
}

func opAssignOperator(t token.Type) string {
	switch t {
	case token.PLUS_ASSIGN:
		return "+"
	case token.MINUS_ASSIGN:
		return "-"
	case token.ASTERISK_ASSIGN:
		return "*"
	case token.SLASH_ASSIGN:
		return "/"
	case token.PERCENT_ASSIGN:
		return "%"
	default:
		return ""
	}
}

func (p *Parser) parseIf() (*ast.If, error) {
	loc := p.curLoc()
	ifStmt := &ast.If{Loc: loc}

	for {
		p.nextToken() // consume 'if'/'else'... now positioned at condition start
		cond, err := p.parseExpression(LOWEST)
		if err != nil {
			return nil, err
		}
		if err := p.expect(token.LBRACE); err != nil {
			return nil, err
		}
		body, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		ifStmt.Branches = append(ifStmt.Branches, ast.IfBranch{Cond: cond, Body: body})

		if p.peekIs(token.ELSE) {
			p.nextToken() // consume '}' -> now at 'else'
			if p.peekIs(token.IF) {
				p.nextToken() // now at 'if'
				continue
			}
			if err := p.expect(token.LBRACE); err != nil {
				return nil, err
			}
			elseBody, err := p.parseBlock()
			if err != nil {
				return nil, err
			}
			ifStmt.Else = elseBody
			break
		}
		break
	}
	return ifStmt, nil
}

func (p *Parser) parseWhile() (*ast.While, error) {
	loc := p.curLoc()
	p.nextToken()
	cond, err := p.parseExpression(LOWEST)
	if err != nil {
		return nil, err
	}
	if err := p.expect(token.LBRACE); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.While{Loc: loc, Cond: cond, Body: body}, nil
}

// parseFor parses `for <pattern> in <expr> { ... }`. The pattern is an
// ordinary expression bound each iteration to a 2-element [index_or_key,
// value] list (spec.md §4.5) — most commonly a list-literal pattern like
// `[i, v]`, but any valid bind target works.
func (p *Parser) parseFor() (*ast.For, error) {
	loc := p.curLoc()
	p.nextToken()
	lhs, err := p.parseExpression(LOWEST)
	if err != nil {
		return nil, err
	}
	if err := p.expect(token.IN); err != nil {
		return nil, err
	}
	p.nextToken()
	iter, err := p.parseExpression(LOWEST)
	if err != nil {
		return nil, err
	}
	if err := p.expect(token.LBRACE); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.For{Loc: loc, LHS: lhs, Iter: iter, Body: body}, nil
}

func (p *Parser) parseReturn() (*ast.Return, error) {
	loc := p.curLoc()
	if p.peekIs(token.SEMICOLON) {
		p.nextToken()
		return &ast.Return{Loc: loc}, nil
	}
	p.nextToken()
	expr, err := p.parseExpression(LOWEST)
	if err != nil {
		return nil, err
	}
	if err := p.expect(token.SEMICOLON); err != nil {
		return nil, err
	}
	return &ast.Return{Loc: loc, Expr: expr}, nil
}

func (p *Parser) parseFuncDecl() (*ast.FuncDecl, error) {
	loc := p.curLoc()
	p.nextToken() // consume 'fn', now at name
	nameLoc := p.curLoc()
	name := p.cur.Literal
	if err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	params, collect, err := p.parseParamList()
	if err != nil {
		return nil, err
	}
	if err := p.expect(token.LBRACE); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.FuncDecl{Loc: loc, NameLoc: nameLoc, Name: name, Params: params, CollectArgs: collect, Body: body}, nil
}

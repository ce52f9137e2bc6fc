package parser

import (
	"strconv"

	"github.com/lumen-lang/lumen/internal/ast"
	"github.com/lumen-lang/lumen/internal/lexer"
	"github.com/lumen-lang/lumen/internal/token"
)

// parseExpression is the Pratt engine's entry point: parse a prefix
// (primary) expression, then fold in infix/postfix operators while they
// bind tighter than precedence.
func (p *Parser) parseExpression(precedence int) (ast.Expr, error) {
	left, err := p.parsePrefix()
	if err != nil {
		return nil, err
	}

	for !p.peekIs(token.SEMICOLON) && precedence < p.peekPrecedence() {
		switch p.peek.Type {
		case token.PLUS, token.MINUS, token.ASTERISK, token.SLASH, token.PERCENT,
			token.EQ, token.NOT_EQ, token.REF_EQ, token.REF_NOT_EQ,
			token.LT, token.LTE, token.GT, token.GTE, token.AND, token.OR, token.DOT_DOT:
			p.nextToken()
			left, err = p.parseBinaryOp(left)
		case token.LPAREN:
			p.nextToken()
			left, err = p.parseCall(left)
		case token.LBRACKET:
			p.nextToken()
			left, err = p.parseIndexOrRangeIndex(left)
		case token.DOT:
			p.nextToken()
			left, err = p.parseProp(left, false)
		case token.DOT_COLON:
			p.nextToken()
			left, err = p.parseProp(left, true)
		default:
			return left, nil
		}
		if err != nil {
			return nil, err
		}
	}
	return left, nil
}

func (p *Parser) parsePrefix() (ast.Expr, error) {
	switch p.cur.Type {
	case token.NULL:
		return &ast.NullLit{Loc: p.curLoc()}, nil
	case token.TRUE:
		return &ast.BoolLit{Loc: p.curLoc(), Value: true}, nil
	case token.FALSE:
		return &ast.BoolLit{Loc: p.curLoc(), Value: false}, nil
	case token.INT:
		return p.parseIntLit()
	case token.STRING, token.INTERP_STRING:
		return p.parseStrLit()
	case token.IDENT:
		return &ast.Var{Loc: p.curLoc(), Name: p.cur.Literal}, nil
	case token.LBRACKET:
		return p.parseListLit()
	case token.LBRACE:
		return p.parseObjectLit()
	case token.LPAREN:
		return p.parseGroupedExpr()
	case token.FN:
		return p.parseFuncLit()
	default:
		return nil, newParseError(p.curLoc(), "unexpected token '%s'", p.cur.Type)
	}
}

func (p *Parser) parseIntLit() (ast.Expr, error) {
	loc := p.curLoc()
	n, err := strconv.ParseInt(p.cur.Literal, 10, 64)
	if err != nil {
		return nil, newParseError(loc, "invalid integer literal '%s'", p.cur.Lexeme)
	}
	return &ast.IntLit{Loc: loc, Value: n}, nil
}

func (p *Parser) parseGroupedExpr() (ast.Expr, error) {
	p.nextToken()
	expr, err := p.parseExpression(LOWEST)
	if err != nil {
		return nil, err
	}
	if err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	return expr, nil
}

// parseCollectTarget parses a trailing "*name" collect marker. It is valid
// as the last item of a list or object pattern or as the last parameter of
// a function. The list and parameter-list parsers stop at it; for object
// patterns the binder rejects a collect that is not last.
func (p *Parser) parseCollectTarget() (ast.Expr, error) {
	p.nextToken()
	if !p.curIs(token.IDENT) {
		return nil, newParseError(p.curLoc(), "expected a name after '*', got '%s'", p.cur.Type)
	}
	return &ast.Var{Loc: p.curLoc(), Name: p.cur.Literal}, nil
}

func (p *Parser) parseBinaryOp(left ast.Expr) (ast.Expr, error) {
	op := p.cur.Lexeme
	opLoc := p.curLoc()
	precedence := precedences[p.cur.Type]
	p.nextToken()
	right, err := p.parseExpression(precedence)
	if err != nil {
		return nil, err
	}
	if op == ".." {
		return &ast.Range{Loc: left.Location(), Start: left, End: right}, nil
	}
	return &ast.BinaryOp{Loc: left.Location(), Op: op, OpLoc: opLoc, LHS: left, RHS: right}, nil
}

// parseListLit parses both list literals and list-pattern destructure
// targets: "[item, item, ...spread, *collect]". At most one collect
// marker, and it must be last.
func (p *Parser) parseListLit() (*ast.ListLit, error) {
	loc := p.curLoc()
	list := &ast.ListLit{Loc: loc}
	p.nextToken() // consume '['

	for !p.curIs(token.RBRACKET) {
		if p.curIs(token.ASTERISK) {
			target, err := p.parseCollectTarget()
			if err != nil {
				return nil, err
			}
			list.Items = append(list.Items, ast.ListItem{Expr: target})
			list.Collect = true
			p.nextToken()
			break
		}

		isSpread := false
		if p.curIs(token.ELLIPSIS) {
			isSpread = true
			p.nextToken()
		}
		item, err := p.parseExpression(LOWEST)
		if err != nil {
			return nil, err
		}
		list.Items = append(list.Items, ast.ListItem{Expr: item, IsSpread: isSpread})

		p.nextToken()
		if p.curIs(token.COMMA) {
			p.nextToken()
		}
	}
	if !p.curIs(token.RBRACKET) {
		return nil, newParseError(p.curLoc(), "expected ']', got '%s'", p.cur.Type)
	}
	return list, nil
}

// parseObjectLit parses both object literals and object-pattern
// destructure targets: "{ name: value, ident, ...spread, *collect }".
func (p *Parser) parseObjectLit() (*ast.ObjectLit, error) {
	loc := p.curLoc()
	obj := &ast.ObjectLit{Loc: loc}
	p.nextToken() // consume '{'

	for !p.curIs(token.RBRACE) {
		if p.curIs(token.ASTERISK) {
			target, err := p.parseCollectTarget()
			if err != nil {
				return nil, err
			}
			obj.Props = append(obj.Props, ast.PropItem{Expr: target, Collect: true})
			p.nextToken()
			if p.curIs(token.COMMA) {
				p.nextToken()
			}
			continue
		}

		if p.curIs(token.ELLIPSIS) {
			p.nextToken()
			spreadExpr, err := p.parseExpression(LOWEST)
			if err != nil {
				return nil, err
			}
			obj.Props = append(obj.Props, ast.PropItem{Expr: spreadExpr, IsSpread: true})
			p.nextToken()
			if p.curIs(token.COMMA) {
				p.nextToken()
			}
			continue
		}

		// A bracketed key is a computed key expression: [expr]: value.
		if p.curIs(token.LBRACKET) {
			p.nextToken()
			keyExpr, err := p.parseExpression(LOWEST)
			if err != nil {
				return nil, err
			}
			if err := p.expect(token.RBRACKET); err != nil {
				return nil, err
			}
			if err := p.expect(token.COLON); err != nil {
				return nil, err
			}
			p.nextToken()
			valExpr, err := p.parseExpression(LOWEST)
			if err != nil {
				return nil, err
			}
			obj.Props = append(obj.Props, ast.PropItem{Name: keyExpr, Value: valExpr})
			p.nextToken()
			if p.curIs(token.COMMA) {
				p.nextToken()
			}
			continue
		}

		if !p.curIs(token.IDENT) {
			return nil, newParseError(p.curLoc(), "expected a property name, got '%s'", p.cur.Type)
		}
		nameLoc := p.curLoc()
		name := p.cur.Literal

		if p.peekIs(token.COLON) {
			p.nextToken() // at ':'
			p.nextToken() // at value
			valExpr, err := p.parseExpression(LOWEST)
			if err != nil {
				return nil, err
			}
			obj.Props = append(obj.Props, ast.PropItem{
				Name:  &ast.StrLit{Loc: nameLoc, Segments: []string{name}},
				Value: valExpr,
			})
		} else {
			// Single{Var(n)} shorthand.
			obj.Props = append(obj.Props, ast.PropItem{Expr: &ast.Var{Loc: nameLoc, Name: name}})
		}
		p.nextToken()
		if p.curIs(token.COMMA) {
			p.nextToken()
		}
	}
	if !p.curIs(token.RBRACE) {
		return nil, newParseError(p.curLoc(), "expected '}', got '%s'", p.cur.Type)
	}
	return obj, nil
}

func (p *Parser) parseIndexOrRangeIndex(src ast.Expr) (ast.Expr, error) {
	loc := p.curLoc() // '['
	p.nextToken()

	var start ast.Expr
	if !p.curIs(token.COLON) {
		var err error
		start, err = p.parseExpression(LOWEST)
		if err != nil {
			return nil, err
		}
		p.nextToken()
	}

	if p.curIs(token.COLON) {
		p.nextToken()
		var end ast.Expr
		if !p.curIs(token.RBRACKET) {
			var err error
			end, err = p.parseExpression(LOWEST)
			if err != nil {
				return nil, err
			}
			p.nextToken()
		}
		if !p.curIs(token.RBRACKET) {
			return nil, newParseError(p.curLoc(), "expected ']', got '%s'", p.cur.Type)
		}
		return &ast.RangeIndex{Loc: loc, Src: src, Start: start, End: end}, nil
	}

	if !p.curIs(token.RBRACKET) {
		return nil, newParseError(p.curLoc(), "expected ']' or ':', got '%s'", p.cur.Type)
	}
	return &ast.Index{Loc: loc, Src: src, Idx: start}, nil
}

func (p *Parser) parseProp(src ast.Expr, typeProp bool) (ast.Expr, error) {
	loc := src.Location()
	p.nextToken() // consume '.' or '.:'
	if !p.curIs(token.IDENT) {
		return nil, newParseError(p.curLoc(), "expected a property name, got '%s'", p.cur.Type)
	}
	return &ast.Prop{Loc: loc, Src: src, Name: p.cur.Literal, TypeProp: typeProp}, nil
}

func (p *Parser) parseCall(fn ast.Expr) (ast.Expr, error) {
	loc := fn.Location()
	args, err := p.parseCallArgs()
	if err != nil {
		return nil, err
	}
	return &ast.Call{Loc: loc, Func: fn, Args: args}, nil
}

// parseCallArgs parses a call's argument list. cur must be '(' on entry;
// cur is ')' on return.
func (p *Parser) parseCallArgs() ([]ast.ListItem, error) {
	p.nextToken() // consume '('
	var args []ast.ListItem
	for !p.curIs(token.RPAREN) {
		isSpread := false
		if p.curIs(token.ELLIPSIS) {
			isSpread = true
			p.nextToken()
		}
		arg, err := p.parseExpression(LOWEST)
		if err != nil {
			return nil, err
		}
		args = append(args, ast.ListItem{Expr: arg, IsSpread: isSpread})
		p.nextToken()
		if p.curIs(token.COMMA) {
			p.nextToken()
		}
	}
	if !p.curIs(token.RPAREN) {
		return nil, newParseError(p.curLoc(), "expected ')', got '%s'", p.cur.Type)
	}
	return args, nil
}

func (p *Parser) parseFuncLit() (ast.Expr, error) {
	loc := p.curLoc()
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
	return &ast.FuncLit{Loc: loc, Params: params, CollectArgs: collect, Body: body}, nil
}

// parseParamList parses a function's parameter list. cur must be '(' on
// entry; cur is ')' on return. Each parameter is a bindable pattern
// (usually a bare name); a trailing "*name" sets CollectArgs.
func (p *Parser) parseParamList() ([]ast.Expr, bool, error) {
	p.nextToken() // consume '('
	var params []ast.Expr
	collect := false

	for !p.curIs(token.RPAREN) {
		if p.curIs(token.ASTERISK) {
			target, err := p.parseCollectTarget()
			if err != nil {
				return nil, false, err
			}
			params = append(params, target)
			collect = true
			p.nextToken()
			break
		}
		param, err := p.parseExpression(LOWEST)
		if err != nil {
			return nil, false, err
		}
		params = append(params, param)
		p.nextToken()
		if p.curIs(token.COMMA) {
			p.nextToken()
		}
	}
	if !p.curIs(token.RPAREN) {
		return nil, false, newParseError(p.curLoc(), "expected ')', got '%s'", p.cur.Type)
	}
	return params, collect, nil
}

// parseStrLit builds a StrLit from a STRING or INTERP_STRING token. For
// interpolated strings, each "${ ... }" slot's inner text is re-parsed
// eagerly, here at parse time, into its own expression tree (spec.md §4.7
// describes this as happening per-evaluation; pre-parsing once is
// equivalent for a language with no eval of dynamically-constructed
// source, and lets a malformed slot be reported as an ordinary syntax
// error instead of only surfacing the first time the line executes).
func (p *Parser) parseStrLit() (ast.Expr, error) {
	tok := p.cur
	loc := p.curLoc()
	if tok.Type == token.STRING {
		return &ast.StrLit{Loc: loc, Segments: []string{tok.Literal}}, nil
	}

	raw := tok.Lexeme
	var segments []string
	var slots []ast.InterpSlot
	pos := 0
	for _, slot := range tok.Slots {
		segments = append(segments, lexer.Unescape(raw[pos:slot.Start]))

		if slot.End-slot.Start < 3 || raw[slot.End-1] != '}' {
			return nil, newParseError(loc, "unterminated '${' in string literal")
		}
		innerStart := slot.Start + 2 // skip "${"
		innerEnd := slot.End - 1     // drop trailing "}"
		inner := raw[innerStart:innerEnd]

		expr, err := p.parseInterpSlot(inner, tok, innerStart)
		if err != nil {
			return nil, err
		}
		slots = append(slots, ast.InterpSlot{Expr: expr, RawColumn: innerStart})
		pos = slot.End
	}
	segments = append(segments, lexer.Unescape(raw[pos:]))

	return &ast.StrLit{Loc: loc, Segments: segments, Slots: slots}, nil
}

// parseInterpSlot re-lexes and parses inner (the text of one "${ ... }"
// slot, delimiters already stripped) as a standalone expression, with
// locations offset so errors point inside the enclosing script. Assumes
// the slot does not itself contain a literal newline.
func (p *Parser) parseInterpSlot(inner string, strTok token.Token, byteOffset int) (ast.Expr, error) {
	// NewAt reports its first byte at col+1, so col is the opening quote's
	// column plus the slot text's byte offset within the literal.
	col := strTok.Column + byteOffset
	sub := New(lexer.NewAt(inner, strTok.Line, col))
	expr, err := sub.parseExpression(LOWEST)
	if err != nil {
		return nil, err
	}
	if !sub.peekIs(token.EOF) {
		return nil, newParseError(sub.curLoc(), "unexpected trailing content in interpolation slot")
	}
	return expr, nil
}

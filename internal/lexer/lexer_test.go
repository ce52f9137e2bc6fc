package lexer_test

import (
	"testing"

	"github.com/lumen-lang/lumen/internal/lexer"
	"github.com/lumen-lang/lumen/internal/token"
)

func lexAll(src string) []token.Token {
	lx := lexer.New(src)
	var toks []token.Token
	for {
		tok := lx.NextToken()
		toks = append(toks, tok)
		if tok.Type == token.EOF {
			break
		}
	}
	return toks
}

func types(toks []token.Token) []token.Type {
	out := make([]token.Type, len(toks))
	for i, t := range toks {
		out[i] = t.Type
	}
	return out
}

func TestNextToken_Punctuation(t *testing.T) {
	toks := lexAll("{}[](),:;.")
	want := []token.Type{
		token.LBRACE, token.RBRACE, token.LBRACKET, token.RBRACKET,
		token.LPAREN, token.RPAREN, token.COMMA, token.COLON, token.SEMICOLON, token.DOT, token.EOF,
	}
	assertTypes(t, toks, want)
}

func TestNextToken_Digraphs(t *testing.T) {
	toks := lexAll(":= == != <= >= += -= *= /= %= && || .. ... -> === !== .:")
	want := []token.Type{
		token.DECLARE, token.EQ, token.NOT_EQ, token.LTE, token.GTE,
		token.PLUS_ASSIGN, token.MINUS_ASSIGN, token.ASTERISK_ASSIGN, token.SLASH_ASSIGN, token.PERCENT_ASSIGN,
		token.AND, token.OR, token.DOT_DOT, token.ELLIPSIS, token.ARROW,
		token.REF_EQ, token.REF_NOT_EQ, token.DOT_COLON, token.EOF,
	}
	assertTypes(t, toks, want)
}

func TestNextToken_DotVariants(t *testing.T) {
	// A single '.' must not be mis-lexed as the prefix of '..' or '...'.
	toks := lexAll("a.b")
	want := []token.Type{token.IDENT, token.DOT, token.IDENT, token.EOF}
	assertTypes(t, toks, want)
}

func TestNextToken_Keywords(t *testing.T) {
	toks := lexAll("break continue else false fn for if in null return true while")
	want := []token.Type{
		token.BREAK, token.CONTINUE, token.ELSE, token.FALSE, token.FN, token.FOR,
		token.IF, token.IN, token.NULL, token.RETURN, token.TRUE, token.WHILE, token.EOF,
	}
	assertTypes(t, toks, want)
}

func TestNextToken_IntLiteralStripsUnderscores(t *testing.T) {
	toks := lexAll("1_000_000")
	if toks[0].Type != token.INT {
		t.Fatalf("expected INT, got %s", toks[0].Type)
	}
	if toks[0].Literal != "1000000" {
		t.Errorf("Literal = %q, want %q", toks[0].Literal, "1000000")
	}
	if toks[0].Lexeme != "1_000_000" {
		t.Errorf("Lexeme = %q, want %q", toks[0].Lexeme, "1_000_000")
	}
}

func TestNextToken_PlainString(t *testing.T) {
	toks := lexAll(`"hello\nworld"`)
	if toks[0].Type != token.STRING {
		t.Fatalf("expected STRING, got %s", toks[0].Type)
	}
	if toks[0].Literal != "hello\nworld" {
		t.Errorf("Literal = %q, want %q", toks[0].Literal, "hello\nworld")
	}
}

func TestNextToken_InterpolatedStringSlots(t *testing.T) {
	toks := lexAll(`"a${x}b${y + 1}c"`)
	tok := toks[0]
	if tok.Type != token.INTERP_STRING {
		t.Fatalf("expected INTERP_STRING, got %s", tok.Type)
	}
	if len(tok.Slots) != 2 {
		t.Fatalf("expected 2 slots, got %d", len(tok.Slots))
	}
	seg0 := tok.Lexeme[tok.Slots[0].Start:tok.Slots[0].End]
	if seg0 != "${x}" {
		t.Errorf("slot 0 = %q, want %q", seg0, "${x}")
	}
	seg1 := tok.Lexeme[tok.Slots[1].Start:tok.Slots[1].End]
	if seg1 != "${y + 1}" {
		t.Errorf("slot 1 = %q, want %q", seg1, "${y + 1}")
	}
}

func TestNextToken_CommentsAreSkipped(t *testing.T) {
	toks := lexAll("1 // a comment\n2")
	want := []token.Type{token.INT, token.INT, token.EOF}
	assertTypes(t, toks, want)
}

func TestNewAt_OffsetsLocations(t *testing.T) {
	lx := lexer.NewAt("x", 5, 10)
	tok := lx.NextToken()
	if tok.Line != 5 || tok.Column != 11 {
		t.Errorf("got line:col %d:%d, want 5:11", tok.Line, tok.Column)
	}
}

func assertTypes(t *testing.T, got []token.Token, want []token.Type) {
	t.Helper()
	gotTypes := types(got)
	if len(gotTypes) != len(want) {
		t.Fatalf("token count = %d, want %d (%v)", len(gotTypes), len(want), gotTypes)
	}
	for i := range want {
		if gotTypes[i] != want[i] {
			t.Errorf("token %d: got %s, want %s", i, gotTypes[i], want[i])
		}
	}
}

// Package fuzz fuzzes the lexer/parser pair against arbitrary input. lumen
// has no bytecode VM, type checker, module loader or LSP server to target,
// so this corpus is scoped to the parts grounded in this tree's actual
// packages.
package fuzz

import (
	"strings"
	"testing"

	"github.com/lumen-lang/lumen/internal/parser"
)

// FuzzParse feeds arbitrary bytes to the parser and requires it to either
// return a program or a *parser.ParseError — never panic.
func FuzzParse(f *testing.F) {
	f.Add("print(1 + 2);")
	f.Add("x := 1; y := 2; print(x * (y + 4));")
	f.Add("[a, *rest] := [1, 2, 3];")
	f.Add("{x: p, y: q} := {x: 10, y: 20};")
	f.Add(`print("a${1 + 2}b");`)
	f.Add("fn f(a, *rest) { return rest; }")
	f.Add("for [i, v] in xs { if (v == 0) { break; } }")
	f.Add("(1).type();")

	f.Fuzz(func(t *testing.T, src string) {
		if len(src) > 4096 {
			return
		}
		defer func() {
			if r := recover(); r != nil {
				t.Fatalf("parser panicked on %q: %v", src, r)
			}
		}()
		prog, err := parser.Parse(src)
		if err != nil {
			var pe *parser.ParseError
			if !asParseError(err, &pe) {
				t.Fatalf("parser returned non-ParseError on %q: %v", src, err)
			}
			return
		}
		if prog == nil {
			t.Fatalf("parser returned nil program with no error on %q", src)
		}
	})
}

// FuzzParseReparse checks that parsing the same input twice panics on
// neither pass, catching state the parser might leak across
// runs (sub-parsers created for string-interpolation slots are the one place
// this package builds a second Parser instance).
func FuzzParseReparse(f *testing.F) {
	f.Add(`fn greet(name) { print("hi ${name}!"); } greet("a${1}b");`)

	f.Fuzz(func(t *testing.T, src string) {
		if len(src) > 4096 || strings.Count(src, "${") > 64 {
			return
		}
		for i := 0; i < 2; i++ {
			func() {
				defer func() {
					if r := recover(); r != nil {
						t.Fatalf("parser panicked on pass %d over %q: %v", i+1, src, r)
					}
				}()
				parser.Parse(src)
			}()
		}
	})
}

func asParseError(err error, target **parser.ParseError) bool {
	pe, ok := err.(*parser.ParseError)
	if !ok {
		return false
	}
	*target = pe
	return true
}

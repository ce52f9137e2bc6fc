// Package diag renders parse/evaluation failures as the single
// "<path>:<line>:<col>: <message>" stderr line spec.md §6 requires,
// optionally colorizing the location prefix when writing to a terminal.
package diag

import (
	"errors"
	"fmt"
	"io"

	"github.com/mattn/go-isatty"

	"github.com/lumen-lang/lumen/internal/evaluator"
	"github.com/lumen-lang/lumen/internal/parser"
)

// Locate extracts the line, column and message a *parser.ParseError or
// *evaluator.LocatedError carries. Any other error renders at 0:0.
func Locate(err error) (line, col int, msg string) {
	var parseErr *parser.ParseError
	if errors.As(err, &parseErr) {
		return parseErr.Line, parseErr.Col, parseErr.Msg
	}
	var locErr *evaluator.LocatedError
	if errors.As(err, &locErr) {
		return locErr.Line, locErr.Col, locErr.Err.Error()
	}
	return 0, 0, err.Error()
}

// Report writes the rendered diagnostic line for err to w, coloring the
// location prefix red when fd names a terminal (or a Cygwin pty).
func Report(w io.Writer, path string, err error, fd uintptr) {
	line, col, msg := Locate(err)
	prefix := fmt.Sprintf("%s:%d:%d:", path, line, col)
	if isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd) {
		prefix = "\x1b[31m" + prefix + "\x1b[0m"
	}
	fmt.Fprintf(w, "%s %s\n", prefix, msg)
}

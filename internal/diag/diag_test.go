package diag_test

import (
	"bytes"
	"testing"

	"github.com/lumen-lang/lumen/internal/diag"
	"github.com/lumen-lang/lumen/internal/parser"
)

func TestLocate_ParseError(t *testing.T) {
	_, err := parser.Parse("x := 1")
	if err == nil {
		t.Fatal("expected a parse error")
	}
	line, col, msg := diag.Locate(err)
	if line == 0 && col == 0 {
		t.Errorf("expected a non-zero location, got %d:%d", line, col)
	}
	if msg == "" {
		t.Error("expected a non-empty message")
	}
}

func TestReport_PlainNoColorForNonTTY(t *testing.T) {
	var buf bytes.Buffer
	_, err := parser.Parse(");")
	if err == nil {
		t.Fatal("expected a parse error")
	}
	// An invalid fd (not connected to any terminal) must never colorize.
	diag.Report(&buf, "script.lum", err, ^uintptr(0))
	out := buf.String()
	if bytes.Contains([]byte(out), []byte("\x1b[")) {
		t.Errorf("output should not contain ANSI escapes for a non-terminal fd, got %q", out)
	}
	if !bytes.HasPrefix([]byte(out), []byte("script.lum:")) {
		t.Errorf("output = %q, want it to start with %q", out, "script.lum:")
	}
}

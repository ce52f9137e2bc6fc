// Command lumen runs a single lumen script: lumen <script-path>.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/lumen-lang/lumen/internal/config"
	"github.com/lumen-lang/lumen/internal/diag"
	"github.com/lumen-lang/lumen/internal/evaluator"
	"github.com/lumen-lang/lumen/internal/pipeline"
)

// Exit codes (spec.md §6).
const (
	exitOK                = 0
	exitNoProgramName     = 101
	exitMissingScriptPath = 102
	exitFailure           = 103
)

func main() {
	os.Exit(run())
}

func run() int {
	if len(os.Args) < 1 {
		fmt.Fprintln(os.Stderr, "lumen: could not obtain program name")
		return exitNoProgramName
	}
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "usage: %s <script-path>\n", filepath.Base(os.Args[0]))
		return exitMissingScriptPath
	}
	scriptPath := os.Args[1]

	src, err := os.ReadFile(scriptPath)
	if err != nil {
		reportIOError(scriptPath, err)
		return exitFailure
	}

	ctx := evaluator.NewContext(resolveMaxCallDepth(scriptPath))
	ev := evaluator.NewWithContext(ctx)

	result := pipeline.Run(ev, string(src))
	if result.Err != nil {
		reportRunError(scriptPath, result.Err)
		return exitFailure
	}
	return exitOK
}

// resolveMaxCallDepth looks for a lumen.yaml starting at the script's
// directory and applies its max_call_depth override, if any. A missing or
// unreadable config is not an error — it just means the default applies.
func resolveMaxCallDepth(scriptPath string) int {
	dir := filepath.Dir(scriptPath)
	path, err := config.FindProjectConfig(dir)
	if err != nil || path == "" {
		return config.DefaultMaxCallDepth
	}
	cfg, err := config.LoadProjectConfig(path)
	if err != nil {
		return config.DefaultMaxCallDepth
	}
	return cfg.MaxCallDepth
}

func reportIOError(scriptPath string, err error) {
	fmt.Fprintf(os.Stderr, "%s: couldn't read script: %s\n", scriptPath, err)
}

// reportRunError renders a parse or evaluation failure as
// "<script-path>:<line>:<col>: <message>" (spec.md §6), colorizing the
// location prefix when stderr is a terminal.
func reportRunError(scriptPath string, err error) {
	diag.Report(os.Stderr, scriptPath, err, os.Stderr.Fd())
}

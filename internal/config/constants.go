// Package config holds interpreter-wide constants and the optional
// per-project YAML configuration file.
package config

// Version is the current lumen version, set at release build time via
// -ldflags (e.g. -X github.com/lumen-lang/lumen/internal/config.Version=...).
var Version = "0.1.0"

const SourceFileExt = ".lum"

// SourceFileExtensions are the recognized source file extensions.
var SourceFileExtensions = []string{".lum", ".lumen"}

// TrimSourceExt removes any recognized source extension from a filename.
// Returns the original string if no extension matches.
func TrimSourceExt(name string) string {
	for _, ext := range SourceFileExtensions {
		if len(name) >= len(ext) && name[len(name)-len(ext):] == ext {
			return name[:len(name)-len(ext)]
		}
	}
	return name
}

// HasSourceExt returns true if the path ends with any recognized source
// extension.
func HasSourceExt(path string) bool {
	for _, ext := range SourceFileExtensions {
		if len(path) >= len(ext) && path[len(path)-len(ext):] == ext {
			return true
		}
	}
	return false
}

// Built-in function names (spec.md §4.6).
const (
	PrintFuncName = "print"
	TypeFuncName  = "type"
	LenFuncName   = "len"
)

// Type namespace names (spec.md §4.6).
const (
	BoolsNamespace   = "bools"
	IntsNamespace    = "ints"
	StrsNamespace    = "strs"
	ListsNamespace   = "lists"
	ObjectsNamespace = "objects"
	FuncsNamespace   = "funcs"
)

// DefaultMaxCallDepth bounds function-call recursion depth before the
// evaluator reports a Dev "call stack exhausted" error.
const DefaultMaxCallDepth = 10000

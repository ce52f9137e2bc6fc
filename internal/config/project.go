package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ProjectConfig is the optional per-project "lumen.yaml" file. It carries
// non-semantic interpreter knobs only — nothing here may change the
// observable behavior of a script, since that would violate the closed,
// deterministic evaluator this language guarantees.
type ProjectConfig struct {
	// MaxCallDepth bounds recursive Func calls before the evaluator raises
	// a Dev "call stack exhausted" error. Zero means DefaultMaxCallDepth.
	MaxCallDepth int `yaml:"max_call_depth,omitempty"`

	// SourceExtensions is read from the file and defaults to
	// SourceFileExtensions when unset. No command in this repository reads
	// it: cmd/goldrun and HasSourceExt always use SourceFileExtensions.
	SourceExtensions []string `yaml:"source_extensions,omitempty"`
}

// LoadProjectConfig reads and parses a lumen.yaml file.
func LoadProjectConfig(path string) (*ProjectConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	cfg.setDefaults()
	return &cfg, nil
}

func (c *ProjectConfig) setDefaults() {
	if c.MaxCallDepth <= 0 {
		c.MaxCallDepth = DefaultMaxCallDepth
	}
	if len(c.SourceExtensions) == 0 {
		c.SourceExtensions = SourceFileExtensions
	}
}

// FindProjectConfig searches for lumen.yaml starting from dir and walking up
// to parent directories. Returns "" with a nil error if none is found.
func FindProjectConfig(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving directory: %w", err)
	}

	for {
		candidate := filepath.Join(dir, "lumen.yaml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

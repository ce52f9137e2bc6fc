package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/lumen-lang/lumen/internal/config"
)

func TestTrimSourceExt(t *testing.T) {
	cases := map[string]string{
		"main.lum":   "main",
		"main.lumen": "main",
		"main.txt":   "main.txt",
		"main":       "main",
	}
	for in, want := range cases {
		if got := config.TrimSourceExt(in); got != want {
			t.Errorf("TrimSourceExt(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestHasSourceExt(t *testing.T) {
	if !config.HasSourceExt("a/b/c.lum") {
		t.Error("c.lum should have a recognized source extension")
	}
	if config.HasSourceExt("a/b/c.go") {
		t.Error("c.go should not have a recognized source extension")
	}
}

func TestLoadProjectConfig_Defaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lumen.yaml")
	if err := os.WriteFile(path, []byte("max_call_depth: 500\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := config.LoadProjectConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if cfg.MaxCallDepth != 500 {
		t.Errorf("MaxCallDepth = %d, want 500", cfg.MaxCallDepth)
	}
	if len(cfg.SourceExtensions) != len(config.SourceFileExtensions) {
		t.Errorf("SourceExtensions should default to config.SourceFileExtensions, got %v", cfg.SourceExtensions)
	}
}

func TestLoadProjectConfig_EmptyFileUsesAllDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lumen.yaml")
	if err := os.WriteFile(path, []byte(""), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := config.LoadProjectConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if cfg.MaxCallDepth != config.DefaultMaxCallDepth {
		t.Errorf("MaxCallDepth = %d, want %d", cfg.MaxCallDepth, config.DefaultMaxCallDepth)
	}
}

func TestLoadProjectConfig_MissingFile(t *testing.T) {
	_, err := config.LoadProjectConfig(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err == nil {
		t.Fatal("expected an error for a missing config file")
	}
}

func TestFindProjectConfig_WalksUpToParent(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "lumen.yaml"), []byte("max_call_depth: 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	nested := filepath.Join(root, "a", "b", "c")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	found, err := config.FindProjectConfig(nested)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	want := filepath.Join(root, "lumen.yaml")
	if found != want {
		t.Errorf("FindProjectConfig = %q, want %q", found, want)
	}
}

func TestFindProjectConfig_NoneFound(t *testing.T) {
	dir := t.TempDir()
	found, err := config.FindProjectConfig(dir)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if found != "" {
		t.Errorf("FindProjectConfig = %q, want empty string", found)
	}
}

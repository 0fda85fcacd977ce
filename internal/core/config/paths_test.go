package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestResolvePaths_ExplicitRoot(t *testing.T) {
	cwd := t.TempDir()
	cfg := Default()
	cfg.Paths.ProjectRoot = "app"

	resolved, err := ResolvePaths(cfg, cwd)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}

	wantRoot := filepath.Join(cwd, "app")
	if resolved.ProjectRoot != wantRoot {
		t.Fatalf("expected root %q, got %q", wantRoot, resolved.ProjectRoot)
	}
	if resolved.StateDir != filepath.Join(wantRoot, ".depscope") {
		t.Fatalf("unexpected state dir %q", resolved.StateDir)
	}
	if resolved.JournalPath != filepath.Join(wantRoot, ".depscope", "history.db") {
		t.Fatalf("unexpected journal path %q", resolved.JournalPath)
	}
}

func TestResolvePaths_AbsoluteJournalPath(t *testing.T) {
	cwd := t.TempDir()
	dbPath := filepath.Join(t.TempDir(), "ops.db")

	cfg := Default()
	cfg.Paths.ProjectRoot = "."
	cfg.History.Path = dbPath

	resolved, err := ResolvePaths(cfg, cwd)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if resolved.JournalPath != dbPath {
		t.Fatalf("expected absolute journal path kept, got %q", resolved.JournalPath)
	}
}

func TestResolvePaths_EmptyCwd(t *testing.T) {
	if _, err := ResolvePaths(Default(), "  "); err == nil {
		t.Fatal("expected error for empty cwd")
	}
}

func TestDetectProjectRoot_FindsMarkerUpward(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "pyproject.toml"), []byte("[project]\n"), 0o644); err != nil {
		t.Fatalf("write marker: %v", err)
	}
	nested := filepath.Join(root, "src", "pkg")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	got, err := DetectProjectRoot([]string{nested})
	if err != nil {
		t.Fatalf("detect failed: %v", err)
	}
	if got != filepath.Clean(root) {
		t.Fatalf("expected %q, got %q", root, got)
	}
}

func TestResolveRelative(t *testing.T) {
	base := string(filepath.Separator) + filepath.Join("tmp", "base")

	if got := ResolveRelative(base, ""); got != filepath.Clean(base) {
		t.Fatalf("empty value should resolve to base, got %q", got)
	}
	if got := ResolveRelative(base, "sub"); got != filepath.Join(base, "sub") {
		t.Fatalf("relative value should join base, got %q", got)
	}
	abs := string(filepath.Separator) + filepath.Join("somewhere", "else")
	if got := ResolveRelative(base, abs); got != filepath.Clean(abs) {
		t.Fatalf("absolute value should be kept, got %q", got)
	}
}

package cliapp

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"depscope/internal/core/config"
)

func TestParseOptions_Defaults(t *testing.T) {
	opts, err := parseOptions(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.configPath != defaultConfigPath {
		t.Fatalf("unexpected config path: %q", opts.configPath)
	}
	if opts.once || opts.ui || opts.install || opts.verbose || opts.version {
		t.Fatalf("unexpected default flags: %+v", opts)
	}
	if len(opts.args) != 0 {
		t.Fatalf("unexpected positional args: %v", opts.args)
	}
}

func TestParseOptions_FlagsAndPositionalArgs(t *testing.T) {
	opts, err := parseOptions([]string{"-once", "-install", "-create-venv", "venv", "./project"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !opts.once || !opts.install {
		t.Fatalf("expected once and install set, got %+v", opts)
	}
	if opts.createVenv != "venv" {
		t.Fatalf("unexpected create-venv value: %q", opts.createVenv)
	}
	if len(opts.args) != 1 || opts.args[0] != "./project" {
		t.Fatalf("unexpected positional args: %v", opts.args)
	}
}

func TestParseOptions_UnknownFlag(t *testing.T) {
	if _, err := parseOptions([]string{"-definitely-not-a-flag"}); err == nil {
		t.Fatal("expected flag parse error")
	}
}

func TestApplyModeOptions_RejectsUIAndOnce(t *testing.T) {
	opts := &cliOptions{ui: true, once: true}
	cfg := config.Default()

	err := applyModeOptions(opts, cfg)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "cannot be combined") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestApplyModeOptions_RejectsExtraArgs(t *testing.T) {
	opts := &cliOptions{args: []string{"./a", "./b"}}
	cfg := config.Default()

	err := applyModeOptions(opts, cfg)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "at most one project root") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestApplyModeOptions_OverridesProjectRootWithPositionalArg(t *testing.T) {
	opts := &cliOptions{args: []string{"./override"}}
	cfg := config.Default()
	cfg.Paths.ProjectRoot = "./original"

	if err := applyModeOptions(opts, cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Paths.ProjectRoot != "./override" {
		t.Fatalf("unexpected project root: %q", cfg.Paths.ProjectRoot)
	}
}

func TestLoadConfig_CustomPathNoFallback(t *testing.T) {
	tmpDir := t.TempDir()
	custom := filepath.Join(tmpDir, "custom.toml")

	_, err := loadConfig(custom, tmpDir)
	if err == nil {
		t.Fatal("expected missing custom config error")
	}
	if !os.IsNotExist(err) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func TestLoadConfig_DefaultDiscoveryPrefersRealConfig(t *testing.T) {
	tmpDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(tmpDir, "depscope.toml"), []byte("version = 1\n\n[watch]\ndebounce = \"750ms\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(tmpDir, "depscope.example.toml"), []byte("version = 1\n\n[watch]\ndebounce = \"250ms\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadConfig(defaultConfigPath, tmpDir)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Watch.Debounce.String() != "750ms" {
		t.Fatalf("expected real config to win, got debounce %v", cfg.Watch.Debounce)
	}
}

func TestLoadConfig_FallsBackToExample(t *testing.T) {
	tmpDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(tmpDir, "depscope.example.toml"), []byte("version = 1\n\n[watch]\ndebounce = \"250ms\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadConfig(defaultConfigPath, tmpDir)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Watch.Debounce.String() != "250ms" {
		t.Fatalf("expected example fallback, got debounce %v", cfg.Watch.Debounce)
	}
}

func TestLoadConfig_NoFilesUsesDefaults(t *testing.T) {
	cfg, err := loadConfig(defaultConfigPath, t.TempDir())
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Version != 1 || len(cfg.Interpreter.VenvCandidates) == 0 {
		t.Fatalf("expected built-in defaults, got %+v", cfg)
	}
}

func TestResolveLogPath_HonorsXDGStateHome(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("XDG_STATE_HOME", tmpDir)

	got := resolveLogPath()
	if got != filepath.Join(tmpDir, "depscope", "depscope.log") {
		t.Fatalf("unexpected log path: %q", got)
	}
}

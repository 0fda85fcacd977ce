// # internal/core/config/config_test.go
package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "depscope.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
version = 1

[paths]
project_root = "./app"
state_dir = ".depscope"

[interpreter]
executable = "python3.12"
venv_candidates = ["venv", ".venv"]

[exclude]
dirs = [".git", "__pycache__"]
files = ["*.generated.py"]

[watch]
debounce = "1s"
refresh_per_second = 2.0
refresh_burst = 3

[aliases]
CV2 = "opencv-python-headless"

[history]
enabled = true
path = "journal.db"

[alerts]
beep = true
terminal = false

[observability]
enabled = true
port = 9900
otlp_endpoint = "127.0.0.1:4317"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Paths.ProjectRoot != "./app" {
		t.Fatalf("unexpected project root %q", cfg.Paths.ProjectRoot)
	}
	if cfg.Interpreter.Executable != "python3.12" {
		t.Fatalf("unexpected interpreter %q", cfg.Interpreter.Executable)
	}
	if len(cfg.Interpreter.VenvCandidates) != 2 {
		t.Fatalf("unexpected venv candidates %v", cfg.Interpreter.VenvCandidates)
	}
	if cfg.Watch.Debounce != time.Second {
		t.Fatalf("unexpected debounce %v", cfg.Watch.Debounce)
	}
	if cfg.Watch.RefreshPerSecond != 2.0 || cfg.Watch.RefreshBurst != 3 {
		t.Fatalf("unexpected watch limits %+v", cfg.Watch)
	}
	if cfg.Aliases["cv2"] != "opencv-python-headless" {
		t.Fatalf("alias keys must be lowercased, got %v", cfg.Aliases)
	}
	if !cfg.History.Enabled || cfg.History.Path != "journal.db" {
		t.Fatalf("unexpected history config %+v", cfg.History)
	}
	if cfg.Alerts.TerminalReportEnabled() {
		t.Fatal("terminal report should be disabled")
	}
	if !cfg.Alerts.Beep {
		t.Fatal("beep should be enabled")
	}
	if cfg.Observability.Port != 9900 {
		t.Fatalf("unexpected observability port %d", cfg.Observability.Port)
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, ""))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Version != 1 {
		t.Fatalf("expected version default 1, got %d", cfg.Version)
	}
	if cfg.Paths.StateDir != ".depscope" {
		t.Fatalf("unexpected state dir default %q", cfg.Paths.StateDir)
	}
	if len(cfg.Interpreter.VenvCandidates) != 4 || cfg.Interpreter.VenvCandidates[0] != "venv" {
		t.Fatalf("unexpected venv candidate defaults %v", cfg.Interpreter.VenvCandidates)
	}
	if cfg.Watch.Debounce != 500*time.Millisecond {
		t.Fatalf("unexpected debounce default %v", cfg.Watch.Debounce)
	}

	foundVenvExclude := false
	for _, dir := range cfg.Exclude.Dirs {
		if dir == "__pycache__" {
			foundVenvExclude = true
		}
	}
	if !foundVenvExclude {
		t.Fatalf("expected __pycache__ in default excludes, got %v", cfg.Exclude.Dirs)
	}

	if cfg.History.Enabled {
		t.Fatal("history must default to disabled")
	}
	if cfg.History.QueueCapacity != 256 || cfg.History.BatchSize != 16 {
		t.Fatalf("unexpected history defaults %+v", cfg.History)
	}
	if !cfg.Alerts.TerminalReportEnabled() {
		t.Fatal("terminal report must default to enabled")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoad_UnsupportedVersion(t *testing.T) {
	_, err := Load(writeConfig(t, "version = 7\n"))
	if err == nil || !strings.Contains(err.Error(), "unsupported config version") {
		t.Fatalf("expected version error, got %v", err)
	}
}

func TestLoad_InvalidTOML(t *testing.T) {
	_, err := Load(writeConfig(t, "version = [[["))
	if err == nil {
		t.Fatal("expected decode error")
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Version != 1 {
		t.Fatalf("expected version 1, got %d", cfg.Version)
	}
	if cfg.Watch.RefreshPerSecond <= 0 {
		t.Fatalf("expected refresh rate default, got %v", cfg.Watch.RefreshPerSecond)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("DEPSCOPE_INTERPRETER_EXECUTABLE", "/opt/python/bin/python3")
	t.Setenv("DEPSCOPE_WATCH_DEBOUNCE", "2s")
	t.Setenv("DEPSCOPE_HISTORY_ENABLED", "true")
	t.Setenv("DEPSCOPE_OBSERVABILITY_PORT", "9999")

	cfg := Default()
	ApplyEnvOverrides(cfg)

	if cfg.Interpreter.Executable != "/opt/python/bin/python3" {
		t.Fatalf("unexpected executable %q", cfg.Interpreter.Executable)
	}
	if cfg.Watch.Debounce != 2*time.Second {
		t.Fatalf("unexpected debounce %v", cfg.Watch.Debounce)
	}
	if !cfg.History.Enabled {
		t.Fatal("expected history enabled")
	}
	if cfg.Observability.Port != 9999 {
		t.Fatalf("unexpected port %d", cfg.Observability.Port)
	}
}

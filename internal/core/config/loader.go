package config

import (
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"depscope/internal/interp"
)

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)
	normalizeAliases(&cfg)

	if err := validateVersion(&cfg); err != nil {
		return nil, err
	}
	if err := validateInterpreter(&cfg); err != nil {
		return nil, err
	}
	if err := validateExclude(&cfg); err != nil {
		return nil, err
	}
	if err := validateWatch(&cfg); err != nil {
		return nil, err
	}
	if err := validateAliases(&cfg); err != nil {
		return nil, err
	}
	if err := validateHistory(&cfg); err != nil {
		return nil, err
	}
	if err := validateObservability(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	normalizeAliases(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Version == 0 {
		cfg.Version = 1
	}

	if strings.TrimSpace(cfg.Paths.StateDir) == "" {
		cfg.Paths.StateDir = ".depscope"
	}

	if len(cfg.Interpreter.VenvCandidates) == 0 {
		cfg.Interpreter.VenvCandidates = append([]string(nil), interp.DefaultVenvCandidates...)
	}
	if cfg.Interpreter.ProbeTimeout <= 0 {
		cfg.Interpreter.ProbeTimeout = interp.DefaultProbeTimeout
	}

	if len(cfg.Exclude.Dirs) == 0 {
		cfg.Exclude.Dirs = []string{
			".git", "__pycache__", "build", "dist", ".vscode",
			"venv", "env", ".venv", ".env",
		}
	}

	if cfg.Watch.Debounce == 0 {
		cfg.Watch.Debounce = 500 * time.Millisecond
	}
	if cfg.Watch.RefreshPerSecond == 0 {
		cfg.Watch.RefreshPerSecond = 0.5
	}
	if cfg.Watch.RefreshBurst == 0 {
		cfg.Watch.RefreshBurst = 1
	}

	if strings.TrimSpace(cfg.History.Path) == "" {
		cfg.History.Path = "history.db"
	}
	if cfg.History.QueueCapacity <= 0 {
		cfg.History.QueueCapacity = 256
	}
	if cfg.History.BatchSize <= 0 {
		cfg.History.BatchSize = 16
	}
	if cfg.History.FlushInterval <= 0 {
		cfg.History.FlushInterval = 200 * time.Millisecond
	}
	if cfg.History.ShutdownDrainTimeout <= 0 {
		cfg.History.ShutdownDrainTimeout = 5 * time.Second
	}

	if cfg.Observability.Port == 0 {
		cfg.Observability.Port = 9877
	}
}

func normalizeAliases(cfg *Config) {
	if len(cfg.Aliases) == 0 {
		return
	}
	normalized := make(map[string]string, len(cfg.Aliases))
	for name, pkg := range cfg.Aliases {
		name = strings.ToLower(strings.TrimSpace(name))
		pkg = strings.TrimSpace(pkg)
		if name == "" || pkg == "" {
			continue
		}
		normalized[name] = pkg
	}
	cfg.Aliases = normalized
}

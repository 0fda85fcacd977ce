package config

import (
	"fmt"
	"strings"

	"github.com/gobwas/glob"

	"depscope/internal/shared/util"
)

func validateVersion(cfg *Config) error {
	if cfg.Version < 1 {
		return fmt.Errorf("version must be >= 1, got %d", cfg.Version)
	}
	if cfg.Version > 1 {
		return fmt.Errorf("unsupported config version %d; only version 1 is supported", cfg.Version)
	}
	return nil
}

func validateInterpreter(cfg *Config) error {
	for i, name := range cfg.Interpreter.VenvCandidates {
		trimmed := strings.TrimSpace(name)
		if trimmed == "" {
			return fmt.Errorf("interpreter.venv_candidates[%d] must not be empty", i)
		}
		if util.ContainsPathSeparator(trimmed) {
			return fmt.Errorf("interpreter.venv_candidates[%d] must be a directory name, got %q", i, name)
		}
	}
	return nil
}

func validateExclude(cfg *Config) error {
	for i, pattern := range cfg.Exclude.Dirs {
		if strings.TrimSpace(pattern) == "" {
			return fmt.Errorf("exclude.dirs[%d] must not be empty", i)
		}
		if _, err := glob.Compile(pattern); err != nil {
			return fmt.Errorf("exclude.dirs[%d]: invalid pattern %q: %w", i, pattern, err)
		}
	}
	for i, pattern := range cfg.Exclude.Files {
		if strings.TrimSpace(pattern) == "" {
			return fmt.Errorf("exclude.files[%d] must not be empty", i)
		}
		if _, err := glob.Compile(pattern); err != nil {
			return fmt.Errorf("exclude.files[%d]: invalid pattern %q: %w", i, pattern, err)
		}
	}
	return nil
}

func validateWatch(cfg *Config) error {
	if cfg.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce must not be negative")
	}
	if cfg.Watch.RefreshPerSecond <= 0 {
		return fmt.Errorf("watch.refresh_per_second must be > 0, got %v", cfg.Watch.RefreshPerSecond)
	}
	if cfg.Watch.RefreshBurst < 1 {
		return fmt.Errorf("watch.refresh_burst must be >= 1, got %d", cfg.Watch.RefreshBurst)
	}
	return nil
}

func validateAliases(cfg *Config) error {
	for name, pkg := range cfg.Aliases {
		if strings.ContainsAny(pkg, " \t") {
			return fmt.Errorf("aliases.%s: package name %q must not contain whitespace", name, pkg)
		}
	}
	return nil
}

func validateHistory(cfg *Config) error {
	if !cfg.History.Enabled {
		return nil
	}
	if strings.TrimSpace(cfg.History.Path) == "" {
		return fmt.Errorf("history.path must not be empty when history is enabled")
	}
	if cfg.History.BatchSize > cfg.History.QueueCapacity {
		return fmt.Errorf("history.batch_size (%d) must not exceed history.queue_capacity (%d)",
			cfg.History.BatchSize, cfg.History.QueueCapacity)
	}
	return nil
}

func validateObservability(cfg *Config) error {
	if !cfg.Observability.Enabled {
		return nil
	}
	if cfg.Observability.Port < 1 || cfg.Observability.Port > 65535 {
		return fmt.Errorf("observability.port must be in 1..65535, got %d", cfg.Observability.Port)
	}
	return nil
}

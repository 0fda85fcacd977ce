// Package config loads and validates the depscope TOML configuration.
package config

import "time"

type Config struct {
	Version int `toml:"version"`

	Paths         PathsConfig         `toml:"paths"`
	Interpreter   InterpreterConfig   `toml:"interpreter"`
	Exclude       ExcludeConfig       `toml:"exclude"`
	Watch         WatchConfig         `toml:"watch"`
	Aliases       map[string]string   `toml:"aliases"`
	History       HistoryConfig       `toml:"history"`
	Alerts        AlertsConfig        `toml:"alerts"`
	Observability ObservabilityConfig `toml:"observability"`
}

type PathsConfig struct {
	// ProjectRoot is the directory scanned for Python sources. Empty
	// means detect from the working directory via project markers.
	ProjectRoot string `toml:"project_root"`
	// StateDir holds depscope-owned state such as the operation journal.
	StateDir string `toml:"state_dir"`
}

type InterpreterConfig struct {
	// Executable is the interpreter used when no virtual environment is
	// found. Empty means the platform default (python3 / python).
	Executable string `toml:"executable"`
	// VenvCandidates are the directory names probed for a project
	// virtual environment, in priority order.
	VenvCandidates []string `toml:"venv_candidates"`
	// ProbeTimeout bounds one stdlib classification subprocess.
	ProbeTimeout time.Duration `toml:"probe_timeout"`
}

type ExcludeConfig struct {
	Dirs  []string `toml:"dirs"`
	Files []string `toml:"files"`
}

type WatchConfig struct {
	Debounce time.Duration `toml:"debounce"`
	// RefreshPerSecond caps how often file changes may trigger a full
	// scan-and-resolve pass.
	RefreshPerSecond float64 `toml:"refresh_per_second"`
	RefreshBurst     int     `toml:"refresh_burst"`
}

type HistoryConfig struct {
	Enabled bool `toml:"enabled"`
	// Path of the journal database, relative to the state dir.
	Path                 string        `toml:"path"`
	QueueCapacity        int           `toml:"queue_capacity"`
	BatchSize            int           `toml:"batch_size"`
	FlushInterval        time.Duration `toml:"flush_interval"`
	ShutdownDrainTimeout time.Duration `toml:"shutdown_drain_timeout"`
}

type AlertsConfig struct {
	// Terminal enables the plain-text report after one-shot runs.
	Terminal *bool `toml:"terminal"`
	// Beep rings the terminal bell when missing packages are found.
	Beep bool `toml:"beep"`
}

type ObservabilityConfig struct {
	Enabled bool `toml:"enabled"`
	Port    int  `toml:"port"`
	// OTLPEndpoint enables trace export when set (host:port).
	OTLPEndpoint string `toml:"otlp_endpoint"`
}

// TerminalReportEnabled reports whether the plain-text report prints.
func (a AlertsConfig) TerminalReportEnabled() bool {
	if a.Terminal == nil {
		return true
	}
	return *a.Terminal
}

// JournalEnabled reports whether operations are persisted.
func (h HistoryConfig) JournalEnabled() bool {
	return h.Enabled
}

package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// ApplyEnvOverrides applies environment variable overrides to the
// configuration. Pattern: DEPSCOPE_[SECTION]_[KEY]
// (e.g., DEPSCOPE_INTERPRETER_EXECUTABLE).
func ApplyEnvOverrides(cfg *Config) {
	// Paths
	setEnvString(&cfg.Paths.ProjectRoot, "DEPSCOPE_PATHS_PROJECT_ROOT")
	setEnvString(&cfg.Paths.StateDir, "DEPSCOPE_PATHS_STATE_DIR")

	// Interpreter
	setEnvString(&cfg.Interpreter.Executable, "DEPSCOPE_INTERPRETER_EXECUTABLE")
	setEnvDuration(&cfg.Interpreter.ProbeTimeout, "DEPSCOPE_INTERPRETER_PROBE_TIMEOUT")

	// Watch
	setEnvDuration(&cfg.Watch.Debounce, "DEPSCOPE_WATCH_DEBOUNCE")
	setEnvFloat64(&cfg.Watch.RefreshPerSecond, "DEPSCOPE_WATCH_REFRESH_PER_SECOND")
	setEnvInt(&cfg.Watch.RefreshBurst, "DEPSCOPE_WATCH_REFRESH_BURST")

	// History
	setEnvBool(&cfg.History.Enabled, "DEPSCOPE_HISTORY_ENABLED")
	setEnvString(&cfg.History.Path, "DEPSCOPE_HISTORY_PATH")
	setEnvInt(&cfg.History.QueueCapacity, "DEPSCOPE_HISTORY_QUEUE_CAPACITY")
	setEnvDuration(&cfg.History.FlushInterval, "DEPSCOPE_HISTORY_FLUSH_INTERVAL")

	// Observability
	setEnvBool(&cfg.Observability.Enabled, "DEPSCOPE_OBSERVABILITY_ENABLED")
	setEnvInt(&cfg.Observability.Port, "DEPSCOPE_OBSERVABILITY_PORT")
	setEnvString(&cfg.Observability.OTLPEndpoint, "DEPSCOPE_OBSERVABILITY_OTLP_ENDPOINT")
}

func setEnvString(target *string, key string) {
	if val, ok := os.LookupEnv(key); ok {
		log.Printf("Applying env override: %s=%s", key, val)
		*target = val
	}
}

func setEnvInt(target *int, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(val); err == nil {
			log.Printf("Applying env override: %s=%s", key, val)
			*target = i
		}
	}
}

func setEnvBool(target *bool, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(strings.ToLower(val)); err == nil {
			log.Printf("Applying env override: %s=%s", key, val)
			*target = b
		}
	}
}

func setEnvFloat64(target *float64, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			log.Printf("Applying env override: %s=%s", key, val)
			*target = f
		}
	}
}

func setEnvDuration(target *time.Duration, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(val); err == nil {
			log.Printf("Applying env override: %s=%s", key, val)
			*target = d
		}
	}
}

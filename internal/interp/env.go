// Package interp models Python interpreter environments and the
// subprocess operations performed against them (pip queries, installs,
// module probes). Environment values are immutable snapshots: callers
// capture one at dispatch time and every subprocess of that operation
// runs against the captured interpreter, even if the active environment
// changes concurrently.
package interp

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"depscope/internal/core/errors"
	"depscope/internal/shared/util"
)

// DefaultVenvCandidates lists the directory names probed for a project
// virtual environment, in priority order.
var DefaultVenvCandidates = []string{"venv", "env", ".venv", ".env"}

// Environment identifies one Python interpreter. Root is empty for the
// global interpreter.
type Environment struct {
	Root       string
	Executable string
}

// IsGlobal reports whether the environment is the system interpreter
// rather than a project virtual environment.
func (e Environment) IsGlobal() bool {
	return e.Root == ""
}

// Label returns a short human-readable name for logs and UI headers.
func (e Environment) Label() string {
	if e.IsGlobal() {
		return "global"
	}
	return filepath.Base(e.Root)
}

// Exists reports whether the environment's interpreter binary is still
// present. Snapshots go stale when a venv is removed underneath the
// tool; callers re-detect when this turns false.
func (e Environment) Exists() bool {
	_, err := os.Stat(e.Executable)
	return err == nil
}

func defaultExecutable() string {
	if runtime.GOOS == "windows" {
		return "python"
	}
	return "python3"
}

func interpreterRelPath() string {
	if runtime.GOOS == "windows" {
		return filepath.Join("Scripts", "python.exe")
	}
	return filepath.Join("bin", "python")
}

// Global returns the system interpreter environment. An empty executable
// falls back to the platform default.
func Global(executable string) Environment {
	executable = strings.TrimSpace(executable)
	if executable == "" {
		executable = defaultExecutable()
	}
	return Environment{Executable: executable}
}

// Detect probes projectRoot for a virtual environment using the given
// candidate directory names and returns the first whose interpreter
// binary exists. When none matches it falls back to the global
// interpreter. Candidate order is priority order.
func Detect(projectRoot, fallbackExecutable string, candidates []string) Environment {
	if len(candidates) == 0 {
		candidates = DefaultVenvCandidates
	}
	for _, name := range candidates {
		root := filepath.Join(projectRoot, name)
		info, err := os.Stat(root)
		if err != nil || !info.IsDir() {
			continue
		}
		executable := filepath.Join(root, interpreterRelPath())
		if _, err := os.Stat(executable); err != nil {
			continue
		}
		return Environment{Root: root, Executable: executable}
	}
	return Global(fallbackExecutable)
}

// Create provisions a new virtual environment named name under
// projectRoot by invoking `<base> -m venv <target>`. The target
// directory must not already exist.
func Create(ctx context.Context, baseExecutable, projectRoot, name string) (Environment, error) {
	if strings.TrimSpace(projectRoot) == "" {
		return Environment{}, errors.New(errors.CodeValidationError, "project root is not set")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = "venv"
	}
	if util.ContainsPathSeparator(name) {
		err := errors.New(errors.CodeValidationError, "environment name must not contain path separators")
		return Environment{}, errors.AddContext(err, errors.CtxEnvironment, name)
	}

	target := filepath.Join(projectRoot, name)
	if _, err := os.Stat(target); err == nil {
		conflict := errors.New(errors.CodeConflict, "environment directory already exists")
		return Environment{}, errors.AddContext(conflict, errors.CtxPath, target)
	}

	baseExecutable = strings.TrimSpace(baseExecutable)
	if baseExecutable == "" {
		baseExecutable = defaultExecutable()
	}

	cmd := exec.CommandContext(ctx, baseExecutable, "-m", "venv", target)
	if out, err := cmd.CombinedOutput(); err != nil {
		wrapped := errors.Wrap(err, errors.CodeInternal, "provision virtual environment")
		wrapped = errors.AddContext(wrapped, errors.CtxPath, target)
		return Environment{}, errors.AddContext(wrapped, errors.CtxOperation, strings.TrimSpace(string(out)))
	}

	env := Environment{Root: target, Executable: filepath.Join(target, interpreterRelPath())}
	if _, err := os.Stat(env.Executable); err != nil {
		wrapped := errors.Wrap(err, errors.CodeInternal, "provisioned environment has no interpreter")
		return Environment{}, errors.AddContext(wrapped, errors.CtxPath, env.Executable)
	}
	return env, nil
}

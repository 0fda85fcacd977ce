package interp

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"os/exec"
	"strings"

	"depscope/internal/core/errors"
)

// maxLineBytes bounds a single streamed pip output line. Progress bars
// occasionally emit very long lines.
const maxLineBytes = 1024 * 1024

// Pip runs package manager subprocesses against a captured environment.
type Pip struct{}

type pipListEntry struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// ListInstalled runs `<python> -m pip list --format=json` and returns a
// map of lowercased distribution name to version.
func (Pip) ListInstalled(ctx context.Context, env Environment) (map[string]string, error) {
	cmd := exec.CommandContext(ctx, env.Executable, "-m", "pip", "list", "--format=json")
	out, err := cmd.Output()
	if err != nil {
		wrapped := errors.Wrap(err, errors.CodeUnavailable, "query installed packages")
		return nil, errors.AddContext(wrapped, errors.CtxEnvironment, env.Label())
	}

	var entries []pipListEntry
	if err := json.Unmarshal(out, &entries); err != nil {
		return nil, errors.Wrap(err, errors.CodeUnavailable, "decode pip list output")
	}

	installed := make(map[string]string, len(entries))
	for _, entry := range entries {
		name := strings.ToLower(strings.TrimSpace(entry.Name))
		if name == "" {
			continue
		}
		installed[name] = entry.Version
	}
	return installed, nil
}

// InstallStream is a lazy, finite, non-restartable sequence of install
// output lines. Lines arrive in subprocess order on an unbuffered
// channel, so a slow consumer backpressures through the pipe into pip
// itself. The stream must be consumed to completion; abandoning it
// leaks the subprocess goroutines.
type InstallStream struct {
	lines chan string
	done  chan struct{}
	err   error
}

// Lines returns the output channel. It is closed when the subprocess
// has exited and all output has been delivered.
func (s *InstallStream) Lines() <-chan string {
	return s.lines
}

// Err reports the final verdict: nil exactly when the subprocess exited
// zero. It blocks until the stream has finished.
func (s *InstallStream) Err() error {
	<-s.done
	return s.err
}

// Drain consumes all remaining lines, forwarding each to sink when sink
// is non-nil, and returns the final verdict.
func (s *InstallStream) Drain(sink func(line string)) error {
	for line := range s.lines {
		if sink != nil {
			sink(line)
		}
	}
	return s.Err()
}

func finishedInstallStream(err error) *InstallStream {
	s := &InstallStream{lines: make(chan string), done: make(chan struct{}), err: err}
	close(s.lines)
	close(s.done)
	return s
}

// Install launches `<python> -m pip install <packages...>` against env
// and returns a stream of its interleaved stdout and stderr. An empty
// package list is a no-op success with an already-finished stream.
func (Pip) Install(ctx context.Context, env Environment, packages []string) *InstallStream {
	if len(packages) == 0 {
		return finishedInstallStream(nil)
	}

	args := append([]string{"-m", "pip", "install"}, packages...)
	cmd := exec.CommandContext(ctx, env.Executable, args...)

	pr, pw := io.Pipe()
	cmd.Stdout = pw
	cmd.Stderr = pw

	if err := cmd.Start(); err != nil {
		_ = pw.Close()
		_ = pr.Close()
		wrapped := errors.Wrap(err, errors.CodeUnavailable, "start package install")
		return finishedInstallStream(errors.AddContext(wrapped, errors.CtxEnvironment, env.Label()))
	}

	s := &InstallStream{lines: make(chan string), done: make(chan struct{})}

	go func() {
		defer close(s.lines)
		scanner := bufio.NewScanner(pr)
		scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
		for scanner.Scan() {
			s.lines <- scanner.Text()
		}
		// A scan error aborts the reader side. Closing with the error
		// fails pending subprocess writes so Wait can return.
		_ = pr.CloseWithError(scanner.Err())
	}()

	go func() {
		defer close(s.done)
		waitErr := cmd.Wait()
		_ = pw.Close()
		if waitErr != nil {
			wrapped := errors.Wrap(waitErr, errors.CodeInstallFailed, "package install failed")
			wrapped = errors.AddContext(wrapped, errors.CtxEnvironment, env.Label())
			if exitErr, ok := waitErr.(*exec.ExitError); ok {
				wrapped = errors.AddContext(wrapped, errors.CtxExitCode, exitErr.ExitCode())
			}
			s.err = wrapped
		}
	}()

	return s
}

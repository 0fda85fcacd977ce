package app

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"depscope/internal/core/ports"
	"depscope/internal/data/history"
	"depscope/internal/interp"
	"depscope/internal/shared/observability"
)

// Install streams a pip install of the named packages into the
// environment active at dispatch. An empty list falls back to the
// missing set of the last refresh; nothing to install is immediate
// success without touching pip. Concurrent installs run unserialized,
// each under its own operation id.
func (a *App) Install(ctx context.Context, packages []string, sink ports.LineSink) ports.InstallResult {
	env := a.ActiveEnvironment()

	if len(packages) == 0 {
		if report, ok := a.LastReport(); ok {
			packages = append([]string(nil), report.Missing...)
		}
	}
	packages = normalizePackages(packages)

	result := ports.InstallResult{
		OperationID: uuid.NewString(),
		Packages:    packages,
	}

	if len(packages) == 0 {
		result.Success = true
		a.emitInstallEvent(ports.InstallEvent{
			OperationID: result.OperationID,
			Done:        true,
			Success:     true,
		})
		return result
	}

	started := time.Now()
	stream := a.Resolver.Install(ctx, env, packages)
	lineCount := 0
	drainErr := stream.Drain(func(line string) {
		lineCount++
		observability.InstallLinesTotal.Inc()
		if sink != nil {
			sink(line)
		}
		a.emitInstallEvent(ports.InstallEvent{
			OperationID: result.OperationID,
			Packages:    packages,
			Line:        line,
		})
	})

	result.Lines = lineCount
	result.Duration = time.Since(started)
	if drainErr != nil {
		result.Error = drainErr.Error()
		observability.InstallsTotal.WithLabelValues("error").Inc()
	} else {
		result.Success = true
		observability.InstallsTotal.WithLabelValues("ok").Inc()
	}
	observability.InstallDuration.Observe(result.Duration.Seconds())

	a.emitInstallEvent(ports.InstallEvent{
		OperationID: result.OperationID,
		Packages:    packages,
		Done:        true,
		Success:     result.Success,
		Error:       result.Error,
	})
	a.journalInstall(env, result)

	return result
}

func normalizePackages(packages []string) []string {
	seen := make(map[string]bool, len(packages))
	out := make([]string, 0, len(packages))
	for _, name := range packages {
		trimmed := strings.TrimSpace(name)
		if trimmed == "" || seen[trimmed] {
			continue
		}
		seen[trimmed] = true
		out = append(out, trimmed)
	}
	return out
}

func (a *App) journalInstall(env interp.Environment, result ports.InstallResult) {
	if a.journalQueue == nil {
		return
	}

	a.enqueueJournal(history.Record{
		ID:          result.OperationID,
		Kind:        history.KindInstall,
		Timestamp:   time.Now().UTC(),
		Environment: env.Label(),
		Packages:    append([]string(nil), result.Packages...),
		Success:     result.Success,
		LineCount:   result.Lines,
		Duration:    result.Duration,
		Error:       result.Error,
	})
}

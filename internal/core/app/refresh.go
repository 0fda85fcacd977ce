package app

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"depscope/internal/core/errors"
	"depscope/internal/core/ports"
	"depscope/internal/data/history"
	"depscope/internal/engine/parser"
	"depscope/internal/engine/resolver"
	"depscope/internal/shared/observability"
)

// Refresh scans the project, extracts every import and resolves the
// package picture against the environment active at dispatch. Files
// with syntax errors are skipped, never fatal.
func (a *App) Refresh(ctx context.Context) (ports.RefreshResult, error) {
	started := time.Now()
	env := a.detectEnvironment()

	files, err := a.ScanProject()
	if err != nil {
		return ports.RefreshResult{}, errors.AddContext(err, errors.CtxOperation, "scan_project")
	}

	parsed := make([]*parser.File, 0, len(files))
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return ports.RefreshResult{}, err
		}
		file, err := a.processFile(path)
		if err != nil {
			if errors.IsCode(err, errors.CodeParseFailure) {
				slog.Debug("skipping file with syntax errors", "path", path)
			} else {
				slog.Warn("failed to process file", "path", path, "error", err)
			}
			continue
		}
		parsed = append(parsed, file)
	}

	references := parser.CollectModuleReferences(parsed)
	byModule := parser.GroupByModule(references)
	resolution := a.Resolver.Resolve(ctx, env, byModule)

	result := ports.RefreshResult{
		GeneratedAt: time.Now().UTC(),
		Duration:    time.Since(started),
		Environment: env,
		FileCount:   len(parsed),
		ModuleCount: len(byModule),
		StdlibCount: len(resolution.Stdlib),
		Installed:   resolution.Installed,
		Packages:    resolution.Packages,
		Missing:     resolution.Missing,
	}

	observability.RefreshDuration.Observe(result.Duration.Seconds())
	observability.ModulesDetected.Set(float64(result.ModuleCount))
	observability.PackagesMissing.Set(float64(len(result.Missing)))

	a.setLastReport(result)
	a.emitUpdate(result)
	a.journalRefresh(result)

	return result, nil
}

func (a *App) processFile(path string) (*parser.File, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	parseStart := time.Now()
	file, err := a.Parser.ParseFile(path, content)
	observability.ParsingDuration.Observe(time.Since(parseStart).Seconds())
	if err != nil {
		return nil, err
	}
	return file, nil
}

func (a *App) journalRefresh(result ports.RefreshResult) {
	if a.journalQueue == nil {
		return
	}

	installedInUse := 0
	for _, status := range result.Packages {
		if status.State == resolver.StateInstalled {
			installedInUse++
		}
	}

	a.enqueueJournal(history.Record{
		ID:             uuid.NewString(),
		Kind:           history.KindRefresh,
		Timestamp:      result.GeneratedAt,
		Environment:    result.Environment.Label(),
		FileCount:      result.FileCount,
		ModuleCount:    result.ModuleCount,
		InstalledCount: installedInUse,
		MissingCount:   len(result.Missing),
		Success:        true,
		Duration:       result.Duration,
	})
}

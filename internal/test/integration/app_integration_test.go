package integration

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"depscope/internal/core/app"
	"depscope/internal/core/config"
	"depscope/internal/core/ports"
	"depscope/internal/data/history"
	"depscope/internal/engine/resolver"
)

// fakePython stands in for a venv interpreter: pip list reports
// requests, pip install echoes one line per package, and the
// classification probe fails so the embedded stdlib table answers.
const fakePython = `#!/bin/sh
if [ "$1" = "-m" ] && [ "$2" = "pip" ]; then
	if [ "$3" = "list" ]; then
		echo '[{"name": "requests", "version": "2.31.0"}]'
		exit 0
	fi
	if [ "$3" = "install" ]; then
		shift 3
		for pkg in "$@"; do
			echo "Collecting $pkg"
		done
		echo "Successfully installed $*"
		exit 0
	fi
fi
exit 3
`

func createTestProject(t *testing.T, dir string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake interpreter script requires a POSIX shell")
	}

	binDir := filepath.Join(dir, "venv", "bin")
	require.NoError(t, os.MkdirAll(binDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(binDir, "python"), []byte(fakePython), 0o755))

	mainPy := `import os
import requests
import numpy as np

def fetch(url):
    return requests.get(url)
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.py"), []byte(mainPy), 0o644))

	require.NoError(t, os.Mkdir(filepath.Join(dir, "helpers"), 0o755))
	utilPy := `import sys
from yaml import safe_load
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "helpers", "util.py"), []byte(utilPy), 0o644))
}

func testConfig() *config.Config {
	cfg := config.Default()
	terminal := false
	cfg.Alerts.Terminal = &terminal
	cfg.History.Enabled = true
	return cfg
}

func newService(t *testing.T, cfg *config.Config, dir string) ports.DependencyService {
	t.Helper()

	paths := config.ResolvedPaths{
		ProjectRoot: dir,
		StateDir:    filepath.Join(dir, ".depscope"),
		JournalPath: filepath.Join(dir, ".depscope", "history.db"),
	}

	application, err := app.New(cfg, paths)
	require.NoError(t, err)

	service := application.DependencyService()
	t.Cleanup(func() { _ = service.Close(context.Background()) })
	return service
}

func TestFullPipelineIntegration(t *testing.T) {
	dir := t.TempDir()
	createTestProject(t, dir)
	service := newService(t, testConfig(), dir)

	ctx := context.Background()
	report, err := service.Refresh(ctx)
	require.NoError(t, err)

	// Scan and resolve against the fake venv.
	assert.Equal(t, 2, report.FileCount)
	assert.Equal(t, 5, report.ModuleCount, "os, requests, numpy, sys, yaml")
	assert.Equal(t, 2, report.StdlibCount, "os and sys")
	assert.Equal(t, "venv", report.Environment.Label())
	assert.Equal(t, map[string]string{"requests": "2.31.0"}, report.Installed)
	assert.Equal(t, []string{"numpy", "pyyaml"}, report.Missing)

	byName := make(map[string]resolver.PackageStatus, len(report.Packages))
	for _, status := range report.Packages {
		byName[status.InstallName] = status
	}
	assert.Equal(t, "yaml", byName["pyyaml"].ImportName, "alias table maps yaml to pyyaml")
	assert.Equal(t, resolver.StateMissing, byName["pyyaml"].State)
	assert.Equal(t, resolver.StateInstalled, byName["requests"].State)
	assert.Equal(t, "2.31.0", byName["requests"].Version)
	assert.Equal(t, []string{filepath.Join(dir, "main.py")}, byName["requests"].Files)

	// Install everything missing, streaming pip output.
	var lines []string
	result, err := service.Install(ctx, ports.InstallRequest{
		Sink: func(line string) { lines = append(lines, line) },
	})
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.NotEmpty(t, result.OperationID)
	assert.Equal(t, []string{"numpy", "pyyaml"}, result.Packages)
	require.Equal(t, []string{
		"Collecting numpy",
		"Collecting pyyaml",
		"Successfully installed numpy pyyaml",
	}, lines)
	assert.Equal(t, len(lines), result.Lines)

	// Both operations reach the journal once the worker flushes.
	var records []history.Record
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		records, err = service.RecentOperations(ctx, 10)
		require.NoError(t, err)
		if len(records) >= 2 {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	require.Len(t, records, 2)

	kinds := make(map[history.Kind]history.Record, len(records))
	for _, record := range records {
		kinds[record.Kind] = record
	}

	installRecord, ok := kinds[history.KindInstall]
	require.True(t, ok, "expected an install record")
	assert.Equal(t, result.OperationID, installRecord.ID)
	assert.Equal(t, []string{"numpy", "pyyaml"}, installRecord.Packages)
	assert.True(t, installRecord.Success)

	refreshRecord, ok := kinds[history.KindRefresh]
	require.True(t, ok, "expected a refresh record")
	assert.Equal(t, 2, refreshRecord.FileCount)
	assert.Equal(t, 2, refreshRecord.MissingCount)
	assert.Equal(t, "venv", refreshRecord.Environment)
}

func TestWatchPipelineIntegration(t *testing.T) {
	dir := t.TempDir()
	createTestProject(t, dir)

	cfg := testConfig()
	cfg.History.Enabled = false
	cfg.Watch.Debounce = 50 * time.Millisecond
	cfg.Watch.RefreshPerSecond = 100
	cfg.Watch.RefreshBurst = 10

	service := newService(t, cfg, dir)
	watch := service.WatchService()

	ctx := context.Background()
	updates := make(chan ports.RefreshResult, 8)
	require.NoError(t, watch.Subscribe(ctx, func(result ports.RefreshResult) {
		updates <- result
	}))
	require.NoError(t, watch.Start(ctx))

	// Baseline scan before touching the tree.
	_, err := service.Refresh(ctx)
	require.NoError(t, err)

	select {
	case report := <-updates:
		assert.Equal(t, 2, report.FileCount)
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for baseline update")
	}

	// A new source file flows through fsnotify, the debouncer and the
	// rate limiter into a fresh report.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "extra.py"), []byte("import flask\n"), 0o644))

	deadline := time.After(5 * time.Second)
	for {
		select {
		case report := <-updates:
			if report.FileCount != 3 {
				continue
			}
			assert.Contains(t, report.Missing, "flask")
			return
		case <-deadline:
			t.Fatal("timed out waiting for watch-triggered refresh")
		}
	}
}

package app

import (
	"context"
	"fmt"
	"log/slog"

	"depscope/internal/core/watcher"
)

func (a *App) StartWatcher() error {
	w, err := watcher.NewWatcher(
		a.Config.Watch.Debounce,
		a.Config.Exclude.Dirs,
		a.Config.Exclude.Files,
		a.HandleChanges,
	)
	if err != nil {
		return err
	}
	a.activeWatcher = w
	return w.Watch([]string{a.paths.ProjectRoot})
}

// HandleChanges runs a rate-limited refresh after a debounced batch of
// file events. The limiter keeps editor save storms from stacking
// interpreter subprocesses.
func (a *App) HandleChanges(paths []string) {
	slog.Info("detected changes", "count", len(paths))

	ctx := context.Background()
	if err := a.refreshLimiter.Wait(ctx, 1); err != nil {
		return
	}

	report, err := a.Refresh(ctx)
	if err != nil {
		slog.Error("refresh after change failed", "error", err)
		return
	}

	a.PrintReport(report, report.Duration)
	if a.Config.Alerts.Beep && len(report.Missing) > 0 {
		fmt.Print("\a")
	}
}

package app

import (
	"context"
	"log/slog"

	"github.com/zach-fau/codescope/internal/core/watcher"
)

// StartWatcher re-runs the analysis when source files or manifests
// change. Rescans are rate limited so event bursts collapse into one
// run after the debounce window.
func (a *App) StartWatcher(ctx context.Context) error {
	w, err := watcher.NewWatcher(
		a.Config.Watch.Debounce,
		a.Config.Exclude.Dirs,
		a.Config.Exclude.Files,
		func(paths []string) {
			if !a.rescanLimiter.Allow(1) {
				slog.Debug("rescan suppressed by rate limit", "changed", len(paths))
				return
			}
			slog.Info("change detected, re-running analysis", "changed", len(paths))
			if _, err := a.RunAnalysis(ctx); err != nil {
				slog.Error("analysis failed after change", "error", err)
			}
		},
	)
	if err != nil {
		return err
	}
	w.SetFileFilters(a.analyzer.SupportedExtensions(), []string{"package.json"})
	a.activeWatcher = w
	return w.Watch([]string{a.Config.Paths.ProjectRoot})
}

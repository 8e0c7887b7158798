package app

import (
	"log/slog"
	"sync"
	"time"

	"github.com/zach-fau/codescope/internal/core/config"
	"github.com/zach-fau/codescope/internal/core/watcher"
	"github.com/zach-fau/codescope/internal/data/history"
	"github.com/zach-fau/codescope/internal/engine/bundle"
	"github.com/zach-fau/codescope/internal/engine/graph"
	"github.com/zach-fau/codescope/internal/engine/imports"
	"github.com/zach-fau/codescope/internal/shared/observability"
	"github.com/zach-fau/codescope/internal/shared/util"
	"github.com/zach-fau/codescope/internal/ui/report"
)

// Result is one complete analysis of the project.
type Result struct {
	RunID        string
	GeneratedAt  time.Time
	ProjectName  string
	Graph        *graph.Graph
	Imports      *imports.ProjectImports
	Bundle       *bundle.Analysis
	Savings      *bundle.SavingsReport
	ExportCounts map[string]int
	FilesScanned int
	SkippedFiles int
}

func (r *Result) CycleCount() int {
	if r == nil || r.Graph == nil {
		return 0
	}
	return len(r.Graph.DetectCycles())
}

func (r *Result) ConflictCount() int {
	if r == nil || r.Graph == nil {
		return 0
	}
	return len(r.Graph.DetectVersionConflicts())
}

type App struct {
	Config   *config.Config
	analyzer *imports.Analyzer
	history  *history.Store

	resultMu   sync.RWMutex
	lastResult *Result

	updateMu sync.RWMutex
	onUpdate func(*Result)

	activeWatcher *watcher.Watcher
	rescanLimiter *util.Limiter
}

func New(cfg *config.Config) (*App, error) {
	analyzer, err := imports.NewAnalyzer()
	if err != nil {
		return nil, err
	}

	var store *history.Store
	if cfg.History.Enabled {
		store, err = history.Open(cfg.History.Path)
		if err != nil {
			return nil, err
		}
	}

	return &App{
		Config:   cfg,
		analyzer: analyzer,
		history:  store,
		// At most one rescan per second during watch-mode churn.
		rescanLimiter: util.NewLimiter(1, 1),
	}, nil
}

func (a *App) SetUpdateHandler(handler func(*Result)) {
	a.updateMu.Lock()
	defer a.updateMu.Unlock()
	a.onUpdate = handler
}

func (a *App) CurrentResult() *Result {
	a.resultMu.RLock()
	defer a.resultMu.RUnlock()
	return a.lastResult
}

func (a *App) notify(result *Result) {
	a.updateMu.RLock()
	handler := a.onUpdate
	a.updateMu.RUnlock()
	if handler != nil {
		handler(result)
	}
}

// Health implements observability.HealthSource.
func (a *App) Health() observability.HealthStatus {
	status := observability.HealthStatus{Status: "up"}

	result := a.CurrentResult()
	if result == nil {
		status.Status = "starting"
		return status
	}
	status.LastRunAt = result.GeneratedAt
	status.LastRunID = result.RunID
	if result.Imports != nil {
		status.ParseErrors = result.Imports.ParseErrorCount()
	}
	return status
}

// ExportReports writes the formats enabled in config for the given
// result.
func (a *App) ExportReports(result *Result) ([]string, error) {
	if result == nil {
		return nil, nil
	}
	return report.Export(report.Data{
		ProjectName:  result.ProjectName,
		RunID:        result.RunID,
		GeneratedAt:  result.GeneratedAt,
		Graph:        result.Graph,
		Imports:      result.Imports,
		Bundle:       result.Bundle,
		Savings:      result.Savings,
		ExportCounts: result.ExportCounts,
	}, report.ExportOptions{
		Dir:      a.Config.Export.Dir,
		JSON:     a.Config.Export.JSON,
		CSV:      a.Config.Export.CSV,
		Markdown: a.Config.Export.Markdown,
	})
}

func (a *App) Close() error {
	if a.activeWatcher != nil {
		if err := a.activeWatcher.Close(); err != nil {
			slog.Warn("failed to close watcher", "error", err)
		}
	}
	if a.history != nil {
		return a.history.Close()
	}
	return nil
}

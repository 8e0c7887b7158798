// # internal/ui/report/report.go
package report

import (
	"time"

	"github.com/zach-fau/codescope/internal/engine/bundle"
	"github.com/zach-fau/codescope/internal/engine/graph"
	"github.com/zach-fau/codescope/internal/engine/imports"
)

// Data bundles everything a report generator can draw from. Bundle,
// Savings and ExportCounts are optional and sections depending on
// them are skipped when absent.
type Data struct {
	ProjectName  string
	RunID        string
	GeneratedAt  time.Time
	Graph        *graph.Graph
	Imports      *imports.ProjectImports
	Bundle       *bundle.Analysis
	Savings      *bundle.SavingsReport
	ExportCounts map[string]int
}

func (d *Data) cycleCount() int {
	if d.Graph == nil {
		return 0
	}
	return len(d.Graph.DetectCycles())
}

func (d *Data) conflictCount() int {
	if d.Graph == nil {
		return 0
	}
	return len(d.Graph.DetectVersionConflicts())
}

func (d *Data) filesAnalyzed() int {
	if d.Imports == nil {
		return 0
	}
	return d.Imports.FileCount()
}

func (d *Data) parseErrors() int {
	if d.Imports == nil {
		return 0
	}
	return d.Imports.ParseErrorCount()
}

func (d *Data) totalSavings() int64 {
	if d.Savings == nil {
		return 0
	}
	return d.Savings.TotalSavings
}

package tui

import (
	"strings"
	"testing"

	"github.com/zach-fau/codescope/internal/core/app"
	"github.com/zach-fau/codescope/internal/engine/graph"
)

func testResult() *app.Result {
	g := graph.NewGraph()
	g.AddDependency("a", "1.0.0", graph.TypeProduction)
	g.AddDependency("b", "1.0.0", graph.TypeProduction)
	g.AddEdge("a", "b")
	g.AddEdge("b", "a")
	g.TrackVersionRequirement("tslib", "^1.0.0", "x")
	g.TrackVersionRequirement("tslib", "^2.0.0", "y")
	return &app.Result{Graph: g, FilesScanned: 3}
}

func TestApplyResultPopulatesLists(t *testing.T) {
	m := initialModel()
	m = m.applyResult(testResult())

	// One cycle plus one conflict.
	if len(m.issueList.Items()) != 2 {
		t.Fatalf("expected 2 issue items, got %d", len(m.issueList.Items()))
	}
	if len(m.packageList.Items()) != 2 {
		t.Fatalf("expected 2 package items, got %d", len(m.packageList.Items()))
	}
	if len(m.cycles) != 1 {
		t.Fatalf("expected 1 cycle, got %d", len(m.cycles))
	}
	if m.conflicts != 1 {
		t.Fatalf("expected 1 conflict, got %d", m.conflicts)
	}
}

func TestViewShowsSummary(t *testing.T) {
	m := initialModel()
	m = m.applyResult(testResult())

	view := m.View()
	if !strings.Contains(view, "1 cycles") {
		t.Error("expected cycle count in view")
	}
	if !strings.Contains(view, "1 conflicts") {
		t.Error("expected conflict count in view")
	}
	if !strings.Contains(view, "3 files") {
		t.Error("expected file count in view")
	}
}

func TestViewCleanProject(t *testing.T) {
	g := graph.NewGraph()
	g.AddDependency("a", "1.0.0", graph.TypeProduction)

	m := initialModel()
	m = m.applyResult(&app.Result{Graph: g})

	if !strings.Contains(m.View(), "Dependencies Clean") {
		t.Error("expected clean summary for project without issues")
	}
}

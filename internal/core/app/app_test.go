package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/zach-fau/codescope/internal/core/config"
)

func writeProjectFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", rel, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", rel, err)
	}
}

func testProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()

	writeProjectFile(t, root, "package.json", `{
		"name": "demo-app",
		"version": "1.0.0",
		"dependencies": {"react": "^18.2.0", "lodash": "^4.17.21"},
		"devDependencies": {"jest": "^29.0.0"}
	}`)
	writeProjectFile(t, root, "src/index.js", `
import React from 'react';
import { map, filter } from 'lodash';
import './styles.css';
`)
	writeProjectFile(t, root, "src/util.ts", `
import { map } from 'lodash';
const fs = require('fs');
`)
	writeProjectFile(t, root, "src/broken.js", "import { from 'nowhere")
	writeProjectFile(t, root, "README.md", "# demo")
	writeProjectFile(t, root, "node_modules/react/package.json", `{"name": "react", "version": "18.2.0"}`)
	writeProjectFile(t, root, "node_modules/react/index.js", `module.exports = {}`)

	return root
}

func newTestApp(t *testing.T, root string) *App {
	t.Helper()
	cfg := config.Default()
	cfg.Paths.ProjectRoot = root

	a, err := New(cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	t.Cleanup(func() { a.Close() })
	return a
}

func TestRunAnalysis(t *testing.T) {
	root := testProject(t)
	a := newTestApp(t, root)

	result, err := a.RunAnalysis(context.Background())
	if err != nil {
		t.Fatalf("RunAnalysis failed: %v", err)
	}

	if result.ProjectName != "demo-app" {
		t.Errorf("Expected project name demo-app, got %q", result.ProjectName)
	}
	// Root node plus three declared dependencies.
	if result.Graph.NodeCount() != 4 {
		t.Errorf("Expected 4 graph nodes, got %d", result.Graph.NodeCount())
	}
	if !result.Graph.Contains("react") || !result.Graph.Contains("jest") {
		t.Error("Expected declared dependencies in graph")
	}

	deps := result.Graph.Dependencies("demo-app")
	if len(deps) != 3 {
		t.Errorf("Expected 3 edges from root package, got %d", len(deps))
	}

	// node_modules is excluded, so only the three src files are seen
	// and the broken one is recorded as a parse error.
	if result.FilesScanned != 2 {
		t.Errorf("Expected 2 analyzed files, got %d", result.FilesScanned)
	}
	if result.Imports.ParseErrorCount() != 1 {
		t.Errorf("Expected 1 parse error, got %d", result.Imports.ParseErrorCount())
	}

	usage, ok := result.Imports.Usage("lodash")
	if !ok {
		t.Fatal("Expected lodash usage aggregated across files")
	}
	named := usage.SortedNamedImports()
	if len(named) != 2 || named[0] != "filter" || named[1] != "map" {
		t.Errorf("Unexpected lodash named imports %v", named)
	}

	if a.CurrentResult() != result {
		t.Error("Expected result cached on the app")
	}
}

func TestRunAnalysis_MissingManifest(t *testing.T) {
	a := newTestApp(t, t.TempDir())
	if _, err := a.RunAnalysis(context.Background()); err == nil {
		t.Fatal("Expected error when package.json is missing")
	}
}

func TestRunAnalysis_VersionConflictAcrossManifests(t *testing.T) {
	root := testProject(t)
	writeProjectFile(t, root, "packages/web/package.json", `{
		"name": "web",
		"version": "0.1.0",
		"dependencies": {"lodash": "^3.0.0"}
	}`)
	a := newTestApp(t, root)

	result, err := a.RunAnalysis(context.Background())
	if err != nil {
		t.Fatalf("RunAnalysis failed: %v", err)
	}

	conflicts := result.Graph.DetectVersionConflicts()
	if len(conflicts) != 1 {
		t.Fatalf("Expected 1 version conflict, got %d", len(conflicts))
	}
	if conflicts[0].Package != "lodash" {
		t.Errorf("Expected lodash conflict, got %s", conflicts[0].Package)
	}
}

func TestRunAnalysis_WithBundleStats(t *testing.T) {
	root := testProject(t)
	writeProjectFile(t, root, "stats.json", `{
		"assets": [{"name": "main.js", "size": 100000}],
		"chunks": [],
		"modules": [
			{"name": "./node_modules/lodash/index.js", "size": 72000},
			{"name": "./node_modules/react/index.js", "size": 8000}
		]
	}`)
	writeProjectFile(t, root, "exports.json", `{"lodash": 300, "react": 50}`)

	a := newTestApp(t, root)
	a.Config.Paths.Stats = filepath.Join(root, "stats.json")
	a.Config.Paths.ExportCounts = filepath.Join(root, "exports.json")

	result, err := a.RunAnalysis(context.Background())
	if err != nil {
		t.Fatalf("RunAnalysis failed: %v", err)
	}

	if result.Bundle == nil {
		t.Fatal("Expected bundle analysis")
	}
	node, ok := result.Graph.GetNode("lodash")
	if !ok || !node.HasBundleSize || node.BundleSize != 72000 {
		t.Errorf("Expected lodash bundle size applied, got %+v", node)
	}

	if result.Savings == nil {
		t.Fatal("Expected savings report")
	}
	// lodash has a known lighter alternative.
	found := false
	for _, opp := range result.Savings.Opportunities {
		if opp.Package == "lodash" {
			found = true
		}
	}
	if !found {
		t.Error("Expected lodash savings opportunity")
	}
}

func TestRunAnalysis_RecordsHistory(t *testing.T) {
	root := testProject(t)
	cfg := config.Default()
	cfg.Paths.ProjectRoot = root
	cfg.History.Enabled = true
	cfg.History.Path = filepath.Join(t.TempDir(), "runs.db")

	a, err := New(cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer a.Close()

	result, err := a.RunAnalysis(context.Background())
	if err != nil {
		t.Fatalf("RunAnalysis failed: %v", err)
	}

	runs, err := a.history.RecentRuns(0)
	if err != nil {
		t.Fatalf("RecentRuns failed: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("Expected 1 recorded run, got %d", len(runs))
	}
	if runs[0].RunID != result.RunID {
		t.Errorf("Expected run id %s, got %s", result.RunID, runs[0].RunID)
	}
}

func TestScanSourceFiles_Excludes(t *testing.T) {
	root := testProject(t)
	a := newTestApp(t, root)
	a.Config.Exclude.Files = []string{"broken.js"}

	files, err := a.ScanSourceFiles()
	if err != nil {
		t.Fatalf("ScanSourceFiles failed: %v", err)
	}
	for _, f := range files {
		base := filepath.Base(f)
		if base == "broken.js" {
			t.Error("Expected broken.js excluded")
		}
		if base == "README.md" {
			t.Error("Expected unsupported files excluded")
		}
	}
	if len(files) != 2 {
		t.Errorf("Expected 2 files, got %d: %v", len(files), files)
	}
}

func TestFindManifests(t *testing.T) {
	root := testProject(t)
	writeProjectFile(t, root, "packages/web/package.json", `{"name": "web"}`)
	a := newTestApp(t, root)

	manifests, err := a.FindManifests()
	if err != nil {
		t.Fatalf("FindManifests failed: %v", err)
	}
	// Root and workspace manifest; node_modules copy excluded.
	if len(manifests) != 2 {
		t.Fatalf("Expected 2 manifests, got %d: %v", len(manifests), manifests)
	}
}

func TestHealth(t *testing.T) {
	root := testProject(t)
	a := newTestApp(t, root)

	status := a.Health()
	if status.Status != "starting" {
		t.Errorf("Expected starting before first run, got %s", status.Status)
	}

	if _, err := a.RunAnalysis(context.Background()); err != nil {
		t.Fatalf("RunAnalysis failed: %v", err)
	}
	status = a.Health()
	if status.Status != "up" {
		t.Errorf("Expected up after run, got %s", status.Status)
	}
	if status.LastRunID == "" {
		t.Error("Expected last run id")
	}
	if status.ParseErrors != 1 {
		t.Errorf("Expected 1 parse error in health, got %d", status.ParseErrors)
	}
}

func TestExportReports(t *testing.T) {
	root := testProject(t)
	a := newTestApp(t, root)
	a.Config.Export.Dir = filepath.Join(root, "reports")
	a.Config.Export.JSON = true
	a.Config.Export.Markdown = true

	result, err := a.RunAnalysis(context.Background())
	if err != nil {
		t.Fatalf("RunAnalysis failed: %v", err)
	}

	written, err := a.ExportReports(result)
	if err != nil {
		t.Fatalf("ExportReports failed: %v", err)
	}
	if len(written) != 2 {
		t.Fatalf("Expected 2 reports, got %d: %v", len(written), written)
	}
	for _, path := range written {
		if _, err := os.Stat(path); err != nil {
			t.Errorf("Expected report %s: %v", path, err)
		}
	}
}

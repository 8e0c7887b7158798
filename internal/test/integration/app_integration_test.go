package integration

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/zach-fau/codescope/internal/core/app"
	"github.com/zach-fau/codescope/internal/core/config"
	"github.com/zach-fau/codescope/internal/data/history"
	"github.com/zach-fau/codescope/internal/ui/report"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestProject(t *testing.T, tmpDir string) {
	manifest := `{
	"name": "shop-frontend",
	"version": "2.1.0",
	"dependencies": {
		"react": "^18.2.0",
		"moment": "^2.29.0",
		"lodash": "^4.17.21"
	},
	"devDependencies": {
		"webpack": "^5.90.0"
	}
}`
	err := os.WriteFile(filepath.Join(tmpDir, "package.json"), []byte(manifest), 0644)
	require.NoError(t, err)

	err = os.MkdirAll(filepath.Join(tmpDir, "src/components"), 0755)
	require.NoError(t, err)

	indexJS := `
import React from 'react';
import moment from 'moment';
import { Header } from './components/Header';

export function render() {
	return moment().format('YYYY');
}
`
	err = os.WriteFile(filepath.Join(tmpDir, "src/index.jsx"), []byte(indexJS), 0644)
	require.NoError(t, err)

	headerTSX := `
import React from 'react';
import { debounce } from 'lodash';

export const Header = () => null;
`
	err = os.WriteFile(filepath.Join(tmpDir, "src/components/Header.tsx"), []byte(headerTSX), 0644)
	require.NoError(t, err)

	stats := `{
	"assets": [{"name": "main.js", "size": 900000}],
	"chunks": [],
	"modules": [
		{"name": "./node_modules/moment/moment.js", "size": 290000},
		{"name": "./node_modules/lodash/lodash.js", "size": 530000},
		{"name": "./node_modules/react/index.js", "size": 7000},
		{"name": "./src/index.jsx", "size": 2000}
	]
}`
	err = os.WriteFile(filepath.Join(tmpDir, "stats.json"), []byte(stats), 0644)
	require.NoError(t, err)

	exportCounts := `{"moment": 120, "lodash": 300, "react": 40}`
	err = os.WriteFile(filepath.Join(tmpDir, "exports.json"), []byte(exportCounts), 0644)
	require.NoError(t, err)
}

func TestFullPipelineIntegration(t *testing.T) {
	tmpDir := t.TempDir()
	createTestProject(t, tmpDir)

	cfg := config.Default()
	cfg.Paths.ProjectRoot = tmpDir
	cfg.Paths.Stats = filepath.Join(tmpDir, "stats.json")
	cfg.Paths.ExportCounts = filepath.Join(tmpDir, "exports.json")
	cfg.History.Enabled = true
	cfg.History.Path = filepath.Join(tmpDir, "codescope.db")
	cfg.Export.Dir = filepath.Join(tmpDir, "reports")
	cfg.Export.JSON = true
	cfg.Export.Markdown = true

	appInstance, err := app.New(cfg)
	require.NoError(t, err)
	defer appInstance.Close()

	ctx := context.Background()
	result, err := appInstance.RunAnalysis(ctx)
	require.NoError(t, err)

	// Graph built from the manifest: root plus 4 dependencies.
	assert.Equal(t, "shop-frontend", result.ProjectName)
	assert.Equal(t, 5, result.Graph.NodeCount())
	assert.True(t, result.Graph.Contains("moment"))
	assert.Empty(t, result.Graph.DetectCycles())

	// Both source files analyzed.
	assert.Equal(t, 2, result.FilesScanned)
	require.NotNil(t, result.Imports)
	assert.Zero(t, result.Imports.ParseErrorCount())

	usage, ok := result.Imports.Usage("react")
	require.True(t, ok)
	assert.True(t, usage.UsesDefault)
	assert.Equal(t, 2, usage.FileCount())

	// Bundle sizes applied from stats.
	node, ok := result.Graph.GetNode("lodash")
	require.True(t, ok)
	assert.True(t, node.HasBundleSize)
	assert.Equal(t, int64(530000), node.BundleSize)

	// moment has a known alternative, so savings must flag it.
	require.NotNil(t, result.Savings)
	var momentSavings bool
	for _, opp := range result.Savings.Opportunities {
		if opp.Package == "moment" {
			momentSavings = true
			assert.Equal(t, int64(281300), opp.EstimatedSavings)
		}
	}
	assert.True(t, momentSavings, "moment should be flagged with a lighter alternative")

	// Run recorded in history.
	store, err := history.Open(cfg.History.Path)
	require.NoError(t, err)
	defer store.Close()
	runs, err := store.RecentRuns(0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, result.RunID, runs[0].RunID)
	assert.Equal(t, 5, runs[0].PackageCount)

	// Reports written to the export dir.
	written, err := appInstance.ExportReports(result)
	require.NoError(t, err)
	assert.Len(t, written, 2)
	for _, path := range written {
		_, err := os.Stat(path)
		assert.NoError(t, err)
	}
}

func TestReportRoundTripIntegration(t *testing.T) {
	tmpDir := t.TempDir()
	createTestProject(t, tmpDir)

	cfg := config.Default()
	cfg.Paths.ProjectRoot = tmpDir

	appInstance, err := app.New(cfg)
	require.NoError(t, err)
	defer appInstance.Close()

	result, err := appInstance.RunAnalysis(context.Background())
	require.NoError(t, err)

	content, err := report.NewMarkdownGenerator().Generate(report.Data{
		ProjectName: result.ProjectName,
		Graph:       result.Graph,
		Imports:     result.Imports,
	}, report.MarkdownOptions{TableOfContents: true})
	require.NoError(t, err)
	assert.Contains(t, content, "project: shop-frontend")
	assert.Contains(t, content, "No circular dependencies detected.")
}

package app

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/google/uuid"

	"github.com/zach-fau/codescope/internal/core/errors"
	"github.com/zach-fau/codescope/internal/data/history"
	"github.com/zach-fau/codescope/internal/engine/bundle"
	"github.com/zach-fau/codescope/internal/engine/graph"
	"github.com/zach-fau/codescope/internal/engine/imports"
	"github.com/zach-fau/codescope/internal/engine/manifest"
	"github.com/zach-fau/codescope/internal/shared/observability"
)

// RunAnalysis performs one full pass over the project: manifests into
// the dependency graph, source files into import usage, then optional
// bundle stats and savings. Per-file failures are recorded and do not
// abort the run.
func (a *App) RunAnalysis(ctx context.Context) (*Result, error) {
	ctx, span := observability.Tracer.Start(ctx, "run_analysis")
	defer span.End()

	started := time.Now()
	defer func() {
		observability.AnalysisDuration.WithLabelValues("full_run").Observe(time.Since(started).Seconds())
	}()

	result := &Result{
		RunID:       uuid.NewString(),
		GeneratedAt: time.Now().UTC(),
	}

	g, projectName, err := a.buildGraph(ctx)
	if err != nil {
		return nil, err
	}
	result.Graph = g
	result.ProjectName = projectName

	project, scanned, skipped, err := a.analyzeImports(ctx)
	if err != nil {
		return nil, err
	}
	result.Imports = project
	result.FilesScanned = scanned
	result.SkippedFiles = skipped

	if a.Config.Paths.Stats != "" {
		analysis, err := a.analyzeBundle(ctx, result)
		if err != nil {
			slog.Warn("bundle analysis skipped", "path", a.Config.Paths.Stats, "error", err)
		} else {
			result.Bundle = analysis
		}
	}

	span.SetAttributes(
		attribute.Int("packages", result.Graph.NodeCount()),
		attribute.Int("files", result.FilesScanned),
		attribute.Int("cycles", result.CycleCount()),
		attribute.Int("conflicts", result.ConflictCount()),
	)

	if a.history != nil {
		a.saveRun(result)
	}

	a.resultMu.Lock()
	a.lastResult = result
	a.resultMu.Unlock()
	a.notify(result)

	slog.Info("analysis complete",
		"run_id", result.RunID,
		"packages", result.Graph.NodeCount(),
		"edges", result.Graph.EdgeCount(),
		"cycles", result.CycleCount(),
		"conflicts", result.ConflictCount(),
		"files", result.FilesScanned,
		"parse_errors", result.Imports.ParseErrorCount(),
		"duration", time.Since(started).Round(time.Millisecond),
	)
	return result, nil
}

func (a *App) buildGraph(ctx context.Context) (*graph.Graph, string, error) {
	_, span := observability.Tracer.Start(ctx, "build_graph")
	defer span.End()

	started := time.Now()
	defer func() {
		observability.AnalysisDuration.WithLabelValues("build_graph").Observe(time.Since(started).Seconds())
	}()

	g := graph.NewGraph()
	projectName := ""

	root, err := manifest.ParseFile(a.Config.ManifestPath())
	if err != nil {
		return nil, "", err
	}
	if err := root.Validate(); err != nil {
		return nil, "", err
	}
	projectName = root.Name

	a.addManifest(g, root)

	// Nested workspace manifests contribute additional version
	// requirements and edges.
	nested, err := a.FindManifests()
	if err != nil {
		return nil, "", err
	}
	rootPath := a.Config.ManifestPath()
	for _, path := range nested {
		if sameFile(path, rootPath) {
			continue
		}
		pkg, err := manifest.ParseFile(path)
		if err != nil {
			slog.Warn("skipping unreadable manifest", "path", path, "error", err)
			continue
		}
		a.addManifest(g, pkg)
	}

	return g, projectName, nil
}

// addManifest adds the manifest's package and its declared
// dependencies as nodes, with edges from the package to each
// dependency.
func (a *App) addManifest(g *graph.Graph, pkg *manifest.PackageJSON) {
	owner := pkg.Name
	if owner == "" {
		owner = "(root)"
	}
	g.AddDependencyWithDepth(owner, pkg.Version, graph.TypeProduction, 0)

	for _, dep := range pkg.ExtractDependencies() {
		g.AddDependencyWithDepth(dep.Name, dep.Version, dep.Type, 1)
		g.TrackVersionRequirement(dep.Name, dep.Version, owner)
		if dep.Type == graph.TypeOptional {
			g.AddOptionalEdge(owner, dep.Name)
		} else {
			g.AddEdge(owner, dep.Name)
		}
	}
}

func (a *App) analyzeImports(ctx context.Context) (*imports.ProjectImports, int, int, error) {
	_, span := observability.Tracer.Start(ctx, "analyze_imports")
	defer span.End()

	started := time.Now()
	defer func() {
		observability.AnalysisDuration.WithLabelValues("analyze_imports").Observe(time.Since(started).Seconds())
	}()

	files, err := a.ScanSourceFiles()
	if err != nil {
		return nil, 0, 0, err
	}

	project := imports.NewProjectImports()
	scanned := 0
	skipped := 0

	for _, path := range files {
		content, err := os.ReadFile(path)
		if err != nil {
			slog.Warn("failed to read source file", "path", path, "error", err)
			skipped++
			continue
		}

		parseStart := time.Now()
		fileImports, err := a.analyzer.AnalyzeFile(path, content)
		if err != nil {
			if errors.IsCode(err, errors.CodeNotSupported) {
				skipped++
				continue
			}
			observability.ParseErrors.Inc()
			project.AddParseError(path, err)
			slog.Warn("failed to parse source file", "path", path, "error", err)
			continue
		}
		if dialect, ok := a.analyzer.DialectFor(path); ok {
			observability.ParsingDuration.WithLabelValues(string(dialect)).Observe(time.Since(parseStart).Seconds())
		}

		project.AddFileImports(path, fileImports)
		observability.FilesAnalyzed.Inc()
		scanned++
	}

	return project, scanned, skipped, nil
}

func (a *App) analyzeBundle(ctx context.Context, result *Result) (*bundle.Analysis, error) {
	_, span := observability.Tracer.Start(ctx, "analyze_bundle", trace.WithAttributes(
		attribute.String("stats_path", a.Config.Paths.Stats),
	))
	defer span.End()

	stats, err := bundle.FromFile(a.Config.Paths.Stats)
	if err != nil {
		return nil, err
	}
	analysis := stats.Analyze()
	result.Graph.ApplyBundleSizes(analysis.GraphSizes())

	result.ExportCounts = a.loadExportCounts()
	result.Savings = bundle.NewCalculator().Calculate(analysis, result.Imports, result.ExportCounts)

	return analysis, nil
}

// loadExportCounts reads the optional package export-count table used
// for utilization math.
func (a *App) loadExportCounts() map[string]int {
	path := a.Config.Paths.ExportCounts
	if path == "" {
		return nil
	}
	content, err := os.ReadFile(path)
	if err != nil {
		slog.Warn("failed to read export counts", "path", path, "error", err)
		return nil
	}
	counts := make(map[string]int)
	if err := json.Unmarshal(content, &counts); err != nil {
		slog.Warn("invalid export counts file", "path", path, "error", err)
		return nil
	}
	return counts
}

func (a *App) saveRun(result *Result) {
	run := history.Run{
		RunID:         result.RunID,
		Timestamp:     result.GeneratedAt,
		PackageCount:  result.Graph.NodeCount(),
		EdgeCount:     result.Graph.EdgeCount(),
		CycleCount:    result.CycleCount(),
		ConflictCount: result.ConflictCount(),
		FilesAnalyzed: result.FilesScanned,
	}
	if result.Imports != nil {
		run.ParseErrors = result.Imports.ParseErrorCount()
		run.AvgUtilization = averageUtilization(result.Imports, result.ExportCounts)
	}
	run.TotalBundleSize = result.Graph.TotalBundleSize()
	if result.Savings != nil {
		run.EstimatedSavings = result.Savings.TotalSavings
	}
	if _, err := a.history.SaveRun(run); err != nil {
		slog.Warn("failed to record analysis run", "error", err)
	}
}

// averageUtilization averages the utilization of every imported
// package whose export count is known.
func averageUtilization(project *imports.ProjectImports, exportCounts map[string]int) float64 {
	var sum float64
	known := 0
	for _, name := range project.PackageNames() {
		usage, ok := project.Usage(name)
		if !ok {
			continue
		}
		pct, ok := usage.UtilizationPercentage(exportCounts[name])
		if !ok {
			continue
		}
		sum += pct
		known++
	}
	if known == 0 {
		return 0
	}
	return sum / float64(known)
}

func sameFile(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return a == b
	}
	return absA == absB
}

package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/zach-fau/codescope/internal/engine/bundle"
)

type MarkdownOptions struct {
	TableOfContents bool
	TopPackages     int
}

type MarkdownGenerator struct{}

func NewMarkdownGenerator() *MarkdownGenerator {
	return &MarkdownGenerator{}
}

func (m *MarkdownGenerator) Generate(data Data, opts MarkdownOptions) (string, error) {
	if data.GeneratedAt.IsZero() {
		data.GeneratedAt = time.Now().UTC()
	}
	if opts.TopPackages <= 0 {
		opts.TopPackages = 10
	}

	var b strings.Builder
	b.WriteString("---\n")
	b.WriteString("title: Dependency Analysis Report\n")
	b.WriteString("project: " + nonEmpty(data.ProjectName, "unknown") + "\n")
	b.WriteString("generated_at: " + data.GeneratedAt.UTC().Format(time.RFC3339) + "\n")
	if data.RunID != "" {
		b.WriteString("run_id: " + data.RunID + "\n")
	}
	b.WriteString("---\n\n")

	b.WriteString("# Dependency Analysis Report\n\n")
	if opts.TableOfContents {
		b.WriteString("## Table of Contents\n")
		b.WriteString("- [Executive Summary](#executive-summary)\n")
		b.WriteString("- [Circular Dependencies](#circular-dependencies)\n")
		b.WriteString("- [Version Conflicts](#version-conflicts)\n")
		if data.Bundle != nil {
			b.WriteString("- [Bundle Size](#bundle-size)\n")
		}
		if data.Savings != nil {
			b.WriteString("- [Savings Opportunities](#savings-opportunities)\n")
		}
		b.WriteString("\n")
	}

	m.writeSummary(&b, data)
	m.writeCycles(&b, data)
	m.writeConflicts(&b, data)
	if data.Bundle != nil {
		m.writeBundle(&b, data, opts.TopPackages)
	}
	if data.Savings != nil {
		m.writeSavings(&b, data)
	}

	return b.String(), nil
}

func (m *MarkdownGenerator) writeSummary(b *strings.Builder, data Data) {
	b.WriteString("## Executive Summary\n")
	b.WriteString("| Metric | Value |\n")
	b.WriteString("| --- | --- |\n")
	if data.Graph != nil {
		b.WriteString(fmt.Sprintf("| Packages | %d |\n", data.Graph.NodeCount()))
		b.WriteString(fmt.Sprintf("| Edges | %d |\n", data.Graph.EdgeCount()))
	}
	b.WriteString(fmt.Sprintf("| Circular Dependencies | %d |\n", data.cycleCount()))
	b.WriteString(fmt.Sprintf("| Version Conflicts | %d |\n", data.conflictCount()))
	b.WriteString(fmt.Sprintf("| Files Analyzed | %d |\n", data.filesAnalyzed()))
	b.WriteString(fmt.Sprintf("| Parse Errors | %d |\n", data.parseErrors()))
	if data.Graph != nil && data.Graph.TotalBundleSize() > 0 {
		b.WriteString(fmt.Sprintf("| Total Bundle Size | %s |\n", bundle.FormatSize(data.Graph.TotalBundleSize())))
	}
	if data.totalSavings() > 0 {
		b.WriteString(fmt.Sprintf("| Estimated Savings | %s |\n", bundle.FormatSize(data.totalSavings())))
	}
	b.WriteString("\n")
}

func (m *MarkdownGenerator) writeCycles(b *strings.Builder, data Data) {
	b.WriteString("## Circular Dependencies\n")
	if data.Graph == nil || !data.Graph.HasCycles() {
		b.WriteString("No circular dependencies detected.\n\n")
		return
	}
	b.WriteString("| # | Cycle Path | Size |\n")
	b.WriteString("| --- | --- | --- |\n")
	for i, cycle := range data.Graph.CycleDetails() {
		b.WriteString(fmt.Sprintf("| %d | `%s` | %d |\n", i+1, cycle.CyclePath(), len(cycle.Packages)))
	}
	b.WriteString("\n")
}

func (m *MarkdownGenerator) writeConflicts(b *strings.Builder, data Data) {
	b.WriteString("## Version Conflicts\n")
	if data.Graph == nil || !data.Graph.HasVersionConflicts() {
		b.WriteString("No version conflicts detected.\n\n")
		return
	}
	b.WriteString("| Package | Version | Required By |\n")
	b.WriteString("| --- | --- | --- |\n")
	for _, conflict := range data.Graph.DetectVersionConflicts() {
		for _, req := range conflict.Requirements {
			b.WriteString(fmt.Sprintf("| %s | `%s` | %s |\n", conflict.Package, req.Version, req.RequiredBy))
		}
	}
	b.WriteString("\n")
}

func (m *MarkdownGenerator) writeBundle(b *strings.Builder, data Data, top int) {
	b.WriteString("## Bundle Size\n")
	packages := data.Bundle.PackagesBySize()
	if len(packages) == 0 {
		b.WriteString("No bundled packages found in stats.\n\n")
		return
	}
	if len(packages) > top {
		packages = packages[:top]
	}
	b.WriteString("| Package | Size | Modules | Share |\n")
	b.WriteString("| --- | --- | --- | --- |\n")
	for _, pkg := range packages {
		b.WriteString(fmt.Sprintf("| %s | %s | %d | %.1f%% |\n",
			pkg.Name,
			bundle.FormatSize(pkg.TotalSize),
			pkg.ModuleCount,
			pkg.PercentageOf(data.Bundle.TotalModuleSize),
		))
	}
	b.WriteString("\n")
}

func (m *MarkdownGenerator) writeSavings(b *strings.Builder, data Data) {
	b.WriteString("## Savings Opportunities\n")
	if len(data.Savings.Opportunities) == 0 {
		b.WriteString("No savings opportunities found.\n\n")
		return
	}
	b.WriteString("| Package | Category | Current | Savings | Suggestion |\n")
	b.WriteString("| --- | --- | --- | --- | --- |\n")
	for _, opp := range data.Savings.Opportunities {
		b.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %s |\n",
			opp.Package,
			opp.Category,
			bundle.FormatSize(opp.CurrentSize),
			bundle.FormatSize(opp.EstimatedSavings),
			opp.Suggestion,
		))
	}
	b.WriteString("\n")
}

func nonEmpty(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

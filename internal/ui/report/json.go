package report

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/zach-fau/codescope/internal/engine/graph"
)

type jsonReport struct {
	Project     string            `json:"project"`
	RunID       string            `json:"run_id,omitempty"`
	GeneratedAt string            `json:"generated_at"`
	Summary     jsonSummary       `json:"summary"`
	Packages    []jsonPackage     `json:"packages"`
	Cycles      []jsonCycle       `json:"cycles"`
	Conflicts   []jsonConflict    `json:"conflicts"`
	Usage       []jsonUsage       `json:"usage,omitempty"`
	Savings     []jsonOpportunity `json:"savings,omitempty"`
}

type jsonSummary struct {
	PackageCount     int   `json:"package_count"`
	EdgeCount        int   `json:"edge_count"`
	CycleCount       int   `json:"cycle_count"`
	ConflictCount    int   `json:"conflict_count"`
	FilesAnalyzed    int   `json:"files_analyzed"`
	ParseErrors      int   `json:"parse_errors"`
	TotalBundleSize  int64 `json:"total_bundle_size"`
	EstimatedSavings int64 `json:"estimated_savings"`
}

type jsonPackage struct {
	Name       string `json:"name"`
	Version    string `json:"version,omitempty"`
	Type       string `json:"type"`
	Depth      int    `json:"depth"`
	BundleSize *int64 `json:"bundle_size,omitempty"`
}

type jsonCycle struct {
	Packages []string `json:"packages"`
	Path     string   `json:"path"`
}

type jsonConflict struct {
	Package      string            `json:"package"`
	Requirements []jsonRequirement `json:"requirements"`
}

type jsonRequirement struct {
	Version    string `json:"version"`
	RequiredBy string `json:"required_by"`
}

type jsonUsage struct {
	Package      string   `json:"package"`
	NamedImports []string `json:"named_imports,omitempty"`
	UsesDefault  bool     `json:"uses_default"`
	Namespace    bool     `json:"namespace"`
	Files        int      `json:"files"`
	Utilization  *float64 `json:"utilization,omitempty"`
}

type jsonOpportunity struct {
	Package          string  `json:"package"`
	Category         string  `json:"category"`
	CurrentSize      int64   `json:"current_size"`
	EstimatedSavings int64   `json:"estimated_savings"`
	Utilization      float64 `json:"utilization"`
	Suggestion       string  `json:"suggestion"`
}

type JSONGenerator struct{}

func NewJSONGenerator() *JSONGenerator {
	return &JSONGenerator{}
}

func (j *JSONGenerator) Generate(data Data) (string, error) {
	if data.GeneratedAt.IsZero() {
		data.GeneratedAt = time.Now().UTC()
	}

	out := jsonReport{
		Project:     data.ProjectName,
		RunID:       data.RunID,
		GeneratedAt: data.GeneratedAt.UTC().Format(time.RFC3339),
		Packages:    []jsonPackage{},
		Cycles:      []jsonCycle{},
		Conflicts:   []jsonConflict{},
	}

	if data.Graph != nil {
		out.Summary = jsonSummary{
			PackageCount:    data.Graph.NodeCount(),
			EdgeCount:       data.Graph.EdgeCount(),
			TotalBundleSize: data.Graph.TotalBundleSize(),
		}
		for _, node := range data.Graph.AllNodes() {
			pkg := jsonPackage{
				Name:    node.Name,
				Version: node.Version,
				Type:    string(node.Type),
				Depth:   node.Depth,
			}
			if node.HasBundleSize {
				size := node.BundleSize
				pkg.BundleSize = &size
			}
			out.Packages = append(out.Packages, pkg)
		}
		for _, cycle := range data.Graph.CycleDetails() {
			out.Cycles = append(out.Cycles, jsonCycle{
				Packages: cycle.Packages,
				Path:     cycle.CyclePath(),
			})
		}
		for _, conflict := range data.Graph.DetectVersionConflicts() {
			out.Conflicts = append(out.Conflicts, jsonConflict{
				Package:      conflict.Package,
				Requirements: jsonRequirements(conflict.Requirements),
			})
		}
		out.Summary.CycleCount = len(out.Cycles)
		out.Summary.ConflictCount = len(out.Conflicts)
	}

	if data.Imports != nil {
		out.Summary.FilesAnalyzed = data.Imports.FileCount()
		out.Summary.ParseErrors = data.Imports.ParseErrorCount()
		for _, name := range data.Imports.PackageNames() {
			usage, ok := data.Imports.Usage(name)
			if !ok {
				continue
			}
			entry := jsonUsage{
				Package:      name,
				NamedImports: usage.SortedNamedImports(),
				UsesDefault:  usage.UsesDefault,
				Namespace:    usage.UsesNamespace,
				Files:        usage.FileCount(),
			}
			if pct, known := usage.UtilizationPercentage(data.ExportCounts[name]); known {
				entry.Utilization = &pct
			}
			out.Usage = append(out.Usage, entry)
		}
	}

	if data.Savings != nil {
		out.Summary.EstimatedSavings = data.Savings.TotalSavings
		for _, opp := range data.Savings.Opportunities {
			out.Savings = append(out.Savings, jsonOpportunity{
				Package:          opp.Package,
				Category:         string(opp.Category),
				CurrentSize:      opp.CurrentSize,
				EstimatedSavings: opp.EstimatedSavings,
				Utilization:      opp.Utilization,
				Suggestion:       opp.Suggestion,
			})
		}
	}

	// The default encoder escapes > and would mangle cycle paths.
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func jsonRequirements(reqs []graph.VersionRequirement) []jsonRequirement {
	out := make([]jsonRequirement, 0, len(reqs))
	for _, req := range reqs {
		out = append(out, jsonRequirement{Version: req.Version, RequiredBy: req.RequiredBy})
	}
	return out
}

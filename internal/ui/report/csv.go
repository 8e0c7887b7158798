package report

import (
	"encoding/csv"
	"strconv"
	"strings"

	"github.com/zach-fau/codescope/internal/engine/bundle"
)

// CSVGenerator emits one row per package with its graph and bundle
// facts, suitable for spreadsheets.
type CSVGenerator struct{}

func NewCSVGenerator() *CSVGenerator {
	return &CSVGenerator{}
}

func (c *CSVGenerator) Generate(data Data) (string, error) {
	var buf strings.Builder
	w := csv.NewWriter(&buf)

	header := []string{"name", "version", "type", "depth", "dependencies", "dependents", "bundle_size", "in_cycle", "has_conflict"}
	if err := w.Write(header); err != nil {
		return "", err
	}

	if data.Graph == nil {
		w.Flush()
		return buf.String(), w.Error()
	}

	inCycle := make(map[string]bool)
	for _, name := range data.Graph.NodesInCycles() {
		inCycle[name] = true
	}
	conflicted := make(map[string]bool)
	for _, name := range data.Graph.PackagesWithConflicts() {
		conflicted[name] = true
	}

	for _, node := range data.Graph.AllNodes() {
		bundleSize := ""
		if node.HasBundleSize {
			bundleSize = strconv.FormatInt(node.BundleSize, 10)
		}
		row := []string{
			node.Name,
			node.Version,
			string(node.Type),
			strconv.Itoa(node.Depth),
			strconv.Itoa(len(data.Graph.Dependencies(node.Name))),
			strconv.Itoa(len(data.Graph.Dependents(node.Name))),
			bundleSize,
			strconv.FormatBool(inCycle[node.Name]),
			strconv.FormatBool(conflicted[node.Name]),
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}

	w.Flush()
	return buf.String(), w.Error()
}

// GenerateSavings emits the savings opportunities as their own table.
func (c *CSVGenerator) GenerateSavings(savings []bundle.Opportunity) (string, error) {
	var buf strings.Builder
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"package", "category", "current_size", "estimated_savings", "utilization", "suggestion"}); err != nil {
		return "", err
	}
	for _, row := range savings {
		record := []string{
			row.Package,
			string(row.Category),
			strconv.FormatInt(row.CurrentSize, 10),
			strconv.FormatInt(row.EstimatedSavings, 10),
			strconv.FormatFloat(row.Utilization, 'f', 1, 64),
			row.Suggestion,
		}
		if err := w.Write(record); err != nil {
			return "", err
		}
	}

	w.Flush()
	return buf.String(), w.Error()
}

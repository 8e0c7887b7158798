// # internal/engine/bundle/savings.go
package bundle

import (
	"sort"

	"github.com/zach-fau/codescope/internal/engine/imports"
	"github.com/zach-fau/codescope/internal/shared/util"
)

const (
	underutilizationThreshold = 20.0
	unusedThreshold           = 1.0
)

type SavingsCategory string

const (
	CategoryUnused         SavingsCategory = "unused"
	CategoryUnderutilized  SavingsCategory = "underutilized"
	CategoryTreeShaking    SavingsCategory = "tree_shaking"
	CategoryHasAlternative SavingsCategory = "has_alternative"
)

// Alternative is a smaller drop-in replacement for a known heavy
// package, with the fraction of its size a migration typically saves.
type Alternative struct {
	Replacement   string
	SavingsFactor float64
}

func defaultAlternatives() map[string]Alternative {
	return map[string]Alternative{
		"moment":     {Replacement: "dayjs", SavingsFactor: 0.97},
		"lodash":     {Replacement: "lodash-es", SavingsFactor: 0.70},
		"jquery":     {Replacement: "vanilla JS", SavingsFactor: 0.90},
		"underscore": {Replacement: "lodash-es", SavingsFactor: 0.50},
		"axios":      {Replacement: "fetch", SavingsFactor: 0.50},
		"request":    {Replacement: "node-fetch", SavingsFactor: 0.50},
		"uuid":       {Replacement: "crypto.randomUUID", SavingsFactor: 0.50},
		"bluebird":   {Replacement: "native Promise", SavingsFactor: 0.50},
	}
}

// Opportunity is one package worth slimming down or removing.
type Opportunity struct {
	Package          string
	Category         SavingsCategory
	CurrentSize      int64
	EstimatedSavings int64
	Utilization      float64
	Suggestion       string
}

type SavingsReport struct {
	Opportunities []Opportunity
	TotalSavings  int64
}

func (r *SavingsReport) ByCategory(category SavingsCategory) []Opportunity {
	var matched []Opportunity
	for _, opp := range r.Opportunities {
		if opp.Category == category {
			matched = append(matched, opp)
		}
	}
	return matched
}

type Calculator struct {
	alternatives map[string]Alternative
}

func NewCalculator() *Calculator {
	return &Calculator{alternatives: defaultAlternatives()}
}

// Calculate cross-references bundle sizes with import usage and
// estimates how many bytes each flagged package could give back.
// exportCounts maps package names to their total export count, used
// for utilization math; packages absent from the map have unknown
// utilization and are only flagged via the alternatives table.
func (c *Calculator) Calculate(analysis *Analysis, project *imports.ProjectImports, exportCounts map[string]int) *SavingsReport {
	report := &SavingsReport{}

	for _, pkg := range analysis.PackagesBySize() {
		var usage *imports.PackageUsage
		if project != nil {
			usage, _ = project.Usage(pkg.Name)
		}
		if opp := c.analyzePackage(pkg, usage, exportCounts[pkg.Name]); opp != nil {
			report.Opportunities = append(report.Opportunities, *opp)
			report.TotalSavings += opp.EstimatedSavings
		}
	}

	sort.SliceStable(report.Opportunities, func(i, j int) bool {
		return report.Opportunities[i].EstimatedSavings > report.Opportunities[j].EstimatedSavings
	})
	return report
}

// CalculateFromUtilization builds a report from pre-computed package
// sizes and utilization percentages, for callers that already did the
// import analysis elsewhere. Packages absent from the utilization map
// are treated as unused.
func (c *Calculator) CalculateFromUtilization(sizes map[string]int64, utilization map[string]float64) *SavingsReport {
	report := &SavingsReport{}

	for _, name := range util.SortedStringKeys(sizes) {
		size := sizes[name]
		pct, known := utilization[name]
		if opp := c.analyzeUtilization(name, size, pct, known); opp != nil {
			report.Opportunities = append(report.Opportunities, *opp)
			report.TotalSavings += opp.EstimatedSavings
		}
	}

	sort.SliceStable(report.Opportunities, func(i, j int) bool {
		return report.Opportunities[i].EstimatedSavings > report.Opportunities[j].EstimatedSavings
	})
	return report
}

func (c *Calculator) analyzeUtilization(name string, size int64, utilization float64, known bool) *Opportunity {
	if alt, ok := c.alternatives[name]; ok {
		return &Opportunity{
			Package:          name,
			Category:         CategoryHasAlternative,
			CurrentSize:      size,
			EstimatedSavings: int64(float64(size) * alt.SavingsFactor),
			Utilization:      utilization,
			Suggestion:       "Replace with " + alt.Replacement,
		}
	}

	if !known {
		return &Opportunity{
			Package:          name,
			Category:         CategoryUnused,
			CurrentSize:      size,
			EstimatedSavings: size,
			Suggestion:       "Package is bundled but never imported; remove it",
		}
	}

	unusedFraction := (100.0 - utilization) / 100.0

	switch {
	case utilization < unusedThreshold:
		return &Opportunity{
			Package:          name,
			Category:         CategoryUnderutilized,
			CurrentSize:      size,
			EstimatedSavings: int64(float64(size) * 0.95),
			Utilization:      utilization,
			Suggestion:       "Barely used; consider removing or inlining the needed code",
		}
	case utilization < underutilizationThreshold:
		return &Opportunity{
			Package:          name,
			Category:         CategoryUnderutilized,
			CurrentSize:      size,
			EstimatedSavings: int64(float64(size) * unusedFraction * 0.8),
			Utilization:      utilization,
			Suggestion:       "Import only the needed modules or find a lighter alternative",
		}
	case utilization < 80.0:
		savings := int64(float64(size) * unusedFraction * 0.6)
		if savings < 10*1024 {
			return nil
		}
		return &Opportunity{
			Package:          name,
			Category:         CategoryTreeShaking,
			CurrentSize:      size,
			EstimatedSavings: savings,
			Utilization:      utilization,
			Suggestion:       "Enable tree shaking or switch to per-module imports",
		}
	}
	return nil
}

func (c *Calculator) analyzePackage(pkg *PackageBundleSize, usage *imports.PackageUsage, exportCount int) *Opportunity {
	if alt, ok := c.alternatives[pkg.Name]; ok {
		savings := int64(float64(pkg.TotalSize) * alt.SavingsFactor)
		return &Opportunity{
			Package:          pkg.Name,
			Category:         CategoryHasAlternative,
			CurrentSize:      pkg.TotalSize,
			EstimatedSavings: savings,
			Utilization:      utilizationOrZero(usage, exportCount),
			Suggestion:       "Replace with " + alt.Replacement,
		}
	}

	if usage == nil {
		return &Opportunity{
			Package:          pkg.Name,
			Category:         CategoryUnused,
			CurrentSize:      pkg.TotalSize,
			EstimatedSavings: pkg.TotalSize,
			Suggestion:       "Package is bundled but never imported; remove it",
		}
	}

	// Namespace imports pull everything in on purpose; nothing to
	// trim. Side-effect imports are loaded for their effects alone.
	if usage.UsesNamespace {
		return nil
	}
	if usage.HasSideEffects && len(usage.NamedImports) == 0 && !usage.UsesDefault {
		return nil
	}

	utilization, known := usage.UtilizationPercentage(exportCount)
	if !known {
		return nil
	}

	unusedFraction := (100.0 - utilization) / 100.0

	switch {
	case utilization < unusedThreshold:
		return &Opportunity{
			Package:          pkg.Name,
			Category:         CategoryUnderutilized,
			CurrentSize:      pkg.TotalSize,
			EstimatedSavings: int64(float64(pkg.TotalSize) * 0.95),
			Utilization:      utilization,
			Suggestion:       "Barely used; consider removing or inlining the needed code",
		}
	case utilization < underutilizationThreshold:
		return &Opportunity{
			Package:          pkg.Name,
			Category:         CategoryUnderutilized,
			CurrentSize:      pkg.TotalSize,
			EstimatedSavings: int64(float64(pkg.TotalSize) * unusedFraction * 0.8),
			Utilization:      utilization,
			Suggestion:       "Import only the needed modules or find a lighter alternative",
		}
	case utilization < 80.0 && pkg.TotalSize > 10*1024:
		return &Opportunity{
			Package:          pkg.Name,
			Category:         CategoryTreeShaking,
			CurrentSize:      pkg.TotalSize,
			EstimatedSavings: int64(float64(pkg.TotalSize) * unusedFraction * 0.6),
			Utilization:      utilization,
			Suggestion:       "Enable tree shaking or switch to per-module imports",
		}
	}
	return nil
}

func utilizationOrZero(usage *imports.PackageUsage, exportCount int) float64 {
	if usage == nil {
		return 0
	}
	utilization, ok := usage.UtilizationPercentage(exportCount)
	if !ok {
		return 0
	}
	return utilization
}

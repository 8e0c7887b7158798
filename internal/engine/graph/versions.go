package graph

import "github.com/zach-fau/codescope/internal/shared/util"

// VersionConflict is a package whose tracked requirements disagree on
// the literal version string.
type VersionConflict struct {
	Package      string
	Requirements []VersionRequirement
}

// TrackVersionRequirement appends a requirement record. Identical
// tuples are kept; dedup would hide how many manifests ask for a
// version.
func (g *Graph) TrackVersionRequirement(pkg, version, requiredBy string) {
	g.requirements[pkg] = append(g.requirements[pkg], VersionRequirement{
		Version:    version,
		RequiredBy: requiredBy,
	})
}

// DetectVersionConflicts reports every package where at least two
// distinct version strings were tracked. Comparison is exact string
// equality; range-equivalent specifiers that differ textually are
// still flagged.
func (g *Graph) DetectVersionConflicts() []VersionConflict {
	var conflicts []VersionConflict
	for _, pkg := range util.SortedStringKeys(g.requirements) {
		reqs := g.requirements[pkg]
		if len(reqs) < 2 {
			continue
		}

		distinct := make(map[string]bool, len(reqs))
		for _, req := range reqs {
			distinct[req.Version] = true
		}
		if len(distinct) < 2 {
			continue
		}

		conflicts = append(conflicts, VersionConflict{
			Package:      pkg,
			Requirements: append([]VersionRequirement(nil), reqs...),
		})
	}
	return conflicts
}

func (g *Graph) PackagesWithConflicts() []string {
	conflicts := g.DetectVersionConflicts()
	names := make([]string, 0, len(conflicts))
	for _, conflict := range conflicts {
		names = append(names, conflict.Package)
	}
	return names
}

func (g *Graph) HasVersionConflicts() bool {
	return len(g.DetectVersionConflicts()) > 0
}

func (g *Graph) RequirementsFor(pkg string) []VersionRequirement {
	return append([]VersionRequirement(nil), g.requirements[pkg]...)
}

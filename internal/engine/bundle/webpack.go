// # internal/engine/bundle/webpack.go
package bundle

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/zach-fau/codescope/internal/core/errors"
	"github.com/zach-fau/codescope/internal/engine/graph"
	"github.com/zach-fau/codescope/internal/shared/util"
)

// Stats is the subset of a webpack stats.json this tool reads. Chunk
// ids vary between number and string across webpack versions, so they
// are left raw.
type Stats struct {
	Assets  []Asset  `json:"assets"`
	Chunks  []Chunk  `json:"chunks"`
	Modules []Module `json:"modules"`
}

type Asset struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
}

type Chunk struct {
	ID      json.RawMessage `json:"id"`
	Names   []string        `json:"names"`
	Size    int64           `json:"size"`
	Initial bool            `json:"initial"`
}

type Module struct {
	Identifier string `json:"identifier"`
	Name       string `json:"name"`
	Size       int64  `json:"size"`

	// Concatenated modules nest their members here.
	Modules []Module `json:"modules"`
}

func Parse(content []byte) (*Stats, error) {
	var stats Stats
	if err := json.Unmarshal(content, &stats); err != nil {
		return nil, errors.Wrap(err, errors.CodeParseError, "invalid webpack stats")
	}
	return &stats, nil
}

func FromFile(path string) (*Stats, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.AddContext(
			errors.Wrap(err, errors.CodeNotFound, "read webpack stats"),
			errors.CtxPath, path,
		)
	}
	stats, err := Parse(content)
	if err != nil {
		return nil, errors.AddContext(err, errors.CtxPath, path)
	}
	return stats, nil
}

// PackageBundleSize aggregates every bundled module of one package.
type PackageBundleSize struct {
	Name        string
	TotalSize   int64
	ModuleCount int
	Modules     []string
}

func (p *PackageBundleSize) PercentageOf(totalBundleSize int64) float64 {
	if totalBundleSize <= 0 {
		return 0
	}
	return float64(p.TotalSize) / float64(totalBundleSize) * 100.0
}

type UnmappedModule struct {
	Path string
	Size int64
}

type Analysis struct {
	Packages        map[string]*PackageBundleSize
	UnmappedModules []UnmappedModule
	TotalAssetSize  int64
	TotalModuleSize int64
	ChunkCount      int
	ModuleCount     int
}

func (a *Analysis) PackagesBySize() []*PackageBundleSize {
	packages := make([]*PackageBundleSize, 0, len(a.Packages))
	for _, name := range util.SortedStringKeys(a.Packages) {
		packages = append(packages, a.Packages[name])
	}
	sort.SliceStable(packages, func(i, j int) bool {
		return packages[i].TotalSize > packages[j].TotalSize
	})
	return packages
}

func (a *Analysis) PackageSize(name string) (int64, bool) {
	pkg, ok := a.Packages[name]
	if !ok {
		return 0, false
	}
	return pkg.TotalSize, true
}

// GraphSizes converts the analysis into the annotation map consumed
// by Graph.ApplyBundleSizes.
func (a *Analysis) GraphSizes() map[string]graph.BundleInfo {
	sizes := make(map[string]graph.BundleInfo, len(a.Packages))
	for name, pkg := range a.Packages {
		sizes[name] = graph.BundleInfo{Size: pkg.TotalSize, ModuleCount: pkg.ModuleCount}
	}
	return sizes
}

// Analyze maps every module, nested concatenated modules included, to
// its npm package and aggregates sizes per package.
func (s *Stats) Analyze() *Analysis {
	analysis := &Analysis{
		Packages:    make(map[string]*PackageBundleSize),
		ChunkCount:  len(s.Chunks),
		ModuleCount: len(s.Modules),
	}
	for _, asset := range s.Assets {
		analysis.TotalAssetSize += asset.Size
	}

	processModules(s.Modules, analysis)
	return analysis
}

func processModules(modules []Module, analysis *Analysis) {
	for _, module := range modules {
		path := module.Name
		if path == "" {
			path = module.Identifier
		}
		if path == "" {
			continue
		}

		analysis.TotalModuleSize += module.Size

		if pkgName, ok := ExtractPackageName(path); ok {
			pkg, exists := analysis.Packages[pkgName]
			if !exists {
				pkg = &PackageBundleSize{Name: pkgName}
				analysis.Packages[pkgName] = pkg
			}
			pkg.TotalSize += module.Size
			pkg.ModuleCount++
			pkg.Modules = append(pkg.Modules, path)
		} else {
			analysis.UnmappedModules = append(analysis.UnmappedModules, UnmappedModule{Path: path, Size: module.Size})
		}

		if len(module.Modules) > 0 {
			processModules(module.Modules, analysis)
		}
	}
}

// ExtractPackageName pulls the npm package name out of a bundled
// module path. The last node_modules marker wins so nested installs
// resolve to the innermost package.
func ExtractPackageName(modulePath string) (string, bool) {
	const marker = "node_modules/"

	pos := strings.LastIndex(modulePath, marker)
	if pos < 0 {
		return "", false
	}
	after := modulePath[pos+len(marker):]

	segments := strings.Split(after, "/")
	if len(segments) == 0 || segments[0] == "" {
		return "", false
	}

	if strings.HasPrefix(segments[0], "@") {
		if len(segments) < 2 {
			return "", false
		}
		return segments[0] + "/" + segments[1], true
	}
	return segments[0], true
}

// FormatSize renders bytes as a human readable string.
func FormatSize(bytes int64) string {
	const (
		kb = int64(1024)
		mb = kb * 1024
		gb = mb * 1024
	)

	switch {
	case bytes >= gb:
		return fmt.Sprintf("%.2f GB", float64(bytes)/float64(gb))
	case bytes >= mb:
		return fmt.Sprintf("%.2f MB", float64(bytes)/float64(mb))
	case bytes >= kb:
		return fmt.Sprintf("%.2f KB", float64(bytes)/float64(kb))
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}

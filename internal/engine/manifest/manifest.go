// # internal/engine/manifest/manifest.go
package manifest

import (
	"encoding/json"
	"os"

	"github.com/zach-fau/codescope/internal/core/errors"
	"github.com/zach-fau/codescope/internal/engine/graph"
	"github.com/zach-fau/codescope/internal/shared/util"
)

// PackageJSON is the subset of an npm manifest this tool cares about.
type PackageJSON struct {
	Name                 string            `json:"name"`
	Version              string            `json:"version"`
	Description          string            `json:"description"`
	Dependencies         map[string]string `json:"dependencies"`
	DevDependencies      map[string]string `json:"devDependencies"`
	PeerDependencies     map[string]string `json:"peerDependencies"`
	OptionalDependencies map[string]string `json:"optionalDependencies"`
}

func Parse(content []byte) (*PackageJSON, error) {
	var pkg PackageJSON
	if err := json.Unmarshal(content, &pkg); err != nil {
		return nil, errors.Wrap(err, errors.CodeParseError, "invalid package.json")
	}
	return &pkg, nil
}

func ParseFile(path string) (*PackageJSON, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.AddContext(
			errors.Wrap(err, errors.CodeNotFound, "read package.json"),
			errors.CtxPath, path,
		)
	}
	pkg, err := Parse(content)
	if err != nil {
		return nil, errors.AddContext(err, errors.CtxPath, path)
	}
	return pkg, nil
}

func (p *PackageJSON) HasDependencies() bool {
	return len(p.Dependencies) > 0 ||
		len(p.DevDependencies) > 0 ||
		len(p.PeerDependencies) > 0 ||
		len(p.OptionalDependencies) > 0
}

// Validate rejects manifests with neither a name nor any dependency
// section, which usually means a stray or truncated file.
func (p *PackageJSON) Validate() error {
	if p.Name == "" && !p.HasDependencies() {
		return errors.New(errors.CodeValidationError, "package.json has no name and no dependencies")
	}
	return nil
}

// ExtractDependencies flattens every dependency section into one list
// with types tagged, sorted by section then name.
func (p *PackageJSON) ExtractDependencies() []graph.Dependency {
	var deps []graph.Dependency
	deps = appendSection(deps, p.Dependencies, graph.TypeProduction)
	deps = appendSection(deps, p.DevDependencies, graph.TypeDevelopment)
	deps = appendSection(deps, p.PeerDependencies, graph.TypePeer)
	deps = appendSection(deps, p.OptionalDependencies, graph.TypeOptional)
	return deps
}

// ExtractProductionDependencies keeps only the runtime section, the
// one bundle size analysis cares about.
func (p *PackageJSON) ExtractProductionDependencies() []graph.Dependency {
	return appendSection(nil, p.Dependencies, graph.TypeProduction)
}

func appendSection(deps []graph.Dependency, section map[string]string, depType graph.DependencyType) []graph.Dependency {
	for _, name := range util.SortedStringKeys(section) {
		deps = append(deps, graph.Dependency{
			Name:    name,
			Version: section[name],
			Type:    depType,
		})
	}
	return deps
}

// GroupByType splits a flat dependency list back into its sections.
func GroupByType(deps []graph.Dependency) map[graph.DependencyType][]graph.Dependency {
	grouped := make(map[graph.DependencyType][]graph.Dependency)
	for _, dep := range deps {
		grouped[dep.Type] = append(grouped[dep.Type], dep)
	}
	return grouped
}

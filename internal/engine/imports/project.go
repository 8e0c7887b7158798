// # internal/engine/imports/project.go
package imports

import (
	"github.com/zach-fau/codescope/internal/shared/util"
)

// underutilizedThreshold marks packages whose known export surface is
// barely referenced.
const underutilizedThreshold = 20.0

// PackageUsage accumulates how one external package is used across
// all analyzed files.
type PackageUsage struct {
	// NamedImports holds original export names, not local aliases.
	NamedImports   map[string]bool
	UsesDefault    bool
	UsesNamespace  bool
	HasSideEffects bool
	ImportingFiles map[string]bool
}

func NewPackageUsage() *PackageUsage {
	return &PackageUsage{
		NamedImports:   make(map[string]bool),
		ImportingFiles: make(map[string]bool),
	}
}

// UtilizationPercentage computes the referenced fraction of the
// package's export surface. A namespace or entire-module usage means
// any export may be referenced, so it forces 100. The result is
// undefined (ok=false) when the total export count is unknown.
func (u *PackageUsage) UtilizationPercentage(totalExports int) (float64, bool) {
	if u.UsesNamespace {
		return 100.0, true
	}
	if totalExports <= 0 {
		return 0, false
	}

	used := len(u.NamedImports)
	if u.UsesDefault {
		used++
	}
	return float64(used) / float64(totalExports) * 100.0, true
}

func (u *PackageUsage) IsPotentiallyUnderutilized(totalExports int) bool {
	if u.UsesNamespace {
		return false
	}
	utilization, ok := u.UtilizationPercentage(totalExports)
	return ok && utilization < underutilizedThreshold
}

func (u *PackageUsage) SortedNamedImports() []string {
	return util.SortedStringKeys(u.NamedImports)
}

func (u *PackageUsage) SortedImportingFiles() []string {
	return util.SortedStringKeys(u.ImportingFiles)
}

func (u *PackageUsage) FileCount() int {
	return len(u.ImportingFiles)
}

// ProjectImports is the per-run aggregate. It is rebuilt from scratch
// on every analysis; nothing persists between runs.
type ProjectImports struct {
	FileImports map[string][]Import
	Packages    map[string]*PackageUsage

	// LocalImports records relative/absolute sources per file. They
	// never contribute to package statistics.
	LocalImports map[string][]string

	// ParseErrors maps failed file paths to their error text. One bad
	// file must not abort a directory scan.
	ParseErrors map[string]string
}

func NewProjectImports() *ProjectImports {
	return &ProjectImports{
		FileImports:  make(map[string][]Import),
		Packages:     make(map[string]*PackageUsage),
		LocalImports: make(map[string][]string),
		ParseErrors:  make(map[string]string),
	}
}

func (p *ProjectImports) AddFileImports(path string, fileImports []Import) {
	p.FileImports[path] = fileImports

	for _, imp := range fileImports {
		pkg, ok := imp.PackageName()
		if !ok {
			if imp.Source != "" {
				p.LocalImports[path] = append(p.LocalImports[path], imp.Source)
			}
			continue
		}

		usage, exists := p.Packages[pkg]
		if !exists {
			usage = NewPackageUsage()
			p.Packages[pkg] = usage
		}
		usage.ImportingFiles[path] = true

		for _, spec := range imp.Specifiers {
			switch spec.Kind {
			case SpecDefault:
				usage.UsesDefault = true
			case SpecNamed:
				usage.NamedImports[spec.Imported] = true
			case SpecNamespace, SpecEntire:
				// Both hide which exports are touched; assume all.
				usage.UsesNamespace = true
			case SpecSideEffect:
				usage.HasSideEffects = true
			}
		}
	}
}

func (p *ProjectImports) AddParseError(path string, err error) {
	if err == nil {
		return
	}
	p.ParseErrors[path] = err.Error()
}

func (p *ProjectImports) Usage(pkg string) (*PackageUsage, bool) {
	usage, ok := p.Packages[pkg]
	return usage, ok
}

func (p *ProjectImports) PackageNames() []string {
	return util.SortedStringKeys(p.Packages)
}

func (p *ProjectImports) FileCount() int {
	return len(p.FileImports)
}

func (p *ProjectImports) ParseErrorCount() int {
	return len(p.ParseErrors)
}

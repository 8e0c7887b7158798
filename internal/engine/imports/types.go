// # internal/engine/imports/types.go
package imports

import "strings"

type ImportKind string

const (
	KindES6           ImportKind = "es6"
	KindCommonJS      ImportKind = "commonjs"
	KindDynamicImport ImportKind = "dynamic_import"
)

type SpecifierKind string

const (
	SpecDefault    SpecifierKind = "default"
	SpecNamed      SpecifierKind = "named"
	SpecNamespace  SpecifierKind = "namespace"
	SpecSideEffect SpecifierKind = "side_effect"
	SpecEntire     SpecifierKind = "entire"
)

// ImportSpecifier is a single binding introduced by one import or
// require statement.
type ImportSpecifier struct {
	Kind SpecifierKind

	// Imported is the original exported name, set for Named only.
	// Utilization is computed against the exporting package's original
	// names, so the alias is kept separately.
	Imported string

	// Local is the binding actually introduced. Empty for SideEffect.
	Local string
}

// Import is one extracted import-like statement, in document order.
type Import struct {
	Source     string
	Kind       ImportKind
	Specifiers []ImportSpecifier
	Line       int
}

// IsLocal reports whether the source is a relative or absolute path
// rather than a package. The "@/" prefix is the common bundler alias
// for the project root.
func (i Import) IsLocal() bool {
	return strings.HasPrefix(i.Source, ".") ||
		strings.HasPrefix(i.Source, "/") ||
		strings.HasPrefix(i.Source, "@/")
}

func (i Import) IsSideEffectOnly() bool {
	if len(i.Specifiers) == 0 {
		return false
	}
	for _, spec := range i.Specifiers {
		if spec.Kind != SpecSideEffect {
			return false
		}
	}
	return true
}

func (i Import) IsNamespaceImport() bool {
	for _, spec := range i.Specifiers {
		if spec.Kind == SpecNamespace {
			return true
		}
	}
	return false
}

// PackageName resolves the import source to a package name: the first
// path segment, or two segments for @scope/name. Local sources have
// no package name.
func (i Import) PackageName() (string, bool) {
	if i.Source == "" || i.IsLocal() {
		return "", false
	}

	segments := strings.Split(i.Source, "/")
	if strings.HasPrefix(i.Source, "@") {
		if len(segments) < 2 {
			return "", false
		}
		return segments[0] + "/" + segments[1], true
	}
	return segments[0], true
}

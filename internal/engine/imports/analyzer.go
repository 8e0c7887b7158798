// # internal/engine/imports/analyzer.go
package imports

import (
	"fmt"
	"path/filepath"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"

	"github.com/zach-fau/codescope/internal/core/errors"
	"github.com/zach-fau/codescope/internal/shared/util"
)

type Dialect string

const (
	DialectJavaScript Dialect = "javascript"
	DialectTypeScript Dialect = "typescript"
	DialectTSX        Dialect = "tsx"
)

// Analyzer extracts import-like statements from JS/TS sources. One
// short-lived tree-sitter parser is created per file, so a single
// Analyzer may be shared across goroutines for read-only analysis.
type Analyzer struct {
	languages  map[Dialect]*sitter.Language
	extensions map[string]Dialect
}

// NewAnalyzer loads the JavaScript and TypeScript grammars. A grammar
// that fails to load is a packaging defect and fails construction.
func NewAnalyzer() (*Analyzer, error) {
	languages := map[Dialect]*sitter.Language{
		DialectJavaScript: sitter.NewLanguage(tree_sitter_javascript.Language()),
		DialectTypeScript: sitter.NewLanguage(tree_sitter_typescript.LanguageTypescript()),
		DialectTSX:        sitter.NewLanguage(tree_sitter_typescript.LanguageTSX()),
	}
	for dialect, lang := range languages {
		if lang == nil {
			return nil, errors.New(errors.CodeInternal, fmt.Sprintf("grammar failed to load: %s", dialect))
		}
	}

	return &Analyzer{
		languages: languages,
		extensions: map[string]Dialect{
			".js":  DialectJavaScript,
			".mjs": DialectJavaScript,
			".cjs": DialectJavaScript,
			".jsx": DialectJavaScript,
			".ts":  DialectTypeScript,
			".mts": DialectTypeScript,
			".cts": DialectTypeScript,
			".tsx": DialectTSX,
		},
	}, nil
}

func (a *Analyzer) DialectFor(path string) (Dialect, bool) {
	dialect, ok := a.extensions[strings.ToLower(filepath.Ext(path))]
	return dialect, ok
}

func (a *Analyzer) IsSupportedPath(path string) bool {
	_, ok := a.DialectFor(path)
	return ok
}

func (a *Analyzer) SupportedExtensions() []string {
	return util.SortedStringKeys(a.extensions)
}

// AnalyzeFile extracts the imports of one source file. An unsupported
// extension is a distinct skip signal, separate from a parse failure,
// so directory scans can ignore non-source files without misreporting.
func (a *Analyzer) AnalyzeFile(path string, content []byte) ([]Import, error) {
	dialect, ok := a.DialectFor(path)
	if !ok {
		return nil, errors.AddContext(
			errors.New(errors.CodeNotSupported, "unsupported file extension"),
			errors.CtxPath, path,
		)
	}
	return a.AnalyzeSource(dialect, content)
}

func (a *Analyzer) AnalyzeSource(dialect Dialect, source []byte) ([]Import, error) {
	lang := a.languages[dialect]
	if lang == nil {
		return nil, errors.New(errors.CodeInternal, fmt.Sprintf("grammar not loaded: %s", dialect))
	}

	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(lang)

	tree := parser.Parse(source, nil)
	if tree == nil {
		return nil, errors.AddContext(
			errors.New(errors.CodeParseError, "parse failed"),
			errors.CtxDialect, string(dialect),
		)
	}
	defer tree.Close()

	if tree.RootNode().HasError() {
		return nil, errors.AddContext(
			errors.New(errors.CodeParseError, "source contains syntax errors"),
			errors.CtxDialect, string(dialect),
		)
	}

	var imports []Import
	walkImports(tree.RootNode(), source, &imports)
	return imports, nil
}

// walkImports is a depth-first traversal in document order, so the
// extracted imports keep source order.
func walkImports(node *sitter.Node, source []byte, out *[]Import) {
	switch node.Kind() {
	case "import_statement":
		if imp, ok := extractES6Import(node, source); ok {
			*out = append(*out, imp)
		}
		return
	case "variable_declarator":
		if imp, ok := extractRequireBinding(node, source); ok {
			*out = append(*out, imp)
			return
		}
	case "call_expression":
		if imp, ok := extractCallImport(node, source); ok {
			*out = append(*out, imp)
			return
		}
	}

	for i := uint(0); i < node.ChildCount(); i++ {
		walkImports(node.Child(i), source, out)
	}
}

func extractES6Import(node *sitter.Node, source []byte) (Import, bool) {
	moduleSource, ok := stringValue(node.ChildByFieldName("source"), source)
	if !ok {
		return Import{}, false
	}

	imp := Import{
		Source: moduleSource,
		Kind:   KindES6,
		Line:   int(node.StartPosition().Row) + 1,
	}

	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child.Kind() != "import_clause" {
			continue
		}
		imp.Specifiers = append(imp.Specifiers, extractClauseSpecifiers(child, source)...)
	}

	// import 'x' introduces no bindings, only top-level execution.
	if len(imp.Specifiers) == 0 {
		imp.Specifiers = []ImportSpecifier{{Kind: SpecSideEffect}}
	}
	return imp, true
}

func extractClauseSpecifiers(clause *sitter.Node, source []byte) []ImportSpecifier {
	var specs []ImportSpecifier
	for i := uint(0); i < clause.ChildCount(); i++ {
		child := clause.Child(i)
		switch child.Kind() {
		case "identifier":
			specs = append(specs, ImportSpecifier{
				Kind:  SpecDefault,
				Local: nodeText(child, source),
			})
		case "namespace_import":
			for j := uint(0); j < child.ChildCount(); j++ {
				if inner := child.Child(j); inner.Kind() == "identifier" {
					specs = append(specs, ImportSpecifier{
						Kind:  SpecNamespace,
						Local: nodeText(inner, source),
					})
					break
				}
			}
		case "named_imports":
			for j := uint(0); j < child.ChildCount(); j++ {
				entry := child.Child(j)
				if entry.Kind() != "import_specifier" {
					continue
				}
				imported := nodeText(entry.ChildByFieldName("name"), source)
				if imported == "" {
					continue
				}
				local := nodeText(entry.ChildByFieldName("alias"), source)
				if local == "" {
					local = imported
				}
				specs = append(specs, ImportSpecifier{
					Kind:     SpecNamed,
					Imported: imported,
					Local:    local,
				})
			}
		}
	}
	return specs
}

// extractRequireBinding handles const/let/var bindings whose value is
// a require call: a plain identifier takes the entire module, an
// object pattern takes one Named specifier per destructured key.
func extractRequireBinding(declarator *sitter.Node, source []byte) (Import, bool) {
	moduleSource, ok := requireCallSource(declarator.ChildByFieldName("value"), source)
	if !ok {
		return Import{}, false
	}

	imp := Import{
		Source: moduleSource,
		Kind:   KindCommonJS,
		Line:   int(declarator.StartPosition().Row) + 1,
	}

	name := declarator.ChildByFieldName("name")
	if name == nil {
		return Import{}, false
	}

	switch name.Kind() {
	case "identifier":
		imp.Specifiers = []ImportSpecifier{{Kind: SpecEntire, Local: nodeText(name, source)}}
	case "object_pattern":
		imp.Specifiers = objectPatternSpecifiers(name, source)
		if len(imp.Specifiers) == 0 {
			imp.Specifiers = []ImportSpecifier{{Kind: SpecSideEffect}}
		}
	default:
		// Array patterns and other exotic bindings fall through to the
		// generic call handling.
		return Import{}, false
	}
	return imp, true
}

func objectPatternSpecifiers(pattern *sitter.Node, source []byte) []ImportSpecifier {
	var specs []ImportSpecifier
	for i := uint(0); i < pattern.ChildCount(); i++ {
		entry := pattern.Child(i)
		switch entry.Kind() {
		case "shorthand_property_identifier_pattern":
			name := nodeText(entry, source)
			specs = append(specs, ImportSpecifier{Kind: SpecNamed, Imported: name, Local: name})
		case "pair_pattern":
			// { original: renamed } — the exported name is the key.
			imported := nodeText(entry.ChildByFieldName("key"), source)
			if imported == "" {
				continue
			}
			local := nodeText(entry.ChildByFieldName("value"), source)
			if local == "" {
				local = imported
			}
			specs = append(specs, ImportSpecifier{Kind: SpecNamed, Imported: imported, Local: local})
		}
	}
	return specs
}

// extractCallImport handles require calls whose result is discarded
// and dynamic import() calls. Later destructuring of a dynamic import
// promise is not traced.
func extractCallImport(call *sitter.Node, source []byte) (Import, bool) {
	fn := call.ChildByFieldName("function")
	if fn == nil {
		return Import{}, false
	}

	switch {
	case fn.Kind() == "identifier" && nodeText(fn, source) == "require":
		moduleSource, ok := callArgumentString(call, source)
		if !ok {
			return Import{}, false
		}
		return Import{
			Source:     moduleSource,
			Kind:       KindCommonJS,
			Specifiers: []ImportSpecifier{{Kind: SpecSideEffect}},
			Line:       int(call.StartPosition().Row) + 1,
		}, true
	case fn.Kind() == "import":
		moduleSource, ok := callArgumentString(call, source)
		if !ok {
			return Import{}, false
		}
		return Import{
			Source:     moduleSource,
			Kind:       KindDynamicImport,
			Specifiers: []ImportSpecifier{{Kind: SpecSideEffect}},
			Line:       int(call.StartPosition().Row) + 1,
		}, true
	}
	return Import{}, false
}

func requireCallSource(value *sitter.Node, source []byte) (string, bool) {
	if value == nil || value.Kind() != "call_expression" {
		return "", false
	}
	fn := value.ChildByFieldName("function")
	if fn == nil || fn.Kind() != "identifier" || nodeText(fn, source) != "require" {
		return "", false
	}
	return callArgumentString(value, source)
}

func callArgumentString(call *sitter.Node, source []byte) (string, bool) {
	args := call.ChildByFieldName("arguments")
	if args == nil {
		return "", false
	}
	for i := uint(0); i < args.ChildCount(); i++ {
		if arg := args.Child(i); arg.Kind() == "string" {
			return stringValue(arg, source)
		}
	}
	return "", false
}

// stringValue returns the literal content of a string node. Template
// strings and computed sources are rejected.
func stringValue(node *sitter.Node, source []byte) (string, bool) {
	if node == nil || node.Kind() != "string" {
		return "", false
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		if child := node.Child(i); child.Kind() == "string_fragment" {
			return nodeText(child, source), true
		}
	}
	// Empty string literal has no fragment child.
	return "", true
}

func nodeText(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	start := node.StartByte()
	end := node.EndByte()
	if start >= end || end > uint(len(source)) {
		return ""
	}
	return string(source[start:end])
}

package bundler

import (
	"sort"
	"strings"

	"github.com/fgoll/source-code-plan/internal/config"
	"github.com/fgoll/source-code-plan/internal/helpers"
	"github.com/fgoll/source-code-plan/internal/js_ast"
	"github.com/fgoll/source-code-plan/internal/srcbuf"
)

// A finalizer turns the generated statements into a complete file in some
// module format: it adds whatever the format needs to import externals and
// expose the entry module's exports.
type finalizer func(g *Graph, bundle *srcbuf.Bundle, options config.Options) error

var finalizers = map[string]finalizer{
	"es6": finalizeES6,
}

func validFormats() string {
	var formats []string
	for format := range finalizers {
		formats = append(formats, format)
	}
	sort.Strings(formats)
	return strings.Join(formats, ", ")
}

func finalizeES6(g *Graph, bundle *srcbuf.Bundle, options config.Options) error {
	if imports := g.externalImports(); len(imports) > 0 {
		bundle.Prepend(strings.Join(imports, "\n") + "\n\n")
	}
	if g.entry.hashbang != "" {
		bundle.Prepend(g.entry.hashbang + "\n")
	}
	if clause := g.entryExportClause(); clause != "" {
		bundle.Append("\n\nexport { " + clause + " };")
	}
	bundle.Trim()
	return nil
}

func moduleExportName(name string) string {
	if js_ast.IsIdentifier(name) {
		return name
	}
	return helpers.QuoteSingle(name)
}

// One import declaration per external module, except that a namespace import
// and named imports can't share a declaration
func (g *Graph) externalImports() []string {
	var imports []string

	for _, external := range g.referencedExternals {
		source := helpers.QuoteSingle(external.Specifier)
		var defaultName, namespaceName string
		var named []string

		for _, imported := range external.importedNames {
			local := external.canonicalName(imported)
			switch imported {
			case "default":
				defaultName = local
			case "*":
				namespaceName = local
			default:
				if local == imported {
					named = append(named, local)
				} else {
					named = append(named, moduleExportName(imported)+" as "+local)
				}
			}
		}

		var clauses []string
		if defaultName != "" {
			clauses = append(clauses, defaultName)
		}
		if namespaceName != "" {
			clauses = append(clauses, "* as "+namespaceName)
		}
		if len(named) > 0 && namespaceName == "" {
			clauses = append(clauses, "{ "+strings.Join(named, ", ")+" }")
		}

		if len(clauses) == 0 {
			imports = append(imports, "import "+source+";")
		} else {
			imports = append(imports, "import "+strings.Join(clauses, ", ")+" from "+source+";")
		}
		if len(named) > 0 && namespaceName != "" {
			imports = append(imports, "import { "+strings.Join(named, ", ")+" } from "+source+";")
		}
	}

	return imports
}

func (g *Graph) entryExportClause() string {
	var items []string
	for _, name := range g.entry.exportOrder {
		local := g.entry.canonicalName(g.entry.exports[name].Local)
		if local == name {
			items = append(items, local)
		} else {
			items = append(items, local+" as "+moduleExportName(name))
		}
	}
	return strings.Join(items, ", ")
}

package bundler

import (
	"strconv"

	"github.com/fgoll/source-code-plan/internal/js_ast"
	"github.com/fgoll/source-code-plan/internal/js_scope"
)

func computeReservedNames(g *Graph) map[string]bool {
	names := make(map[string]bool)

	// All keywords are reserved names
	for k := range js_ast.Keywords {
		names[k] = true
	}
	for k := range js_ast.StrictModeReservedWords {
		names[k] = true
	}
	for _, k := range []string{"await", "arguments", "eval"} {
		names[k] = true
	}

	// All names that included code uses without a definition must be reserved
	// so that nothing is renamed to shadow a global
	for _, s := range g.statements {
		for _, ref := range s.Refs {
			if s.module.isUnbound(ref.Name) {
				names[ref.Name] = true
			}
		}
	}

	return names
}

func (m *Module) isUnbound(name string) bool {
	if _, ok := m.imports[name]; ok {
		return false
	}
	if _, ok := m.definitions[name]; ok {
		return false
	}
	return true
}

////////////////////////////////////////////////////////////////////////////////
// assignCanonicalNames() implementation

type renamer struct {
	// This is used as a set of used names. This also maps the name to the
	// number of times the name has experienced a collision. When a name
	// collides with an already-used name, we need to rename it. This is done by
	// incrementing a number at the end until the name is unused. We save the
	// count here so that subsequent collisions can start counting from where the
	// previous collision ended instead of having to start counting from 1.
	nameCounts map[string]uint32
}

func newRenamer(reservedNames map[string]bool) *renamer {
	nameCounts := make(map[string]uint32)
	for name := range reservedNames {
		// Each name starts off with a count of 1 so that the first collision with
		// "name" is called "name2"
		nameCounts[name] = 1
	}
	return &renamer{nameCounts: nameCounts}
}

// Names in "avoid" are skipped without being marked as used. They are only
// off limits for this one binding.
func (r *renamer) findUnusedName(name string, avoid map[string]bool) string {
	tries, ok := r.nameCounts[name]
	if ok || avoid[name] {
		if !ok {
			tries = 1
		}

		// To avoid O(n^2) behavior, the number must start off being the number
		// that we used last time there was a collision with this name
		prefix := name

		// Keep incrementing the number until the name is unused
		for {
			tries++
			name = prefix + strconv.Itoa(int(tries))
			if _, used := r.nameCounts[name]; !used && !avoid[name] {
				break
			}
		}
		if ok {
			r.nameCounts[prefix] = tries
		}
	}

	r.nameCounts[name] = 1
	return name
}

// Identifies a binding in the output independent of the local names that
// importing modules give it
type bindingKey struct {
	record ModuleRecord
	name   string
}

// Follows imports to the binding a local name refers to. Unlike
// canonicalName this works before any names have been assigned.
func (m *Module) bindingOf(name string, visited map[bindingKey]bool) bindingKey {
	key := bindingKey{record: m, name: name}

	if binding, ok := m.imports[name]; ok {
		if visited[key] {
			return key
		}
		if visited == nil {
			visited = make(map[bindingKey]bool)
		}
		visited[key] = true

		switch target := binding.target.(type) {
		case *ExternalModule:
			return bindingKey{record: target, name: binding.Imported}

		case *Module:
			if binding.Imported == "*" {
				return bindingKey{record: target, name: "*"}
			}
			if exporter, export := target.lookupExport(binding.Imported, nil); export != nil {
				return exporter.bindingOf(export.Local, visited)
			}
		}
		return key
	}

	if name == "default" {
		if local, ok := m.defaultExportIdentifier(); ok {
			return m.bindingOf(local, visited)
		}
	}
	return key
}

// Collects, for every binding, the names declared by nested scopes that
// contain a reference to it. Giving the binding one of these names would
// let the inner declaration capture the reference.
func computeShadowingNames(g *Graph) map[bindingKey]map[string]bool {
	result := make(map[bindingKey]map[string]bool)
	for _, s := range g.statements {
		m := s.module
		for _, ref := range s.Refs {
			if m.Scopes[ref.Scope].Parent == -1 {
				continue
			}
			key := m.bindingOf(ref.Name, nil)
			js_scope.ForEachEnclosingName(m.Scopes, ref.Scope, func(name string) {
				names := result[key]
				if names == nil {
					names = make(map[string]bool)
					result[key] = names
				}
				names[name] = true
			})
		}
	}
	return result
}

// Gives every top-level binding in the output a unique name. Modules are
// processed in the order they were discovered, so when two modules use the
// same name the one closer to the entry keeps it.
func assignCanonicalNames(g *Graph) {
	r := newRenamer(computeReservedNames(g))
	shadowing := computeShadowingNames(g)

	for _, m := range g.discovered {
		for _, s := range m.Statements {
			if !s.IsIncluded {
				continue
			}
			for _, name := range s.Defines.Names() {
				if _, ok := m.canonicalNames[name]; !ok {
					m.canonicalNames[name] = r.findUnusedName(name, shadowing[bindingKey{record: m, name: name}])
				}
			}
		}

		// One name per imported name of each external module, named after the
		// first local binding that refers to it
		for _, binding := range m.importOrder {
			external, ok := binding.target.(*ExternalModule)
			if !ok || !m.defined[binding.Local] {
				continue
			}
			if _, ok := external.canonicalNames[binding.Imported]; !ok {
				avoid := shadowing[bindingKey{record: external, name: binding.Imported}]
				external.canonicalNames[binding.Imported] = r.findUnusedName(binding.Local, avoid)
			}
		}

		if g.isNamespace[m] {
			avoid := shadowing[bindingKey{record: m, name: "*"}]
			m.namespaceName = r.findUnusedName(m.IdentifierName+"_exports", avoid)
		}

		if export, ok := m.exports["default"]; ok && export.Value != nil && export.Stmt.IsIncluded {
			if _, ok := m.defaultExportIdentifier(); !ok {
				avoid := shadowing[bindingKey{record: m, name: "default"}]
				m.defaultName = r.findUnusedName(m.IdentifierName+"_default", avoid)
			}
		}
	}
}

// Returns the name a top-level binding of this module has in the output.
// Imports resolve to the name of the binding they refer to.
func (m *Module) canonicalName(name string) string {
	if canonical, ok := m.canonicalNames[name]; ok {
		return canonical
	}

	// Import cycles that never reach a definition resolve to the name itself
	if m.resolving[name] {
		return name
	}
	if m.resolving == nil {
		m.resolving = make(map[string]bool)
	}
	m.resolving[name] = true
	canonical := m.computeCanonicalName(name)
	delete(m.resolving, name)

	m.canonicalNames[name] = canonical
	return canonical
}

func (m *Module) computeCanonicalName(name string) string {
	if binding, ok := m.imports[name]; ok {
		switch target := binding.target.(type) {
		case *ExternalModule:
			return target.canonicalName(binding.Imported)

		case *Module:
			if binding.Imported == "*" {
				if target.namespaceName == "" {
					panic("Internal error")
				}
				return target.namespaceName
			}
			if exporter, export := target.lookupExport(binding.Imported, nil); export != nil {
				return exporter.canonicalName(export.Local)
			}
			panic("Internal error")
		}

		// Never bound, so nothing refers to it
		return name
	}

	if name == "default" {
		if local, ok := m.defaultExportIdentifier(); ok {
			return m.canonicalName(local)
		}
		if m.defaultName == "" {
			panic("Internal error")
		}
		return m.defaultName
	}

	// Globals keep their name
	return name
}

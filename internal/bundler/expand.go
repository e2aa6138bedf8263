package bundler

import (
	"context"
	"fmt"

	"github.com/fgoll/source-code-plan/internal/logger"
)

// Includes every statement of the module. Unless forceAll is set, statements
// that only declare things are skipped since they will be pulled in by name
// if anything needs them.
func (m *Module) expandAllStatements(ctx context.Context, forceAll bool) error {
	m.graph.discover(m)
	for _, s := range m.Statements {
		if !forceAll && s.isDeclarationOnly() {
			continue
		}
		if err := m.expandStatement(ctx, s); err != nil {
			return err
		}
	}
	return nil
}

// Includes a statement after everything it depends on. A statement is only
// ever included once, which is what makes cycles terminate.
func (m *Module) expandStatement(ctx context.Context, s *Statement) error {
	if s.IsIncluded {
		return nil
	}
	s.IsIncluded = true
	m.graph.discover(m)

	for _, name := range s.DependsOn.Names() {
		if err := m.define(ctx, name); err != nil {
			return err
		}
	}

	if s.isSideEffectImport {
		record, err := m.graph.fetchModule(ctx, s.importSource, m.Path)
		if err != nil {
			return err
		}
		switch target := record.(type) {
		case *Module:
			if err := target.expandAllStatements(ctx, false); err != nil {
				return err
			}
		case *ExternalModule:
			target.isSideEffectImport = true
			m.graph.registerExternal(target)
		}
	}

	m.graph.statements = append(m.graph.statements, s)
	return nil
}

// Makes sure the top-level binding with the given name is part of the output,
// following imports into other modules. Asking for the same name twice does
// nothing the second time.
func (m *Module) define(ctx context.Context, name string) error {
	if m.defined[name] {
		return nil
	}
	m.defined[name] = true

	if binding, ok := m.imports[name]; ok {
		target, err := m.bindImport(ctx, binding)
		if err != nil {
			return err
		}

		switch t := target.(type) {
		case *ExternalModule:
			t.registerImportSite(binding)
			m.graph.registerExternal(t)
			return nil

		case *Module:
			if binding.Imported == "*" {
				m.graph.log.AddDebug(fmt.Sprintf("Creating a namespace object for %s", t.PrettyPath))
				m.graph.registerNamespace(t)
				if err := t.expandAllStatements(ctx, true); err != nil {
					return err
				}
				names, err := t.namespaceExportNames(ctx)
				if err != nil {
					return err
				}
				t.namespaceKeys = names
				for _, name := range names {
					exporter, export, err := t.resolveExport(ctx, name, nil)
					if err != nil {
						return err
					}
					if err := exporter.define(ctx, export.Local); err != nil {
						return err
					}
				}
				return nil
			}

			exporter, export, err := t.resolveExport(ctx, binding.Imported, nil)
			if err != nil {
				return err
			}
			if export == nil {
				return &UnresolvedExportError{
					Name:     binding.Imported,
					Exporter: t.PrettyPath,
					Importer: m.PrettyPath,
					Location: logger.LocationOrNil(&m.source, binding.Range),
				}
			}
			return exporter.define(ctx, export.Local)
		}
		panic("Internal error")
	}

	var s *Statement
	if name == "default" {
		if export, ok := m.exports["default"]; ok {
			s = export.Stmt
		}
	} else {
		s = m.definitions[name]
	}

	// Names without a definition are globals provided by the environment
	if s == nil {
		return nil
	}

	if err := m.expandStatement(ctx, s); err != nil {
		return err
	}
	for _, modifier := range m.modifications[name] {
		if err := m.expandStatement(ctx, modifier); err != nil {
			return err
		}
	}
	return nil
}

func (m *Module) bindImport(ctx context.Context, binding *importBinding) (ModuleRecord, error) {
	if binding.target == nil {
		target, err := m.graph.fetchModule(ctx, binding.Source, m.Path)
		if err != nil {
			return nil, err
		}
		binding.target = target
	}
	return binding.target, nil
}

// Looks up an export by name, including names that come in through
// "export * from" statements. Returns the module that owns the binding.
func (m *Module) resolveExport(ctx context.Context, name string, visited map[*Module]bool) (*Module, *exportBinding, error) {
	if export, ok := m.exports[name]; ok {
		return m, export, nil
	}
	if name == "default" || len(m.exportStars) == 0 {
		return nil, nil, nil
	}

	if visited == nil {
		visited = make(map[*Module]bool)
	}
	visited[m] = true

	for _, star := range m.exportStars {
		record, err := m.bindStar(ctx, star)
		if err != nil {
			return nil, nil, err
		}
		target, ok := record.(*Module)
		if !ok || visited[target] {
			continue
		}
		exporter, export, err := target.resolveExport(ctx, name, visited)
		if err != nil || export != nil {
			return exporter, export, err
		}
	}
	return nil, nil, nil
}

func (m *Module) bindStar(ctx context.Context, star *exportStar) (ModuleRecord, error) {
	if star.target == nil {
		target, err := m.graph.fetchModule(ctx, star.Source, m.Path)
		if err != nil {
			return nil, err
		}
		star.target = target
	}
	return star.target, nil
}

// Every name the module exports, own exports first. Names from "export *"
// follow in the order resolveExport would find them. Those never include
// "default", and nothing can be listed for an external module.
func (m *Module) namespaceExportNames(ctx context.Context) ([]string, error) {
	var names []string
	seen := make(map[string]bool)
	visited := make(map[*Module]bool)

	var visit func(module *Module, isStar bool) error
	visit = func(module *Module, isStar bool) error {
		if visited[module] {
			return nil
		}
		visited[module] = true
		for _, name := range module.exportOrder {
			if seen[name] || (isStar && name == "default") {
				continue
			}
			seen[name] = true
			names = append(names, name)
		}
		for _, star := range module.exportStars {
			record, err := module.bindStar(ctx, star)
			if err != nil {
				return err
			}
			if target, ok := record.(*Module); ok {
				if err := visit(target, true); err != nil {
					return err
				}
			}
		}
		return nil
	}

	if err := visit(m, false); err != nil {
		return nil, err
	}
	return names, nil
}

// The same lookup once loading is done. Every star target has been bound by
// then, so this can't fail.
func (m *Module) lookupExport(name string, visited map[*Module]bool) (*Module, *exportBinding) {
	if export, ok := m.exports[name]; ok {
		return m, export
	}
	if name == "default" {
		return nil, nil
	}
	if visited == nil {
		visited = make(map[*Module]bool)
	}
	visited[m] = true
	for _, star := range m.exportStars {
		if target, ok := star.target.(*Module); ok && !visited[target] {
			if exporter, export := target.lookupExport(name, visited); export != nil {
				return exporter, export
			}
		}
	}
	return nil, nil
}

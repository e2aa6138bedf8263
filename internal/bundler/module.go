package bundler

import (
	"strings"

	"github.com/fgoll/source-code-plan/internal/js_ast"
	"github.com/fgoll/source-code-plan/internal/js_scope"
	"github.com/fgoll/source-code-plan/internal/logger"
	"github.com/fgoll/source-code-plan/internal/srcbuf"
	sitter "github.com/smacker/go-tree-sitter"
)

// One local name bound by an import. Re-exports with a source also create
// one of these since "export { a } from 'x'" behaves like an import of "a"
// followed by an export of it.
type importBinding struct {
	Source string

	// "default", "*" or the exported name in the imported module
	Imported string

	Local string
	Range logger.Range

	// Set for bindings created by "export ... from" statements
	isReexport bool

	importer *Module
	target   ModuleRecord
}

type exportBinding struct {
	Name  string
	Local string
	Stmt  *Statement

	// Set for "export <declaration>" and "export default <named declaration>"
	IsDeclaration bool

	// The expression of "export default <expression>". The local name of
	// such an export is "default".
	Value *sitter.Node
}

type exportStar struct {
	Source string
	Stmt   *Statement
	target ModuleRecord
}

type Module struct {
	graph *Graph

	// The absolute path the module was read from
	Path string

	// The path relative to the base directory of the build, with "/"
	// separators. This is used in error messages.
	PrettyPath string

	// Used to name generated bindings such as "util_default"
	IdentifierName string

	source   logger.Source
	text     *srcbuf.Source
	buffer   *srcbuf.Buffer
	ast      js_ast.AST
	hashbang string

	Scopes     []js_scope.Scope
	Statements []*Statement

	imports       map[string]*importBinding
	importOrder   []*importBinding
	exports       map[string]*exportBinding
	exportOrder   []string
	exportStars   []*exportStar
	definitions   map[string]*Statement
	modifications map[string][]*Statement

	// Import specifiers in the order they first appear
	sources []string

	// Names that define() has already been called for
	defined map[string]bool

	canonicalNames map[string]string
	resolving      map[string]bool

	// Generated names for the namespace object and for an unnamed default
	// export. Empty unless the output needs them.
	namespaceName string
	defaultName   string

	// The keys of the namespace object, including names that come in
	// through "export * from"
	namespaceKeys []string
}

func newModule(graph *Graph, source logger.Source, ast js_ast.AST, analysis js_scope.Analysis) (*Module, error) {
	m := &Module{
		graph:          graph,
		Path:           source.KeyPath,
		PrettyPath:     source.PrettyPath,
		IdentifierName: source.IdentifierName,
		source:         source,
		ast:            ast,
		hashbang:       ast.Hashbang,
		Scopes:         analysis.Scopes,
		imports:        make(map[string]*importBinding),
		exports:        make(map[string]*exportBinding),
		definitions:    make(map[string]*Statement),
		modifications:  make(map[string][]*Statement),
		defined:        make(map[string]bool),
		canonicalNames: make(map[string]string),
	}
	m.text = srcbuf.NewSource(source.KeyPath, source.Contents)
	m.buffer = srcbuf.New(m.text)

	for i, stmt := range ast.Stmts {
		info := analysis.Stmts[i]
		s := &Statement{
			module:    m,
			node:      stmt.Node,
			Index:     i,
			Range:     stmt.Range,
			Defines:   info.Defines,
			Modifies:  info.Modifies,
			DependsOn: info.DependsOn,
			Refs:      info.Refs,
		}
		m.Statements = append(m.Statements, s)

		var err error
		switch stmt.Node.Type() {
		case js_ast.KindImportStatement:
			err = m.addImportStatement(s)
		case js_ast.KindExportStatement:
			err = m.addExportStatement(s)
		}
		if err != nil {
			return nil, err
		}

		for _, name := range s.Defines.Names() {
			if _, ok := m.definitions[name]; !ok {
				m.definitions[name] = s
			}
		}
		for _, name := range s.Modifies.Names() {
			if !s.Defines.Has(name) {
				m.modifications[name] = append(m.modifications[name], s)
			}
		}
	}

	attachComments(m.Statements, ast.Comments, source.Contents)
	for _, s := range m.Statements {
		s.buffer = m.buffer.Snip(s.chunkStart, s.chunkEnd)
	}
	return m, nil
}

func (m *Module) nodeText(node *sitter.Node) string {
	return js_ast.NodeText(node, m.source.Contents)
}

// Module export names may be identifiers or string literals
func (m *Module) exportName(node *sitter.Node) string {
	if node.Type() == js_ast.KindString {
		return js_ast.StringValue(node, m.source.Contents)
	}
	return m.nodeText(node)
}

func (m *Module) addSource(source string) {
	for _, existing := range m.sources {
		if existing == source {
			return
		}
	}
	m.sources = append(m.sources, source)
}

func (m *Module) addImport(binding *importBinding) error {
	binding.importer = m
	if existing, ok := m.imports[binding.Local]; ok {
		// Re-exporting a name that is also imported the same way is fine
		if (existing.isReexport || binding.isReexport) &&
			existing.Source == binding.Source && existing.Imported == binding.Imported {
			return nil
		}
		return &DuplicateBindingError{
			Path:     m.PrettyPath,
			Name:     binding.Local,
			Location: logger.LocationOrNil(&m.source, binding.Range),
		}
	}
	m.imports[binding.Local] = binding
	m.importOrder = append(m.importOrder, binding)
	return nil
}

func (m *Module) addExport(binding *exportBinding) {
	if _, ok := m.exports[binding.Name]; ok {
		return
	}
	m.exports[binding.Name] = binding
	m.exportOrder = append(m.exportOrder, binding.Name)
}

func (m *Module) addImportStatement(s *Statement) error {
	s.Kind = StmtImport
	s.importSource = js_ast.StringValue(s.node.ChildByFieldName("source"), m.source.Contents)
	m.addSource(s.importSource)

	clause := js_ast.ChildOfType(s.node, js_ast.KindImportClause)
	if clause == nil {
		s.isSideEffectImport = true
		return nil
	}

	for i := 0; i < int(clause.NamedChildCount()); i++ {
		child := clause.NamedChild(i)
		switch child.Type() {
		case js_ast.KindIdentifier:
			if err := m.addImport(&importBinding{
				Source:   s.importSource,
				Imported: "default",
				Local:    m.nodeText(child),
				Range:    js_ast.NodeRange(child),
			}); err != nil {
				return err
			}

		case js_ast.KindNamespaceImport:
			if local := js_ast.ChildOfType(child, js_ast.KindIdentifier); local != nil {
				if err := m.addImport(&importBinding{
					Source:   s.importSource,
					Imported: "*",
					Local:    m.nodeText(local),
					Range:    js_ast.NodeRange(local),
				}); err != nil {
					return err
				}
			}

		case js_ast.KindNamedImports:
			for j := 0; j < int(child.NamedChildCount()); j++ {
				specifier := child.NamedChild(j)
				if specifier.Type() != js_ast.KindImportSpecifier {
					continue
				}
				name := specifier.ChildByFieldName("name")
				local := name
				if alias := specifier.ChildByFieldName("alias"); alias != nil {
					local = alias
				}
				if err := m.addImport(&importBinding{
					Source:   s.importSource,
					Imported: m.exportName(name),
					Local:    m.nodeText(local),
					Range:    js_ast.NodeRange(local),
				}); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (m *Module) addExportStatement(s *Statement) error {
	node := s.node
	isDefault := false
	isStar := false
	for i := 0; i < int(node.ChildCount()); i++ {
		switch node.Child(i).Type() {
		case "default":
			isDefault = true
		case "*":
			isStar = true
		}
	}

	if source := node.ChildByFieldName("source"); source != nil {
		s.importSource = js_ast.StringValue(source, m.source.Contents)
		m.addSource(s.importSource)

		// "export * from 'x'"
		if isStar {
			s.Kind = StmtExportStar
			m.exportStars = append(m.exportStars, &exportStar{Source: s.importSource, Stmt: s})
			return nil
		}

		s.Kind = StmtReexport

		// "export * as ns from 'x'"
		if ns := js_ast.ChildOfType(node, js_ast.KindNamespaceExport); ns != nil {
			nameNode := ns.NamedChild(0)
			name := m.exportName(nameNode)
			if err := m.addImport(&importBinding{
				Source:     s.importSource,
				Imported:   "*",
				Local:      name,
				Range:      js_ast.NodeRange(nameNode),
				isReexport: true,
			}); err != nil {
				return err
			}
			m.addExport(&exportBinding{Name: name, Local: name, Stmt: s})
			s.DependsOn.Add(name)
			return nil
		}

		// "export { a as b } from 'x'"
		if clause := js_ast.ChildOfType(node, js_ast.KindExportClause); clause != nil {
			for i := 0; i < int(clause.NamedChildCount()); i++ {
				specifier := clause.NamedChild(i)
				if specifier.Type() != js_ast.KindExportSpecifier {
					continue
				}
				nameNode := specifier.ChildByFieldName("name")
				name := m.exportName(nameNode)
				exported := name
				if alias := specifier.ChildByFieldName("alias"); alias != nil {
					exported = m.exportName(alias)
				}
				if err := m.addImport(&importBinding{
					Source:     s.importSource,
					Imported:   name,
					Local:      name,
					Range:      js_ast.NodeRange(nameNode),
					isReexport: true,
				}); err != nil {
					return err
				}
				m.addExport(&exportBinding{Name: exported, Local: name, Stmt: s})
				s.DependsOn.Add(name)
			}
		}
		return nil
	}

	// "export { a, b as c }"
	if clause := js_ast.ChildOfType(node, js_ast.KindExportClause); clause != nil {
		s.Kind = StmtExportClause
		for i := 0; i < int(clause.NamedChildCount()); i++ {
			specifier := clause.NamedChild(i)
			if specifier.Type() != js_ast.KindExportSpecifier {
				continue
			}
			local := m.exportName(specifier.ChildByFieldName("name"))
			exported := local
			if alias := specifier.ChildByFieldName("alias"); alias != nil {
				exported = m.exportName(alias)
			}
			m.addExport(&exportBinding{Name: exported, Local: local, Stmt: s})
		}
		return nil
	}

	if isDefault {
		s.Kind = StmtExportDefault
		decl := node.ChildByFieldName("declaration")
		if decl != nil {
			if name := decl.ChildByFieldName("name"); name != nil {
				s.declaration = decl
				m.addExport(&exportBinding{Name: "default", Local: m.nodeText(name), Stmt: s, IsDeclaration: true})
				return nil
			}
		}

		// Anonymous declarations are treated like expressions
		s.value = decl
		if s.value == nil {
			s.value = node.ChildByFieldName("value")
		}
		m.addExport(&exportBinding{Name: "default", Local: "default", Stmt: s, Value: s.value})
		return nil
	}

	// "export <declaration>"
	s.Kind = StmtExportDecl
	s.declaration = node.ChildByFieldName("declaration")
	for _, name := range s.Defines.Names() {
		m.addExport(&exportBinding{Name: name, Local: name, Stmt: s, IsDeclaration: true})
	}
	return nil
}

// The default export is an expression that is just a reference to a
// top-level name, as in "export default foo"
func (m *Module) defaultExportIdentifier() (string, bool) {
	exp, ok := m.exports["default"]
	if !ok || exp.Value == nil {
		return "", false
	}
	value := exp.Value
	for value.Type() == js_ast.KindParenthesized && value.NamedChildCount() == 1 {
		value = value.NamedChild(0)
	}
	if value.Type() != js_ast.KindIdentifier {
		return "", false
	}
	name := m.nodeText(value)
	for _, ref := range exp.Stmt.Refs {
		if ref.Name == name {
			return name, true
		}
	}
	return "", false
}

func (m *Module) String() string {
	return m.PrettyPath
}

// Computes the identifier used to name generated bindings for a module
func identifierName(base string) string {
	if i := strings.LastIndexByte(base, '.'); i > 0 {
		base = base[:i]
	}
	return js_ast.ForceValidIdentifier(base)
}

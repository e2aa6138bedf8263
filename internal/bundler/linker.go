package bundler

import (
	"fmt"
	"strings"

	"github.com/fgoll/source-code-plan/internal/config"
	"github.com/fgoll/source-code-plan/internal/helpers"
	"github.com/fgoll/source-code-plan/internal/js_ast"
	"github.com/fgoll/source-code-plan/internal/logger"
	"github.com/fgoll/source-code-plan/internal/sourcemap"
	"github.com/fgoll/source-code-plan/internal/srcbuf"
)

type Result struct {
	Code string
	Map  *sourcemap.SourceMap
}

// Renders the included statements into a single file. This can be called
// more than once with different options.
func (g *Graph) Generate(options config.Options) (*Result, error) {
	options = options.WithDefaults()
	finalize, ok := finalizers[options.Format]
	if !ok {
		return nil, &MissingFinalizerError{Format: options.Format}
	}
	if g.entry == nil {
		panic("Internal error")
	}

	g.timer.Begin("Generate")
	defer g.timer.End("Generate")

	if !g.isNamed {
		g.timer.Begin("Assign names")
		assignCanonicalNames(g)
		g.isNamed = true
		g.timer.End("Assign names")
	}

	bundle := &srcbuf.Bundle{}
	var prev *Statement
	for _, s := range g.statements {
		buffer, err := renderStatement(s)
		if err != nil {
			return nil, err
		}
		if buffer == nil {
			continue
		}
		bundle.AddSource(separatorBetween(prev, s), buffer)
		prev = s
	}

	if text := g.namespaceObjects(); text != "" {
		bundle.Prepend(text + "\n\n")
	}

	if err := finalize(g, bundle, options); err != nil {
		return nil, err
	}

	g.timer.Begin("Generate source map")
	sourceMap := bundle.GenerateMap(srcbuf.MapOptions{
		File:           g.mapFile(options.Dest),
		IncludeContent: options.IncludeContent,
		SourcePath:     g.mapSourcePath(options.Dest),
	})
	g.timer.End("Generate source map")

	return &Result{Code: bundle.String(), Map: sourceMap}, nil
}

// Returns a copy of the statement's text with module syntax removed and
// references renamed, or nil if nothing of the statement remains
func renderStatement(s *Statement) (*srcbuf.Buffer, error) {
	m := s.module
	buffer := s.buffer.Snip(s.chunkStart, s.chunkEnd)
	start := int(s.Range.Loc.Start)
	end := int(s.Range.End())

	switch s.Kind {
	case StmtImport, StmtReexport, StmtExportClause:
		return nil, nil

	case StmtExportStar:
		// Outside the entry these only matter for name lookups
		if m != m.graph.entry {
			return nil, nil
		}
		return nil, &UnsupportedExportFormError{
			Path:     m.PrettyPath,
			Text:     fmt.Sprintf("Cannot re-export everything from %s in the entry module", helpers.QuoteSingle(s.importSource)),
			Location: logger.LocationOrNil(&m.source, s.Range),
		}

	case StmtExportDecl:
		buffer.Remove(start, int(s.declaration.StartByte()))

	case StmtExportDefault:
		if s.declaration != nil {
			buffer.Remove(start, int(s.declaration.StartByte()))
			break
		}

		name := m.canonicalName("default")
		if local, ok := m.defaultExportIdentifier(); ok && m.canonicalName(local) == name {
			return nil, nil
		}
		buffer.Overwrite(start, int(s.value.StartByte()), fmt.Sprintf("var %s = ", name))
		if !strings.HasSuffix(s.Text(), ";") {
			buffer.Insert(end, ";")
		}
	}

	for _, ref := range s.Refs {
		canonical := m.canonicalName(ref.Name)
		if canonical == ref.Name {
			continue
		}
		text := canonical
		if ref.Shorthand {
			text = ref.Name + ": " + canonical
		}
		buffer.Overwrite(int(ref.Range.Loc.Start), int(ref.Range.End()), text)
	}

	return buffer, nil
}

// Statements from the same module that shared a line keep their spacing.
// Everything else is separated by the larger of the two original margins.
func separatorBetween(prev *Statement, s *Statement) string {
	if prev == nil {
		return ""
	}
	if prev.module == s.module && prev.Index+1 == s.Index {
		gap := s.module.source.Contents[prev.chunkEnd:s.chunkStart]
		if !strings.ContainsAny(gap, "\r\n") {
			return gap
		}
	}

	lines := prev.MarginAfter
	if s.MarginBefore > lines {
		lines = s.MarginBefore
	}
	if lines < 1 {
		lines = 1
	} else if lines > 3 {
		lines = 3
	}
	return strings.Repeat("\n", lines)
}

// Objects standing in for modules imported with "import * as". Getters keep
// the properties live.
func (g *Graph) namespaceObjects() string {
	var blocks []string
	for _, m := range g.namespaceModules {
		j := helpers.Joiner{}
		j.AddString(fmt.Sprintf("var %s = {", m.namespaceName))
		for i, name := range m.namespaceKeys {
			if i > 0 {
				j.AddString(",")
			}
			key := name
			if !js_ast.IsIdentifier(key) {
				key = helpers.QuoteSingle(key)
			}
			exporter, export := m.lookupExport(name, nil)
			j.AddString(fmt.Sprintf("\n\tget %s () { return %s; }", key, exporter.canonicalName(export.Local)))
		}
		if len(m.namespaceKeys) > 0 {
			j.AddString("\n")
		}
		j.AddString("};")
		blocks = append(blocks, j.Done())
	}
	return strings.Join(blocks, "\n\n")
}

func (g *Graph) mapFile(dest string) string {
	if dest == "" {
		return ""
	}
	return g.fs.Base(dest)
}

// Paths in the source map are relative to the directory of the output file
func (g *Graph) mapSourcePath(dest string) func(string) string {
	if dest == "" {
		return g.prettyPath
	}
	if absDest, ok := g.fs.Abs(dest); ok {
		dest = absDest
	}
	dir := g.fs.Dir(dest)
	return func(name string) string {
		if rel, ok := g.fs.Rel(dir, name); ok {
			return strings.ReplaceAll(rel, "\\", "/")
		}
		return g.prettyPath(name)
	}
}

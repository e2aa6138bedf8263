package bundler

import (
	"strings"

	"github.com/fgoll/source-code-plan/internal/js_ast"
	"github.com/fgoll/source-code-plan/internal/js_scope"
	"github.com/fgoll/source-code-plan/internal/logger"
	"github.com/fgoll/source-code-plan/internal/srcbuf"
	sitter "github.com/smacker/go-tree-sitter"
)

type StmtKind uint8

const (
	StmtOther StmtKind = iota

	// "import ... from 'x'" and "import 'x'"
	StmtImport

	// "export { a, b as c }"
	StmtExportClause

	// "export { a } from 'x'" and "export * as ns from 'x'"
	StmtReexport

	// "export * from 'x'"
	StmtExportStar

	// "export var a", "export function a() {}" and so on
	StmtExportDecl

	// "export default ..."
	StmtExportDefault
)

// A top-level statement of a module together with everything the bundler
// knows about it
type Statement struct {
	module *Module
	node   *sitter.Node

	// The position of this statement among the statements of its module
	Index int
	Range logger.Range
	Kind  StmtKind

	Defines   js_scope.NameSet
	Modifies  js_scope.NameSet
	DependsOn js_scope.NameSet
	Refs      []js_scope.Ref

	// This only ever goes from false to true
	IsIncluded bool

	LeadingComments  []js_ast.Comment
	TrailingComments []js_ast.Comment

	// The number of line breaks between this statement (with its comments)
	// and its neighbors in the original source
	MarginBefore int
	MarginAfter  int

	// For "export <declaration>" and "export default <declaration>"
	declaration *sitter.Node

	// For "export default <expression>"
	value *sitter.Node

	// For imports and re-exports
	importSource       string
	isSideEffectImport bool

	// The text of the statement including its comments. The code generator
	// edits this in place.
	chunkStart int
	chunkEnd   int
	buffer     *srcbuf.Buffer
}

// Only declarations and module syntax. Including these on their own does
// nothing, so they are left for demand-driven inclusion.
func (s *Statement) isDeclarationOnly() bool {
	switch s.Kind {
	case StmtImport:
		return !s.isSideEffectImport
	case StmtExportClause, StmtReexport, StmtExportStar:
		return true
	case StmtExportDecl:
		return true
	case StmtExportDefault:
		return s.declaration != nil
	}
	return isDeclaration(s.node)
}

func isDeclaration(node *sitter.Node) bool {
	switch node.Type() {
	case js_ast.KindVariableDeclaration, js_ast.KindLexicalDeclaration,
		js_ast.KindFunctionDeclaration, js_ast.KindGeneratorDeclaration,
		js_ast.KindClassDeclaration:
		return true
	}
	return false
}

func (s *Statement) Text() string {
	return s.module.source.Contents[s.Range.Loc.Start:s.Range.End()]
}

// Comments are attached to statements as follows. A comment that starts on
// the same line a statement ends on trails that statement. Every other
// comment leads the next statement. Comments after the last statement trail
// it. Margins count the line breaks in the gaps between the resulting chunks.
func attachComments(stmts []*Statement, comments []js_ast.Comment, contents string) {
	if len(stmts) == 0 {
		return
	}

	next := 0
	for _, comment := range comments {
		for next < len(stmts) && stmts[next].Range.End() <= comment.Range.Loc.Start {
			next++
		}

		if next > 0 {
			prev := stmts[next-1]
			end := prev.Range.End()
			if n := len(prev.TrailingComments); n > 0 {
				end = prev.TrailingComments[n-1].Range.End()
			}
			if !strings.ContainsAny(contents[end:comment.Range.Loc.Start], "\r\n") || next == len(stmts) {
				prev.TrailingComments = append(prev.TrailingComments, comment)
				continue
			}
		}

		stmt := stmts[next]
		stmt.LeadingComments = append(stmt.LeadingComments, comment)
	}

	for _, stmt := range stmts {
		stmt.chunkStart = int(stmt.Range.Loc.Start)
		stmt.chunkEnd = int(stmt.Range.End())
		if len(stmt.LeadingComments) > 0 {
			stmt.chunkStart = int(stmt.LeadingComments[0].Range.Loc.Start)
		}
		if n := len(stmt.TrailingComments); n > 0 {
			stmt.chunkEnd = int(stmt.TrailingComments[n-1].Range.End())
		}
	}

	for i, stmt := range stmts {
		prevEnd := 0
		if i > 0 {
			prevEnd = stmts[i-1].chunkEnd
		}
		stmt.MarginBefore = countLineBreaks(contents[prevEnd:stmt.chunkStart])
		if i > 0 {
			stmts[i-1].MarginAfter = stmt.MarginBefore
		}
	}
	last := stmts[len(stmts)-1]
	last.MarginAfter = countLineBreaks(contents[last.chunkEnd:])
}

func countLineBreaks(text string) int {
	count := 0
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '\r':
			if i+1 < len(text) && text[i+1] == '\n' {
				continue
			}
			count++
		case '\n':
			count++
		}
	}
	return count
}

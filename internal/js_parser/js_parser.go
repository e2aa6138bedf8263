package js_parser

// This parser turns JavaScript source text into the list of top-level
// statements the bundler works with. The heavy lifting is done by the
// tree-sitter JavaScript grammar. The statements keep pointers into the
// syntax tree so the scope analyzer can walk them later.

import (
	"context"
	"fmt"
	"strings"

	"github.com/fgoll/source-code-plan/internal/js_ast"
	"github.com/fgoll/source-code-plan/internal/logger"
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
)

type ParseError struct {
	Path     string
	Location *logger.MsgLocation
	Text     string
}

func (e *ParseError) Error() string {
	if e.Location == nil {
		return fmt.Sprintf("%s: %s", e.Path, e.Text)
	}
	return fmt.Sprintf("%s:%d:%d: %s", e.Path, e.Location.Line, e.Location.Column, e.Text)
}

func Parse(ctx context.Context, source logger.Source) (js_ast.AST, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(javascript.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, []byte(source.Contents))
	if err != nil {
		return js_ast.AST{}, err
	}
	root := tree.RootNode()

	if root.HasError() {
		return js_ast.AST{}, syntaxError(&source, root)
	}

	ast := js_ast.AST{Root: root}
	for i := 0; i < int(root.NamedChildCount()); i++ {
		child := root.NamedChild(i)
		switch child.Type() {
		case js_ast.KindHashBangLine:
			ast.Hashbang = js_ast.NodeText(child, source.Contents)

		case js_ast.KindComment:
			ast.Comments = append(ast.Comments, makeComment(child, source.Contents))

		default:
			// The grammar sometimes attaches a comment that follows a statement on
			// the same line to the statement itself. Move those out again so that
			// statement ranges always end at the last real token.
			end, trailing := trailingComments(child)
			for _, comment := range trailing {
				ast.Comments = append(ast.Comments, makeComment(comment, source.Contents))
			}
			start := child.StartByte()
			ast.Stmts = append(ast.Stmts, js_ast.Stmt{
				Node:  child,
				Range: logger.Range{Loc: logger.Loc{Start: int32(start)}, Len: int32(end - start)},
			})
		}
	}
	return ast, nil
}

func makeComment(node *sitter.Node, contents string) js_ast.Comment {
	text := js_ast.NodeText(node, contents)
	return js_ast.Comment{
		Range:   js_ast.NodeRange(node),
		Text:    text,
		IsBlock: strings.HasPrefix(text, "/*"),
	}
}

func trailingComments(node *sitter.Node) (end uint32, comments []*sitter.Node) {
	for i := int(node.ChildCount()) - 1; i >= 0; i-- {
		child := node.Child(i)
		if child.StartByte() == child.EndByte() {
			continue
		}
		if child.Type() == js_ast.KindComment {
			comments = append([]*sitter.Node{child}, comments...)
			continue
		}
		end, nested := trailingComments(child)
		return end, append(nested, comments...)
	}
	return node.EndByte(), comments
}

func syntaxError(source *logger.Source, root *sitter.Node) error {
	node := firstErrorNode(root)
	if node == nil {
		return &ParseError{Path: source.PrettyPath, Text: "Syntax error"}
	}

	r := js_ast.NodeRange(node)
	var text string
	if node.IsMissing() {
		text = fmt.Sprintf("Expected %q", node.Type())
	} else {
		// Point at the first token inside the error node
		for node.ChildCount() > 0 {
			node = node.Child(0)
		}
		r = js_ast.NodeRange(node)
		text = fmt.Sprintf("Unexpected %q", truncate(source.TextForRange(r)))
		if r.Len == 0 {
			text = "Unexpected end of file"
		}
	}

	return &ParseError{
		Path:     source.PrettyPath,
		Location: logger.LocationOrNil(source, r),
		Text:     text,
	}
}

func firstErrorNode(node *sitter.Node) *sitter.Node {
	if node.IsMissing() || node.Type() == js_ast.KindError {
		return node
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		if child := node.Child(i); child != nil && (child.HasError() || child.IsMissing()) {
			if found := firstErrorNode(child); found != nil {
				return found
			}
		}
	}
	return nil
}

func truncate(text string) string {
	if i := strings.IndexAny(text, "\r\n"); i != -1 {
		text = text[:i]
	}
	if len(text) > 20 {
		text = text[:20] + "..."
	}
	return text
}

package js_ast

import (
	"github.com/fgoll/source-code-plan/internal/logger"
	sitter "github.com/smacker/go-tree-sitter"
)

// Syntax tree node types produced by the tree-sitter JavaScript grammar that
// the bundler cares about. Everything else is walked generically.
const (
	KindProgram      = "program"
	KindComment      = "comment"
	KindHashBangLine = "hash_bang_line"
	KindError        = "ERROR"

	KindImportStatement = "import_statement"
	KindImportClause    = "import_clause"
	KindNamespaceImport = "namespace_import"
	KindNamedImports    = "named_imports"
	KindImportSpecifier = "import_specifier"

	KindExportStatement = "export_statement"
	KindExportClause    = "export_clause"
	KindExportSpecifier = "export_specifier"
	KindNamespaceExport = "namespace_export"

	KindVariableDeclaration  = "variable_declaration"
	KindLexicalDeclaration   = "lexical_declaration"
	KindVariableDeclarator   = "variable_declarator"
	KindFunctionDeclaration  = "function_declaration"
	KindGeneratorDeclaration = "generator_function_declaration"
	KindClassDeclaration     = "class_declaration"
	KindFunction             = "function"
	KindFunctionExpression   = "function_expression"
	KindGeneratorFunction    = "generator_function"
	KindArrowFunction        = "arrow_function"
	KindMethodDefinition     = "method_definition"
	KindClass                = "class"
	KindFormalParameters     = "formal_parameters"
	KindStatementBlock       = "statement_block"
	KindClassStaticBlock     = "class_static_block"
	KindSwitchBody           = "switch_body"
	KindForStatement         = "for_statement"
	KindForInStatement       = "for_in_statement"
	KindCatchClause          = "catch_clause"
	KindExpressionStatement  = "expression_statement"
	KindEmptyStatement       = "empty_statement"
	KindAssignmentExpression = "assignment_expression"
	KindAugmentedAssignment  = "augmented_assignment_expression"
	KindUpdateExpression     = "update_expression"
	KindMemberExpression     = "member_expression"
	KindSubscriptExpression  = "subscript_expression"
	KindParenthesized        = "parenthesized_expression"
	KindIdentifier           = "identifier"
	KindShorthandProperty    = "shorthand_property_identifier"
	KindShorthandPattern     = "shorthand_property_identifier_pattern"
	KindObjectPattern        = "object_pattern"
	KindArrayPattern         = "array_pattern"
	KindPairPattern          = "pair_pattern"
	KindAssignmentPattern    = "assignment_pattern"
	KindObjectAssignPattern  = "object_assignment_pattern"
	KindRestPattern          = "rest_pattern"
	KindString               = "string"
	KindStringFragment       = "string_fragment"
	KindComputedPropertyName = "computed_property_name"
	KindNestedIdentifier     = "nested_identifier"
	KindStatementIdentifier  = "statement_identifier"
	KindPropertyIdentifier   = "property_identifier"
	KindPrivatePropertyIdent = "private_property_identifier"
)

type AST struct {
	// The root "program" node. Nodes stay valid as long as the AST is alive.
	Root *sitter.Node

	// Top-level statements in source order, excluding comments
	Stmts []Stmt

	// Comments between top-level statements in source order
	Comments []Comment

	// The "#!" line at the start of the file, if any
	Hashbang string
}

type Stmt struct {
	Node  *sitter.Node
	Range logger.Range
}

type Comment struct {
	Range   logger.Range
	Text    string
	IsBlock bool
}

func NodeRange(node *sitter.Node) logger.Range {
	start := node.StartByte()
	return logger.Range{Loc: logger.Loc{Start: int32(start)}, Len: int32(node.EndByte() - start)}
}

func NodeText(node *sitter.Node, contents string) string {
	return contents[node.StartByte():node.EndByte()]
}

// Returns the first direct child with the given type, or nil
func ChildOfType(node *sitter.Node, kind string) *sitter.Node {
	for i := 0; i < int(node.ChildCount()); i++ {
		if child := node.Child(i); child != nil && child.Type() == kind {
			return child
		}
	}
	return nil
}

// Returns the unquoted value of a "string" literal node. Escape sequences in
// module specifiers are rare enough that only the raw fragments are joined.
func StringValue(node *sitter.Node, contents string) string {
	text := ""
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		text += NodeText(child, contents)
	}
	return text
}

package js_scope

// This computes, for every top-level statement of a module, which top-level
// names it declares, which it reassigns and which it reads. Scopes live in an
// arena and are referred to by index. The current scope is threaded through
// the traversal as an argument.
//
// Analysis happens in two passes. The first walks every statement, creating
// scopes, declaring bindings and collecting identifier occurrences. The
// second resolves each occurrence against the scope chain it was seen in,
// once every binding of the module (including hoisted ones) is known.

import (
	"sort"

	"github.com/fgoll/source-code-plan/internal/js_ast"
	"github.com/fgoll/source-code-plan/internal/logger"
	sitter "github.com/smacker/go-tree-sitter"
)

type Scope struct {
	// The index of the enclosing scope, or -1 for the module scope
	Parent int

	Names   map[string]bool
	IsBlock bool

	// The module scope has depth 0
	Depth int
}

// An occurrence of an identifier that refers to a top-level name. These are
// the ranges that need rewriting if the name gets renamed.
type Ref struct {
	Range logger.Range
	Name  string

	// Set for "{ a }" in object literals and patterns. A rename must turn
	// these into "{ a: b }" instead of "{ b }".
	Shorthand bool

	// The scope the identifier appears in
	Scope int
}

type StmtInfo struct {
	Defines   NameSet
	Modifies  NameSet
	DependsOn NameSet
	Refs      []Ref
}

type Analysis struct {
	Scopes []Scope

	// Parallel to the statements of the analyzed AST
	Stmts []StmtInfo
}

const moduleScope = 0

type occurrence struct {
	stmt      int
	scope     int
	name      string
	r         logger.Range
	shorthand bool
	modifies  bool
	binding   bool
}

type analyzer struct {
	contents    string
	scopes      []Scope
	occurrences []occurrence
	stmt        int
}

func Analyze(ast js_ast.AST, contents string) Analysis {
	a := analyzer{contents: contents}
	a.pushScope(-1, false)

	// Pass 1: declare bindings and collect occurrences
	for i, stmt := range ast.Stmts {
		a.stmt = i
		a.visitTopLevel(stmt.Node)
	}

	// Pass 2: resolve occurrences
	infos := make([]StmtInfo, len(ast.Stmts))
	for _, o := range a.occurrences {
		if o.binding {
			info := &infos[o.stmt]
			info.Defines.Add(o.name)
			info.Refs = append(info.Refs, Ref{Range: o.r, Name: o.name, Shorthand: o.shorthand, Scope: o.scope})
		}
	}
	for _, o := range a.occurrences {
		if o.binding || !a.resolvesToTopLevel(o.scope, o.name) {
			continue
		}
		info := &infos[o.stmt]
		info.Refs = append(info.Refs, Ref{Range: o.r, Name: o.name, Shorthand: o.shorthand, Scope: o.scope})
		if !info.Defines.Has(o.name) {
			info.DependsOn.Add(o.name)
		}
		if o.modifies {
			info.Modifies.Add(o.name)
		}
	}
	for i := range infos {
		sortRefs(infos[i].Refs)
	}

	return Analysis{Scopes: a.scopes, Stmts: infos}
}

func sortRefs(refs []Ref) {
	sort.SliceStable(refs, func(i int, j int) bool {
		return refs[i].Range.Loc.Start < refs[j].Range.Loc.Start
	})
}

// A name is top-level if nothing between the use site and the module scope
// binds it. That includes names bound by the module scope itself, imports
// (which are never walked) and ambient globals.
func (a *analyzer) resolvesToTopLevel(scope int, name string) bool {
	for scope != moduleScope {
		s := &a.scopes[scope]
		if s.Names[name] {
			return false
		}
		scope = s.Parent
	}
	return true
}

// Calls the callback for every name declared between the given scope and the
// module scope. A top-level binding referenced from that scope must not be
// renamed to any of these.
func ForEachEnclosingName(scopes []Scope, scope int, callback func(name string)) {
	for scope != moduleScope {
		s := &scopes[scope]
		for name := range s.Names {
			callback(name)
		}
		scope = s.Parent
	}
}

func (a *analyzer) pushScope(parent int, isBlock bool) int {
	depth := 0
	if parent != -1 {
		depth = a.scopes[parent].Depth + 1
	}
	a.scopes = append(a.scopes, Scope{
		Parent:  parent,
		Names:   make(map[string]bool),
		IsBlock: isBlock,
		Depth:   depth,
	})
	return len(a.scopes) - 1
}

// "var", function and class declarations bind in the nearest scope that
// isn't a block
func (a *analyzer) functionScope(scope int) int {
	for a.scopes[scope].IsBlock {
		scope = a.scopes[scope].Parent
	}
	return scope
}

func (a *analyzer) declare(node *sitter.Node, scope int, shorthand bool) {
	name := js_ast.NodeText(node, a.contents)
	a.scopes[scope].Names[name] = true
	if scope == moduleScope {
		a.occurrences = append(a.occurrences, occurrence{
			stmt:      a.stmt,
			scope:     scope,
			name:      name,
			r:         js_ast.NodeRange(node),
			shorthand: shorthand,
			binding:   true,
		})
	}
}

func (a *analyzer) reference(node *sitter.Node, scope int, shorthand bool, modifies bool) {
	a.occurrences = append(a.occurrences, occurrence{
		stmt:      a.stmt,
		scope:     scope,
		name:      js_ast.NodeText(node, a.contents),
		r:         js_ast.NodeRange(node),
		shorthand: shorthand,
		modifies:  modifies,
	})
}

func (a *analyzer) visitTopLevel(node *sitter.Node) {
	switch node.Type() {
	case js_ast.KindImportStatement:
		// Import declarations bind names but are not uses

	case js_ast.KindExportStatement:
		// Re-exports with a source behave like imports
		if node.ChildByFieldName("source") != nil {
			return
		}
		for i := 0; i < int(node.NamedChildCount()); i++ {
			child := node.NamedChild(i)
			if child.Type() == js_ast.KindExportClause {
				for j := 0; j < int(child.NamedChildCount()); j++ {
					specifier := child.NamedChild(j)
					if specifier.Type() != js_ast.KindExportSpecifier {
						continue
					}
					if name := specifier.ChildByFieldName("name"); name != nil && name.Type() == js_ast.KindIdentifier {
						a.reference(name, moduleScope, false, false)
					}
				}
				continue
			}
			a.visit(child, moduleScope)
		}

	default:
		a.visit(node, moduleScope)
	}
}

func (a *analyzer) visitChildren(node *sitter.Node, scope int) {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		a.visit(node.NamedChild(i), scope)
	}
}

func (a *analyzer) visit(node *sitter.Node, scope int) {
	if node == nil {
		return
	}

	switch node.Type() {
	case js_ast.KindComment, js_ast.KindPropertyIdentifier, js_ast.KindPrivatePropertyIdent,
		js_ast.KindStatementIdentifier, js_ast.KindString:
		// Nothing in here can refer to a binding

	case js_ast.KindIdentifier:
		a.reference(node, scope, false, false)

	case js_ast.KindShorthandProperty:
		a.reference(node, scope, true, false)

	case js_ast.KindVariableDeclaration, js_ast.KindLexicalDeclaration:
		target := scope
		if node.Type() == js_ast.KindVariableDeclaration {
			target = a.functionScope(scope)
		}
		for i := 0; i < int(node.NamedChildCount()); i++ {
			declarator := node.NamedChild(i)
			if declarator.Type() != js_ast.KindVariableDeclarator {
				continue
			}
			a.bindPattern(declarator.ChildByFieldName("name"), target, scope)
			a.visit(declarator.ChildByFieldName("value"), scope)
		}

	case js_ast.KindFunctionDeclaration, js_ast.KindGeneratorDeclaration:
		if name := node.ChildByFieldName("name"); name != nil {
			a.declare(name, a.functionScope(scope), false)
		}
		a.visitFunction(node, a.pushScope(scope, false))

	case js_ast.KindFunction, js_ast.KindFunctionExpression, js_ast.KindGeneratorFunction:
		// The name of a function expression is only visible inside it
		fn := a.pushScope(scope, false)
		if name := node.ChildByFieldName("name"); name != nil {
			a.declare(name, fn, false)
		}
		a.visitFunction(node, fn)

	case js_ast.KindArrowFunction:
		fn := a.pushScope(scope, false)
		if param := node.ChildByFieldName("parameter"); param != nil {
			a.bindPattern(param, fn, fn)
		}
		a.visitFunction(node, fn)

	case js_ast.KindMethodDefinition:
		if name := node.ChildByFieldName("name"); name != nil && name.Type() == js_ast.KindComputedPropertyName {
			a.visit(name, scope)
		}
		a.visitFunction(node, a.pushScope(scope, false))

	case js_ast.KindClassDeclaration:
		if name := node.ChildByFieldName("name"); name != nil {
			a.declare(name, a.functionScope(scope), false)
		}
		a.visitClass(node, scope)

	case js_ast.KindClass:
		// The name of a class expression is only visible inside it
		inner := a.pushScope(scope, true)
		if name := node.ChildByFieldName("name"); name != nil {
			a.declare(name, inner, false)
		}
		a.visitClass(node, inner)

	case js_ast.KindStatementBlock, js_ast.KindClassStaticBlock, js_ast.KindSwitchBody:
		a.visitChildren(node, a.pushScope(scope, true))

	case js_ast.KindForStatement:
		a.visitChildren(node, a.pushScope(scope, true))

	case js_ast.KindForInStatement:
		head := a.pushScope(scope, true)
		left := node.ChildByFieldName("left")
		if kind := node.ChildByFieldName("kind"); kind != nil {
			target := head
			if js_ast.NodeText(kind, a.contents) == "var" {
				target = a.functionScope(head)
			}
			a.bindPattern(left, target, head)
		} else {
			a.visitAssignTarget(left, scope)
		}
		a.visit(node.ChildByFieldName("right"), scope)
		a.visit(node.ChildByFieldName("body"), head)

	case js_ast.KindCatchClause:
		inner := a.pushScope(scope, true)
		if param := node.ChildByFieldName("parameter"); param != nil {
			a.bindPattern(param, inner, inner)
		}
		a.visit(node.ChildByFieldName("body"), inner)

	case js_ast.KindAssignmentExpression, js_ast.KindAugmentedAssignment:
		a.visitAssignTarget(node.ChildByFieldName("left"), scope)
		a.visit(node.ChildByFieldName("right"), scope)

	case js_ast.KindUpdateExpression:
		a.visitAssignTarget(node.ChildByFieldName("argument"), scope)

	default:
		a.visitChildren(node, scope)
	}
}

// Parameters and the body share one scope. The body's block is not a scope
// of its own so that parameters and body declarations can't shadow each other.
func (a *analyzer) visitFunction(node *sitter.Node, fn int) {
	if params := node.ChildByFieldName("parameters"); params != nil {
		for i := 0; i < int(params.NamedChildCount()); i++ {
			a.bindPattern(params.NamedChild(i), fn, fn)
		}
	}
	body := node.ChildByFieldName("body")
	if body == nil {
		return
	}
	if body.Type() == js_ast.KindStatementBlock {
		a.visitChildren(body, fn)
	} else {
		a.visit(body, fn)
	}
}

// Visits the heritage clause and the body. The name was already declared.
func (a *analyzer) visitClass(node *sitter.Node, scope int) {
	name := node.ChildByFieldName("name")
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if name != nil && child.StartByte() == name.StartByte() && child.Type() == name.Type() {
			continue
		}
		a.visit(child, scope)
	}
}

// Declares every name bound by a declaration pattern in "target". Default
// values and computed keys are evaluated in "scope".
func (a *analyzer) bindPattern(node *sitter.Node, target int, scope int) {
	if node == nil {
		return
	}

	switch node.Type() {
	case js_ast.KindIdentifier:
		a.declare(node, target, false)

	case js_ast.KindShorthandPattern:
		a.declare(node, target, true)

	case js_ast.KindObjectPattern, js_ast.KindArrayPattern, js_ast.KindRestPattern:
		for i := 0; i < int(node.NamedChildCount()); i++ {
			a.bindPattern(node.NamedChild(i), target, scope)
		}

	case js_ast.KindPairPattern:
		if key := node.ChildByFieldName("key"); key != nil && key.Type() == js_ast.KindComputedPropertyName {
			a.visit(key, scope)
		}
		a.bindPattern(node.ChildByFieldName("value"), target, scope)

	case js_ast.KindAssignmentPattern, js_ast.KindObjectAssignPattern:
		a.bindPattern(node.ChildByFieldName("left"), target, scope)
		a.visit(node.ChildByFieldName("right"), scope)

	case js_ast.KindComment:

	default:
		a.visit(node, scope)
	}
}

// Visits the target of an assignment. The root identifier of the target is
// marked as modified, so "a.b = c" modifies "a".
func (a *analyzer) visitAssignTarget(node *sitter.Node, scope int) {
	if node == nil {
		return
	}

	switch node.Type() {
	case js_ast.KindIdentifier:
		a.reference(node, scope, false, true)

	case js_ast.KindShorthandPattern:
		a.reference(node, scope, true, true)

	case js_ast.KindMemberExpression:
		a.visitAssignTarget(node.ChildByFieldName("object"), scope)

	case js_ast.KindSubscriptExpression:
		a.visitAssignTarget(node.ChildByFieldName("object"), scope)
		a.visit(node.ChildByFieldName("index"), scope)

	case js_ast.KindParenthesized:
		for i := 0; i < int(node.NamedChildCount()); i++ {
			a.visitAssignTarget(node.NamedChild(i), scope)
		}

	case js_ast.KindObjectPattern, js_ast.KindArrayPattern, js_ast.KindRestPattern:
		for i := 0; i < int(node.NamedChildCount()); i++ {
			a.visitAssignTarget(node.NamedChild(i), scope)
		}

	case js_ast.KindPairPattern:
		if key := node.ChildByFieldName("key"); key != nil && key.Type() == js_ast.KindComputedPropertyName {
			a.visit(key, scope)
		}
		a.visitAssignTarget(node.ChildByFieldName("value"), scope)

	case js_ast.KindAssignmentPattern, js_ast.KindObjectAssignPattern:
		a.visitAssignTarget(node.ChildByFieldName("left"), scope)
		a.visit(node.ChildByFieldName("right"), scope)

	default:
		a.visit(node, scope)
	}
}

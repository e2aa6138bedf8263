package bundler

import (
	"context"
	"errors"
	"syscall"
	"testing"

	"github.com/fgoll/source-code-plan/internal/config"
	"github.com/fgoll/source-code-plan/internal/fs"
	"github.com/fgoll/source-code-plan/internal/logger"
	"github.com/fgoll/source-code-plan/internal/resolver"
	"github.com/fgoll/source-code-plan/internal/test"
	"github.com/stretchr/testify/require"
)

type bundled struct {
	files     map[string]string
	entryPath string
	expected  string
	options   config.Options
}

func buildGraph(t *testing.T, files map[string]string, entryPath string) (*Graph, error) {
	t.Helper()
	mockFS := fs.MockFS(files)
	g := NewGraph(logger.NewDeferLog(), mockFS, resolver.NewResolver(mockFS), nil, nil, entryPath)
	return g, g.Build(context.Background())
}

func expectBundled(t *testing.T, args bundled) {
	t.Helper()
	t.Run("", func(t *testing.T) {
		t.Helper()
		g, err := buildGraph(t, args.files, args.entryPath)
		require.NoError(t, err)
		result, err := g.Generate(args.options)
		require.NoError(t, err)
		test.AssertEqualWithDiff(t, result.Code, args.expected)
	})
}

func TestUnusedExportsAreRemoved(t *testing.T) {
	expectBundled(t, bundled{
		files: map[string]string{
			"/entry.js": "import { a } from './foo';\nconsole.log(a);\n",
			"/foo.js":   "export var a = 1;\nexport var b = 2;\n",
		},
		entryPath: "/entry.js",
		expected:  "var a = 1;\nconsole.log(a);",
	})
}

func TestEntryWithoutExtension(t *testing.T) {
	expectBundled(t, bundled{
		files: map[string]string{
			"/entry.js": "console.log(1);\n",
		},
		entryPath: "entry",
		expected:  "console.log(1);",
	})
}

func TestSingleFileRoundTrip(t *testing.T) {
	input := `// A comment about the answer
var answer = 42;

/* block */
function double(x) {
  return x * 2;
}
console.log(double(answer)); // trailing`

	expectBundled(t, bundled{
		files:     map[string]string{"/entry.js": "\n\n" + input + "\n\n"},
		entryPath: "/entry.js",
		expected:  input,
	})
}

func TestCollidingNamesAreRenamed(t *testing.T) {
	expectBundled(t, bundled{
		files: map[string]string{
			"/entry.js": "import { foo } from './foo';\nvar value = 1;\nconsole.log(value, foo());\n",
			"/foo.js":   "var value = 2;\nexport function foo() { return value; }\n",
		},
		entryPath: "/entry.js",
		expected: `var value = 1;
var value2 = 2;
function foo() { return value2; }
console.log(value, foo());`,
	})
}

func TestRenameAvoidsInnerScopeNames(t *testing.T) {
	expectBundled(t, bundled{
		files: map[string]string{
			"/entry.js": "import { value as v } from './foo';\nvar value = 1;\nfunction f() { var value2 = 5; return v + value2; }\nconsole.log(value, f());\n",
			"/foo.js":   "export var value = 2;\n",
		},
		entryPath: "/entry.js",
		expected: `var value = 1;
var value3 = 2;
function f() { var value2 = 5; return value3 + value2; }
console.log(value, f());`,
	})

	// The imported binding keeps its name everywhere else, but not when an
	// aliased reference sits inside a scope that declares that name
	expectBundled(t, bundled{
		files: map[string]string{
			"/entry.js": "import { value as v } from './foo';\nfunction f() { var value = 5; return v + value; }\nconsole.log(f());\n",
			"/foo.js":   "export var value = 2;\n",
		},
		entryPath: "/entry.js",
		expected: `var value2 = 2;
function f() { var value = 5; return value2 + value; }
console.log(f());`,
	})
}

func TestShorthandPropertyRename(t *testing.T) {
	expectBundled(t, bundled{
		files: map[string]string{
			"/entry.js": "var name = 'entry';\nimport { name as otherName } from './other';\nconsole.log({ name, otherName });\n",
			"/other.js": "var name = 'other';\nexport { name };\n",
		},
		entryPath: "/entry.js",
		expected: `var name = 'entry';
var name2 = 'other';
console.log({ name, otherName: name2 });`,
	})
}

func TestGlobalsAreNotShadowed(t *testing.T) {
	expectBundled(t, bundled{
		files: map[string]string{
			"/entry.js": "import { log } from './log';\nlog(console);\n",
			"/log.js":   "var console = 1;\nexport function log(x) { return x + console; }\n",
		},
		entryPath: "/entry.js",
		expected: `var console2 = 1;
function log(x) { return x + console2; }
log(console);`,
	})
}

func TestCyclicImports(t *testing.T) {
	expectBundled(t, bundled{
		files: map[string]string{
			"/entry.js": "import { a } from './a';\na();\n",
			"/a.js":     "import { b } from './b';\nexport function a() { return b(); }\n",
			"/b.js":     "import { a } from './a';\nexport function b() { return a; }\n",
		},
		entryPath: "/entry.js",
		expected: `function b() { return a; }
function a() { return b(); }
a();`,
	})
}

func TestCyclicVariables(t *testing.T) {
	expectBundled(t, bundled{
		files: map[string]string{
			"/entry.js": "import { total } from './a';\nconsole.log(total);\n",
			"/a.js":     "import { b } from './b';\nexport var a = 1;\nexport var total = a + b;\n",
			"/b.js":     "import { a } from './a';\nexport var b = a + 1;\n",
		},
		entryPath: "/entry.js",
		expected: `var a = 1;
var b = a + 1;
var total = a + b;
console.log(total);`,
	})
}

func TestSharedModuleIsLoadedOnce(t *testing.T) {
	files := map[string]string{
		"/entry.js":  "import { a } from './a';\nimport { b } from './b';\nconsole.log(a, b);\n",
		"/a.js":      "import { shared } from './shared';\nexport var a = shared + 1;\n",
		"/b.js":      "import { shared } from './shared.js';\nexport var b = shared + 2;\n",
		"/shared.js": "export var shared = 0;\n",
	}

	g, err := buildGraph(t, files, "/entry.js")
	require.NoError(t, err)
	require.Equal(t, 4, g.ParseCount())

	shared := g.Module("/shared.js")
	require.NotNil(t, shared)
	require.Same(t, shared, g.Module("/a.js").imports["shared"].target)
	require.Same(t, shared, g.Module("/b.js").imports["shared"].target)

	result, err := g.Generate(config.Options{})
	require.NoError(t, err)
	test.AssertEqualWithDiff(t, result.Code, `var shared = 0;
var a = shared + 1;
var b = shared + 2;
console.log(a, b);`)
}

func TestNamespaceImport(t *testing.T) {
	expectBundled(t, bundled{
		files: map[string]string{
			"/entry.js": "import * as math from './math';\nconsole.log(math.add(1, 2));\n",
			"/math.js":  "export function add(a, b) { return a + b; }\nexport function sub(a, b) { return a - b; }\n",
		},
		entryPath: "/entry.js",
		expected: `var math_exports = {
	get add () { return add; },
	get sub () { return sub; }
};

function add(a, b) { return a + b; }
function sub(a, b) { return a - b; }
console.log(math_exports.add(1, 2));`,
	})
}

func TestNamespaceImportIsEmittedOnce(t *testing.T) {
	expectBundled(t, bundled{
		files: map[string]string{
			"/entry.js": "import * as a from './lib';\nimport { b } from './other';\nconsole.log(a.x, b);\n",
			"/other.js": "import * as lib from './lib';\nexport var b = lib.x;\n",
			"/lib.js":   "export var x = 1;\n",
		},
		entryPath: "/entry.js",
		expected: `var lib_exports = {
	get x () { return x; }
};

var x = 1;
var b = lib_exports.x;
console.log(lib_exports.x, b);`,
	})
}

func TestNamespaceImportKeepsEveryStatement(t *testing.T) {
	expectBundled(t, bundled{
		files: map[string]string{
			"/entry.js": "import * as ns from './x';\nconsole.log(ns.a);\n",
			"/x.js":     "var registered = register('x');\nconst helper = 10;\nexport const a = 1;\n",
		},
		entryPath: "/entry.js",
		expected: `var x_exports = {
	get a () { return a; }
};

var registered = register('x');
const helper = 10;
const a = 1;
console.log(x_exports.a);`,
	})
}

func TestNamespaceImportIncludesStarExports(t *testing.T) {
	expectBundled(t, bundled{
		files: map[string]string{
			"/entry.js": "import * as ns from './x';\nconsole.log(ns.a, ns.b);\n",
			"/x.js":     "export * from './y';\nexport const a = 1;\n",
			"/y.js":     "export const b = 2;\nexport default 3;\n",
		},
		entryPath: "/entry.js",
		expected: `var x_exports = {
	get a () { return a; },
	get b () { return b; }
};

const a = 1;
const b = 2;
console.log(x_exports.a, x_exports.b);`,
	})
}

func TestDefaultExportExpression(t *testing.T) {
	expectBundled(t, bundled{
		files: map[string]string{
			"/entry.js":  "import answer from './answer';\nconsole.log(answer);\n",
			"/answer.js": "export default 6 * 7;\n",
		},
		entryPath: "/entry.js",
		expected:  "var answer_default = 6 * 7;\nconsole.log(answer_default);",
	})
}

func TestDefaultExportOfIdentifier(t *testing.T) {
	expectBundled(t, bundled{
		files: map[string]string{
			"/entry.js": "import h from './util';\nconsole.log(h());\n",
			"/util.js":  "function helper() { return 1; }\nexport default helper;\n",
		},
		entryPath: "/entry.js",
		expected:  "function helper() { return 1; }\nconsole.log(helper());",
	})
}

func TestDefaultExportDeclaration(t *testing.T) {
	expectBundled(t, bundled{
		files: map[string]string{
			"/entry.js":  "import Widget from './widget';\nnew Widget();\n",
			"/widget.js": "export default class Widget {}\n",
		},
		entryPath: "/entry.js",
		expected:  "class Widget {}\nnew Widget();",
	})
}

func TestModificationsFollowDefinitions(t *testing.T) {
	expectBundled(t, bundled{
		files: map[string]string{
			"/entry.js":   "import { count } from './counter';\nconsole.log(count);\n",
			"/counter.js": "export var count = 0;\ncount += 1;\nfunction unused() {}\n",
		},
		entryPath: "/entry.js",
		expected:  "var count = 0;\ncount += 1;\nconsole.log(count);",
	})
}

func TestSideEffectImport(t *testing.T) {
	expectBundled(t, bundled{
		files: map[string]string{
			"/entry.js": "import './setup';\nconsole.log('ready');\n",
			"/setup.js": "var unused = 1;\nglobalThis.ready = true;\n",
		},
		entryPath: "/entry.js",
		expected:  "globalThis.ready = true;\nconsole.log('ready');",
	})
}

func TestReexports(t *testing.T) {
	expectBundled(t, bundled{
		files: map[string]string{
			"/entry.js": "import { a, b } from './lib';\nconsole.log(a, b);\n",
			"/lib.js":   "export { a } from './a';\nexport * from './b';\n",
			"/a.js":     "export var a = 'a';\n",
			"/b.js":     "export var b = 'b';\n",
		},
		entryPath: "/entry.js",
		expected:  "var a = 'a';\nvar b = 'b';\nconsole.log(a, b);",
	})
}

func TestExternalImportsAndEntryExports(t *testing.T) {
	expectBundled(t, bundled{
		files: map[string]string{
			"/entry.js": `import React from 'react';
import { join as joinPath } from 'path';
import 'polyfill';
export const root = joinPath('/', 'app');
export default React.createElement('div');
`,
		},
		entryPath: "/entry.js",
		expected: `import 'polyfill';
import { join as joinPath } from 'path';
import React from 'react';

const root = joinPath('/', 'app');
var entry_default = React.createElement('div');

export { root, entry_default as default };`,
	})
}

func TestUnusedExternalImportIsDropped(t *testing.T) {
	expectBundled(t, bundled{
		files: map[string]string{
			"/entry.js": "import { unused } from 'lib';\nimport { used } from './used';\nused();\n",
			"/used.js":  "import * as fs from 'fs';\nexport function used() { return fs.readFileSync; }\n",
		},
		entryPath: "/entry.js",
		expected: `import * as fs from 'fs';

function used() { return fs.readFileSync; }
used();`,
	})
}

func TestCommentsAndMargins(t *testing.T) {
	expectBundled(t, bundled{
		files: map[string]string{
			"/entry.js": "import { greet } from './greet';\n\n// Say hello\ngreet('world'); // twice\n",
			"/greet.js": "/**\n * Greets someone.\n */\nexport function greet(name) {\n  console.log('Hello ' + name);\n}\n",
		},
		entryPath: "/entry.js",
		expected: `/**
 * Greets someone.
 */
function greet(name) {
  console.log('Hello ' + name);
}

// Say hello
greet('world'); // twice`,
	})
}

func TestStatementsOnOneLineKeepSpacing(t *testing.T) {
	expectBundled(t, bundled{
		files: map[string]string{
			"/entry.js": "var a = 1;  var b = a;\nconsole.log(b);\n",
		},
		entryPath: "/entry.js",
		expected:  "var a = 1;  var b = a;\nconsole.log(b);",
	})
}

func TestHashbang(t *testing.T) {
	expectBundled(t, bundled{
		files: map[string]string{
			"/entry.js": "#!/usr/bin/env node\nconsole.log('hi');\n",
		},
		entryPath: "/entry.js",
		expected:  "#!/usr/bin/env node\nconsole.log('hi');",
	})
}

func TestDuplicateImportBinding(t *testing.T) {
	_, err := buildGraph(t, map[string]string{
		"/entry.js": "import { a } from './a';\nimport { b as a } from './b';\n",
		"/a.js":     "export var a = 1;\n",
		"/b.js":     "export var b = 2;\n",
	}, "/entry.js")

	var duplicate *DuplicateBindingError
	require.ErrorAs(t, err, &duplicate)
	require.Equal(t, "a", duplicate.Name)
	require.Equal(t, "entry.js:2:14: Duplicated import 'a'", err.Error())
}

func TestUnresolvedExport(t *testing.T) {
	_, err := buildGraph(t, map[string]string{
		"/entry.js": "import { nope } from './foo';\nconsole.log(nope);\n",
		"/foo.js":   "export var a = 1;\n",
	}, "/entry.js")

	var unresolved *UnresolvedExportError
	require.ErrorAs(t, err, &unresolved)
	require.Equal(t, "entry.js:1:9: Module foo.js does not export nope (imported by entry.js)", err.Error())

	msg := ErrorToMsg(err)
	require.Equal(t, "Module foo.js does not export nope (imported by entry.js)", msg.Text)
	require.Equal(t, "import { nope } from './foo';", msg.Location.LineText)
}

func TestMissingModule(t *testing.T) {
	g, err := buildGraph(t, map[string]string{
		"/entry.js": "import { a } from './missing';\nconsole.log(a);\n",
	}, "/entry.js")

	var readError *ReadError
	require.ErrorAs(t, err, &readError)
	require.Equal(t, "missing.js", readError.Path)
	require.Equal(t, "entry.js", readError.Importer)
	require.True(t, errors.Is(err, syscall.ENOENT))

	// Failed fetches are remembered but don't count as loaded modules
	require.NotNil(t, g.Module("/entry.js"))
	require.Nil(t, g.Module("/missing.js"))
}

func TestParseErrorStopsTheBuild(t *testing.T) {
	_, err := buildGraph(t, map[string]string{
		"/entry.js":  "import './broken';\n",
		"/broken.js": "var = ;\n",
	}, "/entry.js")

	var parseError *ParseError
	require.ErrorAs(t, err, &parseError)
	require.Equal(t, "broken.js", parseError.Path)
}

func TestExportStarInEntryIsUnsupported(t *testing.T) {
	g, err := buildGraph(t, map[string]string{
		"/entry.js": "export * from './foo';\n",
		"/foo.js":   "export var a = 1;\n",
	}, "/entry.js")
	require.NoError(t, err)

	_, err = g.Generate(config.Options{})
	var unsupported *UnsupportedExportFormError
	require.ErrorAs(t, err, &unsupported)
	require.Equal(t, 1, unsupported.Location.Line)
}

func TestMissingFinalizer(t *testing.T) {
	g, err := buildGraph(t, map[string]string{
		"/entry.js": "console.log(1);\n",
	}, "/entry.js")
	require.NoError(t, err)

	_, err = g.Generate(config.Options{Format: "cjs"})
	var missing *MissingFinalizerError
	require.ErrorAs(t, err, &missing)
	require.Equal(t, "Invalid output format \"cjs\" (valid: es6)", err.Error())
}

func TestGenerateIsRepeatable(t *testing.T) {
	g, err := buildGraph(t, map[string]string{
		"/entry.js": "import { foo } from './foo';\nvar value = 1;\nconsole.log(value, foo());\n",
		"/foo.js":   "var value = 2;\nexport function foo() { return value; }\n",
	}, "/entry.js")
	require.NoError(t, err)

	first, err := g.Generate(config.Options{})
	require.NoError(t, err)
	second, err := g.Generate(config.Options{})
	require.NoError(t, err)
	require.Equal(t, first.Code, second.Code)
}

func TestSourceMap(t *testing.T) {
	g, err := buildGraph(t, map[string]string{
		"/entry.js": "import { a } from './lib/a';\nconsole.log(a);\n",
		"/lib/a.js": "export var a = 1;\n",
	}, "/entry.js")
	require.NoError(t, err)

	result, err := g.Generate(config.Options{Dest: "/out/bundle.js", IncludeContent: true})
	require.NoError(t, err)
	test.AssertEqualWithDiff(t, result.Code, "var a = 1;\nconsole.log(a);")

	sm := result.Map
	require.Equal(t, "bundle.js", sm.File)
	require.Equal(t, []string{"../lib/a.js", "../entry.js"}, sm.Sources)
	require.Equal(t, []string{"export var a = 1;\n", "import { a } from './lib/a';\nconsole.log(a);\n"}, sm.SourcesContent)

	mapping := sm.Find(0, 0)
	require.NotNil(t, mapping)
	require.Equal(t, int32(0), mapping.SourceIndex)
	require.Equal(t, int32(7), mapping.OriginalColumn)

	mapping = sm.Find(1, 0)
	require.NotNil(t, mapping)
	require.Equal(t, int32(1), mapping.SourceIndex)
	require.Equal(t, int32(1), mapping.OriginalLine)
	require.Equal(t, int32(0), mapping.OriginalColumn)
}

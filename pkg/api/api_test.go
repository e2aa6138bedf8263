package api

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/fgoll/source-code-plan/internal/fs"
	"github.com/fgoll/source-code-plan/internal/test"
	"github.com/stretchr/testify/require"
)

func TestBuildAndGenerate(t *testing.T) {
	mockFS := fs.MockFS(map[string]string{
		"/src/entry.js": "import { a } from './a';\nexport var b = a * 2;\n",
		"/src/a.js":     "export var a = 21;\nexport var unused = 0;\n",
	})

	bundle, err := buildImpl(context.Background(), "/src/entry.js", BuildOptions{}, mockFS)
	require.NoError(t, err)

	output, err := bundle.Generate(GenerateOptions{})
	require.NoError(t, err)
	test.AssertEqualWithDiff(t, output.Code, "var a = 21;\nvar b = a * 2;\n\nexport { b };")
	require.Equal(t, []string{"src/a.js", "src/entry.js"}, output.Map.Sources)
}

func TestWrite(t *testing.T) {
	mockFS := fs.MockFS(map[string]string{
		"/entry.js": "console.log('hello');\n",
	})

	bundle, err := buildImpl(context.Background(), "/entry.js", BuildOptions{}, mockFS)
	require.NoError(t, err)
	require.NoError(t, bundle.Write("/out/bundle.js", GenerateOptions{}))

	code, err := mockFS.ReadFile("/out/bundle.js")
	require.NoError(t, err)
	test.AssertEqual(t, code, "console.log('hello');")

	sourceMap, err := mockFS.ReadFile("/out/bundle.js.map")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(sourceMap, `{"version":3,"file":"bundle.js","sources":["../entry.js"]`))
	require.Contains(t, sourceMap, `"sourcesContent":["console.log('hello');\n"]`)
	require.Equal(t, 1, mockFS.WriteCount("/out/bundle.js.map"))
}

func TestCustomResolver(t *testing.T) {
	mockFS := fs.MockFS(map[string]string{
		"/entry.js":         "import { greet } from 'virtual:greet';\ngreet();\n",
		"/virtual/greet.js": "export function greet() {}\n",
	})

	options := BuildOptions{
		ResolvePath: func(ctx context.Context, specifier string, importer string) (string, error) {
			if strings.HasPrefix(specifier, "virtual:") {
				return "/virtual/" + strings.TrimPrefix(specifier, "virtual:") + ".js", nil
			}
			return "", nil
		},
	}

	bundle, err := buildImpl(context.Background(), "/entry.js", options, mockFS)
	require.NoError(t, err)
	output, err := bundle.Generate(GenerateOptions{})
	require.NoError(t, err)
	test.AssertEqualWithDiff(t, output.Code, "function greet() {}\ngreet();")
}

func TestCustomResolverSharedAcrossLoads(t *testing.T) {
	mockFS := fs.MockFS(map[string]string{
		"/entry.js": "import { a } from 'a';\nimport { b } from 'b';\nimport { c } from 'c';\nconsole.log(a, b, c);\n",
		"/a.js":     "import { c } from 'c';\nexport var a = c + 1;\n",
		"/b.js":     "import { c } from 'c';\nexport var b = c + 2;\n",
		"/c.js":     "export var c = 0;\n",
	})

	// Files load in parallel, so the resolver guards its own state
	var mutex sync.Mutex
	seen := make(map[string]bool)
	options := BuildOptions{
		ResolvePath: func(ctx context.Context, specifier string, importer string) (string, error) {
			mutex.Lock()
			defer mutex.Unlock()
			seen[importer+" -> "+specifier] = true
			return "/" + specifier + ".js", nil
		},
	}

	bundle, err := buildImpl(context.Background(), "/entry.js", options, mockFS)
	require.NoError(t, err)
	output, err := bundle.Generate(GenerateOptions{})
	require.NoError(t, err)
	test.AssertEqualWithDiff(t, output.Code, "var c = 0;\nvar a = c + 1;\nvar b = c + 2;\nconsole.log(a, b, c);")

	mutex.Lock()
	defer mutex.Unlock()
	require.Equal(t, map[string]bool{
		"/entry.js -> a": true,
		"/entry.js -> b": true,
		"/entry.js -> c": true,
		"/a.js -> c":     true,
		"/b.js -> c":     true,
	}, seen)
}

func TestBuildErrors(t *testing.T) {
	mockFS := fs.MockFS(map[string]string{
		"/entry.js": "import { missing } from './lib';\nmissing();\n",
		"/lib.js":   "export var present = 1;\n",
	})

	_, err := buildImpl(context.Background(), "/entry.js", BuildOptions{}, mockFS)
	var unresolved *UnresolvedExportError
	require.ErrorAs(t, err, &unresolved)

	msg := ErrorToMessage(err)
	require.Equal(t, "Module lib.js does not export missing (imported by entry.js)", msg.Text)
	require.NotNil(t, msg.Location)
	require.Equal(t, 1, msg.Location.Line)
	require.Equal(t, 9, msg.Location.Column)
}

func TestUnknownFormat(t *testing.T) {
	mockFS := fs.MockFS(map[string]string{
		"/entry.js": "console.log(1);\n",
	})

	bundle, err := buildImpl(context.Background(), "/entry.js", BuildOptions{}, mockFS)
	require.NoError(t, err)

	_, err = bundle.Generate(GenerateOptions{Format: "amd"})
	var missing *MissingFinalizerError
	require.ErrorAs(t, err, &missing)
	require.Equal(t, "amd", missing.Format)
}

func TestCanceledBuild(t *testing.T) {
	mockFS := fs.MockFS(map[string]string{
		"/entry.js": "import './a';\n",
		"/a.js":     "console.log(1);\n",
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := buildImpl(ctx, "/entry.js", BuildOptions{}, mockFS)
	require.ErrorIs(t, err, context.Canceled)
}

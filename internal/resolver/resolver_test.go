package resolver

import (
	"context"
	"testing"

	"github.com/fgoll/source-code-plan/internal/fs"
	"github.com/fgoll/source-code-plan/internal/test"
	"github.com/stretchr/testify/require"
)

func TestDefaultResolver(t *testing.T) {
	r := NewResolver(fs.MockFS(map[string]string{}))
	ctx := context.Background()

	expect := func(specifier string, importer string, expected string) {
		t.Helper()
		resolved, err := r.Resolve(ctx, specifier, importer)
		require.NoError(t, err)
		test.AssertEqual(t, resolved, expected)
	}

	expect("./util", "/src/main.js", "/src/util.js")
	expect("./util.js", "/src/main.js", "/src/util.js")
	expect("../lib/a.mjs", "/src/main.js", "/lib/a.mjs")
	expect("/abs/path", "/src/main.js", "/abs/path.js")
	expect("lodash", "/src/main.js", "")
	expect("@scope/pkg/sub", "/src/main.js", "")
	expect("src/main", "", "/src/main.js")
}

func TestResolverFuncAndCancellation(t *testing.T) {
	var custom Resolver = ResolverFunc(func(ctx context.Context, specifier string, importer string) (string, error) {
		return "/virtual/" + specifier + ".js", nil
	})
	resolved, err := custom.Resolve(context.Background(), "x", "/main.js")
	require.NoError(t, err)
	test.AssertEqual(t, resolved, "/virtual/x.js")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = NewResolver(fs.MockFS(nil)).Resolve(ctx, "./a", "/main.js")
	require.ErrorIs(t, err, context.Canceled)
}

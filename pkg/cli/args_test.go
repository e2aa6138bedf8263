package cli

import (
	"testing"

	"github.com/fgoll/source-code-plan/pkg/api"
	"github.com/stretchr/testify/require"
)

func env(vars map[string]string) func(string) string {
	return func(key string) string {
		return vars[key]
	}
}

func TestParseDefaults(t *testing.T) {
	options, err := parseOptionsImpl([]string{"src/main.js"}, env(nil))
	require.NoError(t, err)
	require.Equal(t, "src/main.js", options.entry)
	require.Equal(t, "", options.outfile)
	require.Equal(t, api.LogLevelInfo, options.build.LogLevel)
	require.Equal(t, "", options.generate.Format)
	require.Equal(t, sourceMapNone, options.sourcemap)
}

func TestParseFlags(t *testing.T) {
	options, err := parseOptionsImpl([]string{
		"--outfile=dist/bundle.js",
		"--format=es6",
		"--sourcemap",
		"--sources-content",
		"--log-level=debug",
		"--color=false",
		"main.js",
	}, env(nil))
	require.NoError(t, err)
	require.Equal(t, "main.js", options.entry)
	require.Equal(t, "dist/bundle.js", options.outfile)
	require.Equal(t, "es6", options.generate.Format)
	require.True(t, options.generate.IncludeContent)
	require.Equal(t, sourceMapExternal, options.sourcemap)
	require.Equal(t, api.LogLevelDebug, options.build.LogLevel)
	require.Equal(t, api.ColorNever, options.build.Color)
}

func TestEnvironmentDefaults(t *testing.T) {
	vars := env(map[string]string{
		FormatEnvVar:   "es6",
		LogLevelEnvVar: "silent",
	})

	options, err := parseOptionsImpl([]string{"main.js"}, vars)
	require.NoError(t, err)
	require.Equal(t, "es6", options.generate.Format)
	require.Equal(t, api.LogLevelSilent, options.build.LogLevel)

	// Flags win over the environment
	options, err = parseOptionsImpl([]string{"main.js", "--log-level=error"}, vars)
	require.NoError(t, err)
	require.Equal(t, api.LogLevelError, options.build.LogLevel)
}

func TestParseErrors(t *testing.T) {
	for _, args := range [][]string{
		{},
		{"a.js", "b.js"},
		{"main.js", "--minify"},
		{"main.js", "--log-level=loud"},
		{"main.js", "--sourcemap"},
	} {
		_, err := parseOptionsImpl(args, env(nil))
		require.Error(t, err, "%v", args)
	}

	_, err := parseOptionsImpl([]string{"main.js"}, env(map[string]string{LogLevelEnvVar: "verbose"}))
	require.Error(t, err)
}

package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fgoll/source-code-plan/internal/exitcode"
	"github.com/stretchr/testify/require"
)

func writeEntry(t *testing.T) (dir string, entry string) {
	t.Helper()
	dir = t.TempDir()
	entry = filepath.Join(dir, "main.js")
	require.NoError(t, os.WriteFile(entry, []byte("export var answer = 42;\nconsole.log(answer);\n"), 0644))
	return
}

func TestRunWritesOutfile(t *testing.T) {
	dir, entry := writeEntry(t)
	outfile := filepath.Join(dir, "dist", "bundle.js")

	code := Run([]string{"--log-level=silent", "--outfile=" + outfile, entry})
	require.Equal(t, exitcode.Success, code)

	contents, err := os.ReadFile(outfile)
	require.NoError(t, err)
	require.Contains(t, string(contents), "console.log(answer);")
	require.Contains(t, string(contents), "export { answer };")
}

func TestRunWritesExternalSourceMap(t *testing.T) {
	dir, entry := writeEntry(t)
	outfile := filepath.Join(dir, "bundle.js")

	code := Run([]string{"--log-level=silent", "--sourcemap", "--outfile=" + outfile, entry})
	require.Equal(t, exitcode.Success, code)

	_, err := os.Stat(outfile + ".map")
	require.NoError(t, err)
}

func TestRunWritesInlineSourceMap(t *testing.T) {
	dir, entry := writeEntry(t)
	outfile := filepath.Join(dir, "bundle.js")

	code := Run([]string{"--log-level=silent", "--sourcemap=inline", "--outfile=" + outfile, entry})
	require.Equal(t, exitcode.Success, code)

	contents, err := os.ReadFile(outfile)
	require.NoError(t, err)
	require.Contains(t, string(contents), "export { answer };\n//# sourceMappingURL=data:application/json;charset=utf-8;base64,")
	require.True(t, strings.HasSuffix(string(contents), "\n"))
	require.False(t, strings.HasSuffix(string(contents), "\n\n"))

	_, err = os.Stat(outfile + ".map")
	require.True(t, os.IsNotExist(err))
}

func TestRunExitCodes(t *testing.T) {
	dir, entry := writeEntry(t)

	// A regular file where a directory is expected makes every write fail
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, nil, 0644))

	require.Equal(t, exitcode.InvalidUsage, Run([]string{"--bogus", entry}))
	require.Equal(t, exitcode.InvalidUsage, Run([]string{"--log-level=silent"}))
	require.Equal(t, exitcode.BuildFailure, Run([]string{"--log-level=silent", filepath.Join(dir, "missing.js")}))
	require.Equal(t, exitcode.BuildFailure, Run([]string{"--log-level=silent", "--format=cjs", entry}))
	require.Equal(t, exitcode.OutputFailed, Run([]string{"--log-level=silent", "--outfile=" + filepath.Join(blocker, "out.js"), entry}))
	require.Equal(t, exitcode.OutputFailed, Run([]string{"--log-level=silent", "--sourcemap", "--outfile=" + filepath.Join(blocker, "out.js"), entry}))
}

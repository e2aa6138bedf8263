// This API exposes the command-line interface for the bundler. It can be used
// to wrap the bundler in a custom executable with extra functionality.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/fgoll/source-code-plan/internal/exitcode"
	"github.com/fgoll/source-code-plan/internal/fs"
	"github.com/fgoll/source-code-plan/internal/helpers"
	"github.com/fgoll/source-code-plan/internal/logger"
	"github.com/fgoll/source-code-plan/pkg/api"
)

// Environment variables that provide defaults for flags. They can also be
// set in a ".env" file in the working directory.
const (
	FormatEnvVar   = "ROLLUP_FORMAT"
	LogLevelEnvVar = "ROLLUP_LOG_LEVEL"
)

// Builds the entry file named on the command line and returns the exit code
func Run(osArgs []string) int {
	return exitcode.Get(runImpl(osArgs))
}

func runImpl(osArgs []string) error {
	options, err := parseOptionsImpl(osArgs, os.Getenv)
	if err != nil {
		logger.PrintErrorToStderr(osArgs, err.Error())
		return exitcode.Set(err, exitcode.InvalidUsage)
	}

	// Build errors have already been logged by the time these return
	bundle, err := api.Build(context.Background(), options.entry, options.build)
	if err != nil {
		return err
	}
	if options.sourcemap == sourceMapExternal {
		return bundle.Write(options.outfile, options.generate)
	}

	options.generate.Dest = options.outfile
	output, err := bundle.Generate(options.generate)
	if err != nil {
		return err
	}
	j := helpers.Joiner{}
	j.AddString(output.Code)
	j.EnsureNewlineAtEnd()
	if options.sourcemap == sourceMapInline {
		j.AddString("//# sourceMappingURL=" + output.Map.ToURL())
		j.EnsureNewlineAtEnd()
	}
	code := j.Done()

	// Special-case writing to stdout
	if options.outfile == "" {
		_, err = os.Stdout.WriteString(code)
	} else {
		err = fs.RealFS().WriteFile(options.outfile, []byte(code))
	}
	if err != nil {
		logger.PrintErrorToStderr(osArgs, fmt.Sprintf("Failed to write output: %s", err.Error()))
		return exitcode.Set(err, exitcode.OutputFailed)
	}
	return nil
}

package main

import (
	"fmt"
	"os"
	"runtime/pprof"
	"runtime/trace"
	"strings"

	"github.com/fgoll/source-code-plan/internal/logger"
	"github.com/fgoll/source-code-plan/pkg/cli"
	"github.com/joho/godotenv"
)

const rollupVersion = "0.3.0"

const helpText = `
Usage:
  rollup [options] [entry point]

Options:
  --outfile=...         The output file (default: write to stdout)
  --format=...          Output format (only es6, the default)
  --sourcemap           Write a source map next to the output file
  --sourcemap=inline    Append the source map to the output as a data URL
  --sources-content     Embed the original sources in the source map
  --color=...           Force use of color terminal escapes (true or false)
  --log-level=...       Set the log level (debug, info, warning, error, silent)

Advanced options:
  --version             Print the current version and exit (` + rollupVersion + `)
  --trace=...           Write a Go execution trace to a file
  --cpuprofile=...      Write a CPU profile to a file

Environment:
  ` + cli.FormatEnvVar + `         Default for --format
  ` + cli.LogLevelEnvVar + `      Default for --log-level

  Both can also be set in a .env file in the working directory.

Examples:
  # Produces dist/bundle.js and dist/bundle.js.map
  rollup src/main.js --outfile=dist/bundle.js --sourcemap

  # Print the bundle to stdout
  rollup src/main.js
`

func main() {
	osArgs := os.Args[1:]
	traceFile := ""
	cpuprofileFile := ""

	// A missing .env file is fine
	_ = godotenv.Load()

	// Do an initial scan over the argument list
	argsEnd := 0
	for _, arg := range osArgs {
		switch {
		// Show help if a common help flag is provided
		case arg == "-h", arg == "-help", arg == "--help", arg == "/?":
			fmt.Fprintf(os.Stderr, "%s\n", helpText)
			os.Exit(0)

		// Special-case the version flag here
		case arg == "--version":
			fmt.Fprintf(os.Stderr, "%s\n", rollupVersion)
			os.Exit(0)

		case strings.HasPrefix(arg, "--trace="):
			traceFile = arg[len("--trace="):]

		case strings.HasPrefix(arg, "--cpuprofile="):
			cpuprofileFile = arg[len("--cpuprofile="):]

		default:
			// Strip any arguments that were handled above
			osArgs[argsEnd] = arg
			argsEnd++
		}
	}
	osArgs = osArgs[:argsEnd]

	// Print help text when there are no arguments
	if len(osArgs) == 0 && logger.GetTerminalInfo(os.Stdin).IsTTY {
		fmt.Fprintf(os.Stderr, "%s\n", helpText)
		os.Exit(0)
	}

	// Capture the defer statements below so the profiles are flushed first
	exitCode := 1
	func() {
		// To view a trace, use "go tool trace [file]"
		if traceFile != "" {
			f, err := os.Create(traceFile)
			if err != nil {
				logger.PrintErrorToStderr(osArgs, fmt.Sprintf(
					"Failed to create trace file: %s", err.Error()))
				return
			}
			defer f.Close()
			trace.Start(f)
			defer trace.Stop()
		}

		// To view a CPU profile, use "go tool pprof [file]"
		if cpuprofileFile != "" {
			f, err := os.Create(cpuprofileFile)
			if err != nil {
				logger.PrintErrorToStderr(osArgs, fmt.Sprintf(
					"Failed to create cpuprofile file: %s", err.Error()))
				return
			}
			defer f.Close()
			pprof.StartCPUProfile(f)
			defer pprof.StopCPUProfile()
		}

		exitCode = cli.Run(osArgs)
	}()

	os.Exit(exitCode)
}

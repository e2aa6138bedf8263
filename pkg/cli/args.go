package cli

import (
	"fmt"
	"strings"

	"github.com/fgoll/source-code-plan/pkg/api"
)

type sourceMap uint8

const (
	sourceMapNone sourceMap = iota
	sourceMapExternal
	sourceMapInline
)

type runOptions struct {
	entry     string
	outfile   string
	sourcemap sourceMap
	build     api.BuildOptions
	generate  api.GenerateOptions
}

func parseLogLevel(text string) (api.LogLevel, error) {
	switch text {
	case "debug":
		return api.LogLevelDebug, nil
	case "info":
		return api.LogLevelInfo, nil
	case "warning":
		return api.LogLevelWarning, nil
	case "error":
		return api.LogLevelError, nil
	case "silent":
		return api.LogLevelSilent, nil
	default:
		return 0, fmt.Errorf("Invalid log level: %q (valid: debug, info, warning, error, silent)", text)
	}
}

// Flags override environment variables, which override the defaults
func parseOptionsImpl(osArgs []string, getenv func(string) string) (options runOptions, err error) {
	options.build.LogLevel = api.LogLevelInfo
	if value := getenv(LogLevelEnvVar); value != "" {
		if options.build.LogLevel, err = parseLogLevel(value); err != nil {
			return
		}
	}
	options.generate.Format = getenv(FormatEnvVar)

	for _, arg := range osArgs {
		switch {
		case strings.HasPrefix(arg, "--outfile="):
			options.outfile = arg[len("--outfile="):]

		case strings.HasPrefix(arg, "--format="):
			options.generate.Format = arg[len("--format="):]

		case arg == "--sourcemap" || arg == "--sourcemap=external":
			options.sourcemap = sourceMapExternal

		case arg == "--sourcemap=inline":
			options.sourcemap = sourceMapInline

		case arg == "--sources-content":
			options.generate.IncludeContent = true

		case strings.HasPrefix(arg, "--log-level="):
			if options.build.LogLevel, err = parseLogLevel(arg[len("--log-level="):]); err != nil {
				return
			}

		case arg == "--color=true":
			options.build.Color = api.ColorAlways

		case arg == "--color=false":
			options.build.Color = api.ColorNever

		case strings.HasPrefix(arg, "-"):
			err = fmt.Errorf("Invalid flag: %q", arg)
			return

		default:
			if options.entry != "" {
				err = fmt.Errorf("Only one entry point is supported (got %q and %q)", options.entry, arg)
				return
			}
			options.entry = arg
		}
	}

	if options.entry == "" {
		err = fmt.Errorf("Missing an entry point")
		return
	}
	if options.sourcemap == sourceMapExternal && options.outfile == "" {
		err = fmt.Errorf("Cannot use an external source map without an output path")
		return
	}
	return
}

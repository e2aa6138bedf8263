package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fgoll/source-code-plan/pkg/api"
)

// Bundles the entry file given as the first argument and prints the result.
// Imports starting with "~/" are resolved against the entry's directory.
func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: example <entry.js>")
		os.Exit(2)
	}
	entry, err := filepath.Abs(os.Args[1])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	bundle, err := api.Build(context.Background(), entry, api.BuildOptions{
		LogLevel:    api.LogLevelInfo,
		ResolvePath: aliasResolver(filepath.Dir(entry)),
	})
	if err != nil {
		os.Exit(1)
	}
	output, err := bundle.Generate(api.GenerateOptions{})
	if err != nil {
		os.Exit(1)
	}
	fmt.Println(output.Code)
}

// The idea here is to wrap the usual relative resolution with an alias
// for the project root. Bare specifiers stay external.
func aliasResolver(root string) api.ResolvePathFunc {
	return func(ctx context.Context, specifier string, importer string) (string, error) {
		var path string
		switch {
		case strings.HasPrefix(specifier, "~/"):
			path = filepath.Join(root, specifier[2:])
		case strings.HasPrefix(specifier, "./") || strings.HasPrefix(specifier, "../"):
			path = filepath.Join(filepath.Dir(importer), specifier)
		case filepath.IsAbs(specifier):
			path = specifier
		default:
			return "", nil
		}
		if filepath.Ext(path) == "" {
			path += ".js"
		}
		return path, nil
	}
}

package resolver

import (
	"context"
	"strings"

	"github.com/fgoll/source-code-plan/internal/fs"
)

// Maps an import specifier to an absolute path. An empty path with a nil
// error means the specifier is external: it is left alone and passed
// through to the output unchanged.
type Resolver interface {
	Resolve(ctx context.Context, specifier string, importer string) (string, error)
}

// Adapts a plain function to the Resolver interface
type ResolverFunc func(ctx context.Context, specifier string, importer string) (string, error)

func (f ResolverFunc) Resolve(ctx context.Context, specifier string, importer string) (string, error) {
	return f(ctx, specifier, importer)
}

type resolver struct {
	fs fs.FS
}

// The default strategy only knows about relative and absolute paths. Bare
// specifiers such as "lodash" are considered external. A path without an
// extension gets ".js" appended.
func NewResolver(fs fs.FS) Resolver {
	return &resolver{fs: fs}
}

func IsPackagePath(specifier string) bool {
	return !strings.HasPrefix(specifier, "./") && !strings.HasPrefix(specifier, "../") &&
		specifier != "." && specifier != ".." && !strings.HasPrefix(specifier, "/")
}

func (r *resolver) Resolve(ctx context.Context, specifier string, importer string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var absPath string
	switch {
	case importer == "":
		// There's no importer for entry points, so resolve against the cwd
		absPath, _ = r.fs.Abs(specifier)

	case r.fs.IsAbs(specifier):
		absPath = r.fs.Join(specifier)

	case IsPackagePath(specifier):
		return "", nil

	default:
		absPath = r.fs.Join(r.fs.Dir(importer), specifier)
	}

	return AddDefaultExtension(r.fs, absPath), nil
}

func AddDefaultExtension(fs fs.FS, path string) string {
	if fs.Ext(path) == "" {
		return path + ".js"
	}
	return path
}

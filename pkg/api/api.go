// This API exposes the bundler to Go code. Build loads the module graph
// starting from an entry file and decides which statements are needed.
// The resulting bundle can then be rendered any number of times.
package api

import (
	"context"

	"github.com/fgoll/source-code-plan/internal/bundler"
	"github.com/fgoll/source-code-plan/internal/sourcemap"
)

type StderrColor uint8

const (
	ColorIfTerminal StderrColor = iota
	ColorNever
	ColorAlways
)

type LogLevel uint8

const (
	LogLevelSilent LogLevel = iota
	LogLevelDebug
	LogLevelInfo
	LogLevelWarning
	LogLevelError
)

type Location struct {
	File     string
	Line     int // 1-based
	Column   int // 0-based, in bytes
	Length   int // in bytes
	LineText string
}

type Message struct {
	Text     string
	Location *Location
}

// Errors returned by Build and Generate. Use errors.As to tell them apart.
type (
	ParseError                 = bundler.ParseError
	DuplicateBindingError      = bundler.DuplicateBindingError
	UnresolvedExportError      = bundler.UnresolvedExportError
	UnsupportedExportFormError = bundler.UnsupportedExportFormError
	MissingFinalizerError      = bundler.MissingFinalizerError
	ReadError                  = bundler.ReadError
)

type SourceMap = sourcemap.SourceMap

////////////////////////////////////////////////////////////////////////////////
// Build API

// Maps an import specifier to an absolute path. Returning an empty path
// marks the import as external. Imports are resolved while files load in
// parallel, so the function may be called from several goroutines at once
// and must be safe for concurrent use.
type ResolvePathFunc func(ctx context.Context, specifier string, importer string) (string, error)

type BuildOptions struct {
	Color    StderrColor
	LogLevel LogLevel

	// Replaces the default resolver, which handles relative and absolute
	// paths and treats everything else as external
	ResolvePath ResolvePathFunc
}

type GenerateOptions struct {
	// Only "es6" is supported. This is also the default.
	Format string

	// Where the output is meant to go. Paths in the source map are relative
	// to this file's directory.
	Dest string

	// Embed the original sources in the source map
	IncludeContent bool
}

type Output struct {
	Code string
	Map  *SourceMap
}

func Build(ctx context.Context, entry string, options BuildOptions) (*Bundle, error) {
	return buildImpl(ctx, entry, options, nil)
}

func (b *Bundle) Generate(options GenerateOptions) (*Output, error) {
	return b.generateImpl(options)
}

// Generates the bundle and writes the code to "dest" and the source map to
// "dest" with ".map" appended. The written map always embeds the original
// sources, whatever IncludeContent says.
func (b *Bundle) Write(dest string, options GenerateOptions) error {
	return b.writeImpl(dest, options)
}

// Converts an error returned by this package into a message
func ErrorToMessage(err error) Message {
	return convertMessage(bundler.ErrorToMsg(err))
}

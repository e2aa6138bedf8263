package api

import (
	"context"
	"fmt"

	"github.com/fgoll/source-code-plan/internal/bundler"
	"github.com/fgoll/source-code-plan/internal/cache"
	"github.com/fgoll/source-code-plan/internal/config"
	"github.com/fgoll/source-code-plan/internal/exitcode"
	"github.com/fgoll/source-code-plan/internal/fs"
	"github.com/fgoll/source-code-plan/internal/helpers"
	"github.com/fgoll/source-code-plan/internal/logger"
	"github.com/fgoll/source-code-plan/internal/resolver"
)

type Bundle struct {
	graph   *bundler.Graph
	fs      fs.FS
	options BuildOptions
}

// Shared between builds so that files which haven't changed aren't read again
var caches = cache.MakeCacheSet()

func validateColor(value StderrColor) logger.StderrColor {
	switch value {
	case ColorIfTerminal:
		return logger.ColorIfTerminal
	case ColorNever:
		return logger.ColorNever
	case ColorAlways:
		return logger.ColorAlways
	default:
		panic("Invalid color")
	}
}

func validateLogLevel(value LogLevel) logger.LogLevel {
	switch value {
	case LogLevelDebug:
		return logger.LevelDebug
	case LogLevelInfo:
		return logger.LevelInfo
	case LogLevelWarning:
		return logger.LevelWarning
	case LogLevelError:
		return logger.LevelError
	case LogLevelSilent:
		return logger.LevelSilent
	default:
		panic("Invalid log level")
	}
}

func convertMessage(msg logger.Msg) Message {
	var location *Location
	if msg.Location != nil {
		location = &Location{
			File:     msg.Location.File,
			Line:     msg.Location.Line,
			Column:   msg.Location.Column,
			Length:   msg.Location.Length,
			LineText: msg.Location.LineText,
		}
	}
	return Message{Text: msg.Text, Location: location}
}

func newLog(options BuildOptions) logger.Log {
	return logger.NewStderrLog(logger.OutputOptions{
		IncludeSource: true,
		Color:         validateColor(options.Color),
		LogLevel:      validateLogLevel(options.LogLevel),
	})
}

// Reports an error on the log. Errors are also returned to the caller, so
// nothing else is done with them here.
func logError(log logger.Log, err error) {
	if err != nil {
		msg := bundler.ErrorToMsg(err)
		log.AddErrorWithLocation(msg.Location, msg.Text)
	}
}

func buildImpl(ctx context.Context, entry string, options BuildOptions, fsys fs.FS) (*Bundle, error) {
	if fsys == nil {
		fsys = fs.RealFS()
	}
	log := newLog(options)
	defer log.Done()

	var res resolver.Resolver = resolver.NewResolver(fsys)
	if options.ResolvePath != nil {
		res = resolver.ResolverFunc(options.ResolvePath)
	}

	var timer *helpers.Timer
	if options.LogLevel == LogLevelDebug {
		timer = &helpers.Timer{}
	}

	graph := bundler.NewGraph(log, fsys, res, caches, timer, entry)
	err := graph.Build(ctx)
	timer.Log(log)
	if err != nil {
		logError(log, err)
		return nil, err
	}

	return &Bundle{graph: graph, fs: fsys, options: options}, nil
}

func (b *Bundle) generateImpl(options GenerateOptions) (*Output, error) {
	result, err := b.graph.Generate(config.Options{
		Format:         options.Format,
		Dest:           options.Dest,
		IncludeContent: options.IncludeContent,
	})
	if err != nil {
		log := newLog(b.options)
		logError(log, err)
		log.Done()
		return nil, err
	}
	return &Output{Code: result.Code, Map: result.Map}, nil
}

func (b *Bundle) writeImpl(dest string, options GenerateOptions) error {
	options.Dest = dest
	options.IncludeContent = true
	output, err := b.generateImpl(options)
	if err != nil {
		return err
	}
	err = b.fs.WriteFile(dest, []byte(output.Code))
	if err == nil {
		err = b.fs.WriteFile(dest+".map", []byte(output.Map.String()))
	}
	if err != nil {
		err = exitcode.Set(fmt.Errorf("Failed to write to output file: %w", err), exitcode.OutputFailed)
		log := newLog(b.options)
		logError(log, err)
		log.Done()
	}
	return err
}

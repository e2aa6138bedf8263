package bundler

import (
	"fmt"

	"github.com/fgoll/source-code-plan/internal/helpers"
	"github.com/fgoll/source-code-plan/internal/js_parser"
	"github.com/fgoll/source-code-plan/internal/logger"
)

type ParseError = js_parser.ParseError

// Two import declarations in one module bind the same local name
type DuplicateBindingError struct {
	Path     string
	Name     string
	Location *logger.MsgLocation
}

func (e *DuplicateBindingError) text() string {
	return "Duplicated import " + helpers.QuoteSingle(e.Name)
}

func (e *DuplicateBindingError) Error() string {
	return locatedText(e.Path, e.Location, e.text())
}

// An import refers to a name that the imported module doesn't export
type UnresolvedExportError struct {
	Name     string
	Exporter string
	Importer string
	Location *logger.MsgLocation
}

func (e *UnresolvedExportError) text() string {
	return fmt.Sprintf("Module %s does not export %s (imported by %s)", e.Exporter, e.Name, e.Importer)
}

func (e *UnresolvedExportError) Error() string {
	return locatedText(e.Importer, e.Location, e.text())
}

// An export statement that can't be expressed in the output format
type UnsupportedExportFormError struct {
	Path     string
	Text     string
	Location *logger.MsgLocation
}

func (e *UnsupportedExportFormError) Error() string {
	return locatedText(e.Path, e.Location, e.Text)
}

type MissingFinalizerError struct {
	Format string
}

func (e *MissingFinalizerError) Error() string {
	return fmt.Sprintf("Invalid output format %q (valid: %s)", e.Format, validFormats())
}

type ReadError struct {
	Path     string
	Importer string
	Err      error
}

func (e *ReadError) Error() string {
	if e.Importer == "" {
		return fmt.Sprintf("Could not read %s: %s", e.Path, e.Err.Error())
	}
	return fmt.Sprintf("Could not read %s (imported by %s): %s", e.Path, e.Importer, e.Err.Error())
}

func (e *ReadError) Unwrap() error {
	return e.Err
}

func locatedText(path string, location *logger.MsgLocation, text string) string {
	if location == nil {
		return fmt.Sprintf("%s: %s", path, text)
	}
	return fmt.Sprintf("%s:%d:%d: %s", location.File, location.Line, location.Column, text)
}

// Converts a build error into a log message. Errors that point at a source
// position keep it so the message can be printed with the offending line.
func ErrorToMsg(err error) logger.Msg {
	var text string
	var location *logger.MsgLocation

	switch e := err.(type) {
	case *ParseError:
		text, location = e.Text, e.Location
	case *DuplicateBindingError:
		text, location = e.text(), e.Location
	case *UnresolvedExportError:
		text, location = e.text(), e.Location
	case *UnsupportedExportFormError:
		text, location = e.Text, e.Location
	}

	if location == nil {
		text = err.Error()
	}
	return logger.Msg{Kind: logger.Error, Text: text, Location: location}
}

package exitcode

import (
	"errors"
)

// Exit codes of the command-line tool
const (
	Success      = 0
	BuildFailure = 1
	InvalidUsage = 2
	OutputFailed = 3
)

// An error that knows which exit code it should cause
type Coder interface {
	error
	ExitCode() int
}

// Get returns the exit code for an error:
//
//	nil => Success
//	errors implementing Coder => value returned by ExitCode
//	all other errors => BuildFailure
func Get(err error) int {
	if err == nil {
		return Success
	}

	if coder := Coder(nil); errors.As(err, &coder) {
		return coder.ExitCode()
	}

	return BuildFailure
}

// Set wraps an error in a Coder with the given exit code
func Set(err error, code int) error {
	if err == nil {
		return nil
	}
	return coder{err, code}
}

var _ Coder = coder{}

type coder struct {
	error
	int
}

func (co coder) ExitCode() int {
	return co.int
}

func (co coder) Unwrap() error {
	return co.error
}

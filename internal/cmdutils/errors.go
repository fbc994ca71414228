package cmdutils

import (
	"fmt"
	"os/exec"

	"github.com/pkg/errors"
)

// SilentError indicates that the error message should not be printed
// when the error is handled.
type SilentError struct {
	err error
}

func (e SilentError) Error() string {
	return e.err.Error()
}

func (e SilentError) Unwrap() error {
	return e.err
}

// WrapSilentError wraps an existing error into a SilentError to avoid
// having it printed to stderr
func WrapSilentError(err error) error {
	return &SilentError{err}
}

// IncorrectUsageError indicates that the command was not used
// correctly. The usage message is printed in addition to the error.
type IncorrectUsageError struct {
	err error
}

func (e IncorrectUsageError) Error() string {
	return e.err.Error()
}

func (e IncorrectUsageError) Unwrap() error {
	return e.err
}

// WrapIncorrectUsageError wraps an existing error into a
// IncorrectUsageError to have the usage message printed when the error
// is handled
func WrapIncorrectUsageError(err error) error {
	return &IncorrectUsageError{err}
}

// ExecError includes information about the command which failed to
// execute.
type ExecError struct {
	err *exec.ExitError
	Cmd *exec.Cmd
}

func (e ExecError) Error() string {
	return fmt.Sprintf("%s: %s", e.Cmd.String(), e.err.Error())
}

func (e ExecError) Unwrap() error {
	return e.err
}

// WrapExecError wraps an exec.ExitError into a ExecError
func WrapExecError(err error, cmd *exec.Cmd) error {
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return err
	}
	return &ExecError{exitErr, cmd}
}

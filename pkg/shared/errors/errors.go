package errors

import (
	"errors"
	"fmt"
)

// Exit codes reported by the command line for each failure kind.
const (
	ExitCodeOK            = 0
	ExitCodeUsage         = 1
	ExitCodeConfiguration = 2
	ExitCodeNotFound      = 3
	ExitCodeParse         = 4
	ExitCodeIO            = 5
)

// ConfigurationError reports a missing or invalid configuration input, such as an unset toolchain root.
type ConfigurationError struct {
	Setting string
	Reason  string
	Err     error
}

func (e *ConfigurationError) Error() string {
	msg := fmt.Sprintf("configuration error: %s: %s", e.Setting, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// NewConfigurationError creates a ConfigurationError for the given setting.
func NewConfigurationError(setting, reason string, err error) error {
	return &ConfigurationError{Setting: setting, Reason: reason, Err: err}
}

// NotFoundError reports that a target document does not exist.
type NotFoundError struct {
	Path string
	Err  error
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("source map %q not found", e.Path)
}

func (e *NotFoundError) Unwrap() error { return e.Err }

// NewNotFoundError creates a NotFoundError for path.
func NewNotFoundError(path string, err error) error {
	return &NotFoundError{Path: path, Err: err}
}

// ParseError reports that a document is not a well-formed source map.
type ParseError struct {
	Path   string
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	msg := fmt.Sprintf("failed to parse source map %q: %s", e.Path, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ParseError) Unwrap() error { return e.Err }

// NewParseError creates a ParseError for path.
func NewParseError(path, reason string, err error) error {
	return &ParseError{Path: path, Reason: reason, Err: err}
}

// IOError reports a failed file operation. Op names the step, e.g. "write temp file" or "rename".
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %q: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// NewIOError creates an IOError for the operation op on path.
func NewIOError(op, path string, err error) error {
	return &IOError{Op: op, Path: path, Err: err}
}

// CommandError carries the exit code a failed command should terminate with.
type CommandError struct {
	ExitCode    int
	CommonError string
	Err         error
}

// Error implements the error interface, returning the message from the common error.
func (e *CommandError) Error() string {
	return e.CommonError
}

func (e *CommandError) Unwrap() error { return e.Err }

// NewCommandError wraps err with the exit code matching its kind.
func NewCommandError(err error) *CommandError {
	return &CommandError{
		ExitCode:    ExitCodeFor(err),
		CommonError: err.Error(),
		Err:         err,
	}
}

// NewUsageError creates a CommandError for invalid command line arguments.
func NewUsageError(err error) *CommandError {
	return &CommandError{
		ExitCode:    ExitCodeUsage,
		CommonError: err.Error(),
		Err:         err,
	}
}

// ExitCodeFor maps an error to the process exit code of its kind.
func ExitCodeFor(err error) int {
	if err == nil {
		return ExitCodeOK
	}

	var (
		cmdErr      *CommandError
		cfgErr      *ConfigurationError
		notFoundErr *NotFoundError
		parseErr    *ParseError
		ioErr       *IOError
	)
	switch {
	case errors.As(err, &cmdErr):
		return cmdErr.ExitCode
	case errors.As(err, &cfgErr):
		return ExitCodeConfiguration
	case errors.As(err, &notFoundErr):
		return ExitCodeNotFound
	case errors.As(err, &parseErr):
		return ExitCodeParse
	case errors.As(err, &ioErr):
		return ExitCodeIO
	}
	return ExitCodeUsage
}

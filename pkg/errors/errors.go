package errors

import (
	"fmt"
	"strings"
)

// ParseError represents a YAML parsing failure with optional line metadata.
type ParseError struct {
	Path    string
	Line    int
	Message string
	Err     error
}

// NewParseError constructs a ParseError.
func NewParseError(path string, line int, err error) error {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &ParseError{Path: path, Line: line, Message: message, Err: err}
}

func (e *ParseError) Error() string {
	if e == nil {
		return ""
	}
	if e.Line > 0 {
		return fmt.Sprintf("parse error: %s:%d: %s", e.Path, e.Line, e.Message)
	}
	return fmt.Sprintf("parse error: %s: %s", e.Path, e.Message)
}

// Unwrap exposes the underlying error.
func (e *ParseError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ValidationError captures configuration validation issues.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

// NewValidationError constructs a ValidationError.
func NewValidationError(field, message string, err error) error {
	return &ValidationError{Field: field, Message: message, Err: err}
}

func (e *ValidationError) Error() string {
	if e == nil {
		return ""
	}
	if e.Field != "" {
		return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

// Unwrap exposes the underlying error.
func (e *ValidationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ExecutionError represents a runtime failure that halted a provisioning run.
type ExecutionError struct {
	StepID string
	Index  int
	Err    error
}

// NewExecutionError constructs an ExecutionError. Index is the 1-based
// position of the step in the run, or 0 when unknown.
func NewExecutionError(stepID string, index int, err error) error {
	return &ExecutionError{StepID: stepID, Index: index, Err: err}
}

func (e *ExecutionError) Error() string {
	if e == nil {
		return ""
	}
	switch {
	case e.StepID != "" && e.Index > 0:
		return fmt.Sprintf("halted at step %d (%s): %v", e.Index, e.StepID, e.Err)
	case e.StepID != "":
		return fmt.Sprintf("execution error on step %s: %v", e.StepID, e.Err)
	default:
		return fmt.Sprintf("execution error: %v", e.Err)
	}
}

// Unwrap exposes the root error.
func (e *ExecutionError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ProbeIndeterminateError records why a presence probe could not assert
// presence. Probes never return it to the runner; it is logged and the
// resource is treated as absent.
type ProbeIndeterminateError struct {
	Resource string
	Err      error
}

// NewProbeIndeterminateError constructs a ProbeIndeterminateError.
func NewProbeIndeterminateError(resource string, err error) error {
	return &ProbeIndeterminateError{Resource: resource, Err: err}
}

func (e *ProbeIndeterminateError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("probe indeterminate for %s: %v", e.Resource, e.Err)
}

// Unwrap exposes the underlying error.
func (e *ProbeIndeterminateError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// InstallFailedError carries the raw exit code and diagnostic output of an
// external installer that failed for a reason other than "already satisfied".
type InstallFailedError struct {
	Resource   string
	Command    string
	Code       int
	Diagnostic string
	Err        error
}

// NewInstallFailedError constructs an InstallFailedError.
func NewInstallFailedError(resource, command string, code int, diagnostic string) error {
	return &InstallFailedError{
		Resource:   resource,
		Command:    command,
		Code:       code,
		Diagnostic: strings.TrimSpace(diagnostic),
	}
}

// WrapInstallFailed constructs an InstallFailedError for an installer that
// could not be started at all (missing binary, permission denied).
func WrapInstallFailed(resource, command string, err error) error {
	return &InstallFailedError{Resource: resource, Command: command, Code: -1, Err: err}
}

func (e *InstallFailedError) Error() string {
	if e == nil {
		return ""
	}
	msg := fmt.Sprintf("install %s failed", e.Resource)
	if e.Command != "" {
		msg = fmt.Sprintf("%s (%s)", msg, e.Command)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	msg = fmt.Sprintf("%s: exit code %d", msg, e.Code)
	if e.Diagnostic != "" {
		msg = fmt.Sprintf("%s: %s", msg, firstLine(e.Diagnostic))
	}
	return msg
}

// Unwrap exposes the underlying error, if any.
func (e *InstallFailedError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// DependencyMissingError annotates a failure that happened after one or more
// best-effort steps had already failed in the same run. Upstream lists those
// steps; whether they are the real cause is not tracked.
type DependencyMissingError struct {
	StepID   string
	Upstream []string
	Err      error
}

// NewDependencyMissingError constructs a DependencyMissingError.
func NewDependencyMissingError(stepID string, upstream []string, err error) error {
	return &DependencyMissingError{
		StepID:   stepID,
		Upstream: append([]string(nil), upstream...),
		Err:      err,
	}
}

func (e *DependencyMissingError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%v (earlier best-effort failures: %s)", e.Err, strings.Join(e.Upstream, ", "))
}

// Unwrap exposes the step's own failure.
func (e *DependencyMissingError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func firstLine(s string) string {
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		return strings.TrimSpace(s[:idx])
	}
	return s
}

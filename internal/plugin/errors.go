package plugin

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrPluginNotFound is returned when the requested plugin is not registered.
type ErrPluginNotFound struct {
	Name      string
	Available []string
}

func (e ErrPluginNotFound) Error() string {
	if len(e.Available) == 0 {
		return fmt.Sprintf("plugin '%s' not found in registry", e.Name)
	}
	available := append([]string(nil), e.Available...)
	sort.Strings(available)
	return fmt.Sprintf("plugin '%s' not found in registry\nHint: available plugins are %s", e.Name, strings.Join(available, ", "))
}

// ErrKindMismatch is returned when a step asks a plugin for a resource kind
// it does not manage.
type ErrKindMismatch struct {
	Plugin string
	Want   string
	Got    string
}

func (e ErrKindMismatch) Error() string {
	return fmt.Sprintf("plugin '%s' manages %s resources, not %s", e.Plugin, e.Got, e.Want)
}

// PluginError is the base interface for all plugin errors.
type PluginError interface {
	error
	StepID() string
	Unwrap() error
}

// ValidationError represents invalid step settings handed to a plugin.
type ValidationError struct {
	ID  string
	Err error
}

// NewValidationError creates a new ValidationError.
func NewValidationError(stepID string, err error) *ValidationError {
	return &ValidationError{ID: stepID, Err: err}
}

func (e *ValidationError) Error() string {
	if e.Err == nil {
		return "validation error in step " + e.ID
	}
	return "validation error in step " + e.ID + ": " + e.Err.Error()
}

// StepID returns the identifier of the step where the error occurred.
func (e *ValidationError) StepID() string { return e.ID }

// Unwrap returns the underlying error.
func (e *ValidationError) Unwrap() error { return e.Err }

// Is matches any ValidationError.
func (e *ValidationError) Is(target error) bool {
	_, ok := target.(*ValidationError)
	return ok
}

// ExecutionError represents an external tool that could not be run or
// reported failure.
type ExecutionError struct {
	ID  string
	Err error
}

// NewExecutionError creates a new ExecutionError.
func NewExecutionError(stepID string, err error) *ExecutionError {
	return &ExecutionError{ID: stepID, Err: err}
}

func (e *ExecutionError) Error() string {
	if e.Err == nil {
		return "execution error in step " + e.ID
	}
	return "execution error in step " + e.ID + ": " + e.Err.Error()
}

// StepID returns the identifier of the step where the error occurred.
func (e *ExecutionError) StepID() string { return e.ID }

// Unwrap returns the underlying error.
func (e *ExecutionError) Unwrap() error { return e.Err }

// Is matches any ExecutionError.
func (e *ExecutionError) Is(target error) bool {
	_, ok := target.(*ExecutionError)
	return ok
}

// StateError represents a probe that could not determine presence: the
// tool is missing, its output could not be parsed, or it exited
// unexpectedly.
type StateError struct {
	ID  string
	Err error
}

// NewStateError creates a new StateError.
func NewStateError(stepID string, err error) *StateError {
	return &StateError{ID: stepID, Err: err}
}

func (e *StateError) Error() string {
	if e.Err == nil {
		return "state error in step " + e.ID
	}
	return "state error in step " + e.ID + ": " + e.Err.Error()
}

// StepID returns the identifier of the step where the error occurred.
func (e *StateError) StepID() string { return e.ID }

// Unwrap returns the underlying error.
func (e *StateError) Unwrap() error { return e.Err }

// Is matches any StateError.
func (e *StateError) Is(target error) bool {
	_, ok := target.(*StateError)
	return ok
}

// AsPluginError attempts to convert any error to a PluginError.
func AsPluginError(err error) (PluginError, bool) {
	var pluginErr PluginError
	if errors.As(err, &pluginErr) {
		return pluginErr, true
	}
	return nil, false
}

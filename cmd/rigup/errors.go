package main

import (
	"errors"
	"fmt"

	rigerrors "github.com/alexisbeaulieu97/rigup/pkg/errors"
)

const (
	exitHalted = 1
	exitConfig = 2
)

// exitError reports a non-zero exit whose details were already printed.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

type commandError struct {
	operation  string
	context    string
	cause      error
	suggestion string
}

func newCommandError(operation, context string, cause error, suggestion string) error {
	return &commandError{operation: operation, context: context, cause: cause, suggestion: suggestion}
}

func (e *commandError) Error() string {
	msg := fmt.Sprintf("Failed to %s: %s\n\nError: %v", e.operation, e.context, e.cause)
	if e.suggestion != "" {
		msg = fmt.Sprintf("%s\n\nSuggestion: %s", msg, e.suggestion)
	}
	return msg
}

func (e *commandError) Unwrap() error {
	return e.cause
}

// exitCodeFor maps an error returned by a command to the process exit code.
// Configuration problems exit 2 so scripts can tell them from a halted run.
func exitCodeFor(err error) int {
	if err == nil {
		return 0
	}

	var exit *exitError
	if errors.As(err, &exit) {
		return exit.code
	}

	var parseErr *rigerrors.ParseError
	var validationErr *rigerrors.ValidationError
	if errors.As(err, &parseErr) || errors.As(err, &validationErr) {
		return exitConfig
	}
	return exitHalted
}

// errorMessage returns what to print for err, or "" when the command has
// already reported it.
func errorMessage(err error) string {
	var exit *exitError
	if errors.As(err, &exit) {
		return ""
	}
	return err.Error()
}

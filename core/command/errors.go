package command

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCategory identifies the origin of a record processing failure.
type ErrorCategory string

const (
	// CategoryDecode marks bodies that could not be parsed into an envelope.
	CategoryDecode ErrorCategory = "decode"
	// CategoryUnknownCommand marks envelopes whose command has no handler.
	CategoryUnknownCommand ErrorCategory = "unknown_command"
	// CategoryHandler marks failures raised by the handler itself.
	CategoryHandler ErrorCategory = "handler"
)

// DecodeError wraps a failure to parse a record body into an Envelope.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string { return fmt.Sprintf("decode envelope: %v", e.Err) }

func (e *DecodeError) Unwrap() error { return e.Err }

// UnknownCommandError is returned when a command has no registered handler.
// Its message lists the registered commands so operators can see what is
// available.
type UnknownCommandError struct {
	Command    string
	Registered []string
}

func (e *UnknownCommandError) Error() string {
	return fmt.Sprintf("unknown command %q, registered commands: %s",
		e.Command, strings.Join(e.Registered, ", "))
}

// Category classifies an error into the processing failure taxonomy. Anything
// that is not a decode or unknown-command error came from a handler.
func Category(err error) ErrorCategory {
	var de *DecodeError
	if errors.As(err, &de) {
		return CategoryDecode
	}
	var ue *UnknownCommandError
	if errors.As(err, &ue) {
		return CategoryUnknownCommand
	}
	return CategoryHandler
}

package errors

import (
	stderrors "errors"
	"fmt"
)

// Error is a pipeline failure that must reach the caller. Per-field extraction
// problems never become an Error; they surface as prefill warnings instead.
type Error struct {
	Type    ErrorType `json:"type"`
	Message string    `json:"message"`
	Context string    `json:"context,omitempty"`
	Err     error     `json:"-"`
}

// ErrorType represents the categories of hard failures
type ErrorType int

const (
	ErrorTypeUnknown ErrorType = iota
	ErrorTypeUnsupportedInput
	ErrorTypeTemplateStructural
	ErrorTypeCollaborator
	ErrorTypeTimeout
	ErrorTypeInvalidPayload
)

// Error implements the error interface
func (e *Error) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Type.String(), e.Message)
	if e.Context != "" {
		msg += ": " + e.Context
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause
func (e *Error) Unwrap() error {
	return e.Err
}

// UserMessage returns the stable message meant for end users. Collaborator
// diagnostics stay in Error() and the logs.
func (e *Error) UserMessage() string {
	return e.Message
}

// String returns a string representation of the ErrorType
func (et ErrorType) String() string {
	switch et {
	case ErrorTypeUnsupportedInput:
		return "UNSUPPORTED_INPUT"
	case ErrorTypeTemplateStructural:
		return "TEMPLATE_STRUCTURAL"
	case ErrorTypeCollaborator:
		return "COLLABORATOR"
	case ErrorTypeTimeout:
		return "TIMEOUT"
	case ErrorTypeInvalidPayload:
		return "INVALID_PAYLOAD"
	default:
		return "UNKNOWN"
	}
}

// IsUserFacing reports whether the failure was caused by the caller's input
// rather than by the deployment or an external tool.
func (et ErrorType) IsUserFacing() bool {
	switch et {
	case ErrorTypeUnsupportedInput, ErrorTypeInvalidPayload:
		return true
	default:
		return false
	}
}

// New creates a new Error
func New(errorType ErrorType, message string) *Error {
	return &Error{Type: errorType, Message: message}
}

// Wrap wraps a cause under a stable message
func Wrap(errorType ErrorType, message string, err error) *Error {
	return &Error{Type: errorType, Message: message, Err: err}
}

// WithContext adds context to an existing Error
func (e *Error) WithContext(context string) *Error {
	e.Context = context
	return e
}

// Is reports whether err carries an Error of the given type anywhere in its chain
func Is(err error, errorType ErrorType) bool {
	var target *Error
	if stderrors.As(err, &target) {
		return target.Type == errorType
	}
	return false
}

// UserMessage extracts the user-facing message from err, falling back to a
// generic one for errors outside the taxonomy.
func UserMessage(err error) string {
	var target *Error
	if stderrors.As(err, &target) {
		return target.UserMessage()
	}
	return "Falha inesperada ao processar a solicitação."
}

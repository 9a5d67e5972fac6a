package post

import (
	"errors"
	"fmt"
)

// ErrorKind categorizes engine errors.
type ErrorKind string

const (
	// KindNotFound indicates an unknown record ID or platform.
	KindNotFound ErrorKind = "NOT_FOUND"

	// KindInvalidField indicates an update aimed at an unknown or immutable field.
	KindInvalidField ErrorKind = "INVALID_FIELD"

	// KindParseFailure indicates SerializedView text that does not decode.
	KindParseFailure ErrorKind = "PARSE_FAILURE"

	// KindValidation indicates a record that cannot be published.
	KindValidation ErrorKind = "VALIDATION"
)

// Error is a local, recoverable engine condition.
//
// None of the kinds is fatal: callers surface them as a status and keep
// the session running.
type Error struct {
	// Kind identifies the error category.
	Kind ErrorKind

	// Message is a human-readable description.
	Message string

	// Target is the record ID or platform the operation addressed, if any.
	Target string

	// Field is the field an InvalidField error refers to.
	Field Field

	// Err is the underlying cause (decode or validation error).
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Kind, e.Message)
	if e.Target != "" {
		msg += fmt.Sprintf(" (target=%s)", e.Target)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewNotFound creates a NotFound error for a record ID.
func NewNotFound(id ID) *Error {
	return &Error{
		Kind:    KindNotFound,
		Message: "record not found in current batch",
		Target:  fmt.Sprintf("%d", id),
	}
}

// NewTargetNotFound creates a NotFound error for a platform or free-form target.
func NewTargetNotFound(target string) *Error {
	return &Error{
		Kind:    KindNotFound,
		Message: "no record matches",
		Target:  target,
	}
}

// NewInvalidField creates an InvalidField error.
func NewInvalidField(id ID, field Field, reason string) *Error {
	return &Error{
		Kind:    KindInvalidField,
		Message: fmt.Sprintf("field %q %s", field, reason),
		Target:  fmt.Sprintf("%d", id),
		Field:   field,
	}
}

// NewParseFailure wraps a SerializedView decode error.
func NewParseFailure(cause error) *Error {
	return &Error{
		Kind:    KindParseFailure,
		Message: "serialized view does not decode",
		Err:     cause,
	}
}

// NewValidation wraps a publish validation error.
func NewValidation(id ID, cause error) *Error {
	return &Error{
		Kind:    KindValidation,
		Message: "record cannot be published",
		Target:  fmt.Sprintf("%d", id),
		Err:     cause,
	}
}

// KindOf returns the kind of the first *Error in err's chain, or "".
func KindOf(err error) ErrorKind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return ""
}

// IsNotFound reports whether err is a NotFound error.
func IsNotFound(err error) bool {
	return KindOf(err) == KindNotFound
}

// IsInvalidField reports whether err is an InvalidField error.
func IsInvalidField(err error) bool {
	return KindOf(err) == KindInvalidField
}

// IsParseFailure reports whether err is a ParseFailure error.
func IsParseFailure(err error) bool {
	return KindOf(err) == KindParseFailure
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	return KindOf(err) == KindValidation
}

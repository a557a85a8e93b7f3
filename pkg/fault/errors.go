// Package fault defines the classified error type shared by every layer of the
// polocloud contract: mappers, codecs, providers, the event bus and the module host.
package fault

import (
	"errors"
	"fmt"
)

// Class represents the classification of a failure.
type Class string

const (
	// ClassNotFound indicates a keyed lookup found no entity.
	// Provider operations report absence as a nil result; stores and
	// transports use this class internally.
	ClassNotFound Class = "not_found"

	// ClassConflict indicates a create collided with an existing key.
	ClassConflict Class = "conflict"

	// ClassSchemaViolation indicates a wire snapshot or document is missing a
	// required field or carries a value of the wrong shape.
	ClassSchemaViolation Class = "schema_violation"

	// ClassContractViolation indicates a caller broke an API contract, such as
	// disabling a module that was never enabled.
	ClassContractViolation Class = "contract_violation"

	// ClassInvalid indicates an entity invariant was violated at construction
	// or patch time.
	ClassInvalid Class = "invalid"
)

// Error represents a classified error with context.
type Error struct {
	// Class is the error classification.
	Class Class `json:"class"`

	// Message is the human-readable error message.
	Message string `json:"message"`

	// Code is an optional error code for programmatic handling.
	Code string `json:"code,omitempty"`

	// Entity is the entity kind the error relates to, if any.
	Entity string `json:"entity,omitempty"`

	// Field is the offending field name, if any.
	Field string `json:"field,omitempty"`

	// Operation is the operation being performed when the error occurred.
	Operation string `json:"operation,omitempty"`

	// Err is the underlying error that caused this error.
	Err error `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Class, e.Message)
	switch {
	case e.Entity != "" && e.Field != "":
		msg += fmt.Sprintf(" (entity=%s, field=%s)", e.Entity, e.Field)
	case e.Entity != "":
		msg += fmt.Sprintf(" (entity=%s)", e.Entity)
	}
	if e.Operation != "" {
		msg += fmt.Sprintf(" during %s", e.Operation)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying error for error chain inspection.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports class and code equality for errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Class == t.Class && e.Code == t.Code
}

func newError(class Class, code, message string, err error) *Error {
	return &Error{Class: class, Code: code, Message: message, Err: err}
}

// NotFound creates a new not-found error.
func NotFound(message string) *Error {
	return newError(ClassNotFound, CodeNotFound, message, nil)
}

// Conflict creates a new conflict error.
func Conflict(message string) *Error {
	return newError(ClassConflict, CodeAlreadyExists, message, nil)
}

// MissingField creates a schema violation for an absent required field.
func MissingField(entity, field string) *Error {
	e := newError(ClassSchemaViolation, CodeMissingField, "missing required field", nil)
	e.Entity = entity
	e.Field = field
	return e
}

// BadField creates a schema violation for a field that is present but malformed.
func BadField(entity, field string, err error) *Error {
	e := newError(ClassSchemaViolation, CodeMalformedField, "malformed field", err)
	e.Entity = entity
	e.Field = field
	return e
}

// SchemaViolation creates a schema violation that is not tied to a single field.
func SchemaViolation(message string, err error) *Error {
	return newError(ClassSchemaViolation, CodeMalformed, message, err)
}

// ContractViolation creates a new contract violation error.
func ContractViolation(message string) *Error {
	return newError(ClassContractViolation, CodeContract, message, nil)
}

// Invalid creates a new invariant violation error.
func Invalid(message string, err error) *Error {
	return newError(ClassInvalid, CodeValidation, message, err)
}

// WithEntity adds entity kind context to an error.
func (e *Error) WithEntity(entity string) *Error {
	e.Entity = entity
	return e
}

// WithField adds field context to an error.
func (e *Error) WithField(field string) *Error {
	e.Field = field
	return e
}

// WithOperation adds operation context to an error.
func (e *Error) WithOperation(operation string) *Error {
	e.Operation = operation
	return e
}

// WithCode overrides the error code.
func (e *Error) WithCode(code string) *Error {
	e.Code = code
	return e
}

func classOf(err error) (Class, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Class, true
	}
	return "", false
}

// ClassOf returns the class of err, or the empty class when err is not classified.
func ClassOf(err error) Class {
	c, _ := classOf(err)
	return c
}

// Label returns the class of err as a metric label.
func Label(err error) string {
	return string(ClassOf(err))
}

// IsNotFound returns true if the error is classified as not found.
func IsNotFound(err error) bool {
	c, ok := classOf(err)
	return ok && c == ClassNotFound
}

// IsConflict returns true if the error is classified as a conflict.
func IsConflict(err error) bool {
	c, ok := classOf(err)
	return ok && c == ClassConflict
}

// IsSchemaViolation returns true if the error is classified as a schema violation.
func IsSchemaViolation(err error) bool {
	c, ok := classOf(err)
	return ok && c == ClassSchemaViolation
}

// IsContractViolation returns true if the error is classified as a contract violation.
func IsContractViolation(err error) bool {
	c, ok := classOf(err)
	return ok && c == ClassContractViolation
}

// IsInvalid returns true if the error is classified as an invariant violation.
func IsInvalid(err error) bool {
	c, ok := classOf(err)
	return ok && c == ClassInvalid
}

// Common error codes.
const (
	CodeNotFound       = "NOT_FOUND"
	CodeAlreadyExists  = "ALREADY_EXISTS"
	CodeMissingField   = "MISSING_FIELD"
	CodeMalformedField = "MALFORMED_FIELD"
	CodeMalformed      = "MALFORMED"
	CodeContract       = "CONTRACT_VIOLATION"
	CodeValidation     = "VALIDATION_ERROR"
	CodeUnknownKind    = "UNKNOWN_KIND"
	CodeTypeMismatch   = "TYPE_MISMATCH"
)

package shared

import "errors"

// DomainError represents a domain-level error.
// Two DomainErrors match under errors.Is when their codes are equal, so a
// sentinel can be refined with a specific message or cause and still be
// recognized by callers.
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	cause   error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

// Unwrap returns the underlying cause, if any
func (e *DomainError) Unwrap() error {
	return e.cause
}

// Is reports whether target is a DomainError with the same code
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// WithMessage returns a copy of the error carrying a more specific message
func (e *DomainError) WithMessage(message string) *DomainError {
	return &DomainError{Code: e.Code, Message: message, cause: e.cause}
}

// Wrap returns a copy of the error that carries cause
func (e *DomainError) Wrap(cause error) *DomainError {
	return &DomainError{Code: e.Code, Message: e.Message, cause: cause}
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound              = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists         = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput          = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrInvalidState          = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
	ErrSerializationConflict = NewDomainError("SERIALIZATION_CONFLICT", "Transaction conflicted with a concurrent write")
	ErrTransactionTimeout    = NewDomainError("TRANSACTION_TIMEOUT", "Transaction exceeded its time budget")
)

// IsRetryable reports whether err is a transient failure that the caller may
// retry by re-running the whole operation.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrSerializationConflict) || errors.Is(err, ErrTransactionTimeout)
}

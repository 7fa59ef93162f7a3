package domain

import "fmt"

// Error kinds surfaced to API callers. Strategy soft-failures never carry
// one of these; they are recovered inside the extraction orchestrator.
const (
	ErrKindValidation    = "validation"
	ErrKindAuthorization = "authorization"
	ErrKindExtraction    = "extraction"
	ErrKindPersistence   = "persistence"
)

// Error is a structured, caller-facing error with a machine-readable kind
// and a human-readable message.
type Error struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ValidationError builds a validation error
func ValidationError(format string, args ...interface{}) *Error {
	return &Error{Kind: ErrKindValidation, Message: fmt.Sprintf(format, args...)}
}

// PersistenceError wraps a repository failure so callers can distinguish it
// from extraction failures
func PersistenceError(message string, err error) *Error {
	return &Error{Kind: ErrKindPersistence, Message: message, Err: err}
}

// ExtractionError marks the degenerate case where every strategy failed
func ExtractionError(message string, err error) *Error {
	return &Error{Kind: ErrKindExtraction, Message: message, Err: err}
}

package errors

import "fmt"

// ErrorType classifies the failures the pipeline can hit
type ErrorType string

const (
	// ErrorTypeResolutionMiss means an optional UI element was absent. It is
	// non-fatal and only drives the selector fallback chain.
	ErrorTypeResolutionMiss ErrorType = "resolution_miss"
	// ErrorTypeAuth is a login failure, terminal for the run.
	ErrorTypeAuth ErrorType = "auth"
	// ErrorTypeExtraction means the report table or its rows were entirely
	// absent, terminal for the run.
	ErrorTypeExtraction ErrorType = "extraction"
	// ErrorTypeRowValidation rejects a single row; the run continues.
	ErrorTypeRowValidation ErrorType = "row_validation"
	// ErrorTypeStore is a document-store connectivity failure, terminal.
	ErrorTypeStore ErrorType = "store"
	// ErrorTypeNavigation is a failed page transition. It falls back to
	// direct-URL navigation before becoming terminal.
	ErrorTypeNavigation ErrorType = "navigation"
	ErrorTypeUnknown    ErrorType = "unknown"
)

// Error carries the failure class alongside the message so callers can decide
// between aborting the run and continuing with the next fallback or row.
type Error struct {
	Type    ErrorType
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s error: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s error: %s", e.Type, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an Error of the given type
func New(t ErrorType, msg string) *Error {
	return &Error{Type: t, Message: msg}
}

// Wrap creates an Error of the given type wrapping an underlying cause
func Wrap(t ErrorType, msg string, err error) *Error {
	return &Error{Type: t, Message: msg, Err: err}
}

// IsFatal reports whether an error type must terminate the current run
func IsFatal(t ErrorType) bool {
	switch t {
	case ErrorTypeAuth, ErrorTypeExtraction, ErrorTypeStore:
		return true
	case ErrorTypeResolutionMiss, ErrorTypeRowValidation:
		return false
	case ErrorTypeNavigation:
		// Navigation gets a direct-URL fallback first; the caller promotes
		// it to fatal only after that fallback fails.
		return false
	default:
		return true
	}
}

// IsRetryable reports whether an error type is worth another attempt within
// the same run (store connects and navigations are; auth never is)
func IsRetryable(t ErrorType) bool {
	switch t {
	case ErrorTypeStore, ErrorTypeNavigation:
		return true
	default:
		return false
	}
}

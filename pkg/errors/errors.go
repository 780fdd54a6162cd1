// Package errors defines the error taxonomy shared by the indexing and
// query pipelines: sentinel errors for each failure class plus an AppError
// wrapper that carries a message, an optional cause, and an HTTP status for
// the outer service layer.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNormalization reports malformed input encoding. The caller may
	// re-encode and retry.
	ErrNormalization = errors.New("text normalization failed")
	// ErrUnknownDocumentType reports a document type that was never
	// registered.
	ErrUnknownDocumentType = errors.New("unknown document type")
	// ErrStore wraps any storage failure. Commits and ranking roll back
	// fully, so the whole operation may be retried.
	ErrStore = errors.New("store operation failed")
	// ErrSpellChecker reports a spell-checking capability failure, e.g. an
	// unreadable dictionary.
	ErrSpellChecker = errors.New("spell checker failed")
	// ErrInvalidInput reports a malformed request from the caller.
	ErrInvalidInput = errors.New("invalid input")
	// ErrPendingBatch reports an indexer closed with buffered postings that
	// were neither committed nor discarded.
	ErrPendingBatch = errors.New("indexer closed with uncommitted batch")
)

// AppError attaches a message and an optional cause to one of the sentinel
// errors above.
type AppError struct {
	Err     error
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %s", e.Err.Error(), e.Message, e.Cause.Error())
	}
	return fmt.Sprintf("%s: %s", e.Err.Error(), e.Message)
}

// Unwrap exposes both the sentinel and the cause to errors.Is/As.
func (e *AppError) Unwrap() []error {
	if e.Cause != nil {
		return []error{e.Err, e.Cause}
	}
	return []error{e.Err}
}

// New builds an AppError from a sentinel and a message.
func New(sentinel error, message string) *AppError {
	return &AppError{Err: sentinel, Message: message}
}

// Newf builds an AppError from a sentinel and a formatted message.
func Newf(sentinel error, format string, args ...any) *AppError {
	return &AppError{Err: sentinel, Message: fmt.Sprintf(format, args...)}
}

// Store wraps a storage failure, recording the operation that failed.
func Store(op string, cause error) *AppError {
	return &AppError{Err: ErrStore, Message: op, Cause: cause}
}

// HTTPStatusCode maps an error to the status code the HTTP layer should
// return.
func HTTPStatusCode(err error) int {
	switch {
	case errors.Is(err, ErrUnknownDocumentType):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrNormalization):
		return http.StatusBadRequest
	case errors.Is(err, ErrStore):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

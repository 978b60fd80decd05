package apperrors

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrCacheUnavailable indicates no snapshot has ever loaded successfully;
// reads cannot be served until the first load completes. Distinct from a
// stale snapshot, which is still served.
var ErrCacheUnavailable = errors.New("transaction cache unavailable")

// ErrInsertFailed indicates a backing-store write failure; the coordinator
// state does not advance and the caller may retry.
var ErrInsertFailed = errors.New("transaction insert failed")

// ErrCleanupFailed is a soft error: an artifact could not be removed after a
// cancelled import. The decision workflow still completes.
var ErrCleanupFailed = errors.New("artifact cleanup failed")

// ErrDecisionExpired indicates the decision window for an import session
// closed before a decision arrived; the import was cancelled fail-safe.
var ErrDecisionExpired = errors.New("decision session expired")

// AppError wraps a lower-level error with an application status code and
// context message. Used primarily by the persistence layer.
type AppError struct {
	Code    int
	Message string
	Err     error
}

// NewAppError creates an AppError wrapping err.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

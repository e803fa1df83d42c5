package shared

import "errors"

var (
	// ErrNotFound indicates the requested record or group does not exist.
	ErrNotFound = errors.New("not found")
	// ErrForbidden indicates the principal lacks permission for the action.
	ErrForbidden = errors.New("forbidden")
	// ErrValidation indicates a malformed or rejected submission.
	ErrValidation = errors.New("validation failed")
	// ErrContention indicates a write conflict that persisted after retries.
	ErrContention = errors.New("store contention")
	// ErrCSRFTokenMissing occurs when CSRF token missing.
	ErrCSRFTokenMissing = errors.New("csrf token missing")
	// ErrCSRFTokenMismatch occurs when CSRF tokens do not match.
	ErrCSRFTokenMismatch = errors.New("csrf token mismatch")
)

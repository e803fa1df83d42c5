package httpx

import (
	"errors"
	"net/http"

	"github.com/ncrtrack/ncrtrack/internal/shared"
)

// RespondError maps domain errors to HTTP responses. A forbidden action is
// always distinguishable from a missing record, and exhausted write
// contention surfaces as a retryable conflict rather than a generic failure.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, shared.ErrForbidden):
		Problem(w, http.StatusForbidden, "Forbidden", err.Error())
	case errors.Is(err, shared.ErrValidation):
		Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, shared.ErrContention):
		Problem(w, http.StatusConflict, "Write Conflict", "the record is busy, retry shortly")
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}

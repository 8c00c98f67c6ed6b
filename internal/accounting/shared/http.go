package shared

import (
	"errors"
	"net/http"

	"github.com/grandlivre-erp/grandlivre-erp/internal/platform/httpx"
)

// RespondError maps accounting errors to RFC7807 responses.
func RespondError(w http.ResponseWriter, err error) {
	var unbalanced *UnbalancedEntryError
	switch {
	case errors.As(err, &unbalanced):
		httpx.Problem(w, http.StatusUnprocessableEntity, "Unbalanced Entry", unbalanced.Error())
	case errors.Is(err, ErrUnbalanced), errors.Is(err, ErrTooFewLines), errors.Is(err, ErrInvalidInput):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, ErrAccountNotFound), errors.Is(err, ErrJournalNotFound), errors.Is(err, ErrFiscalYearNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrDuplicateAccountNumber):
		httpx.Problem(w, http.StatusConflict, "Duplicate", err.Error())
	case errors.Is(err, ErrProtectedAccount):
		httpx.Problem(w, http.StatusForbidden, "Protected Resource", err.Error())
	case errors.Is(err, ErrFiscalYearClosed), errors.Is(err, ErrInvalidStatus):
		httpx.Problem(w, http.StatusConflict, "Conflict", err.Error())
	default:
		httpx.RespondError(w, err)
	}
}

package gateway

import (
	"errors"
	"net/http"

	"github.com/pixperk/handset/pkg/types"
)

// converts domain errors to HTTP responses
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, types.ErrInvalidRequest):
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())

	case errors.Is(err, types.ErrInvalidDue):
		writeError(w, http.StatusBadRequest, "due_before_now", err.Error())

	case errors.Is(err, types.ErrAlreadyLeased):
		writeError(w, http.StatusLocked, "in_use", err.Error())

	case errors.Is(err, types.ErrUnknownMobile):
		writeError(w, http.StatusNotFound, "unknown_mobile", err.Error())

	case errors.Is(err, types.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err.Error())

	case errors.Is(err, types.ErrForbiddenHolder):
		writeError(w, http.StatusForbidden, "forbidden", err.Error())

	default:
		writeError(w, http.StatusInternalServerError, "internal", err.Error())
	}
}

package httpx

import (
	"errors"
	"net/http"
)

// Sentinel errors for the domain layer. Services wrap these with %w and a
// short message; RespondError maps them to status codes and error kinds.
var (
	ErrValidation          = errors.New("validation failed")
	ErrNotFound            = errors.New("not found")
	ErrForbidden           = errors.New("forbidden")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrDuplicate           = errors.New("duplicate")
	ErrProvisioningTimeout = errors.New("provisioning timeout")
)

var sentinels = []error{
	ErrValidation,
	ErrNotFound,
	ErrForbidden,
	ErrUnauthorized,
	ErrDuplicate,
	ErrProvisioningTimeout,
}

// UserSafeMessage extracts a message safe to return to clients. Wrapped
// sentinel errors keep their full text; anything else is masked.
func UserSafeMessage(err error) string {
	for _, sentinel := range sentinels {
		if errors.Is(err, sentinel) {
			return err.Error()
		}
	}
	return "internal error"
}

// RespondError maps a domain error to the failure envelope.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrValidation):
		Fail(w, http.StatusBadRequest, "ValidationError", err.Error())
	case errors.Is(err, ErrNotFound):
		Fail(w, http.StatusNotFound, "NotFoundError", err.Error())
	case errors.Is(err, ErrForbidden):
		Fail(w, http.StatusForbidden, "PermissionError", err.Error())
	case errors.Is(err, ErrUnauthorized):
		Fail(w, http.StatusUnauthorized, "UnauthorizedError", err.Error())
	case errors.Is(err, ErrDuplicate):
		Fail(w, http.StatusConflict, "DuplicateError", err.Error())
	case errors.Is(err, ErrProvisioningTimeout):
		Fail(w, http.StatusServiceUnavailable, "ProvisioningTimeoutError", err.Error())
	default:
		Fail(w, http.StatusInternalServerError, "InternalError", "internal error")
	}
}

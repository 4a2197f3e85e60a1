package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/serplantas/serplantas/internal/ai"
	"github.com/serplantas/serplantas/internal/service"
	"github.com/serplantas/serplantas/internal/store"
	"github.com/serplantas/serplantas/pkg/plantsdk"
)

var (
	errDuplicateEmail = &plantsdk.APIError{
		StatusCode:  http.StatusBadRequest,
		Code:        plantsdk.ErrorCodeDuplicateEmail,
		Description: "email is already registered",
	}
	errDuplicateUsername = &plantsdk.APIError{
		StatusCode:  http.StatusBadRequest,
		Code:        plantsdk.ErrorCodeDuplicateUsername,
		Description: "derived username is already taken",
	}
	errTwoFactorNotEnabled = &plantsdk.APIError{
		StatusCode:  http.StatusBadRequest,
		Code:        plantsdk.ErrorCodeTwoFactorState,
		Description: "two-factor authentication is not enabled",
	}
	errTwoFactorAlreadyEnabled = &plantsdk.APIError{
		StatusCode:  http.StatusBadRequest,
		Code:        plantsdk.ErrorCodeTwoFactorState,
		Description: "two-factor authentication is already enabled",
	}
	errProviderUnavailable = &plantsdk.APIError{
		StatusCode:  http.StatusBadGateway,
		Code:        plantsdk.ErrorCodeServerError,
		Description: "assistant is temporarily unavailable",
	}
)

// writeServiceError maps service-layer errors onto the wire taxonomy. All
// three authentication rejections share the description of
// plantsdk.ErrInvalidCredentials / ErrInvalidToken ("authentication failed")
// so a caller cannot tell which check tripped.
func writeServiceError(w http.ResponseWriter, log *slog.Logger, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		plantsdk.ValidationError(err.Error()).WriteError(w)
	case errors.Is(err, service.ErrDuplicateEmail):
		errDuplicateEmail.WriteError(w)
	case errors.Is(err, service.ErrDuplicateUsername):
		errDuplicateUsername.WriteError(w)
	case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, service.ErrInvalidCode):
		plantsdk.ErrInvalidCredentials.WriteError(w)
	case errors.Is(err, service.ErrInvalidToken):
		plantsdk.ErrInvalidToken.WriteError(w)
	case errors.Is(err, service.ErrTwoFactorNotEnabled):
		errTwoFactorNotEnabled.WriteError(w)
	case errors.Is(err, service.ErrTwoFactorAlreadyEnabled):
		errTwoFactorAlreadyEnabled.WriteError(w)
	case errors.Is(err, store.ErrNotFound):
		plantsdk.ErrNotFound.WriteError(w)
	case errors.Is(err, ai.ErrProviderUnavailable):
		log.Error("ai provider error", "err", err)
		errProviderUnavailable.WriteError(w)
	default:
		log.Error("unexpected service error", "err", err)
		plantsdk.ErrServerError.WriteError(w)
	}
}

package errors

import (
	"encoding/json"
	stderrors "errors"
	"math"
	"net/http"
	"strconv"

	"github.com/dropDatabas3/accounts/internal/accounts"
	"github.com/dropDatabas3/accounts/internal/auth"
	"github.com/dropDatabas3/accounts/internal/domain/repository"
	"github.com/dropDatabas3/accounts/internal/jwt"
	"github.com/dropDatabas3/accounts/internal/security/password"
	"github.com/dropDatabas3/accounts/internal/validation"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

// WriteError escribe err como JSON con el status que le corresponde.
func WriteError(w http.ResponseWriter, err error) {
	appErr := FromError(err)

	if appErr.RetryAfter > 0 {
		w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(appErr.RetryAfter.Seconds()))))
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(appErr.HTTPStatus)
	_ = json.NewEncoder(w).Encode(errorResponse{
		Code:    appErr.Code,
		Message: appErr.Message,
		Detail:  appErr.Detail,
	})
}

// FromError traduce errores de dominio a *AppError. Lo desconocido es 500
// (la causa queda en Err para logs, nunca en la respuesta).
func FromError(err error) *AppError {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}

	var tooMany *auth.TooManyAttemptsError
	var weak *password.PolicyError
	switch {
	case stderrors.As(err, &tooMany):
		e := ErrRateLimitExceeded.WithCause(err)
		e.RetryAfter = tooMany.RetryAfter
		return e
	case auth.IsCredentialsError(err):
		return ErrInvalidCredentials.WithCause(err)
	case stderrors.Is(err, auth.ErrTokenMismatch):
		return ErrTokenMismatch.WithCause(err)
	// expired antes que invalid: Refresh envuelve ambos en ErrIssuance
	case stderrors.Is(err, jwt.ErrExpiredToken):
		return ErrTokenExpired.WithCause(err)
	case stderrors.Is(err, jwt.ErrInvalidToken):
		return ErrTokenInvalid.WithCause(err)
	case stderrors.As(err, &weak):
		return ErrPasswordTooWeak.WithCause(err).WithDetail(weak.Error())
	case validation.IsValidation(err),
		stderrors.Is(err, repository.ErrInvalidArgument),
		stderrors.Is(err, password.ErrInvalidInput):
		return ErrInvalidFormat.WithCause(err).WithDetail(err.Error())
	case stderrors.Is(err, repository.ErrNotFound):
		return ErrNotFound.WithCause(err)
	case stderrors.Is(err, repository.ErrConflict):
		return ErrConflict.WithCause(err).WithDetail(err.Error())
	case stderrors.Is(err, accounts.ErrInvalidTransition):
		return ErrInvalidState.WithCause(err).WithDetail(err.Error())
	case stderrors.Is(err, repository.ErrNoDatabase):
		return ErrServiceUnavailable.WithCause(err)
	}
	return ErrInternalServerError.WithCause(err)
}

package auth

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrPrincipalNotFound: no hay usuario con ese email (o ya no existe).
	ErrPrincipalNotFound = errors.New("auth: principal not found")

	// ErrAuthenticationFailed: el secreto no coincide con el hash guardado.
	ErrAuthenticationFailed = errors.New("auth: authentication failed")

	// ErrInactivePrincipal: credenciales correctas pero el usuario no está activo.
	ErrInactivePrincipal = errors.New("auth: principal is not active")

	// ErrTokenMismatch: el user_id del token no es el del usuario actual con ese
	// email. Se trata como sospechoso.
	ErrTokenMismatch = errors.New("auth: token does not match principal")

	// ErrInvalidPrincipal: se pidió un token para un usuario sin ID o email.
	ErrInvalidPrincipal = errors.New("auth: principal has no id or email")

	// ErrTooManyAttempts: el limiter de login bloqueó la clave.
	ErrTooManyAttempts = errors.New("auth: too many attempts")
)

// TooManyAttemptsError lleva el tiempo de espera sugerido.
// errors.Is(err, ErrTooManyAttempts) es true.
type TooManyAttemptsError struct {
	RetryAfter time.Duration
}

func (e *TooManyAttemptsError) Error() string {
	return fmt.Sprintf("%v (retry after %s)", ErrTooManyAttempts, e.RetryAfter)
}

func (e *TooManyAttemptsError) Is(target error) bool { return target == ErrTooManyAttempts }

// IsCredentialsError agrupa los rechazos que hacia afuera se reportan como
// "invalid credentials" sin distinguir.
func IsCredentialsError(err error) bool {
	return errors.Is(err, ErrPrincipalNotFound) ||
		errors.Is(err, ErrAuthenticationFailed) ||
		errors.Is(err, ErrInactivePrincipal)
}

// failureReason clasifica un rechazo para auditoría (nunca para el cliente).
func failureReason(err error) string {
	switch {
	case errors.Is(err, ErrPrincipalNotFound):
		return "not_found"
	case errors.Is(err, ErrInactivePrincipal):
		return "inactive"
	default:
		return "bad_secret"
	}
}

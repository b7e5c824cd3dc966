// Package audit registra eventos de seguridad y de ciclo de vida de cuentas.
// Los eventos salen por el logger del request (con request_id) marcados con
// audit=true, para poder rutearlos aparte en el colector de logs.
package audit

import (
	"context"

	"go.uber.org/zap"

	"github.com/dropDatabas3/accounts/internal/observability/logger"
)

type Event string

const (
	LoginSucceeded Event = "auth.login.succeeded"
	LoginFailed    Event = "auth.login.failed"
	LoginThrottled Event = "auth.login.throttled"

	OrganizationCreated     Event = "organization.created"
	OrganizationActivated   Event = "organization.activated"
	OrganizationSuspended   Event = "organization.suspended"
	OrganizationReactivated Event = "organization.reactivated"

	UserCreated       Event = "user.created"
	UserStatusChanged Event = "user.status_changed"

	MerchantCreated       Event = "merchant.created"
	MerchantStatusChanged Event = "merchant.status_changed"
	APIKeyIssued          Event = "merchant.api_key_issued"
	APIKeyRevoked         Event = "merchant.api_key_revoked"
)

// Log escribe el evento. Nunca incluir secretos en fields.
func Log(ctx context.Context, event Event, fields ...zap.Field) {
	logger.From(ctx).With(
		zap.Bool("audit", true),
		zap.String("event", string(event)),
	).Info("audit", fields...)
}

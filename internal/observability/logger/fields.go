package logger

import (
	"time"

	"go.uber.org/zap"
)

// ─── HTTP ───

func RequestID(v string) zap.Field { return zap.String("request_id", v) }
func Method(v string) zap.Field    { return zap.String("method", v) }
func Path(v string) zap.Field      { return zap.String("path", v) }
func Status(v int) zap.Field       { return zap.Int("status", v) }
func ClientIP(v string) zap.Field  { return zap.String("client_ip", v) }

// Duration registra la duración en milisegundos.
func Duration(v time.Duration) zap.Field {
	return zap.Int64("duration_ms", v.Milliseconds())
}

// ─── Negocio ───

// UserID crea un campo para el ID del usuario.
func UserID(v string) zap.Field { return zap.String("user_id", v) }

// OrgID crea un campo para el ID de la organización.
func OrgID(v string) zap.Field { return zap.String("organization_id", v) }

// MerchantID crea un campo para el ID del comercio.
func MerchantID(v string) zap.Field { return zap.String("merchant_id", v) }

// Email crea un campo para el email. Usar con cuidado en prod: es PII.
func Email(v string) zap.Field { return zap.String("email", v) }

// ─── Sistema ───

// Component crea un campo para el componente/módulo.
func Component(v string) zap.Field { return zap.String("component", v) }

// Op crea un campo para la operación actual.
func Op(v string) zap.Field { return zap.String("op", v) }

// Layer crea un campo para la capa (handler, service, repository).
func Layer(v string) zap.Field { return zap.String("layer", v) }

// Backend crea un campo para el backend de persistencia (memory, sqlite, postgres).
func Backend(v string) zap.Field { return zap.String("backend", v) }

// Entity crea un campo para el nombre de entidad persistida.
func Entity(v string) zap.Field { return zap.String("entity", v) }

// Err crea un campo para un error.
func Err(err error) zap.Field { return zap.Error(err) }

func Count(v int) zap.Field { return zap.Int("count", v) }

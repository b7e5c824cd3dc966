package jwt

import (
	"math"
	"time"
)

// Nombres de claims.
const (
	ClaimExpiresAt = "exp"
	ClaimIssuedAt  = "iat"
	ClaimIssuer    = "iss"
	ClaimUserID    = "user_id"
	ClaimEmail     = "email"
	ClaimStatus    = "status"

	ClaimOrganizationID = "organization_id"
)

// Claims es el payload de un token.
type Claims map[string]any

// String devuelve la claim si existe y es un string no vacío.
func (c Claims) String(key string) (string, bool) {
	s, ok := c[key].(string)
	return s, ok && s != ""
}

// ExpiresAt devuelve el exp como time.Time.
func (c Claims) ExpiresAt() (time.Time, bool) {
	return c.unix(ClaimExpiresAt)
}

// IssuedAt devuelve el iat como time.Time.
func (c Claims) IssuedAt() (time.Time, bool) {
	return c.unix(ClaimIssuedAt)
}

func (c Claims) unix(key string) (time.Time, bool) {
	switch v := c[key].(type) {
	case float64:
		sec, frac := math.Modf(v)
		return time.Unix(int64(sec), int64(frac*1e9)).UTC(), true
	case int64:
		return time.Unix(v, 0).UTC(), true
	case int:
		return time.Unix(int64(v), 0).UTC(), true
	}
	return time.Time{}, false
}

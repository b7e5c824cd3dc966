package tokens

import (
	"crypto/rand"
	"encoding/base64"
	"strings"

	"github.com/oklog/ulid/v2"
)

// APIKeyPrefix identifica las API keys de comercio.
const APIKeyPrefix = "mk_"

// GenerateOpaqueToken genera un token opaco aleatorio (base64url sin padding).
func GenerateOpaqueToken(nBytes int) (string, error) {
	b := make([]byte, nBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// NewAPIKey genera "mk_<ulid><secreto>": el ULID la hace ordenable por fecha
// de emisión y el sufijo aporta 192 bits de entropía.
func NewAPIKey() (string, error) {
	secret, err := GenerateOpaqueToken(24)
	if err != nil {
		return "", err
	}
	return APIKeyPrefix + strings.ToLower(ulid.Make().String()) + secret, nil
}

// IsAPIKey chequea el formato, no la existencia.
func IsAPIKey(s string) bool {
	return strings.HasPrefix(s, APIKeyPrefix) && len(s) == len(APIKeyPrefix)+ulid.EncodedSize+32
}

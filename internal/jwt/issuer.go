package jwt

import (
	"errors"
	"fmt"
	"strings"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
)

// DefaultTTL es el TTL de un token cuando el caller no especifica uno.
const DefaultTTL = 15 * time.Minute

var (
	// ErrInvalidToken: firma, estructura, algoritmo o issuer inválidos.
	ErrInvalidToken = errors.New("jwt: invalid token")

	// ErrExpiredToken: el token es válido pero su exp ya pasó.
	ErrExpiredToken = errors.New("jwt: token expired")

	// ErrIssuance: no se pudo firmar (o refrescar) el token.
	ErrIssuance = errors.New("jwt: issuance failed")
)

// Settings configura el Issuer. Secret es obligatorio.
type Settings struct {
	Secret    string
	Algorithm string        // HS256 (default) | HS384 | HS512
	AccessTTL time.Duration // default DefaultTTL
	Issuer    string        // "iss" opcional; si se setea, Decode lo exige
}

// Issuer firma y valida tokens HMAC. No guarda estado por token: es seguro
// para uso concurrente.
type Issuer struct {
	Iss       string
	AccessTTL time.Duration

	// Now permite inyectar el reloj (tests). Default time.Now.
	Now func() time.Time

	method *jwtv5.SigningMethodHMAC
	secret []byte
}

// NewIssuer valida la configuración y construye el Issuer.
func NewIssuer(s Settings) (*Issuer, error) {
	if s.Secret == "" {
		return nil, errors.New("jwt: empty signing secret")
	}
	alg := strings.ToUpper(strings.TrimSpace(s.Algorithm))
	if alg == "" {
		alg = jwtv5.SigningMethodHS256.Alg()
	}
	method, ok := jwtv5.GetSigningMethod(alg).(*jwtv5.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("jwt: unsupported algorithm %q", s.Algorithm)
	}
	ttl := s.AccessTTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Issuer{
		Iss:       s.Issuer,
		AccessTTL: ttl,
		Now:       time.Now,
		method:    method,
		secret:    []byte(s.Secret),
	}, nil
}

// Algorithm devuelve el alg de firma (ej: "HS256").
func (i *Issuer) Algorithm() string { return i.method.Alg() }

func (i *Issuer) now() time.Time {
	if i.Now == nil {
		return time.Now()
	}
	return i.Now()
}

// Issue firma claims con exp = now + ttl (ttl <= 0 usa AccessTTL).
// Un "exp" presente en claims se reemplaza.
func (i *Issuer) Issue(claims Claims, ttl time.Duration) (string, error) {
	tok, _, err := i.IssueWithExpiry(claims, ttl)
	return tok, err
}

// IssueWithExpiry es Issue devolviendo además el exp firmado (segundos
// enteros, UTC).
func (i *Issuer) IssueWithExpiry(claims Claims, ttl time.Duration) (string, time.Time, error) {
	if ttl <= 0 {
		ttl = i.AccessTTL
	}
	now := i.now().UTC()
	exp := time.Unix(now.Add(ttl).Unix(), 0).UTC()

	mc := jwtv5.MapClaims{}
	for k, v := range claims {
		mc[k] = v
	}
	mc[ClaimIssuedAt] = now.Unix()
	mc[ClaimExpiresAt] = exp.Unix()
	if i.Iss != "" {
		mc[ClaimIssuer] = i.Iss
	}

	tk := jwtv5.NewWithClaims(i.method, mc)
	tk.Header["typ"] = "JWT"
	signed, err := tk.SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("%w: %w", ErrIssuance, err)
	}
	return signed, exp, nil
}

// Decode valida firma, algoritmo, exp (obligatorio) e issuer y devuelve las claims.
// Distingue ErrExpiredToken de ErrInvalidToken.
func (i *Issuer) Decode(token string) (Claims, error) {
	if strings.TrimSpace(token) == "" {
		return nil, fmt.Errorf("%w: empty token", ErrInvalidToken)
	}
	opts := []jwtv5.ParserOption{
		jwtv5.WithValidMethods([]string{i.method.Alg()}),
		jwtv5.WithTimeFunc(i.now),
		jwtv5.WithExpirationRequired(),
	}
	if i.Iss != "" {
		opts = append(opts, jwtv5.WithIssuer(i.Iss))
	}

	tok, err := jwtv5.Parse(token, i.keyfunc, opts...)
	if err != nil {
		if errors.Is(err, jwtv5.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	mc, ok := tok.Claims.(jwtv5.MapClaims)
	if !ok || !tok.Valid {
		return nil, fmt.Errorf("%w: claims type", ErrInvalidToken)
	}

	out := make(Claims, len(mc))
	for k, v := range mc {
		out[k] = v
	}
	return out, nil
}

// Refresh decodifica, descarta el exp anterior y re-emite con un exp nuevo.
// Si el token de origen no es válido, el error es ErrIssuance envolviendo la
// causa (errors.Is sigue matcheando ErrExpiredToken / ErrInvalidToken).
func (i *Issuer) Refresh(token string, ttl time.Duration) (string, error) {
	claims, err := i.Decode(token)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrIssuance, err)
	}
	delete(claims, ClaimExpiresAt)
	return i.Issue(claims, ttl)
}

// Verify es un chequeo liviano de firma + expiración.
func (i *Issuer) Verify(token string) bool {
	_, err := i.Decode(token)
	return err == nil
}

func (i *Issuer) keyfunc(t *jwtv5.Token) (any, error) {
	if _, ok := t.Method.(*jwtv5.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
	}
	return i.secret, nil
}

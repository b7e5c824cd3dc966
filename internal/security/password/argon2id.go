package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/argon2"
)

const algorithm = "argon2id"

var (
	// ErrInvalidInput: secreto o hash vacío.
	ErrInvalidInput = errors.New("password: empty secret or hash")

	// ErrMalformedHash: el string no se puede parsear como PHC argon2id.
	ErrMalformedHash = errors.New("password: malformed hash")
)

type Params struct {
	Memory      uint32 // KiB
	Time        uint32
	Parallelism uint8
	SaltLen     uint32
	KeyLen      uint32
}

var Default = Params{Memory: 64 * 1024, Time: 3, Parallelism: 4, SaltLen: 16, KeyLen: 32}

// withDefaults completa los campos en cero con Default.
func (p Params) withDefaults() Params {
	if p.Memory == 0 {
		p.Memory = Default.Memory
	}
	if p.Time == 0 {
		p.Time = Default.Time
	}
	if p.Parallelism == 0 {
		p.Parallelism = Default.Parallelism
	}
	if p.SaltLen == 0 {
		p.SaltLen = Default.SaltLen
	}
	if p.KeyLen == 0 {
		p.KeyLen = Default.KeyLen
	}
	return p
}

// Hasher hashea y verifica secretos con argon2id. Es seguro para uso concurrente.
type Hasher struct {
	params Params
	rand   io.Reader
}

// NewHasher crea un Hasher con los parámetros dados (campos en cero = Default).
func NewHasher(p Params) *Hasher {
	return &Hasher{params: p.withDefaults(), rand: rand.Reader}
}

func (h *Hasher) Algorithm() string { return algorithm }

func (h *Hasher) Parameters() Params { return h.params }

// Hash devuelve un PHC string: $argon2id$v=19$m=...,t=...,p=...$<saltB64>$<dkB64>
func (h *Hasher) Hash(plain string) (string, error) {
	return h.HashWith(h.params, plain)
}

// HashWith hashea con parámetros puntuales en lugar de los configurados.
func (h *Hasher) HashWith(p Params, plain string) (string, error) {
	if plain == "" {
		return "", ErrInvalidInput
	}
	p = p.withDefaults()
	salt := make([]byte, p.SaltLen)
	if _, err := io.ReadFull(h.rand, salt); err != nil {
		return "", fmt.Errorf("password: salt: %w", err)
	}
	dk := argon2.IDKey([]byte(plain), salt, p.Time, p.Memory, p.Parallelism, p.KeyLen)
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, p.Memory, p.Time, p.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(dk),
	), nil
}

// Verify compara en tiempo constante. Un hash de otro algoritmo o versión
// devuelve false; uno que no se puede parsear devuelve ErrMalformedHash.
func (h *Hasher) Verify(plain, phc string) (bool, error) {
	if plain == "" || phc == "" {
		return false, ErrInvalidInput
	}
	d, err := decode(phc)
	if err != nil {
		return false, err
	}
	if !d.compatible() {
		return false, nil
	}
	key := argon2.IDKey([]byte(plain), d.salt, d.params.Time, d.params.Memory, d.params.Parallelism, uint32(len(d.key)))
	return subtle.ConstantTimeCompare(key, d.key) == 1, nil
}

// NeedsRehash es true si el hash fue generado con parámetros distintos a los
// configurados (o con otro algoritmo/versión).
func (h *Hasher) NeedsRehash(phc string) (bool, error) {
	if phc == "" {
		return false, ErrInvalidInput
	}
	d, err := decode(phc)
	if err != nil {
		return false, err
	}
	if !d.compatible() {
		return true, nil
	}
	return d.params != h.params, nil
}

// ParametersOf extrae los parámetros embebidos en un hash.
func ParametersOf(phc string) (Params, error) {
	d, err := decode(phc)
	if err != nil {
		return Params{}, err
	}
	return d.params, nil
}

type decoded struct {
	alg     string
	version int
	params  Params
	salt    []byte
	key     []byte
}

func (d decoded) compatible() bool {
	return d.alg == algorithm && d.version == argon2.Version
}

func decode(phc string) (decoded, error) {
	var d decoded
	parts := strings.Split(phc, "$")
	if len(parts) != 6 || parts[0] != "" {
		return d, ErrMalformedHash
	}
	d.alg = parts[1]
	if !strings.HasPrefix(d.alg, "argon2") {
		return d, ErrMalformedHash
	}
	if _, err := fmt.Sscanf(parts[2], "v=%d", &d.version); err != nil {
		return d, ErrMalformedHash
	}
	var m, t, p uint32
	if n, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &m, &t, &p); err != nil || n != 3 {
		return d, ErrMalformedHash
	}
	if m == 0 || t == 0 || p == 0 || p > 255 {
		return d, ErrMalformedHash
	}
	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil || len(salt) == 0 {
		return d, ErrMalformedHash
	}
	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(key) == 0 {
		return d, ErrMalformedHash
	}
	d.salt, d.key = salt, key
	d.params = Params{
		Memory:      m,
		Time:        t,
		Parallelism: uint8(p),
		SaltLen:     uint32(len(salt)),
		KeyLen:      uint32(len(key)),
	}
	return d, nil
}

package password

import (
	"errors"
	"strings"
	"unicode"
)

// ErrWeakPassword: el secreto no cumple la política de complejidad.
var ErrWeakPassword = errors.New("password: does not meet policy")

type Policy struct {
	MinLength     int
	RequireUpper  bool
	RequireLower  bool
	RequireDigit  bool
	RequireSymbol bool
}

// DefaultPolicy: 8+ caracteres, mayúscula, minúscula, dígito y símbolo.
var DefaultPolicy = Policy{
	MinLength:     8,
	RequireUpper:  true,
	RequireLower:  true,
	RequireDigit:  true,
	RequireSymbol: true,
}

// PolicyError lista los motivos de rechazo (too_short, missing_upper, ...).
type PolicyError struct {
	Reasons []string
}

func (e *PolicyError) Error() string {
	return "password: weak (" + strings.Join(e.Reasons, ", ") + ")"
}

func (e *PolicyError) Is(target error) bool { return target == ErrWeakPassword }

func (p Policy) Validate(s string) (ok bool, reasons []string) {
	if len([]rune(s)) < p.MinLength {
		reasons = append(reasons, "too_short")
	}
	var hasU, hasL, hasD, hasS bool
	for _, r := range s {
		switch {
		case unicode.IsUpper(r):
			hasU = true
		case unicode.IsLower(r):
			hasL = true
		case unicode.IsDigit(r):
			hasD = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			hasS = true
		}
	}
	if p.RequireUpper && !hasU {
		reasons = append(reasons, "missing_upper")
	}
	if p.RequireLower && !hasL {
		reasons = append(reasons, "missing_lower")
	}
	if p.RequireDigit && !hasD {
		reasons = append(reasons, "missing_digit")
	}
	if p.RequireSymbol && !hasS {
		reasons = append(reasons, "missing_symbol")
	}
	return len(reasons) == 0, reasons
}

// Check es Validate devolviendo *PolicyError.
func (p Policy) Check(s string) error {
	if ok, reasons := p.Validate(s); !ok {
		return &PolicyError{Reasons: reasons}
	}
	return nil
}

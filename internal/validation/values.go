// Package validation normaliza y valida los value objects de entrada
// (email, dominio, nombre de organización, país, moneda, métodos de pago).
// Cada función devuelve el valor normalizado o un error que envuelve el
// sentinel correspondiente.
package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

var (
	ErrInvalidEmail            = errors.New("invalid email")
	ErrInvalidDomain           = errors.New("invalid domain")
	ErrInvalidOrganizationName = errors.New("invalid organization name")
	ErrInvalidCountryCode      = errors.New("invalid country code")
	ErrInvalidCurrency         = errors.New("invalid currency")
	ErrInvalidPaymentMethod    = errors.New("invalid payment method")
	ErrInvalidName             = errors.New("invalid name")
)

var (
	emailRe    = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	domainRe   = regexp.MustCompile(`^([a-z0-9]+(-[a-z0-9]+)*\.)+[a-z]{2,}$`)
	countryRe  = regexp.MustCompile(`^[A-Z]{2}$`)
	currencyRe = regexp.MustCompile(`^[A-Z]{3}$`)

	// Métodos de pago: minúsculas, empiezan y terminan en [a-z0-9], en el medio
	// se permite [a-z0-9:_.-]. Largo 1..64. Ej: card, bank_transfer, wallet:mp.
	paymentMethodRe = regexp.MustCompile(`^[a-z0-9](?:[a-z0-9:_\.-]{0,62}[a-z0-9])?$`)
)

const maxDomainLength = 253

func invalid(sentinel error, err error) error {
	return fmt.Errorf("%w: %v", sentinel, err)
}

// Email recorta espacios, valida el formato y pasa todo a minúsculas.
func Email(s string) (string, error) {
	s = strings.TrimSpace(s)
	err := validation.Validate(s,
		validation.Required.Error("cannot be empty"),
		validation.Length(3, 254),
		validation.Match(emailRe).Error("must look like local@domain.tld"),
		is.Email,
	)
	if err != nil {
		return "", invalid(ErrInvalidEmail, err)
	}
	return strings.ToLower(s), nil
}

// Domain normaliza a minúsculas y valida contra RFC 1035.
func Domain(s string) (string, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	err := validation.Validate(s,
		validation.Required.Error("cannot be empty"),
		validation.Length(1, maxDomainLength),
		validation.Match(domainRe).Error("must be a valid domain name (e.g. example.com)"),
	)
	if err != nil {
		return "", invalid(ErrInvalidDomain, err)
	}
	return s, nil
}

// OrganizationName recorta y exige 2..100 caracteres con al menos uno alfanumérico.
func OrganizationName(s string) (string, error) {
	s = strings.TrimSpace(s)
	err := validation.Validate(s,
		validation.Required.Error("cannot be empty"),
		validation.RuneLength(2, 100),
		validation.By(hasAlphanumeric),
	)
	if err != nil {
		return "", invalid(ErrInvalidOrganizationName, err)
	}
	return s, nil
}

// Name valida nombres libres (usuario, comercio): 1..100 caracteres.
func Name(s string) (string, error) {
	s = strings.TrimSpace(s)
	if err := validation.Validate(s, validation.Required, validation.RuneLength(1, 100)); err != nil {
		return "", invalid(ErrInvalidName, err)
	}
	return s, nil
}

// CountryCode ISO 3166-1 alpha-2, en mayúsculas.
func CountryCode(s string) (string, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if err := validation.Validate(s, validation.Required, validation.Match(countryRe)); err != nil {
		return "", invalid(ErrInvalidCountryCode, err)
	}
	return s, nil
}

// Currency ISO 4217 alpha-3, en mayúsculas.
func Currency(s string) (string, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if err := validation.Validate(s, validation.Required, validation.Match(currencyRe)); err != nil {
		return "", invalid(ErrInvalidCurrency, err)
	}
	return s, nil
}

// PaymentMethod normaliza a minúsculas y valida el identificador.
func PaymentMethod(s string) (string, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if err := validation.Validate(s, validation.Required, validation.Match(paymentMethodRe)); err != nil {
		return "", invalid(ErrInvalidPaymentMethod, err)
	}
	return s, nil
}

// MaskAPIKey deja visibles los primeros y últimos 4 caracteres.
func MaskAPIKey(key string) string {
	if len(key) <= 8 {
		return strings.Repeat("*", len(key))
	}
	return key[:4] + "..." + key[len(key)-4:]
}

func hasAlphanumeric(value interface{}) error {
	s, _ := value.(string)
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return nil
		}
	}
	return errors.New("must contain at least one alphanumeric character")
}

// IsValidation reporta si err es un error de validación de este paquete.
func IsValidation(err error) bool {
	for _, sentinel := range []error{
		ErrInvalidEmail, ErrInvalidDomain, ErrInvalidOrganizationName, ErrInvalidCountryCode,
		ErrInvalidCurrency, ErrInvalidPaymentMethod, ErrInvalidName,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

// MaskEmail deja la primera letra del usuario y el dominio: "a***@acme.com".
// Para logs; no valida.
func MaskEmail(email string) string {
	email = strings.ToLower(strings.TrimSpace(email))
	at := strings.LastIndexByte(email, '@')
	switch {
	case email == "":
		return ""
	case at <= 0:
		return "***"
	}
	return email[:1] + "***" + email[at:]
}

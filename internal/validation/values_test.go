package validation

import (
	"errors"
	"strings"
	"testing"
)

func TestEmail(t *testing.T) {
	got, err := Email("  John.Doe@EXAMPLE.com ")
	if err != nil {
		t.Fatal(err)
	}
	if got != "john.doe@example.com" {
		t.Fatalf("got %q", got)
	}
	for _, bad := range []string{"", "   ", "no-at-sign", "a@b", "a@@b.com", "a b@c.com"} {
		if _, err := Email(bad); !errors.Is(err, ErrInvalidEmail) {
			t.Fatalf("Email(%q) err = %v", bad, err)
		}
	}
}

func TestDomain(t *testing.T) {
	good := map[string]string{
		"EXAMPLE.COM":       "example.com",
		" sub.my-site.org ": "sub.my-site.org",
		"a1.b2.io":          "a1.b2.io",
	}
	for in, want := range good {
		got, err := Domain(in)
		if err != nil || got != want {
			t.Fatalf("Domain(%q) = %q, %v", in, got, err)
		}
	}
	for _, bad := range []string{"", "localhost", "-bad.com", "bad-.com", "a..com", "example.c", "exa_mple.com", strings.Repeat("a", 250) + ".com"} {
		if _, err := Domain(bad); !errors.Is(err, ErrInvalidDomain) {
			t.Fatalf("Domain(%q) err = %v", bad, err)
		}
	}
}

func TestOrganizationName(t *testing.T) {
	got, err := OrganizationName("  Acme Corporation  ")
	if err != nil || got != "Acme Corporation" {
		t.Fatalf("got %q, %v", got, err)
	}
	for _, bad := range []string{"", "A", "!!!", strings.Repeat("x", 101)} {
		if _, err := OrganizationName(bad); !errors.Is(err, ErrInvalidOrganizationName) {
			t.Fatalf("OrganizationName(%q) err = %v", bad, err)
		}
	}
}

func TestCountryAndCurrency(t *testing.T) {
	if c, err := CountryCode("ar"); err != nil || c != "AR" {
		t.Fatalf("CountryCode = %q, %v", c, err)
	}
	if _, err := CountryCode("ARG"); !errors.Is(err, ErrInvalidCountryCode) {
		t.Fatalf("err = %v", err)
	}
	if c, err := Currency(" usd "); err != nil || c != "USD" {
		t.Fatalf("Currency = %q, %v", c, err)
	}
	if _, err := Currency("US1"); !errors.Is(err, ErrInvalidCurrency) {
		t.Fatalf("err = %v", err)
	}
}

func TestPaymentMethod(t *testing.T) {
	valid := []string{"card", "bank_transfer", "wallet:mp", "a", "CARD"}
	for _, s := range valid {
		if _, err := PaymentMethod(s); err != nil {
			t.Fatalf("PaymentMethod(%q): %v", s, err)
		}
	}
	invalidCases := []string{"", ";hack", "bad space", ":leader", "trailer:", strings.Repeat("a", 65)}
	for _, s := range invalidCases {
		if _, err := PaymentMethod(s); !errors.Is(err, ErrInvalidPaymentMethod) {
			t.Fatalf("PaymentMethod(%q) err = %v", s, err)
		}
	}
}

func TestMaskAPIKey(t *testing.T) {
	if got := MaskAPIKey("abcdefghijklmnop"); got != "abcd...mnop" {
		t.Fatalf("got %q", got)
	}
	if got := MaskAPIKey("short"); got != "*****" {
		t.Fatalf("got %q", got)
	}
}

func TestMaskEmail(t *testing.T) {
	cases := map[string]string{
		" Alice@Acme.com ": "a***@acme.com",
		"bob":              "***",
		"":                 "",
	}
	for in, want := range cases {
		if got := MaskEmail(in); got != want {
			t.Fatalf("MaskEmail(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestIsValidation(t *testing.T) {
	_, err := Email("nope")
	if !IsValidation(err) {
		t.Fatal("email error not classified as validation")
	}
	if IsValidation(errors.New("other")) {
		t.Fatal("unrelated error classified as validation")
	}
}

package jwt

import (
	"errors"
	"strings"
	"testing"
	"time"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time           { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestIssuer(t *testing.T, s Settings) (*Issuer, *fakeClock) {
	t.Helper()
	if s.Secret == "" {
		s.Secret = "test-secret-0123456789"
	}
	iss, err := NewIssuer(s)
	if err != nil {
		t.Fatalf("NewIssuer: %v", err)
	}
	clk := &fakeClock{t: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)}
	iss.Now = clk.Now
	return iss, clk
}

func TestIssueDecode(t *testing.T) {
	iss, clk := newTestIssuer(t, Settings{})

	tok, err := iss.Issue(Claims{ClaimUserID: "u-1", ClaimEmail: "alice@example.com", ClaimStatus: "active"}, 0)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if strings.Count(tok, ".") != 2 {
		t.Fatalf("not a compact JWT: %s", tok)
	}

	claims, err := iss.Decode(tok)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if id, _ := claims.String(ClaimUserID); id != "u-1" {
		t.Fatalf("user_id = %v", claims[ClaimUserID])
	}
	exp, ok := claims.ExpiresAt()
	if !ok || !exp.Equal(clk.t.Add(DefaultTTL)) {
		t.Fatalf("exp = %v, want %v", exp, clk.t.Add(DefaultTTL))
	}
	if !iss.Verify(tok) {
		t.Fatal("Verify = false for fresh token")
	}
}

func TestDecode_Expired(t *testing.T) {
	iss, clk := newTestIssuer(t, Settings{})

	tok, err := iss.Issue(Claims{ClaimUserID: "u-1"}, time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	clk.Advance(61 * time.Second)

	if _, err := iss.Decode(tok); !errors.Is(err, ErrExpiredToken) {
		t.Fatalf("err = %v, want ErrExpiredToken", err)
	}
	if iss.Verify(tok) {
		t.Fatal("Verify = true for expired token")
	}
}

func TestDecode_Invalid(t *testing.T) {
	iss, _ := newTestIssuer(t, Settings{})
	other, _ := newTestIssuer(t, Settings{Secret: "another-secret"})

	foreign, err := other.Issue(Claims{ClaimUserID: "u-1"}, 0)
	if err != nil {
		t.Fatal(err)
	}

	for name, tok := range map[string]string{
		"empty":         "",
		"garbage":       "not.a.token",
		"bad signature": foreign,
	} {
		_, err := iss.Decode(tok)
		if !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("%s: err = %v, want ErrInvalidToken", name, err)
		}
		if errors.Is(err, ErrExpiredToken) {
			t.Fatalf("%s: invalid token classified as expired", name)
		}
	}
}

func TestDecode_AlgorithmMismatch(t *testing.T) {
	hs512, _ := newTestIssuer(t, Settings{Algorithm: "HS512"})
	hs256, _ := newTestIssuer(t, Settings{})

	tok, err := hs512.Issue(Claims{ClaimUserID: "u-1"}, 0)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := hs256.Decode(tok); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("err = %v, want ErrInvalidToken", err)
	}
}

func TestDecode_IssuerEnforced(t *testing.T) {
	a, _ := newTestIssuer(t, Settings{Issuer: "https://a.example"})
	b, _ := newTestIssuer(t, Settings{Issuer: "https://b.example"})

	tok, err := a.Issue(Claims{ClaimUserID: "u-1"}, 0)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := b.Decode(tok); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("err = %v, want ErrInvalidToken", err)
	}
}

func TestRefresh(t *testing.T) {
	iss, clk := newTestIssuer(t, Settings{})

	tok, err := iss.Issue(Claims{ClaimUserID: "u-1", ClaimEmail: "alice@example.com"}, 0)
	if err != nil {
		t.Fatal(err)
	}
	before, _ := iss.Decode(tok)

	clk.Advance(5 * time.Minute)
	refreshed, err := iss.Refresh(tok, 0)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	after, err := iss.Decode(refreshed)
	if err != nil {
		t.Fatalf("Decode refreshed: %v", err)
	}

	for _, k := range []string{ClaimUserID, ClaimEmail} {
		if before[k] != after[k] {
			t.Fatalf("claim %s changed: %v -> %v", k, before[k], after[k])
		}
	}
	e1, _ := before.ExpiresAt()
	e2, _ := after.ExpiresAt()
	if !e2.After(e1) {
		t.Fatalf("refreshed exp %v not after %v", e2, e1)
	}
}

func TestRefresh_ExpiredSource(t *testing.T) {
	iss, clk := newTestIssuer(t, Settings{})

	tok, err := iss.Issue(Claims{ClaimUserID: "u-1"}, time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	clk.Advance(2 * time.Minute)

	_, err = iss.Refresh(tok, 0)
	if !errors.Is(err, ErrIssuance) {
		t.Fatalf("err = %v, want ErrIssuance", err)
	}
	if !errors.Is(err, ErrExpiredToken) {
		t.Fatalf("err = %v, want wrapped ErrExpiredToken", err)
	}
}

func TestNewIssuer_Validation(t *testing.T) {
	if _, err := NewIssuer(Settings{}); err == nil {
		t.Fatal("expected error for empty secret")
	}
	if _, err := NewIssuer(Settings{Secret: "x", Algorithm: "RS256"}); err == nil {
		t.Fatal("expected error for non-HMAC algorithm")
	}
	iss, err := NewIssuer(Settings{Secret: "x", Algorithm: "hs384"})
	if err != nil {
		t.Fatal(err)
	}
	if iss.Algorithm() != "HS384" || iss.AccessTTL != DefaultTTL {
		t.Fatalf("alg=%s ttl=%v", iss.Algorithm(), iss.AccessTTL)
	}
}

func TestIssueWithExpiry(t *testing.T) {
	iss, clk := newTestIssuer(t, Settings{})
	clk.t = clk.t.Add(750 * time.Millisecond)

	tok, exp, err := iss.IssueWithExpiry(Claims{ClaimUserID: "u-1", ClaimEmail: "alice@example.com"}, 10*time.Minute)
	if err != nil {
		t.Fatalf("IssueWithExpiry: %v", err)
	}
	claims, err := iss.Decode(tok)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	got, ok := claims.ExpiresAt()
	if !ok || !got.Equal(exp) {
		t.Fatalf("exp claim = %v, returned = %v", got, exp)
	}
	if want := clk.Now().Add(10 * time.Minute).Truncate(time.Second); !exp.Equal(want) {
		t.Fatalf("exp = %v, want %v", exp, want)
	}
}

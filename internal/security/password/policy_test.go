package password

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestPolicy_Check(t *testing.T) {
	t.Parallel()

	if err := DefaultPolicy.Check("Secret123!"); err != nil {
		t.Fatalf("strong password rejected: %v", err)
	}

	err := DefaultPolicy.Check("abc")
	if !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("err = %v, want ErrWeakPassword", err)
	}
	var pe *PolicyError
	if !errors.As(err, &pe) {
		t.Fatalf("expected *PolicyError, got %T", err)
	}
	want := map[string]bool{"too_short": true, "missing_upper": true, "missing_digit": true, "missing_symbol": true}
	if len(pe.Reasons) != len(want) {
		t.Fatalf("reasons = %v", pe.Reasons)
	}
	for _, r := range pe.Reasons {
		if !want[r] {
			t.Fatalf("unexpected reason %q", r)
		}
	}
}

func TestBlacklist(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "common.txt")
	if err := os.WriteFile(path, []byte("# comunes\nPassword1!\n\nqwerty\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	bl, err := LoadBlacklist(path)
	if err != nil {
		t.Fatalf("LoadBlacklist: %v", err)
	}
	if bl.Len() != 2 {
		t.Fatalf("Len = %d, want 2", bl.Len())
	}
	if !bl.Contains(" password1! ") {
		t.Fatal("expected case-insensitive match")
	}
	if bl.Contains("Secret123!") {
		t.Fatal("unexpected match")
	}

	var nilList *Blacklist
	if nilList.Contains("x") {
		t.Fatal("nil blacklist must not match")
	}
}

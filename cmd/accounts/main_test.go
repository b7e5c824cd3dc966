package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/accounts/internal/jwt"
	"github.com/dropDatabas3/accounts/internal/security/password"
)

const testSecret = "cmd-test-secret-cmd-test-secret-0123"

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("ARGON2_MEMORY_KIB", "1024")
	t.Setenv("ARGON2_TIME", "1")
	t.Setenv("ARGON2_PARALLELISM", "1")

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestHashCmd(t *testing.T) {
	out, err := run(t, "S3cure-pass!\n", "hash")
	require.NoError(t, err)

	phc := strings.TrimSpace(out)
	require.True(t, strings.HasPrefix(phc, "$argon2id$"), phc)
	ok, err := password.NewHasher(password.Params{}).Verify("S3cure-pass!", phc)
	require.NoError(t, err)
	require.True(t, ok)

	_, err = run(t, "", "hash")
	require.Error(t, err)
}

func TestTokenDecodeCmd(t *testing.T) {
	iss, err := jwt.NewIssuer(jwt.Settings{Secret: testSecret})
	require.NoError(t, err)
	tok, err := iss.Issue(jwt.Claims{jwt.ClaimUserID: "u-1", jwt.ClaimEmail: "a@b.com"}, 0)
	require.NoError(t, err)

	out, err := run(t, "", "token", "decode", tok)
	require.NoError(t, err)
	var claims map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &claims))
	require.Equal(t, "u-1", claims["user_id"])

	_, err = run(t, "", "token", "decode", "not-a-token")
	require.Error(t, err)
}

func TestOrgCreateCmd(t *testing.T) {
	out, err := run(t, "", "org", "create", "--name", "Acme", "--domain", "acme.com", "--activate")
	require.NoError(t, err)
	var org map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &org))
	require.Equal(t, "active", org["status"])

	_, err = run(t, "", "org", "create", "--name", "Acme")
	require.Error(t, err, "domain is required")
}

func TestConfigValidationFails(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	cmd := newRootCmd()
	cmd.SetArgs([]string{"hash"})
	cmd.SetIn(strings.NewReader("x\n"))
	cmd.SetOut(&bytes.Buffer{})
	require.Error(t, cmd.Execute())
}

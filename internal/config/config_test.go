package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeYAML(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(p, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestLoad_Defaults(t *testing.T) {
	c, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Server.Addr != ":8080" || c.Storage.Driver != "memory" {
		t.Fatalf("addr=%q driver=%q", c.Server.Addr, c.Storage.Driver)
	}
	if c.JWT.Algorithm != "HS256" || c.JWT.AccessTTL != 30*time.Minute {
		t.Fatalf("jwt = %+v", c.JWT)
	}
	if c.Rate.Login.Limit != 10 || c.Rate.Login.Window != 15*time.Minute {
		t.Fatalf("rate.login = %+v", c.Rate.Login)
	}
}

func TestLoad_YAMLAndEnv(t *testing.T) {
	p := writeYAML(t, `
app:
  app_env: staging
storage:
  driver: sqlite
  dsn: "file:accounts.db"
  migrate: true
jwt:
  secret: from-yaml
  access_ttl: 10m
rate:
  enabled: true
  login:
    limit: 3
`)
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("RATE_LOGIN_WINDOW", "2m")
	t.Setenv("ARGON2_MEMORY_KIB", "19456")

	c, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.App.Env != "staging" || c.Storage.Driver != "sqlite" || !c.Storage.Migrate {
		t.Fatalf("app/storage = %+v %+v", c.App, c.Storage)
	}
	if c.JWT.Secret != "from-env" {
		t.Fatalf("secret = %q, env must win over yaml", c.JWT.Secret)
	}
	if c.JWT.AccessTTL != 10*time.Minute {
		t.Fatalf("access_ttl = %v", c.JWT.AccessTTL)
	}
	if c.Rate.Login.Limit != 3 || c.Rate.Login.Window != 2*time.Minute {
		t.Fatalf("rate.login = %+v", c.Rate.Login)
	}
	if c.Argon2.MemoryKiB != 19456 {
		t.Fatalf("argon2 memory = %d", c.Argon2.MemoryKiB)
	}
	if err := c.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestLoad_BadYAML(t *testing.T) {
	if _, err := Load(writeYAML(t, "server: [")); err == nil {
		t.Fatal("expected parse error")
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestValidate(t *testing.T) {
	c, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	err = c.Validate()
	if err == nil || !strings.Contains(err.Error(), "jwt.secret is required") {
		t.Fatalf("err = %v", err)
	}

	c.JWT.Secret = "short"
	c.App.Env = "prod"
	c.Storage.Driver = "postgres"
	c.JWT.Algorithm = "RS256"
	c.Rate.Enabled = true
	c.Rate.Backend = "redis"

	msg := c.Validate().Error()
	for _, want := range []string{"storage.dsn", "at least 32 bytes", "jwt.algorithm", "redis.addr"} {
		if !strings.Contains(msg, want) {
			t.Fatalf("missing %q in %q", want, msg)
		}
	}
}

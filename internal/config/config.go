package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	App struct {
		// dev | staging | prod
		Env string `yaml:"app_env"`
	} `yaml:"app"`

	Server struct {
		Addr               string        `yaml:"addr"`
		CORSAllowedOrigins []string      `yaml:"cors_allowed_origins"`
		ReadTimeout        time.Duration `yaml:"read_timeout"`
		WriteTimeout       time.Duration `yaml:"write_timeout"`

		// AdminToken habilita las rutas de operador (alta y estado de
		// organizaciones) vía header X-Admin-Token. Vacío = deshabilitadas.
		AdminToken string `yaml:"admin_token"`
	} `yaml:"server"`

	Storage struct {
		// memory | postgres | sqlite
		Driver          string        `yaml:"driver"`
		DSN             string        `yaml:"dsn"`
		Migrate         bool          `yaml:"migrate"`
		MaxOpenConns    int           `yaml:"max_open_conns"`
		MaxIdleConns    int           `yaml:"max_idle_conns"`
		ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	} `yaml:"storage"`

	JWT struct {
		Secret    string        `yaml:"secret"`
		Algorithm string        `yaml:"algorithm"`
		Issuer    string        `yaml:"issuer"`
		AccessTTL time.Duration `yaml:"access_ttl"`
	} `yaml:"jwt"`

	Argon2 struct {
		MemoryKiB   uint32 `yaml:"memory_kib"`
		Time        uint32 `yaml:"time"`
		Parallelism uint8  `yaml:"parallelism"`
	} `yaml:"argon2"`

	Password struct {
		// Archivo con una password prohibida por línea. Vacío = sin blacklist.
		BlacklistPath string `yaml:"blacklist_path"`
	} `yaml:"password"`

	Rate struct {
		Enabled bool `yaml:"enabled"`
		// memory | redis
		Backend string `yaml:"backend"`

		// Intentos de login por email.
		Login struct {
			Limit  int           `yaml:"limit"`
			Window time.Duration `yaml:"window"`
		} `yaml:"login"`

		// Requests por IP contra /v1/auth/*.
		IP struct {
			Limit  int           `yaml:"limit"`
			Window time.Duration `yaml:"window"`
		} `yaml:"ip"`
	} `yaml:"rate"`

	Redis struct {
		Addr     string `yaml:"addr"`
		DB       int    `yaml:"db"`
		Password string `yaml:"password"`
		Prefix   string `yaml:"prefix"`
	} `yaml:"redis"`

	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
}

// Load lee el YAML (si path no está vacío), completa defaults y aplica
// overrides de entorno. No valida: llamar Validate.
func Load(path string) (*Config, error) {
	var c Config
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(b, &c); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	c.applyEnvOverrides()
	c.applyDefaults()
	return &c, nil
}

// sane defaults
func (c *Config) applyDefaults() {
	if c.App.Env == "" {
		c.App.Env = "dev"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 10 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 15 * time.Second
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "memory"
	}
	if c.JWT.Algorithm == "" {
		c.JWT.Algorithm = "HS256"
	}
	if c.JWT.AccessTTL == 0 {
		c.JWT.AccessTTL = 30 * time.Minute
	}
	if c.Rate.Backend == "" {
		c.Rate.Backend = "memory"
	}
	if c.Rate.Login.Limit == 0 {
		c.Rate.Login.Limit = 10
	}
	if c.Rate.Login.Window == 0 {
		c.Rate.Login.Window = 15 * time.Minute
	}
	if c.Rate.IP.Limit == 0 {
		c.Rate.IP.Limit = 60
	}
	if c.Rate.IP.Window == 0 {
		c.Rate.IP.Window = time.Minute
	}
	if c.Redis.Prefix == "" {
		c.Redis.Prefix = "accounts:rl:"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// IsProd reporta si APP_ENV es prod.
func (c *Config) IsProd() bool { return c.App.Env == "prod" }

// ---- Helpers env ----

func getEnvStr(key string) (string, bool) {
	v := os.Getenv(key)
	return v, v != ""
}
func getEnvInt(key string) (int, bool) {
	if s, ok := getEnvStr(key); ok {
		if i, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return i, true
		}
	}
	return 0, false
}
func getEnvUint(key string, bits int) (uint64, bool) {
	if s, ok := getEnvStr(key); ok {
		if u, err := strconv.ParseUint(strings.TrimSpace(s), 10, bits); err == nil {
			return u, true
		}
	}
	return 0, false
}
func getEnvBool(key string) (bool, bool) {
	if s, ok := getEnvStr(key); ok {
		if b, err := strconv.ParseBool(strings.TrimSpace(s)); err == nil {
			return b, true
		}
	}
	return false, false
}
func getEnvDur(key string) (time.Duration, bool) {
	if s, ok := getEnvStr(key); ok {
		if d, err := time.ParseDuration(strings.TrimSpace(s)); err == nil {
			return d, true
		}
	}
	return 0, false
}
func getEnvCSV(key string) ([]string, bool) {
	if s, ok := getEnvStr(key); ok {
		parts := strings.Split(s, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				out = append(out, p)
			}
		}
		return out, true
	}
	return nil, false
}

// applyEnvOverrides: pisa el YAML con variables de entorno.
func (c *Config) applyEnvOverrides() {
	// APP
	if v, ok := getEnvStr("APP_ENV"); ok {
		c.App.Env = strings.ToLower(v)
	}

	// SERVER
	if v, ok := getEnvStr("SERVER_ADDR"); ok {
		c.Server.Addr = v
	}
	if v, ok := getEnvCSV("SERVER_CORS_ALLOWED_ORIGINS"); ok {
		c.Server.CORSAllowedOrigins = v
	}
	if v, ok := getEnvStr("SERVER_ADMIN_TOKEN"); ok {
		c.Server.AdminToken = v
	}

	// STORAGE
	if v, ok := getEnvStr("STORAGE_DRIVER"); ok {
		c.Storage.Driver = strings.ToLower(v)
	}
	if v, ok := getEnvStr("STORAGE_DSN"); ok {
		c.Storage.DSN = v
	}
	if v, ok := getEnvBool("STORAGE_MIGRATE"); ok {
		c.Storage.Migrate = v
	}
	if v, ok := getEnvInt("STORAGE_MAX_OPEN_CONNS"); ok {
		c.Storage.MaxOpenConns = v
	}
	if v, ok := getEnvInt("STORAGE_MAX_IDLE_CONNS"); ok {
		c.Storage.MaxIdleConns = v
	}
	if v, ok := getEnvDur("STORAGE_CONN_MAX_LIFETIME"); ok {
		c.Storage.ConnMaxLifetime = v
	}

	// JWT
	if v, ok := getEnvStr("JWT_SECRET"); ok {
		c.JWT.Secret = v
	}
	if v, ok := getEnvStr("JWT_ALGORITHM"); ok {
		c.JWT.Algorithm = strings.ToUpper(v)
	}
	if v, ok := getEnvStr("JWT_ISSUER"); ok {
		c.JWT.Issuer = v
	}
	if v, ok := getEnvDur("JWT_ACCESS_TTL"); ok {
		c.JWT.AccessTTL = v
	}

	// ARGON2
	if v, ok := getEnvUint("ARGON2_MEMORY_KIB", 32); ok {
		c.Argon2.MemoryKiB = uint32(v)
	}
	if v, ok := getEnvUint("ARGON2_TIME", 32); ok {
		c.Argon2.Time = uint32(v)
	}
	if v, ok := getEnvUint("ARGON2_PARALLELISM", 8); ok {
		c.Argon2.Parallelism = uint8(v)
	}
	if v, ok := getEnvStr("PASSWORD_BLACKLIST_PATH"); ok {
		c.Password.BlacklistPath = v
	}

	// RATE
	if v, ok := getEnvBool("RATE_ENABLED"); ok {
		c.Rate.Enabled = v
	}
	if v, ok := getEnvStr("RATE_BACKEND"); ok {
		c.Rate.Backend = strings.ToLower(v)
	}
	if v, ok := getEnvInt("RATE_LOGIN_LIMIT"); ok {
		c.Rate.Login.Limit = v
	}
	if v, ok := getEnvDur("RATE_LOGIN_WINDOW"); ok {
		c.Rate.Login.Window = v
	}
	if v, ok := getEnvInt("RATE_IP_LIMIT"); ok {
		c.Rate.IP.Limit = v
	}
	if v, ok := getEnvDur("RATE_IP_WINDOW"); ok {
		c.Rate.IP.Window = v
	}

	// REDIS
	if v, ok := getEnvStr("REDIS_ADDR"); ok {
		c.Redis.Addr = v
	}
	if v, ok := getEnvInt("REDIS_DB"); ok {
		c.Redis.DB = v
	}
	if v, ok := getEnvStr("REDIS_PASSWORD"); ok {
		c.Redis.Password = v
	}
	if v, ok := getEnvStr("REDIS_PREFIX"); ok {
		c.Redis.Prefix = v
	}

	// LOG
	if v, ok := getEnvStr("LOG_LEVEL"); ok {
		c.Log.Level = strings.ToLower(v)
	}
}

// minProdSecret es el largo mínimo del secreto JWT en prod.
const minProdSecret = 32

// Validate chequea los valores críticos. Devuelve todos los problemas juntos.
func (c *Config) Validate() error {
	var errs []error

	switch c.Storage.Driver {
	case "memory":
	case "postgres", "sqlite":
		if c.Storage.DSN == "" {
			errs = append(errs, fmt.Errorf("storage.dsn is required for driver %q", c.Storage.Driver))
		}
	default:
		errs = append(errs, fmt.Errorf("storage.driver %q is not supported", c.Storage.Driver))
	}

	switch {
	case c.JWT.Secret == "":
		errs = append(errs, errors.New("jwt.secret is required"))
	case c.IsProd() && len(c.JWT.Secret) < minProdSecret:
		errs = append(errs, fmt.Errorf("jwt.secret must have at least %d bytes in prod", minProdSecret))
	}
	switch c.JWT.Algorithm {
	case "HS256", "HS384", "HS512":
	default:
		errs = append(errs, fmt.Errorf("jwt.algorithm %q is not supported", c.JWT.Algorithm))
	}
	if c.IsProd() && c.Server.AdminToken != "" && len(c.Server.AdminToken) < minProdSecret {
		errs = append(errs, fmt.Errorf("server.admin_token must have at least %d bytes in prod", minProdSecret))
	}
	if c.JWT.AccessTTL <= 0 {
		errs = append(errs, errors.New("jwt.access_ttl must be positive"))
	}

	if c.Rate.Enabled {
		switch c.Rate.Backend {
		case "memory":
		case "redis":
			if c.Redis.Addr == "" {
				errs = append(errs, errors.New("redis.addr is required for rate.backend redis"))
			}
		default:
			errs = append(errs, fmt.Errorf("rate.backend %q is not supported", c.Rate.Backend))
		}
		if c.Rate.Login.Limit < 1 || c.Rate.Login.Window <= 0 {
			errs = append(errs, errors.New("rate.login needs a positive limit and window"))
		}
		if c.Rate.IP.Limit < 1 || c.Rate.IP.Window <= 0 {
			errs = append(errs, errors.New("rate.ip needs a positive limit and window"))
		}
	}
	return errors.Join(errs...)
}

// Package app arma el servicio a partir de la configuración: storage,
// hasher, issuer, limiter, servicios y router.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	rdb "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/dropDatabas3/accounts/internal/accounts"
	"github.com/dropDatabas3/accounts/internal/auth"
	"github.com/dropDatabas3/accounts/internal/config"
	"github.com/dropDatabas3/accounts/internal/http/router"
	"github.com/dropDatabas3/accounts/internal/jwt"
	"github.com/dropDatabas3/accounts/internal/metrics"
	"github.com/dropDatabas3/accounts/internal/observability/logger"
	"github.com/dropDatabas3/accounts/internal/rate"
	"github.com/dropDatabas3/accounts/internal/security/password"
	"github.com/dropDatabas3/accounts/internal/store"
)

// Version la setea el build con -ldflags.
var Version = "dev"

// Container agrupa las dependencias armadas.
type Container struct {
	Config *config.Config
	Store  *store.Manager
	Hasher *password.Hasher
	Issuer *jwt.Issuer

	Auth          *auth.Service
	Organizations accounts.OrganizationService
	Users         accounts.UserService
	Merchants     accounts.MerchantService

	closers []func() error
}

// Build arma el Container. El storage se conecta acá (no lazy) para fallar
// rápido si el DSN es inválido.
func Build(ctx context.Context, cfg *config.Config) (_ *Container, err error) {
	log := logger.From(ctx).With(logger.Layer("app"), logger.Op("Build"))

	c := &Container{Config: cfg}
	defer func() {
		if err != nil {
			_ = c.Close()
		}
	}()

	// Paso 1: storage
	c.Store = store.NewManager(store.AdapterConfig{
		Name:            cfg.Storage.Driver,
		DSN:             cfg.Storage.DSN,
		MaxOpenConns:    cfg.Storage.MaxOpenConns,
		MaxIdleConns:    cfg.Storage.MaxIdleConns,
		ConnMaxLifetime: cfg.Storage.ConnMaxLifetime,
		Migrate:         cfg.Storage.Migrate,
	})
	c.closers = append(c.closers, c.Store.Close)
	conn, err := c.Store.Open(ctx)
	if err != nil {
		return nil, fmt.Errorf("app: open storage: %w", err)
	}

	// Paso 2: primitivas de seguridad
	c.Hasher = password.NewHasher(password.Params{
		Memory:      cfg.Argon2.MemoryKiB,
		Time:        cfg.Argon2.Time,
		Parallelism: cfg.Argon2.Parallelism,
	})
	c.Issuer, err = jwt.NewIssuer(jwt.Settings{
		Secret:    cfg.JWT.Secret,
		Algorithm: cfg.JWT.Algorithm,
		AccessTTL: cfg.JWT.AccessTTL,
		Issuer:    cfg.JWT.Issuer,
	})
	if err != nil {
		return nil, fmt.Errorf("app: jwt issuer: %w", err)
	}

	var blacklist *password.Blacklist
	if p := cfg.Password.BlacklistPath; p != "" {
		if blacklist, err = password.LoadBlacklist(p); err != nil {
			return nil, fmt.Errorf("app: password blacklist: %w", err)
		}
	}

	// Paso 3: limiter de login
	limiter, err := c.buildLimiter(ctx)
	if err != nil {
		return nil, err
	}

	// Paso 4: servicios
	c.Auth = auth.NewService(auth.Deps{
		Users:     conn.Users(),
		Hasher:    c.Hasher,
		Issuer:    c.Issuer,
		Limiter:   limiter,
		AccessTTL: cfg.JWT.AccessTTL,
	})
	c.Organizations = accounts.NewOrganizationService(conn.Organizations(), conn.Merchants(), nil)
	c.Users = accounts.NewUserService(accounts.UserDeps{
		Users:         conn.Users(),
		Organizations: conn.Organizations(),
		Hasher:        c.Hasher,
		Blacklist:     blacklist,
	})
	c.Merchants = accounts.NewMerchantService(conn.Merchants(), conn.Organizations(), nil)

	if err = metrics.Register(nil); err != nil {
		return nil, fmt.Errorf("app: metrics: %w", err)
	}

	log.Info("app built",
		logger.Backend(cfg.Storage.Driver),
		zap.String("jwt_alg", c.Issuer.Algorithm()),
		zap.Bool("rate_limit", cfg.Rate.Enabled),
		zap.Bool("operator_routes", cfg.Server.AdminToken != ""),
	)
	return c, nil
}

func (c *Container) buildLimiter(ctx context.Context) (rate.Limiter, error) {
	r := c.Config.Rate
	if !r.Enabled {
		return nil, nil
	}
	if r.Backend != "redis" {
		return rate.NewMemoryLimiter(r.Login.Limit, r.Login.Window), nil
	}

	rc := c.Config.Redis
	client := rdb.NewClient(&rdb.Options{Addr: rc.Addr, DB: rc.DB, Password: rc.Password})
	c.closers = append(c.closers, client.Close)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("app: redis ping: %w", err)
	}
	return rate.NewRedisLimiter(client, rc.Prefix, r.Login.Limit, r.Login.Window), nil
}

// Handler arma el router HTTP.
func (c *Container) Handler() http.Handler {
	cfg := c.Config
	d := router.Deps{
		Auth:          c.Auth,
		Organizations: c.Organizations,
		Users:         c.Users,
		Merchants:     c.Merchants,
		Store:         c.Store,
		AdminToken:    cfg.Server.AdminToken,
		CORSOrigins:   cfg.Server.CORSAllowedOrigins,
		Prod:          cfg.IsProd(),
		Version:       Version,
	}
	if cfg.Rate.Enabled {
		d.IPLimit, d.IPWindow = cfg.Rate.IP.Limit, cfg.Rate.IP.Window
	}
	return router.New(d)
}

// Close libera recursos en orden inverso al alta.
func (c *Container) Close() error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

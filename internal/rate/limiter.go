// Package rate limita intentos por clave (ej: login por email) con ventanas
// fijas. Hay dos implementaciones: en memoria (un proceso) y Redis (varios).
package rate

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	rdb "github.com/redis/go-redis/v9"
)

type Result struct {
	Allowed     bool
	Remaining   int64
	RetryAfter  time.Duration
	WindowTTL   time.Duration
	CurrentHits int64
}

type Limiter interface {
	// Allow registra un hit para key y dice si está dentro del límite.
	Allow(ctx context.Context, key string) (Result, error)

	// Reset borra los hits de key (ej: después de un login exitoso).
	Reset(ctx context.Context, key string) error
}

func normalizeKey(key string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(key)), " ", "_")
}

func result(hits, limit int64, ttl, window time.Duration) Result {
	res := Result{
		Allowed:     hits <= limit,
		Remaining:   max(0, limit-hits),
		CurrentHits: hits,
		WindowTTL:   ttl,
	}
	if !res.Allowed {
		res.RetryAfter = ttl
		if res.RetryAfter <= 0 {
			res.RetryAfter = time.Duration(math.Ceil(window.Seconds())) * time.Second
		}
	}
	return res
}

// RedisLimiter: fixed window sencillo (INCR + EXPIRE NX)
type RedisLimiter struct {
	Client *rdb.Client
	Prefix string
	Max    int64
	Window time.Duration
}

func NewRedisLimiter(client *rdb.Client, prefix string, max int, window time.Duration) *RedisLimiter {
	if prefix == "" {
		prefix = "rl:"
	}
	return &RedisLimiter{
		Client: client,
		Prefix: prefix,
		Max:    int64(max),
		Window: window,
	}
}

func (l *RedisLimiter) key(key string) string {
	return l.Prefix + normalizeKey(key)
}

// Allow hace INCR + EXPIRE NX + TTL en una sola transacción: la ventana
// arranca con el primer hit y una clave sin TTL lo recupera en el siguiente.
func (l *RedisLimiter) Allow(ctx context.Context, key string) (Result, error) {
	redisKey := l.key(key)

	pipe := l.Client.TxPipeline()
	incr := pipe.Incr(ctx, redisKey)
	pipe.ExpireNX(ctx, redisKey, l.Window)
	ttl := pipe.TTL(ctx, redisKey)
	if _, err := pipe.Exec(ctx); err != nil {
		return Result{}, fmt.Errorf("rate: redis: %w", err)
	}
	return result(incr.Val(), l.Max, ttl.Val(), l.Window), nil
}

func (l *RedisLimiter) Reset(ctx context.Context, key string) error {
	if err := l.Client.Del(ctx, l.key(key)).Err(); err != nil {
		return fmt.Errorf("rate: redis: %w", err)
	}
	return nil
}

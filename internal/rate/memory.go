package rate

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryLimiter es el fixed window en proceso, sobre go-cache. Cada clave
// vive una ventana desde su primer hit.
type MemoryLimiter struct {
	c      *gocache.Cache
	Max    int64
	Window time.Duration
}

func NewMemoryLimiter(max int, window time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		c:      gocache.New(window, time.Minute),
		Max:    int64(max),
		Window: window,
	}
}

func (l *MemoryLimiter) Allow(ctx context.Context, key string) (Result, error) {
	k := normalizeKey(key)
	for {
		if err := l.c.Add(k, int64(1), l.Window); err == nil {
			return result(1, l.Max, l.Window, l.Window), nil
		}
		hits, err := l.c.IncrementInt64(k, 1)
		if err != nil {
			// expiró entre Add e Increment
			continue
		}
		_, exp, _ := l.c.GetWithExpiration(k)
		return result(hits, l.Max, time.Until(exp), l.Window), nil
	}
}

func (l *MemoryLimiter) Reset(ctx context.Context, key string) error {
	l.c.Delete(normalizeKey(key))
	return nil
}

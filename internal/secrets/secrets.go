package secrets

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"
)

// Provider resolves a named secret at runtime.
type Provider interface {
	Get(ctx context.Context, name string) (string, error)
}

// EnvProvider reads secrets from environment variables. Prefix is prepended to
// the secret name.
type EnvProvider struct {
	Prefix string
}

func (p EnvProvider) Get(_ context.Context, name string) (string, error) {
	v := os.Getenv(p.Prefix + name)
	if v == "" {
		return "", fmt.Errorf("secret %s not found", name)
	}
	return v, nil
}

// StaticProvider serves secrets from a fixed map. Used in tests.
type StaticProvider map[string]string

func (p StaticProvider) Get(_ context.Context, name string) (string, error) {
	v, ok := p[name]
	if !ok {
		return "", fmt.Errorf("secret %s not found", name)
	}
	return v, nil
}

type cachedSecret struct {
	value     string
	expiresAt time.Time
}

// Cache wraps a Provider with a TTL cache so repeated lookups do not hit the
// backing store, while expiry still allows secret rotation.
type Cache struct {
	provider Provider
	ttl      time.Duration

	mu    sync.Mutex
	cache map[string]*cachedSecret
	now   func() time.Time
}

// Cached wraps the provider with the given TTL.
func Cached(p Provider, ttl time.Duration) *Cache {
	return &Cache{
		provider: p,
		ttl:      ttl,
		cache:    make(map[string]*cachedSecret),
		now:      time.Now,
	}
}

// Get returns the cached value when fresh, otherwise asks the provider and
// caches the result. Expired entries are dropped while the lock is held.
func (c *Cache) Get(ctx context.Context, name string) (string, error) {
	c.mu.Lock()
	now := c.now()
	for k, entry := range c.cache {
		if now.After(entry.expiresAt) {
			delete(c.cache, k)
		}
	}
	if entry, ok := c.cache[name]; ok {
		c.mu.Unlock()
		return entry.value, nil
	}
	c.mu.Unlock()

	value, err := c.provider.Get(ctx, name)
	if err != nil {
		return "", err
	}
	c.mu.Lock()
	c.cache[name] = &cachedSecret{value: value, expiresAt: c.now().Add(c.ttl)}
	c.mu.Unlock()
	return value, nil
}

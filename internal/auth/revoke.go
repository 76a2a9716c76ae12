package auth

import (
	"context"
	"sync"
	"time"
)

// Revoker remembers signed-out tokens by jti until they would have
// expired anyway.
type Revoker interface {
	Revoke(ctx context.Context, jti string, until time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

const revokedKeyPrefix = "taskhub:revoked:"

// KVStore is the slice of a Redis client the revoker needs.
type KVStore interface {
	SetUntil(ctx context.Context, key, val string, until time.Time) error
	Exists(ctx context.Context, key string) (bool, error)
}

type RedisRevoker struct {
	kv KVStore
}

func NewRedisRevoker(kv KVStore) *RedisRevoker {
	return &RedisRevoker{kv: kv}
}

func (r *RedisRevoker) Revoke(ctx context.Context, jti string, until time.Time) error {
	return r.kv.SetUntil(ctx, revokedKeyPrefix+jti, "1", until)
}

func (r *RedisRevoker) IsRevoked(ctx context.Context, jti string) (bool, error) {
	return r.kv.Exists(ctx, revokedKeyPrefix+jti)
}

// MemoryRevoker is the single-process fallback used when no Redis is
// configured.
type MemoryRevoker struct {
	mu  sync.RWMutex
	m   map[string]time.Time
	now func() time.Time
}

func NewMemoryRevoker() *MemoryRevoker {
	return &MemoryRevoker{
		m:   make(map[string]time.Time),
		now: time.Now,
	}
}

func (r *MemoryRevoker) Revoke(_ context.Context, jti string, until time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	for k, exp := range r.m {
		if now.After(exp) {
			delete(r.m, k)
		}
	}

	if until.After(now) {
		r.m[jti] = until
	}
	return nil
}

func (r *MemoryRevoker) IsRevoked(_ context.Context, jti string) (bool, error) {
	r.mu.RLock()
	exp, ok := r.m[jti]
	r.mu.RUnlock()

	if !ok {
		return false, nil
	}

	if r.now().After(exp) {
		r.mu.Lock()
		delete(r.m, jti)
		r.mu.Unlock()
		return false, nil
	}

	return true, nil
}

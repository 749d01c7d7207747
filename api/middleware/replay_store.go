package middleware

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	pkgredis "github.com/angelmondragon/feiralocal-backend/pkg/redis"
)

const defaultReplayEntries = 1024

// RedisReplayStore keeps replay records under fl:idempotency:<key>.
type RedisReplayStore struct {
	client *pkgredis.Client
	ttl    time.Duration
}

func NewRedisReplayStore(client *pkgredis.Client, ttl time.Duration) *RedisReplayStore {
	if ttl <= 0 {
		ttl = DefaultIdempotencyTTL
	}
	return &RedisReplayStore{client: client, ttl: ttl}
}

func (s *RedisReplayStore) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := s.client.Get(ctx, s.client.IdempotencyKey("", key))
	if errors.Is(err, pkgredis.ErrNil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (s *RedisReplayStore) SetNX(ctx context.Context, key, value string) (bool, error) {
	return s.client.SetNX(ctx, s.client.IdempotencyKey("", key), value, s.ttl)
}

// MemoryReplayStore is a bounded, expiring in-process store for
// single-instance deployments.
type MemoryReplayStore struct {
	mu    sync.Mutex
	cache *expirable.LRU[string, string]
}

func NewMemoryReplayStore(size int, ttl time.Duration) *MemoryReplayStore {
	if size <= 0 {
		size = defaultReplayEntries
	}
	if ttl <= 0 {
		ttl = DefaultIdempotencyTTL
	}
	return &MemoryReplayStore{cache: expirable.NewLRU[string, string](size, nil, ttl)}
}

func (s *MemoryReplayStore) Get(_ context.Context, key string) (string, bool, error) {
	v, ok := s.cache.Get(key)
	return v, ok, nil
}

func (s *MemoryReplayStore) SetNX(_ context.Context, key, value string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cache.Contains(key) {
		return false, nil
	}
	s.cache.Add(key, value)
	return true, nil
}

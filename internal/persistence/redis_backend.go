package persistence

import (
	"context"
	"errors"

	redisclient "github.com/angelmondragon/feiralocal-backend/pkg/redis"
)

// RedisBackend stores slots under fl:state[:session]:<key>.
type RedisBackend struct {
	client  *redisclient.Client
	session string
}

// NewRedisBackend scopes keys to session; an empty session shares one
// namespace across processes.
func NewRedisBackend(client *redisclient.Client, session string) *RedisBackend {
	return &RedisBackend{client: client, session: session}
}

func (r *RedisBackend) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := r.client.Get(ctx, r.client.StateKey(r.session, key))
	if errors.Is(err, redisclient.ErrNil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (r *RedisBackend) Set(ctx context.Context, key, value string) error {
	return r.client.Set(ctx, r.client.StateKey(r.session, key), value, 0)
}

func (r *RedisBackend) Delete(ctx context.Context, keys ...string) error {
	namespaced := make([]string, 0, len(keys))
	for _, k := range keys {
		namespaced = append(namespaced, r.client.StateKey(r.session, k))
	}
	return r.client.Del(ctx, namespaced...)
}

func (r *RedisBackend) Ping(ctx context.Context) error {
	return r.client.Ping(ctx)
}

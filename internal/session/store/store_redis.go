package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"webshop/pkg/domain"
)

const (
	keyPrefix         = "localstate:"
	fieldLoggedIn     = "logged_in"
	fieldRefreshToken = "refresh_token"
	fieldUpdatedAt    = "updated_at"
)

// RedisStore keeps local state in one hash per installation. Every write
// renews the key's TTL, so Redis expiry does the cleanup.
type RedisStore struct {
	rdb  redis.UniversalClient
	opts options
}

func NewRedis(rdb redis.UniversalClient, opts ...Option) *RedisStore {
	return &RedisStore{rdb: rdb, opts: newOptions(opts)}
}

func key(installID domain.InstallID) string {
	return keyPrefix + installID.String()
}

func (s *RedisStore) LoggedIn(ctx context.Context, installID domain.InstallID) (bool, error) {
	v, err := s.rdb.HGet(ctx, key(installID), fieldLoggedIn).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis hget logged_in: %w", err)
	}
	return v == "1", nil
}

func (s *RedisStore) SetLoggedIn(ctx context.Context, installID domain.InstallID, loggedIn bool) error {
	v := "0"
	if loggedIn {
		v = "1"
	}
	return s.write(ctx, installID, fieldLoggedIn, v)
}

func (s *RedisStore) RefreshToken(ctx context.Context, installID domain.InstallID) (string, error) {
	sealed, err := s.rdb.HGet(ctx, key(installID), fieldRefreshToken).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("redis hget refresh_token: %w", err)
	}
	token, err := s.opts.open(sealed)
	if err != nil {
		return "", fmt.Errorf("open refresh token: %w", err)
	}
	return token, nil
}

func (s *RedisStore) SaveRefreshToken(ctx context.Context, installID domain.InstallID, token string) error {
	sealed, err := s.opts.seal(token)
	if err != nil {
		return fmt.Errorf("seal refresh token: %w", err)
	}
	return s.write(ctx, installID, fieldRefreshToken, sealed)
}

func (s *RedisStore) ClearRefreshToken(ctx context.Context, installID domain.InstallID) error {
	if err := s.rdb.HDel(ctx, key(installID), fieldRefreshToken).Err(); err != nil {
		return fmt.Errorf("redis hdel refresh_token: %w", err)
	}
	return nil
}

// DeleteExpired is a no-op: keys expire on their own.
func (s *RedisStore) DeleteExpired(context.Context, time.Time) (int, error) {
	return 0, nil
}

func (s *RedisStore) write(ctx context.Context, installID domain.InstallID, field, value string) error {
	k := key(installID)
	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, k, field, value, fieldUpdatedAt, s.opts.now().Unix())
		pipe.Expire(ctx, k, s.opts.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis write %s: %w", field, err)
	}
	return nil
}

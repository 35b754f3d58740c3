package storage

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/cppla/momentum/ledger"
)

const defaultRedisPrefix = "momentum:ledger:"

// RedisStore keeps ledger documents as plain Redis strings without expiry.
type RedisStore struct {
	rc     *redis.Client
	prefix string
}

var _ ledger.Store = (*RedisStore)(nil)

func NewRedisStore(rc *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = defaultRedisPrefix
	}
	return &RedisStore{rc: rc, prefix: prefix}
}

func (s *RedisStore) key(profile string) string { return s.prefix + profile }

func (s *RedisStore) Load(ctx context.Context, profile string) ([]byte, error) {
	b, err := s.rc.Get(ctx, s.key(profile)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ledger.ErrNoDocument
		}
		return nil, err
	}
	return b, nil
}

func (s *RedisStore) Save(ctx context.Context, profile string, doc []byte) error {
	return s.rc.Set(ctx, s.key(profile), doc, 0).Err()
}

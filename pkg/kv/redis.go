package kv

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aquapeak/cart-service/pkg/config"
	"github.com/redis/go-redis/v9"
)

const keyNamespace = "aquapeak"

type redisCmdable interface {
	Ping(context.Context) *redis.StatusCmd
	Set(context.Context, string, any, time.Duration) *redis.StatusCmd
	Get(context.Context, string) *redis.StringCmd
	Del(context.Context, ...string) *redis.IntCmd
}

// RedisStore persists values in Redis under a namespaced key space.
type RedisStore struct {
	store redisCmdable
	raw   *redis.Client
}

// NewRedis bootstraps a Redis-backed store and verifies connectivity.
func NewRedis(ctx context.Context, cfg config.RedisConfig) (*RedisStore, error) {
	opts, err := optionsFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	raw := redis.NewClient(opts)
	if err := raw.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &RedisStore{store: raw, raw: raw}, nil
}

func optionsFromConfig(cfg config.RedisConfig) (*redis.Options, error) {
	if cfg.URL == "" && cfg.Address == "" {
		return nil, errors.New("redis url or address is required")
	}
	var opts *redis.Options
	if cfg.URL != "" {
		parsed, err := redis.ParseURL(cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("parsing redis url: %w", err)
		}
		opts = parsed
	} else {
		opts = &redis.Options{
			Addr:     cfg.Address,
			Password: cfg.Password,
			DB:       cfg.DB,
		}
	}
	if opts.DB == 0 {
		opts.DB = cfg.DB
	}
	if opts.PoolSize == 0 {
		opts.PoolSize = cfg.PoolSize
	}
	if opts.MinIdleConns == 0 {
		opts.MinIdleConns = cfg.MinIdleConns
	}
	if opts.DialTimeout == 0 {
		opts.DialTimeout = cfg.DialTimeout
	}
	if opts.ReadTimeout == 0 {
		opts.ReadTimeout = cfg.ReadTimeout
	}
	if opts.WriteTimeout == 0 {
		opts.WriteTimeout = cfg.WriteTimeout
	}
	return opts, nil
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, error) {
	if s.store == nil {
		return "", errors.New("redis store not initialized")
	}
	value, err := s.store.Get(ctx, namespacedKey(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	return value, err
}

func (s *RedisStore) Set(ctx context.Context, key, value string) error {
	if s.store == nil {
		return errors.New("redis store not initialized")
	}
	return s.store.Set(ctx, namespacedKey(key), value, 0).Err()
}

func (s *RedisStore) Del(ctx context.Context, keys ...string) error {
	if s.store == nil {
		return errors.New("redis store not initialized")
	}
	namespaced := make([]string, 0, len(keys))
	for _, key := range keys {
		namespaced = append(namespaced, namespacedKey(key))
	}
	return s.store.Del(ctx, namespaced...).Err()
}

func (s *RedisStore) Ping(ctx context.Context) error {
	if s.store == nil {
		return errors.New("redis store not initialized")
	}
	return s.store.Ping(ctx).Err()
}

func (s *RedisStore) Close() error {
	if s.raw == nil {
		return nil
	}
	return s.raw.Close()
}

func namespacedKey(key string) string {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return keyNamespace
	}
	return keyNamespace + ":" + trimmed
}

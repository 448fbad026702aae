package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/riskibarqy/hockey-predictor/internal/platform/logging"
	"golang.org/x/sync/singleflight"
)

type RedisConfig struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
	TTL       time.Duration
}

// RedisStore shares cached payloads between processes. Redis failures degrade
// to calling the loader directly.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	flight singleflight.Group
	logger *logging.Logger
}

func NewRedisStore(cfg RedisConfig, logger *logging.Logger) *RedisStore {
	if logger == nil {
		logger = logging.Default()
	}

	client := redis.NewClient(&redis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: 2 * time.Second,
		ReadTimeout: time.Second,
	})

	return &RedisStore{
		client: client,
		prefix: cfg.KeyPrefix,
		ttl:    cfg.TTL,
		logger: logger,
	}
}

func (s *RedisStore) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) GetOrLoad(ctx context.Context, key string, loader func(context.Context) ([]byte, error)) ([]byte, error) {
	if loader == nil {
		return nil, fmt.Errorf("loader is required")
	}
	if key == "" {
		return loader(ctx)
	}

	fullKey := s.prefix + key
	raw, err := s.client.Get(ctx, fullKey).Bytes()
	if err == nil {
		return raw, nil
	}
	if !errors.Is(err, redis.Nil) {
		s.logger.WarnContext(ctx, "redis cache read failed", "key", fullKey, "error", err)
	}

	v, err, _ := s.flight.Do(fullKey, func() (any, error) {
		loaded, loadErr := loader(ctx)
		if loadErr != nil {
			return nil, loadErr
		}
		if setErr := s.client.Set(ctx, fullKey, loaded, s.ttl).Err(); setErr != nil {
			s.logger.WarnContext(ctx, "redis cache write failed", "key", fullKey, "error", setErr)
		}
		return loaded, nil
	})
	if err != nil {
		return nil, err
	}

	return v.([]byte), nil
}

package redisstore

import (
	"context"
	"errors"
	"fmt"

	"loopwise-go/internal/models"
	"loopwise-go/internal/store"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// Compile-time check: *Service must satisfy store.PreferenceStore.
var _ store.PreferenceStore = (*Service)(nil)

// Service keeps preferences in Redis under "<namespace>:prefs:<key>".
type Service struct {
	client    *redis.Client
	namespace string
}

func NewService(ctx context.Context, cfg models.RedisConfig, namespace string) (*Service, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("redis address cannot be empty")
	}

	zap.L().Info("Connecting to Redis", zap.String("addr", cfg.Addr), zap.Int("db", cfg.DB))
	client := redis.NewClient(&redis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: cfg.DialTimeout,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("unable to ping redis: %w", err)
	}

	return NewWithClient(client, namespace), nil
}

// NewWithClient wraps an existing client.
func NewWithClient(client *redis.Client, namespace string) *Service {
	if namespace == "" {
		namespace = "default"
	}
	return &Service{client: client, namespace: namespace}
}

func (s *Service) key(key string) string {
	return s.namespace + ":prefs:" + key
}

func (s *Service) GetValue(ctx context.Context, key string) (string, error) {
	value, err := s.client.Get(ctx, s.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", store.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to read preference %s: %w", key, err)
	}
	return value, nil
}

func (s *Service) PutValue(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, s.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("failed to write preference %s: %w", key, err)
	}
	return nil
}

func (s *Service) DeleteValue(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("failed to delete preference %s: %w", key, err)
	}
	return nil
}

func (s *Service) Close() {
	if err := s.client.Close(); err != nil {
		zap.L().Warn("Failed to close redis client", zap.Error(err))
	}
}

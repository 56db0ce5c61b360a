package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/volfir1/EcoPulseBackend/config"
)

// LiveChannel carries record-insert events to dashboard WebSocket clients.
const LiveChannel = "ecopulse:live"

// CacheService wraps Redis for response caching and pub/sub. When Redis is
// unreachable the service degrades to a no-op so the API keeps serving.
type CacheService struct {
	client *redis.Client
}

func NewCacheService(cfg config.RedisConfig, log *logrus.Logger) (*CacheService, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	var lastErr error
	for i := 0; i < 5; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		lastErr = client.Ping(ctx).Err()
		cancel()
		if lastErr == nil {
			return &CacheService{client: client}, nil
		}
		log.Warnf("redis ping attempt %d/5 failed: %v", i+1, lastErr)
		time.Sleep(2 * time.Second)
	}

	return &CacheService{client: nil}, fmt.Errorf("redis ping failed after 5 attempts: %w", lastErr)
}

func (s *CacheService) Available() bool {
	return s.client != nil
}

func (s *CacheService) Get(ctx context.Context, key string, dest interface{}) error {
	if s.client == nil {
		return redis.Nil
	}
	val, err := s.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(val), dest)
}

func (s *CacheService) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if s.client == nil {
		return nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, key, data, ttl).Err()
}

// Bump increments a version counter embedded in cache keys. Bumping orphans
// every entry built with the previous version, which then simply ages out of
// Redis by TTL.
func (s *CacheService) Bump(ctx context.Context, key string) error {
	if s.client == nil {
		return nil
	}
	return s.client.Incr(ctx, key).Err()
}

// Version returns the current value of a version counter, 0 when unset or
// when Redis is unavailable.
func (s *CacheService) Version(ctx context.Context, key string) int64 {
	if s.client == nil {
		return 0
	}
	v, err := s.client.Get(ctx, key).Int64()
	if err != nil {
		return 0
	}
	return v
}

func (s *CacheService) Publish(ctx context.Context, channel string, message interface{}) error {
	if s.client == nil {
		return nil
	}
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}
	return s.client.Publish(ctx, channel, data).Err()
}

func (s *CacheService) Subscribe(ctx context.Context, channel string) *redis.PubSub {
	if s.client == nil {
		return nil
	}
	return s.client.Subscribe(ctx, channel)
}

func (s *CacheService) Close() error {
	if s.client == nil {
		return nil
	}
	return s.client.Close()
}

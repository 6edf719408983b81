package database

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"kucukaslan/tracker/config"
	"kucukaslan/tracker/domain"
	"kucukaslan/tracker/identity"

	"github.com/redis/go-redis/v9"
)

var redisClient *redis.Client

// TrackerRedis remembers which payloads reached ClickHouse
type TrackerRedis struct {
	*redis.Client
	expirationMilliseconds int64
}

const (
	RedisKeyPrefix      = "tracker_event:"
	RedisIdentityPrefix = "tracker_identity:"
)

func (r TrackerRedis) getExpirationDuration() time.Duration {
	if r.expirationMilliseconds <= 0 {
		return 0
	}
	return time.Duration(r.expirationMilliseconds) * time.Millisecond
}

func deliveredKey(p domain.Payload) string {
	return RedisKeyPrefix + domain.DedupKey(p)
}

// SetEventsDelivered marks a batch in one pipeline round trip
func (r TrackerRedis) SetEventsDelivered(ctx context.Context, payloads []domain.Payload) error {
	pipe := r.Pipeline()
	for _, p := range payloads {
		pipe.Set(ctx, deliveredKey(p), "1", r.getExpirationDuration())
	}
	_, err := pipe.Exec(ctx)
	return err
}

// AreEventsDelivered looks a batch up with MGET. The map is keyed by
// domain.DedupKey, the event_id when the payload has one.
func (r TrackerRedis) AreEventsDelivered(ctx context.Context, payloads []domain.Payload) (map[string]bool, error) {
	keys := make([]string, len(payloads))
	for i, p := range payloads {
		keys[i] = deliveredKey(p)
	}

	results, err := r.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	delivered := make(map[string]bool, len(results))
	for i, result := range results {
		str, ok := result.(string)
		delivered[domain.DedupKey(payloads[i])] = ok && str == "1"
	}
	return delivered, nil
}

// InitRedis initializes the Redis client connection
func InitRedis(cfg *config.RedisConfig) error {
	addr := cfg.GetRedisAddr()

	opts := &redis.Options{
		Addr:     addr,
		Password: cfg.Password,
		DB:       0,
	}

	client := redis.NewClient(opts)

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	redisClient = client
	log.Println("Redis connection established successfully")
	return nil
}

// CloseRedis closes the Redis client connection
func CloseRedis() error {
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			return fmt.Errorf("failed to close Redis connection: %w", err)
		}
		log.Println("Redis connection closed")
	}
	return nil
}

// RedisHealthCheck verifies that the Redis connection is alive
func RedisHealthCheck(ctx context.Context) error {
	if redisClient == nil {
		return fmt.Errorf("Redis connection is not initialized")
	}
	return redisClient.Ping(ctx).Err()
}

func GetRedisClient(dedupTTLMilliseconds int64) TrackerRedis {
	return TrackerRedis{redisClient, dedupTTLMilliseconds}
}

// RedisIdentityStore is the shared persistent identity tier: visitors keep
// their user id across agents pointed at the same Redis.
type RedisIdentityStore struct {
	client  *redis.Client
	ttl     time.Duration
	timeout time.Duration
}

var _ identity.Store = &RedisIdentityStore{}

// GetRedisIdentityStore returns a store on the initialized client. A ttl of
// zero keeps ids forever.
func GetRedisIdentityStore(ttlSeconds int64) *RedisIdentityStore {
	return NewRedisIdentityStore(redisClient, time.Duration(ttlSeconds)*time.Second)
}

func NewRedisIdentityStore(client *redis.Client, ttl time.Duration) *RedisIdentityStore {
	return &RedisIdentityStore{client: client, ttl: ttl, timeout: 2 * time.Second}
}

func (s *RedisIdentityStore) Get(key string) (string, error) {
	if s.client == nil {
		return "", fmt.Errorf("Redis connection is not initialized")
	}
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	value, err := s.client.Get(ctx, RedisIdentityPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", identity.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("redis get %s: %w", key, err)
	}
	return value, nil
}

func (s *RedisIdentityStore) Set(key, value string) error {
	if s.client == nil {
		return fmt.Errorf("Redis connection is not initialized")
	}
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if err := s.client.Set(ctx, RedisIdentityPrefix+key, value, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// internal/common/database/redis.go
package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"figma-to-fsd/internal/common/config"
	"figma-to-fsd/internal/models"
)

// RedisClient wraps the Redis client
type RedisClient struct {
	Client redis.UniversalClient
}

// NewRedis creates a new Redis client
func NewRedis(cfg config.RedisConfig) (*RedisClient, error) {
	if cfg.Address == "" {
		return nil, fmt.Errorf("redis address is required")
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})

	return &RedisClient{Client: rdb}, nil
}

// NewRedisWith wraps an existing client, used by tests.
func NewRedisWith(client redis.UniversalClient) *RedisClient {
	return &RedisClient{Client: client}
}

// Ping tests the Redis connection
func (c *RedisClient) Ping(ctx context.Context) error {
	if err := c.Client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

// Close closes the Redis connection
func (c *RedisClient) Close() error {
	if c.Client != nil {
		return c.Client.Close()
	}
	return nil
}

// RunStreamKey is the stream holding the events of one run.
func RunStreamKey(runID string) string {
	return "fsd:run:" + runID
}

// RedisEventSink appends every run event to a per-run Redis stream so other
// processes can follow progress. Streams expire ttl after their last event.
type RedisEventSink struct {
	client *RedisClient
	ttl    time.Duration
	maxLen int64
}

func NewRedisEventSink(client *RedisClient, ttl time.Duration, maxLen int64) *RedisEventSink {
	return &RedisEventSink{client: client, ttl: ttl, maxLen: maxLen}
}

func (s *RedisEventSink) Name() string {
	return "redis"
}

// Publish appends ev to its run stream and refreshes the stream TTL.
func (s *RedisEventSink) Publish(ctx context.Context, ev models.Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	key := RunStreamKey(ev.RunID)
	pipe := s.client.Client.TxPipeline()
	pipe.XAdd(ctx, &redis.XAddArgs{
		Stream: key,
		MaxLen: s.maxLen,
		Approx: s.maxLen > 0,
		Values: map[string]interface{}{
			"type":    string(ev.Type),
			"stage":   string(ev.StageName),
			"status":  string(ev.Status),
			"payload": string(payload),
		},
	})
	if s.ttl > 0 {
		pipe.Expire(ctx, key, s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis publish to %s failed: %w", key, err)
	}
	return nil
}

// ReadRun returns the events recorded for runID in order.
func (s *RedisEventSink) ReadRun(ctx context.Context, runID string) ([]models.Event, error) {
	entries, err := s.client.Client.XRange(ctx, RunStreamKey(runID), "-", "+").Result()
	if err != nil {
		return nil, fmt.Errorf("redis read of run %s failed: %w", runID, err)
	}

	events := make([]models.Event, 0, len(entries))
	for _, entry := range entries {
		raw, ok := entry.Values["payload"].(string)
		if !ok {
			continue
		}
		var ev models.Event
		if err := json.Unmarshal([]byte(raw), &ev); err != nil {
			return nil, fmt.Errorf("decode event %s: %w", entry.ID, err)
		}
		events = append(events, ev)
	}
	return events, nil
}

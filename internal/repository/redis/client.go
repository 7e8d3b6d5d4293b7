package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/iamasit07/dropfour/internal/domain"
	"github.com/redis/go-redis/v9"
)

var RedisClient *redis.Client
var redisEnabled bool

// InitRedis connects to addr. An unreachable server is not fatal: snapshots
// are then served from memory only.
func InitRedis(addr, password string) error {
	if addr == "" {
		log.Println("[REDIS] REDIS_URL not set, snapshot cache disabled")
		redisEnabled = false
		return nil
	}

	RedisClient = redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := RedisClient.Ping(ctx).Err(); err != nil {
		log.Printf("[REDIS] Warning: Could not connect to Redis: %v. Serving snapshots from memory only.", err)
		redisEnabled = false
		return nil
	}

	redisEnabled = true
	log.Println("[REDIS] Connected successfully")
	return nil
}

// IsRedisEnabled returns whether Redis is available
func IsRedisEnabled() bool {
	return redisEnabled
}

// CloseRedis closes the Redis connection
func CloseRedis() error {
	if RedisClient != nil {
		return RedisClient.Close()
	}
	return nil
}

const snapshotKeyPrefix = "dropfour:snapshot:"

// ErrSnapshotNotFound is returned when no snapshot is cached for a session.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// SnapshotCache keeps the latest snapshot of every session for spectators.
type SnapshotCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSnapshotCache(client *redis.Client, ttl time.Duration) *SnapshotCache {
	return &SnapshotCache{client: client, ttl: ttl}
}

func snapshotKey(sessionID string) string {
	return snapshotKeyPrefix + sessionID
}

func (c *SnapshotCache) SaveSnapshot(ctx context.Context, sessionID string, snap domain.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	return c.client.Set(ctx, snapshotKey(sessionID), data, c.ttl).Err()
}

func (c *SnapshotCache) GetSnapshot(ctx context.Context, sessionID string) (*domain.Snapshot, error) {
	data, err := c.client.Get(ctx, snapshotKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSnapshotNotFound
	}
	if err != nil {
		return nil, err
	}

	var snap domain.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}
	return &snap, nil
}

func (c *SnapshotCache) DeleteSnapshot(ctx context.Context, sessionID string) error {
	return c.client.Del(ctx, snapshotKey(sessionID)).Err()
}

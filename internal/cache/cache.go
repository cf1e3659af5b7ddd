package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"

	"ms-admission/internal/models"
)

const snapshotKey = "admission:snapshot"

// SnapshotCache keeps the last full read of tickets+menu in redis with a
// bounded staleness window. Writers must call Invalidate after every
// successful store write.
type SnapshotCache struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewSnapshotCache(client *redis.Client, ttl time.Duration) *SnapshotCache {
	if ttl <= 0 {
		ttl = 60 * time.Second
	}
	return &SnapshotCache{Client: client, TTL: ttl}
}

// GetSnapshot returns the cached snapshot, or (nil, nil) on a miss.
func (c *SnapshotCache) GetSnapshot() (*models.Snapshot, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	payload, err := c.Client.Get(ctx, snapshotKey).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var snap models.Snapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		// A corrupt entry is treated as a miss; the next write replaces it.
		return nil, nil
	}
	return &snap, nil
}

func (c *SnapshotCache) SetSnapshot(snap models.Snapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return c.Client.Set(ctx, snapshotKey, payload, c.TTL).Err()
}

func (c *SnapshotCache) Invalidate() error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return c.Client.Del(ctx, snapshotKey).Err()
}

// Connect opens a redis client and verifies the connection.
func Connect(addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: "",
		DB:       0,
		PoolSize: 10,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, err
	}
	return client, nil
}

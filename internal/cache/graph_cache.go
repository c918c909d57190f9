// Package cache stores the latest assembled tree per workspace in Redis.
// The cache is advisory: assembly always reads the store, the snapshot
// only lets a freshly attached consumer render immediately.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/memograph/memograph/internal/models"
)

const snapshotKeyPrefix = "memograph:graph:"

// GraphCache is a per-workspace snapshot store backed by Redis
type GraphCache struct {
	client *redis.Client
	ttl    time.Duration
}

// New connects to Redis using a redis:// URL
func New(redisURL string, ttl time.Duration) (*GraphCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		if closeErr := client.Close(); closeErr != nil {
			_ = closeErr
		}
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return &GraphCache{client: client, ttl: ttl}, nil
}

// StoreSnapshot persists the latest tree of a workspace
func (c *GraphCache) StoreSnapshot(ctx context.Context, workspaceID string, tree *models.GraphTree) error {
	payload, err := json.Marshal(tree)
	if err != nil {
		return fmt.Errorf("failed to marshal graph snapshot: %w", err)
	}

	if err := c.client.Set(ctx, snapshotKeyPrefix+workspaceID, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store graph snapshot: %w", err)
	}
	return nil
}

// Snapshot returns the last pushed tree of a workspace, or nil when no
// snapshot exists
func (c *GraphCache) Snapshot(ctx context.Context, workspaceID string) (*models.GraphTree, error) {
	payload, err := c.client.Get(ctx, snapshotKeyPrefix+workspaceID).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read graph snapshot: %w", err)
	}

	tree := &models.GraphTree{}
	if err := json.Unmarshal(payload, tree); err != nil {
		return nil, fmt.Errorf("failed to unmarshal graph snapshot: %w", err)
	}
	return tree, nil
}

// Close releases the Redis connection
func (c *GraphCache) Close() error {
	return c.client.Close()
}

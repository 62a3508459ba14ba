package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"crux-escrow/internal/core/domain"

	goredis "github.com/redis/go-redis/v9"
)

// SnapshotCache implements ports.SnapshotCache using Redis. It stores the
// last completed reconciled view per (account, role) so a restart or ledger
// outage can still serve the most recent known state.
type SnapshotCache struct {
	client *goredis.Client
	prefix string
}

// NewSnapshotCache creates a new Redis-backed snapshot cache.
func NewSnapshotCache(client *goredis.Client) *SnapshotCache {
	return &SnapshotCache{
		client: client,
		prefix: "escrowview:",
	}
}

func (c *SnapshotCache) key(account string, role domain.Role) string {
	return c.prefix + account + ":" + string(role)
}

// Get retrieves the cached view for an account and role.
// Returns nil, nil if no snapshot exists.
func (c *SnapshotCache) Get(ctx context.Context, account string, role domain.Role) (*domain.EscrowView, error) {
	val, err := c.client.Get(ctx, c.key(account, role)).Bytes()
	if err != nil {
		if err == goredis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("redis snapshot get: %w", err)
	}

	var view domain.EscrowView
	if err := json.Unmarshal(val, &view); err != nil {
		return nil, fmt.Errorf("decoding snapshot: %w", err)
	}
	return &view, nil
}

// Set stores a reconciled view with TTL.
func (c *SnapshotCache) Set(ctx context.Context, view *domain.EscrowView, ttl time.Duration) error {
	data, err := json.Marshal(view)
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	if err := c.client.Set(ctx, c.key(view.Account, view.Role), data, ttl).Err(); err != nil {
		return fmt.Errorf("redis snapshot set: %w", err)
	}
	return nil
}

package redis

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/kestrelmedia/clipflow-backend/internal/logger"
)

// ProgressCache keeps per-(user, flow) visited-node sets hot so the edge
// selector can skip a storage round-trip. Best effort: a miss or an error
// falls back to the database.
type ProgressCache interface {
	GetVisited(ctx context.Context, userID, flowID uuid.UUID) ([]uuid.UUID, bool)
	SetVisited(ctx context.Context, userID, flowID uuid.UUID, nodeIDs []uuid.UUID)
	Invalidate(ctx context.Context, userID, flowID uuid.UUID)
	Close() error
}

type progressCache struct {
	log *logger.Logger
	rdb *goredis.Client
	ttl time.Duration
}

func NewProgressCache(log *logger.Logger) (ProgressCache, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}

	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &progressCache{
		log: log.With("service", "RedisProgressCache"),
		rdb: rdb,
		ttl: 10 * time.Minute,
	}, nil
}

func visitedKey(userID, flowID uuid.UUID) string {
	return fmt.Sprintf("flow:visited:%s:%s", userID, flowID)
}

func (c *progressCache) GetVisited(ctx context.Context, userID, flowID uuid.UUID) ([]uuid.UUID, bool) {
	members, err := c.rdb.SMembers(ctx, visitedKey(userID, flowID)).Result()
	if err != nil {
		c.log.Debug("visited set read failed", "error", err)
		return nil, false
	}
	if len(members) == 0 {
		return nil, false
	}

	// The sentinel marks a cached-but-empty set apart from a cache miss.
	ids := make([]uuid.UUID, 0, len(members))
	for _, m := range members {
		if m == emptySentinel {
			continue
		}
		id, err := uuid.Parse(m)
		if err != nil {
			return nil, false
		}
		ids = append(ids, id)
	}
	return ids, true
}

const emptySentinel = "-"

func (c *progressCache) SetVisited(ctx context.Context, userID, flowID uuid.UUID, nodeIDs []uuid.UUID) {
	key := visitedKey(userID, flowID)
	members := make([]interface{}, 0, len(nodeIDs)+1)
	members = append(members, emptySentinel)
	for _, id := range nodeIDs {
		members = append(members, id.String())
	}

	pipe := c.rdb.TxPipeline()
	pipe.Del(ctx, key)
	pipe.SAdd(ctx, key, members...)
	pipe.Expire(ctx, key, c.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		c.log.Debug("visited set write failed", "error", err)
	}
}

func (c *progressCache) Invalidate(ctx context.Context, userID, flowID uuid.UUID) {
	if err := c.rdb.Del(ctx, visitedKey(userID, flowID)).Err(); err != nil {
		c.log.Debug("visited set invalidate failed", "error", err)
	}
}

func (c *progressCache) Close() error {
	return c.rdb.Close()
}

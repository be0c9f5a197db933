package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const nameKeyPrefix = "catalog:name:"

// CachedDirectory decorates a Directory with a Redis read-through cache for display names.
// Names change rarely and are read on every price listing, so only Names is cached.
// Redis failures fall back to the wrapped directory.
type CachedDirectory struct {
	Directory
	rdb    *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedDirectory wraps next with a Redis cache.
func NewCachedDirectory(next Directory, rdb *redis.Client, ttl time.Duration, logger *zap.Logger) *CachedDirectory {
	return &CachedDirectory{Directory: next, rdb: rdb, ttl: ttl, logger: logger.Named("CatalogCache")}
}

func nameKey(kind Kind, id uuid.UUID) string {
	return fmt.Sprintf("%s%s:%s", nameKeyPrefix, kind, id)
}

func (d *CachedDirectory) Names(ctx context.Context, kind Kind, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	ids = Unique(ids)
	out := make(map[uuid.UUID]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = nameKey(kind, id)
	}

	missing := ids
	cached, err := d.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		d.logger.Warn("Catalog cache read failed, falling back to database", zap.String("kind", string(kind)), zap.Error(err))
	} else {
		missing = missing[:0:0]
		for i, v := range cached {
			if s, ok := v.(string); ok {
				out[ids[i]] = s
				continue
			}
			missing = append(missing, ids[i])
		}
	}

	if len(missing) == 0 {
		return out, nil
	}

	fresh, err := d.Directory.Names(ctx, kind, missing)
	if err != nil {
		return nil, err
	}

	pipe := d.rdb.Pipeline()
	for id, name := range fresh {
		out[id] = name
		pipe.Set(ctx, nameKey(kind, id), name, d.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		d.logger.Warn("Catalog cache write failed", zap.String("kind", string(kind)), zap.Error(err))
	}
	return out, nil
}

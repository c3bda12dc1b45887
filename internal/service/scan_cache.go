package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"codemint/internal/models"
)

const scanCachePrefix = "scan:"

// CachedCodeRecords wraps a CodeRecords with a Redis read-through cache
// on Lookup. Inserts and lists pass straight through; records are
// immutable once written, so cached lookups never go stale.
type CachedCodeRecords struct {
	next  CodeRecords
	cache *redis.Client
	ttl   time.Duration
	log   zerolog.Logger
}

func NewCachedCodeRecords(next CodeRecords, cache *redis.Client, ttl time.Duration, log zerolog.Logger) *CachedCodeRecords {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &CachedCodeRecords{
		next:  next,
		cache: cache,
		ttl:   ttl,
		log:   log,
	}
}

func (c *CachedCodeRecords) Insert(ctx context.Context, kind models.CodeKind, name, uniqueID, imagePath string) error {
	return c.next.Insert(ctx, kind, name, uniqueID, imagePath)
}

func (c *CachedCodeRecords) Lookup(ctx context.Context, uniqueID string) (models.CodeRecord, error) {
	if c.cache == nil {
		return c.next.Lookup(ctx, uniqueID)
	}

	key := scanCachePrefix + uniqueID
	if cached, err := c.cache.Get(ctx, key).Bytes(); err == nil {
		var record models.CodeRecord
		if err := json.Unmarshal(cached, &record); err == nil {
			return record, nil
		}
		// A corrupt entry falls through to the repository.
	} else if !errors.Is(err, redis.Nil) {
		c.log.Warn().Err(err).Str("unique_id", uniqueID).Msg("scan cache read failed")
	}

	record, err := c.next.Lookup(ctx, uniqueID)
	if err != nil {
		return models.CodeRecord{}, err
	}

	if payload, err := json.Marshal(record); err == nil {
		if err := c.cache.Set(ctx, key, payload, c.ttl).Err(); err != nil {
			c.log.Warn().Err(err).Str("unique_id", uniqueID).Msg("scan cache write failed")
		}
	}

	return record, nil
}

func (c *CachedCodeRecords) List(ctx context.Context, kind models.CodeKind, limit, offset int) ([]models.CodeRecord, error) {
	return c.next.List(ctx, kind, limit, offset)
}

package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codemint/internal/models"
	"codemint/internal/repository"
)

type countingRecords struct {
	fakeRecords
	lookups int
}

func (c *countingRecords) Lookup(ctx context.Context, uniqueID string) (models.CodeRecord, error) {
	c.lookups++
	return c.fakeRecords.Lookup(ctx, uniqueID)
}

func newTestCache(t *testing.T) *redis.Client {
	t.Helper()
	server := miniredis.RunT(t)
	return redis.NewClient(&redis.Options{Addr: server.Addr()})
}

func TestCachedLookupReadThrough(t *testing.T) {
	records := &countingRecords{fakeRecords: fakeRecords{inserted: []models.CodeRecord{
		{Kind: models.CodeKindQR, Name: "widget", UniqueID: "111122223333", ImagePath: "https://store.local/q/1.png"},
	}}}
	cached := NewCachedCodeRecords(records, newTestCache(t), time.Minute, zerolog.Nop())

	first, err := cached.Lookup(context.Background(), "111122223333")
	require.NoError(t, err)

	second, err := cached.Lookup(context.Background(), "111122223333")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, records.lookups, "second lookup must be served from cache")
}

func TestCachedLookupMissIsNotCached(t *testing.T) {
	records := &countingRecords{}
	cached := NewCachedCodeRecords(records, newTestCache(t), time.Minute, zerolog.Nop())

	_, err := cached.Lookup(context.Background(), "000000000000")
	assert.ErrorIs(t, err, repository.ErrCodeNotFound)

	_, err = cached.Lookup(context.Background(), "000000000000")
	assert.ErrorIs(t, err, repository.ErrCodeNotFound)

	assert.Equal(t, 2, records.lookups, "misses must reach the repository every time")
}

func TestCachedLookupWithoutCacheClient(t *testing.T) {
	records := &countingRecords{fakeRecords: fakeRecords{inserted: []models.CodeRecord{
		{Kind: models.CodeKindBarcode, Name: "widget", UniqueID: "444455556666", ImagePath: "https://store.local/b/4.png"},
	}}}
	cached := NewCachedCodeRecords(records, nil, time.Minute, zerolog.Nop())

	record, err := cached.Lookup(context.Background(), "444455556666")

	require.NoError(t, err)
	assert.Equal(t, "widget", record.Name)
	assert.Equal(t, 1, records.lookups)
}

func TestCachedLookupSurvivesCacheOutage(t *testing.T) {
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	server.Close()

	records := &countingRecords{fakeRecords: fakeRecords{inserted: []models.CodeRecord{
		{Kind: models.CodeKindQR, Name: "widget", UniqueID: "777788889999", ImagePath: "https://store.local/q/7.png"},
	}}}
	cached := NewCachedCodeRecords(records, client, time.Minute, zerolog.Nop())

	record, err := cached.Lookup(context.Background(), "777788889999")

	require.NoError(t, err)
	assert.Equal(t, "widget", record.Name)
}

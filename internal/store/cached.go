package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/openfrc/stats-api/internal/models"
)

// CachedStore wraps a primary Store (PostgreSQL) with a Redis read-through
// cache. Writes go to the primary store and invalidate the cache; reads
// check Redis first then fall back to the primary.
type CachedStore struct {
	primary Store
	rdb     redis.Cmdable
	ttl     time.Duration
}

// NewCachedStore creates a cached wrapper around a primary store.
func NewCachedStore(primary Store, rdb redis.Cmdable, ttl time.Duration) *CachedStore {
	return &CachedStore{
		primary: primary,
		rdb:     rdb,
		ttl:     ttl,
	}
}

func (s *CachedStore) GetShard(ctx context.Context, shardID int) (*models.GlobalRankingShard, error) {
	var shard models.GlobalRankingShard
	if err := getJSON(ctx, s.rdb, shardKey(shardID), &shard); err == nil {
		return &shard, nil
	}

	got, err := s.primary.GetShard(ctx, shardID)
	if err != nil {
		return nil, err
	}
	s.cache(ctx, shardKey(shardID), got)
	return got, nil
}

// PutShard always invalidates, including on conflict, so the next read sees the winner.
func (s *CachedStore) PutShard(ctx context.Context, shard *models.GlobalRankingShard, expected time.Time) error {
	err := s.primary.PutShard(ctx, shard, expected)
	s.rdb.Del(ctx, shardKey(shard.ShardID))
	return err
}

func (s *CachedStore) GetEventSummary(ctx context.Context, eventCode string) (*models.EventSummary, error) {
	var summary models.EventSummary
	if err := getJSON(ctx, s.rdb, eventSummaryKey(eventCode), &summary); err == nil {
		return &summary, nil
	}

	got, err := s.primary.GetEventSummary(ctx, eventCode)
	if err != nil {
		return nil, err
	}
	s.cache(ctx, eventSummaryKey(eventCode), got)
	return got, nil
}

func (s *CachedStore) PutEventSummary(ctx context.Context, summary *models.EventSummary) error {
	if err := s.primary.PutEventSummary(ctx, summary); err != nil {
		return err
	}
	s.rdb.Del(ctx, eventSummaryKey(summary.EventCode))
	return nil
}

func (s *CachedStore) cache(ctx context.Context, key string, v interface{}) {
	if data, err := json.Marshal(v); err == nil {
		s.rdb.Set(ctx, key, data, s.ttl)
	}
}

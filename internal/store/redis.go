package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/openfrc/stats-api/internal/models"
)

// RedisStore implements Store on Redis alone. Shard writes use WATCH/MULTI so
// only one writer per shard wins a refresh.
type RedisStore struct {
	rdb *redis.Client
}

// NewRedisStore creates a Redis-backed store.
func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func (s *RedisStore) GetShard(ctx context.Context, shardID int) (*models.GlobalRankingShard, error) {
	var shard models.GlobalRankingShard
	if err := getJSON(ctx, s.rdb, shardKey(shardID), &shard); err != nil {
		return nil, err
	}
	return &shard, nil
}

func (s *RedisStore) PutShard(ctx context.Context, shard *models.GlobalRankingShard, expected time.Time) error {
	key := shardKey(shard.ShardID)
	now := stampNow()

	txf := func(tx *redis.Tx) error {
		var current models.GlobalRankingShard
		err := getJSON(ctx, tx, key, &current)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return err
		}
		if !current.SetTime.Equal(expected) {
			return ErrConflict
		}

		next := models.GlobalRankingShard{ShardID: shard.ShardID, Rankings: shard.Rankings, SetTime: now}
		data, err := json.Marshal(next)
		if err != nil {
			return fmt.Errorf("encode shard %d: %w", shard.ShardID, err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			return nil
		})
		return err
	}

	err := s.rdb.Watch(ctx, txf, key)
	if errors.Is(err, redis.TxFailedErr) {
		return ErrConflict
	}
	if err != nil {
		return err
	}
	shard.SetTime = now
	return nil
}

func (s *RedisStore) GetEventSummary(ctx context.Context, eventCode string) (*models.EventSummary, error) {
	var summary models.EventSummary
	if err := getJSON(ctx, s.rdb, eventSummaryKey(eventCode), &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

func (s *RedisStore) PutEventSummary(ctx context.Context, summary *models.EventSummary) error {
	summary.SetTime = stampNow()
	data, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("encode event summary %s: %w", summary.EventCode, err)
	}
	return s.rdb.Set(ctx, eventSummaryKey(summary.EventCode), data, 0).Err()
}

// getter is satisfied by *redis.Client, *redis.Tx and redis.Cmdable
type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func getJSON(ctx context.Context, rdb getter, key string, dest interface{}) error {
	data, err := rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("redis get %s: %w", key, err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

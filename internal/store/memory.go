package store

import (
	"context"
	"sync"
	"time"

	"github.com/openfrc/stats-api/internal/models"
)

// MemoryStore implements Store in process memory.
type MemoryStore struct {
	mu        sync.RWMutex
	shards    map[int]models.GlobalRankingShard
	summaries map[string]models.EventSummary
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		shards:    make(map[int]models.GlobalRankingShard),
		summaries: make(map[string]models.EventSummary),
	}
}

func (s *MemoryStore) GetShard(_ context.Context, shardID int) (*models.GlobalRankingShard, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	shard, ok := s.shards[shardID]
	if !ok {
		return nil, ErrNotFound
	}
	shard.Rankings = copyRankings(shard.Rankings)
	return &shard, nil
}

func (s *MemoryStore) PutShard(_ context.Context, shard *models.GlobalRankingShard, expected time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var current time.Time
	if existing, ok := s.shards[shard.ShardID]; ok {
		current = existing.SetTime
	}
	if !current.Equal(expected) {
		return ErrConflict
	}

	shard.SetTime = stampNow()
	if !shard.SetTime.After(current) {
		shard.SetTime = current.Add(time.Microsecond)
	}
	s.shards[shard.ShardID] = models.GlobalRankingShard{
		ShardID:  shard.ShardID,
		Rankings: copyRankings(shard.Rankings),
		SetTime:  shard.SetTime,
	}
	return nil
}

func (s *MemoryStore) GetEventSummary(_ context.Context, eventCode string) (*models.EventSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summary, ok := s.summaries[eventCode]
	if !ok {
		return nil, ErrNotFound
	}
	summary.Ratings = copyRankings(summary.Ratings)
	return &summary, nil
}

func (s *MemoryStore) PutEventSummary(_ context.Context, summary *models.EventSummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	summary.SetTime = stampNow()
	s.summaries[summary.EventCode] = models.EventSummary{
		EventCode: summary.EventCode,
		Ratings:   copyRankings(summary.Ratings),
		SetTime:   summary.SetTime,
	}
	return nil
}

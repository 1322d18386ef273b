// Package store persists global ranking shards and per-event rating summaries.
// Implementations include PostgreSQL (source of truth), Redis (standalone or as a
// read-through cache in front of PostgreSQL) and in-memory (for tests and local runs).
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/openfrc/stats-api/internal/models"
)

var (
	// ErrNotFound is returned when a shard or summary was never written.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned by PutShard when another writer replaced the shard first.
	ErrConflict = errors.New("shard was modified concurrently")
)

// Store is the ranking store. There are no transactional guarantees beyond
// per-shard compare-and-swap.
type Store interface {
	// GetShard returns a shard or ErrNotFound.
	GetShard(ctx context.Context, shardID int) (*models.GlobalRankingShard, error)

	// PutShard writes rankings and stamps SetTime, but only if the stored SetTime
	// still equals expected (zero when the shard was never set). Returns ErrConflict otherwise.
	PutShard(ctx context.Context, shard *models.GlobalRankingShard, expected time.Time) error

	// GetEventSummary returns the cached ratings of an event or ErrNotFound.
	GetEventSummary(ctx context.Context, eventCode string) (*models.EventSummary, error)

	// PutEventSummary overwrites an event summary and stamps SetTime. Last write wins.
	PutEventSummary(ctx context.Context, summary *models.EventSummary) error
}

// stampNow truncates to microseconds so timestamps survive a PostgreSQL round trip
// and still compare equal in PutShard.
func stampNow() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

func copyRankings(in map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func shardKey(id int) string            { return fmt.Sprintf("fsm:shard:%d", id) }
func eventSummaryKey(code string) string { return fmt.Sprintf("fsm:event:%s", code) }

package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/openfrc/stats-api/internal/models"
)

// PgPool is the subset of *pgxpool.Pool used by PostgresStore
type PgPool interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

const schema = `
CREATE TABLE IF NOT EXISTS fsm_shards (
	shard_id  INTEGER PRIMARY KEY,
	rankings  JSONB NOT NULL,
	set_time  TIMESTAMPTZ NOT NULL
);
CREATE TABLE IF NOT EXISTS fsm_event_summaries (
	event_code TEXT PRIMARY KEY,
	ratings    JSONB NOT NULL,
	set_time   TIMESTAMPTZ NOT NULL
);`

// PostgresStore implements Store using PostgreSQL as the source of truth.
type PostgresStore struct {
	pool PgPool
}

// NewPostgresStore creates a new PostgreSQL-backed store.
func NewPostgresStore(pool PgPool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Migrate creates the tables if they do not exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("migrate ranking store: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetShard(ctx context.Context, shardID int) (*models.GlobalRankingShard, error) {
	var raw []byte
	shard := &models.GlobalRankingShard{ShardID: shardID}

	err := s.pool.QueryRow(ctx,
		`SELECT rankings, set_time FROM fsm_shards WHERE shard_id = $1`, shardID).
		Scan(&raw, &shard.SetTime)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get shard %d: %w", shardID, err)
	}
	if err := json.Unmarshal(raw, &shard.Rankings); err != nil {
		return nil, fmt.Errorf("decode shard %d: %w", shardID, err)
	}
	shard.SetTime = shard.SetTime.UTC()
	return shard, nil
}

// PutShard uses a conditional insert/update on set_time as the compare-and-swap.
func (s *PostgresStore) PutShard(ctx context.Context, shard *models.GlobalRankingShard, expected time.Time) error {
	data, err := json.Marshal(shard.Rankings)
	if err != nil {
		return fmt.Errorf("encode shard %d: %w", shard.ShardID, err)
	}
	now := stampNow()

	var tag pgconn.CommandTag
	if expected.IsZero() {
		tag, err = s.pool.Exec(ctx,
			`INSERT INTO fsm_shards (shard_id, rankings, set_time) VALUES ($1, $2::jsonb, $3)
			 ON CONFLICT (shard_id) DO NOTHING`,
			shard.ShardID, string(data), now)
	} else {
		tag, err = s.pool.Exec(ctx,
			`UPDATE fsm_shards SET rankings = $2::jsonb, set_time = $3
			 WHERE shard_id = $1 AND set_time = $4`,
			shard.ShardID, string(data), now, expected)
	}
	if err != nil {
		return fmt.Errorf("put shard %d: %w", shard.ShardID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrConflict
	}
	shard.SetTime = now
	return nil
}

func (s *PostgresStore) GetEventSummary(ctx context.Context, eventCode string) (*models.EventSummary, error) {
	var raw []byte
	summary := &models.EventSummary{EventCode: eventCode}

	err := s.pool.QueryRow(ctx,
		`SELECT ratings, set_time FROM fsm_event_summaries WHERE event_code = $1`, eventCode).
		Scan(&raw, &summary.SetTime)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get event summary %s: %w", eventCode, err)
	}
	if err := json.Unmarshal(raw, &summary.Ratings); err != nil {
		return nil, fmt.Errorf("decode event summary %s: %w", eventCode, err)
	}
	summary.SetTime = summary.SetTime.UTC()
	return summary, nil
}

func (s *PostgresStore) PutEventSummary(ctx context.Context, summary *models.EventSummary) error {
	data, err := json.Marshal(summary.Ratings)
	if err != nil {
		return fmt.Errorf("encode event summary %s: %w", summary.EventCode, err)
	}
	now := stampNow()
	_, err = s.pool.Exec(ctx,
		`INSERT INTO fsm_event_summaries (event_code, ratings, set_time) VALUES ($1, $2::jsonb, $3)
		 ON CONFLICT (event_code) DO UPDATE SET ratings = EXCLUDED.ratings, set_time = EXCLUDED.set_time`,
		summary.EventCode, string(data), now)
	if err != nil {
		return fmt.Errorf("put event summary %s: %w", summary.EventCode, err)
	}
	summary.SetTime = now
	return nil
}

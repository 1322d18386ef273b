package store

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/openfrc/stats-api/internal/models"
)

type MockPgPool struct {
	QueryRowFunc func(ctx context.Context, sql string, args ...any) pgx.Row
	ExecFunc     func(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func (m *MockPgPool) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if m.QueryRowFunc != nil {
		return m.QueryRowFunc(ctx, sql, args...)
	}
	return &MockRow{err: pgx.ErrNoRows}
}

func (m *MockPgPool) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if m.ExecFunc != nil {
		return m.ExecFunc(ctx, sql, args...)
	}
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

// MockRow scans a JSON payload and a timestamp
type MockRow struct {
	payload []byte
	setTime time.Time
	err     error
}

func (r *MockRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*dest[0].(*[]byte) = r.payload
	*dest[1].(*time.Time) = r.setTime
	return nil
}

func TestPostgresStore_GetShard(t *testing.T) {
	setTime := time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name    string
		row     *MockRow
		wantErr error
		want    float64
	}{
		{name: "found", row: &MockRow{payload: []byte(`{"frc254":81.5}`), setTime: setTime}, want: 81.5},
		{name: "missing", row: &MockRow{err: pgx.ErrNoRows}, wantErr: ErrNotFound},
		{name: "corrupt payload", row: &MockRow{payload: []byte(`{`), setTime: setTime}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pool := &MockPgPool{
				QueryRowFunc: func(_ context.Context, sql string, args ...any) pgx.Row {
					if args[0].(int) != 202503 {
						t.Errorf("queried shard %v, want 202503", args[0])
					}
					return tt.row
				},
			}
			shard, err := NewPostgresStore(pool).GetShard(context.Background(), 202503)

			switch {
			case tt.wantErr != nil:
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("got %v, want %v", err, tt.wantErr)
				}
			case tt.row.payload != nil && tt.want == 0:
				if err == nil {
					t.Fatal("expected decode error")
				}
			default:
				if err != nil {
					t.Fatal(err)
				}
				if shard.Rankings["frc254"] != tt.want || !shard.SetTime.Equal(setTime) {
					t.Errorf("got %+v", shard)
				}
			}
		})
	}
}

func TestPostgresStore_PutShard(t *testing.T) {
	expected := time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name     string
		expected time.Time
		tag      string
		wantVerb string
		wantErr  error
		wantArgs int
	}{
		{name: "first write inserts", tag: "INSERT 0 1", wantVerb: "INSERT", wantArgs: 3},
		{name: "insert lost the race", tag: "INSERT 0 0", wantVerb: "INSERT", wantArgs: 3, wantErr: ErrConflict},
		{name: "refresh updates", expected: expected, tag: "UPDATE 1", wantVerb: "UPDATE", wantArgs: 4},
		{name: "update lost the race", expected: expected, tag: "UPDATE 0", wantVerb: "UPDATE", wantArgs: 4, wantErr: ErrConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pool := &MockPgPool{
				ExecFunc: func(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
					if !strings.HasPrefix(strings.TrimSpace(sql), tt.wantVerb) {
						t.Errorf("sql %q, want %s", sql, tt.wantVerb)
					}
					if len(args) != tt.wantArgs {
						t.Errorf("got %d args, want %d", len(args), tt.wantArgs)
					}
					var rankings map[string]float64
					if err := json.Unmarshal([]byte(args[1].(string)), &rankings); err != nil || rankings["frc1"] != 3 {
						t.Errorf("rankings arg = %v (%v)", args[1], err)
					}
					return pgconn.NewCommandTag(tt.tag), nil
				},
			}
			shard := &models.GlobalRankingShard{ShardID: 1, Rankings: map[string]float64{"frc1": 3}}
			err := NewPostgresStore(pool).PutShard(context.Background(), shard, tt.expected)

			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("got %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr == nil && shard.SetTime.IsZero() {
				t.Error("SetTime not stamped on success")
			}
		})
	}
}

func TestPostgresStore_ExecError(t *testing.T) {
	boom := errors.New("connection reset")
	pool := &MockPgPool{
		ExecFunc: func(context.Context, string, ...any) (pgconn.CommandTag, error) {
			return pgconn.CommandTag{}, boom
		},
	}
	s := NewPostgresStore(pool)

	err := s.PutShard(context.Background(), &models.GlobalRankingShard{ShardID: 1}, time.Time{})
	if !errors.Is(err, boom) || errors.Is(err, ErrConflict) {
		t.Errorf("PutShard: got %v, want wrapped exec error", err)
	}
	if err := s.Migrate(context.Background()); !errors.Is(err, boom) {
		t.Errorf("Migrate: got %v", err)
	}
	if err := s.PutEventSummary(context.Background(), &models.EventSummary{EventCode: "2025casj"}); !errors.Is(err, boom) {
		t.Errorf("PutEventSummary: got %v", err)
	}
}

func TestPostgresStore_EventSummary(t *testing.T) {
	setTime := time.Date(2025, 3, 8, 0, 0, 0, 0, time.UTC)
	var upserted bool
	pool := &MockPgPool{
		QueryRowFunc: func(_ context.Context, _ string, args ...any) pgx.Row {
			if args[0] != "2025casj" {
				return &MockRow{err: pgx.ErrNoRows}
			}
			return &MockRow{payload: []byte(`{"frc254":42}`), setTime: setTime}
		},
		ExecFunc: func(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
			upserted = strings.Contains(sql, "ON CONFLICT (event_code) DO UPDATE")
			return pgconn.NewCommandTag("INSERT 0 1"), nil
		},
	}
	s := NewPostgresStore(pool)

	got, err := s.GetEventSummary(context.Background(), "2025casj")
	if err != nil {
		t.Fatal(err)
	}
	if got.Ratings["frc254"] != 42 || got.EventCode != "2025casj" {
		t.Errorf("got %+v", got)
	}
	if _, err := s.GetEventSummary(context.Background(), "2025txhou"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing summary: got %v", err)
	}

	sum := &models.EventSummary{EventCode: "2025casj", Ratings: map[string]float64{"frc254": 43}}
	if err := s.PutEventSummary(context.Background(), sum); err != nil {
		t.Fatal(err)
	}
	if !upserted {
		t.Error("PutEventSummary did not upsert")
	}
}

package logic

import (
	"context"
	"fmt"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"github.com/openfrc/stats-api/internal/models"
)

const defaultHistoryLimit = 50

type historyService struct {
	ch driver.Conn
}

func NewHistoryService(ch driver.Conn) HistoryService {
	return &historyService{ch: ch}
}

// GetTeamHistory returns a team's most recent archived rating per event, newest first
func (s *historyService) GetTeamHistory(ctx context.Context, teamKey string, limit int) ([]models.RatingHistoryPoint, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}

	query := `
		SELECT
			event_code,
			argMax(fsm, computed_at) as fsm,
			argMax(matches, computed_at) as matches,
			max(computed_at) as last_computed
		FROM fsm_stats.rating_snapshots
		WHERE team_key = ?
		GROUP BY event_code
		ORDER BY last_computed DESC
		LIMIT ?
	`
	rows, err := s.ch.Query(ctx, query, teamKey, limit)
	if err != nil {
		return nil, fmt.Errorf("query rating history: %w", err)
	}
	defer rows.Close()

	var out []models.RatingHistoryPoint
	for rows.Next() {
		var p models.RatingHistoryPoint
		if err := rows.Scan(&p.EventCode, &p.FSM, &p.Matches, &p.ComputedAt); err != nil {
			continue
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

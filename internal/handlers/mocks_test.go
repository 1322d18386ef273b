package handlers

import (
	"context"

	"github.com/openfrc/stats-api/internal/logic"
	"github.com/openfrc/stats-api/internal/models"
)

type MockRatings struct {
	EventRatingsFunc   func(ctx context.Context, eventCode string) (map[string]float64, error)
	EventStandingsFunc func(ctx context.Context, eventCode string) ([]models.EventStanding, error)
}

func (m *MockRatings) EventRatings(ctx context.Context, eventCode string) (map[string]float64, error) {
	if m.EventRatingsFunc != nil {
		return m.EventRatingsFunc(ctx, eventCode)
	}
	return map[string]float64{}, nil
}

func (m *MockRatings) EventStandings(ctx context.Context, eventCode string) ([]models.EventStanding, error) {
	if m.EventStandingsFunc != nil {
		return m.EventStandingsFunc(ctx, eventCode)
	}
	return nil, nil
}

func (m *MockRatings) DraftTeams(ctx context.Context, eventCode string) ([]models.DraftTeam, error) {
	return nil, nil
}

type MockGlobal struct {
	GetGlobalStatsFunc func(ctx context.Context, year int, opts logic.GlobalOptions) ([]models.TeamStat, error)
	CompositeFunc      func(ctx context.Context, years []int) ([]models.TeamStat, error)
}

func (m *MockGlobal) GetGlobalStats(ctx context.Context, year int, opts logic.GlobalOptions) ([]models.TeamStat, error) {
	if m.GetGlobalStatsFunc != nil {
		return m.GetGlobalStatsFunc(ctx, year, opts)
	}
	return nil, nil
}

func (m *MockGlobal) GetTeamStats(ctx context.Context, teamKey string, year int, includeOffseason bool) (float64, error) {
	return 42, nil
}

func (m *MockGlobal) CompositeRatings(ctx context.Context, years []int) ([]models.TeamStat, error) {
	if m.CompositeFunc != nil {
		return m.CompositeFunc(ctx, years)
	}
	return nil, nil
}

func (m *MockGlobal) PredictNextSeason(ctx context.Context, year int) ([]models.TeamPrediction, error) {
	return []models.TeamPrediction{{TeamKey: "frc254", PredictedFSM: 1600}}, nil
}

type MockDraft struct {
	SimulateFunc func(ctx context.Context, eventCode string) (*models.DraftResult, error)
	PredictFunc  func(ctx context.Context, req models.MatchPredictionRequest) (*models.MatchPrediction, error)
}

func (m *MockDraft) SimulateEventDraft(ctx context.Context, eventCode string) (*models.DraftResult, error) {
	if m.SimulateFunc != nil {
		return m.SimulateFunc(ctx, eventCode)
	}
	return &models.DraftResult{}, nil
}

func (m *MockDraft) PredictMatch(ctx context.Context, req models.MatchPredictionRequest) (*models.MatchPrediction, error) {
	if m.PredictFunc != nil {
		return m.PredictFunc(ctx, req)
	}
	return &models.MatchPrediction{ExpectedWinner: "tie", RedWinProb: 0.5}, nil
}

type MockLuck struct {
	SeasonLuckFunc func(ctx context.Context, eventCodes []string) ([]models.SeasonLuck, error)
}

func (m *MockLuck) EventLuck(ctx context.Context, eventCode string) (map[string]models.LuckMetrics, error) {
	return map[string]models.LuckMetrics{"frc254": {Unlucky: 1.5}}, nil
}

func (m *MockLuck) SeasonLuck(ctx context.Context, eventCodes []string) ([]models.SeasonLuck, error) {
	if m.SeasonLuckFunc != nil {
		return m.SeasonLuckFunc(ctx, eventCodes)
	}
	return nil, nil
}

type MockHistory struct {
	GotLimit int
}

func (m *MockHistory) GetTeamHistory(ctx context.Context, teamKey string, limit int) ([]models.RatingHistoryPoint, error) {
	m.GotLimit = limit
	return []models.RatingHistoryPoint{{EventCode: "2025casj", FSM: 55}}, nil
}

type MockTeams struct{}

func (MockTeams) Locations(ctx context.Context, teamKeys []string) map[string]models.TeamInfo {
	out := make(map[string]models.TeamInfo, len(teamKeys))
	for _, k := range teamKeys {
		out[k] = models.TeamInfo{Key: k, RegionKey: "usa-california"}
	}
	return out
}

type MockQueue struct{ Depth int }

func (m MockQueue) QueueDepth() int { return m.Depth }

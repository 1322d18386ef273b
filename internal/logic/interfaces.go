package logic

import (
	"context"

	"github.com/openfrc/stats-api/internal/models"
	"github.com/openfrc/stats-api/internal/scoring"
)

// MatchProvider is the read-only results provider
type MatchProvider interface {
	ListQualMatches(ctx context.Context, eventCode string) ([]models.MatchResult, error)
	ListRankings(ctx context.Context, eventCode string) ([]models.Ranking, error)
	ListAlliances(ctx context.Context, eventCode string) ([]models.AllianceAssignment, error)
	ListTeams(ctx context.Context, year, page int) ([]string, error)
	GetTeamEvents(ctx context.Context, teamKey string, year int) ([]models.EventRef, error)
	GetTeam(ctx context.Context, teamKey string) (*models.TeamInfo, error)
}

// ScoringModel predicts an alliance score from its feature vector
type ScoringModel interface {
	Predict(ctx context.Context, features scoring.Features) (float64, error)
}

// SnapshotSink receives computed ratings for the history store
type SnapshotSink interface {
	Enqueue(snapshot *models.RatingSnapshot) bool
}

// RatingService computes and caches per-event ratings
type RatingService interface {
	EventRatings(ctx context.Context, eventCode string) (map[string]float64, error)
	EventStandings(ctx context.Context, eventCode string) ([]models.EventStanding, error)
	DraftTeams(ctx context.Context, eventCode string) ([]models.DraftTeam, error)
}

// GlobalService builds season-wide rankings
type GlobalService interface {
	GetGlobalStats(ctx context.Context, year int, opts GlobalOptions) ([]models.TeamStat, error)
	GetTeamStats(ctx context.Context, teamKey string, year int, includeOffseason bool) (float64, error)
	CompositeRatings(ctx context.Context, years []int) ([]models.TeamStat, error)
	PredictNextSeason(ctx context.Context, year int) ([]models.TeamPrediction, error)
}

// DraftService simulates alliance selection and forecasts matches
type DraftService interface {
	SimulateEventDraft(ctx context.Context, eventCode string) (*models.DraftResult, error)
	PredictMatch(ctx context.Context, req models.MatchPredictionRequest) (*models.MatchPrediction, error)
}

// LuckService measures schedule and ranking luck
type LuckService interface {
	EventLuck(ctx context.Context, eventCode string) (map[string]models.LuckMetrics, error)
	SeasonLuck(ctx context.Context, eventCodes []string) ([]models.SeasonLuck, error)
}

// HistoryService reads archived rating snapshots
type HistoryService interface {
	GetTeamHistory(ctx context.Context, teamKey string, limit int) ([]models.RatingHistoryPoint, error)
}

// TeamDirectory resolves team metadata
type TeamDirectory interface {
	Locations(ctx context.Context, teamKeys []string) map[string]models.TeamInfo
}

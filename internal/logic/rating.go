package logic

import (
	"context"
	"errors"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/openfrc/stats-api/internal/metrics"
	"github.com/openfrc/stats-api/internal/models"
	"github.com/openfrc/stats-api/internal/store"
)

// ComputeRatings runs the FSM rating passes over an event's matches, oldest first.
// It is a pure function of its inputs.
//
// A team starts at its alliance score / 3 the first time it appears. Every sweep
// nudges each team by the alliance's residual share, scaled by UpFactor or
// DownFactor and by Decay^iteration. Late matches get extra passes per sweep.
func ComputeRatings(matches []models.MatchResult, t Tuning) (map[string]float64, error) {
	if len(matches) == 0 {
		return nil, &NoMatchDataError{}
	}

	ratings := make(map[string]float64)
	total := len(matches)

	for iter := 0; iter < t.MaxIters; iter++ {
		lr := math.Pow(t.Decay, float64(iter))
		for i := range matches {
			m := &matches[i]
			passes := passesFor(total-i, t)
			for p := 0; p < passes; p++ {
				adjustAlliance(ratings, m.RedTeams, m.RedScore, lr, t)
				adjustAlliance(ratings, m.BlueTeams, m.BlueScore, lr, t)
			}
		}
	}
	return ratings, nil
}

func passesFor(remaining int, t Tuning) int {
	switch {
	case remaining < t.TriplePassEnd:
		return 3
	case remaining < t.DoublePassEnd:
		return 2
	default:
		return 1
	}
}

func adjustAlliance(ratings map[string]float64, teams [3]string, score, lr float64, t Tuning) {
	predicted := 0.0
	for _, team := range teams {
		if team == "" {
			continue
		}
		r, ok := ratings[team]
		if !ok {
			r = score / 3
			ratings[team] = r
		}
		predicted += r
	}

	delta := (score - predicted) / 3
	factor := t.DownFactor
	if delta > 0 {
		factor = t.UpFactor
	}
	step := delta * factor * lr
	for _, team := range teams {
		if team != "" {
			ratings[team] += step
		}
	}
}

// ComponentAverages is each team's mean share (1/3) of its alliance's breakdown
// components. Matches without a breakdown are ignored.
func ComponentAverages(matches []models.MatchResult) map[string]models.ScoreBreakdown {
	sums := make(map[string]models.ScoreBreakdown)
	counts := make(map[string]int)

	add := func(teams [3]string, b *models.ScoreBreakdown) {
		if b == nil {
			return
		}
		for _, team := range teams {
			if team == "" {
				continue
			}
			s := sums[team]
			s.Algae += b.Algae / 3
			s.Coral += b.Coral / 3
			s.Auto += b.Auto / 3
			s.Climb += b.Climb / 3
			sums[team] = s
			counts[team]++
		}
	}
	for i := range matches {
		add(matches[i].RedTeams, matches[i].RedBreakdown)
		add(matches[i].BlueTeams, matches[i].BlueBreakdown)
	}

	out := make(map[string]models.ScoreBreakdown, len(sums))
	for team, s := range sums {
		n := float64(counts[team])
		out[team] = models.ScoreBreakdown{Algae: s.Algae / n, Coral: s.Coral / n, Auto: s.Auto / n, Climb: s.Climb / n}
	}
	return out
}

// FormatFSM renders a rating with two decimal places
func FormatFSM(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

// JoinStandings pairs every officially ranked team with its rating. Teams absent
// from ratings get 0.00.
func JoinStandings(rankings []models.Ranking, ratings map[string]float64) []models.EventStanding {
	out := make([]models.EventStanding, 0, len(rankings))
	for _, r := range rankings {
		out = append(out, models.EventStanding{
			TeamKey: r.TeamKey,
			Rank:    r.Rank,
			FSM:     FormatFSM(ratings[r.TeamKey]),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Rank < out[j].Rank })
	return out
}

type ratingService struct {
	provider   MatchProvider
	store      store.Store
	sink       SnapshotSink
	tuning     Tuning
	summaryTTL time.Duration
	logger     *zap.SugaredLogger
}

// RatingConfig wires a RatingService
type RatingConfig struct {
	Provider MatchProvider
	Store    store.Store
	// Sink may be nil when no history store is configured
	Sink       SnapshotSink
	Tuning     Tuning
	SummaryTTL time.Duration
	Logger     *zap.Logger
}

func NewRatingService(cfg RatingConfig) RatingService {
	return &ratingService{
		provider:   cfg.Provider,
		store:      cfg.Store,
		sink:       cfg.Sink,
		tuning:     cfg.Tuning,
		summaryTTL: cfg.SummaryTTL,
		logger:     cfg.Logger.Sugar(),
	}
}

// EventRatings returns the ratings of an event, served from the ranking store when
// a fresh summary exists.
func (s *ratingService) EventRatings(ctx context.Context, eventCode string) (map[string]float64, error) {
	summary, err := s.store.GetEventSummary(ctx, eventCode)
	switch {
	case err == nil && len(summary.Ratings) > 0 && s.summaryFresh(summary.SetTime):
		metrics.EventRatings.WithLabelValues("cache").Inc()
		return summary.Ratings, nil
	case err != nil && !errors.Is(err, store.ErrNotFound):
		s.logger.Warnw("Event summary read failed, recomputing", "event", eventCode, "error", err)
	}

	matches, err := s.provider.ListQualMatches(ctx, eventCode)
	if err != nil {
		metrics.EventRatings.WithLabelValues("failed").Inc()
		return nil, &DataFetchError{Op: "qual matches", Key: eventCode, Err: err}
	}

	start := time.Now()
	ratings, err := ComputeRatings(matches, s.tuning)
	if err != nil {
		metrics.EventRatings.WithLabelValues("failed").Inc()
		var noData *NoMatchDataError
		if errors.As(err, &noData) {
			noData.EventCode = eventCode
		}
		return nil, err
	}
	metrics.RatingDuration.Observe(time.Since(start).Seconds())
	metrics.EventRatings.WithLabelValues("computed").Inc()

	if err := s.store.PutEventSummary(ctx, &models.EventSummary{EventCode: eventCode, Ratings: ratings}); err != nil {
		s.logger.Warnw("Failed to cache event summary", "event", eventCode, "error", err)
	}
	s.emitSnapshots(eventCode, matches, ratings)

	s.logger.Infow("Event rated", "event", eventCode, "matches", len(matches), "teams", len(ratings), "duration", time.Since(start))
	return ratings, nil
}

func (s *ratingService) summaryFresh(setTime time.Time) bool {
	return s.summaryTTL <= 0 || time.Since(setTime) < s.summaryTTL
}

func (s *ratingService) emitSnapshots(eventCode string, matches []models.MatchResult, ratings map[string]float64) {
	if s.sink == nil {
		return
	}

	played := make(map[string]uint32, len(ratings))
	for i := range matches {
		for _, team := range matches[i].RedTeams {
			played[team]++
		}
		for _, team := range matches[i].BlueTeams {
			played[team]++
		}
	}

	runID := uuid.New().String()
	now := time.Now().UTC()
	for team, fsm := range ratings {
		s.sink.Enqueue(&models.RatingSnapshot{
			RunID:      runID,
			EventCode:  eventCode,
			TeamKey:    team,
			FSM:        fsm,
			Matches:    played[team],
			ComputedAt: now,
		})
	}
}

func (s *ratingService) EventStandings(ctx context.Context, eventCode string) ([]models.EventStanding, error) {
	ratings, err := s.EventRatings(ctx, eventCode)
	if err != nil {
		return nil, err
	}
	rankings, err := s.provider.ListRankings(ctx, eventCode)
	if err != nil {
		return nil, &DataFetchError{Op: "rankings", Key: eventCode, Err: err}
	}
	return JoinStandings(rankings, ratings), nil
}

// DraftTeams assembles draft inputs from official ranks, ratings and component averages.
// Component averages come from the raw matches, so this always reads the provider.
func (s *ratingService) DraftTeams(ctx context.Context, eventCode string) ([]models.DraftTeam, error) {
	matches, err := s.provider.ListQualMatches(ctx, eventCode)
	if err != nil {
		return nil, &DataFetchError{Op: "qual matches", Key: eventCode, Err: err}
	}
	rankings, err := s.provider.ListRankings(ctx, eventCode)
	if err != nil {
		return nil, &DataFetchError{Op: "rankings", Key: eventCode, Err: err}
	}
	ratings, err := s.EventRatings(ctx, eventCode)
	if err != nil {
		return nil, err
	}

	components := ComponentAverages(matches)
	teams := make([]models.DraftTeam, 0, len(rankings))
	for _, r := range rankings {
		c := components[r.TeamKey]
		teams = append(teams, models.DraftTeam{
			TeamKey: r.TeamKey,
			Rank:    r.Rank,
			FSM:     ratings[r.TeamKey],
			Algae:   c.Algae,
			Coral:   c.Coral,
			Auto:    c.Auto,
			Climb:   c.Climb,
		})
	}
	return teams, nil
}

package logic

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/openfrc/stats-api/internal/metrics"
	"github.com/openfrc/stats-api/internal/models"
	"github.com/openfrc/stats-api/internal/store"
)

// ShardStride separates the shard id ranges of different seasons. Pages of the
// offseason-inclusive view live in the upper half of a season's range.
const ShardStride = 100

const offseasonShardOffset = ShardStride / 2

// DefaultShardsPerSeason is the page count of the reference season
const DefaultShardsPerSeason = 22

// ShardID maps a season page to its ranking store id
func ShardID(year, page int, includeOffseason bool) int {
	id := year*ShardStride + page
	if includeOffseason {
		id += offseasonShardOffset
	}
	return id
}

// GlobalOptions tunes a single GetGlobalStats call
type GlobalOptions struct {
	IncludeOffseason bool
	// Priority allows expired (non-empty) shards to refresh, up to the refresh budget.
	Priority bool
}

// GlobalConfig wires a GlobalService
type GlobalConfig struct {
	Provider        MatchProvider
	Store           store.Store
	Ratings         RatingService
	Tuning          Tuning
	ShardsPerSeason int
	// ShardTTL is the age after which a non-empty shard is expired. Zero never expires.
	ShardTTL time.Duration
	// PriorityRefreshBudget caps expired-shard refreshes per priority call. Zero is unlimited.
	PriorityRefreshBudget int
	RefreshConcurrency    int
	Logger                *zap.Logger
}

type globalService struct {
	provider    MatchProvider
	store       store.Store
	ratings     RatingService
	tuning      Tuning
	pages       int
	shardTTL    time.Duration
	budget      int
	concurrency int
	logger      *zap.SugaredLogger
}

func NewGlobalService(cfg GlobalConfig) (GlobalService, error) {
	if cfg.ShardsPerSeason <= 0 {
		cfg.ShardsPerSeason = DefaultShardsPerSeason
	}
	if cfg.ShardsPerSeason > offseasonShardOffset {
		return nil, fmt.Errorf("shards per season must be at most %d, got %d", offseasonShardOffset, cfg.ShardsPerSeason)
	}
	if cfg.RefreshConcurrency <= 0 {
		cfg.RefreshConcurrency = 4
	}
	return &globalService{
		provider:    cfg.Provider,
		store:       cfg.Store,
		ratings:     cfg.Ratings,
		tuning:      cfg.Tuning,
		pages:       cfg.ShardsPerSeason,
		shardTTL:    cfg.ShardTTL,
		budget:      cfg.PriorityRefreshBudget,
		concurrency: cfg.RefreshConcurrency,
		logger:      cfg.Logger.Sugar(),
	}, nil
}

// GetGlobalStats returns every team's best FSM for a season, sorted descending.
// Missing or empty shards are always rebuilt; expired shards only on priority calls.
func (s *globalService) GetGlobalStats(ctx context.Context, year int, opts GlobalOptions) ([]models.TeamStat, error) {
	current := make([]*models.GlobalRankingShard, s.pages)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for page := 0; page < s.pages; page++ {
		page := page
		g.Go(func() error {
			shard, err := s.store.GetShard(gctx, ShardID(year, page, opts.IncludeOffseason))
			if err != nil && !errors.Is(err, store.ErrNotFound) {
				s.logger.Warnw("Shard read failed, treating as missing", "year", year, "page", page, "error", err)
			}
			current[page] = shard
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	refresh := s.selectRefreshes(current, opts.Priority)

	memo := newEventMemo(s.ratings)
	g, gctx = errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for _, page := range refresh {
		page := page
		g.Go(func() error {
			current[page] = s.refreshShard(gctx, year, page, opts.IncludeOffseason, current[page], memo)
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	merged := make(map[string]float64)
	for _, shard := range current {
		if shard == nil {
			continue
		}
		for team, v := range shard.Rankings {
			merged[team] = v
		}
	}

	out := make([]models.TeamStat, 0, len(merged))
	for team, v := range merged {
		out = append(out, models.TeamStat{TeamKey: team, BestFSM: v})
	}
	sortTeamStats(out)
	return out, nil
}

// selectRefreshes walks pages in order. Missing or empty shards always refresh;
// expired shards refresh on priority calls while the budget lasts.
func (s *globalService) selectRefreshes(current []*models.GlobalRankingShard, priority bool) []int {
	var pages []int
	budget := s.budget
	for page, shard := range current {
		if shard == nil || len(shard.Rankings) == 0 {
			pages = append(pages, page)
			continue
		}
		if !priority || !s.expired(shard) {
			continue
		}
		if s.budget > 0 && budget == 0 {
			metrics.ShardRefreshes.WithLabelValues("skipped").Inc()
			continue
		}
		budget--
		pages = append(pages, page)
	}
	return pages
}

func (s *globalService) expired(shard *models.GlobalRankingShard) bool {
	return s.shardTTL > 0 && time.Since(shard.SetTime) >= s.shardTTL
}

// refreshShard rebuilds one page and writes it back with compare-and-swap. When
// another writer got there first, the winner's shard is adopted.
func (s *globalService) refreshShard(ctx context.Context, year, page int, includeOffseason bool, prev *models.GlobalRankingShard, memo *eventMemo) *models.GlobalRankingShard {
	id := ShardID(year, page, includeOffseason)

	teams, err := s.provider.ListTeams(ctx, year, page)
	if err != nil {
		metrics.ShardRefreshes.WithLabelValues("failed").Inc()
		s.logger.Warnw("Shard team listing failed", "year", year, "page", page, "error", err)
		return prev
	}

	rankings := make(map[string]float64, len(teams))
	for _, team := range teams {
		best, err := s.teamBest(ctx, team, year, includeOffseason, memo)
		if err != nil {
			s.logger.Warnw("Team stats failed, omitting from shard", "team", team, "year", year, "error", err)
			continue
		}
		rankings[team] = best
	}
	if err := ctx.Err(); err != nil {
		return prev
	}

	var expected time.Time
	if prev != nil {
		expected = prev.SetTime
	}
	shard := &models.GlobalRankingShard{ShardID: id, Rankings: rankings}
	err = s.store.PutShard(ctx, shard, expected)
	switch {
	case err == nil:
		metrics.ShardRefreshes.WithLabelValues("refreshed").Inc()
		s.logger.Infow("Shard refreshed", "year", year, "page", page, "teams", len(rankings))
		return shard
	case errors.Is(err, store.ErrConflict):
		metrics.ShardRefreshes.WithLabelValues("conflict").Inc()
		if winner, rerr := s.store.GetShard(ctx, id); rerr == nil {
			return winner
		}
		return shard
	default:
		metrics.ShardRefreshes.WithLabelValues("failed").Inc()
		s.logger.Errorw("Shard write failed, serving computed rankings", "year", year, "page", page, "error", err)
		return shard
	}
}

// GetTeamStats returns a team's best rating across its events of the season.
func (s *globalService) GetTeamStats(ctx context.Context, teamKey string, year int, includeOffseason bool) (float64, error) {
	return s.teamBest(ctx, teamKey, year, includeOffseason, newEventMemo(s.ratings))
}

func (s *globalService) teamBest(ctx context.Context, teamKey string, year int, includeOffseason bool, memo *eventMemo) (float64, error) {
	events, err := s.provider.GetTeamEvents(ctx, teamKey, year)
	if err != nil {
		return 0, &DataFetchError{Op: "team events", Key: teamKey, Err: err}
	}

	best := 0.0
	for _, ev := range events {
		if ev.IsOffseason() && !includeOffseason {
			continue
		}
		ratings, err := memo.get(ctx, ev.Key)
		if err != nil {
			s.logger.Debugw("Skipping unrated event", "team", teamKey, "event", ev.Key, "error", err)
			continue
		}
		if v, ok := ratings[teamKey]; ok && v > best {
			best = v
		}
	}
	return best, nil
}

// CompositeRatings normalizes several seasons into one recency-and-consistency rating.
// A season that cannot be loaded is left out.
func (s *globalService) CompositeRatings(ctx context.Context, years []int) ([]models.TeamStat, error) {
	byYear := s.loadSeasons(ctx, years)
	if len(byYear) == 0 {
		return nil, fmt.Errorf("no season data for years %v", years)
	}
	return NormalizeAcrossYears(byYear, s.tuning), nil
}

// PredictNextSeason projects ratings for year+1 from year-2..year.
func (s *globalService) PredictNextSeason(ctx context.Context, year int) ([]models.TeamPrediction, error) {
	byYear := s.loadSeasons(ctx, []int{year - 2, year - 1, year})
	if _, ok := byYear[year]; !ok {
		return nil, &DataFetchError{Op: "global stats", Key: fmt.Sprint(year), Err: errors.New("current season unavailable")}
	}
	return PredictNextSeason(byYear, year, s.tuning), nil
}

func (s *globalService) loadSeasons(ctx context.Context, years []int) map[int][]models.TeamStat {
	var mu sync.Mutex
	byYear := make(map[int][]models.TeamStat, len(years))

	g, gctx := errgroup.WithContext(ctx)
	for _, y := range years {
		y := y
		g.Go(func() error {
			stats, err := s.GetGlobalStats(gctx, y, GlobalOptions{})
			if err != nil {
				s.logger.Warnw("Season unavailable", "year", y, "error", err)
				return nil
			}
			mu.Lock()
			byYear[y] = stats
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return byYear
}

// eventMemo shares event ratings between the teams of one aggregation call.
type eventMemo struct {
	ratings RatingService
	mu      sync.Mutex
	done    map[string]eventMemoEntry
}

type eventMemoEntry struct {
	ratings map[string]float64
	err     error
}

func newEventMemo(ratings RatingService) *eventMemo {
	return &eventMemo{ratings: ratings, done: make(map[string]eventMemoEntry)}
}

func (m *eventMemo) get(ctx context.Context, eventKey string) (map[string]float64, error) {
	m.mu.Lock()
	entry, ok := m.done[eventKey]
	m.mu.Unlock()
	if ok {
		return entry.ratings, entry.err
	}

	ratings, err := m.ratings.EventRatings(ctx, eventKey)
	if ctx.Err() != nil {
		return nil, err
	}

	m.mu.Lock()
	m.done[eventKey] = eventMemoEntry{ratings: ratings, err: err}
	m.mu.Unlock()
	return ratings, err
}

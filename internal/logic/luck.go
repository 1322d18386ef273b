package logic

import (
	"context"
	"math"
	"sort"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/openfrc/stats-api/internal/models"
)

// Composite weights of the unluckiness score
const (
	luckSOSWeight   = 0.70
	luckRankWeight  = 0.25
	luckDraftWeight = 0.05
)

// ComputeLuck derives schedule, ranking and draft luck for every team at an event.
// alliances may be nil when the event has no alliance selection yet.
func ComputeLuck(ratings map[string]float64, rankings []models.Ranking, matches []models.MatchResult, alliances []models.AllianceAssignment) map[string]models.LuckMetrics {
	out := make(map[string]models.LuckMetrics)
	for team := range ratings {
		out[team] = models.LuckMetrics{}
	}
	for _, r := range rankings {
		out[r.TeamKey] = models.LuckMetrics{}
	}

	sos, sosZ := scheduleStrength(ratings, matches)
	rankLuck := rankUnlucky(ratings, rankings)
	var draftLuck map[string]float64
	if len(alliances) > 0 {
		draftLuck = draftUnlucky(ratings, alliances)
	}

	teams := make([]string, 0, len(out))
	for team := range out {
		teams = append(teams, team)
	}
	sort.Strings(teams)

	rankRaw := make([]float64, len(teams))
	draftRaw := make([]float64, len(teams))
	for i, team := range teams {
		rankRaw[i] = rankLuck[team]
		draftRaw[i] = draftLuck[team]
	}
	rankZ := zscores(rankRaw)
	draftZ := zscores(draftRaw)

	for i, team := range teams {
		z := sosZ[team]
		out[team] = models.LuckMetrics{
			SOS:                  sos[team],
			SOSZScore:            z,
			RankUnlucky:          rankRaw[i],
			RankUnluckyZScore:    rankZ[i],
			AllianceDraftUnlucky: draftRaw[i],
			Unlucky:              luckSOSWeight*signedSquare(z) + luckRankWeight*rankZ[i] + luckDraftWeight*draftZ[i],
		}
	}
	return out
}

func signedSquare(v float64) float64 {
	if v < 0 {
		return -v * v
	}
	return v * v
}

// scheduleStrength averages, per team, the signed square of (opponent average -
// teammate average). The z-score treats each team's mean as a sample mean of the
// event-wide contribution distribution.
func scheduleStrength(ratings map[string]float64, matches []models.MatchResult) (map[string]float64, map[string]float64) {
	perTeam := make(map[string][]float64)
	var all []float64

	side := func(own, opp [3]string) {
		oppAvg := allianceMean(ratings, opp, "")
		for _, team := range own {
			if team == "" {
				continue
			}
			c := signedSquare(oppAvg - allianceMean(ratings, own, team))
			perTeam[team] = append(perTeam[team], c)
			all = append(all, c)
		}
	}
	for i := range matches {
		side(matches[i].RedTeams, matches[i].BlueTeams)
		side(matches[i].BlueTeams, matches[i].RedTeams)
	}

	globalMean, globalStd := meanStd(all)
	sos := make(map[string]float64, len(perTeam))
	z := make(map[string]float64, len(perTeam))
	for team, cs := range perTeam {
		var sum float64
		for _, c := range cs {
			sum += c
		}
		mean := sum / float64(len(cs))
		sos[team] = mean
		z[team] = (mean - globalMean) / (globalStd / math.Sqrt(float64(len(cs))))
	}
	return sos, z
}

func allianceMean(ratings map[string]float64, teams [3]string, exclude string) float64 {
	var sum float64
	n := 0
	for _, team := range teams {
		if team == "" || team == exclude {
			continue
		}
		sum += ratings[team]
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// fsmPercentiles ranks the given teams by FSM: 0 for the lowest, 1 for the highest
func fsmPercentiles(ratings map[string]float64, teams []string) map[string]float64 {
	out := make(map[string]float64, len(teams))
	if len(teams) == 1 {
		out[teams[0]] = 1
		return out
	}
	for _, team := range teams {
		lower := 0
		for _, other := range teams {
			if ratings[other] < ratings[team] {
				lower++
			}
		}
		out[team] = float64(lower) / float64(len(teams)-1)
	}
	return out
}

// rankUnlucky scores teams that finished below their FSM-implied rank. Low-FSM teams
// get a heavier weight, and teams in the bottom of the field fade out through the
// credibility curve.
func rankUnlucky(ratings map[string]float64, rankings []models.Ranking) map[string]float64 {
	rated := make([]string, 0, len(rankings))
	for _, r := range rankings {
		if ratings[r.TeamKey] > 0 {
			rated = append(rated, r.TeamKey)
		}
	}
	sort.SliceStable(rated, func(i, j int) bool {
		if ratings[rated[i]] != ratings[rated[j]] {
			return ratings[rated[i]] > ratings[rated[j]]
		}
		return rated[i] < rated[j]
	})
	expected := make(map[string]int, len(rated))
	for i, team := range rated {
		expected[team] = i + 1
	}

	gaps := make(map[string]float64)
	maxGap := 0.0
	for _, r := range rankings {
		exp, ok := expected[r.TeamKey]
		if !ok || r.Rank <= exp {
			continue
		}
		gap := float64(r.Rank - exp)
		gaps[r.TeamKey] = gap
		maxGap = math.Max(maxGap, gap)
	}

	pct := fsmPercentiles(ratings, rated)
	out := make(map[string]float64, len(gaps))
	for team, gap := range gaps {
		p := pct[team]
		weight := 4.6 - 3.1*p
		credibility := 1 / (1 + math.Exp(-(p-0.25)/0.025))
		out[team] = math.Pow(gap/maxGap, 3) * 100 * weight * credibility
	}
	return out
}

// draftUnlucky credits the first pick of every alliance whose captain is below the
// average captain FSM, in proportion to the captain's deficit and the pick's percentile.
func draftUnlucky(ratings map[string]float64, alliances []models.AllianceAssignment) map[string]float64 {
	var sum float64
	n := 0
	for _, a := range alliances {
		if a[0] == "" {
			continue
		}
		sum += ratings[a[0]]
		n++
	}
	if n == 0 {
		return nil
	}
	avgCaptain := sum / float64(n)

	teams := make([]string, 0, len(ratings))
	for team := range ratings {
		teams = append(teams, team)
	}
	pct := fsmPercentiles(ratings, teams)

	out := make(map[string]float64)
	for _, a := range alliances {
		captain, first := a[0], a[1]
		if captain == "" || first == "" {
			continue
		}
		if deficit := avgCaptain - ratings[captain]; deficit > 0 {
			out[first] += deficit * pct[first]
		}
	}
	return out
}

// LuckConfig wires a LuckService
type LuckConfig struct {
	Provider    MatchProvider
	Ratings     RatingService
	Concurrency int
	Logger      *zap.Logger
}

type luckService struct {
	provider    MatchProvider
	ratings     RatingService
	concurrency int
	logger      *zap.SugaredLogger
}

func NewLuckService(cfg LuckConfig) LuckService {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	return &luckService{
		provider:    cfg.Provider,
		ratings:     cfg.Ratings,
		concurrency: cfg.Concurrency,
		logger:      cfg.Logger.Sugar(),
	}
}

func (s *luckService) EventLuck(ctx context.Context, eventCode string) (map[string]models.LuckMetrics, error) {
	ratings, err := s.ratings.EventRatings(ctx, eventCode)
	if err != nil {
		return nil, err
	}
	matches, err := s.provider.ListQualMatches(ctx, eventCode)
	if err != nil {
		return nil, &DataFetchError{Op: "qual matches", Key: eventCode, Err: err}
	}
	rankings, err := s.provider.ListRankings(ctx, eventCode)
	if err != nil {
		return nil, &DataFetchError{Op: "rankings", Key: eventCode, Err: err}
	}

	// Alliance selection is optional input
	alliances, err := s.provider.ListAlliances(ctx, eventCode)
	if err != nil {
		s.logger.Warnw("Alliances unavailable, skipping draft luck", "event", eventCode, "error", err)
		alliances = nil
	}

	return ComputeLuck(ratings, rankings, matches, alliances), nil
}

// SeasonLuck averages each team's unluckiness over the given events. Events that
// fail are logged and left out.
func (s *luckService) SeasonLuck(ctx context.Context, eventCodes []string) ([]models.SeasonLuck, error) {
	var mu sync.Mutex
	sums := make(map[string]float64)
	counts := make(map[string]int)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for _, code := range eventCodes {
		code := code
		g.Go(func() error {
			luck, err := s.EventLuck(gctx, code)
			if err != nil {
				s.logger.Warnw("Skipping event in season luck", "event", code, "error", err)
				return nil
			}
			mu.Lock()
			defer mu.Unlock()
			for team, m := range luck {
				sums[team] += m.Unlucky
				counts[team]++
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make([]models.SeasonLuck, 0, len(sums))
	for team, sum := range sums {
		out = append(out, models.SeasonLuck{TeamKey: team, Unlucky: sum / float64(counts[team]), Events: counts[team]})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Unlucky != out[j].Unlucky {
			return out[i].Unlucky > out[j].Unlucky
		}
		return out[i].TeamKey < out[j].TeamKey
	})
	return out, nil
}

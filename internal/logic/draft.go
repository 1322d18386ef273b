package logic

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/openfrc/stats-api/internal/metrics"
	"github.com/openfrc/stats-api/internal/models"
)

const (
	// AllianceCount is the number of playoff alliances
	AllianceCount = 8
	// MinDraftTeams is the smallest field that fills every alliance
	MinDraftTeams = AllianceCount * 3

	// Draft candidates are scored as a semifinal match
	draftCompLevel   = models.CompLevelSemifinal
	draftMatchNumber = 1
)

// SimulateDraft greedily builds eight alliances. Captains are taken by official
// rank; first picks (alliances 1..8) and then second picks (alliances 8..1) are the
// FSM-ordered candidates that maximize the blended alliance score. Until the second
// pick is made, the lowest-rated team stands in as the third member.
func SimulateDraft(ctx context.Context, teams []models.DraftTeam, model ScoringModel, t Tuning) (*models.DraftResult, error) {
	eligible := make([]models.DraftTeam, 0, len(teams))
	for _, team := range teams {
		if team.Rank <= 0 || validateTeam(team) != nil {
			continue
		}
		eligible = append(eligible, team)
	}
	if len(eligible) < MinDraftTeams {
		return nil, &InsufficientTeamsError{Have: len(eligible), Need: MinDraftTeams}
	}

	byRank := append([]models.DraftTeam(nil), eligible...)
	sort.SliceStable(byRank, func(i, j int) bool {
		if byRank[i].Rank != byRank[j].Rank {
			return byRank[i].Rank < byRank[j].Rank
		}
		return byRank[i].TeamKey < byRank[j].TeamKey
	})
	byFSM := append([]models.DraftTeam(nil), eligible...)
	sort.SliceStable(byFSM, func(i, j int) bool {
		if byFSM[i].FSM != byFSM[j].FSM {
			return byFSM[i].FSM > byFSM[j].FSM
		}
		return byFSM[i].TeamKey < byFSM[j].TeamKey
	})
	zero := byFSM[len(byFSM)-1]

	taken := make(map[string]bool, MinDraftTeams)
	var captains, firstPicks [AllianceCount]models.DraftTeam
	result := &models.DraftResult{}

	for a := 0; a < AllianceCount; a++ {
		captain, ok := nextByRank(byRank, taken)
		if !ok {
			return nil, &InsufficientTeamsError{Have: len(taken), Need: MinDraftTeams}
		}
		taken[captain.TeamKey] = true
		captains[a] = captain

		pick, _, err := bestCandidate(ctx, byFSM, taken, t.FirstPickCandidates, model, func(c models.DraftTeam) [3]models.DraftTeam {
			return [3]models.DraftTeam{captain, c, zero}
		})
		if err != nil {
			return nil, fmt.Errorf("alliance %d first pick: %w", a+1, err)
		}
		taken[pick.TeamKey] = true
		firstPicks[a] = pick
	}

	for a := AllianceCount - 1; a >= 0; a-- {
		captain, first := captains[a], firstPicks[a]
		pick, score, err := bestCandidate(ctx, byFSM, taken, t.SecondPickCandidates, model, func(c models.DraftTeam) [3]models.DraftTeam {
			return [3]models.DraftTeam{captain, first, c}
		})
		if err != nil {
			return nil, fmt.Errorf("alliance %d second pick: %w", a+1, err)
		}
		taken[pick.TeamKey] = true
		result.Alliances[a] = models.AllianceAssignment{captain.TeamKey, first.TeamKey, pick.TeamKey}
		result.Scores[a] = score
	}

	return result, nil
}

func nextByRank(byRank []models.DraftTeam, taken map[string]bool) (models.DraftTeam, bool) {
	for _, t := range byRank {
		if !taken[t.TeamKey] {
			return t, true
		}
	}
	return models.DraftTeam{}, false
}

var errNoCandidate = errors.New("no valid candidate remaining")

// bestCandidate scores up to limit valid, untaken teams in FSM order and returns
// the one with the highest blended score. Earlier candidates win ties.
func bestCandidate(ctx context.Context, byFSM []models.DraftTeam, taken map[string]bool, limit int, model ScoringModel, alliance func(models.DraftTeam) [3]models.DraftTeam) (models.DraftTeam, float64, error) {
	var best models.DraftTeam
	bestScore := math.Inf(-1)
	found := false
	evaluated := 0

	for _, cand := range byFSM {
		if evaluated >= limit {
			break
		}
		if taken[cand.TeamKey] || validateTeam(cand) != nil {
			continue
		}
		if err := ctx.Err(); err != nil {
			return best, 0, err
		}
		evaluated++

		score, err := BlendedAllianceScore(ctx, alliance(cand), draftCompLevel, draftMatchNumber, model)
		if err != nil {
			return best, 0, err
		}
		if math.IsNaN(score) {
			continue
		}
		if !found || score > bestScore {
			best, bestScore, found = cand, score, true
		}
	}
	if !found {
		return best, 0, errNoCandidate
	}
	return best, bestScore, nil
}

// DraftConfig wires a DraftService
type DraftConfig struct {
	Ratings RatingService
	Model   ScoringModel
	Tuning  Tuning
	// Timeout bounds one simulation. Zero means no limit beyond the caller's context.
	Timeout time.Duration
	Logger  *zap.Logger
}

type draftService struct {
	ratings RatingService
	model   ScoringModel
	tuning  Tuning
	timeout time.Duration
	logger  *zap.SugaredLogger
}

func NewDraftService(cfg DraftConfig) DraftService {
	return &draftService{
		ratings: cfg.Ratings,
		model:   cfg.Model,
		tuning:  cfg.Tuning,
		timeout: cfg.Timeout,
		logger:  cfg.Logger.Sugar(),
	}
}

func (s *draftService) SimulateEventDraft(ctx context.Context, eventCode string) (*models.DraftResult, error) {
	teams, err := s.ratings.DraftTeams(ctx, eventCode)
	if err != nil {
		metrics.DraftSimulations.WithLabelValues("failed").Inc()
		return nil, err
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	result, err := SimulateDraft(ctx, teams, s.model, s.tuning)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			metrics.DraftSimulations.WithLabelValues("timeout").Inc()
			return nil, &ComputationTimeoutError{Op: "alliance draft", Budget: s.timeout}
		}
		metrics.DraftSimulations.WithLabelValues("failed").Inc()
		return nil, err
	}

	metrics.DraftSimulations.WithLabelValues("ok").Inc()
	s.logger.Infow("Draft simulated", "event", eventCode, "teams", len(teams), "duration", time.Since(start))
	return result, nil
}

// PredictMatch forecasts both alliances with the blended score. Unrated teams
// count as zero.
func (s *draftService) PredictMatch(ctx context.Context, req models.MatchPredictionRequest) (*models.MatchPrediction, error) {
	teams, err := s.ratings.DraftTeams(ctx, req.EventCode)
	if err != nil {
		return nil, err
	}
	byKey := make(map[string]models.DraftTeam, len(teams))
	for _, t := range teams {
		byKey[t.TeamKey] = t
	}

	alliance := func(keys []string) [3]models.DraftTeam {
		var out [3]models.DraftTeam
		for i := 0; i < 3 && i < len(keys); i++ {
			t, ok := byKey[keys[i]]
			if !ok {
				t = models.DraftTeam{TeamKey: keys[i]}
			}
			out[i] = t
		}
		return out
	}

	compLevel := req.CompLevel
	if compLevel == "" {
		compLevel = models.CompLevelQual
	}

	red, err := BlendedAllianceScore(ctx, alliance(req.RedTeams), compLevel, req.MatchNumber, s.model)
	if err != nil {
		return nil, fmt.Errorf("red alliance: %w", err)
	}
	blue, err := BlendedAllianceScore(ctx, alliance(req.BlueTeams), compLevel, req.MatchNumber, s.model)
	if err != nil {
		return nil, fmt.Errorf("blue alliance: %w", err)
	}

	return PredictionFromScores(red, blue, s.tuning), nil
}

// PredictionFromScores converts blended alliance scores into a win probability.
func PredictionFromScores(red, blue float64, t Tuning) *models.MatchPrediction {
	p := 1 / (1 + math.Exp(-(red-blue)/t.WinProbScale))
	winner := "red"
	switch {
	case red < blue:
		winner = "blue"
	case red == blue:
		winner = "tie"
	}
	return &models.MatchPrediction{
		RedScore:       red,
		BlueScore:      blue,
		RedWinProb:     p,
		ExpectedWinner: winner,
	}
}

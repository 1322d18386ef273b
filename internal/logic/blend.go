package logic

import (
	"context"
	"math"

	"github.com/openfrc/stats-api/internal/models"
	"github.com/openfrc/stats-api/internal/scoring"
)

// BlendedAllianceScore is the mean of the scoring model's prediction and the raw
// FSM sum of the alliance.
func BlendedAllianceScore(ctx context.Context, alliance [3]models.DraftTeam, compLevel string, matchNumber int, model ScoringModel) (float64, error) {
	var teams [3]scoring.TeamFeatures
	sum := 0.0
	for i, t := range alliance {
		teams[i] = scoring.FromDraftTeam(t)
		sum += t.FSM
	}

	predicted, err := model.Predict(ctx, scoring.BuildFeatures(teams, compLevel, matchNumber))
	if err != nil {
		return 0, err
	}
	return (predicted + sum) / 2, nil
}

// validateTeam rejects teams whose stats cannot be fed to the model
func validateTeam(t models.DraftTeam) error {
	fields := []struct {
		name string
		v    float64
	}{
		{"fsm", t.FSM}, {"algae", t.Algae}, {"coral", t.Coral}, {"auto", t.Auto}, {"climb", t.Climb},
	}
	for _, f := range fields {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return &InvalidTeamStatsError{TeamKey: t.TeamKey, Field: f.name}
		}
	}
	return nil
}

// Package scoring wraps the pre-trained alliance score model.
//
// The model is opaque: it maps a 17-value feature vector to a predicted alliance
// score. For each of the three alliance teams, in order, the vector holds
// [fsm, algae, coral, auto, climb], followed by the comp level code and the
// match number.
package scoring

import (
	"fmt"

	"github.com/openfrc/stats-api/internal/models"
)

// FeatureCount is the length of the model input
const FeatureCount = 17

const perTeamFeatures = 5

// Features is the model input vector
type Features [FeatureCount]float64

// TeamFeatures are the per-team inputs of the model
type TeamFeatures struct {
	FSM   float64
	Algae float64
	Coral float64
	Auto  float64
	Climb float64
}

// FromDraftTeam extracts model inputs from a draft team
func FromDraftTeam(t models.DraftTeam) TeamFeatures {
	return TeamFeatures{FSM: t.FSM, Algae: t.Algae, Coral: t.Coral, Auto: t.Auto, Climb: t.Climb}
}

// CompLevelCode encodes a comp level; unknown levels map to qualification.
func CompLevelCode(level string) float64 {
	switch level {
	case models.CompLevelEighthfinal:
		return 1
	case models.CompLevelQuarter:
		return 2
	case models.CompLevelSemifinal:
		return 3
	case models.CompLevelFinal:
		return 4
	default:
		return 0
	}
}

// BuildFeatures lays out the model input for an alliance.
func BuildFeatures(alliance [3]TeamFeatures, compLevel string, matchNumber int) Features {
	var f Features
	for i, t := range alliance {
		base := i * perTeamFeatures
		f[base] = t.FSM
		f[base+1] = t.Algae
		f[base+2] = t.Coral
		f[base+3] = t.Auto
		f[base+4] = t.Climb
	}
	f[15] = CompLevelCode(compLevel)
	f[16] = float64(matchNumber)
	return f
}

// Validate rejects NaN features so a bad team never reaches the model
func (f Features) Validate() error {
	for i, v := range f {
		if v != v {
			return fmt.Errorf("feature %d is NaN", i)
		}
	}
	return nil
}

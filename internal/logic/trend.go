package logic

import (
	"math"
	"sort"

	"github.com/openfrc/stats-api/internal/models"
)

// PredictNextSeason projects each team's normalized rating one season past year,
// from its normalized ratings in year-2, year-1 and year. Teams absent from year
// are dropped.
func PredictNextSeason(statsByYear map[int][]models.TeamStat, year int, t Tuning) []models.TeamPrediction {
	earliest := NormalizeSeason(statsByYear[year-2], t)
	previous := NormalizeSeason(statsByYear[year-1], t)
	current := NormalizeSeason(statsByYear[year], t)

	out := make([]models.TeamPrediction, 0, len(current))
	for team, cur := range current {
		y1, hasPrev := previous[team]
		y2, hasEarliest := earliest[team]

		var pred float64
		switch {
		case hasPrev && hasEarliest:
			pred = rms([]float64{y2, y1, cur}) + t.ThreeYearSlopeWeight*steepestSlope(y2, y1, cur)
		case hasPrev:
			pred = (y1+cur)/2 + t.TwoYearSlopeWeight*(cur-y1)
		default:
			pred = cur + t.RookieBump
		}

		out = append(out, models.TeamPrediction{TeamKey: team, PredictedFSM: capGrowth(pred, cur, t)})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].PredictedFSM != out[j].PredictedFSM {
			return out[i].PredictedFSM > out[j].PredictedFSM
		}
		return out[i].TeamKey < out[j].TeamKey
	})
	return out
}

// steepestSlope compares the per-season slopes measured from the earliest season
// and returns the one with the larger magnitude.
func steepestSlope(y2, y1, cur float64) float64 {
	full := (cur - y2) / 2
	early := y1 - y2
	if math.Abs(early) > math.Abs(full) {
		return early
	}
	return full
}

// capGrowth bounds a projection around the current value. The growth cap is a
// power law that shrinks as the current value grows.
func capGrowth(pred, cur float64, t Tuning) float64 {
	if cur <= 0 {
		return pred
	}
	maxUp := cur + t.GrowthCapCoeff/math.Pow(cur, t.GrowthCapExponent)
	maxDown := cur - t.MaxDecline
	return math.Max(maxDown, math.Min(maxUp, pred))
}

package logic

import (
	"math"
	"sort"

	"github.com/openfrc/stats-api/internal/models"
)

// meanStd returns the population mean and standard deviation. A zero deviation
// is reported as 1 so callers can divide safely.
func meanStd(values []float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 1
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))

	var sq float64
	for _, v := range values {
		d := v - mean
		sq += d * d
	}
	std := math.Sqrt(sq / float64(len(values)))
	if std == 0 {
		std = 1
	}
	return mean, std
}

func rms(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sq float64
	for _, v := range values {
		sq += v * v
	}
	return math.Sqrt(sq / float64(len(values)))
}

// zscores returns (x-mean)/std for each value
func zscores(values []float64) []float64 {
	mean, std := meanStd(values)
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = (v - mean) / std
	}
	return out
}

// NormalizeSeason z-scores one season's best-FSM distribution and rescales it to
// center/spread (1500/100 by default).
func NormalizeSeason(stats []models.TeamStat, t Tuning) map[string]float64 {
	values := make([]float64, len(stats))
	for i, s := range stats {
		values[i] = s.BestFSM
	}
	mean, std := meanStd(values)

	out := make(map[string]float64, len(stats))
	for _, s := range stats {
		out[s.TeamKey] = t.NormCenter + t.NormSpread*(s.BestFSM-mean)/std
	}
	return out
}

// NormalizeAcrossYears builds a recency-and-consistency composite: each season is
// normalized on its own, then a team's composite is the RMS of its normalized
// values after dropping its single lowest season (when it has more than one).
func NormalizeAcrossYears(statsByYear map[int][]models.TeamStat, t Tuning) []models.TeamStat {
	years := make([]int, 0, len(statsByYear))
	for y := range statsByYear {
		years = append(years, y)
	}
	sort.Ints(years)

	perTeam := make(map[string][]float64)
	for _, y := range years {
		for team, v := range NormalizeSeason(statsByYear[y], t) {
			perTeam[team] = append(perTeam[team], v)
		}
	}

	out := make([]models.TeamStat, 0, len(perTeam))
	for team, values := range perTeam {
		if len(values) > 1 {
			values = dropLowest(values)
		}
		out = append(out, models.TeamStat{TeamKey: team, BestFSM: rms(values)})
	}
	sortTeamStats(out)
	return out
}

func dropLowest(values []float64) []float64 {
	lowest := 0
	for i, v := range values {
		if v < values[lowest] {
			lowest = i
		}
	}
	out := make([]float64, 0, len(values)-1)
	out = append(out, values[:lowest]...)
	return append(out, values[lowest+1:]...)
}

// sortTeamStats orders by value descending, then team key for stable output
func sortTeamStats(stats []models.TeamStat) {
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].BestFSM != stats[j].BestFSM {
			return stats[i].BestFSM > stats[j].BestFSM
		}
		return stats[i].TeamKey < stats[j].TeamKey
	})
}

package provider

import (
	"context"
	"fmt"
	"sort"

	"github.com/openfrc/stats-api/internal/models"
)

// ListQualMatches returns the played qualification matches of an event, oldest first.
// Unplayed matches (negative scores) and malformed alliances are dropped.
func (c *Client) ListQualMatches(ctx context.Context, eventKey string) ([]models.MatchResult, error) {
	var raw []apiMatch
	if err := c.get(ctx, "matches", fmt.Sprintf("/event/%s/matches", eventKey), &raw); err != nil {
		return nil, err
	}

	matches := make([]models.MatchResult, 0, len(raw))
	for _, m := range raw {
		if m.CompLevel != models.CompLevelQual {
			continue
		}
		if m.Alliances.Red.Score < 0 || m.Alliances.Blue.Score < 0 {
			continue
		}
		if len(m.Alliances.Red.TeamKeys) != 3 || len(m.Alliances.Blue.TeamKeys) != 3 {
			continue
		}

		result := models.MatchResult{
			Key:         m.Key,
			RedScore:    m.Alliances.Red.Score,
			BlueScore:   m.Alliances.Blue.Score,
			CompLevel:   m.CompLevel,
			SetNumber:   m.SetNumber,
			MatchNumber: m.MatchNumber,
		}
		copy(result.RedTeams[:], m.Alliances.Red.TeamKeys)
		copy(result.BlueTeams[:], m.Alliances.Blue.TeamKeys)
		if m.ScoreBreakdown != nil {
			result.RedBreakdown = convertBreakdown(m.ScoreBreakdown.Red)
			result.BlueBreakdown = convertBreakdown(m.ScoreBreakdown.Blue)
		}
		matches = append(matches, result)
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].MatchNumber < matches[j].MatchNumber
	})
	return matches, nil
}

func convertBreakdown(b *apiBreakdown) *models.ScoreBreakdown {
	if b == nil {
		return nil
	}
	return &models.ScoreBreakdown{
		Algae: b.AlgaePoints,
		Coral: b.AutoCoralPoints + b.TeleopCoralPoints,
		Auto:  b.AutoPoints,
		Climb: b.EndGameBargePoints,
	}
}

// ListRankings returns the official standings of an event.
func (c *Client) ListRankings(ctx context.Context, eventKey string) ([]models.Ranking, error) {
	var raw apiRankings
	if err := c.get(ctx, "rankings", fmt.Sprintf("/event/%s/rankings", eventKey), &raw); err != nil {
		return nil, err
	}
	out := make([]models.Ranking, 0, len(raw.Rankings))
	for _, r := range raw.Rankings {
		out = append(out, models.Ranking{TeamKey: r.TeamKey, Rank: r.Rank})
	}
	return out, nil
}

// ListAlliances returns the actual alliance selection results. Alliances with
// fewer than three picks are padded with empty keys.
func (c *Client) ListAlliances(ctx context.Context, eventKey string) ([]models.AllianceAssignment, error) {
	var raw []apiAllianceSelection
	if err := c.get(ctx, "alliances", fmt.Sprintf("/event/%s/alliances", eventKey), &raw); err != nil {
		return nil, err
	}
	out := make([]models.AllianceAssignment, 0, len(raw))
	for _, a := range raw {
		var assignment models.AllianceAssignment
		copy(assignment[:], a.Picks)
		out = append(out, assignment)
	}
	return out, nil
}

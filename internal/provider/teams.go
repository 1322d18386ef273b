package provider

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/openfrc/stats-api/internal/models"
)

// ListTeams returns one page of team keys active in a season.
func (c *Client) ListTeams(ctx context.Context, year, page int) ([]string, error) {
	var keys []string
	if err := c.get(ctx, "teams", fmt.Sprintf("/teams/%d/%d/keys", year, page), &keys); err != nil {
		return nil, err
	}
	return keys, nil
}

// GetTeamEvents returns the events a team attended in a season.
func (c *Client) GetTeamEvents(ctx context.Context, teamKey string, year int) ([]models.EventRef, error) {
	var events []models.EventRef
	if err := c.get(ctx, "team_events", fmt.Sprintf("/team/%s/events/%d/simple", teamKey, year), &events); err != nil {
		return nil, err
	}
	return events, nil
}

// GetTeam returns team metadata with its region key filled in.
func (c *Client) GetTeam(ctx context.Context, teamKey string) (*models.TeamInfo, error) {
	var info models.TeamInfo
	if err := c.get(ctx, "team", fmt.Sprintf("/team/%s/simple", teamKey), &info); err != nil {
		return nil, err
	}
	info.RegionKey = RegionKey(info.Country, info.StateProv)
	return &info, nil
}

// RegionKey builds an accent-insensitive "country/state" grouping key,
// e.g. ("México", "Nuevo León") -> "mexico/nuevo-leon".
func RegionKey(country, stateProv string) string {
	c := slug(country)
	s := slug(stateProv)
	if s == "" {
		return c
	}
	return c + "/" + s
}

func slug(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}

	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(folded)) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

package models

// Comp levels as reported by the results provider
const (
	CompLevelQual        = "qm"
	CompLevelEighthfinal = "ef"
	CompLevelQuarter     = "qf"
	CompLevelSemifinal   = "sf"
	CompLevelFinal       = "f"
)

// ScoreBreakdown holds the per-alliance component points of a match
type ScoreBreakdown struct {
	Algae float64 `json:"algae"`
	Coral float64 `json:"coral"`
	Auto  float64 `json:"auto"`
	Climb float64 `json:"climb"`
}

// MatchResult is a single played match. Produced once by the provider and never mutated.
type MatchResult struct {
	Key           string          `json:"key"`
	RedTeams      [3]string       `json:"red_teams"`
	BlueTeams     [3]string       `json:"blue_teams"`
	RedScore      float64         `json:"red_score"`
	BlueScore     float64         `json:"blue_score"`
	CompLevel     string          `json:"comp_level"`
	SetNumber     int             `json:"set_number"`
	MatchNumber   int             `json:"match_number"`
	RedBreakdown  *ScoreBreakdown `json:"red_breakdown,omitempty"`
	BlueBreakdown *ScoreBreakdown `json:"blue_breakdown,omitempty"`
}

// EventRef identifies an event a team attended
type EventRef struct {
	Key       string `json:"key"`
	Code      string `json:"event_code"`
	Name      string `json:"name"`
	Year      int    `json:"year"`
	EventType int    `json:"event_type"`
}

// Offseason and preseason event type codes used by the provider
const (
	EventTypeOffseason = 99
	EventTypePreseason = 100
)

// IsOffseason reports whether the event is outside the official season
func (e EventRef) IsOffseason() bool {
	return e.EventType == EventTypeOffseason || e.EventType == EventTypePreseason
}

// Ranking is an official standings row
type Ranking struct {
	TeamKey string `json:"team_key"`
	Rank    int    `json:"rank"`
}

// TeamInfo is team metadata used for location lookups
type TeamInfo struct {
	Key       string `json:"key"`
	Number    int    `json:"team_number"`
	Nickname  string `json:"nickname"`
	City      string `json:"city"`
	StateProv string `json:"state_prov"`
	Country   string `json:"country"`
	RegionKey string `json:"region_key,omitempty"`
}

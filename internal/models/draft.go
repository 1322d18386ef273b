package models

// AllianceAssignment is [captain, first pick, second pick]
type AllianceAssignment [3]string

// DraftTeam carries everything the draft simulator needs for one team
type DraftTeam struct {
	TeamKey string  `json:"team_key"`
	Rank    int     `json:"rank"`
	FSM     float64 `json:"fsm"`
	Algae   float64 `json:"algae"`
	Coral   float64 `json:"coral"`
	Auto    float64 `json:"auto"`
	Climb   float64 `json:"climb"`
}

// DraftResult is the outcome of a simulated alliance selection
type DraftResult struct {
	Alliances [8]AllianceAssignment `json:"alliances"`
	Scores    [8]float64            `json:"scores"`
}

package provider

// apiAlliance is one side of a match as returned by the provider
type apiAlliance struct {
	TeamKeys []string `json:"team_keys"`
	Score    float64  `json:"score"`
}

// apiBreakdown holds the score breakdown fields the scoring model uses
type apiBreakdown struct {
	AlgaePoints        float64 `json:"algaePoints"`
	AutoCoralPoints    float64 `json:"autoCoralPoints"`
	TeleopCoralPoints  float64 `json:"teleopCoralPoints"`
	AutoPoints         float64 `json:"autoPoints"`
	EndGameBargePoints float64 `json:"endGameBargePoints"`
}

type apiMatch struct {
	Key         string `json:"key"`
	CompLevel   string `json:"comp_level"`
	SetNumber   int    `json:"set_number"`
	MatchNumber int    `json:"match_number"`
	Alliances   struct {
		Red  apiAlliance `json:"red"`
		Blue apiAlliance `json:"blue"`
	} `json:"alliances"`
	ScoreBreakdown *struct {
		Red  *apiBreakdown `json:"red"`
		Blue *apiBreakdown `json:"blue"`
	} `json:"score_breakdown"`
}

type apiRankings struct {
	Rankings []struct {
		TeamKey string `json:"team_key"`
		Rank    int    `json:"rank"`
	} `json:"rankings"`
}

type apiAllianceSelection struct {
	Name  string   `json:"name"`
	Picks []string `json:"picks"`
}

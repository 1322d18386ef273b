package models

import "time"

// TeamPrediction is a team's projected FSM for the next season
type TeamPrediction struct {
	TeamKey      string  `json:"team_key"`
	PredictedFSM float64 `json:"predicted_fsm"`
}

// MatchPredictionRequest asks for a forecast of a single match
type MatchPredictionRequest struct {
	EventCode   string   `json:"event_code" validate:"required"`
	RedTeams    []string `json:"red_teams" validate:"required,len=3,dive,required"`
	BlueTeams   []string `json:"blue_teams" validate:"required,len=3,dive,required"`
	CompLevel   string   `json:"comp_level" validate:"omitempty,oneof=qm ef qf sf f"`
	MatchNumber int      `json:"match_number" validate:"gte=0"`
}

// MatchPrediction forecasts the outcome of a match
type MatchPrediction struct {
	RedScore       float64 `json:"red_score"`
	BlueScore      float64 `json:"blue_score"`
	RedWinProb     float64 `json:"red_win_prob"`
	ExpectedWinner string  `json:"expected_winner"`
}

// RatingHistoryPoint is one historical rating for a team
type RatingHistoryPoint struct {
	EventCode  string    `json:"event_code"`
	FSM        float64   `json:"fsm"`
	Matches    uint32    `json:"matches"`
	ComputedAt time.Time `json:"computed_at"`
}

package models

import "time"

// TeamRating is a team's estimated per-alliance scoring contribution
type TeamRating struct {
	TeamKey string  `json:"team_key"`
	FSM     float64 `json:"fsm"`
}

// EventStanding joins an official rank with the team's FSM (2 decimal places)
type EventStanding struct {
	TeamKey string `json:"team_key"`
	Rank    int    `json:"rank"`
	FSM     string `json:"fsm"`
}

// EventSummary is the cached rating output of one event
type EventSummary struct {
	EventCode string             `json:"event_code"`
	Ratings   map[string]float64 `json:"ratings"`
	SetTime   time.Time          `json:"set_time"`
}

// GlobalRankingShard is one page of a season's best-FSM rankings
type GlobalRankingShard struct {
	ShardID  int                `json:"shard_id"`
	Rankings map[string]float64 `json:"rankings"`
	SetTime  time.Time          `json:"set_time"`
}

// TeamStat is a team's best FSM for a season
type TeamStat struct {
	TeamKey string  `json:"team_key"`
	BestFSM float64 `json:"best_fsm"`
}

// RatingSnapshot is a rating computed for a team at an event, written to the history sink
type RatingSnapshot struct {
	RunID      string    `json:"run_id"`
	EventCode  string    `json:"event_code"`
	TeamKey    string    `json:"team_key"`
	FSM        float64   `json:"fsm"`
	Matches    uint32    `json:"matches"`
	ComputedAt time.Time `json:"computed_at"`
}

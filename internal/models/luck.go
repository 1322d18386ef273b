package models

// LuckMetrics measures how a team's schedule and ranking compare to expectation
type LuckMetrics struct {
	SOS                  float64 `json:"sos"`
	SOSZScore            float64 `json:"sos_z_score"`
	RankUnlucky          float64 `json:"rank_unlucky"`
	RankUnluckyZScore    float64 `json:"rank_unlucky_z_score"`
	AllianceDraftUnlucky float64 `json:"alliance_draft_unlucky"`
	Unlucky              float64 `json:"unlucky"`
}

// SeasonLuck is a team's unluckiness averaged over the events it attended
type SeasonLuck struct {
	TeamKey string  `json:"team_key"`
	Unlucky float64 `json:"unlucky"`
	Events  int     `json:"events"`
}

package logic

import (
	"fmt"
	"time"
)

// DataFetchError wraps a failure to read from the match data provider or the ranking store.
// Callers may retry or degrade to an empty result.
type DataFetchError struct {
	Op  string
	Key string
	Err error
}

func (e *DataFetchError) Error() string {
	return fmt.Sprintf("fetch %s %s: %v", e.Op, e.Key, e.Err)
}

func (e *DataFetchError) Unwrap() error { return e.Err }

// Temporary reports that the failure is recoverable
func (e *DataFetchError) Temporary() bool { return true }

// NoMatchDataError is returned when an event has no qualification matches to rate
type NoMatchDataError struct {
	EventCode string
}

func (e *NoMatchDataError) Error() string {
	if e.EventCode == "" {
		return "no qualification matches for event"
	}
	return fmt.Sprintf("no qualification matches for event %s", e.EventCode)
}

// InsufficientTeamsError is returned when a draft cannot fill eight alliances
type InsufficientTeamsError struct {
	Have int
	Need int
}

func (e *InsufficientTeamsError) Error() string {
	return fmt.Sprintf("insufficient eligible teams for alliance draft: have %d, need %d", e.Have, e.Need)
}

// InvalidTeamStatsError marks a team whose numeric stats cannot be scored
type InvalidTeamStatsError struct {
	TeamKey string
	Field   string
}

func (e *InvalidTeamStatsError) Error() string {
	return fmt.Sprintf("team %s has invalid %s", e.TeamKey, e.Field)
}

// ComputationTimeoutError is returned when a simulation runs past its budget
type ComputationTimeoutError struct {
	Op     string
	Budget time.Duration
}

func (e *ComputationTimeoutError) Error() string {
	return fmt.Sprintf("%s did not finish within %s, retry the request", e.Op, e.Budget)
}

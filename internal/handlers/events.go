package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// GetEventRatings returns the FSM of every team at an event
// @Summary Get Event Ratings
// @Tags Events
// @Produce json
// @Param eventCode path string true "Event code"
// @Success 200 {object} map[string]float64
// @Failure 404 {object} map[string]string "No qualification matches"
// @Router /events/{eventCode}/ratings [get]
func (h *Handler) GetEventRatings(w http.ResponseWriter, r *http.Request) {
	eventCode := chi.URLParam(r, "eventCode")

	ratings, err := h.ratings.EventRatings(r.Context(), eventCode)
	if err != nil {
		h.serviceError(w, err, "Failed to rate event", "event", eventCode)
		return
	}

	h.jsonResponse(w, http.StatusOK, ratings)
}

// GetEventStandings joins official ranks with FSM
// @Summary Get Event Standings
// @Tags Events
// @Produce json
// @Param eventCode path string true "Event code"
// @Success 200 {array} models.EventStanding
// @Router /events/{eventCode}/standings [get]
func (h *Handler) GetEventStandings(w http.ResponseWriter, r *http.Request) {
	eventCode := chi.URLParam(r, "eventCode")

	standings, err := h.ratings.EventStandings(r.Context(), eventCode)
	if err != nil {
		h.serviceError(w, err, "Failed to get standings", "event", eventCode)
		return
	}

	h.jsonResponse(w, http.StatusOK, standings)
}

// GetEventDraft simulates alliance selection for an event
// @Summary Simulate Alliance Draft
// @Tags Events
// @Produce json
// @Param eventCode path string true "Event code"
// @Success 200 {object} models.DraftResult
// @Failure 422 {object} map[string]string "Not enough eligible teams"
// @Failure 504 {object} map[string]string "Simulation timed out"
// @Router /events/{eventCode}/draft [get]
func (h *Handler) GetEventDraft(w http.ResponseWriter, r *http.Request) {
	eventCode := chi.URLParam(r, "eventCode")

	result, err := h.draft.SimulateEventDraft(r.Context(), eventCode)
	if err != nil {
		h.serviceError(w, err, "Failed to simulate draft", "event", eventCode)
		return
	}

	h.jsonResponse(w, http.StatusOK, result)
}

// GetEventLuck returns schedule and ranking luck per team
// @Summary Get Event Luck
// @Tags Events
// @Produce json
// @Param eventCode path string true "Event code"
// @Success 200 {object} map[string]models.LuckMetrics
// @Router /events/{eventCode}/luck [get]
func (h *Handler) GetEventLuck(w http.ResponseWriter, r *http.Request) {
	eventCode := chi.URLParam(r, "eventCode")

	luck, err := h.luck.EventLuck(r.Context(), eventCode)
	if err != nil {
		h.serviceError(w, err, "Failed to compute luck", "event", eventCode)
		return
	}

	h.jsonResponse(w, http.StatusOK, luck)
}

// GetEventTeams returns location metadata for the ranked teams of an event
func (h *Handler) GetEventTeams(w http.ResponseWriter, r *http.Request) {
	eventCode := chi.URLParam(r, "eventCode")

	standings, err := h.ratings.EventStandings(r.Context(), eventCode)
	if err != nil {
		h.serviceError(w, err, "Failed to get event teams", "event", eventCode)
		return
	}

	keys := make([]string, len(standings))
	for i, s := range standings {
		keys[i] = s.TeamKey
	}
	h.jsonResponse(w, http.StatusOK, h.teams.Locations(r.Context(), keys))
}

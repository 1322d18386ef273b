package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// GetTeamHistory returns archived ratings of a team, newest first
// @Summary Get Team Rating History
// @Tags Teams
// @Produce json
// @Param teamKey path string true "Team key"
// @Param limit query int false "Maximum events"
// @Success 200 {array} models.RatingHistoryPoint
// @Failure 503 {object} map[string]string "History store not configured"
// @Router /teams/{teamKey}/history [get]
func (h *Handler) GetTeamHistory(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		h.errorResponse(w, http.StatusServiceUnavailable, "Rating history is not enabled")
		return
	}
	teamKey := chi.URLParam(r, "teamKey")

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		l, err := strconv.Atoi(raw)
		if err != nil || l < 0 {
			h.errorResponse(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = l
	}

	history, err := h.history.GetTeamHistory(r.Context(), teamKey, limit)
	if err != nil {
		h.serviceError(w, err, "Failed to get team history", "team", teamKey)
		return
	}

	h.jsonResponse(w, http.StatusOK, history)
}

// GetTeamStats returns a team's best FSM of a season
func (h *Handler) GetTeamStats(w http.ResponseWriter, r *http.Request) {
	year, ok := h.yearParam(w, r)
	if !ok {
		return
	}
	teamKey := chi.URLParam(r, "teamKey")

	best, err := h.global.GetTeamStats(r.Context(), teamKey, year, queryBool(r, "offseason"))
	if err != nil {
		h.serviceError(w, err, "Failed to get team stats", "team", teamKey, "year", year)
		return
	}

	h.jsonResponse(w, http.StatusOK, map[string]interface{}{
		"team_key": teamKey,
		"year":     year,
		"best_fsm": best,
	})
}

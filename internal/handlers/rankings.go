package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/openfrc/stats-api/internal/logic"
)

// GetGlobalRankings returns every team's best FSM for a season
// @Summary Get Season Rankings
// @Tags Rankings
// @Produce json
// @Param year path int true "Season"
// @Param offseason query bool false "Include offseason events"
// @Param priority query bool false "Allow expired shards to refresh"
// @Success 200 {array} models.TeamStat
// @Router /rankings/{year} [get]
func (h *Handler) GetGlobalRankings(w http.ResponseWriter, r *http.Request) {
	year, ok := h.yearParam(w, r)
	if !ok {
		return
	}

	opts := logic.GlobalOptions{
		IncludeOffseason: queryBool(r, "offseason"),
		Priority:         queryBool(r, "priority"),
	}
	stats, err := h.global.GetGlobalStats(r.Context(), year, opts)
	if err != nil {
		h.serviceError(w, err, "Failed to get rankings", "year", year)
		return
	}

	h.jsonResponse(w, http.StatusOK, stats)
}

// GetCompositeRankings blends several seasons into one normalized rating
// @Summary Get Composite Rankings
// @Tags Rankings
// @Produce json
// @Param years query string true "Comma separated seasons"
// @Success 200 {array} models.TeamStat
// @Router /rankings/composite [get]
func (h *Handler) GetCompositeRankings(w http.ResponseWriter, r *http.Request) {
	var years []int
	for _, raw := range strings.Split(r.URL.Query().Get("years"), ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		y, err := strconv.Atoi(raw)
		if err != nil || y <= 0 {
			h.errorResponse(w, http.StatusBadRequest, "Invalid year: "+raw)
			return
		}
		years = append(years, y)
	}
	if len(years) == 0 {
		h.errorResponse(w, http.StatusBadRequest, "At least one year is required")
		return
	}

	stats, err := h.global.CompositeRatings(r.Context(), years)
	if err != nil {
		h.serviceError(w, err, "Failed to build composite rankings", "years", years)
		return
	}

	h.jsonResponse(w, http.StatusOK, stats)
}

// GetSeasonLuck averages unluckiness across events
func (h *Handler) GetSeasonLuck(w http.ResponseWriter, r *http.Request) {
	var events []string
	for _, code := range strings.Split(r.URL.Query().Get("events"), ",") {
		if code = strings.TrimSpace(code); code != "" {
			events = append(events, code)
		}
	}
	if len(events) == 0 {
		h.errorResponse(w, http.StatusBadRequest, "At least one event is required")
		return
	}

	luck, err := h.luck.SeasonLuck(r.Context(), events)
	if err != nil {
		h.serviceError(w, err, "Failed to compute season luck", "events", len(events))
		return
	}

	h.jsonResponse(w, http.StatusOK, luck)
}

func (h *Handler) yearParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil || year <= 0 {
		h.errorResponse(w, http.StatusBadRequest, "Invalid year")
		return 0, false
	}
	return year, true
}

func queryBool(r *http.Request, key string) bool {
	v, _ := strconv.ParseBool(r.URL.Query().Get(key))
	return v
}

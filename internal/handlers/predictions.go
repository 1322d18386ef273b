package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/openfrc/stats-api/internal/models"
)

// GetSeasonPredictions projects next season's ratings from the last three seasons
// @Summary Get Season Predictions
// @Tags Predictions
// @Produce json
// @Param year path int true "Current season"
// @Success 200 {array} models.TeamPrediction
// @Router /predictions/{year} [get]
func (h *Handler) GetSeasonPredictions(w http.ResponseWriter, r *http.Request) {
	year, ok := h.yearParam(w, r)
	if !ok {
		return
	}

	preds, err := h.global.PredictNextSeason(r.Context(), year)
	if err != nil {
		h.serviceError(w, err, "Failed to predict next season", "year", year)
		return
	}

	h.jsonResponse(w, http.StatusOK, preds)
}

// PredictMatch forecasts a single match
// @Summary Predict Match
// @Tags Predictions
// @Accept json
// @Produce json
// @Param request body models.MatchPredictionRequest true "Alliances"
// @Success 200 {object} models.MatchPrediction
// @Failure 400 {object} map[string]string "Invalid request"
// @Router /predictions/match [post]
func (h *Handler) PredictMatch(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodySize)

	var req models.MatchPredictionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.errorResponse(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		h.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	pred, err := h.draft.PredictMatch(r.Context(), req)
	if err != nil {
		h.serviceError(w, err, "Failed to predict match", "event", req.EventCode)
		return
	}

	h.jsonResponse(w, http.StatusOK, pred)
}

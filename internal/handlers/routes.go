package handlers

import (
	"github.com/go-chi/chi/v5"
)

// Routes mounts the API under /api/v1
func (h *Handler) Routes(r chi.Router) {
	r.Get("/health", h.Health)
	r.Get("/ready", h.Ready)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/events/{eventCode}", func(r chi.Router) {
			r.Get("/ratings", h.GetEventRatings)
			r.Get("/standings", h.GetEventStandings)
			r.Get("/draft", h.GetEventDraft)
			r.Get("/luck", h.GetEventLuck)
			r.Get("/teams", h.GetEventTeams)
		})

		r.Get("/rankings/composite", h.GetCompositeRankings)
		r.Get("/rankings/{year}", h.GetGlobalRankings)

		r.Get("/luck/season", h.GetSeasonLuck)

		r.Get("/predictions/{year}", h.GetSeasonPredictions)
		r.Post("/predictions/match", h.PredictMatch)

		r.Get("/teams/{teamKey}/history", h.GetTeamHistory)
		r.Get("/teams/{teamKey}/stats/{year}", h.GetTeamStats)
	})
}

package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/openfrc/stats-api/internal/logic"
)

// Health check endpoint
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().UTC(),
	})
}

// Ready check endpoint
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	checks := make(map[string]bool, len(h.checks))
	allHealthy := true
	for name, check := range h.checks {
		ok := check(ctx) == nil
		checks[name] = ok
		allHealthy = allHealthy && ok
	}

	body := map[string]interface{}{
		"ready":  allHealthy,
		"checks": checks,
	}
	if h.queue != nil {
		body["queueDepth"] = h.queue.QueueDepth()
	}

	status := http.StatusOK
	if !allHealthy {
		status = http.StatusServiceUnavailable
	}
	h.jsonResponse(w, status, body)
}

func (h *Handler) jsonResponse(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (h *Handler) errorResponse(w http.ResponseWriter, status int, message string) {
	h.jsonResponse(w, status, map[string]string{"error": message})
}

// serviceError maps engine errors to HTTP statuses
func (h *Handler) serviceError(w http.ResponseWriter, err error, message string, keysAndValues ...interface{}) {
	var (
		noData       *logic.NoMatchDataError
		insufficient *logic.InsufficientTeamsError
		timeout      *logic.ComputationTimeoutError
		fetch        *logic.DataFetchError
	)
	switch {
	case errors.As(err, &noData):
		h.errorResponse(w, http.StatusNotFound, noData.Error())
	case errors.As(err, &insufficient):
		h.errorResponse(w, http.StatusUnprocessableEntity, insufficient.Error())
	case errors.As(err, &timeout):
		h.errorResponse(w, http.StatusGatewayTimeout, timeout.Error())
	case errors.As(err, &fetch):
		h.logger.Warnw(message, append(keysAndValues, "error", err)...)
		h.errorResponse(w, http.StatusBadGateway, "Upstream data unavailable, retry later")
	default:
		h.logger.Errorw(message, append(keysAndValues, "error", err)...)
		h.errorResponse(w, http.StatusInternalServerError, message)
	}
}

package handlers

import (
	"net/http"

	"github.com/openpaddock/motorclub/services"
)

type ResultHandler struct {
	resultService services.ResultService
}

func NewResultHandler(resultService services.ResultService) *ResultHandler {
	return &ResultHandler{resultService: resultService}
}

// EventResults returns the ranked results of a single event.
func (h *ResultHandler) EventResults(w http.ResponseWriter, r *http.Request) {
	eventID, err := idFromURL(r, "id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	results, err := h.resultService.EventResults(r.Context(), eventID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeData(w, r, http.StatusOK, results)
}

// Leaderboard returns the cross-event standings ordered by best value.
func (h *ResultHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	entries, err := h.resultService.Leaderboard(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeData(w, r, http.StatusOK, entries)
}

package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/openpaddock/motorclub/services"
)

type EventHandler struct {
	eventService services.EventService
}

func NewEventHandler(eventService services.EventService) *EventHandler {
	return &EventHandler{eventService: eventService}
}

func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	events, err := h.eventService.ListEvents(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeData(w, r, http.StatusOK, events)
}

func (h *EventHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := idFromURL(r, "id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	event, err := h.eventService.GetEventByID(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeData(w, r, http.StatusOK, event)
}

func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	file, image, _, err := parseImageField(r, "image", "image_url")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if file != nil {
		defer file.Close()
	}

	input, err := eventInputFromForm(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	event, err := h.eventService.CreateEvent(r.Context(), input, image)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeData(w, r, http.StatusCreated, event)
}

func (h *EventHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := idFromURL(r, "id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	file, image, removeImage, err := parseImageField(r, "image", "image_url")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if file != nil {
		defer file.Close()
	}

	input, err := eventInputFromForm(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	event, err := h.eventService.UpdateEvent(r.Context(), id, input, image, removeImage)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeData(w, r, http.StatusOK, event)
}

func (h *EventHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := idFromURL(r, "id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.eventService.DeleteEvent(r.Context(), id); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeMessage(w, r, http.StatusOK, "event deleted")
}

func (h *EventHandler) ListClosures(w http.ResponseWriter, r *http.Request) {
	closures, err := h.eventService.ListClosures(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeData(w, r, http.StatusOK, closures)
}

func eventInputFromForm(r *http.Request) (services.EventInput, error) {
	startsAt, err := time.Parse(time.RFC3339, r.FormValue("starts_at"))
	if err != nil {
		return services.EventInput{}, errors.New("starts_at must be an RFC3339 timestamp")
	}
	endsAt, err := time.Parse(time.RFC3339, r.FormValue("ends_at"))
	if err != nil {
		return services.EventInput{}, errors.New("ends_at must be an RFC3339 timestamp")
	}

	return services.EventInput{
		Title:       r.FormValue("title"),
		StartsAt:    startsAt,
		EndsAt:      endsAt,
		Description: r.FormValue("description"),
		Location:    r.FormValue("location"),
	}, nil
}

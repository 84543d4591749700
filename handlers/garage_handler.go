package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/openpaddock/motorclub/middleware"
	"github.com/openpaddock/motorclub/models"
	"github.com/openpaddock/motorclub/services"
)

// GarageHandler is mounted twice, once per vehicle kind, so /cars and
// /motorcycles share one implementation.
type GarageHandler struct {
	garageService services.GarageService
	kind          models.VehicleKind
}

func NewGarageHandler(garageService services.GarageService, kind models.VehicleKind) *GarageHandler {
	return &GarageHandler{
		garageService: garageService,
		kind:          kind,
	}
}

func (h *GarageHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	userID, err := idFromURL(r, "id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	vehicles, err := h.garageService.ListVehiclesByUser(r.Context(), h.kind, userID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeData(w, r, http.StatusOK, vehicles)
}

func (h *GarageHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := idFromURL(r, "id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	vehicle, err := h.garageService.GetVehicleByID(r.Context(), h.kind, id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeData(w, r, http.StatusOK, vehicle)
}

func (h *GarageHandler) Create(w http.ResponseWriter, r *http.Request) {
	ownerID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	file, photo, _, err := parseImageField(r, "photo", "photo_url")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if file != nil {
		defer file.Close()
	}

	input, err := vehicleInputFromForm(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	vehicle, err := h.garageService.CreateVehicle(r.Context(), h.kind, ownerID, input, photo)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeData(w, r, http.StatusCreated, vehicle)
}

func (h *GarageHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := idFromURL(r, "id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	actor, err := actorFromContext(r)
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	file, photo, removePhoto, err := parseImageField(r, "photo", "photo_url")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if file != nil {
		defer file.Close()
	}

	input, err := vehicleInputFromForm(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	vehicle, err := h.garageService.UpdateVehicle(r.Context(), h.kind, id, actor, input, photo, removePhoto)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeData(w, r, http.StatusOK, vehicle)
}

func (h *GarageHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := idFromURL(r, "id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	actor, err := actorFromContext(r)
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	if err := h.garageService.DeleteVehicle(r.Context(), h.kind, id, actor); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeMessage(w, r, http.StatusOK, "vehicle deleted")
}

func vehicleInputFromForm(r *http.Request) (services.VehicleInput, error) {
	yearStr := r.FormValue("year")
	if yearStr == "" {
		return services.VehicleInput{}, errors.New("year is required")
	}
	year, err := strconv.Atoi(yearStr)
	if err != nil {
		return services.VehicleInput{}, errors.New("year must be a number")
	}

	return services.VehicleInput{
		Name:        r.FormValue("name"),
		Model:       r.FormValue("model"),
		Year:        year,
		Description: r.FormValue("description"),
	}, nil
}

func actorFromContext(r *http.Request) (services.Actor, error) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		return services.Actor{}, errors.New("failed to identify current user")
	}
	role, err := middleware.GetUserRoleFromContext(r.Context())
	if err != nil {
		return services.Actor{}, errors.New("failed to identify current user role")
	}
	return services.Actor{UserID: userID, Role: role}, nil
}

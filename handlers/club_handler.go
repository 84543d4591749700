package handlers

import (
	"net/http"

	"github.com/openpaddock/motorclub/middleware"
	"github.com/openpaddock/motorclub/services"
)

type ClubHandler struct {
	clubService services.ClubService
}

func NewClubHandler(clubService services.ClubService) *ClubHandler {
	return &ClubHandler{clubService: clubService}
}

func (h *ClubHandler) List(w http.ResponseWriter, r *http.Request) {
	clubs, err := h.clubService.ListClubs(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeData(w, r, http.StatusOK, clubs)
}

func (h *ClubHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := idFromURL(r, "id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	club, err := h.clubService.GetClubByID(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeData(w, r, http.StatusOK, club)
}

func (h *ClubHandler) Create(w http.ResponseWriter, r *http.Request) {
	file, image, _, err := parseImageField(r, "image", "image_url")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if file != nil {
		defer file.Close()
	}

	input := services.ClubInput{
		Name:        r.FormValue("name"),
		Description: r.FormValue("description"),
	}

	club, err := h.clubService.CreateClub(r.Context(), input, image)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeData(w, r, http.StatusCreated, club)
}

func (h *ClubHandler) Update(w http.ResponseWriter, r *http.Request) {
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

	input := services.ClubInput{
		Name:        r.FormValue("name"),
		Description: r.FormValue("description"),
	}

	club, err := h.clubService.UpdateClub(r.Context(), id, input, image, removeImage)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeData(w, r, http.StatusOK, club)
}

func (h *ClubHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := idFromURL(r, "id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.clubService.DeleteClub(r.Context(), id); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeMessage(w, r, http.StatusOK, "club deleted")
}

func (h *ClubHandler) Join(w http.ResponseWriter, r *http.Request) {
	clubID, err := idFromURL(r, "id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	if err := h.clubService.Join(r.Context(), clubID, userID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeMessage(w, r, http.StatusOK, "joined club")
}

func (h *ClubHandler) Leave(w http.ResponseWriter, r *http.Request) {
	clubID, err := idFromURL(r, "id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	if err := h.clubService.Leave(r.Context(), clubID, userID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeMessage(w, r, http.StatusOK, "left club")
}

func (h *ClubHandler) Members(w http.ResponseWriter, r *http.Request) {
	clubID, err := idFromURL(r, "id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	members, err := h.clubService.ListMembers(r.Context(), clubID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeData(w, r, http.StatusOK, members)
}

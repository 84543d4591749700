package handlers

import (
	"errors"
	"net/http"

	"github.com/openpaddock/motorclub/services"
)

type NewsHandler struct {
	newsService services.NewsService
}

func NewNewsHandler(newsService services.NewsService) *NewsHandler {
	return &NewsHandler{newsService: newsService}
}

func (h *NewsHandler) List(w http.ResponseWriter, r *http.Request) {
	posts, err := h.newsService.ListPosts(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeData(w, r, http.StatusOK, posts)
}

func (h *NewsHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := idFromURL(r, "id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	post, err := h.newsService.GetPostByID(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeData(w, r, http.StatusOK, post)
}

func (h *NewsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input services.NewsInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if err := validate.Struct(&input); err != nil {
		badRequestResponse(w, r, errors.New("title and content are required"))
		return
	}

	post, err := h.newsService.CreatePost(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeData(w, r, http.StatusCreated, post)
}

func (h *NewsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := idFromURL(r, "id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.NewsInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if err := validate.Struct(&input); err != nil {
		badRequestResponse(w, r, errors.New("title and content are required"))
		return
	}

	post, err := h.newsService.UpdatePost(r.Context(), id, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeData(w, r, http.StatusOK, post)
}

func (h *NewsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := idFromURL(r, "id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.newsService.DeletePost(r.Context(), id); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeMessage(w, r, http.StatusOK, "news post deleted")
}

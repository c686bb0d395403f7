package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/ptchurch/site/shared/api"
	"github.com/ptchurch/site/shared/utils"
)

func (h *Handler) CreatePrayer(w http.ResponseWriter, r *http.Request) {
	var body api.CreatePrayerRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	post, err := h.prayer.Create(r.Context(), body)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	utils.WriteJSONStatus(w, http.StatusCreated, api.PrayerPostResponse{Ok: true, Post: post})
}

func (h *Handler) ListPrayers(w http.ResponseWriter, r *http.Request) {
	posts, err := h.prayer.List(r.Context())
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, api.PrayerListResponse{Ok: true, Posts: posts})
}

func (h *Handler) Pray(w http.ResponseWriter, r *http.Request) {
	post, err := h.prayer.Pray(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, api.PrayerPostResponse{Ok: true, Post: post})
}

func (h *Handler) AdminListPrayers(w http.ResponseWriter, r *http.Request) {
	posts, err := h.prayer.ListAll(r.Context())
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, api.PrayerListResponse{Ok: true, Posts: posts})
}

func (h *Handler) ApprovePrayer(w http.ResponseWriter, r *http.Request) {
	post, err := h.prayer.Approve(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, api.PrayerPostResponse{Ok: true, Post: post})
}

func (h *Handler) DeletePrayer(w http.ResponseWriter, r *http.Request) {
	if err := h.prayer.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, api.OkResponse{Ok: true})
}

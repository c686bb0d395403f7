package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/ptchurch/site/shared/api"
	"github.com/ptchurch/site/shared/logger"
	"github.com/ptchurch/site/shared/utils"
)

func (h *Handler) CreateRSVP(w http.ResponseWriter, r *http.Request) {
	var body api.CreateRSVPRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	if body.Lang == "" {
		body.Lang = requestLang(r)
	}

	rsvp, cancelURL, err := h.rsvp.Create(r.Context(), chi.URLParam(r, "slug"), body)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	utils.WriteJSONStatus(w, http.StatusCreated, api.RSVPResponse{Ok: true, RSVP: rsvp, CancelURL: cancelURL})
}

func (h *Handler) CancelRSVP(w http.ResponseWriter, r *http.Request) {
	var body api.TokenRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	rsvp, err := h.rsvp.Cancel(r.Context(), body.Token)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, api.RSVPResponse{Ok: true, RSVP: rsvp})
}

func (h *Handler) AdminListRSVPs(w http.ResponseWriter, r *http.Request) {
	rsvps, total, err := h.rsvp.List(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, api.RSVPListResponse{Ok: true, RSVPs: rsvps, TotalGuests: total})
}

func (h *Handler) SendReminders(w http.ResponseWriter, r *http.Request) {
	sent, err := h.rsvp.SendReminders(r.Context())
	if err != nil {
		logger.Log.Error("reminder run failed", "component", "rsvp", "sent", sent, "error", err)
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, api.RemindersResponse{Ok: true, Sent: sent})
}

package handler

import (
	"net/http"

	"github.com/ptchurch/site/shared/api"
	"github.com/ptchurch/site/shared/utils"
)

func (h *Handler) Subscribe(w http.ResponseWriter, r *http.Request) {
	var body api.SubscribeRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	if body.Lang == "" {
		body.Lang = requestLang(r)
	}

	if err := h.newsletter.Subscribe(r.Context(), body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, api.OkResponse{Ok: true})
}

func (h *Handler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	var body api.TokenRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	if err := h.newsletter.Unsubscribe(r.Context(), body.Token); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, api.OkResponse{Ok: true})
}

func (h *Handler) Contact(w http.ResponseWriter, r *http.Request) {
	var body api.ContactRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	if err := h.contact.Send(body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, api.OkResponse{Ok: true})
}

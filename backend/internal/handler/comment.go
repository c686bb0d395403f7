package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/ptchurch/site/shared/api"
	"github.com/ptchurch/site/shared/utils"
)

func (h *Handler) ListComments(w http.ResponseWriter, r *http.Request) {
	comments, err := h.comment.List(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, api.CommentListResponse{Ok: true, Comments: comments})
}

func (h *Handler) CreateComment(w http.ResponseWriter, r *http.Request) {
	var body api.CreateCommentRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	comment, err := h.comment.Create(r.Context(), chi.URLParam(r, "slug"), body)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	utils.WriteJSONStatus(w, http.StatusCreated, api.CommentResponse{Ok: true, Comment: comment})
}

func (h *Handler) AdminListComments(w http.ResponseWriter, r *http.Request) {
	comments, err := h.comment.ListPending(r.Context())
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, api.CommentListResponse{Ok: true, Comments: comments})
}

func (h *Handler) ApproveComment(w http.ResponseWriter, r *http.Request) {
	comment, err := h.comment.Approve(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, api.CommentResponse{Ok: true, Comment: comment})
}

func (h *Handler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	if err := h.comment.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, api.OkResponse{Ok: true})
}

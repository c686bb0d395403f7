package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/ptchurch/site/shared/utils"
)

func (h *Handler) BiblePassage(w http.ResponseWriter, r *http.Request) {
	chapter, err := parseIntParam(chi.URLParam(r, "chapter"), "chapter")
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	passage, err := h.bible.Passage(r.Context(), chi.URLParam(r, "book"), chapter, r.URL.Query().Get("translation"))
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	w.Header().Set("Cache-Control", "public, max-age=86400")
	utils.WriteJSON(w, passage)
}

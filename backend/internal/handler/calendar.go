package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/ptchurch/site/shared/utils"
)

func (h *Handler) CalendarFeed(w http.ResponseWriter, r *http.Request) {
	writeCalendar(w, "calendar.ics", h.calendar.Feed(requestLang(r)), false)
}

func (h *Handler) EventCalendar(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	body, err := h.calendar.EventFeed(slug, requestLang(r))
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	writeCalendar(w, slug+".ics", body, true)
}

func (h *Handler) ServiceCalendar(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	body, err := h.calendar.ServiceFeed(slug, requestLang(r))
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	writeCalendar(w, slug+".ics", body, true)
}

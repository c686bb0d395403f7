package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/ptchurch/site/shared/api"
	"github.com/ptchurch/site/shared/utils"
)

func (h *Handler) ListServices(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, api.ServiceListResponse{Ok: true, Services: h.content.Services(requestLang(r))})
}

func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, api.EventListResponse{Ok: true, Events: h.content.Events(requestLang(r))})
}

func (h *Handler) GetEvent(w http.ResponseWriter, r *http.Request) {
	event, err := h.content.Event(chi.URLParam(r, "slug"), requestLang(r))
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, api.EventResponse{Ok: true, Event: event})
}

func (h *Handler) ListSermons(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	sermons := h.content.Sermons(requestLang(r), q.Get("series"), q.Get("speaker"))
	utils.WriteJSON(w, api.SermonListResponse{Ok: true, Sermons: sermons})
}

func (h *Handler) ListBlogPosts(w http.ResponseWriter, r *http.Request) {
	posts := h.content.BlogPosts(requestLang(r), r.URL.Query().Get("tag"))
	utils.WriteJSON(w, api.BlogListResponse{Ok: true, Posts: posts})
}

func (h *Handler) GetBlogPost(w http.ResponseWriter, r *http.Request) {
	post, err := h.content.BlogPost(chi.URLParam(r, "slug"), requestLang(r))
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, api.BlogPostResponse{Ok: true, Post: post})
}

func (h *Handler) GetSiteConfig(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, api.SiteConfigResponse{
		Ok:         true,
		SiteOrigin: h.cfg.Public.SiteOrigin,
		Languages:  h.cfg.Public.Languages,
		TimeZone:   h.cfg.Public.Timezone,
	})
}

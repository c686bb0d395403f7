package handler

import (
	"net/http"
	"strings"

	"github.com/ptchurch/site/backend/internal/service"
	"github.com/ptchurch/site/shared/config"
	"github.com/ptchurch/site/shared/domain"
)

type Handler struct {
	prayer     service.PrayerService
	comment    service.CommentService
	rsvp       service.RSVPService
	newsletter service.NewsletterService
	contact    service.ContactService
	content    service.ContentService
	calendar   service.CalendarService
	bible      service.BibleService
	health     service.HealthService
	cfg        *config.Config
}

// Services groups the handler's dependencies so setup can fill them by name.
type Services struct {
	Prayer     service.PrayerService
	Comment    service.CommentService
	RSVP       service.RSVPService
	Newsletter service.NewsletterService
	Contact    service.ContactService
	Content    service.ContentService
	Calendar   service.CalendarService
	Bible      service.BibleService
	Health     service.HealthService
}

func New(s Services, cfg *config.Config) *Handler {
	return &Handler{
		prayer:     s.Prayer,
		comment:    s.Comment,
		rsvp:       s.RSVP,
		newsletter: s.Newsletter,
		contact:    s.Contact,
		content:    s.Content,
		calendar:   s.Calendar,
		bible:      s.Bible,
		health:     s.Health,
		cfg:        cfg,
	}
}

// requestLang picks the display language: ?lang= first, then the primary
// Accept-Language tag. Anything but Tamil reads as English.
func requestLang(r *http.Request) string {
	if lang := r.URL.Query().Get("lang"); lang != "" {
		return domain.NormalizeLang(strings.ToLower(lang))
	}
	accept := r.Header.Get("Accept-Language")
	if i := strings.IndexAny(accept, ",;-"); i >= 0 {
		accept = accept[:i]
	}
	return domain.NormalizeLang(strings.ToLower(strings.TrimSpace(accept)))
}

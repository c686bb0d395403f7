package service

import (
	"sort"
	"strings"
	"time"

	"github.com/ptchurch/site/backend/internal/content"
	"github.com/ptchurch/site/shared/api"
	"github.com/ptchurch/site/shared/errors"
)

// Catalog is the read side of content.Catalog that services depend on.
type Catalog interface {
	Services() []content.Service
	Service(slug string) (content.Service, bool)
	Events() []content.Event
	Event(slug string) (content.Event, bool)
	Sermons(series, speaker string) []content.Sermon
	BlogPosts(tag string) []content.BlogPost
	BlogPost(slug string) (content.BlogPost, bool)
}

type ContentService interface {
	Services(lang string) []api.ServiceView
	// Events lists events that have not ended, soonest first.
	Events(lang string) []api.EventView
	Event(slug, lang string) (api.EventView, error)
	Sermons(lang, series, speaker string) []api.SermonView
	BlogPosts(lang, tag string) []api.BlogPostView
	BlogPost(slug, lang string) (api.BlogPostView, error)
}

type SiteConfig struct {
	SiteOrigin      string
	Location        *time.Location
	DefaultDuration time.Duration
	UpcomingLimit   int
}

func (c SiteConfig) url(path string) string {
	return strings.TrimRight(c.SiteOrigin, "/") + path
}

type Content struct {
	catalog Catalog
	cfg     SiteConfig
	clock   Clock
}

func NewContent(catalog Catalog, cfg SiteConfig, clock Clock) ContentService {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &Content{catalog: catalog, cfg: cfg, clock: clock}
}

func (c *Content) now() time.Time {
	return c.clock.now().In(c.cfg.Location)
}

func (c *Content) Services(lang string) []api.ServiceView {
	now := c.now()
	services := c.catalog.Services()
	out := make([]api.ServiceView, 0, len(services))
	for _, s := range services {
		next := s.Weekly.Rule().Next(now)
		out = append(out, api.ServiceView{
			Slug:           s.Slug,
			Name:           s.Name.Get(lang),
			Description:    s.Description.Get(lang),
			Location:       s.Location.Get(lang),
			Time:           s.Weekly.String(),
			NextOccurrence: &next,
			CalendarURL:    c.cfg.url("/api/services/" + s.Slug + "/calendar.ics"),
		})
	}
	return out
}

func (c *Content) eventView(e content.Event, lang string, now time.Time) api.EventView {
	v := api.EventView{
		Slug:        e.Slug,
		Title:       e.Title.Get(lang),
		Description: e.Description.Get(lang),
		Location:    e.Location.Get(lang),
		RSVPEnabled: e.RSVP,
		CalendarURL: c.cfg.url("/api/events/" + e.Slug + "/calendar.ics"),
	}
	if e.Rule != nil {
		v.RRule = e.Rule.RRule()
	}
	if !e.Start.IsZero() {
		start := e.Start
		end := start.Add(e.Duration(c.cfg.DefaultDuration))
		v.Start, v.End = &start, &end
	}
	if start, _, ok := e.Occurrence(now, c.cfg.DefaultDuration); ok {
		v.NextOccurrence = &start
	}
	return v
}

func (c *Content) Events(lang string) []api.EventView {
	now := c.now()
	out := make([]api.EventView, 0)
	for _, e := range c.catalog.Events() {
		v := c.eventView(e, lang, now)
		if v.NextOccurrence == nil {
			continue
		}
		out = append(out, v)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].NextOccurrence.Before(*out[j].NextOccurrence)
	})
	if c.cfg.UpcomingLimit > 0 && len(out) > c.cfg.UpcomingLimit {
		out = out[:c.cfg.UpcomingLimit]
	}
	return out
}

func (c *Content) Event(slug, lang string) (api.EventView, error) {
	e, ok := c.catalog.Event(slug)
	if !ok {
		return api.EventView{}, errors.NotFound("Event not found")
	}
	return c.eventView(e, lang, c.now()), nil
}

func (c *Content) Sermons(lang, series, speaker string) []api.SermonView {
	sermons := c.catalog.Sermons(series, speaker)
	out := make([]api.SermonView, 0, len(sermons))
	for _, s := range sermons {
		out = append(out, api.SermonView{
			Slug:      s.Slug,
			Title:     s.Title.Get(lang),
			Speaker:   s.Speaker,
			Series:    s.Series,
			Date:      s.Date,
			Scripture: s.Scripture,
			Summary:   s.Summary.Get(lang),
			AudioURL:  s.AudioURL,
			VideoURL:  s.VideoURL,
			BodyHTML:  s.BodyHTML.Get(lang),
		})
	}
	return out
}

func blogView(p content.BlogPost, lang string, withBody bool) api.BlogPostView {
	v := api.BlogPostView{
		Slug:    p.Slug,
		Title:   p.Title.Get(lang),
		Author:  p.Author,
		Date:    p.Date,
		Summary: p.Summary.Get(lang),
		Tags:    p.Tags,
	}
	if withBody {
		v.BodyHTML = p.BodyHTML.Get(lang)
	}
	return v
}

// BlogPosts omits bodies; BlogPost returns the rendered HTML.
func (c *Content) BlogPosts(lang, tag string) []api.BlogPostView {
	posts := c.catalog.BlogPosts(tag)
	out := make([]api.BlogPostView, 0, len(posts))
	for _, p := range posts {
		out = append(out, blogView(p, lang, false))
	}
	return out
}

func (c *Content) BlogPost(slug, lang string) (api.BlogPostView, error) {
	p, ok := c.catalog.BlogPost(slug)
	if !ok {
		return api.BlogPostView{}, errors.NotFound("Blog post not found")
	}
	return blogView(p, lang, true), nil
}

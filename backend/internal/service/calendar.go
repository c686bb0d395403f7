package service

import (
	"time"

	"github.com/ptchurch/site/backend/internal/content"
	"github.com/ptchurch/site/backend/internal/ics"
	"github.com/ptchurch/site/backend/internal/utils"
	"github.com/ptchurch/site/shared/errors"
)

type CalendarService interface {
	// Feed holds every weekly service and every event that has not ended.
	Feed(lang string) string
	EventFeed(slug, lang string) (string, error)
	ServiceFeed(slug, lang string) (string, error)
}

type CalendarConfig struct {
	SiteConfig
	Name     string
	ProdID   string
	TimeZone string
}

type Calendar struct {
	catalog Catalog
	cfg     CalendarConfig
	host    string
	clock   Clock
}

func NewCalendar(catalog Catalog, cfg CalendarConfig, clock Clock) CalendarService {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &Calendar{catalog: catalog, cfg: cfg, host: utils.Host(cfg.SiteOrigin), clock: clock}
}

func (c *Calendar) calendar(name string, events []ics.Event) string {
	return ics.BuildCalendar(ics.Calendar{
		ProdID:   c.cfg.ProdID,
		Name:     name,
		TimeZone: c.cfg.TimeZone,
		Location: c.cfg.Location,
		Stamp:    c.clock.now(),
		Duration: c.cfg.DefaultDuration,
		Events:   events,
	})
}

func (c *Calendar) uid(slug string, start time.Time) string {
	return slug + "-" + start.In(c.cfg.Location).Format("20060102") + "@" + c.host
}

func (c *Calendar) serviceEvent(s content.Service, lang string, now time.Time) ics.Event {
	rule := s.Weekly.Rule()
	start := rule.Next(now)
	return ics.Event{
		UID:         c.uid(s.Slug, start),
		Title:       s.Name.Get(lang),
		Description: s.Description.Get(lang),
		Location:    s.Location.Get(lang),
		Start:       start,
		End:         start.Add(s.Duration(c.cfg.DefaultDuration)),
		RRule:       rule.RRule(),
	}
}

// eventEntry returns the VEVENT for e. Recurring events start at their next
// occurrence; one-off events keep their own start even when over.
func (c *Calendar) eventEntry(e content.Event, lang string, now time.Time) (ics.Event, bool) {
	ev := ics.Event{
		Title:       e.Title.Get(lang),
		Description: e.Description.Get(lang),
		Location:    e.Location.Get(lang),
		URL:         e.URL,
	}
	if e.Rule != nil {
		start := e.Rule.Next(now)
		if start.IsZero() {
			return ics.Event{}, false
		}
		ev.Start = start
		ev.End = start.Add(e.Duration(c.cfg.DefaultDuration))
		ev.RRule = e.Rule.RRule()
	} else {
		ev.Start = e.Start
		ev.End = e.Start.Add(e.Duration(c.cfg.DefaultDuration))
	}
	if ev.URL == "" {
		ev.URL = c.cfg.url("/events/" + e.Slug)
	}
	ev.UID = c.uid(e.Slug, ev.Start)
	return ev, true
}

func (c *Calendar) Feed(lang string) string {
	now := c.clock.now().In(c.cfg.Location)
	var events []ics.Event
	for _, s := range c.catalog.Services() {
		events = append(events, c.serviceEvent(s, lang, now))
	}
	for _, e := range c.catalog.Events() {
		if _, _, ok := e.Occurrence(now, c.cfg.DefaultDuration); !ok {
			continue
		}
		if ev, ok := c.eventEntry(e, lang, now); ok {
			events = append(events, ev)
		}
	}
	return c.calendar(c.cfg.Name, events)
}

func (c *Calendar) EventFeed(slug, lang string) (string, error) {
	e, ok := c.catalog.Event(slug)
	if !ok {
		return "", errors.NotFound("Event not found")
	}
	ev, ok := c.eventEntry(e, lang, c.clock.now().In(c.cfg.Location))
	if !ok {
		return "", errors.NotFound("Event has no upcoming occurrence")
	}
	return ics.BuildEvent(ev, ics.Calendar{
		ProdID:   c.cfg.ProdID,
		Name:     ev.Title,
		TimeZone: c.cfg.TimeZone,
		Location: c.cfg.Location,
		Stamp:    c.clock.now(),
		Duration: c.cfg.DefaultDuration,
	}), nil
}

func (c *Calendar) ServiceFeed(slug, lang string) (string, error) {
	s, ok := c.catalog.Service(slug)
	if !ok {
		return "", errors.NotFound("Service not found")
	}
	ev := c.serviceEvent(s, lang, c.clock.now().In(c.cfg.Location))
	return c.calendar(ev.Title, []ics.Event{ev}), nil
}

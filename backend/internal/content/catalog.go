// Package content loads the site's static catalog: weekly services, events,
// sermons and blog posts. The catalog is read once at startup from JSON files
// maintained by the editors. Entries that fail to parse are logged and
// dropped so one typo never takes the site down.
package content

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/ptchurch/site/backend/internal/recurrence"
	"github.com/ptchurch/site/shared/domain"
	"github.com/ptchurch/site/shared/logger"
)

const (
	ServicesFile = "services.json"
	EventsFile   = "events.json"
	SermonsFile  = "sermons.json"
	BlogFile     = "blog.json"
)

// Local timestamps in the catalog carry no zone; they are read in the venue
// location.
var localLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

func parseLocal(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.In(loc), nil
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", s)
}

type Service struct {
	Slug            string           `json:"slug"`
	Name            domain.Localized `json:"name"`
	Description     domain.Localized `json:"description"`
	Location        domain.Localized `json:"location"`
	TimeText        string           `json:"time"`
	DurationMinutes int              `json:"durationMinutes,omitempty"`

	Weekly recurrence.WeeklyTime `json:"-"`
}

// Duration falls back to def when the entry has no duration.
func (s Service) Duration(def time.Duration) time.Duration {
	if s.DurationMinutes > 0 {
		return time.Duration(s.DurationMinutes) * time.Minute
	}
	return def
}

type Event struct {
	Slug            string           `json:"slug"`
	Title           domain.Localized `json:"title"`
	Description     domain.Localized `json:"description"`
	Location        domain.Localized `json:"location"`
	StartText       string           `json:"start,omitempty"`
	EndText         string           `json:"end,omitempty"`
	Recurrence      *recurrence.Spec `json:"recurrence,omitempty"`
	DurationMinutes int              `json:"durationMinutes,omitempty"`
	RSVP            bool             `json:"rsvp,omitempty"`
	URL             string           `json:"url,omitempty"`

	Start time.Time       `json:"-"`
	End   time.Time       `json:"-"`
	Rule  recurrence.Rule `json:"-"`
}

func (e Event) Duration(def time.Duration) time.Duration {
	if e.DurationMinutes > 0 {
		return time.Duration(e.DurationMinutes) * time.Minute
	}
	if !e.End.IsZero() && e.End.After(e.Start) {
		return e.End.Sub(e.Start)
	}
	return def
}

// Occurrence returns the occurrence of e that is current or next after now.
// One-off events stay current until they end. ok is false for events that
// are over or whose rule yields nothing.
func (e Event) Occurrence(now time.Time, def time.Duration) (start, end time.Time, ok bool) {
	d := e.Duration(def)
	if e.Rule != nil {
		start = e.Rule.Next(now)
		if start.IsZero() {
			return time.Time{}, time.Time{}, false
		}
		return start, start.Add(d), true
	}
	end = e.End
	if end.IsZero() || !end.After(e.Start) {
		end = e.Start.Add(d)
	}
	if !end.After(now) {
		return time.Time{}, time.Time{}, false
	}
	return e.Start, end, true
}

type Sermon struct {
	Slug      string           `json:"slug"`
	Title     domain.Localized `json:"title"`
	Speaker   string           `json:"speaker"`
	Series    string           `json:"series,omitempty"`
	DateText  string           `json:"date"`
	Scripture string           `json:"scripture,omitempty"`
	Summary   domain.Localized `json:"summary"`
	Body      domain.Localized `json:"body"`
	AudioURL  string           `json:"audioUrl,omitempty"`
	VideoURL  string           `json:"videoUrl,omitempty"`

	Date     time.Time        `json:"-"`
	BodyHTML domain.Localized `json:"-"`
}

type BlogPost struct {
	Slug     string           `json:"slug"`
	Title    domain.Localized `json:"title"`
	Author   string           `json:"author,omitempty"`
	DateText string           `json:"date"`
	Summary  domain.Localized `json:"summary"`
	Body     domain.Localized `json:"body"`
	Tags     []string         `json:"tags,omitempty"`

	Date     time.Time        `json:"-"`
	BodyHTML domain.Localized `json:"-"`
}

// Catalog is immutable after Load and safe for concurrent use.
type Catalog struct {
	services []Service
	events   []Event
	sermons  []Sermon
	posts    []BlogPost

	serviceBySlug map[string]int
	eventBySlug   map[string]int
	postBySlug    map[string]int
}

// Load reads the catalog files in dir. A missing file is an empty section; a
// file that is not valid JSON is an error.
func Load(dir string, loc *time.Location, r *Renderer) (*Catalog, error) {
	c := &Catalog{
		serviceBySlug: make(map[string]int),
		eventBySlug:   make(map[string]int),
		postBySlug:    make(map[string]int),
	}

	var services []Service
	if err := readJSON(filepath.Join(dir, ServicesFile), &services); err != nil {
		return nil, err
	}
	for _, s := range services {
		wt, ok := recurrence.ParseWeeklyTime(s.TimeText)
		if s.Slug == "" || !ok {
			skip(ServicesFile, s.Slug, "unparseable service time "+s.TimeText)
			continue
		}
		if _, dup := c.serviceBySlug[s.Slug]; dup {
			skip(ServicesFile, s.Slug, "duplicate slug")
			continue
		}
		s.Weekly = wt
		c.serviceBySlug[s.Slug] = len(c.services)
		c.services = append(c.services, s)
	}

	var events []Event
	if err := readJSON(filepath.Join(dir, EventsFile), &events); err != nil {
		return nil, err
	}
	for _, e := range events {
		if err := e.resolve(loc); err != nil {
			skip(EventsFile, e.Slug, err.Error())
			continue
		}
		if _, dup := c.eventBySlug[e.Slug]; dup {
			skip(EventsFile, e.Slug, "duplicate slug")
			continue
		}
		c.eventBySlug[e.Slug] = len(c.events)
		c.events = append(c.events, e)
	}

	var sermons []Sermon
	if err := readJSON(filepath.Join(dir, SermonsFile), &sermons); err != nil {
		return nil, err
	}
	for _, s := range sermons {
		d, err := parseLocal(s.DateText, loc)
		if s.Slug == "" || err != nil {
			skip(SermonsFile, s.Slug, "bad date "+s.DateText)
			continue
		}
		s.Date = d
		s.BodyHTML = domain.Localized{En: r.Render(s.Body.En), Ta: r.Render(s.Body.Ta)}
		c.sermons = append(c.sermons, s)
	}
	sort.SliceStable(c.sermons, func(i, j int) bool { return c.sermons[i].Date.After(c.sermons[j].Date) })

	var posts []BlogPost
	if err := readJSON(filepath.Join(dir, BlogFile), &posts); err != nil {
		return nil, err
	}
	for _, p := range posts {
		d, err := parseLocal(p.DateText, loc)
		if p.Slug == "" || err != nil {
			skip(BlogFile, p.Slug, "bad date "+p.DateText)
			continue
		}
		p.Date = d
		p.BodyHTML = domain.Localized{En: r.Render(p.Body.En), Ta: r.Render(p.Body.Ta)}
		c.posts = append(c.posts, p)
	}
	sort.SliceStable(c.posts, func(i, j int) bool { return c.posts[i].Date.After(c.posts[j].Date) })
	for i, p := range c.posts {
		if _, dup := c.postBySlug[p.Slug]; !dup {
			c.postBySlug[p.Slug] = i
		}
	}

	logger.Log.Info("content catalog loaded",
		"component", "content",
		"services", len(c.services),
		"events", len(c.events),
		"sermons", len(c.sermons),
		"posts", len(c.posts))
	return c, nil
}

func (e *Event) resolve(loc *time.Location) error {
	if e.Slug == "" {
		return errors.New("missing slug")
	}
	if e.Recurrence != nil {
		rule, err := e.Recurrence.Rule()
		if err != nil {
			return err
		}
		e.Rule = rule
	}
	if e.StartText != "" {
		start, err := parseLocal(e.StartText, loc)
		if err != nil {
			return err
		}
		e.Start = start
	}
	if e.EndText != "" {
		end, err := parseLocal(e.EndText, loc)
		if err != nil {
			return err
		}
		e.End = end
	}
	if e.Rule == nil && e.Start.IsZero() {
		return errors.New("event needs a start or a recurrence")
	}
	return nil
}

func skip(file, slug, reason string) {
	logger.Log.Warn("skipping catalog entry", "component", "content", "file", file, "slug", slug, "reason", reason)
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

func (c *Catalog) Services() []Service {
	return c.services
}

func (c *Catalog) Service(slug string) (Service, bool) {
	i, ok := c.serviceBySlug[slug]
	if !ok {
		return Service{}, false
	}
	return c.services[i], true
}

func (c *Catalog) Events() []Event {
	return c.events
}

func (c *Catalog) Event(slug string) (Event, bool) {
	i, ok := c.eventBySlug[slug]
	if !ok {
		return Event{}, false
	}
	return c.events[i], true
}

// Sermons returns sermons newest first. Empty filter values match all.
func (c *Catalog) Sermons(series, speaker string) []Sermon {
	out := make([]Sermon, 0, len(c.sermons))
	for _, s := range c.sermons {
		if series != "" && !strings.EqualFold(s.Series, series) {
			continue
		}
		if speaker != "" && !strings.EqualFold(s.Speaker, speaker) {
			continue
		}
		out = append(out, s)
	}
	return out
}

// BlogPosts returns posts newest first, optionally only those tagged tag.
func (c *Catalog) BlogPosts(tag string) []BlogPost {
	out := make([]BlogPost, 0, len(c.posts))
	for _, p := range c.posts {
		if tag != "" && !hasTag(p.Tags, tag) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func hasTag(tags []string, tag string) bool {
	for _, t := range tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

func (c *Catalog) BlogPost(slug string) (BlogPost, bool) {
	i, ok := c.postBySlug[slug]
	if !ok {
		return BlogPost{}, false
	}
	return c.posts[i], true
}

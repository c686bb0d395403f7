package api

import "time"

// Catalog views are already resolved to one language.

type ServiceView struct {
	Slug           string     `json:"slug"`
	Name           string     `json:"name"`
	Description    string     `json:"description,omitempty"`
	Location       string     `json:"location,omitempty"`
	Time           string     `json:"time"`
	NextOccurrence *time.Time `json:"nextOccurrence,omitempty"`
	CalendarURL    string     `json:"calendarUrl,omitempty"`
}

type EventView struct {
	Slug           string     `json:"slug"`
	Title          string     `json:"title"`
	Description    string     `json:"description,omitempty"`
	Location       string     `json:"location,omitempty"`
	Start          *time.Time `json:"start,omitempty"`
	End            *time.Time `json:"end,omitempty"`
	RRule          string     `json:"rrule,omitempty"`
	NextOccurrence *time.Time `json:"nextOccurrence,omitempty"`
	RSVPEnabled    bool       `json:"rsvpEnabled"`
	CalendarURL    string     `json:"calendarUrl"`
}

type SermonView struct {
	Slug      string    `json:"slug"`
	Title     string    `json:"title"`
	Speaker   string    `json:"speaker"`
	Series    string    `json:"series,omitempty"`
	Date      time.Time `json:"date"`
	Scripture string    `json:"scripture,omitempty"`
	Summary   string    `json:"summary,omitempty"`
	AudioURL  string    `json:"audioUrl,omitempty"`
	VideoURL  string    `json:"videoUrl,omitempty"`
	BodyHTML  string    `json:"bodyHtml,omitempty"`
}

type BlogPostView struct {
	Slug     string    `json:"slug"`
	Title    string    `json:"title"`
	Author   string    `json:"author,omitempty"`
	Date     time.Time `json:"date"`
	Summary  string    `json:"summary,omitempty"`
	Tags     []string  `json:"tags,omitempty"`
	BodyHTML string    `json:"bodyHtml,omitempty"`
}

type ServiceListResponse struct {
	Ok       bool          `json:"ok"`
	Services []ServiceView `json:"services"`
}

type EventListResponse struct {
	Ok     bool        `json:"ok"`
	Events []EventView `json:"events"`
}

type EventResponse struct {
	Ok    bool      `json:"ok"`
	Event EventView `json:"event"`
}

type SermonListResponse struct {
	Ok      bool         `json:"ok"`
	Sermons []SermonView `json:"sermons"`
}

type BlogListResponse struct {
	Ok    bool           `json:"ok"`
	Posts []BlogPostView `json:"posts"`
}

type BlogPostResponse struct {
	Ok   bool         `json:"ok"`
	Post BlogPostView `json:"post"`
}

type Verse struct {
	Verse int    `json:"verse"`
	Text  string `json:"text"`
}

type BiblePassage struct {
	Ok          bool    `json:"ok"`
	Reference   string  `json:"reference"`
	Book        string  `json:"book"`
	Chapter     int     `json:"chapter"`
	Translation string  `json:"translation"`
	Verses      []Verse `json:"verses"`
	Text        string  `json:"text"`
}

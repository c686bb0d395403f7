// Package ics writes iCalendar (RFC 5545) documents for the calendar feeds.
//
// Output is assembled line by line rather than through a generic encoder so
// that the escaping order and CRLF framing stay byte-for-byte stable for
// calendar clients that cache by content.
package ics

import (
	"strings"
	"time"
)

const (
	crlf = "\r\n"

	localLayout = "20060102T150405"
	utcLayout   = "20060102T150405Z"

	// DefaultDuration is applied to events that have no end.
	DefaultDuration = 60 * time.Minute

	DefaultProdID = "-//PT Church//Site Calendar//EN"
)

// Event describes one VEVENT. Start and End are wall-clock instants in the
// calendar's time zone; a zero End means Start plus the default duration.
type Event struct {
	UID         string
	Title       string
	Description string
	Location    string
	URL         string
	Start       time.Time
	End         time.Time
	RRule       string
}

type Calendar struct {
	ProdID   string
	Name     string // X-WR-CALNAME, optional
	TimeZone string // IANA name used for TZID and X-WR-TIMEZONE
	// Location converts Start/End before formatting. Nil keeps each
	// instant's own location.
	Location *time.Location
	// Stamp is the DTSTAMP of every event. Zero means time.Now().
	Stamp time.Time
	// Duration replaces DefaultDuration for events without an end.
	Duration time.Duration
	Events   []Event
}

// BuildEvent renders a calendar document holding the single event ev. cal
// supplies the calendar-level fields; its Events are ignored.
func BuildEvent(ev Event, cal Calendar) string {
	cal.Events = []Event{ev}
	return BuildCalendar(cal)
}

// BuildCalendar renders cal with one VEVENT per event, in order.
func BuildCalendar(cal Calendar) string {
	prodID := cal.ProdID
	if prodID == "" {
		prodID = DefaultProdID
	}
	stamp := cal.Stamp
	if stamp.IsZero() {
		stamp = time.Now()
	}
	duration := cal.Duration
	if duration <= 0 {
		duration = DefaultDuration
	}

	lines := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:" + prodID,
		"CALSCALE:GREGORIAN",
		"METHOD:PUBLISH",
	}
	if cal.Name != "" {
		lines = append(lines, "X-WR-CALNAME:"+EscapeText(cal.Name))
	}
	if cal.TimeZone != "" {
		lines = append(lines, "X-WR-TIMEZONE:"+cal.TimeZone)
	}

	for _, ev := range cal.Events {
		lines = append(lines, eventLines(ev, cal, stamp, duration)...)
	}
	lines = append(lines, "END:VCALENDAR")

	return strings.Join(lines, crlf) + crlf
}

func eventLines(ev Event, cal Calendar, stamp time.Time, duration time.Duration) []string {
	start := ev.Start
	end := ev.End
	if end.IsZero() || end.Before(start) {
		end = start.Add(duration)
	}

	lines := []string{
		"BEGIN:VEVENT",
		"UID:" + ev.UID,
		"DTSTAMP:" + stamp.UTC().Format(utcLayout),
		dateTimeLine("DTSTART", start, cal),
		dateTimeLine("DTEND", end, cal),
		"SUMMARY:" + EscapeText(ev.Title),
	}
	if ev.Description != "" {
		lines = append(lines, "DESCRIPTION:"+EscapeText(ev.Description))
	}
	if ev.Location != "" {
		lines = append(lines, "LOCATION:"+EscapeText(ev.Location))
	}
	if ev.URL != "" {
		lines = append(lines, "URL:"+EscapeText(ev.URL))
	}
	if ev.RRule != "" {
		lines = append(lines, "RRULE:"+ev.RRule)
	}
	return append(lines, "END:VEVENT")
}

func dateTimeLine(name string, t time.Time, cal Calendar) string {
	if cal.Location != nil {
		t = t.In(cal.Location)
	}
	if cal.TimeZone == "" {
		return name + ":" + t.Format(localLayout)
	}
	return name + ";TZID=" + cal.TimeZone + ":" + t.Format(localLayout)
}

var textEscaper = strings.NewReplacer(
	`\`, `\\`,
	"\n", `\n`,
	",", `\,`,
	";", `\;`,
)

// EscapeText escapes a TEXT property value. CRLF and bare CR are folded to
// LF first so every line break becomes a single literal \n.
func EscapeText(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return textEscaper.Replace(s)
}

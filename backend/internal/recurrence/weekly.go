// Package recurrence resolves recurring service and event schedules to
// concrete instants in the venue's local time.
//
// All resolvers work in the location carried by the reference instant, so
// callers pass now.In(venueLocation). Wall-clock arithmetic is delegated to
// time.Date, which is as DST-aware as the zone database makes it.
package recurrence

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// WeeklyTime is a day of the week plus a wall-clock time, e.g. "Sunday 10:00 AM".
type WeeklyTime struct {
	Day    time.Weekday
	Hour   int // 0..23
	Minute int // 0..59
}

var (
	dayPattern  = regexp.MustCompile(`(?i)\b(sunday|monday|tuesday|wednesday|thursday|friday|saturday)s?\b`)
	timePattern = regexp.MustCompile(`(?i)\b(\d{1,2})(?::(\d{2}))?\s*(am|pm)\b`)
)

var weekdaysByName = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// ParseWeeklyTime scans free text such as "Sundays at 10:00 AM" for a day
// name and a 12-hour clock time. ok is false when either token is missing or
// out of range; callers treat that as "service time not parseable".
func ParseWeeklyTime(text string) (wt WeeklyTime, ok bool) {
	dm := dayPattern.FindStringSubmatch(text)
	if dm == nil {
		return WeeklyTime{}, false
	}
	tm := timePattern.FindStringSubmatch(text)
	if tm == nil {
		return WeeklyTime{}, false
	}

	hour, err := strconv.Atoi(tm[1])
	if err != nil || hour < 1 || hour > 12 {
		return WeeklyTime{}, false
	}
	minute := 0
	if tm[2] != "" {
		minute, err = strconv.Atoi(tm[2])
		if err != nil || minute > 59 {
			return WeeklyTime{}, false
		}
	}

	return WeeklyTime{
		Day:    weekdaysByName[strings.ToLower(dm[1])],
		Hour:   to24Hour(hour, strings.EqualFold(tm[3], "pm")),
		Minute: minute,
	}, true
}

// to24Hour maps 12 AM to 0 and 12 PM to 12.
func to24Hour(hour12 int, pm bool) int {
	h := hour12 % 12
	if pm {
		h += 12
	}
	return h
}

// String formats the value the way ParseWeeklyTime reads it back.
func (w WeeklyTime) String() string {
	hour12 := w.Hour % 12
	if hour12 == 0 {
		hour12 = 12
	}
	meridiem := "AM"
	if w.Hour >= 12 {
		meridiem = "PM"
	}
	return fmt.Sprintf("%s %d:%02d %s", w.Day, hour12, w.Minute, meridiem)
}

func (w WeeklyTime) At() TimeOfDay {
	return TimeOfDay{Hour: w.Hour, Minute: w.Minute}
}

// Rule returns the equivalent every-week rule.
func (w WeeklyTime) Rule() Weekly {
	return Weekly{Day: w.Day, At: w.At(), Interval: 1}
}

// NextWeekly returns the first occurrence of wt strictly after now. An
// occurrence at exactly now counts as elapsed, so the result is a week later.
func NextWeekly(wt WeeklyTime, now time.Time) time.Time {
	return wt.Rule().Next(now)
}

// TimeOfDay is a wall-clock time without a date.
type TimeOfDay struct {
	Hour   int
	Minute int
}

func (t TimeOfDay) Validate() error {
	if t.Hour < 0 || t.Hour > 23 || t.Minute < 0 || t.Minute > 59 {
		return fmt.Errorf("recurrence: invalid time of day %02d:%02d", t.Hour, t.Minute)
	}
	return nil
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

var clock24Pattern = regexp.MustCompile(`^(\d{1,2}):(\d{2})$`)

// ParseTimeOfDay accepts "18:30" or a 12-hour form such as "6:30 PM".
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	s = strings.TrimSpace(s)
	if m := clock24Pattern.FindStringSubmatch(s); m != nil {
		h, _ := strconv.Atoi(m[1])
		min, _ := strconv.Atoi(m[2])
		t := TimeOfDay{Hour: h, Minute: min}
		return t, t.Validate()
	}
	if m := timePattern.FindStringSubmatch(s); m != nil && m[0] == s {
		h, _ := strconv.Atoi(m[1])
		min := 0
		if m[2] != "" {
			min, _ = strconv.Atoi(m[2])
		}
		if h < 1 || h > 12 || min > 59 {
			return TimeOfDay{}, fmt.Errorf("recurrence: invalid time %q", s)
		}
		return TimeOfDay{Hour: to24Hour(h, strings.EqualFold(m[3], "pm")), Minute: min}, nil
	}
	return TimeOfDay{}, fmt.Errorf("recurrence: invalid time %q", s)
}

// ParseWeekday accepts full names, three-letter abbreviations and RRULE codes.
func ParseWeekday(s string) (time.Weekday, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if d, ok := weekdaysByName[s]; ok {
		return d, nil
	}
	for name, d := range weekdaysByName {
		if len(s) >= 2 && strings.HasPrefix(name, s) && (len(s) == 2 || len(s) == 3) {
			return d, nil
		}
	}
	return 0, fmt.Errorf("recurrence: unknown weekday %q", s)
}

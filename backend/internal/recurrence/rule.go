package recurrence

import (
	"errors"
	"fmt"
	"time"
)

var ErrInvalidRule = errors.New("recurrence: invalid rule")

// Rule is a closed set of recurrence patterns: Weekly, MonthlyByDay,
// MonthlyNthWeekday and Yearly. The unexported method keeps other packages
// from adding variants, and every variant must provide both Next and RRule.
type Rule interface {
	// Next returns the first occurrence strictly after now, in now's
	// location. It returns the zero time for a rule that fails Validate.
	Next(now time.Time) time.Time
	// RRule renders the rule as an iCalendar RRULE value.
	RRule() string
	Validate() error
	sealed()
}

// Upcoming returns the next n occurrences of rule after now.
func Upcoming(rule Rule, now time.Time, n int) []time.Time {
	out := make([]time.Time, 0, n)
	cursor := now
	for len(out) < n {
		next := rule.Next(cursor)
		if next.IsZero() {
			break
		}
		out = append(out, next)
		cursor = next
	}
	return out
}

// Weekly repeats on one weekday every Interval weeks. The resolver only uses
// Interval to skip past an occurrence already elapsed today; it is otherwise
// carried into the RRULE.
type Weekly struct {
	Day      time.Weekday
	At       TimeOfDay
	Interval int // >= 1; 0 is read as 1
}

func NewWeekly(day time.Weekday, at TimeOfDay, interval int) (Weekly, error) {
	w := Weekly{Day: day, At: at, Interval: interval}
	return w, w.Validate()
}

func (w Weekly) interval() int {
	if w.Interval < 1 {
		return 1
	}
	return w.Interval
}

func (w Weekly) Validate() error {
	if w.Day < time.Sunday || w.Day > time.Saturday {
		return fmt.Errorf("%w: weekday %d", ErrInvalidRule, w.Day)
	}
	if w.Interval < 0 {
		return fmt.Errorf("%w: interval %d", ErrInvalidRule, w.Interval)
	}
	return w.At.Validate()
}

func (w Weekly) Next(now time.Time) time.Time {
	if w.Validate() != nil {
		return time.Time{}
	}
	delta := (int(w.Day) - int(now.Weekday()) + 7) % 7
	y, m, d := now.Date()
	candidate := time.Date(y, m, d+delta, w.At.Hour, w.At.Minute, 0, 0, now.Location())
	if !candidate.After(now) {
		candidate = time.Date(y, m, d+delta+7*w.interval(), w.At.Hour, w.At.Minute, 0, 0, now.Location())
	}
	return candidate
}

func (w Weekly) RRule() string {
	s := "FREQ=WEEKLY;BYDAY=" + DayCode(w.Day)
	if w.interval() > 1 {
		s += fmt.Sprintf(";INTERVAL=%d", w.interval())
	}
	return s
}

func (Weekly) sealed() {}

// MonthlyByDay repeats on a fixed day of the month. Months without that day
// (the 31st in April) are skipped, matching BYMONTHDAY semantics.
type MonthlyByDay struct {
	Day int // 1..31
	At  TimeOfDay
}

func NewMonthlyByDay(day int, at TimeOfDay) (MonthlyByDay, error) {
	r := MonthlyByDay{Day: day, At: at}
	return r, r.Validate()
}

func (r MonthlyByDay) Validate() error {
	if r.Day < 1 || r.Day > 31 {
		return fmt.Errorf("%w: day of month %d", ErrInvalidRule, r.Day)
	}
	return r.At.Validate()
}

func (r MonthlyByDay) Next(now time.Time) time.Time {
	if r.Validate() != nil {
		return time.Time{}
	}
	return scanMonths(now, func(y int, m time.Month) (int, bool) {
		return r.Day, r.Day <= daysIn(y, m)
	}, r.At)
}

func (r MonthlyByDay) RRule() string {
	return fmt.Sprintf("FREQ=MONTHLY;BYMONTHDAY=%d", r.Day)
}

func (MonthlyByDay) sealed() {}

// MonthlyNthWeekday repeats on the nth weekday of each month; negative Nth
// counts from the end (-1 is the last). Months without a fifth occurrence
// are skipped.
type MonthlyNthWeekday struct {
	Weekday time.Weekday
	Nth     int // 1..5 or -5..-1
	At      TimeOfDay
}

func NewMonthlyNthWeekday(weekday time.Weekday, nth int, at TimeOfDay) (MonthlyNthWeekday, error) {
	r := MonthlyNthWeekday{Weekday: weekday, Nth: nth, At: at}
	return r, r.Validate()
}

func (r MonthlyNthWeekday) Validate() error {
	if r.Weekday < time.Sunday || r.Weekday > time.Saturday {
		return fmt.Errorf("%w: weekday %d", ErrInvalidRule, r.Weekday)
	}
	if r.Nth == 0 || r.Nth < -5 || r.Nth > 5 {
		return fmt.Errorf("%w: nth %d", ErrInvalidRule, r.Nth)
	}
	return r.At.Validate()
}

func (r MonthlyNthWeekday) Next(now time.Time) time.Time {
	if r.Validate() != nil {
		return time.Time{}
	}
	return scanMonths(now, func(y int, m time.Month) (int, bool) {
		return nthWeekday(y, m, r.Weekday, r.Nth)
	}, r.At)
}

func (r MonthlyNthWeekday) RRule() string {
	return fmt.Sprintf("FREQ=MONTHLY;BYDAY=%s;BYSETPOS=%d", DayCode(r.Weekday), r.Nth)
}

func (MonthlyNthWeekday) sealed() {}

// Yearly repeats on a calendar date. February 29 only occurs in leap years.
type Yearly struct {
	Month time.Month
	Day   int
	At    TimeOfDay
}

func NewYearly(month time.Month, day int, at TimeOfDay) (Yearly, error) {
	r := Yearly{Month: month, Day: day, At: at}
	return r, r.Validate()
}

func (r Yearly) Validate() error {
	if r.Month < time.January || r.Month > time.December {
		return fmt.Errorf("%w: month %d", ErrInvalidRule, r.Month)
	}
	// 2024 is a leap year, so Feb 29 passes.
	if r.Day < 1 || r.Day > daysIn(2024, r.Month) {
		return fmt.Errorf("%w: %s has no day %d", ErrInvalidRule, r.Month, r.Day)
	}
	return r.At.Validate()
}

func (r Yearly) Next(now time.Time) time.Time {
	if r.Validate() != nil {
		return time.Time{}
	}
	// Eight years always contain a leap year.
	for i := 0; i <= 8; i++ {
		y := now.Year() + i
		if r.Day > daysIn(y, r.Month) {
			continue
		}
		c := time.Date(y, r.Month, r.Day, r.At.Hour, r.At.Minute, 0, 0, now.Location())
		if c.After(now) {
			return c
		}
	}
	return time.Time{}
}

func (r Yearly) RRule() string {
	return fmt.Sprintf("FREQ=YEARLY;BYMONTH=%d;BYMONTHDAY=%d", int(r.Month), r.Day)
}

func (Yearly) sealed() {}

// scanMonths walks forward from now's month and returns the first candidate
// day strictly after now. pick reports the day for a month, or false to skip.
func scanMonths(now time.Time, pick func(y int, m time.Month) (int, bool), at TimeOfDay) time.Time {
	loc := now.Location()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)
	for i := 0; i < 24; i++ {
		month := start.AddDate(0, i, 0)
		day, ok := pick(month.Year(), month.Month())
		if !ok {
			continue
		}
		c := time.Date(month.Year(), month.Month(), day, at.Hour, at.Minute, 0, 0, loc)
		if c.After(now) {
			return c
		}
	}
	return time.Time{}
}

func daysIn(y int, m time.Month) int {
	return time.Date(y, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// nthWeekday returns the day of month of the nth weekday, or false when the
// month has fewer than |nth| of them.
func nthWeekday(y int, m time.Month, wd time.Weekday, nth int) (int, bool) {
	last := daysIn(y, m)
	var day int
	if nth > 0 {
		first := time.Date(y, m, 1, 0, 0, 0, 0, time.UTC).Weekday()
		day = 1 + (int(wd)-int(first)+7)%7 + (nth-1)*7
	} else {
		lastWd := time.Date(y, m, last, 0, 0, 0, 0, time.UTC).Weekday()
		day = last - (int(lastWd)-int(wd)+7)%7 - (-nth-1)*7
	}
	return day, day >= 1 && day <= last
}

var dayCodes = [...]string{"SU", "MO", "TU", "WE", "TH", "FR", "SA"}

// DayCode returns the two-letter iCalendar weekday code.
func DayCode(d time.Weekday) string {
	if d < time.Sunday || d > time.Saturday {
		return ""
	}
	return dayCodes[d]
}

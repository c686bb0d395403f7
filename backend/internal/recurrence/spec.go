package recurrence

import (
	"fmt"
	"time"
)

const (
	KindWeekly     = "weekly"
	KindMonthlyDay = "monthly_day"
	KindMonthlyNth = "monthly_nth"
	KindYearly     = "yearly"
)

// Spec is the JSON form of a Rule as it appears in the content catalog:
//
//	{"kind": "monthly_nth", "weekday": "sunday", "nth": 1, "time": "17:00"}
type Spec struct {
	Kind     string `json:"kind"`
	Weekday  string `json:"weekday,omitempty"`
	Interval int    `json:"interval,omitempty"`
	Day      int    `json:"day,omitempty"`
	Nth      int    `json:"nth,omitempty"`
	Month    int    `json:"month,omitempty"`
	Time     string `json:"time"`
}

// Rule converts the spec into a validated Rule.
func (s Spec) Rule() (Rule, error) {
	at, err := ParseTimeOfDay(s.Time)
	if err != nil {
		return nil, err
	}
	switch s.Kind {
	case KindWeekly:
		wd, err := ParseWeekday(s.Weekday)
		if err != nil {
			return nil, err
		}
		return NewWeekly(wd, at, s.Interval)
	case KindMonthlyDay:
		return NewMonthlyByDay(s.Day, at)
	case KindMonthlyNth:
		wd, err := ParseWeekday(s.Weekday)
		if err != nil {
			return nil, err
		}
		return NewMonthlyNthWeekday(wd, s.Nth, at)
	case KindYearly:
		return NewYearly(time.Month(s.Month), s.Day, at)
	default:
		return nil, fmt.Errorf("%w: unknown kind %q", ErrInvalidRule, s.Kind)
	}
}

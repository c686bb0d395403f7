package recurrence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRRule(t *testing.T) {
	at := TimeOfDay{Hour: 10}
	testCases := []struct {
		name string
		rule Rule
		want string
	}{
		{"weekly", Weekly{Day: time.Sunday, At: at, Interval: 1}, "FREQ=WEEKLY;BYDAY=SU"},
		{"weekly zero interval", Weekly{Day: time.Friday, At: at}, "FREQ=WEEKLY;BYDAY=FR"},
		{"fortnightly", Weekly{Day: time.Wednesday, At: at, Interval: 2}, "FREQ=WEEKLY;BYDAY=WE;INTERVAL=2"},
		{"monthly by day", MonthlyByDay{Day: 15, At: at}, "FREQ=MONTHLY;BYMONTHDAY=15"},
		{"first sunday", MonthlyNthWeekday{Weekday: time.Sunday, Nth: 1, At: at}, "FREQ=MONTHLY;BYDAY=SU;BYSETPOS=1"},
		{"last friday", MonthlyNthWeekday{Weekday: time.Friday, Nth: -1, At: at}, "FREQ=MONTHLY;BYDAY=FR;BYSETPOS=-1"},
		{"yearly", Yearly{Month: time.December, Day: 25, At: at}, "FREQ=YEARLY;BYMONTH=12;BYMONTHDAY=25"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.rule.RRule())
		})
	}
}

func TestWeeklyIntervalSkipsOnlyElapsedOccurrence(t *testing.T) {
	r := Weekly{Day: time.Sunday, At: TimeOfDay{Hour: 10}, Interval: 2}

	// Wednesday: the coming Sunday is next, interval is not applied.
	now := time.Date(2026, 10, 14, 12, 0, 0, 0, ist)
	assert.Equal(t, time.Date(2026, 10, 18, 10, 0, 0, 0, ist), r.Next(now))

	// Sunday after the service: jump by two weeks.
	now = time.Date(2026, 10, 18, 12, 0, 0, 0, ist)
	assert.Equal(t, time.Date(2026, 11, 1, 10, 0, 0, 0, ist), r.Next(now))
}

func TestMonthlyByDay(t *testing.T) {
	r := MonthlyByDay{Day: 31, At: TimeOfDay{Hour: 19}}

	t.Run("skips months without the day", func(t *testing.T) {
		now := time.Date(2026, 3, 31, 20, 0, 0, 0, ist)
		assert.Equal(t, time.Date(2026, 5, 31, 19, 0, 0, 0, ist), r.Next(now))
	})

	t.Run("same day still ahead", func(t *testing.T) {
		now := time.Date(2026, 1, 31, 18, 59, 0, 0, ist)
		assert.Equal(t, time.Date(2026, 1, 31, 19, 0, 0, 0, ist), r.Next(now))
	})

	t.Run("tie counts as elapsed", func(t *testing.T) {
		now := time.Date(2026, 1, 31, 19, 0, 0, 0, ist)
		assert.Equal(t, time.Date(2026, 3, 31, 19, 0, 0, 0, ist), r.Next(now))
	})
}

func TestMonthlyNthWeekday(t *testing.T) {
	at := TimeOfDay{Hour: 17}

	t.Run("first sunday", func(t *testing.T) {
		r := MonthlyNthWeekday{Weekday: time.Sunday, Nth: 1, At: at}
		// 2026-10-04 is the first Sunday of October.
		now := time.Date(2026, 10, 4, 18, 0, 0, 0, ist)
		assert.Equal(t, time.Date(2026, 11, 1, 17, 0, 0, 0, ist), r.Next(now))
	})

	t.Run("last friday", func(t *testing.T) {
		r := MonthlyNthWeekday{Weekday: time.Friday, Nth: -1, At: at}
		now := time.Date(2026, 10, 1, 0, 0, 0, 0, ist)
		assert.Equal(t, time.Date(2026, 10, 30, 17, 0, 0, 0, ist), r.Next(now))
	})

	t.Run("fifth sunday skips short months", func(t *testing.T) {
		r := MonthlyNthWeekday{Weekday: time.Sunday, Nth: 5, At: at}
		// Fifth Sundays in 2026: March 29, May 31, August 30, November 29.
		now := time.Date(2026, 5, 31, 18, 0, 0, 0, ist)
		assert.Equal(t, time.Date(2026, 8, 30, 17, 0, 0, 0, ist), r.Next(now))
	})
}

func TestYearly(t *testing.T) {
	at := TimeOfDay{Hour: 23, Minute: 30}

	christmasEve := Yearly{Month: time.December, Day: 24, At: at}
	now := time.Date(2026, 12, 24, 23, 30, 0, 0, ist)
	assert.Equal(t, time.Date(2027, 12, 24, 23, 30, 0, 0, ist), christmasEve.Next(now))

	leap := Yearly{Month: time.February, Day: 29, At: at}
	now = time.Date(2026, 1, 1, 0, 0, 0, 0, ist)
	assert.Equal(t, time.Date(2028, 2, 29, 23, 30, 0, 0, ist), leap.Next(now))
}

func TestInvalidRulesReturnZero(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, ist)
	for _, r := range []Rule{
		Weekly{Day: 9},
		MonthlyByDay{Day: 0},
		MonthlyNthWeekday{Weekday: time.Sunday, Nth: 0},
		Yearly{Month: time.February, Day: 30},
		Weekly{Day: time.Sunday, At: TimeOfDay{Hour: 24}},
	} {
		assert.Error(t, r.Validate())
		assert.True(t, r.Next(now).IsZero())
	}
}

func TestUpcoming(t *testing.T) {
	r := Weekly{Day: time.Sunday, At: TimeOfDay{Hour: 10}}
	now := time.Date(2026, 10, 14, 0, 0, 0, 0, ist)

	got := Upcoming(r, now, 3)
	require.Len(t, got, 3)
	assert.Equal(t, time.Date(2026, 10, 18, 10, 0, 0, 0, ist), got[0])
	assert.Equal(t, time.Date(2026, 10, 25, 10, 0, 0, 0, ist), got[1])
	assert.Equal(t, time.Date(2026, 11, 1, 10, 0, 0, 0, ist), got[2])

	assert.Empty(t, Upcoming(MonthlyByDay{}, now, 3))
}

func TestSpecRule(t *testing.T) {
	r, err := Spec{Kind: KindMonthlyNth, Weekday: "sunday", Nth: 1, Time: "17:00"}.Rule()
	require.NoError(t, err)
	assert.Equal(t, MonthlyNthWeekday{Weekday: time.Sunday, Nth: 1, At: TimeOfDay{Hour: 17}}, r)

	r, err = Spec{Kind: KindWeekly, Weekday: "SU", Time: "10:00 AM"}.Rule()
	require.NoError(t, err)
	assert.Equal(t, "FREQ=WEEKLY;BYDAY=SU", r.RRule())

	_, err = Spec{Kind: "daily", Time: "10:00"}.Rule()
	assert.ErrorIs(t, err, ErrInvalidRule)
	_, err = Spec{Kind: KindYearly, Month: 2, Day: 30, Time: "10:00"}.Rule()
	assert.ErrorIs(t, err, ErrInvalidRule)
	_, err = Spec{Kind: KindWeekly, Weekday: "sunday", Time: "late"}.Rule()
	assert.Error(t, err)
}

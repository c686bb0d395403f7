package domain

import "time"

type RSVP struct {
	RecordMeta
	EventSlug      string     `json:"eventSlug"`
	Name           string     `json:"name"`
	Email          string     `json:"email"`
	Guests         int        `json:"guests"`
	Lang           string     `json:"lang,omitempty"`
	CancelledAt    *time.Time `json:"cancelledAt,omitempty"`
	ReminderSentAt *time.Time `json:"reminderSentAt,omitempty"`
}

func (r RSVP) Active() bool {
	return r.CancelledAt == nil
}

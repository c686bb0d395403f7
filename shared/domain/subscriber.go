package domain

import "time"

type Subscriber struct {
	RecordMeta
	Email          string     `json:"email"`
	Name           string     `json:"name,omitempty"`
	Lang           string     `json:"lang,omitempty"`
	UnsubscribedAt *time.Time `json:"unsubscribedAt,omitempty"`
}

func (s Subscriber) Active() bool {
	return s.UnsubscribedAt == nil
}

package domain

import "time"

// Record is anything a record store can hold: every persisted type embeds
// RecordMeta.
type Record interface {
	GetId() string
	GetCreatedAt() time.Time
}

type RecordMeta struct {
	Id        string    `json:"id"`
	CreatedAt time.Time `json:"createdAtIso"`
	Approved  bool      `json:"approved"`
}

func (m RecordMeta) GetId() string           { return m.Id }
func (m RecordMeta) GetCreatedAt() time.Time { return m.CreatedAt }

// Collection names, also used as file names and metric labels.
const (
	CollectionPrayers     = "prayers"
	CollectionComments    = "comments"
	CollectionRSVPs       = "rsvps"
	CollectionSubscribers = "subscribers"
)

package domain

const (
	PrayerKindRequest = "request"
	PrayerKindPraise  = "praise"

	AnonymousName = "Anonymous"
)

type PrayerPost struct {
	RecordMeta
	Name        string `json:"name"`
	Request     string `json:"request"`
	Kind        string `json:"kind"`
	Anonymous   bool   `json:"anonymous"`
	PrayedCount int    `json:"prayedCount"`
}

// Public hides the author of anonymous posts.
func (p PrayerPost) Public() PrayerPost {
	if p.Anonymous {
		p.Name = AnonymousName
	}
	return p
}

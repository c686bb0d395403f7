package api

import "github.com/ptchurch/site/shared/domain"

type OkResponse struct {
	Ok bool `json:"ok"`
}

type PrayerPostResponse struct {
	Ok   bool              `json:"ok"`
	Post domain.PrayerPost `json:"post"`
}

type PrayerListResponse struct {
	Ok    bool                `json:"ok"`
	Posts []domain.PrayerPost `json:"posts"`
}

type CommentResponse struct {
	Ok      bool           `json:"ok"`
	Comment domain.Comment `json:"comment"`
}

type CommentListResponse struct {
	Ok       bool             `json:"ok"`
	Comments []domain.Comment `json:"comments"`
}

type RSVPResponse struct {
	Ok        bool        `json:"ok"`
	RSVP      domain.RSVP `json:"rsvp"`
	CancelURL string      `json:"cancelUrl"`
}

type RSVPListResponse struct {
	Ok          bool          `json:"ok"`
	RSVPs       []domain.RSVP `json:"rsvps"`
	TotalGuests int           `json:"totalGuests"`
}

type RemindersResponse struct {
	Ok   bool `json:"ok"`
	Sent int  `json:"sent"`
}

type SiteConfigResponse struct {
	Ok         bool     `json:"ok"`
	SiteOrigin string   `json:"siteOrigin"`
	Languages  []string `json:"languages"`
	TimeZone   string   `json:"timeZone"`
}

type HealthResponse struct {
	Ok     bool   `json:"ok"`
	Status string `json:"status"`
}

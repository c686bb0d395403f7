package api

// Request DTOs. Handlers decode straight into these with
// utils.DecodeValidate, so anything past the handler is already validated.

type CreatePrayerRequest struct {
	Name      string `json:"name" validate:"required,max=80"`
	Request   string `json:"request" validate:"required,max=2000"`
	Kind      string `json:"kind" validate:"omitempty,oneof=request praise"`
	Anonymous bool   `json:"anonymous,omitempty"`
}

type CreateCommentRequest struct {
	Name  string `json:"name" validate:"required,max=80"`
	Email string `json:"email,omitempty" validate:"omitempty,email,max=254"`
	Body  string `json:"body" validate:"required,max=4000"`
}

type CreateRSVPRequest struct {
	Name   string `json:"name" validate:"required,max=80"`
	Email  string `json:"email" validate:"required,email,max=254"`
	Guests int    `json:"guests,omitempty" validate:"omitempty,min=1,max=10"`
	Lang   string `json:"lang,omitempty" validate:"omitempty,oneof=en ta"`
}

// TokenRequest carries a signed link token (RSVP cancel, unsubscribe).
type TokenRequest struct {
	Token string `json:"token" validate:"required"`
}

type SubscribeRequest struct {
	Email string `json:"email" validate:"required,email,max=254"`
	Name  string `json:"name,omitempty" validate:"omitempty,max=80"`
	Lang  string `json:"lang,omitempty" validate:"omitempty,oneof=en ta"`
}

type ContactRequest struct {
	Name    string `json:"name" validate:"required,max=80"`
	Email   string `json:"email" validate:"required,email,max=254"`
	Subject string `json:"subject,omitempty" validate:"omitempty,max=200"`
	Message string `json:"message" validate:"required,max=5000"`
}

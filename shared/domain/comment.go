package domain

type Comment struct {
	RecordMeta
	PostSlug string `json:"postSlug"`
	Name     string `json:"name"`
	Email    string `json:"email,omitempty"`
	Body     string `json:"body"`
}

// Public drops the commenter's email.
func (c Comment) Public() Comment {
	c.Email = ""
	return c
}

package domain

// Identity is the verified caller behind a dashboard request.
type Identity struct {
	UserID string `json:"id"`
	Email  string `json:"email,omitempty"`
}

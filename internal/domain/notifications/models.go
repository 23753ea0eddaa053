package notifications

import "time"

type Notification struct {
	ID         string         `json:"id"`
	UserID     string         `json:"userId"`
	Kind       string         `json:"kind"`
	Title      string         `json:"title"`
	Message    string         `json:"message"`
	ActionLink string         `json:"actionLink"`
	Priority   string         `json:"priority"`
	Data       map[string]any `json:"data,omitempty"`
	ReadAt     *time.Time     `json:"readAt,omitempty"`
	ExpiresAt  time.Time      `json:"expiresAt"`
	CreatedAt  time.Time      `json:"createdAt"`
}

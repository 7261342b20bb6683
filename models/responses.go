package models

import "folio/api/apperr"

type ErrorResponse struct {
	Error   string              `json:"error"`
	Details []apperr.FieldError `json:"details,omitempty"`
}

type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

type PostResponse struct {
	Success bool      `json:"success,omitempty"`
	Post    *BlogPost `json:"post"`
}

type MessagesResponse struct {
	Messages []ContactMessage `json:"messages"`
}

type MessageResponse struct {
	Success bool            `json:"success"`
	Message *ContactMessage `json:"message"`
}

type LoginResponse struct {
	Message   string `json:"message"`
	UserEmail string `json:"user_email"`
	Token     string `json:"token"`
}

// Dashboard is the admin overview view model.
type Dashboard struct {
	TotalPageViews uint64           `json:"totalPageViews"`
	UniqueVisitors uint64           `json:"uniqueVisitors"`
	UnreadMessages int              `json:"unreadMessages"`
	PublishedPosts int              `json:"publishedPosts"`
	RecentMessages []ContactMessage `json:"recentMessages"`
	TopPages       []PathViews      `json:"topPages"`
	RecentActivity []TrackedEvent   `json:"recentActivity"`
}

type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

package models

import "time"

const (
	MessageUnread = "UNREAD"
	MessageRead   = "READ"

	DefaultMessageSubject = "Contact Form Submission"
)

type ContactMessage struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Subject   string    `json:"subject"`
	Message   string    `json:"message"`
	Status    string    `json:"status"`
	IPAddress string    `json:"ipAddress,omitempty"`
	UserAgent string    `json:"userAgent,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ContactRequest is the body of POST /api/contact.
type ContactRequest struct {
	Name    string  `json:"name" binding:"required,min=2"`
	Email   string  `json:"email" binding:"required,email"`
	Subject *string `json:"subject"`
	Message string  `json:"message" binding:"required,min=10"`
}

// MessageStatusRequest is the body of PATCH /api/contact/:id.
type MessageStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=UNREAD READ"`
}

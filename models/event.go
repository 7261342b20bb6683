package models

import "time"

type EventKind string

const (
	KindPageView EventKind = "pageview"
	KindEvent    EventKind = "event"
)

// TrackedEvent is a persisted page view or custom event. It is never
// mutated after being recorded.
type TrackedEvent struct {
	ID        string         `json:"id"`
	Kind      EventKind      `json:"kind"`
	CreatedAt time.Time      `json:"createdAt"`
	Path      string         `json:"path"`
	Title     *string        `json:"title,omitempty"`
	Name      *string        `json:"name,omitempty"`
	Category  *string        `json:"category,omitempty"`
	Label     *string        `json:"label,omitempty"`
	Value     *float64       `json:"value,omitempty"`
	VisitorID *string        `json:"visitorId,omitempty"`
	Referrer  *string        `json:"referrer,omitempty"`
	IPAddress string         `json:"ipAddress,omitempty"`
	UserAgent string         `json:"userAgent,omitempty"`
	Device    string         `json:"device"`
	Browser   string         `json:"browser"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// PageViewRequest is the body of POST /api/analytics.
type PageViewRequest struct {
	Path      string  `json:"path" binding:"required"`
	Title     *string `json:"title"`
	Referrer  *string `json:"referrer"`
	VisitorID *string `json:"visitorId"`
}

// EventRequest is the body of POST /api/analytics/track-event.
type EventRequest struct {
	Name      string         `json:"name" binding:"required"`
	Category  *string        `json:"category"`
	Label     *string        `json:"label"`
	Value     *float64       `json:"value"`
	Path      string         `json:"path" binding:"required"`
	VisitorID *string        `json:"visitorId"`
	Metadata  map[string]any `json:"metadata"`
}

// ClientInfo is what the HTTP layer knows about the caller.
type ClientInfo struct {
	IPAddress string
	UserAgent string
}

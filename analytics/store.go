// Package analytics records page views and custom events and aggregates them
// into the admin summary.
package analytics

import (
	"context"

	"folio/api/models"
)

// EventWriter persists one tracked event.
type EventWriter interface {
	InsertEvent(ctx context.Context, event *models.TrackedEvent) error
}

// EventQuerier answers the aggregate queries behind a summary. Every method
// is restricted to events inside w.
type EventQuerier interface {
	CountPageViews(ctx context.Context, w models.Window) (uint64, error)
	CountUniqueVisitors(ctx context.Context, w models.Window) (uint64, error)
	TopPages(ctx context.Context, w models.Window, limit int) ([]models.PathViews, error)
	PageViewsByDay(ctx context.Context, w models.Window) ([]models.DailyViews, error)
	DeviceBreakdown(ctx context.Context, w models.Window) ([]models.LabelCount, error)
	BrowserBreakdown(ctx context.Context, w models.Window) ([]models.LabelCount, error)
	TopReferrers(ctx context.Context, w models.Window, limit int) ([]models.LabelCount, error)
	EventBreakdown(ctx context.Context, w models.Window) ([]models.LabelCount, error)
	RecentEvents(ctx context.Context, w models.Window, limit int) ([]models.TrackedEvent, error)
}

type EventStore interface {
	EventWriter
	EventQuerier
}

package analytics

import (
	"context"
	"fmt"
	"time"

	"folio/api/apperr"
	"folio/api/models"

	"golang.org/x/sync/errgroup"
)

const (
	DefaultDays = 30
	MaxDays     = 3650

	topPagesLimit     = 10
	topReferrersLimit = 10
	recentEventsLimit = 100
)

// NewWindow returns the inclusive window [now - days*24h, now].
func NewWindow(days int, now time.Time) (models.Window, error) {
	if days < 1 || days > MaxDays {
		return models.Window{}, apperr.NewValidationError().
			Add("days", fmt.Sprintf("must be between 1 and %d", MaxDays))
	}
	return models.Window{
		Start: now.Add(-time.Duration(days) * 24 * time.Hour),
		End:   now,
		Days:  days,
	}, nil
}

// Engine computes analytics summaries. It only reads from its store.
type Engine struct {
	store EventQuerier
	now   func() time.Time
}

func NewEngine(store EventQuerier) *Engine {
	return &Engine{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Summarize aggregates the last days days. The sub-queries run
// concurrently and the first failure fails the whole summary.
func (e *Engine) Summarize(ctx context.Context, days int) (*models.AnalyticsSummary, error) {
	w, err := NewWindow(days, e.now())
	if err != nil {
		return nil, err
	}

	var (
		summary                        models.AnalyticsSummary
		devices, browsers, refs, names []models.LabelCount
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		summary.Summary.TotalPageViews, err = e.store.CountPageViews(ctx, w)
		return err
	})
	g.Go(func() (err error) {
		summary.Summary.UniqueVisitors, err = e.store.CountUniqueVisitors(ctx, w)
		return err
	})
	g.Go(func() (err error) {
		summary.TopPages, err = e.store.TopPages(ctx, w, topPagesLimit)
		return err
	})
	g.Go(func() (err error) {
		summary.PageViewsByDay, err = e.store.PageViewsByDay(ctx, w)
		return err
	})
	g.Go(func() (err error) {
		devices, err = e.store.DeviceBreakdown(ctx, w)
		return err
	})
	g.Go(func() (err error) {
		browsers, err = e.store.BrowserBreakdown(ctx, w)
		return err
	})
	g.Go(func() (err error) {
		refs, err = e.store.TopReferrers(ctx, w, topReferrersLimit)
		return err
	})
	g.Go(func() (err error) {
		names, err = e.store.EventBreakdown(ctx, w)
		return err
	})
	g.Go(func() (err error) {
		summary.RecentEvents, err = e.store.RecentEvents(ctx, w, recentEventsLimit)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to summarize %d days: %w", days, err)
	}

	summary.Summary.AveragePageViews = float64(summary.Summary.TotalPageViews) / float64(w.Days)

	summary.DeviceBreakdown = make([]models.DeviceCount, 0, len(devices))
	for _, d := range devices {
		summary.DeviceBreakdown = append(summary.DeviceBreakdown, models.DeviceCount{Device: d.Label, Count: d.Count})
	}
	summary.BrowserBreakdown = make([]models.BrowserCount, 0, len(browsers))
	for _, b := range browsers {
		summary.BrowserBreakdown = append(summary.BrowserBreakdown, models.BrowserCount{Browser: b.Label, Count: b.Count})
	}
	summary.TopReferrers = make([]models.ReferrerCount, 0, len(refs))
	for _, r := range refs {
		summary.TopReferrers = append(summary.TopReferrers, models.ReferrerCount{Referrer: r.Label, Count: r.Count})
	}
	summary.EventBreakdown = make([]models.EventNameCount, 0, len(names))
	for _, n := range names {
		summary.EventBreakdown = append(summary.EventBreakdown, models.EventNameCount{Name: n.Label, Count: n.Count})
	}
	if summary.TopPages == nil {
		summary.TopPages = []models.PathViews{}
	}
	if summary.PageViewsByDay == nil {
		summary.PageViewsByDay = []models.DailyViews{}
	}
	if summary.RecentEvents == nil {
		summary.RecentEvents = []models.TrackedEvent{}
	}
	return &summary, nil
}

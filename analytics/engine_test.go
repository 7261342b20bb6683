package analytics

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"folio/api/apperr"
	"folio/api/models"
	"folio/api/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var summaryNow = time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

func newTestEngine(q EventQuerier) *Engine {
	e := NewEngine(q)
	e.now = func() time.Time { return summaryNow }
	return e
}

func insert(t *testing.T, s *store.MemoryEventStore, e models.TrackedEvent) {
	t.Helper()
	require.NoError(t, s.InsertEvent(context.Background(), &e))
}

func TestNewWindow(t *testing.T) {
	w, err := NewWindow(7, summaryNow)
	require.NoError(t, err)
	assert.Equal(t, summaryNow, w.End)
	assert.Equal(t, summaryNow.Add(-7*24*time.Hour), w.Start)
	assert.Equal(t, 7, w.Days)

	for _, days := range []int{0, -1, MaxDays + 1} {
		_, err := NewWindow(days, summaryNow)
		var verr *apperr.ValidationError
		assert.ErrorAs(t, err, &verr, "days=%d", days)
	}
}

func TestSummarize(t *testing.T) {
	s := store.NewMemoryEventStore()
	visitor := func(v string) *string { return &v }

	insert(t, s, models.TrackedEvent{ID: "1", Kind: models.KindPageView, CreatedAt: summaryNow.Add(-time.Hour), Path: "/", VisitorID: visitor("a"), Device: "desktop", Browser: "chrome"})
	insert(t, s, models.TrackedEvent{ID: "2", Kind: models.KindPageView, CreatedAt: summaryNow.Add(-2 * time.Hour), Path: "/", VisitorID: visitor("a"), Device: "desktop", Browser: "chrome"})
	insert(t, s, models.TrackedEvent{ID: "3", Kind: models.KindPageView, CreatedAt: summaryNow.Add(-50 * time.Hour), Path: "/blog", VisitorID: visitor("b"), Device: "mobile", Browser: "safari", Referrer: visitor("https://google.com")})
	insert(t, s, models.TrackedEvent{ID: "4", Kind: models.KindPageView, CreatedAt: summaryNow.Add(-50 * time.Hour), Path: "/about", Device: "desktop", Browser: "firefox"})
	// outside a 7-day window
	insert(t, s, models.TrackedEvent{ID: "5", Kind: models.KindPageView, CreatedAt: summaryNow.Add(-8 * 24 * time.Hour), Path: "/old", VisitorID: visitor("c"), Device: "desktop", Browser: "chrome"})
	insert(t, s, models.TrackedEvent{ID: "6", Kind: models.KindEvent, CreatedAt: summaryNow.Add(-time.Minute), Path: "/contact", Name: visitor("contact_form_submit")})

	summary, err := newTestEngine(s).Summarize(context.Background(), 7)
	require.NoError(t, err)

	assert.Equal(t, uint64(4), summary.Summary.TotalPageViews)
	assert.Equal(t, uint64(2), summary.Summary.UniqueVisitors)
	assert.InDelta(t, 4.0/7.0, summary.Summary.AveragePageViews, 1e-12)
	assert.LessOrEqual(t, summary.Summary.UniqueVisitors, summary.Summary.TotalPageViews)

	assert.Equal(t, []models.PathViews{{Path: "/", Views: 2}, {Path: "/about", Views: 1}, {Path: "/blog", Views: 1}}, summary.TopPages)
	require.Len(t, summary.PageViewsByDay, 2)
	assert.Equal(t, "2026-10-17", summary.PageViewsByDay[0].Date)
	assert.Equal(t, "2026-10-19", summary.PageViewsByDay[1].Date)
	assert.Equal(t, []models.DeviceCount{{Device: "desktop", Count: 3}, {Device: "mobile", Count: 1}}, summary.DeviceBreakdown)
	assert.Equal(t, []models.BrowserCount{{Browser: "chrome", Count: 2}, {Browser: "firefox", Count: 1}, {Browser: "safari", Count: 1}}, summary.BrowserBreakdown)
	assert.Equal(t, []models.ReferrerCount{{Referrer: "https://google.com", Count: 1}}, summary.TopReferrers)
	assert.Equal(t, []models.EventNameCount{{Name: "contact_form_submit", Count: 1}}, summary.EventBreakdown)
	require.Len(t, summary.RecentEvents, 1)
	assert.Equal(t, "6", summary.RecentEvents[0].ID)
}

func TestSummarizeLimitsTopPages(t *testing.T) {
	s := store.NewMemoryEventStore()
	for i := 0; i < 15; i++ {
		for j := 0; j <= i; j++ {
			insert(t, s, models.TrackedEvent{
				ID:        fmt.Sprintf("%d-%d", i, j),
				Kind:      models.KindPageView,
				CreatedAt: summaryNow.Add(-time.Duration(j+1) * time.Minute),
				Path:      fmt.Sprintf("/p%02d", i),
			})
		}
	}

	summary, err := newTestEngine(s).Summarize(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, summary.TopPages, 10)
	assert.Equal(t, "/p14", summary.TopPages[0].Path)
	for i := 1; i < len(summary.TopPages); i++ {
		assert.GreaterOrEqual(t, summary.TopPages[i-1].Views, summary.TopPages[i].Views)
	}
	assert.InDelta(t, 120.0, summary.Summary.AveragePageViews, 1e-12)
}

func TestSummarizeEmpty(t *testing.T) {
	summary, err := newTestEngine(store.NewMemoryEventStore()).Summarize(context.Background(), 30)
	require.NoError(t, err)
	assert.Zero(t, summary.Summary.TotalPageViews)
	assert.Zero(t, summary.Summary.AveragePageViews)
	assert.NotNil(t, summary.TopPages)
	assert.NotNil(t, summary.PageViewsByDay)
	assert.NotNil(t, summary.DeviceBreakdown)
	assert.NotNil(t, summary.RecentEvents)
}

func TestSummarizeDoesNotMutateEvents(t *testing.T) {
	s := store.NewMemoryEventStore()
	insert(t, s, models.TrackedEvent{ID: "1", Kind: models.KindPageView, CreatedAt: summaryNow, Path: "/"})

	e := newTestEngine(s)
	_, err := e.Summarize(context.Background(), 1)
	require.NoError(t, err)
	_, err = e.Summarize(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 1, s.Len())
}

type failingQuerier struct {
	*store.MemoryEventStore
}

func (failingQuerier) BrowserBreakdown(context.Context, models.Window) ([]models.LabelCount, error) {
	return nil, errors.New("timeout")
}

func TestSummarizeFailsWholesale(t *testing.T) {
	summary, err := newTestEngine(failingQuerier{store.NewMemoryEventStore()}).Summarize(context.Background(), 30)
	require.Error(t, err)
	assert.Nil(t, summary)
	assert.Equal(t, 500, apperr.HTTPStatus(err))
}

func TestSummarizeRejectsBadDays(t *testing.T) {
	_, err := newTestEngine(store.NewMemoryEventStore()).Summarize(context.Background(), 0)
	assert.Equal(t, 400, apperr.HTTPStatus(err))
}

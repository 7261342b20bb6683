package handlers

import (
	"context"
	"net/http"

	"folio/api/analytics"
	"folio/api/models"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const dashboardListSize = 5

type messageLister interface {
	List(ctx context.Context, status string, limit int) ([]models.ContactMessage, error)
}

type postLister interface {
	ListPublished(ctx context.Context, q models.ListPostsQuery) (*models.PostList, error)
}

// DashboardHandlers serves the admin overview, combining analytics,
// messages and blog data.
type DashboardHandlers struct {
	Analytics Summarizer
	Messages  messageLister
	Posts     postLister
	Log       logrus.FieldLogger
}

func NewDashboardHandlers(summarizer Summarizer, messages messageLister, posts postLister, log logrus.FieldLogger) *DashboardHandlers {
	return &DashboardHandlers{
		Analytics: summarizer,
		Messages:  messages,
		Posts:     posts,
		Log:       log,
	}
}

// Get fetches its three sources in parallel. If any of them fails the whole
// request fails; there is no partial dashboard.
func (h *DashboardHandlers) Get(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), readTimeout)
	defer cancel()

	var (
		summary  *models.AnalyticsSummary
		messages []models.ContactMessage
		posts    *models.PostList
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		summary, err = h.Analytics.Summarize(gctx, analytics.DefaultDays)
		return err
	})
	g.Go(func() (err error) {
		messages, err = h.Messages.List(gctx, "", messageListLimit)
		return err
	})
	g.Go(func() (err error) {
		posts, err = h.Posts.ListPublished(gctx, models.ListPostsQuery{Page: 1, Limit: dashboardListSize})
		return err
	})
	if err := g.Wait(); err != nil {
		h.Log.WithError(err).Error("failed to build dashboard")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to load dashboard"})
		return
	}

	unread := 0
	for _, m := range messages {
		if m.Status == models.MessageUnread {
			unread++
		}
	}

	c.JSON(http.StatusOK, models.Dashboard{
		TotalPageViews: summary.Summary.TotalPageViews,
		UniqueVisitors: summary.Summary.UniqueVisitors,
		UnreadMessages: unread,
		PublishedPosts: posts.Pagination.Total,
		RecentMessages: firstN(messages, dashboardListSize),
		TopPages:       firstN(summary.TopPages, dashboardListSize),
		RecentActivity: firstN(summary.RecentEvents, dashboardListSize),
	})
}

func firstN[T any](s []T, n int) []T {
	if s == nil {
		return []T{}
	}
	if len(s) > n {
		return s[:n]
	}
	return s
}

// api/handlers/track_handlers.go
package handlers

import (
	"context"
	"net/http"
	"strconv"

	"folio/api/analytics"
	"folio/api/apperr"
	"folio/api/models"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Summarizer computes the analytics summary for the last days days.
type Summarizer interface {
	Summarize(ctx context.Context, days int) (*models.AnalyticsSummary, error)
}

type AnalyticsHandlers struct {
	Recorder *analytics.Recorder
	Engine   Summarizer
	Log      logrus.FieldLogger
}

func NewAnalyticsHandlers(recorder *analytics.Recorder, engine Summarizer, log logrus.FieldLogger) *AnalyticsHandlers {
	return &AnalyticsHandlers{
		Recorder: recorder,
		Engine:   engine,
		Log:      log,
	}
}

func clientInfo(c *gin.Context) models.ClientInfo {
	return models.ClientInfo{
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}
}

// TrackPageView handles POST /api/analytics.
func (h *AnalyticsHandlers) TrackPageView(c *gin.Context) {
	var req models.PageViewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindingError(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), writeTimeout)
	defer cancel()

	if err := h.Recorder.RecordPageView(ctx, req, clientInfo(c)); err != nil {
		writeError(c, h.Log, err, "Failed to track page view")
		return
	}
	c.JSON(http.StatusOK, models.SuccessResponse{Success: true})
}

// TrackEvent handles POST /api/analytics/track-event.
func (h *AnalyticsHandlers) TrackEvent(c *gin.Context) {
	var req models.EventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindingError(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), writeTimeout)
	defer cancel()

	if err := h.Recorder.RecordEvent(ctx, req, clientInfo(c)); err != nil {
		writeError(c, h.Log, err, "Failed to track event")
		return
	}
	c.JSON(http.StatusOK, models.SuccessResponse{Success: true})
}

// GetSummary handles GET /api/analytics?days=N (default 30).
func (h *AnalyticsHandlers) GetSummary(c *gin.Context) {
	days := analytics.DefaultDays
	if daysParam := c.Query("days"); daysParam != "" {
		parsed, err := strconv.Atoi(daysParam)
		if err != nil {
			writeError(c, h.Log, apperr.NewValidationError().Add("days", "must be an integer"), "")
			return
		}
		days = parsed
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), readTimeout)
	defer cancel()

	summary, err := h.Engine.Summarize(ctx, days)
	if err != nil {
		writeError(c, h.Log, err, "Failed to fetch analytics")
		return
	}
	c.JSON(http.StatusOK, summary)
}

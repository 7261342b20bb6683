package handlers

import (
	"context"
	"net/http"
	"strconv"

	"folio/api/apperr"
	"folio/api/metrics"
	"folio/api/models"
	"folio/api/notify"
	"folio/api/utils"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const (
	contactThankYou  = "Thank you for your message! I will get back to you soon."
	messageListLimit = 100
)

type MessageStore interface {
	Create(ctx context.Context, msg *models.ContactMessage) error
	List(ctx context.Context, status string, limit int) ([]models.ContactMessage, error)
	UpdateStatus(ctx context.Context, id int64, status string) (*models.ContactMessage, error)
}

// EventTracker records custom events without failing the caller.
type EventTracker interface {
	TrackEvent(ctx context.Context, in models.EventRequest, client models.ClientInfo)
}

type ContactHandlers struct {
	Messages MessageStore
	Notifier notify.Notifier
	Tracker  EventTracker
	Metrics  *metrics.Metrics
	Log      logrus.FieldLogger
}

func NewContactHandlers(messages MessageStore, notifier notify.Notifier, tracker EventTracker, m *metrics.Metrics, log logrus.FieldLogger) *ContactHandlers {
	return &ContactHandlers{
		Messages: messages,
		Notifier: notifier,
		Tracker:  tracker,
		Metrics:  m,
		Log:      log,
	}
}

// Submit handles POST /api/contact. The message is stored first; the
// notification e-mail and the engagement event are best-effort.
func (h *ContactHandlers) Submit(c *gin.Context) {
	var req models.ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindingError(c, err)
		return
	}

	client := clientInfo(c)
	msg := &models.ContactMessage{
		Name:      req.Name,
		Email:     req.Email,
		Subject:   models.DefaultMessageSubject,
		Message:   req.Message,
		Status:    models.MessageUnread,
		IPAddress: client.IPAddress,
		UserAgent: client.UserAgent,
	}
	hasSubject := req.Subject != nil && *req.Subject != ""
	if hasSubject {
		msg.Subject = *req.Subject
	}
	if msg.UserAgent == "" {
		msg.UserAgent = utils.UnknownUserAgent
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), writeTimeout)
	defer cancel()

	if err := h.Messages.Create(ctx, msg); err != nil {
		writeError(c, h.Log, err, "Failed to send message")
		return
	}

	if err := h.Notifier.NotifyContact(ctx, msg); err != nil {
		h.Metrics.EmailFailuresTotal.Inc()
		h.Log.WithError(err).WithField("message_id", msg.ID).Error("failed to send contact notification")
	}

	category := "engagement"
	h.Tracker.TrackEvent(ctx, models.EventRequest{
		Name:     "contact_form_submit",
		Category: &category,
		Path:     "/contact",
		Metadata: map[string]any{"hasSubject": hasSubject},
	}, client)

	c.JSON(http.StatusOK, models.SuccessResponse{Success: true, Message: contactThankYou})
}

// List handles GET /api/contact?status=UNREAD|READ.
func (h *ContactHandlers) List(c *gin.Context) {
	status := c.Query("status")
	if status != "" && status != models.MessageUnread && status != models.MessageRead {
		writeError(c, h.Log, apperr.NewValidationError().Add("status", "must be one of: UNREAD READ"), "")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), readTimeout)
	defer cancel()

	messages, err := h.Messages.List(ctx, status, messageListLimit)
	if err != nil {
		writeError(c, h.Log, err, "Failed to fetch messages")
		return
	}
	c.JSON(http.StatusOK, models.MessagesResponse{Messages: messages})
}

// UpdateStatus handles PATCH /api/contact/:id.
func (h *ContactHandlers) UpdateStatus(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(c, h.Log, apperr.NewValidationError().Add("id", "must be a positive integer"), "")
		return
	}

	var req models.MessageStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindingError(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), writeTimeout)
	defer cancel()

	msg, err := h.Messages.UpdateStatus(ctx, id, req.Status)
	if err != nil {
		writeError(c, h.Log, err, "Failed to update message")
		return
	}
	c.JSON(http.StatusOK, models.MessageResponse{Success: true, Message: msg})
}

package analytics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"folio/api/apperr"
	"folio/api/metrics"
	"folio/api/models"
	"folio/api/utils"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// trackTimeout bounds the write behind a fire-and-forget Track call, which
// outlives the request that triggered it.
const trackTimeout = 15 * time.Second

// Recorder validates, classifies and persists tracked occurrences. Each
// successful Record call performs exactly one write; nothing is retried.
type Recorder struct {
	store   EventWriter
	metrics *metrics.Metrics
	log     logrus.FieldLogger
	now     func() time.Time
	newID   func() string
}

func NewRecorder(store EventWriter, m *metrics.Metrics, log logrus.FieldLogger) *Recorder {
	return &Recorder{
		store:   store,
		metrics: m,
		log:     log,
		now:     func() time.Time { return time.Now().UTC() },
		newID:   func() string { return uuid.New().String() },
	}
}

func (r *Recorder) RecordPageView(ctx context.Context, in models.PageViewRequest, client models.ClientInfo) error {
	verr := apperr.NewValidationError()
	if strings.TrimSpace(in.Path) == "" {
		verr.Add("path", "is required")
	}
	if err := verr.OrNil(); err != nil {
		return err
	}

	event := r.newEvent(models.KindPageView, in.Path, client)
	event.Title = optional(in.Title)
	event.Referrer = optional(in.Referrer)
	event.VisitorID = optional(in.VisitorID)
	return r.write(ctx, event)
}

func (r *Recorder) RecordEvent(ctx context.Context, in models.EventRequest, client models.ClientInfo) error {
	verr := apperr.NewValidationError()
	if strings.TrimSpace(in.Name) == "" {
		verr.Add("name", "is required")
	}
	if strings.TrimSpace(in.Path) == "" {
		verr.Add("path", "is required")
	}
	if err := verr.OrNil(); err != nil {
		return err
	}

	event := r.newEvent(models.KindEvent, in.Path, client)
	name := in.Name
	event.Name = &name
	event.Category = optional(in.Category)
	event.Label = optional(in.Label)
	event.Value = in.Value
	event.VisitorID = optional(in.VisitorID)
	if len(in.Metadata) > 0 {
		event.Metadata = in.Metadata
	}
	return r.write(ctx, event)
}

// TrackPageView records a page view on behalf of another operation. A
// failure is logged and otherwise ignored so the caller's response is
// unaffected.
func (r *Recorder) TrackPageView(ctx context.Context, in models.PageViewRequest, client models.ClientInfo) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), trackTimeout)
	defer cancel()
	if err := r.RecordPageView(ctx, in, client); err != nil {
		r.log.WithError(err).WithField("path", in.Path).Warn("failed to track page view")
	}
}

// TrackEvent is the custom-event counterpart of TrackPageView.
func (r *Recorder) TrackEvent(ctx context.Context, in models.EventRequest, client models.ClientInfo) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), trackTimeout)
	defer cancel()
	if err := r.RecordEvent(ctx, in, client); err != nil {
		r.log.WithError(err).WithField("event", in.Name).Warn("failed to track event")
	}
}

func (r *Recorder) newEvent(kind models.EventKind, path string, client models.ClientInfo) *models.TrackedEvent {
	ua := client.UserAgent
	if ua == "" {
		ua = utils.UnknownUserAgent
	}
	return &models.TrackedEvent{
		ID:        r.newID(),
		Kind:      kind,
		CreatedAt: r.now(),
		Path:      path,
		IPAddress: client.IPAddress,
		UserAgent: ua,
		Device:    utils.DeviceClass(ua),
		Browser:   utils.BrowserClass(ua),
	}
}

func (r *Recorder) write(ctx context.Context, event *models.TrackedEvent) error {
	if err := r.store.InsertEvent(ctx, event); err != nil {
		r.metrics.TrackingFailuresTotal.WithLabelValues(string(event.Kind)).Inc()
		return fmt.Errorf("failed to record %s: %w", event.Kind, err)
	}
	r.metrics.TrackedEventsTotal.WithLabelValues(string(event.Kind)).Inc()
	return nil
}

// optional treats an empty string like an absent field.
func optional(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	v := *s
	return &v
}

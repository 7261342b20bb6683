package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"folio/api/models"
)

const dayLayout = "2006-01-02"

// AnalyticsStore keeps tracked events in the ClickHouse tracked_events table.
type AnalyticsStore struct {
	db *sql.DB
}

func NewAnalyticsStore(db *sql.DB) *AnalyticsStore {
	return &AnalyticsStore{db: db}
}

func (s *AnalyticsStore) InsertEvent(ctx context.Context, event *models.TrackedEvent) error {
	return s.InsertEvents(ctx, []models.TrackedEvent{*event})
}

// InsertEvents writes events as one ClickHouse batch.
func (s *AnalyticsStore) InsertEvents(ctx context.Context, events []models.TrackedEvent) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin batch: %w", err)
	}
	defer tx.Rollback()

	batch, err := tx.PrepareContext(ctx, `
		INSERT INTO tracked_events (
			event_id, kind, created_at, path, title, name, category, label, value,
			visitor_id, referrer, ip_address, user_agent, device, browser, metadata
		)`)
	if err != nil {
		return fmt.Errorf("failed to prepare batch insert: %w", err)
	}
	defer batch.Close()

	for _, event := range events {
		metadata, err := encodeMetadata(event.Metadata)
		if err != nil {
			return fmt.Errorf("event %s: %w", event.ID, err)
		}
		if _, err := batch.ExecContext(ctx,
			event.ID,
			string(event.Kind),
			event.CreatedAt,
			event.Path,
			event.Title,
			event.Name,
			event.Category,
			event.Label,
			event.Value,
			event.VisitorID,
			event.Referrer,
			event.IPAddress,
			event.UserAgent,
			event.Device,
			event.Browser,
			metadata,
		); err != nil {
			return fmt.Errorf("failed to append event %s to batch: %w", event.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to send batch: %w", err)
	}
	return nil
}

func (s *AnalyticsStore) CountPageViews(ctx context.Context, w models.Window) (uint64, error) {
	var count uint64
	err := s.db.QueryRowContext(ctx, `
		SELECT count()
		FROM tracked_events
		WHERE kind = 'pageview' AND created_at >= ? AND created_at <= ?
	`, w.Start, w.End).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count page views: %w", err)
	}
	return count, nil
}

func (s *AnalyticsStore) CountUniqueVisitors(ctx context.Context, w models.Window) (uint64, error) {
	var count uint64
	err := s.db.QueryRowContext(ctx, `
		SELECT uniqExact(visitor_id)
		FROM tracked_events
		WHERE kind = 'pageview' AND visitor_id IS NOT NULL AND created_at >= ? AND created_at <= ?
	`, w.Start, w.End).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count unique visitors: %w", err)
	}
	return count, nil
}

func (s *AnalyticsStore) TopPages(ctx context.Context, w models.Window, limit int) ([]models.PathViews, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT path, count() AS views
		FROM tracked_events
		WHERE kind = 'pageview' AND created_at >= ? AND created_at <= ?
		GROUP BY path
		ORDER BY views DESC, path ASC
		LIMIT ?
	`, w.Start, w.End, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query top pages: %w", err)
	}
	defer rows.Close()

	results := []models.PathViews{}
	for rows.Next() {
		var r models.PathViews
		if err := rows.Scan(&r.Path, &r.Views); err != nil {
			return nil, fmt.Errorf("failed to scan top page row: %w", err)
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows for top pages: %w", err)
	}
	return results, nil
}

func (s *AnalyticsStore) PageViewsByDay(ctx context.Context, w models.Window) ([]models.DailyViews, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT toDate(created_at) AS day, count() AS views, uniqExact(visitor_id) AS unique_visitors
		FROM tracked_events
		WHERE kind = 'pageview' AND created_at >= ? AND created_at <= ?
		GROUP BY day
		ORDER BY day ASC
	`, w.Start, w.End)
	if err != nil {
		return nil, fmt.Errorf("failed to query page views by day: %w", err)
	}
	defer rows.Close()

	results := []models.DailyViews{}
	for rows.Next() {
		var (
			day time.Time
			r   models.DailyViews
		)
		if err := rows.Scan(&day, &r.Views, &r.UniqueVisitors); err != nil {
			return nil, fmt.Errorf("failed to scan page views by day row: %w", err)
		}
		r.Date = day.UTC().Format(dayLayout)
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows for page views by day: %w", err)
	}
	return results, nil
}

func (s *AnalyticsStore) DeviceBreakdown(ctx context.Context, w models.Window) ([]models.LabelCount, error) {
	return s.pageViewBreakdown(ctx, w, "device")
}

func (s *AnalyticsStore) BrowserBreakdown(ctx context.Context, w models.Window) ([]models.LabelCount, error) {
	return s.pageViewBreakdown(ctx, w, "browser")
}

// pageViewBreakdown groups page views by a fixed column name; column is
// never user input.
func (s *AnalyticsStore) pageViewBreakdown(ctx context.Context, w models.Window, column string) ([]models.LabelCount, error) {
	query := fmt.Sprintf(`
		SELECT %[1]s, count() AS c
		FROM tracked_events
		WHERE kind = 'pageview' AND created_at >= ? AND created_at <= ?
		GROUP BY %[1]s
		ORDER BY c DESC, %[1]s ASC
	`, column)

	rows, err := s.db.QueryContext(ctx, query, w.Start, w.End)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s breakdown: %w", column, err)
	}
	return scanLabelCounts(rows, column)
}

func (s *AnalyticsStore) TopReferrers(ctx context.Context, w models.Window, limit int) ([]models.LabelCount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT assumeNotNull(referrer) AS ref, count() AS c
		FROM tracked_events
		WHERE kind = 'pageview' AND referrer IS NOT NULL AND created_at >= ? AND created_at <= ?
		GROUP BY ref
		ORDER BY c DESC, ref ASC
		LIMIT ?
	`, w.Start, w.End, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query top referrers: %w", err)
	}
	return scanLabelCounts(rows, "referrer")
}

func (s *AnalyticsStore) EventBreakdown(ctx context.Context, w models.Window) ([]models.LabelCount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT assumeNotNull(name) AS event_name, count() AS c
		FROM tracked_events
		WHERE kind = 'event' AND created_at >= ? AND created_at <= ?
		GROUP BY event_name
		ORDER BY c DESC, event_name ASC
	`, w.Start, w.End)
	if err != nil {
		return nil, fmt.Errorf("failed to query event breakdown: %w", err)
	}
	return scanLabelCounts(rows, "event name")
}

func (s *AnalyticsStore) RecentEvents(ctx context.Context, w models.Window, limit int) ([]models.TrackedEvent, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT event_id, created_at, path, name, category, label, value,
			visitor_id, referrer, ip_address, user_agent, device, browser, metadata
		FROM tracked_events
		WHERE kind = 'event' AND created_at >= ? AND created_at <= ?
		ORDER BY created_at DESC
		LIMIT ?
	`, w.Start, w.End, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent events: %w", err)
	}
	defer rows.Close()

	results := []models.TrackedEvent{}
	for rows.Next() {
		var (
			e                                          models.TrackedEvent
			name, category, label, visitorID, referrer sql.NullString
			value                                      sql.NullFloat64
			metadata                                   string
		)
		if err := rows.Scan(
			&e.ID, &e.CreatedAt, &e.Path, &name, &category, &label, &value,
			&visitorID, &referrer, &e.IPAddress, &e.UserAgent, &e.Device, &e.Browser, &metadata,
		); err != nil {
			return nil, fmt.Errorf("failed to scan recent event row: %w", err)
		}
		e.Kind = models.KindEvent
		e.Name = stringPtr(name)
		e.Category = stringPtr(category)
		e.Label = stringPtr(label)
		e.Value = floatPtr(value)
		e.VisitorID = stringPtr(visitorID)
		e.Referrer = stringPtr(referrer)
		if e.Metadata, err = decodeMetadata(metadata); err != nil {
			return nil, fmt.Errorf("event %s: %w", e.ID, err)
		}
		results = append(results, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows for recent events: %w", err)
	}
	return results, nil
}

func scanLabelCounts(rows *sql.Rows, what string) ([]models.LabelCount, error) {
	defer rows.Close()

	results := []models.LabelCount{}
	for rows.Next() {
		var r models.LabelCount
		if err := rows.Scan(&r.Label, &r.Count); err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", what, err)
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows for %s: %w", what, err)
	}
	return results, nil
}

func encodeMetadata(m map[string]any) (string, error) {
	if len(m) == 0 {
		return "", nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("encode metadata: %w", err)
	}
	return string(b), nil
}

func decodeMetadata(s string) (map[string]any, error) {
	if s == "" {
		return nil, nil
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(s), &m); err != nil {
		return nil, fmt.Errorf("decode metadata: %w", err)
	}
	return m, nil
}

package store

import (
	"context"
	"sort"
	"sync"

	"folio/api/models"
)

// MemoryEventStore keeps tracked events in process memory. It serves local
// development without ClickHouse and computes every aggregate exactly.
type MemoryEventStore struct {
	mu     sync.RWMutex
	events []models.TrackedEvent
}

func NewMemoryEventStore() *MemoryEventStore {
	return &MemoryEventStore{}
}

func (s *MemoryEventStore) InsertEvent(_ context.Context, event *models.TrackedEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, *event)
	return nil
}

func (s *MemoryEventStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.events)
}

// each calls fn for every event of kind inside w.
func (s *MemoryEventStore) each(w models.Window, kind models.EventKind, fn func(e *models.TrackedEvent)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.events {
		e := &s.events[i]
		if e.Kind == kind && w.Contains(e.CreatedAt) {
			fn(e)
		}
	}
}

func (s *MemoryEventStore) CountPageViews(_ context.Context, w models.Window) (uint64, error) {
	var n uint64
	s.each(w, models.KindPageView, func(*models.TrackedEvent) { n++ })
	return n, nil
}

func (s *MemoryEventStore) CountUniqueVisitors(_ context.Context, w models.Window) (uint64, error) {
	seen := map[string]struct{}{}
	s.each(w, models.KindPageView, func(e *models.TrackedEvent) {
		if e.VisitorID != nil {
			seen[*e.VisitorID] = struct{}{}
		}
	})
	return uint64(len(seen)), nil
}

func (s *MemoryEventStore) TopPages(_ context.Context, w models.Window, limit int) ([]models.PathViews, error) {
	counts := map[string]uint64{}
	s.each(w, models.KindPageView, func(e *models.TrackedEvent) { counts[e.Path]++ })

	ranked := rank(counts, limit)
	results := make([]models.PathViews, 0, len(ranked))
	for _, r := range ranked {
		results = append(results, models.PathViews{Path: r.Label, Views: r.Count})
	}
	return results, nil
}

func (s *MemoryEventStore) PageViewsByDay(_ context.Context, w models.Window) ([]models.DailyViews, error) {
	views := map[string]uint64{}
	visitors := map[string]map[string]struct{}{}
	s.each(w, models.KindPageView, func(e *models.TrackedEvent) {
		day := e.CreatedAt.UTC().Format(dayLayout)
		views[day]++
		if visitors[day] == nil {
			visitors[day] = map[string]struct{}{}
		}
		if e.VisitorID != nil {
			visitors[day][*e.VisitorID] = struct{}{}
		}
	})

	results := make([]models.DailyViews, 0, len(views))
	for day, n := range views {
		results = append(results, models.DailyViews{Date: day, Views: n, UniqueVisitors: uint64(len(visitors[day]))})
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Date < results[j].Date })
	return results, nil
}

func (s *MemoryEventStore) DeviceBreakdown(_ context.Context, w models.Window) ([]models.LabelCount, error) {
	counts := map[string]uint64{}
	s.each(w, models.KindPageView, func(e *models.TrackedEvent) { counts[e.Device]++ })
	return rank(counts, 0), nil
}

func (s *MemoryEventStore) BrowserBreakdown(_ context.Context, w models.Window) ([]models.LabelCount, error) {
	counts := map[string]uint64{}
	s.each(w, models.KindPageView, func(e *models.TrackedEvent) { counts[e.Browser]++ })
	return rank(counts, 0), nil
}

func (s *MemoryEventStore) TopReferrers(_ context.Context, w models.Window, limit int) ([]models.LabelCount, error) {
	counts := map[string]uint64{}
	s.each(w, models.KindPageView, func(e *models.TrackedEvent) {
		if e.Referrer != nil {
			counts[*e.Referrer]++
		}
	})
	return rank(counts, limit), nil
}

func (s *MemoryEventStore) EventBreakdown(_ context.Context, w models.Window) ([]models.LabelCount, error) {
	counts := map[string]uint64{}
	s.each(w, models.KindEvent, func(e *models.TrackedEvent) {
		if e.Name != nil {
			counts[*e.Name]++
		}
	})
	return rank(counts, 0), nil
}

func (s *MemoryEventStore) RecentEvents(_ context.Context, w models.Window, limit int) ([]models.TrackedEvent, error) {
	var results []models.TrackedEvent
	s.each(w, models.KindEvent, func(e *models.TrackedEvent) { results = append(results, *e) })

	sort.SliceStable(results, func(i, j int) bool { return results[i].CreatedAt.After(results[j].CreatedAt) })
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	if results == nil {
		results = []models.TrackedEvent{}
	}
	return results, nil
}

// rank orders counts descending with ties broken by label, keeping at most
// limit rows when limit > 0.
func rank(counts map[string]uint64, limit int) []models.LabelCount {
	results := make([]models.LabelCount, 0, len(counts))
	for label, n := range counts {
		results = append(results, models.LabelCount{Label: label, Count: n})
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].Count != results[j].Count {
			return results[i].Count > results[j].Count
		}
		return results[i].Label < results[j].Label
	})
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results
}

package models

import "time"

// Window is the inclusive time range [Start, End] an aggregation covers.
type Window struct {
	Start time.Time
	End   time.Time
	Days  int
}

func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// LabelCount is one row of a grouped count.
type LabelCount struct {
	Label string
	Count uint64
}

type PathViews struct {
	Path  string `json:"path"`
	Views uint64 `json:"views"`
}

type DailyViews struct {
	Date           string `json:"date"`
	Views          uint64 `json:"views"`
	UniqueVisitors uint64 `json:"unique_visitors"`
}

type DeviceCount struct {
	Device string `json:"device"`
	Count  uint64 `json:"count"`
}

type BrowserCount struct {
	Browser string `json:"browser"`
	Count   uint64 `json:"count"`
}

type ReferrerCount struct {
	Referrer string `json:"referrer"`
	Count    uint64 `json:"count"`
}

type EventNameCount struct {
	Name  string `json:"name"`
	Count uint64 `json:"count"`
}

type SummaryTotals struct {
	TotalPageViews   uint64  `json:"totalPageViews"`
	UniqueVisitors   uint64  `json:"uniqueVisitors"`
	AveragePageViews float64 `json:"averagePageViews"`
}

// AnalyticsSummary is the response of GET /api/analytics.
type AnalyticsSummary struct {
	Summary          SummaryTotals    `json:"summary"`
	TopPages         []PathViews      `json:"topPages"`
	PageViewsByDay   []DailyViews     `json:"pageViewsByDay"`
	DeviceBreakdown  []DeviceCount    `json:"deviceBreakdown"`
	BrowserBreakdown []BrowserCount   `json:"browserBreakdown"`
	TopReferrers     []ReferrerCount  `json:"topReferrers"`
	EventBreakdown   []EventNameCount `json:"eventBreakdown"`
	RecentEvents     []TrackedEvent   `json:"recentEvents"`
}

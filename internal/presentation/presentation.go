// Package presentation derives the read-only views consumed by the rendering
// layer: map markers, chart series and the alert list. It never draws and
// never writes back into a snapshot.
package presentation

import (
	"time"

	"github.com/couchcryptid/compliance-dashboard/internal/domain"
)

// UrgentReportAction is the suggested action attached to every alert.
const UrgentReportAction = "generate urgent report"

// MapMarker is one project pin on the map overlay.
type MapMarker struct {
	ID                 string             `json:"id"`
	Label              string             `json:"label"`
	Location           string             `json:"location"`
	Coordinates        domain.Coordinates `json:"coordinates"`
	Tier               domain.Tier        `json:"tier"`
	Color              string             `json:"color"`
	ComplianceScore    int                `json:"complianceScore"`
	CriticalIssueCount int                `json:"criticalIssueCount"`
	Placeholder        bool               `json:"placeholder"`
}

// TierPoint is one slice of the tier distribution chart.
type TierPoint struct {
	Tier  domain.Tier `json:"tier"`
	Label string      `json:"label"`
	Color string      `json:"color"`
	Count int         `json:"count"`
}

// Alert is one entry of the critical alert list.
type Alert struct {
	ProjectID          string      `json:"projectId"`
	Name               string      `json:"name"`
	Location           string      `json:"location"`
	Tier               domain.Tier `json:"tier"`
	CriticalIssueCount int         `json:"criticalIssueCount"`
	Action             string      `json:"action"`
}

// TrendPoint is one week of the compliance evolution chart.
type TrendPoint struct {
	Week       string `json:"week"`
	Compliance int    `json:"compliance"`
}

// Viewport is the initial map position.
type Viewport struct {
	Center domain.Coordinates `json:"center"`
	Zoom   int                `json:"zoom"`
}

// DefaultViewport frames mainland Portugal.
var DefaultViewport = Viewport{Center: domain.Coordinates{Lat: 39.5, Lng: -8.2}, Zoom: 6}

// Status describes the load behind the views so the UI can show a
// non-blocking "degraded" badge.
type Status struct {
	LoadID   string        `json:"loadId"`
	Origin   domain.Origin `json:"origin"`
	Degraded bool          `json:"degraded"`
	Reason   string        `json:"reason,omitempty"`
	Loading  bool          `json:"loading"`
	LoadedAt time.Time     `json:"loadedAt"`
	Warnings int           `json:"warnings"`
}

// Dashboard bundles every view for a single render.
type Dashboard struct {
	Status                 Status       `json:"status"`
	GlobalCompliance       int          `json:"globalCompliance"`
	Viewport               Viewport     `json:"viewport"`
	MapMarkers             []MapMarker  `json:"mapMarkers"`
	TierDistributionSeries []TierPoint  `json:"tierDistribution"`
	AlertList              []Alert      `json:"alerts"`
	WeeklyTrend            []TrendPoint `json:"weeklyTrend"`
}

// Build derives the full dashboard from a snapshot.
func Build(snap domain.Snapshot, loading bool) Dashboard {
	summary := snap.Summary()
	return Dashboard{
		Status: Status{
			LoadID:   snap.LoadID,
			Origin:   snap.Origin,
			Degraded: snap.Degraded,
			Reason:   snap.Reason,
			Loading:  loading,
			LoadedAt: snap.LoadedAt,
			Warnings: len(snap.Warnings),
		},
		GlobalCompliance:       summary.GlobalCompliance,
		Viewport:               DefaultViewport,
		MapMarkers:             MapMarkers(snap.Records),
		TierDistributionSeries: tierSeries(summary.TierCounts),
		AlertList:              alertList(summary.CriticalAlerts),
		WeeklyTrend:            WeeklyTrend(),
	}
}

// MapMarkers returns one marker per record in record order.
func MapMarkers(records []domain.ProjectRecord) []MapMarker {
	markers := make([]MapMarker, 0, len(records))
	for _, r := range records {
		tier := r.Status()
		markers = append(markers, MapMarker{
			ID:                 r.ID,
			Label:              r.Name,
			Location:           r.Location,
			Coordinates:        r.Coordinates,
			Tier:               tier,
			Color:              tier.Color(),
			ComplianceScore:    r.ComplianceScore,
			CriticalIssueCount: r.CriticalIssueCount,
			Placeholder:        r.IsPlaceholder(),
		})
	}
	return markers
}

// TierDistributionSeries returns (tier, count) pairs in the fixed order
// compliant, attention, critical, including zero counts.
func TierDistributionSeries(records []domain.ProjectRecord) []TierPoint {
	return tierSeries(domain.TierCounts(records))
}

func tierSeries(counts map[domain.Tier]int) []TierPoint {
	series := make([]TierPoint, 0, len(domain.Tiers))
	for _, t := range domain.Tiers {
		series = append(series, TierPoint{
			Tier:  t,
			Label: t.Label(),
			Color: t.Color(),
			Count: counts[t],
		})
	}
	return series
}

// AlertList returns the critical alerts with the suggested action attached.
func AlertList(records []domain.ProjectRecord) []Alert {
	return alertList(domain.CriticalAlerts(records))
}

func alertList(alerts []domain.CriticalAlert) []Alert {
	out := make([]Alert, 0, len(alerts))
	for _, a := range alerts {
		out = append(out, Alert{
			ProjectID:          a.ProjectID,
			Name:               a.Name,
			Location:           a.Location,
			Tier:               a.Tier,
			CriticalIssueCount: a.CriticalIssueCount,
			Action:             UrgentReportAction,
		})
	}
	return out
}

// WeeklyTrend returns the static weekly compliance series. It is display
// content, not stored history.
func WeeklyTrend() []TrendPoint {
	return []TrendPoint{
		{Week: "Sem 44", Compliance: 72},
		{Week: "Sem 45", Compliance: 78},
		{Week: "Sem 46", Compliance: 85},
		{Week: "Sem 47", Compliance: 91},
	}
}

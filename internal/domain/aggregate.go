package domain

import "math"

// Summary holds the metrics derived from a record set. It is a projection:
// always recomputable from the records alone.
type Summary struct {
	GlobalCompliance int             `json:"globalCompliance"`
	TierCounts       map[Tier]int    `json:"tierCounts"`
	CriticalAlerts   []CriticalAlert `json:"criticalAlerts"`
}

// CriticalAlert is a project with at least one open critical issue.
type CriticalAlert struct {
	ProjectID          string `json:"projectId"`
	Name               string `json:"name"`
	Location           string `json:"location"`
	Tier               Tier   `json:"tier"`
	CriticalIssueCount int    `json:"criticalIssueCount"`
}

// Aggregate computes global compliance, per-tier counts and the critical
// alert subset. Every tier is present in TierCounts; alerts keep input order.
func Aggregate(records []ProjectRecord) Summary {
	return Summary{
		GlobalCompliance: GlobalCompliance(records),
		TierCounts:       TierCounts(records),
		CriticalAlerts:   CriticalAlerts(records),
	}
}

// GlobalCompliance is the mean score rounded to the nearest integer, or 0 for
// an empty set.
func GlobalCompliance(records []ProjectRecord) int {
	if len(records) == 0 {
		return 0
	}
	sum := 0
	for _, r := range records {
		sum += r.ComplianceScore
	}
	return int(math.Round(float64(sum) / float64(len(records))))
}

// TierCounts counts records per tier, with zero entries for empty tiers.
func TierCounts(records []ProjectRecord) map[Tier]int {
	counts := make(map[Tier]int, len(Tiers))
	for _, t := range Tiers {
		counts[t] = 0
	}
	for _, r := range records {
		counts[r.Status()]++
	}
	return counts
}

// CriticalAlerts returns records with CriticalIssueCount > 0 in input order.
func CriticalAlerts(records []ProjectRecord) []CriticalAlert {
	alerts := make([]CriticalAlert, 0)
	for _, r := range records {
		if r.CriticalIssueCount <= 0 {
			continue
		}
		alerts = append(alerts, CriticalAlert{
			ProjectID:          r.ID,
			Name:               r.Name,
			Location:           r.Location,
			Tier:               r.Status(),
			CriticalIssueCount: r.CriticalIssueCount,
		})
	}
	return alerts
}

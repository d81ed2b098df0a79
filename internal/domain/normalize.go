package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"time"
)

// Score bounds.
const (
	MinScore = 0
	MaxScore = 100
)

// MaxCriticalIssues caps the critical issue count accepted from upstream.
const MaxCriticalIssues = math.MaxInt32

// ErrInvalidRecord marks an upstream record that cannot be turned into a
// ProjectRecord at all. The loader skips such records.
var ErrInvalidRecord = errors.New("invalid project record")

// NormalizeRaw validates and converts one upstream record. index is the
// record's position in the upstream array and seeds the derived id when the
// source omits one.
//
// Recoverable problems (out-of-range score, bad coordinates, unparseable
// timestamp) are corrected and reported as warnings. Missing coordinates or
// location are left empty for later geocoding or synthesis.
func NormalizeRaw(index int, raw RawProject) (ProjectRecord, []string, error) {
	if raw.Name == "" {
		return ProjectRecord{}, nil, fmt.Errorf("record %d: missing name: %w", index, ErrInvalidRecord)
	}
	if raw.ComplianceScore == nil {
		return ProjectRecord{}, nil, fmt.Errorf("record %d (%s): missing compliance score: %w", index, raw.Name, ErrInvalidRecord)
	}

	var warnings []string
	rec := ProjectRecord{
		ID:       raw.ID,
		Name:     raw.Name,
		Location: raw.Location,
	}
	if rec.ID == "" {
		rec.ID = generateID(raw.Name, index)
	}

	score, clamped := clampScore(*raw.ComplianceScore)
	if clamped {
		warnings = append(warnings, fmt.Sprintf("project %s: compliance score %g clamped to %d", rec.ID, *raw.ComplianceScore, score))
	}
	rec.ComplianceScore = score

	if raw.CriticalIssueCount != nil {
		n, warning := clampCriticalIssues(*raw.CriticalIssueCount)
		if warning != "" {
			warnings = append(warnings, fmt.Sprintf("project %s: %s", rec.ID, warning))
		}
		rec.CriticalIssueCount = n
	}

	if raw.Lat != nil && raw.Lng != nil {
		c := Coordinates{Lat: *raw.Lat, Lng: *raw.Lng}
		if c.Valid() {
			rec.Coordinates = c
			rec.CoordinatesSource = ProvenanceUpstream
		} else {
			warnings = append(warnings, fmt.Sprintf("project %s: coordinates (%g, %g) out of bounds, discarded", rec.ID, c.Lat, c.Lng))
		}
	}

	if rec.Location != "" {
		rec.LocationSource = ProvenanceUpstream
	}

	if raw.LastAnalyzedAt != "" {
		t, err := time.Parse(time.RFC3339, raw.LastAnalyzedAt)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("project %s: unparseable lastAnalyzedAt %q ignored", rec.ID, raw.LastAnalyzedAt))
		} else {
			t = t.UTC()
			rec.LastAnalyzedAt = &t
		}
	}

	return rec, warnings, nil
}

// clampCriticalIssues rounds v and bounds it to [0, MaxCriticalIssues]
// before converting, so huge values cannot overflow int.
func clampCriticalIssues(v float64) (int, string) {
	r := math.Round(v)
	switch {
	case math.IsNaN(r):
		return 0, fmt.Sprintf("invalid critical issue count %g set to 0", v)
	case r < 0:
		return 0, fmt.Sprintf("negative critical issue count %g set to 0", v)
	case r > MaxCriticalIssues:
		return MaxCriticalIssues, fmt.Sprintf("critical issue count %g capped at %d", v, MaxCriticalIssues)
	}
	return int(r), ""
}

// clampScore rounds to the nearest integer and clamps into [MinScore, MaxScore].
func clampScore(v float64) (int, bool) {
	if math.IsNaN(v) {
		return MinScore, true
	}
	r := math.Round(v)
	switch {
	case r < MinScore:
		return MinScore, true
	case r > MaxScore:
		return MaxScore, true
	default:
		return int(r), false
	}
}

// generateID produces a deterministic id for records the source sent without
// one, so reloading the same payload yields the same ids.
func generateID(name string, index int) string {
	hash := sha256.Sum256([]byte(fmt.Sprintf("%s|%d", name, index)))
	return "prj-" + hex.EncodeToString(hash[:6])
}

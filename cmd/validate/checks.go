package main

import (
	"math"
	"slices"

	"github.com/couchcryptid/compliance-dashboard/internal/domain"
	"github.com/couchcryptid/compliance-dashboard/internal/presentation"
	"github.com/google/go-cmp/cmp"
)

// ── Phase 1: Snapshot metadata ──

func validateMetadata(snap domain.Snapshot) *phase {
	p := &phase{name: "Phase 1: Snapshot Metadata"}

	if snap.LoadID == "" {
		p.errorf("loadId is empty")
	}
	if snap.LoadedAt.IsZero() {
		p.errorf("loadedAt is missing")
	}

	switch snap.Origin {
	case domain.OriginRemote:
		if snap.Degraded {
			p.errorf("remote snapshot marked degraded")
		}
	case domain.OriginFallback:
		if !snap.Degraded {
			p.errorf("fallback snapshot not marked degraded")
		}
		if diff := cmp.Diff(domain.FallbackProjects(), snap.Records); diff != "" {
			p.errorf("fallback records differ from the built-in dataset (-want +got):\n%s", diff)
		}
	default:
		p.errorf("unknown origin %q", snap.Origin)
	}
	return p
}

// ── Phase 2: Record model ──

func validateRecords(records []domain.ProjectRecord, statuses []domain.Tier) *phase {
	p := &phase{name: "Phase 2: Record Model"}

	seen := make(map[string]bool, len(records))
	for i, r := range records {
		if r.ID == "" {
			p.errorf("record %d: empty id", i)
		} else if seen[r.ID] {
			p.errorf("record %d: duplicate id %q", i, r.ID)
		}
		seen[r.ID] = true

		checkRecord(p.errorf, i, r)

		if i < len(statuses) && statuses[i] != r.Status() {
			p.errorf("record %s: status %q inconsistent with score %d (want %q)", r.ID, statuses[i], r.ComplianceScore, r.Status())
		}
	}
	return p
}

func checkRecord(pf func(string, ...any), i int, r domain.ProjectRecord) {
	if r.Name == "" {
		pf("record %d (%s): empty name", i, r.ID)
	}
	if r.ComplianceScore < domain.MinScore || r.ComplianceScore > domain.MaxScore {
		pf("record %s: score %d outside [%d, %d]", r.ID, r.ComplianceScore, domain.MinScore, domain.MaxScore)
	}
	if r.CriticalIssueCount < 0 {
		pf("record %s: negative critical issue count %d", r.ID, r.CriticalIssueCount)
	}
	if !r.HasCoordinates() {
		pf("record %s: coordinates missing after load", r.ID)
	}
	if !r.Coordinates.Valid() {
		pf("record %s: coordinates (%g, %g) out of bounds", r.ID, r.Coordinates.Lat, r.Coordinates.Lng)
	}
	if r.CoordinatesSource == domain.ProvenanceSynthetic && !domain.SynthesisRegion.Contains(r.Coordinates) {
		pf("record %s: synthetic coordinates (%g, %g) outside synthesis region", r.ID, r.Coordinates.Lat, r.Coordinates.Lng)
	}
	if r.Location == "" {
		pf("record %s: location missing after load", r.ID)
	}
	if r.LocationSource == domain.ProvenanceSynthetic && r.Location != domain.LocationLabel(i) {
		pf("record %s: synthetic location %q, want %q", r.ID, r.Location, domain.LocationLabel(i))
	}
}

// ── Phase 3: Derived views ──

func validateViews(snap domain.Snapshot) *phase {
	p := &phase{name: "Phase 3: Derived Views"}
	records := snap.Records
	summary := snap.Summary()

	if want := meanScore(records); summary.GlobalCompliance != want {
		p.errorf("global compliance %d, recomputed %d", summary.GlobalCompliance, want)
	}

	total := 0
	for _, t := range domain.Tiers {
		n, ok := summary.TierCounts[t]
		if !ok {
			p.errorf("tier %q missing from counts", t)
		}
		total += n
	}
	if total != len(records) {
		p.errorf("tier counts sum to %d, want %d", total, len(records))
	}

	var wantAlerts []string
	for _, r := range records {
		if r.CriticalIssueCount > 0 {
			wantAlerts = append(wantAlerts, r.ID)
		}
	}
	gotAlerts := make([]string, 0, len(summary.CriticalAlerts))
	for _, a := range summary.CriticalAlerts {
		gotAlerts = append(gotAlerts, a.ProjectID)
	}
	if !slices.Equal(wantAlerts, gotAlerts) && len(wantAlerts)+len(gotAlerts) > 0 {
		p.errorf("critical alerts %v, want %v in record order", gotAlerts, wantAlerts)
	}

	dash := presentation.Build(snap, false)
	if len(dash.MapMarkers) != len(records) {
		p.errorf("%d map markers for %d records", len(dash.MapMarkers), len(records))
	}
	for i, m := range dash.MapMarkers {
		if i < len(records) && m.Tier != records[i].Status() {
			p.errorf("marker %s: tier %q, want %q", m.ID, m.Tier, records[i].Status())
		}
	}
	return p
}

// meanScore recomputes global compliance independently of domain.Aggregate.
func meanScore(records []domain.ProjectRecord) int {
	if len(records) == 0 {
		return 0
	}
	var sum float64
	for _, r := range records {
		sum += float64(r.ComplianceScore)
	}
	return int(math.Round(sum / float64(len(records))))
}

// ── Phase 4: Upstream reconciliation ──

func validateUpstream(snap domain.Snapshot, raws []domain.RawProject) *phase {
	p := &phase{name: "Phase 4: Upstream Reconciliation"}
	if snap.Origin != domain.OriginRemote {
		p.errorf("snapshot origin %q, upstream fixture implies remote", snap.Origin)
		return p
	}

	byID := make(map[string]domain.ProjectRecord, len(snap.Records))
	for _, r := range snap.Records {
		byID[r.ID] = r
	}

	matched := make(map[string]bool, len(snap.Records))
	for i, raw := range raws {
		want, _, err := domain.NormalizeRaw(i, raw)
		if err != nil {
			continue
		}
		got, ok := byID[want.ID]
		if !ok || matched[want.ID] {
			continue
		}
		matched[want.ID] = true
		if got.Name != want.Name {
			p.errorf("record %s: name %q, upstream %q", want.ID, got.Name, want.Name)
		}
		if got.ComplianceScore != want.ComplianceScore {
			p.errorf("record %s: score %d, upstream normalizes to %d", want.ID, got.ComplianceScore, want.ComplianceScore)
		}
		if got.CriticalIssueCount != want.CriticalIssueCount {
			p.errorf("record %s: critical issues %d, upstream %d", want.ID, got.CriticalIssueCount, want.CriticalIssueCount)
		}
		if want.HasCoordinates() && got.Coordinates != want.Coordinates {
			p.errorf("record %s: upstream coordinates were replaced", want.ID)
		}
	}

	if len(matched) != len(snap.Records) {
		p.errorf("%d of %d snapshot records trace back to the upstream fixture", len(matched), len(snap.Records))
	}
	if skipped := len(raws) - len(matched); skipped > len(snap.Warnings) {
		p.errorf("%d upstream records missing from snapshot but only %d warnings", skipped, len(snap.Warnings))
	}
	return p
}

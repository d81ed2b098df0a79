package main

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/couchcryptid/compliance-dashboard/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fallbackSnapshot() domain.Snapshot {
	return domain.Snapshot{
		LoadID:   "load-1",
		Records:  domain.FallbackProjects(),
		Origin:   domain.OriginFallback,
		Degraded: true,
		LoadedAt: time.Date(2025, 11, 24, 8, 0, 0, 0, time.UTC),
	}
}

func TestValidFallbackSnapshotPasses(t *testing.T) {
	snap := fallbackSnapshot()
	data, err := json.Marshal(snap)
	require.NoError(t, err)

	decoded, statuses, err := decodeSnapshot(data)
	require.NoError(t, err)

	for _, p := range []*phase{
		validateMetadata(decoded),
		validateRecords(decoded.Records, statuses),
		validateViews(decoded),
	} {
		assert.True(t, p.passed(), "%s: %v", p.name, p.errors)
	}
}

func TestDecodeSnapshot_KafkaEnvelope(t *testing.T) {
	snap := fallbackSnapshot()
	data, err := json.Marshal(map[string]any{"snapshot": snap, "summary": snap.Summary()})
	require.NoError(t, err)

	decoded, statuses, err := decodeSnapshot(data)
	require.NoError(t, err)
	assert.Equal(t, "load-1", decoded.LoadID)
	assert.Len(t, statuses, 4)
	assert.Equal(t, domain.TierCritical, statuses[2])
}

func TestValidateMetadata_Failures(t *testing.T) {
	snap := fallbackSnapshot()
	snap.LoadID = ""
	snap.Degraded = false
	snap.Records[0].ComplianceScore = 10

	p := validateMetadata(snap)

	assert.False(t, p.passed())
	assert.Len(t, p.errors, 3)
}

func TestValidateRecords_Failures(t *testing.T) {
	recs := []domain.ProjectRecord{
		{ID: "a", Name: "A", ComplianceScore: 120, Location: "Porto", CoordinatesSource: domain.ProvenanceUpstream, Coordinates: domain.Coordinates{Lat: 41, Lng: -8}},
		{ID: "a", Name: "", ComplianceScore: 50, CriticalIssueCount: -1, Location: "Porto", CoordinatesSource: domain.ProvenanceUpstream, Coordinates: domain.Coordinates{Lat: 41, Lng: -8}},
		{ID: "c", Name: "C", ComplianceScore: 50, CoordinatesSource: domain.ProvenanceSynthetic, Coordinates: domain.Coordinates{Lat: 10, Lng: 10}},
	}
	statuses := []domain.Tier{domain.TierCompliant, domain.TierCompliant, domain.TierAttention}

	p := validateRecords(recs, statuses)

	assert.ElementsMatch(t, []string{
		`record a: score 120 outside [0, 100]`,
		`record 1: duplicate id "a"`,
		`record 1 (a): empty name`,
		`record a: negative critical issue count -1`,
		`record a: status "compliant" inconsistent with score 50 (want "attention")`,
		`record c: synthetic coordinates (10, 10) outside synthesis region`,
		`record c: location missing after load`,
	}, p.errors)
}

func TestValidateViews_EmptySnapshotPasses(t *testing.T) {
	p := validateViews(domain.Snapshot{})
	assert.True(t, p.passed(), "%v", p.errors)
}

func TestValidateUpstream(t *testing.T) {
	raws, err := domain.ParseRawProjects([]byte(`[
		{"id": "a", "name": "A", "location": "Porto", "coordinates": [41.1, -8.6], "complianceScore": 120},
		{"id": "b", "name": "B", "complianceScore": 40, "criticalIssueCount": 3},
		{"id": "x", "complianceScore": 10}
	]`))
	require.NoError(t, err)

	snap := domain.Snapshot{
		LoadID: "l",
		Origin: domain.OriginRemote,
		Records: []domain.ProjectRecord{
			{ID: "a", Name: "A", Location: "Porto", Coordinates: domain.Coordinates{Lat: 41.1, Lng: -8.6}, ComplianceScore: 100, CoordinatesSource: domain.ProvenanceUpstream},
			{ID: "b", Name: "B", Location: "Porto", Coordinates: domain.Coordinates{Lat: 40, Lng: -8}, ComplianceScore: 40, CriticalIssueCount: 3},
		},
		Warnings: []string{"skipped record 2: missing name"},
	}

	p := validateUpstream(snap, raws)
	assert.True(t, p.passed(), "%v", p.errors)

	snap.Records[1].ComplianceScore = 41
	p = validateUpstream(snap, raws)
	assert.Equal(t, []string{"record b: score 41, upstream normalizes to 40"}, p.errors)
}

func TestValidateUpstream_RejectsFallback(t *testing.T) {
	p := validateUpstream(fallbackSnapshot(), nil)
	assert.False(t, p.passed())
}

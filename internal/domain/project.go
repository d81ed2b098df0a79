package domain

import (
	"encoding/json"
	"time"
)

// Provenance records where a record's coordinates or location label came from.
type Provenance string

const (
	ProvenanceUpstream  Provenance = "upstream"
	ProvenanceFallback  Provenance = "fallback"
	ProvenanceGeocoded  Provenance = "geocoded"
	ProvenanceSynthetic Provenance = "synthetic"
)

// Coordinates is a WGS-84 latitude/longitude pair.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Valid reports whether the pair lies within geographic bounds.
func (c Coordinates) Valid() bool {
	return c.Lat >= -90 && c.Lat <= 90 && c.Lng >= -180 && c.Lng <= 180
}

// ProjectRecord is the canonical, normalized shape of a project.
//
// Records are values: once built by the loader they are never mutated, and
// every reader works on its own copy (see [Snapshot.Clone]).
type ProjectRecord struct {
	ID                 string
	Name               string
	Location           string
	Coordinates        Coordinates
	ComplianceScore    int
	CriticalIssueCount int
	LastAnalyzedAt     *time.Time

	CoordinatesSource Provenance
	LocationSource    Provenance
}

// Status returns the record's tier, derived from ComplianceScore.
func (p ProjectRecord) Status() Tier {
	return Classify(p.ComplianceScore)
}

// HasCoordinates reports whether coordinates have been assigned from any source.
func (p ProjectRecord) HasCoordinates() bool {
	return p.CoordinatesSource != ""
}

// IsPlaceholder reports whether any geographic field was synthesized.
func (p ProjectRecord) IsPlaceholder() bool {
	return p.CoordinatesSource == ProvenanceSynthetic || p.LocationSource == ProvenanceSynthetic
}

func (p ProjectRecord) clone() ProjectRecord {
	if p.LastAnalyzedAt != nil {
		t := *p.LastAnalyzedAt
		p.LastAnalyzedAt = &t
	}
	return p
}

// projectJSON is the wire form of a ProjectRecord. Status is computed at
// encode time and ignored on decode.
type projectJSON struct {
	ID                 string      `json:"id"`
	Name               string      `json:"name"`
	Location           string      `json:"location"`
	Coordinates        Coordinates `json:"coordinates"`
	ComplianceScore    int         `json:"complianceScore"`
	Status             Tier        `json:"status"`
	CriticalIssueCount int         `json:"criticalIssueCount"`
	LastAnalyzedAt     *time.Time  `json:"lastAnalyzedAt,omitempty"`
	CoordinatesSource  Provenance  `json:"coordinatesSource,omitempty"`
	LocationSource     Provenance  `json:"locationSource,omitempty"`
}

// MarshalJSON encodes the record together with its derived status.
func (p ProjectRecord) MarshalJSON() ([]byte, error) {
	return json.Marshal(projectJSON{
		ID:                 p.ID,
		Name:               p.Name,
		Location:           p.Location,
		Coordinates:        p.Coordinates,
		ComplianceScore:    p.ComplianceScore,
		Status:             p.Status(),
		CriticalIssueCount: p.CriticalIssueCount,
		LastAnalyzedAt:     p.LastAnalyzedAt,
		CoordinatesSource:  p.CoordinatesSource,
		LocationSource:     p.LocationSource,
	})
}

// UnmarshalJSON decodes a record previously produced by MarshalJSON. Any
// status present in the input is discarded.
func (p *ProjectRecord) UnmarshalJSON(data []byte) error {
	var w projectJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*p = ProjectRecord{
		ID:                 w.ID,
		Name:               w.Name,
		Location:           w.Location,
		Coordinates:        w.Coordinates,
		ComplianceScore:    w.ComplianceScore,
		CriticalIssueCount: w.CriticalIssueCount,
		LastAnalyzedAt:     w.LastAnalyzedAt,
		CoordinatesSource:  w.CoordinatesSource,
		LocationSource:     w.LocationSource,
	}
	return nil
}

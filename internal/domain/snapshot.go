package domain

import (
	"slices"
	"time"
)

// Origin identifies which path produced a record set.
type Origin string

const (
	OriginRemote   Origin = "remote"
	OriginFallback Origin = "fallback"
)

// LoadResult is the outcome of one load. It always carries a usable record
// set; Degraded marks the fallback path so callers can surface it.
type LoadResult struct {
	Records  []ProjectRecord
	Origin   Origin
	Degraded bool
	Reason   string
	Warnings []string
}

// Snapshot is a committed record set together with its load metadata.
type Snapshot struct {
	LoadID   string          `json:"loadId"`
	Records  []ProjectRecord `json:"records"`
	Origin   Origin          `json:"origin"`
	Degraded bool            `json:"degraded"`
	Reason   string          `json:"reason,omitempty"`
	Warnings []string        `json:"warnings,omitempty"`
	LoadedAt time.Time       `json:"loadedAt"`
}

// NewSnapshot stamps a load result with its id and the current time.
func NewSnapshot(loadID string, res LoadResult) Snapshot {
	return Snapshot{
		LoadID:   loadID,
		Records:  res.Records,
		Origin:   res.Origin,
		Degraded: res.Degraded,
		Reason:   res.Reason,
		Warnings: res.Warnings,
		LoadedAt: clock.Now().UTC(),
	}
}

// Clone returns a deep copy so callers cannot reach the owner's records.
func (s Snapshot) Clone() Snapshot {
	out := s
	if s.Records != nil {
		out.Records = make([]ProjectRecord, len(s.Records))
		for i, r := range s.Records {
			out.Records[i] = r.clone()
		}
	}
	out.Warnings = slices.Clone(s.Warnings)
	return out
}

// Summary aggregates the snapshot's records.
func (s Snapshot) Summary() Summary {
	return Aggregate(s.Records)
}

// IsZero reports whether nothing has been committed yet.
func (s Snapshot) IsZero() bool {
	return s.LoadID == ""
}

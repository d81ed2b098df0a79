package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// RawProject is a partial project record as sent by the remote source.
// Pointer fields distinguish "absent" from zero.
type RawProject struct {
	ID                 string
	Name               string
	Location           string
	Lat                *float64
	Lng                *float64
	ComplianceScore    *float64
	CriticalIssueCount *float64
	LastAnalyzedAt     string
}

type rawProjectJSON struct {
	ID       json.RawMessage `json:"id"`
	Name     string          `json:"name"`
	Location string          `json:"location"`

	Coordinates json.RawMessage `json:"coordinates"`
	Lat         *float64        `json:"lat"`
	Lng         *float64        `json:"lng"`
	Lon         *float64        `json:"lon"`

	ComplianceScore      *float64 `json:"complianceScore"`
	Compliance           *float64 `json:"compliance"`
	ComplianceScoreSnake *float64 `json:"compliance_score"`

	CriticalIssueCount      *float64 `json:"criticalIssueCount"`
	CriticalIssues          *float64 `json:"criticalIssues"`
	CriticalIssueCountSnake *float64 `json:"critical_issue_count"`

	LastAnalyzedAt      string `json:"lastAnalyzedAt"`
	LastAnalyzedAtSnake string `json:"last_analyzed_at"`
}

type rawCoordinatesJSON struct {
	Lat       *float64 `json:"lat"`
	Lng       *float64 `json:"lng"`
	Lon       *float64 `json:"lon"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// UnmarshalJSON accepts the field aliases documented in the package comment.
func (r *RawProject) UnmarshalJSON(data []byte) error {
	var w rawProjectJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	id, err := parseRawID(w.ID)
	if err != nil {
		return err
	}

	lat, lng, err := parseRawCoordinates(w.Coordinates)
	if err != nil {
		return err
	}
	if lat == nil && lng == nil {
		lat, lng = w.Lat, firstFloat(w.Lng, w.Lon)
	}

	*r = RawProject{
		ID:                 id,
		Name:               strings.TrimSpace(w.Name),
		Location:           strings.TrimSpace(w.Location),
		Lat:                lat,
		Lng:                lng,
		ComplianceScore:    firstFloat(w.ComplianceScore, w.Compliance, w.ComplianceScoreSnake),
		CriticalIssueCount: firstFloat(w.CriticalIssueCount, w.CriticalIssues, w.CriticalIssueCountSnake),
		LastAnalyzedAt:     firstString(w.LastAnalyzedAt, w.LastAnalyzedAtSnake),
	}
	return nil
}

// ErrNotArray is returned when the upstream body is valid JSON but not an array.
var ErrNotArray = errors.New("expected a JSON array")

// ParseRawProjects decodes a JSON array of upstream project objects. Any
// other top-level value, including null, is an error.
func ParseRawProjects(data []byte) ([]RawProject, error) {
	if trimmed := bytes.TrimSpace(data); len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, fmt.Errorf("parse projects: %w", ErrNotArray)
	}
	var raws []RawProject
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, fmt.Errorf("parse projects: %w", err)
	}
	return raws, nil
}

// parseRawID accepts a JSON string or number.
func parseRawID(msg json.RawMessage) (string, error) {
	msg = bytes.TrimSpace(msg)
	if len(msg) == 0 || bytes.Equal(msg, []byte("null")) {
		return "", nil
	}
	if msg[0] == '"' {
		var s string
		if err := json.Unmarshal(msg, &s); err != nil {
			return "", fmt.Errorf("parse id: %w", err)
		}
		return strings.TrimSpace(s), nil
	}
	var n json.Number
	if err := json.Unmarshal(msg, &n); err != nil {
		return "", fmt.Errorf("parse id: %w", err)
	}
	return n.String(), nil
}

// parseRawCoordinates accepts an object with lat/lng (or latitude/longitude)
// keys or a two-element [lat, lng] array.
func parseRawCoordinates(msg json.RawMessage) (lat, lng *float64, err error) {
	msg = bytes.TrimSpace(msg)
	if len(msg) == 0 || bytes.Equal(msg, []byte("null")) {
		return nil, nil, nil
	}
	if msg[0] == '[' {
		var pair []float64
		if err := json.Unmarshal(msg, &pair); err != nil {
			return nil, nil, fmt.Errorf("parse coordinates: %w", err)
		}
		if len(pair) != 2 {
			return nil, nil, nil
		}
		return &pair[0], &pair[1], nil
	}
	var c rawCoordinatesJSON
	if err := json.Unmarshal(msg, &c); err != nil {
		return nil, nil, fmt.Errorf("parse coordinates: %w", err)
	}
	return firstFloat(c.Lat, c.Latitude), firstFloat(c.Lng, c.Lon, c.Longitude), nil
}

func firstFloat(vals ...*float64) *float64 {
	for _, v := range vals {
		if v != nil {
			return v
		}
	}
	return nil
}

func firstString(vals ...string) string {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

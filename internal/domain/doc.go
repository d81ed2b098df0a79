// Package domain models construction-project compliance records and the pure
// rules applied to them: classification, normalization of upstream payloads,
// placeholder synthesis and aggregation.
//
// # Data Source
//
// Project records come from a REST endpoint (GET <base>/projects) returning a
// JSON array. Field names vary between upstream versions, so [RawProject]
// accepts a few aliases:
//
//	id                  string or number
//	name                display label, required
//	complianceScore     also "compliance", "compliance_score"; required
//	criticalIssueCount  also "criticalIssues", "critical_issue_count"
//	coordinates         {"lat","lng"} / {"latitude","longitude"} / [lat, lng],
//	                    or top-level "lat" + "lng" (or "lon")
//	location            free-text place name
//	lastAnalyzedAt      also "last_analyzed_at", RFC 3339
//
// # Tiers
//
// A record's tier is never stored. [ProjectRecord.Status] derives it from the
// compliance score on every call through [Classify]:
//
//	score >= 80        compliant  (green)
//	50 <= score < 80   attention  (yellow)
//	score < 50         critical   (red)
//
// # Normalization
//
// Scores outside [0,100] are clamped and a warning is recorded. Coordinates
// outside WGS-84 bounds are dropped and treated as missing. Records lacking a
// name or a score are skipped. Records lacking an id get a deterministic one
// derived from name and position (see [generateID]).
//
// # Provenance
//
// Coordinates and location labels each carry a [Provenance]:
//
//	upstream   sent by the remote source
//	fallback   part of the hard-coded fallback dataset (real coordinates)
//	geocoded   resolved through a [Geocoder]
//	synthetic  placeholder from [Synthesizer], not a real position
//
// Synthetic points are drawn uniformly from [SynthesisRegion], a box around
// central and northern Portugal. Synthetic labels cycle through
// [SyntheticCities] by record index mod 4.
package domain

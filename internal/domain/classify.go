package domain

// Tier is the discrete compliance classification of a project.
type Tier string

const (
	TierCompliant Tier = "compliant"
	TierAttention Tier = "attention"
	TierCritical  Tier = "critical"
)

// Classification thresholds. Callers needing other cut-offs wrap Classify.
const (
	CompliantThreshold = 80
	AttentionThreshold = 50
)

// Tiers lists every tier in display order.
var Tiers = []Tier{TierCompliant, TierAttention, TierCritical}

// Classify maps a compliance score to its tier:
//   - score >= 80: compliant
//   - 50 <= score < 80: attention
//   - score < 50: critical
//
// Range validation happens at ingestion; Classify itself is total over int.
func Classify(score int) Tier {
	switch {
	case score >= CompliantThreshold:
		return TierCompliant
	case score >= AttentionThreshold:
		return TierAttention
	default:
		return TierCritical
	}
}

// Label returns the display label for the tier.
func (t Tier) Label() string {
	switch t {
	case TierCompliant:
		return "Compliant"
	case TierAttention:
		return "Attention"
	case TierCritical:
		return "Critical"
	default:
		return string(t)
	}
}

// Color returns the colour hint used by map markers and chart slices.
func (t Tier) Color() string {
	switch t {
	case TierCompliant:
		return "green"
	case TierAttention:
		return "yellow"
	case TierCritical:
		return "red"
	default:
		return "gray"
	}
}

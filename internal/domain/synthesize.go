package domain

import (
	"math"
	"math/rand/v2"
)

// BoundingBox is an inclusive latitude/longitude rectangle.
type BoundingBox struct {
	MinLat, MaxLat float64
	MinLng, MaxLng float64
}

// Contains reports whether c lies inside the box, edges included.
func (b BoundingBox) Contains(c Coordinates) bool {
	return c.Lat >= b.MinLat && c.Lat <= b.MaxLat && c.Lng >= b.MinLng && c.Lng <= b.MaxLng
}

// SynthesisRegion bounds placeholder coordinates.
var SynthesisRegion = BoundingBox{MinLat: 38.7, MaxLat: 41.7, MinLng: -9.4, MaxLng: -5.4}

// SyntheticCities are the placeholder location labels, assigned by record
// index mod len(SyntheticCities).
var SyntheticCities = [4]string{"Lisboa", "Porto", "Coimbra", "Leiria"}

// Synthesizer fills missing geographic fields with placeholders. Output is a
// pure function of the seed and the call sequence.
//
// A Synthesizer is not safe for concurrent use.
type Synthesizer struct {
	rng *rand.Rand
}

// NewSynthesizer returns a Synthesizer seeded with seed.
func NewSynthesizer(seed uint64) *Synthesizer {
	return &Synthesizer{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Point draws a coordinate pair from SynthesisRegion.
func (s *Synthesizer) Point() Coordinates {
	r := SynthesisRegion
	lat := r.MinLat + s.rng.Float64()*(r.MaxLat-r.MinLat)
	lng := r.MinLng + s.rng.Float64()*(r.MaxLng-r.MinLng)
	return Coordinates{Lat: round6(lat), Lng: round6(lng)}
}

// LocationLabel returns the placeholder city for a record index.
func LocationLabel(index int) string {
	n := len(SyntheticCities)
	return SyntheticCities[((index%n)+n)%n]
}

// Synthesized names the fields Fill assigned.
type Synthesized struct {
	Coordinates bool
	Location    bool
}

// Any reports whether at least one field was synthesized.
func (s Synthesized) Any() bool { return s.Coordinates || s.Location }

// Fill assigns placeholder coordinates and/or location to rec where they are
// still missing. index is the record's position in the upstream array.
func (s *Synthesizer) Fill(index int, rec ProjectRecord) (ProjectRecord, Synthesized) {
	var done Synthesized
	if !rec.HasCoordinates() {
		rec.Coordinates = s.Point()
		rec.CoordinatesSource = ProvenanceSynthetic
		done.Coordinates = true
	}
	if rec.Location == "" {
		rec.Location = LocationLabel(index)
		rec.LocationSource = ProvenanceSynthetic
		done.Location = true
	}
	return rec, done
}

// round6 trims to six decimals (~0.1 m), enough for a map marker.
func round6(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}

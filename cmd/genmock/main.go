// Command genmock generates an upstream-shaped projects fixture and the
// snapshot the loader produces from it. It runs the real loader with a fixed
// seed and clock so the expected output matches pipeline behavior exactly.
//
// Usage:
//
//	go run ./cmd/genmock \
//	  -n 24 -seed 42 \
//	  -upstream-out data/mock/projects.json \
//	  -snapshot-out data/mock/projects_snapshot.json
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"
	"time"

	"github.com/couchcryptid/compliance-dashboard/internal/domain"
	"github.com/couchcryptid/compliance-dashboard/internal/observability"
	"github.com/couchcryptid/compliance-dashboard/internal/pipeline"
	"github.com/jonboulle/clockwork"
)

var analyzedBase = time.Date(2025, time.November, 17, 9, 0, 0, 0, time.UTC)

var (
	buildingTypes = []string{"Hospital", "Escola", "Habitação", "Edifício", "Centro de Saúde", "Pavilhão", "Armazém", "Biblioteca"}
	places        = []struct {
		name     string
		lat, lng float64
	}{
		{"Lisboa", 38.7223, -9.1393},
		{"Porto", 41.1579, -8.6291},
		{"Coimbra", 40.2033, -8.4103},
		{"Leiria", 39.7436, -8.807},
		{"Braga", 41.5454, -8.4265},
		{"Aveiro", 40.6405, -8.6538},
		{"Viseu", 40.6566, -7.9125},
		{"Santarém", 39.2362, -8.6859},
	}
)

// staticSource serves pre-parsed raw projects to the loader.
type staticSource []domain.RawProject

func (s staticSource) FetchProjects(_ context.Context) ([]domain.RawProject, error) {
	return s, nil
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	n := flag.Int("n", 24, "number of projects to generate")
	seed := flag.Uint64("seed", 42, "seed for fixture generation and placeholder synthesis")
	upstreamOut := flag.String("upstream-out", "", "output path for the upstream projects fixture")
	snapshotOut := flag.String("snapshot-out", "", "output path for the expected snapshot")
	flag.Parse()

	if *upstreamOut == "" || *snapshotOut == "" || *n <= 0 {
		flag.Usage()
		return fmt.Errorf("missing required flags: -upstream-out, -snapshot-out")
	}

	// Set a fixed clock for reproducible LoadedAt timestamps.
	domain.SetClock(clockwork.NewFakeClockAt(
		time.Date(2025, time.November, 24, 8, 0, 0, 0, time.UTC),
	))
	defer domain.SetClock(nil)

	fixture := generate(*n, *seed)
	payload, err := json.MarshalIndent(fixture, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal fixture: %w", err)
	}

	raws, err := domain.ParseRawProjects(payload)
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	loader := pipeline.NewLoader(staticSource(raws), nil, domain.NewSynthesizer(*seed), logger, observability.NewMetricsForTesting())
	snap := domain.NewSnapshot(fmt.Sprintf("genmock-%d", *seed), loader.Load(context.Background()))

	if err := writeFile(*upstreamOut, append(payload, '\n')); err != nil {
		return fmt.Errorf("writing upstream fixture: %w", err)
	}
	log.Printf("wrote upstream fixture: %s (%d projects)", *upstreamOut, len(fixture))

	if err := writeJSON(*snapshotOut, snap); err != nil {
		return fmt.Errorf("writing snapshot fixture: %w", err)
	}
	log.Printf("wrote snapshot fixture: %s", *snapshotOut)

	printStats(snap)
	return nil
}

// generate builds n upstream records cycling through every field shape the
// loader accepts: coordinate objects, arrays and top-level pairs, aliased
// score keys, numeric ids, and records with missing or out-of-range fields.
func generate(n int, seed uint64) []map[string]any {
	rng := rand.New(rand.NewPCG(seed, seed+1))
	out := make([]map[string]any, 0, n)

	for i := range n {
		p := places[i%len(places)]
		rec := map[string]any{
			"name": fmt.Sprintf("%s %s", buildingTypes[rng.IntN(len(buildingTypes))], p.name),
		}

		switch i % 3 {
		case 0:
			rec["id"] = fmt.Sprintf("prj-%03d", i+1)
		case 1:
			rec["id"] = i + 1
		}

		lat := p.lat + (rng.Float64()-0.5)*0.05
		lng := p.lng + (rng.Float64()-0.5)*0.05
		switch i % 6 {
		case 0:
			rec["coordinates"] = map[string]float64{"lat": lat, "lng": lng}
			rec["location"] = p.name
		case 1:
			rec["coordinates"] = []float64{lat, lng}
		case 2:
			rec["lat"], rec["lon"] = lat, lng
			rec["location"] = p.name
		case 3:
			rec["location"] = p.name
		case 4:
			// No geography at all: both fields are synthesized.
		case 5:
			rec["coordinates"] = map[string]float64{"lat": 120, "lng": lng}
			rec["location"] = p.name
		}

		score := rng.IntN(101)
		switch i % 8 {
		case 1:
			rec["compliance"] = score
		case 2:
			rec["compliance_score"] = float64(score) + 0.4
		case 7:
			rec["complianceScore"] = 100 + rng.IntN(20)
		default:
			rec["complianceScore"] = score
		}

		if score < 50 || i%5 == 0 {
			rec["criticalIssueCount"] = rng.IntN(15)
		}
		if i%4 != 3 {
			rec["lastAnalyzedAt"] = analyzedBase.Add(-time.Duration(rng.IntN(240)) * time.Hour).Format(time.RFC3339)
		}

		out = append(out, rec)
	}
	return out
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return writeFile(path, append(data, '\n'))
}

func printStats(snap domain.Snapshot) {
	summary := snap.Summary()

	var synthCoords, synthLocations int
	for _, r := range snap.Records {
		if r.CoordinatesSource == domain.ProvenanceSynthetic {
			synthCoords++
		}
		if r.LocationSource == domain.ProvenanceSynthetic {
			synthLocations++
		}
	}

	fmt.Println("\n=== Stats for updating test assertions ===")
	fmt.Printf("Records: %d\n", len(snap.Records))
	fmt.Printf("Warnings: %d\n", len(snap.Warnings))
	fmt.Printf("Global compliance: %d%%\n", summary.GlobalCompliance)
	fmt.Printf("By tier: compliant=%d, attention=%d, critical=%d\n",
		summary.TierCounts[domain.TierCompliant],
		summary.TierCounts[domain.TierAttention],
		summary.TierCounts[domain.TierCritical])
	fmt.Printf("Critical alerts: %d\n", len(summary.CriticalAlerts))
	fmt.Printf("Synthesized: coordinates=%d, locations=%d\n", synthCoords, synthLocations)
}

// Command validate checks a snapshot JSON file (genmock output, a Kafka
// message value, or GET /api/v1/dashboard's source snapshot) against the
// record model invariants. With -upstream it also reconciles every snapshot
// record with the upstream fixture it was loaded from.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -snapshot data/mock/projects_snapshot.json \
//	  -upstream data/mock/projects.json
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/couchcryptid/compliance-dashboard/internal/domain"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	snapshotPath := flag.String("snapshot", "", "path to snapshot JSON")
	upstreamPath := flag.String("upstream", "", "optional path to the upstream projects fixture")
	flag.Parse()

	if *snapshotPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*snapshotPath, *upstreamPath); code != 0 {
		os.Exit(code)
	}
}

func run(snapshotPath, upstreamPath string) int {
	fmt.Println("=== Compliance Snapshot Validation ===")
	fmt.Println()

	data, err := os.ReadFile(snapshotPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: read snapshot: %v\n", err)
		return 1
	}
	snap, statuses, err := decodeSnapshot(data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: decode snapshot: %v\n", err)
		return 1
	}

	phases := []*phase{
		validateMetadata(snap),
		validateRecords(snap.Records, statuses),
		validateViews(snap),
	}

	if upstreamPath != "" {
		raw, err := os.ReadFile(upstreamPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "FATAL: read upstream fixture: %v\n", err)
			return 1
		}
		raws, err := domain.ParseRawProjects(raw)
		if err != nil {
			fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
			return 1
		}
		phases = append(phases, validateUpstream(snap, raws))
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Records: %d (origin=%s, degraded=%t, warnings=%d)\n",
		len(snap.Records), snap.Origin, snap.Degraded, len(snap.Warnings))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// decodeSnapshot parses a snapshot and, separately, the status each record
// was serialized with. It accepts either a bare snapshot or a Kafka message
// value wrapping one under "snapshot".
func decodeSnapshot(data []byte) (domain.Snapshot, []domain.Tier, error) {
	var envelope struct {
		Snapshot json.RawMessage `json:"snapshot"`
	}
	if err := json.Unmarshal(data, &envelope); err == nil && len(envelope.Snapshot) > 0 {
		data = envelope.Snapshot
	}

	var snap domain.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return domain.Snapshot{}, nil, err
	}

	var wire struct {
		Records []struct {
			Status domain.Tier `json:"status"`
		} `json:"records"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return domain.Snapshot{}, nil, err
	}
	statuses := make([]domain.Tier, len(wire.Records))
	for i, r := range wire.Records {
		statuses[i] = r.Status
	}
	return snap, statuses, nil
}

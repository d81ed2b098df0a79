package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/compliance-dashboard/internal/domain"
	"github.com/couchcryptid/compliance-dashboard/internal/observability"
)

// Source fetches raw project records from the remote system.
type Source interface {
	FetchProjects(ctx context.Context) ([]domain.RawProject, error)
}

// Loader turns one fetch from the source into a usable record set. It never
// fails: any source error yields the fallback dataset tagged as degraded.
type Loader struct {
	source   Source
	geocoder domain.Geocoder
	logger   *slog.Logger
	metrics  *observability.Metrics

	synthMu sync.Mutex
	synth   *domain.Synthesizer

	inFlight atomic.Int32
}

// NewLoader creates a Loader. Pass a nil geocoder to go straight from
// missing fields to placeholder synthesis.
func NewLoader(source Source, geocoder domain.Geocoder, synth *domain.Synthesizer, logger *slog.Logger, metrics *observability.Metrics) *Loader {
	return &Loader{
		source:   source,
		geocoder: geocoder,
		synth:    synth,
		logger:   logger,
		metrics:  metrics,
	}
}

// Loading reports whether a fetch is outstanding.
func (l *Loader) Loading() bool {
	return l.inFlight.Load() > 0
}

// Load performs a single fetch and normalizes the result.
func (l *Loader) Load(ctx context.Context) domain.LoadResult {
	l.inFlight.Add(1)
	l.metrics.LoadsInFlight.Inc()
	defer func() {
		l.inFlight.Add(-1)
		l.metrics.LoadsInFlight.Dec()
	}()

	start := time.Now()
	defer func() { l.metrics.LoadDuration.Observe(time.Since(start).Seconds()) }()

	raws, err := l.source.FetchProjects(ctx)
	if err != nil {
		l.logger.Warn("project source unavailable, serving fallback dataset", "error", err)
		l.metrics.Loads.WithLabelValues(string(domain.OriginFallback)).Inc()
		return domain.LoadResult{
			Records:  domain.FallbackProjects(),
			Origin:   domain.OriginFallback,
			Degraded: true,
			Reason:   err.Error(),
		}
	}

	res := l.normalize(ctx, raws)
	l.metrics.Loads.WithLabelValues(string(domain.OriginRemote)).Inc()
	return res
}

// normalize validates each raw record, fills gaps via the geocoder and then
// the synthesizer, and drops records that cannot be repaired.
func (l *Loader) normalize(ctx context.Context, raws []domain.RawProject) domain.LoadResult {
	res := domain.LoadResult{
		Records: make([]domain.ProjectRecord, 0, len(raws)),
		Origin:  domain.OriginRemote,
	}
	seen := make(map[string]struct{}, len(raws))

	for i, raw := range raws {
		rec, warnings, err := domain.NormalizeRaw(i, raw)
		l.warn(&res, warnings...)
		if err != nil {
			l.skip(&res, err.Error())
			continue
		}
		if _, dup := seen[rec.ID]; dup {
			l.skip(&res, fmt.Sprintf("record %d: duplicate id %s", i, rec.ID))
			continue
		}
		seen[rec.ID] = struct{}{}

		rec = domain.EnrichWithGeocoding(ctx, rec, l.geocoder, l.logger)
		rec = l.fill(i, rec)
		res.Records = append(res.Records, rec)
	}

	return res
}

func (l *Loader) fill(index int, rec domain.ProjectRecord) domain.ProjectRecord {
	l.synthMu.Lock()
	rec, done := l.synth.Fill(index, rec)
	l.synthMu.Unlock()

	if done.Coordinates {
		l.metrics.SynthesizedFields.WithLabelValues("coordinates").Inc()
	}
	if done.Location {
		l.metrics.SynthesizedFields.WithLabelValues("location").Inc()
	}
	if done.Any() {
		l.logger.Debug("placeholder geography assigned",
			"project_id", rec.ID,
			"coordinates", done.Coordinates,
			"location", done.Location,
		)
	}
	return rec
}

func (l *Loader) skip(res *domain.LoadResult, reason string) {
	l.logger.Warn("project record skipped", "reason", reason)
	l.metrics.RecordsSkipped.Inc()
	res.Warnings = append(res.Warnings, "skipped "+reason)
}

func (l *Loader) warn(res *domain.LoadResult, warnings ...string) {
	for _, w := range warnings {
		l.logger.Warn("project record corrected", "warning", w)
		l.metrics.NormalizationWarnings.Inc()
		res.Warnings = append(res.Warnings, w)
	}
}

package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/couchcryptid/compliance-dashboard/internal/domain"
	"github.com/couchcryptid/compliance-dashboard/internal/observability"
	"github.com/google/uuid"
)

// RecordLoader produces a record set. *Loader implements it.
type RecordLoader interface {
	Load(ctx context.Context) domain.LoadResult
	Loading() bool
}

// Sink receives every committed snapshot.
type Sink interface {
	Publish(ctx context.Context, snap domain.Snapshot) error
}

// Session owns the current record set. Session.Load is the only writer;
// readers get deep copies through Snapshot.
//
// Each Load takes a monotonically increasing token. A result is committed
// only if no load with a higher token has been committed before it, so a
// slow, superseded load cannot overwrite a newer record set. A load whose
// context was cancelled by its caller is never committed.
type Session struct {
	loader  RecordLoader
	sinks   []Sink
	logger  *slog.Logger
	metrics *observability.Metrics

	issued atomic.Uint64

	// commitMu serializes commit, metric updates and publishing so sinks
	// and gauges observe snapshots in commit order.
	commitMu sync.Mutex

	mu        sync.RWMutex
	current   domain.Snapshot
	committed uint64
}

// NewSession creates an empty session. Nothing is loaded until Load is called.
func NewSession(loader RecordLoader, logger *slog.Logger, metrics *observability.Metrics, sinks ...Sink) *Session {
	return &Session{
		loader:  loader,
		sinks:   sinks,
		logger:  logger,
		metrics: metrics,
	}
}

// Load runs the loader and commits its result unless a newer load already
// committed or ctx was cancelled. A deadline that expires still commits the
// fallback the loader produced. It returns the snapshot current after the call and whether this
// load's result was the one committed.
func (s *Session) Load(ctx context.Context) (domain.Snapshot, bool) {
	token := s.issued.Add(1)
	loadID := uuid.NewString()
	logger := s.logger.With("load_id", loadID, "token", token)
	logger.Info("load started")

	res := s.loader.Load(ctx)
	snap := domain.NewSnapshot(loadID, res)

	if errors.Is(ctx.Err(), context.Canceled) {
		logger.Info("cancelled load discarded", "origin", snap.Origin)
		return s.Snapshot(), false
	}

	s.commitMu.Lock()
	defer s.commitMu.Unlock()

	s.mu.Lock()
	if token <= s.committed {
		current := s.current.Clone()
		s.mu.Unlock()
		s.metrics.StaleLoadsDiscarded.Inc()
		logger.Info("stale load discarded", "committed_load_id", current.LoadID)
		return current, false
	}
	s.current = snap
	s.committed = token
	s.mu.Unlock()

	s.observe(snap)
	logger.Info("load committed",
		"origin", snap.Origin,
		"degraded", snap.Degraded,
		"records", len(snap.Records),
		"warnings", len(snap.Warnings),
	)
	s.publish(ctx, logger, snap)

	return snap.Clone(), true
}

// Snapshot returns a copy of the current record set. The zero Snapshot means
// nothing has been committed yet.
func (s *Session) Snapshot() domain.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Clone()
}

// Loading reports whether a load is in flight.
func (s *Session) Loading() bool {
	return s.loader.Loading()
}

// CheckReadiness returns nil once a snapshot has been committed.
func (s *Session) CheckReadiness(_ context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current.IsZero() {
		return errors.New("no project snapshot loaded yet")
	}
	return nil
}

func (s *Session) observe(snap domain.Snapshot) {
	summary := snap.Summary()
	s.metrics.RecordsLoaded.Set(float64(len(snap.Records)))
	s.metrics.GlobalCompliance.Set(float64(summary.GlobalCompliance))
	for tier, n := range summary.TierCounts {
		s.metrics.TierProjects.WithLabelValues(string(tier)).Set(float64(n))
	}
	if snap.Degraded {
		s.metrics.Degraded.Set(1)
	} else {
		s.metrics.Degraded.Set(0)
	}
}

// publish hands the snapshot to every sink. Sink failures are logged and
// never affect the committed state.
func (s *Session) publish(ctx context.Context, logger *slog.Logger, snap domain.Snapshot) {
	for _, sink := range s.sinks {
		if err := sink.Publish(ctx, snap.Clone()); err != nil {
			s.metrics.SnapshotsPublished.WithLabelValues("error").Inc()
			logger.Error("snapshot publish failed", "error", err)
			continue
		}
		s.metrics.SnapshotsPublished.WithLabelValues("success").Inc()
	}
}

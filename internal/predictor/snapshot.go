package predictor

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"coinsage/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

// SnapshotStore reads the last-known-good prediction dataset persisted by
// the model training pipeline. The file is owned by that pipeline; this
// service only ever reads it. The most recent successful parse is kept in
// memory so fallbacks still work if the file later disappears.
type SnapshotStore struct {
	path   string
	tracer trace.Tracer

	mu     sync.RWMutex
	cached *domain.Snapshot
}

func NewSnapshotStore(tracer trace.Tracer, path string) *SnapshotStore {
	return &SnapshotStore{path: path, tracer: tracer}
}

// Reload reads and parses the snapshot file, replacing the cached copy.
// A failed reload leaves the previous cached copy in place.
func (s *SnapshotStore) Reload(ctx context.Context) error {
	_, span := s.tracer.Start(ctx, "snapshot.reload")
	defer span.End()

	raw, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("read snapshot %s: %w", s.path, err)
	}

	var snap domain.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return &domain.ParseError{Stage: "snapshot", Detail: err.Error()}
	}
	if len(snap.TestDates) == 0 || len(snap.PredictedPrices) == 0 {
		return &domain.ParseError{Stage: "snapshot", Detail: "snapshot has no prediction rows"}
	}

	s.mu.Lock()
	s.cached = &snap
	s.mu.Unlock()
	return nil
}

// Get returns the cached snapshot, loading from disk on first use.
func (s *SnapshotStore) Get(ctx context.Context) (*domain.Snapshot, error) {
	s.mu.RLock()
	cached := s.cached
	s.mu.RUnlock()
	if cached != nil {
		return cached, nil
	}
	if err := s.Reload(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	cached = s.cached
	s.mu.RUnlock()
	return cached, nil
}

package job

import (
	"context"
	"log"
	"time"

	"go.opentelemetry.io/otel/trace"
)

// SnapshotReloader is implemented by the prediction snapshot store.
type SnapshotReloader interface {
	Reload(ctx context.Context) error
}

// SnapshotWatcher periodically reloads the persisted prediction run so the
// fallback data stays current after the training pipeline rewrites the file.
type SnapshotWatcher struct {
	tracer    trace.Tracer
	snapshots SnapshotReloader
	interval  time.Duration
}

func NewSnapshotWatcher(tracer trace.Tracer, snapshots SnapshotReloader, intervalSecs int) *SnapshotWatcher {
	if intervalSecs <= 0 {
		intervalSecs = 300
	}
	return &SnapshotWatcher{
		tracer:    tracer,
		snapshots: snapshots,
		interval:  time.Duration(intervalSecs) * time.Second,
	}
}

// Start reloads once immediately, then on every tick. Blocks until ctx is
// cancelled.
func (w *SnapshotWatcher) Start(ctx context.Context) {
	log.Println("Snapshot watcher starting...")

	if err := w.reload(ctx); err != nil {
		log.Printf("snapshot watcher initial load error: %v", err)
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Snapshot watcher stopped")
			return
		case <-ticker.C:
			if err := w.reload(ctx); err != nil {
				log.Printf("snapshot watcher reload error: %v", err)
			}
		}
	}
}

func (w *SnapshotWatcher) reload(ctx context.Context) error {
	ctx, span := w.tracer.Start(ctx, "job.snapshot-reload")
	defer span.End()
	return w.snapshots.Reload(ctx)
}

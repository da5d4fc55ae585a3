package job

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"coinsage/internal/predictor"

	"go.opentelemetry.io/otel/trace"
)

// The production watcher is wired with the snapshot store, not the stub.
var _ SnapshotReloader = (*predictor.SnapshotStore)(nil)

type stubReloader struct {
	calls atomic.Int64
	err   error
}

func (s *stubReloader) Reload(ctx context.Context) error {
	s.calls.Add(1)
	return s.err
}

func TestNewSnapshotWatcherDefaultInterval(t *testing.T) {
	tracer := trace.NewNoopTracerProvider().Tracer("test")
	w := NewSnapshotWatcher(tracer, &stubReloader{}, 0)
	if w.interval != 300*time.Second {
		t.Fatalf("expected 300s default interval, got %v", w.interval)
	}
}

func TestSnapshotWatcherReloadsOnStartAndTick(t *testing.T) {
	t.Parallel()

	tracer := trace.NewNoopTracerProvider().Tracer("test")
	stub := &stubReloader{}
	w := NewSnapshotWatcher(tracer, stub, 1)
	w.interval = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()

	eventually(t, func() bool { return stub.calls.Load() >= 2 })
	cancel()
	<-done
}

func TestSnapshotWatcherKeepsRunningAfterErrors(t *testing.T) {
	t.Parallel()

	tracer := trace.NewNoopTracerProvider().Tracer("test")
	stub := &stubReloader{err: errors.New("file missing")}
	w := NewSnapshotWatcher(tracer, stub, 1)
	w.interval = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()

	eventually(t, func() bool { return stub.calls.Load() >= 3 })
	cancel()
	<-done
}

func eventually(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(500 * time.Millisecond)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met")
}

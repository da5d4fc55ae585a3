package predictor

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"coinsage/internal/domain"
	"coinsage/internal/retry"

	"go.opentelemetry.io/otel/trace"
)

func testTracer() trace.Tracer {
	return trace.NewNoopTracerProvider().Tracer("predictor-test")
}

func writeSnapshotFile(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "prediction_results.json")
	data := `{
		"test_dates": ["2026-09-02","2026-09-03","2026-09-04","2026-09-05","2026-09-06",
			"2026-09-07","2026-09-08","2026-09-09","2026-09-10","2026-09-11",
			"2026-09-12","2026-09-13","2026-09-14","2026-09-15"],
		"predicted_prices": [59000,59100,59200,59300,59400,59500,59600,59700,59800,59900,60000,60100,60200,60300],
		"actual_prices": [58000,58100]
	}`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write snapshot: %v", err)
	}
	return path
}

type stubRunner struct {
	result *domain.PredictionResult
	err    error
	calls  int
}

func (s *stubRunner) Run(ctx context.Context, req domain.PredictionRequest) (*domain.PredictionResult, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func newTestInvoker(runner ModelRunner, snapshotPath string) *Invoker {
	tracer := testTracer()
	inv := NewInvoker(tracer, runner, NewSnapshotStore(tracer, snapshotPath), retry.NewGateway(tracer))
	inv.policy = retry.Policy{MaxAttempts: 3, BaseDelay: time.Millisecond}
	return inv
}

func TestPredictUsesModelResult(t *testing.T) {
	runner := &stubRunner{result: &domain.PredictionResult{
		Dates:        []string{"2026-09-02", "2026-09-03"},
		Prices:       []float64{59000, 59500},
		CurrentPrice: 58000,
		Source:       domain.SourceModel,
	}}
	inv := newTestInvoker(runner, "/nonexistent")

	got, err := inv.Predict(context.Background(), domain.PredictionRequest{Days: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Source != domain.SourceModel {
		t.Fatalf("expected model source, got %s", got.Source)
	}
	if runner.calls != 1 {
		t.Fatalf("expected single model call, got %d", runner.calls)
	}
}

func TestPredictFallsBackToSnapshotOnModelFailure(t *testing.T) {
	path := writeSnapshotFile(t, t.TempDir())
	runner := &stubRunner{err: errors.New("model exploded")}
	inv := newTestInvoker(runner, path)

	got, err := inv.Predict(context.Background(), domain.PredictionRequest{Days: 14})
	if err != nil {
		t.Fatalf("fallback should not error: %v", err)
	}
	if got.Source != domain.SourceSnapshot {
		t.Fatalf("expected snapshot source, got %s", got.Source)
	}
	if len(got.Dates) != 14 || len(got.Prices) != 14 {
		t.Fatalf("expected 14 snapshot entries, got %d/%d", len(got.Dates), len(got.Prices))
	}
	if got.CurrentPrice != 58000 {
		t.Fatalf("expected anchor 58000, got %v", got.CurrentPrice)
	}
	if runner.calls != 3 {
		t.Fatalf("expected full retry budget against model, got %d calls", runner.calls)
	}
}

func TestPredictInvalidModelOutputTriggersFallback(t *testing.T) {
	path := writeSnapshotFile(t, t.TempDir())
	// Structurally present but invariant-breaking result: length mismatch.
	runner := &stubRunner{result: &domain.PredictionResult{
		Dates:  []string{"2026-09-02"},
		Prices: []float64{1, 2},
	}}
	inv := newTestInvoker(runner, path)

	got, err := inv.Predict(context.Background(), domain.PredictionRequest{Days: 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Source != domain.SourceSnapshot {
		t.Fatalf("invalid model output should fall back to snapshot, got %s", got.Source)
	}
}

func TestPredictModelAndSnapshotBothUnavailable(t *testing.T) {
	runner := &stubRunner{err: errors.New("down")}
	inv := newTestInvoker(runner, filepath.Join(t.TempDir(), "missing.json"))

	_, err := inv.Predict(context.Background(), domain.PredictionRequest{Days: 7})
	var unavailable *domain.ModelUnavailableError
	if !errors.As(err, &unavailable) {
		t.Fatalf("expected ModelUnavailableError, got %v", err)
	}
}

func TestSnapshotStoreReloadKeepsCachedCopyOnFailure(t *testing.T) {
	dir := t.TempDir()
	path := writeSnapshotFile(t, dir)
	store := NewSnapshotStore(testTracer(), path)

	if err := store.Reload(context.Background()); err != nil {
		t.Fatalf("unexpected reload error: %v", err)
	}
	if err := os.Remove(path); err != nil {
		t.Fatalf("remove snapshot: %v", err)
	}

	if err := store.Reload(context.Background()); err == nil {
		t.Fatal("expected error reloading a missing file")
	}
	got, err := store.Get(context.Background())
	if err != nil {
		t.Fatalf("cached snapshot should survive a failed reload: %v", err)
	}
	if len(got.TestDates) != 14 {
		t.Fatalf("expected 14 cached entries, got %d", len(got.TestDates))
	}
}

func TestParseModelOutputAcceptsBothKeySets(t *testing.T) {
	primary := []byte(`{"dates":["2026-09-02","2026-09-03"],"prices":[59000,59500],"current_price":58000}`)
	got, err := parseModelOutput(primary)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.CurrentPrice != 58000 || len(got.Dates) != 2 {
		t.Fatalf("unexpected result: %+v", got)
	}

	alternate := []byte(`{"test_dates":["2026-09-02"],"predicted_prices":[59000],"actual_prices":[58500]}`)
	got, err = parseModelOutput(alternate)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.CurrentPrice != 58500 {
		t.Fatalf("expected anchor from actual_prices, got %v", got.CurrentPrice)
	}
}

func TestParseModelOutputToleratesLogNoise(t *testing.T) {
	noisy := []byte("INFO loading model\n{\"dates\":[\"2026-09-02\"],\"prices\":[59000],\"current_price\":58000}\n")
	got, err := parseModelOutput(noisy)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Prices[0] != 59000 {
		t.Fatalf("unexpected prices: %v", got.Prices)
	}
}

func TestParseModelOutputRejectsGarbage(t *testing.T) {
	if _, err := parseModelOutput([]byte("Traceback (most recent call last)")); err == nil {
		t.Fatal("expected parse error for non-JSON output")
	}
}

func TestCommandRunnerCleansUpParamFile(t *testing.T) {
	runner := NewCommandRunner(testTracer(), []string{"sh", "-c", `cat "$0" >/dev/null; echo '{"dates":["2026-09-02"],"prices":[59000],"current_price":58000}'`}, 10*time.Second)

	before := countTempParamFiles(t)
	_, err := runner.Run(context.Background(), domain.PredictionRequest{Days: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if after := countTempParamFiles(t); after > before {
		t.Fatalf("param files leaked: before=%d after=%d", before, after)
	}
}

func TestCommandRunnerMissingCommandIsConfigurationError(t *testing.T) {
	runner := NewCommandRunner(testTracer(), nil, time.Second)
	_, err := runner.Run(context.Background(), domain.PredictionRequest{Days: 1})

	var cfgErr *domain.ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigurationError, got %v", err)
	}
}

func countTempParamFiles(t *testing.T) int {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(os.TempDir(), "predict-params-*.json"))
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	return len(matches)
}

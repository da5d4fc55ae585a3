package predictor

import (
	"context"
	"log"
	"time"

	"coinsage/internal/domain"
	"coinsage/internal/retry"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Invoker is the prediction stage: it drives the external model through the
// retry gateway and degrades to the persisted snapshot when the model is
// unavailable. It only returns an error when the snapshot is also unusable;
// the caller maps that to a user-facing "prediction unavailable" message.
type Invoker struct {
	runner    ModelRunner
	snapshots *SnapshotStore
	gateway   *retry.Gateway
	policy    retry.Policy
	tracer    trace.Tracer
}

func NewInvoker(tracer trace.Tracer, runner ModelRunner, snapshots *SnapshotStore, gateway *retry.Gateway) *Invoker {
	return &Invoker{
		runner:    runner,
		snapshots: snapshots,
		gateway:   gateway,
		policy:    retry.Policy{MaxAttempts: 3, BaseDelay: time.Second},
		tracer:    tracer,
	}
}

func (inv *Invoker) Predict(ctx context.Context, req domain.PredictionRequest) (*domain.PredictionResult, error) {
	ctx, span := inv.tracer.Start(ctx, "predictor.predict")
	defer span.End()

	req.Days = domain.ClampHorizon(req.Days)
	span.SetAttributes(attribute.Int("days", req.Days))

	result, err := retry.Do(ctx, inv.gateway, "model-invoke", inv.policy,
		func(ctx context.Context) (*domain.PredictionResult, error) {
			return inv.runner.Run(ctx, req)
		},
		func(r *domain.PredictionResult) error { return r.Validate() })
	if err == nil {
		span.SetAttributes(attribute.String("source", string(result.Source)))
		return result, nil
	}

	log.Printf("prediction model unavailable, falling back to snapshot: %v", err)
	span.AddEvent("model unavailable", trace.WithAttributes(attribute.String("error", err.Error())))

	snap, snapErr := inv.snapshots.Get(ctx)
	if snapErr != nil {
		log.Printf("prediction snapshot fallback also failed: %v", snapErr)
		return nil, &domain.ModelUnavailableError{Cause: err}
	}

	fallback := snap.Truncate(req.Days)
	span.SetAttributes(attribute.String("source", string(fallback.Source)))
	return fallback, nil
}

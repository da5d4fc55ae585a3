package retry

import (
	"context"
	"errors"
	"log"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Policy bounds one retried call: at most MaxAttempts tries, with a linear
// backoff of BaseDelay*k before attempt k+1.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
}

// DefaultPolicy mirrors the completion-call budget: three attempts, one
// second of base delay.
var DefaultPolicy = Policy{MaxAttempts: 3, BaseDelay: time.Second}

func (p Policy) normalize() Policy {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = DefaultPolicy.MaxAttempts
	}
	if p.BaseDelay < 0 {
		p.BaseDelay = 0
	}
	return p
}

// Gateway executes operations under a retry policy. Every external call in
// the pipeline goes through it; callers decide fallback behavior when it
// reports exhaustion.
type Gateway struct {
	tracer trace.Tracer
}

func NewGateway(tracer trace.Tracer) *Gateway {
	return &Gateway{tracer: tracer}
}

// Do runs fn until it yields an acceptable result or the attempt budget is
// spent. A non-nil accept predicate can reject a structurally valid result
// (a semantic failure, e.g. an unparseable sentiment reply); rejection
// counts as a failed attempt exactly like a transport error, so transport
// and semantic retries share one layer. On exhaustion the zero value and
// the last error are returned; Do never panics past this boundary.
func Do[T any](ctx context.Context, g *Gateway, name string, p Policy, fn func(context.Context) (T, error), accept func(T) error) (T, error) {
	p = p.normalize()

	ctx, span := g.tracer.Start(ctx, "retry."+name)
	defer span.End()
	span.SetAttributes(attribute.Int("retry.max_attempts", p.MaxAttempts))

	var zero T
	var lastErr error

	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		if attempt > 1 {
			delay := p.BaseDelay * time.Duration(attempt-1)
			select {
			case <-ctx.Done():
				return zero, ctx.Err()
			case <-time.After(delay):
			}
		}

		result, err := fn(ctx)
		if err == nil && accept != nil {
			err = accept(result)
		}
		if err == nil {
			span.SetAttributes(attribute.Int("retry.attempts_used", attempt))
			return result, nil
		}

		lastErr = err
		span.AddEvent("attempt failed", trace.WithAttributes(
			attribute.Int("retry.attempt", attempt),
			attribute.String("retry.error", err.Error()),
		))
		log.Printf("%s attempt %d/%d failed: %v", name, attempt, p.MaxAttempts, err)

		if isPermanent(err) {
			span.SetAttributes(attribute.Int("retry.attempts_used", attempt))
			return zero, lastErr
		}
	}

	span.SetAttributes(attribute.Int("retry.attempts_used", p.MaxAttempts))
	return zero, lastErr
}

// isPermanent reports whether err opts out of further attempts, e.g. a
// missing credential that no amount of retrying can supply.
func isPermanent(err error) bool {
	var p interface{ Permanent() bool }
	return errors.As(err, &p) && p.Permanent()
}

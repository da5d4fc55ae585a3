package provider

import (
	"context"
	"testing"
	"time"
)

func TestRateLimiterBurstWithinCapacity(t *testing.T) {
	limiter := NewRateLimiter(2, time.Minute)
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 2; i++ {
		if err := limiter.Wait(ctx); err != nil {
			t.Fatalf("unexpected error on call %d: %v", i+1, err)
		}
	}
	if time.Since(start) > 10*time.Millisecond {
		t.Fatal("calls within capacity should not block")
	}
}

func TestRateLimiterRefillsOverTime(t *testing.T) {
	limiter := NewRateLimiter(1, 5*time.Millisecond)
	ctx := context.Background()

	if err := limiter.Wait(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	time.Sleep(12 * time.Millisecond)
	if err := limiter.Wait(ctx); err != nil {
		t.Fatalf("expected refilled token, got %v", err)
	}
}

func TestRateLimiterWaitHonorsContext(t *testing.T) {
	limiter := NewRateLimiter(1, time.Second)
	_ = limiter.Wait(context.Background())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if err := limiter.Wait(ctx); err == nil {
		t.Fatal("expected deadline error while bucket is empty")
	}
}

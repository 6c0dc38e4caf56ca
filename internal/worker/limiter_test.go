package worker

import (
	"context"
	"testing"
	"time"
)

func TestLimiter_New(t *testing.T) {
	limiter := NewLimiter(50 * time.Millisecond)
	if limiter.interval != 50*time.Millisecond {
		t.Errorf("expected interval 50ms, got %v", limiter.interval)
	}

	l2 := NewLimiter(-1)
	if l2.interval != 100*time.Millisecond {
		t.Errorf("expected default interval 100ms for negative input, got %v", l2.interval)
	}
}

func TestLimiter_Throttle(t *testing.T) {
	limiter := NewLimiter(10 * time.Millisecond)
	ctx := context.Background()

	if err := limiter.Throttle(ctx, "wikidata"); err != nil {
		t.Errorf("throttle failed: %v", err)
	}

	// Different service should also work immediately
	if err := limiter.Throttle(ctx, "dbpedia"); err != nil {
		t.Errorf("throttle failed: %v", err)
	}
}

func TestLimiter_MinimumSpacing(t *testing.T) {
	limiter := NewLimiter(50 * time.Millisecond)
	ctx := context.Background()

	if err := limiter.Throttle(ctx, "wikidata"); err != nil {
		t.Fatalf("first throttle failed: %v", err)
	}

	start := time.Now()
	if err := limiter.Throttle(ctx, "wikidata"); err != nil {
		t.Fatalf("second throttle failed: %v", err)
	}

	if elapsed := time.Since(start); elapsed < 40*time.Millisecond {
		t.Errorf("expected second call delayed ~50ms, got %v", elapsed)
	}
}

func TestLimiter_Allow(t *testing.T) {
	limiter := NewLimiter(1 * time.Second)
	service := "openlibrary"

	// First call consumes the burst token
	if !limiter.Allow(service) {
		t.Errorf("first allow should pass")
	}

	if limiter.Allow(service) {
		t.Errorf("expected allow to fail (exhausted token)")
	}

	// Different service still allowed
	if !limiter.Allow("wikidata") {
		t.Errorf("expected allow for other service")
	}
}

func TestLimiter_SetServiceInterval(t *testing.T) {
	limiter := NewLimiter(1 * time.Millisecond) // fast default
	service := "knowledge-graph"

	limiter.SetServiceInterval(service, 10*time.Second)

	// First request passes (burst 1)
	if !limiter.Allow(service) {
		t.Errorf("first request should pass")
	}

	// Second request fails under the strict interval
	if limiter.Allow(service) {
		t.Errorf("second request should fail")
	}
}

func TestLimiter_ThrottleCancellation(t *testing.T) {
	limiter := NewLimiter(10 * time.Second)

	// Consume the burst token
	if !limiter.Allow("wikidata") {
		t.Fatalf("first allow should pass")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if err := limiter.Throttle(ctx, "wikidata"); err == nil {
		t.Errorf("expected error when context expires before the interval")
	}
}

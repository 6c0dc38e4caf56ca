package providers

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker"

	"github.com/mkravets/erudite/internal/model"
)

// breakerProvider wraps a Provider with a circuit breaker so a source that
// keeps failing at the transport level is skipped quickly instead of eating
// its full timeout on every lookup. Empty results do not count as failures;
// only returned errors trip the breaker.
type breakerProvider struct {
	inner   Provider
	breaker *gobreaker.CircuitBreaker
}

// WithBreaker wraps the provider with a per-provider circuit breaker.
// The breaker opens after three consecutive transport failures and probes
// again after 30 seconds.
func WithBreaker(p Provider) Provider {
	settings := gobreaker.Settings{
		Name:        p.Name(),
		MaxRequests: 2,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
	}

	return &breakerProvider{
		inner:   p,
		breaker: gobreaker.NewCircuitBreaker(settings),
	}
}

func (b *breakerProvider) Name() string {
	return b.inner.Name()
}

func (b *breakerProvider) Lookup(ctx context.Context, entityName string, entityType model.EntityType) (*model.PartialRecord, error) {
	result, err := b.breaker.Execute(func() (interface{}, error) {
		return b.inner.Lookup(ctx, entityName, entityType)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			// Open breaker means "no data right now", not a new fault.
			return nil, nil
		}
		return nil, err
	}

	record, _ := result.(*model.PartialRecord)
	return record, nil
}

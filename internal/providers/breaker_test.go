package providers

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkravets/erudite/internal/model"
)

// flakyProvider fails or succeeds on demand.
type flakyProvider struct {
	err    error
	record *model.PartialRecord
	calls  int32
}

func (p *flakyProvider) Name() string { return "flaky" }

func (p *flakyProvider) Lookup(ctx context.Context, entityName string, entityType model.EntityType) (*model.PartialRecord, error) {
	atomic.AddInt32(&p.calls, 1)
	return p.record, p.err
}

func TestBreaker_PassesThrough(t *testing.T) {
	inner := &flakyProvider{record: &model.PartialRecord{Source: "flaky", Description: "ok"}}
	p := WithBreaker(inner)

	assert.Equal(t, "flaky", p.Name())

	rec, err := p.Lookup(context.Background(), "Entity", model.TypeMisc)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "ok", rec.Description)
}

func TestBreaker_EmptyResultIsNotAFailure(t *testing.T) {
	inner := &flakyProvider{}
	p := WithBreaker(inner)

	// Far more empty lookups than the trip threshold.
	for i := 0; i < 10; i++ {
		rec, err := p.Lookup(context.Background(), "Entity", model.TypeMisc)
		assert.NoError(t, err)
		assert.Nil(t, rec)
	}
	assert.Equal(t, int32(10), atomic.LoadInt32(&inner.calls))
}

func TestBreaker_OpensAfterConsecutiveFailures(t *testing.T) {
	inner := &flakyProvider{err: errors.New("connect: connection refused")}
	p := WithBreaker(inner)

	// First three failures pass through the inner provider.
	for i := 0; i < 3; i++ {
		_, err := p.Lookup(context.Background(), "Entity", model.TypeMisc)
		assert.Error(t, err)
	}

	// Open breaker: lookups return no data without reaching the provider.
	rec, err := p.Lookup(context.Background(), "Entity", model.TypeMisc)
	assert.NoError(t, err)
	assert.Nil(t, rec)
	assert.Equal(t, int32(3), atomic.LoadInt32(&inner.calls))
}

package enrich

import (
	"context"
	"errors"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkravets/erudite/internal/model"
	"github.com/mkravets/erudite/internal/providers"
	"github.com/mkravets/erudite/internal/store"
)

func newTestEntityCache(t *testing.T) *store.EntityCache {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return store.NewEntityCache(s, time.Minute)
}

func newTestOrchestrator(t *testing.T, server *httptest.Server, ps ...providers.Provider) *Orchestrator {
	t.Helper()
	return NewOrchestrator(
		newTestEntityCache(t),
		newTestAggregator(ps...),
		newTestFallback(server, nil),
		ModeParallel,
	)
}

func TestOrchestrator_EmptyName(t *testing.T) {
	server := httptest.NewServer(wikiHandler(t, nil, nil))
	defer server.Close()

	_, err := newTestOrchestrator(t, server).Enrich(context.Background(), "  ", model.TypeMisc)
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrInvalidInput))
}

func TestOrchestrator_WriteThroughAndCacheHit(t *testing.T) {
	server := httptest.NewServer(wikiHandler(t, nil, nil))
	defer server.Close()

	kg := &stubProvider{
		name: providers.SourceKnowledgeGraph,
		record: &model.PartialRecord{
			Source:       providers.SourceKnowledgeGraph,
			Description:  "a city in Japan",
			LongFormText: "Kyoto was the imperial capital of Japan for over a thousand years.",
			TypeTags:     []string{"Place"},
		},
	}
	wikidata := &stubProvider{
		name:   providers.SourceWikidata,
		record: partial(providers.SourceWikidata, "ancient capital"),
	}

	o := newTestOrchestrator(t, server, kg, wikidata)

	first, err := o.Enrich(context.Background(), "Kyoto", model.TypeGPE)
	require.NoError(t, err)
	assert.Equal(t, model.ConfidenceHighVerified, first.Confidence)
	assert.Equal(t, int32(1), atomic.LoadInt32(&kg.calls))

	// Second lookup is served from cache; no provider is consulted again.
	second, err := o.Enrich(context.Background(), "Kyoto", model.TypeGPE)
	require.NoError(t, err)
	assert.Equal(t, first.Summary, second.Summary)
	assert.Equal(t, first.Confidence, second.Confidence)
	assert.Equal(t, int32(1), atomic.LoadInt32(&kg.calls))
	assert.Equal(t, int32(1), atomic.LoadInt32(&wikidata.calls))
}

func TestOrchestrator_FallbackOnZeroSources(t *testing.T) {
	server := httptest.NewServer(wikiHandler(t, map[string]string{
		"Scamander": "Scamander is a river god in Greek mythology.",
	}, nil))
	defer server.Close()

	// Every primary source comes back empty.
	kg := &stubProvider{name: providers.SourceKnowledgeGraph}
	wikidata := &stubProvider{name: providers.SourceWikidata}

	rec, err := newTestOrchestrator(t, server, kg, wikidata).Enrich(
		context.Background(), "Scamander", model.TypeMisc,
	)
	require.NoError(t, err)

	assert.Equal(t, []string{providers.SourceWikipedia}, rec.SourcesConsulted)
	assert.Equal(t, model.ConfidenceMedium, rec.Confidence)
	assert.Equal(t, "Scamander is a river god in Greek mythology.", rec.Summary)
}

func TestOrchestrator_TotalMissNotCached(t *testing.T) {
	server := httptest.NewServer(wikiHandler(t, nil, nil))
	defer server.Close()

	kg := &stubProvider{name: providers.SourceKnowledgeGraph}

	o := newTestOrchestrator(t, server, kg)

	rec, err := o.Enrich(context.Background(), "Xyzzy Quux", model.TypeMisc)
	require.NoError(t, err)
	assert.Equal(t, model.ConfidenceNone, rec.Confidence)

	// The miss must not be cached: a later lookup consults the providers
	// again.
	_, err = o.Enrich(context.Background(), "Xyzzy Quux", model.TypeMisc)
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&kg.calls))
}

func TestOrchestrator_EnrichBatch(t *testing.T) {
	server := httptest.NewServer(wikiHandler(t, nil, nil))
	defer server.Close()

	kg := &stubProvider{
		name:   providers.SourceKnowledgeGraph,
		record: partial(providers.SourceKnowledgeGraph, "something"),
	}

	o := newTestOrchestrator(t, server, kg)

	entities := []model.Entity{
		{Text: "Alpha", Type: model.TypeMisc},
		{Text: "Beta", Type: model.TypeMisc},
		{Text: "Gamma", Type: model.TypeMisc},
		{Text: "Delta", Type: model.TypeMisc},
	}

	// The cap trims the batch before any work is queued, and results come
	// back in input order.
	results := o.EnrichBatch(context.Background(), entities, 2, 2)
	require.Len(t, results, 2)
	for i, r := range results {
		assert.NoError(t, r.Err)
		require.NotNil(t, r.Record)
		assert.Equal(t, entities[i].Text, r.Entity.Text)
		assert.Equal(t, model.ConfidenceHigh, r.Record.Confidence)
	}

	assert.Nil(t, o.EnrichBatch(context.Background(), nil, 10, 2))
}

package enrich

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkravets/erudite/internal/model"
	"github.com/mkravets/erudite/internal/providers"
	"github.com/mkravets/erudite/internal/worker"
)

// stubProvider is a canned Provider for aggregator tests.
type stubProvider struct {
	name   string
	record *model.PartialRecord
	err    error
	delay  time.Duration
	calls  int32
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) Lookup(ctx context.Context, entityName string, entityType model.EntityType) (*model.PartialRecord, error) {
	atomic.AddInt32(&s.calls, 1)
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.record, nil
}

func partial(source, description string) *model.PartialRecord {
	return &model.PartialRecord{Source: source, Description: description}
}

func newTestAggregator(ps ...providers.Provider) *Aggregator {
	return NewAggregator(ps, worker.NewLimiter(time.Millisecond))
}

func TestAggregator_EmptyName(t *testing.T) {
	agg := newTestAggregator()

	_, err := agg.Lookup(context.Background(), "   ", model.TypePerson, ModeParallel)
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrInvalidInput))
}

func TestAggregator_ConfidenceTiers(t *testing.T) {
	tests := []struct {
		name       string
		responders []string
		confidence model.Confidence
		detail     string
	}{
		{
			name:       "three sources cross-verified",
			responders: []string{providers.SourceKnowledgeGraph, providers.SourceDBpedia, providers.SourceWikidata},
			confidence: model.ConfidenceVeryHigh,
			detail:     "cross-verified by 3 sources",
		},
		{
			name:       "two sources corroborated",
			responders: []string{providers.SourceKnowledgeGraph, providers.SourceWikidata},
			confidence: model.ConfidenceHighVerified,
			detail:     "corroborated by 2 sources",
		},
		{
			name:       "knowledge graph alone",
			responders: []string{providers.SourceKnowledgeGraph},
			confidence: model.ConfidenceHigh,
			detail:     "Knowledge Graph only",
		},
		{
			name:       "single secondary source",
			responders: []string{providers.SourceWikidata},
			confidence: model.ConfidenceMedium,
			detail:     "Wikidata only",
		},
		{
			name:       "no sources",
			responders: nil,
			confidence: model.ConfidenceNone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			responded := make(map[string]bool, len(tt.responders))
			for _, source := range tt.responders {
				responded[source] = true
			}

			var ps []providers.Provider
			for _, source := range []string{providers.SourceKnowledgeGraph, providers.SourceDBpedia, providers.SourceWikidata} {
				stub := &stubProvider{name: source}
				if responded[source] {
					stub.record = partial(source, "a description from "+source)
				}
				ps = append(ps, stub)
			}

			rec, err := newTestAggregator(ps...).Lookup(context.Background(), "Test Entity", model.TypeMisc, ModeParallel)
			require.NoError(t, err)

			assert.Equal(t, tt.confidence, rec.Confidence)
			assert.Equal(t, tt.detail, rec.ConfidenceDetail)
			assert.Equal(t, tt.responders, rec.SourcesConsulted)
			if len(tt.responders) == 0 {
				assert.Equal(t, model.NoInformationFound, rec.Summary)
			}
		})
	}
}

func TestAggregator_FourSourcesCrossVerified(t *testing.T) {
	kg := &stubProvider{
		name:   providers.SourceKnowledgeGraph,
		record: partial(providers.SourceKnowledgeGraph, "1869 novel by Leo Tolstoy"),
	}
	dbpedia := &stubProvider{
		name:   providers.SourceDBpedia,
		record: partial(providers.SourceDBpedia, "russian literary classic"),
	}
	wikidata := &stubProvider{
		name:   providers.SourceWikidata,
		record: partial(providers.SourceWikidata, "novel by Tolstoy"),
	}
	catalog := &stubProvider{
		name:   providers.SourceOpenLibrary,
		record: partial(providers.SourceOpenLibrary, "War and Peace by Leo Tolstoy"),
	}

	// A work of art pulls in the literary catalog, so all four providers
	// can respond.
	rec, err := newTestAggregator(kg, dbpedia, wikidata, catalog).Lookup(
		context.Background(), "War and Peace", model.TypeWorkOfArt, ModeParallel,
	)
	require.NoError(t, err)

	assert.Equal(t, []string{
		providers.SourceKnowledgeGraph, providers.SourceDBpedia,
		providers.SourceWikidata, providers.SourceOpenLibrary,
	}, rec.SourcesConsulted)
	assert.Equal(t, model.ConfidenceVeryHigh, rec.Confidence)
	assert.Equal(t, "cross-verified by 4 sources", rec.ConfidenceDetail)
}

func TestAggregator_TwoSourcesVerified(t *testing.T) {
	kg := &stubProvider{
		name: providers.SourceKnowledgeGraph,
		record: &model.PartialRecord{
			Source:      providers.SourceKnowledgeGraph,
			Description: "Leader of the Indian independence movement",
			TypeTags:    []string{"Person", "Thing"},
			RawScore:    891.4,
		},
	}
	dbpedia := &stubProvider{
		name: providers.SourceDBpedia,
		err:  errors.New("connect: connection refused"),
	}
	wikidata := &stubProvider{
		name: providers.SourceWikidata,
		record: &model.PartialRecord{
			Source:      providers.SourceWikidata,
			Description: "Indian political and spiritual leader",
			WikidataID:  "Q1001",
		},
	}

	rec, err := newTestAggregator(kg, dbpedia, wikidata).Lookup(
		context.Background(), "Mahatma Gandhi", model.TypePerson, ModeParallel,
	)
	require.NoError(t, err)

	assert.Equal(t, []string{providers.SourceKnowledgeGraph, providers.SourceWikidata}, rec.SourcesConsulted)
	assert.Equal(t, model.ConfidenceHighVerified, rec.Confidence)
	assert.Equal(t, "high (verified)", rec.Confidence.String())
	assert.Equal(t, model.SignificanceBiographical, rec.CulturalSignificance)
	assert.Equal(t, "Q1001", rec.WikidataID)
	assert.Equal(t, 891.4, rec.KGScore)
}

func TestAggregator_MergeFillsGapsByPriority(t *testing.T) {
	kg := &stubProvider{
		name: providers.SourceKnowledgeGraph,
		record: &model.PartialRecord{
			Source:      providers.SourceKnowledgeGraph,
			Description: "short KG description",
		},
	}
	dbpedia := &stubProvider{
		name: providers.SourceDBpedia,
		record: &model.PartialRecord{
			Source:       providers.SourceDBpedia,
			Description:  "dbpedia description",
			LongFormText: "a long abstract from the encyclopedia",
			ResourceURI:  "http://dbpedia.org/resource/Test",
		},
	}
	wikidata := &stubProvider{
		name: providers.SourceWikidata,
		record: &model.PartialRecord{
			Source:       providers.SourceWikidata,
			Description:  "wikidata description",
			CanonicalURL: "https://en.wikipedia.org/wiki/Test",
			WikidataID:   "Q42",
		},
	}

	rec, err := newTestAggregator(kg, dbpedia, wikidata).Lookup(
		context.Background(), "Test", model.TypeMisc, ModeParallel,
	)
	require.NoError(t, err)

	// Highest-priority source wins each field; lower sources fill the gaps.
	assert.Equal(t, "a long abstract from the encyclopedia", rec.Summary)
	assert.Equal(t, "short KG description", rec.Description)
	assert.Equal(t, "https://en.wikipedia.org/wiki/Test", rec.CanonicalURL)
	assert.Equal(t, "http://dbpedia.org/resource/Test", rec.EncyclopediaURI)
	assert.Equal(t, "Q42", rec.WikidataID)
}

func TestAggregator_PriorityIndependentOfCompletionOrder(t *testing.T) {
	slow := &stubProvider{
		name:   providers.SourceKnowledgeGraph,
		delay:  50 * time.Millisecond,
		record: partial(providers.SourceKnowledgeGraph, "kg wins"),
	}
	fast := &stubProvider{
		name:   providers.SourceDBpedia,
		record: partial(providers.SourceDBpedia, "dbpedia answered first"),
	}

	rec, err := newTestAggregator(slow, fast).Lookup(
		context.Background(), "Test", model.TypeMisc, ModeParallel,
	)
	require.NoError(t, err)

	assert.Equal(t, "kg wins", rec.Description)
	assert.Equal(t, []string{providers.SourceKnowledgeGraph, providers.SourceDBpedia}, rec.SourcesConsulted)
}

func TestAggregator_LiteraryCatalogSelection(t *testing.T) {
	tests := []struct {
		name       string
		entity     string
		entityType model.EntityType
		wantCalled bool
	}{
		{"work of art", "War and Peace", model.TypeWorkOfArt, true},
		{"literary keyword in name", "The Lost Novel", model.TypeMisc, true},
		{"person", "Mahatma Gandhi", model.TypePerson, false},
		{"place", "Kyoto", model.TypeGPE, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			catalog := &stubProvider{name: providers.SourceOpenLibrary}
			kg := &stubProvider{name: providers.SourceKnowledgeGraph}

			_, err := newTestAggregator(kg, catalog).Lookup(
				context.Background(), tt.entity, tt.entityType, ModeParallel,
			)
			require.NoError(t, err)

			called := atomic.LoadInt32(&catalog.calls) > 0
			assert.Equal(t, tt.wantCalled, called)
		})
	}
}

func TestAggregator_SequentialMode(t *testing.T) {
	kg := &stubProvider{
		name:   providers.SourceKnowledgeGraph,
		record: partial(providers.SourceKnowledgeGraph, "first"),
	}
	dbpedia := &stubProvider{
		name: providers.SourceDBpedia,
		err:  errors.New("boom"),
	}
	wikidata := &stubProvider{
		name:   providers.SourceWikidata,
		record: partial(providers.SourceWikidata, "third"),
	}

	rec, err := newTestAggregator(kg, dbpedia, wikidata).Lookup(
		context.Background(), "Test", model.TypeMisc, ModeSequential,
	)
	require.NoError(t, err)

	// The failing provider forfeits only its own contribution.
	assert.Equal(t, []string{providers.SourceKnowledgeGraph, providers.SourceWikidata}, rec.SourcesConsulted)
	assert.Equal(t, model.ConfidenceHighVerified, rec.Confidence)
}

func TestAggregator_ProviderTimeoutIsolated(t *testing.T) {
	hung := &stubProvider{
		name:   providers.SourceKnowledgeGraph,
		delay:  time.Minute,
		record: partial(providers.SourceKnowledgeGraph, "never arrives"),
	}
	healthy := &stubProvider{
		name:   providers.SourceWikidata,
		record: partial(providers.SourceWikidata, "still here"),
	}

	agg := newTestAggregator(hung, healthy)
	agg.timeout = 30 * time.Millisecond

	rec, err := agg.Lookup(context.Background(), "Test", model.TypeMisc, ModeParallel)
	require.NoError(t, err)

	assert.Equal(t, []string{providers.SourceWikidata}, rec.SourcesConsulted)
	assert.Equal(t, model.ConfidenceMedium, rec.Confidence)
}

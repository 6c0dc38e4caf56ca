// Package enrich implements the multi-source enrichment core: the
// aggregator that fans an entity lookup out to the knowledge providers and
// merges their partial records, the encyclopedia fallback, and the
// orchestrator that ties both to the entity cache.
package enrich

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/mkravets/erudite/internal/model"
	"github.com/mkravets/erudite/internal/providers"
	"github.com/mkravets/erudite/internal/worker"
)

// Mode selects how the aggregator issues provider calls.
type Mode int

const (
	// ModeParallel fans out all selected providers concurrently.
	ModeParallel Mode = iota
	// ModeSequential issues one rate-limited call at a time, in priority order.
	ModeSequential
)

const (
	defaultProviderTimeout = 5 * time.Second
	maxConcurrentLookups   = 4
)

// literaryKeywords pull the literary catalog into a lookup even without a
// WORK_OF_ART tag. Substring match on the entity name, as coarse as that is.
var literaryKeywords = []string{"book", "novel", "play"}

// Aggregator fans a single entity lookup out to the knowledge providers and
// merges the partial records into one combined record. Providers must be
// supplied in priority order; the merge is deterministic regardless of which
// provider answers first.
type Aggregator struct {
	providers []providers.Provider
	limiter   *worker.Limiter
	timeout   time.Duration
}

// NewAggregator creates an aggregator over the given providers (in priority
// order). The limiter is only consulted in sequential mode.
func NewAggregator(ps []providers.Provider, limiter *worker.Limiter) *Aggregator {
	return &Aggregator{
		providers: ps,
		limiter:   limiter,
		timeout:   defaultProviderTimeout,
	}
}

// Lookup queries the selected providers and returns one combined record.
// Provider failures never fail the call; the only error is an empty entity
// name.
func (a *Aggregator) Lookup(ctx context.Context, entityName string, entityType model.EntityType, mode Mode) (*model.CombinedRecord, error) {
	if strings.TrimSpace(entityName) == "" {
		return nil, fmt.Errorf("%w: empty entity name", model.ErrInvalidInput)
	}

	selected := a.selectProviders(entityName, entityType)

	var partials []*model.PartialRecord
	if mode == ModeSequential {
		partials = a.lookupSequential(ctx, selected, entityName, entityType)
	} else {
		partials = a.lookupParallel(ctx, selected, entityName, entityType)
	}

	return a.merge(entityName, entityType, partials), nil
}

// selectProviders returns the provider subset for the entity, preserving
// priority order. The literary catalog joins only for works of art or names
// carrying a literary keyword.
func (a *Aggregator) selectProviders(entityName string, entityType model.EntityType) []providers.Provider {
	lowerName := strings.ToLower(entityName)
	includeLiterary := entityType == model.TypeWorkOfArt || containsAny(lowerName, literaryKeywords)

	selected := make([]providers.Provider, 0, len(a.providers))
	for _, p := range a.providers {
		if p.Name() == providers.SourceOpenLibrary && !includeLiterary {
			continue
		}
		selected = append(selected, p)
	}
	return selected
}

// lookupParallel issues all provider calls concurrently with a bounded
// number in flight. Each call gets its own timeout and is fault-isolated:
// one provider failing or timing out never aborts the others. Results land
// in priority slots, so completion order is irrelevant.
func (a *Aggregator) lookupParallel(ctx context.Context, selected []providers.Provider, entityName string, entityType model.EntityType) []*model.PartialRecord {
	partials := make([]*model.PartialRecord, len(selected))
	semaphore := make(chan struct{}, maxConcurrentLookups)
	var wg sync.WaitGroup

	for i, p := range selected {
		wg.Add(1)
		go func(idx int, p providers.Provider) {
			defer wg.Done()

			select {
			case <-ctx.Done():
				return
			case semaphore <- struct{}{}:
			}
			defer func() { <-semaphore }()

			callCtx, cancel := context.WithTimeout(ctx, a.timeout)
			defer cancel()

			record, err := p.Lookup(callCtx, entityName, entityType)
			if err != nil {
				return
			}
			partials[idx] = record
		}(i, p)
	}

	wg.Wait()
	return partials
}

// lookupSequential issues one call at a time in priority order, each
// preceded by a throttle for that provider. A failing provider forfeits
// only its own contribution.
func (a *Aggregator) lookupSequential(ctx context.Context, selected []providers.Provider, entityName string, entityType model.EntityType) []*model.PartialRecord {
	partials := make([]*model.PartialRecord, len(selected))

	for i, p := range selected {
		if err := a.limiter.Throttle(ctx, p.Name()); err != nil {
			// Context cancelled; the remaining chain cannot run.
			break
		}

		callCtx, cancel := context.WithTimeout(ctx, a.timeout)
		record, err := p.Lookup(callCtx, entityName, entityType)
		cancel()
		if err != nil {
			continue
		}
		partials[i] = record
	}

	return partials
}

// merge folds the partial records into one combined record. partials must be
// in priority order; each field independently takes the first non-empty
// value, so a lower-priority source fills gaps left by a higher one.
func (a *Aggregator) merge(entityName string, entityType model.EntityType, partials []*model.PartialRecord) *model.CombinedRecord {
	rec := &model.CombinedRecord{
		EntityName:  entityName,
		EntityType:  entityType,
		RetrievedAt: time.Now().UTC(),
	}

	var responded []*model.PartialRecord
	for _, p := range partials {
		if p != nil {
			responded = append(responded, p)
		}
	}

	var kgTags []string
	for _, p := range responded {
		rec.SourcesConsulted = append(rec.SourcesConsulted, p.Source)

		if rec.Summary == "" && p.LongFormText != "" {
			rec.Summary = p.LongFormText
		}
		if rec.Description == "" && p.Description != "" {
			rec.Description = p.Description
		}
		if rec.CanonicalURL == "" && p.CanonicalURL != "" {
			rec.CanonicalURL = p.CanonicalURL
		}
		if rec.ImageURL == "" && p.ImageURL != "" {
			rec.ImageURL = p.ImageURL
		}
		if rec.WikidataID == "" && p.WikidataID != "" {
			rec.WikidataID = p.WikidataID
		}
		if rec.EncyclopediaURI == "" && p.ResourceURI != "" {
			rec.EncyclopediaURI = p.ResourceURI
		}
		if rec.Literary == nil && p.Literary != nil {
			rec.Literary = p.Literary
		}
		if p.Source == providers.SourceKnowledgeGraph {
			rec.KGScore = p.RawScore
			kgTags = p.TypeTags
		}
	}

	// A long-form text outranks any description, but a description still
	// beats an empty summary.
	if rec.Summary == "" {
		rec.Summary = rec.Description
	}

	a.assignConfidence(rec)
	rec.CulturalSignificance = classifySignificance(
		entityType, rec.Literary != nil, kgTags, rec.Description+" "+rec.Summary,
	)

	return rec
}

// assignConfidence sets the tier from how many and which sources responded.
func (a *Aggregator) assignConfidence(rec *model.CombinedRecord) {
	n := len(rec.SourcesConsulted)
	switch {
	case n >= 3:
		rec.Confidence = model.ConfidenceVeryHigh
		rec.ConfidenceDetail = fmt.Sprintf("cross-verified by %d sources", n)
	case n == 2:
		rec.Confidence = model.ConfidenceHighVerified
		rec.ConfidenceDetail = "corroborated by 2 sources"
	case n == 1 && rec.SourcesConsulted[0] == providers.SourceKnowledgeGraph:
		rec.Confidence = model.ConfidenceHigh
		rec.ConfidenceDetail = "Knowledge Graph only"
	case n == 1:
		rec.Confidence = model.ConfidenceMedium
		rec.ConfidenceDetail = rec.SourcesConsulted[0] + " only"
	default:
		rec.Confidence = model.ConfidenceNone
		rec.Summary = model.NoInformationFound
	}
}

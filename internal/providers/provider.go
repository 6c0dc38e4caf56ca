// Package providers contains the adapters for the external knowledge
// sources consulted during entity enrichment. Each adapter wraps one HTTP
// API and normalizes its response into a model.PartialRecord. Adapters never
// let a provider fault escape: a non-2xx status or an unexpected response
// shape yields a nil record, and only transport-level errors are returned
// (the aggregator absorbs those too).
package providers

import (
	"context"

	"github.com/mkravets/erudite/internal/model"
)

// Provider display names, used in CombinedRecord.SourcesConsulted and as
// rate-limiter keys. Order of consultation is fixed by the aggregator, not
// by the adapters.
const (
	SourceKnowledgeGraph = "Google Knowledge Graph"
	SourceDBpedia        = "DBpedia"
	SourceWikidata       = "Wikidata"
	SourceOpenLibrary    = "OpenLibrary"
	SourceWikipedia      = "Wikipedia"
)

// Provider fetches facts about one entity from a single external source.
type Provider interface {
	// Name returns the provider display name.
	Name() string

	// Lookup returns the provider's contribution for the entity, or nil
	// when the source has nothing. A returned error always means a
	// transport-level failure; it is informational and contributes no data.
	Lookup(ctx context.Context, entityName string, entityType model.EntityType) (*model.PartialRecord, error)
}

package enrich

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mkravets/erudite/internal/model"
	"github.com/mkravets/erudite/internal/store"
	"github.com/mkravets/erudite/internal/worker"
)

// Orchestrator is the top-level enrichment entry point: entity-cache
// read-through, multi-source aggregation, encyclopedia fallback, and
// write-through of usable results.
type Orchestrator struct {
	cache      *store.EntityCache
	aggregator *Aggregator
	fallback   *Fallback
	mode       Mode
}

// NewOrchestrator wires the orchestrator. All collaborators are constructed
// by the caller at process start and passed in; none are created lazily.
func NewOrchestrator(cache *store.EntityCache, aggregator *Aggregator, fallback *Fallback, mode Mode) *Orchestrator {
	return &Orchestrator{
		cache:      cache,
		aggregator: aggregator,
		fallback:   fallback,
		mode:       mode,
	}
}

// Enrich returns the combined record for one entity. Apart from an empty
// entity name, it never fails: provider outages degrade the confidence tier,
// cache faults are absorbed, and the caller always gets a record back.
func (o *Orchestrator) Enrich(ctx context.Context, entityName string, entityType model.EntityType) (*model.CombinedRecord, error) {
	entityName = strings.TrimSpace(entityName)
	if entityName == "" {
		return nil, fmt.Errorf("%w: empty entity name", model.ErrInvalidInput)
	}

	if rec, ok := o.cache.Get(entityName, entityType); ok {
		return rec, nil
	}

	rec, err := o.aggregator.Lookup(ctx, entityName, entityType, o.mode)
	if err != nil {
		// Only invalid input reaches here, and the name was validated
		// above; degrade rather than surface anything unexpected.
		rec = &model.CombinedRecord{
			EntityName:           entityName,
			EntityType:           entityType,
			CulturalSignificance: model.SignificanceGeneral,
			Confidence:           model.ConfidenceNone,
			RetrievedAt:          time.Now().UTC(),
		}
	}

	if len(rec.SourcesConsulted) == 0 {
		rec = o.fallback.Enrich(ctx, entityName, entityType)
	}

	// Only records that actually say something are worth keeping; an empty
	// or sentinel summary stays uncached so a later lookup retries.
	if rec.Summary != "" && rec.Confidence != model.ConfidenceNone {
		_ = o.cache.Put(rec)
	}

	return rec, nil
}

// EnrichResult is the outcome of one batch enrichment job.
type EnrichResult struct {
	Entity model.Entity
	Record *model.CombinedRecord
	Err    error
}

// GetError returns the job error, if any.
func (r *EnrichResult) GetError() error {
	return r.Err
}

// enrichJob adapts one entity lookup to the worker pool.
type enrichJob struct {
	orchestrator *Orchestrator
	entity       model.Entity
}

func (j *enrichJob) Execute(ctx context.Context) worker.Result {
	rec, err := j.orchestrator.Enrich(ctx, j.entity.Text, j.entity.Type)
	return &EnrichResult{
		Entity: j.entity,
		Record: rec,
		Err:    err,
	}
}

// EnrichBatch enriches up to maxEnrich detected entities concurrently on a
// bounded pool, returning results in input order. Individual failures are
// carried in the results, never aborting the batch.
func (o *Orchestrator) EnrichBatch(ctx context.Context, entities []model.Entity, maxEnrich, workers int) []*EnrichResult {
	if maxEnrich > 0 && len(entities) > maxEnrich {
		entities = entities[:maxEnrich]
	}
	if len(entities) == 0 {
		return nil
	}

	jobs := make([]worker.Job, len(entities))
	for i, entity := range entities {
		jobs[i] = &enrichJob{orchestrator: o, entity: entity}
	}

	results := make([]*EnrichResult, 0, len(jobs))
	for _, result := range worker.NewPool(workers).Run(ctx, jobs) {
		if r, ok := result.(*EnrichResult); ok {
			results = append(results, r)
		}
	}
	return results
}

package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/mkravets/erudite/internal/model"
)

// EntityCache stores combined enrichment records keyed by
// (entity name, entity type), with an in-process memory layer in front of
// the database. Keys are case-sensitive as stored; writes upsert with
// last-write-wins semantics.
type EntityCache struct {
	db     *sql.DB
	memory *gocache.Cache
}

// NewEntityCache creates the entity cache on top of the store.
func NewEntityCache(s *Store, memoryTTL time.Duration) *EntityCache {
	if memoryTTL <= 0 {
		memoryTTL = 10 * time.Minute
	}

	return &EntityCache{
		db:     s.db,
		memory: gocache.New(memoryTTL, 2*memoryTTL),
	}
}

func entityKey(name string, entityType model.EntityType) string {
	return name + "|" + string(entityType)
}

// Get returns the cached record for the entity, checking memory first and
// promoting database hits. Any read failure is reported as a miss.
func (c *EntityCache) Get(entityName string, entityType model.EntityType) (*model.CombinedRecord, bool) {
	key := entityKey(entityName, entityType)

	if val, found := c.memory.Get(key); found {
		if rec, ok := val.(*model.CombinedRecord); ok {
			return rec, true
		}
	}

	row := c.db.QueryRow(`
		SELECT summary, description, canonical_url, image_url,
		       cultural_significance, confidence, confidence_detail, sources,
		       wikidata_id, encyclopedia_uri, literary_info, kg_score, retrieved_at
		FROM entity_cache
		WHERE entity_name = ? AND entity_type = ?`,
		entityName, string(entityType),
	)

	rec := &model.CombinedRecord{
		EntityName: entityName,
		EntityType: entityType,
	}
	var (
		significance string
		confidence   string
		sourcesJSON  string
		literaryJSON sql.NullString
	)
	err := row.Scan(
		&rec.Summary, &rec.Description, &rec.CanonicalURL, &rec.ImageURL,
		&significance, &confidence, &rec.ConfidenceDetail, &sourcesJSON,
		&rec.WikidataID, &rec.EncyclopediaURI, &literaryJSON, &rec.KGScore, &rec.RetrievedAt,
	)
	if err != nil {
		// sql.ErrNoRows and genuine read failures both degrade to a miss.
		return nil, false
	}

	rec.CulturalSignificance = model.Significance(significance)
	if tier, err := model.ParseConfidence(confidence); err == nil {
		rec.Confidence = tier
	}
	if err := json.Unmarshal([]byte(sourcesJSON), &rec.SourcesConsulted); err != nil {
		rec.SourcesConsulted = nil
	}
	if literaryJSON.Valid && literaryJSON.String != "" {
		var info model.LiteraryInfo
		if err := json.Unmarshal([]byte(literaryJSON.String), &info); err == nil {
			rec.Literary = &info
		}
	}

	c.memory.SetDefault(key, rec)
	return rec, true
}

// Put upserts the record on its composite key.
func (c *EntityCache) Put(rec *model.CombinedRecord) error {
	if rec == nil {
		return errors.New("nil record")
	}

	sources := rec.SourcesConsulted
	if sources == nil {
		sources = []string{}
	}
	sourcesJSON, err := json.Marshal(sources)
	if err != nil {
		return fmt.Errorf("marshal sources: %w", err)
	}

	var literaryJSON sql.NullString
	if rec.Literary != nil {
		data, err := json.Marshal(rec.Literary)
		if err != nil {
			return fmt.Errorf("marshal literary info: %w", err)
		}
		literaryJSON = sql.NullString{String: string(data), Valid: true}
	}

	_, err = c.db.Exec(`
		INSERT INTO entity_cache (
			entity_name, entity_type, summary, description, canonical_url,
			image_url, cultural_significance, confidence, confidence_detail,
			sources, wikidata_id, encyclopedia_uri, literary_info, kg_score,
			retrieved_at, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (entity_name, entity_type) DO UPDATE SET
			summary = excluded.summary,
			description = excluded.description,
			canonical_url = excluded.canonical_url,
			image_url = excluded.image_url,
			cultural_significance = excluded.cultural_significance,
			confidence = excluded.confidence,
			confidence_detail = excluded.confidence_detail,
			sources = excluded.sources,
			wikidata_id = excluded.wikidata_id,
			encyclopedia_uri = excluded.encyclopedia_uri,
			literary_info = excluded.literary_info,
			kg_score = excluded.kg_score,
			retrieved_at = excluded.retrieved_at,
			created_at = excluded.created_at`,
		rec.EntityName, string(rec.EntityType), rec.Summary, rec.Description,
		rec.CanonicalURL, rec.ImageURL, string(rec.CulturalSignificance),
		rec.Confidence.String(), rec.ConfidenceDetail, string(sourcesJSON),
		rec.WikidataID, rec.EncyclopediaURI, literaryJSON, rec.KGScore,
		rec.RetrievedAt, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("upsert entity: %w", err)
	}

	c.memory.SetDefault(entityKey(rec.EntityName, rec.EntityType), rec)
	return nil
}

// PurgeOlderThan removes rows created more than maxAgeDays ago and returns
// the number removed. The memory layer expires on its own TTL.
func (c *EntityCache) PurgeOlderThan(maxAgeDays int) (int64, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -maxAgeDays)

	result, err := c.db.Exec(`DELETE FROM entity_cache WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge entity cache: %w", err)
	}
	return result.RowsAffected()
}

package store

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/mkravets/erudite/internal/model"
)

// analysisTextPrefixLimit is how much of the original text is stored
// alongside the hash for manual verification.
const analysisTextPrefixLimit = 5000

// DefaultAnalysisTTLDays is the age after which a cached analysis is
// treated as absent on read.
const DefaultAnalysisTTLDays = 30

// AnalysisCache stores cultural-analysis results keyed by a content hash of
// (normalized text, language). Entries expire after a TTL but are only
// removed by an explicit Purge; reads simply skip expired rows.
type AnalysisCache struct {
	db      *sql.DB
	ttlDays int
}

// NewAnalysisCache creates the analysis cache on top of the store.
func NewAnalysisCache(s *Store, ttlDays int) *AnalysisCache {
	if ttlDays <= 0 {
		ttlDays = DefaultAnalysisTTLDays
	}

	return &AnalysisCache{
		db:      s.db,
		ttlDays: ttlDays,
	}
}

// TextHash computes the cache key: SHA-256 over the lowercased, trimmed
// text joined with the language code. The language is hashed as given, so
// "en" and "EN" key different entries.
func TextHash(text, language string) string {
	normalized := strings.ToLower(strings.TrimSpace(text))
	sum := sha256.Sum256([]byte(normalized + "|" + language))
	return hex.EncodeToString(sum[:])
}

// Get returns the cached analysis for (text, language), or absent when no
// live entry exists. A hit bumps the entry's hit count best-effort: a failed
// increment never fails the read.
func (c *AnalysisCache) Get(text, language string) (*model.CulturalAnalysis, bool) {
	hash := TextHash(text, language)
	cutoff := time.Now().UTC().AddDate(0, 0, -c.ttlDays)

	row := c.db.QueryRow(`
		SELECT cultural_origin, cross_cultural_connections, modern_analogy,
		       timeline_events, geographic_locations, key_concepts, external_resources
		FROM analysis_cache
		WHERE text_hash = ? AND language = ? AND created_at > ?`,
		hash, language, cutoff,
	)

	var (
		analysis      model.CulturalAnalysis
		timelineJSON  string
		locationsJSON string
		conceptsJSON  string
		resourcesJSON string
	)
	err := row.Scan(
		&analysis.CulturalOrigin, &analysis.CrossCulturalConnections,
		&analysis.ModernAnalogy, &timelineJSON, &locationsJSON,
		&conceptsJSON, &resourcesJSON,
	)
	if err != nil {
		return nil, false
	}

	// Collection fields are stored as JSON; a corrupt column degrades to
	// an empty collection rather than a miss.
	_ = json.Unmarshal([]byte(timelineJSON), &analysis.TimelineEvents)
	_ = json.Unmarshal([]byte(locationsJSON), &analysis.GeographicLocations)
	_ = json.Unmarshal([]byte(conceptsJSON), &analysis.KeyConcepts)
	_ = json.Unmarshal([]byte(resourcesJSON), &analysis.ExternalResources)
	analysis.Normalize()

	// Best-effort hit accounting; lost increments under a failing store
	// are acceptable.
	_, _ = c.db.Exec(`
		UPDATE analysis_cache
		SET hit_count = hit_count + 1, last_accessed = ?
		WHERE text_hash = ? AND language = ?`,
		time.Now().UTC(), hash, language,
	)

	return &analysis, true
}

// Put upserts the analysis under (text hash, language), storing the first
// 5000 characters of the text for verification and resetting the entry's
// age and hit count.
func (c *AnalysisCache) Put(text, language string, analysis *model.CulturalAnalysis) error {
	if analysis == nil {
		return fmt.Errorf("nil analysis")
	}
	analysis.Normalize()

	timelineJSON, err := json.Marshal(analysis.TimelineEvents)
	if err != nil {
		return fmt.Errorf("marshal timeline: %w", err)
	}
	locationsJSON, err := json.Marshal(analysis.GeographicLocations)
	if err != nil {
		return fmt.Errorf("marshal locations: %w", err)
	}
	conceptsJSON, err := json.Marshal(analysis.KeyConcepts)
	if err != nil {
		return fmt.Errorf("marshal concepts: %w", err)
	}
	resourcesJSON, err := json.Marshal(analysis.ExternalResources)
	if err != nil {
		return fmt.Errorf("marshal resources: %w", err)
	}

	prefix := text
	if len(prefix) > analysisTextPrefixLimit {
		cut := analysisTextPrefixLimit
		for cut > 0 && !utf8.RuneStart(prefix[cut]) {
			cut--
		}
		prefix = prefix[:cut]
	}

	now := time.Now().UTC()
	_, err = c.db.Exec(`
		INSERT INTO analysis_cache (
			id, text_hash, language, original_text,
			cultural_origin, cross_cultural_connections, modern_analogy,
			timeline_events, geographic_locations, key_concepts,
			external_resources, hit_count, created_at, last_accessed
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0, ?, ?)
		ON CONFLICT (text_hash, language) DO UPDATE SET
			original_text = excluded.original_text,
			cultural_origin = excluded.cultural_origin,
			cross_cultural_connections = excluded.cross_cultural_connections,
			modern_analogy = excluded.modern_analogy,
			timeline_events = excluded.timeline_events,
			geographic_locations = excluded.geographic_locations,
			key_concepts = excluded.key_concepts,
			external_resources = excluded.external_resources,
			hit_count = 0,
			created_at = excluded.created_at,
			last_accessed = excluded.last_accessed`,
		uuid.New().String(), TextHash(text, language), language, prefix,
		analysis.CulturalOrigin, analysis.CrossCulturalConnections,
		analysis.ModernAnalogy, string(timelineJSON), string(locationsJSON),
		string(conceptsJSON), string(resourcesJSON), now, now,
	)
	if err != nil {
		return fmt.Errorf("upsert analysis: %w", err)
	}
	return nil
}

// CacheStats aggregates analysis-cache bookkeeping. Expired rows still
// count until Purge removes them.
type CacheStats struct {
	TotalEntries     int64   `json:"total_cached_entries"`
	TotalHits        int64   `json:"total_cache_hits"`
	Languages        int64   `json:"languages_cached"`
	AvgHitsPerEntry  float64 `json:"avg_hits_per_entry"`
	MaxHits          int64   `json:"max_hits"`
	EntriesLast7Days int64   `json:"entries_last_7_days"`
	ActiveToday      int64   `json:"active_today"`
	HitRate          float64 `json:"cache_hit_rate"`
}

// Stats returns aggregate counts over the whole table.
func (c *AnalysisCache) Stats() (*CacheStats, error) {
	stats := &CacheStats{}

	err := c.db.QueryRow(`
		SELECT COUNT(*),
		       COALESCE(SUM(hit_count), 0),
		       COUNT(DISTINCT language),
		       COALESCE(AVG(hit_count), 0),
		       COALESCE(MAX(hit_count), 0)
		FROM analysis_cache`).Scan(
		&stats.TotalEntries, &stats.TotalHits, &stats.Languages,
		&stats.AvgHitsPerEntry, &stats.MaxHits,
	)
	if err != nil {
		return nil, fmt.Errorf("cache stats: %w", err)
	}

	now := time.Now().UTC()
	weekAgo := now.AddDate(0, 0, -7)
	if err := c.db.QueryRow(
		`SELECT COUNT(*) FROM analysis_cache WHERE created_at > ?`, weekAgo,
	).Scan(&stats.EntriesLast7Days); err != nil {
		return nil, fmt.Errorf("cache stats: %w", err)
	}

	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if err := c.db.QueryRow(
		`SELECT COUNT(*) FROM analysis_cache WHERE last_accessed >= ?`, startOfDay,
	).Scan(&stats.ActiveToday); err != nil {
		return nil, fmt.Errorf("cache stats: %w", err)
	}

	if stats.TotalEntries > 0 {
		stats.HitRate = float64(stats.TotalHits) / float64(stats.TotalEntries) * 100
	}

	return stats, nil
}

// Purge removes entries older than maxAgeDays and returns how many were
// removed. Deletes are transactional, so concurrent reads never observe a
// half-deleted row.
func (c *AnalysisCache) Purge(maxAgeDays int) (int64, error) {
	if maxAgeDays <= 0 {
		maxAgeDays = c.ttlDays
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -maxAgeDays)

	result, err := c.db.Exec(`DELETE FROM analysis_cache WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge analysis cache: %w", err)
	}
	return result.RowsAffected()
}

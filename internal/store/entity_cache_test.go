package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkravets/erudite/internal/model"
)

func sampleRecord(name string) *model.CombinedRecord {
	return &model.CombinedRecord{
		EntityName:           name,
		EntityType:           model.TypeWorkOfArt,
		Summary:              "War and Peace is a novel by Leo Tolstoy.",
		Description:          "novel by Leo Tolstoy",
		CanonicalURL:         "https://en.wikipedia.org/wiki/War_and_Peace",
		CulturalSignificance: model.SignificanceLiterary,
		Confidence:           model.ConfidenceVeryHigh,
		ConfidenceDetail:     "cross-verified by 3 sources",
		SourcesConsulted:     []string{"Google Knowledge Graph", "DBpedia", "Wikidata"},
		WikidataID:           "Q161531",
		EncyclopediaURI:      "http://dbpedia.org/resource/War_and_Peace",
		Literary: &model.LiteraryInfo{
			Title:            "War and Peace",
			Authors:          []string{"Leo Tolstoy"},
			FirstPublishYear: 1869,
		},
		KGScore:     512.3,
		RetrievedAt: time.Now().UTC().Truncate(time.Second),
	}
}

func TestEntityCache_RoundTrip(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, NewEntityCache(s, time.Minute).Put(sampleRecord("War and Peace")))

	// A fresh cache instance reads through to the database.
	got, found := NewEntityCache(s, time.Minute).Get("War and Peace", model.TypeWorkOfArt)
	require.True(t, found)

	want := sampleRecord("War and Peace")
	assert.Equal(t, want.Summary, got.Summary)
	assert.Equal(t, want.Description, got.Description)
	assert.Equal(t, want.CanonicalURL, got.CanonicalURL)
	assert.Equal(t, want.CulturalSignificance, got.CulturalSignificance)
	assert.Equal(t, want.Confidence, got.Confidence)
	assert.Equal(t, want.ConfidenceDetail, got.ConfidenceDetail)
	assert.Equal(t, want.SourcesConsulted, got.SourcesConsulted)
	assert.Equal(t, want.WikidataID, got.WikidataID)
	assert.Equal(t, want.EncyclopediaURI, got.EncyclopediaURI)
	assert.Equal(t, want.KGScore, got.KGScore)
	require.NotNil(t, got.Literary)
	assert.Equal(t, want.Literary.Authors, got.Literary.Authors)
}

func TestEntityCache_Miss(t *testing.T) {
	cache := NewEntityCache(newTestStore(t), time.Minute)

	_, found := cache.Get("Nobody", model.TypePerson)
	assert.False(t, found)
}

func TestEntityCache_KeyIncludesType(t *testing.T) {
	s := newTestStore(t)
	cache := NewEntityCache(s, time.Minute)

	rec := sampleRecord("Mercury")
	rec.EntityType = model.TypePerson
	require.NoError(t, cache.Put(rec))

	_, found := cache.Get("Mercury", model.TypeLocation)
	assert.False(t, found)

	_, found = cache.Get("Mercury", model.TypePerson)
	assert.True(t, found)
}

func TestEntityCache_UpsertLastWriteWins(t *testing.T) {
	s := newTestStore(t)
	cache := NewEntityCache(s, time.Minute)

	first := sampleRecord("Kyoto")
	first.EntityType = model.TypeGPE
	first.Summary = "first summary"
	require.NoError(t, cache.Put(first))

	second := sampleRecord("Kyoto")
	second.EntityType = model.TypeGPE
	second.Summary = "second summary"
	second.Confidence = model.ConfidenceHighVerified
	require.NoError(t, cache.Put(second))

	var count int
	require.NoError(t, s.db.QueryRow(
		`SELECT COUNT(*) FROM entity_cache WHERE entity_name = 'Kyoto'`,
	).Scan(&count))
	assert.Equal(t, 1, count)

	got, found := NewEntityCache(s, time.Minute).Get("Kyoto", model.TypeGPE)
	require.True(t, found)
	assert.Equal(t, "second summary", got.Summary)
	assert.Equal(t, model.ConfidenceHighVerified, got.Confidence)
}

func TestEntityCache_PurgeOlderThan(t *testing.T) {
	s := newTestStore(t)
	cache := NewEntityCache(s, time.Minute)

	old := sampleRecord("Old Entity")
	fresh := sampleRecord("Fresh Entity")
	require.NoError(t, cache.Put(old))
	require.NoError(t, cache.Put(fresh))

	// Backdate one row past the retention window.
	_, err := s.db.Exec(
		`UPDATE entity_cache SET created_at = ? WHERE entity_name = 'Old Entity'`,
		time.Now().UTC().AddDate(0, 0, -31),
	)
	require.NoError(t, err)

	removed, err := cache.PurgeOlderThan(30)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	// The fresh row survives; the old one is gone from the database.
	verify := NewEntityCache(s, time.Minute)
	_, found := verify.Get("Fresh Entity", model.TypeWorkOfArt)
	assert.True(t, found)
	_, found = verify.Get("Old Entity", model.TypeWorkOfArt)
	assert.False(t, found)
}

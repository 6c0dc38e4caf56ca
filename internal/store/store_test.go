package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mkravets/erudite/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func sampleAnalysis() *model.CulturalAnalysis {
	return &model.CulturalAnalysis{
		CulturalOrigin:           "Ancient Greek epic tradition",
		CrossCulturalConnections: "Influenced Roman and later European literature",
		ModernAnalogy:            "A blockbuster franchise of its day",
		TimelineEvents: []model.TimelineEvent{
			{Year: "-0750", Title: "Composition", Description: "Oral tradition written down"},
		},
		GeographicLocations: []model.GeographicLocation{
			{Name: "Troy", Coordinates: model.Coordinates{Lat: 39.957, Lng: 26.239}, ModernName: "Hisarlik"},
		},
		KeyConcepts: []model.KeyConcept{
			{Term: "xenia", Definition: "ritualized guest-friendship"},
		},
		ExternalResources: map[string][]string{
			"further_reading": {"https://example.com/iliad"},
		},
	}
}

func TestOpen_SchemaSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := Open(path)
	require.NoError(t, err)

	cache := NewAnalysisCache(s, 30)
	require.NoError(t, cache.Put("some text", "en", sampleAnalysis()))
	require.NoError(t, s.Close())

	s2, err := Open(path)
	require.NoError(t, err)
	defer func() { _ = s2.Close() }()

	_, found := NewAnalysisCache(s2, 30).Get("some text", "en")
	require.True(t, found)
}

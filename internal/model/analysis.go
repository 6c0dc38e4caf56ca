package model

// TimelineEvent is one dated event in a cultural analysis.
type TimelineEvent struct {
	Year         string `json:"year"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	Significance string `json:"significance,omitempty"`
}

// Coordinates is a latitude/longitude pair.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// GeographicLocation is one place referenced by a cultural analysis.
type GeographicLocation struct {
	Name         string      `json:"name"`
	Coordinates  Coordinates `json:"coordinates"`
	Significance string      `json:"significance,omitempty"`
	ModernName   string      `json:"modern_name,omitempty"`
}

// KeyConcept explains one term from the analyzed text.
type KeyConcept struct {
	Term           string `json:"term"`
	Definition     string `json:"definition"`
	Context        string `json:"context,omitempty"`
	ModernParallel string `json:"modern_parallel,omitempty"`
}

// CulturalAnalysis is the narrative cultural-context result produced by
// the text analyzer for one passage.
type CulturalAnalysis struct {
	CulturalOrigin           string               `json:"cultural_origin"`
	CrossCulturalConnections string               `json:"cross_cultural_connections"`
	ModernAnalogy            string               `json:"modern_analogy"`
	TimelineEvents           []TimelineEvent      `json:"timeline_events"`
	GeographicLocations      []GeographicLocation `json:"geographic_locations"`
	KeyConcepts              []KeyConcept         `json:"key_concepts"`
	ExternalResources        map[string][]string  `json:"external_resources"`
}

// Normalize fills nil collections so cached and fresh results marshal
// identically.
func (a *CulturalAnalysis) Normalize() {
	if a.TimelineEvents == nil {
		a.TimelineEvents = []TimelineEvent{}
	}
	if a.GeographicLocations == nil {
		a.GeographicLocations = []GeographicLocation{}
	}
	if a.KeyConcepts == nil {
		a.KeyConcepts = []KeyConcept{}
	}
	if a.ExternalResources == nil {
		a.ExternalResources = map[string][]string{}
	}
}

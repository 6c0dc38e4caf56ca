package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// Confidence grades how well a combined record is corroborated.
// The zero value means no source responded at all.
type Confidence int

const (
	ConfidenceNone Confidence = iota
	ConfidenceLow
	ConfidenceMedium
	ConfidenceHigh
	ConfidenceHighVerified
	ConfidenceVeryHigh
)

var confidenceLabels = map[Confidence]string{
	ConfidenceNone:         "none",
	ConfidenceLow:          "low",
	ConfidenceMedium:       "medium",
	ConfidenceHigh:         "high",
	ConfidenceHighVerified: "high (verified)",
	ConfidenceVeryHigh:     "very high (cross-verified)",
}

// String returns the canonical label for the tier.
func (c Confidence) String() string {
	if label, ok := confidenceLabels[c]; ok {
		return label
	}
	return "none"
}

// ParseConfidence maps a stored label back to its tier.
func ParseConfidence(label string) (Confidence, error) {
	for tier, l := range confidenceLabels {
		if l == label {
			return tier, nil
		}
	}
	return ConfidenceNone, fmt.Errorf("unknown confidence label: %q", label)
}

// MarshalJSON renders the tier as its canonical label.
func (c Confidence) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

// UnmarshalJSON parses the canonical label form.
func (c *Confidence) UnmarshalJSON(data []byte) error {
	var label string
	if err := json.Unmarshal(data, &label); err != nil {
		return err
	}
	tier, err := ParseConfidence(label)
	if err != nil {
		return err
	}
	*c = tier
	return nil
}

// Significance is the thematic category of an enriched entity.
type Significance string

const (
	SignificanceLiterary      Significance = "literary"
	SignificanceBiographical  Significance = "biographical"
	SignificanceGeographical  Significance = "geographical"
	SignificanceHistorical    Significance = "historical"
	SignificanceMythological  Significance = "mythological"
	SignificancePhilosophical Significance = "philosophical"
	SignificanceReligious     Significance = "religious"
	SignificanceArtistic      Significance = "artistic"
	SignificanceGeneral       Significance = "general"
)

// NoInformationFound is the summary sentinel used when every provider
// came back empty.
const NoInformationFound = "No information found in authoritative sources"

// LiteraryInfo carries catalog data for a literary work.
type LiteraryInfo struct {
	Title            string   `json:"title"`
	Authors          []string `json:"authors,omitempty"`
	FirstPublishYear int      `json:"first_publish_year,omitempty"`
	Subjects         []string `json:"subjects,omitempty"`
	ISBNs            []string `json:"isbns,omitempty"`
	CoverURL         string   `json:"cover_url,omitempty"`
	URL              string   `json:"url,omitempty"`
}

// PartialRecord is one provider's normalized, possibly incomplete
// contribution to an entity lookup. It lives only for the duration of
// a single aggregation call.
type PartialRecord struct {
	EntityName   string
	Source       string // provider display name
	Description  string
	LongFormText string
	CanonicalURL string
	ImageURL     string
	TypeTags     []string
	RawScore     float64
	WikidataID   string
	ResourceURI  string
	Literary     *LiteraryInfo
	RetrievedAt  time.Time
}

// CombinedRecord is the single merged result of an entity lookup.
type CombinedRecord struct {
	EntityName           string       `json:"entity_name"`
	EntityType           EntityType   `json:"entity_type"`
	Summary              string       `json:"summary"`
	Description          string       `json:"description,omitempty"`
	CanonicalURL         string       `json:"url,omitempty"`
	ImageURL             string       `json:"image_url,omitempty"`
	CulturalSignificance Significance `json:"cultural_significance"`
	Confidence           Confidence   `json:"confidence"`
	ConfidenceDetail     string       `json:"confidence_detail,omitempty"`
	SourcesConsulted     []string     `json:"sources_consulted"`

	// Provider-specific identifiers.
	WikidataID      string        `json:"wikidata_id,omitempty"`
	EncyclopediaURI string        `json:"encyclopedia_uri,omitempty"`
	Literary        *LiteraryInfo `json:"literary_info,omitempty"`
	KGScore         float64       `json:"kg_score,omitempty"`

	RetrievedAt time.Time `json:"retrieved_at"`
}

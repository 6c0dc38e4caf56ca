package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/mkravets/erudite/internal/model"
)

const knowledgeGraphEndpoint = "https://kgsearch.googleapis.com/v1/entities:search"

// KnowledgeGraph queries the Google Knowledge Graph search API. It is the
// highest-priority source and requires an API key; without one every lookup
// returns no data.
type KnowledgeGraph struct {
	client   *http.Client
	apiKey   string
	endpoint string
}

// NewKnowledgeGraph creates the Knowledge Graph adapter.
func NewKnowledgeGraph(client *http.Client, apiKey string) *KnowledgeGraph {
	return &KnowledgeGraph{
		client:   client,
		apiKey:   apiKey,
		endpoint: knowledgeGraphEndpoint,
	}
}

// Name returns the provider display name.
func (p *KnowledgeGraph) Name() string {
	return SourceKnowledgeGraph
}

// schemaOrgType maps recognizer entity labels to schema.org type hints.
func schemaOrgType(entityType model.EntityType) string {
	switch entityType {
	case model.TypePerson:
		return "Person"
	case model.TypeOrg:
		return "Organization"
	case model.TypeGPE, model.TypeLocation:
		return "Place"
	case model.TypeEvent:
		return "Event"
	case model.TypeWorkOfArt:
		return "CreativeWork"
	default:
		return "Thing"
	}
}

type kgResponse struct {
	ItemListElement []struct {
		Result struct {
			Name                string   `json:"name"`
			Description         string   `json:"description"`
			Types               []string `json:"@type"`
			DetailedDescription struct {
				ArticleBody string `json:"articleBody"`
				URL         string `json:"url"`
			} `json:"detailedDescription"`
			Image struct {
				ContentURL string `json:"contentUrl"`
			} `json:"image"`
		} `json:"result"`
		ResultScore float64 `json:"resultScore"`
	} `json:"itemListElement"`
}

// Lookup searches the Knowledge Graph for the entity.
func (p *KnowledgeGraph) Lookup(ctx context.Context, entityName string, entityType model.EntityType) (*model.PartialRecord, error) {
	if p.apiKey == "" {
		return nil, nil
	}

	params := url.Values{}
	params.Set("query", entityName)
	params.Set("key", p.apiKey)
	params.Set("limit", "1")
	params.Set("types", schemaOrgType(entityType))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("knowledge graph: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, nil
	}

	var data kgResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, nil
	}

	if len(data.ItemListElement) == 0 {
		return nil, nil
	}

	element := data.ItemListElement[0]
	item := element.Result

	name := item.Name
	if name == "" {
		name = entityName
	}

	return &model.PartialRecord{
		EntityName:   name,
		Source:       SourceKnowledgeGraph,
		Description:  item.Description,
		LongFormText: item.DetailedDescription.ArticleBody,
		CanonicalURL: item.DetailedDescription.URL,
		ImageURL:     item.Image.ContentURL,
		TypeTags:     item.Types,
		RawScore:     element.ResultScore,
		RetrievedAt:  time.Now().UTC(),
	}, nil
}

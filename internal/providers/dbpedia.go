package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/mkravets/erudite/internal/model"
)

const dbpediaEndpoint = "https://dbpedia.org/sparql"

// abstractLimit caps the DBpedia abstract carried into the merge; full
// abstracts can run to several paragraphs.
const abstractLimit = 500

// DBpedia queries the DBpedia SPARQL endpoint for the English abstract of
// the resource matching the entity name.
type DBpedia struct {
	client   *http.Client
	endpoint string
}

// NewDBpedia creates the DBpedia adapter.
func NewDBpedia(client *http.Client) *DBpedia {
	return &DBpedia{
		client:   client,
		endpoint: dbpediaEndpoint,
	}
}

// Name returns the provider display name.
func (p *DBpedia) Name() string {
	return SourceDBpedia
}

type sparqlResponse struct {
	Results struct {
		Bindings []map[string]struct {
			Value string `json:"value"`
		} `json:"bindings"`
	} `json:"results"`
}

// Lookup fetches the English abstract for the entity's DBpedia resource.
func (p *DBpedia) Lookup(ctx context.Context, entityName string, _ model.EntityType) (*model.PartialRecord, error) {
	resourceURI := "http://dbpedia.org/resource/" + strings.ReplaceAll(entityName, " ", "_")

	query := fmt.Sprintf(`
SELECT DISTINCT ?abstract WHERE {
    <%s> dbo:abstract ?abstract .
    FILTER (lang(?abstract) = 'en')
} LIMIT 1`, resourceURI)

	params := url.Values{}
	params.Set("query", query)
	params.Set("format", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("dbpedia: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, nil
	}

	var data sparqlResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, nil
	}

	if len(data.Results.Bindings) == 0 {
		return nil, nil
	}

	abstract := data.Results.Bindings[0]["abstract"].Value
	if abstract == "" {
		return nil, nil
	}
	if len(abstract) > abstractLimit {
		cut := abstractLimit
		for cut > 0 && !utf8.RuneStart(abstract[cut]) {
			cut--
		}
		abstract = abstract[:cut]
	}

	return &model.PartialRecord{
		EntityName:   entityName,
		Source:       SourceDBpedia,
		LongFormText: abstract,
		ResourceURI:  resourceURI,
		RetrievedAt:  time.Now().UTC(),
	}, nil
}

package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mkravets/erudite/internal/model"
)

const wikidataEndpoint = "https://www.wikidata.org/w/api.php"

// errNoData marks a non-2xx or unparseable response; callers translate it
// into a nil record rather than surfacing it.
var errNoData = errors.New("no data")

// Wikidata performs a two-step lookup against the Wikidata action API:
// a name search for the entity id, then a detail fetch for labels,
// descriptions and sitelinks.
type Wikidata struct {
	client   *http.Client
	endpoint string
}

// NewWikidata creates the Wikidata adapter.
func NewWikidata(client *http.Client) *Wikidata {
	return &Wikidata{
		client:   client,
		endpoint: wikidataEndpoint,
	}
}

// Name returns the provider display name.
func (p *Wikidata) Name() string {
	return SourceWikidata
}

type wikidataSearchResponse struct {
	Search []struct {
		ID          string `json:"id"`
		Label       string `json:"label"`
		Description string `json:"description"`
	} `json:"search"`
}

type wikidataEntityResponse struct {
	Entities map[string]struct {
		Labels map[string]struct {
			Value string `json:"value"`
		} `json:"labels"`
		Descriptions map[string]struct {
			Value string `json:"value"`
		} `json:"descriptions"`
		Sitelinks map[string]struct {
			Title string `json:"title"`
		} `json:"sitelinks"`
	} `json:"entities"`
}

// Lookup searches Wikidata for the entity and fetches its details.
func (p *Wikidata) Lookup(ctx context.Context, entityName string, _ model.EntityType) (*model.PartialRecord, error) {
	entityID, err := p.search(ctx, entityName)
	if err != nil {
		return nil, err
	}
	if entityID == "" {
		return nil, nil
	}

	params := url.Values{}
	params.Set("action", "wbgetentities")
	params.Set("ids", entityID)
	params.Set("format", "json")
	params.Set("languages", "en")
	params.Set("props", "labels|descriptions|sitelinks")

	var data wikidataEntityResponse
	if err := p.get(ctx, params, &data); err != nil {
		if errors.Is(err, errNoData) {
			return nil, nil
		}
		return nil, err
	}

	entity, ok := data.Entities[entityID]
	if !ok {
		return nil, nil
	}

	// Prefer the English Wikipedia article as canonical URL; fall back to
	// the Wikidata page itself.
	canonicalURL := ""
	if sitelink, ok := entity.Sitelinks["enwiki"]; ok && sitelink.Title != "" {
		canonicalURL = "https://en.wikipedia.org/wiki/" + strings.ReplaceAll(sitelink.Title, " ", "_")
	}

	return &model.PartialRecord{
		EntityName:   entityName,
		Source:       SourceWikidata,
		Description:  entity.Descriptions["en"].Value,
		CanonicalURL: canonicalURL,
		WikidataID:   entityID,
		RetrievedAt:  time.Now().UTC(),
	}, nil
}

// search resolves the entity name to a Wikidata id, or "" when unknown.
func (p *Wikidata) search(ctx context.Context, entityName string) (string, error) {
	params := url.Values{}
	params.Set("action", "wbsearchentities")
	params.Set("search", entityName)
	params.Set("language", "en")
	params.Set("format", "json")
	params.Set("limit", "1")

	var data wikidataSearchResponse
	if err := p.get(ctx, params, &data); err != nil {
		if errors.Is(err, errNoData) {
			return "", nil
		}
		return "", err
	}

	if len(data.Search) == 0 {
		return "", nil
	}
	return data.Search[0].ID, nil
}

func (p *Wikidata) get(ctx context.Context, params url.Values, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("wikidata: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return errNoData
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errNoData
	}
	return nil
}

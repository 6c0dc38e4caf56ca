package enrich

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
	"github.com/mkravets/erudite/internal/providers"
)

const wikipediaAPIURL = "https://en.wikipedia.org/w/api.php"

const (
	summaryMaxSentences = 3
	summaryMaxChars     = 300
	searchLimit         = 5
	maxCategories       = 5
)

// culturalCategoryWords select which encyclopedia categories are worth
// keeping on a fallback record.
var culturalCategoryWords = []string{
	"history", "historical", "culture", "cultural", "literature",
	"literary", "mythology", "mythological", "ancient", "classical",
	"philosophy", "philosophical", "religion", "religious", "art",
	"architecture", "tradition", "folklore", "legend",
}

// Fallback is the single-provider enrichment path used when the aggregator
// finds nothing: a direct Wikipedia lookup with a fuzzy-search retry, and a
// structured-data-only lookup as the last resort.
type Fallback struct {
	client   *http.Client
	wikidata providers.Provider
	apiURL   string
}

// NewFallback creates the fallback enricher. wikidata may be nil, which
// disables the structured-data last resort.
func NewFallback(client *http.Client, wikidata providers.Provider) *Fallback {
	return &Fallback{
		client:   client,
		wikidata: wikidata,
		apiURL:   wikipediaAPIURL,
	}
}

// Enrich builds a record from Wikipedia alone. It never fails: on a total
// miss it returns an empty record whose summary stays blank so the caller
// skips caching and a later lookup can retry.
func (f *Fallback) Enrich(ctx context.Context, entityName string, entityType model.EntityType) *model.CombinedRecord {
	rec := &model.CombinedRecord{
		EntityName:           entityName,
		EntityType:           entityType,
		CulturalSignificance: model.SignificanceGeneral,
		RetrievedAt:          time.Now().UTC(),
	}

	page := f.fetchPage(ctx, entityName)
	if page == nil {
		if titles := f.search(ctx, entityName); len(titles) > 0 {
			page = f.fetchPage(ctx, titles[0])
		}
	}

	if page != nil {
		rec.Summary = extractSummary(page.Extract)
		rec.CanonicalURL = page.URL
		rec.SourcesConsulted = []string{providers.SourceWikipedia}
		rec.Confidence = model.ConfidenceMedium
		rec.ConfidenceDetail = "Wikipedia only"
		rec.CulturalSignificance = classifyFromCategories(entityType, culturalCategories(page.Categories))
		return rec
	}

	// Last resort: structured data only.
	if f.wikidata != nil {
		if partial, err := f.wikidata.Lookup(ctx, entityName, entityType); err == nil && partial != nil {
			summary := partial.Description
			if summary == "" {
				summary = "No description available"
			}
			rec.Summary = summary
			rec.CanonicalURL = partial.CanonicalURL
			if rec.CanonicalURL == "" && partial.WikidataID != "" {
				rec.CanonicalURL = "https://www.wikidata.org/wiki/" + partial.WikidataID
			}
			rec.WikidataID = partial.WikidataID
			rec.SourcesConsulted = []string{providers.SourceWikidata}
			rec.Confidence = model.ConfidenceLow
			rec.ConfidenceDetail = "Wikidata only"
			rec.CulturalSignificance = significanceForType(entityType)
			return rec
		}
	}

	rec.Confidence = model.ConfidenceNone
	return rec
}

type wikiPage struct {
	Extract    string
	Categories []string
	URL        string
}

type wikiQueryResponse struct {
	Query struct {
		Pages map[string]struct {
			PageID     int64  `json:"pageid"`
			Title      string `json:"title"`
			Extract    string `json:"extract"`
			FullURL    string `json:"fullurl"`
			Categories []struct {
				Title string `json:"title"`
			} `json:"categories"`
		} `json:"pages"`
	} `json:"query"`
}

// fetchPage fetches the intro extract, categories and canonical URL for an
// exact title, or nil when the page does not exist.
func (f *Fallback) fetchPage(ctx context.Context, title string) *wikiPage {
	params := url.Values{}
	params.Set("action", "query")
	params.Set("prop", "extracts|categories|info")
	params.Set("explaintext", "1")
	params.Set("exintro", "1")
	params.Set("redirects", "1")
	params.Set("inprop", "url")
	params.Set("clshow", "!hidden")
	params.Set("cllimit", "50")
	params.Set("titles", title)
	params.Set("format", "json")

	var data wikiQueryResponse
	if !f.get(ctx, params, &data) {
		return nil
	}

	for _, page := range data.Query.Pages {
		if page.PageID == 0 || page.Extract == "" {
			continue
		}
		result := &wikiPage{
			Extract: page.Extract,
			URL:     page.FullURL,
		}
		for _, cat := range page.Categories {
			result.Categories = append(result.Categories, strings.TrimPrefix(cat.Title, "Category:"))
		}
		return result
	}
	return nil
}

// search runs a bounded fuzzy title search and returns up to searchLimit
// matching titles.
func (f *Fallback) search(ctx context.Context, query string) []string {
	params := url.Values{}
	params.Set("action", "opensearch")
	params.Set("search", query)
	params.Set("limit", fmt.Sprintf("%d", searchLimit))
	params.Set("format", "json")

	// The opensearch response is a positional array:
	// [query, [titles], [descriptions], [urls]].
	var raw []json.RawMessage
	if !f.get(ctx, params, &raw) || len(raw) < 2 {
		return nil
	}

	var titles []string
	if err := json.Unmarshal(raw[1], &titles); err != nil {
		return nil
	}
	return titles
}

// get performs one API call, reporting any failure as "no data".
func (f *Fallback) get(ctx context.Context, params url.Values, out interface{}) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.apiURL+"?"+params.Encode(), nil)
	if err != nil {
		return false
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return false
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return false
	}
	return json.NewDecoder(resp.Body).Decode(out) == nil
}

// extractSummary keeps the first few sentences of an article intro, capped
// for tooltip-sized display.
func extractSummary(text string) string {
	if text == "" {
		return ""
	}

	sentences := strings.Split(text, ". ")
	if len(sentences) > summaryMaxSentences {
		sentences = sentences[:summaryMaxSentences]
	}
	summary := strings.Join(sentences, ". ")
	if !strings.HasSuffix(summary, ".") {
		summary += "."
	}

	if len(summary) > summaryMaxChars {
		cut := summaryMaxChars - 3
		for cut > 0 && !utf8.RuneStart(summary[cut]) {
			cut--
		}
		summary = summary[:cut] + "..."
	}
	return summary
}

// culturalCategories filters category names down to the culturally relevant
// ones, keeping at most maxCategories.
func culturalCategories(categories []string) []string {
	var relevant []string
	for _, cat := range categories {
		if containsAny(strings.ToLower(cat), culturalCategoryWords) {
			relevant = append(relevant, cat)
			if len(relevant) == maxCategories {
				break
			}
		}
	}
	return relevant
}

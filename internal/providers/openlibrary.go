package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mkravets/erudite/internal/model"
)

const openLibraryEndpoint = "https://openlibrary.org/search.json"

// maxSubjects caps how many subject tags are carried over per work.
const maxSubjects = 5

// OpenLibrary searches the Open Library catalog by title. It is only
// consulted for literary works and contributes catalog metadata rather than
// a narrative summary.
type OpenLibrary struct {
	client   *http.Client
	endpoint string
}

// NewOpenLibrary creates the Open Library adapter.
func NewOpenLibrary(client *http.Client) *OpenLibrary {
	return &OpenLibrary{
		client:   client,
		endpoint: openLibraryEndpoint,
	}
}

// Name returns the provider display name.
func (p *OpenLibrary) Name() string {
	return SourceOpenLibrary
}

type openLibraryResponse struct {
	Docs []struct {
		Title            string   `json:"title"`
		AuthorName       []string `json:"author_name"`
		FirstPublishYear int      `json:"first_publish_year"`
		Subject          []string `json:"subject"`
		ISBN             []string `json:"isbn"`
		CoverID          int64    `json:"cover_i"`
		Key              string   `json:"key"`
	} `json:"docs"`
}

// Lookup searches the catalog for a work matching the entity name.
func (p *OpenLibrary) Lookup(ctx context.Context, entityName string, _ model.EntityType) (*model.PartialRecord, error) {
	params := url.Values{}
	params.Set("title", entityName)
	params.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("openlibrary: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, nil
	}

	var data openLibraryResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, nil
	}

	if len(data.Docs) == 0 {
		return nil, nil
	}

	book := data.Docs[0]

	title := book.Title
	if title == "" {
		title = entityName
	}

	subjects := book.Subject
	if len(subjects) > maxSubjects {
		subjects = subjects[:maxSubjects]
	}

	info := &model.LiteraryInfo{
		Title:            title,
		Authors:          book.AuthorName,
		FirstPublishYear: book.FirstPublishYear,
		Subjects:         subjects,
		ISBNs:            book.ISBN,
		URL:              "https://openlibrary.org" + book.Key,
	}
	if book.CoverID > 0 {
		info.CoverURL = fmt.Sprintf("https://covers.openlibrary.org/b/id/%d-M.jpg", book.CoverID)
	}

	return &model.PartialRecord{
		EntityName:   entityName,
		Source:       SourceOpenLibrary,
		Description:  catalogDescription(info),
		CanonicalURL: info.URL,
		ImageURL:     info.CoverURL,
		TypeTags:     subjects,
		Literary:     info,
		RetrievedAt:  time.Now().UTC(),
	}, nil
}

// catalogDescription builds a one-line description from catalog metadata,
// used only when no higher-priority provider supplied one.
func catalogDescription(info *model.LiteraryInfo) string {
	var b strings.Builder
	b.WriteString(info.Title)
	if len(info.Authors) > 0 {
		b.WriteString(" by ")
		b.WriteString(strings.Join(info.Authors, ", "))
	}
	if info.FirstPublishYear > 0 {
		fmt.Fprintf(&b, " (first published %d)", info.FirstPublishYear)
	}
	return b.String()
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"

	"github.com/pdiddy/citenet/internal/httputil"
	"github.com/pdiddy/citenet/internal/ident"
	"github.com/pdiddy/citenet/pkg/types"
)

// API bases. Declared as vars so tests can substitute httptest servers.
var (
	crossrefWorksBase = "https://api.crossref.org/works"
	openCitationsBase = "https://api.opencitations.net/index/v2"
)

// ocDOIPattern extracts a DOI from OpenCitations id strings, which look
// like "omid:br/06101 doi:10.1108/jd-12-2013-0166 openalex:W123".
var ocDOIPattern = regexp.MustCompile(`doi:(10\.\d{4,9}/[^\s]+)`)

// CrossRefClient resolves DOIs. Metadata comes from the CrossRef works
// API; reference and citation edges come from the OpenCitations index,
// since CrossRef exposes citing works only to Cited-by members.
type CrossRefClient struct {
	HTTP *httputil.Client

	// Mailto is the email for CrossRef polite-pool access.
	Mailto string

	// OpenCitationsKey is sent as the authorization header to the
	// OpenCitations index API.
	OpenCitationsKey string
}

// Name returns the source identifier.
func (c *CrossRefClient) Name() string { return "crossref" }

// FetchByID retrieves a DOI-keyed record: CrossRef metadata enriched
// with OpenCitations reference and citation edges.
func (c *CrossRefClient) FetchByID(ctx context.Context, kind ident.Kind, value string) (*types.PublicationRecord, error) {
	if kind != ident.KindDOI {
		return nil, ErrUnsupported
	}

	work, err := c.fetchWork(ctx, value)
	if err != nil {
		return nil, err
	}

	rec := c.recordFromWork(value, work)
	if err := c.enrichEdges(ctx, value, rec); err != nil {
		return nil, err
	}
	rec.Normalize()
	return rec, nil
}

// SearchByTitle queries the CrossRef works search and resolves the
// first DOI-bearing result, including its OpenCitations edges.
func (c *CrossRefClient) SearchByTitle(ctx context.Context, title string) (*types.PublicationRecord, error) {
	params := url.Values{
		"query.title": {title},
		"rows":        {"10"},
	}
	if c.Mailto != "" {
		params.Set("mailto", c.Mailto)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, crossrefWorksBase+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.HTTP.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("CrossRef search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("CrossRef search returned HTTP %d", resp.StatusCode)
	}

	var sr crossrefSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("parsing CrossRef search response: %w", err)
	}

	for _, item := range sr.Message.Items {
		if item.DOI == "" {
			continue
		}
		_, doi := ident.Classify(item.DOI)
		rec := c.recordFromWork(doi, &item)
		if err := c.enrichEdges(ctx, doi, rec); err != nil {
			return nil, err
		}
		rec.Normalize()
		return rec, nil
	}
	return nil, ErrNotFound
}

// fetchWork retrieves one work record from the CrossRef works API.
func (c *CrossRefClient) fetchWork(ctx context.Context, doi string) (*crossrefWork, error) {
	apiURL := crossrefWorksBase + "/" + url.PathEscape(doi)
	if c.Mailto != "" {
		apiURL += "?mailto=" + url.QueryEscape(c.Mailto)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.HTTP.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("CrossRef API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("CrossRef API returned HTTP %d", resp.StatusCode)
	}

	var cr crossrefResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return nil, fmt.Errorf("parsing CrossRef response: %w", err)
	}
	return &cr.Message, nil
}

// recordFromWork normalizes a CrossRef work into a PublicationRecord.
func (c *CrossRefClient) recordFromWork(doi string, work *crossrefWork) *types.PublicationRecord {
	rec := &types.PublicationRecord{
		CanonicalID:    ident.Canonical(ident.KindDOI, doi),
		DOI:            doi,
		Abstract:       work.Abstract,
		CitationCount:  work.IsReferencedByCount,
		ReferenceCount: work.ReferenceCount,
		Source:         c.Name(),
	}
	if len(work.Title) > 0 {
		rec.Title = work.Title[0]
	}
	if len(work.ContainerTitle) > 0 {
		rec.Venue = work.ContainerTitle[0]
	}
	for _, a := range work.Author {
		name := a.Given
		if a.Family != "" {
			if name != "" {
				name += " "
			}
			name += a.Family
		}
		if name != "" {
			rec.Authors = append(rec.Authors, name)
		}
	}
	rec.Year = work.year()
	return rec
}

// enrichEdges populates References and Citations from the OpenCitations
// index API.
func (c *CrossRefClient) enrichEdges(ctx context.Context, doi string, rec *types.PublicationRecord) error {
	refs, err := c.fetchEdges(ctx, "references", doi, "cited")
	if err != nil {
		return err
	}
	cits, err := c.fetchEdges(ctx, "citations", doi, "citing")
	if err != nil {
		return err
	}
	rec.References = refs
	rec.Citations = cits
	return nil
}

// fetchEdges calls one OpenCitations endpoint and extracts canonical
// DOI ids from the named field of each row.
func (c *CrossRefClient) fetchEdges(ctx context.Context, endpoint, doi, field string) ([]string, error) {
	apiURL := fmt.Sprintf("%s/%s/doi:%s?format=json", openCitationsBase, endpoint, url.PathEscape(doi))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if c.OpenCitationsKey != "" {
		req.Header.Set("authorization", c.OpenCitationsKey)
	}

	resp, err := c.HTTP.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("OpenCitations %s request: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("OpenCitations %s returned HTTP %d", endpoint, resp.StatusCode)
	}

	var rows []map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return nil, fmt.Errorf("parsing OpenCitations %s response: %w", endpoint, err)
	}

	var ids []string
	for _, row := range rows {
		if m := ocDOIPattern.FindStringSubmatch(row[field]); m != nil {
			ids = append(ids, ident.Canonical(ident.KindDOI, m[1]))
		}
	}
	return ids, nil
}

// CrossRef API JSON structures.
type crossrefResponse struct {
	Message crossrefWork `json:"message"`
}

type crossrefSearchResponse struct {
	Message struct {
		Items []crossrefWork `json:"items"`
	} `json:"message"`
}

type crossrefWork struct {
	DOI                 string           `json:"DOI"`
	Title               []string         `json:"title"`
	Abstract            string           `json:"abstract"`
	ContainerTitle      []string         `json:"container-title"`
	Author              []crossrefAuthor `json:"author"`
	Issued              crossrefDate     `json:"issued"`
	Created             crossrefDate     `json:"created"`
	IsReferencedByCount int              `json:"is-referenced-by-count"`
	ReferenceCount      int              `json:"reference-count"`
}

type crossrefAuthor struct {
	Given  string `json:"given"`
	Family string `json:"family"`
}

type crossrefDate struct {
	DateParts [][]int `json:"date-parts"`
}

// year prefers the issued date and falls back to the deposit date.
func (w *crossrefWork) year() int {
	for _, d := range []crossrefDate{w.Issued, w.Created} {
		if len(d.DateParts) > 0 && len(d.DateParts[0]) > 0 && d.DateParts[0][0] > 0 {
			return d.DateParts[0][0]
		}
	}
	return 0
}

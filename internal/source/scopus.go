// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/pdiddy/citenet/internal/httputil"
	"github.com/pdiddy/citenet/internal/ident"
	"github.com/pdiddy/citenet/pkg/types"
)

// API bases. Declared as vars so tests can substitute httptest servers.
var (
	scopusAbstractBase = "https://api.elsevier.com/content/abstract/scopus_id"
	scopusSearchBase   = "https://api.elsevier.com/content/search/scopus"
)

// scopusPageSize is the entries-per-page for the citation search API.
const scopusPageSize = 200

// scopusMaxCitations caps how many citing works are enumerated per
// record. The search API refuses deep paging past 5000 results anyway.
const scopusMaxCitations = 5000

// ScopusClient resolves Scopus EIDs through the Elsevier abstract
// retrieval API (title, abstract, year, reference EIDs) and the search
// API (citing works via refeid queries). Title search is not
// supported.
type ScopusClient struct {
	HTTP   *httputil.Client
	APIKey string
}

// Name returns the source identifier.
func (s *ScopusClient) Name() string { return "scopus" }

// SearchByTitle is unsupported; Scopus resolution is id-based only.
func (s *ScopusClient) SearchByTitle(ctx context.Context, title string) (*types.PublicationRecord, error) {
	return nil, ErrUnsupported
}

// FetchByID retrieves an EID-keyed record: abstract retrieval metadata
// and references, then the citing works enumeration.
func (s *ScopusClient) FetchByID(ctx context.Context, kind ident.Kind, value string) (*types.PublicationRecord, error) {
	if kind != ident.KindEID {
		return nil, ErrUnsupported
	}

	rec, err := s.fetchAbstract(ctx, value)
	if err != nil {
		return nil, err
	}

	cits, err := s.fetchCitations(ctx, value)
	if err != nil {
		return nil, err
	}
	rec.Citations = cits
	rec.Normalize()
	return rec, nil
}

// fetchAbstract retrieves and normalizes the abstract retrieval XML.
func (s *ScopusClient) fetchAbstract(ctx context.Context, eid string) (*types.PublicationRecord, error) {
	apiURL := fmt.Sprintf("%s/%s?apiKey=%s", scopusAbstractBase, url.PathEscape(eid), url.QueryEscape(s.APIKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := s.HTTP.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("Scopus abstract request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Scopus abstract API returned HTTP %d", resp.StatusCode)
	}

	var ar scopusAbstractResponse
	if err := xml.NewDecoder(resp.Body).Decode(&ar); err != nil {
		return nil, fmt.Errorf("parsing Scopus abstract response: %w", err)
	}

	rec := &types.PublicationRecord{
		CanonicalID: ident.Canonical(ident.KindEID, eid),
		Title:       strings.TrimSpace(ar.Coredata.Title),
		Abstract:    strings.TrimSpace(ar.Coredata.Description),
		Venue:       strings.TrimSpace(ar.Coredata.PublicationName),
		Source:      s.Name(),
	}
	if doi := strings.TrimSpace(ar.Coredata.DOI); doi != "" {
		if kind, norm := ident.Classify(doi); kind == ident.KindDOI {
			rec.DOI = norm
		}
	}
	// coverDate is "2006-01-02"; only the year matters here.
	if len(ar.Coredata.CoverDate) >= 4 {
		if y, err := strconv.Atoi(ar.Coredata.CoverDate[:4]); err == nil {
			rec.Year = y
		}
	}
	if n, err := strconv.Atoi(strings.TrimSpace(ar.Coredata.CitedByCount)); err == nil {
		rec.CitationCount = n
	}
	for _, a := range ar.Authors {
		if name := strings.TrimSpace(a.IndexedName); name != "" {
			rec.Authors = append(rec.Authors, name)
		}
	}
	for _, ref := range ar.References {
		if eidVal := ref.sgrItemID(); eidVal != "" {
			_, norm := ident.Classify(eidVal)
			rec.References = append(rec.References, ident.Canonical(ident.KindEID, norm))
		}
	}
	return rec, nil
}

// fetchCitations pages through the search API refeid query and returns
// canonical EIDs of citing works.
func (s *ScopusClient) fetchCitations(ctx context.Context, eid string) ([]string, error) {
	var ids []string
	for start := 0; start < scopusMaxCitations; start += scopusPageSize {
		params := url.Values{
			"query":  {fmt.Sprintf("refeid(2-s2.0-%s)", eid)},
			"apiKey": {s.APIKey},
			"count":  {strconv.Itoa(scopusPageSize)},
			"start":  {strconv.Itoa(start)},
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, scopusSearchBase+"?"+params.Encode(), nil)
		if err != nil {
			return nil, fmt.Errorf("creating request: %w", err)
		}

		resp, err := s.HTTP.Do(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("Scopus search request: %w", err)
		}

		var sr scopusSearchResponse
		decodeErr := json.NewDecoder(resp.Body).Decode(&sr)
		resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("Scopus search API returned HTTP %d", resp.StatusCode)
		}
		if decodeErr != nil {
			return nil, fmt.Errorf("parsing Scopus search response: %w", decodeErr)
		}

		total, _ := strconv.Atoi(sr.SearchResults.TotalResults)
		if total == 0 || len(sr.SearchResults.Entries) == 0 {
			break
		}

		for _, entry := range sr.SearchResults.Entries {
			if entry.EID == "" {
				continue
			}
			_, norm := ident.Classify(entry.EID)
			ids = append(ids, ident.Canonical(ident.KindEID, norm))
		}

		if start+scopusPageSize >= total {
			break
		}
	}
	return ids, nil
}

// Scopus abstract retrieval XML structures. Element names match local
// names; encoding/xml ignores the namespace prefixes Scopus uses.
type scopusAbstractResponse struct {
	XMLName  xml.Name `xml:"abstracts-retrieval-response"`
	Coredata struct {
		Title           string `xml:"title"`
		Description     string `xml:"description"`
		CoverDate       string `xml:"coverDate"`
		PublicationName string `xml:"publicationName"`
		CitedByCount    string `xml:"citedby-count"`
		DOI             string `xml:"doi"`
	} `xml:"coredata"`
	Authors    []scopusAuthor    `xml:"authors>author"`
	References []scopusReference `xml:"item>bibrecord>tail>bibliography>reference"`
}

type scopusAuthor struct {
	IndexedName string `xml:"indexed-name"`
}

type scopusReference struct {
	ItemIDs []scopusItemID `xml:"ref-info>refd-itemidlist>itemid"`
}

type scopusItemID struct {
	IDType string `xml:"idtype,attr"`
	Value  string `xml:",chardata"`
}

// sgrItemID returns the SGR item id of a reference, which is the EID
// without the "2-s2.0-" prefix.
func (r *scopusReference) sgrItemID() string {
	for _, id := range r.ItemIDs {
		if id.IDType == "SGR" {
			return strings.TrimSpace(id.Value)
		}
	}
	return ""
}

// Scopus search API JSON structures.
type scopusSearchResponse struct {
	SearchResults struct {
		TotalResults string              `json:"opensearch:totalResults"`
		Entries      []scopusSearchEntry `json:"entry"`
	} `json:"search-results"`
}

type scopusSearchEntry struct {
	EID   string `json:"eid"`
	Title string `json:"dc:title"`
	Date  string `json:"prism:coverDate"`
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"context"
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
	dblpRecBase    = "https://dblp.org/rec"
	dblpSearchBase = "https://dblp.org/search/publ/api"
)

// DBLPClient resolves DBLP record keys and title searches. DBLP carries
// no citation edges, so its records fail the validity check on their
// own; their value is metadata plus the DOI from the ee field, which
// lets the resolver pivot to a DOI-capable source.
type DBLPClient struct {
	HTTP *httputil.Client
}

// Name returns the source identifier.
func (d *DBLPClient) Name() string { return "dblp" }

// FetchByID retrieves the DBLP record XML for a key.
func (d *DBLPClient) FetchByID(ctx context.Context, kind ident.Kind, value string) (*types.PublicationRecord, error) {
	if kind != ident.KindDBLP {
		return nil, ErrUnsupported
	}

	apiURL := dblpRecBase + "/" + value + ".xml"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := d.HTTP.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("DBLP record request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("DBLP API returned HTTP %d", resp.StatusCode)
	}

	var rec dblpRecordXML
	if err := xml.NewDecoder(resp.Body).Decode(&rec); err != nil {
		return nil, fmt.Errorf("parsing DBLP record: %w", err)
	}

	entry := rec.entry()
	if entry == nil {
		return nil, ErrNotFound
	}
	return d.recordFromEntry(value, entry), nil
}

// SearchByTitle queries the DBLP publication search API and returns the
// first hit as a record keyed by its DBLP key.
func (d *DBLPClient) SearchByTitle(ctx context.Context, title string) (*types.PublicationRecord, error) {
	params := url.Values{
		"q":      {title},
		"format": {"xml"},
		"h":      {"10"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, dblpSearchBase+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := d.HTTP.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("DBLP search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("DBLP search API returned HTTP %d", resp.StatusCode)
	}

	var sr dblpSearchResponse
	if err := xml.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("parsing DBLP search response: %w", err)
	}

	for _, hit := range sr.Hits {
		info := hit.Info
		if info.Key == "" {
			continue
		}
		rec := &types.PublicationRecord{
			CanonicalID: ident.Canonical(ident.KindDBLP, info.Key),
			Title:       strings.TrimSpace(info.Title),
			Venue:       strings.TrimSpace(info.Venue),
			Source:      d.Name(),
		}
		if y, err := strconv.Atoi(strings.TrimSpace(info.Year)); err == nil {
			rec.Year = y
		}
		for _, a := range info.Authors {
			if name := strings.TrimSpace(a); name != "" {
				rec.Authors = append(rec.Authors, name)
			}
		}
		rec.DOI = doiFromEE(info.EE)
		return rec, nil
	}
	return nil, ErrNotFound
}

// recordFromEntry normalizes a DBLP record element.
func (d *DBLPClient) recordFromEntry(key string, e *dblpEntry) *types.PublicationRecord {
	rec := &types.PublicationRecord{
		CanonicalID: ident.Canonical(ident.KindDBLP, key),
		Title:       strings.TrimSpace(e.Title),
		Source:      d.Name(),
	}
	if y, err := strconv.Atoi(strings.TrimSpace(e.Year)); err == nil {
		rec.Year = y
	}
	for _, a := range e.Authors {
		if name := strings.TrimSpace(a); name != "" {
			rec.Authors = append(rec.Authors, name)
		}
	}
	if e.Journal != "" {
		rec.Venue = strings.TrimSpace(e.Journal)
	} else if e.Booktitle != "" {
		rec.Venue = strings.TrimSpace(e.Booktitle)
	}
	for _, ee := range e.EE {
		if doi := doiFromEE(ee); doi != "" {
			rec.DOI = doi
			break
		}
	}
	return rec
}

// doiFromEE extracts a DOI from an electronic-edition URL like
// "https://doi.org/10.1145/3576915.3623157".
func doiFromEE(ee string) string {
	ee = strings.TrimSpace(ee)
	idx := strings.Index(ee, "doi.org/")
	if idx < 0 {
		return ""
	}
	candidate := ee[idx+len("doi.org/"):]
	if kind, norm := ident.Classify(candidate); kind == ident.KindDOI {
		return norm
	}
	return ""
}

// DBLP record XML structures. A record wraps exactly one publication
// element whose tag depends on the publication type.
type dblpRecordXML struct {
	XMLName       xml.Name   `xml:"dblp"`
	Article       *dblpEntry `xml:"article"`
	Inproceedings *dblpEntry `xml:"inproceedings"`
	Incollection  *dblpEntry `xml:"incollection"`
	Proceedings   *dblpEntry `xml:"proceedings"`
	Book          *dblpEntry `xml:"book"`
	PhDThesis     *dblpEntry `xml:"phdthesis"`
}

// entry returns the populated publication element, if any.
func (r *dblpRecordXML) entry() *dblpEntry {
	for _, e := range []*dblpEntry{r.Article, r.Inproceedings, r.Incollection, r.Proceedings, r.Book, r.PhDThesis} {
		if e != nil {
			return e
		}
	}
	return nil
}

type dblpEntry struct {
	Key       string   `xml:"key,attr"`
	Title     string   `xml:"title"`
	Year      string   `xml:"year"`
	Authors   []string `xml:"author"`
	Journal   string   `xml:"journal"`
	Booktitle string   `xml:"booktitle"`
	EE        []string `xml:"ee"`
}

// DBLP search API XML structures.
type dblpSearchResponse struct {
	XMLName xml.Name      `xml:"result"`
	Hits    []dblpHitInfo `xml:"hits>hit"`
}

type dblpHitInfo struct {
	Info struct {
		Key     string   `xml:"key"`
		Title   string   `xml:"title"`
		Year    string   `xml:"year"`
		Venue   string   `xml:"venue"`
		EE      string   `xml:"ee"`
		Authors []string `xml:"authors>author"`
	} `xml:"info"`
}

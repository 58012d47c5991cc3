// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/citenet/internal/httputil"
	"github.com/pdiddy/citenet/internal/ident"
)

const sampleCrossRefWorkJSON = `{
  "message": {
    "DOI": "10.1108/jd-12-2013-0166",
    "title": ["Setting our bibliographic references free"],
    "container-title": ["Journal of Documentation"],
    "abstract": "<jats:p>Bibliographic references study.</jats:p>",
    "author": [
      {"given": "Silvio", "family": "Peroni"},
      {"given": "David", "family": "Shotton"}
    ],
    "issued": {"date-parts": [[2015, 3, 9]]},
    "created": {"date-parts": [[2015, 2, 1]]},
    "is-referenced-by-count": 42,
    "reference-count": 61
  }
}`

const sampleOCReferencesJSON = `[
  {"cited": "omid:br/061 doi:10.1045/november2008-rieger", "citing": "omid:br/062 doi:10.1108/jd-12-2013-0166"},
  {"cited": "omid:br/063 doi:10.1087/20120404", "citing": "omid:br/062 doi:10.1108/jd-12-2013-0166"},
  {"cited": "omid:br/064", "citing": "omid:br/062 doi:10.1108/jd-12-2013-0166"}
]`

const sampleOCCitationsJSON = `[
  {"citing": "omid:br/071 doi:10.7717/peerj-cs.421", "cited": "omid:br/062 doi:10.1108/jd-12-2013-0166"}
]`

// newCrossRefFixture wires a CrossRefClient against fake CrossRef and
// OpenCitations servers.
func newCrossRefFixture(t *testing.T, crossref, opencitations http.HandlerFunc) *CrossRefClient {
	t.Helper()

	crServer := httptest.NewServer(crossref)
	ocServer := httptest.NewServer(opencitations)
	t.Cleanup(crServer.Close)
	t.Cleanup(ocServer.Close)

	oldCR, oldOC := crossrefWorksBase, openCitationsBase
	crossrefWorksBase = crServer.URL
	openCitationsBase = ocServer.URL
	t.Cleanup(func() {
		crossrefWorksBase = oldCR
		openCitationsBase = oldOC
	})

	return &CrossRefClient{
		HTTP:             httputil.NewClient(http.DefaultClient, "citenet-test/0.1", 0),
		Mailto:           "test@example.org",
		OpenCitationsKey: "test-key",
	}
}

func ocHandler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("authorization"))
		switch {
		case strings.Contains(r.URL.Path, "/references/"):
			w.Write([]byte(sampleOCReferencesJSON))
		case strings.Contains(r.URL.Path, "/citations/"):
			w.Write([]byte(sampleOCCitationsJSON))
		default:
			http.NotFound(w, r)
		}
	}
}

func TestCrossRefFetchByID(t *testing.T) {
	c := newCrossRefFixture(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(sampleCrossRefWorkJSON))
	}, ocHandler(t))

	rec, err := c.FetchByID(context.Background(), ident.KindDOI, "10.1108/jd-12-2013-0166")
	require.NoError(t, err)

	assert.Equal(t, "doi:10.1108/jd-12-2013-0166", rec.CanonicalID)
	assert.Equal(t, "Setting our bibliographic references free", rec.Title)
	assert.Equal(t, "Journal of Documentation", rec.Venue)
	assert.Equal(t, 2015, rec.Year)
	assert.Equal(t, []string{"Silvio Peroni", "David Shotton"}, rec.Authors)
	assert.Equal(t, "crossref", rec.Source)

	// Two of the three reference rows carry a DOI; the third is dropped.
	assert.Equal(t, []string{
		"doi:10.1045/november2008-rieger",
		"doi:10.1087/20120404",
	}, rec.References)
	assert.Equal(t, []string{"doi:10.7717/peerj-cs.421"}, rec.Citations)

	// Counts never regress below source-reported values.
	assert.Equal(t, 42, rec.CitationCount)
	assert.Equal(t, 61, rec.ReferenceCount)
	assert.True(t, rec.Valid())
}

func TestCrossRefFetchByID_NotFound(t *testing.T) {
	c := newCrossRefFixture(t, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}, ocHandler(t))

	_, err := c.FetchByID(context.Background(), ident.KindDOI, "10.9999/missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCrossRefFetchByID_WrongKind(t *testing.T) {
	c := &CrossRefClient{}
	_, err := c.FetchByID(context.Background(), ident.KindEID, "85001234567")
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestCrossRefSearchByTitle(t *testing.T) {
	c := newCrossRefFixture(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "setting our bibliographic references free", r.URL.Query().Get("query.title"))
		w.Write([]byte(`{
  "message": {
    "items": [
      {"title": ["No DOI entry"]},
      {
        "DOI": "10.1108/jd-12-2013-0166",
        "title": ["Setting our bibliographic references free"],
        "issued": {"date-parts": [[2015]]},
        "is-referenced-by-count": 42
      }
    ]
  }
}`))
	}, ocHandler(t))

	rec, err := c.SearchByTitle(context.Background(), "setting our bibliographic references free")
	require.NoError(t, err)

	assert.Equal(t, "doi:10.1108/jd-12-2013-0166", rec.CanonicalID)
	assert.Equal(t, 2015, rec.Year)
	assert.Len(t, rec.References, 2)
}

func TestCrossRefSearchByTitle_NoResults(t *testing.T) {
	c := newCrossRefFixture(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"message": {"items": []}}`))
	}, ocHandler(t))

	_, err := c.SearchByTitle(context.Background(), "nothing matches this")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCrossRefFetchByID_EdgesMissingIsNotFatal(t *testing.T) {
	// OpenCitations has no row for the DOI: the record keeps its
	// count-only citation signal.
	c := newCrossRefFixture(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(sampleCrossRefWorkJSON))
	}, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	rec, err := c.FetchByID(context.Background(), ident.KindDOI, "10.1108/jd-12-2013-0166")
	require.NoError(t, err)
	assert.Empty(t, rec.References)
	assert.Empty(t, rec.Citations)
	assert.Equal(t, 42, rec.CitationCount)
	assert.True(t, rec.Valid())
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package resolve

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/citenet/internal/cache"
	"github.com/pdiddy/citenet/internal/ident"
	"github.com/pdiddy/citenet/internal/source"
	"github.com/pdiddy/citenet/pkg/types"
)

// fakeClient scripts per-operation responses and counts network calls.
type fakeClient struct {
	name        string
	fetchCalls  int
	searchCalls int

	fetch  func(kind ident.Kind, value string) (*types.PublicationRecord, error)
	search func(title string) (*types.PublicationRecord, error)
}

func (f *fakeClient) Name() string { return f.name }

func (f *fakeClient) FetchByID(_ context.Context, kind ident.Kind, value string) (*types.PublicationRecord, error) {
	f.fetchCalls++
	if f.fetch == nil {
		return nil, source.ErrUnsupported
	}
	return f.fetch(kind, value)
}

func (f *fakeClient) SearchByTitle(_ context.Context, title string) (*types.PublicationRecord, error) {
	f.searchCalls++
	if f.search == nil {
		return nil, source.ErrUnsupported
	}
	return f.search(title)
}

func newTestCache(t *testing.T) *cache.Cache {
	t.Helper()
	c, err := cache.Open(types.CacheConfig{CacheDir: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func validRecord(id string) *types.PublicationRecord {
	return &types.PublicationRecord{
		CanonicalID: id,
		Title:       "Some title",
		Year:        2020,
		References:  []string{"doi:10.1/ref"},
	}
}

func TestResolveCacheHitSkipsNetwork(t *testing.T) {
	c := newTestCache(t)
	require.NoError(t, c.Put(validRecord("doi:10.1/x")))

	client := &fakeClient{name: "crossref"}
	r := New(c, []source.Client{client}, nil, nil)

	rec, err := r.Resolve(context.Background(), Hint{DOI: "10.1/x"})
	require.NoError(t, err)
	assert.Equal(t, "doi:10.1/x", rec.CanonicalID)
	assert.Zero(t, client.fetchCalls)
	assert.Zero(t, client.searchCalls)
}

func TestResolveIdempotent(t *testing.T) {
	c := newTestCache(t)
	client := &fakeClient{
		name: "crossref",
		fetch: func(kind ident.Kind, value string) (*types.PublicationRecord, error) {
			return validRecord(ident.Canonical(kind, value)), nil
		},
	}
	r := New(c, []source.Client{client}, nil, nil)

	first, err := r.Resolve(context.Background(), Hint{DOI: "10.1/x"})
	require.NoError(t, err)
	assert.Equal(t, 1, client.fetchCalls)

	second, err := r.Resolve(context.Background(), Hint{DOI: "10.1/x"})
	require.NoError(t, err)
	assert.Equal(t, 1, client.fetchCalls, "second resolve must issue zero network calls")
	assert.Equal(t, first, second)
}

func TestResolveFallbackOnInvalidRecord(t *testing.T) {
	c := newTestCache(t)

	// First source returns a record with no citation signal; second
	// source has the real data.
	first := &fakeClient{
		name: "crossref",
		fetch: func(kind ident.Kind, value string) (*types.PublicationRecord, error) {
			return &types.PublicationRecord{
				CanonicalID: ident.Canonical(kind, value),
				Title:       "Metadata only",
			}, nil
		},
	}
	second := &fakeClient{
		name: "scopus",
		fetch: func(kind ident.Kind, value string) (*types.PublicationRecord, error) {
			return validRecord(ident.Canonical(kind, value)), nil
		},
	}
	r := New(c, []source.Client{first, second}, []string{"crossref", "scopus"}, nil)

	rec, err := r.Resolve(context.Background(), Hint{DOI: "10.1/x"})
	require.NoError(t, err)
	assert.True(t, rec.Valid())
	assert.Equal(t, 1, first.fetchCalls)
	assert.Equal(t, 1, second.fetchCalls)
}

func TestResolveSourceUnavailableFallsThrough(t *testing.T) {
	c := newTestCache(t)
	var warnings strings.Builder

	broken := &fakeClient{
		name: "crossref",
		fetch: func(ident.Kind, string) (*types.PublicationRecord, error) {
			return nil, errors.New("connection refused")
		},
	}
	working := &fakeClient{
		name: "scopus",
		fetch: func(kind ident.Kind, value string) (*types.PublicationRecord, error) {
			return validRecord(ident.Canonical(kind, value)), nil
		},
	}
	r := New(c, []source.Client{broken, working}, nil, &warnings)

	rec, err := r.Resolve(context.Background(), Hint{DOI: "10.1/x"})
	require.NoError(t, err)
	assert.True(t, rec.Valid())
	assert.Contains(t, warnings.String(), "warning: source crossref failed")
}

func TestResolveTitleSearchFallback(t *testing.T) {
	c := newTestCache(t)
	client := &fakeClient{
		name: "crossref",
		search: func(title string) (*types.PublicationRecord, error) {
			return validRecord("doi:10.1/found-by-title"), nil
		},
	}
	r := New(c, []source.Client{client}, nil, nil)

	rec, err := r.Resolve(context.Background(), Hint{Title: "some known paper"})
	require.NoError(t, err)
	assert.Equal(t, "doi:10.1/found-by-title", rec.CanonicalID)
	assert.Equal(t, 1, client.searchCalls)
}

func TestResolveDOIPivot(t *testing.T) {
	c := newTestCache(t)

	// DBLP knows the key but carries no citation signal; its DOI leads
	// to a valid CrossRef record.
	dblp := &fakeClient{
		name: "dblp",
		fetch: func(kind ident.Kind, value string) (*types.PublicationRecord, error) {
			if kind != ident.KindDBLP {
				return nil, source.ErrUnsupported
			}
			return &types.PublicationRecord{
				CanonicalID: ident.Canonical(kind, value),
				Title:       "Metadata only",
				DOI:         "10.1145/3576915.3623157",
			}, nil
		},
	}
	crossref := &fakeClient{
		name: "crossref",
		fetch: func(kind ident.Kind, value string) (*types.PublicationRecord, error) {
			if kind != ident.KindDOI {
				return nil, source.ErrUnsupported
			}
			return validRecord(ident.Canonical(kind, value)), nil
		},
	}
	r := New(c, []source.Client{crossref, dblp}, []string{"crossref", "dblp"}, nil)

	rec, err := r.Resolve(context.Background(), Hint{DBLPKey: "conf/ccs/SmithJ23"})
	require.NoError(t, err)
	assert.Equal(t, "doi:10.1145/3576915.3623157", rec.CanonicalID)
}

func TestResolveNotFound(t *testing.T) {
	c := newTestCache(t)
	client := &fakeClient{
		name: "crossref",
		fetch: func(ident.Kind, string) (*types.PublicationRecord, error) {
			return nil, source.ErrNotFound
		},
	}
	r := New(c, []source.Client{client}, nil, nil)

	_, err := r.Resolve(context.Background(), Hint{DOI: "10.1/missing"})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "10.1/missing")

	// Nothing was cached on failure.
	n, cErr := c.Count()
	require.NoError(t, cErr)
	assert.Zero(t, n)
}

func TestResolveEmptyHint(t *testing.T) {
	r := New(newTestCache(t), nil, nil, nil)
	_, err := r.Resolve(context.Background(), Hint{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestHintFromIdentifier(t *testing.T) {
	tests := []struct {
		input string
		want  Hint
	}{
		{"10.1145/3576915.3623157", Hint{DOI: "10.1145/3576915.3623157"}},
		{"2-s2.0-85001234567", Hint{EID: "85001234567"}},
		{"conf/ccs/SmithJ23", Hint{DBLPKey: "conf/ccs/SmithJ23"}},
		{"attention is all you need", Hint{Title: "attention is all you need"}},
	}
	for _, tt := range tests {
		if got := HintFromIdentifier(tt.input); got != tt.want {
			t.Errorf("HintFromIdentifier(%q) = %+v, want %+v", tt.input, got, tt.want)
		}
	}
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/citenet/internal/resolve"
	"github.com/pdiddy/citenet/pkg/types"
)

// fakeResolver serves records from a fixed universe, writing resolved
// entries into store the way the real resolver caches them.
type fakeResolver struct {
	universe map[string]*types.PublicationRecord
	store    map[string]*types.PublicationRecord
	calls    int
}

func newFakeResolver(universe map[string]*types.PublicationRecord) *fakeResolver {
	return &fakeResolver{
		universe: universe,
		store:    make(map[string]*types.PublicationRecord),
	}
}

func (f *fakeResolver) Resolve(_ context.Context, hint resolve.Hint) (*types.PublicationRecord, error) {
	f.calls++
	for id, rec := range f.universe {
		if "doi:"+hint.DOI == id || rec.Title == hint.Title {
			f.store[id] = rec
			return rec, nil
		}
	}
	return nil, resolve.ErrNotFound
}

func (f *fakeResolver) lookup(id string) (*types.PublicationRecord, error) {
	rec, ok := f.store[id]
	if !ok {
		return nil, resolve.ErrNotFound
	}
	return rec, nil
}

// Two seeds; seed one's candidate Q shares all its references, so Q
// joins the strong set. Seed two is unknown to every source.
func fixture() map[string]*types.PublicationRecord {
	return map[string]*types.PublicationRecord{
		"doi:10.1/s1": {
			CanonicalID: "doi:10.1/s1",
			Title:       "Seed one",
			References:  []string{"doi:10.1/x", "doi:10.1/y"},
			Citations:   []string{"doi:10.1/q"},
		},
		"doi:10.1/q": {
			CanonicalID: "doi:10.1/q",
			Title:       "Candidate Q",
			Year:        2018,
			References:  []string{"doi:10.1/x", "doi:10.1/y"},
			Citations:   []string{"doi:10.1/c"},
		},
	}
}

func TestRunExpandsAndScores(t *testing.T) {
	r := newFakeResolver(fixture())
	var out strings.Builder
	p := New(r, r.lookup, types.ExpandConfig{}, &out)

	summary, err := p.Run(context.Background(), []resolve.Hint{{DOI: "10.1/s1"}})
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Resolved)
	assert.Zero(t, summary.Skipped)
	// Neighborhood of s1: x, y, q.
	assert.Equal(t, 3, summary.Candidates)
	assert.Equal(t, []string{"doi:10.1/q", "doi:10.1/x", "doi:10.1/y"}, summary.RelatedIDs)
	assert.Contains(t, out.String(), "Expansion summary: 1 resolved, 0 skipped")
}

func TestRunIsolatesSeedFailures(t *testing.T) {
	r := newFakeResolver(fixture())
	var out strings.Builder
	p := New(r, r.lookup, types.ExpandConfig{}, &out)

	summary, err := p.Run(context.Background(), []resolve.Hint{
		{DOI: "10.1/nowhere"},
		{DOI: "10.1/s1"},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Resolved)
	assert.Equal(t, 1, summary.Skipped)
	assert.Equal(t, 2, summary.Total())
	assert.NotEmpty(t, summary.RelatedIDs, "later seeds still processed after a failure")
	assert.Contains(t, out.String(), "failed:")
}

func TestRunExcludesSeedsFromRelated(t *testing.T) {
	universe := fixture()
	// Make Q a seed too; it must not appear in the related output even
	// though it is strongly related to s1.
	r := newFakeResolver(universe)
	p := New(r, r.lookup, types.ExpandConfig{}, nil)

	summary, err := p.Run(context.Background(), []resolve.Hint{
		{DOI: "10.1/s1"},
		{DOI: "10.1/q"},
	})
	require.NoError(t, err)

	assert.NotContains(t, summary.RelatedIDs, "doi:10.1/s1")
	assert.NotContains(t, summary.RelatedIDs, "doi:10.1/q")
}

func TestRunBoundsCandidateResolution(t *testing.T) {
	r := newFakeResolver(fixture())
	p := New(r, r.lookup, types.ExpandConfig{MaxCandidates: 1}, nil)

	summary, err := p.Run(context.Background(), []resolve.Hint{{DOI: "10.1/s1"}})
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Candidates)
}

func TestRunEnrichesCandidatePool(t *testing.T) {
	r := newFakeResolver(fixture())
	p := New(r, r.lookup, types.ExpandConfig{}, nil)

	_, err := p.Run(context.Background(), []resolve.Hint{{DOI: "10.1/s1"}})
	require.NoError(t, err)

	// Q was discovered as a citation of s1 and resolved into the store.
	_, lookupErr := r.lookup("doi:10.1/q")
	assert.NoError(t, lookupErr)
}

func TestRunHonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := newFakeResolver(fixture())
	p := New(r, r.lookup, types.ExpandConfig{}, nil)

	_, err := p.Run(ctx, []resolve.Hint{{DOI: "10.1/s1"}})
	assert.ErrorIs(t, err, context.Canceled)
}

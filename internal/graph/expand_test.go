// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package graph

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/citenet/pkg/types"
)

func mapLookup(recs map[string]*types.PublicationRecord) Lookup {
	return func(id string) (*types.PublicationRecord, error) {
		rec, ok := recs[id]
		if !ok {
			return nil, errors.New("not cached")
		}
		return rec, nil
	}
}

func TestExpandUnionMinusSeeds(t *testing.T) {
	recs := map[string]*types.PublicationRecord{
		"doi:10.1/s1": {
			CanonicalID: "doi:10.1/s1",
			References:  []string{"doi:10.1/a", "doi:10.1/b"},
			Citations:   []string{"doi:10.1/c", "doi:10.1/s2"},
		},
		"doi:10.1/s2": {
			CanonicalID: "doi:10.1/s2",
			References:  []string{"doi:10.1/b", "doi:10.1/d"},
			Citations:   []string{"doi:10.1/s1"},
		},
	}

	n, err := Expand([]string{"doi:10.1/s1", "doi:10.1/s2"}, mapLookup(recs))
	require.NoError(t, err)

	// Seeds citing each other never appear as candidates.
	assert.Equal(t, []string{"doi:10.1/a", "doi:10.1/b", "doi:10.1/c", "doi:10.1/d"}, n.Candidates)
	assert.Len(t, n.Seeds, 2)
}

func TestExpandMissingSeed(t *testing.T) {
	_, err := Expand([]string{"doi:10.1/absent"}, mapLookup(nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "doi:10.1/absent")
}

func TestExpandCyclicEdges(t *testing.T) {
	// A cites B, B cites A. Expansion is one hop, so cycles terminate.
	recs := map[string]*types.PublicationRecord{
		"doi:10.1/a": {
			CanonicalID: "doi:10.1/a",
			References:  []string{"doi:10.1/b"},
			Citations:   []string{"doi:10.1/b"},
		},
	}

	n, err := Expand([]string{"doi:10.1/a"}, mapLookup(recs))
	require.NoError(t, err)
	assert.Equal(t, []string{"doi:10.1/b"}, n.Candidates)
}

func TestExpandEmptySeeds(t *testing.T) {
	n, err := Expand(nil, mapLookup(nil))
	require.NoError(t, err)
	assert.Empty(t, n.Candidates)
	assert.Empty(t, n.Seeds)
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package graph derives the one-hop citation neighborhood of a set of
// seed publications from their cached records.
package graph

import (
	"fmt"
	"sort"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/pdiddy/citenet/pkg/types"
)

// Lookup fetches the record stored under a canonical id.
type Lookup func(id string) (*types.PublicationRecord, error)

// Neighborhood is the expansion result for a seed set.
type Neighborhood struct {
	// Seeds holds the resolved seed records keyed by canonical id.
	Seeds map[string]*types.PublicationRecord
	// Candidates is the union of the seeds' references and citations,
	// minus the seeds themselves, sorted by canonical id.
	Candidates []string
}

// Expand collects the one-hop neighborhood of seedIDs. Every seed must
// resolve through lookup; a missing seed aborts the expansion.
// Citation graphs contain cycles, so membership is tracked in sets
// rather than by traversal.
func Expand(seedIDs []string, lookup Lookup) (*Neighborhood, error) {
	seeds := mapset.NewSet(seedIDs...)
	found := mapset.NewSet[string]()

	n := &Neighborhood{Seeds: make(map[string]*types.PublicationRecord, len(seedIDs))}
	for _, id := range seedIDs {
		rec, err := lookup(id)
		if err != nil {
			return nil, fmt.Errorf("seed %s: %w", id, err)
		}
		n.Seeds[id] = rec
		found.Append(rec.References...)
		found.Append(rec.Citations...)
	}

	n.Candidates = found.Difference(seeds).ToSlice()
	sort.Strings(n.Candidates)
	return n, nil
}

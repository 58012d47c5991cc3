// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package relate scores strong citation relationships between a seed
// publication and a pool of candidates, using reference and citation
// overlap ratios over cached records.
package relate

import (
	"sort"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/pdiddy/citenet/internal/graph"
	"github.com/pdiddy/citenet/pkg/types"
)

// DefaultSharedThreshold is the minimum overlap ratio that qualifies a
// co-citing or co-cited relationship as strong.
const DefaultSharedThreshold = 0.10

// YearRange filters publications by year. A nil bound is unbounded;
// with both bounds nil the range admits everything, including
// publications with unknown year. Otherwise an unknown year (zero)
// follows the IncludeUnknown policy.
type YearRange struct {
	Min            *int
	Max            *int
	IncludeUnknown bool
}

// Allows reports whether a publication year passes the filter.
func (yr YearRange) Allows(year int) bool {
	if yr.Min == nil && yr.Max == nil {
		return true
	}
	if year == 0 {
		return yr.IncludeUnknown
	}
	if yr.Min != nil && year < *yr.Min {
		return false
	}
	if yr.Max != nil && year > *yr.Max {
		return false
	}
	return true
}

// Config holds the scoring parameters.
type Config struct {
	SharedThreshold float64
	Years           YearRange
}

// StrongRelated computes the strong relationship set for a seed: its
// direct references, its year-filtered direct citations, and every
// pool candidate whose reference overlap (co-citing) or citation
// overlap (co-cited) with the seed meets the threshold. The seed
// itself never appears in the result.
//
// References are not year-filtered; citations and pool candidates are.
// A candidate missing from the store contributes empty edge sets.
func StrongRelated(seed *types.PublicationRecord, pool []string, lookup graph.Lookup, cfg Config) []string {
	seedRefs := mapset.NewSet(seed.References...)

	seedCits := mapset.NewSet[string]()
	for _, id := range seed.Citations {
		if cfg.Years.Allows(yearOf(id, lookup)) {
			seedCits.Add(id)
		}
	}

	related := seedRefs.Union(seedCits)

	for _, id := range pool {
		if id == seed.CanonicalID || related.Contains(id) {
			continue
		}
		cand, err := lookup(id)
		if err != nil {
			cand = &types.PublicationRecord{CanonicalID: id}
		}
		if !cfg.Years.Allows(cand.Year) {
			continue
		}
		if coCiting(seedRefs, cand, cfg.SharedThreshold) ||
			coCited(seedCits, cand, cfg.SharedThreshold) {
			related.Add(id)
		}
	}

	related.Remove(seed.CanonicalID)
	out := related.ToSlice()
	sort.Strings(out)
	return out
}

// coCiting reports whether the candidate cites enough of the seed's
// references: |R(Q) ∩ R(S)| / |R(S)| >= threshold. Undefined, and
// false, when the seed has no references.
func coCiting(seedRefs mapset.Set[string], cand *types.PublicationRecord, threshold float64) bool {
	if seedRefs.Cardinality() == 0 {
		return false
	}
	shared := seedRefs.Intersect(mapset.NewSet(cand.References...))
	return ratio(shared.Cardinality(), seedRefs.Cardinality()) >= threshold
}

// coCited reports whether the candidate is cited by enough of the
// works citing the seed: |C(Q) ∩ C(S)| / |C(S)| >= threshold, over the
// seed's year-filtered citation set.
func coCited(seedCits mapset.Set[string], cand *types.PublicationRecord, threshold float64) bool {
	if seedCits.Cardinality() == 0 {
		return false
	}
	shared := seedCits.Intersect(mapset.NewSet(cand.Citations...))
	return ratio(shared.Cardinality(), seedCits.Cardinality()) >= threshold
}

func ratio(shared, total int) float64 {
	return float64(shared) / float64(total)
}

// yearOf returns the cached year for an id, or zero when unknown.
func yearOf(id string, lookup graph.Lookup) int {
	rec, err := lookup(id)
	if err != nil {
		return 0
	}
	return rec.Year
}

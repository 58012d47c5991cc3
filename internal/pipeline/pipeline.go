// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline orchestrates the expansion run: resolve each seed,
// enrich its citation neighborhood, and score strong relationships.
// Individual seed failures never abort the run.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"sort"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/pdiddy/citenet/internal/graph"
	"github.com/pdiddy/citenet/internal/relate"
	"github.com/pdiddy/citenet/internal/resolve"
	"github.com/pdiddy/citenet/pkg/types"
)

// Resolver is the seed-resolution dependency of the pipeline.
type Resolver interface {
	Resolve(ctx context.Context, hint resolve.Hint) (*types.PublicationRecord, error)
}

// Summary holds the outcome of an expansion run.
type Summary struct {
	Resolved   int
	Skipped    int
	Candidates int
	// RelatedIDs is the union of every seed's strong relationship set,
	// minus the seeds themselves, sorted.
	RelatedIDs []string
}

// Total returns the number of seeds processed.
func (s Summary) Total() int {
	return s.Resolved + s.Skipped
}

// Pipeline runs the expansion stages sequentially over a seed list.
type Pipeline struct {
	resolver Resolver
	lookup   graph.Lookup
	cfg      types.ExpandConfig
	out      io.Writer
}

// New builds a pipeline. lookup reads cached records for the graph and
// scoring stages; progress and warnings go to w.
func New(r Resolver, lookup graph.Lookup, cfg types.ExpandConfig, w io.Writer) *Pipeline {
	if w == nil {
		w = io.Discard
	}
	return &Pipeline{resolver: r, lookup: lookup, cfg: cfg, out: w}
}

// Run resolves every seed hint, expands each resolved seed's one-hop
// neighborhood, enriches the candidate pool through the resolver, and
// unions the per-seed strong relationship sets. A failing seed is
// counted and skipped; a failing candidate only shrinks the pool.
func (p *Pipeline) Run(ctx context.Context, hints []resolve.Hint) (Summary, error) {
	var summary Summary
	scoring := relate.Config{
		SharedThreshold: p.cfg.SharedThreshold,
		Years:           yearRange(p.cfg),
	}
	if scoring.SharedThreshold == 0 {
		scoring.SharedThreshold = relate.DefaultSharedThreshold
	}

	seeds := mapset.NewSet[string]()
	related := mapset.NewSet[string]()

	for _, hint := range hints {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		rec, err := p.resolver.Resolve(ctx, hint)
		if err != nil {
			fmt.Fprintf(p.out, "failed:  %s (%v)\n", hint, err)
			summary.Skipped++
			continue
		}
		summary.Resolved++
		seeds.Add(rec.CanonicalID)

		neighborhood, err := graph.Expand([]string{rec.CanonicalID}, p.lookup)
		if err != nil {
			fmt.Fprintf(p.out, "failed:  %s (%v)\n", rec.CanonicalID, err)
			summary.Skipped++
			summary.Resolved--
			continue
		}

		pool := neighborhood.Candidates
		if p.cfg.MaxCandidates > 0 && len(pool) > p.cfg.MaxCandidates {
			pool = pool[:p.cfg.MaxCandidates]
		}
		summary.Candidates += len(pool)
		p.enrich(ctx, pool)

		strong := relate.StrongRelated(rec, pool, p.lookup, scoring)
		fmt.Fprintf(p.out, "expanded: %s (%d candidates, %d related)\n",
			rec.CanonicalID, len(pool), len(strong))
		related.Append(strong...)
	}

	summary.RelatedIDs = related.Difference(seeds).ToSlice()
	sort.Strings(summary.RelatedIDs)

	fmt.Fprintf(p.out, "\nExpansion summary: %d resolved, %d skipped, %d related ids (seeds: %d)\n",
		summary.Resolved, summary.Skipped, len(summary.RelatedIDs), summary.Total())
	return summary, nil
}

// enrich resolves discovered candidate ids so the scorer sees their
// edges and years. Sources are partial, so failures are expected and
// only noted.
func (p *Pipeline) enrich(ctx context.Context, pool []string) {
	for _, id := range pool {
		if _, err := p.lookup(id); err == nil {
			continue
		}
		hint := resolve.HintFromCanonical(id)
		if hint.IsEmpty() {
			continue
		}
		if _, err := p.resolver.Resolve(ctx, hint); err != nil {
			fmt.Fprintf(p.out, "  note: candidate %s unresolved (%v)\n", id, err)
		}
	}
}

func yearRange(cfg types.ExpandConfig) relate.YearRange {
	yr := relate.YearRange{IncludeUnknown: cfg.IncludeUnknownYear}
	if cfg.MinYear > 0 {
		min := cfg.MinYear
		yr.Min = &min
	}
	if cfg.MaxYear > 0 {
		max := cfg.MaxYear
		yr.Max = &max
	}
	return yr
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package resolve turns partial publication identities into cached
// canonical records, trying sources in a fixed priority order.
package resolve

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/pdiddy/citenet/internal/cache"
	"github.com/pdiddy/citenet/internal/ident"
	"github.com/pdiddy/citenet/internal/source"
	"github.com/pdiddy/citenet/pkg/types"
)

// ErrNotFound is returned when every source is exhausted without a
// valid record. The wrapped message carries the original hint.
var ErrNotFound = errors.New("no source produced a valid record")

// Hint is a partial publication identity: any non-empty combination of
// title and source-specific identifiers.
type Hint struct {
	Title   string
	DOI     string
	EID     string
	DBLPKey string
}

// HintFromIdentifier classifies a raw identifier string into a Hint.
// Unclassifiable strings are treated as titles.
func HintFromIdentifier(s string) Hint {
	kind, norm := ident.Classify(s)
	switch kind {
	case ident.KindDOI:
		return Hint{DOI: norm}
	case ident.KindEID:
		return Hint{EID: norm}
	case ident.KindDBLP:
		return Hint{DBLPKey: norm}
	default:
		return Hint{Title: strings.TrimSpace(s)}
	}
}

// HintFromCanonical builds a Hint from a namespaced canonical id such
// as "eid:0085001234". Unrecognized namespaces yield an empty hint.
func HintFromCanonical(id string) Hint {
	switch kind, value := ident.Split(id); kind {
	case ident.KindDOI:
		return Hint{DOI: value}
	case ident.KindEID:
		return Hint{EID: value}
	case ident.KindDBLP:
		return Hint{DBLPKey: value}
	default:
		return Hint{}
	}
}

// IsEmpty reports whether the hint contains nothing to resolve.
func (h Hint) IsEmpty() bool {
	return h.Title == "" && h.DOI == "" && h.EID == "" && h.DBLPKey == ""
}

// hintID pairs an identifier kind with its normalized value.
type hintID struct {
	kind  ident.Kind
	value string
}

// ids enumerates the identifiers present in the hint in lookup
// priority order: DOI first, then EID, then DBLP key.
func (h Hint) ids() []hintID {
	var out []hintID
	if h.DOI != "" {
		out = append(out, hintID{ident.KindDOI, h.DOI})
	}
	if h.EID != "" {
		out = append(out, hintID{ident.KindEID, h.EID})
	}
	if h.DBLPKey != "" {
		out = append(out, hintID{ident.KindDBLP, h.DBLPKey})
	}
	return out
}

func (h Hint) String() string {
	var parts []string
	if h.DOI != "" {
		parts = append(parts, "doi="+h.DOI)
	}
	if h.EID != "" {
		parts = append(parts, "eid="+h.EID)
	}
	if h.DBLPKey != "" {
		parts = append(parts, "dblp="+h.DBLPKey)
	}
	if h.Title != "" {
		parts = append(parts, fmt.Sprintf("title=%q", h.Title))
	}
	if len(parts) == 0 {
		return "(empty hint)"
	}
	return strings.Join(parts, " ")
}

// Resolver resolves hints against the cache first and the configured
// source clients second.
type Resolver struct {
	cache   *cache.Cache
	clients []source.Client
	out     io.Writer
}

// New builds a Resolver whose clients are ordered by the configured
// priority list. Warnings about failing sources go to w.
func New(c *cache.Cache, clients []source.Client, priority []string, w io.Writer) *Resolver {
	if w == nil {
		w = io.Discard
	}
	return &Resolver{
		cache:   c,
		clients: source.ByPriority(clients, priority),
		out:     w,
	}
}

// Resolve returns the record for a hint. A valid cached entry under
// any identifier in the hint returns immediately with zero network
// calls. Otherwise sources are attempted in priority order: exact-id
// lookups first, then title search; each result is validated before
// acceptance, and a result that fails validity but reveals a new DOI
// triggers one DOI lookup round. Exactly one cache write happens on
// success; none on failure.
func (r *Resolver) Resolve(ctx context.Context, hint Hint) (*types.PublicationRecord, error) {
	if hint.IsEmpty() {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, hint)
	}

	for _, id := range hint.ids() {
		canonical := ident.Canonical(id.kind, id.value)
		if rec, err := r.cache.Get(canonical); err == nil && rec.Valid() {
			return rec, nil
		}
	}

	// pivotDOI collects a DOI revealed by an invalid result (e.g. a
	// DBLP record's ee field) for one follow-up lookup round.
	var pivotDOI string
	note := func(rec *types.PublicationRecord) {
		if pivotDOI == "" && rec.DOI != "" && rec.DOI != hint.DOI {
			pivotDOI = rec.DOI
		}
	}

	for _, id := range hint.ids() {
		if rec := r.tryFetch(ctx, id.kind, id.value, note); rec != nil {
			return r.commit(rec)
		}
	}

	if hint.Title != "" {
		for _, client := range r.clients {
			rec, err := client.SearchByTitle(ctx, hint.Title)
			if rec = r.accept(client, rec, err, note); rec != nil {
				return r.commit(rec)
			}
		}
	}

	if pivotDOI != "" {
		if rec := r.tryFetch(ctx, ident.KindDOI, pivotDOI, func(*types.PublicationRecord) {}); rec != nil {
			return r.commit(rec)
		}
	}

	return nil, fmt.Errorf("%w: %s", ErrNotFound, hint)
}

// tryFetch attempts an exact-id lookup across all clients and returns
// the first valid record, or nil.
func (r *Resolver) tryFetch(ctx context.Context, kind ident.Kind, value string, note func(*types.PublicationRecord)) *types.PublicationRecord {
	for _, client := range r.clients {
		rec, err := client.FetchByID(ctx, kind, value)
		if rec = r.accept(client, rec, err, note); rec != nil {
			return rec
		}
	}
	return nil
}

// accept applies the per-attempt policy: unsupported and not-found are
// silent fallthroughs, network failures are logged as that source
// failing, and a returned record must pass the validity check. Invalid
// records are soft failures but feed the DOI pivot.
func (r *Resolver) accept(client source.Client, rec *types.PublicationRecord, err error, note func(*types.PublicationRecord)) *types.PublicationRecord {
	switch {
	case errors.Is(err, source.ErrUnsupported), errors.Is(err, source.ErrNotFound):
		return nil
	case err != nil:
		fmt.Fprintf(r.out, "warning: source %s failed: %v\n", client.Name(), err)
		return nil
	case rec == nil:
		return nil
	case !rec.Valid():
		note(rec)
		return nil
	default:
		return rec
	}
}

// commit writes the record through the merging cache and returns the
// merged entry.
func (r *Resolver) commit(rec *types.PublicationRecord) (*types.PublicationRecord, error) {
	if err := r.cache.Put(rec); err != nil {
		return nil, fmt.Errorf("caching %s: %w", rec.CanonicalID, err)
	}
	merged, err := r.cache.Get(rec.CanonicalID)
	if err != nil {
		return nil, fmt.Errorf("reading back %s: %w", rec.CanonicalID, err)
	}
	return merged, nil
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// PublicationRecord is the canonical unit of bibliographic data. Records
// are keyed by CanonicalID, created on the first validated fetch from any
// source, and mutated only by merge-enrichment.
type PublicationRecord struct {
	// CanonicalID is a namespaced identifier ("doi:...", "eid:...",
	// "dblp:..."). Immutable once assigned; a record is never re-keyed.
	CanonicalID string `json:"canonical_id" yaml:"canonical_id"`

	// Title is the publication title.
	Title string `json:"title,omitempty" yaml:"title,omitempty"`

	// Year is the publication year. Zero means unknown.
	Year int `json:"year,omitempty" yaml:"year,omitempty"`

	// Abstract is the publication abstract, when a source provides one.
	Abstract string `json:"abstract,omitempty" yaml:"abstract,omitempty"`

	// Authors lists author names in source order.
	Authors []string `json:"authors,omitempty" yaml:"authors,omitempty"`

	// Venue is the journal or conference name.
	Venue string `json:"venue,omitempty" yaml:"venue,omitempty"`

	// DOI is kept when known even for non-DOI-keyed records, so the
	// resolver can pivot a DBLP or Scopus hit to DOI-capable sources.
	DOI string `json:"doi,omitempty" yaml:"doi,omitempty"`

	// References holds canonical ids of publications this one cites.
	// Treated as a set: no duplicates, no self-reference.
	References []string `json:"references,omitempty" yaml:"references,omitempty"`

	// Citations holds canonical ids of publications citing this one.
	Citations []string `json:"citations,omitempty" yaml:"citations,omitempty"`

	// ReferenceCount and CitationCount carry count-only signals from
	// sources that cannot enumerate (e.g. CrossRef's
	// is-referenced-by-count). Never less than the enumerated sets.
	ReferenceCount int `json:"reference_count,omitempty" yaml:"reference_count,omitempty"`
	CitationCount  int `json:"citation_count,omitempty" yaml:"citation_count,omitempty"`

	// Source names the client that produced or last enriched this
	// record. Provenance only, not part of identity.
	Source string `json:"source,omitempty" yaml:"source,omitempty"`
}

// Valid reports whether the record carries any citation signal. An
// isolated record with no references, no citations, and no counts is
// rejected as not-found.
func (r *PublicationRecord) Valid() bool {
	return len(r.References) > 0 || len(r.Citations) > 0 ||
		r.CitationCount > 0 || r.ReferenceCount > 0
}

// Normalize enforces the set invariants on References and Citations:
// duplicates removed, self-references removed, and counts raised to at
// least the enumerated cardinality.
func (r *PublicationRecord) Normalize() {
	r.References = dedupeIDs(r.References, r.CanonicalID)
	r.Citations = dedupeIDs(r.Citations, r.CanonicalID)
	if n := len(r.References); n > r.ReferenceCount {
		r.ReferenceCount = n
	}
	if n := len(r.Citations); n > r.CitationCount {
		r.CitationCount = n
	}
}

// Merge folds src into r under the monotone-enrichment rule: a field
// already populated is never cleared by an empty incoming value, two
// non-empty scalar values resolve last-writer-wins, set-valued fields
// merge by union, and counts never regress. The CanonicalID of r is
// unchanged.
func (r *PublicationRecord) Merge(src *PublicationRecord) {
	if src.Title != "" {
		r.Title = src.Title
	}
	if src.Year != 0 {
		r.Year = src.Year
	}
	if src.Abstract != "" {
		r.Abstract = src.Abstract
	}
	if len(src.Authors) > 0 {
		r.Authors = src.Authors
	}
	if src.Venue != "" {
		r.Venue = src.Venue
	}
	if src.DOI != "" {
		r.DOI = src.DOI
	}
	if src.Source != "" {
		r.Source = src.Source
	}
	r.References = unionIDs(r.References, src.References)
	r.Citations = unionIDs(r.Citations, src.Citations)
	if src.ReferenceCount > r.ReferenceCount {
		r.ReferenceCount = src.ReferenceCount
	}
	if src.CitationCount > r.CitationCount {
		r.CitationCount = src.CitationCount
	}
	r.Normalize()
}

// dedupeIDs returns ids with duplicates and any occurrence of self
// removed, preserving first-seen order.
func dedupeIDs(ids []string, self string) []string {
	if len(ids) == 0 {
		return ids
	}
	seen := make(map[string]struct{}, len(ids))
	out := ids[:0:0]
	for _, id := range ids {
		if id == "" || id == self {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// unionIDs returns the union of a and b, preserving the order of a and
// appending unseen elements of b.
func unionIDs(a, b []string) []string {
	if len(b) == 0 {
		return a
	}
	seen := make(map[string]struct{}, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, id := range a {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	for _, id := range b {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ident classifies bibliographic identifiers and maps them to
// namespaced canonical ids.
package ident

import (
	"regexp"
	"strings"
)

// Kind classifies an input identifier.
type Kind int

const (
	KindUnknown Kind = iota
	KindDOI
	KindEID
	KindDBLP
)

func (k Kind) String() string {
	switch k {
	case KindDOI:
		return "doi"
	case KindEID:
		return "eid"
	case KindDBLP:
		return "dblp"
	default:
		return "unknown"
	}
}

// doiPattern matches DOIs: "10.1145/1234567.1234568". A leading "doi:"
// or "https://doi.org/" prefix is stripped before matching.
var doiPattern = regexp.MustCompile(`^10\.\d{4,9}/[^\s]+$`)

// eidPattern matches Scopus EIDs: bare numeric ("85001234567") or with
// the "2-s2.0-" prefix Scopus uses in search results.
var eidPattern = regexp.MustCompile(`^(?:2-s2\.0-)?(\d{6,13})$`)

// dblpPattern matches DBLP record keys: "conf/icse/SmithJ20",
// "journals/tse/Knuth84".
var dblpPattern = regexp.MustCompile(`^(?:conf|journals|books|phd|series|reference)/[^\s/]+/[^\s/]+$`)

// Classify determines the identifier kind and returns the normalized
// form. DOIs lose any "doi:" or resolver-URL prefix; EIDs lose the
// "2-s2.0-" prefix and are left-padded to 10 digits.
func Classify(identifier string) (Kind, string) {
	identifier = strings.TrimSpace(identifier)

	doi := strings.TrimPrefix(identifier, "doi:")
	doi = strings.TrimPrefix(doi, "https://doi.org/")
	doi = strings.TrimPrefix(doi, "http://doi.org/")
	if doiPattern.MatchString(doi) {
		return KindDOI, doi
	}

	if m := eidPattern.FindStringSubmatch(identifier); m != nil {
		return KindEID, padEID(m[1])
	}

	if dblpPattern.MatchString(identifier) {
		return KindDBLP, identifier
	}

	return KindUnknown, identifier
}

// Canonical returns the namespaced canonical id for a normalized
// identifier, e.g. "doi:10.1145/3576915.3623157".
func Canonical(kind Kind, normalized string) string {
	if kind == KindUnknown || normalized == "" {
		return ""
	}
	return kind.String() + ":" + normalized
}

// Split is the inverse of Canonical. Ids without a recognized
// namespace prefix report KindUnknown with the input unchanged.
func Split(canonical string) (Kind, string) {
	prefix, rest, ok := strings.Cut(canonical, ":")
	if !ok {
		return KindUnknown, canonical
	}
	switch prefix {
	case "doi":
		return KindDOI, rest
	case "eid":
		return KindEID, rest
	case "dblp":
		return KindDBLP, rest
	default:
		return KindUnknown, canonical
	}
}

// padEID left-pads a numeric EID to 10 digits, matching how Scopus
// zero-pads short legacy ids.
func padEID(eid string) string {
	for len(eid) < 10 {
		eid = "0" + eid
	}
	return eid
}

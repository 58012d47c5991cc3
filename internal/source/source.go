// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package source implements the bibliographic source clients. Each
// client normalizes its source-native payloads into
// types.PublicationRecord values; the resolver owns fallback order and
// validation.
package source

import (
	"context"
	"errors"

	"github.com/pdiddy/citenet/internal/ident"
	"github.com/pdiddy/citenet/pkg/types"
)

// ErrNotFound is returned when a source has no record for the given
// identifier or title.
var ErrNotFound = errors.New("publication not found")

// ErrUnsupported is returned when a client does not implement the
// requested operation (e.g. Scopus has no title search).
var ErrUnsupported = errors.New("operation not supported by source")

// Client fetches publication records from one bibliographic source.
// Each client declares which operations it supports by returning
// ErrUnsupported from the others.
type Client interface {
	Name() string
	FetchByID(ctx context.Context, kind ident.Kind, value string) (*types.PublicationRecord, error)
	SearchByTitle(ctx context.Context, title string) (*types.PublicationRecord, error)
}

// ByPriority orders clients by the configured priority list. Unknown
// names are skipped; clients absent from the list keep their relative
// order after the listed ones.
func ByPriority(clients []Client, priority []string) []Client {
	if len(priority) == 0 {
		return clients
	}
	byName := make(map[string]Client, len(clients))
	for _, c := range clients {
		byName[c.Name()] = c
	}
	ordered := make([]Client, 0, len(clients))
	used := make(map[string]bool, len(clients))
	for _, name := range priority {
		if c, ok := byName[name]; ok && !used[name] {
			ordered = append(ordered, c)
			used[name] = true
		}
	}
	for _, c := range clients {
		if !used[c.Name()] {
			ordered = append(ordered, c)
		}
	}
	return ordered
}

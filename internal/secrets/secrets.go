// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads source API credentials from a dotenv file and
// the process environment. Environment variables take precedence over
// file entries.
//
// Recognized keys: SCOPUS_API_KEY, OPENCITATIONS_API_KEY,
// CROSSREF_MAILTO.
package secrets

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/pdiddy/citenet/pkg/types"
)

const (
	envScopusKey        = "SCOPUS_API_KEY"
	envOpenCitationsKey = "OPENCITATIONS_API_KEY"
	envCrossRefMailto   = "CROSSREF_MAILTO"
)

// Credentials holds the per-source API credentials.
type Credentials struct {
	ScopusAPIKey        string
	OpenCitationsAPIKey string
	CrossRefMailto      string
}

// Load reads credentials from the dotenv file at path (".env" when
// empty), overlaid by the process environment. A missing file is not
// an error; every source works unauthenticated at reduced quota except
// Scopus, which callers must treat as unavailable without its key.
func Load(path string) (Credentials, error) {
	if path == "" {
		path = ".env"
	}

	fileVals, err := godotenv.Read(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return Credentials{}, fmt.Errorf("reading %s: %w", path, err)
		}
		fileVals = map[string]string{}
	}

	get := func(key string) string {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			return v
		}
		return strings.TrimSpace(fileVals[key])
	}

	return Credentials{
		ScopusAPIKey:        get(envScopusKey),
		OpenCitationsAPIKey: get(envOpenCitationsKey),
		CrossRefMailto:      get(envCrossRefMailto),
	}, nil
}

// Apply copies non-empty credentials into cfg, leaving values already
// set by config file or flags intact.
func (c Credentials) Apply(cfg *types.SourceConfig) {
	if cfg.ScopusAPIKey == "" {
		cfg.ScopusAPIKey = c.ScopusAPIKey
	}
	if cfg.OpenCitationsAPIKey == "" {
		cfg.OpenCitationsAPIKey = c.OpenCitationsAPIKey
	}
	if cfg.CrossRefMailto == "" {
		cfg.CrossRefMailto = c.CrossRefMailto
	}
}

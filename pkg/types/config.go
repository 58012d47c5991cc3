package types

import "time"

// HTTPConfig holds shared HTTP settings used by source clients.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "citenet/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// SourceConfig holds settings for the bibliographic source clients.
type SourceConfig struct {
	HTTPConfig `yaml:",inline"`

	// Priority lists source names in fallback order. The resolver
	// attempts exact-id lookups and then title searches in this order.
	// Default: crossref, scopus, dblp.
	Priority []string `json:"priority" yaml:"priority"`

	// RequestDelay is the mandatory pause between consecutive network
	// calls across all sources (default 1s).
	RequestDelay time.Duration `json:"request_delay" yaml:"request_delay"`

	// ScopusAPIKey authenticates against the Elsevier Scopus APIs.
	ScopusAPIKey string `json:"scopus_api_key,omitempty" yaml:"scopus_api_key,omitempty"`

	// OpenCitationsAPIKey is sent to the OpenCitations index API.
	OpenCitationsAPIKey string `json:"opencitations_api_key,omitempty" yaml:"opencitations_api_key,omitempty"`

	// CrossRefMailto is the email for CrossRef polite-pool access.
	CrossRefMailto string `json:"crossref_mailto,omitempty" yaml:"crossref_mailto,omitempty"`
}

// CacheConfig holds settings for the record cache.
type CacheConfig struct {
	// CacheDir is the directory holding the cache database
	// (default "data").
	CacheDir string `json:"cache_dir" yaml:"cache_dir"`
}

// ExpandConfig holds settings for graph expansion and relationship
// scoring.
type ExpandConfig struct {
	// SharedThreshold is the minimum overlap ratio for a co-citing or
	// co-cited relationship to count as strong (default 0.10).
	SharedThreshold float64 `json:"shared_threshold" yaml:"shared_threshold"`

	// MinYear and MaxYear bound candidate publication years
	// (inclusive). Zero means unbounded on that side.
	MinYear int `json:"min_year,omitempty" yaml:"min_year,omitempty"`
	MaxYear int `json:"max_year,omitempty" yaml:"max_year,omitempty"`

	// IncludeUnknownYear controls whether candidates without a known
	// publication year pass the year filter when bounds are set.
	IncludeUnknownYear bool `json:"include_unknown_year" yaml:"include_unknown_year"`

	// MaxCandidates bounds how many discovered references and
	// citations are resolved per seed to build the scoring pool.
	// Zero means no bound.
	MaxCandidates int `json:"max_candidates,omitempty" yaml:"max_candidates,omitempty"`
}

// PipelineConfig groups all stage configurations.
type PipelineConfig struct {
	Sources SourceConfig `json:"sources" yaml:"sources"`
	Cache   CacheConfig  `json:"cache" yaml:"cache"`
	Expand  ExpandConfig `json:"expand" yaml:"expand"`
}

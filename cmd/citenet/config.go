// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"net/http"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/citenet/internal/cache"
	"github.com/pdiddy/citenet/internal/httputil"
	"github.com/pdiddy/citenet/internal/resolve"
	"github.com/pdiddy/citenet/internal/source"
	"github.com/pdiddy/citenet/pkg/types"
)

const defaultUserAgent = "citenet/0.1"

// sourceConfig assembles source settings from the config file, the
// environment, and command flags, in increasing precedence.
func sourceConfig(cmd *cobra.Command) types.SourceConfig {
	cfg := types.SourceConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   viper.GetDuration("timeout"),
			UserAgent: viper.GetString("user_agent"),
		},
		Priority:            viper.GetStringSlice("priority"),
		RequestDelay:        viper.GetDuration("request_delay"),
		ScopusAPIKey:        viper.GetString("scopus_api_key"),
		OpenCitationsAPIKey: viper.GetString("opencitations_api_key"),
		CrossRefMailto:      viper.GetString("crossref_mailto"),
	}

	if cmd.Flags().Changed("timeout") {
		cfg.Timeout, _ = cmd.Flags().GetDuration("timeout")
	}
	if cmd.Flags().Changed("delay") {
		cfg.RequestDelay, _ = cmd.Flags().GetDuration("delay")
	}

	loadedCreds.Apply(&cfg)
	return cfg
}

func cacheConfig(cmd *cobra.Command) types.CacheConfig {
	dir := viper.GetString("cache_dir")
	if cmd.Flags().Changed("cache-dir") {
		dir, _ = cmd.Flags().GetString("cache-dir")
	}
	return types.CacheConfig{CacheDir: dir}
}

func expandConfig(cmd *cobra.Command) types.ExpandConfig {
	cfg := types.ExpandConfig{
		SharedThreshold:    viper.GetFloat64("shared_threshold"),
		MinYear:            viper.GetInt("min_year"),
		MaxYear:            viper.GetInt("max_year"),
		IncludeUnknownYear: viper.GetBool("include_unknown_year"),
		MaxCandidates:      viper.GetInt("max_candidates"),
	}

	if cmd.Flags().Changed("shared") {
		cfg.SharedThreshold, _ = cmd.Flags().GetFloat64("shared")
	}
	if cmd.Flags().Changed("min-year") {
		cfg.MinYear, _ = cmd.Flags().GetInt("min-year")
	}
	if cmd.Flags().Changed("max-year") {
		cfg.MaxYear, _ = cmd.Flags().GetInt("max-year")
	}
	if cmd.Flags().Changed("include-unknown-year") {
		cfg.IncludeUnknownYear, _ = cmd.Flags().GetBool("include-unknown-year")
	}
	if cmd.Flags().Changed("max-candidates") {
		cfg.MaxCandidates, _ = cmd.Flags().GetInt("max-candidates")
	}
	return cfg
}

// addSourceFlags registers the flags shared by network-facing commands.
func addSourceFlags(cmd *cobra.Command) {
	cmd.Flags().Duration("timeout", 0, "HTTP request timeout (default 60s)")
	cmd.Flags().Duration("delay", 0, "delay between consecutive API requests (default 1s)")
	cmd.Flags().String("cache-dir", "", "directory holding the record cache (default data)")
}

// newClients builds the source clients behind one rate-gated HTTP
// client. Scopus is omitted without an API key; it rejects anonymous
// requests outright.
func newClients(cfg types.SourceConfig) []source.Client {
	gate := httputil.NewClient(&http.Client{Timeout: cfg.Timeout}, cfg.UserAgent, cfg.RequestDelay)

	clients := []source.Client{
		&source.CrossRefClient{
			HTTP:             gate,
			Mailto:           cfg.CrossRefMailto,
			OpenCitationsKey: cfg.OpenCitationsAPIKey,
		},
		&source.DBLPClient{HTTP: gate},
	}
	if cfg.ScopusAPIKey != "" {
		clients = append(clients, &source.ScopusClient{HTTP: gate, APIKey: cfg.ScopusAPIKey})
	}
	return clients
}

// openResolver wires the cache and source clients into a resolver.
// The caller owns closing the returned cache.
func openResolver(cmd *cobra.Command) (*resolve.Resolver, *cache.Cache, error) {
	c, err := cache.Open(cacheConfig(cmd))
	if err != nil {
		return nil, nil, err
	}
	srcCfg := sourceConfig(cmd)
	r := resolve.New(c, newClients(srcCfg), srcCfg.Priority, cmd.OutOrStdout())
	return r, c, nil
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the citenet CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/citenet/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedCreds holds API credentials loaded from .env at startup.
var loadedCreds secrets.Credentials

// rootCmd is the base command for the citenet CLI.
var rootCmd = &cobra.Command{
	Use:   "citenet",
	Short: "Citation-network expansion for scholarly publications",
	Long: `citenet expands a set of seed publications into a related-publication
network. It resolves publication identity across bibliographic sources
(CrossRef with OpenCitations, Scopus, DBLP), caches records in a local
SQLite database, and scores strong citation relationships by reference
and citation overlap.

Each stage is a subcommand: expand runs the full pipeline, resolve
fetches a single record, and cache inspects the local store.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		envFile, _ := cmd.Flags().GetString("env-file")
		creds, err := secrets.Load(envFile)
		if err != nil {
			return err
		}
		loadedCreds = creds
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./citenet.yaml or ~/.config/citenet/config.yaml)")
	rootCmd.PersistentFlags().String("env-file", "", "dotenv file with API credentials (default: ./.env)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("citenet")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "citenet"))
		}
	}

	viper.SetDefault("timeout", 60*time.Second)
	viper.SetDefault("user_agent", defaultUserAgent)
	viper.SetDefault("request_delay", 1*time.Second)
	viper.SetDefault("priority", []string{"crossref", "scopus", "dblp"})
	viper.SetDefault("cache_dir", "data")
	viper.SetDefault("shared_threshold", 0.10)

	viper.SetEnvPrefix("CITENET")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

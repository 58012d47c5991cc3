// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/citenet/internal/cache"
	"github.com/pdiddy/citenet/internal/ident"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and maintain the local record cache",
	Long: `Cache operates on the local SQLite record store. Use subcommands to
print a single record, delete stale entries so the next run re-fetches
them, or export everything as YAML.`,
}

var cacheGetCmd = &cobra.Command{
	Use:   "get [id]",
	Short: "Print one cached record as YAML",
	Args:  cobra.ExactArgs(1),
	RunE:  runCacheGet,
}

var cacheDeleteCmd = &cobra.Command{
	Use:   "delete [ids...]",
	Short: "Delete cached records by canonical id",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runCacheDelete,
}

var cacheExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export every cached record as YAML",
	RunE:  runCacheExport,
}

func init() {
	cacheCmd.PersistentFlags().String("cache-dir", "", "directory holding the record cache (default data)")
	cacheExportCmd.Flags().String("output", "", "write export to a file instead of stdout")

	cacheCmd.AddCommand(cacheGetCmd)
	cacheCmd.AddCommand(cacheDeleteCmd)
	cacheCmd.AddCommand(cacheExportCmd)

	rootCmd.AddCommand(cacheCmd)
}

// canonicalArg accepts both canonical ("doi:10.1/x") and raw
// ("10.1/x") identifier forms.
func canonicalArg(arg string) (string, error) {
	if kind, value := ident.Split(arg); kind != ident.KindUnknown {
		return ident.Canonical(kind, value), nil
	}
	kind, value := ident.Classify(arg)
	if kind == ident.KindUnknown {
		return "", fmt.Errorf("unrecognized identifier %q", arg)
	}
	return ident.Canonical(kind, value), nil
}

func openCache(cmd *cobra.Command) (*cache.Cache, error) {
	return cache.Open(cacheConfig(cmd))
}

func runCacheGet(cmd *cobra.Command, args []string) error {
	id, err := canonicalArg(args[0])
	if err != nil {
		return err
	}

	c, err := openCache(cmd)
	if err != nil {
		return err
	}
	defer c.Close()

	rec, err := c.Get(id)
	if err != nil {
		return fmt.Errorf("%s: %w", id, err)
	}

	data, err := yaml.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshaling record: %w", err)
	}
	_, err = os.Stdout.Write(data)
	return err
}

func runCacheDelete(cmd *cobra.Command, args []string) error {
	c, err := openCache(cmd)
	if err != nil {
		return err
	}
	defer c.Close()

	for _, arg := range args {
		id, err := canonicalArg(arg)
		if err != nil {
			return err
		}
		if err := c.Delete(id); err != nil {
			return err
		}
		fmt.Printf("deleted: %s\n", id)
	}
	return nil
}

func runCacheExport(cmd *cobra.Command, args []string) error {
	c, err := openCache(cmd)
	if err != nil {
		return err
	}
	defer c.Close()

	out := os.Stdout
	if path, _ := cmd.Flags().GetString("output"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("creating %s: %w", path, err)
		}
		defer f.Close()
		out = f
	}
	return c.ExportYAML(out)
}

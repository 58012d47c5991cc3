// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/citenet/internal/resolve"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve [identifier]",
	Short: "Resolve one publication and cache its record",
	Long: `Resolve fetches a single publication record by DOI, Scopus EID, or
DBLP key, falling back to title search with --title. The resolved
record is cached and printed as YAML.`,
	RunE: runResolve,
}

func init() {
	resolveCmd.Flags().String("title", "", "resolve by title search instead of an identifier")
	addSourceFlags(resolveCmd)

	rootCmd.AddCommand(resolveCmd)
}

func runResolve(cmd *cobra.Command, args []string) error {
	title, _ := cmd.Flags().GetString("title")

	var hint resolve.Hint
	switch {
	case len(args) > 0:
		hint = resolve.HintFromIdentifier(strings.Join(args, " "))
		if title != "" {
			hint.Title = title
		}
	case title != "":
		hint = resolve.Hint{Title: title}
	default:
		return fmt.Errorf("provide an identifier argument or --title")
	}

	r, c, err := openResolver(cmd)
	if err != nil {
		return err
	}
	defer c.Close()

	rec, err := r.Resolve(context.Background(), hint)
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshaling record: %w", err)
	}
	_, err = os.Stdout.Write(data)
	return err
}

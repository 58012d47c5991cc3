// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/citenet/internal/pipeline"
	"github.com/pdiddy/citenet/internal/resolve"
)

var expandCmd = &cobra.Command{
	Use:   "expand [identifiers...]",
	Short: "Expand seed publications into a related-publication network",
	Long: `Expand resolves each seed publication, walks its references and
citations, and scores strong citation relationships against the
configured overlap threshold. Seeds come from command arguments, a CSV
file (--seeds), or both. The union of all strong relationship sets is
written as sorted canonical ids, one per line.`,
	RunE: runExpand,
}

func init() {
	expandCmd.Flags().String("seeds", "", "CSV file of seed publications (Title,ID columns)")
	expandCmd.Flags().String("output", filepath.Join("data", "related_ids.txt"), "output file for related ids")
	expandCmd.Flags().Float64("shared", 0, "minimum shared-reference ratio for a strong relationship (default 0.10)")
	expandCmd.Flags().Int("min-year", 0, "exclude candidates published before this year")
	expandCmd.Flags().Int("max-year", 0, "exclude candidates published after this year")
	expandCmd.Flags().Bool("include-unknown-year", false, "let candidates without a known year pass the year filter")
	expandCmd.Flags().Int("max-candidates", 0, "cap on resolved candidates per seed (0 = unlimited)")
	addSourceFlags(expandCmd)

	rootCmd.AddCommand(expandCmd)
}

func runExpand(cmd *cobra.Command, args []string) error {
	hints := make([]resolve.Hint, 0, len(args))
	for _, arg := range args {
		hints = append(hints, resolve.HintFromIdentifier(arg))
	}

	seedsFile, _ := cmd.Flags().GetString("seeds")
	if seedsFile != "" {
		fromCSV, err := readSeedsCSV(seedsFile)
		if err != nil {
			return err
		}
		hints = append(hints, fromCSV...)
	}
	if len(hints) == 0 {
		return fmt.Errorf("provide seed identifiers as arguments or via --seeds")
	}

	r, c, err := openResolver(cmd)
	if err != nil {
		return err
	}
	defer c.Close()

	p := pipeline.New(r, c.Get, expandConfig(cmd), os.Stdout)
	summary, err := p.Run(context.Background(), hints)
	if err != nil {
		return err
	}

	output, _ := cmd.Flags().GetString("output")
	if err := writeIDList(output, summary.RelatedIDs); err != nil {
		return err
	}
	fmt.Printf("Wrote %d related ids to %s\n", len(summary.RelatedIDs), output)

	if summary.Skipped > 0 {
		return fmt.Errorf("%d seed(s) failed to resolve", summary.Skipped)
	}
	return nil
}

// readSeedsCSV parses a Title,ID seed file into resolution hints. The
// header row is skipped; rows with an empty ID column fall back to a
// title hint.
func readSeedsCSV(path string) ([]resolve.Hint, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening seeds file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	var hints []resolve.Hint
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		title := strings.TrimSpace(row[0])
		var id string
		if len(row) > 1 {
			id = strings.Trim(strings.TrimSpace(row[1]), `"`)
		}
		if i == 0 && strings.EqualFold(title, "title") {
			continue
		}

		switch {
		case id != "":
			hint := resolve.HintFromIdentifier(id)
			if title != "" {
				// The title doubles as a search fallback when the id
				// lookup comes up empty.
				hint.Title = title
			}
			hints = append(hints, hint)
		case title != "":
			hints = append(hints, resolve.Hint{Title: title})
		}
	}
	return hints, nil
}

func writeIDList(path string, ids []string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
	}

	var sb strings.Builder
	for _, id := range ids {
		sb.WriteString(id)
		sb.WriteByte('\n')
	}
	if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

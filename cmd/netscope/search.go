// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/netscope/internal/engine"
	"github.com/pdiddy/netscope/internal/export"
	"github.com/pdiddy/netscope/internal/history"
	"github.com/pdiddy/netscope/internal/targets"
	"github.com/pdiddy/netscope/pkg/types"
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Query the configured sources and merge the results",
	Long: `Search fans a query out to every requested source that is live and
supports the query type, pages through each source's results, and merges
everything into one deduplicated result set per target.

Targets are comma-separated or read from a .txt file (one per line).
Results print as a table; --output exports CSV or TXT files, --run-file
saves the full run as YAML.`,
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().StringP("type", "t", "", "query type: domain, ip, or company")
	searchCmd.Flags().StringP("query", "q", "", "targets: comma-separated values or a .txt file path")
	searchCmd.Flags().StringP("source", "s", "all", "sources to query: all or a comma-separated subset (fofa,hunter,quake)")
	searchCmd.Flags().Int("page", 1, "first page to request")
	searchCmd.Flags().Int("size", 0, "results per page (clamped to each source's ceiling)")
	searchCmd.Flags().StringP("output", "o", "", "export path: a .csv/.txt file for one target, or a directory for many")
	searchCmd.Flags().String("run-file", "", "save the full run as a YAML file")
	searchCmd.Flags().Bool("no-history", false, "skip recording this run in the history database")

	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	typeFlag, _ := cmd.Flags().GetString("type")
	queryFlag, _ := cmd.Flags().GetString("query")
	sourceFlag, _ := cmd.Flags().GetString("source")
	page, _ := cmd.Flags().GetInt("page")
	size, _ := cmd.Flags().GetInt("size")
	output, _ := cmd.Flags().GetString("output")
	runFile, _ := cmd.Flags().GetString("run-file")
	noHistory, _ := cmd.Flags().GetBool("no-history")

	if typeFlag == "" || queryFlag == "" {
		return fmt.Errorf("flags --type and --query are required")
	}
	qt, err := types.ParseQueryType(typeFlag)
	if err != nil {
		return err
	}

	targetList, err := targets.Parse(queryFlag)
	if err != nil {
		return err
	}
	if err := targets.Validate(targetList, qt); err != nil {
		return err
	}

	cfg := loadConfig()
	if size <= 0 {
		size = cfg.Search.PageSize
	}

	adapters := buildAdapters(cfg)
	if len(adapters) == 0 {
		return fmt.Errorf("no API credentials configured: set fofa.api_key, hunter.api_key, or quake.api_key")
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	fmt.Fprintln(os.Stderr, "Checking source credentials...")
	statuses, err := engine.ValidateAll(ctx, adapters, os.Stderr)
	if err != nil {
		return err
	}

	requested := splitSources(sourceFlag)
	tasks, excluded, err := engine.Plan(qt, targetList, requested, adapters, statuses, page, size)
	for _, ex := range excluded {
		fmt.Fprintf(os.Stderr, "skipping %s: %s\n", ex.Source, ex.Reason)
	}
	if err != nil {
		if errors.Is(err, engine.ErrNoApplicableSource) {
			return fmt.Errorf("%w: check --source and --type against the skipped sources above", err)
		}
		return err
	}

	eng := engine.New(adapters, cfg.Search, os.Stderr)
	rs := eng.Execute(ctx, tasks)
	rs.Finalize(qt)

	for _, target := range targetList {
		fmt.Println()
		export.FormatTable(os.Stdout, target, rs.Records(target), diagsFor(rs, target))
	}
	if dropped := rs.Dropped(); dropped > 0 {
		fmt.Fprintf(os.Stderr, "%d sparse source rows dropped during normalization\n", dropped)
	}

	if output != "" {
		if err := exportResults(rs, targetList, qt, output); err != nil {
			return err
		}
	}
	if runFile != "" {
		query := export.RunQuery{
			Type:    string(qt),
			Targets: targetList,
			Sources: engine.LiveSources(statuses),
			Page:    page,
			Size:    size,
		}
		if err := export.WriteRunFile(runFile, query, rs, targetList); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Run saved to %s\n", runFile)
	}

	if cfg.History.Enabled && !noHistory {
		if err := recordHistory(ctx, cfg, qt, rs, targetList); err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not record history: %v\n", err)
		}
	}
	return nil
}

// splitSources parses the --source flag value.
func splitSources(flag string) []string {
	if flag == "" || flag == "all" {
		return nil
	}
	var names []string
	for _, part := range strings.Split(flag, ",") {
		if name := strings.TrimSpace(part); name != "" {
			names = append(names, name)
		}
	}
	return names
}

func diagsFor(rs *engine.ResultSet, target string) []engine.Diagnostic {
	var diags []engine.Diagnostic
	for _, d := range rs.Diagnostics() {
		if d.Target == target {
			diags = append(diags, d)
		}
	}
	return diags
}

// exportResults writes CSV or TXT exports. A single target may go to one
// named file; multiple targets always go to a directory, one file each.
func exportResults(rs *engine.ResultSet, targetList []string, qt types.QueryType, output string) error {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(output)), ".")

	if ext == "csv" || ext == "txt" {
		if len(targetList) == 1 {
			if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
				return fmt.Errorf("creating export directory: %w", err)
			}
			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("creating export file: %w", err)
			}
			defer f.Close()

			records := rs.Records(targetList[0])
			if ext == "txt" {
				err = export.WriteTXT(f, records, qt)
			} else {
				err = export.WriteCSV(f, records)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "Exported %d assets to %s\n", len(records), output)
			return nil
		}
		// Many targets with a file path: use its directory, keep the format.
		output = filepath.Dir(output)
	} else {
		ext = "csv"
	}

	sink := &export.FileSink{Dir: output, Format: ext, Type: qt}
	if err := engine.Emit(rs, targetList, sink); err != nil {
		return err
	}
	for _, path := range sink.Written {
		fmt.Fprintf(os.Stderr, "Exported %s\n", path)
	}
	return nil
}

func recordHistory(ctx context.Context, cfg types.Config, qt types.QueryType,
	rs *engine.ResultSet, targetList []string) error {

	store, err := history.Open(cfg.History.Dir)
	if err != nil {
		return err
	}
	defer store.Close()

	for _, target := range targetList {
		var warnings []string
		for _, d := range diagsFor(rs, target) {
			warnings = append(warnings, d.String())
		}
		if _, err := store.Record(ctx, qt, target, rs.Records(target), warnings); err != nil {
			return err
		}
	}
	return nil
}

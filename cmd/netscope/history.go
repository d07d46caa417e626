// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/netscope/internal/history"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded runs and re-read their assets",
	Long: `History lists runs recorded in the local SQLite database. Use --run to
print the assets a specific run stored, without touching the source APIs.`,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().String("target", "", "filter runs by target")
	historyCmd.Flags().Int("limit", 20, "maximum number of runs to list")
	historyCmd.Flags().Int64("run", 0, "print the assets stored for this run ID")
	historyCmd.Flags().Bool("json", false, "output as JSON")

	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	target, _ := cmd.Flags().GetString("target")
	limit, _ := cmd.Flags().GetInt("limit")
	runID, _ := cmd.Flags().GetInt64("run")
	asJSON, _ := cmd.Flags().GetBool("json")

	cfg := loadConfig()
	store, err := history.Open(cfg.History.Dir)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if runID > 0 {
		records, err := store.Assets(ctx, runID)
		if err != nil {
			return err
		}
		if asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(records)
		}
		for _, r := range records {
			fmt.Printf("%-8s  %-30s  %-15s  %d\n", r.Source, r.Host, r.IP, r.Port)
		}
		fmt.Printf("%d assets in run %d\n", len(records), runID)
		return nil
	}

	runs, err := store.Runs(ctx, target, limit)
	if err != nil {
		return err
	}
	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(runs)
	}

	if len(runs) == 0 {
		fmt.Println("No recorded runs.")
		return nil
	}
	fmt.Printf("%-6s  %-8s  %-30s  %-7s  %-20s  %s\n",
		"ID", "Type", "Target", "Assets", "When", "Warnings")
	fmt.Println(strings.Repeat("-", 100))
	for _, r := range runs {
		fmt.Printf("%-6d  %-8s  %-30s  %-7d  %-20s  %d\n",
			r.ID, r.QueryType, r.Target, r.AssetCount,
			r.CreatedAt.Local().Format("2006-01-02 15:04:05"), len(r.Warnings))
	}
	return nil
}

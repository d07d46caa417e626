// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/netscope/internal/engine"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "Probe each configured source's credential",
	Long: `Sources runs one cheap authenticated call per configured source and
reports whether the credential is live. The exit status is non-zero when
no source is usable.`,
	RunE: runSources,
}

func init() {
	rootCmd.AddCommand(sourcesCmd)
}

func runSources(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	adapters := buildAdapters(cfg)
	if len(adapters) == 0 {
		return fmt.Errorf("no API credentials configured: set fofa.api_key, hunter.api_key, or quake.api_key")
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	statuses, err := engine.ValidateAll(ctx, adapters, os.Stdout)
	if err != nil {
		return err
	}
	fmt.Printf("%d of %d sources live\n", len(engine.LiveSources(statuses)), len(adapters))
	return nil
}

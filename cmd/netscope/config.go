// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"net/http"
	"time"

	"github.com/spf13/viper"

	"github.com/pdiddy/netscope/internal/source"
	"github.com/pdiddy/netscope/pkg/types"
)

// loadConfig assembles the run configuration from viper and the loaded
// secrets, applying built-in defaults.
func loadConfig() types.Config {
	cfg := types.Config{
		Fofa: types.SourceConfig{
			APIKey:  secretDefault("fofa-api-key", viper.GetString("fofa.api_key")),
			BaseURL: viper.GetString("fofa.base_url"),
		},
		Hunter: types.SourceConfig{
			APIKey:  secretDefault("hunter-api-key", viper.GetString("hunter.api_key")),
			BaseURL: viper.GetString("hunter.base_url"),
		},
		Quake: types.SourceConfig{
			APIKey:  secretDefault("quake-api-key", viper.GetString("quake.api_key")),
			BaseURL: viper.GetString("quake.base_url"),
		},
		Search: types.SearchConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   viper.GetDuration("search.timeout"),
				UserAgent: viper.GetString("search.user_agent"),
			},
			PageSize:    viper.GetInt("search.page_size"),
			Concurrency: viper.GetInt("search.concurrency"),
			TaskTimeout: viper.GetDuration("search.task_timeout"),
		},
		History: types.HistoryConfig{
			Enabled: historyEnabled(),
			Dir:     viper.GetString("history.dir"),
		},
	}

	if cfg.Search.Timeout <= 0 {
		cfg.Search.Timeout = 2 * time.Minute
	}
	if cfg.Search.UserAgent == "" {
		cfg.Search.UserAgent = "netscope/" + version
	}
	if cfg.Search.PageSize <= 0 {
		cfg.Search.PageSize = 100
	}
	if cfg.History.Dir == "" {
		cfg.History.Dir = "history"
	}
	return cfg
}

// historyEnabled defaults to on; history.enabled=false in the config turns
// recording off for every run.
func historyEnabled() bool {
	if viper.IsSet("history.enabled") {
		return viper.GetBool("history.enabled")
	}
	return true
}

// buildAdapters constructs one adapter per source that has a credential
// configured. Credential liveness is checked separately.
func buildAdapters(cfg types.Config) []source.Adapter {
	client := &http.Client{Timeout: cfg.Search.Timeout}

	var adapters []source.Adapter
	if cfg.Fofa.APIKey != "" {
		adapters = append(adapters, source.NewFofa(cfg.Fofa, cfg.Search.HTTPConfig, client))
	}
	if cfg.Hunter.APIKey != "" {
		adapters = append(adapters, source.NewHunter(cfg.Hunter, cfg.Search.HTTPConfig, client))
	}
	if cfg.Quake.APIKey != "" {
		adapters = append(adapters, source.NewQuake(cfg.Quake, cfg.Search.HTTPConfig, client))
	}
	return adapters
}

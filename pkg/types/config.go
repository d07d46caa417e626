// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by every source adapter.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "netscope/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// SourceConfig holds the credential and endpoint override for one source.
// It is built once at startup and read-only afterwards.
type SourceConfig struct {
	// APIKey is the secret token for the source.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// BaseURL overrides the source's default API base address. Useful for
	// mirror endpoints; empty means the adapter's built-in default.
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`
}

// SearchConfig holds settings for one aggregation run.
type SearchConfig struct {
	HTTPConfig `yaml:",inline"`

	// PageSize is the requested results per page. Each adapter clamps it
	// to its own ceiling before any request is issued.
	PageSize int `json:"page_size" yaml:"page_size"`

	// Concurrency bounds how many (source, target) task groups run at
	// once (default: number of configured sources).
	Concurrency int `json:"concurrency" yaml:"concurrency"`

	// TaskTimeout bounds one (source, target) task including all of its
	// pages (default 5m; source queries can legitimately run for minutes).
	TaskTimeout time.Duration `json:"task_timeout" yaml:"task_timeout"`
}

// HistoryConfig holds settings for the run history store.
type HistoryConfig struct {
	// Enabled controls whether runs are recorded to the SQLite history.
	Enabled bool `json:"enabled" yaml:"enabled"`

	// Dir is the directory holding the history database (contains
	// netscope.db).
	Dir string `json:"dir" yaml:"dir"`
}

// Config groups all configuration for the CLI.
type Config struct {
	Fofa    SourceConfig  `json:"fofa" yaml:"fofa"`
	Hunter  SourceConfig  `json:"hunter" yaml:"hunter"`
	Quake   SourceConfig  `json:"quake" yaml:"quake"`
	Search  SearchConfig  `json:"search" yaml:"search"`
	History HistoryConfig `json:"history" yaml:"history"`
}

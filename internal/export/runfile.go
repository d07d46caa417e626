// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"fmt"
	"os"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/netscope/internal/engine"
	"github.com/pdiddy/netscope/pkg/types"
)

// RunFile is the on-disk representation of one aggregation run. A saved
// run can be re-rendered or re-exported later without touching the source
// APIs again.
type RunFile struct {
	Query   RunQuery                       `yaml:"query"`
	Results map[string][]types.AssetRecord `yaml:"results"`
	Summary RunSummary                     `yaml:"summary"`
}

// RunQuery stores the run parameters in a serializable form.
type RunQuery struct {
	Type    string   `yaml:"type"`
	Targets []string `yaml:"targets"`
	Sources []string `yaml:"sources"`
	Page    int      `yaml:"page"`
	Size    int      `yaml:"size"`
}

// RunSummary stores result statistics and a timestamp.
type RunSummary struct {
	TotalAssets int       `yaml:"total_assets"`
	RowsDropped int       `yaml:"rows_dropped"`
	Warnings    []string  `yaml:"warnings,omitempty"`
	Timestamp   time.Time `yaml:"timestamp"`
}

// WriteRunFile saves a finalized result set to a YAML file.
func WriteRunFile(path string, query RunQuery, rs *engine.ResultSet, targets []string) error {
	rf := RunFile{
		Query:   query,
		Results: make(map[string][]types.AssetRecord, len(targets)),
	}

	total := 0
	for _, target := range targets {
		records := rs.Records(target)
		rf.Results[target] = records
		total += len(records)
	}

	rf.Summary = RunSummary{
		TotalAssets: total,
		RowsDropped: rs.Dropped(),
		Timestamp:   time.Now(),
	}
	for _, d := range rs.Diagnostics() {
		rf.Summary.Warnings = append(rf.Summary.Warnings, d.String())
	}

	data, err := yaml.Marshal(&rf)
	if err != nil {
		return fmt.Errorf("marshaling run file: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadRunFile loads a previously saved run from disk.
func ReadRunFile(path string) (*RunFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading run file: %w", err)
	}
	var rf RunFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("parsing run file: %w", err)
	}
	return &rf, nil
}

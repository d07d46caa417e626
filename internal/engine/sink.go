// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package engine

import "github.com/pdiddy/netscope/pkg/types"

// Sink consumes one target's deduplicated records plus the diagnostics
// collected while querying it. Implementations render to the terminal,
// write export files, or persist history; the engine never inspects what
// a sink does with the data.
type Sink interface {
	Consume(target string, records []types.AssetRecord, diags []Diagnostic) error
}

// Emit feeds every target of a finalized result set to the sink, in the
// given target order. Diagnostics are partitioned per target.
func Emit(rs *ResultSet, targets []string, sink Sink) error {
	byTarget := make(map[string][]Diagnostic)
	for _, d := range rs.Diagnostics() {
		byTarget[d.Target] = append(byTarget[d.Target], d)
	}
	for _, target := range targets {
		if err := sink.Consume(target, rs.Records(target), byTarget[target]); err != nil {
			return err
		}
	}
	return nil
}

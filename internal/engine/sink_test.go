// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package engine

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/netscope/pkg/types"
)

type captureSink struct {
	targets []string
	records map[string][]types.AssetRecord
	diags   map[string][]Diagnostic
	err     error
}

func (s *captureSink) Consume(target string, records []types.AssetRecord, diags []Diagnostic) error {
	if s.err != nil {
		return s.err
	}
	if s.records == nil {
		s.records = make(map[string][]types.AssetRecord)
		s.diags = make(map[string][]Diagnostic)
	}
	s.targets = append(s.targets, target)
	s.records[target] = records
	s.diags[target] = diags
	return nil
}

func TestEmitPartitionsDiagnosticsPerTarget(t *testing.T) {
	rs := NewResultSet([]string{"example.com", "example.org"})
	rs.append("example.com", []types.AssetRecord{rec("www.example.com", "1.1.1.1", 443, "fofa")}, 0)
	rs.fail(Diagnostic{Source: "hunter", Target: "example.org", Err: fmt.Errorf("HTTP 500")})

	sink := &captureSink{}
	require.NoError(t, Emit(rs, []string{"example.com", "example.org"}, sink))

	assert.Equal(t, []string{"example.com", "example.org"}, sink.targets)
	assert.Len(t, sink.records["example.com"], 1)
	assert.Empty(t, sink.records["example.org"])
	assert.Empty(t, sink.diags["example.com"])
	require.Len(t, sink.diags["example.org"], 1)
	assert.Equal(t, "hunter", sink.diags["example.org"][0].Source)
}

func TestEmitStopsOnSinkError(t *testing.T) {
	rs := NewResultSet([]string{"example.com"})
	sink := &captureSink{err: fmt.Errorf("disk full")}

	err := Emit(rs, []string{"example.com"}, sink)
	assert.ErrorContains(t, err, "disk full")
}

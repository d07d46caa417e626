// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package targets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/netscope/pkg/types"
)

func TestParseCommaSeparated(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   []string
		errMsg string
	}{
		{
			name:  "single target",
			input: "example.com",
			want:  []string{"example.com"},
		},
		{
			name:  "comma separated with spaces",
			input: "example.com, example.org ,example.net",
			want:  []string{"example.com", "example.org", "example.net"},
		},
		{
			name:  "full-width commas",
			input: "example.com，example.org",
			want:  []string{"example.com", "example.org"},
		},
		{
			name:  "empty segments skipped",
			input: "example.com,,example.org,",
			want:  []string{"example.com", "example.org"},
		},
		{
			name:   "empty input",
			input:  "   ",
			errMsg: "no targets found",
		},
		{
			name:  "missing txt file treated as literal",
			input: "does-not-exist.txt",
			want:  []string{"does-not-exist.txt"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			if tt.errMsg != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "targets.txt")
	content := "# seeds\nexample.com\n\n  example.org  \n# trailing comment\nexample.net\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	got, err := Parse(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"example.com", "example.org", "example.net"}, got)
}

func TestParseFileAllComments(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "targets.txt")
	require.NoError(t, os.WriteFile(path, []byte("# only\n# comments\n"), 0o644))

	_, err := Parse(path)
	assert.ErrorContains(t, err, "no targets found")
}

func TestDetect(t *testing.T) {
	tests := []struct {
		target string
		want   types.QueryType
		ok     bool
	}{
		{"93.184.216.34", types.QueryIP, true},
		{"10.0.0.1", types.QueryIP, true},
		{"example.com", types.QueryDomain, true},
		{"sub.example-site.co.uk", types.QueryDomain, true},
		{"256.1.1.1", "", false},
		{"1.2.3", "", false},
		{"Acme Corp", "", false},
		{"-bad.example.com", "", false},
		{".example.com", "", false},
		{"example.com.", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			got, ok := Detect(tt.target)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		list   []string
		qt     types.QueryType
		errMsg string
	}{
		{
			name: "matching domains",
			list: []string{"example.com", "example.org"},
			qt:   types.QueryDomain,
		},
		{
			name: "matching ips",
			list: []string{"1.2.3.4", "5.6.7.8"},
			qt:   types.QueryIP,
		},
		{
			name: "company names pass undetected",
			list: []string{"Acme Corp", "Globex"},
			qt:   types.QueryCompany,
		},
		{
			name:   "ip among domains",
			list:   []string{"example.com", "1.2.3.4"},
			qt:     types.QueryDomain,
			errMsg: "1.2.3.4 (looks like ip)",
		},
		{
			name:   "domain under ip query",
			list:   []string{"example.com"},
			qt:     types.QueryIP,
			errMsg: "example.com (looks like domain)",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.list, tt.qt)
			if tt.errMsg != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}
			assert.NoError(t, err)
		})
	}
}

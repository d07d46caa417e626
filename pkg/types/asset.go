// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the netscope pipeline.
package types

import "fmt"

// QueryType selects what kind of subject a search targets. It determines
// which sources participate in a run and which dedup key applies.
type QueryType string

const (
	QueryDomain  QueryType = "domain"
	QueryIP      QueryType = "ip"
	QueryCompany QueryType = "company"
)

// ParseQueryType converts a user-supplied string into a QueryType.
func ParseQueryType(s string) (QueryType, error) {
	switch QueryType(s) {
	case QueryDomain, QueryIP, QueryCompany:
		return QueryType(s), nil
	}
	return "", fmt.Errorf("unknown query type %q: expected domain, ip, or company", s)
}

// AssetRecord is the canonical, source-agnostic representation of one
// discovered asset. Absent string fields are empty; an absent port is zero.
// Every record carries at least one of Host or IP; adapters drop rows that
// have neither during normalization.
type AssetRecord struct {
	// Host is the asset's hostname, possibly including a port suffix as
	// reported by the source.
	Host string `json:"host,omitempty" yaml:"host,omitempty"`

	// IP is the asset's IPv4 or IPv6 address.
	IP string `json:"ip,omitempty" yaml:"ip,omitempty"`

	// Port is the service port, zero when the source did not report one.
	Port int `json:"port,omitempty" yaml:"port,omitempty"`

	// Title is the web page title, when the source captured one.
	Title string `json:"title,omitempty" yaml:"title,omitempty"`

	// Domain is the registered domain the asset belongs to.
	Domain string `json:"domain,omitempty" yaml:"domain,omitempty"`

	// Source identifies which search engine produced this record
	// (e.g. "fofa", "hunter", "quake").
	Source string `json:"source" yaml:"source"`
}

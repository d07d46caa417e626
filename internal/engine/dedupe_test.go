// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pdiddy/netscope/pkg/types"
)

func TestDedupKey(t *testing.T) {
	r := types.AssetRecord{Host: "www.example.com", IP: "1.2.3.4", Port: 443}

	assert.Equal(t, "www.example.com:443", DedupKey(r, types.QueryDomain))
	assert.Equal(t, "www.example.com:443", DedupKey(r, types.QueryCompany))
	assert.Equal(t, "1.2.3.4:443", DedupKey(r, types.QueryIP))

	// An absent port still yields a stable key.
	noPort := types.AssetRecord{Host: "www.example.com"}
	assert.Equal(t, "www.example.com:0", DedupKey(noPort, types.QueryDomain))
}

func TestDedupeFirstSeenWins(t *testing.T) {
	records := []types.AssetRecord{
		{Host: "www.example.com", IP: "1.1.1.1", Port: 443, Source: "fofa"},
		{Host: "www.example.com", IP: "2.2.2.2", Port: 443, Source: "hunter"},
		{Host: "mail.example.com", IP: "1.1.1.1", Port: 25, Source: "fofa"},
		{Host: "www.example.com", IP: "3.3.3.3", Port: 8080, Source: "quake"},
	}

	got := Dedupe(records, types.QueryDomain)
	assert.Len(t, got, 3)
	assert.Equal(t, "fofa", got[0].Source)
	assert.Equal(t, "mail.example.com", got[1].Host)
	assert.Equal(t, 8080, got[2].Port)
}

func TestDedupeKeyDependsOnQueryType(t *testing.T) {
	// Same ip:port, different hosts: duplicates for an IP query, distinct
	// for a domain query.
	records := []types.AssetRecord{
		{Host: "a.example.com", IP: "1.1.1.1", Port: 443},
		{Host: "b.example.com", IP: "1.1.1.1", Port: 443},
	}

	assert.Len(t, Dedupe(records, types.QueryIP), 1)
	assert.Len(t, Dedupe(records, types.QueryDomain), 2)
}

func TestDedupeExactKeyOnly(t *testing.T) {
	// Case and trailing-dot variants are distinct keys.
	records := []types.AssetRecord{
		{Host: "www.example.com", Port: 443},
		{Host: "WWW.example.com", Port: 443},
		{Host: "www.example.com.", Port: 443},
	}

	assert.Len(t, Dedupe(records, types.QueryDomain), 3)
}

func TestDedupeIdempotent(t *testing.T) {
	records := []types.AssetRecord{
		{Host: "www.example.com", Port: 443},
		{Host: "www.example.com", Port: 443},
		{Host: "mail.example.com", Port: 25},
	}

	once := Dedupe(records, types.QueryDomain)
	twice := Dedupe(once, types.QueryDomain)
	assert.Equal(t, once, twice)
}

func TestDedupeEmpty(t *testing.T) {
	assert.Empty(t, Dedupe(nil, types.QueryDomain))
}

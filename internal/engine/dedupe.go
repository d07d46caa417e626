// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package engine

import (
	"strconv"

	"github.com/pdiddy/netscope/pkg/types"
)

// Dedupe collapses a target's records in one stable pass: the first record
// for each key survives, later ones are discarded. The key is exact — a
// case or trailing-dot difference in the host produces a distinct key, by
// documented limitation.
func Dedupe(records []types.AssetRecord, qt types.QueryType) []types.AssetRecord {
	seen := make(map[string]bool, len(records))
	uniq := records[:0:0]
	for _, r := range records {
		key := DedupKey(r, qt)
		if seen[key] {
			continue
		}
		seen[key] = true
		uniq = append(uniq, r)
	}
	return uniq
}

// DedupKey derives the identity key for one record. IP queries key on
// ip:port; domain and company queries key on host:port. An absent port
// renders as "0" so the key stays stable.
func DedupKey(r types.AssetRecord, qt types.QueryType) string {
	if qt == types.QueryIP {
		return r.IP + ":" + strconv.Itoa(r.Port)
	}
	return r.Host + ":" + strconv.Itoa(r.Port)
}

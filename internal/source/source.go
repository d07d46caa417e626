// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package source integrates the network search engine APIs (FOFA, Hunter,
// Quake) behind one adapter contract. Each adapter knows its source's
// authentication shape, endpoint, query-type capability set, pagination
// ceiling, and response schema, and translates between the canonical query
// and record shapes and the source's native ones.
package source

import (
	"context"

	"github.com/pdiddy/netscope/pkg/types"
)

// Task is one unit of orchestration work: a single page of a single query
// against a single source. Tasks are constructed by the planner with the
// page size already clamped to the adapter's ceiling, and are immutable.
type Task struct {
	// Source names the adapter this task is bound to.
	Source string

	// Type is the query type (domain, ip, or company).
	Type types.QueryType

	// Target is the single query subject.
	Target string

	// Page is the 1-based page to request.
	Page int

	// PageSize is the requested results per page, pre-clamped.
	PageSize int
}

// Page holds one fetched page of raw source rows before normalization.
// The rows stay in the source's native shape; Normalize consumes them in
// one pass.
type Page struct {
	// Source names the adapter that produced the page.
	Source string

	// Size is the effective page size the request used, after clamping.
	Size int

	// Count is the number of raw rows the source returned. A page with
	// Count < Size is the last page.
	Count int

	// Total is the total result count reported by the source, zero when
	// the source did not report one.
	Total int

	// Dropped counts rows discarded during normalization because they
	// carried neither host nor ip. Populated by Normalize.
	Dropped int

	// rows is the adapter-specific payload.
	rows any
}

// Adapter is the contract every source integration implements.
type Adapter interface {
	// Name returns the source identifier (e.g. "fofa").
	Name() string

	// Supports reports whether the source can serve the query type.
	// Pure data lookup against the adapter's capability set.
	Supports(t types.QueryType) bool

	// MaxPageSize returns the source's page-size ceiling. The planner
	// clamps requested sizes to it before constructing tasks.
	MaxPageSize() int

	// Probe issues one minimal authenticated call to confirm the
	// credential is live. Failures are *CredentialError values.
	Probe(ctx context.Context) error

	// Fetch retrieves exactly one page for the task. Failures are
	// *FetchError values distinguishing network, server, and semantic
	// causes; an empty or under-full page means no more results.
	Fetch(ctx context.Context, task Task) (*Page, error)

	// Normalize maps the page's source-specific rows onto canonical
	// records. One pass, not restartable. Rows lacking both host and ip
	// are dropped and counted on the page, never emitted.
	Normalize(p *Page) []types.AssetRecord
}

// clampSize bounds a requested page size to [1, max].
func clampSize(size, max int) int {
	if size <= 0 {
		return max
	}
	if size > max {
		return max
	}
	return size
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package engine

import (
	"errors"

	"github.com/pdiddy/netscope/internal/source"
	"github.com/pdiddy/netscope/pkg/types"
)

// ErrNoApplicableSource is returned when a plan comes out empty: no
// requested source is both live and capable of the query type.
var ErrNoApplicableSource = errors.New("no applicable source for this query")

// Exclusion explains why a requested source emitted no tasks. Exclusions
// are intentional filtering, not errors; the caller surfaces them for
// transparency.
type Exclusion struct {
	Source string
	Reason string
}

// Plan produces the concrete task set for a run: one task per (live,
// capable source) × target pair, with the page size pre-clamped to each
// adapter's ceiling. requested selects sources by name; nil or a list
// containing "all" means every adapter. An empty plan fails with
// ErrNoApplicableSource.
func Plan(qt types.QueryType, targets []string, requested []string, adapters []source.Adapter,
	statuses map[string]ProbeStatus, page, size int) ([]source.Task, []Exclusion, error) {

	wantAll := len(requested) == 0
	want := make(map[string]bool, len(requested))
	for _, name := range requested {
		if name == "all" {
			wantAll = true
			continue
		}
		want[name] = true
	}

	if page <= 0 {
		page = 1
	}

	var tasks []source.Task
	var excluded []Exclusion
	for _, a := range adapters {
		if !wantAll && !want[a.Name()] {
			continue
		}
		if st, ok := statuses[a.Name()]; !ok || !st.Live {
			excluded = append(excluded, Exclusion{Source: a.Name(), Reason: "credential is not live"})
			continue
		}
		if !a.Supports(qt) {
			excluded = append(excluded, Exclusion{Source: a.Name(),
				Reason: "does not support " + string(qt) + " queries"})
			continue
		}

		clamped := size
		if clamped <= 0 || clamped > a.MaxPageSize() {
			clamped = a.MaxPageSize()
		}
		for _, target := range targets {
			tasks = append(tasks, source.Task{
				Source:   a.Name(),
				Type:     qt,
				Target:   target,
				Page:     page,
				PageSize: clamped,
			})
		}
	}

	if len(tasks) == 0 {
		return nil, excluded, ErrNoApplicableSource
	}
	return tasks, excluded, nil
}

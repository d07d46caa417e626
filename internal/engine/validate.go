// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package engine plans and executes multi-source asset queries: it
// validates credentials, fans tasks out across sources with bounded
// concurrency, merges pages into per-target collections, and deduplicates
// the result.
package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/pdiddy/netscope/internal/source"
)

// ErrNoLiveSource is returned when every configured credential failed
// validation. It is fatal: no fetch is attempted.
var ErrNoLiveSource = errors.New("no live source: every configured credential failed validation")

// ProbeStatus records the outcome of one credential probe.
type ProbeStatus struct {
	Live bool
	Err  error
}

// ValidateAll probes every adapter's credential concurrently and reports
// per-source liveness. A dead credential excludes that source from
// planning but does not abort siblings; only the case where every source
// is dead is an error.
func ValidateAll(ctx context.Context, adapters []source.Adapter, w io.Writer) (map[string]ProbeStatus, error) {
	type probeResult struct {
		name string
		err  error
	}

	ch := make(chan probeResult, len(adapters))
	var wg sync.WaitGroup

	for _, a := range adapters {
		wg.Add(1)
		go func(a source.Adapter) {
			defer wg.Done()
			ch <- probeResult{name: a.Name(), err: a.Probe(ctx)}
		}(a)
	}

	go func() {
		wg.Wait()
		close(ch)
	}()

	statuses := make(map[string]ProbeStatus, len(adapters))
	for pr := range ch {
		statuses[pr.name] = ProbeStatus{Live: pr.err == nil, Err: pr.err}
	}

	for _, name := range sortedNames(statuses) {
		st := statuses[name]
		if st.Live {
			fmt.Fprintf(w, "%s: credential ok\n", name)
		} else {
			fmt.Fprintf(w, "%s: credential unavailable (%v)\n", name, st.Err)
		}
	}

	if len(LiveSources(statuses)) == 0 {
		return statuses, ErrNoLiveSource
	}
	return statuses, nil
}

// LiveSources returns the names of sources whose probe succeeded, sorted.
func LiveSources(statuses map[string]ProbeStatus) []string {
	var live []string
	for name, st := range statuses {
		if st.Live {
			live = append(live, name)
		}
	}
	sort.Strings(live)
	return live
}

func sortedNames(statuses map[string]ProbeStatus) []string {
	names := make([]string, 0, len(statuses))
	for name := range statuses {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

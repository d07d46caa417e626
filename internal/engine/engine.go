// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/netscope/internal/source"
	"github.com/pdiddy/netscope/pkg/types"
)

// Diagnostic records a per-task failure surfaced alongside results. A
// failed task means that source's rows for that target are simply absent
// from the merge; the run itself proceeds.
type Diagnostic struct {
	Source string
	Target string
	Err    error
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s/%s: %v", d.Source, d.Target, d.Err)
}

// ResultSet accumulates canonical records per target as pages arrive.
// Appends from concurrent tasks are serialized; the cross-source order
// within one target is whatever the scheduler produced, while pages from
// one source keep fetch order.
type ResultSet struct {
	mu      sync.Mutex
	records map[string][]types.AssetRecord
	diags   []Diagnostic
	dropped int
}

// NewResultSet builds an empty result set with a slot per target.
func NewResultSet(targets []string) *ResultSet {
	records := make(map[string][]types.AssetRecord, len(targets))
	for _, t := range targets {
		records[t] = nil
	}
	return &ResultSet{records: records}
}

func (rs *ResultSet) append(target string, records []types.AssetRecord, dropped int) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	rs.records[target] = append(rs.records[target], records...)
	rs.dropped += dropped
}

func (rs *ResultSet) fail(d Diagnostic) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	rs.diags = append(rs.diags, d)
}

// Records returns the accumulated records for one target.
func (rs *ResultSet) Records(target string) []types.AssetRecord {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return rs.records[target]
}

// Diagnostics returns every per-task failure collected during execution.
func (rs *ResultSet) Diagnostics() []Diagnostic {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return append([]Diagnostic(nil), rs.diags...)
}

// Dropped returns how many source rows were discarded during
// normalization for lacking both host and ip.
func (rs *ResultSet) Dropped() int {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return rs.dropped
}

// Finalize deduplicates every target's collection in place using the
// query-type key, leaving first-seen order.
func (rs *ResultSet) Finalize(qt types.QueryType) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	for target, records := range rs.records {
		rs.records[target] = Dedupe(records, qt)
	}
}

// pageState drives one task's pagination. Transitions depend solely on
// page fullness and error outcomes; exhausted and failed are terminal.
type pageState int

const (
	stateRequesting pageState = iota
	stateHasMore
	stateExhausted
	stateFailed
)

// Engine executes planned tasks against the source adapters.
type Engine struct {
	adapters    map[string]source.Adapter
	concurrency int
	taskTimeout time.Duration
	w           io.Writer
}

// New builds an engine over the given adapters. Concurrency defaults to
// one in-flight task per adapter; the task timeout defaults to five
// minutes, which accommodates the slowest source's deep pagination.
func New(adapters []source.Adapter, cfg types.SearchConfig, w io.Writer) *Engine {
	byName := make(map[string]source.Adapter, len(adapters))
	for _, a := range adapters {
		byName[a.Name()] = a
	}

	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = len(adapters)
	}
	timeout := cfg.TaskTimeout
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}

	return &Engine{
		adapters:    byName,
		concurrency: concurrency,
		taskTimeout: timeout,
		w:           w,
	}
}

// Execute runs the task set and returns the merged, not-yet-deduplicated
// result set. Tasks run concurrently up to the engine's bound; pages
// within one task are fetched sequentially because later pages depend on
// continuation state from earlier ones. A task failure is recorded as a
// diagnostic and never aborts sibling tasks.
func (e *Engine) Execute(ctx context.Context, tasks []source.Task) *ResultSet {
	targets := make([]string, 0, len(tasks))
	seen := make(map[string]bool)
	for _, t := range tasks {
		if !seen[t.Target] {
			seen[t.Target] = true
			targets = append(targets, t.Target)
		}
	}
	rs := NewResultSet(targets)

	var g errgroup.Group
	g.SetLimit(e.concurrency)
	for _, task := range tasks {
		task := task
		g.Go(func() error {
			e.runTask(ctx, task, rs)
			return nil
		})
	}
	g.Wait()

	return rs
}

// runTask paginates one (source, target) pair to completion. An
// under-full page is the only end-of-results signal the sources give.
func (e *Engine) runTask(ctx context.Context, task source.Task, rs *ResultSet) {
	adapter, ok := e.adapters[task.Source]
	if !ok {
		rs.fail(Diagnostic{Source: task.Source, Target: task.Target,
			Err: fmt.Errorf("unknown source %q", task.Source)})
		return
	}

	tctx, cancel := context.WithTimeout(ctx, e.taskTimeout)
	defer cancel()

	page := task.Page
	for state := stateRequesting; state == stateRequesting || state == stateHasMore; {
		cur := task
		cur.Page = page

		p, err := adapter.Fetch(tctx, cur)
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				err = fmt.Errorf("task timed out after %v: %w", e.taskTimeout, err)
			}
			rs.fail(Diagnostic{Source: task.Source, Target: task.Target, Err: err})
			state = stateFailed
			continue
		}

		records := adapter.Normalize(p)
		rs.append(task.Target, records, p.Dropped)
		fmt.Fprintf(e.w, "%s: %s page %d: %d rows\n", task.Source, task.Target, page, p.Count)

		if p.Count < p.Size {
			state = stateExhausted
			continue
		}
		state = stateHasMore
		page++
	}
}

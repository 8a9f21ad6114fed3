// Package diag accumulates per-record and per-marker problems so a run can
// finish and report them as a summary instead of aborting.
package diag

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Kind labels a diagnostic for summary grouping.
type Kind string

const (
	RecordSkipped Kind = "record-skipped"
	UnresolvedRef Kind = "unresolved-reference"
	ParentCycle   Kind = "parent-cycle"
	BrokenLink    Kind = "broken-link"
	StaleFile     Kind = "stale-file"
	RenderFailed  Kind = "render-failed"
)

// Diagnostic is one recoverable problem observed during a run.
type Diagnostic struct {
	Kind    Kind
	UID     string
	Doc     string
	Message string
}

func (d Diagnostic) String() string {
	var b strings.Builder
	b.WriteString(string(d.Kind))
	if d.UID != "" {
		fmt.Fprintf(&b, " uid=%s", d.UID)
	}
	if d.Doc != "" {
		fmt.Fprintf(&b, " doc=%s", d.Doc)
	}
	if d.Message != "" {
		b.WriteString(": ")
		b.WriteString(d.Message)
	}
	return b.String()
}

// Collector is a thread-safe diagnostic accumulator.
type Collector struct {
	mu    sync.Mutex
	items []Diagnostic
}

// NewCollector creates an empty collector.
func NewCollector() *Collector { return &Collector{} }

// Add records one diagnostic.
func (c *Collector) Add(d Diagnostic) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append(c.items, d)
}

// Items returns a copy of the recorded diagnostics.
func (c *Collector) Items() []Diagnostic {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Diagnostic, len(c.items))
	copy(out, c.items)
	return out
}

// Count returns the number of recorded diagnostics.
func (c *Collector) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// CountKind returns the number of diagnostics of one kind.
func (c *Collector) CountKind(kind Kind) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, d := range c.items {
		if d.Kind == kind {
			n++
		}
	}
	return n
}

// Summary returns per-kind counts, sorted by kind name, for end-of-run
// reporting.
func (c *Collector) Summary() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	counts := make(map[Kind]int)
	for _, d := range c.items {
		counts[d.Kind]++
	}
	kinds := make([]string, 0, len(counts))
	for k := range counts {
		kinds = append(kinds, string(k))
	}
	sort.Strings(kinds)
	out := make([]string, 0, len(kinds))
	for _, k := range kinds {
		out = append(out, fmt.Sprintf("%s: %d", k, counts[Kind(k)]))
	}
	return out
}

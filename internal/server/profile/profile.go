// Package profile records wall-clock timings of named operations.
package profile

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"
)

// Metrics summarizes the samples recorded under one name.
type Metrics struct {
	Name  string
	Count int
	Total time.Duration
	Min   time.Duration
	Max   time.Duration
}

// Avg returns the mean sample duration.
func (m Metrics) Avg() time.Duration {
	if m.Count == 0 {
		return 0
	}
	return m.Total / time.Duration(m.Count)
}

// Profiler aggregates timings. A nil *Profiler is valid and records nothing.
type Profiler struct {
	mu      sync.Mutex
	metrics map[string]*Metrics
}

// New returns an empty profiler.
func New() *Profiler {
	return &Profiler{metrics: make(map[string]*Metrics)}
}

// Measure starts timing name and returns the function that stops it.
//
//	defer p.Measure("chunk.save")()
func (p *Profiler) Measure(name string) func() {
	if p == nil {
		return func() {}
	}
	start := time.Now()
	return func() { p.Record(name, time.Since(start)) }
}

// Record adds one sample of d under name.
func (p *Profiler) Record(name string, d time.Duration) {
	if p == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	m, ok := p.metrics[name]
	if !ok {
		m = &Metrics{Name: name, Min: d, Max: d}
		p.metrics[name] = m
	}
	m.Count++
	m.Total += d
	m.Min = min(m.Min, d)
	m.Max = max(m.Max, d)
}

// Summary returns a snapshot of every metric ordered by name.
func (p *Profiler) Summary() []Metrics {
	if p == nil {
		return nil
	}
	p.mu.Lock()
	out := make([]Metrics, 0, len(p.metrics))
	for _, m := range p.metrics {
		out = append(out, *m)
	}
	p.mu.Unlock()
	slices.SortFunc(out, func(a, b Metrics) int { return strings.Compare(a.Name, b.Name) })
	return out
}

// Clear drops every recorded sample.
func (p *Profiler) Clear() {
	if p == nil {
		return
	}
	p.mu.Lock()
	clear(p.metrics)
	p.mu.Unlock()
}

// String renders the summary as one line per metric.
func (p *Profiler) String() string {
	var b strings.Builder
	for _, m := range p.Summary() {
		fmt.Fprintf(&b, "%s: count=%d avg=%s min=%s max=%s total=%s\n",
			m.Name, m.Count, m.Avg(), m.Min, m.Max, m.Total)
	}
	return b.String()
}

// LogValue implements slog.LogValuer.
func (p *Profiler) LogValue() slog.Value {
	summary := p.Summary()
	attrs := make([]slog.Attr, 0, len(summary))
	for _, m := range summary {
		attrs = append(attrs, slog.Group(m.Name,
			"count", m.Count,
			"avg", m.Avg(),
			"max", m.Max,
		))
	}
	return slog.GroupValue(attrs...)
}

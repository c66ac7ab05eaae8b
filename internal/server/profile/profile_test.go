package profile

import (
	"strings"
	"testing"
	"time"
)

func TestRecordAggregates(t *testing.T) {
	p := New()
	p.Record("chunk.load", 10*time.Millisecond)
	p.Record("chunk.load", 30*time.Millisecond)
	p.Record("chunk.generate", 5*time.Millisecond)

	s := p.Summary()
	if len(s) != 2 {
		t.Fatalf("len(Summary()) = %d, want 2", len(s))
	}
	if s[0].Name != "chunk.generate" || s[1].Name != "chunk.load" {
		t.Errorf("Summary() not sorted: %s, %s", s[0].Name, s[1].Name)
	}
	load := s[1]
	if load.Count != 2 || load.Min != 10*time.Millisecond || load.Max != 30*time.Millisecond {
		t.Errorf("load = %+v", load)
	}
	if load.Avg() != 20*time.Millisecond {
		t.Errorf("Avg() = %s, want 20ms", load.Avg())
	}
}

func TestMeasure(t *testing.T) {
	p := New()
	stop := p.Measure("op")
	stop()

	s := p.Summary()
	if len(s) != 1 || s[0].Count != 1 {
		t.Fatalf("Summary() = %+v", s)
	}
	if !strings.Contains(p.String(), "op: count=1") {
		t.Errorf("String() = %q", p.String())
	}

	p.Clear()
	if len(p.Summary()) != 0 {
		t.Error("Clear should drop all metrics")
	}
}

func TestNilProfiler(t *testing.T) {
	var p *Profiler
	p.Measure("x")()
	p.Record("x", time.Second)
	p.Clear()
	if p.Summary() != nil {
		t.Error("nil profiler should have no summary")
	}
}

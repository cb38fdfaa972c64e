package ui

import (
	"strings"
	"testing"

	"signcheck/internal/pipeline"
)

func TestProgressModelTracksFiles(t *testing.T) {
	events := make(chan pipeline.Event)
	m := NewProgressModel("checking", []string{"a.sgn", "b.sgn"}, events).(*progressModel)

	m.applyEvent(pipeline.Event{Stage: pipeline.StageCheck, Status: pipeline.StatusWorking})
	m.applyEvent(pipeline.Event{File: "a.sgn", Stage: pipeline.StageParse, Status: pipeline.StatusWorking})
	m.applyEvent(pipeline.Event{File: "b.sgn", Stage: pipeline.StageCheck, Status: pipeline.StatusCached})
	m.applyEvent(pipeline.Event{File: "unknown.sgn", Stage: pipeline.StageCheck, Status: pipeline.StatusDone})

	if m.stageLabel != "checking" {
		t.Fatalf("stage label: got %q", m.stageLabel)
	}
	if m.items[0].status != "parsing" || m.items[1].status != "cached" {
		t.Fatalf("unexpected statuses: %+v", m.items)
	}
	if got := m.percent(); got != 0.6 {
		t.Fatalf("percent: expected 0.6, got %v", got)
	}

	m.applyEvent(pipeline.Event{File: "a.sgn", Stage: pipeline.StageCheck, Status: pipeline.StatusError})
	if got := m.percent(); got != 1.0 {
		t.Fatalf("percent after both finished: got %v", got)
	}
	if view := m.View(); !strings.Contains(view, "a.sgn") || !strings.Contains(view, "error") {
		t.Fatalf("view misses file rows:\n%s", view)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("internal/driver/testdata/arith.sgn", 12); got != "internal/..." {
		t.Fatalf("got %q", got)
	}
	if got := truncate("short", 12); got != "short" {
		t.Fatalf("got %q", got)
	}
	if got := truncate("abcdef", 2); got != "ab" {
		t.Fatalf("got %q", got)
	}
}

func TestRenderLattice(t *testing.T) {
	out := RenderLattice(false)
	lines := strings.Split(out, "\n")
	if len(lines) < 2 || !strings.Contains(lines[1], "SignednessBottom") {
		t.Fatalf("first level must be the bottom:\n%s", out)
	}
	if !strings.Contains(lines[2], "BitPattern, SignedPositive, Unsigned") {
		t.Fatalf("second level:\n%s", out)
	}
	for _, want := range []string{"row <: column", "join", "BitPat", "Unknown"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}
}

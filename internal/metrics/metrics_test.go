package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestPrometheusRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	p, err := New(reg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	p.GameStarted("redis")
	p.MoveAccepted(false)
	p.MoveAccepted(true)
	p.MoveRejected("BLOCKED_PATH")
	p.Explosion(3, true)
	p.Explosion(2, false)
	p.GameFinished("FINISHED")
	p.Conflict()

	if got := testutil.ToFloat64(p.gamesStarted.WithLabelValues("redis")); got != 1 {
		t.Fatalf("games started = %v", got)
	}
	if got := testutil.ToFloat64(p.moves.WithLabelValues("capture")); got != 1 {
		t.Fatalf("captures = %v", got)
	}
	if got := testutil.ToFloat64(p.rejections.WithLabelValues("BLOCKED_PATH")); got != 1 {
		t.Fatalf("rejections = %v", got)
	}
	if got := testutil.ToFloat64(p.kingsKilled); got != 1 {
		t.Fatalf("kings destroyed = %v", got)
	}
	if got := testutil.ToFloat64(p.conflicts); got != 1 {
		t.Fatalf("conflicts = %v", got)
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	var found bool
	for _, mf := range families {
		if mf.GetName() != "atomic_explosion_cleared_squares" {
			continue
		}
		found = true
		h := mf.GetMetric()[0].GetHistogram()
		if h.GetSampleCount() != 2 || h.GetSampleSum() != 5 {
			t.Fatalf("histogram count=%d sum=%v", h.GetSampleCount(), h.GetSampleSum())
		}
	}
	if !found {
		t.Fatalf("explosion histogram not gathered")
	}
}

func TestNewReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := New(reg)
	if err != nil {
		t.Fatalf("New #1: %v", err)
	}
	second, err := New(reg)
	if err != nil {
		t.Fatalf("New #2: %v", err)
	}
	second.Conflict()
	if got := testutil.ToFloat64(first.conflicts); got != 1 {
		t.Fatalf("second recorder did not share collectors: %v", got)
	}
}

func TestNopSatisfiesRecorder(t *testing.T) {
	var r Recorder = Nop{}
	r.GameStarted("memory")
	r.Explosion(9, true)
}

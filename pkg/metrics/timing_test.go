package metrics

import (
	"testing"
	"time"
)

func TestTimingMetric_Record(t *testing.T) {
	m := newTimingMetric("test")
	m.Record(2 * time.Millisecond)
	m.Record(4 * time.Millisecond)

	if m.Count() != 2 {
		t.Fatalf("expected count 2, got %d", m.Count())
	}
	if m.MinNs() != int64(2*time.Millisecond) {
		t.Errorf("unexpected min %d", m.MinNs())
	}
	if m.MaxNs() != int64(4*time.Millisecond) {
		t.Errorf("unexpected max %d", m.MaxNs())
	}
	if m.AvgNs() != int64(3*time.Millisecond) {
		t.Errorf("unexpected avg %d", m.AvgNs())
	}

	stats := m.Stats()
	if stats.Name != "test" || stats.Count != 2 {
		t.Errorf("unexpected stats %+v", stats)
	}

	m.Reset()
	if m.Count() != 0 || m.AvgNs() != 0 {
		t.Errorf("reset did not clear metric")
	}
}

func TestTimer(t *testing.T) {
	ResetAll()
	stop := Timer(ThresholdApply)
	stop()
	if ThresholdApply.Count() != 1 {
		t.Errorf("expected 1 measurement, got %d", ThresholdApply.Count())
	}

	found := false
	for _, s := range AllTimingStats() {
		if s.Name == "threshold_apply" {
			found = true
		}
		if s.Count == 0 {
			t.Errorf("AllTimingStats should skip empty metrics, got %+v", s)
		}
	}
	if !found {
		t.Error("threshold_apply missing from AllTimingStats")
	}
	ResetAll()
}

func TestDisabled(t *testing.T) {
	prev := Enabled()
	SetEnabled(false)
	t.Cleanup(func() { SetEnabled(prev) })

	m := newTimingMetric("off")
	Timer(m)()
	m.Record(time.Second)
	if m.Count() != 0 {
		t.Errorf("disabled metrics must not record, got %d", m.Count())
	}
}

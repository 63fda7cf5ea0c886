// Package metrics records how long each netview pipeline stage takes.
//
// The stages are load, threshold, assemble, select, recompute and render.
// Timings are kept in memory with atomic counters so slow recomputations can
// be spotted while the threshold control is dragged. Set NETVIEW_METRICS=0
// to turn collection off.
//
//	defer metrics.Timer(metrics.ThresholdApply)()
package metrics

import (
	"math"
	"os"
	"sync/atomic"
	"time"
)

var enabled atomic.Bool

func init() {
	enabled.Store(os.Getenv("NETVIEW_METRICS") != "0")
}

// Enabled reports whether timings are being collected.
func Enabled() bool { return enabled.Load() }

// SetEnabled turns collection on or off.
func SetEnabled(e bool) { enabled.Store(e) }

// TimingMetric accumulates durations for one stage. It is safe for
// concurrent use.
type TimingMetric struct {
	name  string
	count atomic.Int64
	total atomic.Int64
	max   atomic.Int64
	// min holds math.MaxInt64 until the first sample.
	min atomic.Int64
}

func newTimingMetric(name string) *TimingMetric {
	m := &TimingMetric{name: name}
	m.min.Store(math.MaxInt64)
	return m
}

// Record adds one sample.
func (m *TimingMetric) Record(d time.Duration) {
	if !Enabled() {
		return
	}
	ns := d.Nanoseconds()
	m.count.Add(1)
	m.total.Add(ns)
	storeIf(&m.max, ns, func(cur int64) bool { return ns > cur })
	storeIf(&m.min, ns, func(cur int64) bool { return ns < cur })
}

// storeIf swaps v into a while better(current) holds.
func storeIf(a *atomic.Int64, v int64, better func(int64) bool) {
	for {
		cur := a.Load()
		if !better(cur) || a.CompareAndSwap(cur, v) {
			return
		}
	}
}

func (m *TimingMetric) Name() string { return m.name }

// Count is the number of samples recorded.
func (m *TimingMetric) Count() int64 { return m.count.Load() }

func (m *TimingMetric) TotalNs() int64 { return m.total.Load() }

func (m *TimingMetric) MaxNs() int64 { return m.max.Load() }

// MinNs is 0 before the first sample.
func (m *TimingMetric) MinNs() int64 {
	if v := m.min.Load(); v != math.MaxInt64 {
		return v
	}
	return 0
}

// AvgNs is 0 before the first sample.
func (m *TimingMetric) AvgNs() int64 {
	n := m.count.Load()
	if n == 0 {
		return 0
	}
	return m.total.Load() / n
}

// TimingStats is a point-in-time copy of a TimingMetric in milliseconds.
type TimingStats struct {
	Name    string  `json:"name"`
	Count   int64   `json:"count"`
	TotalMs float64 `json:"total_ms"`
	AvgMs   float64 `json:"avg_ms"`
	MaxMs   float64 `json:"max_ms"`
	MinMs   float64 `json:"min_ms,omitempty"`
}

func (m *TimingMetric) Stats() TimingStats {
	ms := func(ns int64) float64 { return float64(ns) / float64(time.Millisecond) }
	return TimingStats{
		Name:    m.name,
		Count:   m.Count(),
		TotalMs: ms(m.TotalNs()),
		AvgMs:   ms(m.AvgNs()),
		MaxMs:   ms(m.MaxNs()),
		MinMs:   ms(m.MinNs()),
	}
}

// Reset drops every sample.
func (m *TimingMetric) Reset() {
	m.count.Store(0)
	m.total.Store(0)
	m.max.Store(0)
	m.min.Store(math.MaxInt64)
}

// Timer starts timing m and returns the function that stops it. A nil
// metric or disabled collection yields a no-op.
func Timer(m *TimingMetric) func() {
	if m == nil || !Enabled() {
		return func() {}
	}
	start := time.Now()
	return func() { m.Record(time.Since(start)) }
}

// Pipeline stages.
var (
	DataLoad         = newTimingMetric("data_load")
	ThresholdApply   = newTimingMetric("threshold_apply")
	NetworkAssemble  = newTimingMetric("network_assemble")
	SubnetworkDerive = newTimingMetric("subnetwork_derive")
	SessionRecompute = newTimingMetric("session_recompute")
	SnapshotRender   = newTimingMetric("snapshot_render")
	UIRender         = newTimingMetric("ui_render")
)

var stages = []*TimingMetric{
	DataLoad,
	ThresholdApply,
	NetworkAssemble,
	SubnetworkDerive,
	SessionRecompute,
	SnapshotRender,
	UIRender,
}

// AllTimingMetrics lists the pipeline stages in order.
func AllTimingMetrics() []*TimingMetric {
	return append([]*TimingMetric(nil), stages...)
}

func ResetAll() {
	for _, m := range stages {
		m.Reset()
	}
}

// AllTimingStats returns stats for the stages that have samples.
func AllTimingStats() []TimingStats {
	out := make([]TimingStats, 0, len(stages))
	for _, m := range stages {
		if m.Count() > 0 {
			out = append(out, m.Stats())
		}
	}
	return out
}

package telemetry

import (
	"github.com/hivelab/hive/lexicon"
)

// ConvergenceSample is one measurement of population-wide lexicon agreement.
type ConvergenceSample struct {
	Tick  int32   `csv:"tick"`
	Value float64 `csv:"convergence"`
	Alive int     `csv:"alive"`
}

// ConvergenceTracker samples lexicon agreement on a fixed tick interval and
// keeps the series for output. Sampling is O(n^2) in live agents, which is
// why it runs on an interval rather than every tick.
type ConvergenceTracker struct {
	intervalTicks int32
	threshold     float32
	lastSample    int32
	history       []ConvergenceSample
}

// NewConvergenceTracker creates a tracker sampling every intervalTicks, with
// dominance threshold for lexicon entries.
func NewConvergenceTracker(intervalTicks int32, threshold float32) *ConvergenceTracker {
	if intervalTicks < 1 {
		intervalTicks = 1
	}
	return &ConvergenceTracker{
		intervalTicks: intervalTicks,
		threshold:     threshold,
		lastSample:    -intervalTicks,
	}
}

// ShouldSample reports whether the interval has elapsed.
func (ct *ConvergenceTracker) ShouldSample(tick int32) bool {
	return tick-ct.lastSample >= ct.intervalTicks
}

// Sample measures agreement across the given live-agent lexicons and records
// it. Returns the measured value.
func (ct *ConvergenceTracker) Sample(tick int32, tables []*lexicon.Table, alive int) float64 {
	v := lexicon.Convergence(tables, ct.threshold)
	ct.lastSample = tick
	ct.history = append(ct.history, ConvergenceSample{Tick: tick, Value: v, Alive: alive})
	return v
}

// Latest returns the most recent sample, or a zero sample before any.
func (ct *ConvergenceTracker) Latest() ConvergenceSample {
	if len(ct.history) == 0 {
		return ConvergenceSample{}
	}
	return ct.history[len(ct.history)-1]
}

// History returns all recorded samples in tick order.
func (ct *ConvergenceTracker) History() []ConvergenceSample {
	return ct.history
}

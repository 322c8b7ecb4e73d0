package telemetry

import "github.com/hivelab/hive/lexicon"

// Collector accumulates events within time windows and produces WindowStats.
type Collector struct {
	windowDurationSec   float64
	windowDurationTicks int32
	dt                  float32

	windowStartTick int32

	// Event counters for current window
	deaths      int
	foodEaten   int
	waterDrunk  int
	broadcasts  int
	heard       int
	adoptions   int
	validations int
	expiries    int

	lastConvergence float64
}

// NewCollector creates a new stats collector.
// windowDurationSec: how long each stats window lasts in simulation seconds
// dt: seconds per tick (used for tick-to-time conversion)
func NewCollector(windowDurationSec float64, dt float32) *Collector {
	ticksPerWindow := int32(windowDurationSec / float64(dt))
	if ticksPerWindow < 1 {
		ticksPerWindow = 1
	}
	return &Collector{
		windowDurationSec:   windowDurationSec,
		windowDurationTicks: ticksPerWindow,
		dt:                  dt,
	}
}

// RecordDeath records an agent dying of a maxed need.
func (c *Collector) RecordDeath() {
	c.deaths++
}

// RecordConsumption records a resource being eaten or drunk.
func (c *Collector) RecordConsumption(concept lexicon.Concept) {
	if concept == lexicon.ConceptFood {
		c.foodEaten++
	} else {
		c.waterDrunk++
	}
}

// RecordBroadcast records a chirp emission.
func (c *Collector) RecordBroadcast() {
	c.broadcasts++
}

// RecordHeard records one agent receiving a chirp.
func (c *Collector) RecordHeard() {
	c.heard++
}

// RecordAdoption records a naive listener tentatively adopting a mapping.
func (c *Collector) RecordAdoption() {
	c.adoptions++
}

// RecordValidations records expectations confirmed by consumption.
func (c *Collector) RecordValidations(n int) {
	c.validations += n
}

// RecordExpiries records expectations that timed out unmet.
func (c *Collector) RecordExpiries(n int) {
	c.expiries += n
}

// RecordConvergence stores the newest convergence sample for the next flush.
func (c *Collector) RecordConvergence(v float64) {
	c.lastConvergence = v
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int32) bool {
	return currentTick-c.windowStartTick >= c.windowDurationTicks
}

// Flush produces a WindowStats and resets counters for the next window.
// lexiconSizes holds the live-agent lexicon entry counts sampled at window
// end; food and water are the current on-map resource counts.
func (c *Collector) Flush(currentTick int32, alive int, lexiconSizes []float64, food, water int) WindowStats {
	mean, std, p10, p50, p90 := ComputeDistribution(lexiconSizes)

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,
		SimTimeSec:      float64(currentTick) * float64(c.dt),

		Alive: alive,

		Deaths:     c.deaths,
		FoodEaten:  c.foodEaten,
		WaterDrunk: c.waterDrunk,

		Broadcasts:  c.broadcasts,
		Heard:       c.heard,
		Adoptions:   c.adoptions,
		Validations: c.validations,
		Expiries:    c.expiries,

		LexiconMean: mean,
		LexiconStd:  std,
		LexiconP10:  p10,
		LexiconP50:  p50,
		LexiconP90:  p90,

		Convergence: c.lastConvergence,

		FoodOnMap:  food,
		WaterOnMap: water,
	}

	c.windowStartTick = currentTick
	c.deaths = 0
	c.foodEaten = 0
	c.waterDrunk = 0
	c.broadcasts = 0
	c.heard = 0
	c.adoptions = 0
	c.validations = 0
	c.expiries = 0

	return stats
}

// WindowDurationTicks returns the number of ticks per window.
func (c *Collector) WindowDurationTicks() int32 {
	return c.windowDurationTicks
}

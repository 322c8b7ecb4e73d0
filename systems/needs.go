package systems

import (
	"fmt"

	"github.com/hivelab/hive/components"
)

// NeedsParams holds the per-tick need arithmetic tuning.
type NeedsParams struct {
	Max        int
	HungerRate float64 // per second
	ThirstRate float64 // per second
	FoodFill   int
	WaterFill  int
}

// AccumulateNeeds advances hunger and thirst by one tick of decay and reports
// whether the agent died this tick. Death is sticky; callers must not invoke
// this for dead agents.
//
// A needs value outside [0, Max] on entry is a broken arithmetic invariant,
// not a recoverable state, and panics.
func AccumulateNeeds(n *components.Needs, p NeedsParams, dt float64) bool {
	checkBounds(n, p.Max)

	n.HungerFrac += float32(p.HungerRate * dt)
	for n.HungerFrac >= 1 {
		n.HungerFrac--
		n.Hunger++
	}
	if n.Hunger > p.Max {
		n.Hunger = p.Max
	}

	n.ThirstFrac += float32(p.ThirstRate * dt)
	for n.ThirstFrac >= 1 {
		n.ThirstFrac--
		n.Thirst++
	}
	if n.Thirst > p.Max {
		n.Thirst = p.Max
	}

	if n.Hunger == p.Max || n.Thirst == p.Max {
		n.Alive = false
		return true
	}
	return false
}

// Eat resets hunger downward by the food fill amount.
func Eat(n *components.Needs, p NeedsParams) {
	n.Hunger -= p.FoodFill
	if n.Hunger < 0 {
		n.Hunger = 0
	}
}

// Drink resets thirst downward by the water fill amount.
func Drink(n *components.Needs, p NeedsParams) {
	n.Thirst -= p.WaterFill
	if n.Thirst < 0 {
		n.Thirst = 0
	}
}

// WantsKind reports whether the agent has any use for a resource of the given
// kind: a need at zero cannot be satisfied further, so the tile is left for
// someone who needs it.
func WantsKind(n *components.Needs, kind ResourceKind) bool {
	switch kind {
	case Food:
		return n.Hunger > 0
	case Water:
		return n.Thirst > 0
	default:
		return false
	}
}

func checkBounds(n *components.Needs, max int) {
	if n.Hunger < 0 || n.Hunger > max || n.Thirst < 0 || n.Thirst > max {
		panic(fmt.Sprintf("needs out of bounds: hunger=%d thirst=%d max=%d", n.Hunger, n.Thirst, max))
	}
}
